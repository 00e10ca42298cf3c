package response

import "errors"

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

//Error Codes
type ErrCode string

var (
	FAILED_REQUEST         ErrCode = "REQUEST_FAILED"
	BAD_REQUEST            ErrCode = "FAILED_TO_DECODE"
	NOT_FOUND              ErrCode = "NOT_FOUND"
	LOCKED                 ErrCode = "LOCKED"
	CONFLICT               ErrCode = "CONFLICT"
	SESSION_FULL           ErrCode = "SESSION_FULL"
	QUOTA_EXCEEDED         ErrCode = "QUOTA_EXCEEDED"
	COURSE_FULLY_SCHEDULED ErrCode = "COURSE_FULLY_SCHEDULED"
	ROOM_NOT_ASSIGNED      ErrCode = "ROOM_NOT_ASSIGNED"
	BLACKOUT_CONFLICT      ErrCode = "BLACKOUT_CONFLICT"
	VALIDATION_FAILED      ErrCode = "VALIDATION_FAILED"
	TOKEN_EXPIRED          ErrCode = "TOKEN_EXPIRED"
)

var (
	ErrBadRequest           = errors.New("bad request")
	ErrNotFound             = errors.New("resource not found")
	ErrLocked               = errors.New("resource is locked")
	ErrConflict             = errors.New("conflict")
	ErrSessionFull          = errors.New("session is fully booked")
	ErrQuotaExceeded        = errors.New("drafts exceed pending sessions")
	ErrCourseFullyScheduled = errors.New("course is fully scheduled")
	ErrRoomNotAssigned      = errors.New("course has no default room")
	ErrBlackoutConflict     = errors.New("slot conflicts with a blackout")
	ErrCourseLocked         = errors.New("course has scheduled sessions and cannot be edited")
	ErrTokenExpired         = errors.New("attendance token expired")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}
