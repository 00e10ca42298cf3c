package api

import "time"

// Patterns and override weeks

type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Days is keyed by weekday; "0".."6" (Sunday-first) and names like "mon"
// are both accepted on the way in, ordinals are produced on the way out.
type AvailabilityPatternRequest struct {
	OwnerKind string                 `json:"owner_kind"`
	OwnerID   string                 `json:"owner_id"`
	Days      map[string][]TimeRange `json:"days"`
}

type AvailabilityPatternResponse struct {
	ID        string                 `json:"id"`
	OwnerKind string                 `json:"owner_kind"`
	OwnerID   string                 `json:"owner_id"`
	Days      map[string][]TimeRange `json:"days"`
}

type OverrideWeekRequest struct {
	OwnerKind string                 `json:"owner_kind"`
	OwnerID   string                 `json:"owner_id"`
	WeekDate  string                 `json:"week_date"`
	Label     string                 `json:"label"`
	Notes     string                 `json:"notes,omitempty"`
	Days      map[string][]TimeRange `json:"days"`
}

type OverrideWeekResponse struct {
	ID            string                 `json:"id"`
	OwnerKind     string                 `json:"owner_kind"`
	OwnerID       string                 `json:"owner_id"`
	WeekKey       string                 `json:"week_key"`
	WeekStartDate string                 `json:"week_start_date"`
	Label         string                 `json:"label"`
	Notes         string                 `json:"notes,omitempty"`
	Days          map[string][]TimeRange `json:"days"`
}

// Blocks

type DateBlockRequest struct {
	RoomID string `json:"room_id"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason"`
	Note   string `json:"note,omitempty"`
}

type DateBlockResponse struct {
	ID     string    `json:"id"`
	RoomID string    `json:"room_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Reason string    `json:"reason"`
	Note   string    `json:"note,omitempty"`
}

type RecurringBlockRequest struct {
	OwnerKind string `json:"owner_kind"`
	OwnerID   string `json:"owner_id"`
	Weekday   string `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason"`
	Note      string `json:"note,omitempty"`
}

type RecurringBlockResponse struct {
	ID        string `json:"id"`
	OwnerKind string `json:"owner_kind"`
	OwnerID   string `json:"owner_id"`
	Weekday   int    `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason"`
	Note      string `json:"note,omitempty"`
}

// Rooms and courses

type RoomRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type RoomResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type CourseRequest struct {
	Name                   string  `json:"name"`
	SessionCount           int     `json:"session_count"`
	SessionDurationMinutes int     `json:"session_duration_minutes"`
	LeadInstructorID       string  `json:"lead_instructor_id"`
	DefaultRoomID          *string `json:"default_room_id,omitempty"`
}

type CourseResponse struct {
	ID                     string  `json:"id"`
	Name                   string  `json:"name"`
	SessionCount           int     `json:"session_count"`
	SessionDurationMinutes int     `json:"session_duration_minutes"`
	LeadInstructorID       string  `json:"lead_instructor_id"`
	DefaultRoomID          *string `json:"default_room_id,omitempty"`
	ScheduledSessions      int     `json:"scheduled_sessions"`
	PendingSessions        int     `json:"pending_sessions"`
}

// Planning

type EditedFields struct {
	Date       bool `json:"date,omitempty"`
	StartTime  bool `json:"start_time,omitempty"`
	Duration   bool `json:"duration,omitempty"`
	Instructor bool `json:"instructor,omitempty"`
}

type Occurrence struct {
	Index           int          `json:"index"`
	Date            string       `json:"date,omitempty"`
	StartTime       string       `json:"start_time,omitempty"`
	DurationMinutes int          `json:"duration_minutes,omitempty"`
	InstructorID    string       `json:"instructor_id,omitempty"`
	Edited          EditedFields `json:"edited"`
}

type PlanRequest struct {
	CourseID        string       `json:"course_id"`
	Frequency       string       `json:"frequency"`
	StartDate       string       `json:"start_date,omitempty"`
	Weekdays        []string     `json:"weekdays,omitempty"`
	Count           int          `json:"count,omitempty"`
	StartTime       string       `json:"start_time"`
	DurationMinutes int          `json:"duration_minutes,omitempty"`
	InstructorID    string       `json:"instructor_id,omitempty"`
	Occurrences     []Occurrence `json:"occurrences,omitempty"`
}

type DraftResponse struct {
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
	InstructorID    string `json:"instructor_id"`
}

type PlanResponse struct {
	CourseID        string          `json:"course_id"`
	PendingSessions int             `json:"pending_sessions"`
	Drafts          []DraftResponse `json:"drafts"`
}

type SessionResponse struct {
	ID           string    `json:"id"`
	CourseID     string    `json:"course_id"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	InstructorID string    `json:"instructor_id"`
	RoomID       string    `json:"room_id"`
}

type ScheduleResponse struct {
	CourseID          string            `json:"course_id"`
	ScheduledSessions int               `json:"scheduled_sessions"`
	Sessions          []SessionResponse `json:"sessions"`
}

// Availability check

type AvailabilityCheckRequest struct {
	RoomID       string `json:"room_id"`
	InstructorID string `json:"instructor_id"`
	Start        string `json:"start"`
	End          string `json:"end"`
}

type AvailabilityCheckResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Bookings

type BookingRequest struct {
	SessionID string `json:"session_id"`
	ClientID  string `json:"client_id"`
}

type BookingResponse struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	ClientID  string `json:"client_id"`
	Status    string `json:"status"`
}

// Attendance

type AttendanceTokenResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	QRPNG     string    `json:"qr_png"`
}

type CheckinRequest struct {
	Token    string `json:"token"`
	ClientID string `json:"client_id"`
}

type CheckinResponse struct {
	SessionID    string `json:"session_id"`
	BookingID    string `json:"booking_id"`
	AttendanceID string `json:"attendance_id"`
	Status       string `json:"status"`
}
