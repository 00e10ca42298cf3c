package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"studio-service/api"
	"studio-service/internal/planner"
	"studio-service/pkg/response"
	"studio-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type SessionScheduler interface {
	ScheduleSessions(ctx context.Context, req *api.PlanRequest) (*api.ScheduleResponse, error)
}

type Request struct {
	api.PlanRequest
}

type Response struct {
	response.Response
	Schedule api.ScheduleResponse `json:"schedule,omitempty"`
}

func New(log *slog.Logger, scheduler SessionScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sessions.create.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		if req.CourseID == "" {
			log.Error("course_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "course_id is required"))
			return
		}

		schedule, err := scheduler.ScheduleSessions(r.Context(), &req.PlanRequest)

		if errors.Is(err, response.ErrLocked) {
			log.Error("course is locked by another request")
			w.WriteHeader(http.StatusLocked)
			render.JSON(w, r, response.Error(string(response.LOCKED), "course is locked by another request"))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("course not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "course not found"))
			return
		}

		if errors.Is(err, response.ErrBlackoutConflict) {
			log.Error("draft conflicts with a blackout", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.BLACKOUT_CONFLICT), err.Error()))
			return
		}

		var vErr *planner.ValidationError
		if errors.As(err, &vErr) {
			code, status := validationCode(vErr.Kind)
			log.Error("Validation failed", sl.Err(err))
			w.WriteHeader(status)
			render.JSON(w, r, response.Error(code, vErr.Error()))
			return
		}

		if err != nil {
			log.Error("Failed to schedule sessions", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to schedule sessions"))
			return
		}

		log.Info("Sessions scheduled",
			slog.Int("created", len(schedule.Sessions)),
			slog.Int("scheduled_sessions", schedule.ScheduledSessions),
		)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Schedule: *schedule,
		})
	}
}

func validationCode(kind planner.ValidationKind) (string, int) {
	switch kind {
	case planner.RoomNotAssigned:
		return string(response.ROOM_NOT_ASSIGNED), http.StatusConflict
	case planner.CourseFullyScheduled:
		return string(response.COURSE_FULLY_SCHEDULED), http.StatusConflict
	case planner.QuotaExceeded:
		return string(response.QUOTA_EXCEEDED), http.StatusConflict
	default:
		return string(response.VALIDATION_FAILED), http.StatusBadRequest
	}
}
