package plan

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"studio-service/api"
	"studio-service/pkg/response"
	"studio-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type SessionPlanner interface {
	PlanSessions(ctx context.Context, req *api.PlanRequest) (*api.PlanResponse, error)
}

type Request struct {
	api.PlanRequest
}

type Response struct {
	response.Response
	Plan api.PlanResponse `json:"plan,omitempty"`
}

func New(log *slog.Logger, planner SessionPlanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sessions.plan.New"

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

		plan, err := planner.PlanSessions(r.Context(), &req.PlanRequest)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("course not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "course not found"))
			return
		}

		if err != nil {
			log.Error("Failed to plan sessions", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to plan sessions"))
			return
		}

		log.Info("Sessions planned", slog.Int("drafts", len(plan.Drafts)))

		render.JSON(w, r, Response{
			Plan: *plan,
		})
	}
}
