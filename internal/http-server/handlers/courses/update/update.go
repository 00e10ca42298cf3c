package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"studio-service/api"
	"studio-service/pkg/response"
	"studio-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type CourseUpdater interface {
	UpdateCourse(ctx context.Context, id string, req *api.CourseRequest) (*api.CourseResponse, error)
}

type Request struct {
	api.CourseRequest
}

type Response struct {
	response.Response
	Course api.CourseResponse `json:"course,omitempty"`
}

func New(log *slog.Logger, updater CourseUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.courses.update.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		course, err := updater.UpdateCourse(r.Context(), id, &req.CourseRequest)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if errors.Is(err, response.ErrCourseLocked) {
			log.Error("course already has scheduled sessions")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "course has scheduled sessions and cannot be edited"))
			return
		}

		if err != nil {
			log.Error("Failed to update course", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to update course"))
			return
		}

		log.Info("Course updated", slog.String("id", course.ID))

		render.JSON(w, r, Response{
			Course: *course,
		})
	}
}
