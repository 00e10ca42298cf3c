package create

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

type CourseCreator interface {
	CreateCourse(ctx context.Context, req *api.CourseRequest) (*api.CourseResponse, error)
}

type Request struct {
	api.CourseRequest
}

type Response struct {
	response.Response
	Course api.CourseResponse `json:"course,omitempty"`
}

func New(log *slog.Logger, creator CourseCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.courses.create.New"

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

		if req.LeadInstructorID == "" {
			log.Error("lead_instructor_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "lead_instructor_id is required"))
			return
		}

		course, err := creator.CreateCourse(r.Context(), &req.CourseRequest)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid course", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), err.Error()))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("default room not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "default room not found"))
			return
		}

		if err != nil {
			log.Error("Failed to create course", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create course"))
			return
		}

		log.Info("Course created", slog.String("id", course.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Course: *course,
		})
	}
}
