package check

import (
	"context"
	"log/slog"
	"net/http"

	"studio-service/api"
	"studio-service/pkg/response"
	"studio-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, req *api.AvailabilityCheckRequest) (*api.AvailabilityCheckResponse, error)
}

type Request struct {
	api.AvailabilityCheckRequest
}

type Response struct {
	response.Response
	Result api.AvailabilityCheckResponse `json:"result"`
}

func New(log *slog.Logger, checker AvailabilityChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.check.New"

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

		if req.RoomID == "" || req.InstructorID == "" {
			log.Error("room_id or instructor_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "room_id and instructor_id are required"))
			return
		}

		result, err := checker.CheckAvailability(r.Context(), &req.AvailabilityCheckRequest)

		if err != nil {
			log.Error("Failed to check availability", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to check availability"))
			return
		}

		log.Info("Availability checked",
			slog.Bool("allowed", result.Allowed),
			slog.String("reason", result.Reason),
		)

		render.JSON(w, r, Response{
			Result: *result,
		})
	}
}
