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

type PatternCreator interface {
	CreateAvailabilityPattern(ctx context.Context, req *api.AvailabilityPatternRequest) (*api.AvailabilityPatternResponse, error)
}

type Request struct {
	api.AvailabilityPatternRequest
}

type Response struct {
	response.Response
	Pattern api.AvailabilityPatternResponse `json:"pattern,omitempty"`
}

func New(log *slog.Logger, creator PatternCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability_patterns.create.New"

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

		if req.OwnerID == "" {
			log.Error("owner_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "owner_id is required"))
			return
		}

		pattern, err := creator.CreateAvailabilityPattern(r.Context(), &req.AvailabilityPatternRequest)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid pattern", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), err.Error()))
			return
		}

		if errors.Is(err, response.ErrConflict) {
			log.Error("pattern already exists for owner")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "pattern already exists for owner"))
			return
		}

		if err != nil {
			log.Error("Failed to create pattern", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create pattern"))
			return
		}

		log.Info("Pattern created", slog.String("id", pattern.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Pattern: *pattern,
		})
	}
}
