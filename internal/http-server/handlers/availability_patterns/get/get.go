package get

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

type PatternGetter interface {
	GetAvailabilityPattern(ctx context.Context, id string) (*api.AvailabilityPatternResponse, error)
}

type Response struct {
	response.Response
	Pattern *api.AvailabilityPatternResponse `json:"pattern,omitempty"`
}

func New(log *slog.Logger, getter PatternGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability_patterns.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		pattern, err := getter.GetAvailabilityPattern(r.Context(), id)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if err != nil {
			log.Error("Failed to get pattern", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get pattern"))
			return
		}

		log.Info("Pattern retrieved", slog.String("id", pattern.ID))

		render.JSON(w, r, Response{
			Pattern: pattern,
		})
	}
}
