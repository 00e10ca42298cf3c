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

type OverrideWeekGetter interface {
	GetOverrideWeek(ctx context.Context, id string) (*api.OverrideWeekResponse, error)
	ListOverrideWeeks(ctx context.Context, ownerKind, ownerID string) ([]*api.OverrideWeekResponse, error)
}

type Response struct {
	response.Response
	OverrideWeeks []api.OverrideWeekResponse `json:"override_weeks,omitempty"`
	OverrideWeek  *api.OverrideWeekResponse  `json:"override_week,omitempty"`
}

func New(log *slog.Logger, getter OverrideWeekGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.override_weeks.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		if id != "" {
			week, err := getter.GetOverrideWeek(r.Context(), id)

			if errors.Is(err, response.ErrNotFound) {
				log.Error("resource not found")
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
				return
			}

			if err != nil {
				log.Error("Failed to get override week", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get override week"))
				return
			}

			log.Info("Override week retrieved", slog.String("id", week.ID))
			render.JSON(w, r, Response{
				OverrideWeek: week,
			})
			return
		}

		ownerKind := r.URL.Query().Get("owner_kind")
		ownerID := r.URL.Query().Get("owner_id")

		weeks, err := getter.ListOverrideWeeks(r.Context(), ownerKind, ownerID)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid owner filter", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), err.Error()))
			return
		}

		if err != nil {
			log.Error("Failed to list override weeks", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list override weeks"))
			return
		}

		log.Info("Override weeks retrieved", slog.Int("count", len(weeks)))

		result := make([]api.OverrideWeekResponse, len(weeks))
		for i, wk := range weeks {
			result[i] = *wk
		}
		render.JSON(w, r, Response{
			OverrideWeeks: result,
		})
	}
}
