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

type OverrideWeekCreator interface {
	CreateOverrideWeek(ctx context.Context, req *api.OverrideWeekRequest) (*api.OverrideWeekResponse, error)
}

type Request struct {
	api.OverrideWeekRequest
}

type Response struct {
	response.Response
	OverrideWeek api.OverrideWeekResponse `json:"override_week,omitempty"`
}

func New(log *slog.Logger, creator OverrideWeekCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.override_weeks.create.New"

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

		if req.WeekDate == "" {
			log.Error("week_date is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "week_date is required"))
			return
		}

		week, err := creator.CreateOverrideWeek(r.Context(), &req.OverrideWeekRequest)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid override week", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), err.Error()))
			return
		}

		if errors.Is(err, response.ErrConflict) {
			log.Error("override week already exists for that week")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "override week already exists for that week"))
			return
		}

		if err != nil {
			log.Error("Failed to create override week", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create override week"))
			return
		}

		log.Info("Override week created", slog.String("id", week.ID), slog.String("week_key", week.WeekKey))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			OverrideWeek: *week,
		})
	}
}
