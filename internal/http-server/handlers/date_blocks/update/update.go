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

type DateBlockUpdater interface {
	UpdateDateBlock(ctx context.Context, id string, req *api.DateBlockRequest) (*api.DateBlockResponse, error)
}

type Request struct {
	api.DateBlockRequest
}

type Response struct {
	response.Response
	DateBlock api.DateBlockResponse `json:"date_block,omitempty"`
}

func New(log *slog.Logger, updater DateBlockUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.date_blocks.update.New"

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

		block, err := updater.UpdateDateBlock(r.Context(), id, &req.DateBlockRequest)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if err != nil {
			log.Error("Failed to update date block", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to update date block"))
			return
		}

		log.Info("Date block updated", slog.String("id", block.ID))

		render.JSON(w, r, Response{
			DateBlock: *block,
		})
	}
}
