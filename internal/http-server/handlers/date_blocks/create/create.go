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

type DateBlockCreator interface {
	CreateDateBlock(ctx context.Context, req *api.DateBlockRequest) (*api.DateBlockResponse, error)
}

type Request struct {
	api.DateBlockRequest
}

type Response struct {
	response.Response
	DateBlock api.DateBlockResponse `json:"date_block,omitempty"`
}

func New(log *slog.Logger, creator DateBlockCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.date_blocks.create.New"

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

		if req.RoomID == "" {
			log.Error("room_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "room_id is required"))
			return
		}

		block, err := creator.CreateDateBlock(r.Context(), &req.DateBlockRequest)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid date block", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), err.Error()))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("room not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "room not found"))
			return
		}

		if err != nil {
			log.Error("Failed to create date block", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create date block"))
			return
		}

		log.Info("Date block created", slog.String("id", block.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			DateBlock: *block,
		})
	}
}
