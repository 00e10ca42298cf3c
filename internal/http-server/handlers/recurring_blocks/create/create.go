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

type RecurringBlockCreator interface {
	CreateRecurringBlock(ctx context.Context, req *api.RecurringBlockRequest) (*api.RecurringBlockResponse, error)
}

type Request struct {
	api.RecurringBlockRequest
}

type Response struct {
	response.Response
	RecurringBlock api.RecurringBlockResponse `json:"recurring_block,omitempty"`
}

func New(log *slog.Logger, creator RecurringBlockCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.recurring_blocks.create.New"

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

		block, err := creator.CreateRecurringBlock(r.Context(), &req.RecurringBlockRequest)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid recurring block", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), err.Error()))
			return
		}

		if err != nil {
			log.Error("Failed to create recurring block", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create recurring block"))
			return
		}

		log.Info("Recurring block created", slog.String("id", block.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			RecurringBlock: *block,
		})
	}
}
