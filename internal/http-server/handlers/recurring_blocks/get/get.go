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

type RecurringBlockGetter interface {
	GetRecurringBlock(ctx context.Context, id string) (*api.RecurringBlockResponse, error)
	ListRecurringBlocks(ctx context.Context, ownerKind, ownerID string) ([]*api.RecurringBlockResponse, error)
}

type Response struct {
	response.Response
	RecurringBlocks []api.RecurringBlockResponse `json:"recurring_blocks,omitempty"`
	RecurringBlock  *api.RecurringBlockResponse  `json:"recurring_block,omitempty"`
}

func New(log *slog.Logger, getter RecurringBlockGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.recurring_blocks.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		if id != "" {
			block, err := getter.GetRecurringBlock(r.Context(), id)

			if errors.Is(err, response.ErrNotFound) {
				log.Error("resource not found")
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
				return
			}

			if err != nil {
				log.Error("Failed to get recurring block", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get recurring block"))
				return
			}

			log.Info("Recurring block retrieved", slog.String("id", block.ID))
			render.JSON(w, r, Response{
				RecurringBlock: block,
			})
			return
		}

		ownerKind := r.URL.Query().Get("owner_kind")
		ownerID := r.URL.Query().Get("owner_id")

		blocks, err := getter.ListRecurringBlocks(r.Context(), ownerKind, ownerID)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid owner filter", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), err.Error()))
			return
		}

		if err != nil {
			log.Error("Failed to list recurring blocks", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list recurring blocks"))
			return
		}

		log.Info("Recurring blocks retrieved", slog.Int("count", len(blocks)))

		result := make([]api.RecurringBlockResponse, len(blocks))
		for i, b := range blocks {
			result[i] = *b
		}
		render.JSON(w, r, Response{
			RecurringBlocks: result,
		})
	}
}
