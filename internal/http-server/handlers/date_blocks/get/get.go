package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"studio-service/api"
	"studio-service/pkg/response"
	"studio-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type DateBlockGetter interface {
	GetDateBlock(ctx context.Context, id string) (*api.DateBlockResponse, error)
	ListDateBlocks(ctx context.Context, roomID *string, from, to *time.Time) ([]*api.DateBlockResponse, error)
}

type Response struct {
	response.Response
	DateBlocks []api.DateBlockResponse `json:"date_blocks,omitempty"`
	DateBlock  *api.DateBlockResponse  `json:"date_block,omitempty"`
}

func New(log *slog.Logger, getter DateBlockGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.date_blocks.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		if id != "" {
			block, err := getter.GetDateBlock(r.Context(), id)

			if errors.Is(err, response.ErrNotFound) {
				log.Error("resource not found")
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
				return
			}

			if err != nil {
				log.Error("Failed to get date block", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get date block"))
				return
			}

			log.Info("Date block retrieved", slog.String("id", block.ID))
			render.JSON(w, r, Response{
				DateBlock: block,
			})
			return
		}

		var roomID *string
		if v := r.URL.Query().Get("room_id"); v != "" {
			roomID = &v
		}

		var from, to *time.Time
		if v := r.URL.Query().Get("from"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				from = &t
			}
		}
		if v := r.URL.Query().Get("to"); v != "" {
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				to = &t
			}
		}

		blocks, err := getter.ListDateBlocks(r.Context(), roomID, from, to)

		if err != nil {
			log.Error("Failed to list date blocks", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list date blocks"))
			return
		}

		log.Info("Date blocks retrieved", slog.Int("count", len(blocks)))

		result := make([]api.DateBlockResponse, len(blocks))
		for i, b := range blocks {
			result[i] = *b
		}
		render.JSON(w, r, Response{
			DateBlocks: result,
		})
	}
}
