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

type RoomCreator interface {
	CreateRoom(ctx context.Context, req *api.RoomRequest) (*api.RoomResponse, error)
}

type Request struct {
	api.RoomRequest
}

type Response struct {
	response.Response
	Room api.RoomResponse `json:"room,omitempty"`
}

func New(log *slog.Logger, creator RoomCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.rooms.create.New"

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

		if req.Name == "" {
			log.Error("name is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "name is required"))
			return
		}

		room, err := creator.CreateRoom(r.Context(), &req.RoomRequest)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid room", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), err.Error()))
			return
		}

		if err != nil {
			log.Error("Failed to create room", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create room"))
			return
		}

		log.Info("Room created", slog.String("id", room.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Room: *room,
		})
	}
}
