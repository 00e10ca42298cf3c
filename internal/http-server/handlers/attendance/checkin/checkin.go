package checkin

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

type CheckinProcessor interface {
	Checkin(ctx context.Context, req *api.CheckinRequest) (*api.CheckinResponse, error)
}

type Request struct {
	api.CheckinRequest
}

type Response struct {
	response.Response
	Checkin *api.CheckinResponse `json:"checkin,omitempty"`
}

func New(log *slog.Logger, processor CheckinProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.attendance.checkin.New"

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

		if req.Token == "" || req.ClientID == "" {
			log.Error("token or client_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "token and client_id are required"))
			return
		}

		result, err := processor.Checkin(r.Context(), &req.CheckinRequest)

		if errors.Is(err, response.ErrTokenExpired) {
			log.Error("attendance token is expired")
			w.WriteHeader(http.StatusGone)
			render.JSON(w, r, response.Error(string(response.TOKEN_EXPIRED), "attendance token is expired"))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("token or booking not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "token or booking not found"))
			return
		}

		if err != nil {
			log.Error("Failed to process check-in", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to process check-in"))
			return
		}

		log.Info("Check-in recorded",
			slog.String("session_id", result.SessionID),
			slog.String("client_id", req.ClientID),
		)

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Checkin: result,
		})
	}
}
