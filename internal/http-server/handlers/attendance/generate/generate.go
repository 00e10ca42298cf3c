package generate

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

type TokenGenerator interface {
	GenerateAttendanceToken(ctx context.Context, sessionID string) (*api.AttendanceTokenResponse, error)
}

type Response struct {
	response.Response
	AttendanceToken *api.AttendanceTokenResponse `json:"attendance_token,omitempty"`
}

func New(log *slog.Logger, generator TokenGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.attendance.generate.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sessionID := chi.URLParam(r, "id")

		token, err := generator.GenerateAttendanceToken(r.Context(), sessionID)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("session not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "session not found"))
			return
		}

		if err != nil {
			log.Error("Failed to generate attendance token", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to generate attendance token"))
			return
		}

		log.Info("Attendance token generated", slog.String("session_id", sessionID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			AttendanceToken: token,
		})
	}
}
