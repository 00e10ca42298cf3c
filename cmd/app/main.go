package main

import (
	"studio-service/internal/config"
	patternCreate "studio-service/internal/http-server/handlers/availability_patterns/create"
	patternGet "studio-service/internal/http-server/handlers/availability_patterns/get"
	patternUpdate "studio-service/internal/http-server/handlers/availability_patterns/update"
	patternDelete "studio-service/internal/http-server/handlers/availability_patterns/delete"
	overrideCreate "studio-service/internal/http-server/handlers/override_weeks/create"
	overrideGet "studio-service/internal/http-server/handlers/override_weeks/get"
	overrideUpdate "studio-service/internal/http-server/handlers/override_weeks/update"
	overrideDelete "studio-service/internal/http-server/handlers/override_weeks/delete"
	dateBlockCreate "studio-service/internal/http-server/handlers/date_blocks/create"
	dateBlockGet "studio-service/internal/http-server/handlers/date_blocks/get"
	dateBlockUpdate "studio-service/internal/http-server/handlers/date_blocks/update"
	dateBlockDelete "studio-service/internal/http-server/handlers/date_blocks/delete"
	recurringCreate "studio-service/internal/http-server/handlers/recurring_blocks/create"
	recurringGet "studio-service/internal/http-server/handlers/recurring_blocks/get"
	recurringDelete "studio-service/internal/http-server/handlers/recurring_blocks/delete"
	roomCreate "studio-service/internal/http-server/handlers/rooms/create"
	roomGet "studio-service/internal/http-server/handlers/rooms/get"
	courseCreate "studio-service/internal/http-server/handlers/courses/create"
	courseGet "studio-service/internal/http-server/handlers/courses/get"
	courseUpdate "studio-service/internal/http-server/handlers/courses/update"
	sessionPlan "studio-service/internal/http-server/handlers/sessions/plan"
	sessionCreate "studio-service/internal/http-server/handlers/sessions/create"
	sessionGet "studio-service/internal/http-server/handlers/sessions/get"
	availCheck "studio-service/internal/http-server/handlers/availability/check"
	bookingCreate "studio-service/internal/http-server/handlers/bookings/create"
	bookingGet "studio-service/internal/http-server/handlers/bookings/get"
	bookingCancel "studio-service/internal/http-server/handlers/bookings/cancel"
	attendanceGenerate "studio-service/internal/http-server/handlers/attendance/generate"
	attendanceCheckin "studio-service/internal/http-server/handlers/attendance/checkin"
	svc "studio-service/internal/service"
	"studio-service/internal/storage/postgres"
	"studio-service/internal/lock"
	"studio-service/internal/token"
	slogpretty "studio-service/pkg/handlers/slogPretty"
	"studio-service/pkg/middleware/mwLogger"
	"studio-service/pkg/sl"
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	locker, err := lock.NewRedisLock(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	issuer := token.NewIssuer(cfg.Attendance.TokenTTL)

	service := svc.NewService(storage, locker, issuer, cfg.Attendance.CheckinBase)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	// Availability Patterns
	router.Post("/availability_patterns", patternCreate.New(log, service))
	router.Get("/availability_patterns/{id}", patternGet.New(log, service))
	router.Put("/availability_patterns/{id}", patternUpdate.New(log, service))
	router.Delete("/availability_patterns/{id}", patternDelete.New(log, service))

	// Override Weeks
	router.Post("/override_weeks", overrideCreate.New(log, service))
	router.Get("/override_weeks", overrideGet.New(log, service))
	router.Get("/override_weeks/{id}", overrideGet.New(log, service))
	router.Put("/override_weeks/{id}", overrideUpdate.New(log, service))
	router.Delete("/override_weeks/{id}", overrideDelete.New(log, service))

	// Date Blocks
	router.Post("/date_blocks", dateBlockCreate.New(log, service))
	router.Get("/date_blocks", dateBlockGet.New(log, service))
	router.Get("/date_blocks/{id}", dateBlockGet.New(log, service))
	router.Put("/date_blocks/{id}", dateBlockUpdate.New(log, service))
	router.Delete("/date_blocks/{id}", dateBlockDelete.New(log, service))

	// Recurring Blocks
	router.Post("/recurring_blocks", recurringCreate.New(log, service))
	router.Get("/recurring_blocks", recurringGet.New(log, service))
	router.Get("/recurring_blocks/{id}", recurringGet.New(log, service))
	router.Delete("/recurring_blocks/{id}", recurringDelete.New(log, service))

	// Rooms
	router.Post("/rooms", roomCreate.New(log, service))
	router.Get("/rooms/{id}", roomGet.New(log, service))

	// Courses
	router.Post("/courses", courseCreate.New(log, service))
	router.Get("/courses/{id}", courseGet.New(log, service))
	router.Put("/courses/{id}", courseUpdate.New(log, service))

	// Sessions
	router.Post("/sessions/plan", sessionPlan.New(log, service))
	router.Post("/sessions", sessionCreate.New(log, service))
	router.Get("/sessions/{id}", sessionGet.New(log, service))
	router.Post("/sessions/{id}/attendance_token", attendanceGenerate.New(log, service))

	// Availability
	router.Post("/availability/check", availCheck.New(log, service))

	// Bookings
	router.Post("/bookings", bookingCreate.New(log, service))
	router.Get("/bookings/{id}", bookingGet.New(log, service))
	router.Put("/bookings/{id}/cancel", bookingCancel.New(log, service))

	// Attendance
	router.Post("/attendance/checkin", attendanceCheckin.New(log, service))

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if storage != nil {
		if err := storage.Close(); err != nil {
			log.Error("Failed to close storage", sl.Err(err))
		} else {
			log.Info("Storage closed")
		}
	} else {
		log.Debug("Storage is nil, nothing to close")
	}

	if locker != nil {
		if err := locker.Close(); err != nil {
			log.Error("Failed to close locker", sl.Err(err))
		} else {
			log.Info("Locker closed")
		}
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
