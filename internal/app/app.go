// Package app wires configuration, adapters, and feature handlers into a
// runnable HTTP service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"helpcenter/backend/features/index"
	"helpcenter/backend/features/query"
	"helpcenter/backend/internal/config"
	"helpcenter/backend/internal/middleware"
	"helpcenter/backend/internal/vector"
)

// ReadinessChecker reports whether the vector index is reachable.
type ReadinessChecker interface {
	Stats(ctx context.Context) (vector.Stats, error)
}

type App struct {
	Handler http.Handler
	port    int
}

func New(cfg *config.Config, queryHandler *query.Handler, indexHandler *index.Handler, ready ReadinessChecker) *App {
	wrap := func(h http.HandlerFunc) http.Handler {
		return middleware.CorrelationID(
			middleware.CORS(cfg.AllowedOrigins,
				middleware.Deadline(cfg.RequestTimeout, h)))
	}
	// Mutating index endpoints sit behind the admin token.
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.CorrelationID(
			middleware.CORS(cfg.AllowedOrigins,
				middleware.AdminToken(cfg.AdminToken,
					middleware.Deadline(cfg.RequestTimeout, h))))
	}

	mux := http.NewServeMux()

	mux.Handle("POST /query", wrap(queryHandler.Ask))

	mux.Handle("POST /index/populate", admin(indexHandler.Populate))
	mux.Handle("DELETE /index/clear", admin(indexHandler.Clear))
	mux.Handle("GET /index/stats", wrap(indexHandler.GetStats))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /ready", wrap(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ready == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready"}`))
			return
		}
		if _, err := ready.Stats(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}))

	return &App{Handler: mux, port: cfg.ServerPort}
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
