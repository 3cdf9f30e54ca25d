package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cvmatch-backend/internal/shared/config"
	"cvmatch-backend/internal/shared/server"
	"cvmatch-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	router := server.NewRouter(cfg)

	srv := &http.Server{
		Addr:              server.Addr(cfg),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		telemetry.Info("server.start", map[string]any{
			"addr": srv.Addr,
			"env":  cfg.Env,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			telemetry.Error("server.failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Info("server.shutdown", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Error("server.shutdown.failed", map[string]any{"err": err.Error()})
	}
}
