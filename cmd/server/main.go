package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gradeaudit/internal/app"
	"gradeaudit/internal/config"
	"gradeaudit/internal/httpapi"
	"gradeaudit/internal/logger"
)

func main() {
	cfg := config.MustLoad()

	log := logger.SetupLogger(cfg.Env, os.Stdout)
	slog.SetDefault(log)

	slog.Info("config loaded",
		"env", cfg.Env,
		"addr", cfg.HTTPServer.Address,
		"canvas_url", cfg.Canvas.BaseURL,
		"time_zone", cfg.Audit.TimeZone,
		"workers", cfg.Audit.Workers,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner, err := app.NewRunner(cfg, log)
	if err != nil {
		slog.Error("failed to set up audit", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      httpapi.NewRouter(httpapi.NewHandler(runner)),
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		slog.Info("starting audit http server", "addr", cfg.HTTPServer.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("audit server error", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down audit server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("audit server shutdown error", "err", err)
	}
}
