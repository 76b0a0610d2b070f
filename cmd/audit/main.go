package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gradeaudit/internal/app"
	"gradeaudit/internal/config"
	"gradeaudit/internal/logger"
)

func main() {
	cfg := config.MustLoad()

	log := logger.SetupLogger(cfg.Env, os.Stderr)
	slog.SetDefault(log)
	slog.Debug("config loaded",
		"env", cfg.Env,
		"canvas_url", cfg.Canvas.BaseURL,
		"time_zone", cfg.Audit.TimeZone,
		"grace_period", cfg.Audit.GracePeriod.String(),
		"now_policy", cfg.Audit.NowPolicy,
		"score_policy", cfg.Audit.ScorePolicy,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runner, err := app.NewRunner(cfg, log)
	if err != nil {
		slog.Error("failed to set up audit", "err", err)
		os.Exit(1)
	}

	cli := commandLine{
		runner: runner,
		webURL: cfg.Canvas.WebURL,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	if err := cli.run(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			slog.Error("audit failed", "err", err)
		}
		os.Exit(1)
	}
}
