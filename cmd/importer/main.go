package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/arenahub/statsync/internal/app"
	"github.com/arenahub/statsync/internal/config"
	"github.com/arenahub/statsync/internal/observability"
	"github.com/arenahub/statsync/internal/platform/logging"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}
	job := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownUptrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownUptrace(shutdownCtx); err != nil {
			logger.Error("shutdown uptrace", "error", err)
		}
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("close app", "error", err)
		}
	}()

	if err := a.Run(ctx, job); err != nil {
		logger.Error("run job", "job", job, "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <%s|%s|%s|%s>\n", name, app.JobImportSL, app.JobImportLP, app.JobCheckUpdates, app.JobJoinSplits)
}
