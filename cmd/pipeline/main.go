package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "trip-data-pipeline/docs"
	"trip-data-pipeline/internal/api"
	"trip-data-pipeline/internal/api/handler"
	"trip-data-pipeline/internal/config"
	"trip-data-pipeline/internal/log"
	"trip-data-pipeline/internal/metrics"
	"trip-data-pipeline/internal/pipeline"
	"trip-data-pipeline/internal/store"
	"trip-data-pipeline/pkg/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := log.Init(cfg.Logging.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger := log.GetSugaredLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collectors := metrics.New()

	runner := pipeline.NewRunner(cfg.Paths.RawFile, logger)
	runner.CleanFile = cfg.Paths.CleanFile
	runner.ExcludedFile = cfg.Paths.ExcludedFile
	runner.SourceDir = filepath.Dir(cfg.Paths.RawFile)
	runner.OutputDir = filepath.Dir(cfg.Paths.CleanFile)
	runner.Metrics = collectors

	// The cleaning endpoint works without a database; run history and trips do not
	var apiStore handler.Store
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		logger.Warnw("Database unavailable, run history and trips endpoints disabled", "driver", cfg.Database.Driver, "error", err)
	} else {
		defer st.Close()
		runner.Store = st
		apiStore = st
	}

	r := router.New(logger, cfg.Server.AllowedOrigins...)
	api.RegisterRoutes(r, handler.New(cfg, runner, apiStore, collectors, logger), collectors.Handler())

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infow("Server started", "addr", server.Addr, "raw_file", cfg.Paths.RawFile)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Graceful shutdown failed", "error", err)
	}
}
