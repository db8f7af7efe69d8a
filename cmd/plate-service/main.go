package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/basharagb/images-Plate-Recognitions/internal/config"
	"github.com/basharagb/images-Plate-Recognitions/internal/db"
	httphandler "github.com/basharagb/images-Plate-Recognitions/internal/http"
	"github.com/basharagb/images-Plate-Recognitions/internal/logger"
	"github.com/basharagb/images-Plate-Recognitions/internal/repository"
	"github.com/basharagb/images-Plate-Recognitions/internal/service"
	"github.com/basharagb/images-Plate-Recognitions/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	detectionRepo := repository.NewDetectionRepository(database)
	detectionService := service.NewDetectionService(appLogger)
	batchProcessor := service.NewBatchProcessor(detectionService, cfg.Recognition.BatchItemDelay, appLogger)

	// Raw-response archive is optional; the service runs without it.
	archive, err := storage.NewResponseArchiveFromEnv()
	if err != nil && !errors.Is(err, storage.ErrNotConfigured) {
		appLogger.Fatal().Err(err).Msg("failed to initialize response archive")
	}
	if err != nil {
		appLogger.Warn().Msg("response archive not configured, raw responses will not be retained")
	}

	handler := httphandler.NewHandler(detectionService, batchProcessor, detectionRepo, archive, cfg, appLogger)
	router := httphandler.NewRouter(handler, cfg.Environment, database, appLogger)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().
		Str("addr", addr).
		Str("default_policy", string(cfg.Recognition.DefaultPolicy)).
		Msg("starting plate recognition service")

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error().Err(err).Msg("failed to start server")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server exited")
}
