// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/transcribe-helpers/internal/api"
	"github.com/andresuchdata/transcribe-helpers/internal/config"
	"github.com/andresuchdata/transcribe-helpers/internal/secrets"
	"github.com/andresuchdata/transcribe-helpers/internal/service"
	"github.com/andresuchdata/transcribe-helpers/internal/storage"
	"github.com/andresuchdata/transcribe-helpers/internal/workdir"
	"github.com/andresuchdata/transcribe-helpers/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Configure(cfg.App.LogLevel, cfg.App.LogFormat)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := storage.New(storage.Backend(cfg.Storage.Backend))
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize object storage")
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	projSecrets, err := secrets.NewLoader(cfg.LoaderConfig(), store).Load(loadCtx)
	cancelLoad()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load secrets")
	}

	wd, err := workdir.New(cfg.App.WorkingDir)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to prepare working directory")
	}

	// Initialize services
	objectService := service.NewObjectService(store, wd, projSecrets, cfg.Storage.Options(), cfg.Storage.DefaultBucket)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{ObjectService: objectService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("backend", cfg.Storage.Backend).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
