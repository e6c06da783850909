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

	"github.com/binhbb2204/BookHub/internal/api"
	"github.com/binhbb2204/BookHub/internal/events"
	"github.com/binhbb2204/BookHub/internal/library"
	"github.com/binhbb2204/BookHub/internal/ratelimit"
	"github.com/binhbb2204/BookHub/pkg/config"
	"github.com/binhbb2204/BookHub/pkg/database"
	"github.com/binhbb2204/BookHub/pkg/logger"
	"github.com/gin-gonic/gin"
)

func openStore(cfg *config.Config, log *logger.Logger) (library.Store, error) {
	switch cfg.StoreDriver {
	case "sqlite", "":
		return library.NewSQLStore(database.DB), nil
	case "badger":
		log.Info("opening_badger_store", "path", cfg.BadgerPath)
		return library.NewBadgerStore(cfg.BadgerPath)
	case "memory":
		log.Warn("using_memory_store", "message", "library data is lost on restart")
		return library.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func main() {
	cfg := config.Load()

	logger.Init(logger.LogLevel(cfg.LogLevel), cfg.LogFormat == "json", os.Stdout)
	log := logger.GetLogger().WithContext("component", "api_server")
	log.Info("starting_api_server", "version", "1.0.0", "store", cfg.StoreDriver)

	// users always live in sqlite
	if err := database.InitDatabase(cfg.DBPath); err != nil {
		log.Error("failed_to_initialize_database", "error", err.Error(), "path", cfg.DBPath)
		os.Exit(1)
	}
	defer database.Close()

	store, err := openStore(cfg, log)
	if err != nil {
		log.Error("failed_to_open_store", "error", err.Error(), "driver", cfg.StoreDriver)
		os.Exit(1)
	}
	defer store.Close()

	if cfg.UsingDefaultSecret() {
		log.Warn("using_default_jwt_secret", "message", "Set JWT_SECRET environment variable in production!")
	}

	threshold := cfg.RecommendThreshold
	if threshold < library.MinRating || threshold > library.MaxRating {
		log.Warn("invalid_recommend_threshold", "value", threshold, "using", library.DefaultRecommendThreshold)
		threshold = library.DefaultRecommendThreshold
	}

	service := library.NewService(store, library.Options{
		RecommendThreshold: threshold,
		StoreTimeout:       cfg.StoreTimeout,
		Logger:             logger.GetLogger(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := events.NewHub(logger.GetLogger())
	go hub.Run(ctx)

	limiter := ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Options{
		JWTSecret:   cfg.JWTSecret,
		FrontendURL: cfg.FrontendURL,
		Service:     service,
		Hub:         hub,
		Limiter:     limiter,
		Logger:      logger.GetLogger(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("api_server_listening", "port", cfg.APIPort, "frontend_url", cfg.FrontendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		log.Error("failed_to_start_api_server", "error", err.Error())
		store.Close()
		database.Close()
		os.Exit(1)
	case <-ctx.Done():
		log.Info("shutdown_signal_received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown_timeout_forcing_stop", "error", err.Error())
	}
	log.Info("api_server_stopped")
}
