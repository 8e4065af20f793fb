package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"agenda-sync/application/ports"
	"agenda-sync/domain/feed"
	"agenda-sync/infrastructure/config"
	"agenda-sync/infrastructure/di"
	"agenda-sync/interfaces/http/rest"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	logger := container.Logger

	if cfg.RulesFile != "" {
		watcher, err := config.NewRulesWatcher(cfg.RulesFile, logger)
		if err != nil {
			logger.Fatal("Failed to watch rules file", zap.String("path", cfg.RulesFile), zap.Error(err))
		}
		defer watcher.Stop()
		watcher.OnChange(func(rules feed.Rules) {
			container.Pipeline.UpdateRules(rules)
			logger.Info("Feed rules reloaded", zap.String("path", cfg.RulesFile))
		})
	}

	if cfg.SyncInterval > 0 {
		go runPeriodicSync(ctx, container, cfg.SyncInterval)
	}

	router := rest.NewRouter(
		container.Queries,
		container.Pipeline,
		container.Prometheus,
		cfg.EnableCORS,
		logger,
	)

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("storageMode", cfg.StorageMode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	container.Flush(shutdownCtx)
}

// runPeriodicSync runs the pipeline immediately and then on every tick until
// ctx is cancelled.
func runPeriodicSync(ctx context.Context, container *di.Container, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		result, err := container.Pipeline.Run(ctx)
		switch {
		case errors.Is(err, ports.ErrRunInProgress):
			container.Logger.Info("Sync skipped, previous run still in progress")
		case err != nil:
			container.Logger.Error("Periodic sync failed", zap.Error(err))
		default:
			container.Logger.Info("Periodic sync completed",
				zap.String("runId", result.RunID),
				zap.Int("roomsUpdated", result.RoomsUpdated),
				zap.Int("roomsSkipped", result.RoomsSkipped),
				zap.Int("roomsFailed", result.RoomsFailed),
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
