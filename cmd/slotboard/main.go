package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/slotboard/slotboard/internal/app"
	"github.com/slotboard/slotboard/internal/config"
	"github.com/slotboard/slotboard/internal/controller"
	"github.com/slotboard/slotboard/internal/model"
	"github.com/slotboard/slotboard/internal/repository"
	"github.com/slotboard/slotboard/internal/repository/memory"
	"github.com/slotboard/slotboard/internal/seed"
	"github.com/slotboard/slotboard/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store repository.SlotStore
	switch cfg.Storage {
	case config.StorageMemory:
		store = memory.New()
		logger.Info("Using in-memory slot store")
	default:
		pool, err := pgxpool.New(ctx, cfg.DBDSN)
		if err != nil {
			logger.Fatal("Failed to create connection pool", zap.Error(err))
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("Failed to ping database", zap.Error(err))
		}

		migrator, err := app.NewMigrator(pool)
		if err != nil {
			logger.Fatal("Failed to create migrator", zap.Error(err))
		}
		if err := migrator.Run(ctx); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
		migrator.Close()

		store = repository.NewPostgresStore(pool, logger)
	}

	slotService := service.NewSlotService(store, logger)
	seeder := seed.New(store, logger, nil)

	if cfg.SeedOnStart {
		start := model.DateOf(time.Now().UTC())
		if _, err := seeder.Reseed(ctx, start, cfg.SeedDays); err != nil {
			logger.Error("Initial demo seeding failed", zap.Error(err))
		}
	}

	srv := controller.New(cfg.HTTPAddr, slotService, seeder, logger)

	logger.Info("Starting slotboard",
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.Storage),
		zap.String("addr", cfg.HTTPAddr))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", zap.Error(err))
		}
	}
}
