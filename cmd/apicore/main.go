package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fixlab/api-core/internal/config"
	"github.com/fixlab/api-core/internal/meter"
	"github.com/fixlab/api-core/internal/repository"
	"github.com/fixlab/api-core/internal/server"
	"github.com/fixlab/api-core/internal/storage"
	"github.com/fixlab/api-core/internal/store"
)

func main() {
	// Load env if it exists
	godotenv.Load()

	cfg, err := config.Load("config.json")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	var principals store.PrincipalStore
	var postgres *storage.Postgres

	if cfg.Database.Enabled {
		postgres, err = storage.NewPostgres(cfg.Database.DSN)
		if err != nil {
			logger.Fatal("failed to connect to Postgres", zap.Error(err))
		}
		defer postgres.Close()

		if err := postgres.AutoMigrate(); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}

		principals = repository.NewPrincipalRepository(postgres)
		logger.Info("using Postgres principal store")
	} else {
		principals = store.NewMemoryStore()
		logger.Info("using in-memory principal store")
	}

	var redis *storage.RedisClient
	if cfg.Redis.Enabled {
		redis, err = storage.NewRedis(cfg.Redis.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer redis.Close()

		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.GetRedisAddr()))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rollover := meter.NewRollover(principals, logger, cfg.Meter.RolloverSchedule)
	if err := rollover.Start(ctx); err != nil {
		logger.Fatal("failed to start usage rollover", zap.Error(err))
	}

	srv := server.New(cfg, logger, principals, redis, postgres)

	go func() {
		addr := ":" + cfg.Server.Port
		if err := srv.Run(addr); err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
