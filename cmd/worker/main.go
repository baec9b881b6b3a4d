package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"factlog.app/api/common/crypto"
	"factlog.app/api/common/id"
	"factlog.app/api/common/logger"
	"factlog.app/api/core/config"
	"factlog.app/api/core/db"
	"factlog.app/api/internal/queue"
	"factlog.app/api/internal/service"
	"factlog.app/api/internal/store"
	"factlog.app/api/internal/worker"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", banner)
	logger.Setup(cfg)

	slog.InfoContext(ctx, "factlog worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Dispatch.RedisGroup,
		"consumer_name", cfg.Dispatch.RedisConsumer)

	// Different node ID than the server so snowflakes never collide
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	cryptoSvc, err := crypto.New(cfg.Encryption.MasterKey)
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize encryption", "error", err)
		os.Exit(1)
	}

	redisOpts, err := redis.ParseURL(cfg.Dispatch.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Dispatch.RedisStream)

	consumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
		Stream:      cfg.Dispatch.RedisStream,
		Group:       cfg.Dispatch.RedisGroup,
		Consumer:    cfg.Dispatch.RedisConsumer,
		DLQStream:   cfg.Dispatch.RedisDLQ,
		BatchSize:   1, // dispatch one message at a time, the rate limiter paces us anyway
		Block:       5 * time.Second,
		MaxAttempts: cfg.Dispatch.MaxAttempts,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	stores := store.NewStores(database.Pool())
	integrations := service.NewIntegrationService(stores.Integrations(), cryptoSvc)
	settings := service.NewSettingService(stores.Settings(), cryptoSvc)

	dispatcher := worker.NewSlackDispatcher(stores.Facts(), integrations, settings, worker.NewSlackClient, slog.Default())

	w := worker.New(consumer, dispatcher, worker.Config{
		MaxAttempts:  cfg.Dispatch.MaxAttempts,
		BaseBackoff:  cfg.Dispatch.BaseBackoff,
		RateInterval: cfg.Dispatch.RateInterval,
	})

	reclaimer := worker.NewRedisReclaimer(redisClient, worker.RedisReclaimerConfig{
		Stream:    cfg.Dispatch.RedisStream,
		Group:     cfg.Dispatch.RedisGroup,
		Consumer:  cfg.Dispatch.RedisConsumer + "-reclaimer",
		MinIdle:   5 * time.Minute,
		Interval:  1 * time.Minute,
		BatchSize: 10,
	}, consumer, w.ProcessMessage)

	errCh := make(chan error, 2)
	go func() {
		errCh <- w.Run(ctx)
	}()
	go func() {
		reclaimer.Run(ctx)
		errCh <- nil
	}()

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Reclaimer first (quick), then the worker, which may be mid-dispatch
	reclaimer.Stop()
	w.Stop()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case err := <-errCh:
		if err != nil {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

const banner = `
███████╗ █████╗  ██████╗████████╗██╗      ██████╗  ██████╗
██╔════╝██╔══██╗██╔════╝╚══██╔══╝██║     ██╔═══██╗██╔════╝
█████╗  ███████║██║        ██║   ██║     ██║   ██║██║  ███╗
██╔══╝  ██╔══██║██║        ██║   ██║     ██║   ██║██║   ██║
██║     ██║  ██║╚██████╗   ██║   ███████╗╚██████╔╝╚██████╔╝
╚═╝     ╚═╝  ╚═╝ ╚═════╝   ╚═╝   ╚══════╝ ╚═════╝  ╚═════╝
`
