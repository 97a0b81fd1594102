package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/lumenshop/storefront/config"
	"github.com/lumenshop/storefront/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting storefront gateway",
		"addr", cfg.HTTP.Addr,
		"backend", cfg.Backend.BaseURL,
		"session_store", string(cfg.Session.Store),
		"cache_enabled", cfg.Cache.Enabled,
		"dev", cfg.IsDev)

	redisClient, err := connectRedisIfNeeded(&cfg, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	}

	services, err := bootstrap.BuildServices(bootstrap.ServiceSetup{
		Config:      &cfg,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	server := bootstrap.StartHTTPServer(&bootstrap.HTTPServerConfig{
		Config:   &cfg,
		Services: services,
		Logger:   logger,
	})

	// Block until SIGINT/SIGTERM, then drain in-flight requests.
	stopCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-stopCtx.Done()

	return bootstrap.ShutdownHTTPServer(bootstrap.ShutdownConfig{
		Context: ctx,
		Server:  server,
		Timeout: cfg.HTTP.ShutdownTimeout,
		Logger:  logger,
	})
}

//nolint:ireturn // returning redis.UniversalClient keeps sentinel/cluster support flexible.
func connectRedisIfNeeded(cfg *config.AppConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	if !cfg.NeedsRedis() {
		return nil, nil
	}
	client, err := bootstrap.ConnectRedis(bootstrap.RedisSetup{
		RedisConfig: cfg.Redis,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}
