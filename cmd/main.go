/**
 * @description
 * This is the main entry point for the subscription-service.
 * It initializes and wires together all the components of the application,
 * including configuration, database connection, cache, message broker,
 * repository, services, and the HTTP router.
 *
 * Usage:
 *   main        start the HTTP server
 *   main seed   insert the admin account and default plans, then exit
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/subtrack/subscription-service/internal/api"
	"github.com/subtrack/subscription-service/internal/app"
	"github.com/subtrack/subscription-service/internal/auth"
	"github.com/subtrack/subscription-service/internal/cache"
	"github.com/subtrack/subscription-service/internal/config"
	"github.com/subtrack/subscription-service/internal/store"
	"github.com/subtrack/subscription-service/pkg/rabbitmq"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := connectDatabase(ctx, cfg)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	repository := store.NewRepository(dbpool)

	if cfg.AutoMigrate {
		if err := repository.EnsureSchema(ctx); err != nil {
			logger.Error("database migration failed", "error", err)
			os.Exit(1)
		}
		logger.Info("database schema is up to date")
	}

	if len(os.Args) > 1 && os.Args[1] == "seed" {
		if err := runSeed(ctx, repository, cfg, logger); err != nil {
			logger.Error("seed failed", "error", err)
			os.Exit(1)
		}
		return
	}

	redisClient := connectRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var planCache app.PlanCache = cache.NoopPlanCache{}
	var loginLimiter app.LoginLimiter = cache.NoopRateLimiter{}
	if redisClient != nil {
		planCache = cache.NewRedisPlanCache(redisClient, cfg.RedisKeyPrefix, cfg.PlanCacheTTL())
		loginLimiter = cache.NewRedisLoginRateLimiter(redisClient, cfg.RedisKeyPrefix, cfg.LoginRateLimitPerMinute, time.Minute)
	}

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	tokens := auth.NewTokenManager(cfg.JWTSecretKey, cfg.JWTIssuer, cfg.AccessTokenTTL())

	// Initialize application layers
	planService := app.NewPlanService(repository, planCache, logger)
	subscriptionService := app.NewSubscriptionService(repository, publisher, cfg.SubscriptionEventsExchange, logger)
	userService := app.NewUserService(repository, tokens, loginLimiter, logger)
	handler := api.NewHandler(planService, subscriptionService, userService, logger)
	router := api.NewRouter(handler, tokens, cfg.AllowedOrigins())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Set up channel to listen for OS signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}

func connectDatabase(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MinConns = int32(cfg.DBMinConns)
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Use simple protocol to avoid prepared statement cache collisions behind a pooler.
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := dbpool.Ping(pingCtx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return dbpool, nil
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// plan cache and login rate limiting are then disabled.
func connectRedis(ctx context.Context, cfg config.Config, logger *slog.Logger) *redis.Client {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		logger.Warn("redis url missing; plan cache and login rate limiting disabled", "env", "REDIS_URL")
		return nil
	}

	options, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn("redis url parse failed; plan cache and login rate limiting disabled", "error", err)
		return nil
	}

	client := redis.NewClient(options)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis ping failed; plan cache and login rate limiting disabled", "error", err)
		client.Close()
		return nil
	}

	logger.Info("redis connected")
	return client
}

func newPublisher(cfg config.Config, logger *slog.Logger) rabbitmq.Publisher {
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		logger.Warn("rabbitmq url missing; subscription events will be logged only", "env", "RABBITMQ_URL")
		return &rabbitmq.EventProducerFallback{}
	}

	producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		logger.Warn("rabbitmq unavailable; subscription events will be logged only", "error", err)
		return &rabbitmq.EventProducerFallback{}
	}

	logger.Info("rabbitmq connected", "exchange", cfg.SubscriptionEventsExchange)
	return producer
}

func runSeed(ctx context.Context, repository *store.Repository, cfg config.Config, logger *slog.Logger) error {
	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	result, err := repository.Seed(ctx, cfg.SeedAdminEmail, hash)
	if err != nil {
		return err
	}

	logger.Info("seed complete", "users_created", result.UsersCreated, "plans_created", result.PlansCreated)
	return nil
}
