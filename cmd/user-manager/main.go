package main

// @title           User Manager API
// @version         1.0
// @description     Credential registration and bearer token authentication.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	"github.com/custodia-labs/user-manager/internal/adapters/driven/auth"
	"github.com/custodia-labs/user-manager/internal/adapters/driven/events"
	"github.com/custodia-labs/user-manager/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/user-manager/internal/adapters/driven/redis"
	"github.com/custodia-labs/user-manager/internal/adapters/driving/http"
	"github.com/custodia-labs/user-manager/internal/config"
	"github.com/custodia-labs/user-manager/internal/core/ports/driven"
	"github.com/custodia-labs/user-manager/internal/core/services"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("user-manager stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	logger.Info("user-manager starting", "version", version, "service", cfg.ServiceName)
	if cfg.UsesDevelopmentSecret() {
		logger.Warn("SECRET_KEY is unset, using the development secret")
	}

	// Cancelled on SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ===== Credential store and event sink (Redis if available, otherwise PostgreSQL) =====
	var (
		store    driven.CredentialStore
		notifier driven.EventNotifier
	)
	switch {
	case cfg.RedisURL != "":
		client, err := connectRedis(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer client.Close()

		store = redisadapter.NewCredentialStore(client)
		eventNotifier, err := redisadapter.NewEventNotifier(client, cfg.EventStream)
		if err != nil {
			return err
		}
		notifier = eventNotifier
		logger.Info("using redis credential store", "event_stream", eventNotifier.Stream())

	case cfg.DatabaseURL != "":
		db, err := connectPostgres(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		store = postgres.NewCredentialStore(db)
		notifier = events.NewLogNotifier(logger)
		logger.Info("using postgres credential store")

	default:
		return errors.New("one of REDIS_URL or DATABASE_URL must be set")
	}

	// ===== Driven adapters (infrastructure) =====
	hasher, err := auth.NewHasherWithCost(cfg.BcryptCost)
	if err != nil {
		return err
	}
	codec, err := auth.NewCodec(auth.CodecConfig{
		Secret:      []byte(cfg.SecretKey),
		ServiceName: cfg.ServiceName,
		Audience:    cfg.TokenAudience,
		DefaultTTL:  cfg.AccessTokenTTL,
	})
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}
	logger.Info("tokens configured", "issuer", codec.Issuer(), "audience", codec.Audience(), "ttl", cfg.AccessTokenTTL)

	// ===== Services (core business logic) =====
	authService := services.NewAuthService(services.AuthServiceConfig{
		Store:          store,
		Hasher:         hasher,
		Codec:          codec,
		Notifier:       notifier,
		Logger:         logger,
		AccessTokenTTL: cfg.AccessTokenTTL,
	})

	// ===== HTTP server =====
	server := http.NewServer(http.Config{
		Host:        cfg.Host,
		Port:        cfg.Port,
		Version:     version,
		ServiceName: cfg.ServiceName,
		RootPath:    cfg.RootPath,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	}, authService, store)

	return server.Start(ctx)
}

// connectRedis retries until Redis answers or STARTUP_TIMEOUT_SECONDS elapses
func connectRedis(ctx context.Context, cfg config.Config, logger *slog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	err = retry.Do(ctx, startupBackoff(cfg), func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis not ready, retrying", "addr", opts.Addr, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	logger.Info("redis connected", "addr", opts.Addr)
	return client, nil
}

// connectPostgres retries until PostgreSQL answers, then applies the schema
func connectPostgres(ctx context.Context, cfg config.Config, logger *slog.Logger) (*postgres.DB, error) {
	var db *postgres.DB
	err := retry.Do(ctx, startupBackoff(cfg), func(ctx context.Context) error {
		conn, err := postgres.Connect(ctx, postgres.DefaultConfig(cfg.DatabaseURL))
		if err != nil {
			logger.Warn("postgres not ready, retrying", "error", err)
			return retry.RetryableError(err)
		}
		db = conn
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("postgres connected and schema initialized")
	return db, nil
}

func startupBackoff(cfg config.Config) retry.Backoff {
	b := retry.NewExponential(200 * time.Millisecond)
	b = retry.WithCappedDuration(2*time.Second, b)
	return retry.WithMaxDuration(cfg.StartupTimeout, b)
}
