package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/alanyoungcy/polyarb/internal/blob/s3"
	"github.com/alanyoungcy/polyarb/internal/cache/redis"
	"github.com/alanyoungcy/polyarb/internal/config"
	"github.com/alanyoungcy/polyarb/internal/domain"
	"github.com/alanyoungcy/polyarb/internal/notify"
	"github.com/alanyoungcy/polyarb/internal/server/handler"
	"github.com/alanyoungcy/polyarb/internal/store/postgres"
)

// Dependencies bundles the optional backends and the notifier. Every backend
// field is nil when the matching config section is disabled.
type Dependencies struct {
	// Redis
	CooldownStore domain.CooldownStore
	LockManager   domain.LockManager

	// Postgres
	OpportunityStore domain.OpportunityStore

	// Object storage
	BlobWriter domain.BlobWriter
	BlobReader domain.BlobReader

	Notifier *notify.Notifier

	// HealthChecks probes every connected backend for /api/health.
	HealthChecks map[string]handler.HealthCheck
}

// Wire constructs the configured backends and returns them together with a
// cleanup function that releases them in reverse order.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{HealthChecks: map[string]handler.HealthCheck{}}

	// --- PostgreSQL ---
	if cfg.Supabase.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Supabase.DSN,
			Host:     cfg.Supabase.Host,
			Port:     cfg.Supabase.Port,
			Database: cfg.Supabase.Database,
			User:     cfg.Supabase.User,
			Password: cfg.Supabase.Password,
			SSLMode:  cfg.Supabase.SSLMode,
			MaxConns: cfg.Supabase.PoolMaxConns,
			MinConns: cfg.Supabase.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Supabase.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.OpportunityStore = postgres.NewOpportunityStore(pgClient.Pool())
		deps.HealthChecks["postgres"] = pgClient.Ping
		logger.InfoContext(ctx, "postgres connected")
	}

	// --- Redis ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
			KeyPrefix:  cfg.Redis.KeyPrefix,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		if cfg.Scan.CooldownBackend == "redis" {
			deps.CooldownStore = redis.NewCooldownStore(redisClient, cfg.Scan.Cooldown())
		}
		deps.LockManager = redis.NewLockManager(redisClient)
		deps.HealthChecks["redis"] = redisClient.Ping
		logger.InfoContext(ctx, "redis connected", slog.String("addr", cfg.Redis.Addr))
	}

	// --- S3 blob storage ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
			Prefix:         cfg.S3.Prefix,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		deps.BlobWriter = s3blob.NewWriter(s3Client)
		deps.BlobReader = s3blob.NewReader(s3Client)
		deps.HealthChecks["s3"] = s3Client.Health
	}

	deps.Notifier = notify.NewNotifier(buildSenders(cfg.Notify), cfg.Notify.Events, logger)

	return deps, cleanup, nil
}

// buildSenders returns one sender per configured channel.
func buildSenders(cfg config.NotifyConfig) []notify.Sender {
	var senders []notify.Sender
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.TelegramToken, cfg.TelegramChatID))
	}
	if cfg.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.DiscordWebhookURL))
	}
	return senders
}
