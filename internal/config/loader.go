package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies environment overrides, and returns the final
// Config. A missing file is not an error: the scanner can run from defaults
// plus environment alone. The returned Config has NOT been validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known environment variables and overwrites the
// corresponding Config fields when a variable is set. The bare names
// (PREDICT_FUN_API_KEY, TELEGRAM_BOT_TOKEN, ...) are read first so that the
// POLYARB_* form wins when both are present.
func applyEnvOverrides(cfg *Config) {
	// ── Legacy names ──
	setStr(&cfg.Predict.ApiKey, "PREDICT_FUN_API_KEY")
	setStr(&cfg.Notify.TelegramToken, "TELEGRAM_BOT_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "TELEGRAM_CHAT_ID")
	setStr(&cfg.Gemini.ApiKey, "GOOGLE_API_KEY")

	// ── Polymarket ──
	setStr(&cfg.Polymarket.ClobHost, "POLYARB_POLYMARKET_CLOB_HOST")
	setStr(&cfg.Polymarket.GammaHost, "POLYARB_POLYMARKET_GAMMA_HOST")
	setInt(&cfg.Polymarket.MarketLimit, "POLYARB_POLYMARKET_MARKET_LIMIT")

	// ── Predict.fun ──
	setStr(&cfg.Predict.BaseURL, "POLYARB_PREDICT_BASE_URL")
	setStr(&cfg.Predict.ApiKey, "POLYARB_PREDICT_API_KEY")
	setInt(&cfg.Predict.MarketLimit, "POLYARB_PREDICT_MARKET_LIMIT")

	// ── Kalshi ──
	setStr(&cfg.Kalshi.ApiKey, "POLYARB_KALSHI_API_KEY")
	setStr(&cfg.Kalshi.RsaPrivateKeyPath, "POLYARB_KALSHI_RSA_PRIVATE_KEY_PATH")
	setStr(&cfg.Kalshi.BaseURL, "POLYARB_KALSHI_BASE_URL")

	// ── Gemini ──
	setStr(&cfg.Gemini.ApiKey, "POLYARB_GEMINI_API_KEY")
	setStr(&cfg.Gemini.Model, "POLYARB_GEMINI_MODEL")

	// ── Scan ──
	setStr(&cfg.Scan.VenueB, "POLYARB_SCAN_VENUE_B")
	setFloat64(&cfg.Scan.ROIThreshold, "POLYARB_SCAN_ROI_THRESHOLD")
	setInt(&cfg.Scan.ScanIntervalMs, "POLYARB_SCAN_INTERVAL_MS")
	setInt(&cfg.Scan.CooldownMs, "POLYARB_SCAN_COOLDOWN_MS")
	setFloat64(&cfg.Scan.MatchThreshold, "POLYARB_SCAN_MATCH_THRESHOLD")
	setInt(&cfg.Scan.MaxPairsPerCycle, "POLYARB_SCAN_MAX_PAIRS_PER_CYCLE")
	setInt(&cfg.Scan.MinInterRequestGapMs, "POLYARB_SCAN_MIN_INTER_REQUEST_GAP_MS")
	setStr(&cfg.Scan.CooldownBackend, "POLYARB_SCAN_COOLDOWN_BACKEND")
	setBool(&cfg.Scan.AlertKeyPerDirection, "POLYARB_SCAN_ALERT_KEY_PER_DIRECTION")
	setBool(&cfg.Scan.ArchiveReports, "POLYARB_SCAN_ARCHIVE_REPORTS")

	// ── Sports ──
	setStringSlice(&cfg.Sports.Sources, "POLYARB_SPORTS_SOURCES")
	setStr(&cfg.Sports.StateBackend, "POLYARB_SPORTS_STATE_BACKEND")
	setStr(&cfg.Sports.StateFile, "POLYARB_SPORTS_STATE_FILE")
	setStr(&cfg.Sports.StateKey, "POLYARB_SPORTS_STATE_KEY")
	setFloat64(&cfg.Sports.MinVolumeUSD, "POLYARB_SPORTS_MIN_VOLUME_USD")
	setDuration(&cfg.Sports.Pause, "POLYARB_SPORTS_PAUSE")

	// ── Supabase ──
	setBool(&cfg.Supabase.Enabled, "POLYARB_SUPABASE_ENABLED")
	setStr(&cfg.Supabase.DSN, "POLYARB_SUPABASE_DSN")
	setStr(&cfg.Supabase.DSN, "POLYARB_SUPABASE_URL") // compatibility alias
	setStr(&cfg.Supabase.Host, "POLYARB_SUPABASE_HOST")
	setInt(&cfg.Supabase.Port, "POLYARB_SUPABASE_PORT")
	setStr(&cfg.Supabase.User, "POLYARB_SUPABASE_USER")
	setStr(&cfg.Supabase.Password, "POLYARB_SUPABASE_PASSWORD")
	setBool(&cfg.Supabase.RunMigrations, "POLYARB_SUPABASE_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "POLYARB_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "POLYARB_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POLYARB_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POLYARB_REDIS_DB")
	setBool(&cfg.Redis.TLSEnabled, "POLYARB_REDIS_TLS_ENABLED")
	setStr(&cfg.Redis.KeyPrefix, "POLYARB_REDIS_KEY_PREFIX")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "POLYARB_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "POLYARB_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "POLYARB_S3_REGION")
	setStr(&cfg.S3.Bucket, "POLYARB_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "POLYARB_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "POLYARB_S3_SECRET_KEY")
	setBool(&cfg.S3.ForcePathStyle, "POLYARB_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "POLYARB_S3_PREFIX")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "POLYARB_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "POLYARB_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "POLYARB_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "POLYARB_SERVER_API_KEY")
	setFloat64(&cfg.Server.RateLimitRPS, "POLYARB_SERVER_RATE_LIMIT_RPS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "POLYARB_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "POLYARB_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "POLYARB_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "POLYARB_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "POLYARB_MODE")
	setStr(&cfg.LogLevel, "POLYARB_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and parses cleanly.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
