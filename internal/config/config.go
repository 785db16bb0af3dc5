// Package config defines the top-level configuration for the arbitrage scanner
// and the sports bots, and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by POLYARB_* environment variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Predict    PredictConfig    `toml:"predict"`
	Kalshi     KalshiConfig     `toml:"kalshi"`
	Gemini     GeminiConfig     `toml:"gemini"`
	Scan       ScanConfig       `toml:"scan"`
	Sports     SportsConfig     `toml:"sports"`
	Supabase   SupabaseConfig   `toml:"supabase"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Server     ServerConfig     `toml:"server"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds Polymarket API endpoints and listing limits.
type PolymarketConfig struct {
	ClobHost    string `toml:"clob_host"`
	GammaHost   string `toml:"gamma_host"`
	MarketLimit int    `toml:"market_limit"`
	PageSize    int    `toml:"page_size"`
	PagePauseMs int    `toml:"page_pause_ms"`
}

// PredictConfig holds Predict.fun API credentials and listing limits.
type PredictConfig struct {
	BaseURL     string `toml:"base_url"`
	ApiKey      string `toml:"api_key"`
	MarketLimit int    `toml:"market_limit"`
	PageSize    int    `toml:"page_size"`
}

// KalshiConfig holds Kalshi exchange API credentials. The key pair is only
// needed for authenticated endpoints; market data is read anonymously.
type KalshiConfig struct {
	ApiKey            string `toml:"api_key"`
	RsaPrivateKeyPath string `toml:"rsa_private_key_path"`
	BaseURL           string `toml:"base_url"`
	MarketLimit       int    `toml:"market_limit"`
}

// GeminiConfig holds the generative-AI endpoint used by the sports bots.
type GeminiConfig struct {
	ApiKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// ScanConfig holds the arbitrage scan loop parameters.
type ScanConfig struct {
	// VenueB selects the second platform: "predict" or "kalshi".
	VenueB               string  `toml:"venue_b"`
	ROIThreshold         float64 `toml:"roi_threshold"`
	ScanIntervalMs       int     `toml:"scan_interval_ms"`
	CooldownMs           int     `toml:"cooldown_ms"`
	MatchThreshold       float64 `toml:"match_threshold"`
	MaxPairsPerCycle     int     `toml:"max_pairs_per_cycle"`
	MinInterRequestGapMs int     `toml:"min_inter_request_gap_ms"`
	Retries              int     `toml:"retries"`
	// CooldownBackend is "memory" or "redis".
	CooldownBackend  string `toml:"cooldown_backend"`
	CooldownCapacity int    `toml:"cooldown_capacity"`
	// AlertKeyPerDirection gives each hedge direction its own cooldown slot.
	AlertKeyPerDirection bool `toml:"alert_key_per_direction"`
	ArchiveReports       bool `toml:"archive_reports"`
}

// ScanInterval returns the delay between two scan cycles.
func (s ScanConfig) ScanInterval() time.Duration {
	return time.Duration(s.ScanIntervalMs) * time.Millisecond
}

// Cooldown returns the alert suppression window.
func (s ScanConfig) Cooldown() time.Duration {
	return time.Duration(s.CooldownMs) * time.Millisecond
}

// MinInterRequestGap returns the spacing enforced between Predict.fun requests.
func (s ScanConfig) MinInterRequestGap() time.Duration {
	return time.Duration(s.MinInterRequestGapMs) * time.Millisecond
}

// SportsConfig holds the AI sports bot parameters.
type SportsConfig struct {
	// Sources lists the bots to run: "predict_fun", "polymarket".
	Sources []string `toml:"sources"`
	// StateBackend is "file" or "s3".
	StateBackend string   `toml:"state_backend"`
	StateFile    string   `toml:"state_file"`
	StateKey     string   `toml:"state_key"`
	MinVolumeUSD float64  `toml:"min_volume_usd"`
	MaxPages     int      `toml:"max_pages"`
	NBAMinVolume float64  `toml:"nba_min_volume"`
	NFLMinVolume float64  `toml:"nfl_min_volume"`
	MaxVolume    float64  `toml:"max_volume"`
	Pause        duration `toml:"pause"`
}

// SupabaseConfig holds PostgreSQL / Supabase connection parameters.
type SupabaseConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
	KeyPrefix  string `toml:"key_prefix"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Prefix         string `toml:"prefix"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "20s", "1m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// APIKey enables bearer / X-API-Key auth on /api routes when set.
	APIKey string `toml:"api_key"`
	// RateLimitRPS caps requests per second per client IP; 0 disables it.
	RateLimitRPS   float64 `toml:"rate_limit_rps"`
	RateLimitBurst int     `toml:"rate_limit_burst"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			ClobHost:    "https://clob.polymarket.com",
			GammaHost:   "https://gamma-api.polymarket.com",
			MarketLimit: 20000,
			PageSize:    500,
			PagePauseMs: 100,
		},
		Predict: PredictConfig{
			BaseURL:     "https://api.predict.fun",
			MarketLimit: 1500,
			PageSize:    50,
		},
		Kalshi: KalshiConfig{
			BaseURL:     "https://api.elections.kalshi.com/trade-api/v2",
			MarketLimit: 5000,
		},
		Gemini: GeminiConfig{
			BaseURL: "https://generativelanguage.googleapis.com",
			Model:   "gemini-2.0-flash-exp",
		},
		Scan: ScanConfig{
			VenueB:               "predict",
			ROIThreshold:         0.005,
			ScanIntervalMs:       60000,
			CooldownMs:           900000,
			MatchThreshold:       0.6,
			MaxPairsPerCycle:     120,
			MinInterRequestGapMs: 250,
			Retries:              3,
			CooldownBackend:      "memory",
			CooldownCapacity:     5000,
		},
		Sports: SportsConfig{
			Sources:      []string{"predict_fun", "polymarket"},
			StateBackend: "file",
			StateFile:    "analyzed_markets.json",
			StateKey:     "state/analyzed_markets.json",
			MinVolumeUSD: 10000,
			MaxPages:     5,
			NBAMinVolume: 100000,
			NFLMinVolume: 20000,
			MaxVolume:    1000000,
			Pause:        duration{20 * time.Second},
		},
		Supabase: SupabaseConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "postgres",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  5,
			PoolMinConns:  1,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   10,
			MaxRetries: 3,
			KeyPrefix:  "polyarb",
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "polyarb-data",
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Enabled:        false,
			Port:           8000,
			CORSOrigins:    []string{"http://localhost:3000"},
			RateLimitRPS:   5,
			RateLimitBurst: 20,
		},
		Notify: NotifyConfig{
			Events: []string{"arbitrage", "sports"},
		},
		Mode:     "scan",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan":   true,
	"sports": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validSportsSources = map[string]bool{
	"predict_fun": true,
	"polymarket":  true,
}

// UsesPredict reports whether the selected mode talks to Predict.fun.
func (c *Config) UsesPredict() bool {
	switch c.Mode {
	case "scan":
		return c.Scan.VenueB == "predict"
	case "sports":
		for _, s := range c.Sports.Sources {
			if s == "predict_fun" {
				return true
			}
		}
	}
	return false
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found. Missing credentials for the
// selected mode are reported here so the process refuses to start.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, sports)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Credentials
	if c.Notify.TelegramToken == "" {
		errs = append(errs, "notify: telegram_token is required")
	}
	if c.Notify.TelegramChatID == "" {
		errs = append(errs, "notify: telegram_chat_id is required")
	}
	if c.UsesPredict() && c.Predict.ApiKey == "" {
		errs = append(errs, "predict: api_key is required for mode "+c.Mode)
	}
	if c.Mode == "sports" && c.Gemini.ApiKey == "" {
		errs = append(errs, "gemini: api_key is required for mode sports")
	}

	// Endpoints
	if c.Polymarket.ClobHost == "" || c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: clob_host and gamma_host must not be empty")
	}
	if c.Polymarket.PageSize < 1 {
		errs = append(errs, "polymarket: page_size must be >= 1")
	}
	if c.Predict.PageSize < 1 {
		errs = append(errs, "predict: page_size must be >= 1")
	}

	// Scan
	if c.Mode == "scan" {
		if c.Scan.VenueB != "predict" && c.Scan.VenueB != "kalshi" {
			errs = append(errs, fmt.Sprintf("scan: unknown venue_b %q (valid: predict, kalshi)", c.Scan.VenueB))
		}
		if c.Scan.VenueB == "kalshi" && c.Kalshi.BaseURL == "" {
			errs = append(errs, "kalshi: base_url must not be empty")
		}
	}
	if c.Scan.MatchThreshold <= 0 || c.Scan.MatchThreshold > 1 {
		errs = append(errs, "scan: match_threshold must be in (0, 1]")
	}
	if c.Scan.ScanIntervalMs <= 0 {
		errs = append(errs, "scan: scan_interval_ms must be > 0")
	}
	if c.Scan.CooldownMs < 0 {
		errs = append(errs, "scan: cooldown_ms must be >= 0")
	}
	if c.Scan.MaxPairsPerCycle < 1 {
		errs = append(errs, "scan: max_pairs_per_cycle must be >= 1")
	}
	if c.Scan.MinInterRequestGapMs < 0 {
		errs = append(errs, "scan: min_inter_request_gap_ms must be >= 0")
	}
	if c.Scan.Retries < 1 {
		errs = append(errs, "scan: retries must be >= 1")
	}
	switch c.Scan.CooldownBackend {
	case "memory":
		if c.Scan.CooldownCapacity < 1 {
			errs = append(errs, "scan: cooldown_capacity must be >= 1")
		}
	case "redis":
		if !c.Redis.Enabled {
			errs = append(errs, "scan: cooldown_backend redis requires redis.enabled")
		}
	default:
		errs = append(errs, fmt.Sprintf("scan: unknown cooldown_backend %q (valid: memory, redis)", c.Scan.CooldownBackend))
	}
	if c.Scan.ArchiveReports && !c.S3.Enabled {
		errs = append(errs, "scan: archive_reports requires s3.enabled")
	}

	// Sports
	if c.Mode == "sports" {
		if len(c.Sports.Sources) == 0 {
			errs = append(errs, "sports: at least one source is required")
		}
		for _, s := range c.Sports.Sources {
			if !validSportsSources[s] {
				errs = append(errs, fmt.Sprintf("sports: unknown source %q (valid: predict_fun, polymarket)", s))
			}
		}
		switch c.Sports.StateBackend {
		case "file":
			if c.Sports.StateFile == "" {
				errs = append(errs, "sports: state_file must not be empty")
			}
		case "s3":
			if !c.S3.Enabled {
				errs = append(errs, "sports: state_backend s3 requires s3.enabled")
			}
		default:
			errs = append(errs, fmt.Sprintf("sports: unknown state_backend %q (valid: file, s3)", c.Sports.StateBackend))
		}
	}

	// Supabase
	if c.Supabase.Enabled && strings.TrimSpace(c.Supabase.DSN) == "" {
		if c.Supabase.Host == "" {
			errs = append(errs, "supabase: host must not be empty (or set supabase.dsn)")
		}
		if c.Supabase.Port <= 0 || c.Supabase.Port > 65535 {
			errs = append(errs, fmt.Sprintf("supabase: port must be 1-65535, got %d", c.Supabase.Port))
		}
	}
	if c.Supabase.Enabled && c.Supabase.PoolMinConns > c.Supabase.PoolMaxConns {
		errs = append(errs, "supabase: pool_min_conns must not exceed pool_max_conns")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.S3.Enabled && c.S3.Bucket == "" {
		errs = append(errs, "s3: bucket must not be empty")
	}

	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimitRPS < 0 {
			errs = append(errs, "server: rate_limit_rps must be >= 0")
		}
		if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst < 1 {
			errs = append(errs, "server: rate_limit_burst must be >= 1 when rate limiting is on")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
