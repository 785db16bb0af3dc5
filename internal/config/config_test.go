package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validScanConfig() Config {
	cfg := Defaults()
	cfg.Predict.ApiKey = "pk"
	cfg.Notify.TelegramToken = "tok"
	cfg.Notify.TelegramChatID = "42"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 0.005, cfg.Scan.ROIThreshold)
	assert.Equal(t, time.Minute, cfg.Scan.ScanInterval())
	assert.Equal(t, 15*time.Minute, cfg.Scan.Cooldown())
	assert.Equal(t, 0.6, cfg.Scan.MatchThreshold)
	assert.Equal(t, 120, cfg.Scan.MaxPairsPerCycle)
	assert.Equal(t, 250*time.Millisecond, cfg.Scan.MinInterRequestGap())
	assert.Equal(t, 20*time.Second, cfg.Sports.Pause.Duration)
}

func TestValidate_MissingCredentialsIsFatal(t *testing.T) {
	cfg := Defaults()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notify: telegram_token is required")
	assert.Contains(t, err.Error(), "predict: api_key is required for mode scan")
}

func TestValidate_OK(t *testing.T) {
	cfg := validScanConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_KalshiVenueDoesNotNeedPredictKey(t *testing.T) {
	cfg := validScanConfig()
	cfg.Predict.ApiKey = ""
	cfg.Scan.VenueB = "kalshi"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_SportsNeedsGemini(t *testing.T) {
	cfg := validScanConfig()
	cfg.Mode = "sports"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini: api_key is required")

	cfg.Gemini.ApiKey = "g"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RedisCooldownRequiresRedis(t *testing.T) {
	cfg := validScanConfig()
	cfg.Scan.CooldownBackend = "redis"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires redis.enabled")
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "scan"

[scan]
roi_threshold = 0.01
max_pairs_per_cycle = 50

[sports]
pause = "5s"
`), 0o600))

	t.Setenv("POLYARB_SCAN_MAX_PAIRS_PER_CYCLE", "80")
	t.Setenv("TELEGRAM_BOT_TOKEN", "legacy")
	t.Setenv("POLYARB_NOTIFY_TELEGRAM_TOKEN", "prefixed")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.01, cfg.Scan.ROIThreshold)
	assert.Equal(t, 80, cfg.Scan.MaxPairsPerCycle)
	assert.Equal(t, 5*time.Second, cfg.Sports.Pause.Duration)
	assert.Equal(t, "prefixed", cfg.Notify.TelegramToken)
	assert.Equal(t, 60000, cfg.Scan.ScanIntervalMs)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "scan", cfg.Mode)
}

func TestRedactedConfig(t *testing.T) {
	cfg := validScanConfig()
	out := RedactedConfig(&cfg)

	assert.Equal(t, "***", out.Predict.ApiKey)
	assert.Equal(t, "***", out.Notify.TelegramToken)
	assert.Equal(t, "", out.Gemini.ApiKey)
	assert.Equal(t, "pk", cfg.Predict.ApiKey)

	out.Sports.Sources[0] = "changed"
	assert.Equal(t, "predict_fun", cfg.Sports.Sources[0])
}

func TestValidate_ServerRateLimit(t *testing.T) {
	cfg := validScanConfig()
	cfg.Server.Enabled = true
	cfg.Server.RateLimitBurst = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit_burst")

	cfg.Server.RateLimitRPS = 0
	assert.NoError(t, cfg.Validate())
}

func TestRedactedConfig_ServerAPIKey(t *testing.T) {
	cfg := validScanConfig()
	cfg.Server.APIKey = "s3cret"
	out := RedactedConfig(&cfg)
	assert.Equal(t, "***", out.Server.APIKey)
}

func TestLoad_StoragePrefixes(t *testing.T) {
	t.Setenv("POLYARB_REDIS_KEY_PREFIX", "staging")
	t.Setenv("POLYARB_S3_PREFIX", "staging/")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Redis.KeyPrefix)
	assert.Equal(t, "staging/", cfg.S3.Prefix)
	assert.Equal(t, "polyarb", Defaults().Redis.KeyPrefix)
}
