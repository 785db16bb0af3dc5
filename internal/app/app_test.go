package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3blob "github.com/alanyoungcy/polyarb/internal/blob/s3"
	"github.com/alanyoungcy/polyarb/internal/config"
	"github.com/alanyoungcy/polyarb/internal/domain"
	"github.com/alanyoungcy/polyarb/internal/state"
)

func testApp(t *testing.T, mutate func(*config.Config)) *App {
	t.Helper()
	cfg := config.Defaults()
	cfg.Predict.ApiKey = "pk"
	cfg.Notify.TelegramToken = "tok"
	cfg.Notify.TelegramChatID = "1"
	if mutate != nil {
		mutate(&cfg)
	}
	return New(&cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestVenueB(t *testing.T) {
	a := testApp(t, nil)
	v, limit, err := a.venueB()
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformPredict, v.Name())
	assert.Equal(t, 1500, limit)

	a = testApp(t, func(c *config.Config) { c.Scan.VenueB = "kalshi" })
	v, limit, err = a.venueB()
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformKalshi, v.Name())
	assert.Equal(t, 5000, limit)

	a = testApp(t, func(c *config.Config) { c.Scan.VenueB = "manifold" })
	_, _, err = a.venueB()
	assert.Error(t, err)
}

func TestVenueB_KalshiKeyErrors(t *testing.T) {
	a := testApp(t, func(c *config.Config) {
		c.Scan.VenueB = "kalshi"
		c.Kalshi.RsaPrivateKeyPath = filepath.Join(t.TempDir(), "missing.pem")
	})
	_, _, err := a.venueB()
	assert.ErrorContains(t, err, "read kalshi key")

	bad := filepath.Join(t.TempDir(), "bad.pem")
	require.NoError(t, os.WriteFile(bad, []byte("not a pem"), 0o600))
	a = testApp(t, func(c *config.Config) {
		c.Scan.VenueB = "kalshi"
		c.Kalshi.RsaPrivateKeyPath = bad
	})
	_, _, err = a.venueB()
	assert.ErrorContains(t, err, "kalshi key")
}

func TestSportsSources(t *testing.T) {
	a := testApp(t, func(c *config.Config) { c.Sports.Sources = []string{"polymarket", "predict_fun"} })
	sources, err := a.sportsSources()
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "polymarket", sources[0].Name())
	assert.Equal(t, "predict_fun", sources[1].Name())

	a = testApp(t, func(c *config.Config) { c.Sports.Sources = []string{"espn"} })
	_, err = a.sportsSources()
	assert.Error(t, err)
}

func TestStateStore(t *testing.T) {
	a := testApp(t, func(c *config.Config) { c.Sports.StateFile = filepath.Join(t.TempDir(), "s.json") })
	st, err := a.stateStore(&Dependencies{})
	require.NoError(t, err)
	assert.IsType(t, &state.FileStore{}, st)

	a = testApp(t, func(c *config.Config) { c.Sports.StateBackend = "s3" })
	_, err = a.stateStore(&Dependencies{})
	assert.Error(t, err)

	blob := &memBlob{}
	st, err = a.stateStore(&Dependencies{BlobReader: blob, BlobWriter: blob})
	require.NoError(t, err)
	assert.IsType(t, &s3blob.StateStore{}, st)
}

func TestWire_NoBackends(t *testing.T) {
	a := testApp(t, nil)
	deps, cleanup, err := Wire(context.Background(), a.cfg, a.logger)
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, deps.CooldownStore)
	assert.Nil(t, deps.LockManager)
	assert.Nil(t, deps.OpportunityStore)
	assert.NotNil(t, deps.Notifier)
	assert.Empty(t, deps.HealthChecks)
}

func TestBuildSenders(t *testing.T) {
	assert.Len(t, buildSenders(config.NotifyConfig{TelegramToken: "t", TelegramChatID: "c"}), 1)
	assert.Len(t, buildSenders(config.NotifyConfig{TelegramToken: "t", TelegramChatID: "c", DiscordWebhookURL: "https://d"}), 2)
	assert.Empty(t, buildSenders(config.NotifyConfig{TelegramToken: "t"}))
}

type memBlob struct{}

func (memBlob) Put(context.Context, string, io.Reader, string) error { return nil }

func (memBlob) Get(context.Context, string) (io.ReadCloser, error) { return nil, domain.ErrNotFound }

func (memBlob) Exists(context.Context, string) (bool, error) { return false, nil }

func TestRequestGap_OnlyPredictIsThrottled(t *testing.T) {
	a := testApp(t, func(c *config.Config) { c.Scan.MinInterRequestGapMs = 300 })

	assert.Equal(t, 300*time.Millisecond, a.requestGap(domain.PlatformPredict))
	assert.Zero(t, a.requestGap(domain.PlatformPolymarket))
	assert.Zero(t, a.requestGap(domain.PlatformKalshi))
}
