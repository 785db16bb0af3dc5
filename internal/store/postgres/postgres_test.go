package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/alanyoungcy/polyarb/internal/domain"
)

func TestDSN(t *testing.T) {
	assert.Equal(t, "postgres://u:p@db:5432/arb?sslmode=disable",
		DSN(ClientConfig{Host: "db", User: "u", Password: "p", Database: "arb"}))
	assert.Equal(t, "postgres://u:p@db:6543/arb?sslmode=require",
		DSN(ClientConfig{Host: "db", Port: 6543, User: "u", Password: "p", Database: "arb", SSLMode: "require"}))
	assert.Equal(t, "postgres://explicit", DSN(ClientConfig{DSN: "postgres://explicit", Host: "ignored"}))
}

// setupTestDB starts a throwaway PostgreSQL container and returns a migrated
// client. The test is skipped in -short mode or when no container runtime is
// available.
func setupTestDB(t *testing.T) *Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	client, err := New(ctx, ClientConfig{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	require.NoError(t, client.RunMigrations(ctx))
	// Second run is a no-op.
	require.NoError(t, client.RunMigrations(ctx))
	return client
}

func TestOpportunityStore_InsertAndListRecent(t *testing.T) {
	client := setupTestDB(t)
	store := NewOpportunityStore(client.Pool())
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	older := domain.Opportunity{
		ID: uuid.New().String(), AlertKey: "k1", Direction: domain.DirectionAYesBNo,
		PlatformA: domain.PlatformPolymarket, PlatformB: domain.PlatformPredict,
		MarketA: "a", MarketB: "b", QuestionA: "qa", QuestionB: "qb", MatchScore: 0.8,
		YesAsk: 0.4, NoAsk: 0.55, Cost: 0.95, ROI: 0.0526, DetectedAt: base,
	}
	newer := older
	newer.ID = uuid.New().String()
	newer.Direction = domain.DirectionBYesANo
	newer.Derived = true
	newer.DetectedAt = base.Add(time.Minute)

	require.NoError(t, store.Insert(ctx, older))
	require.NoError(t, store.Insert(ctx, newer))
	require.NoError(t, store.Insert(ctx, newer))

	got, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, domain.DirectionBYesANo, got[0].Direction)
	assert.True(t, got[0].Derived)
	assert.Equal(t, domain.PlatformPredict, got[1].PlatformB)
	assert.True(t, base.Equal(got[1].DetectedAt))

	got, err = store.ListRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
