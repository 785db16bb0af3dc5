package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/polyarb/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore on the
// arb_opportunities table.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates a new OpportunityStore backed by pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const opportunityCols = `id, alert_key, direction, platform_a, platform_b,
	market_a, market_b, question_a, question_b, match_score,
	yes_ask, no_ask, cost, roi, derived, detected_at`

// Insert stores an alerted opportunity. Re-inserting the same id is a no-op.
func (s *OpportunityStore) Insert(ctx context.Context, opp domain.Opportunity) error {
	const query = `
		INSERT INTO arb_opportunities (` + opportunityCols + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO NOTHING`

	_, err := s.pool.Exec(ctx, query,
		opp.ID, opp.AlertKey, string(opp.Direction), string(opp.PlatformA), string(opp.PlatformB),
		opp.MarketA, opp.MarketB, opp.QuestionA, opp.QuestionB, opp.MatchScore,
		opp.YesAsk, opp.NoAsk, opp.Cost, opp.ROI, opp.Derived, opp.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// ListRecent returns up to limit opportunities, newest first.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	query := `SELECT id::text, alert_key, direction, platform_a, platform_b,
			market_a, market_b, question_a, question_b, match_score,
			yes_ask, no_ask, cost, roi, derived, detected_at
		FROM arb_opportunities
		ORDER BY detected_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities: %w", err)
	}
	opps, err := pgx.CollectRows(rows, scanOpportunity)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan opportunities: %w", err)
	}
	return opps, nil
}

func scanOpportunity(row pgx.CollectableRow) (domain.Opportunity, error) {
	var (
		o                       domain.Opportunity
		direction, platA, platB string
	)
	err := row.Scan(
		&o.ID, &o.AlertKey, &direction, &platA, &platB,
		&o.MarketA, &o.MarketB, &o.QuestionA, &o.QuestionB, &o.MatchScore,
		&o.YesAsk, &o.NoAsk, &o.Cost, &o.ROI, &o.Derived, &o.DetectedAt,
	)
	o.Direction = domain.Direction(direction)
	o.PlatformA = domain.Platform(platA)
	o.PlatformB = domain.Platform(platB)
	return o, err
}

// Compile-time interface check.
var _ domain.OpportunityStore = (*OpportunityStore)(nil)
