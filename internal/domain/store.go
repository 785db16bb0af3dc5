package domain

import "context"

// OpportunityStore persists alerted arbitrage opportunities.
type OpportunityStore interface {
	Insert(ctx context.Context, opp Opportunity) error
	ListRecent(ctx context.Context, limit int) ([]Opportunity, error)
}

// SeenState maps a source name to the market ids it has already handled.
type SeenState map[string][]string

// StateStore loads and saves SeenState between runs.
type StateStore interface {
	Load(ctx context.Context) (SeenState, error)
	Save(ctx context.Context, state SeenState) error
}
