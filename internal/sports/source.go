// Package sports runs the AI sports bots: find head-to-head markets on a
// venue, ask an analyst for a win probability, and post the comparison of
// market odds and analyst odds. Each market is analyzed at most once.
package sports

import (
	"context"

	"github.com/alanyoungcy/polyarb/internal/domain"
)

// Candidate is a sports market a Source has found.
type Candidate struct {
	ID    string
	Title string
	// League is the tag shown in the message, e.g. "NBA". Empty lets the
	// analyst's sport label take its place.
	League      string
	Category    string
	Description string
	Volume      float64
	// MarketLine is the venue's own odds, e.g. "Lakers 45% / Celtics 55%".
	MarketLine string
}

// Source discovers and prepares sports markets on one venue.
type Source interface {
	// Name is the key the source's seen ids are stored under.
	Name() string
	// Label is the venue banner used in messages.
	Label() string
	Candidates(ctx context.Context) ([]Candidate, error)
	// Prepare fills in what discovery left out. ok is false when the market
	// should be skipped this run without being marked seen.
	Prepare(ctx context.Context, c Candidate) (Candidate, bool, error)
}

// Analyst predicts the outcome of a matchup. A nil prediction with a nil
// error means the title could not be analyzed.
type Analyst interface {
	AnalyzeMatch(ctx context.Context, req domain.MatchRequest) (*domain.MatchPrediction, error)
}

// Notifier delivers a message. *notify.Notifier satisfies it.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}
