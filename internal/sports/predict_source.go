package sports

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/alanyoungcy/polyarb/internal/domain"
	"github.com/alanyoungcy/polyarb/internal/platform/predict"
	"github.com/alanyoungcy/polyarb/internal/pricing"
)

// cryptoKeywords mark "X vs Y" titles that compare assets rather than teams.
var cryptoKeywords = []string{"bitcoin", "btc", "ethereum", "eth", "solana", "price", "market cap"}

// PredictAPI is the part of the Predict.fun client the source needs.
type PredictAPI interface {
	ListRaw(ctx context.Context, limit, maxPages int) ([]predict.APIMarket, error)
	GetStats(ctx context.Context, marketID string) (*predict.Stats, error)
	GetOrderBook(ctx context.Context, marketID string) (*domain.OrderBook, error)
}

// PredictSource finds head-to-head markets on Predict.fun. The API has no
// sport filter, so sports markets are recognized by their titles.
type PredictSource struct {
	api       PredictAPI
	maxPages  int
	minVolume float64
	logger    *slog.Logger
}

// NewPredictSource creates a PredictSource reading at most maxPages listing
// pages and requiring minVolume USD of lifetime volume.
func NewPredictSource(api PredictAPI, maxPages int, minVolume float64, logger *slog.Logger) *PredictSource {
	return &PredictSource{
		api:       api,
		maxPages:  maxPages,
		minVolume: minVolume,
		logger:    logger.With(slog.String("component", "sports_predict")),
	}
}

func (s *PredictSource) Name() string  { return "predict_fun" }
func (s *PredictSource) Label() string { return "PREDICT.FUN" }

// Candidates lists open markets, keeps the first market per trimmed title
// and returns those that look like a match between two teams.
func (s *PredictSource) Candidates(ctx context.Context) ([]Candidate, error) {
	raw, err := s.api.ListRaw(ctx, math.MaxInt, s.maxPages)
	if err != nil {
		return nil, fmt.Errorf("sports: list predict markets: %w", err)
	}

	seen := make(map[string]bool, len(raw))
	var out []Candidate
	for i := range raw {
		m := &raw[i]
		key := strings.TrimSpace(m.Text())
		if key == "" {
			key = string(m.ID)
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		if !m.Open() || !isSportsTitle(m.Text()) {
			continue
		}
		out = append(out, Candidate{
			ID:          string(m.ID),
			Title:       m.Text(),
			Category:    m.CategorySlug,
			Description: m.Description,
		})
	}
	s.logger.InfoContext(ctx, "sports markets found",
		slog.Int("listed", len(raw)),
		slog.Int("candidates", len(out)),
	)
	return out, nil
}

func isSportsTitle(title string) bool {
	t := strings.ToLower(title)
	if !strings.Contains(t, " vs ") {
		return false
	}
	for _, kw := range cryptoKeywords {
		if strings.Contains(t, kw) {
			return false
		}
	}
	return true
}

// Prepare checks the volume floor and prices the market from its YES book.
func (s *PredictSource) Prepare(ctx context.Context, c Candidate) (Candidate, bool, error) {
	stats, err := s.api.GetStats(ctx, c.ID)
	if err != nil {
		return c, false, err
	}
	if stats != nil {
		c.Volume = float64(stats.VolumeTotalUSD)
	}
	if c.Volume < s.minVolume {
		s.logger.InfoContext(ctx, "volume below floor, skipping",
			slog.String("market", c.Title),
			slog.Float64("volume_usd", c.Volume),
			slog.Float64("min_volume_usd", s.minVolume),
		)
		return c, false, nil
	}

	book, err := s.api.GetOrderBook(ctx, c.ID)
	if err != nil {
		return c, false, err
	}
	c.MarketLine = predictLine(c.Title, pricing.FromYesBook(book))
	return c, true, nil
}

// predictLine renders the YES ask as side A's probability and its
// complement as side B's.
func predictLine(title string, q domain.BinaryQuote) string {
	if !q.Yes.Ask.Valid {
		return "n/a"
	}
	a, b, ok := domain.SplitMatchup(title)
	if !ok {
		a, b = "Team A", "Team B"
	}
	yes := q.Yes.Ask.Value
	return fmt.Sprintf("%s %.0f%% / %s %.0f%%", a, yes*100, b, (1-yes)*100)
}
