package sports

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyarb/internal/domain"
	"github.com/alanyoungcy/polyarb/internal/platform/polymarket"
)

const eventsPerLeague = 50

// League is one Gamma tag scanned by PolymarketSource.
type League struct {
	Name      string // "NBA"
	Tag       string // "nba"
	MinVolume float64
}

// EventLister is the part of the Gamma client the source needs.
type EventLister interface {
	ListEvents(ctx context.Context, tag string, limit int) ([]polymarket.APIEvent, error)
}

// PolymarketSource picks the top market of each high-volume league event.
type PolymarketSource struct {
	events    EventLister
	leagues   []League
	maxVolume float64
	logger    *slog.Logger
}

// NewPolymarketSource creates a PolymarketSource. Markets with volume at or
// above maxVolume are skipped; zero disables the ceiling.
func NewPolymarketSource(events EventLister, leagues []League, maxVolume float64, logger *slog.Logger) *PolymarketSource {
	return &PolymarketSource{
		events:    events,
		leagues:   leagues,
		maxVolume: maxVolume,
		logger:    logger.With(slog.String("component", "sports_polymarket")),
	}
}

func (s *PolymarketSource) Name() string  { return "polymarket" }
func (s *PolymarketSource) Label() string { return "POLYMARKET" }

// Candidates queries every league concurrently. A league whose query fails
// is logged and contributes nothing.
func (s *PolymarketSource) Candidates(ctx context.Context) ([]Candidate, error) {
	byLeague := make([][]Candidate, len(s.leagues))
	g, gctx := errgroup.WithContext(ctx)
	for i, lg := range s.leagues {
		g.Go(func() error {
			events, err := s.events.ListEvents(gctx, lg.Tag, eventsPerLeague)
			if err != nil {
				s.logger.ErrorContext(gctx, "list league events failed",
					slog.String("league", lg.Name),
					slog.String("error", err.Error()),
				)
				return nil
			}
			byLeague[i] = s.fromEvents(gctx, lg, events)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Candidate
	for _, c := range byLeague {
		out = append(out, c...)
	}
	return out, nil
}

func (s *PolymarketSource) fromEvents(ctx context.Context, lg League, events []polymarket.APIEvent) []Candidate {
	var out []Candidate
	for _, ev := range events {
		if len(ev.Markets) == 0 {
			continue
		}
		markets := append([]polymarket.APIMarket(nil), ev.Markets...)
		sort.SliceStable(markets, func(i, j int) bool { return markets[i].Volume > markets[j].Volume })
		top := markets[0]

		vol := float64(top.Volume)
		if vol < lg.MinVolume {
			continue
		}
		if s.maxVolume > 0 && vol >= s.maxVolume {
			s.logger.DebugContext(ctx, "market above volume ceiling, skipping",
				slog.String("market", top.Question),
				slog.Float64("volume_usd", vol),
			)
			continue
		}
		if !domain.IsMatchup(top.Question) {
			continue
		}

		id := top.ID
		if id == "" {
			id = top.ConditionID
		}
		out = append(out, Candidate{
			ID:          id,
			Title:       top.Question,
			League:      lg.Name,
			Category:    lg.Tag,
			Description: top.Description,
			Volume:      vol,
			MarketLine:  outcomeLine(top.Outcomes, top.OutcomePrices),
		})
	}
	return out
}

// Prepare has nothing to add: discovery already carries volume and odds.
func (s *PolymarketSource) Prepare(_ context.Context, c Candidate) (Candidate, bool, error) {
	return c, true, nil
}

// outcomeLine renders up to three outcomes as "Name pp%".
func outcomeLine(outcomes, prices []string) string {
	if len(outcomes) == 0 || len(outcomes) != len(prices) {
		return "n/a"
	}
	parts := make([]string, 0, 3)
	for i, o := range outcomes {
		if i == 3 {
			break
		}
		p, err := strconv.ParseFloat(prices[i], 64)
		if err != nil {
			return "n/a"
		}
		parts = append(parts, fmt.Sprintf("%s %.0f%%", o, p*100))
	}
	return strings.Join(parts, " / ")
}
