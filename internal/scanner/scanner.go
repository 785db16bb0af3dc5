// Package scanner runs the arbitrage scan cycle: list markets on two venues,
// match questions, price each pair and hand qualifying directions to the
// alerter.
package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyarb/internal/arbitrage"
	"github.com/alanyoungcy/polyarb/internal/domain"
	"github.com/alanyoungcy/polyarb/internal/matching"
	"github.com/alanyoungcy/polyarb/internal/metrics"
)

const (
	cycleLockKey = "scan-cycle"
	cycleLockTTL = 10 * time.Minute
)

// Venue is one prediction-market platform as seen by the scanner.
type Venue interface {
	Name() domain.Platform
	ListMarkets(ctx context.Context, limit int) ([]domain.Market, error)
	Quote(ctx context.Context, m domain.Market) (domain.BinaryQuote, error)
}

// Handler receives the evaluations of one priced pair and returns the
// opportunities it alerted. *arbitrage.Alerter satisfies it.
type Handler interface {
	Handle(ctx context.Context, pair domain.MatchedPair, evals []domain.Evaluation) []domain.Opportunity
}

// Config wires a Scanner.
type Config struct {
	VenueA Venue
	VenueB Venue
	LimitA int
	LimitB int

	Matcher   *matching.Matcher
	Evaluator *arbitrage.Evaluator
	Handler   Handler

	MaxPairs int
	Interval time.Duration

	// Lock is optional; when set each cycle holds a shared lock so replicas
	// never scan concurrently.
	Lock domain.LockManager
	// Archive is optional; when set every report is uploaded as JSON.
	Archive domain.BlobWriter

	Now    func() time.Time
	Logger *slog.Logger
}

// Scanner executes scan cycles one at a time.
type Scanner struct {
	cfg    Config
	now    func() time.Time
	logger *slog.Logger

	mu   sync.RWMutex
	last *CycleReport
}

// New creates a Scanner.
func New(cfg Config) *Scanner {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Scanner{
		cfg:    cfg,
		now:    now,
		logger: cfg.Logger.With(slog.String("component", "scanner")),
	}
}

// LastReport returns the report of the most recent finished cycle, or nil.
func (s *Scanner) LastReport() *CycleReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	r := *s.last
	return &r
}

// Run executes a cycle immediately and then again Interval after each cycle
// finishes. Cycle errors are logged and the loop continues. Run returns only
// when ctx is cancelled.
func (s *Scanner) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "scanner started",
		slog.String("venue_a", string(s.cfg.VenueA.Name())),
		slog.String("venue_b", string(s.cfg.VenueB.Name())),
		slog.Duration("interval", s.cfg.Interval),
	)
	for {
		if _, err := s.RunOnce(ctx); err != nil {
			switch {
			case ctx.Err() != nil:
			case errors.Is(err, domain.ErrLockHeld):
				s.logger.InfoContext(ctx, "scan cycle skipped, another instance holds the lock")
			default:
				s.logger.ErrorContext(ctx, "scan cycle failed", slog.String("error", err.Error()))
			}
		}

		select {
		case <-ctx.Done():
			s.logger.Info("scanner stopped")
			return ctx.Err()
		case <-time.After(s.cfg.Interval):
		}
	}
}

// RunOnce executes a single scan cycle. A failure to list either venue
// aborts the cycle; per-pair pricing problems only skip that pair.
func (s *Scanner) RunOnce(ctx context.Context) (*CycleReport, error) {
	if s.cfg.Lock != nil {
		unlock, err := s.cfg.Lock.Acquire(ctx, cycleLockKey, cycleLockTTL)
		if err != nil {
			return nil, fmt.Errorf("scanner: acquire cycle lock: %w", err)
		}
		defer unlock()
	}

	start := s.now()
	report := &CycleReport{
		ID:        uuid.New().String(),
		StartedAt: start.UTC(),
		VenueA:    s.cfg.VenueA.Name(),
		VenueB:    s.cfg.VenueB.Name(),
		Skipped:   map[string]int{},
	}
	log := s.logger.With(slog.String("cycle_id", report.ID))
	log.InfoContext(ctx, "scan cycle started")

	var marketsA, marketsB []domain.Market
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		marketsA, err = s.cfg.VenueA.ListMarkets(gctx, s.cfg.LimitA)
		if err != nil {
			return fmt.Errorf("list %s markets: %w", s.cfg.VenueA.Name(), err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		marketsB, err = s.cfg.VenueB.ListMarkets(gctx, s.cfg.LimitB)
		if err != nil {
			return fmt.Errorf("list %s markets: %w", s.cfg.VenueB.Name(), err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.ScanCyclesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("scanner: %w", err)
	}

	report.MarketsA = len(marketsA)
	report.MarketsB = len(marketsB)
	metrics.MarketsFetched.WithLabelValues(string(report.VenueA)).Set(float64(len(marketsA)))
	metrics.MarketsFetched.WithLabelValues(string(report.VenueB)).Set(float64(len(marketsB)))

	pairs := s.cfg.Matcher.Match(marketsA, marketsB)
	report.Matched = len(pairs)
	metrics.PairsMatched.Set(float64(len(pairs)))
	if s.cfg.MaxPairs > 0 && len(pairs) > s.cfg.MaxPairs {
		pairs = pairs[:s.cfg.MaxPairs]
	}
	report.Checked = len(pairs)
	log.InfoContext(ctx, "markets matched",
		slog.Int("markets_a", report.MarketsA),
		slog.Int("markets_b", report.MarketsB),
		slog.Int("pairs", report.Matched),
		slog.Int("checking", report.Checked),
	)

	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.checkPair(ctx, log, pair, report)
	}

	finished := s.now()
	report.FinishedAt = finished.UTC()
	report.DurationMs = finished.Sub(start).Milliseconds()
	metrics.ScanCyclesTotal.WithLabelValues("ok").Inc()
	metrics.ScanCycleDurationSeconds.Observe(finished.Sub(start).Seconds())

	log.InfoContext(ctx, "scan cycle finished",
		slog.Int("priced", report.Priced),
		slog.Int("qualifying", report.Qualifying),
		slog.Int("alerted", len(report.Opportunities)),
		slog.Int64("duration_ms", report.DurationMs),
	)

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	s.archive(ctx, log, report)
	return report, nil
}

func (s *Scanner) checkPair(ctx context.Context, log *slog.Logger, pair domain.MatchedPair, report *CycleReport) {
	var qa, qb domain.BinaryQuote
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		qa, err = s.cfg.VenueA.Quote(gctx, pair.A)
		return err
	})
	g.Go(func() error {
		var err error
		qb, err = s.cfg.VenueB.Quote(gctx, pair.B)
		return err
	})
	if err := g.Wait(); err != nil {
		report.skip("quote_error")
		log.WarnContext(ctx, "quote failed, skipping pair",
			slog.String("market_a", pair.A.ID),
			slog.String("market_b", pair.B.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	if qa.Empty() || qb.Empty() {
		report.skip("missing_book")
		log.InfoContext(ctx, "missing book, skipping pair",
			slog.String("market_a", pair.A.ID),
			slog.String("market_b", pair.B.ID),
			slog.Bool("a_empty", qa.Empty()),
			slog.Bool("b_empty", qb.Empty()),
		)
		return
	}
	report.Priced++

	evals := s.cfg.Evaluator.Evaluate(qa, qb)
	for _, ev := range evals {
		log.DebugContext(ctx, "direction evaluated",
			slog.String("question_a", pair.A.Question),
			slog.String("direction", string(ev.Direction)),
			slog.Float64("cost", ev.Cost),
			slog.Float64("roi", ev.ROI),
			slog.Bool("qualifies", ev.Qualifies),
		)
		if ev.Qualifies {
			report.Qualifying++
		}
	}
	report.Opportunities = append(report.Opportunities, s.cfg.Handler.Handle(ctx, pair, evals)...)
}

func (s *Scanner) archive(ctx context.Context, log *slog.Logger, report *CycleReport) {
	if s.cfg.Archive == nil {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		log.WarnContext(ctx, "encode cycle report failed", slog.String("error", err.Error()))
		return
	}
	if err := s.cfg.Archive.Put(ctx, report.ArchivePath(), bytes.NewReader(data), "application/json"); err != nil {
		log.WarnContext(ctx, "archive cycle report failed",
			slog.String("path", report.ArchivePath()),
			slog.String("error", err.Error()),
		)
	}
}
