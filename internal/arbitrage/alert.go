package arbitrage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/polyarb/internal/domain"
	"github.com/alanyoungcy/polyarb/internal/metrics"
	"github.com/alanyoungcy/polyarb/internal/notify"
)

// Notifier delivers an alert payload. *notify.Notifier satisfies it.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// AlerterConfig configures an Alerter.
type AlerterConfig struct {
	Dedup    *Deduplicator
	Notifier Notifier
	// Store is optional; when set every alerted opportunity is persisted.
	Store domain.OpportunityStore
	// PerDirection gives each hedge direction its own cooldown slot instead
	// of sharing one slot per platform-A question.
	PerDirection bool
	Now          func() time.Time
	Logger       *slog.Logger
}

// Alerter turns qualifying evaluations into at most one notification per
// cooldown key and window.
type Alerter struct {
	dedup        *Deduplicator
	notifier     Notifier
	store        domain.OpportunityStore
	perDirection bool
	now          func() time.Time
	logger       *slog.Logger
}

// NewAlerter creates an Alerter from cfg.
func NewAlerter(cfg AlerterConfig) *Alerter {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Alerter{
		dedup:        cfg.Dedup,
		notifier:     cfg.Notifier,
		store:        cfg.Store,
		perDirection: cfg.PerDirection,
		now:          now,
		logger:       cfg.Logger.With(slog.String("component", "alerter")),
	}
}

// Handle alerts every qualifying evaluation of pair that is not cooling down
// and returns the opportunities that were alerted. Delivery and persistence
// failures are logged, never returned.
func (a *Alerter) Handle(ctx context.Context, pair domain.MatchedPair, evals []domain.Evaluation) []domain.Opportunity {
	var alerted []domain.Opportunity
	base := AlertKey(pair.A.Question)

	for _, ev := range evals {
		if !ev.Qualifies {
			continue
		}
		metrics.OpportunitiesTotal.WithLabelValues(string(ev.Direction)).Inc()
		metrics.OpportunityROIBps.Observe(ev.ROI * 10000)

		key := base
		if a.perDirection {
			key = base + ":" + string(ev.Direction)
		}
		if !a.dedup.CanAlert(ctx, key) {
			metrics.AlertsTotal.WithLabelValues("suppressed").Inc()
			a.logger.DebugContext(ctx, "alert suppressed by cooldown",
				slog.String("key", key),
				slog.String("direction", string(ev.Direction)),
			)
			continue
		}
		if err := a.dedup.MarkAlerted(ctx, key); err != nil {
			a.logger.WarnContext(ctx, "mark alerted failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}

		opp := newOpportunity(key, pair, ev, a.now())
		title, message := FormatAlert(opp)
		if err := a.notifier.Notify(ctx, notify.EventArbitrage, title, message); err != nil {
			metrics.AlertsTotal.WithLabelValues("failed").Inc()
			a.logger.ErrorContext(ctx, "alert delivery failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		} else {
			metrics.AlertsTotal.WithLabelValues("sent").Inc()
		}
		a.logger.InfoContext(ctx, "arbitrage opportunity",
			slog.String("direction", string(ev.Direction)),
			slog.Float64("roi", ev.ROI),
			slog.Float64("cost", ev.Cost),
			slog.Bool("derived_price", ev.Derived),
			slog.String("question_a", pair.A.Question),
			slog.String("question_b", pair.B.Question),
		)

		if a.store != nil {
			if err := a.store.Insert(ctx, opp); err != nil {
				a.logger.WarnContext(ctx, "persist opportunity failed",
					slog.String("id", opp.ID),
					slog.String("error", err.Error()),
				)
			}
		}
		alerted = append(alerted, opp)
	}
	return alerted
}

func newOpportunity(key string, pair domain.MatchedPair, ev domain.Evaluation, at time.Time) domain.Opportunity {
	return domain.Opportunity{
		ID:         uuid.New().String(),
		AlertKey:   key,
		Direction:  ev.Direction,
		PlatformA:  pair.A.Platform,
		PlatformB:  pair.B.Platform,
		MarketA:    pair.A.ID,
		MarketB:    pair.B.ID,
		QuestionA:  pair.A.Question,
		QuestionB:  pair.B.Question,
		MatchScore: pair.Score,
		YesAsk:     ev.YesAsk,
		NoAsk:      ev.NoAsk,
		Cost:       ev.Cost,
		ROI:        ev.ROI,
		Derived:    ev.Derived,
		DetectedAt: at.UTC(),
	}
}

// FormatAlert renders the notification title and body for opp: direction
// label, ROI as a percentage with two decimals, cost with three decimals and
// both original questions.
func FormatAlert(opp domain.Opportunity) (title, message string) {
	title = fmt.Sprintf("[Arbitrage %s]", opp.Direction)
	message = fmt.Sprintf("ROI: %.2f%%\nCost: %.3f\n%s: %s\n%s: %s",
		opp.ROI*100,
		opp.Cost,
		opp.PlatformA.Label(), opp.QuestionA,
		opp.PlatformB.Label(), opp.QuestionB,
	)
	if opp.Derived {
		message += "\n(one leg priced from the opposite outcome)"
	}
	return title, message
}
