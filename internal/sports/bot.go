package sports

import (
	"context"
	"log/slog"
	"time"

	"github.com/alanyoungcy/polyarb/internal/domain"
	"github.com/alanyoungcy/polyarb/internal/metrics"
	"github.com/alanyoungcy/polyarb/internal/notify"
)

// BotConfig wires a Bot.
type BotConfig struct {
	Sources  []Source
	Analyst  Analyst
	Notifier Notifier
	State    domain.StateStore
	// Pause is waited between two analyzed markets to stay under the
	// analyst's rate limit.
	Pause time.Duration
	// Sleep defaults to a context-aware time.After wait.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *slog.Logger
}

// Bot runs every source once per RunOnce call.
type Bot struct {
	cfg    BotConfig
	sleep  func(ctx context.Context, d time.Duration) error
	logger *slog.Logger
}

// Summary counts what a run did per outcome.
type Summary struct {
	Candidates  int
	AlreadySeen int
	Skipped     int
	Failed      int
	Sent        int
}

// NewBot creates a Bot.
func NewBot(cfg BotConfig) *Bot {
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	return &Bot{
		cfg:    cfg,
		sleep:  sleep,
		logger: cfg.Logger.With(slog.String("component", "sports_bot")),
	}
}

// RunOnce loads the seen set, processes every unseen candidate of every
// source, and saves the seen set. A market is marked seen only after its
// analysis was delivered, so skipped and failed markets are retried on the
// next run. The state is saved even when ctx is cancelled mid-run.
func (b *Bot) RunOnce(ctx context.Context) (Summary, error) {
	var sum Summary

	state, err := b.cfg.State.Load(ctx)
	if err != nil {
		b.logger.WarnContext(ctx, "load state failed, starting empty", slog.String("error", err.Error()))
		state = domain.SeenState{}
	}
	if state == nil {
		state = domain.SeenState{}
	}

	first := true
	for _, src := range b.cfg.Sources {
		if ctx.Err() != nil {
			break
		}
		b.runSource(ctx, src, state, &sum, &first)
	}

	if err := b.cfg.State.Save(context.WithoutCancel(ctx), state); err != nil {
		return sum, err
	}
	b.logger.InfoContext(ctx, "sports run finished",
		slog.Int("candidates", sum.Candidates),
		slog.Int("already_seen", sum.AlreadySeen),
		slog.Int("skipped", sum.Skipped),
		slog.Int("failed", sum.Failed),
		slog.Int("sent", sum.Sent),
	)
	return sum, ctx.Err()
}

func (b *Bot) runSource(ctx context.Context, src Source, state domain.SeenState, sum *Summary, first *bool) {
	log := b.logger.With(slog.String("source", src.Name()))

	cands, err := src.Candidates(ctx)
	if err != nil {
		log.ErrorContext(ctx, "list candidates failed", slog.String("error", err.Error()))
		return
	}

	seen := make(map[string]bool, len(state[src.Name()]))
	for _, id := range state[src.Name()] {
		seen[id] = true
	}

	sum.Candidates += len(cands)
	for _, c := range cands {
		if seen[c.ID] {
			sum.AlreadySeen++
			continue
		}
		if !*first {
			if err := b.sleep(ctx, b.cfg.Pause); err != nil {
				return
			}
		}
		*first = false

		switch b.process(ctx, log, src, c) {
		case "sent":
			sum.Sent++
			seen[c.ID] = true
			state[src.Name()] = append(state[src.Name()], c.ID)
		case "skipped":
			sum.Skipped++
		default:
			sum.Failed++
		}
	}
}

func (b *Bot) process(ctx context.Context, log *slog.Logger, src Source, c Candidate) (result string) {
	defer func() {
		metrics.SportsAnalysesTotal.WithLabelValues(src.Name(), result).Inc()
	}()

	prepared, ok, err := src.Prepare(ctx, c)
	if err != nil {
		log.WarnContext(ctx, "prepare market failed",
			slog.String("market_id", c.ID),
			slog.String("error", err.Error()),
		)
		return "failed"
	}
	if !ok {
		return "skipped"
	}

	pred, err := b.cfg.Analyst.AnalyzeMatch(ctx, domain.MatchRequest{
		Title:       prepared.Title,
		Category:    prepared.Category,
		Description: prepared.Description,
		MarketLine:  prepared.MarketLine,
	})
	if err != nil {
		log.WarnContext(ctx, "analysis failed",
			slog.String("market", prepared.Title),
			slog.String("error", err.Error()),
		)
		return "failed"
	}
	if pred == nil {
		log.InfoContext(ctx, "analysis unavailable", slog.String("market", prepared.Title))
		return "failed"
	}

	title, body := FormatMessage(src.Label(), prepared, pred)
	if err := b.cfg.Notifier.Notify(ctx, notify.EventSports, title, body); err != nil {
		log.ErrorContext(ctx, "send analysis failed",
			slog.String("market", prepared.Title),
			slog.String("error", err.Error()),
		)
		return "failed"
	}
	log.InfoContext(ctx, "analysis sent",
		slog.String("market_id", prepared.ID),
		slog.String("market", prepared.Title),
		slog.Float64("volume_usd", prepared.Volume),
	)
	return "sent"
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
