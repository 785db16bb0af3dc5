package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyarb/internal/arbitrage"
	s3blob "github.com/alanyoungcy/polyarb/internal/blob/s3"
	"github.com/alanyoungcy/polyarb/internal/domain"
	"github.com/alanyoungcy/polyarb/internal/matching"
	"github.com/alanyoungcy/polyarb/internal/platform/fetch"
	"github.com/alanyoungcy/polyarb/internal/platform/gemini"
	"github.com/alanyoungcy/polyarb/internal/platform/kalshi"
	"github.com/alanyoungcy/polyarb/internal/platform/polymarket"
	"github.com/alanyoungcy/polyarb/internal/platform/predict"
	"github.com/alanyoungcy/polyarb/internal/scanner"
	"github.com/alanyoungcy/polyarb/internal/server"
	"github.com/alanyoungcy/polyarb/internal/server/handler"
	"github.com/alanyoungcy/polyarb/internal/sports"
	"github.com/alanyoungcy/polyarb/internal/state"
)

// ScanMode runs the arbitrage scan loop and, when enabled, the HTTP API until
// ctx is cancelled.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode", slog.String("venue_b", a.cfg.Scan.VenueB))

	venueA, limitA := a.polymarketVenue()
	venueB, limitB, err := a.venueB()
	if err != nil {
		return err
	}

	cooldowns := deps.CooldownStore
	if cooldowns == nil {
		cooldowns = arbitrage.NewMemoryCooldownStore(a.cfg.Scan.CooldownCapacity, a.cfg.Scan.Cooldown(), nil)
	}
	alerter := arbitrage.NewAlerter(arbitrage.AlerterConfig{
		Dedup:        arbitrage.NewDeduplicator(cooldowns, a.cfg.Scan.Cooldown(), nil, a.logger),
		Notifier:     deps.Notifier,
		Store:        deps.OpportunityStore,
		PerDirection: a.cfg.Scan.AlertKeyPerDirection,
		Logger:       a.logger,
	})

	var archive domain.BlobWriter
	if a.cfg.Scan.ArchiveReports {
		archive = deps.BlobWriter
	}

	scan := scanner.New(scanner.Config{
		VenueA:    venueA,
		VenueB:    venueB,
		LimitA:    limitA,
		LimitB:    limitB,
		Matcher:   matching.NewMatcher(a.cfg.Scan.MatchThreshold),
		Evaluator: arbitrage.NewEvaluator(a.cfg.Scan.ROIThreshold),
		Handler:   alerter,
		MaxPairs:  a.cfg.Scan.MaxPairsPerCycle,
		Interval:  a.cfg.Scan.ScanInterval(),
		Lock:      deps.LockManager,
		Archive:   archive,
		Logger:    a.logger,
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return scan.Run(ctx)
	})

	if a.cfg.Server.Enabled {
		srv := a.newServer(deps, scan, string(venueA.Name()), string(venueB.Name()))
		g.Go(func() error {
			return srv.Run(ctx)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// SportsMode runs every configured sports bot once and returns.
func (a *App) SportsMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting sports mode", slog.Any("sources", a.cfg.Sports.Sources))

	sources, err := a.sportsSources()
	if err != nil {
		return err
	}
	store, err := a.stateStore(deps)
	if err != nil {
		return err
	}

	analyst := gemini.NewClient(a.cfg.Gemini.BaseURL, a.cfg.Gemini.ApiKey, a.cfg.Gemini.Model,
		a.fetchClient(0))

	bot := sports.NewBot(sports.BotConfig{
		Sources:  sources,
		Analyst:  analyst,
		Notifier: deps.Notifier,
		State:    store,
		Pause:    a.cfg.Sports.Pause.Duration,
		Logger:   a.logger,
	})

	sum, err := bot.RunOnce(ctx)
	a.logger.InfoContext(ctx, "sports run finished",
		slog.Int("candidates", sum.Candidates),
		slog.Int("already_seen", sum.AlreadySeen),
		slog.Int("skipped", sum.Skipped),
		slog.Int("failed", sum.Failed),
		slog.Int("sent", sum.Sent),
	)
	if err != nil {
		return fmt.Errorf("app: sports run: %w", err)
	}
	return nil
}

// fetchClient returns a new transport. Each platform gets its own, so the
// request gap is tracked per platform.
func (a *App) fetchClient(gap time.Duration) *fetch.Client {
	return fetch.New(a.logger,
		fetch.WithRetries(a.cfg.Scan.Retries),
		fetch.WithMinGap(gap),
	)
}

// requestGap is the minimum spacing between requests to platform. Only
// Predict.fun penalizes bursts; Polymarket's YES and NO books and the Gemini
// calls are left unthrottled.
func (a *App) requestGap(platform domain.Platform) time.Duration {
	if platform == domain.PlatformPredict {
		return a.cfg.Scan.MinInterRequestGap()
	}
	return 0
}

func (a *App) gammaClient(fc *fetch.Client) *polymarket.GammaClient {
	pm := a.cfg.Polymarket
	return polymarket.NewGammaClient(pm.GammaHost, fc, pm.PageSize,
		time.Duration(pm.PagePauseMs)*time.Millisecond)
}

func (a *App) predictClient() *predict.Client {
	return predict.NewClient(a.cfg.Predict.BaseURL, a.cfg.Predict.ApiKey, a.fetchClient(a.requestGap(domain.PlatformPredict)), a.cfg.Predict.PageSize)
}

func (a *App) polymarketVenue() (*polymarket.Venue, int) {
	fc := a.fetchClient(a.requestGap(domain.PlatformPolymarket))
	clob := polymarket.NewClobClient(a.cfg.Polymarket.ClobHost, fc)
	return polymarket.NewVenue(a.gammaClient(fc), clob), a.cfg.Polymarket.MarketLimit
}

// venueB builds the platform-B venue selected by scan.venue_b together with
// its listing cap.
func (a *App) venueB() (scanner.Venue, int, error) {
	switch a.cfg.Scan.VenueB {
	case "predict":
		return predict.NewVenue(a.predictClient()), a.cfg.Predict.MarketLimit, nil
	case "kalshi":
		c := kalshi.NewClient(a.cfg.Kalshi.BaseURL, a.cfg.Kalshi.ApiKey, a.fetchClient(a.requestGap(domain.PlatformKalshi)))
		if path := a.cfg.Kalshi.RsaPrivateKeyPath; path != "" {
			pemBytes, err := os.ReadFile(path)
			if err != nil {
				return nil, 0, fmt.Errorf("app: read kalshi key: %w", err)
			}
			if err := c.SetRSAPrivateKey(pemBytes); err != nil {
				return nil, 0, fmt.Errorf("app: kalshi key: %w", err)
			}
		}
		return kalshi.NewVenue(c), a.cfg.Kalshi.MarketLimit, nil
	default:
		return nil, 0, fmt.Errorf("app: unknown venue_b %q", a.cfg.Scan.VenueB)
	}
}

// sportsSources builds the sources listed in sports.sources, in order.
func (a *App) sportsSources() ([]sports.Source, error) {
	sc := a.cfg.Sports
	sources := make([]sports.Source, 0, len(sc.Sources))
	for _, name := range sc.Sources {
		switch name {
		case "predict_fun":
			sources = append(sources, sports.NewPredictSource(a.predictClient(), sc.MaxPages, sc.MinVolumeUSD, a.logger))
		case "polymarket":
			leagues := []sports.League{
				{Name: "NBA", Tag: "nba", MinVolume: sc.NBAMinVolume},
				{Name: "NFL", Tag: "nfl", MinVolume: sc.NFLMinVolume},
			}
			sources = append(sources, sports.NewPolymarketSource(a.gammaClient(a.fetchClient(a.requestGap(domain.PlatformPolymarket))), leagues, sc.MaxVolume, a.logger))
		default:
			return nil, fmt.Errorf("app: unknown sports source %q", name)
		}
	}
	return sources, nil
}

// stateStore picks the seen-market store for sports.state_backend.
func (a *App) stateStore(deps *Dependencies) (domain.StateStore, error) {
	switch a.cfg.Sports.StateBackend {
	case "file":
		return state.NewFileStore(a.cfg.Sports.StateFile), nil
	case "s3":
		if deps.BlobReader == nil || deps.BlobWriter == nil {
			return nil, fmt.Errorf("app: state_backend s3 requires s3.enabled")
		}
		return s3blob.NewStateStore(deps.BlobReader, deps.BlobWriter, a.cfg.Sports.StateKey), nil
	default:
		return nil, fmt.Errorf("app: unknown state_backend %q", a.cfg.Sports.StateBackend)
	}
}

func (a *App) newServer(deps *Dependencies, reports handler.ReportSource, venueA, venueB string) *server.Server {
	return server.NewServer(server.Config{
		Port:           a.cfg.Server.Port,
		CORSOrigins:    a.cfg.Server.CORSOrigins,
		APIKey:         a.cfg.Server.APIKey,
		RateLimitRPS:   a.cfg.Server.RateLimitRPS,
		RateLimitBurst: a.cfg.Server.RateLimitBurst,
	}, server.Handlers{
		Health:        handler.NewHealthHandler(deps.HealthChecks, a.logger),
		Opportunities: handler.NewOpportunityHandler(deps.OpportunityStore, a.logger),
		Scan:          handler.NewScanHandler(reports),
		Status:        handler.NewStatusHandler(a.cfg.Mode, venueA, venueB),
	}, a.logger)
}
