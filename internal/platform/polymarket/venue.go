package polymarket

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polyarb/internal/domain"
	"github.com/alanyoungcy/polyarb/internal/pricing"
)

// Venue exposes Polymarket to the scanner: markets from Gamma, prices from
// the two per-outcome CLOB books.
type Venue struct {
	gamma *GammaClient
	clob  *ClobClient
}

// NewVenue combines a Gamma and a CLOB client.
func NewVenue(gamma *GammaClient, clob *ClobClient) *Venue {
	return &Venue{gamma: gamma, clob: clob}
}

// Name returns the platform identifier.
func (v *Venue) Name() domain.Platform { return domain.PlatformPolymarket }

// ListMarkets returns up to limit usable open markets, highest volume first.
func (v *Venue) ListMarkets(ctx context.Context, limit int) ([]domain.Market, error) {
	return v.gamma.ListActiveMarkets(ctx, limit)
}

// Quote fetches the YES and NO books concurrently and reduces each to its
// best bid and ask.
func (v *Venue) Quote(ctx context.Context, m domain.Market) (domain.BinaryQuote, error) {
	var yes, no *domain.OrderBook
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		yes, err = v.clob.GetBook(gctx, m.YesRef)
		return err
	})
	g.Go(func() error {
		var err error
		no, err = v.clob.GetBook(gctx, m.NoRef)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.BinaryQuote{}, err
	}
	return pricing.Split(yes, no), nil
}
