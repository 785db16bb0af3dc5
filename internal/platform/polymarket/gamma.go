package polymarket

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/polyarb/internal/domain"
	"github.com/alanyoungcy/polyarb/internal/platform/fetch"
)

// GammaClient is the REST client for the Polymarket Gamma API, which
// provides market discovery and event metadata.
type GammaClient struct {
	baseURL   string
	fetch     *fetch.Client
	pageSize  int
	pagePause time.Duration
}

// NewGammaClient creates a new Gamma API client.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func NewGammaClient(baseURL string, fc *fetch.Client, pageSize int, pagePause time.Duration) *GammaClient {
	if pageSize < 1 {
		pageSize = 500
	}
	return &GammaClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		fetch:     fc,
		pageSize:  pageSize,
		pagePause: pagePause,
	}
}

// ListActiveMarkets pages through open markets ordered by volume until limit
// usable markets have been read or the API runs dry. Markets without a
// question or without both outcome tokens are dropped. The result is sorted
// by volume, highest first.
func (g *GammaClient) ListActiveMarkets(ctx context.Context, limit int) ([]domain.Market, error) {
	var raw []APIMarket
	offset := 0

	for len(raw) < limit {
		n := min(limit-len(raw), g.pageSize)

		params := url.Values{}
		params.Set("active", "true")
		params.Set("closed", "false")
		params.Set("limit", strconv.Itoa(n))
		params.Set("offset", strconv.Itoa(offset))
		params.Set("order", "volume")
		params.Set("ascending", "false")

		var page []APIMarket
		err := g.fetch.GetJSON(ctx, g.baseURL+"/markets?"+params.Encode(), nil, &page)
		if err != nil && !fetch.IsNotFound(err) {
			return nil, fmt.Errorf("polymarket/gamma: list markets offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}
		raw = append(raw, page...)
		offset += len(page)
		if len(page) < n {
			break
		}

		if g.pagePause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(g.pagePause):
			}
		}
	}

	markets := make([]domain.Market, 0, len(raw))
	for i := range raw {
		if m, ok := raw[i].ToDomainMarket(); ok {
			markets = append(markets, m)
		}
	}
	sort.SliceStable(markets, func(i, j int) bool {
		return markets[i].Volume > markets[j].Volume
	})
	return markets, nil
}

// ListEvents returns open events for a tag slug (e.g. "nba") ordered by
// volume.
func (g *GammaClient) ListEvents(ctx context.Context, tag string, limit int) ([]APIEvent, error) {
	params := url.Values{}
	params.Set("closed", "false")
	params.Set("tag_slug", tag)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("order", "volume")
	params.Set("ascending", "false")

	var events []APIEvent
	err := g.fetch.GetJSON(ctx, g.baseURL+"/events?"+params.Encode(), nil, &events)
	if err != nil && !fetch.IsNotFound(err) {
		return nil, fmt.Errorf("polymarket/gamma: list events %s: %w", tag, err)
	}
	return events, nil
}
