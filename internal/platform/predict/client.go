// Package predict is the Predict.fun REST adapter: cursor-paged market
// listing, YES order books and per-market stats.
package predict

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/polyarb/internal/domain"
	"github.com/alanyoungcy/polyarb/internal/platform/fetch"
	"github.com/alanyoungcy/polyarb/internal/pricing"
)

const apiKeyHeader = "x-api-key"

// Client talks to the Predict.fun API. The fetch client it is given should
// carry the venue's minimum inter-request gap.
type Client struct {
	baseURL   string
	apiKey    string
	fetch     *fetch.Client
	pageSize  int
	pagePause time.Duration
}

// NewClient creates a Predict.fun client.
func NewClient(baseURL, apiKey string, fc *fetch.Client, pageSize int) *Client {
	if pageSize < 1 {
		pageSize = 50
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		fetch:     fc,
		pageSize:  pageSize,
		pagePause: 100 * time.Millisecond,
	}
}

func (c *Client) header() http.Header {
	h := http.Header{}
	h.Set(apiKeyHeader, c.apiKey)
	return h
}

// ListRaw follows the listing cursor until limit entries were read, maxPages
// pages were fetched (0 means no page cap), or the API stops returning a
// cursor. Entries are returned unfiltered in API order.
func (c *Client) ListRaw(ctx context.Context, limit, maxPages int) ([]APIMarket, error) {
	var (
		all    []APIMarket
		cursor string
		pages  int
	)
	for len(all) < limit && (maxPages == 0 || pages < maxPages) {
		params := url.Values{}
		params.Set("first", strconv.Itoa(c.pageSize))
		if cursor != "" {
			params.Set("after", cursor)
		}

		var page marketsPage
		if err := c.fetch.GetJSON(ctx, c.baseURL+"/v1/markets?"+params.Encode(), c.header(), &page); err != nil {
			if fetch.IsNotFound(err) {
				break
			}
			return nil, fmt.Errorf("predict: list markets page %d: %w", pages, err)
		}
		pages++
		if len(page.Data) == 0 {
			break
		}
		all = append(all, page.Data...)
		if page.Cursor == "" {
			break
		}
		cursor = page.Cursor

		if c.pagePause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.pagePause):
			}
		}
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// GetOrderBook returns the YES book for a market, or nil when the market or
// its book is unknown.
func (c *Client) GetOrderBook(ctx context.Context, marketID string) (*domain.OrderBook, error) {
	var resp bookResponse
	err := c.fetch.GetJSON(ctx, c.baseURL+"/v1/markets/"+url.PathEscape(marketID)+"/orderbook", c.header(), &resp)
	if fetch.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("predict: orderbook %s: %w", marketID, err)
	}
	if resp.Data == nil {
		return nil, nil
	}
	return resp.Data.ToOrderBook(), nil
}

// GetStats returns volume and liquidity figures for a market, or nil when
// the API has none.
func (c *Client) GetStats(ctx context.Context, marketID string) (*Stats, error) {
	var resp statsResponse
	err := c.fetch.GetJSON(ctx, c.baseURL+"/v1/markets/"+url.PathEscape(marketID)+"/stats", c.header(), &resp)
	if fetch.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("predict: stats %s: %w", marketID, err)
	}
	return resp.Data, nil
}

// Venue adapts the client to the scanner.
type Venue struct {
	client *Client
}

// NewVenue wraps a client.
func NewVenue(c *Client) *Venue { return &Venue{client: c} }

// Name returns the platform identifier.
func (v *Venue) Name() domain.Platform { return domain.PlatformPredict }

// ListMarkets returns open markets that carry an id and a question, newest
// first as the API orders them.
func (v *Venue) ListMarkets(ctx context.Context, limit int) ([]domain.Market, error) {
	raw, err := v.client.ListRaw(ctx, limit, 0)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Market, 0, len(raw))
	for i := range raw {
		if !raw[i].Open() {
			continue
		}
		m := raw[i].ToDomainMarket()
		if m.ID == "" || m.Question == "" {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// Quote prices a market from its single YES book. NO prices are derived.
func (v *Venue) Quote(ctx context.Context, m domain.Market) (domain.BinaryQuote, error) {
	book, err := v.client.GetOrderBook(ctx, m.ID)
	if err != nil {
		return domain.BinaryQuote{}, err
	}
	return pricing.FromYesBook(book), nil
}
