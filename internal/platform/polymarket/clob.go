package polymarket

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/alanyoungcy/polyarb/internal/domain"
	"github.com/alanyoungcy/polyarb/internal/platform/fetch"
)

// ClobClient reads public order books from the Polymarket CLOB API.
type ClobClient struct {
	baseURL string
	fetch   *fetch.Client
}

// NewClobClient creates a CLOB client rooted at baseURL, e.g.
// "https://clob.polymarket.com".
func NewClobClient(baseURL string, fc *fetch.Client) *ClobClient {
	return &ClobClient{baseURL: strings.TrimRight(baseURL, "/"), fetch: fc}
}

// GetBook returns the order book for one outcome token. An unknown token or
// an empty token id yields a nil book and no error.
func (c *ClobClient) GetBook(ctx context.Context, tokenID string) (*domain.OrderBook, error) {
	if tokenID == "" {
		return nil, nil
	}

	var book APIBook
	err := c.fetch.GetJSON(ctx, c.baseURL+"/book?token_id="+url.QueryEscape(tokenID), nil, &book)
	if fetch.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("polymarket/clob: get book %s: %w", tokenID, err)
	}
	if len(book.Bids) == 0 && len(book.Asks) == 0 {
		return nil, nil
	}
	return book.ToOrderBook(), nil
}
