// Package kalshi is the Kalshi REST adapter. Market data endpoints are
// public; when an API key and RSA private key are configured every request
// is signed anyway so account rate limits apply.
package kalshi

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
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

const maxPageSize = 1000

// Client is the REST client for the Kalshi exchange API.
type Client struct {
	baseURL    string
	apiKeyID   string
	privateKey *rsa.PrivateKey
	fetch      *fetch.Client
	now        func() time.Time
}

// NewClient creates a new Kalshi REST client.
//
// baseURL is the API root, e.g. "https://api.elections.kalshi.com/trade-api/v2".
// apiKeyID is the Kalshi API key identifier and may be empty.
func NewClient(baseURL, apiKeyID string, fc *fetch.Client) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKeyID: apiKeyID,
		fetch:    fc,
		now:      time.Now,
	}
}

// SetRSAPrivateKey loads an RSA private key from PEM-encoded bytes and
// configures the client for RSA-signed authentication.
func (c *Client) SetRSAPrivateKey(pemBytes []byte) error {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return fmt.Errorf("kalshi: no PEM block found in private key")
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		// Try PKCS1 as fallback.
		pkcs1Key, pkcs1Err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if pkcs1Err != nil {
			return fmt.Errorf("kalshi: parse private key: %w (pkcs1: %v)", err, pkcs1Err)
		}
		c.privateKey = pkcs1Key
		return nil
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return fmt.Errorf("kalshi: expected RSA private key, got %T", key)
	}
	c.privateKey = rsaKey
	return nil
}

// GetMarkets returns one page of open markets and the cursor of the next.
func (c *Client) GetMarkets(ctx context.Context, limit int, cursor string) ([]KalshiMarket, string, error) {
	params := url.Values{}
	params.Set("status", "open")
	params.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	var resp struct {
		Markets []KalshiMarket `json:"markets"`
		Cursor  string         `json:"cursor"`
	}
	if err := c.get(ctx, "/markets?"+params.Encode(), &resp); err != nil {
		return nil, "", fmt.Errorf("kalshi: get markets: %w", err)
	}
	return resp.Markets, resp.Cursor, nil
}

// ListOpenMarkets follows the cursor until limit markets were read.
func (c *Client) ListOpenMarkets(ctx context.Context, limit int) ([]KalshiMarket, error) {
	var (
		all    []KalshiMarket
		cursor string
	)
	for len(all) < limit {
		page, next, err := c.GetMarkets(ctx, min(limit-len(all), maxPageSize), cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == "" || len(page) == 0 {
			break
		}
		cursor = next
	}
	return all, nil
}

// GetOrderbook returns the current orderbook for the given market ticker.
// An unknown ticker yields an empty book.
func (c *Client) GetOrderbook(ctx context.Context, ticker string) (KalshiOrderbook, error) {
	var resp struct {
		Orderbook KalshiOrderbook `json:"orderbook"`
	}
	err := c.get(ctx, "/markets/"+url.PathEscape(ticker)+"/orderbook", &resp)
	if err != nil && !fetch.IsNotFound(err) {
		return KalshiOrderbook{}, fmt.Errorf("kalshi: get orderbook %s: %w", ticker, err)
	}
	resp.Orderbook.Ticker = ticker
	return resp.Orderbook, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

func (c *Client) get(ctx context.Context, pathAndQuery string, out any) error {
	fullURL := c.baseURL + pathAndQuery
	header, err := c.signHeaders(http.MethodGet, fullURL)
	if err != nil {
		return fmt.Errorf("sign request: %w", err)
	}
	return c.fetch.GetJSON(ctx, fullURL, header, out)
}

// signHeaders builds the RSA authentication headers. Kalshi uses
// RSA-PSS-SHA256 signatures over timestamp + method + path, where path is the
// full URL path without the query string. Without a key no headers are sent.
func (c *Client) signHeaders(method, fullURL string) (http.Header, error) {
	if c.privateKey == nil || c.apiKeyID == "" {
		return nil, nil
	}

	u, err := url.Parse(fullURL)
	if err != nil {
		return nil, err
	}

	ts := strconv.FormatInt(c.now().UnixMilli(), 10)
	message := ts + method + u.Path

	hash := sha256.Sum256([]byte(message))
	signature, err := rsa.SignPSS(rand.Reader, c.privateKey, crypto.SHA256, hash[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
	})
	if err != nil {
		return nil, fmt.Errorf("RSA sign: %w", err)
	}

	h := http.Header{}
	h.Set("KALSHI-ACCESS-KEY", c.apiKeyID)
	h.Set("KALSHI-ACCESS-SIGNATURE", base64.StdEncoding.EncodeToString(signature))
	h.Set("KALSHI-ACCESS-TIMESTAMP", ts)
	return h, nil
}

// --------------------------------------------------------------------------
// Scanner venue
// --------------------------------------------------------------------------

// Venue adapts the client to the scanner.
type Venue struct {
	client *Client
}

// NewVenue wraps a client.
func NewVenue(c *Client) *Venue { return &Venue{client: c} }

// Name returns the platform identifier.
func (v *Venue) Name() domain.Platform { return domain.PlatformKalshi }

// ListMarkets returns open markets with a title.
func (v *Venue) ListMarkets(ctx context.Context, limit int) ([]domain.Market, error) {
	raw, err := v.client.ListOpenMarkets(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Market, 0, len(raw))
	for i := range raw {
		m := raw[i].ToDomainMarket()
		if m.ID == "" || m.Question == "" {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// Quote prices a market from its two bid ladders.
func (v *Venue) Quote(ctx context.Context, m domain.Market) (domain.BinaryQuote, error) {
	book, err := v.client.GetOrderbook(ctx, m.ID)
	if err != nil {
		return domain.BinaryQuote{}, err
	}
	return pricing.FromBidBooks(levels(book.YesBids), levels(book.NoBids)), nil
}
