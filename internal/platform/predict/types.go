package predict

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/alanyoungcy/polyarb/internal/domain"
)

// flexID accepts a market id sent either as a JSON string or a number.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*f = 0
		return nil
	}
	n, _ = strconv.ParseFloat(strings.TrimSpace(s), 64)
	*f = flexFloat(n)
	return nil
}

// Market statuses that mean the market no longer trades.
const (
	StatusResolved = "RESOLVED"
	StatusClosed   = "CLOSED"
)

// APIMarket is one entry of GET /v1/markets.
type APIMarket struct {
	ID           flexID `json:"id"`
	Question     string `json:"question"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	CategorySlug string `json:"categorySlug"`
	Status       string `json:"status"`
}

// Text returns the question, falling back to the title.
func (m *APIMarket) Text() string {
	if m.Question != "" {
		return m.Question
	}
	return m.Title
}

// Open reports whether the market is still trading.
func (m *APIMarket) Open() bool {
	return m.Status != StatusResolved && m.Status != StatusClosed
}

// ToDomainMarket converts a listing entry. Predict.fun quotes a single YES
// book per market, so the outcome refs stay empty and the book is addressed
// by ID.
func (m *APIMarket) ToDomainMarket() domain.Market {
	return domain.Market{
		ID:       string(m.ID),
		Platform: domain.PlatformPredict,
		Question: m.Text(),
	}
}

type marketsPage struct {
	Data   []APIMarket `json:"data"`
	Cursor string      `json:"cursor"`
}

// APIBook is the data payload of GET /v1/markets/{id}/orderbook. Levels are
// [price, size] pairs for the YES outcome.
type APIBook struct {
	Bids [][]flexFloat `json:"bids"`
	Asks [][]flexFloat `json:"asks"`
}

type bookResponse struct {
	Data *APIBook `json:"data"`
}

// ToOrderBook converts the YES book. Malformed levels are skipped.
func (b *APIBook) ToOrderBook() *domain.OrderBook {
	return &domain.OrderBook{Bids: toLevels(b.Bids), Asks: toLevels(b.Asks)}
}

func toLevels(raw [][]flexFloat) []domain.PriceLevel {
	out := make([]domain.PriceLevel, 0, len(raw))
	for _, l := range raw {
		if len(l) == 0 {
			continue
		}
		lvl := domain.PriceLevel{Price: float64(l[0])}
		if len(l) > 1 {
			lvl.Size = float64(l[1])
		}
		out = append(out, lvl)
	}
	return out
}

// Stats is the data payload of GET /v1/markets/{id}/stats.
type Stats struct {
	VolumeTotalUSD    flexFloat `json:"volumeTotalUsd"`
	Volume24hUSD      flexFloat `json:"volume24hUsd"`
	TotalLiquidityUSD flexFloat `json:"totalLiquidityUsd"`
}

type statsResponse struct {
	Data *Stats `json:"data"`
}
