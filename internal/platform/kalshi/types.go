package kalshi

import (
	"encoding/json"

	"github.com/alanyoungcy/polyarb/internal/domain"
)

// --------------------------------------------------------------------------
// Kalshi API DTOs
// --------------------------------------------------------------------------

// KalshiMarket represents a market as returned by the Kalshi REST API.
type KalshiMarket struct {
	Ticker       string `json:"ticker"`
	EventTicker  string `json:"event_ticker"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	Status       string `json:"status"` // "open", "closed", "settled"
	Volume       int64  `json:"volume"`
	Volume24H    int64  `json:"volume_24h"`
	OpenInterest int64  `json:"open_interest"`
	CloseTime    string `json:"close_time"`
}

// ToDomainMarket converts a listing entry. Kalshi serves one combined book
// per ticker, so the outcome refs stay empty.
func (m *KalshiMarket) ToDomainMarket() domain.Market {
	return domain.Market{
		ID:       m.Ticker,
		Platform: domain.PlatformKalshi,
		Question: m.Title,
		Volume:   float64(m.Volume),
	}
}

// KalshiOrderbook holds the resting bids on both sides of a market. Kalshi
// publishes no asks: a YES ask is implied by the best NO bid and vice versa.
type KalshiOrderbook struct {
	Ticker  string             `json:"-"`
	YesBids []KalshiPriceLevel `json:"yes"`
	NoBids  []KalshiPriceLevel `json:"no"`
}

// KalshiPriceLevel is a single price+quantity entry in the Kalshi orderbook.
// On the wire it is a two-element array [cents, quantity].
type KalshiPriceLevel struct {
	Price    int64 // in cents (1-99)
	Quantity int64 // number of contracts
}

// UnmarshalJSON decodes the [cents, quantity] array form.
func (l *KalshiPriceLevel) UnmarshalJSON(data []byte) error {
	var pair []int64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) > 0 {
		l.Price = pair[0]
	}
	if len(pair) > 1 {
		l.Quantity = pair[1]
	}
	return nil
}

// --------------------------------------------------------------------------
// Conversion helpers
// --------------------------------------------------------------------------

// levels converts cent-denominated levels to probability prices.
func levels(in []KalshiPriceLevel) []domain.PriceLevel {
	out := make([]domain.PriceLevel, 0, len(in))
	for _, l := range in {
		out = append(out, domain.PriceLevel{Price: float64(l.Price) / 100, Size: float64(l.Quantity)})
	}
	return out
}
