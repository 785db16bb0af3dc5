package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/alanyoungcy/polyarb/internal/domain"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexFloat accepts a JSON number or a numeric string. Anything else decodes
// to 0.
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

// stringList decodes either a JSON array of strings or a string holding a
// JSON-encoded array, e.g. "[\"Yes\",\"No\"]", which is how Gamma ships
// outcomes, outcomePrices and clobTokenIds.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil || s == "" {
		*l = nil
		return nil
	}
	if err := json.Unmarshal([]byte(s), &arr); err != nil {
		*l = nil
		return nil
	}
	*l = arr
	return nil
}

// --------------------------------------------------------------------------
// Gamma API DTOs
// --------------------------------------------------------------------------

// APIEvent represents an event as returned by the Polymarket Gamma API.
// An event groups one or more related markets.
type APIEvent struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	Active      flexBool    `json:"active"`
	Closed      bool        `json:"closed"`
	Volume      flexFloat   `json:"volume"`
	Markets     []APIMarket `json:"markets"`
}

// APIMarket represents a market as returned by the Polymarket Gamma API.
type APIMarket struct {
	ID            string     `json:"id"`
	ConditionID   string     `json:"conditionId"`
	Question      string     `json:"question"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Description   string     `json:"description"`
	Active        flexBool   `json:"active"`
	Closed        bool       `json:"closed"`
	Outcomes      stringList `json:"outcomes"`
	OutcomePrices stringList `json:"outcomePrices"`
	ClobTokenIDs  stringList `json:"clobTokenIds"`
	Tokens        []Token    `json:"tokens"`
	Volume        flexFloat  `json:"volume"`
}

// Token represents a token entry inside the Gamma API market response.
type Token struct {
	TokenID  string `json:"token_id"`
	TokenID2 string `json:"tokenId"`
	Outcome  string `json:"outcome"`
}

func (t Token) id() string {
	if t.TokenID != "" {
		return t.TokenID
	}
	return t.TokenID2
}

// ToDomainMarket converts a Gamma market. ok is false when the market has no
// question or lacks either outcome token and so cannot be priced.
func (m *APIMarket) ToDomainMarket() (domain.Market, bool) {
	dm := domain.Market{
		ID:       m.ID,
		Platform: domain.PlatformPolymarket,
		Question: m.Question,
		Volume:   float64(m.Volume),
	}
	if dm.ID == "" {
		dm.ID = m.ConditionID
	}
	if dm.Question == "" {
		dm.Question = m.Title
	}

	if len(m.ClobTokenIDs) >= 2 {
		dm.YesRef, dm.NoRef = m.ClobTokenIDs[0], m.ClobTokenIDs[1]
	}
	if dm.YesRef == "" && len(m.Tokens) > 0 {
		dm.YesRef = m.Tokens[0].id()
	}
	if dm.NoRef == "" && len(m.Tokens) > 1 {
		dm.NoRef = m.Tokens[1].id()
	}

	return dm, dm.Question != "" && dm.HasOutcomeRefs()
}

// --------------------------------------------------------------------------
// CLOB API DTOs
// --------------------------------------------------------------------------

// APIBook is the response of GET /book.
type APIBook struct {
	Market  string     `json:"market"`
	AssetID string     `json:"asset_id"`
	Bids    []APILevel `json:"bids"`
	Asks    []APILevel `json:"asks"`
}

// APILevel is a single price level; the CLOB sends numbers as strings.
type APILevel struct {
	Price flexFloat `json:"price"`
	Size  flexFloat `json:"size"`
}

// ToOrderBook converts the CLOB book to a domain.OrderBook.
func (b *APIBook) ToOrderBook() *domain.OrderBook {
	book := &domain.OrderBook{
		Bids: make([]domain.PriceLevel, 0, len(b.Bids)),
		Asks: make([]domain.PriceLevel, 0, len(b.Asks)),
	}
	for _, l := range b.Bids {
		book.Bids = append(book.Bids, domain.PriceLevel{Price: float64(l.Price), Size: float64(l.Size)})
	}
	for _, l := range b.Asks {
		book.Asks = append(book.Asks, domain.PriceLevel{Price: float64(l.Price), Size: float64(l.Size)})
	}
	return book
}
