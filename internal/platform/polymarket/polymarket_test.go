package polymarket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyarb/internal/domain"
	"github.com/alanyoungcy/polyarb/internal/platform/fetch"
)

func testFetch() *fetch.Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return fetch.New(logger, fetch.WithSleeper(func(context.Context, time.Duration) error { return nil }))
}

func TestAPIMarket_DecodesStringEncodedFields(t *testing.T) {
	raw := `{
		"id": "123",
		"question": "Will BTC hit 100k?",
		"active": "true",
		"outcomes": "[\"Yes\",\"No\"]",
		"outcomePrices": "[\"0.41\",\"0.59\"]",
		"clobTokenIds": "[\"tok-yes\",\"tok-no\"]",
		"volume": "1520.5"
	}`
	var m APIMarket
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	assert.True(t, bool(m.Active))
	assert.Equal(t, []string{"Yes", "No"}, []string(m.Outcomes))
	assert.Equal(t, []string{"0.41", "0.59"}, []string(m.OutcomePrices))

	dm, ok := m.ToDomainMarket()
	require.True(t, ok)
	assert.Equal(t, domain.Market{
		ID:       "123",
		Platform: domain.PlatformPolymarket,
		Question: "Will BTC hit 100k?",
		YesRef:   "tok-yes",
		NoRef:    "tok-no",
		Volume:   1520.5,
	}, dm)
}

func TestAPIMarket_FallsBackToTokensAndTitle(t *testing.T) {
	raw := `{
		"conditionId": "0xabc",
		"title": "Fed cuts in June?",
		"tokens": [{"tokenId": "y"}, {"token_id": "n"}],
		"volume": 10
	}`
	var m APIMarket
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	dm, ok := m.ToDomainMarket()
	require.True(t, ok)
	assert.Equal(t, "0xabc", dm.ID)
	assert.Equal(t, "Fed cuts in June?", dm.Question)
	assert.Equal(t, "y", dm.YesRef)
	assert.Equal(t, "n", dm.NoRef)
}

func TestAPIMarket_UnusableMarket(t *testing.T) {
	var m APIMarket
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","question":"q","clobTokenIds":"[\"only\"]"}`), &m))
	_, ok := m.ToDomainMarket()
	assert.False(t, ok)
}

func TestGammaClient_ListActiveMarketsPagesAndSorts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/markets", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("active"))
		assert.Equal(t, "false", r.URL.Query().Get("closed"))

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		var page []map[string]any
		switch offset {
		case 0:
			page = []map[string]any{
				{"id": "a", "question": "A?", "clobTokenIds": `["a1","a2"]`, "volume": "5"},
				{"id": "b", "question": "B?", "clobTokenIds": `["b1","b2"]`, "volume": 50},
			}
		case 2:
			page = []map[string]any{
				{"id": "c", "question": "", "clobTokenIds": `["c1","c2"]`, "volume": 99},
			}
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	g := NewGammaClient(srv.URL, testFetch(), 2, 0)
	markets, err := g.ListActiveMarkets(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, markets, 2)
	assert.Equal(t, "b", markets[0].ID)
	assert.Equal(t, "a", markets[1].ID)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestGammaClient_ListActiveMarketsRespectsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		page := make([]map[string]any, n)
		for i := range page {
			page[i] = map[string]any{"id": strconv.Itoa(i), "question": "q", "clobTokenIds": `["y","n"]`}
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	markets, err := NewGammaClient(srv.URL, testFetch(), 2, 0).ListActiveMarkets(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, markets, 3)
}

func TestGammaClient_ListEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events", r.URL.Path)
		assert.Equal(t, "nba", r.URL.Query().Get("tag_slug"))
		w.Write([]byte(`[{"id":"e1","title":"Lakers vs Celtics","markets":[{"question":"Lakers vs. Celtics","volume":"250000","outcomes":"[\"Lakers\",\"Celtics\"]","outcomePrices":"[\"0.45\",\"0.55\"]"}]}]`))
	}))
	defer srv.Close()

	events, err := NewGammaClient(srv.URL, testFetch(), 50, 0).ListEvents(context.Background(), "nba", 50)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Len(t, events[0].Markets, 1)
	assert.InDelta(t, 250000, float64(events[0].Markets[0].Volume), 1e-9)
	assert.Equal(t, []string{"Lakers", "Celtics"}, []string(events[0].Markets[0].Outcomes))
}

func TestClobClient_GetBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("token_id") {
		case "yes":
			w.Write([]byte(`{"bids":[{"price":"0.40","size":"10"},{"price":"0.42","size":"5"}],"asks":[{"price":"0.47","size":"3"},{"price":"0.45","size":"1"}]}`))
		case "empty":
			w.Write([]byte(`{"bids":[],"asks":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClobClient(srv.URL, testFetch())

	book, err := c.GetBook(context.Background(), "yes")
	require.NoError(t, err)
	require.NotNil(t, book)
	assert.Len(t, book.Bids, 2)
	assert.Equal(t, 0.45, book.Asks[1].Price)

	book, err = c.GetBook(context.Background(), "empty")
	require.NoError(t, err)
	assert.Nil(t, book)

	book, err = c.GetBook(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, book)

	book, err = c.GetBook(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, book)
}

func TestVenue_Quote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("token_id") {
		case "y":
			w.Write([]byte(`{"bids":[{"price":"0.40","size":"1"}],"asks":[{"price":"0.45","size":"1"}]}`))
		case "n":
			w.Write([]byte(`{"bids":[{"price":"0.50","size":"1"}],"asks":[{"price":"0.58","size":"1"}]}`))
		}
	}))
	defer srv.Close()

	fc := testFetch()
	v := NewVenue(NewGammaClient(srv.URL, fc, 10, 0), NewClobClient(srv.URL, fc))
	assert.Equal(t, domain.PlatformPolymarket, v.Name())

	q, err := v.Quote(context.Background(), domain.Market{ID: "m", YesRef: "y", NoRef: "n"})
	require.NoError(t, err)
	assert.Equal(t, domain.Known(0.45), q.Yes.Ask)
	assert.Equal(t, domain.Known(0.40), q.Yes.Bid)
	assert.Equal(t, domain.Known(0.58), q.No.Ask)
	assert.Equal(t, domain.Known(0.50), q.No.Bid)
}
