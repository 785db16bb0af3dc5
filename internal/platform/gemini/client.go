// Package gemini asks Google's Gemini model, grounded with Google Search,
// for a win probability on a head-to-head sports event.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alanyoungcy/polyarb/internal/domain"
	"github.com/alanyoungcy/polyarb/internal/platform/fetch"
)

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("gemini: empty response")

// Client calls the generateContent endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	fetch   *fetch.Client
	now     func() time.Time
}

// NewClient creates a Gemini client. baseURL is the API root, e.g.
// "https://generativelanguage.googleapis.com".
func NewClient(baseURL, apiKey, model string, fc *fetch.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		model:   model,
		fetch:   fc,
		now:     time.Now,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type tool struct {
	GoogleSearch struct{} `json:"google_search"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
	Tools    []tool    `json:"tools"`
}

type generateResponse struct {
	Candidates []struct {
		Content *content `json:"content"`
	} `json:"candidates"`
}

// AnalyzeMatch returns the model's prediction for req. A title that is not
// a head-to-head matchup yields (nil, nil) without calling the API.
func (c *Client) AnalyzeMatch(ctx context.Context, req domain.MatchRequest) (*domain.MatchPrediction, error) {
	teamA, teamB, ok := domain.SplitMatchup(req.Title)
	if !ok {
		return nil, nil
	}

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: c.prompt(req, teamA, teamB)}}}},
		Tools:    []tool{{}},
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))

	header := http.Header{}
	header.Set("Content-Type", "application/json")

	var resp generateResponse
	if err := c.fetch.PostJSON(ctx, endpoint, header, body, &resp); err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	text := firstText(resp)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	pred, err := ParsePrediction(text)
	if err != nil {
		return nil, err
	}
	if pred.TeamA == "" {
		pred.TeamA = teamA
	}
	if pred.TeamB == "" {
		pred.TeamB = teamB
	}
	return pred, nil
}

func firstText(resp generateResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}

// ParsePrediction decodes the model's JSON answer, tolerating markdown code
// fences, and rescales the probabilities when they are more than one point
// off 100.
func ParsePrediction(text string) (*domain.MatchPrediction, error) {
	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	var pred domain.MatchPrediction
	if err := json.Unmarshal([]byte(clean), &pred); err != nil {
		return nil, fmt.Errorf("gemini: decode prediction: %w", err)
	}

	sum := pred.ProbA + pred.ProbB
	if math.Abs(sum-100) > 1 && sum > 0 {
		pred.ProbA = pred.ProbA / sum * 100
		pred.ProbB = pred.ProbB / sum * 100
	}
	return &pred, nil
}

func (c *Client) prompt(req domain.MatchRequest, teamA, teamB string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a sports data analyst. Estimate the win probability of each side in %s vs %s.\n", teamA, teamB)
	fmt.Fprintf(&b, "The two probabilities must sum to 100.\n\n")
	fmt.Fprintf(&b, "Today: %s\n", c.now().Format("2006-01-02"))
	fmt.Fprintf(&b, "Event: %s\n", req.Title)
	if req.Category != "" {
		fmt.Fprintf(&b, "Category: %s (use it to identify the sport and league)\n", req.Category)
	}
	if req.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", req.Description)
	}
	if req.MarketLine != "" {
		fmt.Fprintf(&b, "Current market odds: %s\n", req.MarketLine)
	}
	b.WriteString(`
Steps:
1. Identify the sport and league from the team names and category.
2. Search for today's news on both sides: injuries, lineups, travel, and the
   current odds at major bookmakers and prediction markets.
3. Weigh strength, home advantage and head-to-head record into final probabilities.

Respond ONLY with a JSON object, no markdown:
`)
	fmt.Fprintf(&b, `{"sport": "league, e.g. NBA", "teamA": %q, "teamB": %q, "probA": 0.0, "probB": 0.0, "reasoning": "at most three lines", "risks": "two key risks, short"}`, teamA, teamB)
	b.WriteString("\n")
	return b.String()
}
