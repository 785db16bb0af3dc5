package domain

import "time"

// Direction names one side of the cross-venue hedge.
type Direction string

const (
	// DirectionAYesBNo buys YES on platform A and NO on platform B.
	DirectionAYesBNo Direction = "A"
	// DirectionBYesANo buys YES on platform B and NO on platform A.
	DirectionBYesANo Direction = "B"
)

// Evaluation is the priced result of one hedge direction.
type Evaluation struct {
	Direction Direction
	YesAsk    float64
	NoAsk     float64
	Cost      float64
	ROI       float64
	Qualifies bool
	// Derived is set when either leg used a complement-derived price.
	Derived bool
}

// Opportunity is a qualifying evaluation that was alerted and recorded.
type Opportunity struct {
	ID         string    `json:"id"`
	AlertKey   string    `json:"alert_key"`
	Direction  Direction `json:"direction"`
	PlatformA  Platform  `json:"platform_a"`
	PlatformB  Platform  `json:"platform_b"`
	MarketA    string    `json:"market_a"`
	MarketB    string    `json:"market_b"`
	QuestionA  string    `json:"question_a"`
	QuestionB  string    `json:"question_b"`
	MatchScore float64   `json:"match_score"`
	YesAsk     float64   `json:"yes_ask"`
	NoAsk      float64   `json:"no_ask"`
	Cost       float64   `json:"cost"`
	ROI        float64   `json:"roi"`
	Derived    bool      `json:"derived"`
	DetectedAt time.Time `json:"detected_at"`
}
