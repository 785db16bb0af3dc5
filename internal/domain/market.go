package domain

// Platform identifies a prediction-market venue.
type Platform string

const (
	PlatformPolymarket Platform = "polymarket"
	PlatformPredict    Platform = "predict_fun"
	PlatformKalshi     Platform = "kalshi"
)

// Label returns the human-readable venue name used in alerts.
func (p Platform) Label() string {
	switch p {
	case PlatformPolymarket:
		return "Polymarket"
	case PlatformPredict:
		return "Predict.fun"
	case PlatformKalshi:
		return "Kalshi"
	default:
		return string(p)
	}
}

// Market is one tradable binary question on one platform. It is rebuilt on
// every scan cycle and never persisted.
type Market struct {
	ID       string
	Platform Platform
	Question string
	// YesRef and NoRef address the per-outcome order books. Platforms with a
	// combined book leave them empty and are priced by ID.
	YesRef string
	NoRef  string
	Volume float64
}

// HasOutcomeRefs reports whether both per-outcome book references are set.
func (m Market) HasOutcomeRefs() bool {
	return m.YesRef != "" && m.NoRef != ""
}
