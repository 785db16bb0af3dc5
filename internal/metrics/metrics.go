// Package metrics holds the Prometheus collectors shared by the scanner, the
// fetch transport and the sports bots.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScanCyclesTotal counts finished scan cycles by outcome ("ok", "error").
	ScanCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyarb_scan_cycles_total",
			Help: "Total number of arbitrage scan cycles",
		},
		[]string{"result"},
	)

	// ScanCycleDurationSeconds tracks wall time of one scan cycle.
	ScanCycleDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polyarb_scan_cycle_duration_seconds",
		Help:    "Duration of one arbitrage scan cycle",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	// MarketsFetched is the market count of the last cycle per venue.
	MarketsFetched = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "polyarb_markets_fetched",
			Help: "Markets fetched in the last scan cycle",
		},
		[]string{"venue"},
	)

	// PairsMatched is the matched pair count of the last cycle.
	PairsMatched = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polyarb_pairs_matched",
		Help: "Matched market pairs in the last scan cycle",
	})

	// PairsSkippedTotal counts pairs that could not be priced, by reason.
	PairsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyarb_pairs_skipped_total",
			Help: "Total number of matched pairs skipped during pricing",
		},
		[]string{"reason"},
	)

	// OpportunitiesTotal counts qualifying hedge directions.
	OpportunitiesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyarb_opportunities_total",
			Help: "Total number of qualifying arbitrage directions",
		},
		[]string{"direction"},
	)

	// OpportunityROIBps tracks qualifying ROI in basis points.
	OpportunityROIBps = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polyarb_opportunity_roi_bps",
		Help:    "ROI of qualifying arbitrage directions in basis points",
		Buckets: []float64{50, 100, 200, 500, 1000, 2000, 5000},
	})

	// AlertsTotal counts alert decisions by outcome ("sent", "suppressed", "failed").
	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyarb_alerts_total",
			Help: "Total number of arbitrage alert decisions",
		},
		[]string{"outcome"},
	)

	// FetchRetriesTotal counts transport retries by host and reason.
	FetchRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyarb_fetch_retries_total",
			Help: "Total number of retried upstream HTTP requests",
		},
		[]string{"host", "reason"},
	)

	// SportsAnalysesTotal counts sports bot outcomes by source and result.
	SportsAnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyarb_sports_analyses_total",
			Help: "Total number of sports markets handled by the AI bots",
		},
		[]string{"source", "result"},
	)
)
