package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScoresComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agrocred_risk_scores_computed_total",
			Help: "Total number of risk scores computed",
		},
		[]string{"profile", "tier"},
	)

	ScoreCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agrocred_score_cache_requests_total",
			Help: "Score lookups by cache outcome",
		},
		[]string{"outcome"},
	)

	ScoringDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "agrocred_scoring_duration_seconds",
			Help: "Duration of risk score computation in seconds",
		},
	)

	MatchingRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agrocred_matching_runs_total",
			Help: "Total number of partner matching runs",
		},
	)

	PartnersRanked = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "agrocred_partners_ranked",
			Help:    "Number of partners ranked per matching run",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		},
	)

	PartnersSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agrocred_partners_skipped_total",
			Help: "Partners skipped during matching for malformed criteria",
		},
		[]string{"reason"},
	)

	MatchingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "agrocred_matching_duration_seconds",
			Help: "Duration of a matching run in seconds",
		},
	)

	CommissionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agrocred_commissions_created_total",
			Help: "Total number of commissions created",
		},
		[]string{"tier"},
	)
)
