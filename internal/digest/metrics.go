package digest

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	digestsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_generated_total",
			Help: "Total number of digests generated, by content source",
		},
		[]string{"content"},
	)

	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_ai_requests_total",
			Help: "Total AI gateway calls, by outcome",
		},
		[]string{"outcome"},
	)

	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_compatibility_scores",
			Help:    "Distribution of heuristic compatibility scores",
			Buckets: prometheus.LinearBuckets(60, 4, 10),
		},
	)

	generationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_generation_seconds",
			Help:    "End-to-end digest generation time",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func RecordDigestGenerated(live bool) {
	content := "live"
	if !live {
		content = "fallback"
	}
	digestsGenerated.WithLabelValues(content).Inc()
}

func RecordAIOutcome(outcome string) {
	aiRequestsTotal.WithLabelValues(outcome).Inc()
}

func RecordCompatibilityScore(score float64) {
	compatibilityScores.Observe(score)
}

func RecordGenerationTime(duration time.Duration) {
	generationDuration.Observe(duration.Seconds())
}
