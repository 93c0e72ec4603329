package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	recommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Recommendation requests by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	llmDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Duration of LLM backend calls in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"backend"},
	)

	profileCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_cache_lookups_total",
			Help: "Profile cache lookups by result",
		},
		[]string{"result"},
	)

	profileCacheWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_cache_write_failures_total",
			Help: "Background profile cache writes that failed",
		},
	)

	candidatesSelected = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "candidates_selected",
			Help:    "Number of candidates handed to the recommender",
			Buckets: []float64{0, 1, 5, 10, 15, 20, 30, 50},
		},
	)
)

// IncRecommendation records the outcome of one recommendation request.
func IncRecommendation(backend, outcome string) {
	recommendationsTotal.WithLabelValues(backend, outcome).Inc()
}

// ObserveLLMDuration records a backend call duration.
func ObserveLLMDuration(backend string, d time.Duration) {
	if d < 0 {
		d = 0
	}
	llmDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// IncProfileCacheHit increments the cache hit counter.
func IncProfileCacheHit() {
	profileCacheTotal.WithLabelValues("hit").Inc()
}

// IncProfileCacheMiss increments the cache miss counter.
func IncProfileCacheMiss() {
	profileCacheTotal.WithLabelValues("miss").Inc()
}

// IncProfileCacheWriteFailure increments the background write failure counter.
func IncProfileCacheWriteFailure() {
	profileCacheWriteFailures.Inc()
}

// ObserveCandidates records the size of a candidate list.
func ObserveCandidates(n int) {
	candidatesSelected.Observe(float64(n))
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
