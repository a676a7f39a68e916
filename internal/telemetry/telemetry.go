// Package telemetry provides Prometheus metrics for ranking requests.
//
// The CLI is short-lived, so metrics are collected in a private registry and
// written to a node_exporter textfile on exit rather than served over HTTP.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Candidate statuses recorded by RecordCandidates.
const (
	CandidateMatched     = "matched"
	CandidateMissing     = "catalog_miss"
	CandidateUnparseable = "unparseable"
	CandidateDuplicate   = "duplicate"
	CandidateFailed      = "failed"
	CandidatePartial     = "partial"
)

// Metrics holds the collectors of one process. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// RankingRequests counts ranking requests by command and outcome.
	RankingRequests *prometheus.CounterVec

	// RankingDuration tracks end-to-end ranking latency.
	RankingDuration *prometheus.HistogramVec

	// SuggestionDuration tracks suggestion service round trips, cache hits excluded.
	SuggestionDuration prometheus.Histogram

	// SuggestionCache counts suggestion cache lookups by result (hit or miss).
	SuggestionCache *prometheus.CounterVec

	// Candidates counts candidate ids by status.
	Candidates *prometheus.CounterVec
}

// New registers the greenplate collectors in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RankingRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greenplate_ranking_requests_total",
				Help: "Total number of ranking requests",
			},
			[]string{"command", "outcome"},
		),
		RankingDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "greenplate_ranking_duration_seconds",
				Help:    "Duration of ranking requests in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"command"},
		),
		SuggestionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "greenplate_suggestion_duration_seconds",
				Help:    "Duration of suggestion service calls in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
		),
		SuggestionCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greenplate_suggestion_cache_total",
				Help: "Total number of suggestion cache lookups",
			},
			[]string{"result"},
		),
		Candidates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greenplate_candidates_total",
				Help: "Total number of candidate recipe ids by status",
			},
			[]string{"status"},
		),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRanking records one finished ranking request.
func (m *Metrics) RecordRanking(command, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RankingRequests.WithLabelValues(command, outcome).Inc()
	m.RankingDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordSuggestion records a suggestion service round trip.
func (m *Metrics) RecordSuggestion(duration time.Duration) {
	if m == nil {
		return
	}
	m.SuggestionDuration.Observe(duration.Seconds())
}

// RecordCacheLookup records a suggestion cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.SuggestionCache.WithLabelValues(result).Inc()
}

// RecordCandidates adds n candidates with the given status.
func (m *Metrics) RecordCandidates(status string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Candidates.WithLabelValues(status).Add(float64(n))
}

// WriteToTextfile writes the current metrics in the text exposition format.
// An empty path is a no-op.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
