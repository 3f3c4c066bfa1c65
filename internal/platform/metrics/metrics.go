package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SourceRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schoolsearch_source_requests_total",
		Help: "Upstream feature-service requests by source and outcome",
	}, []string{"source", "outcome"})
	SourceRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schoolsearch_source_request_duration_seconds",
		Help:    "Upstream feature-service request duration",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"source"})
	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schoolsearch_queries_total",
		Help: "Executed searches by field",
	}, []string{"field"})
	EmptyResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schoolsearch_empty_results_total",
		Help: "Searches that returned no records, by field",
	}, []string{"field"})
	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schoolsearch_cache_hits_total",
		Help: "Session result-cache hits by field",
	}, []string{"field"})
	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schoolsearch_cache_misses_total",
		Help: "Session result-cache misses by field",
	}, []string{"field"})
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schoolsearch_active_sessions",
		Help: "Live search sessions",
	})
)

func init() {
	prometheus.MustRegister(SourceRequestsTotal)
	prometheus.MustRegister(SourceRequestDuration)
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(EmptyResultsTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(ActiveSessions)
}

// Handler exposes the registered collectors for Prometheus scraping.
// Mounted at /metrics by the router.
func Handler() http.Handler { return promhttp.Handler() }
