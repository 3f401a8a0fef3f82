package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		cacheRequestsTotal,
		rateLimitDropsTotal,
		reconcilerRunsTotal,
	)
}

var (
	cacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Cache lookups by entity and result (hit/miss).",
		},
		[]string{"entity", "result"},
	)

	rateLimitDropsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_drops_total",
			Help: "Requests rejected by the rate limiter, labeled by endpoint.",
		},
		[]string{"endpoint"},
	)

	reconcilerRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciler_runs_total",
			Help: "Reconciler actions by kind (regrant/expire) and outcome (ok/error).",
		},
		[]string{"kind", "outcome"},
	)
)

func IncCacheRequest(entity, result string) {
	cacheRequestsTotal.WithLabelValues(norm(entity), norm(result)).Inc()
}

func IncRateLimitDrop(endpoint string) {
	rateLimitDropsTotal.WithLabelValues(norm(endpoint)).Inc()
}

func IncReconcilerRun(kind, outcome string) {
	reconcilerRunsTotal.WithLabelValues(norm(kind), norm(outcome)).Inc()
}
