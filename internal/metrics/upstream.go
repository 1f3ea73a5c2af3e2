package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yt2g_upstream_requests_total",
		Help: "Total number of upstream metadata requests by mirror host and outcome",
	}, []string{"mirror", "outcome"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yt2g_upstream_request_duration_seconds",
		Help:    "Upstream metadata request latencies in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"mirror"})
)

// RecordUpstreamRequest records one upstream fetch attempt. outcome is
// "success", "not_found", "timeout", "upstream_error", "bad_response", or
// "unreachable".
func RecordUpstreamRequest(mirror, outcome string, duration time.Duration) {
	upstreamRequestsTotal.WithLabelValues(mirror, outcome).Inc()
	upstreamRequestDuration.WithLabelValues(mirror).Observe(duration.Seconds())
}
