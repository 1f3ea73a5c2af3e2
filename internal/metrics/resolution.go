// Package metrics exposes Prometheus collectors for the yt2g daemon.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yt2g_resolution_total",
		Help: "Total number of stream resolutions by result kind, policy tier, and reason",
	}, []string{"kind", "tier", "reason"})
)

// RecordResolution records one resolver outcome.
func RecordResolution(kind, tier, reason string) {
	resolutionTotal.WithLabelValues(
		normalizeKindLabel(kind),
		normalizeTierLabel(tier),
		normalizeReasonLabel(reason),
	).Inc()
}

func normalizeKindLabel(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "single", "paired", "unresolvable":
		return strings.ToLower(strings.TrimSpace(kind))
	default:
		return "unknown"
	}
}

func normalizeTierLabel(tier string) string {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "hls_constrained", "hls_general", "dash_pair", "none":
		return strings.ToLower(strings.TrimSpace(tier))
	default:
		return "unknown"
	}
}

func normalizeReasonLabel(reason string) string {
	switch strings.ToLower(strings.TrimSpace(reason)) {
	case "hls_selected", "dash_pair_selected", "no_viable_format":
		return strings.ToLower(strings.TrimSpace(reason))
	default:
		return "unknown"
	}
}
