package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "multigpu_http_requests_total",
		Help: "HTTP requests served, by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "multigpu_http_request_duration_seconds",
		Help:    "HTTP request latency, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	AllocationTokensDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "multigpu_allocation_tokens_dropped_total",
		Help: "Malformed allocation annotation tokens skipped during parsing.",
	})

	// Surplus GPUs are truncated from the fixed-width slot view; a non-zero
	// rate here means nodes report more partitions than the configured slot
	// count and the view is hiding some of them.
	SurplusGPUsTruncated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "multigpu_surplus_gpus_truncated_total",
		Help: "Real GPU entries dropped because a node exceeded the slot count.",
	})
)
