package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polyexec_orders_total",
		Help: "The total number of orders submitted through the bridge",
	}, []string{"status", "side"})

	BridgeInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polyexec_bridge_invocations_total",
		Help: "Bridge process invocations by action and outcome",
	}, []string{"action", "status"})

	BridgeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "polyexec_bridge_duration_seconds",
		Help:    "Wall time of one bridge process invocation",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})

	ClassifierFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polyexec_classifier_fallbacks_total",
		Help: "Wallet classifications that degraded to EOA because of an RPC failure",
	})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "polyexec_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
