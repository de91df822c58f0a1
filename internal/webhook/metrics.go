package webhook

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keip_webhook_requests_total",
			Help: "Hook requests handled, partitioned by hook and response code",
		}, []string{"hook", "code"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "keip_webhook_request_duration_seconds",
			Help:    "Latency of hook requests",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"hook"},
	)
)

func init() {
	metrics.Registry.MustRegister(requestsTotal, requestDuration)
}
