package certmanager

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	certificatesSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keip_webhook_certificates_skipped_total",
			Help: "Routes annotated for cert-manager that did not get a certificate",
		}, []string{"reason"},
	)
)

func init() {
	metrics.Registry.MustRegister(certificatesSkipped)
}
