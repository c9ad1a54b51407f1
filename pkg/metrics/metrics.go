package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TransactionAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transaction_attempts_total",
			Help: "Attempts of retried operations by type and outcome",
		},
		[]string{"operation_type", "outcome"},
	)

	UnresolvedTransactions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "unresolved_transactions",
			Help: "Logged operations awaiting manual resolution",
		},
	)

	DatabaseUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_up",
			Help: "1 when the last health probe reached the data store",
		},
	)

	HealthCheckDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "health_check_duration_seconds",
			Help:    "Duration of health check cycles",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func Register() {
	prometheus.MustRegister(TransactionAttempts)
	prometheus.MustRegister(UnresolvedTransactions)
	prometheus.MustRegister(DatabaseUp)
	prometheus.MustRegister(HealthCheckDuration)
}

// Serve exposes /metrics on its own listener, separate from the API port.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
