package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PaymentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dermapay",
		Name:      "payments_created_total",
		Help:      "Payment intents created, by mode and engine.",
	}, []string{"mode", "engine"})

	ReconciliationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dermapay",
		Name:      "reconciliation_outcomes_total",
		Help:      "Processor notifications handled, by outcome.",
	}, []string{"outcome"})

	ProcessorRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dermapay",
		Name:      "processor_request_duration_seconds",
		Help:      "Latency of calls to the card processor.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dermapay",
		Name:      "http_request_duration_seconds",
		Help:      "API request latency, by route pattern and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dermapay",
		Name:      "http_panics_recovered_total",
		Help:      "Handler panics converted to 500 responses, by route pattern.",
	}, []string{"route"})

	JanitorRowsRemoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dermapay",
		Name:      "janitor_rows_removed_total",
		Help:      "Rows removed by the background janitor, by table.",
	}, []string{"table"})
)

const (
	EngineLive = "live"
	EngineDemo = "demo"
)

func Handler() http.Handler {
	return promhttp.Handler()
}
