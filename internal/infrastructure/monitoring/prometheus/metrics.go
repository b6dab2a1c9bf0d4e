// Package prometheus exposes the engine's operational metrics.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all collectors registered by the service.
type Metrics struct {
	ClassificationsTotal *prometheus.CounterVec
	ClassificationTime   prometheus.Histogram
	BatchItemsTotal      *prometheus.CounterVec
	BatchDuration        prometheus.Histogram
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// New registers the collectors on reg.  Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ClassificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tendergate",
			Name:      "classifications_total",
			Help:      "Classification runs by resulting status.",
		}, []string{"status"}),

		ClassificationTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tendergate",
			Name:      "classification_duration_seconds",
			Help:      "Duration of a single classification run.",
			Buckets:   prometheus.DefBuckets,
		}),

		BatchItemsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tendergate",
			Name:      "batch_items_total",
			Help:      "Batch items processed, by outcome.",
		}, []string{"outcome"}),

		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tendergate",
			Name:      "batch_duration_seconds",
			Help:      "Wall-clock duration of full batch runs.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}),

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tendergate",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tendergate",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}
