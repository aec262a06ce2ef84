package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "focusship_http_requests_total",
		Help: "Total HTTP requests handled, by method, route, and status code",
	}, []string{"method", "route", "code"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "focusship_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	sampleBatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "focusship_sample_batch_size",
		Help:    "Number of samples per accepted batch upload",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
	})

	samplesInsertedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "focusship_samples_inserted_total",
		Help: "Total attention samples inserted",
	})

	alertsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "focusship_alerts_total",
		Help: "Total alerts recorded, by kind",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		sampleBatchSize,
		samplesInsertedTotal,
		alertsTotal,
	)
}
