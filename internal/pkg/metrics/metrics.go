package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidra_requests_total",
			Help: "Total number of HTTP requests to IBGE services",
		},
		[]string{"endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sidra_request_duration_seconds",
			Help:    "Duration of HTTP requests to IBGE services",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 0.05s to ~102s
		},
		[]string{"endpoint"},
	)

	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidra_retries_total",
			Help: "Total number of retried requests",
		},
		[]string{"endpoint"},
	)

	FetchResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidra_fetch_results_total",
			Help: "Final state of value requests",
		},
		[]string{"state"},
	)

	TablesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidra_tables_harvested_total",
			Help: "Total number of harvested tables by status",
		},
		[]string{"status"},
	)

	HarvestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sidra_harvest_duration_seconds",
			Help:    "Duration of whole harvest runs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14), // 1s to ~2.3h
		},
	)
)
