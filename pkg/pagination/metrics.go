package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for aggregation.
var (
	pagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagination_pages_fetched_total",
		Help: "Continuation pages fetched during aggregation by direction",
	}, []string{"direction"})

	aggregationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagination_aggregations_total",
		Help: "Aggregation calls by outcome",
	}, []string{"outcome"})

	aggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pagination_aggregation_duration_seconds",
		Help:    "Duration of aggregation calls in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	itemsCollected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pagination_items_collected_total",
		Help: "Item slots returned by successful aggregations, null slots included",
	})
)
