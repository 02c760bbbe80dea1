// Package metrics provides the Prometheus registry and handler for the client's metrics.
// All metrics are defined in their respective packages (client, pagination, auth)
// to maintain modularity and avoid circular dependencies.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler serves every registered metric in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - apiclient_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - apiclient_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - apiclient_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, decode)
//
// Pagination Metrics (pkg/pagination):
//   - pagination_pages_fetched_total{direction} (Counter): Continuation pages fetched while aggregating
//   - pagination_aggregations_total{outcome} (Counter): Aggregations by outcome (success, error)
//   - pagination_aggregation_duration_seconds (Histogram): Aggregation duration
//   - pagination_items_collected_total (Counter): Item slots returned, null slots included
//
// Token Store Metrics (pkg/auth):
//   - apiclient_token_store_hits_total (Counter): Tokens served from Redis
//   - apiclient_token_store_misses_total (Counter): Lookups without a usable token
//   - apiclient_token_store_errors_total{operation} (Counter): Redis failures
//
// Example Prometheus Queries:
//
//   # Pages per aggregation
//   sum(rate(pagination_pages_fetched_total[5m])) / sum(rate(pagination_aggregations_total[5m]))
//
//   # Aggregation failure ratio
//   rate(pagination_aggregations_total{outcome="error"}[5m]) / rate(pagination_aggregations_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(apiclient_request_duration_seconds_bucket[5m]))
