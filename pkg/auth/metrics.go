package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreHits tracks tokens served from Redis
	StoreHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apiclient_token_store_hits_total",
			Help: "Total number of access tokens served from the token store",
		},
	)

	// StoreMisses tracks lookups that found no usable token
	StoreMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apiclient_token_store_misses_total",
			Help: "Total number of token store misses",
		},
	)

	// StoreErrors tracks token store operation errors
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apiclient_token_store_errors_total",
			Help: "Total number of token store operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
