package client

import (
	"fmt"
	"sort"

	"github.com/Sternrassler/paged-api-client/pkg/pagination"
	"github.com/google/go-querystring/query"
)

// EncodeQuery turns an options struct tagged with `url:"..."` into query params
// sorted by key, e.g.
//
//	type ListOptions struct {
//		Limit  int    `url:"limit,omitempty"`
//		Market string `url:"market,omitempty"`
//	}
func EncodeQuery(opts any) ([]pagination.QueryParam, error) {
	values, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	params := make([]pagination.QueryParam, 0, len(keys))
	for _, key := range keys {
		for _, value := range values[key] {
			params = append(params, pagination.QueryParam{Key: key, Value: value})
		}
	}
	return params, nil
}
