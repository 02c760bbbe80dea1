package pagination

import (
	"context"
	"errors"
	"strconv"
)

// ErrNoRemainingPages is returned by single-step traversal when no page exists in the
// requested direction. Aggregation treats it as the end of a walk.
var ErrNoRemainingPages = errors.New("no remaining pages")

// QueryParam is one key/value pair appended to a request's query string.
type QueryParam struct {
	Key   string
	Value string
}

// Getter is the request capability pages are traversed with.
// pkg/client.Client implements it.
type Getter interface {
	// BaseURL is the origin the getter prefixes to every path.
	BaseURL() string

	// Get issues an authenticated GET against BaseURL()+path with query appended and
	// decodes the JSON response body into out.
	Get(ctx context.Context, path string, query []QueryParam, out any) error
}

// limitParam forces the page size of a continuation request.
func limitParam(limit int) QueryParam {
	return QueryParam{Key: "limit", Value: strconv.Itoa(limit)}
}
