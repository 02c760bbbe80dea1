// Package pagination implements traversal and aggregation of paginated API responses.
//
// The API exposes two styles of pagination:
//
//   - Offset pages carry absolute next/previous URLs (OffsetPage).
//   - Cursor pages carry opaque before/after tokens (CursorPage). Because the API
//     omits absolute links for them, a CursorPage carries an Endpoint descriptor that
//     resolves the path to re-request against.
//
// Items of either page kind may be JSON null. Every slot is kept as a Nullable so the
// positions of null holes survive traversal and aggregation; FilteredItems returns
// only the present values.
//
// Example usage:
//
//	page, err := pagination.FetchOffsetPage[Track](ctx, apiClient, "/v1/me/tracks", nil)
//	if err != nil {
//		return err
//	}
//	next, err := page.Next(ctx, apiClient)
//	if errors.Is(err, pagination.ErrNoRemainingPages) {
//		// last page
//	}
//
//	agg := pagination.NewAggregator(pagination.DefaultConfig())
//	items, err := page.All(ctx, apiClient, agg)
//
// Aggregation is strictly sequential: each continuation link or token is only known
// once the previous page has arrived. The Aggregator waits Config.Interval after every
// successful continuation fetch. Any error other than ErrNoRemainingPages aborts the
// aggregation and no partial result is returned.
package pagination
