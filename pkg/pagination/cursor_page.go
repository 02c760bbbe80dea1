package pagination

import (
	"context"
)

// CursorPage is a page addressed by opaque cursor tokens. The API gives no absolute
// link for the adjacent pages, so the page keeps the Endpoint it was fetched from and
// re-requests that path with the relevant token.
type CursorPage[T any, E Endpoint] struct {
	// Href is the canonical URL of this page.
	Href string `json:"href"`

	// Limit is the maximum number of items requested.
	Limit int `json:"limit"`

	// NextURL is informational only. Traversal never requests it.
	NextURL *string `json:"next"`

	// Cursors holds the tokens for the adjacent pages, nil when there are none.
	Cursors *Cursor `json:"cursors"`

	// Total is reported by some cursor endpoints only.
	Total *int `json:"total"`

	// Items keeps server order and null positions. Use FilteredItems for present values only.
	Items []Nullable[T] `json:"items"`

	// Endpoint resolves the path subsequent pages are requested from.
	Endpoint E `json:"-"`
}

// FetchCursorPage fetches the first cursor page of endpoint.
func FetchCursorPage[T any, E Endpoint](ctx context.Context, g Getter, endpoint E, query []QueryParam) (*CursorPage[T, E], error) {
	var page CursorPage[T, E]
	if err := g.Get(ctx, endpoint.EndpointURL(), query, &page); err != nil {
		return nil, err
	}
	page.Endpoint = endpoint
	return &page, nil
}

// FilteredItems returns the present items in order.
func (p *CursorPage[T, E]) FilteredItems() []T {
	return Present(p.Items)
}

// HasAfter reports whether an after token is available.
func (p *CursorPage[T, E]) HasAfter() bool {
	return p.Cursors != nil && present(p.Cursors.After)
}

// HasBefore reports whether a before token is available.
func (p *CursorPage[T, E]) HasBefore() bool {
	return p.Cursors != nil && present(p.Cursors.Before)
}

// After fetches the page chronologically after p.
// It returns ErrNoRemainingPages when p has no after token.
func (p *CursorPage[T, E]) After(ctx context.Context, g Getter) (*CursorPage[T, E], error) {
	if !p.HasAfter() {
		return nil, ErrNoRemainingPages
	}
	return p.fetch(ctx, g, "after", *p.Cursors.After)
}

// Before fetches the page chronologically before p.
// It returns ErrNoRemainingPages when p has no before token.
func (p *CursorPage[T, E]) Before(ctx context.Context, g Getter) (*CursorPage[T, E], error) {
	if !p.HasBefore() {
		return nil, ErrNoRemainingPages
	}
	return p.fetch(ctx, g, "before", *p.Cursors.Before)
}

// Remaining returns the items of p and of every page after it.
func (p *CursorPage[T, E]) Remaining(ctx context.Context, g Getter, a *Aggregator) ([]Nullable[T], error) {
	return CollectRemaining[T, *CursorPage[T, E]](ctx, a, p, g)
}

// All returns the items of every page before p, of p, and of every page after it.
func (p *CursorPage[T, E]) All(ctx context.Context, g Getter, a *Aggregator) ([]Nullable[T], error) {
	return CollectAll[T, *CursorPage[T, E]](ctx, a, p, g)
}

// Entries implements Traversable.
func (p *CursorPage[T, E]) Entries() []Nullable[T] {
	return p.Items
}

// Has implements Traversable.
func (p *CursorPage[T, E]) Has(dir Direction) bool {
	if dir == Backward {
		return p.HasBefore()
	}
	return p.HasAfter()
}

// Step implements Traversable.
func (p *CursorPage[T, E]) Step(ctx context.Context, g Getter, dir Direction) (*CursorPage[T, E], error) {
	if dir == Backward {
		return p.Before(ctx, g)
	}
	return p.After(ctx, g)
}

// WithLimit implements Traversable. p itself is left untouched.
func (p *CursorPage[T, E]) WithLimit(limit int) *CursorPage[T, E] {
	c := *p
	c.Limit = limit
	return &c
}

func (p *CursorPage[T, E]) fetch(ctx context.Context, g Getter, key, token string) (*CursorPage[T, E], error) {
	query := []QueryParam{
		{Key: key, Value: token},
		limitParam(p.Limit),
	}

	var page CursorPage[T, E]
	if err := g.Get(ctx, p.Endpoint.EndpointURL(), query, &page); err != nil {
		return nil, err
	}
	page.Endpoint = p.Endpoint
	return &page, nil
}
