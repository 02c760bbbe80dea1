package pagination

import (
	"context"
	"strings"
)

// OffsetPage is a page addressed by absolute offset and limit. The API supplies
// absolute URLs for the adjacent pages.
type OffsetPage[T any] struct {
	// Href is the canonical URL of this page.
	Href string `json:"href"`

	// Limit is the maximum number of items requested.
	Limit int `json:"limit"`

	// Offset is the position of the first item.
	Offset int `json:"offset"`

	// Total is the number of items across all pages when this page was fetched.
	// It is a snapshot and plays no part in deciding when traversal ends.
	Total int `json:"total"`

	// NextURL is the absolute URL of the following page, nil on the last page.
	NextURL *string `json:"next"`

	// PreviousURL is the absolute URL of the preceding page, nil on the first page.
	PreviousURL *string `json:"previous"`

	// Items keeps server order and null positions. Use FilteredItems for present values only.
	Items []Nullable[T] `json:"items"`
}

// FetchOffsetPage fetches the offset page served at path.
func FetchOffsetPage[T any](ctx context.Context, g Getter, path string, query []QueryParam) (*OffsetPage[T], error) {
	var page OffsetPage[T]
	if err := g.Get(ctx, path, query, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FilteredItems returns the present items in order.
func (p *OffsetPage[T]) FilteredItems() []T {
	return Present(p.Items)
}

// HasNext reports whether the API advertised a following page.
func (p *OffsetPage[T]) HasNext() bool {
	return present(p.NextURL)
}

// HasPrevious reports whether the API advertised a preceding page.
func (p *OffsetPage[T]) HasPrevious() bool {
	return present(p.PreviousURL)
}

// Next fetches the following page with the same limit as p.
// It returns ErrNoRemainingPages when p is the last page.
func (p *OffsetPage[T]) Next(ctx context.Context, g Getter) (*OffsetPage[T], error) {
	return p.follow(ctx, g, p.NextURL)
}

// Previous fetches the preceding page with the same limit as p.
// It returns ErrNoRemainingPages when p is the first page.
func (p *OffsetPage[T]) Previous(ctx context.Context, g Getter) (*OffsetPage[T], error) {
	return p.follow(ctx, g, p.PreviousURL)
}

// Remaining returns the items of p and of every page after it.
func (p *OffsetPage[T]) Remaining(ctx context.Context, g Getter, a *Aggregator) ([]Nullable[T], error) {
	return CollectRemaining[T, *OffsetPage[T]](ctx, a, p, g)
}

// All returns the items of every page before p, of p, and of every page after it.
func (p *OffsetPage[T]) All(ctx context.Context, g Getter, a *Aggregator) ([]Nullable[T], error) {
	return CollectAll[T, *OffsetPage[T]](ctx, a, p, g)
}

// Entries implements Traversable.
func (p *OffsetPage[T]) Entries() []Nullable[T] {
	return p.Items
}

// Has implements Traversable.
func (p *OffsetPage[T]) Has(dir Direction) bool {
	if dir == Backward {
		return p.HasPrevious()
	}
	return p.HasNext()
}

// Step implements Traversable.
func (p *OffsetPage[T]) Step(ctx context.Context, g Getter, dir Direction) (*OffsetPage[T], error) {
	if dir == Backward {
		return p.Previous(ctx, g)
	}
	return p.Next(ctx, g)
}

// WithLimit implements Traversable. p itself is left untouched.
func (p *OffsetPage[T]) WithLimit(limit int) *OffsetPage[T] {
	c := *p
	c.Limit = limit
	return &c
}

func (p *OffsetPage[T]) follow(ctx context.Context, g Getter, link *string) (*OffsetPage[T], error) {
	if !present(link) {
		return nil, ErrNoRemainingPages
	}

	var page OffsetPage[T]
	if err := g.Get(ctx, relativePath(*link, g.BaseURL()), []QueryParam{limitParam(p.Limit)}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// relativePath strips the getter's origin from an absolute link. The getter prefixes
// the origin itself, so passing the link through unchanged would double it.
func relativePath(link, baseURL string) string {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if baseURL == "" {
		return link
	}
	return strings.TrimPrefix(link, baseURL)
}

func present(s *string) bool {
	return s != nil && *s != ""
}
