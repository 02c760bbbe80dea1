package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/paged-api-client/pkg/logging"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxLimit is the largest page size the API accepts.
	DefaultMaxLimit = 50

	// DefaultInterval is the pause after each continuation fetch during aggregation.
	DefaultInterval = 100 * time.Millisecond
)

// Direction selects which neighbour of a page to step to.
type Direction int

const (
	// Forward steps to the next (offset) or after (cursor) page.
	Forward Direction = iota
	// Backward steps to the previous (offset) or before (cursor) page.
	Backward
)

// String returns "forward" or "backward".
func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Traversable is a page that can step to its neighbours. P is the page type itself,
// so a step yields a value of the same kind.
type Traversable[T any, P any] interface {
	// Entries returns the page's item slots.
	Entries() []Nullable[T]

	// Has reports whether a page exists in dir as far as this page knows.
	Has(dir Direction) bool

	// Step fetches the neighbour in dir, or returns ErrNoRemainingPages.
	Step(ctx context.Context, g Getter, dir Direction) (P, error)

	// WithLimit returns a copy requesting limit items per continuation fetch.
	WithLimit(limit int) P
}

// Config holds aggregator configuration.
type Config struct {
	// MaxLimit is the page size used for every continuation fetch.
	MaxLimit int

	// Interval is awaited after each successful continuation fetch. Zero disables it.
	Interval time.Duration
}

// DefaultConfig returns the configuration matching the API's limits.
func DefaultConfig() Config {
	return Config{
		MaxLimit: DefaultMaxLimit,
		Interval: DefaultInterval,
	}
}

// Aggregator collects the items of many pages into one slice.
// It holds no per-call state and may be shared by concurrent aggregations.
type Aggregator struct {
	config Config
	logger zerolog.Logger
	wait   func(ctx context.Context, d time.Duration) error
}

// NewAggregator creates an aggregator.
func NewAggregator(config Config) *Aggregator {
	if config.MaxLimit <= 0 {
		config.MaxLimit = DefaultMaxLimit
	}
	if config.Interval < 0 {
		config.Interval = 0
	}

	return &Aggregator{
		config: config,
		logger: logging.NewLogger("pagination"),
		wait:   sleep,
	}
}

var defaultAggregator = NewAggregator(DefaultConfig())

// Config returns the effective configuration.
func (a *Aggregator) Config() Config {
	return a.config
}

// CollectRemaining returns the items of page followed by the items of every page
// reachable forward from it. Continuation fetches use the aggregator's MaxLimit.
// A nil aggregator uses DefaultConfig.
func CollectRemaining[T any, P Traversable[T, P]](ctx context.Context, a *Aggregator, page P, g Getter) ([]Nullable[T], error) {
	if a == nil {
		a = defaultAggregator
	}
	start := time.Now()

	page = page.WithLimit(a.config.MaxLimit)
	own := page.Entries()
	items := append(make([]Nullable[T], 0, len(own)), own...)

	forward, pages, err := walk[T](ctx, a, page, g, Forward)
	if err != nil {
		return nil, a.abort(err, pages, start)
	}
	items = append(items, forward...)

	a.finish("remaining", pages, len(items), start)
	return items, nil
}

// CollectAll returns the items of every page reachable backward from page, then the
// items of page, then those of every page reachable forward. Backward pages appear in
// chronological order, the most distant first. A nil aggregator uses DefaultConfig.
func CollectAll[T any, P Traversable[T, P]](ctx context.Context, a *Aggregator, page P, g Getter) ([]Nullable[T], error) {
	if a == nil {
		a = defaultAggregator
	}
	start := time.Now()

	page = page.WithLimit(a.config.MaxLimit)

	backward, backPages, err := walk[T](ctx, a, page, g, Backward)
	if err != nil {
		return nil, a.abort(err, backPages, start)
	}

	forward, forwardPages, err := walk[T](ctx, a, page, g, Forward)
	if err != nil {
		return nil, a.abort(err, backPages+forwardPages, start)
	}

	own := page.Entries()
	items := make([]Nullable[T], 0, len(backward)+len(own)+len(forward))
	items = append(items, backward...)
	items = append(items, own...)
	items = append(items, forward...)

	a.finish("all", backPages+forwardPages, len(items), start)
	return items, nil
}

// walk steps from page in dir until no continuation is left. Pages fetched backward
// are prepended so the result stays in chronological order.
func walk[T any, P Traversable[T, P]](ctx context.Context, a *Aggregator, page P, g Getter, dir Direction) ([]Nullable[T], int, error) {
	var collected []Nullable[T]
	pages := 0

	for page.Has(dir) {
		next, err := page.Step(ctx, g, dir)
		if errors.Is(err, ErrNoRemainingPages) {
			break
		}
		if err != nil {
			return nil, pages, err
		}

		pages++
		pagesFetched.WithLabelValues(dir.String()).Inc()

		entries := next.Entries()
		if dir == Backward {
			merged := make([]Nullable[T], 0, len(entries)+len(collected))
			merged = append(merged, entries...)
			collected = append(merged, collected...)
		} else {
			collected = append(collected, entries...)
		}

		a.logger.Debug().
			Str("direction", dir.String()).
			Int("page", pages).
			Int("items", len(entries)).
			Msg("Fetched page")

		page = next.WithLimit(a.config.MaxLimit)

		if err := a.pause(ctx); err != nil {
			return nil, pages, err
		}
	}

	return collected, pages, nil
}

func (a *Aggregator) pause(ctx context.Context) error {
	if a.config.Interval <= 0 {
		return nil
	}
	if err := a.wait(ctx, a.config.Interval); err != nil {
		return fmt.Errorf("pagination interval: %w", err)
	}
	return nil
}

func (a *Aggregator) abort(err error, pages int, start time.Time) error {
	aggregationsTotal.WithLabelValues("error").Inc()
	aggregationDuration.Observe(time.Since(start).Seconds())

	a.logger.Warn().
		Err(err).
		Int("pages_fetched", pages).
		Dur("duration", time.Since(start)).
		Msg("Aggregation aborted")
	return err
}

func (a *Aggregator) finish(mode string, pages, items int, start time.Time) {
	aggregationsTotal.WithLabelValues("success").Inc()
	aggregationDuration.Observe(time.Since(start).Seconds())
	itemsCollected.Add(float64(items))

	a.logger.Info().
		Str("mode", mode).
		Int("pages_fetched", pages).
		Int("items", items).
		Dur("duration", time.Since(start)).
		Msg("Aggregation complete")
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
