package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Sternrassler/paged-api-client/internal/config"
	"github.com/Sternrassler/paged-api-client/pkg/auth"
	"github.com/Sternrassler/paged-api-client/pkg/client"
	"github.com/Sternrassler/paged-api-client/pkg/logging"
	"github.com/Sternrassler/paged-api-client/pkg/pagination"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

const (
	kindOffset = "offset"
	kindCursor = "cursor"

	modePage      = "page"
	modeRemaining = "remaining"
	modeAll       = "all"
)

type fetchOptions struct {
	Kind   string
	Mode   string
	Limit  int
	Offset int
}

// pageQuery is the query of the first request; continuation links carry their own.
type pageQuery struct {
	Limit  int `url:"limit,omitempty"`
	Offset int `url:"offset,omitempty"`
}

// result is one output line.
type result struct {
	Path  string                                 `json:"path"`
	Items []pagination.Nullable[json.RawMessage] `json:"items"`
}

func newFetchCmd(configPath *string) *cobra.Command {
	opts := fetchOptions{Kind: kindOffset, Mode: modeAll}

	cmd := &cobra.Command{
		Use:   "fetch <path>...",
		Short: "Fetch one or more collections",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if _, err := logging.Setup(logging.Config{
				Level:  logging.LogLevel(cfg.Log.Level),
				Pretty: cfg.Log.Pretty,
				Output: cmd.ErrOrStderr(),
			}); err != nil {
				return err
			}
			return runFetch(cmd.Context(), cfg, opts, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", opts.Kind, "pagination scheme: offset or cursor")
	cmd.Flags().StringVar(&opts.Mode, "mode", opts.Mode, "page (first page only), remaining (first page and everything after) or all")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size of the first request; continuations use the configured max")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "offset of the first page (offset kind only)")
	return cmd
}

func (o fetchOptions) validate() error {
	switch o.Kind {
	case kindOffset, kindCursor:
	default:
		return fmt.Errorf("unknown kind %q", o.Kind)
	}
	switch o.Mode {
	case modePage, modeRemaining, modeAll:
	default:
		return fmt.Errorf("unknown mode %q", o.Mode)
	}
	if o.Limit < 0 || o.Offset < 0 {
		return errors.New("limit and offset must not be negative")
	}
	if o.Offset > 0 && o.Kind == kindCursor {
		return errors.New("offset is not supported for cursor pagination")
	}
	return nil
}

// runFetch fetches every path concurrently and writes one result line per path,
// in argument order. The first failure cancels the remaining fetches.
func runFetch(ctx context.Context, cfg *config.Config, opts fetchOptions, paths []string, out io.Writer) error {
	logger := logging.NewLogger("apipager")

	tokens, closeTokens, err := tokenSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeTokens()

	clientCfg := client.DefaultConfig(cfg.API.BaseURL, cfg.API.UserAgent)
	clientCfg.Timeout = cfg.API.Timeout
	clientCfg.TokenSource = tokens
	c, err := client.New(clientCfg)
	if err != nil {
		return err
	}
	defer c.Close()

	agg := pagination.NewAggregator(cfg.Aggregator())

	results := make([]result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Pagination.Concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			items, err := fetchPath(gctx, c, agg, path, opts)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", path, err)
			}
			results[i] = result{Path: path, Items: items}
			logger.Info().
				Str("path", path).
				Int("items", len(items)).
				Msg("Collection fetched")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return nil
}

func fetchPath(ctx context.Context, c *client.Client, agg *pagination.Aggregator, path string, opts fetchOptions) ([]pagination.Nullable[json.RawMessage], error) {
	query, err := client.EncodeQuery(pageQuery{Limit: opts.Limit, Offset: opts.Offset})
	if err != nil {
		return nil, err
	}

	var items []pagination.Nullable[json.RawMessage]
	switch opts.Kind {
	case kindCursor:
		page, err := pagination.FetchCursorPage[json.RawMessage](ctx, c, pagination.Path(path), query)
		if err != nil {
			return nil, err
		}
		items, err = collect(ctx, page, c, agg, opts.Mode)
		if err != nil {
			return nil, err
		}
	default:
		page, err := pagination.FetchOffsetPage[json.RawMessage](ctx, c, path, query)
		if err != nil {
			return nil, err
		}
		items, err = collect(ctx, page, c, agg, opts.Mode)
		if err != nil {
			return nil, err
		}
	}

	if items == nil {
		items = []pagination.Nullable[json.RawMessage]{}
	}
	return items, nil
}

func collect[P pagination.Traversable[json.RawMessage, P]](ctx context.Context, page P, c *client.Client, agg *pagination.Aggregator, mode string) ([]pagination.Nullable[json.RawMessage], error) {
	switch mode {
	case modePage:
		return page.Entries(), nil
	case modeRemaining:
		return pagination.CollectRemaining[json.RawMessage, P](ctx, agg, page, c)
	default:
		return pagination.CollectAll[json.RawMessage, P](ctx, agg, page, c)
	}
}

// tokenSource builds the bearer token source. With a Redis address the token is
// shared through the store; the configured access token is only the upstream.
func tokenSource(ctx context.Context, cfg *config.Config) (oauth2.TokenSource, func() error, error) {
	noop := func() error { return nil }

	var upstream oauth2.TokenSource
	if cfg.Auth.AccessToken != "" {
		upstream = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Auth.AccessToken, TokenType: "Bearer"})
	}

	if cfg.Auth.RedisAddr == "" {
		return upstream, noop, nil
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Auth.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, noop, fmt.Errorf("connect to redis at %s: %w", cfg.Auth.RedisAddr, err)
	}
	if upstream == nil {
		upstream = missingToken{}
	}

	key := auth.TokenKey{Name: cfg.Auth.TokenName}
	return auth.CachedTokenSource(ctx, auth.NewStore(redisClient), key, upstream), redisClient.Close, nil
}

// missingToken is the upstream when only stored tokens may be used.
type missingToken struct{}

func (missingToken) Token() (*oauth2.Token, error) {
	return nil, errors.New("no access token configured and none stored")
}

