package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/paged-api-client/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// storeTokenSource reads through the store to an upstream token source.
type storeTokenSource struct {
	ctx      context.Context
	store    *Store
	key      TokenKey
	upstream oauth2.TokenSource
	logger   zerolog.Logger
}

// CachedTokenSource returns a token source that serves tokens from store and
// falls back to upstream on a miss, storing what upstream returns. Store failures
// are logged and bypassed. ctx bounds the Redis calls.
func CachedTokenSource(ctx context.Context, store *Store, key TokenKey, upstream oauth2.TokenSource) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &storeTokenSource{
		ctx:      ctx,
		store:    store,
		key:      key,
		upstream: upstream,
		logger:   logging.NewLogger("auth"),
	})
}

// Token implements oauth2.TokenSource.
func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	entry, err := s.store.Get(s.ctx, s.key)
	switch {
	case err == nil:
		s.logger.Debug().Str("key", s.key.String()).Msg("Token served from store")
		return entry.Token(), nil
	case !errors.Is(err, ErrTokenMiss):
		s.logger.Warn().Err(err).Str("key", s.key.String()).Msg("Token store get error")
	}

	tok, err := s.upstream.Token()
	if err != nil {
		return nil, fmt.Errorf("upstream token: %w", err)
	}

	if err := s.store.Set(s.ctx, s.key, EntryFromToken(tok)); err != nil {
		s.logger.Warn().Err(err).Str("key", s.key.String()).Msg("Failed to store token")
	} else {
		s.logger.Debug().
			Str("key", s.key.String()).
			Time("expiry", tok.Expiry).
			Msg("Stored token")
	}

	return tok, nil
}
