package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrTokenMiss indicates no usable token is stored under the key
	ErrTokenMiss = errors.New("token miss")

	// ErrInvalidEntry indicates the stored entry is corrupted
	ErrInvalidEntry = errors.New("invalid token entry")
)

// Store keeps token entries in Redis.
type Store struct {
	redis *redis.Client
}

// NewStore creates a token store with a Redis backend.
func NewStore(redisClient *redis.Client) *Store {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Store{
		redis: redisClient,
	}
}

// Get retrieves the entry stored under key.
// Returns ErrTokenMiss if the key doesn't exist or the token has expired.
func (s *Store) Get(ctx context.Context, key TokenKey) (*TokenEntry, error) {
	redisKey := key.String()

	data, err := s.redis.Get(ctx, redisKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			StoreMisses.Inc()
			return nil, ErrTokenMiss
		}
		StoreErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry TokenEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		StoreErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpired() || entry.AccessToken == "" {
		_ = s.Delete(ctx, key)
		StoreMisses.Inc()
		return nil, ErrTokenMiss
	}

	StoreHits.Inc()
	return &entry, nil
}

// Set stores entry under key. The Redis TTL follows the entry's expiry; entries that
// are already expired are not stored.
func (s *Store) Set(ctx context.Context, key TokenKey, entry *TokenEntry) error {
	if entry == nil {
		return fmt.Errorf("token entry cannot be nil")
	}

	ttl := entry.TTL()
	if ttl <= 0 && !entry.NeverExpires() {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		StoreErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal token entry: %w", err)
	}

	// ttl is 0 for entries that never expire, which Redis treats as no expiry.
	if err := s.redis.Set(ctx, key.String(), data, ttl).Err(); err != nil {
		StoreErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Delete removes the entry stored under key.
func (s *Store) Delete(ctx context.Context, key TokenKey) error {
	if err := s.redis.Del(ctx, key.String()).Err(); err != nil {
		StoreErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
