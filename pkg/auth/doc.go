// Package auth shares OAuth2 access tokens between client processes through Redis.
//
// The authentication flow itself lives outside this module: callers bring any
// oauth2.TokenSource (client credentials, refresh token, ...). CachedTokenSource wraps
// it so a token obtained by one process is reused by every process pointing at the
// same Redis until it expires.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	store := auth.NewStore(redisClient)
//
//	tokens := auth.CachedTokenSource(ctx, store, auth.TokenKey{Name: "catalog"}, upstream)
//
//	cfg := client.DefaultConfig("https://api.example.com", "MyApp/1.0")
//	cfg.TokenSource = tokens
//	apiClient, err := client.New(cfg)
//
// # Expiry
//
// Entries are written with a Redis TTL ending ExpiryLeeway before the token expires,
// so a token read from the store is always usable for at least that long. Tokens
// without an expiry are stored without TTL.
//
// # Metrics
//
//   - apiclient_token_store_hits_total - tokens served from Redis
//   - apiclient_token_store_misses_total - lookups that fell through to the upstream source
//   - apiclient_token_store_errors_total{operation} - Redis failures by operation
package auth
