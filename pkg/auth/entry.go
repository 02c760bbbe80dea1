package auth

import (
	"time"

	"golang.org/x/oauth2"
)

// ExpiryLeeway is subtracted from a token's expiry when computing its TTL.
const ExpiryLeeway = 10 * time.Second

// TokenEntry is the stored form of an oauth2.Token.
type TokenEntry struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	StoredAt     time.Time `json:"stored_at"`
}

// EntryFromToken converts tok into an entry.
func EntryFromToken(tok *oauth2.Token) *TokenEntry {
	return &TokenEntry{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
		StoredAt:     time.Now(),
	}
}

// Token converts the entry back into an oauth2.Token.
func (e *TokenEntry) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  e.AccessToken,
		TokenType:    e.TokenType,
		RefreshToken: e.RefreshToken,
		Expiry:       e.Expiry,
	}
}

// NeverExpires reports whether the token carries no expiry.
func (e *TokenEntry) NeverExpires() bool {
	return e.Expiry.IsZero()
}

// IsExpired returns true once the token is within ExpiryLeeway of its expiry.
func (e *TokenEntry) IsExpired() bool {
	return !e.NeverExpires() && e.TTL() == 0
}

// TTL returns how long the entry may still be served.
// Returns 0 if already expired or if the token never expires.
func (e *TokenEntry) TTL() time.Duration {
	if e.NeverExpires() {
		return 0
	}
	ttl := time.Until(e.Expiry.Add(-ExpiryLeeway))
	if ttl < 0 {
		return 0
	}
	return ttl
}
