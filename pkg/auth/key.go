package auth

import (
	"sort"
	"strings"
)

// TokenKey identifies a stored token.
type TokenKey struct {
	// Name distinguishes credentials, e.g. an application or user id.
	Name string

	// Scopes the token was granted for. Order does not matter.
	Scopes []string
}

// String generates a deterministic Redis key.
// Format: apiclient:token:<name>[:scopes=<sorted,comma,separated>]
//
// Example:
//
//	apiclient:token:catalog:scopes=playlist-read,user-library-read
func (k TokenKey) String() string {
	parts := []string{"apiclient", "token", strings.TrimSpace(k.Name)}

	if len(k.Scopes) > 0 {
		scopes := append([]string(nil), k.Scopes...)
		sort.Strings(scopes)
		parts = append(parts, "scopes="+strings.Join(scopes, ","))
	}

	return strings.Join(parts, ":")
}
