package auth

import "strings"

// Scope is an OAuth permission requested for an access token.
type Scope string

const (
	ScopePublic     Scope = "public"
	ScopePrivate    Scope = "private"
	ScopePurchased  Scope = "purchased"
	ScopeCreate     Scope = "create"
	ScopeEdit       Scope = "edit"
	ScopeDelete     Scope = "delete"
	ScopeInteract   Scope = "interact"
	ScopeUpload     Scope = "upload"
	ScopeStats      Scope = "stats"
	ScopeVideoFiles Scope = "video_files"
	ScopeEmail      Scope = "email"
)

// CombineScopes joins scopes with single spaces, the form the API expects.
func CombineScopes(scopes ...Scope) string {
	parts := make([]string, len(scopes))
	for i, s := range scopes {
		parts[i] = string(s)
	}
	return strings.Join(parts, " ")
}

// ParseScopes splits a space separated scope string.
func ParseScopes(s string) []Scope {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	out := make([]Scope, len(fields))
	for i, f := range fields {
		out[i] = Scope(f)
	}
	return out
}
