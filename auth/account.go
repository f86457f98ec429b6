package auth

import (
	"encoding/json"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"
)

// Account is the credential returned by the token endpoints.
type Account struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type,omitempty"`
	Scope       string          `json:"scope,omitempty"`
	User        json.RawMessage `json:"user,omitempty"`
}

// Scopes returns the granted scopes.
func (a Account) Scopes() []Scope { return ParseScopes(a.Scope) }

// HasScope reports whether s was granted.
func (a Account) HasScope(s Scope) bool {
	for _, granted := range a.Scopes() {
		if granted == s {
			return true
		}
	}
	return false
}

// HasUser reports whether the token is bound to a user. Tokens obtained
// with the client credentials grant carry no user.
func (a Account) HasUser() bool {
	return len(a.User) > 0 && gjson.ParseBytes(a.User).IsObject()
}

// UserURI returns the URI of the authenticated user, if any.
func (a Account) UserURI() string {
	if len(a.User) == 0 {
		return ""
	}
	return gjson.GetBytes(a.User, "uri").String()
}

// ExpiresAt returns the exp claim when the access token is a JWT. Opaque
// tokens report false. The signature is not verified; the server remains
// the authority on validity.
func (a Account) ExpiresAt() (time.Time, bool) {
	claims := gojwt.MapClaims{}
	if _, _, err := gojwt.NewParser().ParseUnverified(a.AccessToken, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether a JWT access token has passed its expiry at now.
func (a Account) Expired(now time.Time) bool {
	exp, ok := a.ExpiresAt()
	return ok && !now.Before(exp)
}
