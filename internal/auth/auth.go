// Package auth resolves the credential on an incoming request to an
// owner id. Token verification itself happens upstream; this package
// only maps what the gateway forwards onto the owning account.
package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// ErrUnauthenticated is returned when no owner can be resolved from a request.
var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator resolves a request to the id of the owning account.
type Authenticator interface {
	Authenticate(r *http.Request) (int64, error)
}

// HeaderAuthenticator trusts a numeric owner id header set by an
// upstream gateway after it has verified the caller.
type HeaderAuthenticator struct {
	Header string
}

func (a HeaderAuthenticator) Authenticate(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(a.Header))
	if raw == "" {
		return 0, ErrUnauthenticated
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrUnauthenticated
	}
	return id, nil
}

// TokenAuthenticator maps static bearer tokens to owner ids.
type TokenAuthenticator struct {
	tokens map[string]int64
}

func NewTokenAuthenticator(tokens map[string]int64) *TokenAuthenticator {
	return &TokenAuthenticator{tokens: tokens}
}

func (a *TokenAuthenticator) Authenticate(r *http.Request) (int64, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return 0, ErrUnauthenticated
	}
	id, ok := a.tokens[strings.TrimSpace(token)]
	if !ok {
		return 0, ErrUnauthenticated
	}
	return id, nil
}

// Chain tries each authenticator in order and returns the first match.
type Chain []Authenticator

func (c Chain) Authenticate(r *http.Request) (int64, error) {
	for _, a := range c {
		if id, err := a.Authenticate(r); err == nil {
			return id, nil
		}
	}
	return 0, ErrUnauthenticated
}
