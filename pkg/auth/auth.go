package auth

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"
)

var (
	// ErrUnauthorized is returned when authentication is required but not present.
	ErrUnauthorized = errors.New("unauthorized: authentication required")

	// ErrForbidden is returned when authentication is present but insufficient.
	ErrForbidden = errors.New("forbidden: insufficient permissions")

	// ErrSessionExpired indicates the session is no longer valid due to expiry.
	ErrSessionExpired = errors.New("session expired")

	// ErrUnknownSession is returned by a SessionStore for identifiers it does
	// not hold.
	ErrUnknownSession = errors.New("unknown session")
)

// Principal is the authenticated identity.
type Principal struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles,omitempty"`

	// SessionID identifies the provider session the principal came from.
	SessionID string `json:"session_id,omitempty"`

	// ExpiresAtUnixMs is the hard expiry; zero means no expiry.
	ExpiresAtUnixMs int64 `json:"expires_at_unix_ms"`
}

// HasRole reports whether the principal holds role.
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// Expired reports whether the principal's session has expired at now.
func (p Principal) Expired(now time.Time) bool {
	return p.ExpiresAtUnixMs != 0 && now.UnixMilli() >= p.ExpiresAtUnixMs
}

type principalKey struct{}

// WithUser returns a context carrying p.
func WithUser(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// UserFrom returns the principal stored on ctx. Expired principals are
// reported as absent.
func UserFrom(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.Expired(time.Now()) {
		return Principal{}, false
	}
	return p, true
}

// IsAuthenticated reports whether ctx carries a valid principal.
func IsAuthenticated(ctx context.Context) bool {
	_, ok := UserFrom(ctx)
	return ok
}

// Require returns the principal on ctx or ErrUnauthorized.
func Require(ctx context.Context) (Principal, error) {
	p, ok := UserFrom(ctx)
	if !ok {
		return Principal{}, ErrUnauthorized
	}
	return p, nil
}

// StatusCode returns the appropriate HTTP status code for an auth error.
// Returns (statusCode, true) for auth errors, (0, false) otherwise.
func StatusCode(err error) (int, bool) {
	switch {
	case err == nil:
		return 0, false
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrSessionExpired):
		return http.StatusUnauthorized, true
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, true
	default:
		return 0, false
	}
}

// IsAuthError reports whether err is an authentication or authorization error.
func IsAuthError(err error) bool {
	_, ok := StatusCode(err)
	return ok
}
