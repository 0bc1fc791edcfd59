package auth

import (
	"context"
	"net/url"

	"github.com/outlet-dev/outlet/pkg/router"
)

// RequireAuth returns a guard that lets authenticated navigations through and
// redirects everyone else to loginPath, carrying the requested location in the
// redirect query parameter:
//
//	/jobs/42?tab=logs  ->  /login?redirect=%2Fjobs%2F42%3Ftab%3Dlogs
func RequireAuth(loginPath string) router.Guard {
	return router.GuardFunc(func(ctx context.Context, m *router.MatchResult) (router.Decision, error) {
		if IsAuthenticated(ctx) {
			return router.Allow, nil
		}
		return router.Deny(LoginRedirect(loginPath, m)), nil
	})
}

// LoginRedirect builds the login target for a denied match.
func LoginRedirect(loginPath string, m *router.MatchResult) string {
	if m == nil {
		return loginPath
	}
	back := m.Path
	if m.Query != "" {
		back += "?" + m.Query
	}
	return loginPath + "?redirect=" + url.QueryEscape(back)
}

// RequireRole returns a guard that allows principals holding any of roles.
// Anonymous navigations and principals without the role are denied without
// a redirect, which callers report as forbidden.
func RequireRole(roles ...string) router.Guard {
	return RequireAny(func(p Principal) bool {
		for _, role := range roles {
			if p.HasRole(role) {
				return true
			}
		}
		return false
	})
}

// RequireAny returns a guard that requires at least one check to pass.
func RequireAny(checks ...func(Principal) bool) router.Guard {
	return router.GuardFunc(func(ctx context.Context, m *router.MatchResult) (router.Decision, error) {
		p, ok := UserFrom(ctx)
		if !ok {
			return router.Deny(""), nil
		}
		for _, check := range checks {
			if check(p) {
				return router.Allow, nil
			}
		}
		return router.Deny(""), nil
	})
}

// RequireAll returns a guard that requires every check to pass.
func RequireAll(checks ...func(Principal) bool) router.Guard {
	return router.GuardFunc(func(ctx context.Context, m *router.MatchResult) (router.Decision, error) {
		p, ok := UserFrom(ctx)
		if !ok {
			return router.Deny(""), nil
		}
		for _, check := range checks {
			if !check(p) {
				return router.Deny(""), nil
			}
		}
		return router.Allow, nil
	})
}
