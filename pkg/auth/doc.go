// Package auth supplies the authentication collaborator of the route
// registry.
//
// HTTP middleware turns a bearer token or session cookie into a Principal on
// the request context. Guards built by RequireAuth and RequireRole read that
// principal during navigation and either allow the route to render or deny
// it, optionally with a redirect to the login page.
//
//	protected := registry.MustRegister("_auth", shell, nil,
//	    router.WithGuard(auth.RequireAuth("/login")))
//	registry.MustRegister("/admin", adminPage, protected,
//	    router.WithGuard(auth.RequireRole("admin")))
//
// The package does not verify credentials itself. A SessionStore maps the
// opaque session identifier to a principal.
package auth
