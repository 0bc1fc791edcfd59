package navigation

import "context"

// Navigation describes one navigation to middleware.
type Navigation struct {
	Seq  uint64
	Path string

	// Result is set once the navigation produced a result, before it is
	// committed. It stays nil for failed navigations.
	Result *Result
}

// Middleware wraps navigations. Handle calls next to continue the chain and
// may pass a derived context, for example one carrying a trace span.
type Middleware interface {
	Handle(ctx context.Context, nav *Navigation, next func(context.Context) error) error
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(ctx context.Context, nav *Navigation, next func(context.Context) error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ctx context.Context, nav *Navigation, next func(context.Context) error) error {
	return f(ctx, nav, next)
}

// compose runs mw in order around final.
func compose(ctx context.Context, mw []Middleware, nav *Navigation, final func(context.Context) error) error {
	chain := final
	for i := len(mw) - 1; i >= 0; i-- {
		m, next := mw[i], chain
		chain = func(ctx context.Context) error {
			return m.Handle(ctx, nav, next)
		}
	}
	return chain(ctx)
}

// Chain combines middleware into one, run in order.
func Chain(mw ...Middleware) Middleware {
	return MiddlewareFunc(func(ctx context.Context, nav *Navigation, next func(context.Context) error) error {
		return compose(ctx, mw, nav, next)
	})
}
