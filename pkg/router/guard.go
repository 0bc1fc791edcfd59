package router

import "context"

// Decision is a guard's verdict on a navigation.
type Decision struct {
	// Allow lets the navigation proceed to rendering.
	Allow bool

	// Redirect is an optional site-relative target for a denied navigation,
	// e.g. "/login?redirect=%2Fjobs".
	Redirect string
}

// Allow is the decision that lets a navigation proceed.
var Allow = Decision{Allow: true}

// Deny returns a denying decision with an optional redirect target.
func Deny(redirect string) Decision {
	return Decision{Redirect: redirect}
}

// Guard decides whether a matched route may render. Guards are attached to
// nodes with WithGuard and apply to the node's whole subtree. Check may
// block, for example while a session is verified, and must honor ctx.
type Guard interface {
	Check(ctx context.Context, m *MatchResult) (Decision, error)
}

// GuardFunc adapts a function to Guard.
type GuardFunc func(ctx context.Context, m *MatchResult) (Decision, error)

// Check implements Guard.
func (f GuardFunc) Check(ctx context.Context, m *MatchResult) (Decision, error) {
	return f(ctx, m)
}

// CheckGuards runs the match's guards root first and returns the first
// denial. A nil error and an allowing decision mean every guard passed.
func CheckGuards(ctx context.Context, m *MatchResult) (Decision, error) {
	for _, g := range m.Guards() {
		if err := ctx.Err(); err != nil {
			return Decision{}, err
		}
		d, err := g.Check(ctx, m)
		if err != nil {
			return Decision{}, err
		}
		if !d.Allow {
			return d, nil
		}
	}
	return Allow, nil
}
