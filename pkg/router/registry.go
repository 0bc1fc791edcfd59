package router

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Registry owns a route tree.
//
// Registration is single-threaded. Once frozen the tree is immutable and
// Resolve, Render and Walk are safe for concurrent use.
type Registry struct {
	root   *RouteNode
	logger *slog.Logger

	frozen     atomic.Bool
	freezeOnce sync.Once
	count      int
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRoot sets the root render function, typically the document shell
// with an outlet. The root never terminates a match on its own; register an
// empty pattern under it to serve "/".
func WithRoot(render RenderFunc, guards ...Guard) Option {
	return func(r *Registry) {
		r.root.render = render
		r.root.guards = append(r.root.guards, guards...)
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		logger: slog.Default().With("component", "router"),
	}
	r.root = &RouteNode{registry: r}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RouteOption configures a node at registration.
type RouteOption func(*RouteNode)

// WithGuard attaches guards to the node. They apply to the whole subtree.
func WithGuard(guards ...Guard) RouteOption {
	return func(n *RouteNode) {
		n.guards = append(n.guards, guards...)
	}
}

// WithName names the node for manifests and logs.
func WithName(name string) RouteOption {
	return func(n *RouteNode) {
		n.name = name
	}
}

// Root returns the root node.
func (r *Registry) Root() *RouteNode { return r.root }

// Len returns the number of registered nodes, excluding the root.
func (r *Registry) Len() int { return r.count }

// Register appends a node for pattern under parent; a nil parent means the
// root. Registering a pattern with the same shape as an existing sibling
// fails with *DuplicatePatternError.
func (r *Registry) Register(pattern string, render RenderFunc, parent *RouteNode, opts ...RouteOption) (*RouteNode, error) {
	if r.frozen.Load() {
		return nil, ErrFrozen
	}
	if parent == nil {
		parent = r.root
	}
	if parent.registry != r {
		return nil, ErrForeignParent
	}

	p, err := ParsePattern(pattern)
	if err != nil {
		return nil, err
	}
	if err := checkParams(p, parent, pattern); err != nil {
		return nil, err
	}
	if parent.endsInSplat() {
		return nil, &PatternError{Pattern: pattern, Reason: "parent " + parent.FullPattern() + " is a splat and cannot have children"}
	}
	if existing := parent.sibling(p); existing != nil {
		return nil, &DuplicatePatternError{
			Pattern:  pattern,
			Parent:   parent.FullPattern(),
			Existing: existing,
		}
	}

	node := &RouteNode{
		pattern:  p,
		render:   render,
		parent:   parent,
		registry: r,
	}
	for _, opt := range opts {
		opt(node)
	}
	parent.insertChild(node)
	r.count++

	r.logger.Debug("route registered",
		"pattern", node.FullPattern(),
		"name", node.name,
		"guarded", len(node.guards) > 0,
	)
	return node, nil
}

// checkParams rejects parameter names already captured by an ancestor.
func checkParams(p Pattern, parent *RouteNode, raw string) error {
	taken := make(map[string]bool)
	for _, name := range parent.ParamNames() {
		taken[name] = true
	}
	for _, name := range p.Params() {
		if taken[name] {
			return &PatternError{
				Pattern: raw,
				Reason:  fmt.Sprintf("parameter %q already captured by %s", name, parent.FullPattern()),
			}
		}
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(pattern string, render RenderFunc, parent *RouteNode, opts ...RouteOption) *RouteNode {
	n, err := r.Register(pattern, render, parent, opts...)
	if err != nil {
		panic(err)
	}
	return n
}

// Freeze makes the tree read-only. It is idempotent.
func (r *Registry) Freeze() {
	r.freezeOnce.Do(func() {
		r.frozen.Store(true)
		r.logger.Info("route tree frozen", "routes", r.count)
	})
}

// Frozen reports whether the tree is read-only.
func (r *Registry) Frozen() bool { return r.frozen.Load() }

// Walk visits every node depth-first in precedence order, starting at the
// root. Returning an error from fn stops the walk.
func (r *Registry) Walk(fn func(n *RouteNode) error) error {
	return walk(r.root, fn)
}

func walk(n *RouteNode, fn func(*RouteNode) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := walk(c, fn); err != nil {
			return err
		}
	}
	return nil
}

// Routes returns the nodes a match can end at, in precedence order.
func (r *Registry) Routes() []*RouteNode {
	var out []*RouteNode
	_ = r.Walk(func(n *RouteNode) error {
		if n.Terminal() {
			out = append(out, n)
		}
		return nil
	})
	return out
}
