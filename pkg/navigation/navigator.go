package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/outlet-dev/outlet/pkg/routepath"
	"github.com/outlet-dev/outlet/pkg/router"
	"github.com/outlet-dev/outlet/pkg/view"
)

var (
	// ErrSuperseded is returned when a newer navigation started before this
	// one could commit.
	ErrSuperseded = errors.New("navigation superseded")

	// ErrForbidden is returned when a guard denies a navigation without
	// offering a redirect.
	ErrForbidden = errors.New("navigation forbidden")

	// ErrClosed is returned by Navigate after Close.
	ErrClosed = errors.New("navigator closed")
)

// Result is a committed navigation.
type Result struct {
	// Seq is the navigation's position in issue order, starting at 1.
	Seq uint64

	// Path is the requested path.
	Path string

	// Match is the resolved route; nil when NotFound.
	Match *router.MatchResult

	// Output is the rendered tree. For NotFound it is the not-found view, if
	// one is configured. Nil for redirects.
	Output *view.Node

	// Redirect is the guard's redirect target when the navigation was denied.
	Redirect string

	// NotFound reports that no route matched Path.
	NotFound bool
}

// Committer receives committed results. Commit is called with the
// navigator's lock held, so it must not call back into the Navigator.
type Committer interface {
	Commit(res *Result)
}

// CommitFunc adapts a function to Committer.
type CommitFunc func(res *Result)

// Commit implements Committer.
func (f CommitFunc) Commit(res *Result) { f(res) }

// Option configures a Navigator.
type Option func(*Navigator)

// WithLogger sets the navigator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Navigator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithNotFound sets the view rendered for unmatched paths.
func WithNotFound(render func(path string) *view.Node) Option {
	return func(n *Navigator) {
		n.notFound = render
	}
}

// WithMiddleware appends navigation middleware.
func WithMiddleware(mw ...Middleware) Option {
	return func(n *Navigator) {
		n.middleware = append(n.middleware, mw...)
	}
}

// Navigator runs navigations against a frozen registry.
type Navigator struct {
	registry   *router.Registry
	committer  Committer
	logger     *slog.Logger
	notFound   func(path string) *view.Node
	middleware []Middleware

	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	current *Result
	closed  bool
}

// New creates a Navigator. The registry is frozen if it is not already.
func New(registry *router.Registry, committer Committer, opts ...Option) *Navigator {
	registry.Freeze()
	n := &Navigator{
		registry:  registry,
		committer: committer,
		logger:    slog.Default().With("component", "navigator"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Use appends middleware. It must not be called concurrently with Navigate.
func (n *Navigator) Use(mw ...Middleware) {
	n.middleware = append(n.middleware, mw...)
}

// Current returns the last committed result, or nil.
func (n *Navigator) Current() *Result {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Close cancels the navigation in flight and rejects further navigations.
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
}

// Navigate performs a navigation to path and commits it unless a newer
// navigation starts first. It blocks until the navigation commits, fails or
// is superseded.
func (n *Navigator) Navigate(ctx context.Context, path string) (*Result, error) {
	ctx, seq, cancel, err := n.begin(ctx)
	if err != nil {
		return nil, err
	}
	return n.execute(ctx, seq, cancel, path)
}

// Go numbers a navigation to path and cancels the one in flight before it
// returns, then runs the navigation on a new goroutine and reports the
// outcome to done. Navigations started by Go from one goroutine are ordered
// by call, not by scheduling.
func (n *Navigator) Go(ctx context.Context, path string, done func(*Result, error)) {
	ctx, seq, cancel, err := n.begin(ctx)
	if err != nil {
		done(nil, err)
		return
	}
	go func() {
		done(n.execute(ctx, seq, cancel, path))
	}()
}

func (n *Navigator) execute(ctx context.Context, seq uint64, cancel context.CancelFunc, path string) (*Result, error) {
	defer n.finish(seq, cancel)

	nav := &Navigation{Seq: seq, Path: path}
	log := n.logger.With("seq", seq, "path", path)
	log.Debug("navigation started")

	err := compose(ctx, n.middleware, nav, func(ctx context.Context) error {
		res, err := n.run(ctx, nav)
		if err != nil {
			return err
		}
		nav.Result = res
		return n.commit(ctx, res)
	})
	if err != nil {
		if errors.Is(err, ErrSuperseded) {
			log.Debug("navigation superseded")
		} else {
			log.Warn("navigation failed", "error", err)
		}
		return nil, err
	}

	log.Debug("navigation committed",
		"not_found", nav.Result.NotFound,
		"redirect", nav.Result.Redirect,
	)
	return nav.Result, nil
}

// begin numbers a navigation and cancels the one in flight.
func (n *Navigator) begin(parent context.Context) (context.Context, uint64, context.CancelFunc, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil, 0, nil, ErrClosed
	}
	if n.cancel != nil {
		n.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	n.seq++
	n.cancel = cancel
	return ctx, n.seq, cancel, nil
}

func (n *Navigator) finish(seq uint64, cancel context.CancelFunc) {
	cancel()
	n.mu.Lock()
	if n.seq == seq {
		n.cancel = nil
	}
	n.mu.Unlock()
}

// run resolves, guards and renders without touching shared state.
func (n *Navigator) run(ctx context.Context, nav *Navigation) (*Result, error) {
	res := &Result{Seq: nav.Seq, Path: nav.Path}

	m, err := n.registry.Resolve(nav.Path)
	if err != nil {
		if !errors.Is(err, router.ErrNotFound) {
			return nil, err
		}
		res.NotFound = true
		if n.notFound != nil {
			res.Output = n.notFound(nav.Path)
		}
		return res, nil
	}
	res.Match = m

	decision, err := router.CheckGuards(ctx, m)
	if err != nil {
		if ctx.Err() != nil {
			return nil, n.abandoned(ctx, nav.Seq)
		}
		return nil, fmt.Errorf("guard %s: %w", m.Node.FullPattern(), err)
	}
	if !decision.Allow {
		if decision.Redirect == "" {
			return nil, fmt.Errorf("%w: %s", ErrForbidden, m.Path)
		}
		target, err := routepath.ValidateTarget(decision.Redirect)
		if err != nil {
			return nil, fmt.Errorf("guard redirect %q: %w", decision.Redirect, err)
		}
		res.Redirect = target
		return res, nil
	}

	if ctx.Err() != nil {
		return nil, n.abandoned(ctx, nav.Seq)
	}

	out, err := n.registry.Render(m)
	if err != nil {
		return nil, err
	}
	res.Output = out
	return res, nil
}

// commit publishes res if its navigation is still the latest.
func (n *Navigator) commit(ctx context.Context, res *Result) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if res.Seq != n.seq {
		return ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	n.current = res
	if n.committer != nil {
		n.committer.Commit(res)
	}
	return nil
}

// abandoned explains why ctx ended: a newer navigation, or the caller.
func (n *Navigator) abandoned(ctx context.Context, seq uint64) error {
	n.mu.Lock()
	latest := n.seq
	n.mu.Unlock()
	if latest != seq {
		return ErrSuperseded
	}
	return ctx.Err()
}
