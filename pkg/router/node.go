package router

import (
	"strings"

	"github.com/outlet-dev/outlet/pkg/view"
)

// RenderFunc produces the output of a route. It receives only the
// parameters captured from the path. Layout routes place view.Outlet() where
// the child route's output belongs.
type RenderFunc func(params Params) *view.Node

// RouteNode is a node of the route tree. A parent exclusively owns its
// children; nodes are created by Registry.Register only.
type RouteNode struct {
	pattern  Pattern
	render   RenderFunc
	guards   []Guard
	name     string
	parent   *RouteNode
	children []*RouteNode
	registry *Registry
}

// Pattern returns the node's own pattern, relative to its parent.
func (n *RouteNode) Pattern() Pattern { return n.pattern }

// Name returns the name given with WithName, or "".
func (n *RouteNode) Name() string { return n.name }

// Parent returns the parent node, or nil for the root.
func (n *RouteNode) Parent() *RouteNode { return n.parent }

// IsRoot reports whether n is the registry root.
func (n *RouteNode) IsRoot() bool { return n.parent == nil }

// HasRender reports whether the node has a render function.
func (n *RouteNode) HasRender() bool { return n.render != nil }

// Children returns the children in precedence order.
func (n *RouteNode) Children() []*RouteNode {
	return append([]*RouteNode(nil), n.children...)
}

// Guards returns the guards attached to this node only.
func (n *RouteNode) Guards() []Guard {
	return append([]Guard(nil), n.guards...)
}

// Terminal reports whether a match may end at this node. The root and
// pathless groups only wrap their descendants.
func (n *RouteNode) Terminal() bool {
	return n.render != nil && n.parent != nil && !n.pattern.IsPathless()
}

// CatchAll reports whether the node captures the remaining path suffix:
// its pattern ends in a splat, or in a parameter and it has no children.
func (n *RouteNode) CatchAll() bool {
	segs := n.pattern.segments
	if len(segs) == 0 {
		return false
	}
	switch segs[len(segs)-1].Kind {
	case SegmentSplat:
		return true
	case SegmentParam:
		return len(n.children) == 0
	}
	return false
}

func (n *RouteNode) endsInSplat() bool {
	segs := n.pattern.segments
	return len(segs) > 0 && segs[len(segs)-1].Kind == SegmentSplat
}

// Protected reports whether the node or one of its ancestors has a guard.
func (n *RouteNode) Protected() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if len(cur.guards) > 0 {
			return true
		}
	}
	return false
}

// lineage returns the nodes from the root to n.
func (n *RouteNode) lineage() []*RouteNode {
	var chain []*RouteNode
	for cur := n; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// FullPattern returns the declared pattern from the root, including
// pathless groups, e.g. "/_auth/jobs/$jobId".
func (n *RouteNode) FullPattern() string {
	return n.joinPattern(func(Segment) bool { return true })
}

// URLPattern returns the pattern as seen in URLs, without pathless groups,
// e.g. "/jobs/$jobId".
func (n *RouteNode) URLPattern() string {
	return n.joinPattern(Segment.consumes)
}

func (n *RouteNode) joinPattern(keep func(Segment) bool) string {
	var parts []string
	for _, node := range n.lineage() {
		for _, s := range node.pattern.segments {
			if keep(s) {
				parts = append(parts, s.String())
			}
		}
	}
	return "/" + strings.Join(parts, "/")
}

// ParamNames returns every parameter name captured on the way to n.
func (n *RouteNode) ParamNames() []string {
	var names []string
	for _, node := range n.lineage() {
		names = append(names, node.pattern.Params()...)
	}
	return names
}

// insertChild places child among n's children in precedence order, after
// any sibling of equal rank.
func (n *RouteNode) insertChild(child *RouteNode) {
	i := len(n.children)
	for i > 0 && child.pattern.before(n.children[i-1].pattern) {
		i--
	}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
}

// sibling returns the child with the same shape as p, if any.
func (n *RouteNode) sibling(p Pattern) *RouteNode {
	shape := p.shape()
	for _, c := range n.children {
		if c.pattern.shape() == shape {
			return c
		}
	}
	return nil
}
