package router

import (
	"strings"

	"github.com/outlet-dev/outlet/pkg/routepath"
)

// MatchResult is the outcome of resolving one path. It is created per
// navigation and must not be modified by callers.
type MatchResult struct {
	// Node is the matched route.
	Node *RouteNode

	// Params maps parameter names to the decoded values captured from the path.
	Params Params

	// Path is the canonical path that was resolved.
	Path string

	// Query is the raw query string of the request, without "?".
	Query string

	chain []*RouteNode
}

// Chain returns the matched nodes from the root to Node.
func (m *MatchResult) Chain() []*RouteNode {
	return append([]*RouteNode(nil), m.chain...)
}

// Guards returns the guards along the matched chain, root first.
func (m *MatchResult) Guards() []Guard {
	var guards []Guard
	for _, n := range m.chain {
		guards = append(guards, n.guards...)
	}
	return guards
}

// Resolve finds the most specific route for path. It freezes the tree on
// first use. When nothing matches the error is a *NotFoundError.
func (r *Registry) Resolve(path string) (*MatchResult, error) {
	r.Freeze()

	canon, err := routepath.Canonicalize(path)
	if err != nil {
		return nil, &NotFoundError{Path: path, Err: err}
	}

	m := &matcher{params: make(Params)}
	m.visit(r.root, routepath.Split(canon.Path))
	if m.best == nil {
		return nil, &NotFoundError{Path: canon.Path}
	}

	return &MatchResult{
		Node:   m.best.chain[len(m.best.chain)-1],
		Params: m.best.params,
		Path:   canon.Path,
		Query:  canon.Query,
		chain:  m.best.chain,
	}, nil
}

// matcher holds the state of one depth-first resolution. Every complete
// match is ranked by the kinds of the segments that consumed the path, so
// pathless groups never hide a more specific route in a later group.
type matcher struct {
	params Params
	chain  []*RouteNode
	rank   []SegmentKind
	best   *candidate
}

type candidate struct {
	params Params
	chain  []*RouteNode
	rank   []SegmentKind
}

// visit matches n's own pattern against the head of segs, then tries n's
// children in precedence order. Index and pathless children are offered
// before n itself when the path is exhausted, so they win ties.
func (m *matcher) visit(n *RouteNode, segs []string) {
	rest, captured, kinds, ok := consume(n, segs)
	if !ok {
		return
	}
	for name, value := range captured {
		m.params[name] = value
	}
	m.chain = append(m.chain, n)
	m.rank = append(m.rank, kinds...)

	for _, child := range n.children {
		if len(rest) == 0 && len(child.pattern.consuming()) > 0 {
			continue
		}
		m.visit(child, rest)
	}
	if len(rest) == 0 && n.Terminal() {
		m.offer()
	}

	for name := range captured {
		delete(m.params, name)
	}
	m.chain = m.chain[:len(m.chain)-1]
	m.rank = m.rank[:len(m.rank)-len(kinds)]
}

// offer records the current chain if it outranks the best match so far.
func (m *matcher) offer() {
	if m.best != nil && !outranks(m.rank, m.best.rank) {
		return
	}
	params := make(Params, len(m.params))
	for k, v := range m.params {
		params[k] = v
	}
	m.best = &candidate{
		params: params,
		chain:  append([]*RouteNode(nil), m.chain...),
		rank:   append([]SegmentKind(nil), m.rank...),
	}
}

// outranks compares two matches position by position: a literal beats a
// parameter, a parameter beats a splat. When one rank is a prefix of the
// other, the longer one matched more segments individually and wins.
func outranks(a, b []SegmentKind) bool {
	for i := 0; i < min(len(a), len(b)); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) > len(b)
}

// consume matches n's pattern against the head of segs and returns the
// unconsumed tail, the captured parameters and the kind of each consuming
// segment. Literals and parameters are both compared in decoded form. A
// segment that decodes to an empty value or contains "/" is a non-match.
func consume(n *RouteNode, segs []string) ([]string, map[string]string, []SegmentKind, bool) {
	pattern := n.pattern.consuming()
	if len(segs) < len(pattern) {
		return nil, nil, nil, false
	}
	kinds := make([]SegmentKind, len(pattern))
	for i, seg := range pattern {
		kinds[i] = seg.Kind
	}

	var captured map[string]string
	capture := func(name, raw string, catchAll bool) bool {
		value, err := routepath.DecodeSegment(raw, catchAll)
		if err != nil || value == "" {
			return false
		}
		if captured == nil {
			captured = make(map[string]string)
		}
		captured[name] = value
		return true
	}

	catchAll := n.CatchAll()
	for i, seg := range pattern {
		last := i == len(pattern)-1
		switch seg.Kind {
		case SegmentLiteral:
			value, err := routepath.DecodeSegment(segs[i], false)
			if err != nil || value != seg.Value {
				return nil, nil, nil, false
			}
		case SegmentParam:
			if last && catchAll {
				if !capture(seg.Value, strings.Join(segs[i:], "/"), true) {
					return nil, nil, nil, false
				}
				return nil, captured, kinds, true
			}
			if !capture(seg.Value, segs[i], false) {
				return nil, nil, nil, false
			}
		case SegmentSplat:
			if !capture(seg.Value, strings.Join(segs[i:], "/"), true) {
				return nil, nil, nil, false
			}
			return nil, captured, kinds, true
		}
	}
	return segs[len(pattern):], captured, kinds, true
}
