package router

import (
	"fmt"

	"github.com/outlet-dev/outlet/pkg/view"
)

// Render composes the output of a match. The matched node renders first;
// walking up to the root, each ancestor with a render function renders and
// its outlet is filled with the output gathered so far. Ancestors without a
// render function pass the output through unchanged.
//
// Render only invokes render functions; it has no other side effects.
func (r *Registry) Render(m *MatchResult) (*view.Node, error) {
	var out *view.Node
	for i := len(m.chain) - 1; i >= 0; i-- {
		n := m.chain[i]
		if n.render == nil {
			continue
		}

		parent, err := invoke(n, m.Params)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out, _ = view.FillOutlet(parent, nil)
			continue
		}

		filled, ok := view.FillOutlet(parent, out)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingOutlet, n.FullPattern())
		}
		out = filled
	}
	return out, nil
}

// invoke calls a render function, converting a panic into *RenderError.
func invoke(n *RouteNode, params Params) (out *view.Node, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &RenderError{Pattern: n.FullPattern(), Panic: p}
		}
	}()
	return n.render(params), nil
}
