package router

// Route declares a route and its children for Build and Mount.
type Route struct {
	// Path is the pattern relative to the enclosing route.
	Path string

	// Name identifies the route in manifests and logs.
	Name string

	// Render produces the route's output; nil for pure grouping routes.
	Render RenderFunc

	// Guards protect the route and everything below it.
	Guards []Guard

	// Children are registered with this route as their parent.
	Children []Route
}

// Mount registers routes under parent (nil for the root), depth first.
// It stops at the first error.
func (r *Registry) Mount(parent *RouteNode, routes []Route) error {
	for _, rt := range routes {
		opts := []RouteOption{WithName(rt.Name)}
		if len(rt.Guards) > 0 {
			opts = append(opts, WithGuard(rt.Guards...))
		}
		node, err := r.Register(rt.Path, rt.Render, parent, opts...)
		if err != nil {
			return err
		}
		if err := r.Mount(node, rt.Children); err != nil {
			return err
		}
	}
	return nil
}

// Build creates a registry from declarations and freezes it. Any
// registration error aborts construction and no registry is returned.
func Build(routes []Route, opts ...Option) (*Registry, error) {
	r := New(opts...)
	if err := r.Mount(nil, routes); err != nil {
		return nil, err
	}
	r.Freeze()
	return r, nil
}
