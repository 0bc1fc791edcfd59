// Package router implements the route registry: a tree of route patterns,
// each with an optional render function, resolved depth-first against
// request paths and rendered by composing parent and child outputs.
//
// # Patterns
//
// A pattern is a "/"-separated list of segments:
//
//	jobs          literal, matches exactly "jobs"
//	$jobId        parameter, captures one non-empty segment
//	$             splat, captures the remaining suffix as "_splat"
//	_auth         pathless group, consumes nothing; used for shared layouts
//
// Patterns are registered relative to an explicit parent:
//
//	r := router.New(router.WithRoot(shell))
//	jobs, _ := r.Register("/jobs", jobList, nil)
//	job, _ := r.Register("$jobId", jobLayout, jobs)
//	_, _ = r.Register("edit", jobEdit, job)
//
//	m, err := r.Resolve("/jobs/123/edit")
//	// m.Params["jobId"] == "123", m.Node is the "edit" node
//	out, err := r.Render(m)
//
// # Precedence
//
// Siblings are tried literal first, then pathless groups, then parameters,
// then splats, compared segment by segment. Equal ranks keep registration
// order. A failed branch is abandoned and the next sibling tried, so
// "/jobs/create" beats "/jobs/$jobId" while "/jobs/42" still matches the
// parameter route.
//
// A trailing parameter on a node without children behaves as a catch-all
// for its subtree: "/files/$path" matches "/files/a/b" with path "a/b", but
// only after every more specific sibling has failed.
//
// # Outlets
//
// A parent render function marks the child's position with view.Outlet().
// Render calls the leaf first and substitutes each output into its parent's
// outlet up to the root.
//
// # Immutability
//
// The tree is built once. Freeze, or the first Resolve, makes it read-only;
// after that Register fails with ErrFrozen and any number of goroutines may
// resolve and render concurrently without locking.
package router
