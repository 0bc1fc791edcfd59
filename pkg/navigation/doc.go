// Package navigation coordinates navigations for one UI session.
//
// A navigation resolves a path, waits for the route's guards, renders the
// route and commits the result to the session. Navigations are numbered in
// the order they are issued. Starting a new navigation cancels the one in
// flight, and a navigation only commits while it is still the latest: an
// older navigation that finishes late returns ErrSuperseded and commits
// nothing.
//
//	nav := navigation.New(registry, navigation.CommitFunc(func(res *navigation.Result) {
//	    session.Show(res)
//	}))
//	res, err := nav.Navigate(ctx, "/jobs/42")
package navigation
