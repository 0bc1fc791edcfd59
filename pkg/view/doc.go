// Package view is the output model of route render functions.
//
// A render function returns a *Node tree. Layout routes mark the place where
// their child route renders with Outlet():
//
//	func JobLayout(params router.Params) *view.Node {
//	    return view.Div(view.Class("job"),
//	        view.H1(view.Text("Job " + params.Get("jobId"))),
//	        view.Outlet(),
//	    )
//	}
//
// The registry fills the outlet with FillOutlet and the result is written as
// HTML with Renderer.
package view
