// Package app declares the application's route table: the document shell,
// the login page and the protected forms, jobs and chat sections.
package app

import (
	"github.com/outlet-dev/outlet/pkg/auth"
	"github.com/outlet-dev/outlet/pkg/router"
)

// ClientScript is the path the shell loads the navigation client from.
const ClientScript = "/_outlet/client.js"

// Options configures the route table.
type Options struct {
	// LoginPath is where the protected section redirects anonymous users.
	LoginPath string
}

// Routes returns the route declarations, relative to the root.
func Routes(opts Options) []router.Route {
	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}

	return []router.Route{
		{Path: "/", Name: "home", Render: Home},
		{Path: loginPath, Name: "login", Render: Login},
		{
			Path:   "_auth",
			Render: Workspace,
			Guards: []router.Guard{auth.RequireAuth(loginPath)},
			Children: []router.Route{
				{Path: "/forms", Render: Section("Forms"), Children: []router.Route{
					{Path: "", Name: "forms", Render: FormList},
					{Path: "create", Name: "forms.create", Render: FormCreate},
					{Path: "$formId", Render: FormLayout, Children: []router.Route{
						{Path: "", Name: "forms.detail", Render: FormDetail},
						{Path: "edit", Name: "forms.edit", Render: FormEdit},
					}},
				}},
				{Path: "/jobs", Render: Section("Jobs"), Children: []router.Route{
					{Path: "", Name: "jobs", Render: JobList},
					{Path: "create", Name: "jobs.create", Render: JobCreate},
					{Path: "$jobId", Render: JobLayout, Children: []router.Route{
						{Path: "", Name: "jobs.detail", Render: JobDetail},
						{Path: "edit", Name: "jobs.edit", Render: JobEdit},
					}},
				}},
				{Path: "/chat", Name: "chat", Render: Chat},
			},
		},
	}
}

// NewRegistry builds and freezes the application's registry with Shell as
// the root render.
func NewRegistry(opts Options, ropts ...router.Option) (*router.Registry, error) {
	all := append([]router.Option{router.WithRoot(Shell)}, ropts...)
	return router.Build(Routes(opts), all...)
}
