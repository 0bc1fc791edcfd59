package app

import (
	"github.com/outlet-dev/outlet/pkg/router"
	"github.com/outlet-dev/outlet/pkg/view"
)

// Shell is the root render: the HTML document around every page.
func Shell(router.Params) *view.Node {
	return document(view.Outlet())
}

// NotFound renders the page for unmatched paths.
func NotFound(path string) *view.Node {
	return document(view.Main(view.ID("outlet"),
		view.H1("Page not found"),
		view.P("Nothing lives at ", view.Span(view.Class("path"), path), "."),
		view.Link("/", "Back home"),
	))
}

// Forbidden renders the page for denied navigations without a redirect.
func Forbidden(path string) *view.Node {
	return document(view.Main(view.ID("outlet"),
		view.H1("Access denied"),
		view.P("You do not have access to ", view.Span(view.Class("path"), path), "."),
	))
}

func document(body *view.Node) *view.Node {
	return view.Html(view.Lang("en"),
		view.Head(
			view.Meta(view.Charset("utf-8")),
			view.Title("Outlet"),
		),
		view.Body(
			view.Nav(view.Class("topnav"),
				view.Link("/", "Home"),
				view.Link("/forms", "Forms"),
				view.Link("/jobs", "Jobs"),
				view.Link("/chat", "Chat"),
			),
			body,
			view.Script(view.Src(ClientScript)),
		),
	)
}

// Home is the landing page.
func Home(router.Params) *view.Node {
	return view.Main(view.ID("outlet"),
		view.H1("Forms and jobs"),
		view.P("Build intake forms, run jobs against them and ask the assistant about the results."),
	)
}

// Login is the sign-in page. The form posts to the identity provider.
func Login(router.Params) *view.Node {
	return view.Main(view.ID("outlet"),
		view.H1("Sign in"),
		view.Form(view.Action("/auth/login"), view.Method("post"),
			view.Label("Email", view.Input(view.Type("email"), view.Name("email"))),
			view.Label("Password", view.Input(view.Type("password"), view.Name("password"))),
			view.Button(view.Type("submit"), "Sign in"),
		),
	)
}

// Workspace wraps every protected page.
func Workspace(router.Params) *view.Node {
	return view.Main(view.ID("outlet"), view.Class("workspace"), view.Outlet())
}

// Section returns a layout titled for a top-level section.
func Section(title string) router.RenderFunc {
	return func(router.Params) *view.Node {
		return view.Section(view.Data("section", title),
			view.H1(title),
			view.Outlet(),
		)
	}
}

// FormList lists forms.
func FormList(router.Params) *view.Node {
	return view.Div(view.Class("list"),
		view.Link("/forms/create", "New form"),
		view.Ul(view.Data("empty", "true")),
	)
}

// FormCreate is the new-form editor.
func FormCreate(router.Params) *view.Node {
	return formEditor("/forms", "Create form", "")
}

// FormLayout frames a single form and its tabs.
func FormLayout(p router.Params) *view.Node {
	id := p.Get("formId")
	return view.Div(view.Data("form", id),
		view.H2("Form ", id),
		view.Nav(view.Class("tabs"),
			view.Link("/forms/"+id, "Overview"),
			view.Link("/forms/"+id+"/edit", "Edit"),
		),
		view.Outlet(),
	)
}

// FormDetail shows a form.
func FormDetail(p router.Params) *view.Node {
	return view.P("Fields and submissions for form ", p.Get("formId"), ".")
}

// FormEdit edits a form.
func FormEdit(p router.Params) *view.Node {
	return formEditor("/forms/"+p.Get("formId"), "Save form", p.Get("formId"))
}

func formEditor(action, submit, id string) *view.Node {
	return view.Form(view.Action(action), view.Method("post"), view.Data("form-id", id),
		view.Label("Title", view.Input(view.Type("text"), view.Name("title"))),
		view.Label("Description", view.Textarea(view.Name("description"))),
		view.Button(view.Type("submit"), submit),
	)
}

// JobList lists jobs.
func JobList(router.Params) *view.Node {
	return view.Div(view.Class("list"),
		view.Link("/jobs/create", "New job"),
		view.Ul(view.Data("empty", "true")),
	)
}

// JobCreate is the new-job editor.
func JobCreate(router.Params) *view.Node {
	return jobEditor("/jobs", "Create job", "")
}

type jobParams struct {
	ID string `param:"jobId"`
}

// JobLayout frames a single job and its tabs.
func JobLayout(p router.Params) *view.Node {
	var jp jobParams
	if err := p.Decode(&jp); err != nil {
		return view.P(view.Class("error"), "Invalid job reference.")
	}
	return view.Div(view.Data("job", jp.ID),
		view.H2("Job ", jp.ID),
		view.Nav(view.Class("tabs"),
			view.Link("/jobs/"+jp.ID, "Overview"),
			view.Link("/jobs/"+jp.ID+"/edit", "Edit"),
		),
		view.Outlet(),
	)
}

// JobDetail shows a job.
func JobDetail(p router.Params) *view.Node {
	return view.P("Runs and output for job ", p.Get("jobId"), ".")
}

// JobEdit edits a job.
func JobEdit(p router.Params) *view.Node {
	return jobEditor("/jobs/"+p.Get("jobId"), "Save job", p.Get("jobId"))
}

func jobEditor(action, submit, id string) *view.Node {
	return view.Form(view.Action(action), view.Method("post"), view.Data("job-id", id),
		view.Label("Name", view.Input(view.Type("text"), view.Name("name"))),
		view.Label("Form", view.Input(view.Type("text"), view.Name("form"))),
		view.Button(view.Type("submit"), submit),
	)
}

// Chat is the assistant conversation view.
func Chat(router.Params) *view.Node {
	return view.Div(view.Class("chat"),
		view.Div(view.ID("messages")),
		view.Form(view.Data("chat", "true"),
			view.Textarea(view.Name("message")),
			view.Button(view.Type("submit"), "Send"),
		),
	)
}
