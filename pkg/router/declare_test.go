package router

import (
	"errors"
	"testing"
)

func TestBuild(t *testing.T) {
	r, err := Build([]Route{
		{Path: "/", Name: "home", Render: page("home")},
		{Path: "/jobs", Name: "jobs", Render: layout("jobs"), Children: []Route{
			{Path: "create", Name: "job-create", Render: page("create")},
			{Path: "$jobId", Name: "job", Render: layout("job"), Children: []Route{
				{Path: "edit", Name: "job-edit", Render: page("edit")},
			}},
		}},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !r.Frozen() {
		t.Error("Build() should freeze the registry")
	}

	m, err := r.Resolve("/jobs/5/edit")
	if err != nil {
		t.Fatal(err)
	}
	if m.Node.Name() != "job-edit" {
		t.Errorf("matched %q, want job-edit", m.Node.Name())
	}
	if m.Node.Parent().Name() != "job" {
		t.Errorf("parent = %q, want job", m.Node.Parent().Name())
	}
}

func TestBuildAbortsOnDuplicate(t *testing.T) {
	r, err := Build([]Route{
		{Path: "/jobs", Children: []Route{
			{Path: "$jobId", Render: page("a")},
			{Path: "$id", Render: page("b")},
		}},
	})
	if !errors.Is(err, ErrDuplicatePattern) {
		t.Fatalf("Build() error = %v, want ErrDuplicatePattern", err)
	}
	if r != nil {
		t.Error("Build() must not return a partial registry")
	}
}
