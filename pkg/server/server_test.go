package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/outlet-dev/outlet/pkg/auth"
	"github.com/outlet-dev/outlet/pkg/manifest"
	"github.com/outlet-dev/outlet/pkg/middleware"
	"github.com/outlet-dev/outlet/pkg/router"
	"github.com/outlet-dev/outlet/pkg/view"
)

const adminToken = "tok-admin"
const userToken = "tok-user"

func page(label string) router.RenderFunc {
	return func(router.Params) *view.Node { return view.Main(view.H1(label)) }
}

func shell(router.Params) *view.Node {
	return view.Html(view.Body(view.Outlet()))
}

// testRegistry serves /, /login, /jobs (signed in), /admin (admin role),
// /slow (guard blocks until cancelled) and /boom (render panics).
func testRegistry(t *testing.T) *router.Registry {
	t.Helper()
	reg, err := router.Build([]router.Route{
		{Path: "/", Render: page("home")},
		{Path: "/login", Render: page("login")},
		{Path: "_auth", Guards: []router.Guard{auth.RequireAuth("/login")}, Children: []router.Route{
			{Path: "/jobs", Render: page("jobs")},
			{Path: "/admin", Render: page("admin"), Guards: []router.Guard{auth.RequireRole("admin")}},
		}},
		{Path: "/slow", Render: page("slow"), Guards: []router.Guard{router.GuardFunc(
			func(ctx context.Context, _ *router.MatchResult) (router.Decision, error) {
				<-ctx.Done()
				return router.Decision{}, ctx.Err()
			})}},
		{Path: "/boom", Render: func(router.Params) *view.Node { panic("boom") }},
	}, router.WithRoot(shell))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return reg
}

func testProvider() *auth.Provider {
	return auth.NewProvider(auth.NewMemoryStore(map[string]auth.Principal{
		adminToken: {ID: "u-admin", Roles: []string{"admin"}},
		userToken:  {ID: "u-user"},
	}))
}

func notFoundPage(path string) *view.Node {
	return view.Html(view.Body(view.H1("missing " + path)))
}

func newTestServer(t *testing.T, config *Config, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	opts = append([]Option{WithAuth(testProvider()), WithNotFound(notFoundPage)}, opts...)
	s := New(testRegistry(t), config, opts...)
	ts := httptest.NewServer(s)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
		ts.Close()
	})
	return s, ts
}

type response struct {
	status int
	header http.Header
	body   string
}

func get(t *testing.T, url string, header http.Header) response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return response{status: resp.StatusCode, header: resp.Header, body: string(body)}
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp := get(t, ts.URL+"/healthz", nil)
	if resp.status != http.StatusOK || resp.body != "ok" {
		t.Errorf("GET /healthz = %d %q", resp.status, resp.body)
	}
}

func TestServePage(t *testing.T) {
	_, ts := newTestServer(t, nil)

	tests := []struct {
		name     string
		path     string
		header   http.Header
		status   int
		body     string
		location string
	}{
		{name: "public page", path: "/", status: http.StatusOK, body: "<!DOCTYPE html><html><body><main><h1>home</h1></main></body></html>"},
		{name: "query is kept", path: "/login?redirect=%2Fjobs", status: http.StatusOK, body: "<h1>login</h1>"},
		{name: "anonymous redirect", path: "/jobs", status: http.StatusFound, location: "/login?redirect=%2Fjobs"},
		{name: "signed in", path: "/jobs", header: bearer(userToken), status: http.StatusOK, body: "<h1>jobs</h1>"},
		{name: "forbidden", path: "/admin", header: bearer(userToken), status: http.StatusForbidden, body: "403 forbidden"},
		{name: "role granted", path: "/admin", header: bearer(adminToken), status: http.StatusOK, body: "<h1>admin</h1>"},
		{name: "not found", path: "/nope", status: http.StatusNotFound, body: "missing /nope"},
		{name: "trailing slash", path: "/jobs/", status: http.StatusPermanentRedirect, location: "/jobs"},
		{name: "render panic", path: "/boom", status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, ts.URL+tt.path, tt.header)
			if resp.status != tt.status {
				t.Fatalf("status = %d, want %d (body %q)", resp.status, tt.status, resp.body)
			}
			if tt.body != "" && !strings.Contains(resp.body, tt.body) {
				t.Errorf("body = %q, want it to contain %q", resp.body, tt.body)
			}
			if tt.location != "" && resp.header.Get("Location") != tt.location {
				t.Errorf("Location = %q, want %q", resp.header.Get("Location"), tt.location)
			}
		})
	}
}

func TestServePageContentType(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp := get(t, ts.URL+"/", nil)
	if ct := resp.header.Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestServeManifest(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := get(t, ts.URL+"/routes", nil)
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d", resp.status)
	}
	var m manifest.Manifest
	if err := json.Unmarshal([]byte(resp.body), &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	paths := make(map[string]manifest.Route)
	for _, r := range m.Routes {
		paths[r.Path] = r
	}
	if !paths["/jobs"].Protected || paths["/login"].Protected {
		t.Errorf("protection flags wrong: %+v", m.Routes)
	}

	yaml := get(t, ts.URL+"/routes?format=yaml", nil)
	if yaml.status != http.StatusOK || !strings.Contains(yaml.body, "routes:") {
		t.Errorf("yaml manifest = %d %q", yaml.status, yaml.body)
	}
	if ct := yaml.header.Get("Content-Type"); ct != manifest.FormatYAML.ContentType() {
		t.Errorf("yaml Content-Type = %q", ct)
	}

	if bad := get(t, ts.URL+"/routes?format=xml", nil); bad.status != http.StatusBadRequest {
		t.Errorf("unknown format status = %d, want 400", bad.status)
	}
}

func TestServeClient(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := get(t, ts.URL+ClientPath, nil)
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d", resp.status)
	}
	if !strings.Contains(resp.body, `"navigate"`) {
		t.Error("client script missing navigate message")
	}
	etag := resp.header.Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	cached := get(t, ts.URL+ClientPath, http.Header{"If-None-Match": {etag}})
	if cached.status != http.StatusNotModified {
		t.Errorf("conditional GET status = %d, want 304", cached.status)
	}
}

func TestEtagMatches(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{``, false},
		{`"abc"`, true},
		{`W/"abc"`, true},
		{`"x", "abc"`, true},
		{`"x"`, false},
		{`*`, true},
	}
	for _, tt := range tests {
		if got := etagMatches(tt.header, `"abc"`); got != tt.want {
			t.Errorf("etagMatches(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := middleware.NewMetrics(middleware.WithRegistry(reg))
	_, ts := newTestServer(t, nil, WithMetrics(m, reg))

	get(t, ts.URL+"/", nil)
	get(t, ts.URL+"/nope", nil)

	resp := get(t, ts.URL+"/metrics", nil)
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d", resp.status)
	}
	for _, want := range []string{
		`outlet_navigations_total{result="committed"} 1`,
		`outlet_navigations_total{result="not_found"} 1`,
	} {
		if !strings.Contains(resp.body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestMetricsDisabled(t *testing.T) {
	_, ts := newTestServer(t, nil)
	// Without metrics /metrics is just another unmatched page.
	if resp := get(t, ts.URL+"/metrics", nil); resp.status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.status)
	}
}

func TestConfigDefaults(t *testing.T) {
	c := (&Config{Addr: ":9000", PingInterval: time.Second}).withDefaults()
	if c.Addr != ":9000" || c.PingInterval != time.Second {
		t.Errorf("explicit values overwritten: %+v", c)
	}
	d := DefaultConfig()
	if c.ShutdownTimeout != d.ShutdownTimeout || c.MaxMessageSize != d.MaxMessageSize {
		t.Errorf("defaults not applied: %+v", c)
	}
	if (*Config)(nil).withDefaults().Addr != ":8080" {
		t.Error("nil config should default")
	}
}

func TestOriginChecker(t *testing.T) {
	check := (&Config{AllowedOrigins: []string{"https://app.example.com/"}}).originChecker()

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:8080", true},
		{"https://app.example.com", true},
		{"https://APP.example.com", true},
		{"https://evil.example.com", false},
		{"::", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "http://localhost:8080/ws", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := check(r); got != tt.want {
			t.Errorf("origin %q = %v, want %v", tt.origin, got, tt.want)
		}
	}

	anyOrigin := (&Config{AllowedOrigins: []string{"*"}}).originChecker()
	r := httptest.NewRequest(http.MethodGet, "http://localhost:8080/ws", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	if !anyOrigin(r) {
		t.Error("* should allow any origin")
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := New(testRegistry(t), &Config{ShutdownTimeout: 2 * time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ctx, ln) }()

	resp := get(t, "http://"+ln.Addr().String()+"/healthz", nil)
	if resp.status != http.StatusOK {
		t.Fatalf("status = %d", resp.status)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
