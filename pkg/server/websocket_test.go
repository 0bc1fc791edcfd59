package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/outlet-dev/outlet/pkg/navigation"
	"github.com/outlet-dev/outlet/pkg/view"
)

func dial(t *testing.T, ts *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("Dial() error = %v (status %d)", err, status)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func navigate(t *testing.T, ws *websocket.Conn, path string) {
	t.Helper()
	if err := ws.WriteJSON(ClientMessage{Type: MessageNavigate, Path: path}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
}

func readFrame(t *testing.T, ws *websocket.Conn) Frame {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f Frame
	if err := ws.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return f
}

func TestWebSocketFrames(t *testing.T) {
	_, ts := newTestServer(t, nil)
	ws := dial(t, ts, bearer(userToken))

	tests := []struct {
		path string
		want Frame
		html string
	}{
		{path: "/jobs", want: Frame{Type: FrameRender, Seq: 1, Path: "/jobs"}, html: "<h1>jobs</h1>"},
		{path: "/nope", want: Frame{Type: FrameNotFound, Seq: 2, Path: "/nope"}, html: "missing /nope"},
		{path: "/admin", want: Frame{Type: FrameError, Path: "/admin", Code: ErrorCodeForbidden}},
		{path: "/", want: Frame{Type: FrameRender, Seq: 4, Path: "/"}, html: "<h1>home</h1>"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			navigate(t, ws, tt.path)
			got := readFrame(t, ws)
			if got.Type != tt.want.Type || got.Seq != tt.want.Seq || got.Path != tt.want.Path || got.Code != tt.want.Code {
				t.Errorf("frame = %+v, want %+v", got, tt.want)
			}
			if !strings.Contains(got.HTML, tt.html) {
				t.Errorf("html = %q, want it to contain %q", got.HTML, tt.html)
			}
		})
	}
}

func TestWebSocketRedirectsAnonymous(t *testing.T) {
	_, ts := newTestServer(t, nil)
	ws := dial(t, ts, nil)

	navigate(t, ws, "/jobs")
	got := readFrame(t, ws)
	if got.Type != FrameRedirect || got.To != "/login?redirect=%2Fjobs" {
		t.Errorf("frame = %+v, want redirect to login", got)
	}
	if got.HTML != "" {
		t.Error("redirect frame carries html")
	}
}

func TestWebSocketSupersededSendsNothing(t *testing.T) {
	_, ts := newTestServer(t, nil)
	ws := dial(t, ts, nil)

	// /slow blocks in its guard until the next navigation cancels it.
	navigate(t, ws, "/slow")
	navigate(t, ws, "/login")
	navigate(t, ws, "/")

	// /login may commit or be overtaken by /; /slow never answers.
	for {
		f := readFrame(t, ws)
		if f.Path == "/slow" {
			t.Fatalf("superseded navigation produced a frame: %+v", f)
		}
		if f.Path == "/" {
			if f.Seq != 3 {
				t.Errorf("seq = %d, want 3", f.Seq)
			}
			break
		}
	}
}

func TestWebSocketInvalidMessages(t *testing.T) {
	_, ts := newTestServer(t, nil)
	ws := dial(t, ts, nil)

	tests := []struct {
		name string
		msg  string
	}{
		{"malformed", "{"},
		{"unknown type", `{"type":"jump"}`},
		{"relative path", `{"type":"navigate","path":"jobs"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ws.WriteMessage(websocket.TextMessage, []byte(tt.msg)); err != nil {
				t.Fatal(err)
			}
			got := readFrame(t, ws)
			if got.Type != FrameError || got.Code != ErrorCodeInvalid {
				t.Errorf("frame = %+v, want invalid error", got)
			}
		})
	}

	// The connection survives bad input.
	navigate(t, ws, "/")
	if got := readFrame(t, ws); got.Type != FrameRender {
		t.Errorf("frame = %+v, want render", got)
	}
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	_, ts := newTestServer(t, nil)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example.com"}})
	if err == nil {
		t.Fatal("Dial() succeeded from a foreign origin")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}
}

func TestWebSocketAllowedOrigin(t *testing.T) {
	_, ts := newTestServer(t, &Config{AllowedOrigins: []string{"https://app.example.com"}})
	ws := dial(t, ts, http.Header{"Origin": {"https://app.example.com"}})
	navigate(t, ws, "/")
	if got := readFrame(t, ws); got.Type != FrameRender {
		t.Errorf("frame = %+v, want render", got)
	}
}

func TestShutdownClosesConnections(t *testing.T) {
	s, ts := newTestServer(t, nil)
	ws := dial(t, ts, nil)

	// A round trip guarantees the server registered the connection.
	navigate(t, ws, "/")
	readFrame(t, ws)
	if n := s.ConnectionCount(); n != 1 {
		t.Fatalf("ConnectionCount() = %d, want 1", n)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := ws.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("read after shutdown = %v, want going-away close", err)
	}
	if n := s.ConnectionCount(); n != 0 {
		t.Errorf("ConnectionCount() = %d after shutdown", n)
	}
}

func TestCommitQueuesInOrderWithoutWriting(t *testing.T) {
	s := New(testRegistry(t), nil)
	// No socket and no writer: commit and send must only queue.
	c := &conn{server: s, logger: s.logger, out: outbox{wake: make(chan struct{}, 1)}}

	queued := make(chan struct{})
	go func() {
		c.commit(&navigation.Result{Seq: 1, Path: "/", Output: view.P("one")})
		c.send(Frame{Type: FrameError, Path: "/admin", Code: ErrorCodeForbidden})
		c.commit(&navigation.Result{Seq: 3, Path: "/jobs", Redirect: "/login?redirect=%2Fjobs"})
		close(queued)
	}()
	select {
	case <-queued:
	case <-time.After(5 * time.Second):
		t.Fatal("commit blocked")
	}

	items := c.out.drain()
	if len(items) != 3 {
		t.Fatalf("queued %d items, want 3", len(items))
	}
	want := []Frame{
		{Type: FrameRender, Seq: 1, Path: "/"},
		{Type: FrameError, Path: "/admin", Code: ErrorCodeForbidden},
		{Type: FrameRedirect, Seq: 3, Path: "/jobs", To: "/login?redirect=%2Fjobs"},
	}
	for i, item := range items {
		got := c.frame(item)
		if got.Type != want[i].Type || got.Seq != want[i].Seq || got.Path != want[i].Path || got.Code != want[i].Code || got.To != want[i].To {
			t.Errorf("frame %d = %+v, want %+v", i, got, want[i])
		}
	}
	if html := c.frame(items[0]).HTML; !strings.Contains(html, "<p>one</p>") {
		t.Errorf("render frame html = %q", html)
	}
}
