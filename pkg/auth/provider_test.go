package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/outlet-dev/outlet/pkg/auth"
)

func TestProviderMiddleware(t *testing.T) {
	store := auth.NewMemoryStore(map[string]auth.Principal{
		"tok-ada": {ID: "ada", Roles: []string{"admin"}},
		"tok-old": {ID: "old", ExpiresAtUnixMs: time.Now().Add(-time.Hour).UnixMilli()},
	})
	p := auth.NewProvider(store)

	var seen auth.Principal
	var seenOK bool
	handler := p.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, seenOK = auth.UserFrom(r.Context())
	}))

	tests := []struct {
		name        string
		header      string
		cookie      string
		wantID      string
		wantCleared bool
	}{
		{name: "anonymous"},
		{name: "bearer token", header: "Bearer tok-ada", wantID: "ada"},
		{name: "lowercase scheme", header: "bearer tok-ada", wantID: "ada"},
		{name: "basic scheme ignored", header: "Basic tok-ada"},
		{name: "session cookie", cookie: "tok-ada", wantID: "ada"},
		{name: "unknown cookie cleared", cookie: "nope", wantCleared: true},
		{name: "expired cookie cleared", cookie: "tok-old", wantCleared: true},
		{name: "unknown bearer not cleared", header: "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen, seenOK = auth.Principal{}, false
			req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.DefaultCookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if tt.wantID == "" {
				if seenOK {
					t.Errorf("principal = %+v, want anonymous", seen)
				}
			} else if !seenOK || seen.ID != tt.wantID || seen.SessionID == "" {
				t.Errorf("principal = %+v (ok=%v), want id %q with session id", seen, seenOK, tt.wantID)
			}

			cleared := false
			for _, c := range rec.Result().Cookies() {
				if c.Name == auth.DefaultCookieName && c.MaxAge < 0 {
					cleared = true
				}
			}
			if cleared != tt.wantCleared {
				t.Errorf("cookie cleared = %v, want %v", cleared, tt.wantCleared)
			}
		})
	}
}

func TestMemoryStore(t *testing.T) {
	store := auth.NewMemoryStore(nil)
	store.Put("s1", auth.Principal{ID: "u1"})

	p, err := store.Lookup(t.Context(), "s1")
	if err != nil || p.ID != "u1" || p.SessionID != "s1" {
		t.Fatalf("Lookup() = %+v, %v", p, err)
	}

	store.Delete("s1")
	if _, err := store.Lookup(t.Context(), "s1"); err != auth.ErrUnknownSession {
		t.Errorf("Lookup() after Delete error = %v, want ErrUnknownSession", err)
	}
}
