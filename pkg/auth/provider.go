package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultCookieName is the session cookie read by Provider.
const DefaultCookieName = "outlet_session"

// SessionStore resolves an opaque session identifier or bearer token to a
// principal.
type SessionStore interface {
	Lookup(ctx context.Context, id string) (Principal, error)
}

// Provider authenticates HTTP requests against a SessionStore.
type Provider struct {
	store      SessionStore
	cookieName string
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Provider.
type Option func(*Provider)

// WithCookieName sets the cookie name used to load session IDs.
func WithCookieName(name string) Option {
	return func(p *Provider) {
		if name != "" {
			p.cookieName = name
		}
	}
}

// WithLogger sets the provider logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProvider creates a Provider backed by store.
func NewProvider(store SessionStore, opts ...Option) *Provider {
	p := &Provider{
		store:      store,
		cookieName: DefaultCookieName,
		logger:     slog.Default().With("component", "auth"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Middleware authenticates each request and stores the principal on its
// context. Requests without valid credentials continue anonymously; stale
// session cookies are cleared.
func (p *Provider) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, fromCookie := p.credential(r)
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := p.store.Lookup(r.Context(), id)
			if err == nil && principal.Expired(p.now()) {
				err = ErrSessionExpired
			}
			if err != nil {
				p.logger.Debug("rejected credentials", "error", err, "cookie", fromCookie)
				if fromCookie {
					p.clearCookie(w, r)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), principal)))
		})
	}
}

// credential extracts a bearer token, falling back to the session cookie.
func (p *Provider) credential(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token), false
		}
	}
	if c, err := r.Cookie(p.cookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

func (p *Provider) clearCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// MemoryStore is an in-memory SessionStore for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Principal
}

// NewMemoryStore creates a store holding sessions.
func NewMemoryStore(sessions map[string]Principal) *MemoryStore {
	s := &MemoryStore{sessions: make(map[string]Principal, len(sessions))}
	for id, p := range sessions {
		p.SessionID = id
		s.sessions[id] = p
	}
	return s
}

// Lookup implements SessionStore.
func (s *MemoryStore) Lookup(_ context.Context, id string) (Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.sessions[id]
	if !ok {
		return Principal{}, ErrUnknownSession
	}
	return p, nil
}

// Put stores a session.
func (s *MemoryStore) Put(id string, p Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.SessionID = id
	s.sessions[id] = p
}

// Delete removes a session.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
