package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/outlet-dev/outlet/pkg/auth"
	"github.com/outlet-dev/outlet/pkg/middleware"
	"github.com/outlet-dev/outlet/pkg/navigation"
	"github.com/outlet-dev/outlet/pkg/router"
	"github.com/outlet-dev/outlet/pkg/view"
)

// Server serves a frozen route registry.
type Server struct {
	registry *router.Registry
	config   *Config

	// Optional collaborators
	provider  *auth.Provider
	metrics   *middleware.Metrics
	gatherer  prometheus.Gatherer
	navMW     []navigation.Middleware
	notFound  func(path string) *view.Node
	forbidden func(path string) *view.Node

	renderer *view.Renderer
	upgrader websocket.Upgrader
	handler  http.Handler
	logger   *slog.Logger

	mu         sync.Mutex
	conns      map[*conn]struct{}
	httpServer *http.Server
	wg         sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default is slog.Default with
// component=server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger.With("component", "server")
		}
	}
}

// WithAuth authenticates every request through p.
func WithAuth(p *auth.Provider) Option {
	return func(s *Server) {
		s.provider = p
	}
}

// WithMetrics records navigation and connection metrics on m and exposes
// gatherer on /metrics.
func WithMetrics(m *middleware.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithNavigationMiddleware wraps every navigation, for both rendered pages
// and WebSocket connections.
func WithNavigationMiddleware(mw ...navigation.Middleware) Option {
	return func(s *Server) {
		s.navMW = append(s.navMW, mw...)
	}
}

// WithNotFound sets the page rendered for unmatched paths.
func WithNotFound(render func(path string) *view.Node) Option {
	return func(s *Server) {
		s.notFound = render
	}
}

// WithForbidden sets the page rendered when a guard denies without a
// redirect.
func WithForbidden(render func(path string) *view.Node) Option {
	return func(s *Server) {
		s.forbidden = render
	}
}

// New creates a Server for registry. The registry is frozen.
func New(registry *router.Registry, config *Config, opts ...Option) *Server {
	registry.Freeze()
	config = config.withDefaults()

	s := &Server{
		registry: registry,
		config:   config,
		renderer: view.NewRenderer(view.RendererConfig{Doctype: true}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.originChecker(),
		},
		logger: slog.Default().With("component", "server"),
		conns:  make(map[*conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = s.routes()
	return s
}

// routes builds the chi router.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimw.Recoverer)
	if s.provider != nil {
		r.Use(s.provider.Middleware())
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/routes", s.serveManifest)
	r.Get("/ws", s.HandleWebSocket)
	r.Get(ClientPath, s.serveClient)
	r.Head(ClientPath, s.serveClient)
	r.Get("/*", s.servePage)
	r.Head("/*", s.servePage)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Handler returns the server's HTTP handler for mounting elsewhere.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Config returns the effective configuration.
func (s *Server) Config() *Config {
	return s.config
}

// navigator creates a Navigator carrying the server's middleware.
func (s *Server) navigator(committer navigation.Committer, logger *slog.Logger) *navigation.Navigator {
	opts := []navigation.Option{navigation.WithLogger(logger)}
	if s.notFound != nil {
		opts = append(opts, navigation.WithNotFound(s.notFound))
	}
	if s.metrics != nil {
		opts = append(opts, navigation.WithMiddleware(s.metrics.Middleware()))
	}
	if len(s.navMW) > 0 {
		opts = append(opts, navigation.WithMiddleware(s.navMW...))
	}
	return navigation.New(s.registry, committer, opts...)
}

// ListenAndServe listens on the configured address and serves until ctx is
// done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown closes every WebSocket connection and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	conns := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.close(websocket.CloseGoingAway, "server shutting down")
	}

	var err error
	if srv != nil {
		if err = srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}

	if err == nil {
		s.logger.Info("server shutdown complete")
	}
	return err
}

// ConnectionCount returns the number of open WebSocket connections.
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) track(c *conn) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.ConnectionOpened()
	}
}

func (s *Server) untrack(c *conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.ConnectionClosed()
	}
}
