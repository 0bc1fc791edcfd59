package server

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Config configures a Server.
type Config struct {
	// Addr is the TCP address to listen on.
	// Default: ":8080".
	Addr string

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s.
	ShutdownTimeout time.Duration

	// AllowedOrigins lists extra origins (scheme://host[:port]) allowed to
	// open the navigation WebSocket. Same-origin requests are always allowed.
	// "*" allows any origin.
	AllowedOrigins []string

	// ReadHeaderTimeout bounds reading request headers.
	// Default: 5s.
	ReadHeaderTimeout time.Duration

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	// Default: 4096 each.
	ReadBufferSize  int
	WriteBufferSize int

	// WriteTimeout bounds a single WebSocket frame write.
	// Default: 10s.
	WriteTimeout time.Duration

	// PingInterval is how often the server pings idle clients. A client that
	// has not answered within two intervals is disconnected.
	// Default: 30s.
	PingInterval time.Duration

	// MaxMessageSize limits inbound WebSocket messages in bytes.
	// Default: 4096.
	MaxMessageSize int64
}

// DefaultConfig returns a Config with defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Addr:              ":8080",
		ShutdownTimeout:   10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		WriteTimeout:      10 * time.Second,
		PingInterval:      30 * time.Second,
		MaxMessageSize:    4096,
	}
}

// withDefaults returns a copy of c with zero fields defaulted.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	out.AllowedOrigins = slices.Clone(c.AllowedOrigins)
	if out.Addr == "" {
		out.Addr = d.Addr
	}
	if out.ShutdownTimeout <= 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	if out.ReadHeaderTimeout <= 0 {
		out.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if out.ReadBufferSize <= 0 {
		out.ReadBufferSize = d.ReadBufferSize
	}
	if out.WriteBufferSize <= 0 {
		out.WriteBufferSize = d.WriteBufferSize
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.PingInterval <= 0 {
		out.PingInterval = d.PingInterval
	}
	if out.MaxMessageSize <= 0 {
		out.MaxMessageSize = d.MaxMessageSize
	}
	return &out
}

// originChecker returns the WebSocket origin check for the config.
// Requests without an Origin header (non-browser clients) are allowed.
func (c *Config) originChecker() func(r *http.Request) bool {
	allowed := make(map[string]bool, len(c.AllowedOrigins))
	anyOrigin := false
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			anyOrigin = true
			continue
		}
		allowed[strings.ToLower(strings.TrimSuffix(o, "/"))] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || anyOrigin {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false
		}
		if r.Host != "" && strings.EqualFold(u.Host, r.Host) {
			return true
		}
		return allowed[strings.ToLower(u.Scheme+"://"+u.Host)]
	}
}
