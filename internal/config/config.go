package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/outlet-dev/outlet/internal/errors"
	"github.com/outlet-dev/outlet/pkg/auth"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "outlet.json"

	// DefaultAddr is the default server listen address.
	DefaultAddr = ":8080"

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = "10s"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log handler.
	DefaultLogFormat = "text"

	// DefaultLoginPath is where unauthenticated navigations are redirected.
	DefaultLoginPath = "/login"
)

// Environment variables that override the file.
const (
	EnvAddr      = "OUTLET_ADDR"
	EnvLogLevel  = "OUTLET_LOG_LEVEL"
	EnvLogFormat = "OUTLET_LOG_FORMAT"
)

// Config represents the complete outlet.json configuration.
type Config struct {
	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server"`

	// Log contains logging configuration.
	Log LogConfig `json:"log"`

	// Auth contains authentication configuration.
	Auth AuthConfig `json:"auth"`

	// Publish contains manifest publishing configuration.
	Publish PublishConfig `json:"publish"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (e.g., "10s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty"`

	// AllowedOrigins lists origins allowed to open navigation WebSockets.
	// Empty means same-origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	// LoginPath is the redirect target for protected routes.
	LoginPath string `json:"loginPath,omitempty"`

	// CookieName is the session cookie name.
	CookieName string `json:"cookieName,omitempty"`

	// Sessions seeds the in-memory session store, keyed by token.
	Sessions map[string]SessionConfig `json:"sessions,omitempty"`
}

// SessionConfig describes a seeded session.
type SessionConfig struct {
	ID    string   `json:"id"`
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// PublishConfig contains manifest publishing settings.
type PublishConfig struct {
	Bucket    string `json:"bucket,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
	Region    string `json:"region,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	PathStyle bool   `json:"pathStyle,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads outlet.json from dir. A missing file yields the defaults.
// Environment overrides are applied in both cases.
func Load(dir string) (*Config, error) {
	if !Exists(dir) {
		cfg := New()
		cfg.applyEnv(os.LookupEnv)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E100").Wrap(err)
	}

	cfg := &Config{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, parseError(path, data, err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseError converts a decode error into E101, locating syntax errors.
func parseError(path string, data []byte, err error) error {
	oe := errors.New("E101").Wrap(err).
		WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON with known fields")

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var offset int64
	switch {
	case stderrors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case stderrors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return oe
	}
	line, col := position(data, offset)
	return oe.WithLocation(path, line, col)
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line := bytes.Count(before, []byte("\n")) + 1
	col := int(offset) - bytes.LastIndexByte(before, '\n')
	return line, col
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E100").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E100").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Auth.LoginPath == "" {
		c.Auth.LoginPath = DefaultLoginPath
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = auth.DefaultCookieName
	}
}

// applyEnv overlays environment overrides.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Log.Format = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("E102").WithDetail("server.addr must not be empty")
	}
	if d, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil || d <= 0 {
		return errors.New("E102").
			WithDetail("server.shutdownTimeout must be a positive duration, got " + c.Server.ShutdownTimeout).
			WithSuggestion(`Use a Go duration such as "10s"`)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return errors.New("E103").Wrap(err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E102").WithDetail(`log.format must be "text" or "json", got "` + c.Log.Format + `"`)
	}
	if !strings.HasPrefix(c.Auth.LoginPath, "/") {
		return errors.New("E102").WithDetail("auth.loginPath must start with /, got " + c.Auth.LoginPath)
	}
	for token, s := range c.Auth.Sessions {
		if s.ID == "" {
			return errors.New("E102").WithDetail("auth.sessions[" + token + "].id must not be empty")
		}
	}
	return nil
}

// ShutdownTimeout returns the parsed shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultShutdownTimeout)
	}
	return d
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}

// NewLogger builds the process logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Principals converts the seeded sessions for an auth.MemoryStore.
func (c *Config) Principals() map[string]auth.Principal {
	out := make(map[string]auth.Principal, len(c.Auth.Sessions))
	for token, s := range c.Auth.Sessions {
		out[token] = auth.Principal{ID: s.ID, Name: s.Name, Email: s.Email, Roles: s.Roles}
	}
	return out
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up from startDir to the directory containing
// outlet.json. It reports false when no directory has one.
func FindProjectRoot(startDir string) (string, bool, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, err
	}

	for {
		if Exists(dir) {
			return dir, true, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads the nearest outlet.json at or above the working
// directory, or the defaults when there is none.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, found, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}
	if !found {
		root = wd
	}
	return Load(root)
}
