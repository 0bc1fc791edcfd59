package config

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/outlet-dev/outlet/internal/errors"
	"github.com/outlet-dev/outlet/pkg/auth"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.ShutdownTimeout() != 10*time.Second {
		t.Errorf("ShutdownTimeout() = %v, want 10s", cfg.ShutdownTimeout())
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Auth.LoginPath != DefaultLoginPath || cfg.Auth.CookieName != auth.DefaultCookieName {
		t.Errorf("Auth = %+v", cfg.Auth)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFormat, "")
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() without file error = %v", err)
	}
	if cfg.Path() != "" || cfg.Server.Addr != DefaultAddr {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}

	path := writeConfig(t, dir, `{
  "server": {"addr": "127.0.0.1:9000", "shutdownTimeout": "3s"},
  "log": {"level": "debug", "format": "json"},
  "auth": {"sessions": {"tok": {"id": "u1", "roles": ["admin"]}}},
  "publish": {"bucket": "routes", "prefix": "prod"}
}
`)
	cfg, err = Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.ShutdownTimeout() != 3*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.LogLevel() != slog.LevelDebug || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Auth.LoginPath != DefaultLoginPath {
		t.Errorf("Auth.LoginPath default not applied: %q", cfg.Auth.LoginPath)
	}
	if cfg.Publish.Bucket != "routes" || cfg.Publish.Prefix != "prod" {
		t.Errorf("Publish = %+v", cfg.Publish)
	}

	p := cfg.Principals()["tok"]
	if p.ID != "u1" || !p.HasRole("admin") {
		t.Errorf("Principals()[tok] = %+v", p)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"server": {"addr": ":7000"}, "log": {"level": "info"}}`)

	t.Setenv(EnvAddr, ":9999")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFormat, "json")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %q, want env override", cfg.Server.Addr)
	}
	if cfg.LogLevel() != slog.LevelWarn || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want env overrides", cfg.Log)
	}

	t.Setenv(EnvLogLevel, "loud")
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load() accepted an invalid OUTLET_LOG_LEVEL")
	}
}

func TestLoadFileInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "{\n  \"server\": {\n    \"addr\": \":8080\",\n  }\n}\n")

	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	var oe *errors.OutletError
	if !stderrors.As(err, &oe) || oe.Code != "E101" {
		t.Fatalf("error = %v, want E101", err)
	}
	if oe.Location == nil || oe.Location.Line != 4 {
		t.Errorf("Location = %v, want line 4", oe.Location)
	}
}

func TestLoadFileUnknownField(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `{"sever": {"addr": ":1"}}`)
	_, err := LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "E101") {
		t.Errorf("LoadFile() error = %v, want E101 for unknown field", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), ConfigFileName))
	if err == nil || !strings.Contains(err.Error(), "E100") {
		t.Errorf("LoadFile() error = %v, want E100", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   string
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "E102"},
		{"bad timeout", func(c *Config) { c.Server.ShutdownTimeout = "soon" }, "E102"},
		{"negative timeout", func(c *Config) { c.Server.ShutdownTimeout = "-1s" }, "E102"},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, "E103"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "E102"},
		{"relative login path", func(c *Config) { c.Auth.LoginPath = "login" }, "E102"},
		{"session without id", func(c *Config) {
			c.Auth.Sessions = map[string]SessionConfig{"tok": {Name: "x"}}
		}, "E102"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			var oe *errors.OutletError
			if !stderrors.As(err, &oe) || oe.Code != tt.code {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestSave(t *testing.T) {
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFormat, "")
	path := filepath.Join(t.TempDir(), ConfigFileName)

	cfg := New()
	cfg.Server.Addr = ":9000"

	if err := cfg.Save(); err == nil {
		t.Error("expected error when saving without path")
	}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want :9000", loaded.Server.Addr)
	}

	loaded.Log.Level = "debug"
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	reloaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if reloaded.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", reloaded.Log.Level)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":"v"`) {
		t.Errorf("JSON log output = %s", out)
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `{}`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, found, err := FindProjectRoot(nested)
	if err != nil || !found {
		t.Fatalf("FindProjectRoot() = %q, %v, %v", got, found, err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindProjectRoot() = %q, want %q", got, want)
	}
}
