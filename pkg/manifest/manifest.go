// Package manifest exports the route table of a registry as a manifest and
// publishes it.
//
// A manifest lists every route a navigation can end at, in resolution
// order. It is what `outlet routes` prints, what the server returns from
// /routes, and what S3Publisher uploads for edge caches and client
// prefetching.
package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/outlet-dev/outlet/pkg/router"
)

// Version is the manifest schema version.
const Version = 1

// Route describes one terminal route.
type Route struct {
	// Path is the URL pattern, e.g. "/jobs/$jobId/edit".
	Path string `json:"path" yaml:"path"`

	// Pattern is the declared pattern including pathless groups.
	Pattern string `json:"pattern" yaml:"pattern"`

	Name      string   `json:"name,omitempty" yaml:"name,omitempty"`
	Params    []string `json:"params,omitempty" yaml:"params,omitempty"`
	Index     bool     `json:"index,omitempty" yaml:"index,omitempty"`
	Protected bool     `json:"protected,omitempty" yaml:"protected,omitempty"`
	CatchAll  bool     `json:"catch_all,omitempty" yaml:"catch_all,omitempty"`
}

// Manifest is the exported route table.
type Manifest struct {
	Version int     `json:"version" yaml:"version"`
	Routes  []Route `json:"routes" yaml:"routes"`
}

// FromRegistry builds a manifest from reg's terminal routes.
func FromRegistry(reg *router.Registry) *Manifest {
	m := &Manifest{Version: Version, Routes: []Route{}}
	for _, n := range reg.Routes() {
		m.Routes = append(m.Routes, Route{
			Path:      n.URLPattern(),
			Pattern:   n.FullPattern(),
			Name:      n.Name(),
			Params:    n.ParamNames(),
			Index:     n.Pattern().IsEmpty(),
			Protected: n.Protected(),
			CatchAll:  n.CatchAll(),
		})
	}
	return m
}

// Format selects a manifest encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown manifest format %q", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Encode writes m to w in format f.
func Encode(w io.Writer, m *Manifest, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown manifest format %q", f)
	}
}

// Decode reads a manifest in format f.
func Decode(r io.Reader, f Format) (*Manifest, error) {
	var m Manifest
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&m)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&m)
	default:
		return nil, fmt.Errorf("unknown manifest format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s manifest: %w", f, err)
	}
	if m.Version != Version {
		return nil, fmt.Errorf("unsupported manifest version %d", m.Version)
	}
	return &m, nil
}
