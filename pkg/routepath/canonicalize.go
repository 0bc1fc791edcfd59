// Package routepath normalizes request paths before they reach the route
// registry and validates navigation targets.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Result is a canonicalized path with its query split off.
type Result struct {
	// Path always starts with "/" and never ends with one, except for the root.
	Path string

	// Query is the raw query string without the leading "?".
	Query string

	// Changed reports whether canonicalization rewrote the path.
	Changed bool
}

var (
	ErrInvalidPath          = errors.New("invalid path")
	ErrBackslash            = errors.New("path contains backslash")
	ErrNullByte             = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
	ErrEscapesRoot          = errors.New("path escapes root via ..")
	ErrEncodedSlash         = errors.New("encoded slash in single segment")
)

// Canonicalize collapses repeated slashes, drops "." segments, resolves ".."
// and strips the trailing slash. Inputs containing a backslash, a NUL byte,
// a malformed percent escape, or a ".." above the root are rejected.
func Canonicalize(input string) (Result, error) {
	if input == "" {
		return Result{Path: "/", Changed: true}, nil
	}

	raw, query, _ := strings.Cut(input, "?")

	if strings.ContainsRune(raw, '\\') {
		return Result{}, ErrBackslash
	}
	if strings.ContainsRune(raw, 0) || strings.Contains(strings.ToUpper(raw), "%00") {
		return Result{}, ErrNullByte
	}
	if strings.ContainsRune(raw, '%') {
		if err := checkEscapes(raw); err != nil {
			return Result{}, err
		}
	}

	parts := strings.Split(raw, "/")
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
		case "..":
			if len(kept) == 0 {
				return Result{}, ErrEscapesRoot
			}
			kept = kept[:len(kept)-1]
		default:
			kept = append(kept, part)
		}
	}

	path := "/" + strings.Join(kept, "/")
	return Result{Path: path, Query: query, Changed: path != raw}, nil
}

// checkEscapes verifies every '%' is followed by two hex digits.
func checkEscapes(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			continue
		}
		if i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// Split returns the non-empty segments of a canonical path.
// The root path yields no segments.
func Split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// DecodeSegment percent-decodes one path segment. Unless the segment belongs
// to a catch-all capture, a decoded "/" is rejected so a single parameter can
// never smuggle additional path segments.
func DecodeSegment(segment string, catchAll bool) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if !catchAll && strings.Contains(decoded, "/") {
		return "", ErrEncodedSlash
	}
	return decoded, nil
}

// ValidateTarget canonicalizes a navigation or redirect target. Targets must
// be site-relative: absolute URLs and protocol-relative "//host" forms are
// rejected to prevent open redirects. The query string is preserved.
func ValidateTarget(target string) (string, error) {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "", ErrInvalidPath
	}
	if strings.Contains(target, "://") {
		return "", ErrInvalidPath
	}

	res, err := Canonicalize(target)
	if err != nil {
		return "", err
	}
	if res.Query != "" {
		return res.Path + "?" + res.Query, nil
	}
	return res.Path, nil
}
