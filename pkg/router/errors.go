package router

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicatePattern matches *DuplicatePatternError.
	ErrDuplicatePattern = errors.New("duplicate route pattern")

	// ErrNotFound matches *NotFoundError.
	ErrNotFound = errors.New("route not found")

	// ErrInvalidPattern matches *PatternError.
	ErrInvalidPattern = errors.New("invalid route pattern")

	// ErrFrozen is returned by Register once the tree is read-only.
	ErrFrozen = errors.New("route tree is frozen")

	// ErrForeignParent is returned when the parent node belongs to another registry.
	ErrForeignParent = errors.New("parent node belongs to a different registry")

	// ErrMissingOutlet is returned by Render when a parent's output has no
	// outlet for the child's output.
	ErrMissingOutlet = errors.New("layout output has no outlet")
)

// DuplicatePatternError reports a registration whose pattern has the same
// shape as an existing sibling.
type DuplicatePatternError struct {
	Pattern  string
	Parent   string
	Existing *RouteNode
}

func (e *DuplicatePatternError) Error() string {
	return fmt.Sprintf("duplicate route pattern %q under %q (conflicts with %q)",
		e.Pattern, e.Parent, e.Existing.Pattern().String())
}

// Is reports whether target is ErrDuplicatePattern.
func (e *DuplicatePatternError) Is(target error) bool {
	return target == ErrDuplicatePattern
}

// NotFoundError reports that no route matched a path. Err holds the
// canonicalization failure when the path itself was rejected.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("route not found: %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("route not found: %q", e.Path)
}

// Unwrap returns the underlying cause.
func (e *NotFoundError) Unwrap() error { return e.Err }

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PatternError reports a malformed pattern.
type PatternError struct {
	Pattern string
	Reason  string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid route pattern %q: %s", e.Pattern, e.Reason)
}

// Is reports whether target is ErrInvalidPattern.
func (e *PatternError) Is(target error) bool {
	return target == ErrInvalidPattern
}

// RenderError wraps a panic raised by a render function.
type RenderError struct {
	Pattern string
	Panic   any
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %q panicked: %v", e.Pattern, e.Panic)
}
