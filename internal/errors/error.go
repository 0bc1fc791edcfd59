package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/outlet-dev/outlet/pkg/router"
)

// Category represents the type of error.
type Category string

const (
	CategoryRouting Category = "routing"
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
	CategoryServer  Category = "server"
)

// Location represents a source code location.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// OutletError is a structured error with a code, location and suggestion.
type OutletError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (routing, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the file position where the error occurred.
	Location *Location

	// Context contains surrounding source lines, the first of which is
	// line ContextStart.
	Context      []string
	ContextStart int

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *OutletError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *OutletError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file location and the lines around it.
func (e *OutletError) WithLocation(file string, line, column int) *OutletError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context, e.ContextStart = readContextLines(file, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *OutletError) WithSuggestion(s string) *OutletError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the detailed explanation.
func (e *OutletError) WithDetail(d string) *OutletError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *OutletError) Wrap(err error) *OutletError {
	e.Wrapped = err
	return e
}

// readContextLines reads up to contextSize lines centred on targetLine and
// returns them with the number of the first one.
func readContextLines(filename string, targetLine, contextSize int) ([]string, int) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	first := max(targetLine-contextSize/2, 1)
	last := targetLine + contextSize/2

	var lines []string
	scanner := bufio.NewScanner(file)
	for n := 1; n <= last && scanner.Scan(); n++ {
		if n >= first {
			lines = append(lines, scanner.Text())
		}
	}
	return lines, first
}

// New creates an OutletError from a registered error code.
func New(code string) *OutletError {
	template, ok := registry[code]
	if !ok {
		return &OutletError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &OutletError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new OutletError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *OutletError {
	return &OutletError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an OutletError.
func FromError(err error, code string) *OutletError {
	if err == nil {
		return nil
	}
	var oe *OutletError
	if stderrors.As(err, &oe) {
		return oe
	}
	return New(code).Wrap(err)
}

// FromRouterError maps registry errors to their codes. Errors the router
// does not define become E006.
func FromRouterError(err error) *OutletError {
	if err == nil {
		return nil
	}
	var oe *OutletError
	if stderrors.As(err, &oe) {
		return oe
	}

	var (
		dup     *router.DuplicatePatternError
		pattern *router.PatternError
		render  *router.RenderError
	)
	switch {
	case stderrors.As(err, &dup):
		return New("E001").Wrap(err).
			WithSuggestion(fmt.Sprintf("Rename or remove one of the routes declared as %q", dup.Pattern))
	case stderrors.As(err, &pattern):
		return New("E002").Wrap(err)
	case stderrors.Is(err, router.ErrNotFound):
		return New("E003").Wrap(err)
	case stderrors.Is(err, router.ErrFrozen):
		return New("E004").Wrap(err).
			WithSuggestion("Register every route before the first Resolve or Freeze")
	case stderrors.Is(err, router.ErrMissingOutlet):
		return New("E005").Wrap(err).
			WithSuggestion("Add view.Outlet() where the child route should appear")
	case stderrors.As(err, &render):
		return New("E006").Wrap(err)
	case stderrors.Is(err, router.ErrForeignParent):
		return New("E007").Wrap(err)
	default:
		return New("E006").Wrap(err)
	}
}
