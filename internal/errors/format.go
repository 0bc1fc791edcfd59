package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Mode selects how a Printer reports errors.
type Mode string

const (
	// ModeText is the multi-line report with source context and hints.
	ModeText Mode = "text"

	// ModeCompact is one "file:line: CODE: message: cause" line per error.
	ModeCompact Mode = "compact"

	// ModeJSON is one JSON object per error.
	ModeJSON Mode = "json"
)

// ParseMode parses a Mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeText, ModeCompact, ModeJSON:
		return m, nil
	}
	return "", fmt.Errorf("unknown error format %q", s)
}

// CodeUnclassified is reported for errors that carry no code of their own.
const CodeUnclassified = "E143"

// Printer writes errors for people or for tools.
type Printer struct {
	Mode Mode

	// Color enables ANSI escapes in ModeText.
	Color bool
}

// Print writes err to w in p's mode.
func (p Printer) Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	oe := FromError(err, CodeUnclassified)

	switch p.Mode {
	case ModeJSON:
		data, jerr := json.Marshal(oe)
		if jerr != nil {
			fmt.Fprintln(w, oe.FormatCompact())
			return
		}
		fmt.Fprintf(w, "%s\n", data)
	case ModeCompact:
		fmt.Fprintln(w, oe.FormatCompact())
	default:
		io.WriteString(w, p.text(oe))
	}
}

// Format returns the uncolored text report for e.
func (e *OutletError) Format() string {
	return Printer{Mode: ModeText}.text(e)
}

// FormatCompact returns e on a single line, prefixed by its location.
func (e *OutletError) FormatCompact() string {
	if e.Location == nil {
		return e.Error()
	}
	return e.Location.String() + ": " + e.Error()
}

// MarshalJSON encodes the error for machine-readable output.
func (e *OutletError) MarshalJSON() ([]byte, error) {
	out := struct {
		Code       string    `json:"code,omitempty"`
		Category   Category  `json:"category"`
		Message    string    `json:"message"`
		Detail     string    `json:"detail,omitempty"`
		Location   *Location `json:"location,omitempty"`
		Suggestion string    `json:"suggestion,omitempty"`
		Cause      string    `json:"cause,omitempty"`
	}{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Location:   e.Location,
		Suggestion: e.Suggestion,
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}
	return json.Marshal(out)
}

// ANSI escapes used by the text report.
const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiRed   = "\033[31m"
	ansiCyan  = "\033[36m"
	ansiGray  = "\033[90m"
)

func (p Printer) paint(style, s string) string {
	if !p.Color {
		return s
	}
	return style + s + ansiReset
}

// text renders the multi-line report:
//
//	ERROR E101: Invalid configuration file
//
//	  outlet.json:4:13
//
//	       3 │   "server": {
//	  →    4 │     "addr": ":8080",
//	         │             ^
//
//	  The configuration file is not valid JSON.
//
//	  Hint: Remove the trailing comma
func (p Printer) text(e *OutletError) string {
	var b strings.Builder

	heading := "ERROR:"
	if e.Code != "" {
		heading = "ERROR " + e.Code + ":"
	}
	fmt.Fprintf(&b, "\n%s %s\n\n", p.paint(ansiBold+ansiRed, heading), p.paint(ansiBold, e.Message))

	if e.Location != nil {
		fmt.Fprintf(&b, "  %s\n\n", p.paint(ansiCyan, e.Location.String()))
		p.writeContext(&b, e)
	}

	for _, line := range wrapText(e.Detail, 70) {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	if e.Detail != "" {
		b.WriteByte('\n')
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, "  %s%s\n\n", p.paint(ansiGray, "Cause: "), e.Wrapped.Error())
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s%s\n\n", p.paint(ansiCyan, "Hint: "), e.Suggestion)
	}
	return b.String()
}

// writeContext prints the source lines around e.Location with a marker on
// the failing line and a caret under the column.
func (p Printer) writeContext(b *strings.Builder, e *OutletError) {
	if len(e.Context) == 0 {
		return
	}
	gutter := p.paint(ansiGray, " │ ")
	for i, line := range e.Context {
		n := e.ContextStart + i
		if n != e.Location.Line {
			fmt.Fprintf(b, "    %4d%s%s\n", n, gutter, line)
			continue
		}
		fmt.Fprintf(b, "  %s%4d%s%s\n", p.paint(ansiRed, "→ "), n, gutter, line)
		if e.Location.Column > 0 {
			pad := strings.Repeat(" ", e.Location.Column-1)
			fmt.Fprintf(b, "      %s%s%s\n", gutter, pad, p.paint(ansiRed, "^"))
		}
	}
	b.WriteByte('\n')
}

// wrapText splits text into lines of at most width bytes, breaking on
// spaces. Words longer than width get a line of their own.
func wrapText(text string, width int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) > width:
			lines = append(lines, line)
			line = word
		default:
			line += " " + word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
