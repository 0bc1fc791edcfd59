package router

import (
	"fmt"
	"strings"
)

// SegmentKind classifies a pattern segment.
type SegmentKind uint8

// Kinds are declared in precedence order: lower values are tried first.
const (
	SegmentLiteral SegmentKind = iota
	SegmentPathless
	SegmentParam
	SegmentSplat
)

// String returns the kind name.
func (k SegmentKind) String() string {
	switch k {
	case SegmentLiteral:
		return "literal"
	case SegmentPathless:
		return "pathless"
	case SegmentParam:
		return "param"
	case SegmentSplat:
		return "splat"
	default:
		return "unknown"
	}
}

// SplatParam is the parameter name a bare "$" segment captures into.
const SplatParam = "_splat"

// Segment is one element of a Pattern.
type Segment struct {
	Kind SegmentKind

	// Value is the literal text, the pathless group id (without "_"), or the
	// parameter name (without "$").
	Value string
}

// String returns the segment as written in a pattern.
func (s Segment) String() string {
	switch s.Kind {
	case SegmentPathless:
		return "_" + s.Value
	case SegmentParam:
		return "$" + s.Value
	case SegmentSplat:
		return "$"
	default:
		return s.Value
	}
}

// consumes reports whether the segment matches a path segment.
func (s Segment) consumes() bool {
	return s.Kind != SegmentPathless
}

// Pattern is a parsed route pattern.
type Pattern struct {
	segments []Segment
}

// ParsePattern parses a pattern such as "/jobs/$jobId/edit".
// Leading, trailing and repeated slashes are ignored, so "" and "/" both
// yield the empty pattern.
func ParsePattern(s string) (Pattern, error) {
	var p Pattern
	seen := make(map[string]bool)

	parts := strings.Split(s, "/")
	for _, part := range parts {
		if part == "" {
			continue
		}
		if len(p.segments) > 0 && p.segments[len(p.segments)-1].Kind == SegmentSplat {
			return Pattern{}, &PatternError{Pattern: s, Reason: "splat must be the last segment"}
		}

		seg, err := parseSegment(part)
		if err != nil {
			return Pattern{}, &PatternError{Pattern: s, Reason: err.Error()}
		}
		if name, ok := seg.paramName(); ok {
			if seen[name] {
				return Pattern{}, &PatternError{Pattern: s, Reason: fmt.Sprintf("parameter %q declared twice", name)}
			}
			seen[name] = true
		}
		p.segments = append(p.segments, seg)
	}
	return p, nil
}

func parseSegment(part string) (Segment, error) {
	switch {
	case part == "$":
		return Segment{Kind: SegmentSplat, Value: SplatParam}, nil
	case strings.HasPrefix(part, "$"):
		name := part[1:]
		if !validParamName(name) {
			return Segment{}, fmt.Errorf("invalid parameter name %q", name)
		}
		return Segment{Kind: SegmentParam, Value: name}, nil
	case len(part) > 1 && part[0] == '_':
		return Segment{Kind: SegmentPathless, Value: part[1:]}, nil
	default:
		return Segment{Kind: SegmentLiteral, Value: part}, nil
	}
}

func validParamName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && '0' <= c && c <= '9':
		default:
			return false
		}
	}
	return true
}

func (s Segment) paramName() (string, bool) {
	switch s.Kind {
	case SegmentParam, SegmentSplat:
		return s.Value, true
	}
	return "", false
}

// MustParsePattern is like ParsePattern but panics on error.
func MustParsePattern(s string) Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Segments returns a copy of the pattern's segments.
func (p Pattern) Segments() []Segment {
	return append([]Segment(nil), p.segments...)
}

// Len returns the number of segments.
func (p Pattern) Len() int { return len(p.segments) }

// IsEmpty reports whether the pattern has no segments.
func (p Pattern) IsEmpty() bool { return len(p.segments) == 0 }

// String returns the canonical form, e.g. "jobs/$jobId".
func (p Pattern) String() string {
	parts := make([]string, len(p.segments))
	for i, s := range p.segments {
		parts[i] = s.String()
	}
	return strings.Join(parts, "/")
}

// Params returns the parameter names in declaration order.
func (p Pattern) Params() []string {
	var names []string
	for _, s := range p.segments {
		if name, ok := s.paramName(); ok {
			names = append(names, name)
		}
	}
	return names
}

// IsPathless reports whether the pattern ends in a pathless group. Such a
// node only ever wraps its descendants and never terminates a match.
func (p Pattern) IsPathless() bool {
	return len(p.segments) > 0 && p.segments[len(p.segments)-1].Kind == SegmentPathless
}

// consuming returns the segments that match path segments.
func (p Pattern) consuming() []Segment {
	out := make([]Segment, 0, len(p.segments))
	for _, s := range p.segments {
		if s.consumes() {
			out = append(out, s)
		}
	}
	return out
}

// shape identifies patterns that would match the same paths. Parameter
// names do not contribute.
func (p Pattern) shape() string {
	var b strings.Builder
	for _, s := range p.segments {
		b.WriteByte('/')
		switch s.Kind {
		case SegmentLiteral:
			b.WriteString("l:" + s.Value)
		case SegmentPathless:
			b.WriteString("g:" + s.Value)
		case SegmentParam:
			b.WriteString("p")
		case SegmentSplat:
			b.WriteString("s")
		}
	}
	return b.String()
}

// before reports whether p should be tried before q among siblings.
// Segments are compared by kind; when one pattern is a prefix of the other
// the longer, more specific one goes first.
func (p Pattern) before(q Pattern) bool {
	n := min(len(p.segments), len(q.segments))
	for i := 0; i < n; i++ {
		a, b := p.segments[i].Kind, q.segments[i].Kind
		if a != b {
			return a < b
		}
	}
	return len(p.segments) > len(q.segments)
}
