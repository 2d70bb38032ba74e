// Package diagnostic holds the structured, positioned findings produced by
// the parser and by lint rules. Diagnostics are plain values: rendering them
// (code frames, carets, colors) is left to the caller.
package diagnostic

import (
	"sort"

	"github.com/dhamidi/scry/source"
)

// RuleParse identifies diagnostics emitted by the parser's error recovery.
const RuleParse = "parse"

// Severity is the severity level of a diagnostic.
type Severity int

const (
	Hint Severity = iota
	Information
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Hint:
		return "hint"
	case Information:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity parses a severity name. Unknown names default to Warning.
func ParseSeverity(s string) Severity {
	switch s {
	case "error", "err", "fatal":
		return Error
	case "warning", "warn":
		return Warning
	case "info", "information", "note":
		return Information
	case "hint":
		return Hint
	default:
		return Warning
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	*s = ParseSeverity(string(text))
	return nil
}

// Label attaches a message to a span.
type Label struct {
	Span    source.Span
	Message string
}

// Diagnostic is a primary label plus ordered secondary labels, tagged with
// the rule that produced it.
type Diagnostic struct {
	Rule      string
	Severity  Severity
	Primary   Label
	Secondary []Label
}

func New(rule string, severity Severity, span source.Span, message string) Diagnostic {
	return Diagnostic{
		Rule:     rule,
		Severity: severity,
		Primary:  Label{Span: span, Message: message},
	}
}

// WithSecondary returns a copy of d with one more secondary label. The
// receiver's label slice is never shared with the result.
func (d Diagnostic) WithSecondary(span source.Span, message string) Diagnostic {
	labels := make([]Label, len(d.Secondary), len(d.Secondary)+1)
	copy(labels, d.Secondary)
	d.Secondary = append(labels, Label{Span: span, Message: message})
	return d
}

// Sort orders diagnostics by primary position so that output is stable
// regardless of the order rules ran in.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Primary.Span.Start.Offset != b.Primary.Span.Start.Offset {
			return a.Primary.Span.Start.Offset < b.Primary.Span.Start.Offset
		}
		if a.Primary.Span.End.Offset != b.Primary.Span.End.Offset {
			return a.Primary.Span.End.Offset < b.Primary.Span.End.Offset
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Primary.Message < b.Primary.Message
	})
}

// Count returns how many diagnostics have exactly the given severity.
func Count(diags []Diagnostic, severity Severity) int {
	n := 0
	for _, d := range diags {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

func HasErrors(diags []Diagnostic) bool {
	return Count(diags, Error) > 0
}
