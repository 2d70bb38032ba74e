// Package format encodes syntax trees and diagnostics for output.
package format

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/dhamidi/scry/diagnostic"
)

var ErrUnknownFormat = errors.New("unknown output format")

// DiagnosticEncoder writes the diagnostics of one file per call.
type DiagnosticEncoder interface {
	Encode(path string, diags []diagnostic.Diagnostic) error
}

var diagnosticEncoders = map[string]func(io.Writer) DiagnosticEncoder{
	"json": func(w io.Writer) DiagnosticEncoder { return NewJSONEncoder(w) },
	"line": func(w io.Writer) DiagnosticEncoder { return NewLineEncoder(w) },
}

// NewDiagnosticEncoder returns the encoder registered under name.
func NewDiagnosticEncoder(name string, w io.Writer) (DiagnosticEncoder, error) {
	newEncoder, ok := diagnosticEncoders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return newEncoder(w), nil
}

// Names returns the registered diagnostic formats.
func Names() []string {
	names := make([]string, 0, len(diagnosticEncoders))
	for name := range diagnosticEncoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
