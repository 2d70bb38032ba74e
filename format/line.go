package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/scry/diagnostic"
)

// LineEncoder writes one line per diagnostic in the compiler style
// `path:line:column: severity rule: message`, followed by one indented line
// per secondary label.
type LineEncoder struct {
	w io.Writer
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(path string, diags []diagnostic.Diagnostic) error {
	text, err := e.MarshalText(path, diags)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText(path string, diags []diagnostic.Diagnostic) ([]byte, error) {
	var sb strings.Builder
	for _, d := range diags {
		start := d.Primary.Span.Start
		fmt.Fprintf(&sb, "%s:%d:%d: %s %s: %s\n",
			path, start.Line, start.Column,
			d.Severity, d.Rule, d.Primary.Message,
		)
		for _, l := range d.Secondary {
			fmt.Fprintf(&sb, "\t%s:%d:%d: %s\n",
				path, l.Span.Start.Line, l.Span.Start.Column, l.Message,
			)
		}
	}
	return []byte(sb.String()), nil
}
