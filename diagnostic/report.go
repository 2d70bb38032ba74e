package diagnostic

import "github.com/dhamidi/scry/source"

// Report is the external form of a Diagnostic: positions are reduced to
// line:column pairs.
type Report struct {
	Rule      string        `json:"rule"`
	Severity  Severity      `json:"severity"`
	Primary   ReportLabel   `json:"primary"`
	Secondary []ReportLabel `json:"secondary,omitempty"`
}

type ReportLabel struct {
	Message string        `json:"message"`
	Start   ReportPosition `json:"start"`
	End     ReportPosition `json:"end"`
}

type ReportPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (d Diagnostic) Report() Report {
	r := Report{
		Rule:     d.Rule,
		Severity: d.Severity,
		Primary:  reportLabel(d.Primary),
	}
	for _, l := range d.Secondary {
		r.Secondary = append(r.Secondary, reportLabel(l))
	}
	return r
}

func reportLabel(l Label) ReportLabel {
	return ReportLabel{
		Message: l.Message,
		Start:   reportPosition(l.Span.Start),
		End:     reportPosition(l.Span.End),
	}
}

func reportPosition(p source.Position) ReportPosition {
	return ReportPosition{Line: p.Line, Column: p.Column}
}
