package diagnostic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/scry/source"
)

func span(idx *source.LineIndex, start, end int) source.Span {
	return idx.Span(start, end)
}

func TestParseSeverity(t *testing.T) {
	assert.Equal(t, Error, ParseSeverity("error"))
	assert.Equal(t, Warning, ParseSeverity("warn"))
	assert.Equal(t, Information, ParseSeverity("info"))
	assert.Equal(t, Hint, ParseSeverity("hint"))
	assert.Equal(t, Warning, ParseSeverity("bogus"))
	assert.Equal(t, "unknown", Severity(42).String())
}

func TestWithSecondaryDoesNotShareLabels(t *testing.T) {
	idx := source.NewLineIndex("abcdef")
	base := New("rule", Error, span(idx, 0, 1), "primary")
	first := base.WithSecondary(span(idx, 1, 2), "one")
	second := first.WithSecondary(span(idx, 2, 3), "two")
	third := first.WithSecondary(span(idx, 3, 4), "three")

	assert.Empty(t, base.Secondary)
	require.Len(t, first.Secondary, 1)
	require.Len(t, second.Secondary, 2)
	require.Len(t, third.Secondary, 2)
	assert.Equal(t, "two", second.Secondary[1].Message)
	assert.Equal(t, "three", third.Secondary[1].Message)
}

func TestSortByPosition(t *testing.T) {
	idx := source.NewLineIndex("0123456789")
	diags := []Diagnostic{
		New("b", Error, span(idx, 5, 6), "late"),
		New("z", Error, span(idx, 1, 3), "wide"),
		New("a", Error, span(idx, 1, 2), "narrow"),
		New("a", Warning, span(idx, 5, 6), "late too"),
	}

	Sort(diags)

	var got []string
	for _, d := range diags {
		got = append(got, d.Primary.Message)
	}
	assert.Equal(t, []string{"narrow", "wide", "late too", "late"}, got)
}

func TestReportJSON(t *testing.T) {
	idx := source.NewLineIndex("let a;\nuse(a);")
	d := New("lint/x", Error, span(idx, 7, 10), "primary").
		WithSecondary(span(idx, 11, 12), "secondary")

	data, err := json.Marshal(d.Report())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "lint/x", decoded["rule"])
	assert.Equal(t, "error", decoded["severity"])

	primary := decoded["primary"].(map[string]any)
	assert.Equal(t, "primary", primary["message"])
	assert.Equal(t, map[string]any{"line": float64(2), "column": float64(1)}, primary["start"])
	assert.Equal(t, map[string]any{"line": float64(2), "column": float64(4)}, primary["end"])

	secondary := decoded["secondary"].([]any)
	require.Len(t, secondary, 1)
}

func TestCounts(t *testing.T) {
	diags := []Diagnostic{{Severity: Error}, {Severity: Warning}, {Severity: Error}}
	assert.Equal(t, 2, Count(diags, Error))
	assert.True(t, HasErrors(diags))
	assert.False(t, HasErrors(diags[1:2]))
}
