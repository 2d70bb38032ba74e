// Package source describes locations in a source text: byte offsets,
// 1-based line/column positions and half-open spans between them.
package source

import (
	"fmt"
	"sort"
)

// Position is a location in a source text. Offset is a 0-based byte offset;
// Line and Column are 1-based, with Column counted in bytes.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is the half-open range [Start, End) of a source text.
type Span struct {
	Start Position
	End   Position
}

func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

func (s Span) IsEmpty() bool {
	return s.End.Offset <= s.Start.Offset
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return other.Start.Offset >= s.Start.Offset && other.End.Offset <= s.End.Offset
}

func (s Span) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// LineIndex maps byte offsets of one text to line/column positions.
type LineIndex struct {
	lineStarts []int
	size       int
}

func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{lineStarts: starts, size: len(text)}
}

// Position returns the position of offset. Offsets outside the text clamp to
// its bounds.
func (x *LineIndex) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > x.size {
		offset = x.size
	}
	line := sort.Search(len(x.lineStarts), func(i int) bool {
		return x.lineStarts[i] > offset
	}) - 1
	return Position{
		Offset: offset,
		Line:   line + 1,
		Column: offset - x.lineStarts[line] + 1,
	}
}

func (x *LineIndex) Span(start, end int) Span {
	return Span{Start: x.Position(start), End: x.Position(end)}
}

// LineCount returns the number of lines, counting a trailing empty line.
func (x *LineIndex) LineCount() int {
	return len(x.lineStarts)
}
