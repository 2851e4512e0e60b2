package gram

import (
	"fmt"
	"unicode/utf8"
)

// Location is a point in gram source text.
// Line and Column are 1-based; Column counts runes. Offset is the byte offset.
type Location struct {
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
	Offset int `json:"offset" yaml:"offset"`
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Span represents a range in source text.
type Span struct {
	Start Location `json:"start" yaml:"start"`
	End   Location `json:"end"   yaml:"end"`
}

func (s Span) String() string {
	if s.Start == s.End {
		return s.Start.String()
	}

	return s.Start.String() + "-" + s.End.String()
}

// locationAt computes the Location of a byte offset in input.
func locationAt(input string, offset int) Location {
	if offset > len(input) {
		offset = len(input)
	}

	loc := Location{Line: 1, Column: 1, Offset: offset}

	for i := 0; i < offset; {
		r, size := utf8.DecodeRuneInString(input[i:])
		i += size

		if r == '\n' {
			loc.Line++
			loc.Column = 1
		} else {
			loc.Column++
		}
	}

	return loc
}

// offsetSpan is a span that knows only its byte offsets. Rules build
// these while backtracking; locate fills in lines and columns.
func offsetSpan(start, end int) Span {
	return Span{Start: Location{Offset: start}, End: Location{Offset: end}}
}

// locate resolves the lines and columns of e's span against input.
func (e *ParseError) locate(input string) *ParseError {
	e.Span = Span{
		Start: locationAt(input, e.Span.Start.Offset),
		End:   locationAt(input, e.Span.End.Offset),
	}

	return e
}
