package gram

import (
	"fmt"
)

// Parse parses every top-level pattern in input. Empty input, or input
// holding only whitespace and comments, yields no patterns and no error.
//
// A path is folded from the left into nested two-element patterns whose
// value is the arrow's subject, so (a)-->(b)-->(c) yields an anonymous
// pattern with elements [(a)-->(b), (c)] rather than one rooted at a. A
// left arrow swaps its endpoints: (a)<--(b) has elements [(b), (a)]. A
// path whose first arrow points left is folded from its last node, so
// (a)<--(b)<--(c) reads as (c)-->(b)-->(a).
func Parse(input string) (patterns []Pattern[Subject], err error) {
	defer recoverInternal(input, &err)

	c := newCursor(input, true)

	patterns, perr := document(c)
	if perr != nil {
		return nil, perr.locate(input)
	}

	return patterns, nil
}

// ParseOne parses input holding at most one pattern. It returns nil when
// the input holds none and ErrMultiplePatterns when it holds several.
func ParseOne(input string) (*Pattern[Subject], error) {
	patterns, err := Parse(input)
	if err != nil {
		return nil, err
	}

	switch len(patterns) {
	case 0:
		return nil, nil
	case 1:
		return &patterns[0], nil
	default:
		return nil, fmt.Errorf("%w, found %d", ErrMultiplePatterns, len(patterns))
	}
}

// Validate reports whether input is well-formed gram notation. It runs the
// same grammar as Parse without building patterns, so both always agree on
// which inputs fail and where.
func Validate(input string) (err error) {
	defer recoverInternal(input, &err)

	c := newCursor(input, false)

	if _, perr := document(c); perr != nil {
		return perr.locate(input)
	}

	return nil
}

// ParseValue parses a single value literal such as 5..10, 0xCAFE or "text".
func ParseValue(input string) (v Value, err error) {
	defer recoverInternal(input, &err)

	c := newCursor(input, true)
	c.skipSpace()

	v, perr := value(c)
	if perr != nil {
		return nil, perr.locate(input)
	}

	c.skipSpace()

	if !c.eof() {
		return nil, c.cut(KindUnexpectedInput, c.pos, "unexpected %s after value", c.describe()).locate(input)
	}

	return v, nil
}

// recoverInternal turns a panic inside the parser into an Internal error.
func recoverInternal(input string, err *error) {
	if r := recover(); r != nil {
		perr := &ParseError{
			Kind:    KindInternal,
			Span:    offsetSpan(0, len(input)),
			Message: fmt.Sprintf("parser invariant violated: %v", r),
		}
		*err = perr.locate(input)
	}
}
