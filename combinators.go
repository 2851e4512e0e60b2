package gram

// rule is a parsing function over a cursor. A rule that fails without
// committing must leave the cursor where it found it.
type rule[T any] func(c *cursor) (T, *ParseError)

// alt tries each rule in order and returns the first success. A committed
// failure stops the search. When every rule fails softly, the failure that
// reached furthest into the input is returned.
func alt[T any](rules ...rule[T]) rule[T] {
	return func(c *cursor) (T, *ParseError) {
		var (
			zero     T
			furthest *ParseError
		)

		start := c.pos

		for _, r := range rules {
			v, err := r(c)
			if err == nil {
				return v, nil
			}

			if err.committed {
				return zero, err
			}

			if furthest == nil || err.Span.End.Offset > furthest.Span.End.Offset {
				furthest = err
			}

			c.pos = start
		}

		return zero, furthest
	}
}

// attempt runs r and rewinds the cursor on a soft failure.
func attempt[T any](c *cursor, r rule[T]) (T, *ParseError) {
	start := c.pos

	v, err := r(c)
	if err != nil && !err.committed {
		c.pos = start
	}

	return v, err
}

// many applies r until it fails softly, separated by optional whitespace
// and an optional sep. A sep must be followed by another item, so trailing
// separators are rejected. A committed failure is returned.
func many[T any](c *cursor, sep, what string, r rule[T], each func(T)) *ParseError {
	return list(c, sep, false, what, r, each)
}

// sepBy is many with sep required between items.
func sepBy[T any](c *cursor, sep, what string, r rule[T], each func(T)) *ParseError {
	return list(c, sep, true, what, r, each)
}

func list[T any](c *cursor, sep string, sepRequired bool, what string, r rule[T], each func(T)) *ParseError {
	mark := c.pos
	first := true

	for {
		c.skipSpace()

		sawSep := false

		if !first && c.consume(sep) {
			sawSep = true

			c.skipSpace()
		}

		if !first && !sawSep && sepRequired {
			c.pos = mark

			return nil
		}

		v, err := attempt(c, r)
		if err != nil {
			if err.committed {
				return err
			}

			if !sawSep {
				c.pos = mark

				return nil
			}

			// An unclosed list is left for the caller to report.
			if c.eof() {
				return nil
			}

			return c.cut(KindSyntax, c.pos, "expected %s after %q, found %s", what, sep, c.describe())
		}

		each(v)

		first = false
		mark = c.pos
	}
}
