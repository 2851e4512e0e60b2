package gram

// subject parses identifier? (":" label)* record?. Every part is optional.
func subject(c *cursor) (Subject, *ParseError) {
	var s Subject

	if startsIdentifier(c) {
		id, err := identifier(c)
		if err != nil {
			return s, err
		}

		if c.build {
			s.Identity = id
		}
	}

	for {
		mark := c.pos

		c.skipSpace()

		if c.peek() != ':' {
			c.pos = mark

			break
		}

		colon := c.pos
		c.advance()

		label, err := identifier(c)
		if err != nil {
			if err.committed {
				return s, err
			}

			return s, c.cut(KindSyntax, colon, "expected label after ':', found %s", c.describe())
		}

		if c.build {
			s.AddLabel(label)
		}
	}

	mark := c.pos

	c.skipSpace()

	if c.peek() != '{' {
		c.pos = mark

		return s, nil
	}

	props, err := record(c)
	if err != nil {
		return s, err
	}

	s.Properties = props

	return s, nil
}

func startsIdentifier(c *cursor) bool {
	r := c.peek()

	return isIdentStart(r) || (isQuote(r) && !c.match("```"))
}

// node parses "(" subject ")".
func node(c *cursor) (Pattern[Subject], *ParseError) {
	start := c.pos
	if !c.consume("(") {
		return Pattern[Subject]{}, c.fail(KindSyntax, "expected '('")
	}

	c.skipSpace()

	s, err := subject(c)
	if err != nil {
		return Pattern[Subject]{}, err
	}

	c.skipSpace()

	if c.eof() {
		return Pattern[Subject]{}, c.unclosed(start, "(")
	}

	if !c.consume(")") {
		return Pattern[Subject]{}, c.cut(KindSyntax, c.pos, "expected ')' to close node, found %s", c.describe())
	}

	return Point(s), nil
}

// path parses a node followed by zero or more arrow/node segments and
// folds them left to right. Each segment becomes a two-element pattern
// whose value is the arrow's subject; left arrows swap the elements.
//
// A swapped pair of nodes no longer says which of them continues the
// chain, so a path whose first arrow points left is folded from its far
// end instead, with every arrow reversed. A path that points left at its
// start and right at its end has no such reading and is rejected.
func path(c *cursor) (Pattern[Subject], *ParseError) {
	start := c.pos

	first, err := node(c)
	if err != nil {
		return first, err
	}

	var (
		nodes  = []Pattern[Subject]{first}
		arrows []arrow
	)

	connector := alt(labeledArrow, plainArrow)

	for {
		mark := c.pos

		c.skipSpace()

		a, err := connector(c)
		if err != nil {
			if err.committed {
				return first, err
			}

			c.pos = mark

			break
		}

		c.skipSpace()

		if c.peek() != '(' {
			return first, c.cut(KindSyntax, c.pos, "expected node after %s, found %s", a.kind, c.describe())
		}

		next, err := node(c)
		if err != nil {
			return first, err
		}

		nodes = append(nodes, next)
		arrows = append(arrows, a)
	}

	if n := len(arrows); n > 1 && arrows[0].kind.IsLeft() && arrows[n-1].kind.IsRight() {
		return first, c.cut(KindSyntax, start,
			"path starts with %s and ends with %s, so it cannot be read in a single direction; split it into separate relationships",
			arrows[0].kind, arrows[n-1].kind)
	}

	if !c.build {
		return first, nil
	}

	return foldPath(nodes, arrows), nil
}

// foldPath nests the segments of a path so that the pattern built so far
// is always the left operand of the next relationship.
func foldPath(nodes []Pattern[Subject], arrows []arrow) Pattern[Subject] {
	if len(arrows) > 1 && arrows[0].kind.IsLeft() {
		current := nodes[len(nodes)-1]

		for i := len(arrows) - 1; i >= 0; i-- {
			a := arrows[i]
			a.kind = a.kind.reversed()
			current = relate(current, a, nodes[i])
		}

		return current
	}

	current := nodes[0]
	for i, a := range arrows {
		current = relate(current, a, nodes[i+1])
	}

	return current
}

func relate(left Pattern[Subject], a arrow, right Pattern[Subject]) Pattern[Subject] {
	if a.kind.IsLeft() {
		left, right = right, left
	}

	return New(a.subject, left, right)
}

// subjectPattern parses "[" subject? ("|" elements)? "]".
func subjectPattern(c *cursor) (Pattern[Subject], *ParseError) {
	start := c.pos
	if !c.consume("[") {
		return Pattern[Subject]{}, c.fail(KindSyntax, "expected '['")
	}

	c.skipSpace()

	s, err := subject(c)
	if err != nil {
		return Pattern[Subject]{}, err
	}

	c.skipSpace()

	var elements []Pattern[Subject]

	if c.consume("|") {
		err := many(c, ",", "pattern", element, func(p Pattern[Subject]) {
			if c.build {
				elements = append(elements, p)
			}
		})
		if err != nil {
			return Pattern[Subject]{}, err
		}

		c.skipSpace()
	}

	if c.eof() {
		return Pattern[Subject]{}, c.unclosed(start, "[")
	}

	if !c.consume("]") {
		return Pattern[Subject]{}, c.cut(KindSyntax, c.pos, "expected ']' to close subject pattern, found %s", c.describe())
	}

	return New(s, elements...), nil
}

// element dispatches on the first character to one of the pattern forms
// allowed inside a subject pattern.
func element(c *cursor) (Pattern[Subject], *ParseError) {
	switch r := c.peek(); {
	case r == '(':
		return path(c)
	case r == '[':
		return subjectPattern(c)
	case r == '@':
		return annotated(c)
	case startsIdentifier(c):
		return reference(c)
	}

	return Pattern[Subject]{}, c.fail(KindSyntax, "expected pattern, found %s", c.describe())
}

// reference parses a bare identifier standing for the subject it names.
func reference(c *cursor) (Pattern[Subject], *ParseError) {
	id, err := identifier(c)
	if err != nil {
		return Pattern[Subject]{}, err
	}

	return Point(Subject{Identity: id}), nil
}

// annotated parses one or more @key(value) prefixes and the pattern they
// annotate. The annotations become the properties of an anonymous subject
// whose single element is the annotated pattern. A key without a value
// is recorded as true.
func annotated(c *cursor) (Pattern[Subject], *ParseError) {
	var s Subject

	for c.peek() == '@' {
		at := c.pos
		c.advance()

		key, err := unquotedIdentifier(c)
		if err != nil {
			return Pattern[Subject]{}, c.cut(KindSyntax, at, "expected annotation key after '@', found %s", c.describe())
		}

		var v Value = Boolean(true)

		if c.peek() == '(' {
			open := c.pos
			c.advance()
			c.skipSpace()

			if v, err = value(c); err != nil {
				err.committed = true

				return Pattern[Subject]{}, err
			}

			c.skipSpace()

			if c.eof() {
				return Pattern[Subject]{}, c.unclosed(open, "(")
			}

			if !c.consume(")") {
				return Pattern[Subject]{}, c.cut(KindSyntax, c.pos, "expected ')' to close annotation @%s, found %s", key, c.describe())
			}
		}

		if c.build {
			s.Properties = s.Properties.Set(key, v)
		}

		c.skipSpace()
	}

	inner, err := element(c)
	if err != nil {
		if err.committed {
			return Pattern[Subject]{}, err
		}

		return Pattern[Subject]{}, c.cut(KindSyntax, c.pos, "expected pattern after annotation, found %s", c.describe())
	}

	return New(s, inner), nil
}

// document parses every top-level pattern in the input.
func document(c *cursor) ([]Pattern[Subject], *ParseError) {
	patterns := []Pattern[Subject]{}

	for {
		c.skipSpace()

		if c.eof() {
			return patterns, nil
		}

		p, err := topLevel(c)
		if err != nil {
			return nil, err
		}

		if c.build {
			patterns = append(patterns, p)
		}

		c.skipSpace()
		c.consume(",")
	}
}

// topLevel parses one top-level pattern. A record standing alone becomes
// an anonymous pattern holding only properties.
func topLevel(c *cursor) (Pattern[Subject], *ParseError) {
	if c.peek() == '{' {
		props, err := record(c)
		if err != nil {
			return Pattern[Subject]{}, err
		}

		return Point(Subject{Properties: props}), nil
	}

	p, err := element(c)
	if err != nil && !err.committed {
		return p, c.cut(KindUnexpectedInput, c.pos, "unexpected %s", c.describe())
	}

	return p, err
}
