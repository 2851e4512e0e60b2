package gram

// ArrowType is the kind of connector between two nodes in a path.
// It only exists while parsing: the resulting pattern encodes direction
// through element order.
type ArrowType int

// Arrow kinds. Each of the three styles (-, =, ~) comes in right, left,
// bidirectional and undirected forms.
const (
	ArrowRight ArrowType = iota
	ArrowLeft
	ArrowBidirectional
	ArrowUndirected
	DoubleRight
	DoubleLeft
	DoubleBidirectional
	DoubleUndirected
	SquiggleRight
	SquiggleLeft
	SquiggleBidirectional
	SquiggleUndirected
)

var arrowTokens = [...]string{
	ArrowRight:            "-->",
	ArrowLeft:             "<--",
	ArrowBidirectional:    "<-->",
	ArrowUndirected:       "--",
	DoubleRight:           "==>",
	DoubleLeft:            "<==",
	DoubleBidirectional:   "<==>",
	DoubleUndirected:      "==",
	SquiggleRight:         "~~>",
	SquiggleLeft:          "<~~",
	SquiggleBidirectional: "<~~>",
	SquiggleUndirected:    "~~",
}

func (a ArrowType) String() string {
	if a < 0 || int(a) >= len(arrowTokens) {
		return "ArrowType(?)"
	}

	return arrowTokens[a]
}

func (a ArrowType) direction() int { return int(a) % 4 }

// IsRight reports whether the arrow points from left to right only.
func (a ArrowType) IsRight() bool { return a.direction() == 0 }

// IsLeft reports whether the arrow points from right to left only.
func (a ArrowType) IsLeft() bool { return a.direction() == 1 }

// IsBidirectional reports whether the arrow points both ways.
func (a ArrowType) IsBidirectional() bool { return a.direction() == 2 }

// IsUndirected reports whether the arrow has no arrowheads.
func (a ArrowType) IsUndirected() bool { return a.direction() == 3 }

// reversed returns the same connector read from its other end.
func (a ArrowType) reversed() ArrowType {
	switch {
	case a.IsRight():
		return a + 1
	case a.IsLeft():
		return a - 1
	default:
		return a
	}
}

func arrowTypeOf(style rune, left, right bool) ArrowType {
	base := ArrowRight

	switch style {
	case '=':
		base = DoubleRight
	case '~':
		base = SquiggleRight
	}

	switch {
	case left && right:
		return base + ArrowBidirectional
	case left:
		return base + ArrowLeft
	case right:
		return base
	default:
		return base + ArrowUndirected
	}
}

// arrow is a recognized connector and its optional inline subject.
type arrow struct {
	kind    ArrowType
	subject Subject
}

// plainArrows lists unlabelled connector spellings, longest first so that
// a short spelling never shadows a longer one sharing its prefix.
var plainArrows = []struct {
	token string
	kind  ArrowType
}{
	{"<-->", ArrowBidirectional},
	{"<==>", DoubleBidirectional},
	{"<~~>", SquiggleBidirectional},
	{"-->", ArrowRight},
	{"<--", ArrowLeft},
	{"==>", DoubleRight},
	{"<==", DoubleLeft},
	{"~~>", SquiggleRight},
	{"<~~", SquiggleLeft},
	{"--", ArrowUndirected},
	{"==", DoubleUndirected},
	{"~~", SquiggleUndirected},
}

func plainArrow(c *cursor) (arrow, *ParseError) {
	for _, a := range plainArrows {
		if c.consume(a.token) {
			return arrow{kind: a.kind}, nil
		}
	}

	return arrow{}, c.fail(KindSyntax, "expected arrow, found %s", c.describe())
}

func isArrowStyle(r rune) bool {
	return r == '-' || r == '=' || r == '~'
}

// labeledArrow parses a connector carrying a subject, e.g. -[:KNOWS]->.
// Both halves must use the same style character.
func labeledArrow(c *cursor) (arrow, *ParseError) {
	start := c.pos
	left := c.consume("<")
	style := c.peek()

	if !isArrowStyle(style) {
		c.pos = start

		return arrow{}, c.fail(KindSyntax, "expected arrow")
	}

	for n := 0; n < 2 && c.peek() == style; n++ {
		c.advance()
	}

	if c.peek() != '[' {
		c.pos = start

		return arrow{}, c.fail(KindSyntax, "expected arrow")
	}

	open := c.pos
	c.advance()
	c.skipSpace()

	s, err := subject(c)
	if err != nil {
		return arrow{}, err
	}

	c.skipSpace()

	if c.eof() {
		return arrow{}, c.unclosed(open, "[")
	}

	if !c.consume("]") {
		return arrow{}, c.cut(KindSyntax, c.pos, "expected ']' to close relationship label, found %s", c.describe())
	}

	closing := c.peek()
	if !isArrowStyle(closing) {
		return arrow{}, c.cut(KindSyntax, c.pos, "expected arrow after relationship label, found %s", c.describe())
	}

	if closing != style {
		return arrow{}, c.cut(KindSyntax, start, "arrow opened with %q but closed with %q", style, closing)
	}

	for n := 0; n < 2 && c.peek() == style; n++ {
		c.advance()
	}

	right := c.consume(">")

	return arrow{kind: arrowTypeOf(style, left, right), subject: s}, nil
}
