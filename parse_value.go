package gram

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// value parses any value literal. Variants are tried in an order that
// keeps them unambiguous: tagged strings before symbols, ranges before
// measurements, measurements before plain numbers.
func value(c *cursor) (Value, *ParseError) {
	v, err := alt(
		taggedValue,
		stringValue,
		mapValue,
		rangeValue,
		measurementValue,
		numberValue,
		booleanValue,
		arrayValue,
		symbolValue,
	)(c)
	if err != nil && !err.committed {
		return nil, c.fail(KindInvalidValue, "expected a value, found %s", c.describe())
	}

	return v, err
}

// scalarValue parses the values allowed inside arrays.
func scalarValue(c *cursor) (Value, *ParseError) {
	if r := c.peek(); r == '[' || r == '{' {
		return nil, c.cut(KindInvalidValue, c.pos, "arrays may only contain scalar values")
	}

	v, err := alt(
		taggedValue,
		stringValue,
		rangeValue,
		measurementValue,
		numberValue,
		booleanValue,
		symbolValue,
	)(c)
	if err != nil && !err.committed {
		return nil, c.fail(KindInvalidValue, "expected a scalar value, found %s", c.describe())
	}

	return v, err
}

// identifier parses a quoted or unquoted identifier.
func identifier(c *cursor) (string, *ParseError) {
	if isQuote(c.peek()) && !c.match("```") {
		return quoted(c)
	}

	return unquotedIdentifier(c)
}

func unquotedIdentifier(c *cursor) (string, *ParseError) {
	start := c.pos
	if !isIdentStart(c.peek()) {
		return "", c.fail(KindSyntax, "expected identifier, found %s", c.describe())
	}

	c.advance()

	for !c.eof() && isIdentContinue(c.peek()) {
		c.advance()
	}

	return c.input[start:c.pos], nil
}

// quoted parses a single-, double- or backtick-quoted string and returns
// its unescaped content.
func quoted(c *cursor) (string, *ParseError) {
	start := c.pos
	q := c.peek()

	if !isQuote(q) {
		return "", c.fail(KindSyntax, "expected string, found %s", c.describe())
	}

	c.advance()
	contentStart := c.pos

	for !c.eof() {
		r := c.peek()

		if r == '\\' {
			c.advance()
			c.advance()

			continue
		}

		if r == q {
			raw := c.input[contentStart:c.pos]
			c.advance()

			if !c.build {
				return raw, nil
			}

			return unescape(raw), nil
		}

		c.advance()
	}

	return "", c.unclosed(start, string(q))
}

// fenced parses a triple-backtick string with an optional tag on the
// opening line. The content is taken verbatim.
func fenced(c *cursor) (tag, content string, err *ParseError) {
	start := c.pos
	if !c.consume("```") {
		return "", "", c.fail(KindSyntax, "expected fenced string")
	}

	afterFence := c.pos

	for isAlphanumeric(c.peek()) {
		c.advance()
	}

	switch {
	case c.consume("\r\n"), c.consume("\n"):
		tag = strings.TrimRight(c.input[afterFence:c.pos], "\r\n")
	default:
		c.pos = afterFence
	}

	end := strings.Index(c.input[c.pos:], "```")
	if end < 0 {
		c.pos = len(c.input)

		return "", "", c.unclosed(start, "```")
	}

	content = c.input[c.pos : c.pos+end]
	c.pos += end + len("```")

	return tag, content, nil
}

func taggedValue(c *cursor) (Value, *ParseError) {
	tag, err := unquotedIdentifier(c)
	if err != nil {
		return nil, err
	}

	if c.peek() != '`' {
		return nil, c.fail(KindSyntax, "expected tagged string")
	}

	if c.match("```") {
		_, content, err := fenced(c)
		if err != nil {
			return nil, err
		}

		return TaggedString{Tag: tag, Content: content}, nil
	}

	content, err := quoted(c)
	if err != nil {
		return nil, err
	}

	return TaggedString{Tag: tag, Content: content}, nil
}

func stringValue(c *cursor) (Value, *ParseError) {
	if c.match("```") {
		tag, content, err := fenced(c)
		if err != nil {
			return nil, err
		}

		if tag != "" {
			return TaggedString{Tag: tag, Content: content}, nil
		}

		return Str(content), nil
	}

	s, err := quoted(c)
	if err != nil {
		return nil, err
	}

	return Str(s), nil
}

func mapValue(c *cursor) (Value, *ParseError) {
	if c.peek() != '{' {
		return nil, c.fail(KindSyntax, "expected map")
	}

	props, err := record(c)
	if err != nil {
		return nil, err
	}

	if props == nil {
		return Map{}, nil
	}

	return Map(props), nil
}

func rangeValue(c *cursor) (Value, *ParseError) {
	start := c.pos
	lower := scanInteger(c)

	if !c.match("..") {
		c.pos = start

		return nil, c.fail(KindSyntax, "expected range")
	}

	r := Range{Inclusive: c.consume("...")}
	if !r.Inclusive {
		c.consume("..")
	}

	upper := scanInteger(c)

	var err *ParseError

	if r.Lower, err = parseBound(c, start, lower); err != nil {
		return nil, err
	}

	if r.Upper, err = parseBound(c, start, upper); err != nil {
		return nil, err
	}

	return r, nil
}

func parseBound(c *cursor, start int, text string) (*int64, *ParseError) {
	if text == "" {
		return nil, nil
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, c.cut(KindInvalidValue, start, "range bound %s does not fit in 64 bits", text)
	}

	return &n, nil
}

// scanInteger consumes an optionally negative run of decimal digits and
// returns its text, or consumes nothing and returns "".
func scanInteger(c *cursor) string {
	start := c.pos
	c.consume("-")

	if !isDigit(c.peek()) {
		c.pos = start

		return ""
	}

	for isDigit(c.peek()) {
		c.advance()
	}

	return c.input[start:c.pos]
}

// scanNumber consumes an integer or decimal literal and returns its text.
func scanNumber(c *cursor) (text string, decimal bool) {
	start := c.pos
	if scanInteger(c) == "" {
		return "", false
	}

	if c.peek() == '.' && isDigit(c.peekAt(1)) {
		c.advance()

		for isDigit(c.peek()) {
			c.advance()
		}

		decimal = true
	}

	return c.input[start:c.pos], decimal
}

func isHexPrefix(c *cursor) bool {
	off := 0
	if c.peek() == '-' {
		off = 1
	}

	return c.peekAt(off) == '0' && (c.peekAt(off+1) == 'x' || c.peekAt(off+1) == 'X')
}

func measurementValue(c *cursor) (Value, *ParseError) {
	start := c.pos
	if isHexPrefix(c) {
		return nil, c.fail(KindSyntax, "expected measurement")
	}

	text, _ := scanNumber(c)
	if text == "" {
		return nil, c.fail(KindSyntax, "expected measurement")
	}

	unitStart := c.pos
	for unicode.IsLetter(c.peek()) {
		c.advance()
	}

	if c.pos == unitStart {
		c.pos = start

		return nil, c.fail(KindSyntax, "expected measurement")
	}

	magnitude, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, c.cut(KindInvalidValue, start, "measurement magnitude %s is out of range", text)
	}

	return Measurement{Magnitude: magnitude, Unit: c.input[unitStart:c.pos]}, nil
}

func numberValue(c *cursor) (Value, *ParseError) {
	start := c.pos

	if isHexPrefix(c) {
		return hexValue(c)
	}

	text, decimal := scanNumber(c)
	if text == "" {
		return nil, c.fail(KindSyntax, "expected number")
	}

	if decimal {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, c.cut(KindInvalidValue, start, "decimal literal %s is out of range", text)
		}

		return Decimal(f), nil
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, c.cut(KindInvalidValue, start, "integer literal %s does not fit in 64 bits", text)
	}

	return Integer(n), nil
}

func hexValue(c *cursor) (Value, *ParseError) {
	start := c.pos
	sign := ""

	if c.consume("-") {
		sign = "-"
	}

	c.pos += len("0x")
	digitsStart := c.pos

	for isHexDigit(c.peek()) {
		c.advance()
	}

	digits := c.input[digitsStart:c.pos]

	if digits == "" || isIdentStart(c.peek()) {
		for isIdentContinue(c.peek()) {
			c.advance()
		}

		return nil, c.cut(KindInvalidValue, start, "malformed hexadecimal literal %s", c.input[start:c.pos])
	}

	n, err := strconv.ParseInt(sign+digits, 16, 64)
	if err != nil {
		return nil, c.cut(KindInvalidValue, start, "integer literal %s does not fit in 64 bits", c.input[start:c.pos])
	}

	return Integer(n), nil
}

func booleanValue(c *cursor) (Value, *ParseError) {
	start := c.pos

	for _, kw := range []string{"true", "false"} {
		if c.consume(kw) {
			if !isIdentContinue(c.peek()) {
				return Boolean(kw == "true"), nil
			}

			c.pos = start
		}
	}

	return nil, c.fail(KindSyntax, "expected boolean")
}

func arrayValue(c *cursor) (Value, *ParseError) {
	start := c.pos
	if !c.consume("[") {
		return nil, c.fail(KindSyntax, "expected array")
	}

	items := Array{}

	err := many(c, ",", "value", scalarValue, func(v Value) {
		if c.build {
			items = append(items, v)
		}
	})
	if err != nil {
		return nil, err
	}

	c.skipSpace()

	if c.eof() {
		return nil, c.unclosed(start, "[")
	}

	if !c.consume("]") {
		return nil, c.cut(KindSyntax, c.pos, "expected ',' or ']' in array, found %s", c.describe())
	}

	return items, nil
}

func symbolValue(c *cursor) (Value, *ParseError) {
	s, err := unquotedIdentifier(c)
	if err != nil {
		return nil, err
	}

	return Symbol(s), nil
}

// record parses a brace-delimited property list.
func record(c *cursor) (Properties, *ParseError) {
	start := c.pos
	if !c.consume("{") {
		return nil, c.fail(KindSyntax, "expected '{'")
	}

	var props Properties

	err := sepBy(c, ",", "property", property, func(p Property) {
		if c.build {
			props = props.Set(p.Key, p.Value)
		}
	})
	if err != nil {
		return nil, err
	}

	c.skipSpace()

	if c.eof() {
		return nil, c.unclosed(start, "{")
	}

	if !c.consume("}") {
		return nil, c.cut(KindSyntax, c.pos, "expected ',' or '}' in record, found %s", c.describe())
	}

	return props, nil
}

// property parses key ":" value; "::" is accepted as the separator too.
func property(c *cursor) (Property, *ParseError) {
	key, err := identifier(c)
	if err != nil {
		return Property{}, err
	}

	c.skipSpace()

	if !c.consume("::") && !c.consume(":") {
		return Property{}, c.cut(KindSyntax, c.pos, "expected ':' after property key %q, found %s", key, c.describe())
	}

	c.skipSpace()

	v, err := value(c)
	if err != nil {
		err.committed = true

		return Property{}, err
	}

	return Property{Key: key, Value: v}, nil
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r != '\\' || i+size >= len(s) {
			b.WriteRune(r)
			i += size

			continue
		}

		next, nsize := utf8.DecodeRuneInString(s[i+size:])
		i += size + nsize

		switch next {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '\\', '"', '\'', '`', '/':
			b.WriteRune(next)
		default:
			b.WriteByte('\\')
			b.WriteRune(next)
		}
	}

	return b.String()
}

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
