package gram

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// cursor holds the state for parsing a gram document.
type cursor struct {
	input string
	pos   int

	// build is false during Validate: rules recognize input without
	// constructing values.
	build bool
}

func newCursor(input string, build bool) *cursor {
	return &cursor{input: input, build: build}
}

func (c *cursor) eof() bool {
	return c.pos >= len(c.input)
}

func (c *cursor) peek() rune {
	if c.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(c.input[c.pos:])

	return r
}

// peekAt returns the rune starting n bytes ahead.
func (c *cursor) peekAt(n int) rune {
	off := c.pos + n
	if off >= len(c.input) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(c.input[off:])

	return r
}

func (c *cursor) advance() rune {
	if c.eof() {
		return 0
	}

	r, size := utf8.DecodeRuneInString(c.input[c.pos:])
	c.pos += size

	return r
}

func (c *cursor) match(s string) bool {
	return strings.HasPrefix(c.input[c.pos:], s)
}

// consume advances past s if the input continues with it.
func (c *cursor) consume(s string) bool {
	if !c.match(s) {
		return false
	}

	c.pos += len(s)

	return true
}

// skipSpace skips whitespace, "//" comments and "#" comments.
func (c *cursor) skipSpace() {
	for !c.eof() {
		r := c.peek()

		switch {
		case isSpace(r):
			c.advance()
		case r == '#', r == '/' && c.peekAt(1) == '/':
			for !c.eof() && c.peek() != '\n' {
				c.advance()
			}
		default:
			return
		}
	}
}

// fail returns a soft failure at the current position. Alternation may
// try another rule after it.
func (c *cursor) fail(kind ErrorKind, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:    kind,
		Span:    offsetSpan(c.pos, c.pos),
		Message: fmt.Sprintf(format, args...),
	}
}

// cut returns a committed failure spanning start to the current position.
func (c *cursor) cut(kind ErrorKind, start int, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:      kind,
		Span:      offsetSpan(start, c.pos),
		Message:   fmt.Sprintf(format, args...),
		committed: true,
	}
}

// unclosed reports an opening delimiter at start that reached end of input.
func (c *cursor) unclosed(start int, delim string) *ParseError {
	return c.cut(KindUnmatchedDelimiter, start, "unclosed %q", delim)
}

// describe names the next rune for error messages.
func (c *cursor) describe() string {
	if c.eof() {
		return "end of input"
	}

	return fmt.Sprintf("%q", c.peek())
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || unicode.IsSpace(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// isIdentStart reports whether r can begin an unquoted identifier.
func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isIdentContinue reports whether r can continue an unquoted identifier.
func isIdentContinue(r rune) bool {
	return isIdentStart(r) || r == '-' || r == '@' || r == '.'
}

func isQuote(r rune) bool {
	return r == '"' || r == '\'' || r == '`'
}
