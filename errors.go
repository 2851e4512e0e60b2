package gram

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrSyntax is returned when a grammar rule cannot match.
	ErrSyntax = errors.New("gram: syntax error")

	// ErrUnexpectedInput is returned for unrecognized characters after a complete pattern.
	ErrUnexpectedInput = errors.New("gram: unexpected input")

	// ErrInvalidValue is returned when a value literal is malformed.
	ErrInvalidValue = errors.New("gram: invalid value")

	// ErrUnmatchedDelimiter is returned when a bracket, brace or quote is never closed.
	ErrUnmatchedDelimiter = errors.New("gram: unmatched delimiter")

	// ErrInternal signals a parser bug.
	ErrInternal = errors.New("gram: internal error")

	// ErrMultiplePatterns is returned by ParseOne when the input holds more than one pattern.
	ErrMultiplePatterns = errors.New("gram: expected a single pattern")

	// ErrNoPattern is returned by ParseToAST when the input holds no pattern.
	ErrNoPattern = errors.New("gram: input holds no pattern")

	// ErrInvalidAST is returned when an AST value cannot be converted back to a Value.
	ErrInvalidAST = errors.New("gram: invalid AST")

	// ErrConfigNotFound is returned when no .gram.yaml is found.
	ErrConfigNotFound = errors.New("gram: no .gram.yaml found")

	// ErrInvalidConfig is returned when a .gram.yaml fails validation.
	ErrInvalidConfig = errors.New("gram: invalid config")
)

// ErrorKind classifies a ParseError.
type ErrorKind int

// ErrorKind values.
const (
	KindSyntax ErrorKind = iota
	KindUnexpectedInput
	KindInvalidValue
	KindUnmatchedDelimiter
	KindInternal
)

var kindNames = map[ErrorKind]string{
	KindSyntax:             "SyntaxError",
	KindUnexpectedInput:    "UnexpectedInput",
	KindInvalidValue:       "InvalidValue",
	KindUnmatchedDelimiter: "UnmatchedDelimiter",
	KindInternal:           "Internal",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindSyntax:
		return ErrSyntax
	case KindUnexpectedInput:
		return ErrUnexpectedInput
	case KindInvalidValue:
		return ErrInvalidValue
	case KindUnmatchedDelimiter:
		return ErrUnmatchedDelimiter
	default:
		return ErrInternal
	}
}

// ParseError describes a failure to parse gram text.
type ParseError struct {
	Kind    ErrorKind
	Span    Span
	Message string

	// committed marks a failure raised after a rule consumed its opening
	// token. Alternation stops at committed failures.
	committed bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gram: %s at %s: %s", e.Kind, e.Span.Start, e.Message)
}

// Unwrap returns the sentinel matching the error kind, so callers can use errors.Is.
func (e *ParseError) Unwrap() error {
	return e.Kind.sentinel()
}

// AsParseError extracts a *ParseError from err.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}

	return nil, false
}
