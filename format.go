package gram

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// FormatOptions controls how SerializeAllWith lays out a document.
type FormatOptions struct {
	// BlankLines separates top-level patterns with an empty line.
	BlankLines bool `yaml:"blank_lines"`
}

// Serialize renders a pattern as canonical gram notation.
//
// Atomic patterns become nodes, two-element patterns whose second element
// is atomic become paths, single-element patterns with an anonymous
// propertied subject become annotations, and anything else becomes a
// subject pattern. Parsing the result yields a pattern equal to p.
func Serialize(p Pattern[Subject]) string {
	var b strings.Builder

	f := &serializer{b: &b}
	f.topLevel(p)

	return b.String()
}

// SerializeAll renders each pattern on its own line.
func SerializeAll(patterns []Pattern[Subject]) string {
	return SerializeAllWith(patterns, FormatOptions{})
}

// SerializeAllWith renders each pattern on its own line using opts.
func SerializeAllWith(patterns []Pattern[Subject], opts FormatOptions) string {
	var b strings.Builder

	f := &serializer{b: &b}

	for i, p := range patterns {
		if i > 0 && opts.BlankLines {
			f.write("\n")
		}

		f.topLevel(p)
		f.write("\n")
	}

	return b.String()
}

// Form names the notation a pattern is written in.
type Form string

// Pattern forms, in the order Serialize tests for them.
const (
	FormNode       Form = "node"
	FormAnnotation Form = "annotation"
	FormPath       Form = "path"
	FormSubject    Form = "subject"
)

// FormOf returns the notation Serialize writes p in.
func FormOf(p Pattern[Subject]) Form {
	switch {
	case p.IsAtomic():
		return FormNode
	case isAnnotation(p):
		return FormAnnotation
	case isPath(p):
		return FormPath
	default:
		return FormSubject
	}
}

type serializer struct {
	b *strings.Builder
}

func (f *serializer) write(s string) {
	f.b.WriteString(s)
}

// topLevel writes p, rendering a bare property record as {...}.
func (f *serializer) topLevel(p Pattern[Subject]) {
	s := p.Value
	if p.IsAtomic() && s.Identity == "" && len(s.Labels) == 0 && len(s.Properties) > 0 {
		f.record(s.Properties)

		return
	}

	f.pattern(p)
}

func (f *serializer) pattern(p Pattern[Subject]) {
	switch FormOf(p) {
	case FormNode:
		f.node(p.Value)
	case FormAnnotation:
		f.annotation(p)
	case FormPath:
		f.path(p)
	case FormSubject:
		f.subjectPattern(p)
	}
}

func (f *serializer) node(s Subject) {
	f.write("(")
	f.subject(s)
	f.write(")")
}

// path writes a left-nested chain of relationships as a single path.
func (f *serializer) path(p Pattern[Subject]) {
	if p.IsAtomic() {
		f.node(p.Value)

		return
	}

	f.path(p.Elements[0])

	if p.Value.IsEmpty() {
		f.write("-->")
	} else {
		f.write("-[")
		f.subject(p.Value)
		f.write("]->")
	}

	f.node(p.Elements[1].Value)
}

func (f *serializer) annotation(p Pattern[Subject]) {
	for _, prop := range p.Value.Properties {
		f.write("@" + prop.Key + "(")
		f.value(prop.Value)
		f.write(") ")
	}

	inner := p.Elements[0]

	// A nested annotation would merge into this one when reparsed.
	if isAnnotation(inner) {
		f.subjectPattern(inner)
	} else {
		f.pattern(inner)
	}
}

func (f *serializer) subjectPattern(p Pattern[Subject]) {
	f.write("[")
	f.subject(p.Value)

	if len(p.Elements) > 0 {
		f.write(" | ")

		for i, e := range p.Elements {
			if i > 0 {
				f.write(", ")
			}

			f.pattern(e)
		}
	}

	f.write("]")
}

func (f *serializer) subject(s Subject) {
	if s.Identity != "" {
		f.write(formatIdentifier(s.Identity))
	}

	for _, l := range s.Labels {
		f.write(":" + formatIdentifier(l))
	}

	if len(s.Properties) > 0 {
		if s.Identity != "" || len(s.Labels) > 0 {
			f.write(" ")
		}

		f.record(s.Properties)
	}
}

func (f *serializer) record(props Properties) {
	f.write("{")

	for i, prop := range props {
		if i > 0 {
			f.write(", ")
		}

		f.write(formatIdentifier(prop.Key) + ": ")
		f.value(prop.Value)
	}

	f.write("}")
}

func (f *serializer) value(v Value) {
	switch v := v.(type) {
	case Symbol:
		if isBareSymbol(string(v)) {
			f.write(string(v))
		} else {
			f.write(quote(string(v)))
		}
	case Str:
		f.write(quote(string(v)))
	case Integer:
		f.write(strconv.FormatInt(int64(v), 10))
	case Decimal:
		f.write(formatDecimal(float64(v)))
	case Boolean:
		f.write(strconv.FormatBool(bool(v)))
	case Array:
		f.write("[")

		for i, item := range v {
			if i > 0 {
				f.write(", ")
			}

			f.value(item)
		}

		f.write("]")
	case Map:
		f.record(Properties(v))
	case Range:
		if v.Lower != nil {
			f.write(strconv.FormatInt(*v.Lower, 10))
		}

		if v.Inclusive {
			f.write("...")
		} else {
			f.write("..")
		}

		if v.Upper != nil {
			f.write(strconv.FormatInt(*v.Upper, 10))
		}
	case TaggedString:
		if isBareIdentifier(v.Tag) {
			f.write(v.Tag + quoteWith(v.Content, '`'))
		} else {
			f.write(quote(v.Content))
		}
	case Measurement:
		f.write(formatMagnitude(v) + v.Unit)
	}
}

func formatValue(v Value) string {
	var b strings.Builder

	f := &serializer{b: &b}
	f.value(v)

	return b.String()
}

// formatMagnitude writes a zero magnitude with a fraction when the unit
// starts with x, so 0.0xkg is not read back as a hexadecimal literal.
func formatMagnitude(m Measurement) string {
	if m.Magnitude == 0 && strings.HasPrefix(strings.ToLower(m.Unit), "x") {
		return formatDecimal(m.Magnitude)
	}

	return strconv.FormatFloat(m.Magnitude, 'f', -1, 64)
}

func formatDecimal(x float64) string {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// isPath reports whether p is a relationship, or a chain of them folded
// to the left, that can be written as a path.
func isPath(p Pattern[Subject]) bool {
	if len(p.Elements) != 2 || !p.Elements[1].IsAtomic() {
		return false
	}

	first := p.Elements[0]

	return first.IsAtomic() || isPath(first)
}

// isAnnotation reports whether p has the shape produced by @key(value) prefixes.
func isAnnotation(p Pattern[Subject]) bool {
	s := p.Value
	if len(p.Elements) != 1 || s.Identity != "" || len(s.Labels) > 0 || len(s.Properties) == 0 {
		return false
	}

	for _, prop := range s.Properties {
		if !isBareIdentifier(prop.Key) {
			return false
		}
	}

	return true
}

func isBareIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 && !isIdentStart(r) {
			return false
		}

		if i > 0 && !isIdentContinue(r) {
			return false
		}
	}

	return true
}

// isBareSymbol reports whether s reads back as a Symbol when written unquoted.
func isBareSymbol(s string) bool {
	if !isBareIdentifier(s) || s == "true" || s == "false" {
		return false
	}

	r, _ := utf8.DecodeRuneInString(s)

	return !isDigit(r)
}

func formatIdentifier(s string) string {
	if isBareIdentifier(s) {
		return s
	}

	return quote(s)
}

// quote picks the first of ", ' and ` that does not occur in s, falling
// back to escaped double quotes.
func quote(s string) string {
	for _, q := range []rune{'"', '\'', '`'} {
		if !strings.ContainsRune(s, q) {
			return quoteWith(s, q)
		}
	}

	return quoteWith(s, '"')
}

func quoteWith(s string, q rune) string {
	var b strings.Builder

	b.Grow(len(s) + 2)
	b.WriteRune(q)

	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case q:
			b.WriteRune('\\')
			b.WriteRune(q)
		default:
			b.WriteRune(r)
		}
	}

	b.WriteRune(q)

	return b.String()
}
