// Package cypher translates gram patterns into parameterized Cypher write
// statements.
//
// Each top-level pattern becomes one Statement. Its parts map onto the graph
// as follows:
//
//   - An atomic pattern is a node. Identified nodes are MERGEd on the
//     gram_id property so repeated loads converge; anonymous nodes are
//     CREATEd.
//   - A two-element pattern whose elements are nodes or paths is a
//     relationship. Its type is the subject's first label, or RELATED.
//     Further labels are kept in the gram_labels property.
//   - Any other pattern is a container node with one CONTAINS relationship
//     per element, numbered by an ordinal property.
//
// Property values that Neo4j cannot store natively (maps, ranges,
// measurements, tagged strings and mixed arrays) are written as their gram
// literal text.
package cypher

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	gram "github.com/gram-data/gram-go"
)

// Property and relationship names written by Translate.
const (
	IDProperty      = "gram_id"
	LabelsProperty  = "gram_labels"
	BatchProperty   = "_gramBatch"
	OrdinalProperty = "ordinal"

	DefaultRelationshipType = "RELATED"
	ContainsType            = "CONTAINS"
)

// ErrReservedProperty is returned when a subject sets a property Translate
// writes itself.
var ErrReservedProperty = errors.New("cypher: reserved property")

// Statement is a single Cypher statement with its parameters.
type Statement struct {
	Text   string
	Params map[string]any
}

// Option configures Translate.
type Option func(*translator)

// WithBatch stamps every node and relationship written with the batch
// identifier, stored as the _gramBatch property.
func WithBatch(id string) Option {
	return func(t *translator) {
		t.batch = id
	}
}

// WithHeader keeps a leading property-only pattern as a node. By default it
// is treated as a document header and not written.
func WithHeader(keep bool) Option {
	return func(t *translator) {
		t.keepHeader = keep
	}
}

// Translate converts patterns into one statement per pattern.
func Translate(patterns []gram.Pattern[gram.Subject], opts ...Option) ([]Statement, error) {
	var t translator
	for _, opt := range opts {
		opt(&t)
	}

	var statements []Statement

	for i, p := range patterns {
		if i == 0 && !t.keepHeader && isHeader(p) {
			continue
		}

		stmt, err := t.statement(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i+1, err)
		}

		statements = append(statements, stmt)
	}

	return statements, nil
}

// isHeader reports whether p holds nothing but properties.
func isHeader(p gram.Pattern[gram.Subject]) bool {
	return p.IsAtomic() && p.Value.Identity == "" && len(p.Value.Labels) == 0 && len(p.Value.Properties) > 0
}

type translator struct {
	batch      string
	keepHeader bool
}

// builder accumulates the clauses and parameters of one statement.
type builder struct {
	batch  string
	lines  []string
	params map[string]any
	nodes  map[string]string // identity -> variable
	nextN  int
	nextR  int
	nextP  int
}

func (t *translator) statement(p gram.Pattern[gram.Subject]) (Statement, error) {
	b := &builder{
		batch:  t.batch,
		params: map[string]any{},
		nodes:  map[string]string{},
	}

	if t.batch != "" {
		b.params["batch"] = t.batch
	}

	if _, err := b.pattern(p); err != nil {
		return Statement{}, err
	}

	return Statement{Text: strings.Join(b.lines, "\n"), Params: b.params}, nil
}

func (b *builder) emit(format string, args ...any) {
	b.lines = append(b.lines, fmt.Sprintf(format, args...))
}

// param stores v as the next parameter and returns its name.
func (b *builder) param(v any) string {
	name := "p" + strconv.Itoa(b.nextP)
	b.nextP++
	b.params[name] = v

	return name
}

// pattern writes p and returns the variable of the node that other
// relationships attach to.
func (b *builder) pattern(p gram.Pattern[gram.Subject]) (string, error) {
	switch {
	case p.IsAtomic():
		return b.node(p.Value)
	case isRelationship(p):
		return b.relationship(p)
	default:
		return b.container(p)
	}
}

func isRelationship(p gram.Pattern[gram.Subject]) bool {
	if len(p.Elements) != 2 {
		return false
	}

	left, right := p.Elements[0], p.Elements[1]

	switch {
	case left.IsAtomic() && right.IsAtomic():
		return true
	case left.IsAtomic():
		return isRelationship(right)
	case right.IsAtomic():
		return isRelationship(left)
	default:
		return false
	}
}

func (b *builder) node(s gram.Subject) (string, error) {
	props, err := b.properties(s.Properties)
	if err != nil {
		return "", err
	}

	if v, ok := b.nodes[s.Identity]; ok && s.Identity != "" {
		b.set(v, s.Labels, props)

		return v, nil
	}

	v := "n" + strconv.Itoa(b.nextN)
	b.nextN++

	if s.Identity == "" {
		b.emit("CREATE (%s%s%s)", v, labelList(s.Labels), b.propsParam(props))

		return v, nil
	}

	b.nodes[s.Identity] = v
	b.emit("MERGE (%s {%s: $%s})", v, IDProperty, b.param(s.Identity))
	b.set(v, s.Labels, props)

	return v, nil
}

func (b *builder) set(v string, labels []string, props map[string]any) {
	if len(labels) > 0 {
		b.emit("SET %s%s", v, labelList(labels))
	}

	if len(props) > 0 {
		b.emit("SET %s += $%s", v, b.param(props))
	}
}

// relationship writes both endpoints and the edge between them. In a path
// folded from the left, the next edge attaches to the element that is a
// node rather than a path, or to the second node when both are nodes.
func (b *builder) relationship(p gram.Pattern[gram.Subject]) (string, error) {
	from, err := b.pattern(p.Elements[0])
	if err != nil {
		return "", err
	}

	to, err := b.pattern(p.Elements[1])
	if err != nil {
		return "", err
	}

	s := p.Value

	props, err := b.properties(s.Properties)
	if err != nil {
		return "", err
	}

	relType := DefaultRelationshipType
	if len(s.Labels) > 0 {
		relType = s.Labels[0]
	}

	if len(s.Labels) > 1 {
		if props == nil {
			props = map[string]any{}
		}

		props[LabelsProperty] = append([]string(nil), s.Labels[1:]...)
	}

	v := "r" + strconv.Itoa(b.nextR)
	b.nextR++

	if s.Identity == "" {
		b.emit("CREATE (%s)-[%s:%s%s]->(%s)", from, v, quoteName(relType), b.propsParam(props), to)
	} else {
		b.emit("MERGE (%s)-[%s:%s {%s: $%s}]->(%s)", from, v, quoteName(relType), IDProperty, b.param(s.Identity), to)
		b.set(v, nil, props)
	}

	if !p.Elements[1].IsAtomic() {
		return from, nil
	}

	return to, nil
}

func (b *builder) container(p gram.Pattern[gram.Subject]) (string, error) {
	v, err := b.node(p.Value)
	if err != nil {
		return "", err
	}

	for i, e := range p.Elements {
		ev, err := b.pattern(e)
		if err != nil {
			return "", err
		}

		edge := fmt.Sprintf("%s: %d", OrdinalProperty, i)
		if b.batch != "" {
			edge += ", " + BatchProperty + ": $batch"
		}

		b.emit("CREATE (%s)-[:%s {%s}]->(%s)", v, ContainsType, edge, ev)
	}

	return v, nil
}

// propsParam returns the " $param" suffix for a CREATE pattern, or "" when
// there is nothing to set.
func (b *builder) propsParam(props map[string]any) string {
	if len(props) == 0 {
		return ""
	}

	return " $" + b.param(props)
}

func (b *builder) properties(props gram.Properties) (map[string]any, error) {
	if len(props) == 0 && b.batch == "" {
		return nil, nil
	}

	out := make(map[string]any, len(props)+1)

	for _, p := range props {
		switch p.Key {
		case IDProperty, LabelsProperty, BatchProperty:
			return nil, fmt.Errorf("%w %q", ErrReservedProperty, p.Key)
		}

		out[p.Key] = PropertyValue(p.Value)
	}

	if b.batch != "" {
		out[BatchProperty] = b.batch
	}

	return out, nil
}

// PropertyValue converts a gram value to a Neo4j property value.
func PropertyValue(v gram.Value) any {
	switch v := v.(type) {
	case gram.Symbol:
		return string(v)
	case gram.Str:
		return string(v)
	case gram.Integer:
		return int64(v)
	case gram.Decimal:
		return float64(v)
	case gram.Boolean:
		return bool(v)
	case gram.Array:
		if list, ok := homogeneousList(v); ok {
			return list
		}

		return v.String()
	case nil:
		return nil
	default:
		return fmt.Sprint(v)
	}
}

// homogeneousList converts an array whose items all share one scalar type.
// Neo4j rejects lists that mix types or nest.
func homogeneousList(a gram.Array) ([]any, bool) {
	list := make([]any, 0, len(a))

	var kind string

	for _, item := range a {
		switch item.(type) {
		case gram.Symbol, gram.Str:
			if kind != "" && kind != "string" {
				return nil, false
			}

			kind = "string"
		case gram.Integer, gram.Decimal, gram.Boolean:
			if kind != "" && kind != item.Type() {
				return nil, false
			}

			kind = item.Type()
		default:
			return nil, false
		}

		list = append(list, PropertyValue(item))
	}

	return list, true
}

func labelList(labels []string) string {
	var sb strings.Builder

	for _, l := range labels {
		sb.WriteString(":" + quoteName(l))
	}

	return sb.String()
}

// quoteName returns name as a Cypher label or relationship type, escaped
// with backticks unless it is a plain identifier.
func quoteName(name string) string {
	if isPlainName(name) {
		return name
	}

	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func isPlainName(name string) bool {
	if name == "" {
		return false
	}

	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}
