// Package query selects gram patterns with boolean expressions written in
// the expr language (https://expr-lang.org).
//
// An expression is evaluated against one pattern at a time. It sees the
// following variables:
//
//	identity    string     the subject identity, "" when anonymous
//	labels      []string   the subject labels
//	properties  map        property values by key
//	form        string     "node", "path", "annotation" or "subject"
//	elements    []map      the same variables for each element
//	depth       int        0 for top-level patterns
//
// For example:
//
//	"Person" in labels && properties.age >= 18
//	form == "path" && any(elements, {"Team" in .labels})
package query

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	gram "github.com/gram-data/gram-go"
)

// ErrInvalidQuery is returned when an expression does not compile to a
// boolean.
var ErrInvalidQuery = errors.New("query: invalid expression")

// Filter is a compiled query expression. It is safe for concurrent use.
type Filter struct {
	source  string
	program *vm.Program
}

// Compile compiles source into a Filter.
func Compile(source string) (*Filter, error) {
	program, err := expr.Compile(source, expr.Env(sampleEnv()), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	return &Filter{source: source, program: program}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(source string) *Filter {
	f, err := Compile(source)
	if err != nil {
		panic(err)
	}

	return f
}

// String returns the source expression.
func (f *Filter) String() string {
	return f.source
}

// Match reports whether p satisfies the filter.
func (f *Filter) Match(p gram.Pattern[gram.Subject]) (bool, error) {
	return f.match(p, 0)
}

func (f *Filter) match(p gram.Pattern[gram.Subject], depth int) (bool, error) {
	out, err := expr.Run(f.program, Env(p, depth))
	if err != nil {
		return false, fmt.Errorf("query %q: %w", f.source, err)
	}

	ok, _ := out.(bool)

	return ok, nil
}

// SelectOption configures Select.
type SelectOption func(*selectConfig)

type selectConfig struct {
	descend bool
}

// Descend makes Select test nested elements as well as top-level patterns.
// Matches are returned in pre-order.
func Descend() SelectOption {
	return func(c *selectConfig) {
		c.descend = true
	}
}

// Select returns the patterns that satisfy the filter, in order.
func (f *Filter) Select(patterns []gram.Pattern[gram.Subject], opts ...SelectOption) ([]gram.Pattern[gram.Subject], error) {
	var cfg selectConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var selected []gram.Pattern[gram.Subject]

	var visit func(p gram.Pattern[gram.Subject], depth int) error

	visit = func(p gram.Pattern[gram.Subject], depth int) error {
		ok, err := f.match(p, depth)
		if err != nil {
			return err
		}

		if ok {
			selected = append(selected, p)
		}

		if !cfg.descend {
			return nil
		}

		for _, e := range p.Elements {
			if err := visit(e, depth+1); err != nil {
				return err
			}
		}

		return nil
	}

	for _, p := range patterns {
		if err := visit(p, 0); err != nil {
			return nil, err
		}
	}

	return selected, nil
}

// Env returns the variables an expression sees for p.
func Env(p gram.Pattern[gram.Subject], depth int) map[string]any {
	labels := p.Value.Labels
	if labels == nil {
		labels = []string{}
	}

	props := make(map[string]any, len(p.Value.Properties))
	for _, prop := range p.Value.Properties {
		props[prop.Key] = Value(prop.Value)
	}

	elements := make([]any, len(p.Elements))
	for i, e := range p.Elements {
		elements[i] = Env(e, depth+1)
	}

	return map[string]any{
		"identity":   p.Value.Identity,
		"labels":     labels,
		"properties": props,
		"form":       string(gram.FormOf(p)),
		"elements":   elements,
		"depth":      depth,
	}
}

func sampleEnv() map[string]any {
	return Env(gram.Pattern[gram.Subject]{}, 0)
}

// Value converts a property value for use in expressions. Symbols become
// plain strings; ranges, measurements and tagged strings keep their AST
// object form, e.g. properties.height.unit.
func Value(v gram.Value) any {
	switch v := v.(type) {
	case gram.Symbol:
		return string(v)
	case gram.Decimal:
		return float64(v)
	case gram.Array:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = Value(item)
		}

		return items
	case gram.Map:
		m := make(map[string]any, len(v))
		for _, prop := range v {
			m[prop.Key] = Value(prop.Value)
		}

		return m
	default:
		return gram.ValueToAST(v)
	}
}
