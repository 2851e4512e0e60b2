// Package gram parses and serializes gram notation, a text format for
// graph-shaped patterns of nodes, relationships and nested subjects.
package gram

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Language-agnostic AST
// =============================================================================

// AstPattern is a plain tree of strings, numbers, slices and maps that
// mirrors a Pattern[Subject]. It encodes directly to JSON or YAML.
type AstPattern struct {
	Subject  AstSubject   `json:"subject"  yaml:"subject"`
	Elements []AstPattern `json:"elements" yaml:"elements"`
}

// AstSubject is the AST form of a Subject.
type AstSubject struct {
	Identity   string         `json:"identity"   yaml:"identity"`
	Labels     []string       `json:"labels"     yaml:"labels"`
	Properties map[string]any `json:"properties" yaml:"properties"`
}

// Tagged AST value type names. Strings, numbers, booleans, arrays and maps
// use native representations; the other variants are objects with a "type" key.
const (
	astTypeSymbol      = "symbol"
	astTypeRange       = "range"
	astTypeMeasurement = "measurement"
	astTypeTagged      = "tagged"
)

// AstDecimal is the AST form of a Decimal. It always encodes with a
// fraction or exponent so that 1.0 does not decode as an integer.
type AstDecimal float64

// MarshalJSON implements json.Marshaler.
func (d AstDecimal) MarshalJSON() ([]byte, error) {
	f := float64(d)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: decimal %v has no JSON form", ErrInvalidAST, f)
	}

	return []byte(formatDecimal(f)), nil
}

// MarshalYAML implements yaml.Marshaler.
func (d AstDecimal) MarshalYAML() (any, error) {
	f := float64(d)

	switch {
	case math.IsNaN(f):
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ".nan"}, nil
	case math.IsInf(f, 1):
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: ".inf"}, nil
	case math.IsInf(f, -1):
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: "-.inf"}, nil
	}

	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatDecimal(f)}, nil
}

// ParseToAST parses input holding exactly one pattern and returns its AST.
func ParseToAST(input string) (AstPattern, error) {
	p, err := ParseOne(input)
	if err != nil {
		return AstPattern{}, err
	}

	if p == nil {
		return AstPattern{}, ErrNoPattern
	}

	return ToAST(*p), nil
}

// ParseToASTs parses every pattern in input and returns their ASTs.
func ParseToASTs(input string) ([]AstPattern, error) {
	patterns, err := Parse(input)
	if err != nil {
		return nil, err
	}

	asts := make([]AstPattern, len(patterns))
	for i, p := range patterns {
		asts[i] = ToAST(p)
	}

	return asts, nil
}

// ToAST converts a pattern to its AST form.
func ToAST(p Pattern[Subject]) AstPattern {
	labels := make([]string, len(p.Value.Labels))
	copy(labels, p.Value.Labels)

	props := make(map[string]any, len(p.Value.Properties))
	for _, prop := range p.Value.Properties {
		props[prop.Key] = ValueToAST(prop.Value)
	}

	elements := make([]AstPattern, len(p.Elements))
	for i, e := range p.Elements {
		elements[i] = ToAST(e)
	}

	return AstPattern{
		Subject: AstSubject{
			Identity:   p.Value.Identity,
			Labels:     labels,
			Properties: props,
		},
		Elements: elements,
	}
}

// ValueToAST converts a value to its AST form.
func ValueToAST(v Value) any {
	switch v := v.(type) {
	case Symbol:
		return map[string]any{"type": astTypeSymbol, "value": string(v)}
	case Str:
		return string(v)
	case Integer:
		return int64(v)
	case Decimal:
		return AstDecimal(v)
	case Boolean:
		return bool(v)
	case Array:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = ValueToAST(item)
		}

		return items
	case Map:
		m := make(map[string]any, len(v))
		for _, prop := range v {
			m[prop.Key] = ValueToAST(prop.Value)
		}

		return m
	case Range:
		m := map[string]any{"type": astTypeRange, "lower": nil, "upper": nil}
		if v.Lower != nil {
			m["lower"] = *v.Lower
		}

		if v.Upper != nil {
			m["upper"] = *v.Upper
		}

		if v.Inclusive {
			m["inclusive"] = true
		}

		return m
	case Measurement:
		return map[string]any{"type": astTypeMeasurement, "unit": v.Unit, "value": v.Magnitude}
	case TaggedString:
		return map[string]any{"type": astTypeTagged, "tag": v.Tag, "content": v.Content}
	default:
		return nil
	}
}

// FromAST converts an AST back into a pattern. Property maps carry no
// order, so properties are restored in key order.
func FromAST(a AstPattern) (Pattern[Subject], error) {
	s := Subject{Identity: a.Subject.Identity}

	for _, l := range a.Subject.Labels {
		s.AddLabel(l)
	}

	props, err := propertiesFromAST(a.Subject.Properties)
	if err != nil {
		return Pattern[Subject]{}, err
	}

	s.Properties = props

	var elements []Pattern[Subject]

	for _, e := range a.Elements {
		p, err := FromAST(e)
		if err != nil {
			return Pattern[Subject]{}, err
		}

		elements = append(elements, p)
	}

	return New(s, elements...), nil
}

func propertiesFromAST(m map[string]any) (Properties, error) {
	if len(m) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	props := make(Properties, 0, len(keys))

	for _, k := range keys {
		v, err := ValueFromAST(m[k])
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}

		props = append(props, Property{Key: k, Value: v})
	}

	return props, nil
}

// ValueFromAST converts an AST value back into a Value. It accepts the
// types produced by ValueToAST as well as those produced by decoding JSON
// (float64, json.Number) or YAML (int, map[string]any).
func ValueFromAST(a any) (Value, error) {
	switch a := a.(type) {
	case string:
		return Str(a), nil
	case bool:
		return Boolean(a), nil
	case int:
		return Integer(a), nil
	case int64:
		return Integer(a), nil
	case float64:
		return Decimal(a), nil
	case AstDecimal:
		return Decimal(a), nil
	case json.Number:
		if !strings.ContainsAny(string(a), ".eE") {
			if n, err := a.Int64(); err == nil {
				return Integer(n), nil
			}
		}

		f, err := a.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: number %s", ErrInvalidAST, a)
		}

		return Decimal(f), nil
	case []any:
		items := make(Array, len(a))
		for i, item := range a {
			v, err := ValueFromAST(item)
			if err != nil {
				return nil, err
			}

			items[i] = v
		}

		return items, nil
	case map[string]any:
		return taggedFromAST(a)
	default:
		return nil, fmt.Errorf("%w: unsupported value %T", ErrInvalidAST, a)
	}
}

func taggedFromAST(m map[string]any) (Value, error) {
	typ, _ := m["type"].(string)

	switch typ {
	case astTypeSymbol:
		s, ok := m["value"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: symbol without string value", ErrInvalidAST)
		}

		return Symbol(s), nil
	case astTypeTagged:
		tag, ok1 := m["tag"].(string)
		content, ok2 := m["content"].(string)

		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: tagged string needs tag and content", ErrInvalidAST)
		}

		if !isBareIdentifier(tag) {
			return nil, fmt.Errorf("%w: tag %q is not a bare identifier", ErrInvalidAST, tag)
		}

		return TaggedString{Tag: tag, Content: content}, nil
	case astTypeMeasurement:
		unit, ok := m["unit"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: measurement without unit", ErrInvalidAST)
		}

		mag, err := ValueFromAST(m["value"])
		if err != nil {
			return nil, err
		}

		switch mag := mag.(type) {
		case Integer:
			return Measurement{Magnitude: float64(mag), Unit: unit}, nil
		case Decimal:
			return Measurement{Magnitude: float64(mag), Unit: unit}, nil
		}

		return nil, fmt.Errorf("%w: measurement value must be a number", ErrInvalidAST)
	case astTypeRange:
		r := Range{}
		r.Inclusive, _ = m["inclusive"].(bool)

		var err error

		if r.Lower, err = boundFromAST(m["lower"]); err != nil {
			return nil, err
		}

		if r.Upper, err = boundFromAST(m["upper"]); err != nil {
			return nil, err
		}

		return r, nil
	}

	props, err := propertiesFromAST(m)
	if err != nil {
		return nil, err
	}

	if props == nil {
		return Map{}, nil
	}

	return Map(props), nil
}

func boundFromAST(a any) (*int64, error) {
	if a == nil {
		return nil, nil
	}

	v, err := ValueFromAST(a)
	if err != nil {
		return nil, err
	}

	switch v := v.(type) {
	case Integer:
		n := int64(v)

		return &n, nil
	case Decimal:
		if f := float64(v); f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
			n := int64(f)

			return &n, nil
		}
	}

	return nil, fmt.Errorf("%w: range bound must be an integer", ErrInvalidAST)
}
