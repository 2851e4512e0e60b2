package gram

// Value is a property value. The set of implementations is closed:
// Symbol, Str, Integer, Decimal, Boolean, Array, Map, Range, TaggedString
// and Measurement.
type Value interface {
	// Type returns the lower-case variant name, e.g. "integer".
	Type() string
	// String renders the value as gram notation.
	String() string

	isValue()
}

// Symbol is a bare identifier used as a value.
type Symbol string

// Str is a quoted string, already unescaped.
type Str string

// Integer is a decimal or hexadecimal integer literal.
type Integer int64

// Decimal is a number with a fractional part.
type Decimal float64

// Boolean is true or false.
type Boolean bool

// Array is an ordered list of scalar values.
type Array []Value

// Map is a brace-delimited record used as a value.
type Map Properties

// Range is lower..upper or lower...upper; either bound may be absent.
type Range struct {
	Lower     *int64
	Upper     *int64
	Inclusive bool
}

// TaggedString is a string carrying a tag, e.g. url`https://example.com`.
type TaggedString struct {
	Tag     string
	Content string
}

// Measurement is a number with a unit suffix, e.g. 168cm.
type Measurement struct {
	Magnitude float64
	Unit      string
}

func (Symbol) Type() string       { return "symbol" }
func (Str) Type() string          { return "string" }
func (Integer) Type() string      { return "integer" }
func (Decimal) Type() string      { return "decimal" }
func (Boolean) Type() string      { return "boolean" }
func (Array) Type() string        { return "array" }
func (Map) Type() string          { return "map" }
func (Range) Type() string        { return "range" }
func (TaggedString) Type() string { return "tagged" }
func (Measurement) Type() string  { return "measurement" }

func (v Symbol) String() string       { return formatValue(v) }
func (v Str) String() string          { return formatValue(v) }
func (v Integer) String() string      { return formatValue(v) }
func (v Decimal) String() string      { return formatValue(v) }
func (v Boolean) String() string      { return formatValue(v) }
func (v Array) String() string        { return formatValue(v) }
func (v Map) String() string          { return formatValue(v) }
func (v Range) String() string        { return formatValue(v) }
func (v TaggedString) String() string { return formatValue(v) }
func (v Measurement) String() string  { return formatValue(v) }

func (Symbol) isValue()       {}
func (Str) isValue()          {}
func (Integer) isValue()      {}
func (Decimal) isValue()      {}
func (Boolean) isValue()      {}
func (Array) isValue()        {}
func (Map) isValue()          {}
func (Range) isValue()        {}
func (TaggedString) isValue() {}
func (Measurement) isValue()  {}

// Get returns the value stored under key.
func (m Map) Get(key string) (Value, bool) {
	return Properties(m).Get(key)
}

// Equal reports whether two maps hold the same entries, ignoring order.
func (m Map) Equal(o Map) bool {
	return Properties(m).Equal(Properties(o))
}

// Equal reports whether two ranges have the same bounds and delimiter.
func (r Range) Equal(o Range) bool {
	return r.Inclusive == o.Inclusive && equalBound(r.Lower, o.Lower) && equalBound(r.Upper, o.Upper)
}

func equalBound(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return *a == *b
}

// ValuesEqual reports whether a and b are the same variant with equal contents.
// Maps compare without regard to entry order.
func ValuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}

		for i := range av {
			if !ValuesEqual(av[i], bv[i]) {
				return false
			}
		}

		return true
	case Map:
		bv, ok := b.(Map)

		return ok && av.Equal(bv)
	case Range:
		bv, ok := b.(Range)

		return ok && av.Equal(bv)
	case nil:
		return b == nil
	default:
		return a == b
	}
}

// Property is a single key/value entry of a record.
type Property struct {
	Key   string
	Value Value
}

// Properties is an insertion-ordered record with unique keys.
type Properties []Property

// Get returns the value stored under key.
func (p Properties) Get(key string) (Value, bool) {
	for _, prop := range p {
		if prop.Key == key {
			return prop.Value, true
		}
	}

	return nil, false
}

// Set stores value under key. An existing key keeps its position.
func (p Properties) Set(key string, value Value) Properties {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value

			return p
		}
	}

	return append(p, Property{Key: key, Value: value})
}

// Keys returns the keys in insertion order.
func (p Properties) Keys() []string {
	keys := make([]string, len(p))
	for i, prop := range p {
		keys[i] = prop.Key
	}

	return keys
}

// Equal reports whether both records hold the same entries, ignoring order.
func (p Properties) Equal(o Properties) bool {
	if len(p) != len(o) {
		return false
	}

	for _, prop := range p {
		v, ok := o.Get(prop.Key)
		if !ok || !ValuesEqual(prop.Value, v) {
			return false
		}
	}

	return true
}
