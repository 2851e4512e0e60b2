package gram

import "slices"

// Pattern is a recursive container of a value and an ordered list of
// nested patterns. Element order is significant.
type Pattern[V any] struct {
	Value    V
	Elements []Pattern[V]
}

// Point returns a pattern with no elements.
func Point[V any](v V) Pattern[V] {
	return Pattern[V]{Value: v}
}

// New returns a pattern holding v and the given elements.
func New[V any](v V, elements ...Pattern[V]) Pattern[V] {
	return Pattern[V]{Value: v, Elements: elements}
}

// IsAtomic reports whether the pattern has no elements.
func (p Pattern[V]) IsAtomic() bool {
	return len(p.Elements) == 0
}

// Subject is the value carried by gram patterns: an identity, a set of
// labels and a record of properties.
type Subject struct {
	// Identity is empty for anonymous subjects.
	Identity   string
	Labels     []string
	Properties Properties
}

// HasLabel reports whether label is in the label set.
func (s Subject) HasLabel(label string) bool {
	return slices.Contains(s.Labels, label)
}

// AddLabel adds label to the set, ignoring duplicates.
func (s *Subject) AddLabel(label string) {
	if !s.HasLabel(label) {
		s.Labels = append(s.Labels, label)
	}
}

// IsEmpty reports whether the subject has no identity, labels or properties.
func (s Subject) IsEmpty() bool {
	return s.Identity == "" && len(s.Labels) == 0 && len(s.Properties) == 0
}

// Equal compares identities, label sets and property records.
// Label and property order is ignored.
func (s Subject) Equal(o Subject) bool {
	if s.Identity != o.Identity || len(s.Labels) != len(o.Labels) {
		return false
	}

	for _, l := range s.Labels {
		if !o.HasLabel(l) {
			return false
		}
	}

	return s.Properties.Equal(o.Properties)
}

// Equal reports whether two subject patterns are structurally equal.
func Equal(a, b Pattern[Subject]) bool {
	if !a.Value.Equal(b.Value) || len(a.Elements) != len(b.Elements) {
		return false
	}

	for i := range a.Elements {
		if !Equal(a.Elements[i], b.Elements[i]) {
			return false
		}
	}

	return true
}
