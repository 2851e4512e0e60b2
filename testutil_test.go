package gram_test

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	gram "github.com/gram-data/gram-go"
)

// cmpPatterns treats nil and empty element slices alike; Subject.Equal
// handles label and property order.
var cmpPatterns = cmp.Options{
	cmpopts.EquateEmpty(),
}

// ptr returns a pointer to the given value.
func ptr[T any](v T) *T {
	return &v
}

// node returns an atomic pattern for an identity and labels.
func node(id string, labels ...string) gram.Pattern[gram.Subject] {
	return gram.Point(gram.Subject{Identity: id, Labels: labels})
}

// props builds a record from alternating keys and values.
func props(kv ...any) gram.Properties {
	var p gram.Properties

	for i := 0; i+1 < len(kv); i += 2 {
		p = p.Set(kv[i].(string), kv[i+1].(gram.Value))
	}

	return p
}

// rel returns an anonymous relationship between two patterns.
func rel(left, right gram.Pattern[gram.Subject]) gram.Pattern[gram.Subject] {
	return gram.New(gram.Subject{}, left, right)
}
