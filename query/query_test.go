package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gram "github.com/gram-data/gram-go"
	"github.com/gram-data/gram-go/query"
)

const people = `
(alice:Person {name: "Alice", age: 34, status: active})
(bob:Person:Admin {name: "Bob", age: 17, status: inactive})
(acme:Company {name: "Acme", age: 90, status: active})
(alice)-[:WORKS_AT]->(acme)
[team:Group {age: 0, name: "Team", status: active} | alice, bob, (carol:Person)]
`

func identities(patterns []gram.Pattern[gram.Subject]) []string {
	ids := []string{}
	for _, p := range patterns {
		ids = append(ids, p.Value.Identity)
	}

	return ids
}

func TestSelect(t *testing.T) {
	t.Parallel()

	patterns, err := gram.Parse(people)
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"label", `"Person" in labels`, []string{"alice", "bob"}},
		{"identity", `identity == "acme"`, []string{"acme"}},
		{"numeric property", `"age" in properties && properties.age >= 18`, []string{"alice", "acme"}},
		{"symbol property", `properties.status == "active" && form == "node"`, []string{"alice", "acme"}},
		{"form", `form == "path"`, []string{""}},
		{"element count", `len(elements) == 3`, []string{"team"}},
		{"closure over elements", `any(elements, {.identity == "acme"})`, []string{""}},
		{"no match", `"Robot" in labels`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := query.Compile(tt.query)
			require.NoError(t, err)

			got, err := f.Select(patterns)
			require.NoError(t, err)
			assert.Equal(t, tt.want, identities(got))
		})
	}
}

func TestSelectDescend(t *testing.T) {
	t.Parallel()

	patterns, err := gram.Parse(people)
	require.NoError(t, err)

	f := query.MustCompile(`"Person" in labels`)

	got, err := f.Select(patterns, query.Descend())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, identities(got))

	nested := query.MustCompile(`depth > 0 && identity == "alice"`)

	got, err = nested.Select(patterns, query.Descend())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "alice"}, identities(got))
}

func TestMatch(t *testing.T) {
	t.Parallel()

	p, err := gram.ParseOne("(x {height: 168cm, span: 1..5, note: md`# hi`, score: 2.0})")
	require.NoError(t, err)
	require.NotNil(t, p)

	for _, q := range []string{
		`properties.height.unit == "cm"`,
		`properties.height.value > 100`,
		`properties.span.type == "range"`,
		`properties.note.content == "# hi"`,
		`properties.score > 1.5 && properties.score < 2.5`,
		`form == "node" && depth == 0 && len(labels) == 0`,
	} {
		t.Run(q, func(t *testing.T) {
			t.Parallel()

			ok, err := query.MustCompile(q).Match(*p)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	for _, q := range []string{
		`identity`,
		`labels +`,
		`unknown == 1`,
	} {
		t.Run(q, func(t *testing.T) {
			t.Parallel()

			_, err := query.Compile(q)
			require.ErrorIs(t, err, query.ErrInvalidQuery)
		})
	}

	assert.Panics(t, func() { query.MustCompile(`labels +`) })
}

func TestMatchRuntimeError(t *testing.T) {
	t.Parallel()

	p, err := gram.ParseOne(`(a)`)
	require.NoError(t, err)

	f := query.MustCompile(`properties.age > 30`)

	_, err = f.Match(*p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `query "properties.age > 30"`)

	_, err = f.Select([]gram.Pattern[gram.Subject]{*p})
	require.Error(t, err)
}

func TestFilterString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"A" in labels`, query.MustCompile(`"A" in labels`).String())
}
