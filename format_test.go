package gram_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gram "github.com/gram-data/gram-go"
)

func TestSerialize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"node", "(alice:Person)", "(alice:Person)"},
		{"anonymous node", "( )", "()"},
		{
			"normalizes spacing and separators",
			"( a : Person:Admin { name : 'Alice' , age::30 } )",
			`(a:Person:Admin {name: "Alice", age: 30})`,
		},
		{"path", "(a)-->(b)-->(c)", "(a)-->(b)-->(c)"},
		{"left arrow becomes right arrow", "(a)<--(b)", "(b)-->(a)"},
		{"labelled relationship", "(a)-[:KNOWS]->(b)", "(a)-[:KNOWS]->(b)"},
		{"relationship properties", "(a)-[r {w: 1.5}]->(b)", "(a)-[r {w: 1.5}]->(b)"},
		{"references become nodes", "[g | a, (b)]", "[g | (a), (b)]"},
		{"anonymous subject pattern", "[ | (a)]", "[ | (a)]"},
		{"annotation", "@since(2020) (a)", "@since(2020) (a)"},
		{"multiple annotations", "@a(1) @b (x)", "@a(1) @b(true) (x)"},
		{"top-level record", "{ k : 1 }", "{k: 1}"},
		{"quoted identity", `("my node")`, `("my node")`},
		{"string with single quote", `(a {s: "it's"})`, `(a {s: "it's"})`},
		{"string with double quotes", `(a {s: 'say "hi"'})`, `(a {s: 'say "hi"'})`},
		{
			"value variants",
			"(a {r: 1..5, i: 1...5, open: ..5, m: 10cm, d: 1.0, h: 0xFF, t: md`# hi`, sym: foo, arr: [1, \"x\", true]})",
			"(a {r: 1..5, i: 1...5, open: ..5, m: 10cm, d: 1.0, h: 255, t: md`# hi`, sym: foo, arr: [1, \"x\", true]})",
		},
		{"nested map", "(a {m: {x: 1, y: {}}})", "(a {m: {x: 1, y: {}}})"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := gram.ParseOne(tt.input)
			require.NoError(t, err)
			require.NotNil(t, p)

			assert.Equal(t, tt.expected, gram.Serialize(*p))
		})
	}
}

func TestSerializeAll(t *testing.T) {
	t.Parallel()

	patterns, err := gram.Parse("(a) (b)-->(c)")
	require.NoError(t, err)

	assert.Equal(t, "(a)\n(b)-->(c)\n", gram.SerializeAll(patterns))
	assert.Equal(t, "(a)\n\n(b)-->(c)\n", gram.SerializeAllWith(patterns, gram.FormatOptions{BlankLines: true}))
	assert.Empty(t, gram.SerializeAll(nil))
}

func TestSerializeConstructedPatterns(t *testing.T) {
	t.Parallel()

	a, b := node("a"), node("b")

	tests := []struct {
		name     string
		pattern  gram.Pattern[gram.Subject]
		expected string
	}{
		{
			name:     "atomic right element with pattern left",
			pattern:  rel(a, rel(a, b)),
			expected: "[ | (a), (a)-->(b)]",
		},
		{
			name:     "three elements",
			pattern:  gram.New(gram.Subject{Identity: "g"}, a, b, a),
			expected: "[g | (a), (b), (a)]",
		},
		{
			name: "nested annotation shapes",
			pattern: gram.New(gram.Subject{Properties: props("x", gram.Integer(1))},
				gram.New(gram.Subject{Properties: props("y", gram.Integer(2))}, a),
			),
			expected: "@x(1) [{y: 2} | (a)]",
		},
		{
			name:     "quoted property key blocks annotation form",
			pattern:  gram.New(gram.Subject{Properties: props("a key", gram.Integer(1))}, a),
			expected: `[{"a key": 1} | (a)]`,
		},
		{
			name:     "identity needing quotes",
			pattern:  node("two words", "Has Space"),
			expected: `("two words":"Has Space")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := gram.Serialize(tt.pattern)
			assert.Equal(t, tt.expected, got)

			back, err := gram.ParseOne(got)
			require.NoError(t, err)
			require.NotNil(t, back)

			if diff := cmp.Diff(tt.pattern, *back, cmpPatterns); diff != "" {
				t.Errorf("reparse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"(alice:Person {name: 'Alice', age: 30})",
		"(a)-->(b)<--(c)--(d)",
		"(a)<--(b)<--(c)",
		"(a)<--(b)-->(c)<--(d)",
		"(a)-[e1:KNOWS {since: 2020}]->(b)-[:LIKES]->(c)",
		"(a)<=[:OWNS]=(b)",
		"[team:Group {size: 3} | alice, (bob), [sub | (c)-->(d)]]",
		"@since(2020) @draft (a)-->(b)",
		"{meta: true} (a)",
		"(x {s: 'tab\\there', q: \"dq\\\"\", b: `back`, mixed: 'a\"b`c'})",
		"(x {t: md`# title`, u: url`https://example.com`, f: ```html\n<p>x</p>\n```})",
		"(x {r: ..5, s: 5.., n: -3, d: -0.25, m: 1.5kg, arr: [], sym: foo-bar.baz})",
		"(x {nested: {deep: {deeper: [1, 2, 3]}}})",
		"(\"quoted id\":`quoted label`)",
		"(1abc)",
		"({m: 0.0xkg, n: -0.0Xs, o: 0.5xkg})",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			first, err := gram.Parse(input)
			require.NoError(t, err)

			text := gram.SerializeAll(first)

			second, err := gram.Parse(text)
			require.NoError(t, err, "serialized form:\n%s", text)

			if diff := cmp.Diff(first, second, cmpPatterns); diff != "" {
				t.Errorf("round trip mismatch (-first +second):\n%s\nserialized:\n%s", diff, text)
			}

			assert.Equal(t, text, gram.SerializeAll(second), "serialization is not stable")
		})
	}
}

func TestValueString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    gram.Value
		expected string
	}{
		{"string escapes", gram.Str("a\nb\\c"), `"a\nb\\c"`},
		{"all quote styles", gram.Str("a\"b'c`"), `"a\"b'c` + "`" + `"`},
		{"whole decimal", gram.Decimal(2), "2.0"},
		{"negative decimal", gram.Decimal(-0.5), "-0.5"},
		{"integer", gram.Integer(-42), "-42"},
		{"keyword symbol is quoted", gram.Symbol("true"), `"true"`},
		{"digit symbol is quoted", gram.Symbol("1st"), `"1st"`},
		{"open range", gram.Range{Upper: ptr(int64(3))}, "..3"},
		{"unbounded range", gram.Range{Inclusive: true}, "..."},
		{"measurement", gram.Measurement{Magnitude: 1.5, Unit: "kg"}, "1.5kg"},
		{"zero measurement before x unit", gram.Measurement{Unit: "xkg"}, "0.0xkg"},
		{"zero measurement", gram.Measurement{Unit: "kg"}, "0kg"},
		{"tagged with backtick", gram.TaggedString{Tag: "md", Content: "a`b"}, "md`a\\`b`"},
		{"array", gram.Array{gram.Integer(1), gram.Str("x")}, `[1, "x"]`},
		{"map", gram.Map{{Key: "k", Value: gram.Boolean(false)}}, "{k: false}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.value.String())
		})
	}
}

func TestFormOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  gram.Form
	}{
		{"(a)", gram.FormNode},
		{"{k: 1}", gram.FormNode},
		{"(a)-->(b)", gram.FormPath},
		{"(a)-->(b)-->(c)", gram.FormPath},
		{"[r | a, b]", gram.FormPath},
		{"(a)-->(b)<--(c)", gram.FormSubject},
		{"@x(1) (a)", gram.FormAnnotation},
		{"[g | a]", gram.FormSubject},
		{"[g | a, b, c]", gram.FormSubject},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			p, err := gram.ParseOne(tt.input)
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Equal(t, tt.want, gram.FormOf(*p))
		})
	}
}
