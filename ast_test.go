package gram_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	gram "github.com/gram-data/gram-go"
)

func TestParseToASTJSON(t *testing.T) {
	t.Parallel()

	ast, err := gram.ParseToAST("(a:Person {age: 30, kind: human, height: 180cm, span: 1..})")
	require.NoError(t, err)

	data, err := json.Marshal(ast)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"subject": {
			"identity": "a",
			"labels": ["Person"],
			"properties": {
				"age": 30,
				"kind": {"type": "symbol", "value": "human"},
				"height": {"type": "measurement", "unit": "cm", "value": 180},
				"span": {"type": "range", "lower": 1, "upper": null}
			}
		},
		"elements": []
	}`, string(data))
}

func TestParseToASTErrors(t *testing.T) {
	t.Parallel()

	_, err := gram.ParseToAST("")
	require.ErrorIs(t, err, gram.ErrNoPattern)

	_, err = gram.ParseToAST("(a) (b)")
	require.ErrorIs(t, err, gram.ErrMultiplePatterns)

	_, err = gram.ParseToAST("(a")
	require.ErrorIs(t, err, gram.ErrUnmatchedDelimiter)
}

func TestParseToASTs(t *testing.T) {
	t.Parallel()

	asts, err := gram.ParseToASTs("(a)-->(b) [g | c]")
	require.NoError(t, err)
	require.Len(t, asts, 2)

	assert.Len(t, asts[0].Elements, 2)
	assert.Equal(t, "b", asts[0].Elements[1].Subject.Identity)
	assert.Equal(t, "g", asts[1].Subject.Identity)
	assert.Equal(t, "c", asts[1].Elements[0].Subject.Identity)
}

func TestASTRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"(a:Person:Admin {name: 'Ada', age: 36, score: 9.5, ok: true})",
		"(a)-[:KNOWS {since: 2020}]->(b)",
		"[g | (a), [h | b]]",
		"(x {t: md`# hi`, r: 1...3, open: ..2, m: 2kg, arr: [1, two, '3'], map: {k: v}})",
		"(x {d: 1.0, n: -2.0, arr: [3.0, 3], m: 2.0kg})",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			p, err := gram.ParseOne(input)
			require.NoError(t, err)
			require.NotNil(t, p)

			back, err := gram.FromAST(gram.ToAST(*p))
			require.NoError(t, err)

			if diff := cmp.Diff(*p, back, cmpPatterns); diff != "" {
				t.Errorf("FromAST(ToAST()) mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromASTDecodedJSON(t *testing.T) {
	t.Parallel()

	src := `{
		"subject": {
			"identity": "n",
			"labels": ["L"],
			"properties": {
				"count": 3,
				"ratio": 0.5,
				"sym": {"type": "symbol", "value": "s"},
				"tag": {"type": "tagged", "tag": "url", "content": "x"},
				"r": {"type": "range", "lower": null, "upper": 4, "inclusive": true}
			}
		},
		"elements": [{"subject": {"identity": "m", "labels": [], "properties": {}}, "elements": []}]
	}`

	dec := json.NewDecoder(bytes.NewReader([]byte(src)))
	dec.UseNumber()

	var ast gram.AstPattern
	require.NoError(t, dec.Decode(&ast))

	got, err := gram.FromAST(ast)
	require.NoError(t, err)

	expected := gram.New(
		gram.Subject{
			Identity: "n",
			Labels:   []string{"L"},
			Properties: props(
				"count", gram.Integer(3),
				"ratio", gram.Decimal(0.5),
				"sym", gram.Symbol("s"),
				"tag", gram.TaggedString{Tag: "url", Content: "x"},
				"r", gram.Range{Upper: ptr(int64(4)), Inclusive: true},
			),
		},
		node("m"),
	)

	if diff := cmp.Diff(expected, got, cmpPatterns); diff != "" {
		t.Errorf("FromAST mismatch (-want +got):\n%s", diff)
	}

	// Restored properties come back in key order.
	assert.Equal(t, []string{"count", "r", "ratio", "sym", "tag"}, got.Value.Properties.Keys())
}

func TestASTKeepsWholeDecimals(t *testing.T) {
	t.Parallel()

	ast, err := gram.ParseToAST("(a {d: 1.0, i: 1, big: 1000000.0, arr: [2.0], nested: {x: -3.0}})")
	require.NoError(t, err)

	expected := props(
		"arr", gram.Array{gram.Decimal(2)},
		"big", gram.Decimal(1e6),
		"d", gram.Decimal(1),
		"i", gram.Integer(1),
		"nested", gram.Map(props("x", gram.Decimal(-3))),
	)

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(ast)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"d":1.0`)

		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		var decoded gram.AstPattern
		require.NoError(t, dec.Decode(&decoded))

		got, err := gram.FromAST(decoded)
		require.NoError(t, err)

		if diff := cmp.Diff(expected, got.Value.Properties, cmpPatterns); diff != "" {
			t.Errorf("properties mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		data, err := yaml.Marshal(ast)
		require.NoError(t, err)

		var decoded gram.AstPattern
		require.NoError(t, yaml.Unmarshal(data, &decoded))

		got, err := gram.FromAST(decoded)
		require.NoError(t, err)

		if diff := cmp.Diff(expected, got.Value.Properties, cmpPatterns); diff != "" {
			t.Errorf("properties mismatch (-want +got):\n%s\n%s", diff, data)
		}
	})
}

func TestFromASTYAML(t *testing.T) {
	t.Parallel()

	src := `
subject:
  identity: a
  labels: [X]
  properties:
    n: 7
    m: {type: measurement, unit: cm, value: 12}
elements: []
`

	var ast gram.AstPattern
	require.NoError(t, yaml.Unmarshal([]byte(src), &ast))

	got, err := gram.FromAST(ast)
	require.NoError(t, err)

	n, ok := got.Value.Properties.Get("n")
	require.True(t, ok)
	assert.Equal(t, gram.Integer(7), n)

	m, ok := got.Value.Properties.Get("m")
	require.True(t, ok)
	assert.Equal(t, gram.Measurement{Magnitude: 12, Unit: "cm"}, m)
}

func TestFromASTInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
	}{
		{"unsupported type", struct{}{}},
		{"symbol without value", map[string]any{"type": "symbol"}},
		{"measurement without unit", map[string]any{"type": "measurement", "value": 1}},
		{"fractional range bound", map[string]any{"type": "range", "lower": 1.5}},
		{"tagged without content", map[string]any{"type": "tagged", "tag": "t"}},
		{"tag with a space", map[string]any{"type": "tagged", "tag": "my tag", "content": "x"}},
		{"empty tag", map[string]any{"type": "tagged", "tag": "", "content": "x"}},
		{"tag with a backtick", map[string]any{"type": "tagged", "tag": "md`", "content": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := gram.FromAST(gram.AstPattern{
				Subject: gram.AstSubject{Properties: map[string]any{"k": tt.value}},
			})
			require.ErrorIs(t, err, gram.ErrInvalidAST)
		})
	}
}
