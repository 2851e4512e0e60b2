package corpus_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	gram "github.com/gram-data/gram-go"
	"github.com/gram-data/gram-go/corpus"
)

func TestExpectedShapes(t *testing.T) {
	t.Parallel()

	ident := corpus.Shape{Identified: true}

	tests := []struct {
		name string
		tree string
		want []corpus.Shape
	}{
		{
			name: "comments skipped",
			tree: "(gram_pattern (comment) (node_pattern identifier: (symbol)))",
			want: []corpus.Shape{ident},
		},
		{
			name: "labels and record",
			tree: `(gram_pattern (node_pattern labels: (labels (symbol) (symbol))
				record: (record (record_property key: (symbol) value: (integer)))))`,
			want: []corpus.Shape{{Labels: 2, Properties: 1}},
		},
		{
			name: "left arrow swaps",
			tree: `(gram_pattern (relationship_pattern
				left: (node_pattern identifier: (symbol))
				kind: (left_arrow labels: (labels (symbol)))
				right: (node_pattern)))`,
			want: []corpus.Shape{{Labels: 1, Elements: []corpus.Shape{{}, ident}}},
		},
		{
			name: "chain folds left",
			tree: `(gram_pattern (relationship_pattern
				left: (node_pattern identifier: (symbol))
				kind: (right_arrow)
				right: (relationship_pattern
					left: (node_pattern)
					kind: (right_arrow identifier: (symbol))
					right: (node_pattern labels: (labels (symbol))))))`,
			want: []corpus.Shape{{
				Identified: true,
				Elements: []corpus.Shape{
					{Elements: []corpus.Shape{ident, {}}},
					{Labels: 1},
				},
			}},
		},
		{
			name: "subject pattern",
			tree: `(gram_pattern (subject_pattern identifier: (symbol)
				elements: (subject_pattern_elements (reference identifier: (symbol)) (comment) (node_pattern))))`,
			want: []corpus.Shape{{Identified: true, Elements: []corpus.Shape{ident, {}}}},
		},
		{
			name: "annotations",
			tree: `(gram_pattern (annotated_pattern
				annotations: (annotations (annotation key: (symbol)) (annotation key: (symbol) value: (integer)))
				(node_pattern)))`,
			want: []corpus.Shape{{Properties: 2, Elements: []corpus.Shape{{}}}},
		},
		{
			name: "top-level record",
			tree: "(gram_pattern root: (record (record_property key: (symbol) value: (integer))))",
			want: []corpus.Shape{{Properties: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree, err := corpus.ParseSexp(tt.tree)
			require.NoError(t, err)

			got, err := corpus.ExpectedShapes(tree)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ExpectedShapes() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExpectedShapesBadTree(t *testing.T) {
	t.Parallel()

	for _, src := range []string{
		"(source_file (node_pattern))",
		"(gram_pattern (mystery))",
		"(gram_pattern (relationship_pattern left: (node_pattern)))",
		"(gram_pattern (annotated_pattern annotations: (annotations (annotation key: (symbol)))))",
	} {
		t.Run(src, func(t *testing.T) {
			t.Parallel()

			tree, err := corpus.ParseSexp(src)
			require.NoError(t, err)

			_, err = corpus.ExpectedShapes(tree)
			require.ErrorIs(t, err, corpus.ErrBadTree)
		})
	}
}

func TestShapeOf(t *testing.T) {
	t.Parallel()

	patterns, err := gram.Parse("(a:A {k: 1})-[:R]->(b)")
	require.NoError(t, err)

	want := []corpus.Shape{{
		Labels: 1,
		Elements: []corpus.Shape{
			{Identified: true, Labels: 1, Properties: 1},
			{Identified: true},
		},
	}}

	if diff := cmp.Diff(want, corpus.ShapesOf(patterns), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("ShapesOf() mismatch (-want +got):\n%s", diff)
	}
}
