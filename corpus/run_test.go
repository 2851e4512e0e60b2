package corpus_test

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gram-data/gram-go/corpus"
)

func TestCaseRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		c        corpus.Case
		want     corpus.Action
		wantDiff bool
	}{
		{
			name: "matching tree",
			c:    corpus.Case{Input: "(a)-->(b)", Expected: "(gram_pattern (relationship_pattern left: (node_pattern identifier: (symbol)) kind: (right_arrow) right: (node_pattern identifier: (symbol))))"},
			want: corpus.ActionPass,
		},
		{
			name:     "structure mismatch",
			c:        corpus.Case{Input: "(a)", Expected: "(gram_pattern (node_pattern labels: (labels (symbol))))"},
			want:     corpus.ActionFail,
			wantDiff: true,
		},
		{
			name: "expected error raised",
			c:    corpus.Case{Input: "(a", Attributes: []string{"error"}},
			want: corpus.ActionPass,
		},
		{
			name: "expected error missing",
			c:    corpus.Case{Input: "(a)", Expected: "(gram_pattern (ERROR))"},
			want: corpus.ActionFail,
		},
		{
			name: "unexpected parse error",
			c:    corpus.Case{Input: "(a", Expected: "(gram_pattern (node_pattern))"},
			want: corpus.ActionFail,
		},
		{
			name: "unreadable tree",
			c:    corpus.Case{Input: "(a)", Expected: "(gram_pattern"},
			want: corpus.ActionError,
		},
		{
			name: "unknown node type",
			c:    corpus.Case{Input: "(a)", Expected: "(gram_pattern (widget))"},
			want: corpus.ActionError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := tt.c.Run()
			assert.Equal(t, tt.want, out.Action, "reason: %s, error: %v", out.Reason, out.Error)
			assert.Equal(t, tt.wantDiff, out.Diff != "")
		})
	}
}

func TestRunTestdata(t *testing.T) {
	t.Parallel()

	cases, err := corpus.LoadDir("testdata")
	require.NoError(t, err)

	report, err := corpus.Run(context.Background(), cases, corpus.WithLogger(zap.NewNop()))
	require.NoError(t, err)

	for _, cr := range report.Failures() {
		t.Errorf("%s: %s %s\n%v\n%s", cr.Case.ID(), cr.Status, cr.Reason, cr.Error, cr.Diff)
	}

	stats := report.Stats()
	assert.Equal(t, len(cases), stats.Total)
	assert.Equal(t, len(cases), stats.Passed)
	assert.InDelta(t, 100.0, stats.PassRate, 0.001)
	assert.True(t, report.Ok())
}

func failingCases() []*corpus.Case {
	return []*corpus.Case{
		{Name: "one", File: "a.txt", Input: "(a)", Expected: "(gram_pattern (node_pattern identifier: (symbol)))"},
		{Name: "two", File: "a.txt", Input: "(a)", Expected: "(gram_pattern (node_pattern))"},
		{Name: "three", File: "b.txt", Input: "(a)", Expected: "(gram_pattern (node_pattern))"},
	}
}

func TestRunnerFailFast(t *testing.T) {
	t.Parallel()

	report, err := corpus.Run(context.Background(), failingCases(), corpus.WithFailFast(true))
	require.NoError(t, err)

	stats := report.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Passed)
	assert.Equal(t, 1, stats.Failed)
	assert.False(t, report.Ok())
}

func TestRunnerFilter(t *testing.T) {
	t.Parallel()

	report, err := corpus.Run(context.Background(), failingCases(), corpus.WithFilter(regexp.MustCompile(`::one$`)))
	require.NoError(t, err)

	stats := report.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Passed)
	assert.Equal(t, 2, stats.Skipped)
	assert.True(t, report.Ok())
}

func TestRunnerCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := corpus.Run(ctx, failingCases())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.Stats().Total)
}

func TestReportSummary(t *testing.T) {
	t.Parallel()

	report, err := corpus.Run(context.Background(), failingCases())
	require.NoError(t, err)

	byFile := report.FailuresByFile()
	assert.Len(t, byFile["a.txt"], 1)
	assert.Len(t, byFile["b.txt"], 1)

	var buf bytes.Buffer
	require.NoError(t, report.Summary(&buf))

	out := buf.String()
	assert.Contains(t, out, "3 cases, 1 passed, 2 failed, 0 errors, 0 skipped")
	assert.Contains(t, out, "a.txt (1 failures)")
	assert.Contains(t, out, "two (line 0)")
	assert.Contains(t, out, "b.txt (1 failures)")
}
