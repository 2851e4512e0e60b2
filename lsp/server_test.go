package lsp

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	gram "github.com/gram-data/gram-go"
)

type fakeClient struct {
	mu          sync.Mutex
	diagnostics []*protocol.PublishDiagnosticsParams
	logs        []*protocol.LogMessageParams
}

func (c *fakeClient) PublishDiagnostics(_ context.Context, params *protocol.PublishDiagnosticsParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.diagnostics = append(c.diagnostics, params)

	return nil
}

func (c *fakeClient) LogMessage(_ context.Context, params *protocol.LogMessageParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logs = append(c.logs, params)

	return nil
}

func (c *fakeClient) last() *protocol.PublishDiagnosticsParams {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.diagnostics) == 0 {
		return nil
	}

	return c.diagnostics[len(c.diagnostics)-1]
}

func newTestServer(t *testing.T) (*Server, *fakeClient) {
	t.Helper()

	client := &fakeClient{}

	return NewServer(client, zap.NewNop()), client
}

const testURI = protocol.DocumentURI("file:///tmp/test.gram")

func open(t *testing.T, s *Server, text string) {
	t.Helper()

	err := s.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: testURI, LanguageID: "gram", Version: 1, Text: text},
	})
	require.NoError(t, err)
}

func TestDidOpenPublishesDiagnostics(t *testing.T) {
	t.Parallel()

	s, client := newTestServer(t)

	open(t, s, "(a)\n(b")

	got := client.last()
	require.NotNil(t, got)
	assert.Equal(t, testURI, got.URI)
	assert.Equal(t, uint32(1), got.Version)
	require.Len(t, got.Diagnostics, 1)

	d := got.Diagnostics[0]
	assert.Equal(t, protocol.DiagnosticSeverityError, d.Severity)
	assert.Equal(t, "gram", d.Source)
	assert.Equal(t, gram.KindUnmatchedDelimiter.String(), d.Code)
	assert.Equal(t, uint32(1), d.Range.Start.Line)
	assert.Equal(t, uint32(0), d.Range.Start.Character)
}

func TestDidChangeClearsDiagnostics(t *testing.T) {
	t.Parallel()

	s, client := newTestServer(t)

	open(t, s, "(a")
	require.Len(t, client.last().Diagnostics, 1)

	err := s.DidChange(context.Background(), &protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: testURI}, Version: 2},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: "(a)"}},
	})
	require.NoError(t, err)

	got := client.last()
	assert.Equal(t, uint32(2), got.Version)
	assert.Empty(t, got.Diagnostics)
	assert.NotNil(t, got.Diagnostics)

	doc, ok := s.getDocument(testURI)
	require.True(t, ok)
	assert.Equal(t, "(a)", doc.Content)
	assert.Nil(t, doc.Err)
}

func TestDidChangeUnknownDocument(t *testing.T) {
	t.Parallel()

	s, client := newTestServer(t)

	err := s.DidChange(context.Background(), &protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: testURI}, Version: 2},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: "(a)"}},
	})
	require.NoError(t, err)
	assert.Nil(t, client.last())
}

func TestDidCloseClearsDiagnostics(t *testing.T) {
	t.Parallel()

	s, client := newTestServer(t)

	open(t, s, "(a")

	err := s.DidClose(context.Background(), &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	assert.Empty(t, client.last().Diagnostics)

	_, ok := s.getDocument(testURI)
	assert.False(t, ok)
}

func TestFormatting(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)

	open(t, s, "( a :Person )-->( b )\n")

	edits, err := s.Formatting(context.Background(), &protocol.DocumentFormattingParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, "(a:Person)-->(b)\n", edits[0].NewText)
	assert.Equal(t, protocol.Position{}, edits[0].Range.Start)
	assert.Equal(t, protocol.Position{Line: 1}, edits[0].Range.End)
}

func TestFormattingNoChange(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"(a)-->(b)\n", "(a"} {
		t.Run(text, func(t *testing.T) {
			t.Parallel()

			s, _ := newTestServer(t)

			open(t, s, text)

			edits, err := s.Formatting(context.Background(), &protocol.DocumentFormattingParams{
				TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
			})
			require.NoError(t, err)
			assert.Empty(t, edits)
		})
	}
}

func TestFormatOptions(t *testing.T) {
	t.Parallel()

	got, ok := Format("(a) (b)", gram.FormatOptions{BlankLines: true})
	require.True(t, ok)
	assert.Equal(t, "(a)\n\n(b)\n", got)

	_, ok = Format("(a", gram.FormatOptions{})
	assert.False(t, ok)
}

func TestDiagnose(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Diagnose("(a)-->(b)"))

	diags := Diagnose("(é) %")
	require.Len(t, diags, 1)
	assert.Equal(t, protocol.Position{Line: 0, Character: 4}, diags[0].Range.Start)
	assert.Equal(t, protocol.Position{Line: 0, Character: 5}, diags[0].Range.End)
	assert.Equal(t, gram.KindUnexpectedInput.String(), diags[0].Code)
}

func TestPositionAt(t *testing.T) {
	t.Parallel()

	content := "ab\n😀c\n"

	tests := []struct {
		offset int
		want   protocol.Position
	}{
		{0, protocol.Position{}},
		{2, protocol.Position{Character: 2}},
		{3, protocol.Position{Line: 1}},
		{7, protocol.Position{Line: 1, Character: 2}},
		{8, protocol.Position{Line: 1, Character: 3}},
		{100, protocol.Position{Line: 2}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, positionAt(content, tt.offset), "offset %d", tt.offset)
	}
}

type recorded struct {
	result any
	err    error
}

func call(t *testing.T, s *Server, method string, params any) recorded {
	t.Helper()

	req, err := jsonrpc2.NewCall(jsonrpc2.NewNumberID(1), method, params)
	require.NoError(t, err)

	var rec recorded

	reply := func(_ context.Context, result any, err error) error {
		rec = recorded{result: result, err: err}

		return nil
	}

	require.NoError(t, s.Handler()(context.Background(), reply, req))

	return rec
}

func TestHandler(t *testing.T) {
	t.Parallel()

	s, client := newTestServer(t)

	rec := call(t, s, "initialize", map[string]any{"processId": 1, "rootUri": "file:///tmp"})
	require.NoError(t, rec.err)

	result, ok := rec.result.(*protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, "gram-lsp", result.ServerInfo.Name)
	assert.Equal(t, true, result.Capabilities.DocumentFormattingProvider)

	rec = call(t, s, "textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{"uri": testURI, "languageId": "gram", "version": 3, "text": "(a)-->("},
	})
	require.NoError(t, rec.err)
	require.Len(t, client.last().Diagnostics, 1)

	rec = call(t, s, "textDocument/formatting", map[string]any{"textDocument": map[string]any{"uri": testURI}})
	require.NoError(t, rec.err)
	assert.Empty(t, rec.result)

	rec = call(t, s, "textDocument/hover", map[string]any{})
	require.ErrorIs(t, rec.err, jsonrpc2.ErrMethodNotFound)

	raw := json.RawMessage(`{"textDocument": 5}`)
	rec = call(t, s, "textDocument/didOpen", raw)
	require.ErrorIs(t, rec.err, jsonrpc2.ErrInvalidParams)

	rec = call(t, s, "shutdown", nil)
	require.NoError(t, rec.err)

	select {
	case <-s.Done():
		t.Fatal("server done before exit")
	default:
	}

	rec = call(t, s, "exit", nil)
	require.NoError(t, rec.err)
	<-s.Done()
}
