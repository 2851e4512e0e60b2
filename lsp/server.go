// Package lsp implements a Language Server Protocol server for gram files.
//
// The server keeps open documents in memory, publishes a diagnostic for the
// first syntax error in each one, and formats documents with the canonical
// serializer.
package lsp

import (
	"context"
	"sync"
	"time"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	gram "github.com/gram-data/gram-go"
)

// Client is the part of protocol.Client the server calls back into.
type Client interface {
	PublishDiagnostics(ctx context.Context, params *protocol.PublishDiagnosticsParams) error
	LogMessage(ctx context.Context, params *protocol.LogMessageParams) error
}

// Server holds the state of one language-server session.
type Server struct {
	client Client
	logger *zap.Logger
	format gram.FormatOptions

	// Document state
	mu        sync.RWMutex
	documents map[protocol.DocumentURI]*Document

	// Server state
	initialized bool
	shutdown    bool
	exit        chan struct{}
	exitOnce    sync.Once
}

// Document represents an open document in the server.
type Document struct {
	URI     protocol.DocumentURI
	Version int32
	Content string

	// Err is the first syntax error in Content, or nil.
	Err *gram.ParseError
}

// Option configures a Server.
type Option func(*Server)

// WithFormatOptions sets the layout used by document formatting.
func WithFormatOptions(opts gram.FormatOptions) Option {
	return func(s *Server) {
		s.format = opts
	}
}

// NewServer creates a server that reports to client.
func NewServer(client Client, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		client:    client,
		logger:    logger,
		documents: make(map[protocol.DocumentURI]*Document),
		exit:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Done is closed once the client sends the exit notification.
func (s *Server) Done() <-chan struct{} {
	return s.exit
}

// Initialize handles the initialize request.
func (s *Server) Initialize(_ context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.logger.Info("Initialize", zap.String("rootURI", string(params.RootURI)))

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			// Full document sync - client sends entire content on change
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			DocumentFormattingProvider: true,
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "gram-lsp",
			Version: "0.1.0",
		},
	}, nil
}

// Initialized handles the initialized notification.
func (s *Server) Initialized(_ context.Context, _ *protocol.InitializedParams) error {
	s.logger.Info("Initialized")

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()

	return nil
}

// Shutdown handles the shutdown request.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info("Shutdown")

	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	return nil
}

// Exit handles the exit notification.
func (s *Server) Exit(_ context.Context) error {
	s.logger.Info("Exit")
	s.exitOnce.Do(func() { close(s.exit) })

	return nil
}

// DidOpen handles textDocument/didOpen notifications.
func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.logger.Info("DidOpen", zap.String("uri", string(params.TextDocument.URI)))

	doc := &Document{
		URI:     params.TextDocument.URI,
		Version: params.TextDocument.Version,
		Content: params.TextDocument.Text,
	}
	doc.Err = check(doc.Content)

	// Hold lock only for document map update
	s.mu.Lock()
	s.documents[doc.URI] = doc
	s.mu.Unlock()

	s.publishDiagnostics(ctx, doc)

	return nil
}

// DidChange handles textDocument/didChange notifications.
func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	start := time.Now()

	s.mu.Lock()

	doc, ok := s.documents[params.TextDocument.URI]
	if !ok {
		s.mu.Unlock()
		s.logger.Warn("DidChange for unknown document", zap.String("uri", string(params.TextDocument.URI)))

		return nil
	}

	if len(params.ContentChanges) == 0 {
		s.mu.Unlock()

		return nil
	}

	// Full sync: the last change holds the whole document.
	doc.Content = params.ContentChanges[len(params.ContentChanges)-1].Text
	doc.Version = params.TextDocument.Version
	doc.Err = check(doc.Content)
	snapshot := *doc

	s.mu.Unlock()

	// Publish outside the lock; the client may send requests meanwhile.
	s.publishDiagnostics(ctx, &snapshot)

	s.logger.Debug("DidChange",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Int32("version", params.TextDocument.Version),
		zap.Bool("valid", snapshot.Err == nil),
		zap.Duration("elapsed", time.Since(start)))

	return nil
}

// DidClose handles textDocument/didClose notifications.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.logger.Info("DidClose", zap.String("uri", string(params.TextDocument.URI)))

	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	s.mu.Unlock()

	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	if err != nil {
		s.logger.Error("Failed to clear diagnostics", zap.Error(err))
	}

	return nil
}

// DidSave handles textDocument/didSave notifications.
func (s *Server) DidSave(_ context.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.logger.Debug("DidSave", zap.String("uri", string(params.TextDocument.URI)))

	return nil
}

// getDocument returns a copy of the document stored under uri.
func (s *Server) getDocument(uri protocol.DocumentURI) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[uri]
	if !ok {
		return Document{}, false
	}

	return *doc, true
}

// check validates content and returns its first syntax error.
func check(content string) *gram.ParseError {
	perr, _ := gram.AsParseError(gram.Validate(content))

	return perr
}
