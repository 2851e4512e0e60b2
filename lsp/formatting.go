package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	gram "github.com/gram-data/gram-go"
)

// Formatting handles textDocument/formatting. Documents with syntax errors
// are left alone.
func (s *Server) Formatting(_ context.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok {
		s.logger.Warn("Formatting for unknown document", zap.String("uri", string(params.TextDocument.URI)))

		return nil, nil
	}

	formatted, ok := Format(doc.Content, s.format)
	if !ok || formatted == doc.Content {
		return []protocol.TextEdit{}, nil
	}

	return []protocol.TextEdit{{
		Range:   fullRange(doc.Content),
		NewText: formatted,
	}}, nil
}

// Format returns content in canonical layout, or false when it does not
// parse. Comments are not preserved.
func Format(content string, opts gram.FormatOptions) (string, bool) {
	patterns, err := gram.Parse(content)
	if err != nil {
		return "", false
	}

	return gram.SerializeAllWith(patterns, opts), true
}
