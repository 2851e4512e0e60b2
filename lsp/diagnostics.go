package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	gram "github.com/gram-data/gram-go"
)

const diagnosticSource = "gram"

// Diagnose returns the diagnostics for content: none when it parses, one
// for the first syntax error otherwise.
func Diagnose(content string) []protocol.Diagnostic {
	perr := check(content)
	if perr == nil {
		return []protocol.Diagnostic{}
	}

	return []protocol.Diagnostic{convertError(content, perr)}
}

// publishDiagnostics sends the diagnostics for doc to the client.
func (s *Server) publishDiagnostics(ctx context.Context, doc *Document) {
	diagnostics := []protocol.Diagnostic{}
	if doc.Err != nil {
		diagnostics = append(diagnostics, convertError(doc.Content, doc.Err))
	}

	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     uint32(doc.Version), //nolint:gosec // LSP version numbers are always non-negative
		Diagnostics: diagnostics,
	})
	if err != nil {
		s.logger.Error("publishDiagnostics: RPC failed", zap.Error(err))
	}
}

// convertError converts a parse error to an LSP diagnostic. Empty spans are
// widened to cover one character so editors can underline them.
func convertError(content string, perr *gram.ParseError) protocol.Diagnostic {
	start := perr.Span.Start.Offset
	end := perr.Span.End.Offset

	if end <= start {
		end = nextRuneEnd(content, start)
	}

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: positionAt(content, start),
			End:   positionAt(content, end),
		},
		Severity: convertSeverity(perr.Kind),
		Code:     perr.Kind.String(),
		Source:   diagnosticSource,
		Message:  perr.Message,
	}
}

func convertSeverity(kind gram.ErrorKind) protocol.DiagnosticSeverity {
	if kind == gram.KindInternal {
		return protocol.DiagnosticSeverityWarning
	}

	return protocol.DiagnosticSeverityError
}
