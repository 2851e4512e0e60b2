package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// Handler returns the JSON-RPC handler that dispatches requests to s.
// Unknown methods are answered with MethodNotFound.
func (s *Server) Handler() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		s.logger.Debug("request", zap.String("method", req.Method()))

		switch req.Method() {
		case "initialize":
			var params protocol.InitializeParams
			if err := decode(req, &params); err != nil {
				return reply(ctx, nil, err)
			}

			result, err := s.Initialize(ctx, &params)

			return reply(ctx, result, err)

		case "initialized":
			var params protocol.InitializedParams

			return reply(ctx, nil, s.Initialized(ctx, &params))

		case "shutdown":
			return reply(ctx, nil, s.Shutdown(ctx))

		case "exit":
			return reply(ctx, nil, s.Exit(ctx))

		case "textDocument/didOpen":
			var params protocol.DidOpenTextDocumentParams
			if err := decode(req, &params); err != nil {
				return reply(ctx, nil, err)
			}

			return reply(ctx, nil, s.DidOpen(ctx, &params))

		case "textDocument/didChange":
			var params protocol.DidChangeTextDocumentParams
			if err := decode(req, &params); err != nil {
				return reply(ctx, nil, err)
			}

			return reply(ctx, nil, s.DidChange(ctx, &params))

		case "textDocument/didClose":
			var params protocol.DidCloseTextDocumentParams
			if err := decode(req, &params); err != nil {
				return reply(ctx, nil, err)
			}

			return reply(ctx, nil, s.DidClose(ctx, &params))

		case "textDocument/didSave":
			var params protocol.DidSaveTextDocumentParams
			if err := decode(req, &params); err != nil {
				return reply(ctx, nil, err)
			}

			return reply(ctx, nil, s.DidSave(ctx, &params))

		case "textDocument/formatting":
			var params protocol.DocumentFormattingParams
			if err := decode(req, &params); err != nil {
				return reply(ctx, nil, err)
			}

			edits, err := s.Formatting(ctx, &params)

			return reply(ctx, edits, err)

		default:
			return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
		}
	}
}

func decode(req jsonrpc2.Request, v any) error {
	if err := json.Unmarshal(req.Params(), v); err != nil {
		return fmt.Errorf("%q: %w: %v", req.Method(), jsonrpc2.ErrInvalidParams, err)
	}

	return nil
}
