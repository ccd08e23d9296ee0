package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
)

// handleTextDocumentDidSave recompiles when the client includes the saved
// text; a lili.toml next to the file may have changed too.
func (h *Handler) handleTextDocumentDidSave(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DidSaveTextDocumentParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	if params.Text == nil {
		return nil, nil
	}
	return nil, h.updateFile(ctx, params.TextDocument.URI, *params.Text, nil)
}
