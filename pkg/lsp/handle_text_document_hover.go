package lsp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleTextDocumentHover(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params HoverParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.files[params.TextDocument.URI]
	if !ok || f.Table == nil {
		return nil, nil
	}

	id, form := identAt(f.Forms, params.Position)
	if id == nil {
		return nil, nil
	}

	// parameters shadow functions
	var typeInfo string
	if def, ok := enclosingDefinition(f, form); ok {
		if t, ok := def.ParamType(id.Name); ok {
			typeInfo = fmt.Sprintf("%s %s", id.Name, t)
		}
	}
	if typeInfo == "" {
		if def, ok := f.Table.Lookup(id.Name); ok {
			typeInfo = def.Signature()
		}
	}

	if typeInfo == "" {
		return nil, nil
	}

	slog.DebugContext(ctx, "hover result", "symbol", id.Name, "type", typeInfo)

	r := rangeOf(id.Loc)
	return &Hover{
		Contents: MarkupContent{
			Kind:  Markdown,
			Value: fmt.Sprintf("```lisp\n%s\n```", typeInfo),
		},
		Range: &r,
	}, nil
}
