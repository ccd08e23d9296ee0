package lsp

import (
	"context"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleTextDocumentDefinition(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params DocumentDefinitionParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.files[params.TextDocument.URI]
	if !ok {
		return nil, nil
	}

	id, form := identAt(f.Forms, params.Position)
	if id == nil {
		return nil, nil
	}

	// parameters shadow functions
	if param, ok := defunParam(form, id.Name); ok {
		return &Location{URI: params.TextDocument.URI, Range: rangeOf(param.Loc)}, nil
	}

	// the last defun of a name wins, like in the symbol table
	var found *Location
	for _, form := range f.Forms {
		if name, ok := defunName(form); ok && name.IsNamed(id.Name) {
			found = &Location{URI: params.TextDocument.URI, Range: rangeOf(name.Loc)}
		}
	}
	if found == nil {
		return nil, nil
	}
	return found, nil
}
