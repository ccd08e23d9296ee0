package lsp

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleWorkspaceSymbol(ctx context.Context, req *jrpc2.Request) (any, error) {
	var params WorkspaceSymbolParams
	if req.HasParams() {
		if err := req.UnmarshalParams(&params); err != nil {
			return nil, err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Search all open files for defuns matching the query
	query := strings.ToLower(params.Query)
	symbols := []SymbolInformation{}
	for uri, file := range h.files {
		for _, form := range file.Forms {
			name, ok := defunName(form)
			if !ok {
				continue
			}
			if query == "" || strings.Contains(strings.ToLower(name.Name), query) {
				symbols = append(symbols, SymbolInformation{
					Name:     name.Name,
					Kind:     SymbolKindFunction,
					Location: Location{URI: uri, Range: rangeOf(name.Loc)},
				})
			}
		}
	}

	slices.SortFunc(symbols, func(a, b SymbolInformation) int {
		return cmp.Or(
			strings.Compare(a.Name, b.Name),
			strings.Compare(string(a.Location.URI), string(b.Location.URI)),
			cmp.Compare(a.Location.Range.Start.Line, b.Location.Range.Start.Line),
		)
	})

	slog.DebugContext(ctx, "workspace symbol results", "query", params.Query, "total", len(symbols))
	return symbols, nil
}
