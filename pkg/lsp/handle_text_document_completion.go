package lsp

import (
	"context"
	"slices"
	"strings"

	"github.com/creachadair/jrpc2"
	"github.com/lili-lang/lili/pkg/lili"
)

func (h *Handler) handleTextDocumentCompletion(ctx context.Context, req *jrpc2.Request) (any, error) {
	if !req.HasParams() {
		return nil, jrpc2.Errorf(jrpc2.InvalidParams, "missing parameters")
	}

	var params CompletionParams
	if err := req.UnmarshalParams(&params); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.files[params.TextDocument.URI]
	if !ok {
		return []CompletionItem{}, nil
	}

	return completions(f, params.Position), nil
}

// completions offers the functions in scope, the reserved words, and the
// parameters of the defun around the cursor.
func completions(f *File, pos Position) []CompletionItem {
	table := f.Table
	if table == nil {
		table = lili.NewSymbolTable()
	}

	var items []CompletionItem
	for _, def := range slices.Concat(table.Builtins(), table.Functions()) {
		items = append(items, CompletionItem{
			Label:  def.Name,
			Kind:   FunctionCompletion,
			Detail: def.Signature(),
		})
	}
	for _, kw := range []string{lili.DefunForm, lili.CondForm, lili.TrueLiteral, lili.NilLiteral} {
		items = append(items, CompletionItem{Label: kw, Kind: KeywordCompletion})
	}

	for _, form := range f.Forms {
		if !contains(form.GetSourceLocation(), pos) {
			continue
		}
		def, ok := enclosingDefinition(f, form)
		if !ok {
			continue
		}
		for _, p := range def.Params {
			items = append(items, CompletionItem{
				Label:  p.Name,
				Kind:   VariableCompletion,
				Detail: p.Type.String(),
			})
		}
	}

	slices.SortStableFunc(items, func(a, b CompletionItem) int {
		return strings.Compare(a.Label, b.Label)
	})
	return items
}
