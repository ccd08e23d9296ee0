package lsp

import (
	"github.com/lili-lang/lili/pkg/lili"
)

func contains(loc *lili.SourceLocation, pos Position) bool {
	if loc == nil {
		return false
	}
	r := rangeOf(loc)
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}

// identAt finds the identifier under the cursor and the top-level form
// containing it.
func identAt(forms []lili.Node, pos Position) (*lili.Ident, lili.Node) {
	for _, form := range forms {
		if !contains(form.GetSourceLocation(), pos) {
			continue
		}
		var found *lili.Ident
		form.Walk(func(n lili.Node) bool {
			if id, ok := n.(*lili.Ident); ok && contains(id.Loc, pos) {
				found = id
			}
			return true
		})
		if found != nil {
			return found, form
		}
	}
	return nil, nil
}

// defunName returns the name of a (defun name (args) body) form.
func defunName(form lili.Node) (*lili.Ident, bool) {
	call, ok := form.(*lili.Call)
	if !ok || len(call.Members) < 2 {
		return nil, false
	}
	head, ok := call.Head()
	if !ok || !head.IsNamed(lili.DefunForm) {
		return nil, false
	}
	name, ok := call.Members[1].(*lili.Ident)
	return name, ok
}

// defunParam returns the declaration of a parameter of a defun form.
func defunParam(form lili.Node, name string) (*lili.Ident, bool) {
	if _, ok := defunName(form); !ok {
		return nil, false
	}
	call := form.(*lili.Call)
	if len(call.Members) < 3 {
		return nil, false
	}
	args, ok := call.Members[2].(*lili.Call)
	if !ok {
		return nil, false
	}
	for _, arg := range args.Members {
		if id, ok := arg.(*lili.Ident); ok && id.Name == name {
			return id, true
		}
	}
	return nil, false
}

// enclosingDefinition finds the inferred definition of the defun form.
func enclosingDefinition(f *File, form lili.Node) (*lili.FunctionDefinition, bool) {
	if f.Table == nil {
		return nil, false
	}
	name, ok := defunName(form)
	if !ok {
		return nil, false
	}
	return f.Table.Lookup(name.Name)
}
