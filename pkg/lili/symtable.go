package lili

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Param is one named, typed function parameter.
type Param struct {
	Name string
	Type VarType
}

// FunctionDefinition describes a user function or a library built-in. A nil
// Body marks a built-in, whose types are fixed and never derived.
type FunctionDefinition struct {
	Name    string
	Params  []Param
	Ret     VarType
	Body    Node
	Builtin Builtin
	Loc     *SourceLocation
}

// IsBuiltin reports whether the function is a library function.
func (f *FunctionDefinition) IsBuiltin() bool {
	return f.Body == nil
}

// ParamType returns the current type of the named parameter.
func (f *FunctionDefinition) ParamType(name string) (VarType, bool) {
	for _, p := range f.Params {
		if p.Name == name {
			return p.Type, true
		}
	}
	return Nothing, false
}

// Clone returns a copy whose type fields can be changed without touching f.
// The body is shared; it is never mutated.
func (f *FunctionDefinition) Clone() *FunctionDefinition {
	cp := *f
	cp.Params = slices.Clone(f.Params)
	return &cp
}

func (f *FunctionDefinition) sameTypes(other *FunctionDefinition) bool {
	return f.Ret == other.Ret && slices.Equal(f.Params, other.Params)
}

// Signature renders the function as name(a Type, b Type) Ret.
func (f *FunctionDefinition) Signature() string {
	args := make([]string, len(f.Params))
	for i, p := range f.Params {
		args[i] = p.Name + " " + p.Type.String()
	}
	return fmt.Sprintf("%s(%s) %s", f.Name, strings.Join(args, ", "), f.Ret)
}

// SymbolTable maps lower-cased function names to their definitions. It is a
// value: updates go through With, which returns a new table and leaves the
// receiver untouched.
type SymbolTable struct {
	defs map[string]*FunctionDefinition

	// User functions, in the order they were first defined.
	order []string
}

// NewSymbolTable returns a table holding only the built-ins.
func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{
		defs: make(map[string]*FunctionDefinition, len(builtinSpecs)),
	}
	for _, s := range builtinSpecs {
		st.defs[s.name] = s.definition()
	}
	return st
}

// Lookup finds a function by name, ignoring case.
func (st *SymbolTable) Lookup(name string) (*FunctionDefinition, bool) {
	def, ok := st.defs[strings.ToLower(name)]
	return def, ok
}

// Functions returns the user-defined functions in definition order.
func (st *SymbolTable) Functions() []*FunctionDefinition {
	fns := make([]*FunctionDefinition, 0, len(st.order))
	for _, name := range st.order {
		fns = append(fns, st.defs[name])
	}
	return fns
}

// Builtins returns the library functions in a fixed order.
func (st *SymbolTable) Builtins() []*FunctionDefinition {
	fns := make([]*FunctionDefinition, 0, len(builtinSpecs))
	for _, s := range builtinSpecs {
		fns = append(fns, st.defs[s.name])
	}
	return fns
}

// With returns a copy of the table in which def replaces any existing
// definition of the same name.
func (st *SymbolTable) With(def *FunctionDefinition) *SymbolTable {
	next := &SymbolTable{
		defs:  maps.Clone(st.defs),
		order: st.order,
	}
	if _, exists := st.defs[def.Name]; !exists && !def.IsBuiltin() {
		next.order = append(slices.Clone(st.order), def.Name)
	}
	next.defs[def.Name] = def
	return next
}

// Equal reports whether both tables assign the same types to the same
// functions.
func (st *SymbolTable) Equal(other *SymbolTable) bool {
	if len(st.defs) != len(other.defs) {
		return false
	}
	for name, def := range st.defs {
		od, ok := other.defs[name]
		if !ok || !def.sameTypes(od) {
			return false
		}
	}
	return true
}

// Signature renders the signature of the named function.
func (st *SymbolTable) Signature(name string) (string, bool) {
	def, ok := st.Lookup(name)
	if !ok {
		return "", false
	}
	return def.Signature(), true
}

// BuildSymbolTable registers one definition per top-level defun form, on top
// of a fresh set of built-ins. Parameters start out as Any and the return
// type as Nothing. A later defun with the same name replaces an earlier one.
func BuildSymbolTable(forms []Node) (*SymbolTable, error) {
	st := NewSymbolTable()
	for _, form := range forms {
		def, err := defunDefinition(form)
		if err != nil {
			return nil, err
		}
		st = st.With(def)
	}
	return st, nil
}

func defunDefinition(form Node) (*FunctionDefinition, error) {
	call, ok := form.(*Call)
	if !ok {
		return nil, structuralErrorf(form, "not a function definition: %s", Format(form))
	}

	head, ok := call.Head()
	if !ok || !head.IsNamed(DefunForm) {
		return nil, structuralErrorf(form, "not a defun: %s", Format(form))
	}

	if len(call.Members) < 2 {
		return nil, structuralErrorf(form, "defun is missing a function name")
	}
	nameID, ok := call.Members[1].(*Ident)
	if !ok {
		return nil, structuralErrorf(call.Members[1], "not a function name definition: %s", Format(call.Members[1]))
	}
	name := strings.ToLower(nameID.Name)
	if IsReserved(name) {
		return nil, structuralErrorf(nameID, "cannot redefine reserved name %s", name)
	}

	if len(call.Members) < 3 {
		return nil, structuralErrorf(form, "defun %s is missing an argument list", name)
	}
	argList, ok := call.Members[2].(*Call)
	if !ok {
		return nil, structuralErrorf(call.Members[2], "not an argument list: %s", Format(call.Members[2]))
	}

	params := make([]Param, 0, len(argList.Members))
	for _, arg := range argList.Members {
		id, ok := arg.(*Ident)
		if !ok {
			return nil, structuralErrorf(arg, "not an identifier: %s", Format(arg))
		}
		if slices.ContainsFunc(params, func(p Param) bool { return p.Name == id.Name }) {
			return nil, structuralErrorf(arg, "duplicate parameter %s in defun %s", id.Name, name)
		}
		params = append(params, Param{Name: id.Name, Type: Any})
	}

	switch {
	case len(call.Members) < 4:
		return nil, structuralErrorf(form, "defun %s has no body", name)
	case len(call.Members) > 4:
		return nil, structuralErrorf(call.Members[4], "defun %s has more than one body expression", name)
	}

	return &FunctionDefinition{
		Name:   name,
		Params: params,
		Ret:    Nothing,
		Body:   call.Members[3],
		Loc:    call.Loc,
	}, nil
}

func structuralErrorf(node Node, format string, args ...any) *StructuralError {
	return &StructuralError{
		Message:  fmt.Sprintf(format, args...),
		Location: node.GetSourceLocation(),
	}
}
