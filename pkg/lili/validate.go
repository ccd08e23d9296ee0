package lili

import "fmt"

// Validate checks every call site in every user function against the
// types recorded in st. It stops at the first problem.
func Validate(st *SymbolTable) error {
	for _, def := range st.Functions() {
		for _, p := range def.Params {
			if p.Type == Nothing {
				return &TypeMismatchError{
					Function: def.Name,
					Param:    p.Name,
					Want:     Any,
					Got:      Nothing,
					Location: def.Loc,
				}
			}
		}

		v := &validator{table: st, fn: def}
		if err := v.node(def.Body); err != nil {
			return err
		}
	}
	return nil
}

type validator struct {
	table *SymbolTable
	fn    *FunctionDefinition
}

func (v *validator) node(n Node) error {
	switch n := n.(type) {
	case *Call:
		return v.call(n)
	case *Cond:
		for _, clause := range n.Clauses {
			if err := v.node(clause.Condition); err != nil {
				return err
			}
			if err := v.node(clause.Result); err != nil {
				return err
			}
		}
		return nil
	case *Ident:
		if n.IsLiteral() {
			return nil
		}
		if _, ok := v.fn.ParamType(n.Name); !ok {
			return &UnknownSymbolError{Name: n.Name, Location: n.Loc}
		}
		return nil
	case *IntConst, *CharConst, *StringConst:
		return nil
	default:
		return fmt.Errorf("unexpected node %T in %s", n, v.fn.Name)
	}
}

func (v *validator) call(c *Call) error {
	callee, err := v.callee(c)
	if err != nil {
		return err
	}

	args := c.Args()
	actual := make([]VarType, len(args))
	for i, arg := range args {
		t, err := v.shallowType(arg)
		if err != nil {
			return err
		}
		actual[i] = t
	}

	if len(actual) != len(callee.Params) {
		return &ArityError{
			Function: callee.Name,
			Want:     len(callee.Params),
			Got:      len(actual),
			Location: c.Loc,
		}
	}

	for i, p := range callee.Params {
		if !IsCompatible(p.Type, actual[i]) {
			return &TypeMismatchError{
				Function: callee.Name,
				Param:    p.Name,
				Position: i + 1,
				Want:     p.Type,
				Got:      actual[i],
				Location: args[i].GetSourceLocation(),
			}
		}
	}

	for _, arg := range args {
		if err := v.node(arg); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) callee(c *Call) (*FunctionDefinition, error) {
	head, ok := c.Head()
	if !ok {
		return nil, &StructuralError{
			Message:  "not a function call: " + Format(c),
			Location: c.Loc,
		}
	}
	def, ok := v.table.Lookup(head.Name)
	if !ok {
		return nil, &UnknownSymbolError{Name: head.Name, Location: head.Loc}
	}
	return def, nil
}

// shallowType approximates the type of a call argument without descending
// into it: nested calls contribute their callee's recorded return type.
func (v *validator) shallowType(n Node) (VarType, error) {
	if t, ok := intrinsicType(n); ok {
		return t, nil
	}
	switch n := n.(type) {
	case *Call:
		callee, err := v.callee(n)
		if err != nil {
			return Nothing, err
		}
		return callee.Ret, nil
	default:
		return Any, nil
	}
}
