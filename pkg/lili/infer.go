package lili

import (
	"context"

	"github.com/lili-lang/lili/pkg/ioctx"
)

// DefaultMaxRounds caps the inference fixpoint loop.
const DefaultMaxRounds = 20

// InferResult is the outcome of running inference over a symbol table.
type InferResult struct {
	Table     *SymbolTable
	Rounds    int
	Converged bool
}

// Infer refines parameter and return types until a round changes nothing or
// maxRounds rounds have run. It never fails; when the cap is hit the last
// snapshot is returned with Converged unset.
func Infer(ctx context.Context, st *SymbolTable, maxRounds int) InferResult {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	logger := ioctx.LoggerFromContext(ctx)

	cur := st
	for round := 1; round <= maxRounds; round++ {
		next := InferRound(cur)
		changed := !next.Equal(cur)
		logger.DebugContext(ctx, "inference round", "round", round, "changed", changed)
		if !changed {
			return InferResult{Table: next, Rounds: round, Converged: true}
		}
		cur = next
	}

	logger.WarnContext(ctx, "type inference did not converge", "rounds", maxRounds)
	return InferResult{Table: cur, Rounds: maxRounds}
}

// InferRound runs one refinement pass. Every function reads the types
// recorded in st and the refined definitions are collected into a new table.
func InferRound(st *SymbolTable) *SymbolTable {
	next := st
	for _, def := range st.Functions() {
		refined := def.Clone()
		refined.Params = refineParams(def, st)
		refined.Ret = DeriveReturnType(def.Body, refined, st)
		if !refined.sameTypes(def) {
			next = next.With(refined)
		}
	}
	return next
}

// refineParams recomputes each parameter as the Sup of the parameter types
// of every call that receives it directly as an argument.
func refineParams(def *FunctionDefinition, st *SymbolTable) []Param {
	types := make(map[string]VarType, len(def.Params))
	for _, p := range def.Params {
		types[p.Name] = Any
	}

	def.Body.Walk(func(n Node) bool {
		call, ok := n.(*Call)
		if !ok {
			return true
		}
		head, ok := call.Head()
		if !ok {
			return true
		}
		callee, ok := st.Lookup(head.Name)
		if !ok {
			return true
		}
		for i, arg := range call.Args() {
			id, ok := arg.(*Ident)
			if !ok || i >= len(callee.Params) {
				continue
			}
			if t, isParam := types[id.Name]; isParam {
				types[id.Name] = Sup(t, callee.Params[i].Type)
			}
		}
		return true
	})

	params := make([]Param, len(def.Params))
	for i, p := range def.Params {
		params[i] = Param{Name: p.Name, Type: types[p.Name]}
	}
	return params
}

// DeriveReturnType computes the type of an expression in the body of def,
// using the types currently recorded in st for callees.
func DeriveReturnType(n Node, def *FunctionDefinition, st *SymbolTable) VarType {
	switch n := n.(type) {
	case *IntConst, *CharConst, *StringConst:
		t, _ := intrinsicType(n)
		return t
	case *Ident:
		if n.IsLiteral() {
			return Any
		}
		if t, ok := def.ParamType(n.Name); ok {
			return t
		}
		return Any
	case *Cond:
		t := Nothing
		for _, clause := range n.Clauses {
			t = Inf(t, DeriveReturnType(clause.Result, def, st))
		}
		return t
	case *Call:
		head, ok := n.Head()
		if !ok {
			return Any
		}
		callee, ok := st.Lookup(head.Name)
		if !ok {
			return Any
		}
		if callee.Builtin == BuiltinIf {
			args := n.Args()
			if len(args) == 3 {
				return Inf(DeriveReturnType(args[1], def, st), DeriveReturnType(args[2], def, st))
			}
		}
		return callee.Ret
	default:
		return Any
	}
}
