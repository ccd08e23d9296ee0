package lili

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func parseForms(t testing.TB, src string) []Node {
	t.Helper()
	forms, err := Parse("test.ll", []byte(src))
	require.NoError(t, err)
	return forms
}

func parseExpr(t testing.TB, src string) Node {
	t.Helper()
	forms := parseForms(t, src)
	require.Len(t, forms, 1)
	return forms[0]
}

func buildTable(t testing.TB, src string) *SymbolTable {
	t.Helper()
	st, err := BuildSymbolTable(parseForms(t, src))
	require.NoError(t, err)
	return st
}

func inferTable(t testing.TB, src string) *SymbolTable {
	t.Helper()
	res := Infer(context.Background(), buildTable(t, src), DefaultMaxRounds)
	require.True(t, res.Converged)
	return res.Table
}

func lookup(t testing.TB, st *SymbolTable, name string) *FunctionDefinition {
	t.Helper()
	def, ok := st.Lookup(name)
	require.True(t, ok, "function %s not found", name)
	return def
}
