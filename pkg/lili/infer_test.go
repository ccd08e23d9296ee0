package lili

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferAddTwo(t *testing.T) {
	st := inferTable(t, `(defun addtwo (x y) (+ x y))`)

	def := lookup(t, st, "addtwo")
	require.Equal(t, []Param{{"x", Integer}, {"y", Integer}}, def.Params)
	require.Equal(t, Integer, def.Ret)
}

func TestInferReverseKeepsListsWide(t *testing.T) {
	st := inferTable(t, `
(defun rvrs (l1 l2)
  (cond ((null l1) l2)
        (T (cons (car l1) l2))))
`)

	def := lookup(t, st, "rvrs")
	require.Equal(t, []Param{{"l1", Any}, {"l2", Any}}, def.Params)
	require.Equal(t, Any, def.Ret)
}

func TestInferIfBranches(t *testing.T) {
	st := inferTable(t, `
(defun pick (n) (if n 1 2))
(defun mixed (n) (if n 1 'a'))
(defun chars (n) (if n 'a' 'b'))
`)

	pick := lookup(t, st, "pick")
	require.Equal(t, Integer, pick.Params[0].Type)
	require.Equal(t, Integer, pick.Ret)

	require.Equal(t, Any, lookup(t, st, "mixed").Ret)
	require.Equal(t, Char, lookup(t, st, "chars").Ret)
}

func TestInferCondWidensOnDisagreement(t *testing.T) {
	st := inferTable(t, `
(defun same (n) (cond ((< n 0) 1) (T 2)))
(defun differ (n) (cond ((< n 0) 1) (T "two")))
(defun empty () (cond))
`)

	require.Equal(t, Integer, lookup(t, st, "same").Ret)
	require.Equal(t, Any, lookup(t, st, "differ").Ret)
	require.Equal(t, Nothing, lookup(t, st, "empty").Ret)
}

func TestInferPropagatesAcrossFunctions(t *testing.T) {
	for _, src := range []string{
		`(defun inc (x) (+ x 1)) (defun twice (y) (inc (inc y)))`,
		`(defun twice (y) (inc (inc y))) (defun inc (x) (+ x 1))`,
	} {
		res := Infer(context.Background(), buildTable(t, src), DefaultMaxRounds)
		require.True(t, res.Converged)
		require.Equal(t, 3, res.Rounds)

		twice := lookup(t, res.Table, "twice")
		require.Equal(t, Integer, twice.Params[0].Type)
		require.Equal(t, Integer, twice.Ret)
	}
}

func TestInferStopsAtCap(t *testing.T) {
	st := buildTable(t, `(defun inc (x) (+ x 1)) (defun twice (y) (inc (inc y)))`)

	res := Infer(context.Background(), st, 1)
	require.False(t, res.Converged)
	require.Equal(t, 1, res.Rounds)

	twice := lookup(t, res.Table, "twice")
	require.Equal(t, Any, twice.Params[0].Type)
	require.Equal(t, Nothing, twice.Ret)
}

func TestInferExtraRoundIsNoop(t *testing.T) {
	for _, src := range []string{
		`(defun addtwo (x y) (+ x y))`,
		`(defun rvrs (l1 l2) (cond ((null l1) l2) (T (cons (car l1) l2))))`,
		`(defun inc (x) (+ x 1)) (defun twice (y) (inc (inc y))) (defun thrice (z) (inc (twice z)))`,
		`(defun len (l) (if (null l) 0 (+ 1 (len (cdr l)))))`,
	} {
		res := Infer(context.Background(), buildTable(t, src), DefaultMaxRounds)
		require.True(t, res.Converged, src)
		require.LessOrEqual(t, res.Rounds, DefaultMaxRounds)
		require.True(t, InferRound(res.Table).Equal(res.Table), src)
	}
}

func TestInferDoesNotMutateInput(t *testing.T) {
	st := buildTable(t, `(defun addtwo (x y) (+ x y))`)
	_ = Infer(context.Background(), st, DefaultMaxRounds)

	def := lookup(t, st, "addtwo")
	require.Equal(t, Any, def.Params[0].Type)
	require.Equal(t, Nothing, def.Ret)
}

func TestInferLeavesBuiltinsAlone(t *testing.T) {
	st := inferTable(t, `(defun f (x) (car "s"))`)
	car := lookup(t, st, "car")
	require.Equal(t, Any, car.Params[0].Type)
	require.Equal(t, Any, car.Ret)
}

func TestDeriveReturnType(t *testing.T) {
	st := buildTable(t, `(defun f (a) a)`)
	def := lookup(t, st, "f").Clone()
	def.Params[0].Type = Char

	tests := []struct {
		src  string
		want VarType
	}{
		{`1`, Integer},
		{`'c'`, Char},
		{`"s"`, String},
		{`nil`, Any},
		{`T`, Any},
		{`a`, Char},
		{`unbound`, Any},
		{`(+ 1 2)`, Integer},
		{`(null a)`, Integer},
		{`(car a)`, Any},
		{`(if 1 a 'z')`, Char},
		{`(if 1 a 2)`, Any},
		{`(cond (a 1) (T 2))`, Integer},
		{`(nosuch a)`, Any},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveReturnType(parseExpr(t, tt.src), def, st), tt.src)
	}
}
