package lili

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	forms := parseForms(t, `
(defun addtwo (x y) (+ x y))
42 "str" 'c' sym
`)
	require.Len(t, forms, 5)

	call, ok := forms[0].(*Call)
	require.True(t, ok)
	head, ok := call.Head()
	require.True(t, ok)
	require.Equal(t, "defun", head.Name)
	require.Len(t, call.Args(), 3)

	require.IsType(t, &IntConst{}, forms[1])
	require.IsType(t, &StringConst{}, forms[2])
	require.IsType(t, &CharConst{}, forms[3])
	require.IsType(t, &Ident{}, forms[4])
	require.Equal(t, 'c', forms[3].(*CharConst).Value)
}

func TestParseRoundTrip(t *testing.T) {
	for _, src := range []string{
		`(defun addtwo (x y) (+ x y))`,
		`(defun rvrs (l1 l2) (cond ((null l1) l2) (T (cons (car l1) l2))))`,
		`(f 'a' "b\n" -3 nil)`,
		`()`,
	} {
		assert.Equal(t, src, Format(parseExpr(t, src)))
	}
}

func TestParseCallLocation(t *testing.T) {
	call := parseExpr(t, `  (+ 1 2)`).(*Call)
	require.Equal(t, 1, call.Loc.Line)
	require.Equal(t, 3, call.Loc.Column)
	require.Equal(t, 7, call.Loc.Length)
	require.Equal(t, &SourcePosition{Line: 1, Column: 10}, call.Loc.End)
}

func TestParseCond(t *testing.T) {
	cond, ok := parseExpr(t, `(COND ((null l) 0) (T 1))`).(*Cond)
	require.True(t, ok)
	require.Len(t, cond.Clauses, 2)
	require.Equal(t, "(null l)", Format(cond.Clauses[0].Condition))
	require.Equal(t, "0", Format(cond.Clauses[0].Result))
	require.Equal(t, "T", Format(cond.Clauses[1].Condition))

	empty, ok := parseExpr(t, `(cond)`).(*Cond)
	require.True(t, ok)
	require.Empty(t, empty.Clauses)
}

func TestParseNestedCondInResult(t *testing.T) {
	cond := parseExpr(t, `(cond (a (cond (b 1))))`).(*Cond)
	require.IsType(t, &Cond{}, cond.Clauses[0].Result)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
	}{
		{"unbalanced close", `(a))`, "unexpected ')'"},
		{"unclosed", `(defun f (x) x`, "expected ')' but got EOF"},
		{"clause not a list", `(cond x)`, "incorrect cond clause: x"},
		{"clause too long", `(cond (a b c))`, "incorrect cond clause: (a b c)"},
		{"clause too short", `(cond (a))`, "incorrect cond clause: (a)"},
		{"cond condition", `(cond ((cond (a b)) c))`, "a cond clause condition cannot be a cond"},
		{"lexer", `(a #)`, "unknown token '#'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test.ll", []byte(tt.src))

			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			require.Equal(t, tt.message, syntaxErr.Message)
			require.NotNil(t, syntaxErr.Location)
		})
	}
}
