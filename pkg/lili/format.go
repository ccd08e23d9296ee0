package lili

import (
	"strconv"
	"strings"
)

// Format renders a node back to S-expression source.
func Format(n Node) string {
	var b strings.Builder
	formatNode(&b, n)
	return b.String()
}

func formatNode(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *IntConst:
		b.WriteString(strconv.Itoa(n.Value))
	case *CharConst:
		b.WriteString(quoteC(string(n.Value), '\''))
	case *StringConst:
		b.WriteString(quoteC(n.Value, '"'))
	case *Ident:
		b.WriteString(n.Name)
	case *Call:
		b.WriteByte('(')
		for i, m := range n.Members {
			if i > 0 {
				b.WriteByte(' ')
			}
			formatNode(b, m)
		}
		b.WriteByte(')')
	case *Cond:
		b.WriteString("(" + CondForm)
		for _, clause := range n.Clauses {
			b.WriteString(" (")
			formatNode(b, clause.Condition)
			b.WriteByte(' ')
			formatNode(b, clause.Result)
			b.WriteByte(')')
		}
		b.WriteByte(')')
	case nil:
		b.WriteString("<nil>")
	}
}
