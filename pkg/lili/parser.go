package lili

import (
	"fmt"
)

// Parse reads every top-level form in source. Lists headed by cond are
// folded into Cond nodes.
func Parse(filename string, source []byte) ([]Node, error) {
	tokens, err := Lex(filename, string(source))
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}

// ParseTokens builds expression trees from a token stream.
func ParseTokens(tokens []Token) ([]Node, error) {
	p := &parser{tokens: tokens}
	var forms []Node
	for p.pos < len(p.tokens) {
		form, err := p.form()
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) form() (Node, error) {
	tok := p.tokens[p.pos]
	p.pos++

	switch tok.Kind {
	case TokenInt:
		return &IntConst{Value: tok.Int, Loc: tok.Loc}, nil
	case TokenChar:
		return &CharConst{Value: []rune(tok.Text)[0], Loc: tok.Loc}, nil
	case TokenString:
		return &StringConst{Value: tok.Text, Loc: tok.Loc}, nil
	case TokenIdent:
		return &Ident{Name: tok.Text, Loc: tok.Loc}, nil
	case TokenLParen:
		return p.list(tok)
	default:
		return nil, &SyntaxError{Message: "unexpected ')'", Location: tok.Loc}
	}
}

func (p *parser) list(open Token) (Node, error) {
	var members []Node
	for {
		if p.pos >= len(p.tokens) {
			return nil, &SyntaxError{Message: "expected ')' but got EOF", Location: open.Loc}
		}
		if p.tokens[p.pos].Kind == TokenRParen {
			break
		}
		m, err := p.form()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	closing := p.tokens[p.pos]
	p.pos++

	loc := *open.Loc
	loc.End = &SourcePosition{Line: closing.Loc.Line, Column: closing.Loc.Column + 1}
	if closing.Loc.Line == open.Loc.Line {
		loc.Length = closing.Loc.Column + 1 - open.Loc.Column
	}

	call := &Call{Members: members, Loc: &loc}
	if head, ok := call.Head(); ok && head.IsNamed(CondForm) {
		return foldCond(call)
	}
	return call, nil
}

// foldCond turns (cond (c1 r1) (c2 r2) ...) into a Cond node.
func foldCond(call *Call) (*Cond, error) {
	cond := &Cond{Loc: call.Loc}
	for _, m := range call.Args() {
		clause, ok := m.(*Call)
		if !ok || len(clause.Members) != 2 {
			return nil, &SyntaxError{
				Message:  fmt.Sprintf("incorrect cond clause: %s", Format(m)),
				Location: m.GetSourceLocation(),
			}
		}
		if _, nested := clause.Members[0].(*Cond); nested {
			return nil, &SyntaxError{
				Message:  "a cond clause condition cannot be a cond",
				Location: clause.Members[0].GetSourceLocation(),
			}
		}
		cond.Clauses = append(cond.Clauses, CondClause{
			Condition: clause.Members[0],
			Result:    clause.Members[1],
		})
	}
	return cond, nil
}
