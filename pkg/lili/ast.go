package lili

import "strings"

// Reserved identifiers that evaluate to themselves.
const (
	NilLiteral  = "nil"
	TrueLiteral = "T"
)

// Node is an expression tree node produced by the parser. The set of
// implementations is closed.
type Node interface {
	GetSourceLocation() *SourceLocation

	// Walk recursively visits this node and all its children, calling fn for each node.
	// The callback returns true to continue walking into children, false to skip children.
	Walk(fn func(Node) bool)

	isNode()
}

// Call is a parenthesized form. When evaluated, its first member names the
// callee; a defun's parameter list is also a Call.
type Call struct {
	Members []Node
	Loc     *SourceLocation
}

// IntConst is a decimal integer literal.
type IntConst struct {
	Value int
	Loc   *SourceLocation
}

// CharConst is a 'c' literal.
type CharConst struct {
	Value rune
	Loc   *SourceLocation
}

// StringConst is a "..." literal.
type StringConst struct {
	Value string
	Loc   *SourceLocation
}

// Ident references a parameter, a function, or one of the reserved literals.
type Ident struct {
	Name string
	Loc  *SourceLocation
}

// Cond is a folded (cond (c r) ...) form.
type Cond struct {
	Clauses []CondClause
	Loc     *SourceLocation
}

// CondClause is one condition/result pair of a Cond.
type CondClause struct {
	Condition Node
	Result    Node
}

var (
	_ Node = (*Call)(nil)
	_ Node = (*IntConst)(nil)
	_ Node = (*CharConst)(nil)
	_ Node = (*StringConst)(nil)
	_ Node = (*Ident)(nil)
	_ Node = (*Cond)(nil)
)

func (*Call) isNode()        {}
func (*IntConst) isNode()    {}
func (*CharConst) isNode()   {}
func (*StringConst) isNode() {}
func (*Ident) isNode()       {}
func (*Cond) isNode()        {}

func (c *Call) GetSourceLocation() *SourceLocation        { return c.Loc }
func (c *IntConst) GetSourceLocation() *SourceLocation    { return c.Loc }
func (c *CharConst) GetSourceLocation() *SourceLocation   { return c.Loc }
func (c *StringConst) GetSourceLocation() *SourceLocation { return c.Loc }
func (i *Ident) GetSourceLocation() *SourceLocation       { return i.Loc }
func (c *Cond) GetSourceLocation() *SourceLocation        { return c.Loc }

// Head returns the identifier naming the callee, if there is one.
func (c *Call) Head() (*Ident, bool) {
	if len(c.Members) == 0 {
		return nil, false
	}
	id, ok := c.Members[0].(*Ident)
	return id, ok
}

// Args returns every member after the head.
func (c *Call) Args() []Node {
	if len(c.Members) == 0 {
		return nil
	}
	return c.Members[1:]
}

func (c *Call) Walk(fn func(Node) bool) {
	if !fn(c) {
		return
	}
	for _, m := range c.Members {
		m.Walk(fn)
	}
}

func (c *IntConst) Walk(fn func(Node) bool)    { fn(c) }
func (c *CharConst) Walk(fn func(Node) bool)   { fn(c) }
func (c *StringConst) Walk(fn func(Node) bool) { fn(c) }
func (i *Ident) Walk(fn func(Node) bool)       { fn(i) }

func (c *Cond) Walk(fn func(Node) bool) {
	if !fn(c) {
		return
	}
	for _, clause := range c.Clauses {
		clause.Condition.Walk(fn)
		clause.Result.Walk(fn)
	}
}

// IsLiteral reports whether the identifier is nil or T.
func (i *Ident) IsLiteral() bool {
	return i.Name == NilLiteral || i.Name == TrueLiteral
}

// IsNamed reports whether the identifier spells name, ignoring case.
func (i *Ident) IsNamed(name string) bool {
	return strings.EqualFold(i.Name, name)
}

// intrinsicType returns the type of a constant node.
func intrinsicType(n Node) (VarType, bool) {
	switch n.(type) {
	case *IntConst:
		return Integer, true
	case *CharConst:
		return Char, true
	case *StringConst:
		return String, true
	default:
		return Nothing, false
	}
}
