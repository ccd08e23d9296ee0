package lili

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
)

// GeneratedFunction is the C rendition of one user function.
type GeneratedFunction struct {
	Def       *FunctionDefinition
	Prototype string
	Body      string
}

// String returns the complete function definition.
func (g *GeneratedFunction) String() string {
	return g.Prototype + g.Body
}

// Lowerer turns function bodies into C source text.
type Lowerer struct {
	table  *SymbolTable
	config *Config

	// function being lowered
	fn *FunctionDefinition
}

// NewLowerer creates a Lowerer resolving callees in st.
func NewLowerer(st *SymbolTable, config *Config) *Lowerer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Lowerer{table: st, config: config}
}

// LowerAll lowers every user function in definition order. Two functions
// whose names share a C spelling are rejected.
func (l *Lowerer) LowerAll() ([]*GeneratedFunction, error) {
	var fns []*GeneratedFunction
	names := cNames{}
	for _, def := range l.table.Functions() {
		if err := names.claim(def.Name, l.identifier(def.Name), def.Loc); err != nil {
			return nil, err
		}
		g, err := l.LowerFunction(def)
		if err != nil {
			return nil, err
		}
		fns = append(fns, g)
	}
	return fns, nil
}

// LowerFunction renders the prototype and body of def. Library functions
// produce no output and a nil result.
func (l *Lowerer) LowerFunction(def *FunctionDefinition) (*GeneratedFunction, error) {
	if def.IsBuiltin() {
		return nil, nil
	}

	fl := *l
	fl.fn = def

	if err := fl.checkName(def.Name, def.Loc); err != nil {
		return nil, err
	}

	args := make([]string, len(def.Params))
	params := cNames{}
	for i, p := range def.Params {
		if err := fl.checkName(p.Name, def.Loc); err != nil {
			return nil, err
		}
		name := fl.identifier(p.Name)
		if err := params.claim(p.Name, name, def.Loc); err != nil {
			return nil, err
		}
		args[i] = fl.TypeName(p.Type) + " " + name
	}
	proto := fmt.Sprintf("%s %s(%s)", fl.TypeName(def.Ret), fl.identifier(def.Name), strings.Join(args, ","))

	var body string
	if cond, ok := def.Body.(*Cond); ok {
		cascade, err := fl.condCascade(cond)
		if err != nil {
			return nil, err
		}
		body = cascade
	} else {
		expr, err := fl.Expr(def.Body)
		if err != nil {
			return nil, err
		}
		body = "{ return " + expr + " ; }"
	}

	return &GeneratedFunction{
		Def:       def,
		Prototype: proto,
		Body:      body,
	}, nil
}

// TypeName returns the C spelling of t. Nothing only survives inference as
// the return type of a function that never produces a value, so it is
// spelled like Any.
func (l *Lowerer) TypeName(t VarType) string {
	switch t {
	case Integer:
		return "int"
	case Char:
		return "char"
	case String:
		return l.config.Types.String
	case List:
		return l.config.Types.List
	default:
		return l.config.Types.Any
	}
}

// Expr lowers an expression.
func (l *Lowerer) Expr(n Node) (string, error) {
	switch n := n.(type) {
	case *IntConst:
		return strconv.Itoa(n.Value), nil
	case *CharConst:
		return quoteC(string(n.Value), '\''), nil
	case *StringConst:
		return quoteC(n.Value, '"'), nil
	case *Ident:
		return l.identifier(n.Name), nil
	case *Cond:
		return l.condExpr(n)
	case *Call:
		return l.call(n)
	default:
		return "", fmt.Errorf("cannot lower node %T", n)
	}
}

func (l *Lowerer) call(c *Call) (string, error) {
	head, ok := c.Head()
	if !ok {
		return "", &StructuralError{Message: "not a function call: " + Format(c), Location: c.Loc}
	}
	callee, ok := l.table.Lookup(head.Name)
	if !ok {
		return "", &UnknownSymbolError{Name: head.Name, Location: head.Loc}
	}
	if callee.IsBuiltin() {
		return l.builtinCall(callee, c)
	}

	args, err := l.exprs(c.Args())
	if err != nil {
		return "", err
	}
	return l.identifier(callee.Name) + "(" + strings.Join(args, ", ") + ")", nil
}

func (l *Lowerer) builtinCall(callee *FunctionDefinition, c *Call) (string, error) {
	args := c.Args()
	if len(args) != len(callee.Params) {
		return "", &LoweringError{
			Operator: callee.Name,
			Message:  fmt.Sprintf("expects %d arguments, got %d", len(callee.Params), len(args)),
			Location: c.Loc,
		}
	}

	if callee.Builtin == BuiltinIf {
		if k, ok := args[0].(*IntConst); ok {
			if k.Value != 0 {
				return l.Expr(args[1])
			}
			return l.Expr(args[2])
		}
		parts, err := l.exprs(args)
		if err != nil {
			return "", err
		}
		return "( " + parts[0] + " ? " + parts[1] + " : " + parts[2] + " )", nil
	}

	parts, err := l.exprs(args)
	if err != nil {
		return "", err
	}

	if op, ok := infixOperators[callee.Builtin]; ok {
		return "( " + parts[0] + " " + op + " " + parts[1] + " )", nil
	}
	if fn, ok := runtimeCalls[callee.Builtin]; ok {
		return fn + "(" + strings.Join(parts, ", ") + ")", nil
	}

	return "", &LoweringError{
		Operator: callee.Name,
		Message:  "unsupported built-in",
		Location: c.Loc,
	}
}

func (l *Lowerer) exprs(nodes []Node) ([]string, error) {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		s, err := l.Expr(n)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// condCascade lowers a cond in function-body position to a sequence of
// guarded returns.
func (l *Lowerer) condCascade(c *Cond) (string, error) {
	var b strings.Builder
	b.WriteString("{ ")
	caught := false
	for _, clause := range c.Clauses {
		cond, err := l.Expr(clause.Condition)
		if err != nil {
			return "", err
		}
		res, err := l.Expr(clause.Result)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "if (%s) return %s; ", cond, res)
		caught = caught || isCatchAll(clause.Condition)
	}
	if l.config.CondFallback == FallbackTrap && !caught {
		fmt.Fprintf(&b, "%s(%s); ", RuntimeNoMatch, quoteC(l.fn.Name, '"'))
	}
	b.WriteString("}")
	return b.String(), nil
}

// condExpr lowers a cond used as a value to nested conditionals. There is no
// statement to trap with, so the last clause must be guarded by T.
func (l *Lowerer) condExpr(c *Cond) (string, error) {
	if len(c.Clauses) == 0 || !isCatchAll(c.Clauses[len(c.Clauses)-1].Condition) {
		return "", &LoweringError{
			Operator: CondForm,
			Message:  "a cond used as a value must end with a T clause",
			Location: c.Loc,
		}
	}

	out, err := l.Expr(c.Clauses[len(c.Clauses)-1].Result)
	if err != nil {
		return "", err
	}
	for i := len(c.Clauses) - 2; i >= 0; i-- {
		cond, err := l.Expr(c.Clauses[i].Condition)
		if err != nil {
			return "", err
		}
		res, err := l.Expr(c.Clauses[i].Result)
		if err != nil {
			return "", err
		}
		out = "( " + cond + " ? " + res + " : " + out + " )"
	}
	return out, nil
}

func isCatchAll(n Node) bool {
	id, ok := n.(*Ident)
	return ok && id.Name == TrueLiteral
}

func (l *Lowerer) identifier(name string) string {
	if !l.config.MangleIdentifiers {
		return name
	}
	return cIdent(name)
}

// checkName rejects source names whose C spelling is a C keyword or belongs
// to the runtime.
func (l *Lowerer) checkName(source string, loc *SourceLocation) error {
	name := l.identifier(source)
	var msg string
	switch {
	case cKeywords[name]:
		msg = fmt.Sprintf("%s is a reserved word in C", name)
	case strings.HasPrefix(strings.ToLower(name), RuntimePrefix),
		name == l.config.Types.String,
		name == l.config.Types.List,
		name == l.config.Types.Any:
		msg = fmt.Sprintf("%s clashes with a runtime name", name)
	default:
		return nil
	}
	return &LoweringError{Operator: source, Message: msg, Location: loc}
}

// cNames tracks which source name claimed each C identifier.
type cNames map[string]string

func (n cNames) claim(source, name string, loc *SourceLocation) error {
	if prev, ok := n[name]; ok && prev != source {
		return &LoweringError{
			Operator: source,
			Message:  fmt.Sprintf("C name %s is already used by %s", name, prev),
			Location: loc,
		}
	}
	n[name] = source
	return nil
}

// symbolWords spells identifier symbols in C names. Hyphens and
// underscores separate words.
var symbolWords = map[rune]string{
	'+': "plus",
	'*': "star",
	'/': "slash",
	'<': "lt",
	'>': "gt",
	'=': "eq",
	'!': "bang",
	'?': "p",
}

// cIdent spells a source identifier as a C identifier. Valid C identifiers
// are kept as they are. Otherwise the name is split into words at hyphens
// and underscores, each word is snake_cased, symbols become words
// (empty? is empty_p) and other runes become uXXXX.
func cIdent(name string) string {
	if isCIdentifier(name) {
		return name
	}

	var words []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			words = append(words, strcase.ToSnake(word.String()))
			word.Reset()
		}
	}
	for _, r := range name {
		switch {
		case r == '-' || r == '_':
			flush()
		case r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			word.WriteRune(r)
		default:
			flush()
			if w, ok := symbolWords[r]; ok {
				words = append(words, w)
			} else {
				words = append(words, fmt.Sprintf("u%04x", r))
			}
		}
	}
	flush()

	out := strings.Join(words, "_")
	if out == "" || unicode.IsDigit(rune(out[0])) {
		out = "v_" + out
	}
	return out
}

// cKeywords are the C11 keywords plus the names a C23 compiler or the
// standard headers would claim.
var cKeywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true,
	"sizeof": true, "static": true, "struct": true, "switch": true,
	"typedef": true, "union": true, "unsigned": true, "void": true,
	"volatile": true, "while": true,
	"_Alignas": true, "_Alignof": true, "_Atomic": true, "_Bool": true,
	"_Complex": true, "_Generic": true, "_Imaginary": true, "_Noreturn": true,
	"_Static_assert": true, "_Thread_local": true,
	"alignas": true, "alignof": true, "bool": true, "constexpr": true,
	"false": true, "nullptr": true, "static_assert": true, "thread_local": true,
	"true": true, "typeof": true, "typeof_unqual": true, "NULL": true,
}

func isCIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}

// quoteC renders s as a C literal delimited by quote.
func quoteC(s string, quote rune) string {
	var b strings.Builder
	b.WriteRune(quote)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		case quote:
			b.WriteRune('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(quote)
	return b.String()
}
