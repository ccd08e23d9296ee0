package lili

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind classifies a token.
type TokenKind int

const (
	TokenLParen TokenKind = iota
	TokenRParen
	TokenInt
	TokenChar
	TokenString
	TokenIdent
)

func (k TokenKind) String() string {
	switch k {
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenInt:
		return "integer"
	case TokenChar:
		return "char"
	case TokenString:
		return "string"
	case TokenIdent:
		return "identifier"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is a lexeme with its decoded value.
type Token struct {
	Kind TokenKind
	Text string // identifier name, or decoded string/char contents
	Int  int
	Loc  *SourceLocation
}

func (t Token) String() string {
	switch t.Kind {
	case TokenInt:
		return strconv.Itoa(t.Int)
	case TokenChar:
		return "'" + t.Text + "'"
	case TokenString:
		return strconv.Quote(t.Text)
	case TokenIdent:
		return t.Text
	default:
		return t.Kind.String()
	}
}

const identSymbols = "+-*/<>=!?_"

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || strings.ContainsRune(identSymbols, r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func isDelimiter(r rune) bool {
	return unicode.IsSpace(r) || r == '(' || r == ')' || r == ';' || r == '"' || r == '\''
}

type lexer struct {
	filename string
	src      string
	pos      int
	line     int
	col      int
	tokens   []Token
}

// Lex splits source into tokens. Whitespace and ; comments are skipped.
func Lex(filename, source string) ([]Token, error) {
	lx := &lexer{filename: filename, src: source, line: 1, col: 1}
	for {
		r, ok := lx.peek()
		if !ok {
			return lx.tokens, nil
		}

		start := lx.loc()
		switch {
		case unicode.IsSpace(r):
			lx.next()
		case r == ';':
			for r, ok := lx.peek(); ok && r != '\n'; r, ok = lx.peek() {
				lx.next()
			}
		case r == '(':
			lx.next()
			lx.emit(Token{Kind: TokenLParen}, start, 1)
		case r == ')':
			lx.next()
			lx.emit(Token{Kind: TokenRParen}, start, 1)
		case r == '"':
			if err := lx.lexString(start); err != nil {
				return nil, err
			}
		case r == '\'':
			if err := lx.lexChar(start); err != nil {
				return nil, err
			}
		case unicode.IsDigit(r) || (r == '-' && lx.digitFollows()):
			if err := lx.lexInt(start); err != nil {
				return nil, err
			}
		case isIdentStart(r):
			lx.lexIdent(start)
		default:
			return nil, &SyntaxError{
				Message:  fmt.Sprintf("unknown token %q", r),
				Location: withLength(start, 1),
			}
		}
	}
}

func (lx *lexer) peek() (rune, bool) {
	if lx.pos >= len(lx.src) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
	return r, true
}

func (lx *lexer) next() rune {
	r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
	lx.pos += size
	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return r
}

func (lx *lexer) digitFollows() bool {
	if lx.pos+1 >= len(lx.src) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos+1:])
	return unicode.IsDigit(r)
}

func (lx *lexer) loc() SourceLocation {
	return SourceLocation{Filename: lx.filename, Line: lx.line, Column: lx.col}
}

func withLength(loc SourceLocation, length int) *SourceLocation {
	loc.Length = length
	return &loc
}

func (lx *lexer) emit(tok Token, start SourceLocation, length int) {
	tok.Loc = withLength(start, length)
	lx.tokens = append(lx.tokens, tok)
}

func (lx *lexer) lexIdent(start SourceLocation) {
	begin := lx.pos
	for r, ok := lx.peek(); ok && isIdentPart(r); r, ok = lx.peek() {
		lx.next()
	}
	text := lx.src[begin:lx.pos]
	lx.emit(Token{Kind: TokenIdent, Text: text}, start, utf8.RuneCountInString(text))
}

func (lx *lexer) lexInt(start SourceLocation) error {
	begin := lx.pos
	lx.next()
	for r, ok := lx.peek(); ok && !isDelimiter(r); r, ok = lx.peek() {
		lx.next()
	}
	text := lx.src[begin:lx.pos]
	n, err := strconv.Atoi(text)
	if err != nil {
		return &SyntaxError{
			Message:  fmt.Sprintf("badly formatted number %q", text),
			Location: withLength(start, len(text)),
		}
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return &SyntaxError{
			Message:  fmt.Sprintf("integer constant %s does not fit in a C int", text),
			Location: withLength(start, len(text)),
		}
	}
	lx.emit(Token{Kind: TokenInt, Int: n}, start, len(text))
	return nil
}

// escaped decodes the character after a backslash.
func escaped(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return r
	}
}

func (lx *lexer) lexString(start SourceLocation) error {
	begin := lx.pos
	lx.next() // opening "

	var out strings.Builder
	for {
		r, ok := lx.peek()
		if !ok {
			return &SyntaxError{
				Message:  "expected '\"', got EOF",
				Location: withLength(start, 1),
			}
		}
		lx.next()
		switch r {
		case '"':
			lx.emit(Token{Kind: TokenString, Text: out.String()}, start, lx.pos-begin)
			return nil
		case '\\':
			esc, ok := lx.peek()
			if !ok {
				continue
			}
			lx.next()
			out.WriteRune(escaped(esc))
		default:
			out.WriteRune(r)
		}
	}
}

func (lx *lexer) lexChar(start SourceLocation) error {
	lx.next() // opening '

	unterminated := &SyntaxError{
		Message:  "unterminated character constant",
		Location: withLength(start, 1),
	}

	r, ok := lx.peek()
	if !ok || r == '\'' || r == '\n' {
		return unterminated
	}
	lx.next()
	length := 3
	if r == '\\' {
		esc, ok := lx.peek()
		if !ok {
			return unterminated
		}
		lx.next()
		r = escaped(esc)
		length++
	}

	if closing, ok := lx.peek(); !ok || closing != '\'' {
		return unterminated
	}
	lx.next()

	if r >= utf8.RuneSelf {
		return &SyntaxError{
			Message:  fmt.Sprintf("character constant %q is not ASCII", r),
			Location: withLength(start, length),
		}
	}

	lx.emit(Token{Kind: TokenChar, Text: string(r)}, start, length)
	return nil
}
