package lili

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// SourceLocation represents a location in source code
type SourceLocation struct {
	Filename string
	Line     int
	Column   int
	Length   int             // Length of the syntax node that caused the error
	End      *SourcePosition // Optional: end position of the node
}

// SourcePosition represents a position in source code
type SourcePosition struct {
	Line   int
	Column int
}

func (loc *SourceLocation) String() string {
	if loc == nil {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", loc.Filename, loc.Line, loc.Column)
}

// SourceLocatable is implemented by nodes and errors that know where they
// came from.
type SourceLocatable interface {
	GetSourceLocation() *SourceLocation
}

// LocationOf returns the source location attached to err, if any.
func LocationOf(err error) *SourceLocation {
	var loc SourceLocatable
	if errors.As(err, &loc) {
		return loc.GetSourceLocation()
	}
	return nil
}

// SyntaxError is raised by the lexer and parser.
type SyntaxError struct {
	Message  string
	Location *SourceLocation
}

func (e *SyntaxError) Error() string                      { return "syntax error: " + e.Message }
func (e *SyntaxError) GetSourceLocation() *SourceLocation { return e.Location }

// StructuralError reports a malformed defun or argument list.
type StructuralError struct {
	Message  string
	Location *SourceLocation
}

func (e *StructuralError) Error() string                      { return e.Message }
func (e *StructuralError) GetSourceLocation() *SourceLocation { return e.Location }

// UnknownSymbolError reports a callee or identifier that cannot be resolved.
type UnknownSymbolError struct {
	Name     string
	Location *SourceLocation
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown symbol %s", e.Name)
}

func (e *UnknownSymbolError) GetSourceLocation() *SourceLocation { return e.Location }

// ArityError reports a call with the wrong number of arguments.
type ArityError struct {
	Function string
	Want     int
	Got      int
	Location *SourceLocation
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("wrong number of arguments in call to %s: want %d, got %d", e.Function, e.Want, e.Got)
}

func (e *ArityError) GetSourceLocation() *SourceLocation { return e.Location }

// TypeMismatchError reports an argument whose type is incompatible with the
// declared parameter type. Position is 1-based; it is 0 when the mismatch is
// a parameter whose uses conflict within its own function.
type TypeMismatchError struct {
	Function string
	Param    string
	Position int
	Want     VarType
	Got      VarType
	Location *SourceLocation
}

func (e *TypeMismatchError) Error() string {
	if e.Position == 0 {
		return fmt.Sprintf("parameter %s of %s is used with conflicting types", e.Param, e.Function)
	}
	return fmt.Sprintf("wrong argument type in call to %s: argument %d (%s) wants %s, got %s",
		e.Function, e.Position, e.Param, e.Want, e.Got)
}

func (e *TypeMismatchError) GetSourceLocation() *SourceLocation { return e.Location }

// LoweringError reports a construct with no C rendition: a misused built-in
// operator or a name C cannot spell.
type LoweringError struct {
	Operator string
	Message  string
	Location *SourceLocation
}

func (e *LoweringError) Error() string {
	return fmt.Sprintf("cannot lower %s: %s", e.Operator, e.Message)
}

func (e *LoweringError) GetSourceLocation() *SourceLocation { return e.Location }

// SourceError represents an error with source location information
type SourceError struct {
	Inner    error
	Location *SourceLocation
	Source   string // The source code of the file
}

// NewSourceError creates a new SourceError
func NewSourceError(inner error, location *SourceLocation, source string) *SourceError {
	return &SourceError{
		Inner:    inner,
		Location: location,
		Source:   source,
	}
}

// WithSource attaches source context to err when it carries a location.
func WithSource(err error, source string) error {
	if err == nil {
		return nil
	}
	var sourceErr *SourceError
	if errors.As(err, &sourceErr) {
		return err
	}
	loc := LocationOf(err)
	if loc == nil {
		return err
	}
	return NewSourceError(err, loc, source)
}

func (e *SourceError) Unwrap() error {
	return e.Inner
}

func (e *SourceError) Error() string {
	if e.Location == nil {
		return e.Inner.Error()
	}

	return e.FormatWithHighlighting()
}

// Plain returns the highlighted error with all styling removed.
func (e *SourceError) Plain() string {
	return ansi.Strip(e.Error())
}

var (
	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	locationStyle  = lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("4"))
	gutterStyle    = lipgloss.NewStyle().Faint(true)
	errorLineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	underlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// FormatWithHighlighting returns a nicely formatted error with syntax highlighting
func (e *SourceError) FormatWithHighlighting() string {
	lines := strings.Split(e.Source, "\n")
	if e.Location.Line < 1 || e.Location.Line > len(lines) {
		return e.Inner.Error()
	}

	var result strings.Builder

	result.WriteString(fmt.Sprintf("%s %s\n", errorStyle.Render("Error:"), e.Inner))
	result.WriteString(fmt.Sprintf("  %s\n", locationStyle.Render("--> "+e.Location.String())))
	result.WriteString(fmt.Sprintf(" %s\n", gutterStyle.Render(padLeft("", 3)+" |")))

	startLine := max(1, e.Location.Line-2)
	endLine := min(len(lines), e.Location.Line+2)

	for i := startLine; i <= endLine; i++ {
		lineNo := padLeft(fmt.Sprintf("%d", i), 3)
		if i == e.Location.Line {
			result.WriteString(fmt.Sprintf(" %s %s\n", errorLineStyle.Render(lineNo+" |"), lines[i-1]))

			// 1 space + 3 for line number + " | " + column - 1
			padding := strings.Repeat(" ", 1+3+3+e.Location.Column-1)
			underline := strings.Repeat("^", max(1, e.Location.Length))
			result.WriteString(padding + underlineStyle.Render(underline) + "\n")
		} else {
			result.WriteString(fmt.Sprintf(" %s %s\n", gutterStyle.Render(lineNo+" |"), lines[i-1]))
		}
	}

	result.WriteString(fmt.Sprintf(" %s\n", gutterStyle.Render(padLeft("", 3)+" |")))

	return result.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
