package lili

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lili-lang/lili/pkg/ioctx"
	"github.com/pkg/errors"
)

// Unit is one compiled source file.
type Unit struct {
	Filename  string
	Header    string
	Table     *SymbolTable
	Functions []*GeneratedFunction

	// Inference statistics.
	Rounds    int
	Converged bool
}

// WriteTo writes the C translation unit: the runtime include, the
// prototypes, then the definitions.
func (u *Unit) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "#include <%s>\n\n", u.Header)
	for _, fn := range u.Functions {
		buf.WriteString(fn.Prototype + ";\n")
	}
	if len(u.Functions) > 0 {
		buf.WriteString("\n")
	}
	for _, fn := range u.Functions {
		buf.WriteString(fn.String() + "\n")
	}
	return buf.WriteTo(w)
}

func (u *Unit) String() string {
	var buf bytes.Buffer
	_, _ = u.WriteTo(&buf)
	return buf.String()
}

// CompileFile reads and compiles a single file.
func CompileFile(ctx context.Context, path string, config *Config) (*Unit, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Compile(ctx, path, source, config)
}

// Compile runs the whole pipeline over source. Errors carrying a location
// are returned as *SourceError so they render against the source text.
func Compile(ctx context.Context, filename string, source []byte, config *Config) (*Unit, error) {
	forms, err := Parse(filename, source)
	if err != nil {
		return nil, WithSource(err, string(source))
	}
	unit, err := CompileForms(ctx, forms, config)
	if err != nil {
		return nil, WithSource(err, string(source))
	}
	unit.Filename = filename
	return unit, nil
}

// CompileForms builds, infers, validates and lowers parsed top-level forms.
// A fresh symbol table is built for every call.
func CompileForms(ctx context.Context, forms []Node, config *Config) (*Unit, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	logger := ioctx.LoggerFromContext(ctx)

	st, err := BuildSymbolTable(forms)
	if err != nil {
		return nil, err
	}

	res := Infer(ctx, st, config.MaxRounds)
	for _, def := range res.Table.Functions() {
		logger.DebugContext(ctx, "inferred", "signature", def.Signature())
	}

	if err := Validate(res.Table); err != nil {
		return nil, err
	}

	fns, err := NewLowerer(res.Table, config).LowerAll()
	if err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "lowered functions", "count", len(fns))

	return &Unit{
		Header:    config.Header,
		Table:     res.Table,
		Functions: fns,
		Rounds:    res.Rounds,
		Converged: res.Converged,
	}, nil
}
