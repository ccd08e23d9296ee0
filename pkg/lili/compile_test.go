package lili

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/lili-lang/lili/pkg/ioctx"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"
)

func TestMain(m *testing.M) {
	os.Exit(oteltest.Main(m))
}

type CompileSuite struct{}

func TestCompile(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(CompileSuite{})
}

func (CompileSuite) TestUnit(ctx context.Context, t *testctx.T) {
	unit, err := Compile(ctx, "inc.ll", []byte(`
(defun inc (x) (+ x 1))
(defun twice (y) (inc (inc y)))
`), nil)
	require.NoError(t, err)

	require.Equal(t, "inc.ll", unit.Filename)
	require.Equal(t, "lili/lilib.h", unit.Header)
	require.True(t, unit.Converged)
	require.Equal(t, 3, unit.Rounds)
	require.Len(t, unit.Functions, 2)

	sig, ok := unit.Table.Signature("twice")
	require.True(t, ok)
	require.Equal(t, "twice(y Integer) Integer", sig)

	require.Equal(t, `#include <lili/lilib.h>

int inc(int x);
int twice(int y);

int inc(int x){ return ( x + 1 ) ; }
int twice(int y){ return inc(inc(y)) ; }
`, unit.String())
}

func (CompileSuite) TestEmptyUnit(ctx context.Context, t *testctx.T) {
	unit, err := Compile(ctx, "empty.ll", []byte("; nothing here\n"), nil)
	require.NoError(t, err)
	require.Empty(t, unit.Functions)
	require.Equal(t, "#include <lili/lilib.h>\n\n", unit.String())
}

func (CompileSuite) TestConfig(ctx context.Context, t *testctx.T) {
	t.Run("custom header and fallback", func(ctx context.Context, t *testctx.T) {
		config := DefaultConfig()
		config.Header = "rt.h"
		config.CondFallback = FallbackNone

		unit, err := Compile(ctx, "sgn.ll", []byte(`(defun sgn (n) (cond ((< n 0) -1) ((> n 0) 1)))`), config)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(unit.String(), "#include <rt.h>\n"))
		require.NotContains(t, unit.String(), RuntimeNoMatch)
	})

	t.Run("invalid", func(ctx context.Context, t *testctx.T) {
		config := DefaultConfig()
		config.CondFallback = "sometimes"

		_, err := Compile(ctx, "f.ll", []byte(`(defun f () 1)`), config)
		require.ErrorContains(t, err, "invalid config")
	})

	t.Run("round cap", func(ctx context.Context, t *testctx.T) {
		config := DefaultConfig()
		config.MaxRounds = 1

		unit, err := Compile(ctx, "inc.ll", []byte(`(defun inc (x) (+ x 1)) (defun twice (y) (inc (inc y)))`), config)
		require.NoError(t, err)
		require.False(t, unit.Converged)
		require.Equal(t, 1, unit.Rounds)
		require.Equal(t, "LL_Any twice(LL_Any y)", unit.Functions[1].Prototype)
	})
}

func (CompileSuite) TestErrors(ctx context.Context, t *testctx.T) {
	tests := []struct {
		name   string
		src    string
		target any
	}{
		{"syntax", `(defun f (x) x`, new(*SyntaxError)},
		{"structural", `(defun f x x)`, new(*StructuralError)},
		{"arity", `(defun f () (car 1 2))`, new(*ArityError)},
		{"type", `(defun f () (+ "a" 1))`, new(*TypeMismatchError)},
		{"unknown", `(defun f () (g))`, new(*UnknownSymbolError)},
		{"cond value", `(defun f (x) (+ 1 (cond ((null x) 1))))`, new(*LoweringError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			_, err := Compile(ctx, "bad.ll", []byte(tt.src), nil)
			require.Error(t, err)
			require.ErrorAs(t, err, tt.target)

			var sourceErr *SourceError
			require.ErrorAs(t, err, &sourceErr)
			require.Contains(t, sourceErr.Plain(), "--> bad.ll:1:")
		})
	}
}

func (CompileSuite) TestDebugLogging(ctx context.Context, t *testctx.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx = ioctx.LoggerToContext(ctx, logger)

	_, err := Compile(ctx, "addtwo.ll", []byte(`(defun addtwo (x y) (+ x y))`), nil)
	require.NoError(t, err)

	logs := buf.String()
	require.Contains(t, logs, "inference round")
	require.Contains(t, logs, `signature="addtwo(x Integer, y Integer) Integer"`)
	require.Contains(t, logs, "lowered functions")
}

func (CompileSuite) TestCompileFile(ctx context.Context, t *testctx.T) {
	unit, err := CompileFile(ctx, filepath.Join("testdata", "addtwo.ll"), nil)
	require.NoError(t, err)
	require.Len(t, unit.Functions, 1)

	_, err = CompileFile(ctx, filepath.Join("testdata", "missing.ll"), nil)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestGolden(t *testing.T) {
	sources, err := filepath.Glob(filepath.Join("testdata", "*.ll"))
	require.NoError(t, err)
	require.NotEmpty(t, sources)

	for _, path := range sources {
		name := strings.TrimSuffix(filepath.Base(path), ".ll")
		t.Run(name, func(t *testing.T) {
			unit, err := CompileFile(t.Context(), path, nil)
			require.NoError(t, err)
			golden.Assert(t, unit.String(), name+".golden")
		})
	}
}

func TestGoldenErrors(t *testing.T) {
	sources, err := filepath.Glob(filepath.Join("testdata", "errors", "*.ll"))
	require.NoError(t, err)
	require.NotEmpty(t, sources)

	for _, path := range sources {
		name := strings.TrimSuffix(filepath.Base(path), ".ll")
		t.Run(name, func(t *testing.T) {
			source, err := os.ReadFile(path)
			require.NoError(t, err)

			_, err = Compile(t.Context(), filepath.Base(path), source, nil)
			require.Error(t, err)

			var sourceErr *SourceError
			require.ErrorAs(t, err, &sourceErr)
			golden.Assert(t, sourceErr.Plain(), filepath.Join("errors", name+".golden"))
		})
	}
}
