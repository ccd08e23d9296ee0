package ioctx

import (
	"context"
	"io"
	"log/slog"
)

type stdoutKey struct{}
type stderrKey struct{}
type loggerKey struct{}

func StderrFromContext(ctx context.Context) io.Writer {
	w := ctx.Value(stderrKey{})
	if w == nil {
		w = io.Discard
	}

	return w.(io.Writer)
}

func StderrToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stderrKey{}, w)
}

func StdoutFromContext(ctx context.Context) io.Writer {
	w := ctx.Value(stdoutKey{})
	if w == nil {
		w = io.Discard
	}

	return w.(io.Writer)
}

func StdoutToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey{}, w)
}

// LoggerFromContext returns the logger stored in ctx, or slog.Default.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

func LoggerToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}
