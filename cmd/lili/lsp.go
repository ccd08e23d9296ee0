package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/lili-lang/lili/pkg/lsp"
	"github.com/spf13/cobra"
)

func runLSP(ctx context.Context, cmd *cobra.Command, cfg Config) error {
	// Set up logging
	var logDest io.Writer
	if cfg.LSPLogFile != "" {
		logFile, err := os.Create(cfg.LSPLogFile)
		if err != nil {
			return fmt.Errorf("open lsp log: %w", err)
		}
		defer logFile.Close() //nolint:errcheck
		logDest = logFile
	} else {
		logDest = os.Stderr
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	logHandler := slog.NewTextHandler(logDest, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	// documents without a lili.toml of their own use the flags
	config, err := loadConfig(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting LSP server")

	handler := lsp.NewHandler(config)
	srv := jrpc2.NewServer(handler, &jrpc2.ServerOptions{
		AllowPush: true,
		Logger:    func(text string) { logger.Debug(text) },
	})

	// Store server reference in handler for callbacks
	handler.SetServer(srv)

	// Start handling requests
	srv.Start(channel.LSP(stdrwc{}, stdrwc{}))

	logger.InfoContext(ctx, "LSP server closed", "error", srv.Wait())
	return nil
}

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
