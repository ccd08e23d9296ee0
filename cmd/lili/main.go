package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/lili-lang/lili/pkg/ioctx"
	"github.com/lili-lang/lili/pkg/lili"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// Config holds the application configuration
type Config struct {
	Debug      bool
	Output     string
	Header     string
	MaxRounds  int
	LSP        bool
	LSPLogFile string
}

func main() {
	var cfg Config

	// Create the root command
	rootCmd := &cobra.Command{
		Use:   "lili [flags] file.ll...",
		Short: "Little Lisp to C compiler",
		Long: `lili compiles a small Lisp dialect to C.

Every top-level defun becomes a C function whose parameter and return
types are inferred from how it is used. The generated unit includes the
lili runtime header, which provides the list intrinsics.`,
		Example: `  # Compile prog.ll to prog.c
  lili prog.ll

  # Compile to stdout
  lili -o - prog.ll

  # Compile several files at once
  lili a.ll b.ll c.ll

  # Show inferred signatures
  lili check prog.ll

  # Run with debug logging enabled
  lili --debug prog.ll`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.LSP {
				return runLSP(cmd.Context(), cmd, cfg)
			}
			if len(args) == 0 {
				return cmd.Help()
			}
			return run(cmd.Context(), cmd, cfg, args)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfg.Header, "header", "", "Runtime header to include (overrides lili.toml)")
	rootCmd.PersistentFlags().IntVar(&cfg.MaxRounds, "max-rounds", 0, "Type inference round limit (overrides lili.toml)")
	rootCmd.Flags().StringVarP(&cfg.Output, "output", "o", "", "Output file, or - for stdout (single input only)")
	rootCmd.Flags().BoolVar(&cfg.LSP, "lsp", false, "Run in Language Server Protocol mode")
	rootCmd.Flags().StringVar(&cfg.LSPLogFile, "lsp-log-file", "", "Path to LSP log file (stderr if not specified)")

	rootCmd.AddCommand(checkCmd(&cfg), parseCmd(&cfg))

	// Use fang for styled execution with enhanced features
	ctx := context.Background()
	ctx = ioctx.StdoutToContext(ctx, os.Stdout)
	ctx = ioctx.StderrToContext(ctx, os.Stderr)
	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

// setupLogging installs a colored handler on stderr and carries the logger
// in the returned context.
func setupLogging(ctx context.Context, cfg Config) context.Context {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	logger := slog.New(tint.NewHandler(ioctx.StderrFromContext(ctx), &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
	return ioctx.LoggerToContext(ctx, logger)
}

// loadConfig finds lili.toml from the working directory and applies flag
// overrides.
func loadConfig(ctx context.Context, cmd *cobra.Command, cfg Config) (*lili.Config, error) {
	config := lili.DefaultConfig()

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	configPath, found, err := lili.FindConfig(cwd)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", lili.ConfigFileName, err)
	}
	if found != nil {
		ioctx.LoggerFromContext(ctx).DebugContext(ctx, "loaded config", "path", configPath)
		config = found
	}

	if cmd.Flags().Changed("header") {
		config.Header = cfg.Header
	}
	if cmd.Flags().Changed("max-rounds") {
		config.MaxRounds = cfg.MaxRounds
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// compileAll compiles every file concurrently. Each unit gets its own symbol
// table; the results keep the order of paths.
func compileAll(ctx context.Context, paths []string, config *lili.Config) ([]*lili.Unit, error) {
	units := make([]*lili.Unit, len(paths))

	eg, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		eg.Go(func() error {
			unit, err := lili.CompileFile(gctx, path, config)
			if err != nil {
				return err
			}
			if !unit.Converged {
				ioctx.LoggerFromContext(ctx).WarnContext(ctx, "inference hit the round limit; types may be imprecise",
					"file", path, "rounds", unit.Rounds)
			}
			units[i] = unit
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return units, nil
}

func run(ctx context.Context, cmd *cobra.Command, cfg Config, paths []string) error {
	ctx = setupLogging(ctx, cfg)
	logger := ioctx.LoggerFromContext(ctx)

	if cfg.Output != "" && len(paths) > 1 {
		return fmt.Errorf("--output requires a single input file, got %d", len(paths))
	}

	config, err := loadConfig(ctx, cmd, cfg)
	if err != nil {
		return err
	}

	units, err := compileAll(ctx, paths, config)
	if err != nil {
		return err
	}

	for _, unit := range units {
		dest, err := destination(cfg.Output, unit.Filename)
		if err != nil {
			return err
		}

		if dest == "-" {
			if _, err := unit.WriteTo(ioctx.StdoutFromContext(ctx)); err != nil {
				return err
			}
			continue
		}

		if err := writeUnit(dest, unit); err != nil {
			return err
		}
		logger.InfoContext(ctx, "compiled", "source", unit.Filename, "output", dest, "functions", len(unit.Functions))
	}

	return nil
}

// outputPath replaces the source extension with .c.
func outputPath(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + ".c"
}

// destination picks where the C for source goes: output if given, else
// source with a .c extension. It never overwrites the source itself.
func destination(output, source string) (string, error) {
	dest := output
	if dest == "" {
		dest = outputPath(source)
	}
	if dest != "-" && filepath.Clean(dest) == filepath.Clean(source) {
		return "", fmt.Errorf("refusing to overwrite source file %s", source)
	}
	return dest, nil
}

func writeUnit(path string, unit *lili.Unit) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if _, err := unit.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
