package main

import (
	"fmt"
	"os"

	"github.com/kr/pretty"
	"github.com/lili-lang/lili/pkg/ioctx"
	"github.com/lili-lang/lili/pkg/lili"
	"github.com/spf13/cobra"
)

func parseCmd(cfg *Config) *cobra.Command {
	var sexp bool

	cmd := &cobra.Command{
		Use:   "parse [flags] file.ll",
		Short: "Print the expression tree of a file",
		Long: `Parse reads a file and dumps its top-level forms after cond folding.

By default every node is printed with its Go structure. Use --sexp to
print the forms back as S-expressions instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), *cfg)

			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			forms, err := lili.Parse(args[0], source)
			if err != nil {
				return lili.WithSource(err, string(source))
			}

			w := ioctx.StdoutFromContext(ctx)
			for _, form := range forms {
				if sexp {
					fmt.Fprintln(w, lili.Format(form))
				} else {
					fmt.Fprintf(w, "%# v\n", pretty.Formatter(form))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&sexp, "sexp", false, "Print S-expressions instead of Go structures")

	return cmd
}
