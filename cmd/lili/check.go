package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/lili-lang/lili/pkg/ioctx"
	"github.com/lili-lang/lili/pkg/lili"
	"github.com/spf13/cobra"
)

var (
	fileStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	typeStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("117"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func checkCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check [flags] file.ll...",
		Short: "Type-check files and print the inferred signatures",
		Long: `Check runs inference and validation without writing any C, then prints
the signature inferred for every function.`,
		Example: `  lili check prog.ll`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), *cfg)
			config, err := loadConfig(ctx, cmd, *cfg)
			if err != nil {
				return err
			}
			return runCheck(ctx, args, config)
		},
	}
}

func runCheck(ctx context.Context, paths []string, config *lili.Config) error {
	units, err := compileAll(ctx, paths, config)
	if err != nil {
		return err
	}

	w := ioctx.StdoutFromContext(ctx)
	for i, unit := range units {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeSignatures(w, unit)
	}
	return nil
}

func writeSignatures(w io.Writer, unit *lili.Unit) {
	fmt.Fprintln(w, fileStyle.Render(unit.Filename))

	fns := unit.Table.Functions()
	if len(fns) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no functions"))
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("FUNCTION", "PARAMETERS", "RETURNS").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle
			default:
				return typeStyle
			}
		})

	for _, def := range fns {
		params := make([]string, len(def.Params))
		for i, p := range def.Params {
			params[i] = p.Name + " " + p.Type.String()
		}
		t.Row(def.Name, strings.Join(params, ", "), def.Ret.String())
	}
	fmt.Fprintln(w, t.Render())

	summary := fmt.Sprintf("inferred in %d rounds", unit.Rounds)
	if !unit.Converged {
		fmt.Fprintln(w, warnStyle.Render(summary+" (round limit reached)"))
		return
	}
	fmt.Fprintln(w, dimStyle.Render(summary))
}
