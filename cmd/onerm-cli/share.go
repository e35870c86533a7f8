package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/claude/onerm/internal/batch"
	"github.com/claude/onerm/internal/calc"
	"github.com/claude/onerm/internal/persist"
	"github.com/claude/onerm/internal/share"
)

// lastResult re-validates the saved inputs.
func (a *app) lastResult(ctx context.Context) (calc.Input, calc.Result, error) {
	in := persist.LoadInputs(ctx, a.store)
	res, err := calc.Estimate(in)
	return in, res, err
}

func newShareURLCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "share-url",
		GroupID: gShare,
		Short:   "Print a link that reopens the calculator with the last inputs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			base, err := url.Parse(a.baseURL)
			if err != nil {
				return fmt.Errorf("parsing --base-url: %w", err)
			}
			in, _, err := a.lastResult(ctx)
			var kind calc.ErrorKind
			if errors.As(err, &kind) {
				cmd.PrintErrln(color.RedString("%s", a.strings(ctx).ErrorMessage(kind)))
				return kind
			}
			cmd.Println(share.Link(base, in))
			return nil
		},
	}
}

func newExportCommand(a *app) *cobra.Command {
	var (
		output string
		font   string
	)
	cmd := &cobra.Command{
		Use:       "export <pdf|xlsx>",
		GroupID:   gShare,
		Short:     "Write the last result as a PDF card or a spreadsheet",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"pdf", "xlsx"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t := a.strings(ctx)
			_, res, err := a.lastResult(ctx)
			var kind calc.ErrorKind
			if errors.As(err, &kind) {
				cmd.PrintErrln(color.RedString("%s", t.ErrorMessage(kind)))
				return kind
			}

			opts := share.CardOptions{FontPath: font}
			var f share.File
			switch args[0] {
			case "pdf":
				f, err = share.PDF(res, a.locale(ctx), opts)
			case "xlsx":
				f, err = share.XLSX(res, a.locale(ctx), opts)
			default:
				return fmt.Errorf("unknown format %q (want pdf or xlsx)", args[0])
			}
			if err != nil {
				cmd.PrintErrln(color.RedString("%s", t.ExportFailed))
				return err
			}

			path := output
			if path == "" {
				path = f.Name
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("creating %s: %w", dir, err)
				}
			}
			if err := os.WriteFile(path, f.Data, 0o644); err != nil {
				cmd.PrintErrln(color.RedString("%s", t.ExportFailed))
				return fmt.Errorf("writing %s: %w", path, err)
			}
			cmd.Println(color.GreenString("%s", t.Downloaded), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: generated name in the current directory)")
	cmd.Flags().StringVar(&font, "font", "", "TrueType font for non-Latin PDF text")
	return cmd
}

func newBatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "batch <file.xlsx>",
		GroupID: gCalculate,
		Short:   "Estimate every row of a workbook (columns: exercise, weight, reps)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t := a.strings(ctx)

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			report, err := batch.Estimate(f)
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", "#", t.ResultExercise, t.ResultWeight, t.ResultReps, t.Result1RM)
			for _, row := range report.Rows {
				if row.Result == nil {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", row.Line, row.Input.Exercise, row.Input.Weight, row.Input.Reps, color.RedString("%s", row.Error))
					continue
				}
				fmt.Fprintf(tw, "%d\t%s\t%skg\t%d\t%s\n", row.Line, t.ExerciseName(row.Result.Exercise), row.Result.WeightText, row.Result.Reps, bold("%dkg", row.Result.OneRepMax))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			cmd.Printf("%d rows, %d failed\n", report.Count, report.Failed)
			return nil
		},
	}
}
