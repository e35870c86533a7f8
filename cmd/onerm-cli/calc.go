package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/claude/onerm/internal/calc"
	"github.com/claude/onerm/internal/i18n"
	"github.com/claude/onerm/internal/persist"
	"github.com/claude/onerm/internal/render"
)

// printResult writes a result card, or the validation message for err.
func printResult(cmd *cobra.Command, res calc.Result, err error, t i18n.Strings) error {
	var kind calc.ErrorKind
	if errors.As(err, &kind) {
		cmd.PrintErrln(color.RedString("%s", t.ErrorMessage(kind)))
		return kind
	}
	if err != nil {
		return err
	}
	card := render.Card(res, t)
	cmd.Println(bold("%s", card.Heading))
	cmd.Println("  " + card.Exercise)
	cmd.Println("  " + card.Inputs)
	cmd.Println("  " + color.New(color.Bold, color.FgGreen).Sprint(card.OneRepMax))
	return nil
}

func newCalcCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "calc <exercise> <weight> <reps>",
		GroupID: gCalculate,
		Short:   "Estimate a one-rep max and remember the inputs",
		Long: `Estimate a one-rep max.

exercise is one of bench_press, squat, deadlift. weight is in kg and must be
greater than zero. reps is an integer from 1 to 10.`,
		Example: "  onerm calc squat 100 5\n  onerm calc bench_press 82.5 8 --lang en",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := persist.Restore(ctx, a.store, nil, a.locale(ctx))
			if err := s.SetLocale(a.locale(ctx)); err != nil {
				return err
			}
			d := calc.NewDispatcher(s)
			persist.Bind(ctx, d, a.store, slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn})))

			t := i18n.For(s.Locale())
			if err := d.Dispatch(calc.ExerciseChanged, args[0]); err != nil {
				return fmt.Errorf("%w (use one of bench_press, squat, deadlift)", err)
			}
			_ = d.Dispatch(calc.WeightChanged, args[1])
			_ = d.Dispatch(calc.RepsChanged, args[2])

			err := d.Dispatch(calc.SubmitRequested, "")
			res, _ := s.Result()
			return printResult(cmd, res, err, t)
		},
	}
}

func newLastCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "last",
		GroupID: gCalculate,
		Short:   "Show the last inputs and their estimate",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			t := a.strings(ctx)
			in := persist.LoadInputs(ctx, a.store)
			if in == (calc.Input{}) {
				cmd.Println("no saved inputs; run `onerm calc` first")
				return nil
			}
			cmd.Printf("%s: %s, %s: %skg, %s: %s\n",
				t.ResultExercise, t.ExerciseName(in.Exercise),
				t.ResultWeight, in.Weight,
				t.ResultReps, in.Reps)
			if !in.Complete() {
				return nil
			}
			res, err := calc.Estimate(in)
			return printResult(cmd, res, err, t)
		},
	}
}

func newLangCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "lang <ko|en|ja>",
		GroupID:   gCalculate,
		Short:     "Save the default output language",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(calc.Korean), string(calc.English), string(calc.Japanese)},
		RunE: func(cmd *cobra.Command, args []string) error {
			l, ok := calc.ParseLocale(args[0])
			if !ok {
				return fmt.Errorf("unknown language %q (want ko, en or ja)", args[0])
			}
			ctx := cmd.Context()
			if err := a.store.Set(ctx, persist.KeyLocale, string(l)); err != nil {
				return fmt.Errorf("saving language: %w", err)
			}
			cmd.Println(i18n.For(l).Title, "✔")
			return nil
		},
	}
}
