package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/claude/onerm/internal/calc"
	"github.com/claude/onerm/internal/i18n"
	"github.com/claude/onerm/internal/persist"
	"github.com/claude/onerm/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	gCalculate    = "Calculate:"
	gShare        = "Share:"
	commandGroups = []string{gCalculate, gShare}
)

// cliNamespace scopes the CLI's saved inputs inside the state database.
const cliNamespace = "cli"

// app carries the global flags and the opened state store.
type app struct {
	statePath string
	lang      string
	baseURL   string

	kv    *storage.SQLite
	store persist.Store
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".onerm", "state.db")
	}
	return filepath.Join(home, ".onerm", "state.db")
}

// locale is the --lang flag, else the saved locale, else Korean.
func (a *app) locale(ctx context.Context) calc.Locale {
	if l, ok := calc.ParseLocale(a.lang); ok {
		return l
	}
	return persist.LoadLocale(ctx, a.store, calc.DefaultLocale)
}

func (a *app) strings(ctx context.Context) i18n.Strings {
	return i18n.For(a.locale(ctx))
}

func bold(format string, a ...any) string {
	return color.New(color.Bold).Sprintf(format, a...)
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		var kind calc.ErrorKind
		if !errors.As(err, &kind) {
			fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		}
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "onerm",
		Short: "onerm estimates one-rep maxes from the command line",
		Long: `onerm estimates a one-rep max (1RM) for bench press, squat and deadlift
from a weight lifted for 1 to 10 reps, using the Epley formula.

The last inputs are remembered between runs, like the web calculator does.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if a.lang != "" {
				if _, ok := calc.ParseLocale(a.lang); !ok {
					return fmt.Errorf("unknown language %q (want ko, en or ja)", a.lang)
				}
			}
			kv, err := storage.OpenSQLite(a.statePath)
			if err != nil {
				return fmt.Errorf("opening state: %w", err)
			}
			a.kv = kv
			a.store = storage.Scope(kv, cliNamespace)
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if a.kv != nil {
				return a.kv.Close()
			}
			return nil
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVar(&a.statePath, "state", defaultStatePath(), "state database path")
	globalFlags.StringVarP(&a.lang, "lang", "l", "", "output language (ko, en, ja); defaults to the saved language")
	globalFlags.StringVar(&a.baseURL, "base-url", "https://localhost:8080/", "calculator URL share links point to")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		newCalcCommand(a),
		newLastCommand(a),
		newLangCommand(a),
		newBatchCommand(a),
		newShareURLCommand(a),
		newExportCommand(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, _ []string) {
				cmd.Println("onerm", Version)
			},
		},
	)

	return cmd
}
