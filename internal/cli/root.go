// Package cli implements the missal command line tool.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/missal1962/internal/logger"
	"github.com/zapponejosh/missal1962/internal/rules"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	RulesPath string // empty uses the embedded tables
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the missal CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "missal",
		Short: "Liturgical calendar of the 1962 Roman Missal",
		Long: `Compute the liturgical calendar of the 1962 Roman Missal.

Every day of a civil year is listed with the observances that fall on it:
the movable temporal cycle anchored on Easter, Advent and Christmas, the
fixed-date feasts, and at most two identifiers per day after collisions
are resolved.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				err := NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err)
				return err
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.RulesPath, "rules", "", "YAML rule tables (default: embedded 1962 tables)")

	cmd.AddCommand(NewYearCommand(opts))
	cmd.AddCommand(NewAnchorsCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewRulesCommand(opts))

	return cmd
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger returns a logger writing to stderr: debug level with -v,
// warnings only otherwise.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := "warn"
	if o.Verbose {
		level = "debug"
	}
	return logger.New(w, level, "text")
}

// loadRules loads the tables named by --rules. Callers report the error.
func (o *RootOptions) loadRules() (*rules.Rules, error) {
	return rules.LoadOrDefault(o.RulesPath)
}
