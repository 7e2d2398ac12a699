package cli

import (
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/missal1962/internal/calendar"
)

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "find <identifier>",
		Short: "Find the first day carrying an observance",
		Long: `Find the first day of the year carrying an observance.

The identifier may include its precedence class ("dom_adventus_1:1"); without
one, any class matches. Exits with status 1 when no day carries it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, rootOpts, args[0], year)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year to search (default: current year)")

	return cmd
}

func runFind(cmd *cobra.Command, opts *RootOptions, token string, year int) error {
	f := opts.formatter(cmd)

	if year == 0 {
		year = time.Now().Year()
	}
	if err := calendar.ValidateYear(year); err != nil {
		return f.Error(ExitCommandError, "invalid year", err)
	}

	calendars, err := opts.calendars(cmd)
	if err != nil {
		return f.Error(ExitCommandError, "load rules", err)
	}

	day, err := calendars.FindObservance(commandContext(cmd), year, token)
	if errors.Is(err, calendar.ErrNotFound) {
		return f.Error(ExitFailure, "not found", err)
	}
	if err != nil {
		return f.Error(ExitCommandError, "build year", err)
	}

	return f.Success(day, func(w io.Writer) error {
		return writeDays(w, []calendar.Day{day})
	})
}
