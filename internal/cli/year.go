package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/missal1962/internal/calendar"
	"github.com/zapponejosh/missal1962/internal/service"
)

// NewYearCommand creates the year command.
func NewYearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "year [YYYY]",
		Short: "Print every day of a liturgical year",
		Long: `Print every day of the year with its weekday and observances.

The year defaults to the current civil year.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runYear(cmd, rootOpts, args)
		},
	}
}

func runYear(cmd *cobra.Command, opts *RootOptions, args []string) error {
	f := opts.formatter(cmd)

	year, err := yearArg(args, 0)
	if err != nil {
		return f.Error(ExitCommandError, "invalid year", err)
	}

	calendars, err := opts.calendars(cmd)
	if err != nil {
		return f.Error(ExitCommandError, "load rules", err)
	}

	y, err := calendars.Year(commandContext(cmd), year)
	if err != nil {
		return f.Error(ExitCommandError, "build year", err)
	}
	f.VerboseLog("Built %d: %d days from %s", year, y.Len(), calendars.RulesSource())

	return f.Success(y, func(w io.Writer) error {
		return writeDays(w, y.Days())
	})
}

// writeDays prints one line per day: date, weekday and identifiers.
func writeDays(w io.Writer, days []calendar.Day) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, day := range days {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			calendar.FormatDate(day.Date),
			calendar.DayName(day.Date),
			strings.Join(day.Tokens(), " "),
		)
	}
	return tw.Flush()
}

// yearArg parses args[i] as a year, defaulting to the current year.
func yearArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return time.Now().Year(), nil
	}
	year, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%q is not a year", args[i])
	}
	if err := calendar.ValidateYear(year); err != nil {
		return 0, err
	}
	return year, nil
}

// calendars builds the service used by the commands. The CLI never caches.
func (o *RootOptions) calendars(cmd *cobra.Command) (*service.Calendars, error) {
	tables, err := o.loadRules()
	if err != nil {
		return nil, err
	}
	return service.New(nil, tables, o.logger(cmd.ErrOrStderr())), nil
}

// commandContext returns the command's context or a background one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
