package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/missal1962/internal/calendar"
)

// NewAnchorsCommand creates the anchors command.
func NewAnchorsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "anchors [YYYY]",
		Short: "Print the movable anchor dates of a year",
		Long: `Print Easter and every date derived from it or from the weekday
rules: Septuagesima, Ash Wednesday, Ascension, Pentecost, the Holy Name and
Holy Family, the September Ember days, Christ the King, the 24th Sunday after
Pentecost, Advent, and the Sunday within the Octave of Christmas.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnchors(cmd, rootOpts, args)
		},
	}
}

func runAnchors(cmd *cobra.Command, opts *RootOptions, args []string) error {
	f := opts.formatter(cmd)

	year, err := yearArg(args, 0)
	if err != nil {
		return f.Error(ExitCommandError, "invalid year", err)
	}

	anchors := calendar.ComputeAnchors(year)

	return f.Success(anchors, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, d := range anchors.Dates() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Name, calendar.FormatDate(d.Date), calendar.DayName(d.Date))
		}
		if anchors.OctaveOfChristmasSunday == nil {
			fmt.Fprintf(tw, "octave_of_christmas_sunday\t-\t\n")
		}
		return tw.Flush()
	})
}
