package api

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zapponejosh/missal1962/internal/calendar"
)

// ICSProductID identifies the exporter in PRODID.
const ICSProductID = "-//missal1962//Liturgical Calendar 1962//LA"

// WriteICS writes the year as an iCalendar file with one all-day VEVENT
// per observance. stamp is used for every DTSTAMP.
func WriteICS(w io.Writer, y *calendar.LiturgicalYear, stamp time.Time) error {
	bw := bufio.NewWriter(w)
	line := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\r\n", args...)
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:%s", ICSProductID)
	line("CALSCALE:GREGORIAN")
	line("X-WR-CALNAME:Missale Romanum 1962 %d", y.Year())

	dtstamp := stamp.UTC().Format("20060102T150405Z")
	for _, day := range y.Days() {
		for pos, id := range day.Identifiers {
			date := day.Date.Format("20060102")
			line("BEGIN:VEVENT")
			line("UID:%s-%d-%s@missal1962", date, pos, escapeICS(id.Name))
			line("DTSTAMP:%s", dtstamp)
			line("DTSTART;VALUE=DATE:%s", date)
			line("DTEND;VALUE=DATE:%s", day.Date.AddDate(0, 0, 1).Format("20060102"))
			line("SUMMARY:%s", escapeICS(id.Name))
			if id.Precedence != nil {
				line("DESCRIPTION:Class %d", *id.Precedence)
			}
			line("END:VEVENT")
		}
	}

	line("END:VCALENDAR")
	return bw.Flush()
}

// escapeICS escapes TEXT values per RFC 5545.
func escapeICS(s string) string {
	return strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\n", `\n`,
	).Replace(s)
}
