package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	dateLayout  = "2006-01-02"
	absentValue = "n/a"
)

// TableRenderer writes a terminal summary using aligned tables.
type TableRenderer struct {
	// NoColor suppresses ANSI sequences for non-tty or piped output.
	NoColor bool
}

// Render writes the formatted report.
func (tr TableRenderer) Render(w io.Writer, rep *Report) error {
	heading := color.New(color.FgCyan, color.Bold)
	heading.DisableColor()

	if !tr.NoColor {
		heading.EnableColor()
	}

	var out strings.Builder

	heading.Fprintln(&out, "Reddit Export Summary")
	fmt.Fprintf(&out, "Archives processed: %s\n\n", humanize.Comma(int64(len(rep.Archives))))

	out.WriteString(tr.contentTable(rep))
	out.WriteString("\n\n")
	out.WriteString(tr.activityTable(rep))
	out.WriteString("\n")

	if rep.Dates != nil {
		fmt.Fprintf(&out, "\nActivity from %s to %s\n",
			rep.Dates.First.Format(dateLayout), rep.Dates.Last.Format(dateLayout))
	}

	if rep.MalformedRows > 0 {
		fmt.Fprintf(&out, "Malformed rows skipped: %s\n", humanize.Comma(int64(rep.MalformedRows)))
	}

	_, err := io.WriteString(w, out.String())

	return err
}

func (tr TableRenderer) contentTable(rep *Report) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Kind", "Total", "Mean Len", "StdDev Len", "Median Len"})
	tbl.AppendRow(bodyRow("Posts", rep.Posts))
	tbl.AppendRow(bodyRow("Comments", rep.Comments))

	return tbl.Render()
}

func (tr TableRenderer) activityTable(rep *Report) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Activity", "Up", "Down", "Total"})
	tbl.AppendRow(table.Row{"Post votes",
		humanize.Comma(int64(rep.PostVotes.Up)),
		humanize.Comma(int64(rep.PostVotes.Down)),
		humanize.Comma(int64(rep.PostVotes.Total)),
	})
	tbl.AppendRow(table.Row{"Comment votes",
		humanize.Comma(int64(rep.CommentVotes.Up)),
		humanize.Comma(int64(rep.CommentVotes.Down)),
		humanize.Comma(int64(rep.CommentVotes.Total)),
	})
	tbl.AppendRow(table.Row{"Subscriptions", "", "", humanize.Comma(int64(rep.Subscriptions))})

	return tbl.Render()
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = true

	return tbl
}

func bodyRow(label string, s BodyStats) table.Row {
	return table.Row{
		label,
		humanize.Comma(int64(s.Total)),
		formatStat(s.MeanLength),
		formatStat(s.StdDevLength),
		formatStat(s.MedianLength),
	}
}

func formatStat(v *float64) string {
	if v == nil {
		return absentValue
	}

	return fmt.Sprintf("%.2f", *v)
}
