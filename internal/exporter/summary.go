package exporter

import (
	"io"
	"time"

	"VixPull/internal/model"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteSummaryTable prints a finished run as a two-column table.
func WriteSummaryTable(w io.Writer, s model.RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendRows([]table.Row{
		{"Run", s.RunID},
		{"Range", s.Start.Format(model.DateLayout) + " .. " + s.Stop.Format(model.DateLayout)},
		{"Days to pull", humanize.Comma(int64(s.BusinessDays))},
		{"Records", humanize.Comma(int64(s.Records))},
		{"Error rows", humanize.Comma(int64(s.ErrorRows))},
		{"Elapsed", s.Elapsed.Round(time.Millisecond).String()},
	})
	output := "(not written)"
	if s.Written {
		output = s.Output
	}
	t.AppendRow(table.Row{"Output", output})
	if s.HaltReason != "" {
		t.AppendRow(table.Row{"Halted", s.HaltReason})
	}
	t.Render()
}
