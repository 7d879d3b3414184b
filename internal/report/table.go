package report

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"shuffle/internal/catalog"
)

// RenderTable renders the reconciliation table. colorize adds ANSI colours to
// the status column.
func RenderTable(r *Report, colorize bool) string {
	tw := newTable()
	tw.AppendHeader(table.Row{"#", "Title", "Status", "Outcome"})
	for _, row := range r.Rows {
		tw.AppendRow(table.Row{
			strconv.Itoa(row.Index),
			row.Title,
			statusCell(row.Status, colorize),
			row.Outcome.Label(),
		})
	}
	c := r.Counts()
	footer := fmt.Sprintf("%d successful, %d failed, %d not found", c.Successful, c.Failed, c.NotFound)
	if c.Cancelled > 0 {
		footer += fmt.Sprintf(", %d cancelled", c.Cancelled)
	}
	tw.AppendFooter(table.Row{"", footer, "", ""}, table.RowConfig{AutoMerge: true})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft, AlignFooter: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// RenderItems renders the batch listing shown before a download.
func RenderItems(items []catalog.Item) string {
	tw := newTable()
	tw.AppendHeader(table.Row{"#", "Title", "Artist(s)", "Album", "Duration"})
	for i, item := range items {
		tw.AppendRow(table.Row{
			strconv.Itoa(i + 1),
			item.Label(),
			item.ArtistLine(),
			item.Album,
			catalog.FormatDuration(item.Duration),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

// newTable returns a rounded table that keeps header and footer text as
// written.
func newTable() table.Writer {
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	tw := table.NewWriter()
	tw.SetStyle(style)
	return tw
}

func statusCell(status Status, colorize bool) string {
	if !colorize {
		return string(status)
	}
	switch status {
	case StatusDownloadSuccessful:
		return text.Colors{text.FgGreen}.Sprint(string(status))
	default:
		return text.Colors{text.FgRed}.Sprint(string(status))
	}
}
