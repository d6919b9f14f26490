package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/domain"
)

// column describes one column of CLI table output
type column struct {
	title string
	align text.Align
	state bool // cells hold sensor states and are coloured
}

var (
	onlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	offlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderTable draws rows under columns. Short rows are padded with blanks.
func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: c.align, AlignHeader: text.AlignLeft}
		if c.state {
			configs[i].Transformer = func(v any) string { return styleState(fmt.Sprint(v)) }
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	return tw.Render()
}

// styleState colours a sensor state for terminal output
func styleState(state string) string {
	switch state {
	case domain.StateOnline:
		return onlineStyle.Render(state)
	case "":
		return pendingStyle.Render("pending")
	default:
		return offlineStyle.Render(state)
	}
}
