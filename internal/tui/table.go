package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/pipeguard/internal/models"
)

var tableColumns = []table.Column{
	{Title: "Section", Width: 11},
	{Title: "ID", Width: 10},
	{Title: "Title", Width: 40},
	{Title: "Severity", Width: 10},
	{Title: "Status", Width: 6},
}

// buildRows converts finding rows to table rows.
func buildRows(rows []findingRow) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, table.Row{
			r.Section,
			truncate(r.Check.ID, tableColumns[1].Width),
			truncate(r.Check.Title, tableColumns[2].Width),
			severityLabel(r.Check.Severity),
			statusLabel(r.Check.Status),
		})
	}
	return out
}

func severityLabel(s models.Severity) string {
	if s = s.Normalize(); s == "" {
		return string(models.SeverityUnknown)
	}
	return string(s)
}

func statusLabel(s models.CheckStatus) string {
	if s.Normalize() == models.CheckPass {
		return string(models.CheckPass)
	}
	return string(models.CheckFail)
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	const ellipsis = "..."
	if maxLen <= len(ellipsis) {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-len(ellipsis)]) + ellipsis
}

// newTable creates a bubbles table with standard columns and styling.
func newTable(rows []table.Row, height int) table.Model {
	t := table.New(
		table.WithColumns(tableColumns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(colorAccent).
		Bold(false)
	t.SetStyles(s)

	return t
}
