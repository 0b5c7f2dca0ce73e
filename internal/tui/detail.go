package tui

import (
	"fmt"
	"strings"

	"github.com/ppiankov/pipeguard/internal/findings"
)

// detailHeight is the fixed number of lines for the detail panel.
const detailHeight = 4

// renderDetail produces the detail view for a selected check.
func renderDetail(row *findingRow, width int) string {
	if row == nil {
		return styleDetailPanel.Width(width).Render("No check selected")
	}

	var b strings.Builder

	sev := severityStyle(row.Check.Severity).Render(findings.SeverityBadge(row.Check.Severity))
	status := checkStatusStyle(row.Check.Status).Render(findings.StatusBadge(row.Check.Status))
	b.WriteString(fmt.Sprintf("%s  %s  %s / %s\n", sev, status, row.Section, row.Check.ID))
	b.WriteString(row.Check.Title)

	return styleDetailPanel.Width(width).Render(b.String())
}
