package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/pipeguard/internal/classify"
	"github.com/ppiankov/pipeguard/internal/models"
)

// Chrome colors
var (
	colorMuted  = lipgloss.Color("#888888")
	colorAccent = lipgloss.Color("#7B68EE")
	colorBorder = lipgloss.Color("#444444")
	colorAlert  = lipgloss.Color(classify.ColorRed)
	colorOK     = lipgloss.Color(classify.ColorGreen)
)

// Panel styles
var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	styleDetailPanel = lipgloss.NewStyle().
				Padding(0, 1).
				BorderStyle(lipgloss.NormalBorder()).
				BorderTop(true).
				BorderForeground(colorBorder)

	styleFooter = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	styleSearchPrompt = lipgloss.NewStyle().
				Foreground(colorAccent).Bold(true)

	styleActiveTab = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorAccent).
			Padding(0, 1)

	styleInactiveTab = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 1)

	styleError = lipgloss.NewStyle().
			Foreground(colorAlert).Bold(true)

	styleOK = lipgloss.NewStyle().
		Foreground(colorOK)

	styleCard = lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	styleSelectedCard = styleCard.
				BorderForeground(colorAccent)

	styleAttackedCard = styleCard.
				BorderForeground(colorAlert)

	styleButton = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(colorAlert).
			Padding(0, 1)
)

// severityStyle returns the lipgloss style for a severity level.
func severityStyle(severity models.Severity) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(classify.ForSeverity(string(severity)).Color))
	switch severity.Normalize() {
	case models.SeverityCritical, models.SeverityHigh:
		return style.Bold(true)
	default:
		return style
	}
}

// checkStatusStyle returns the lipgloss style for a PASS/FAIL result.
func checkStatusStyle(status models.CheckStatus) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(classify.ForCheckStatus(string(status)).Color)).
		Bold(status.Normalize() != models.CheckPass)
}
