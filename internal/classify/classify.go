// Package classify maps statuses and severities to display tokens.
// Every function is total: unknown input falls back to a neutral style.
package classify

import (
	"strings"

	"github.com/ppiankov/pipeguard/internal/models"
)

// Style is a color token plus an icon.
type Style struct {
	Color string
	Icon  string
}

// Color tokens shared by chat messages and the terminal UI.
const (
	ColorGreen  = "#36a64f"
	ColorRed    = "#dc3545"
	ColorAmber  = "#ffc107"
	ColorTeal   = "#17a2b8"
	ColorOrange = "#fd7e14"
	ColorLime   = "#28a745"
	ColorGray   = "#6c757d"
)

var (
	statusStyles = map[models.Status]Style{
		models.StatusSuccess: {Color: ColorGreen, Icon: "✅"},
		models.StatusFailure: {Color: ColorRed, Icon: "❌"},
		models.StatusWarning: {Color: ColorAmber, Icon: "⚠️"},
		models.StatusInfo:    {Color: ColorTeal, Icon: "ℹ️"},
	}

	severityStyles = map[models.Severity]Style{
		models.SeverityCritical: {Color: ColorRed, Icon: "🔴"},
		models.SeverityHigh:     {Color: ColorOrange, Icon: "🟠"},
		models.SeverityMedium:   {Color: ColorAmber, Icon: "🟡"},
		models.SeverityLow:      {Color: ColorLime, Icon: "🟢"},
	}

	neutral = Style{Color: ColorGray, Icon: "ℹ️"}
)

// ForStatus returns the style for a notification status.
// Unrecognised statuses get the info style.
func ForStatus(status string) Style {
	if s, ok := statusStyles[models.Status(strings.ToLower(strings.TrimSpace(status)))]; ok {
		return s
	}
	return statusStyles[models.StatusInfo]
}

// ForSeverity returns the style for a severity label.
func ForSeverity(severity string) Style {
	if s, ok := severityStyles[models.Severity(strings.ToUpper(strings.TrimSpace(severity)))]; ok {
		return s
	}
	return neutral
}

// ForCheckStatus returns the affirmative style for PASS and the negative
// style for anything else.
func ForCheckStatus(status string) Style {
	if models.CheckStatus(strings.ToUpper(strings.TrimSpace(status))) == models.CheckPass {
		return statusStyles[models.StatusSuccess]
	}
	return statusStyles[models.StatusFailure]
}

// KnownStatus reports whether status is one of the defined statuses.
func KnownStatus(status string) bool {
	_, ok := statusStyles[models.Status(strings.ToLower(strings.TrimSpace(status)))]
	return ok
}
