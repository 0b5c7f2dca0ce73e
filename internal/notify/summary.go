package notify

import (
	"fmt"
	"strings"

	"github.com/ppiankov/pipeguard/internal/classify"
	"github.com/ppiankov/pipeguard/internal/models"
)

// FormatSummary renders the vulnerability counts as one line per severity,
// CRITICAL first. It returns "" when every count is zero so callers can drop
// the whole summary section. Negative counts are clamped to zero.
func FormatSummary(c models.Counts) string {
	if !c.Any() {
		return ""
	}

	lines := make([]string, 0, len(models.SummarySeverities))
	for _, sev := range models.SummarySeverities {
		n := c.Get(sev)
		if n < 0 {
			n = 0
		}
		icon := classify.ForSeverity(string(sev)).Icon
		lines = append(lines, fmt.Sprintf("%s %s: %d", icon, sev.Label(), n))
	}
	return strings.Join(lines, "\n")
}
