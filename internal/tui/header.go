package tui

import (
	"fmt"
	"strings"

	"github.com/ppiankov/pipeguard/internal/findings"
	"github.com/ppiankov/pipeguard/internal/models"
	"github.com/ppiankov/pipeguard/internal/playbook"
)

// headerHeight is the number of terminal lines the header occupies.
const headerHeight = 5

var tabTitles = []string{"Compliance", "Playbooks"}

// renderHeader produces the header from the findings view and incident state.
func renderHeader(active tab, view findings.View, catalog *playbook.Catalog, state playbook.State, width int) string {
	var b strings.Builder

	// Line 1: title and tabs
	b.WriteString("pipeguard  ")
	for i, title := range tabTitles {
		if tab(i) == active {
			b.WriteString(styleActiveTab.Render(title))
		} else {
			b.WriteString(styleInactiveTab.Render(title))
		}
	}
	b.WriteString("\n")

	// Line 2: findings summary
	switch view.State {
	case findings.StateLoaded:
		passed, failed := view.Document.Tally()
		b.WriteString(fmt.Sprintf("Checks: %d  ", passed+failed))
		b.WriteString(renderTally(passed, failed))
		if view.Document.GeneratedAt != "" {
			b.WriteString(fmt.Sprintf("  Generated: %s", view.Document.GeneratedAt))
		}
	default:
		b.WriteString(fmt.Sprintf("Findings: %s", view.State))
	}
	b.WriteString("\n")

	// Line 3: incident state
	b.WriteString(renderIncident(catalog, state))

	return styleHeader.Width(width).Render(b.String())
}

func renderTally(passed, failed int) string {
	p := checkStatusStyle(models.CheckPass).Render(fmt.Sprintf("Passed: %d", passed))
	f := checkStatusStyle(models.CheckFail).Render(fmt.Sprintf("Failed: %d", failed))
	return p + "  " + f
}

func renderIncident(catalog *playbook.Catalog, state playbook.State) string {
	id, attacked := state.UnderAttack()
	if !attacked {
		return "Incident: " + styleOK.Render("none")
	}
	title := fmt.Sprintf("playbook %d", id)
	if p, ok := catalog.Get(id); ok {
		title = p.Title
	}
	return "Incident: " + styleError.Render("UNDER ATTACK: "+title)
}
