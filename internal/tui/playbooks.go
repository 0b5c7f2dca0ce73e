package tui

import (
	"fmt"
	"strings"

	"github.com/ppiankov/pipeguard/internal/playbook"
)

const minCardWidth = 20

// renderPlaybooks draws one card per playbook. The selected card shows its
// steps and the remediation button. Any card with a pending remediation
// shows its running script.
func (m *Model) renderPlaybooks() string {
	catalog := m.sim.Catalog()
	activeID, attacked := m.sim.State().UnderAttack()

	cards := make([]string, 0, catalog.Len())
	for i := 0; i < catalog.Len(); i++ {
		p := catalog.At(i)
		underAttack := attacked && p.ID == activeID
		cards = append(cards, m.renderCard(p, i == m.cardCursor, underAttack))
	}
	return strings.Join(cards, "\n")
}

func (m *Model) renderCard(p playbook.Playbook, selected, underAttack bool) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%d. %s", p.ID, p.Title))
	if underAttack {
		b.WriteString("  " + styleError.Render("UNDER ATTACK"))
	}
	b.WriteString("\n")
	b.WriteString(styleFooter.UnsetPadding().Render("Trigger: " + p.TriggerDescription))

	if selected {
		for i, step := range p.Steps {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	switch {
	case m.sched.Pending(p.ID):
		b.WriteString(fmt.Sprintf("\nRunning %s...", p.RemediationScript))
	case selected:
		b.WriteString("\n" + styleButton.Render("Execute Remediation"))
	}

	style := styleCard
	switch {
	case underAttack:
		style = styleAttackedCard
	case selected:
		style = styleSelectedCard
	}
	width := m.width - 2
	if width < minCardWidth {
		width = minCardWidth
	}
	return style.Width(width).Render(b.String())
}
