package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit          key.Binding
	NextTab       key.Binding
	PrevTab       key.Binding
	Search        key.Binding
	FilterSection key.Binding
	Sort          key.Binding
	ClearFilter   key.Binding
	Reload        key.Binding
	Up            key.Binding
	Down          key.Binding
	Attack        key.Binding
	Remediate     key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	NextTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next tab"),
	),
	PrevTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous tab"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	FilterSection: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "filter section"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "cycle sort"),
	),
	ClearFilter: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear"),
	),
	Reload: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "reload"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Attack: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "simulate attack"),
	),
	Remediate: key.NewBinding(
		key.WithKeys("enter", "r"),
		key.WithHelp("enter", "execute remediation"),
	),
}
