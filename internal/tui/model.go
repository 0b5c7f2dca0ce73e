package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/pipeguard/internal/findings"
	"github.com/ppiankov/pipeguard/internal/metrics"
	"github.com/ppiankov/pipeguard/internal/playbook"
)

// tab identifies the visible dashboard page.
type tab int

const (
	tabCompliance tab = iota
	tabPlaybooks
)

const tabCount = 2

// mode represents the current UI interaction mode.
type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeFilterSection
)

const defaultTableHeight = 12

var errNoSource = errors.New("no findings source configured")

// findingsMsg carries the outcome of a findings load.
type findingsMsg struct {
	view findings.View
}

// remediationMsg is sent when a scheduled remediation's channel yields.
// ok is false when the task was cancelled.
type remediationMsg struct {
	playbookID int
	ok         bool
}

// Options configures the dashboard.
type Options struct {
	Context   context.Context
	Source    *findings.Source
	Simulator *playbook.Simulator
	Scheduler *playbook.Scheduler
}

// Model is the top-level Bubble Tea model for the dashboard.
type Model struct {
	ctx    context.Context
	source *findings.Source
	tab    tab

	// Compliance tab
	view          findings.View
	allRows       []findingRow
	filteredRows  []findingRow
	table         table.Model
	searchInput   textinput.Model
	filters       filterState
	sortBy        sortField
	mode          mode
	sections      []string
	sectionCursor int

	// Playbooks tab
	sim        *playbook.Simulator
	sched      *playbook.Scheduler
	cardCursor int

	width     int
	height    int
	statusMsg string
}

// New creates a new dashboard model. Findings start in the loading state.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	sim := opts.Simulator
	if sim == nil {
		sim = playbook.NewSimulator(playbook.DefaultCatalog(), nil)
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = playbook.NewScheduler(playbook.DefaultRemediationDelay)
	}

	ti := textinput.New()
	ti.Placeholder = "search..."
	ti.CharLimit = 64

	return Model{
		ctx:         ctx,
		source:      opts.Source,
		view:        findings.Loading(),
		table:       newTable(nil, defaultTableHeight),
		searchInput: ti,
		sortBy:      sortBySection,
		mode:        modeNormal,
		sim:         sim,
		sched:       sched,
		width:       80,
		height:      24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.loadFindings()
}

func (m Model) loadFindings() tea.Cmd {
	ctx, src := m.ctx, m.source
	return func() tea.Msg {
		if src == nil {
			return findingsMsg{view: findings.Failed(errNoSource)}
		}
		return findingsMsg{view: findings.Resolve(ctx, src)}
	}
}

// waitForRemediation blocks on a scheduled task and reports its outcome.
func waitForRemediation(playbookID int, ch <-chan playbook.Tick) tea.Cmd {
	return func() tea.Msg {
		_, ok := <-ch
		return remediationMsg{playbookID: playbookID, ok: ok}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		tableH := msg.Height - headerHeight - detailHeight - 3
		if tableH < 3 {
			tableH = 3
		}
		m.table.SetHeight(tableH)
		return m, nil

	case findingsMsg:
		m.applyView(msg.view)
		return m, nil

	case remediationMsg:
		return m.handleRemediation(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	switch {
	case m.mode == modeSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case m.tab == tabCompliance:
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

func (m *Model) applyView(v findings.View) {
	m.view = v
	m.allRows = nil
	if v.State == findings.StateLoaded {
		m.allRows = flattenDocument(v.Document)
	}
	m.sections = sectionNames(m.allRows)
	m.rebuildTable()
}

func (m Model) handleRemediation(msg remediationMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		return m, nil
	}
	result := m.sim.CompleteRemediation(msg.playbookID)
	metrics.ObservePlaybookEvent("remediation")
	if result.Resolved {
		m.statusMsg = fmt.Sprintf("Remediation complete: %s", result.Script)
	} else {
		m.statusMsg = fmt.Sprintf("%s finished; incident unchanged", result.Script)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeFilterSection:
		return m.handleFilterSectionKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.sched.Close()
		return m, tea.Quit
	case key.Matches(msg, keys.NextTab):
		m.tab = (m.tab + 1) % tabCount
		m.statusMsg = ""
		return m, nil
	case key.Matches(msg, keys.PrevTab):
		m.tab = (m.tab + tabCount - 1) % tabCount
		m.statusMsg = ""
		return m, nil
	}

	if m.tab == tabPlaybooks {
		return m.handlePlaybookKey(msg)
	}
	return m.handleComplianceKey(msg)
}

func (m Model) handleComplianceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Reload):
		m.applyView(findings.Loading())
		m.statusMsg = ""
		return m, m.loadFindings()
	case key.Matches(msg, keys.Search):
		m.mode = modeSearch
		m.searchInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, keys.FilterSection):
		m.mode = modeFilterSection
		m.sectionCursor = 0
		return m, nil
	case key.Matches(msg, keys.Sort):
		m.sortBy = (m.sortBy + 1) % sortField(sortFieldCount)
		m.rebuildTable()
		m.statusMsg = fmt.Sprintf("Sort: %s", sortFieldName(m.sortBy))
		return m, nil
	case key.Matches(msg, keys.ClearFilter):
		m.filters = filterState{}
		m.statusMsg = ""
		m.rebuildTable()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filters.SearchText = m.searchInput.Value()
		m.mode = modeNormal
		m.searchInput.Blur()
		m.rebuildTable()
		return m, nil
	case "esc":
		m.mode = modeNormal
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleFilterSectionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.sectionCursor > 0 {
			m.sectionCursor--
		}
	case "down", "j":
		if m.sectionCursor < len(m.sections) {
			m.sectionCursor++
		}
	case "enter":
		if m.sectionCursor == 0 {
			m.filters.Section = ""
		} else if m.sectionCursor <= len(m.sections) {
			m.filters.Section = m.sections[m.sectionCursor-1]
		}
		m.mode = modeNormal
		m.rebuildTable()
		if m.filters.Section != "" {
			m.statusMsg = fmt.Sprintf("Filter: %s", m.filters.Section)
		} else {
			m.statusMsg = ""
		}
	case "esc":
		m.mode = modeNormal
	}
	return m, nil
}

func (m Model) handlePlaybookKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	catalog := m.sim.Catalog()

	switch {
	case key.Matches(msg, keys.Up):
		if m.cardCursor > 0 {
			m.cardCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cardCursor < catalog.Len()-1 {
			m.cardCursor++
		}
	case key.Matches(msg, keys.Attack):
		p, err := m.sim.SimulateAttack()
		if err != nil {
			m.statusMsg = "Incident already active: remediate it first"
			return m, nil
		}
		metrics.ObservePlaybookEvent("attack")
		for i := 0; i < catalog.Len(); i++ {
			if catalog.At(i).ID == p.ID {
				m.cardCursor = i
			}
		}
		m.statusMsg = fmt.Sprintf("ALERT: %s", p.Title)
	case key.Matches(msg, keys.Remediate):
		return m.startRemediation()
	}
	return m, nil
}

func (m Model) startRemediation() (tea.Model, tea.Cmd) {
	p := m.sim.Catalog().At(m.cardCursor)

	ch, ok := m.sched.Schedule(p.ID)
	if !ok {
		m.statusMsg = fmt.Sprintf("%s is already running", p.RemediationScript)
		return m, nil
	}
	m.statusMsg = fmt.Sprintf("Running %s...", p.RemediationScript)
	return m, waitForRemediation(p.ID, ch)
}

func (m *Model) rebuildTable() {
	filtered := applyFilters(m.allRows, m.filters)
	sortRows(filtered, m.sortBy)
	m.filteredRows = filtered
	m.table.SetRows(buildRows(filtered))
	if m.table.Cursor() >= len(filtered) {
		m.table.SetCursor(0)
	}
}

func (m *Model) selectedRow() *findingRow {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.filteredRows) {
		return nil
	}
	return &m.filteredRows[cursor]
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(renderHeader(m.tab, m.view, m.sim.Catalog(), m.sim.State(), m.width))
	b.WriteString("\n")

	if m.tab == tabPlaybooks {
		b.WriteString(m.renderPlaybooks())
	} else {
		b.WriteString(m.renderCompliance())
	}
	b.WriteString("\n")

	b.WriteString(m.renderFooter())

	return b.String()
}

func (m *Model) renderCompliance() string {
	switch m.view.State {
	case findings.StateLoading:
		return "Loading compliance findings..."
	case findings.StateError:
		return styleError.Render(fmt.Sprintf("Error loading compliance findings: %v", m.view.Err))
	}

	var b strings.Builder

	if m.mode == modeSearch {
		b.WriteString(styleSearchPrompt.Render("/ "))
		b.WriteString(m.searchInput.View())
		b.WriteString("\n")
	}

	if m.mode == modeFilterSection {
		b.WriteString(m.renderSectionFilter())
		b.WriteString("\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	b.WriteString(renderDetail(m.selectedRow(), m.width))

	return b.String()
}

func (m *Model) renderSectionFilter() string {
	var b strings.Builder
	b.WriteString("Filter by section:\n")

	options := append([]string{"All"}, m.sections...)
	for i, opt := range options {
		cursor := "  "
		if i == m.sectionCursor {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s\n", cursor, opt))
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	var left, right string
	if m.tab == tabPlaybooks {
		left = "q:quit  tab:compliance  ↑↓:select  a:attack  enter:remediate"
		right = fmt.Sprintf("%d playbooks", m.sim.Catalog().Len())
	} else {
		left = "q:quit  tab:playbooks  /:search  f:section  s:sort  ctrl+r:reload  esc:clear"
		right = fmt.Sprintf("%d/%d checks", len(m.filteredRows), len(m.allRows))
	}

	if m.statusMsg != "" {
		right = m.statusMsg + "  " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return styleFooter.Render(left + strings.Repeat(" ", gap) + right)
}

// Run starts the Bubble Tea program. Called from the dashboard command.
func Run(opts Options) error {
	m := New(opts)
	defer m.sched.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
