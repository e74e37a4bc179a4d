package wizard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/partplan/partplan/internal/plan"
)

// SortField controls the column used for sorting.
type SortField int

const (
	SortByName SortField = iota
	SortBySize
	SortByRows
	SortByPriority
)

// tableEntry represents a plan row in the review screen.
type tableEntry struct {
	idx     int // index into the plan document
	visible bool
}

// ReviewModel is the bubbletea model for interactive plan review. The
// user toggles the enabled flag per table; the underlying document is
// updated in place on confirm.
type ReviewModel struct {
	doc     *plan.Document
	entries []tableEntry
	cursor  int

	filterInput textinput.Model
	filtering   bool

	sortField SortField
	sortAsc   bool

	done      bool
	cancelled bool
	width     int
	height    int

	// toggles applied during this session, reverted on cancel
	toggled map[int]bool

	visibleIdxs []int
}

// NewReviewModel creates a plan review model over the given document.
func NewReviewModel(doc *plan.Document) ReviewModel {
	entries := make([]tableEntry, len(doc.Tables))
	for i := range doc.Tables {
		entries[i] = tableEntry{idx: i, visible: true}
	}

	ti := textinput.New()
	ti.Placeholder = "table name"
	ti.CharLimit = 60
	ti.Width = 30

	m := ReviewModel{
		doc:         doc,
		entries:     entries,
		filterInput: ti,
		sortAsc:     true,
		toggled:     make(map[int]bool),
		width:       100,
		height:      24,
	}
	m.sortEntries()
	m.recomputeVisible()
	return m
}

func (m ReviewModel) Init() tea.Cmd {
	return nil
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m ReviewModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.revertToggles()
		m.cancelled = true
		m.done = true
		return m, tea.Quit

	case "up", "k":
		m.moveCursor(-1)

	case "down", "j":
		m.moveCursor(1)

	case "home":
		if len(m.visibleIdxs) > 0 {
			m.cursor = 0
		}

	case "end":
		if len(m.visibleIdxs) > 0 {
			m.cursor = len(m.visibleIdxs) - 1
		}

	case " ":
		m.toggleCurrent()

	case "a":
		m.setAllVisible(true)

	case "n":
		m.setAllVisible(false)

	case "/":
		m.filtering = true
		m.filterInput.SetValue("")
		m.filterInput.Focus()
		return m, textinput.Blink

	case "s":
		m.cycleSort()

	case "enter":
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m ReviewModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filterInput.SetValue("")
		m.filterInput.Blur()
		m.applyFilter()
		return m, nil

	case "enter":
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m ReviewModel) View() string {
	var b strings.Builder

	title := titleStyle.Render("Review Migration Plan")
	b.WriteString(title + "\n\n")

	if m.filtering {
		b.WriteString(highlightStyle.Render("  Filter: ") + m.filterInput.View() + "\n\n")
	} else if m.filterInput.Value() != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Filter: %s (/ to change)", m.filterInput.Value())) + "\n\n")
	}

	header := fmt.Sprintf("  %-3s %-30s %10s %12s %-8s %-28s", "", "Table", "Size", "Rows", "Prio", "Action")
	b.WriteString(dimStyle.Render(header) + "\n")
	b.WriteString(dimStyle.Render("  "+strings.Repeat("─", min(m.width-4, 94))) + "\n")

	listHeight := m.height - 11
	if listHeight < 5 {
		listHeight = 5
	}

	start := 0
	if m.cursor >= listHeight {
		start = m.cursor - listHeight + 1
	}

	end := start + listHeight
	if end > len(m.visibleIdxs) {
		end = len(m.visibleIdxs)
	}

	if len(m.visibleIdxs) == 0 {
		b.WriteString(dimStyle.Render("  No tables match the filter\n"))
	}

	for vi := start; vi < end; vi++ {
		tp := &m.doc.Tables[m.visibleIdxs[vi]]

		checkbox := "[ ]"
		if tp.Enabled {
			checkbox = enabledStyle.Render("[x]")
		}

		cursor := "  "
		nameStyle := lipgloss.NewStyle()
		if vi == m.cursor {
			cursor = highlightStyle.Render("> ")
			nameStyle = nameStyle.Bold(true)
		}

		name := truncate(tp.TableName, 30)
		size := fmt.Sprintf("%.2f GB", tp.CurrentState.SizeGB)
		rows := formatNumber(tp.CurrentState.RowCount)

		line := fmt.Sprintf("%s%s %-30s %10s %12s %-8s %-28s",
			cursor, checkbox, nameStyle.Render(name), size, rows,
			string(tp.Settings.Priority), string(tp.MigrationAction))
		b.WriteString(line + "\n")
	}

	if len(m.visibleIdxs) > listHeight {
		pct := 0
		if len(m.visibleIdxs) > 1 {
			pct = m.cursor * 100 / (len(m.visibleIdxs) - 1)
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("\n  Showing %d-%d of %d (%d%%)",
			start+1, end, len(m.visibleIdxs), pct)) + "\n")
	}

	b.WriteString("\n")

	var totalGB float64
	var totalHours float64
	for _, tp := range m.doc.Tables {
		if tp.Enabled {
			totalGB += tp.CurrentState.SizeGB
			totalHours += tp.Settings.EstimatedHours
		}
	}
	summary := fmt.Sprintf("  Enabled: %d of %d tables, %.2f GB, ~%.1f hours",
		m.doc.EnabledCount(), len(m.doc.Tables), totalGB, totalHours)
	b.WriteString(summaryStyle.Render(summary) + "\n")

	sortLabels := []string{"name", "size", "rows", "priority"}
	dir := "↑"
	if !m.sortAsc {
		dir = "↓"
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("  Sort: %s %s", sortLabels[m.sortField], dir)) + "\n")

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  space toggle • a all • n none • / filter • s sort • enter confirm • q discard") + "\n")

	return b.String()
}

// Done returns true if the model finished.
func (m ReviewModel) Done() bool {
	return m.done
}

// Cancelled returns true if the user discarded their changes.
func (m ReviewModel) Cancelled() bool {
	return m.cancelled
}

// ChangedCount returns how many tables had their enabled flag flipped.
func (m ReviewModel) ChangedCount() int {
	return len(m.toggled)
}

func (m *ReviewModel) moveCursor(delta int) {
	if len(m.visibleIdxs) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.visibleIdxs) {
		m.cursor = len(m.visibleIdxs) - 1
	}
}

func (m *ReviewModel) toggleCurrent() {
	if m.cursor < 0 || m.cursor >= len(m.visibleIdxs) {
		return
	}
	m.setEnabled(m.visibleIdxs[m.cursor], !m.doc.Tables[m.visibleIdxs[m.cursor]].Enabled)
}

func (m *ReviewModel) setAllVisible(enabled bool) {
	for _, idx := range m.visibleIdxs {
		m.setEnabled(idx, enabled)
	}
}

func (m *ReviewModel) setEnabled(idx int, enabled bool) {
	tp := &m.doc.Tables[idx]
	if tp.Enabled == enabled {
		return
	}
	if _, ok := m.toggled[idx]; ok {
		delete(m.toggled, idx) // flipped back to the original value
	} else {
		m.toggled[idx] = tp.Enabled
	}
	tp.Enabled = enabled
}

func (m *ReviewModel) revertToggles() {
	for idx, original := range m.toggled {
		m.doc.Tables[idx].Enabled = original
	}
	m.toggled = make(map[int]bool)
}

func (m *ReviewModel) applyFilter() {
	lower := strings.ToLower(m.filterInput.Value())
	for i := range m.entries {
		if lower == "" {
			m.entries[i].visible = true
		} else {
			name := strings.ToLower(m.doc.Tables[m.entries[i].idx].TableName)
			m.entries[i].visible = strings.Contains(name, lower)
		}
	}
	m.recomputeVisible()
	if m.cursor >= len(m.visibleIdxs) {
		m.cursor = max(0, len(m.visibleIdxs)-1)
	}
}

func (m *ReviewModel) recomputeVisible() {
	m.visibleIdxs = m.visibleIdxs[:0]
	for _, e := range m.entries {
		if e.visible {
			m.visibleIdxs = append(m.visibleIdxs, e.idx)
		}
	}
}

func (m *ReviewModel) cycleSort() {
	if m.sortAsc {
		m.sortAsc = false
	} else {
		m.sortField = (m.sortField + 1) % 4
		m.sortAsc = true
	}
	m.sortEntries()
	m.recomputeVisible()
	m.cursor = 0
}

var priorityRank = map[plan.Priority]int{
	plan.PriorityLow:    0,
	plan.PriorityMedium: 1,
	plan.PriorityHigh:   2,
}

func (m *ReviewModel) sortEntries() {
	sort.SliceStable(m.entries, func(i, j int) bool {
		a := m.doc.Tables[m.entries[i].idx]
		b := m.doc.Tables[m.entries[j].idx]
		// Descending swaps the operands; equal keys keep their order.
		if !m.sortAsc {
			a, b = b, a
		}
		switch m.sortField {
		case SortBySize:
			return a.CurrentState.SizeGB < b.CurrentState.SizeGB
		case SortByRows:
			return a.CurrentState.RowCount < b.CurrentState.RowCount
		case SortByPriority:
			return priorityRank[a.Settings.Priority] < priorityRank[b.Settings.Priority]
		default:
			return a.TableName < b.TableName
		}
	})
}
