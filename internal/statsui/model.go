// Package statsui provides the Bubble Tea progress browser.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/shortcut/internal/model"
	"github.com/verte-zerg/shortcut/internal/scheduler"
	"github.com/verte-zerg/shortcut/internal/stats"
	"github.com/verte-zerg/shortcut/internal/store"
)

const (
	tabOverview = iota
	tabShortcuts
)

const difficultTop = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea progress browser.
type Model struct {
	store store.ProgressStore
	sched *scheduler.Scheduler
	now   func() time.Time

	progress model.Progress
	apps     []string
	appIndex int // 0 is every app
	errMsg   string

	tabs      []string
	activeTab int
	overview  viewport.Model
	entries   table.Model

	width  int
	height int
}

// NewModel constructs a browser over the entries in st. appFilter preselects
// one app when it is stored.
func NewModel(st store.ProgressStore, sched *scheduler.Scheduler, now func() time.Time, appFilter string) *Model {
	if now == nil {
		now = time.Now
	}
	m := &Model{
		store:    st,
		sched:    sched,
		now:      now,
		tabs:     []string{"Overview", "Shortcuts"},
		overview: viewport.New(0, 0),
		entries:  newEntryTable(0, 1),
	}
	m.refresh()
	for i, app := range m.apps {
		if app == appFilter {
			m.appIndex = i + 1
		}
	}
	m.renderContents()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h", "shift+tab":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "a":
			m.appIndex = (m.appIndex + 1) % (len(m.apps) + 1)
			m.renderContents()
			return m, nil
		case "r":
			m.refresh()
			m.renderContents()
			return m, nil
		}
		if m.activeTab == tabShortcuts {
			var cmd tea.Cmd
			m.entries, cmd = m.entries.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.overview, cmd = m.overview.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) app() string {
	if m.appIndex <= 0 || m.appIndex > len(m.apps) {
		return ""
	}
	return m.apps[m.appIndex-1]
}

func (m *Model) refresh() {
	progress, err := m.store.Load(context.Background())
	if err != nil {
		m.errMsg = err.Error()
		m.progress = model.Progress{}
		m.apps = nil
		return
	}
	m.errMsg = ""
	m.progress = progress
	seen := map[string]struct{}{}
	m.apps = m.apps[:0]
	for key := range progress {
		if _, ok := seen[key.App]; ok {
			continue
		}
		seen[key.App] = struct{}{}
		m.apps = append(m.apps, key.App)
	}
	sort.Strings(m.apps)
	if m.appIndex > len(m.apps) {
		m.appIndex = 0
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.entries.SetWidth(m.width)
	m.entries.SetHeight(maxInt(1, bodyHeight-1))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	if m.activeTab == tabShortcuts {
		m.entries.Focus()
	} else {
		m.entries.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	app := m.app()
	if app == "" {
		app = "all apps"
	}
	filter := headerStyle.Render(truncateLine(fmt.Sprintf("App: %s  (%d stored)", app, len(m.progress.Filter(m.app()))), m.width))
	return m.renderTabs() + "\n" + filter
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right  Scroll: up/down  App: a  Reload: r  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	if m.activeTab == tabShortcuts {
		if len(m.entries.Rows()) == 0 {
			return "No learning data yet."
		}
		return tableMutedStyle.Render(m.entries.View())
	}
	return m.overview.View()
}

func (m *Model) renderContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	if m.errMsg != "" {
		m.overview.SetContent("Failed to load progress.")
		m.entries.SetRows(nil)
		return
	}
	summary := stats.Summarize(m.progress, m.app(), difficultTop)
	m.overview.SetContent(renderOverview(summary, m.app(), width))
	m.entries.SetRows(m.entryRows())
}

func renderOverview(s stats.Summary, app string, width int) string {
	if s.Entries == 0 {
		return "No learning data yet."
	}
	cards := []string{
		metricCard("Stored", fmt.Sprintf("%d", s.Entries)),
	}
	for box := model.MinBox; box <= model.MaxBox; box++ {
		cards = append(cards, metricCard(fmt.Sprintf("Box %d", box), fmt.Sprintf("%d", s.BoxCounts[box])))
	}
	acc := "-"
	if a, ok := stats.Accuracy(s.Correct, s.Incorrect); ok {
		acc = fmt.Sprintf("%.1f%%", a*100)
	}
	cards = append(cards, metricCard("Accuracy", acc))
	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	if lipgloss.Width(row) > width {
		row = lipgloss.JoinVertical(lipgloss.Left, cards...)
	}

	title := app
	if title == "" {
		title = "All Apps"
	}
	var buf bytes.Buffer
	if err := stats.RenderSummary(&buf, title, s); err != nil {
		return fmt.Sprintf("Failed to render summary: %v", err)
	}
	return strings.TrimRight(row+"\n\n"+buf.String(), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func entryColumns() []table.Column {
	return []table.Column{
		{Title: "App", Width: 10},
		{Title: "Shortcut", Width: 18},
		{Title: "Box", Width: 3},
		{Title: "Correct", Width: 7},
		{Title: "Incorrect", Width: 9},
		{Title: "Next review", Width: 11},
	}
}

func newEntryTable(width, height int) table.Model {
	t := table.New(
		table.WithColumns(entryColumns()),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(entryTableStyles())
	return t
}

// entryRows lists the filtered entries lowest box first, most missed first.
func (m *Model) entryRows() []table.Row {
	filtered := m.progress.Filter(m.app())
	cards := make([]model.Card, 0, len(filtered))
	for _, key := range filtered.Keys() {
		cards = append(cards, model.Card{
			Shortcut: model.Shortcut{App: key.App, Notation: key.Shortcut},
			Entry:    filtered[key],
		})
	}
	scheduler.SortCards(cards)
	now := m.now()
	rows := make([]table.Row, 0, len(cards))
	for _, c := range cards {
		next := "now"
		if !m.sched.IsDue(c.Entry) {
			next = stats.RelativeDate(m.sched.NextReviewDate(c.Entry), now)
		}
		rows = append(rows, table.Row{
			c.Shortcut.App,
			c.Shortcut.Notation,
			fmt.Sprintf("%d", c.Box),
			fmt.Sprintf("%d", c.CorrectCount),
			fmt.Sprintf("%d", c.IncorrectCount),
			next,
		})
	}
	return rows
}

func entryTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
