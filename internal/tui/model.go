// Package tui provides the Bubble Tea review interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/shortcut/internal/model"
	"github.com/verte-zerg/shortcut/internal/session"
)

type phase int

const (
	phaseQuestion phase = iota
	phaseAnswer
)

// Model implements the Bubble Tea review UI on top of a session.
type Model struct {
	sess  *session.Session
	app   string
	keys  KeyMap
	help  help.Model
	phase phase

	feedback      string
	feedbackStyle lipgloss.Style

	width  int
	height int
}

var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	notationStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Padding(0, 2).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A"))
	answerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#73D13D"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#73D13D"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	skipStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a review model. app is only used for the title.
func NewModel(sess *session.Session, app string) *Model {
	return &Model{
		sess: sess,
		app:  app,
		keys: NewKeyMap(sess.Mode()),
		help: help.New(),
	}
}

// Run drives the session in a full-screen program until it is done or the
// user quits. Quitting early, or cancelling ctx, returns an aborted result
// with a nil error.
func Run(ctx context.Context, sess *session.Session, app string, opts ...tea.ProgramOption) (session.Result, error) {
	m := NewModel(sess, app)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(m, opts...)
	if _, err := program.Run(); err != nil {
		sess.Abort()
		if errors.Is(err, tea.ErrProgramKilled) {
			return sess.Finish(), nil
		}
		return sess.Finish(), fmt.Errorf("failed to run TUI: %w", err)
	}
	return sess.Finish(), nil
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
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.sess.Abort()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	if m.sess.Done() {
		return m, tea.Quit
	}
	if m.phase == phaseQuestion {
		if key.Matches(msg, m.keys.Reveal) {
			m.phase = phaseAnswer
		}
		return m, nil
	}

	var outcome model.Outcome
	switch {
	case key.Matches(msg, m.keys.Correct):
		outcome = model.OutcomeCorrect
	case key.Matches(msg, m.keys.Incorrect):
		outcome = model.OutcomeIncorrect
	case key.Matches(msg, m.keys.Skip):
		outcome = model.OutcomeSkip
	default:
		return m, nil
	}
	change, err := m.sess.Answer(outcome)
	if err != nil {
		m.feedback = err.Error()
		m.feedbackStyle = incorrectStyle
		return m, nil
	}
	m.feedback, m.feedbackStyle = feedbackFor(outcome, change)
	m.phase = phaseQuestion
	if m.sess.Done() {
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	q, ok := m.sess.Current()
	if !ok {
		return ""
	}
	content := m.renderCard(q)
	footer := m.renderFooter(q)
	helpView := m.help.View(m.activeKeys())
	if m.width == 0 || m.height == 0 {
		return strings.Join([]string{content, footer, helpView}, "\n\n")
	}
	bottom := lipgloss.JoinVertical(lipgloss.Center, footer, helpView)
	bottomHeight := lipgloss.Height(bottom)
	bodyHeight := m.height - bottomHeight
	if bodyHeight < 1 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.Place(m.width, bottomHeight, lipgloss.Center, lipgloss.Bottom, bottom)
}

func (m *Model) renderCard(q session.Question) string {
	app := m.app
	if app == "" {
		app = q.Card.Shortcut.App
	}
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s · %s", m.sess.Mode().Title(), app)),
		mutedStyle.Render(fmt.Sprintf("Question %d/%d · Box %d", q.Index+1, q.Total, q.Card.Box)),
		"",
		"What does this shortcut do?",
		notationStyle.Render(q.Card.Shortcut.Notation),
	}
	if m.phase == phaseAnswer {
		s := q.Card.Shortcut
		lines = append(lines, answerStyle.Render("→ "+s.Description))
		meta := "Category: " + s.Category
		if s.Section != "" {
			meta += " · Section: " + s.Section
		}
		lines = append(lines, mutedStyle.Render(meta))
		prompt := "Did you remember correctly?"
		if q.Mode == model.ModeQuick {
			prompt = "How well did you know it?"
		}
		lines = append(lines, "", prompt)
	}
	if q.Mode == model.ModeTyping {
		lines = append(lines, "", mutedStyle.Render("Key capture is not available; answer as in flash mode."))
	}
	if m.feedback != "" {
		lines = append(lines, "", m.feedbackStyle.Render(m.feedback))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderFooter(q session.Question) string {
	st := m.sess.Stats()
	segments := []string{fmt.Sprintf("Card %d/%d", q.Index+1, q.Total)}
	if q.Total > 0 {
		segments = append(segments, fmt.Sprintf("Progress %d%%", q.Index*100/q.Total))
	}
	segments = append(segments, fmt.Sprintf("✓ %d  ✗ %d", st.Correct, st.Incorrect))
	if st.Skipped > 0 {
		segments = append(segments, fmt.Sprintf("Skipped %d", st.Skipped))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) activeKeys() KeyMap {
	km := m.keys
	if m.phase == phaseQuestion {
		km.Correct.SetEnabled(false)
		km.Incorrect.SetEnabled(false)
		km.Skip.SetEnabled(false)
	} else {
		km.Reveal.SetEnabled(false)
	}
	return km
}

func feedbackFor(o model.Outcome, change model.BoxChange) (string, lipgloss.Style) {
	switch {
	case o == model.OutcomeSkip:
		return "Skipped", skipStyle
	case o == model.OutcomeCorrect && change.From != change.To:
		return fmt.Sprintf("Box %d → Box %d ✓", change.From, change.To), correctStyle
	case o == model.OutcomeCorrect:
		return fmt.Sprintf("Stays in Box %d ✓", change.To), correctStyle
	case change.From != change.To:
		return fmt.Sprintf("Box %d → Box %d ✗", change.From, change.To), incorrectStyle
	default:
		return fmt.Sprintf("Stays in Box %d", change.To), incorrectStyle
	}
}
