package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/verte-zerg/shortcut/internal/model"
)

// KeyMap holds the session key bindings.
type KeyMap struct {
	Reveal    key.Binding
	Correct   key.Binding
	Incorrect key.Binding
	Skip      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// NewKeyMap returns the bindings for a mode. Quick mode answers with 1/2 and
// has no skip.
func NewKeyMap(mode model.Mode) KeyMap {
	km := KeyMap{
		Reveal: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "reveal"),
		),
		Correct: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "remembered"),
		),
		Incorrect: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "forgot"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
	if mode == model.ModeQuick {
		km.Correct = key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "got it"))
		km.Incorrect = key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "didn't know"))
		km.Skip.SetEnabled(false)
	}
	return km
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reveal, k.Correct, k.Incorrect, k.Skip, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Reveal, k.Correct, k.Incorrect, k.Skip},
		{k.Help, k.Quit},
	}
}
