// Package model defines shared data structures.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Leitner box bounds.
const (
	MinBox = 1
	MaxBox = 3
)

// Sentinel errors shared across packages.
var (
	ErrUnknownMode   = errors.New("unknown learning mode")
	ErrInvalidKey    = errors.New("invalid progress key")
	ErrInvalidEntry  = errors.New("invalid progress entry")
	ErrInvalidConfig = errors.New("invalid learning config")
)

// Key identifies a shortcut across the catalog and the progress store.
type Key struct {
	App      string
	Shortcut string
}

// String returns the persisted "app:shortcut" form.
func (k Key) String() string {
	return k.App + ":" + k.Shortcut
}

// ParseKey splits a persisted key at the first colon. App names never
// contain a colon, so "vscode:Ctrl+:" parses as {vscode, Ctrl+:}.
func ParseKey(s string) (Key, error) {
	app, shortcut, ok := strings.Cut(s, ":")
	if !ok || app == "" || shortcut == "" {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	return Key{App: app, Shortcut: shortcut}, nil
}

// Shortcut is one catalog record.
type Shortcut struct {
	App         string
	Notation    string
	Description string
	Category    string
	Section     string
	Line        int
}

// Key returns the progress key for the shortcut.
func (s Shortcut) Key() Key {
	return Key{App: s.App, Shortcut: s.Notation}
}

// Entry is the persisted learning state of one shortcut.
type Entry struct {
	Box            int
	LastReviewed   time.Time
	CorrectCount   int
	IncorrectCount int
	AddedDate      time.Time
	// Extra keeps unknown persisted fields so they survive a save.
	Extra map[string]json.RawMessage
}

// Validate checks the entry invariants.
func (e Entry) Validate() error {
	if e.Box < MinBox || e.Box > MaxBox {
		return fmt.Errorf("%w: box %d out of range %d-%d", ErrInvalidEntry, e.Box, MinBox, MaxBox)
	}
	if e.CorrectCount < 0 {
		return fmt.Errorf("%w: negative correctCount %d", ErrInvalidEntry, e.CorrectCount)
	}
	if e.IncorrectCount < 0 {
		return fmt.Errorf("%w: negative incorrectCount %d", ErrInvalidEntry, e.IncorrectCount)
	}
	return nil
}

// Progress maps keys to their persisted state.
type Progress map[Key]Entry

// Filter returns the entries of one app. An empty app returns a copy of everything.
func (p Progress) Filter(app string) Progress {
	out := make(Progress, len(p))
	for k, e := range p {
		if app != "" && k.App != app {
			continue
		}
		out[k] = e
	}
	return out
}

// Keys returns the keys sorted by app, then shortcut.
func (p Progress) Keys() []Key {
	keys := make([]Key, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].App == keys[j].App {
			return keys[i].Shortcut < keys[j].Shortcut
		}
		return keys[i].App < keys[j].App
	})
	return keys
}

// Card is a catalog shortcut merged with its progress for one session.
type Card struct {
	Shortcut Shortcut
	Entry
	// New is set for shortcuts with no stored progress.
	New bool
}

// Key returns the progress key of the card.
func (c Card) Key() Key {
	return c.Shortcut.Key()
}

// BoxIntervals maps a box number to its review interval in days.
type BoxIntervals map[int]int

// DefaultIntervals mirrors the stock repository config.
func DefaultIntervals() BoxIntervals {
	return BoxIntervals{1: 1, 2: 3, 3: 7}
}

// Days returns the interval for a box; missing boxes default to one day.
func (b BoxIntervals) Days(box int) int {
	if days, ok := b[box]; ok {
		return days
	}
	return 1
}

// Validate rejects unknown boxes and negative intervals.
func (b BoxIntervals) Validate() error {
	for box, days := range b {
		if box < MinBox || box > MaxBox {
			return fmt.Errorf("%w: interval for unknown box %d", ErrInvalidConfig, box)
		}
		if days < 0 {
			return fmt.Errorf("%w: box%d interval must be >= 0, got %d", ErrInvalidConfig, box, days)
		}
	}
	return nil
}

// Mode selects how cards are presented and answered.
type Mode string

// Learning modes.
const (
	ModeFlash  Mode = "flash"
	ModeQuick  Mode = "quick"
	ModeTyping Mode = "typing"
)

// Modes lists the supported modes in display order.
var Modes = []Mode{ModeFlash, ModeQuick, ModeTyping}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q (want %s)", ErrUnknownMode, s, ModeNames())
}

// ModeNames lists the supported modes as "flash, quick or typing".
func ModeNames() string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}

// Title returns the display name of the mode.
func (m Mode) Title() string {
	switch m {
	case ModeFlash:
		return "Flash"
	case ModeQuick:
		return "Quick"
	case ModeTyping:
		return "Typing"
	}
	return string(m)
}

// Allows reports whether the mode accepts an outcome.
func (m Mode) Allows(o Outcome) bool {
	switch o {
	case OutcomeCorrect, OutcomeIncorrect:
		return true
	case OutcomeSkip:
		return m != ModeQuick
	}
	return false
}

// Outcome is the judgment recorded for one card.
type Outcome int

// Card outcomes. OutcomeNone marks a card that was never answered.
const (
	OutcomeNone Outcome = iota
	OutcomeCorrect
	OutcomeIncorrect
	OutcomeSkip
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	case OutcomeSkip:
		return "skip"
	}
	return "none"
}

// LearnConfig holds the learning settings for one command invocation.
type LearnConfig struct {
	Intervals BoxIntervals
	QuizSize  int
	Mode      Mode
}

// Validate checks the learning settings.
func (c LearnConfig) Validate() error {
	if err := c.Intervals.Validate(); err != nil {
		return err
	}
	if c.QuizSize <= 0 {
		return fmt.Errorf("%w: quiz size must be > 0, got %d", ErrInvalidConfig, c.QuizSize)
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	return nil
}

// BoxChange is one edge of the box transition histogram.
type BoxChange struct {
	From int
	To   int
}

func (c BoxChange) String() string {
	return fmt.Sprintf("%d->%d", c.From, c.To)
}

// SessionStats summarizes one review session. It is never persisted.
type SessionStats struct {
	ID         string
	Mode       Mode
	StartedAt  time.Time
	EndedAt    time.Time
	Total      int
	Correct    int
	Incorrect  int
	Skipped    int
	BoxChanges map[BoxChange]int
	Aborted    bool
}

// Answered returns the number of cards with a correct or incorrect outcome.
func (s SessionStats) Answered() int {
	return s.Correct + s.Incorrect
}

// SortedChanges returns the histogram edges ordered by from, then to box.
func (s SessionStats) SortedChanges() []BoxChange {
	changes := make([]BoxChange, 0, len(s.BoxChanges))
	for c := range s.BoxChanges {
		changes = append(changes, c)
	}
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].From == changes[j].From {
			return changes[i].To < changes[j].To
		}
		return changes[i].From < changes[j].From
	})
	return changes
}
