// Package prompt asks review questions over plain line-oriented I/O.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/verte-zerg/shortcut/internal/model"
	"github.com/verte-zerg/shortcut/internal/session"
)

// Prompter reads answers line by line. EOF or "q" aborts the session.
type Prompter struct {
	in    *bufio.Reader
	out   io.Writer
	lines chan lineResult
	once  sync.Once
}

type lineResult struct {
	line string
	err  error
}

// New returns a Prompter reading from r and writing to w.
func New(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(r), out: w, lines: make(chan lineResult)}
}

// Header prints the session title and the box distribution of cards.
func Header(w io.Writer, app string, mode model.Mode, cards []model.Card) error {
	counts := map[int]int{}
	for _, c := range cards {
		counts[c.Box]++
	}
	if app == "" {
		app = "all apps"
	}
	if _, err := fmt.Fprintf(w, "=== Learning Mode: %s (%s) ===\n", app, mode.Title()); err != nil {
		return err
	}
	parts := make([]string, 0, model.MaxBox)
	for box := model.MinBox; box <= model.MaxBox; box++ {
		parts = append(parts, fmt.Sprintf("Box %d: %d cards", box, counts[box]))
	}
	if _, err := fmt.Fprintln(w, strings.Join(parts, " | ")); err != nil {
		return err
	}
	if mode == model.ModeTyping {
		if _, err := fmt.Fprintln(w, TypingNotice); err != nil {
			return err
		}
	}
	return nil
}

// TypingNotice is shown while typing mode answers like flash mode.
const TypingNotice = "Typing mode: key capture is not available, answering as in flash mode."

// Ask shows the card, waits for Enter, reveals the answer and reads a judgment.
func (p *Prompter) Ask(ctx context.Context, q session.Question) (model.Outcome, error) {
	c := q.Card
	if _, err := fmt.Fprintf(p.out, "\n[Question %d/%d] Box %d\n", q.Index+1, q.Total, c.Box); err != nil {
		return model.OutcomeNone, err
	}
	if _, err := fmt.Fprintf(p.out, "What does this shortcut do?\n\n  %s\n\n[Press Enter to reveal answer]", c.Shortcut.Notation); err != nil {
		return model.OutcomeNone, err
	}
	if _, err := p.readLine(ctx); err != nil {
		return model.OutcomeNone, err
	}
	if err := p.reveal(q); err != nil {
		return model.OutcomeNone, err
	}

	choices, def := choicesFor(q.Mode)
	for {
		if _, err := fmt.Fprintf(p.out, "  %s (default %s): ", choices.label, def); err != nil {
			return model.OutcomeNone, err
		}
		line, err := p.readLine(ctx)
		if err != nil {
			return model.OutcomeNone, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		if answer == "" {
			answer = def
		}
		if answer == "q" {
			return model.OutcomeNone, session.ErrAborted
		}
		if o, ok := choices.outcomes[answer]; ok {
			return o, nil
		}
		if _, err := fmt.Fprintf(p.out, "  Please answer one of %s.\n", strings.Join(choices.keys, ", ")); err != nil {
			return model.OutcomeNone, err
		}
	}
}

// Report prints the box movement after an answer.
func (p *Prompter) Report(_ session.Question, o model.Outcome, change model.BoxChange) error {
	var msg string
	switch {
	case o == model.OutcomeSkip:
		msg = "[Skipped]"
	case change.From != change.To && o == model.OutcomeCorrect:
		msg = fmt.Sprintf("[Box %d → Box %d] ✓", change.From, change.To)
	case change.From != change.To:
		msg = fmt.Sprintf("[Box %d → Box %d] ✗", change.From, change.To)
	case o == model.OutcomeIncorrect:
		msg = fmt.Sprintf("[Stays in Box %d]", change.To)
	default:
		msg = fmt.Sprintf("[Stays in Box %d] ✓", change.To)
	}
	_, err := fmt.Fprintln(p.out, msg)
	return err
}

func (p *Prompter) reveal(q session.Question) error {
	s := q.Card.Shortcut
	if q.Mode == model.ModeQuick {
		_, err := fmt.Fprintf(p.out, "\n  %s → %s\n\nHow well did you know it?\n", s.Notation, s.Description)
		return err
	}
	if _, err := fmt.Fprintf(p.out, "\n=== Answer ===\n\n  %s\n  → %s\n\n  Category: %s\n", s.Notation, s.Description, s.Category); err != nil {
		return err
	}
	if s.Section != "" {
		if _, err := fmt.Fprintf(p.out, "  Section: %s\n", s.Section); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(p.out, "\nDid you remember correctly?")
	return err
}

// readLine waits for the next input line or ctx. A blocked read keeps
// running in the background after cancellation.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.once.Do(func() {
		go p.readLoop()
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-p.lines:
		if !ok {
			return "", session.ErrAborted
		}
		if res.err != nil {
			return "", fmt.Errorf("read answer: %w", res.err)
		}
		return res.line, nil
	}
}

func (p *Prompter) readLoop() {
	defer close(p.lines)
	for {
		line, err := p.in.ReadString('\n')
		if line != "" {
			p.lines <- lineResult{line: line}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				p.lines <- lineResult{err: err}
			}
			return
		}
	}
}

type choiceSet struct {
	label    string
	keys     []string
	outcomes map[string]model.Outcome
}

var (
	flashChoices = choiceSet{
		label: "[y] Yes  [n] No  [s] Skip",
		keys:  []string{"y", "n", "s"},
		outcomes: map[string]model.Outcome{
			"y": model.OutcomeCorrect,
			"n": model.OutcomeIncorrect,
			"s": model.OutcomeSkip,
		},
	}
	quickChoices = choiceSet{
		label: "[1] Didn't know  [2] Got it",
		keys:  []string{"1", "2"},
		outcomes: map[string]model.Outcome{
			"1": model.OutcomeIncorrect,
			"2": model.OutcomeCorrect,
		},
	}
)

func choicesFor(mode model.Mode) (choiceSet, string) {
	if mode == model.ModeQuick {
		return quickChoices, "2"
	}
	return flashChoices, "y"
}
