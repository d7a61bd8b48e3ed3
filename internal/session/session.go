// Package session runs one Leitner review session over a set of due cards.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/shortcut/internal/model"
)

var (
	ErrInvalidQuizSize   = errors.New("quiz size must be positive")
	ErrOutcomeNotAllowed = errors.New("outcome not allowed in this mode")
	ErrAborted           = errors.New("session aborted")
	ErrSessionDone       = errors.New("session already finished")
)

// Options configures a session.
type Options struct {
	QuizSize int
	// Mode defaults to flash when empty.
	Mode model.Mode
	// Rand shuffles the presentation order. Nil seeds one from the clock.
	Rand *rand.Rand
	// Clock stamps lastReviewed and the session times. Nil uses time.Now.
	Clock func() time.Time
}

// Question is what a prompter shows for one card.
type Question struct {
	Index int // zero-based
	Total int
	Mode  model.Mode
	Card  model.Card
}

// Prompter collects one outcome per question.
type Prompter interface {
	Ask(ctx context.Context, q Question) (model.Outcome, error)
}

// Reporter is implemented by prompters that show feedback after an answer.
type Reporter interface {
	Report(q Question, o model.Outcome, change model.BoxChange) error
}

// Session holds the presentation order and the state of every card.
type Session struct {
	cards    []model.Card
	outcomes []model.Outcome
	pos      int
	mode     model.Mode
	now      func() time.Time
	stats    model.SessionStats
	ended    bool
}

// New validates the options, caps the cards at the quiz size and shuffles
// them. Cards must already be in scheduler priority order; the input slice
// is not modified.
func New(cards []model.Card, opts Options) (*Session, error) {
	mode := opts.Mode
	if mode == "" {
		mode = model.ModeFlash
	}
	mode, err := model.ParseMode(string(mode))
	if err != nil {
		return nil, err
	}
	if opts.QuizSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuizSize, opts.QuizSize)
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	n := len(cards)
	if n > opts.QuizSize {
		n = opts.QuizSize
	}
	selected := make([]model.Card, n)
	copy(selected, cards[:n])
	rnd.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	return &Session{
		cards:    selected,
		outcomes: make([]model.Outcome, n),
		mode:     mode,
		now:      now,
		stats: model.SessionStats{
			ID:         uuid.NewString(),
			Mode:       mode,
			StartedAt:  now(),
			Total:      n,
			BoxChanges: map[model.BoxChange]int{},
		},
	}, nil
}

// Mode returns the validated mode.
func (s *Session) Mode() model.Mode {
	return s.mode
}

// Len returns the number of cards in the session.
func (s *Session) Len() int {
	return len(s.cards)
}

// Stats returns the running totals. BoxChanges must not be modified.
func (s *Session) Stats() model.SessionStats {
	return s.stats
}

// Done reports whether every card was answered or the session ended early.
func (s *Session) Done() bool {
	return s.ended || s.pos >= len(s.cards)
}

// Current returns the question for the card being presented.
func (s *Session) Current() (Question, bool) {
	if s.Done() {
		return Question{}, false
	}
	return Question{Index: s.pos, Total: len(s.cards), Mode: s.mode, Card: s.cards[s.pos]}, true
}

// Answer applies an outcome to the current card and moves to the next one.
// The returned change has From == To when the box did not move.
func (s *Session) Answer(o model.Outcome) (model.BoxChange, error) {
	if s.Done() {
		return model.BoxChange{}, ErrSessionDone
	}
	if !s.mode.Allows(o) {
		return model.BoxChange{}, fmt.Errorf("%w: %s in %s mode", ErrOutcomeNotAllowed, o, s.mode)
	}
	card := &s.cards[s.pos]
	change := model.BoxChange{From: card.Box, To: card.Box}
	switch o {
	case model.OutcomeCorrect:
		card.Box = min(card.Box+1, model.MaxBox)
		card.CorrectCount++
		card.LastReviewed = s.now()
		s.stats.Correct++
	case model.OutcomeIncorrect:
		card.Box = model.MinBox
		card.IncorrectCount++
		card.LastReviewed = s.now()
		s.stats.Incorrect++
	case model.OutcomeSkip:
		s.stats.Skipped++
	}
	change.To = card.Box
	if change.From != change.To {
		s.stats.BoxChanges[change]++
	}
	s.outcomes[s.pos] = o
	s.pos++
	return change, nil
}

// Abort ends the session early. Answers already given are kept.
func (s *Session) Abort() {
	if !s.Done() {
		s.stats.Aborted = true
	}
	s.ended = true
}

// Finish stamps the end time and returns the result. It may be called more
// than once; later calls return the same stats.
func (s *Session) Finish() Result {
	if s.stats.EndedAt.IsZero() {
		s.stats.EndedAt = s.now()
	}
	s.ended = true

	stats := s.stats
	stats.BoxChanges = make(map[model.BoxChange]int, len(s.stats.BoxChanges))
	for c, n := range s.stats.BoxChanges {
		stats.BoxChanges[c] = n
	}
	cards := make([]model.Card, len(s.cards))
	copy(cards, s.cards)
	outcomes := make([]model.Outcome, len(s.outcomes))
	copy(outcomes, s.outcomes)
	return Result{Cards: cards, Outcomes: outcomes, Stats: stats}
}

// Run presents every card through p until the session is done, the prompter
// returns ErrAborted or ctx is cancelled. An aborted session still returns
// its partial result with a nil error.
func Run(ctx context.Context, cards []model.Card, opts Options, p Prompter) (Result, error) {
	s, err := New(cards, opts)
	if err != nil {
		return Result{}, err
	}
	for {
		q, ok := s.Current()
		if !ok {
			break
		}
		if ctx.Err() != nil {
			s.Abort()
			break
		}
		outcome, err := p.Ask(ctx, q)
		if err != nil {
			if errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				s.Abort()
				break
			}
			s.Abort()
			return s.Finish(), fmt.Errorf("ask %s: %w", q.Card.Key(), err)
		}
		change, err := s.Answer(outcome)
		if err != nil {
			s.Abort()
			return s.Finish(), err
		}
		if r, ok := p.(Reporter); ok {
			if err := r.Report(q, outcome, change); err != nil {
				s.Abort()
				return s.Finish(), fmt.Errorf("report %s: %w", q.Card.Key(), err)
			}
		}
	}
	return s.Finish(), nil
}

// Result is the outcome of a session.
type Result struct {
	// Cards are in presentation order with their updated state.
	Cards []model.Card
	// Outcomes parallels Cards; OutcomeNone marks cards never answered.
	Outcomes []model.Outcome
	Stats    model.SessionStats
}

// Reviewed returns the cards answered correct or incorrect.
func (r Result) Reviewed() []model.Card {
	var reviewed []model.Card
	for i, c := range r.Cards {
		switch r.Outcomes[i] {
		case model.OutcomeCorrect, model.OutcomeIncorrect:
			reviewed = append(reviewed, c)
		}
	}
	return reviewed
}

// Apply writes the reviewed cards into progress and returns how many were
// written. Skipped and unanswered cards are left as stored, so a skipped new
// card gets no entry.
func (r Result) Apply(progress model.Progress) int {
	reviewed := r.Reviewed()
	for _, c := range reviewed {
		progress[c.Key()] = c.Entry
	}
	return len(reviewed)
}
