// Package scheduler selects the Leitner cards due for review.
package scheduler

import (
	"sort"
	"time"

	"github.com/verte-zerg/shortcut/internal/model"
)

// Scheduler computes due dates from box intervals.
type Scheduler struct {
	intervals model.BoxIntervals
	now       func() time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the time source. The clock's location decides where
// calendar days start.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// New returns a Scheduler for the given intervals. Intervals are read-only.
func New(intervals model.BoxIntervals, opts ...Option) *Scheduler {
	s := &Scheduler{intervals: intervals, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextReviewDate returns lastReviewed plus the interval of the entry's box.
func (s *Scheduler) NextReviewDate(e model.Entry) time.Time {
	return e.LastReviewed.AddDate(0, 0, s.intervals.Days(e.Box))
}

// IsDue reports whether today's date has reached the next review date.
// Time of day is ignored.
func (s *Scheduler) IsDue(e model.Entry) bool {
	now := s.now()
	today := dateOf(now, now.Location())
	next := dateOf(s.NextReviewDate(e), now.Location())
	return !today.Before(next)
}

// DueCards merges shortcuts with progress and returns the cards to review,
// lowest box first and, within a box, the most missed first. Shortcuts without
// progress are new cards and only returned when reviewAll is set.
func (s *Scheduler) DueCards(shortcuts []model.Shortcut, progress model.Progress, app string, reviewAll bool) []model.Card {
	now := s.now()
	var cards []model.Card
	for _, shortcut := range shortcuts {
		if app != "" && shortcut.App != app {
			continue
		}
		entry, ok := progress[shortcut.Key()]
		if !ok {
			if !reviewAll {
				continue
			}
			cards = append(cards, model.Card{
				Shortcut: shortcut,
				Entry: model.Entry{
					Box:          model.MinBox,
					LastReviewed: now,
					AddedDate:    now,
				},
				New: true,
			})
			continue
		}
		if reviewAll || s.IsDue(entry) {
			cards = append(cards, model.Card{Shortcut: shortcut, Entry: entry})
		}
	}
	SortCards(cards)
	return cards
}

// SortCards orders cards by box ascending, then incorrect count descending.
// Ties keep their input order.
func SortCards(cards []model.Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].Box == cards[j].Box {
			return cards[i].IncorrectCount > cards[j].IncorrectCount
		}
		return cards[i].Box < cards[j].Box
	})
}

// NextScheduledDate returns the earliest next review date among entries that
// are not due today. It returns false when every entry is due or none exist.
func (s *Scheduler) NextScheduledDate(progress model.Progress, app string) (time.Time, bool) {
	var (
		earliest time.Time
		found    bool
	)
	for key, entry := range progress {
		if app != "" && key.App != app {
			continue
		}
		if s.IsDue(entry) {
			continue
		}
		next := s.NextReviewDate(entry)
		if !found || next.Before(earliest) {
			earliest = next
			found = true
		}
	}
	return earliest, found
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
