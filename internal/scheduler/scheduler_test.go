package scheduler

import (
	"testing"
	"time"

	"github.com/verte-zerg/shortcut/internal/model"
)

var day0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func shortcut(app, notation string) model.Shortcut {
	return model.Shortcut{App: app, Notation: notation, Description: notation, Category: "General"}
}

func TestScenarioDueOnNextDay(t *testing.T) {
	intervals := model.BoxIntervals{1: 1, 2: 3, 3: 7}
	progress := model.Progress{
		{App: "vscode", Shortcut: "Cmd+P"}: {Box: 1, LastReviewed: day0, AddedDate: day0},
	}
	shortcuts := []model.Shortcut{shortcut("vscode", "Cmd+P")}

	due := New(intervals, fixedClock(time.Date(2026, 1, 2, 0, 0, 0, 0, time.Local))).DueCards(shortcuts, progress, "", false)
	if len(due) != 1 {
		t.Fatalf("expected card to be due on 2026-01-02, got %d cards", len(due))
	}
	notDue := New(intervals, fixedClock(time.Date(2026, 1, 1, 18, 0, 0, 0, time.Local))).DueCards(shortcuts, progress, "", false)
	if len(notDue) != 0 {
		t.Fatalf("expected card not to be due on 2026-01-01, got %d cards", len(notDue))
	}
}

func TestDueExactlyAfterInterval(t *testing.T) {
	intervals := model.DefaultIntervals()
	for box := model.MinBox; box <= model.MaxBox; box++ {
		reviewed := time.Date(2026, 3, 10, 15, 30, 0, 0, time.Local)
		entry := model.Entry{Box: box, LastReviewed: reviewed}
		dueDay := time.Date(2026, 3, 10+intervals.Days(box), 0, 0, 0, 0, time.Local)

		if !New(intervals, fixedClock(dueDay)).IsDue(entry) {
			t.Fatalf("box %d: expected due on %s", box, dueDay.Format("2006-01-02"))
		}
		dayBefore := dueDay.Add(-time.Minute)
		if New(intervals, fixedClock(dayBefore)).IsDue(entry) {
			t.Fatalf("box %d: expected not due on %s", box, dayBefore.Format("2006-01-02 15:04"))
		}
	}
}

func TestLateReviewDueNextMorning(t *testing.T) {
	entry := model.Entry{Box: 1, LastReviewed: time.Date(2026, 1, 1, 23, 59, 0, 0, time.Local)}
	s := New(model.DefaultIntervals(), fixedClock(time.Date(2026, 1, 2, 0, 1, 0, 0, time.Local)))
	if !s.IsDue(entry) {
		t.Fatalf("card reviewed at 23:59 should be due the next calendar day")
	}
}

func TestMissingIntervalDefaultsToOneDay(t *testing.T) {
	entry := model.Entry{Box: 3, LastReviewed: day0}
	s := New(model.BoxIntervals{1: 1}, fixedClock(day0.AddDate(0, 0, 1)))
	if !s.IsDue(entry) {
		t.Fatalf("missing box interval should default to one day")
	}
}

func TestReviewAllIncludesNewCards(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.Local)
	shortcuts := []model.Shortcut{shortcut("vscode", "Cmd+P"), shortcut("vscode", "Cmd+D")}
	progress := model.Progress{
		{App: "vscode", Shortcut: "Cmd+P"}: {Box: 3, LastReviewed: now},
	}
	s := New(model.DefaultIntervals(), fixedClock(now))

	if got := s.DueCards(shortcuts, progress, "", false); len(got) != 0 {
		t.Fatalf("expected neither a not-yet-due nor a new card, got %d", len(got))
	}
	all := s.DueCards(shortcuts, progress, "", true)
	if len(all) != 2 {
		t.Fatalf("expected every catalog card, got %d", len(all))
	}
	fresh := all[0]
	if !fresh.New || fresh.Box != 1 || fresh.CorrectCount != 0 || !fresh.LastReviewed.Equal(now) || !fresh.AddedDate.Equal(now) {
		t.Fatalf("unexpected new card: %+v", fresh)
	}
}

func TestDueCardsOrdering(t *testing.T) {
	shortcuts := []model.Shortcut{
		shortcut("vscode", "A"),
		shortcut("vscode", "B"),
		shortcut("vscode", "C"),
		shortcut("vscode", "D"),
		shortcut("vscode", "E"),
	}
	progress := model.Progress{
		{App: "vscode", Shortcut: "A"}: {Box: 3, IncorrectCount: 9, LastReviewed: day0},
		{App: "vscode", Shortcut: "B"}: {Box: 1, IncorrectCount: 1, LastReviewed: day0},
		{App: "vscode", Shortcut: "C"}: {Box: 2, IncorrectCount: 0, LastReviewed: day0},
		{App: "vscode", Shortcut: "D"}: {Box: 1, IncorrectCount: 4, LastReviewed: day0},
		{App: "vscode", Shortcut: "E"}: {Box: 2, IncorrectCount: 2, LastReviewed: day0},
	}
	s := New(model.DefaultIntervals(), fixedClock(day0.AddDate(0, 1, 0)))
	cards := s.DueCards(shortcuts, progress, "", false)

	var order string
	for _, c := range cards {
		order += c.Shortcut.Notation
	}
	if order != "DBECA" {
		t.Fatalf("unexpected order %q", order)
	}
	for i := 1; i < len(cards); i++ {
		prev, cur := cards[i-1], cards[i]
		if prev.Box > cur.Box || (prev.Box == cur.Box && prev.IncorrectCount < cur.IncorrectCount) {
			t.Fatalf("ordering violated at %d: %+v before %+v", i, prev.Entry, cur.Entry)
		}
	}
}

func TestDueCardsAppFilterAndEmptyCatalog(t *testing.T) {
	shortcuts := []model.Shortcut{shortcut("vscode", "Cmd+P"), shortcut("gmail", "C")}
	s := New(model.DefaultIntervals(), fixedClock(day0))
	cards := s.DueCards(shortcuts, model.Progress{}, "gmail", true)
	if len(cards) != 1 || cards[0].Shortcut.App != "gmail" {
		t.Fatalf("expected only gmail cards, got %+v", cards)
	}
	if got := s.DueCards(nil, model.Progress{}, "", true); len(got) != 0 {
		t.Fatalf("empty catalog should give no cards")
	}
}

func TestNextScheduledDate(t *testing.T) {
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.Local)
	progress := model.Progress{
		{App: "vscode", Shortcut: "A"}: {Box: 1, LastReviewed: now.AddDate(0, 0, -3)}, // due
		{App: "vscode", Shortcut: "B"}: {Box: 3, LastReviewed: now.AddDate(0, 0, -1)}, // Jan 11
		{App: "vscode", Shortcut: "C"}: {Box: 2, LastReviewed: now},                   // Jan 8
		{App: "gmail", Shortcut: "C"}:  {Box: 1, LastReviewed: now},                   // Jan 6
	}
	s := New(model.DefaultIntervals(), fixedClock(now))

	next, ok := s.NextScheduledDate(progress, "vscode")
	if !ok {
		t.Fatalf("expected an upcoming date")
	}
	if want := now.AddDate(0, 0, 3); !next.Equal(want) {
		t.Fatalf("expected %s, got %s", want, next)
	}
	next, ok = s.NextScheduledDate(progress, "")
	if !ok || !next.Equal(now.AddDate(0, 0, 1)) {
		t.Fatalf("expected gmail card tomorrow, got %s (%v)", next, ok)
	}
	if _, ok := s.NextScheduledDate(model.Progress{}, ""); ok {
		t.Fatalf("expected no date for empty progress")
	}
}
