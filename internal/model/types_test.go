package model

import (
	"errors"
	"strings"
	"testing"
)

func TestParseKeySplitsAtFirstColon(t *testing.T) {
	key, err := ParseKey("vscode:Ctrl+:")
	if err != nil {
		t.Fatalf("parse key: %v", err)
	}
	if key.App != "vscode" || key.Shortcut != "Ctrl+:" {
		t.Fatalf("unexpected key: %+v", key)
	}
	if key.String() != "vscode:Ctrl+:" {
		t.Fatalf("expected round trip, got %q", key.String())
	}
}

func TestParseKeyRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "vscode", ":Cmd+P", "vscode:"} {
		if _, err := ParseKey(raw); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("expected ErrInvalidKey for %q, got %v", raw, err)
		}
	}
}

func TestBoxIntervalsDefaultsMissingBox(t *testing.T) {
	iv := BoxIntervals{1: 2}
	if got := iv.Days(1); got != 2 {
		t.Fatalf("expected 2 days for box 1, got %d", got)
	}
	if got := iv.Days(3); got != 1 {
		t.Fatalf("expected default of 1 day, got %d", got)
	}
}

func TestBoxIntervalsValidate(t *testing.T) {
	if err := DefaultIntervals().Validate(); err != nil {
		t.Fatalf("default intervals should validate: %v", err)
	}
	if err := (BoxIntervals{4: 10}).Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for box 4, got %v", err)
	}
	if err := (BoxIntervals{2: -1}).Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for negative days, got %v", err)
	}
}

func TestParseModeAndAllows(t *testing.T) {
	mode, err := ParseMode(" Quick ")
	if err != nil || mode != ModeQuick {
		t.Fatalf("expected quick, got %q (%v)", mode, err)
	}
	if mode.Allows(OutcomeSkip) {
		t.Fatalf("quick mode must not allow skip")
	}
	if !ModeFlash.Allows(OutcomeSkip) || !ModeTyping.Allows(OutcomeSkip) {
		t.Fatalf("flash and typing modes allow skip")
	}
	_, err = ParseMode("speed")
	if !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
	if !strings.Contains(err.Error(), "(want flash, quick or typing)") {
		t.Fatalf("expected the supported modes in %q", err)
	}
}

func TestEntryValidate(t *testing.T) {
	if err := (Entry{Box: 3}).Validate(); err != nil {
		t.Fatalf("box 3 should validate: %v", err)
	}
	for _, e := range []Entry{{Box: 0}, {Box: 4}, {Box: 1, CorrectCount: -1}, {Box: 1, IncorrectCount: -2}} {
		if err := e.Validate(); !errors.Is(err, ErrInvalidEntry) {
			t.Fatalf("expected ErrInvalidEntry for %+v, got %v", e, err)
		}
	}
}

func TestSortedChanges(t *testing.T) {
	s := SessionStats{BoxChanges: map[BoxChange]int{
		{From: 3, To: 1}: 1,
		{From: 1, To: 2}: 4,
		{From: 2, To: 1}: 2,
	}}
	got := s.SortedChanges()
	want := []string{"1->2", "2->1", "3->1"}
	if len(got) != len(want) {
		t.Fatalf("expected %d changes, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Fatalf("unexpected order: %v", got)
		}
	}
}
