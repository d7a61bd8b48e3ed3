package stats

import (
	"testing"

	"github.com/verte-zerg/shortcut/internal/model"
)

func TestTopDifficult(t *testing.T) {
	progress := model.Progress{
		{App: "vscode", Shortcut: "Cmd+P"}: {Box: 1, IncorrectCount: 2},
		{App: "vscode", Shortcut: "Cmd+D"}: {Box: 2, IncorrectCount: 5},
		{App: "gmail", Shortcut: "C"}:      {Box: 1, IncorrectCount: 2},
		{App: "gmail", Shortcut: "E"}:      {Box: 3, IncorrectCount: 0, CorrectCount: 9},
	}
	top := TopDifficult(progress, 5)
	if len(top) != 3 {
		t.Fatalf("entries without misses must be excluded, got %d", len(top))
	}
	if top[0].Key.Shortcut != "Cmd+D" || top[1].Key.String() != "gmail:C" || top[2].Key.String() != "vscode:Cmd+P" {
		t.Fatalf("unexpected order: %+v", top)
	}
	if got := TopDifficult(progress, 1); len(got) != 1 || got[0].Incorrect != 5 {
		t.Fatalf("unexpected top 1: %+v", got)
	}
	if got := TopDifficult(progress, 0); got != nil {
		t.Fatalf("expected nil for n=0")
	}
}
