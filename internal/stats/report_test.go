package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/shortcut/internal/model"
	"github.com/verte-zerg/shortcut/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.OpenSQLite(filepath.Join(dir, "learning-progress.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	reviewed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)
	progress := model.Progress{
		{App: "vscode", Shortcut: "Cmd+P"}: {Box: 1, LastReviewed: reviewed, CorrectCount: 1, IncorrectCount: 3},
		{App: "vscode", Shortcut: "Cmd+D"}: {Box: 3, LastReviewed: reviewed, CorrectCount: 6},
		{App: "gmail", Shortcut: "C"}:      {Box: 2, LastReviewed: reviewed, CorrectCount: 2, IncorrectCount: 1},
	}
	if err := st.Save(ctx, progress); err != nil {
		t.Fatalf("save: %v", err)
	}

	report, err := BuildReport(ctx, st, "vscode", 5)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Entries != 2 {
		t.Fatalf("expected 2 vscode entries, got %d", report.Entries)
	}
	if report.BoxCounts[1] != 1 || report.BoxCounts[2] != 0 || report.BoxCounts[3] != 1 {
		t.Fatalf("unexpected box counts: %v", report.BoxCounts)
	}
	if report.Correct != 7 || report.Incorrect != 3 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if len(report.Difficult) != 1 || report.Difficult[0].Key.Shortcut != "Cmd+P" {
		t.Fatalf("unexpected difficult list: %+v", report.Difficult)
	}

	all, err := BuildReport(ctx, st, "", 5)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if all.Entries != 3 || len(all.Difficult) != 2 {
		t.Fatalf("unexpected summary for all apps: %+v", all)
	}
}
