package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/shortcut/internal/model"
)

func TestAppendCreatesFile(t *testing.T) {
	root := t.TempDir()
	path := FilePath(root, "slack")
	s := model.Shortcut{App: "slack", Notation: "Cmd+K", Description: "Jump to conversation", Category: "Navigation"}
	if err := Append(path, s); err != nil {
		t.Fatalf("append: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "# Slack Shortcuts\n\n## Navigation\n\n" +
		"| Shortcut | Description | Category |\n" +
		"|----------|-------------|----------|\n" +
		"| Cmd+K | Jump to conversation | Navigation |\n"
	if string(data) != want {
		t.Fatalf("unexpected file:\n%s", data)
	}
	parsed, err := ParseFile(path)
	if err != nil || len(parsed) != 1 || parsed[0].Section != "Navigation" {
		t.Fatalf("created file should parse: %+v, %v", parsed, err)
	}
}

func TestAppendJoinsLastTable(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "vscode_shortcuts.md")
	write(t, path, vscodeFile+"\n\n")
	s := model.Shortcut{App: "vscode", Notation: "Cmd+B", Description: "Toggle sidebar", Category: "View"}
	if err := Append(path, s); err != nil {
		t.Fatalf("append: %v", err)
	}
	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	last := parsed[len(parsed)-1]
	if last.Notation != "Cmd+B" || last.Section != "Navigation" {
		t.Fatalf("expected new row in the last table, got %+v", last)
	}
}

func TestAppendStartsTableAfterProse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vim_shortcuts.md")
	write(t, path, "# Vim Shortcuts\n\nSome notes.")
	s := model.Shortcut{App: "vim", Notation: "Ctrl+W", Description: "Window prefix", Category: "Windows"}
	if err := Append(path, s); err != nil {
		t.Fatalf("append: %v", err)
	}
	parsed, err := ParseFile(path)
	if err != nil || len(parsed) != 1 || parsed[0].Notation != "Ctrl+W" {
		t.Fatalf("expected one parsed row, got %+v, %v", parsed, err)
	}
}

func TestAppendRejectsBadCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vim_shortcuts.md")
	for _, s := range []model.Shortcut{
		{App: "vim", Notation: "A", Description: "pipe | here", Category: "X"},
		{App: "vim", Notation: "A", Description: "two\nlines", Category: "X"},
		{App: "vim", Notation: "A", Description: "ok", Category: " "},
	} {
		if err := Append(path, s); !errors.Is(err, ErrInvalidCell) {
			t.Fatalf("expected ErrInvalidCell for %+v, got %v", s, err)
		}
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("rejected rows must not create the file")
	}
}

func TestValidateApp(t *testing.T) {
	for _, app := range []string{"vscode", "google-docs"} {
		if err := ValidateApp(app); err != nil {
			t.Fatalf("%q should be valid: %v", app, err)
		}
	}
	for _, app := range []string{"", "a:b", "dir/app", " pad"} {
		if err := ValidateApp(app); !errors.Is(err, ErrInvalidApp) {
			t.Fatalf("%q should be invalid, got %v", app, err)
		}
	}
}

func TestLoadRecordsPaths(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "vscode_shortcuts.md"), vscodeFile)
	write(t, filepath.Join(root, "broken_shortcuts.md"), "")
	cat, err := Load(root, "*_shortcuts.md")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if path, ok := cat.Path("vscode"); !ok || !strings.HasSuffix(path, "vscode_shortcuts.md") {
		t.Fatalf("unexpected vscode path %q", path)
	}
	if _, ok := cat.Path("broken"); !ok {
		t.Fatalf("skipped files still have a path")
	}
	if _, ok := cat.Path("gmail"); ok {
		t.Fatalf("unknown app must have no path")
	}
}
