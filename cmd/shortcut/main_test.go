package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/verte-zerg/shortcut/internal/config"
	"github.com/verte-zerg/shortcut/internal/store"
)

const testShortcuts = `# Vscode Shortcuts

## Editing

| Shortcut | Description | Category |
|----------|-------------|----------|
| cmd+d | Select next occurrence | Selection |
| cmd+p | Quick open | Navigation |
`

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(repoEnv, "")
}

func newTestRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if _, err := runCLI(t, "", "init", root); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "vscode_shortcuts.md"), []byte(testShortcuts), 0o644); err != nil {
		t.Fatalf("write shortcuts: %v", err)
	}
	return root
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInitCreatesConfigOnce(t *testing.T) {
	isolateEnv(t)
	root := t.TempDir()
	out, err := runCLI(t, "", "init", root)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "Initialized shortcut repository") {
		t.Fatalf("unexpected output %q", out)
	}
	data, err := os.ReadFile(config.RepoConfigPath(root))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(data) != config.DefaultTemplate() {
		t.Fatalf("expected default template, got:\n%s", data)
	}
	out, err = runCLI(t, "", "init", root)
	if err != nil || !strings.Contains(out, "already initialized") {
		t.Fatalf("second init: %q, %v", out, err)
	}
}

func TestResolveRepoOrder(t *testing.T) {
	isolateEnv(t)
	flagRoot := newTestRepo(t)
	envRoot := newTestRepo(t)

	t.Setenv(repoEnv, envRoot)
	repoFlag = ""
	root, _, err := resolveRepo()
	if err != nil || root != envRoot {
		t.Fatalf("expected env repo %s, got %s (%v)", envRoot, root, err)
	}

	repoFlag = flagRoot
	t.Cleanup(func() { repoFlag = "" })
	root, _, err = resolveRepo()
	if err != nil || root != flagRoot {
		t.Fatalf("expected flag repo %s, got %s (%v)", flagRoot, root, err)
	}

	repoFlag = t.TempDir()
	if _, _, err := resolveRepo(); !errors.Is(err, config.ErrRepoNotFound) {
		t.Fatalf("expected ErrRepoNotFound, got %v", err)
	}
}

func TestListAndCheck(t *testing.T) {
	isolateEnv(t)
	root := newTestRepo(t)

	out, err := runCLI(t, "", "--repo", root, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "  - vscode (2 shortcuts)") {
		t.Fatalf("unexpected list output %q", out)
	}

	if _, err := runCLI(t, "", "--repo", root, "check", "vscode", "command+d"); !errors.Is(err, errDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	out, err = runCLI(t, "", "--repo", root, "check", "vscode", "cmd+k")
	if err != nil || !strings.Contains(out, "Cmd+K is not defined for vscode yet") {
		t.Fatalf("unexpected check output %q, %v", out, err)
	}
	out, err = runCLI(t, "", "--repo", root, "check")
	if err != nil || !strings.Contains(out, "Integrity") {
		t.Fatalf("unexpected integrity output %q, %v", out, err)
	}
	if _, err := runCLI(t, "", "--repo", root, "check", "vscode"); err == nil {
		t.Fatalf("expected argument error")
	}
}

func TestLearnPlainSavesAnswers(t *testing.T) {
	isolateEnv(t)
	root := newTestRepo(t)

	out, err := runCLI(t, "", "--repo", root, "learn", "vscode")
	if err != nil {
		t.Fatalf("learn without progress: %v", err)
	}
	if !strings.Contains(out, "No shortcuts to learn") {
		t.Fatalf("expected empty-queue message, got %q", out)
	}

	out, err = runCLI(t, "\ny\n\nn\n", "--repo", root, "learn", "vscode", "--all", "--plain")
	if err != nil {
		t.Fatalf("learn: %v", err)
	}
	for _, want := range []string{"=== Learning Mode: vscode (Flash) ===", "[Question 2/2]", "Session Complete"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}

	progress, err := store.NewJSONStore(config.JSONProgressPath(root)).Load(context.Background())
	if err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if len(progress) != 2 {
		t.Fatalf("expected 2 saved entries, got %d", len(progress))
	}
	var correct, incorrect int
	for _, entry := range progress {
		correct += entry.CorrectCount
		incorrect += entry.IncorrectCount
	}
	if correct != 1 || incorrect != 1 {
		t.Fatalf("expected one correct and one incorrect answer, got %d/%d", correct, incorrect)
	}

	out, err = runCLI(t, "", "--repo", root, "learn", "vscode")
	if err != nil || !strings.Contains(out, "Nothing due today. Next review: tomorrow") {
		t.Fatalf("expected next review hint, got %q, %v", out, err)
	}
}

func TestLearnRejectsUnknownApp(t *testing.T) {
	isolateEnv(t)
	root := newTestRepo(t)
	if _, err := runCLI(t, "", "--repo", root, "learn", "emacs"); err == nil {
		t.Fatalf("expected unknown app error")
	}
	if _, err := runCLI(t, "", "--repo", root, "learn", "--mode", "speed"); err == nil {
		t.Fatalf("expected invalid mode error")
	}
}

func TestStatsForEmptyApp(t *testing.T) {
	isolateEnv(t)
	root := newTestRepo(t)
	out, err := runCLI(t, "", "--repo", root, "stats", "vscode")
	if err != nil || !strings.Contains(out, "No learning data for vscode.") {
		t.Fatalf("unexpected stats output %q, %v", out, err)
	}
}

func TestLearnReportsSessionID(t *testing.T) {
	isolateEnv(t)
	root := newTestRepo(t)
	out, err := runCLI(t, "\ny\n\ny\n", "--repo", root, "learn", "vscode", "--all", "--plain")
	if err != nil {
		t.Fatalf("learn: %v", err)
	}
	i := strings.Index(out, "\nSession ")
	if i < 0 {
		t.Fatalf("missing session id in output:\n%s", out)
	}
	line := out[i+len("\nSession "):]
	line = line[:strings.IndexByte(line, '\n')]
	if _, err := uuid.Parse(line); err != nil {
		t.Fatalf("session id %q is not a uuid: %v", line, err)
	}
}

func TestLearnKeepsProgressWhenNothingMatches(t *testing.T) {
	isolateEnv(t)
	root := newTestRepo(t)
	if _, err := runCLI(t, "\ny\n\ny\n", "--repo", root, "learn", "vscode", "--all", "--plain"); err != nil {
		t.Fatalf("learn: %v", err)
	}
	conf := "[catalog]\npattern = \"decks/*_shortcuts.md\"\n"
	if err := os.WriteFile(config.RepoConfigPath(root), []byte(conf), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := runCLI(t, "", "--repo", root, "learn"); err != nil {
		t.Fatalf("learn with empty catalog: %v", err)
	}
	progress, err := store.NewJSONStore(config.JSONProgressPath(root)).Load(context.Background())
	if err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if len(progress) != 2 {
		t.Fatalf("expected progress to survive an empty catalog, got %d entries", len(progress))
	}
}

func TestLearnUsesLegacyConfig(t *testing.T) {
	isolateEnv(t)
	root := newTestRepo(t)
	if err := os.Remove(config.RepoConfigPath(root)); err != nil {
		t.Fatalf("remove config: %v", err)
	}
	legacy := `{"settings": {"quizSize": 1, "defaultLearningMode": "quick"}}`
	if err := os.WriteFile(config.LegacyConfigPath(root), []byte(legacy), 0o644); err != nil {
		t.Fatalf("write legacy config: %v", err)
	}
	out, err := runCLI(t, "\n2\n", "--repo", root, "learn", "vscode", "--all", "--plain")
	if err != nil {
		t.Fatalf("learn: %v", err)
	}
	if !strings.Contains(out, "(Quick)") || strings.Contains(out, "[Question 2/") {
		t.Fatalf("expected one quick question, got:\n%s", out)
	}
}

func TestAddCreatesAndExtendsFiles(t *testing.T) {
	isolateEnv(t)
	root := newTestRepo(t)

	out, err := runCLI(t, "", "--repo", root, "add", "slack", "command+k", "Jump to conversation", "Navigation")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Added Cmd+K to slack_shortcuts.md") {
		t.Fatalf("unexpected add output %q", out)
	}
	if _, err := os.Stat(filepath.Join(root, "slack_shortcuts.md")); err != nil {
		t.Fatalf("expected new shortcut file: %v", err)
	}

	if _, err := runCLI(t, "", "--repo", root, "add", "vscode", "cmd+b", "Toggle sidebar", "View"); err != nil {
		t.Fatalf("add to existing file: %v", err)
	}
	out, err = runCLI(t, "", "--repo", root, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"  - vscode (3 shortcuts)", "  - slack (1 shortcuts)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in list output:\n%s", want, out)
		}
	}

	if _, err := runCLI(t, "", "--repo", root, "add", "vscode", "Cmd+D", "Again", "Selection"); !errors.Is(err, errDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := runCLI(t, "", "--repo", root, "add", "a:b", "Cmd+D", "Bad", "X"); err == nil {
		t.Fatalf("expected invalid app error")
	}
}

func TestRenameMovesProgress(t *testing.T) {
	isolateEnv(t)
	root := newTestRepo(t)
	if _, err := runCLI(t, "\ny\n\ny\n", "--repo", root, "learn", "vscode", "--all", "--plain"); err != nil {
		t.Fatalf("learn: %v", err)
	}

	out, err := runCLI(t, "", "--repo", root, "rename", "vscode", "code")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if !strings.Contains(out, "Renamed vscode → code (2 progress entries moved)") {
		t.Fatalf("unexpected rename output %q", out)
	}
	if _, err := os.Stat(filepath.Join(root, "code_shortcuts.md")); err != nil {
		t.Fatalf("expected renamed file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "vscode_shortcuts.md")); !os.IsNotExist(err) {
		t.Fatalf("old file should be gone, got %v", err)
	}

	progress, err := store.NewJSONStore(config.JSONProgressPath(root)).Load(context.Background())
	if err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if len(progress) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(progress))
	}
	for key := range progress {
		if key.App != "code" {
			t.Fatalf("unexpected key %s after rename", key)
		}
	}

	// The renamed app keeps its progress on the next run.
	out, err = runCLI(t, "", "--repo", root, "learn", "code")
	if err != nil || !strings.Contains(out, "Nothing due today") {
		t.Fatalf("expected learned cards to stay scheduled, got %q, %v", out, err)
	}

	if _, err := runCLI(t, "", "--repo", root, "rename", "emacs", "vim"); err == nil {
		t.Fatalf("expected missing app error")
	}
}
