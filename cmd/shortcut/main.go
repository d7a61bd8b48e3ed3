// Package main provides the CLI entrypoint for shortcut.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/shortcut/internal/catalog"
	"github.com/verte-zerg/shortcut/internal/config"
	"github.com/verte-zerg/shortcut/internal/integrity"
	"github.com/verte-zerg/shortcut/internal/scheduler"
	"github.com/verte-zerg/shortcut/internal/stats"
	"github.com/verte-zerg/shortcut/internal/statsui"
	"github.com/verte-zerg/shortcut/internal/store"
)

const (
	defaultStatsTop = 5
	repoEnv         = "SHORTCUT_REPO"
)

var errDuplicate = errors.New("shortcut already exists")

var (
	repoFlag string

	learnMode     string
	learnAll      bool
	learnPlain    bool
	learnQuizSize int

	statsTop int
	statsTUI bool

	configGlobal bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "shortcut",
		Short:         "Learn keyboard shortcuts with Leitner flashcards",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "", "shortcut repository root (default: $SHORTCUT_REPO, config repo, or nearest .shortcut-master)")

	rootCmd.AddCommand(newLearnCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newRenameCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// repoContext is what every repository command needs.
type repoContext struct {
	root     string
	settings config.Settings
}

func resolveRepo() (string, config.FileConfig, error) {
	global, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return "", config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}

	root := strings.TrimSpace(repoFlag)
	if root == "" {
		root = strings.TrimSpace(os.Getenv(repoEnv))
	}
	if root == "" && global.Repo != nil {
		root = strings.TrimSpace(*global.Repo)
	}
	if root != "" {
		root = config.ExpandHome(root)
		info, err := os.Stat(config.RepoDir(root))
		if err != nil || !info.IsDir() {
			return "", config.FileConfig{}, fmt.Errorf("%s: %w", root, config.ErrRepoNotFound)
		}
		return root, global, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", config.FileConfig{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	root, err = config.FindRepoRoot(cwd)
	if err != nil {
		return "", config.FileConfig{}, err
	}
	return root, global, nil
}

func openRepo() (repoContext, error) {
	root, global, err := resolveRepo()
	if err != nil {
		return repoContext{}, err
	}
	merged, err := config.LoadRepoConfig(root, global)
	if err != nil {
		return repoContext{}, fmt.Errorf("failed to load config: %w", err)
	}
	settings, err := merged.Resolve()
	if err != nil {
		return repoContext{}, fmt.Errorf("invalid config: %w", err)
	}
	return repoContext{root: root, settings: settings}, nil
}

func (rc repoContext) loadCatalog() (*catalog.Catalog, error) {
	cat, err := catalog.Load(rc.root, rc.settings.CatalogPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to load shortcuts: %w", err)
	}
	for _, skipped := range cat.Skipped() {
		logErrf("skipping %s: %v\n", skipped.Path, skipped.Err)
	}
	return cat, nil
}

func (rc repoContext) openStore() (store.ProgressStore, func(), error) {
	st, err := store.Open(rc.settings.Backend, rc.root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open progress store: %w", err)
	}
	closeFn := func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close progress store: %v\n", cerr)
		}
	}
	return st, closeFn, nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [app]",
		Short: "Show learning statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsTop, "top", defaultStatsTop, "number of difficult shortcuts to list")
	cmd.Flags().BoolVar(&statsTUI, "tui", false, "browse progress interactively")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, args []string) error {
	app := ""
	if len(args) == 1 {
		app = args[0]
	}
	if statsTop < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	rc, err := openRepo()
	if err != nil {
		return err
	}
	st, closeStore, err := rc.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if statsTUI {
		sched := scheduler.New(rc.settings.Learn.Intervals)
		program := tea.NewProgram(statsui.NewModel(st, sched, nil, app), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("failed to run stats TUI: %w", err)
		}
		return nil
	}

	summary, err := stats.BuildReport(cmd.Context(), st, app, statsTop)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	out := cmd.OutOrStdout()
	if summary.Entries == 0 && app != "" {
		if _, err := fmt.Fprintf(out, "No learning data for %s.\n", app); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	title := app
	if title == "" {
		title = "All Apps"
	}
	if err := stats.RenderSummary(out, title, summary); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [app shortcut]",
		Short: "Check progress integrity, or whether a shortcut already exists",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or <app> <shortcut>, got %d", len(args))
			}
			return nil
		},
		RunE: runCheckCmd,
	}
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	rc, err := openRepo()
	if err != nil {
		return err
	}
	cat, err := rc.loadCatalog()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 2 {
		app, normalized := args[0], catalog.Normalize(args[1])
		if integrity.Exists(cat, app, normalized) {
			logErrf("%s already exists in %s\n", normalized, app)
			return fmt.Errorf("%w: %s:%s", errDuplicate, app, normalized)
		}
		if _, err := fmt.Fprintf(out, "%s is not defined for %s yet\n", normalized, app); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	st, closeStore, err := rc.openStore()
	if err != nil {
		return err
	}
	defer closeStore()
	progress, err := st.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	if err := stats.RenderIntegrity(out, integrity.Check(cat, progress)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	orphans := integrity.Orphans(cat, progress)
	if len(orphans) > 0 {
		if _, err := fmt.Fprintln(out, "\nOrphaned entries (removed before the next session):"); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		for _, key := range orphans {
			if _, err := fmt.Fprintf(out, "  - %s\n", key); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List apps with shortcut files",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	rc, err := openRepo()
	if err != nil {
		return err
	}
	cat, err := rc.loadCatalog()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	apps := cat.Apps()
	if len(apps) == 0 {
		if _, err := fmt.Fprintf(out, "No apps found. Add shortcut files named <app>%s\n", catalog.FileSuffix); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if _, err := fmt.Fprintln(out, "Apps:"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for _, app := range apps {
		if _, err := fmt.Fprintf(out, "  - %s (%d shortcuts)\n", app, len(cat.App(app))); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Create a shortcut repository",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInitCmd,
	}
}

func runInitCmd(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = config.ExpandHome(args[0])
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	created, err := writeConfigTemplate(config.RepoConfigPath(root))
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Initialized shortcut repository at %s", root)
	if !created {
		msg = fmt.Sprintf("Shortcut repository already initialized at %s", root)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), msg); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
	cmd.Flags().BoolVar(&configGlobal, "global", false, "edit the global config instead of the repository config")
	return cmd
}

func runConfigCmd(cmd *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if !configGlobal {
		root, _, err := resolveRepo()
		if err != nil {
			return err
		}
		path = config.RepoConfigPath(root)
	}
	if _, err := writeConfigTemplate(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	editCmd := exec.Command(parts[0], append(parts[1:], path)...)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	if err := editCmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeConfigTemplate creates path with the default template unless it
// exists. It reports whether the file was created.
func writeConfigTemplate(path string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.DefaultTemplate()), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target *string, value string) {
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func applyIntConfig(cmd *cobra.Command, name string, target *int, value int) {
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
