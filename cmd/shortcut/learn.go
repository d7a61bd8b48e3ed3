package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/shortcut/internal/catalog"
	"github.com/verte-zerg/shortcut/internal/config"
	"github.com/verte-zerg/shortcut/internal/integrity"
	"github.com/verte-zerg/shortcut/internal/model"
	"github.com/verte-zerg/shortcut/internal/prompt"
	"github.com/verte-zerg/shortcut/internal/scheduler"
	"github.com/verte-zerg/shortcut/internal/session"
	"github.com/verte-zerg/shortcut/internal/stats"
	"github.com/verte-zerg/shortcut/internal/store"
	"github.com/verte-zerg/shortcut/internal/tui"
)

func newLearnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learn [app]",
		Short: "Review the shortcuts due today",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLearnCmd,
	}
	cmd.Flags().StringVar(&learnMode, "mode", string(model.ModeFlash), "review mode: "+model.ModeNames())
	cmd.Flags().BoolVar(&learnAll, "all", false, "review every shortcut, not only the due ones")
	cmd.Flags().BoolVar(&learnPlain, "plain", false, "use line prompts instead of the full-screen UI")
	cmd.Flags().IntVar(&learnQuizSize, "quiz-size", config.DefaultQuizSize, "maximum cards per session")
	return cmd
}

func runLearnCmd(cmd *cobra.Command, args []string) error {
	app := ""
	if len(args) == 1 {
		app = args[0]
	}
	rc, err := openRepo()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "mode", &learnMode, string(rc.settings.Learn.Mode))
	applyIntConfig(cmd, "quiz-size", &learnQuizSize, rc.settings.Learn.QuizSize)

	learn := rc.settings.Learn
	learn.QuizSize = learnQuizSize
	mode, err := model.ParseMode(learnMode)
	if err != nil {
		return err
	}
	learn.Mode = mode
	if err := learn.Validate(); err != nil {
		return err
	}

	cat, err := rc.loadCatalog()
	if err != nil {
		return err
	}
	if app != "" && len(cat.App(app)) == 0 {
		return fmt.Errorf("no shortcuts found for %s (expected %s%s)", app, app, catalog.FileSuffix)
	}

	st, closeStore, err := rc.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := cmd.Context()
	progress, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	progress, err = cleanOrphans(ctx, st, cat, progress, rc.settings.CatalogPattern)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	sched := scheduler.New(learn.Intervals)
	cards := sched.DueCards(cat.All(), progress, app, learnAll)
	if len(cards) == 0 {
		return reportNothingDue(out, sched, progress, app)
	}
	if len(cards) < learn.QuizSize {
		logErrf("Only %d cards to review (quiz size %d).\n", len(cards), learn.QuizSize)
	}

	opts := session.Options{QuizSize: learn.QuizSize, Mode: learn.Mode}
	var res session.Result
	if !learnPlain && isInteractive() {
		sess, err := session.New(cards, opts)
		if err != nil {
			return err
		}
		res, err = tui.Run(ctx, sess, app)
		if err != nil {
			if _, serr := saveResult(ctx, st, progress, res); serr != nil {
				logErrln(serr)
			}
			return err
		}
	} else {
		shown := cards
		if len(shown) > learn.QuizSize {
			shown = shown[:learn.QuizSize]
		}
		if err := prompt.Header(out, app, learn.Mode, shown); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		res, err = session.Run(ctx, cards, opts, prompt.New(cmd.InOrStdin(), out))
		if err != nil {
			// Answers given before the failure are still saved.
			logErrln("session ended early:", err)
		}
		if _, werr := fmt.Fprintln(out); werr != nil {
			return fmt.Errorf("failed to write output: %w", werr)
		}
	}

	if _, err := saveResult(ctx, st, progress, res); err != nil {
		return err
	}
	if err := stats.RenderSession(out, res.Stats); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// saveResult writes the answered cards of res into progress and saves it. It
// returns how many cards were written.
func saveResult(ctx context.Context, st store.ProgressStore, progress model.Progress, res session.Result) (int, error) {
	n := res.Apply(progress)
	if n == 0 {
		return 0, nil
	}
	if err := st.Save(ctx, progress); err != nil {
		return 0, fmt.Errorf("failed to save progress: %w", err)
	}
	return n, nil
}

// cleanOrphans drops progress entries whose shortcut is gone. A catalog with
// no shortcut files at all leaves progress untouched, since that usually
// means a wrong pattern or repository rather than deleted shortcuts.
func cleanOrphans(ctx context.Context, st store.ProgressStore, cat *catalog.Catalog, progress model.Progress, pattern string) (model.Progress, error) {
	if len(cat.Apps()) == 0 && len(cat.Skipped()) == 0 {
		if len(progress) > 0 {
			logErrf("No shortcut files match %q; keeping %d progress entries.\n", pattern, len(progress))
		}
		return progress, nil
	}
	orphans := integrity.Orphans(cat, progress)
	cleaned, removed := integrity.Reconcile(cat, progress)
	if removed == 0 {
		return cleaned, nil
	}
	if err := st.Save(ctx, cleaned); err != nil {
		return nil, fmt.Errorf("failed to save progress: %w", err)
	}
	perApp := map[string]int{}
	for _, key := range orphans {
		perApp[key.App]++
	}
	apps := make([]string, 0, len(perApp))
	for app := range perApp {
		apps = append(apps, app)
	}
	sort.Strings(apps)
	parts := make([]string, len(apps))
	for i, app := range apps {
		parts[i] = fmt.Sprintf("%s: %d", app, perApp[app])
	}
	logErrf("Cleaned %d orphaned progress entries (%s).\n", removed, strings.Join(parts, ", "))
	return cleaned, nil
}

func reportNothingDue(out io.Writer, sched *scheduler.Scheduler, progress model.Progress, app string) error {
	var msg string
	if next, ok := sched.NextScheduledDate(progress, app); ok {
		msg = fmt.Sprintf("Nothing due today. Next review: %s", stats.RelativeDate(next, time.Now()))
	} else {
		msg = "No shortcuts to learn. Add rows to a shortcut file or run with --all."
	}
	if _, err := fmt.Fprintln(out, msg); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
