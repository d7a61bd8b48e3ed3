// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/shortcut/internal/integrity"
	"github.com/verte-zerg/shortcut/internal/model"
)

const (
	barWidth = 20
	barFull  = '#'
	barEmpty = '.'
)

// Summary is a read-only view over progress entries.
type Summary struct {
	Entries   int
	BoxCounts map[int]int
	Correct   int
	Incorrect int
	Difficult []Difficult
}

// Accuracy returns correct / (correct + incorrect). It reports false when
// nothing was answered.
func Accuracy(correct, incorrect int) (float64, bool) {
	den := correct + incorrect
	if den <= 0 {
		return 0, false
	}
	return float64(correct) / float64(den), true
}

// Summarize aggregates the persisted progress of one app, or of every app
// when app is empty. top bounds the difficult ranking.
func Summarize(progress model.Progress, app string, top int) Summary {
	filtered := progress.Filter(app)
	s := Summary{Entries: len(filtered), BoxCounts: emptyBoxCounts()}
	for _, e := range filtered {
		s.BoxCounts[e.Box]++
		s.Correct += e.CorrectCount
		s.Incorrect += e.IncorrectCount
	}
	s.Difficult = TopDifficult(filtered, top)
	return s
}

func emptyBoxCounts() map[int]int {
	counts := make(map[int]int, model.MaxBox)
	for box := model.MinBox; box <= model.MaxBox; box++ {
		counts[box] = 0
	}
	return counts
}

// RenderSummary prints the box distribution, accuracy and the most
// difficult shortcuts.
func RenderSummary(w io.Writer, title string, s Summary) error {
	if s.Entries == 0 {
		_, err := fmt.Fprintln(w, "No learning data yet. Start with: shortcut learn")
		return err
	}
	if _, err := fmt.Fprintf(w, "=== Learning Statistics: %s ===\n\n", title); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Box Distribution"); err != nil {
		return err
	}
	rows := make([][]string, 0, model.MaxBox)
	for box := model.MinBox; box <= model.MaxBox; box++ {
		note := ""
		if box == model.MinBox {
			note = "review often"
		}
		rows = append(rows, []string{
			fmt.Sprintf("Box %d", box),
			fmt.Sprintf("%d", s.BoxCounts[box]),
			bar(s.BoxCounts[box], s.Entries, barWidth),
			note,
		})
	}
	if err := writeLines(w, formatTable(nil, rows, map[int]bool{1: true}), "  "); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	if acc, ok := Accuracy(s.Correct, s.Incorrect); ok {
		if _, err := fmt.Fprintf(w, "Overall Accuracy: %.1f%%\n", acc*100); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  Correct: %d / Incorrect: %d\n\n", s.Correct, s.Incorrect); err != nil {
			return err
		}
	}

	if len(s.Difficult) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Most Difficult Shortcuts (Top %d)\n", len(s.Difficult)); err != nil {
		return err
	}
	headers := []string{"Shortcut", "App", "Box", "Incorrect", "Accuracy"}
	tableRows := make([][]string, 0, len(s.Difficult))
	for _, d := range s.Difficult {
		accLabel := "-"
		if acc, ok := Accuracy(d.Correct, d.Incorrect); ok {
			accLabel = fmt.Sprintf("%.0f%%", acc*100)
		}
		tableRows = append(tableRows, []string{
			d.Key.Shortcut,
			d.Key.App,
			fmt.Sprintf("%d", d.Box),
			fmt.Sprintf("%d", d.Incorrect),
			accLabel,
		})
	}
	if err := writeLines(w, formatTable(headers, tableRows, map[int]bool{2: true, 3: true, 4: true}), "  "); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSession prints the result of one review session.
func RenderSession(w io.Writer, st model.SessionStats) error {
	heading := "=== Learning Session Complete ==="
	if st.Aborted {
		heading = "=== Learning Session Stopped ==="
	}
	if _, err := fmt.Fprintf(w, "\n%s\n", heading); err != nil {
		return err
	}
	if st.ID != "" {
		if _, err := fmt.Fprintf(w, "Session %s\n", st.ID); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	answered := st.Answered()
	if answered > 0 || st.Skipped > 0 {
		if _, err := fmt.Fprintln(w, "Today's Progress:"); err != nil {
			return err
		}
	}
	if acc, ok := Accuracy(st.Correct, st.Incorrect); ok {
		if _, err := fmt.Fprintf(w, "  Correct: %d/%d (%.0f%%)\n", st.Correct, answered, acc*100); err != nil {
			return err
		}
		if st.Incorrect > 0 {
			if _, err := fmt.Fprintf(w, "  Incorrect: %d/%d\n", st.Incorrect, answered); err != nil {
				return err
			}
		}
	}
	if st.Skipped > 0 {
		if _, err := fmt.Fprintf(w, "  Skipped: %d\n", st.Skipped); err != nil {
			return err
		}
	}
	if answered > 0 || st.Skipped > 0 {
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}

	if changes := st.SortedChanges(); len(changes) > 0 {
		if _, err := fmt.Fprintln(w, "Box Changes:"); err != nil {
			return err
		}
		for _, c := range changes {
			direction := "↑"
			if c.To < c.From {
				direction = "↓"
			}
			if _, err := fmt.Fprintf(w, "  Box %s: %d shortcuts %s\n", c, st.BoxChanges[c], direction); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}

	if st.Aborted {
		_, err := fmt.Fprintf(w, "Stopped after %d of %d cards. Answered cards were saved.\n", answered+st.Skipped, st.Total)
		return err
	}
	_, err := fmt.Fprintln(w, "Great work! Keep practicing.")
	return err
}

// RenderIntegrity prints how the catalog and the stored progress line up.
func RenderIntegrity(w io.Writer, r integrity.Report) error {
	if _, err := fmt.Fprintln(w, "Integrity"); err != nil {
		return err
	}
	rows := [][]string{
		{"Apps", fmt.Sprintf("%d", r.Apps)},
		{"Shortcuts", fmt.Sprintf("%d", r.TotalShortcuts)},
		{"Progress entries", fmt.Sprintf("%d", r.ProgressEntries)},
		{"Orphaned entries", fmt.Sprintf("%d", r.Orphaned)},
		{"Not learned yet", fmt.Sprintf("%d", r.NotLearned)},
	}
	return writeLines(w, formatTable(nil, rows, map[int]bool{1: true}), "  ")
}

func bar(count, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := (count*width + total/2) / total
	if filled > width {
		filled = width
	}
	return strings.Repeat(string(barFull), filled) + strings.Repeat(string(barEmpty), width-filled)
}

func writeLines(w io.Writer, lines []string, indent string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, indent+strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}
