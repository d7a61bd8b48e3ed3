// Package integrity keeps learning progress consistent with the catalog.
package integrity

import (
	"github.com/verte-zerg/shortcut/internal/catalog"
	"github.com/verte-zerg/shortcut/internal/model"
)

// Report summarizes how the catalog and the progress store line up.
type Report struct {
	Apps            int
	TotalShortcuts  int
	ProgressEntries int
	Orphaned        int
	NotLearned      int
}

// Reconcile returns progress without orphaned entries and the number removed.
// Entries of an app whose shortcut file failed to parse are kept, since the
// file still exists and its shortcuts are unknown rather than deleted.
func Reconcile(cat *catalog.Catalog, progress model.Progress) (model.Progress, int) {
	valid := cat.Keys()
	cleaned := make(model.Progress, len(progress))
	removed := 0
	for key, entry := range progress {
		if _, ok := valid[key]; ok || cat.Broken(key.App) {
			cleaned[key] = entry
			continue
		}
		removed++
	}
	return cleaned, removed
}

// Orphans returns the orphaned keys in sorted order.
func Orphans(cat *catalog.Catalog, progress model.Progress) []model.Key {
	valid := cat.Keys()
	var orphans []model.Key
	for _, key := range progress.Keys() {
		if _, ok := valid[key]; ok || cat.Broken(key.App) {
			continue
		}
		orphans = append(orphans, key)
	}
	return orphans
}

// Exists reports whether app already defines the normalized shortcut.
func Exists(cat *catalog.Catalog, app, normalized string) bool {
	for _, s := range cat.App(app) {
		if s.Notation == normalized {
			return true
		}
	}
	return false
}

// Check builds an integrity report.
func Check(cat *catalog.Catalog, progress model.Progress) Report {
	valid := cat.Keys()
	notLearned := 0
	for key := range valid {
		if _, ok := progress[key]; !ok {
			notLearned++
		}
	}
	return Report{
		Apps:            len(cat.Apps()),
		TotalShortcuts:  cat.Len(),
		ProgressEntries: len(progress),
		Orphaned:        len(Orphans(cat, progress)),
		NotLearned:      notLearned,
	}
}

// RenameApp returns a copy of progress with every key of app oldName moved to
// newName, and the number of keys moved. Entries already stored under a moved
// key are replaced.
func RenameApp(progress model.Progress, oldName, newName string) (model.Progress, int) {
	renamed := make(model.Progress, len(progress))
	for key, entry := range progress {
		if key.App != oldName {
			renamed[key] = entry
		}
	}
	moved := 0
	for key, entry := range progress {
		if key.App == oldName {
			renamed[model.Key{App: newName, Shortcut: key.Shortcut}] = entry
			moved++
		}
	}
	return renamed, moved
}
