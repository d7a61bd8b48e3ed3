package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/verte-zerg/shortcut/internal/model"
)

// SkippedFile records a shortcut file that could not be parsed.
type SkippedFile struct {
	App  string
	Path string
	Err  error
}

// Catalog is the set of known shortcuts grouped by app.
type Catalog struct {
	apps    []string
	byApp   map[string][]model.Shortcut
	paths   map[string]string
	skipped []SkippedFile
}

// New builds a catalog from shortcuts, keeping their order within each app.
func New(shortcuts []model.Shortcut) *Catalog {
	c := &Catalog{byApp: map[string][]model.Shortcut{}}
	for _, s := range shortcuts {
		c.add(s.App, []model.Shortcut{s})
	}
	c.sortApps()
	return c
}

// Load parses every file under root matching pattern. Files that fail to
// parse are recorded as skipped rather than failing the whole load.
func Load(root, pattern string) (*Catalog, error) {
	if pattern == "" {
		return nil, fmt.Errorf("catalog pattern is empty")
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid catalog pattern %q", pattern)
	}
	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sort.Strings(matches)

	c := &Catalog{byApp: map[string][]model.Shortcut{}, paths: map[string]string{}}
	for _, rel := range matches {
		app, ok := AppName(rel)
		if !ok {
			continue
		}
		path := filepath.Join(root, filepath.FromSlash(rel))
		if _, ok := c.paths[app]; !ok {
			c.paths[app] = path
		}
		shortcuts, err := ParseFile(path)
		if err != nil {
			c.skipped = append(c.skipped, SkippedFile{App: app, Path: path, Err: err})
			continue
		}
		c.add(app, shortcuts)
	}
	c.sortApps()
	return c, nil
}

func (c *Catalog) add(app string, shortcuts []model.Shortcut) {
	if _, ok := c.byApp[app]; !ok {
		c.apps = append(c.apps, app)
	}
	c.byApp[app] = append(c.byApp[app], shortcuts...)
}

func (c *Catalog) sortApps() {
	sort.Strings(c.apps)
}

// Path returns the first shortcut file found for app, parsed or not.
func (c *Catalog) Path(app string) (string, bool) {
	path, ok := c.paths[app]
	return path, ok
}

// Apps returns the app names in sorted order.
func (c *Catalog) Apps() []string {
	return append([]string(nil), c.apps...)
}

// App returns the shortcuts of one app in file order.
func (c *Catalog) App(name string) []model.Shortcut {
	return append([]model.Shortcut(nil), c.byApp[name]...)
}

// All returns every shortcut, apps sorted, file order within an app.
func (c *Catalog) All() []model.Shortcut {
	var out []model.Shortcut
	for _, app := range c.apps {
		out = append(out, c.byApp[app]...)
	}
	return out
}

// Len returns the number of shortcuts.
func (c *Catalog) Len() int {
	n := 0
	for _, shortcuts := range c.byApp {
		n += len(shortcuts)
	}
	return n
}

// Keys returns the set of valid progress keys.
func (c *Catalog) Keys() map[model.Key]struct{} {
	keys := make(map[model.Key]struct{}, c.Len())
	for _, shortcuts := range c.byApp {
		for _, s := range shortcuts {
			keys[s.Key()] = struct{}{}
		}
	}
	return keys
}

// Skipped returns the files that failed to parse.
func (c *Catalog) Skipped() []SkippedFile {
	return append([]SkippedFile(nil), c.skipped...)
}

// Broken reports whether an app has a shortcut file that failed to parse.
func (c *Catalog) Broken(app string) bool {
	for _, s := range c.skipped {
		if s.App == app {
			return true
		}
	}
	return false
}
