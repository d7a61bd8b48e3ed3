// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/shortcut/internal/model"
)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Defaults used when no config sets a value.
const (
	DefaultQuizSize       = 10
	DefaultMode           = model.ModeFlash
	DefaultBackend        = BackendJSON
	DefaultCatalogPattern = "*_shortcuts.md"
)

// FileConfig represents a TOML configuration file.
type FileConfig struct {
	Repo     *string        `toml:"repo"`
	Learning LearningConfig `toml:"learning"`
	Storage  StorageConfig  `toml:"storage"`
	Catalog  CatalogConfig  `toml:"catalog"`
}

// LearningConfig maps learning-related settings.
type LearningConfig struct {
	Box1     *int    `toml:"box1"`
	Box2     *int    `toml:"box2"`
	Box3     *int    `toml:"box3"`
	QuizSize *int    `toml:"quiz-size"`
	Mode     *string `toml:"mode"`
}

// StorageConfig selects the progress store.
type StorageConfig struct {
	Backend *string `toml:"backend"`
}

// CatalogConfig controls shortcut file discovery.
type CatalogConfig struct {
	Pattern *string `toml:"pattern"`
}

// Settings is the resolved configuration for one command invocation.
type Settings struct {
	Learn          model.LearnConfig
	Backend        string
	CatalogPattern string
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge overlays the values set in over onto base.
func Merge(base, over FileConfig) FileConfig {
	out := base
	pick(&out.Repo, over.Repo)
	pick(&out.Learning.Box1, over.Learning.Box1)
	pick(&out.Learning.Box2, over.Learning.Box2)
	pick(&out.Learning.Box3, over.Learning.Box3)
	pick(&out.Learning.QuizSize, over.Learning.QuizSize)
	pick(&out.Learning.Mode, over.Learning.Mode)
	pick(&out.Storage.Backend, over.Storage.Backend)
	pick(&out.Catalog.Pattern, over.Catalog.Pattern)
	return out
}

func pick[T any](target **T, value *T) {
	if value != nil {
		*target = value
	}
}

// Resolve applies defaults and validates the merged file config.
func (c FileConfig) Resolve() (Settings, error) {
	intervals := model.DefaultIntervals()
	if c.Learning.Box1 != nil {
		intervals[1] = *c.Learning.Box1
	}
	if c.Learning.Box2 != nil {
		intervals[2] = *c.Learning.Box2
	}
	if c.Learning.Box3 != nil {
		intervals[3] = *c.Learning.Box3
	}

	learn := model.LearnConfig{
		Intervals: intervals,
		QuizSize:  DefaultQuizSize,
		Mode:      DefaultMode,
	}
	if c.Learning.QuizSize != nil {
		learn.QuizSize = *c.Learning.QuizSize
	}
	if c.Learning.Mode != nil {
		mode, err := model.ParseMode(*c.Learning.Mode)
		if err != nil {
			return Settings{}, fmt.Errorf("learning.mode: %w", err)
		}
		learn.Mode = mode
	}
	if err := learn.Validate(); err != nil {
		return Settings{}, err
	}

	settings := Settings{
		Learn:          learn,
		Backend:        DefaultBackend,
		CatalogPattern: DefaultCatalogPattern,
	}
	if c.Storage.Backend != nil {
		switch *c.Storage.Backend {
		case BackendJSON, BackendSQLite:
			settings.Backend = *c.Storage.Backend
		default:
			return Settings{}, fmt.Errorf("%w: storage.backend must be %q or %q, got %q",
				model.ErrInvalidConfig, BackendJSON, BackendSQLite, *c.Storage.Backend)
		}
	}
	if c.Catalog.Pattern != nil && *c.Catalog.Pattern != "" {
		settings.CatalogPattern = *c.Catalog.Pattern
	}
	return settings, nil
}

// DefaultTemplate renders the commented config written by "shortcut init".
func DefaultTemplate() string {
	iv := model.DefaultIntervals()
	return fmt.Sprintf(`# shortcut repository configuration
# Uncomment a value to enable it. CLI flags override config values.

[learning]
# box1 = %d               # Days before a box 1 card is due again
# box2 = %d               # Days before a box 2 card is due again
# box3 = %d               # Days before a box 3 card is due again
# quiz-size = %d         # Maximum cards per session
# mode = %q          # flash, quick or typing

[storage]
# backend = %q        # json or sqlite

[catalog]
# pattern = %q  # Glob for shortcut files, relative to the repository
`,
		iv[1],
		iv[2],
		iv[3],
		DefaultQuizSize,
		string(DefaultMode),
		DefaultBackend,
		DefaultCatalogPattern,
	)
}
