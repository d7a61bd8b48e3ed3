// Package config provides XDG path helpers.
package config

import (
	"errors"
	"os"
	"path/filepath"
)

// RepoDirName marks the root of a shortcut repository.
const RepoDirName = ".shortcut-master"

// maxRepoDepth bounds the parent walk in FindRepoRoot.
const maxRepoDepth = 10

// ErrRepoNotFound is returned when no repository marker is found.
var ErrRepoNotFound = errors.New("shortcut repository not found (run: shortcut init)")

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// DefaultConfigPath returns the global TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "shortcut", "config.toml")
}

// RepoDir returns the metadata directory of a repository.
func RepoDir(root string) string {
	return filepath.Join(root, RepoDirName)
}

// RepoConfigPath returns the per-repository TOML config path.
func RepoConfigPath(root string) string {
	return filepath.Join(RepoDir(root), "config.toml")
}

// JSONProgressPath returns the JSON progress file of a repository.
func JSONProgressPath(root string) string {
	return filepath.Join(RepoDir(root), "learning-progress.json")
}

// SQLiteProgressPath returns the SQLite progress database of a repository.
func SQLiteProgressPath(root string) string {
	return filepath.Join(RepoDir(root), "learning-progress.db")
}

// FindRepoRoot walks up from start looking for the repository marker.
func FindRepoRoot(start string) (string, error) {
	current, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for i := 0; i < maxRepoDepth; i++ {
		info, err := os.Stat(RepoDir(current))
		if err == nil && info.IsDir() {
			return current, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return "", ErrRepoNotFound
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || (len(path) > 1 && path[:2] == "~/") {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
