package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/verte-zerg/shortcut/internal/model"
)

// FileSuffix is the name suffix of a shortcut file; the prefix is the app name.
const FileSuffix = "_shortcuts.md"

// Parse errors.
var (
	ErrNotShortcutFile = errors.New("not a shortcut file")
	ErrEmptyFile       = errors.New("shortcut file is empty")
	ErrNoShortcuts     = errors.New("shortcut file has no shortcuts")
)

var (
	separatorRow    = regexp.MustCompile(`^\|[\s\-|:]+\|$`)
	requiredColumns = []string{"Shortcut", "Description", "Category"}
)

// AppName extracts the app name from a shortcut file path.
func AppName(path string) (string, bool) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, FileSuffix) {
		return "", false
	}
	app := strings.TrimSuffix(name, FileSuffix)
	if app == "" || strings.Contains(app, ":") {
		return "", false
	}
	return app, true
}

// ParseFile parses one shortcut file.
func ParseFile(path string) ([]model.Shortcut, error) {
	app, ok := AppName(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotShortcutFile, filepath.Base(path))
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only shortcut file.
			_ = cerr
		}
	}()
	return Parse(file, app, filepath.Base(path))
}

// Parse reads markdown tables of shortcuts for app. The name is used in errors.
func Parse(r io.Reader, app, name string) ([]model.Shortcut, error) {
	var (
		shortcuts []model.Shortcut
		section   string
		inTable   bool
		blank     = true
		lineNum   int
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			blank = false
		}

		switch {
		case strings.HasPrefix(line, "##"):
			section = strings.TrimSpace(strings.TrimLeft(line, "#"))
			inTable = false
		case isHeader(line):
			if !hasRequiredColumns(line) {
				return nil, fmt.Errorf("%s:%d: table header must have columns %s", name, lineNum, strings.Join(requiredColumns, ", "))
			}
			inTable = true
		case inTable && separatorRow.MatchString(line):
			continue
		case inTable && strings.Contains(line, "|"):
			shortcut, ok, err := parseRow(line)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", name, lineNum, err)
			}
			if !ok {
				continue
			}
			shortcut.App = app
			shortcut.Section = section
			shortcut.Line = lineNum
			shortcuts = append(shortcuts, shortcut)
		case line == "":
			inTable = false
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if blank {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, name)
	}
	if len(shortcuts) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoShortcuts, name)
	}
	return shortcuts, nil
}

func isHeader(line string) bool {
	if !strings.HasPrefix(line, "|") {
		return false
	}
	first, _, _ := strings.Cut(strings.TrimPrefix(line, "|"), "|")
	return strings.TrimSpace(first) == "Shortcut"
}

func hasRequiredColumns(line string) bool {
	for _, col := range requiredColumns {
		if !strings.Contains(line, col) {
			return false
		}
	}
	return true
}

func parseRow(line string) (model.Shortcut, bool, error) {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) < 3 {
		return model.Shortcut{}, false, fmt.Errorf("row needs 3 columns (Shortcut, Description, Category), got %d", len(parts))
	}
	raw, description, category := parts[0], parts[1], parts[2]
	if raw == "" || description == "" || category == "" {
		return model.Shortcut{}, false, nil
	}
	return model.Shortcut{
		Notation:    Normalize(raw),
		Description: description,
		Category:    category,
	}, true, nil
}
