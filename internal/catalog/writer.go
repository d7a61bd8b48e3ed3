package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/shortcut/internal/model"
)

// Write errors.
var (
	ErrInvalidCell = errors.New("table cell must not be empty or contain '|' or line breaks")
	ErrInvalidApp  = errors.New("invalid app name")
)

// FilePath returns where a new shortcut file for app lives under root.
func FilePath(root, app string) string {
	return filepath.Join(root, app+FileSuffix)
}

// ValidateApp checks that app can name a shortcut file and a progress key.
func ValidateApp(app string) error {
	if strings.ContainsAny(app, `/\`) || strings.TrimSpace(app) != app {
		return fmt.Errorf("%w: %q", ErrInvalidApp, app)
	}
	if _, ok := AppName(app + FileSuffix); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidApp, app)
	}
	return nil
}

// Append adds s as a table row to the shortcut file at path. The row joins
// the table that ends the file; when the file does not end in a table, a new
// table is started. A missing file is created with a title, a section named
// after the category and the table header.
func Append(path string, s model.Shortcut) error {
	for _, cell := range []string{s.Notation, s.Description, s.Category} {
		if strings.TrimSpace(cell) == "" || strings.ContainsAny(cell, "|\r\n") {
			return fmt.Errorf("%w: %q", ErrInvalidCell, cell)
		}
	}
	var b strings.Builder
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		content := strings.TrimRight(string(existing), " \t\r\n")
		inTable := endsInTable(content)
		if content != "" {
			b.WriteString(content)
			b.WriteByte('\n')
			if !inTable {
				b.WriteByte('\n')
			}
		}
		if !inTable {
			b.WriteString(tableHeader)
		}
	case os.IsNotExist(err):
		fmt.Fprintf(&b, "# %s Shortcuts\n\n## %s\n\n", title(s.App), strings.TrimSpace(s.Category))
		b.WriteString(tableHeader)
	default:
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	fmt.Fprintf(&b, "| %s | %s | %s |\n", s.Notation, strings.TrimSpace(s.Description), strings.TrimSpace(s.Category))

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

const tableHeader = "| Shortcut | Description | Category |\n|----------|-------------|----------|\n"

func endsInTable(content string) bool {
	i := strings.LastIndexByte(content, '\n')
	last := strings.TrimSpace(content[i+1:])
	return strings.HasPrefix(last, "|")
}

func title(app string) string {
	if app == "" {
		return app
	}
	return strings.ToUpper(app[:1]) + strings.ToLower(app[1:])
}
