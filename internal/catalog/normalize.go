// Package catalog loads shortcut definitions from markdown tables.
package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var modifierNames = map[string]string{
	"command": "Cmd",
	"cmd":     "Cmd",
	"control": "Ctrl",
	"ctrl":    "Ctrl",
	"option":  "Alt",
	"alt":     "Alt",
	"shift":   "Shift",
}

// Normalize rewrites a shortcut notation into the canonical form,
// e.g. "command+shift+p" becomes "Cmd+Shift+P".
func Normalize(raw string) string {
	parts := strings.Split(raw, "+")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if name, ok := modifierNames[strings.ToLower(part)]; ok {
			parts[i] = name
			continue
		}
		parts[i] = capitalize(part)
	}
	return strings.Join(parts, "+")
}

func capitalize(key string) string {
	if utf8.RuneCountInString(key) == 1 {
		return strings.ToUpper(key)
	}
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError {
		return key
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(key[size:])
}
