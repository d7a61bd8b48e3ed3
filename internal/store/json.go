package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/verte-zerg/shortcut/internal/model"
)

// JSONStore keeps progress in a single JSON object keyed by "app:shortcut".
// Save keeps the key order of the last loaded file and appends new keys in
// sorted order. A loaded file that was pure ASCII is written back with
// non-ASCII characters escaped.
type JSONStore struct {
	path  string
	order []string
	ascii bool
}

// NewJSONStore returns a store backed by the file at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file.
func (s *JSONStore) Path() string {
	return s.path
}

// Close implements ProgressStore.
func (s *JSONStore) Close() error {
	return nil
}

// Load reads the progress file. A missing file is an empty mapping.
func (s *JSONStore) Load(_ context.Context) (model.Progress, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Progress{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	names, raw, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, s.path, err)
	}
	progress := make(model.Progress, len(raw))
	for _, rawKey := range names {
		key, err := model.ParseKey(rawKey)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, s.path, err)
		}
		entry, err := decodeEntry(raw[rawKey])
		if err != nil {
			return nil, corruptEntry(s.path, rawKey, err)
		}
		progress[key] = entry
	}
	s.order = names
	s.ascii = isASCII(data)
	return progress, nil
}

// Save atomically replaces the progress file.
func (s *JSONStore) Save(_ context.Context, progress model.Progress) error {
	data, err := encodeProgress(progress, s.order)
	if err != nil {
		return err
	}
	if s.ascii {
		data = escapeNonASCII(data)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create progress dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "learning-progress-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp progress file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write progress: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close progress: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	s.order = savedOrder(progress, s.order)
	return nil
}

func encodeProgress(progress model.Progress, order []string) ([]byte, error) {
	byString := make(map[string]model.Entry, len(progress))
	for key, entry := range progress {
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("refusing to save %q: %w", key.String(), err)
		}
		byString[key.String()] = entry
	}
	names := savedOrder(progress, order)

	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			compact.WriteByte(',')
		}
		rawName, err := marshalJSON(name)
		if err != nil {
			return nil, err
		}
		rawEntry, err := encodeEntry(byString[name])
		if err != nil {
			return nil, fmt.Errorf("failed to encode %q: %w", name, err)
		}
		compact.Write(rawName)
		compact.WriteByte(':')
		compact.Write(rawEntry)
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// savedOrder lists the keys of progress: those in order first, keeping that
// order, then the rest sorted.
func savedOrder(progress model.Progress, order []string) []string {
	names := make([]string, 0, len(progress))
	seen := make(map[string]struct{}, len(progress))
	for _, name := range order {
		key, err := model.ParseKey(name)
		if err != nil {
			continue
		}
		if _, ok := progress[key]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	var added []string
	for key := range progress {
		name := key.String()
		if _, ok := seen[name]; !ok {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	return append(names, added...)
}

// decodeObject decodes a JSON object into raw values and returns its keys in
// file order. A repeated key keeps its first position and its last value.
func decodeObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected a JSON object")
	}
	var names []string
	raw := map[string]json.RawMessage{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected an object key")
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, err
		}
		if _, dup := raw[name]; !dup {
			names = append(names, name)
		}
		raw[name] = value
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, nil, fmt.Errorf("unexpected data after the progress object")
	}
	return names, raw, nil
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// escapeNonASCII rewrites every non-ASCII rune as a lowercase \uXXXX escape,
// using surrogate pairs outside the basic plane. Non-ASCII bytes only occur
// inside JSON strings, so the result is equivalent JSON.
func escapeNonASCII(data []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		if r < utf8.RuneSelf {
			out.WriteRune(r)
			continue
		}
		if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
			fmt.Fprintf(&out, "\\u%04x\\u%04x", r1, r2)
			continue
		}
		fmt.Fprintf(&out, "\\u%04x", r)
	}
	return out.Bytes()
}
