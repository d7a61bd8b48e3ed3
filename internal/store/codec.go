package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/verte-zerg/shortcut/internal/model"
)

// Timestamps are naive local ISO-8601, with six fractional digits only when
// the time has a sub-second part. Times parsed with an explicit offset keep it.
const (
	naiveLayout      = "2006-01-02T15:04:05"
	naiveMicroLayout = "2006-01-02T15:04:05.000000"
	offsetSuffix     = "-07:00"
	dateLayout       = "2006-01-02"
)

// Persisted field names.
const (
	fieldBox            = "box"
	fieldLastReviewed   = "lastReviewed"
	fieldCorrectCount   = "correctCount"
	fieldIncorrectCount = "incorrectCount"
	fieldAddedDate      = "addedDate"
)

// FormatTimestamp renders t in the persisted form. The zero time renders as "".
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.Truncate(time.Microsecond)
	layout := naiveLayout
	if t.Nanosecond() != 0 {
		layout = naiveMicroLayout
	}
	if t.Location() != time.Local {
		layout += offsetSuffix
	}
	return t.Format(layout)
}

// ParseTimestamp parses a persisted timestamp. The empty string is the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		_, offset := t.Zone()
		return t.In(time.FixedZone("", offset)), nil
	}
	if t, err := time.ParseInLocation(naiveLayout, s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func encodeEntry(e model.Entry) ([]byte, error) {
	fields := []struct {
		name  string
		value any
		omit  bool
	}{
		{fieldBox, e.Box, false},
		{fieldLastReviewed, FormatTimestamp(e.LastReviewed), e.LastReviewed.IsZero()},
		{fieldCorrectCount, e.CorrectCount, false},
		{fieldIncorrectCount, e.IncorrectCount, false},
		{fieldAddedDate, FormatTimestamp(e.AddedDate), e.AddedDate.IsZero()},
	}

	var b bytes.Buffer
	b.WriteByte('{')
	first := true
	writeField := func(name string, raw []byte) {
		if !first {
			b.WriteByte(',')
		}
		first = false
		key, _ := marshalJSON(name)
		b.Write(key)
		b.WriteByte(':')
		b.Write(raw)
	}
	for _, f := range fields {
		if f.omit {
			continue
		}
		raw, err := marshalJSON(f.value)
		if err != nil {
			return nil, err
		}
		writeField(f.name, raw)
	}
	for _, name := range sortedExtra(e.Extra) {
		if knownField(name) {
			continue
		}
		if !json.Valid(e.Extra[name]) {
			return nil, fmt.Errorf("extra field %q is not valid JSON", name)
		}
		writeField(name, e.Extra[name])
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func decodeEntry(raw []byte) (model.Entry, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.Entry{}, err
	}
	entry := model.Entry{Box: model.MinBox}
	for name, value := range fields {
		if string(value) == "null" {
			continue
		}
		var err error
		switch name {
		case fieldBox:
			err = json.Unmarshal(value, &entry.Box)
		case fieldCorrectCount:
			err = json.Unmarshal(value, &entry.CorrectCount)
		case fieldIncorrectCount:
			err = json.Unmarshal(value, &entry.IncorrectCount)
		case fieldLastReviewed:
			entry.LastReviewed, err = decodeTimestamp(value)
		case fieldAddedDate:
			entry.AddedDate, err = decodeTimestamp(value)
		default:
			if entry.Extra == nil {
				entry.Extra = map[string]json.RawMessage{}
			}
			entry.Extra[name] = append(json.RawMessage(nil), value...)
		}
		if err != nil {
			return model.Entry{}, fmt.Errorf("field %q: %w", name, err)
		}
	}
	if err := entry.Validate(); err != nil {
		return model.Entry{}, err
	}
	return entry, nil
}

// marshalJSON encodes v without HTML escaping so notations like "Cmd+<"
// are written as typed.
func marshalJSON(v any) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(b.Bytes(), []byte("\n")), nil
}

func decodeTimestamp(raw json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, err
	}
	return ParseTimestamp(s)
}

func encodeExtra(extra map[string]json.RawMessage) (string, error) {
	if len(extra) == 0 {
		return "", nil
	}
	raw, err := json.Marshal(extra)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeExtra(s string) (map[string]json.RawMessage, error) {
	if s == "" {
		return nil, nil
	}
	var extra map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &extra); err != nil {
		return nil, err
	}
	return extra, nil
}

func knownField(name string) bool {
	switch name {
	case fieldBox, fieldLastReviewed, fieldCorrectCount, fieldIncorrectCount, fieldAddedDate:
		return true
	}
	return false
}

func sortedExtra(extra map[string]json.RawMessage) []string {
	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
