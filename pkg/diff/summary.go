package diff

import (
	"encoding/json"
	"fmt"
)

// Summarize renders the changeset as an ordered list of human-readable
// lines, one per leaf change, keys sorted lexicographically and nested
// changes reported with dotted paths.
func Summarize(cs Changeset) []string {
	var lines []string
	summarize(cs, "", &lines)
	return lines
}

func summarize(cs Changeset, prefix string, lines *[]string) {
	for _, key := range cs.sortedKeys() {
		entry := cs[key]
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch entry.Op {
		case OpAdded:
			*lines = append(*lines, fmt.Sprintf("%s: added %s", path, formatValue(entry.New)))
		case OpRemoved:
			*lines = append(*lines, fmt.Sprintf("%s: removed (was %s)", path, formatValue(entry.Old)))
		case OpChanged:
			*lines = append(*lines, fmt.Sprintf("%s: %s -> %s", path, formatValue(entry.Old), formatValue(entry.New)))
		case OpModified:
			summarize(entry.Nested, path, lines)
		}
	}
}

// Significant reports whether the changeset still contains changes after
// filtering out the given top-level keys. Volatile fields such as update
// timestamps are the usual candidates.
func Significant(cs Changeset, ignoreKeys ...string) bool {
	ignored := make(map[string]bool, len(ignoreKeys))
	for _, k := range ignoreKeys {
		ignored[k] = true
	}
	for key := range cs {
		if !ignored[key] {
			return true
		}
	}
	return false
}

// Document converts the changeset into its serialization-shaped form for
// persistence alongside a committed reservation.
func (cs Changeset) Document() Document {
	raw, err := json.Marshal(cs)
	if err != nil {
		return Document{}
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}
	}
	return doc
}

// ParseChangeset rehydrates a changeset from its serialization-shaped form.
func ParseChangeset(doc Document) (Changeset, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding changeset document: %w", err)
	}
	var cs Changeset
	if err := json.Unmarshal(raw, &cs); err != nil {
		return nil, fmt.Errorf("decoding changeset: %w", err)
	}
	return cs, nil
}

func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	switch t := v.(type) {
	case string:
		return fmt.Sprintf("%q", t)
	case map[string]any, []any:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(raw)
	default:
		return fmt.Sprintf("%v", t)
	}
}
