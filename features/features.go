// Package features implements tokenization of window.open feature strings
// and the legacy popup-intent heuristic.
package features

import (
	"strconv"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Table is an ordered name->value mapping of tokenized features. Names are
// lower-cased and alias-normalized. Overwriting a name keeps its original
// insertion position.
type Table struct {
	m *linkedhashmap.Map
}

// NewTable creates an empty feature table.
func NewTable() *Table {
	return &Table{m: linkedhashmap.New()}
}

// Set stores value under name, overwriting any prior value.
func (t *Table) Set(name, value string) {
	t.m.Put(name, value)
}

// Get returns the value for name and whether it is present.
func (t *Table) Get(name string) (string, bool) {
	v, ok := t.m.Get(name)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Remove deletes name from the table. No-op if absent.
func (t *Table) Remove(name string) {
	t.m.Remove(name)
}

// Empty reports whether the table has no entries.
func (t *Table) Empty() bool {
	return t.m.Empty()
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return t.m.Size()
}

// Keys returns the feature names in insertion order.
func (t *Table) Keys() []string {
	raw := t.m.Keys()
	keys := make([]string, len(raw))
	for i, k := range raw {
		keys[i] = k.(string)
	}
	return keys
}

// Each calls f for every entry in insertion order.
func (t *Table) Each(f func(name, value string)) {
	t.m.Each(func(key, value interface{}) {
		f(key.(string), value.(string))
	})
}

// isSeparator reports whether c is a feature separator: ASCII whitespace,
// '=', or ','.
func isSeparator(c byte) bool {
	switch c {
	case '\t', '\n', '\f', '\r', ' ', '=', ',':
		return true
	}
	return false
}

func isWhitespace(c byte) bool {
	switch c {
	case '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

// normalizeName applies the legacy feature-name aliases.
func normalizeName(name string) string {
	switch name {
	case "screenx":
		return "left"
	case "screeny":
		return "top"
	case "innerwidth":
		return "width"
	case "innerheight":
		return "height"
	}
	return name
}

// Tokenize parses a window.open feature string into a Table. All inputs
// are accepted; malformed fragments degrade to empty or partial entries.
func Tokenize(features string) *Table {
	table := NewTable()
	i := 0
	n := len(features)

	for i < n {
		// Skip leading separators before the name.
		for i < n && isSeparator(features[i]) {
			i++
		}

		// Collect the name: a maximal run of non-separators, lower-cased.
		start := i
		for i < n && !isSeparator(features[i]) {
			i++
		}
		name := normalizeName(strings.ToLower(features[start:i]))

		// Skip whitespace between the name and a potential '='.
		for i < n && isWhitespace(features[i]) {
			i++
		}

		// Skip any run of whitespace and '=' to reach the value; a bare
		// ',' ends the entry with an empty value.
		for i < n && (isWhitespace(features[i]) || features[i] == '=') {
			i++
		}
		start = i
		for i < n && !isSeparator(features[i]) {
			i++
		}
		value := strings.ToLower(features[start:i])

		if name != "" {
			table.Set(name, value)
		}
	}

	return table
}

// ParseBool parses a feature value as a boolean feature: the empty string,
// "yes", "true", and any non-zero integer are true; everything else is
// false.
func ParseBool(value string) bool {
	if value == "" || value == "yes" || value == "true" {
		return true
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return false
	}
	return parsed != 0
}

// isSet returns the parsed value of name if present, else the default.
func isSet(t *Table, name string, def bool) bool {
	if v, ok := t.Get(name); ok {
		return ParseBool(v)
	}
	return def
}

// ClassifyPopupIntent decides whether a tokenized feature table requests a
// popup window. The chain order and the asymmetric defaults encode the
// legacy heuristic and must not be reordered.
func ClassifyPopupIntent(t *Table) bool {
	if t.Empty() {
		return false
	}

	if popup, ok := t.Get("popup"); ok {
		return ParseBool(popup)
	}

	location := isSet(t, "location", false)
	toolbar := isSet(t, "toolbar", false)
	if !location && !toolbar {
		return true
	}

	if !isSet(t, "menubar", false) {
		return true
	}
	if !isSet(t, "resizable", true) {
		return true
	}
	if !isSet(t, "scrollbars", false) {
		return true
	}
	if !isSet(t, "status", false) {
		return true
	}

	return false
}
