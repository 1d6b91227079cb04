// SPDX-License-Identifier: MIT
package index

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/skaphos/spacesync/internal/model"
)

var (
	entryStartPattern = regexp.MustCompile(`^\s*-\s*name:(?:\s+(.*))?$`)
	fieldPattern      = regexp.MustCompile(`^\s+([A-Za-z0-9_][A-Za-z0-9_-]*):(?:\s+(.*))?$`)
)

// parseLines reads a block with the line-oriented entry syntax: "- name:"
// opens an entry and every indented "key: value" line up to the next one
// belongs to it. The value is everything after the first ": ", so it may
// itself contain colons. Indented lines without a key (nested list items,
// continuations) are skipped.
func parseLines(block string) ([]model.IndexEntry, error) {
	var (
		entries []model.IndexEntry
		lines   []int
	)
	for i, raw := range strings.Split(block, "\n") {
		lineNo := i + 1
		line := strings.TrimRight(raw, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if m := entryStartPattern.FindStringSubmatch(line); m != nil {
			name, err := scalarValue(keyName, m[1], lineNo)
			if err != nil {
				return nil, err
			}
			entries = append(entries, model.IndexEntry{Name: name})
			lines = append(lines, lineNo)
			continue
		}

		indented := line[0] == ' ' || line[0] == '\t'
		if !indented {
			if strings.HasPrefix(trimmed, "-") {
				return nil, &FormatError{Reason: fmt.Sprintf("line %d: entry has no name", lineNo)}
			}
			return nil, &FormatError{Reason: fmt.Sprintf("line %d: not valid entry syntax: %q", lineNo, trimmed)}
		}
		m := fieldPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if len(entries) == 0 {
			return nil, &FormatError{Reason: fmt.Sprintf("line %d: entry has no name", lineNo)}
		}
		key := m[1]
		value := cleanValue(m[2])
		if isKnownKey(key) {
			v, err := scalarValue(key, m[2], lineNo)
			if err != nil {
				return nil, err
			}
			value = v
		}
		setField(&entries[len(entries)-1], key, value)
	}
	if err := checkNames(entries, lines); err != nil {
		return nil, err
	}
	return entries, nil
}

// scalarValue cleans the value of a known key and rejects collections.
func scalarValue(key, raw string, lineNo int) (string, error) {
	v := cleanValue(raw)
	if strings.HasPrefix(v, "[") || strings.HasPrefix(v, "{") {
		return "", &FormatError{Reason: fmt.Sprintf("line %d: value of %q must be a single value", lineNo, key)}
	}
	return v, nil
}

// cleanValue drops a trailing " # comment" and one pair of matching quotes.
func cleanValue(raw string) string {
	v := strings.TrimSpace(raw)
	if strings.HasPrefix(v, "#") {
		return ""
	}
	if i := strings.Index(v, " #"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		v = v[1 : len(v)-1]
	}
	return v
}
