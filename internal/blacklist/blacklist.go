// Package blacklist maintains the user-curated album exclusion list.
//
// The list removes albums from the report regardless of match outcome.
// Comparison is exact on trimmed, case-folded (artist, title) pairs: entries
// are user-curated and expected to match the listening history verbatim. A
// missing file is an empty list, not an error.
package blacklist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"earmark/internal/scrobbles"
)

// Entry is one excluded album.
type Entry struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
	Reason string `json:"reason,omitempty"`
}

type pairKey struct {
	artist string
	title  string
}

// List is the loaded exclusion list.
type List struct {
	entries []Entry
	index   map[pairKey]struct{}
}

type fileShape struct {
	Entries []Entry `json:"blacklisted_albums"`
}

// Load reads the blacklist at path. A missing or empty file yields an empty
// list; malformed JSON is an error.
func Load(path string) (*List, error) {
	list := &List{index: make(map[pairKey]struct{})}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return list, nil
		}
		return nil, fmt.Errorf("read blacklist: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return list, nil
	}

	var shape fileShape
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("parse blacklist %s: %w", path, err)
	}

	for _, entry := range shape.Entries {
		list.add(entry)
	}
	return list, nil
}

// Save writes the list to path, creating parent directories as needed. The
// write goes through a temp file and rename so a crash cannot truncate the
// existing list.
func (l *List) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create blacklist directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(fileShape{Entries: l.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode blacklist: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write blacklist: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace blacklist: %w", err)
	}
	return nil
}

// Contains reports whether the (artist, title) pair is excluded.
func (l *List) Contains(artist, title string) bool {
	if l == nil || len(l.index) == 0 {
		return false
	}
	_, ok := l.index[keyFor(artist, title)]
	return ok
}

// Filter returns the listening records not present in the list, preserving
// input order, plus the number of records excluded.
func (l *List) Filter(records []scrobbles.Record) ([]scrobbles.Record, int) {
	if l == nil || len(l.index) == 0 {
		return records, 0
	}
	kept := make([]scrobbles.Record, 0, len(records))
	excluded := 0
	for _, record := range records {
		if l.Contains(record.Artist, record.Title) {
			excluded++
			continue
		}
		kept = append(kept, record)
	}
	return kept, excluded
}

// Add registers a new entry. It returns false when an equal pair is already
// present.
func (l *List) Add(entry Entry) bool {
	entry.Artist = strings.TrimSpace(entry.Artist)
	entry.Title = strings.TrimSpace(entry.Title)
	entry.Reason = strings.TrimSpace(entry.Reason)
	if entry.Artist == "" || entry.Title == "" {
		return false
	}
	if _, ok := l.index[keyFor(entry.Artist, entry.Title)]; ok {
		return false
	}
	l.add(entry)
	return true
}

// Remove drops the entry matching the pair. It returns true when an entry
// was removed.
func (l *List) Remove(artist, title string) bool {
	key := keyFor(artist, title)
	if _, ok := l.index[key]; !ok {
		return false
	}
	delete(l.index, key)
	for i, entry := range l.entries {
		if keyFor(entry.Artist, entry.Title) == key {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			break
		}
	}
	return true
}

// Entries returns a copy of the list contents in load order.
func (l *List) Entries() []Entry {
	if l == nil {
		return nil
	}
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

func (l *List) add(entry Entry) {
	key := keyFor(entry.Artist, entry.Title)
	if _, ok := l.index[key]; ok {
		return
	}
	l.index[key] = struct{}{}
	l.entries = append(l.entries, entry)
}

func keyFor(artist, title string) pairKey {
	return pairKey{
		artist: strings.ToLower(strings.TrimSpace(artist)),
		title:  strings.ToLower(strings.TrimSpace(title)),
	}
}
