// Package history holds the shell's submitted lines and the reverse
// incremental search over them.
//
// The history file is plain text, one entry per line, no escaping. An entry
// that contains a newline (a multi-line submission) is written as several
// physical lines and comes back as several entries on the next load; see
// DESIGN.md for why this is kept.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gosh/internal/logging"
)

// DefaultMaxEntries is how many of the most recent entries Persist keeps.
const DefaultMaxEntries = 2500

// Store is an append-only, chronologically ordered list of submitted lines
// with a navigation position in [0, Len()]. Position == Len() means "not
// navigating" (the line being edited is newer than every entry).
type Store struct {
	entries  []string
	position int
	// draft is the line that was being edited when navigation started.
	draft string
}

// NewStore returns a store holding entries, positioned after the newest.
func NewStore(entries ...string) *Store {
	s := &Store{}
	for _, e := range entries {
		s.Append(e)
	}
	s.position = len(s.entries)
	return s
}

// Append records line. Lines that are empty after trimming are ignored.
// It reports whether the line was stored.
func (s *Store) Append(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	s.entries = append(s.entries, line)
	return true
}

// Load replaces the store's contents with the entries of the file at path.
// It is best-effort: on any read failure the store is left empty and the
// failure is only logged.
func (s *Store) Load(path string) {
	s.entries = nil
	s.position = 0
	s.draft = ""

	data, err := os.ReadFile(path)
	if err != nil {
		logging.Get(logging.CategoryHistory).Debug("history load skipped: %v", err)
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		s.entries = append(s.entries, line)
	}
	s.position = len(s.entries)
	logging.Get(logging.CategoryHistory).Debug("loaded %d history entries from %s", len(s.entries), path)
}

// Persist writes at most the last limit entries to path, newline separated.
// Failures are swallowed; use PersistErr to observe them.
func (s *Store) Persist(path string, limit int) {
	if err := s.PersistErr(path, limit); err != nil {
		logging.Get(logging.CategoryHistory).Debug("history persist dropped: %v", err)
	}
}

// PersistErr is Persist that reports the failure. A limit <= 0 selects
// DefaultMaxEntries.
func (s *Store) PersistErr(path string, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxEntries
	}
	entries := s.entries
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// EntryAt returns the entry at index, or false when index is out of range.
func (s *Store) EntryAt(index int) (string, bool) {
	if index < 0 || index >= len(s.entries) {
		return "", false
	}
	return s.entries[index], true
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns a copy of all entries, oldest first.
func (s *Store) Entries() []string {
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// Position returns the navigation position.
func (s *Store) Position() int {
	return s.position
}

// SetPosition moves the navigation position, clamped to [0, Len()].
func (s *Store) SetPosition(p int) {
	if p < 0 {
		p = 0
	}
	if p > len(s.entries) {
		p = len(s.entries)
	}
	s.position = p
}

// ResetPosition moves the navigation position back to "most recent" and
// forgets the stashed draft.
func (s *Store) ResetPosition() {
	s.position = len(s.entries)
	s.draft = ""
}

// Previous steps one entry back. current is the line being edited; it is
// stashed when navigation starts so Next can bring it back.
func (s *Store) Previous(current string) (string, bool) {
	if s.position == len(s.entries) {
		s.draft = current
	}
	if s.position == 0 {
		return "", false
	}
	s.position--
	return s.entries[s.position], true
}

// Next steps one entry forward. Stepping past the newest entry returns the
// stashed draft and ends navigation.
func (s *Store) Next() (string, bool) {
	if s.position >= len(s.entries) {
		return "", false
	}
	if s.position < len(s.entries)-1 {
		s.position++
		return s.entries[s.position], true
	}
	draft := s.draft
	s.ResetPosition()
	return draft, true
}
