package history

import (
	"strings"
	"unicode/utf8"
)

// Target is the line buffer a successful search rewrites.
type Target interface {
	Set(text string)
	SetCursor(i int)
}

// Search is one reverse incremental search. It only exists while the search
// is active: callers drop the value when the search ends.
type Search struct {
	store  *Store
	query  []rune
	failed bool
	// matchPosition is one past the index of the last match; the next scan
	// covers entries strictly before it.
	matchPosition int
	// matched is set once a scan succeeded since the query last changed.
	matched bool
}

// NewSearch starts a search over store with an empty query.
func NewSearch(store *Store) *Search {
	return &Search{store: store, matchPosition: store.Len()}
}

// Query returns the current query text.
func (s *Search) Query() string { return string(s.query) }

// Failed reports whether the last scan found nothing.
func (s *Search) Failed() bool { return s.failed }

// MatchPosition returns one past the index of the current match.
func (s *Search) MatchPosition() int { return s.matchPosition }

// Type extends the query with r and searches again from the newest entry.
func (s *Search) Type(r rune, buf Target) bool {
	s.query = append(s.query, r)
	s.failed = false
	s.matched = false
	s.matchPosition = s.store.Len()
	return s.scan(s.matchPosition, buf)
}

// Backspace drops the last query rune and searches again from the newest
// entry. An emptied query leaves buf alone. It returns false when the query
// was already empty, which ends the search.
func (s *Search) Backspace(buf Target) bool {
	if len(s.query) == 0 {
		return false
	}
	s.query = s.query[:len(s.query)-1]
	s.failed = false
	s.matched = false
	s.matchPosition = s.store.Len()
	if len(s.query) > 0 {
		s.scan(s.matchPosition, buf)
	}
	return true
}

// Older searches for the next older match, skipping the current one. With
// no match yet the scan starts at the newest entry.
func (s *Search) Older(buf Target) bool {
	if !s.matched {
		return s.scan(s.matchPosition, buf)
	}
	return s.scan(s.matchPosition-1, buf)
}

// scan walks entries[:limit] newest first. The first entry containing the
// query wins: buf gets the entry with the cursor on the start of the match.
// On a miss only the failed flag changes.
func (s *Search) scan(limit int, buf Target) bool {
	if limit > s.store.Len() {
		limit = s.store.Len()
	}
	q := string(s.query)
	for i := limit - 1; i >= 0; i-- {
		line := s.store.entries[i]
		idx := strings.Index(line, q)
		if idx < 0 {
			continue
		}
		s.matchPosition = i + 1
		s.matched = true
		s.failed = false
		buf.Set(line)
		buf.SetCursor(utf8.RuneCountInString(line[:idx]))
		return true
	}
	s.failed = true
	return false
}

// Status is the text of the search status line.
func (s *Search) Status() string {
	var sb strings.Builder
	if s.failed {
		sb.WriteString("failing-")
	}
	sb.WriteString("history-search: ")
	sb.WriteString(string(s.query))
	sb.WriteString("_")
	return sb.String()
}
