// Package completion implements Tab completion for the shell: the identifier
// or selector expression left of the cursor is resolved against a Namespace
// and extended by the longest run shared by every candidate.
package completion

import (
	"sort"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"

	"gosh/internal/logging"
	"gosh/internal/types"
)

// Result is the outcome of one completion request.
type Result struct {
	// Term is the scanned run left of the cursor.
	Term string
	// Attribute is true when Term contains a dot.
	Attribute bool
	// Extension is the text to insert at the cursor.
	Extension string
	// Candidates are the deduplicated, sorted matches.
	Candidates []string
}

// Ambiguous reports whether the candidates should be listed to the user.
// A single match is never ambiguous.
func (r Result) Ambiguous() bool {
	return len(r.Candidates) > 1
}

// Completer resolves candidates through a Namespace.
type Completer struct {
	ns types.Namespace
}

// New returns a Completer backed by ns.
func New(ns types.Namespace) *Completer {
	return &Completer{ns: ns}
}

func isTermRune(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// FindTerm scans head backward while runes are alphanumeric, underscore or
// dot and returns the run, plus whether it contains a dot.
func FindTerm(head string) (term string, attribute bool) {
	runes := []rune(head)
	start := len(runes)
	for start > 0 && isTermRune(runes[start-1]) {
		start--
	}
	term = string(runes[start:])
	return term, strings.Contains(term, ".")
}

// Complete computes the completion for the text before the cursor. ok is
// false when there is nothing to do: an empty term (the caller falls back to
// its default Tab action) or no candidates.
func (c *Completer) Complete(head string) (res Result, ok bool) {
	log := logging.Get(logging.CategoryCompletion)

	term, attr := FindTerm(head)
	if term == "" {
		return Result{}, false
	}

	var raw []string
	if attr {
		raw = c.ns.AttributeNames(term)
	} else {
		raw = c.ns.GlobalNames(term)
	}

	candidates := dedupe(term, raw)
	if len(candidates) == 0 {
		log.Debug("no candidates for %q", term)
		return Result{}, false
	}

	res = Result{
		Term:       term,
		Attribute:  attr,
		Extension:  CommonExtension(term, candidates),
		Candidates: candidates,
	}
	log.Debug("term=%q candidates=%d extension=%q", term, len(candidates), res.Extension)
	return res, true
}

// dedupe keeps candidates that start with term, without duplicates, sorted.
func dedupe(term string, raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, cand := range raw {
		if !strings.HasPrefix(cand, term) {
			continue
		}
		if _, dup := seen[cand]; dup {
			continue
		}
		seen[cand] = struct{}{}
		out = append(out, cand)
	}
	sort.Strings(out)
	return out
}

// CommonExtension strips term from every candidate and returns the longest
// leading run identical across all remainders.
func CommonExtension(term string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	rems := make([][]rune, len(candidates))
	for i, cand := range candidates {
		rems[i] = []rune(strings.TrimPrefix(cand, term))
	}

	var ext []rune
	for pos := 0; ; pos++ {
		if pos >= len(rems[0]) {
			return string(ext)
		}
		r := rems[0][pos]
		for _, rem := range rems[1:] {
			if pos >= len(rem) || rem[pos] != r {
				return string(ext)
			}
		}
		ext = append(ext, r)
	}
}

// Layout arranges candidates into rows of equal-width columns that fit in
// width terminal cells.
func Layout(candidates []string, width int) []string {
	if len(candidates) == 0 {
		return nil
	}
	colWidth := 0
	for _, cand := range candidates {
		if w := runewidth.StringWidth(cand); w > colWidth {
			colWidth = w
		}
	}
	colWidth += 2

	cols := width / colWidth
	if cols < 1 {
		cols = 1
	}

	var rows []string
	for i := 0; i < len(candidates); i += cols {
		end := i + cols
		if end > len(candidates) {
			end = len(candidates)
		}
		var sb strings.Builder
		for j, cand := range candidates[i:end] {
			if j == end-i-1 {
				sb.WriteString(cand)
				continue
			}
			sb.WriteString(runewidth.FillRight(cand, colWidth))
		}
		rows = append(rows, sb.String())
	}
	return rows
}
