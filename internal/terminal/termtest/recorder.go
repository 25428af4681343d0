// Package termtest provides a recording types.Terminal for tests.
package termtest

import (
	"fmt"
	"strings"
	"sync"
)

// Recorder implements types.Terminal. It records every primitive and keeps
// a minimal screen model (one rune per cell, unbounded rows) so tests can
// assert on what is visible rather than on the write stream.
type Recorder struct {
	mu    sync.Mutex
	ops   []string
	lines [][]rune
	row   int
	col   int

	savedRow, savedCol int
}

func (r *Recorder) record(op string) {
	r.ops = append(r.ops, op)
}

func (r *Recorder) ensure() {
	for len(r.lines) <= r.row {
		r.lines = append(r.lines, nil)
	}
}

func (r *Recorder) newline() {
	r.row++
	r.col = 0
	r.ensure()
}

func (r *Recorder) Write(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("write:" + text)
	r.ensure()
	for _, c := range text {
		if c == '\n' {
			r.newline()
			continue
		}
		line := r.lines[r.row]
		for len(line) < r.col {
			line = append(line, ' ')
		}
		if r.col < len(line) {
			line[r.col] = c
		} else {
			line = append(line, c)
		}
		r.lines[r.row] = line
		r.col++
	}
}

func (r *Recorder) CursorBackward(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(fmt.Sprintf("back:%d", n))
	r.col -= n
	if r.col < 0 {
		r.col = 0
	}
}

func (r *Recorder) CursorForward(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(fmt.Sprintf("fwd:%d", n))
	r.col += n
}

func (r *Recorder) EraseToLineEnd() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("eol")
	r.ensure()
	if r.col < len(r.lines[r.row]) {
		r.lines[r.row] = r.lines[r.row][:r.col]
	}
}

func (r *Recorder) EraseLine() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("erase")
	r.ensure()
	r.lines[r.row] = nil
}

func (r *Recorder) SaveCursor() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("save")
	r.savedRow, r.savedCol = r.row, r.col
}

func (r *Recorder) RestoreCursor() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("restore")
	r.row, r.col = r.savedRow, r.savedCol
}

func (r *Recorder) NextLine() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("nl")
	r.newline()
}

// Ops returns a copy of the recorded primitives.
func (r *Recorder) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.ops))
	copy(out, r.ops)
	return out
}

// Output returns the screen contents, rows joined with "\n".
func (r *Recorder) Output() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := make([]string, len(r.lines))
	for i, l := range r.lines {
		rows[i] = string(l)
	}
	return strings.Join(rows, "\n")
}

// Contains reports whether the screen contains s.
func (r *Recorder) Contains(s string) bool {
	return strings.Contains(r.Output(), s)
}

// Reset clears the screen and the recorded primitives.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
	r.lines = nil
	r.row, r.col = 0, 0
	r.savedRow, r.savedCol = 0, 0
}
