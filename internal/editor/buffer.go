package editor

// LineBuffer is the line currently being composed: a rune slice and a cursor
// index i with 0 <= i <= Len(). Every index argument is clamped, never
// rejected. LineBuffer does not render; callers redraw after mutating it.
type LineBuffer struct {
	runes    []rune
	cursor   int
	typeover bool
}

// NewLineBuffer returns an empty buffer in insert mode.
func NewLineBuffer() *LineBuffer {
	return &LineBuffer{}
}

func (b *LineBuffer) clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i > len(b.runes) {
		return len(b.runes)
	}
	return i
}

// InsertAt inserts text at index i. The cursor shifts right when the
// insertion happens at or before it.
func (b *LineBuffer) InsertAt(i int, text string) {
	if text == "" {
		return
	}
	i = b.clamp(i)
	ins := []rune(text)
	out := make([]rune, 0, len(b.runes)+len(ins))
	out = append(out, b.runes[:i]...)
	out = append(out, ins...)
	out = append(out, b.runes[i:]...)
	b.runes = out
	if i <= b.cursor {
		b.cursor += len(ins)
	}
}

// Insert types text at the cursor. In typeover mode each rune replaces the
// one under the cursor while there is one.
func (b *LineBuffer) Insert(text string) {
	if !b.typeover {
		b.InsertAt(b.cursor, text)
		return
	}
	for _, r := range text {
		if b.cursor < len(b.runes) {
			b.runes[b.cursor] = r
			b.cursor++
			continue
		}
		b.runes = append(b.runes, r)
		b.cursor = len(b.runes)
	}
}

// DeleteRange removes runes in [i, j). Reversed bounds are swapped. The cursor
// keeps pointing at the same character where possible.
func (b *LineBuffer) DeleteRange(i, j int) {
	i, j = b.clamp(i), b.clamp(j)
	if i > j {
		i, j = j, i
	}
	if i == j {
		return
	}
	b.runes = append(b.runes[:i], b.runes[j:]...)
	switch {
	case b.cursor >= j:
		b.cursor -= j - i
	case b.cursor > i:
		b.cursor = i
	}
}

// MoveCursor moves the cursor by delta, clamped to [0, Len()]. It returns the
// distance actually moved.
func (b *LineBuffer) MoveCursor(delta int) int {
	old := b.cursor
	b.cursor = b.clamp(b.cursor + delta)
	return b.cursor - old
}

// SetCursor places the cursor at i, clamped.
func (b *LineBuffer) SetCursor(i int) {
	b.cursor = b.clamp(i)
}

// Set replaces the contents and puts the cursor at the end.
func (b *LineBuffer) Set(text string) {
	b.runes = []rune(text)
	b.cursor = len(b.runes)
}

// Clear empties the buffer.
func (b *LineBuffer) Clear() {
	b.runes = b.runes[:0]
	b.cursor = 0
}

func (b *LineBuffer) Contents() string { return string(b.runes) }
func (b *LineBuffer) Cursor() int      { return b.cursor }
func (b *LineBuffer) Len() int         { return len(b.runes) }

// Head returns the text before the cursor.
func (b *LineBuffer) Head() string { return string(b.runes[:b.cursor]) }

// Tail returns the text from the cursor to the end.
func (b *LineBuffer) Tail() string { return string(b.runes[b.cursor:]) }

// Typeover reports whether typed text overwrites instead of inserting.
func (b *LineBuffer) Typeover() bool { return b.typeover }

// SetTypeover switches between insert and overwrite mode.
func (b *LineBuffer) SetTypeover(on bool) { b.typeover = on }
