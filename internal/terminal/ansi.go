// Package terminal implements the shell's terminal channel: ANSI output
// primitives, key decoding for raw input, and raw-mode management.
package terminal

import (
	"fmt"
	"io"
)

// ANSI implements types.Terminal by writing VT100 control sequences to w.
// Write errors are dropped: a broken output stream surfaces as a read error
// on the input side, which ends the session.
type ANSI struct {
	w io.Writer
}

// NewANSI returns a terminal writing to w.
func NewANSI(w io.Writer) *ANSI {
	return &ANSI{w: w}
}

func (a *ANSI) Write(text string) {
	_, _ = io.WriteString(a.w, text)
}

func (a *ANSI) CursorBackward(n int) {
	if n > 0 {
		fmt.Fprintf(a.w, "\x1b[%dD", n)
	}
}

func (a *ANSI) CursorForward(n int) {
	if n > 0 {
		fmt.Fprintf(a.w, "\x1b[%dC", n)
	}
}

func (a *ANSI) EraseToLineEnd() { a.Write("\x1b[K") }
func (a *ANSI) EraseLine()      { a.Write("\x1b[2K") }
func (a *ANSI) SaveCursor()     { a.Write("\x1b7") }
func (a *ANSI) RestoreCursor()  { a.Write("\x1b8") }

// NextLine moves to column 0 of the next line. Raw mode disables output
// post-processing, so the carriage return is explicit.
func (a *ANSI) NextLine() { a.Write("\r\n") }

// CRLFWriter translates "\n" to "\r\n" for program output written while the
// terminal is in raw mode.
type CRLFWriter struct {
	w io.Writer
}

// NewCRLFWriter wraps w.
func NewCRLFWriter(w io.Writer) *CRLFWriter {
	return &CRLFWriter{w: w}
}

func (c *CRLFWriter) Write(p []byte) (int, error) {
	start := 0
	for i, b := range p {
		if b != '\n' || (i > 0 && p[i-1] == '\r') {
			continue
		}
		if _, err := c.w.Write(p[start:i]); err != nil {
			return start, err
		}
		if _, err := c.w.Write([]byte("\r\n")); err != nil {
			return i, err
		}
		start = i + 1
	}
	if start < len(p) {
		if _, err := c.w.Write(p[start:]); err != nil {
			return start, err
		}
	}
	return len(p), nil
}
