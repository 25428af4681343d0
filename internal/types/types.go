// Package types provides shared type definitions used across gosh packages.
// This package exists to break import cycles between editor, session and the
// capability adapters. Types in this package should be foundational data
// structures with no complex dependencies.
package types

import "fmt"

// =============================================================================
// KEY EVENTS
// =============================================================================

// KeyCode names a decoded key. Printable input uses KeyRune and control bytes
// that have no dedicated code use KeyControl; both carry the byte or rune in
// Key.Rune.
type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyControl
	KeyEnter
	KeyTab
	KeyBackspace
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
)

var keyNames = map[KeyCode]string{
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyBackspace: "backspace",
	KeyEscape:    "esc",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyInsert:    "insert",
	KeyDelete:    "delete",
}

// Key is a single discrete key event delivered by the terminal channel.
// Key is comparable so it can index binding tables.
type Key struct {
	Code KeyCode
	Rune rune
}

// Named returns the key for a named control token.
func Named(code KeyCode) Key {
	return Key{Code: code}
}

// Char returns the key for a printable rune.
func Char(r rune) Key {
	return Key{Code: KeyRune, Rune: r}
}

// Control returns the key for a raw control byte such as 0x01 (Ctrl-A).
func Control(b byte) Key {
	return Key{Code: KeyControl, Rune: rune(b)}
}

func (k Key) String() string {
	switch k.Code {
	case KeyRune:
		return string(k.Rune)
	case KeyControl:
		return fmt.Sprintf("ctrl+%c", k.Rune+'a'-1)
	}
	if name, ok := keyNames[k.Code]; ok {
		return name
	}
	return fmt.Sprintf("key(%d)", int(k.Code))
}

// =============================================================================
// EVALUATION RECORDS
// =============================================================================

// EvalStatus reports whether a submitted source fragment was complete.
type EvalStatus int

const (
	// EvalDone means the source was executed (successfully or not).
	EvalDone EvalStatus = iota
	// EvalNeedsMoreInput means the source is an incomplete statement and the
	// caller should keep buffering lines.
	EvalNeedsMoreInput
)

// EvalResult is the outcome of Evaluator.Evaluate.
type EvalResult struct {
	Status EvalStatus
	// Output is the textual form of the value produced by the last
	// expression, empty for statements.
	Output string
}

// Description is the fixed introspection record returned by
// Evaluator.Describe.
type Description struct {
	Name        string
	ClassName   string
	RuntimeType string
	Repr        string
	Callable    bool
	Doc         string
}
