package editor

import "gosh/internal/types"

// Action names what a key does to the line being edited.
type Action string

const (
	ActionInsert       Action = "insert"
	ActionHome         Action = "move-home"
	ActionEnd          Action = "move-end"
	ActionSearch       Action = "activate-search"
	ActionToggleAppend Action = "toggle-history-append"
	ActionEscape       Action = "escape"
	ActionInterrupt    Action = "interrupt"
	ActionQuit         Action = "quit"
	ActionSubmit       Action = "submit"
	ActionBackspace    Action = "backspace"
	ActionDelete       Action = "delete-forward"
	ActionComplete     Action = "complete"
	ActionToggleInsert Action = "toggle-typeover"
	ActionUp           Action = "navigate-up"
	ActionDown         Action = "navigate-down"
	ActionLeft         Action = "navigate-left"
	ActionRight        Action = "navigate-right"
	ActionNone         Action = ""
)

// KeyTable maps decoded keys to actions. Printable runes are not in the
// table; they fall through to ActionInsert.
type KeyTable map[types.Key]Action

// DefaultKeyTable returns the shell's key bindings.
func DefaultKeyTable() KeyTable {
	return KeyTable{
		types.Control(0x01):             ActionHome,
		types.Named(types.KeyHome):      ActionHome,
		types.Control(0x05):             ActionEnd,
		types.Named(types.KeyEnd):       ActionEnd,
		types.Control(0x12):             ActionSearch,
		types.Control(0x11):             ActionToggleAppend,
		types.Named(types.KeyEscape):    ActionEscape,
		types.Control(0x03):             ActionInterrupt,
		types.Control(0x04):             ActionQuit,
		types.Named(types.KeyEnter):     ActionSubmit,
		types.Named(types.KeyBackspace): ActionBackspace,
		types.Named(types.KeyDelete):    ActionDelete,
		types.Named(types.KeyTab):       ActionComplete,
		types.Named(types.KeyInsert):    ActionToggleInsert,
		types.Named(types.KeyUp):        ActionUp,
		types.Named(types.KeyDown):      ActionDown,
		types.Named(types.KeyLeft):      ActionLeft,
		types.Named(types.KeyRight):     ActionRight,
	}
}

// Lookup returns the action bound to k.
func (t KeyTable) Lookup(k types.Key) Action {
	if a, ok := t[k]; ok {
		return a
	}
	if k.Code == types.KeyRune {
		return ActionInsert
	}
	return ActionNone
}
