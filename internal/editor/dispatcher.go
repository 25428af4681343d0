// Package editor is the shell's line editor: a LineBuffer plus a Dispatcher
// that routes decoded keys to editing actions, history navigation, reverse
// incremental search and completion, and renders the result through a
// types.Terminal.
package editor

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"gosh/internal/completion"
	"gosh/internal/history"
	"gosh/internal/logging"
	"gosh/internal/types"
)

// Prompt pairs selected by the history-append toggle.
const (
	PromptAppend       = "><> "
	PromptNoAppend     = "--> "
	PromptContinuation = "... "

	DefaultTabWidth = 4
	DefaultWidth    = 80
)

// Outcome tells the session what a key did beyond editing.
type Outcome int

const (
	// OutcomeNone means the key was handled entirely by the editor.
	OutcomeNone Outcome = iota
	// OutcomeSubmit means a line was submitted for evaluation.
	OutcomeSubmit
	// OutcomeInterrupt means the user pressed Ctrl-C; pending input is void.
	OutcomeInterrupt
	// OutcomeQuit ends the session.
	OutcomeQuit
)

// Options configures a Dispatcher.
type Options struct {
	Terminal  types.Terminal
	History   *history.Store
	Completer *completion.Completer
	Keys      KeyTable
	// AppendHistory is the initial state of the history-append toggle.
	AppendHistory bool
	TabWidth      int
	// Width reports the terminal width in cells. Nil means DefaultWidth.
	Width func() int
}

// Dispatcher owns the editing state of one session. It is not safe for
// concurrent use; the session's event loop is its only caller.
type Dispatcher struct {
	term     types.Terminal
	buf      *LineBuffer
	hist     *history.Store
	search   *history.Search
	comp     *completion.Completer
	keys     KeyTable
	tabWidth int
	width    func() int

	appendHistory bool
	continuation  bool
	// shown is the display column of the cursor relative to the end of the
	// prompt, as last rendered.
	shown int

	log *logging.Logger
}

// New returns a Dispatcher with an empty line.
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		term:          opts.Terminal,
		buf:           NewLineBuffer(),
		hist:          opts.History,
		comp:          opts.Completer,
		keys:          opts.Keys,
		tabWidth:      opts.TabWidth,
		width:         opts.Width,
		appendHistory: opts.AppendHistory,
		log:           logging.Get(logging.CategoryEditor),
	}
	if d.hist == nil {
		d.hist = history.NewStore()
	}
	if d.keys == nil {
		d.keys = DefaultKeyTable()
	}
	if d.tabWidth <= 0 {
		d.tabWidth = DefaultTabWidth
	}
	return d
}

// Buffer exposes the line buffer.
func (d *Dispatcher) Buffer() *LineBuffer { return d.buf }

// History exposes the history store.
func (d *Dispatcher) History() *history.Store { return d.hist }

// Searching reports whether a reverse incremental search is active.
func (d *Dispatcher) Searching() bool { return d.search != nil }

// AppendHistory reports the state of the history-append toggle.
func (d *Dispatcher) AppendHistory() bool { return d.appendHistory }

// AppendStatus is the status line describing the history-append toggle.
func (d *Dispatcher) AppendStatus() string {
	state := "OFF"
	if d.appendHistory {
		state = "ON"
	}
	return "History appending is " + state + ". Press Ctrl+Q to toggle."
}

// Prompt returns the prompt for the next line.
func (d *Dispatcher) Prompt() string {
	if d.continuation {
		return PromptContinuation
	}
	if d.appendHistory {
		return PromptAppend
	}
	return PromptNoAppend
}

// SetContinuation selects the continuation prompt while the evaluator is
// collecting a multi-line statement.
func (d *Dispatcher) SetContinuation(more bool) { d.continuation = more }

// ShowPrompt writes the prompt followed by the current line, leaving the
// terminal cursor at the buffer cursor.
func (d *Dispatcher) ShowPrompt() {
	d.term.Write(d.Prompt())
	d.shown = 0
	d.redraw()
}

// Handle processes one key. For OutcomeSubmit the submitted line is
// returned as well.
func (d *Dispatcher) Handle(k types.Key) (Outcome, string) {
	action := d.keys.Lookup(k)

	if d.search != nil {
		switch action {
		case ActionInsert:
			d.search.Type(k.Rune, d.buf)
			d.redraw()
			d.renderStatus()
			return OutcomeNone, ""
		case ActionBackspace:
			if !d.search.Backspace(d.buf) {
				d.closeSearch()
				return OutcomeNone, ""
			}
			d.redraw()
			d.renderStatus()
			return OutcomeNone, ""
		case ActionSearch:
			d.search.Older(d.buf)
			d.redraw()
			d.renderStatus()
			return OutcomeNone, ""
		case ActionNone:
			return OutcomeNone, ""
		}
		d.closeSearch()
	}

	d.log.Debug("key %s -> %s", k, action)
	switch action {
	case ActionInsert:
		d.buf.Insert(string(k.Rune))
		d.redraw()
	case ActionHome:
		d.buf.SetCursor(0)
		d.moveCursor()
	case ActionEnd:
		d.buf.SetCursor(d.buf.Len())
		d.moveCursor()
	case ActionLeft:
		d.buf.MoveCursor(-1)
		d.moveCursor()
	case ActionRight:
		d.buf.MoveCursor(1)
		d.moveCursor()
	case ActionUp:
		if line, ok := d.hist.Previous(d.buf.Contents()); ok {
			d.buf.Set(line)
			d.redraw()
		}
	case ActionDown:
		if line, ok := d.hist.Next(); ok {
			d.buf.Set(line)
			d.redraw()
		}
	case ActionBackspace:
		if c := d.buf.Cursor(); c > 0 {
			d.buf.DeleteRange(c-1, c)
			d.redraw()
		}
	case ActionDelete:
		if c := d.buf.Cursor(); c < d.buf.Len() {
			d.buf.DeleteRange(c, c+1)
			d.redraw()
		}
	case ActionToggleInsert:
		d.buf.SetTypeover(!d.buf.Typeover())
	case ActionComplete:
		d.complete()
	case ActionSearch:
		d.search = history.NewSearch(d.hist)
		d.renderStatus()
	case ActionToggleAppend:
		d.appendHistory = !d.appendHistory
		d.term.NextLine()
		d.term.Write(d.AppendStatus())
		d.term.NextLine()
		d.ShowPrompt()
	case ActionInterrupt:
		return d.interrupt(), ""
	case ActionQuit:
		if d.buf.Len() > 0 {
			return OutcomeNone, ""
		}
		d.term.NextLine()
		d.term.Write("Bye!")
		d.term.NextLine()
		return OutcomeQuit, ""
	case ActionSubmit:
		return OutcomeSubmit, d.submit()
	case ActionEscape, ActionNone:
	}
	return OutcomeNone, ""
}

func (d *Dispatcher) submit() string {
	line := d.buf.Contents()
	if d.appendHistory {
		d.hist.Append(line)
	}
	d.hist.ResetPosition()
	d.term.NextLine()
	d.buf.Clear()
	d.shown = 0
	return line
}

func (d *Dispatcher) interrupt() Outcome {
	d.term.Write("^C")
	d.term.NextLine()
	d.term.Write("KeyboardInterrupt")
	d.term.NextLine()
	d.buf.Clear()
	d.hist.ResetPosition()
	d.continuation = false
	d.ShowPrompt()
	return OutcomeInterrupt
}

func (d *Dispatcher) complete() {
	head := d.buf.Head()
	if term, _ := completion.FindTerm(head); term == "" {
		n := d.tabWidth - len([]rune(head))%d.tabWidth
		d.buf.Insert(strings.Repeat(" ", n))
		d.redraw()
		return
	}
	if d.comp == nil {
		return
	}

	res, ok := d.comp.Complete(head)
	if !ok {
		return
	}
	if res.Extension != "" {
		d.buf.InsertAt(d.buf.Cursor(), res.Extension)
		d.redraw()
	}
	if !res.Ambiguous() {
		return
	}

	d.term.NextLine()
	for _, row := range completion.Layout(res.Candidates, d.termWidth()) {
		d.term.Write(row)
		d.term.NextLine()
	}
	d.ShowPrompt()
}

func (d *Dispatcher) closeSearch() {
	d.search = nil
	d.term.SaveCursor()
	d.term.NextLine()
	d.term.EraseLine()
	d.term.RestoreCursor()
}

// renderStatus draws the search status on the line below the input.
func (d *Dispatcher) renderStatus() {
	d.term.SaveCursor()
	d.term.NextLine()
	d.term.EraseLine()
	d.term.Write(d.search.Status())
	d.term.RestoreCursor()
}

// redraw rewrites the line from the end of the prompt and puts the terminal
// cursor back on the buffer cursor.
func (d *Dispatcher) redraw() {
	if d.shown > 0 {
		d.term.CursorBackward(d.shown)
	}
	d.term.EraseToLineEnd()
	d.term.Write(d.buf.Contents())
	if w := runewidth.StringWidth(d.buf.Tail()); w > 0 {
		d.term.CursorBackward(w)
	}
	d.shown = runewidth.StringWidth(d.buf.Head())
}

// moveCursor moves the terminal cursor to the buffer cursor without
// rewriting the line.
func (d *Dispatcher) moveCursor() {
	want := runewidth.StringWidth(d.buf.Head())
	switch delta := want - d.shown; {
	case delta < 0:
		d.term.CursorBackward(-delta)
	case delta > 0:
		d.term.CursorForward(delta)
	}
	d.shown = want
}

func (d *Dispatcher) termWidth() int {
	if d.width == nil {
		return DefaultWidth
	}
	if w := d.width(); w > 0 {
		return w
	}
	return DefaultWidth
}
