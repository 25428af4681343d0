package terminal

import (
	"fmt"
	"sync"

	"golang.org/x/term"

	"gosh/internal/logging"
)

// RawMode switches a terminal file descriptor into raw mode and restores
// the captured settings exactly once, whatever path ends the session.
type RawMode struct {
	fd    int
	state *term.State

	once       sync.Once
	restoreErr error
}

// NewRawMode manages fd. Nothing changes until Enter.
func NewRawMode(fd int) *RawMode {
	return &RawMode{fd: fd}
}

// Enter captures the current settings and disables canonical mode and echo.
// A descriptor that is not a terminal is left untouched.
func (m *RawMode) Enter() error {
	log := logging.Get(logging.CategoryTerminal)
	if !term.IsTerminal(m.fd) {
		log.Debug("fd %d is not a terminal, raw mode skipped", m.fd)
		return nil
	}
	state, err := term.MakeRaw(m.fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	m.state = state
	log.Debug("raw mode entered on fd %d", m.fd)
	return nil
}

// Restore puts back the settings captured by Enter. Only the first call has
// any effect; later calls return the first call's result.
func (m *RawMode) Restore() error {
	m.once.Do(func() {
		if m.state == nil {
			return
		}
		if err := term.Restore(m.fd, m.state); err != nil {
			m.restoreErr = fmt.Errorf("failed to restore terminal: %w", err)
			return
		}
		logging.Get(logging.CategoryTerminal).Debug("terminal settings restored on fd %d", m.fd)
	})
	return m.restoreErr
}

// Width returns the column count of the terminal on fd, or 80 when it
// cannot be determined.
func Width(fd int) int {
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
