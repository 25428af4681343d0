// Package session runs one interactive shell session on a terminal channel.
//
// A session owns the terminal for its lifetime: it switches the channel into
// raw mode on start and, on every exit path (quit, disconnect, cancellation),
// restores the previous settings exactly once and then persists history.
//
// Two goroutines cooperate under an errgroup:
//
//	reader:     channel bytes -> Decoder -> keys (FIFO)
//	event loop: keys -> Dispatcher -> (submit) -> preprocess -> evaluator
//
// The event loop is the only goroutine that touches editor state. It runs
// each submission to completion; keys keep queuing meanwhile and are handled
// in order afterwards. End of input lets the loop drain every queued key
// before the session ends. A failed read cancels the session context, which
// cancels the evaluation in flight.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gosh/internal/completion"
	"gosh/internal/config"
	"gosh/internal/editor"
	"gosh/internal/history"
	"gosh/internal/logging"
	"gosh/internal/preprocess"
	"gosh/internal/terminal"
	"gosh/internal/types"
	"gosh/internal/usage"
)

var (
	// ErrQuit ends the session at the user's request.
	ErrQuit = errors.New("session: quit")
	// ErrClosed ends the session because the terminal channel went away.
	ErrClosed = errors.New("session: terminal channel closed")
)

// keyQueueSize is how many decoded keys may wait while an evaluation runs.
const keyQueueSize = 1024

// RawMode switches the terminal channel in and out of raw mode. Restore is
// called exactly once per started session.
type RawMode interface {
	Enter() error
	Restore() error
}

// HistoryBackend loads history when a session starts and persists it when
// the session ends.
type HistoryBackend interface {
	Load(s *history.Store)
	Persist(s *history.Store)
}

// Options is the context object a session is built from.
type Options struct {
	// Input is the terminal channel. When it is an io.Closer it is closed
	// on teardown, which stops the reader.
	Input    io.Reader
	Terminal types.Terminal
	// RawMode may be nil when the channel is not a terminal.
	RawMode   RawMode
	History   HistoryBackend
	Evaluator types.Evaluator
	Namespace types.Namespace

	Rewrites      []config.PreprocessRule
	AppendHistory bool
	TabWidth      int
	EvalTimeout   time.Duration
	// Width reports the terminal width; nil means 80 columns.
	Width func() int
	// Name is shown in the banner. Empty selects user@host.pid.
	Name string
	// Usage, when set, records submission outcomes and is saved on teardown.
	Usage *usage.Tracker
}

// Session is one interactive shell session.
type Session struct {
	id     string
	name   string
	input  io.Reader
	term   types.Terminal
	raw    RawMode
	hist   HistoryBackend
	store  *history.Store
	disp   *editor.Dispatcher
	interp *preprocess.Interpreter
	usage  *usage.Tracker

	teardownOnce sync.Once
	closing      atomic.Bool
	log          *logging.Logger
}

// New builds a session. It fails only on invalid rewrite rules.
func New(opts Options) (*Session, error) {
	if opts.Input == nil || opts.Terminal == nil || opts.Evaluator == nil {
		return nil, fmt.Errorf("session requires input, terminal and evaluator")
	}

	id := uuid.NewString()
	s := &Session{
		id:    id,
		name:  opts.Name,
		input: opts.Input,
		term:  opts.Terminal,
		raw:   opts.RawMode,
		hist:  opts.History,
		store: history.NewStore(),
		usage: opts.Usage,
		log:   logging.Get(logging.CategorySession).With("session_id", id),
	}
	if s.name == "" {
		s.name = Name()
	}

	var comp *completion.Completer
	if opts.Namespace != nil {
		comp = completion.New(opts.Namespace)
	}
	s.disp = editor.New(editor.Options{
		Terminal:      opts.Terminal,
		History:       s.store,
		Completer:     comp,
		AppendHistory: opts.AppendHistory,
		TabWidth:      opts.TabWidth,
		Width:         opts.Width,
	})

	s.interp = preprocess.New(opts.Evaluator, opts.Terminal, preprocess.WithTimeout(opts.EvalTimeout))
	for _, r := range opts.Rewrites {
		if err := s.interp.AddRewrite(r.Pattern, r.Replace); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// HistoryEntries returns the session's history, oldest first.
func (s *Session) HistoryEntries() []string { return s.store.Entries() }

// Preprocessor exposes the preprocess chain so callers can register more
// handlers before Run.
func (s *Session) Preprocessor() *preprocess.Interpreter { return s.interp }

// Name returns "user@host.pid" for the current process.
func Name() string {
	username := "unknown"
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	return fmt.Sprintf("%s@%s.%d", username, host, os.Getpid())
}

// Run drives the session until the user quits, the channel closes or ctx is
// cancelled. It returns an error only when the session could not start.
func (s *Session) Run(ctx context.Context) error {
	if s.raw != nil {
		if err := s.raw.Enter(); err != nil {
			return fmt.Errorf("failed to start session: %w", err)
		}
	}
	defer s.teardown()
	s.log.Info("session started")

	ctx = usage.WithSession(ctx, s.id)
	if s.usage != nil {
		ctx = usage.NewContext(ctx, s.usage)
	}

	if s.hist != nil {
		s.hist.Load(s.store)
	}
	s.banner()
	s.disp.ShowPrompt()

	keys := make(chan types.Key, keyQueueSize)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.read(gctx, keys)
	})
	g.Go(func() error {
		defer s.teardown()
		return s.loop(gctx, keys)
	})

	err := g.Wait()
	switch {
	case errors.Is(err, ErrQuit):
		s.log.Info("session ended by user")
	case errors.Is(err, ErrClosed), errors.Is(err, context.Canceled):
		s.log.Info("session ended: %v", err)
	case err != nil:
		s.log.Error("session ended unexpectedly: %v", err)
	}
	return nil
}

func (s *Session) banner() {
	s.term.Write(fmt.Sprintf("gosh %s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH))
	s.term.NextLine()
	s.term.Write("[session: " + s.name + "]")
	s.term.NextLine()
	s.term.Write(s.disp.AppendStatus())
	s.term.NextLine()
}

// read decodes the channel into keys until a read fails. Keys are closed
// afterwards, so everything decoded before the failure is still handled. EOF
// is the normal end of input; any other error ends the session at once.
func (s *Session) read(ctx context.Context, keys chan<- types.Key) error {
	defer close(keys)
	var dec terminal.Decoder
	buf := make([]byte, 256)
	for {
		n, err := s.input.Read(buf)
		for _, k := range dec.Feed(buf[:n]) {
			select {
			case keys <- k:
			case <-ctx.Done():
				return nil
			}
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			s.log.Debug("end of input")
			return nil
		}
		if ctx.Err() != nil || s.closing.Load() {
			return nil
		}
		s.log.Debug("channel read failed: %v", err)
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
}

func (s *Session) loop(ctx context.Context, keys <-chan types.Key) error {
	for {
		var k types.Key
		select {
		case <-ctx.Done():
			return ctx.Err()
		case key, ok := <-keys:
			if !ok {
				return ErrClosed
			}
			k = key
		}

		outcome, line := s.disp.Handle(k)
		switch outcome {
		case editor.OutcomeQuit:
			return ErrQuit
		case editor.OutcomeInterrupt:
			s.interp.Reset()
		case editor.OutcomeSubmit:
			if err := s.submit(ctx, line); err != nil {
				return err
			}
		}
	}
}

// submit evaluates one line. It returns only once the evaluation has, so
// nothing the evaluation prints can follow the teardown output. The
// evaluation sees ctx, which is cancelled on a channel failure.
func (s *Session) submit(ctx context.Context, line string) error {
	more := s.interp.Push(ctx, line)
	if err := ctx.Err(); err != nil {
		return err
	}
	s.disp.SetContinuation(more)
	s.disp.ShowPrompt()
	return nil
}

// teardown restores the terminal, persists history and usage, then closes
// the channel.
// Only the first call does anything.
func (s *Session) teardown() {
	s.teardownOnce.Do(func() {
		s.closing.Store(true)
		if s.raw != nil {
			if err := s.raw.Restore(); err != nil {
				s.log.Error("terminal restore failed: %v", err)
			}
		}
		if s.hist != nil {
			s.hist.Persist(s.store)
		}
		if s.usage != nil {
			if err := s.usage.Save(); err != nil {
				logging.Get(logging.CategoryUsage).Warn("failed to save usage to %s: %v", s.usage.Path(), err)
			}
		}
		s.term.Write("Shell exited.")
		s.term.NextLine()
		if c, ok := s.input.(io.Closer); ok {
			_ = c.Close()
		}
		s.log.Debug("teardown complete")
	})
}
