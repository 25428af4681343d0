// Package preprocess sits between the line editor and the evaluator. Each
// submitted line runs through an ordered chain of (pattern, handler) rules
// before it reaches the evaluator; the first rule whose pattern matches the
// whole line decides what happens to it.
package preprocess

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gosh/internal/logging"
	"gosh/internal/types"
	"gosh/internal/usage"
)

// Handler processes a line matched by its rule. It returns the text to
// forward to the evaluator and true, or false when it handled the line
// itself and nothing should be evaluated.
type Handler func(ctx context.Context, line string) (string, bool)

type rule struct {
	pattern string
	re      *regexp.Regexp
	handler Handler
}

// Interpreter owns the rule chain and the pending multi-line source.
type Interpreter struct {
	eval    types.Evaluator
	out     types.Terminal
	rules   []rule
	pending []string
	timeout time.Duration
	log     *logging.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithTimeout bounds every evaluator call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(in *Interpreter) { in.timeout = d }
}

// New returns an Interpreter with the built-in introspection rule (a line
// ending in "?") registered first.
func New(eval types.Evaluator, out types.Terminal, opts ...Option) *Interpreter {
	in := &Interpreter{
		eval: eval,
		out:  out,
		log:  logging.Get(logging.CategoryPreprocess),
	}
	for _, opt := range opts {
		opt(in)
	}
	// The built-in pattern is a constant; it always compiles.
	_ = in.Add(`.*\?`, in.introspect)
	return in
}

func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("invalid preprocess pattern %q: %w", pattern, err)
	}
	return re, nil
}

// Add appends a rule. pattern must match the entire line; it is anchored
// here so callers write it without ^ and $.
func (in *Interpreter) Add(pattern string, h Handler) error {
	re, err := compile(pattern)
	if err != nil {
		return err
	}
	in.rules = append(in.rules, rule{pattern: pattern, re: re, handler: h})
	return nil
}

// AddRewrite appends a rule that replaces the matched line with the
// expansion of replace ($1 and ${name} refer to capture groups).
func (in *Interpreter) AddRewrite(pattern, replace string) error {
	re, err := compile(pattern)
	if err != nil {
		return err
	}
	in.rules = append(in.rules, rule{
		pattern: pattern,
		re:      re,
		handler: func(_ context.Context, line string) (string, bool) {
			return re.ReplaceAllString(line, replace), true
		},
	})
	return nil
}

// Remove deletes the first rule registered with pattern. Unknown patterns are
// ignored. It reports whether a rule was removed.
func (in *Interpreter) Remove(pattern string) bool {
	for i, r := range in.rules {
		if r.pattern == pattern {
			in.rules = append(in.rules[:i], in.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Preprocess applies the chain to line. It returns the text to evaluate and
// true, or false when a handler consumed the line.
func (in *Interpreter) Preprocess(ctx context.Context, line string) (string, bool) {
	for _, r := range in.rules {
		if !r.re.MatchString(line) {
			continue
		}
		in.log.Debug("rule %q matched %q", r.pattern, line)
		return r.handler(ctx, line)
	}
	return line, true
}

// Push runs one submitted physical line through the chain and, unless a
// handler consumed it, through the evaluator. It returns true while the
// evaluator is waiting for more input to complete a statement. Evaluation
// errors are printed, never returned.
func (in *Interpreter) Push(ctx context.Context, line string) bool {
	tracker := usage.FromContext(ctx)
	track := func(o usage.Outcome, elapsed time.Duration) {
		if tracker != nil {
			tracker.Track(ctx, o, elapsed)
		}
	}

	src, forward := in.Preprocess(ctx, line)
	if !forward {
		track(usage.OutcomeHandled, 0)
		return len(in.pending) > 0
	}

	in.pending = append(in.pending, src)
	source := strings.Join(in.pending, "\n")

	evalCtx := ctx
	if in.timeout > 0 {
		var cancel context.CancelFunc
		evalCtx, cancel = context.WithTimeout(ctx, in.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := in.eval.Evaluate(evalCtx, source)
	elapsed := time.Since(start)
	if err != nil {
		in.pending = nil
		in.log.Debug("evaluation failed: %v", err)
		track(usage.OutcomeError, elapsed)
		in.printLine(err.Error())
		return false
	}
	if res.Status == types.EvalNeedsMoreInput {
		track(usage.OutcomeIncomplete, elapsed)
		return true
	}
	in.pending = nil
	track(usage.OutcomeOK, elapsed)
	if res.Output != "" {
		in.printLine(res.Output)
	}
	return false
}

// Pending reports whether a multi-line statement is being collected.
func (in *Interpreter) Pending() bool {
	return len(in.pending) > 0
}

// Reset discards any partially entered statement.
func (in *Interpreter) Reset() {
	in.pending = nil
}

func (in *Interpreter) printLine(text string) {
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			in.out.NextLine()
		}
		in.out.Write(line)
	}
	in.out.NextLine()
}
