package preprocess

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosh/internal/terminal/termtest"
	"gosh/internal/types"
	"gosh/internal/usage"
)

// --- MockEvaluator ---

// MockEvaluator implements types.Evaluator for testing.
type MockEvaluator struct {
	EvaluateFunc           func(ctx context.Context, src string) (types.EvalResult, error)
	EvaluateExpressionFunc func(ctx context.Context, expr string) (any, error)
	DescribeFunc           func(name string, v any) types.Description

	evaluated []string
}

func (m *MockEvaluator) Evaluate(ctx context.Context, src string) (types.EvalResult, error) {
	m.evaluated = append(m.evaluated, src)
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(ctx, src)
	}
	return types.EvalResult{Status: types.EvalDone}, nil
}

func (m *MockEvaluator) EvaluateExpression(ctx context.Context, expr string) (any, error) {
	if m.EvaluateExpressionFunc != nil {
		return m.EvaluateExpressionFunc(ctx, expr)
	}
	return nil, fmt.Errorf("undefined: %s", expr)
}

func (m *MockEvaluator) Describe(name string, v any) types.Description {
	if m.DescribeFunc != nil {
		return m.DescribeFunc(name, v)
	}
	return types.Description{Name: name}
}

func documentedFoo() *MockEvaluator {
	foo := func(x int) int { return x * 2 }
	return &MockEvaluator{
		EvaluateExpressionFunc: func(_ context.Context, expr string) (any, error) {
			if expr == "foo" {
				return foo, nil
			}
			return nil, fmt.Errorf("undefined: %s", expr)
		},
		DescribeFunc: func(name string, v any) types.Description {
			return types.Description{
				Name:        name,
				ClassName:   "func(int) int",
				RuntimeType: "func",
				Repr:        "func(int) int {...}",
				Callable:    true,
				Doc:         "  foo doubles its argument.\n",
			}
		},
	}
}

func TestIntrospection_CallableWithDoc(t *testing.T) {
	eval := documentedFoo()
	term := &termtest.Recorder{}
	in := New(eval, term)

	more := in.Push(context.Background(), "foo?")

	assert.False(t, more)
	assert.Empty(t, eval.evaluated, "introspection must not reach the evaluator")
	out := term.Output()
	assert.Contains(t, out, "Name: foo\n")
	assert.Contains(t, out, "Class: func(int) int\n")
	assert.Contains(t, out, "Type: func\n")
	assert.Contains(t, out, "Callable: Yes\n")
	assert.Contains(t, out, "Doc: foo doubles its argument.\n")
}

func TestIntrospection_ErrorPrintedInline(t *testing.T) {
	eval := &MockEvaluator{}
	term := &termtest.Recorder{}
	in := New(eval, term)

	assert.NotPanics(t, func() { in.Push(context.Background(), "nope?") })
	assert.Equal(t, "undefined: nope\n", term.Output())
	assert.Empty(t, eval.evaluated)
}

func TestIntrospection_DefaultsAndUsage(t *testing.T) {
	eval := &MockEvaluator{
		EvaluateExpressionFunc: func(context.Context, string) (any, error) { return 3, nil },
		DescribeFunc: func(string, any) types.Description {
			return types.Description{Repr: "3"}
		},
	}
	term := &termtest.Recorder{}
	in := New(eval, term)

	in.Push(context.Background(), "x?")
	out := term.Output()
	assert.Contains(t, out, "Name: N/A\n")
	assert.Contains(t, out, "Callable: No\n")
	assert.Contains(t, out, "Doc: No Documentation.\n")

	term.Reset()
	in.Push(context.Background(), "?")
	assert.Equal(t, "Type <expr>? for info on that expression.\n", term.Output())
}

func TestPreprocess_FirstRegisteredWins(t *testing.T) {
	in := New(&MockEvaluator{}, &termtest.Recorder{})
	var calls []string
	require.NoError(t, in.Add(`go.*`, func(_ context.Context, line string) (string, bool) {
		calls = append(calls, "first")
		return "first(" + line + ")", true
	}))
	require.NoError(t, in.Add(`gopher`, func(_ context.Context, line string) (string, bool) {
		calls = append(calls, "second")
		return "second", true
	}))

	out, forward := in.Preprocess(context.Background(), "gopher")
	assert.True(t, forward)
	assert.Equal(t, "first(gopher)", out)
	assert.Equal(t, []string{"first"}, calls)
}

func TestPreprocess_PatternMustMatchWholeLine(t *testing.T) {
	in := New(&MockEvaluator{}, &termtest.Recorder{})
	require.NoError(t, in.Add(`a|ab`, func(context.Context, string) (string, bool) { return "hit", true }))

	out, _ := in.Preprocess(context.Background(), "ab")
	assert.Equal(t, "hit", out, "alternation must be tried against the full line")

	out, _ = in.Preprocess(context.Background(), "abc")
	assert.Equal(t, "abc", out, "a partial match does not fire")
}

func TestPreprocess_RewriteAndRemove(t *testing.T) {
	eval := &MockEvaluator{}
	in := New(eval, &termtest.Recorder{})
	require.NoError(t, in.AddRewrite(`p (.+)`, `fmt.Println($1)`))

	in.Push(context.Background(), "p 1+1")
	assert.Equal(t, []string{"fmt.Println(1+1)"}, eval.evaluated)

	assert.True(t, in.Remove(`p (.+)`))
	assert.False(t, in.Remove(`p (.+)`))

	in.Push(context.Background(), "p 1+1")
	assert.Equal(t, "p 1+1", eval.evaluated[1])

	assert.Error(t, in.AddRewrite(`(`, ""))
}

func TestPreprocess_RemoveBuiltin(t *testing.T) {
	eval := &MockEvaluator{}
	in := New(eval, &termtest.Recorder{})
	require.True(t, in.Remove(`.*\?`))

	in.Push(context.Background(), "foo?")
	assert.Equal(t, []string{"foo?"}, eval.evaluated)
}

func TestPush_OutputAndErrors(t *testing.T) {
	eval := &MockEvaluator{
		EvaluateFunc: func(_ context.Context, src string) (types.EvalResult, error) {
			if src == "boom" {
				return types.EvalResult{}, errors.New("1:1: undefined: boom")
			}
			return types.EvalResult{Status: types.EvalDone, Output: "2\n3"}, nil
		},
	}
	term := &termtest.Recorder{}
	in := New(eval, term)

	assert.False(t, in.Push(context.Background(), "x"))
	assert.Equal(t, "2\n3\n", term.Output())

	term.Reset()
	assert.False(t, in.Push(context.Background(), "boom"))
	assert.Equal(t, "1:1: undefined: boom\n", term.Output())
}

func TestPush_MultiLine(t *testing.T) {
	eval := &MockEvaluator{
		EvaluateFunc: func(_ context.Context, src string) (types.EvalResult, error) {
			if strings.Count(src, "{") > strings.Count(src, "}") {
				return types.EvalResult{Status: types.EvalNeedsMoreInput}, nil
			}
			return types.EvalResult{Status: types.EvalDone}, nil
		},
	}
	in := New(eval, &termtest.Recorder{})
	ctx := context.Background()

	assert.True(t, in.Push(ctx, "func f() {"))
	assert.True(t, in.Pending())
	assert.True(t, in.Push(ctx, "  println(1)"))
	assert.False(t, in.Push(ctx, "}"))
	assert.False(t, in.Pending())
	assert.Equal(t, "func f() {\n  println(1)\n}", eval.evaluated[2])

	assert.True(t, in.Push(ctx, "for {"))
	in.Reset()
	assert.False(t, in.Pending())
}

func TestPush_Timeout(t *testing.T) {
	eval := &MockEvaluator{
		EvaluateFunc: func(ctx context.Context, _ string) (types.EvalResult, error) {
			<-ctx.Done()
			return types.EvalResult{}, ctx.Err()
		},
	}
	term := &termtest.Recorder{}
	in := New(eval, term, WithTimeout(10*time.Millisecond))

	assert.False(t, in.Push(context.Background(), "for {}"))
	assert.True(t, term.Contains("context deadline exceeded"))
}

func TestPush_TracksOutcomes(t *testing.T) {
	tracker, err := usage.NewTracker(filepath.Join(t.TempDir(), "usage.json"))
	require.NoError(t, err)
	ctx := usage.NewContext(usage.WithSession(context.Background(), "s1"), tracker)

	eval := documentedFoo()
	eval.EvaluateFunc = func(_ context.Context, src string) (types.EvalResult, error) {
		switch src {
		case "for {":
			return types.EvalResult{Status: types.EvalNeedsMoreInput}, nil
		case "bad":
			return types.EvalResult{}, errors.New("undefined: bad")
		}
		return types.EvalResult{Status: types.EvalDone}, nil
	}
	in := New(eval, &termtest.Recorder{})

	in.Push(ctx, "x := 1")
	in.Push(ctx, "bad")
	in.Push(ctx, "for {")
	in.Reset()
	in.Push(ctx, "foo?")

	stats := tracker.Stats()
	assert.Equal(t, int64(4), stats.Total.Submissions)
	assert.Equal(t, int64(1), stats.ByOutcome[string(usage.OutcomeOK)].Submissions)
	assert.Equal(t, int64(1), stats.ByOutcome[string(usage.OutcomeError)].Submissions)
	assert.Equal(t, int64(1), stats.ByOutcome[string(usage.OutcomeIncomplete)].Submissions)
	assert.Equal(t, int64(1), stats.ByOutcome[string(usage.OutcomeHandled)].Submissions)
	assert.Equal(t, int64(4), stats.BySession["s1"].Submissions)
}
