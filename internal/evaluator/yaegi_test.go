package evaluator

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosh/internal/types"
)

func newTestYaegi(t *testing.T, opts Options) *Yaegi {
	t.Helper()
	y, err := New(opts)
	require.NoError(t, err)
	return y
}

func TestEvaluate_KeepsState(t *testing.T) {
	y := newTestYaegi(t, Options{})
	ctx := context.Background()

	res, err := y.Evaluate(ctx, "x := 1")
	require.NoError(t, err)
	assert.Equal(t, types.EvalDone, res.Status)
	assert.Empty(t, res.Output, "statements are not echoed")

	res, err = y.Evaluate(ctx, "x + 1")
	require.NoError(t, err)
	assert.Equal(t, "2", res.Output)
}

func TestEvaluate_ProgramOutput(t *testing.T) {
	var out bytes.Buffer
	y := newTestYaegi(t, Options{Stdout: &out})

	res, err := y.Evaluate(context.Background(), `fmt.Println("hello")`)
	require.NoError(t, err)
	assert.Empty(t, res.Output)
	assert.Equal(t, "hello\n", out.String())
}

func TestEvaluate_NeedsMoreInput(t *testing.T) {
	y := newTestYaegi(t, Options{})
	ctx := context.Background()

	for _, src := range []string{"func f() {", "x := []int{", "s := `raw"} {
		res, err := y.Evaluate(ctx, src)
		require.NoError(t, err, src)
		assert.Equal(t, types.EvalNeedsMoreInput, res.Status, src)
	}

	res, err := y.Evaluate(ctx, "func f() int {\nreturn 7\n}")
	require.NoError(t, err)
	assert.Equal(t, types.EvalDone, res.Status)

	res, err = y.Evaluate(ctx, "f()")
	require.NoError(t, err)
	assert.Equal(t, "7", res.Output)
}

func TestEvaluate_Errors(t *testing.T) {
	y := newTestYaegi(t, Options{})
	ctx := context.Background()

	_, err := y.Evaluate(ctx, "undefinedThing + 1")
	assert.Error(t, err)

	_, err = y.Evaluate(ctx, `panic("boom")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	// The interpreter stays usable after a failure.
	res, err := y.Evaluate(ctx, "1 + 1")
	require.NoError(t, err)
	assert.Equal(t, "2", res.Output)
}

func TestEvaluate_Cancellation(t *testing.T) {
	y := newTestYaegi(t, Options{})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := y.Evaluate(ctx, "for {}")
	assert.Error(t, err)
}

func TestRestrictedStdlib(t *testing.T) {
	ctx := context.Background()

	y := newTestYaegi(t, Options{})
	_, err := y.Evaluate(ctx, `os.Getenv("HOME")`)
	assert.Error(t, err, "os is not available restricted")

	res, err := y.Evaluate(ctx, `strings.ToUpper("go")`)
	require.NoError(t, err)
	assert.Equal(t, "GO", res.Output)

	y = newTestYaegi(t, Options{Unrestricted: true})
	_, err = y.Evaluate(ctx, `os.Getpid()`)
	assert.NoError(t, err)
}

func TestDescribe_BoundFunction(t *testing.T) {
	double := func(x int) int { return x * 2 }
	y := newTestYaegi(t, Options{Bindings: []Binding{
		{Name: "double", Value: double, Doc: "double returns twice its argument."},
		{Name: "answer", Value: 42},
	}})
	ctx := context.Background()

	v, err := y.EvaluateExpression(ctx, "double")
	require.NoError(t, err)
	d := y.Describe("double", v)
	assert.Equal(t, "double", d.Name)
	assert.True(t, d.Callable)
	assert.Equal(t, "func(int) int", d.ClassName)
	assert.Equal(t, "func", d.RuntimeType)
	assert.Equal(t, "double returns twice its argument.", d.Doc)

	res, err := y.Evaluate(ctx, "double(answer)")
	require.NoError(t, err)
	assert.Equal(t, "84", res.Output)

	v, err = y.EvaluateExpression(ctx, "answer")
	require.NoError(t, err)
	d = y.Describe("answer", v)
	assert.False(t, d.Callable)
	assert.Equal(t, "42", d.Repr)
	assert.Equal(t, "int", d.ClassName)
}

func TestDescribe_DeclaredFunctionDoc(t *testing.T) {
	y := newTestYaegi(t, Options{})
	ctx := context.Background()

	_, err := y.Evaluate(ctx, "// greet says hello.\nfunc greet() string { return \"hi\" }")
	require.NoError(t, err)

	v, err := y.EvaluateExpression(ctx, "greet")
	require.NoError(t, err)
	d := y.Describe("greet", v)
	assert.True(t, d.Callable)
	assert.Equal(t, "greet says hello.", strings.TrimSpace(d.Doc))
}

func TestEvaluateExpression_RejectsStatements(t *testing.T) {
	y := newTestYaegi(t, Options{})
	_, err := y.EvaluateExpression(context.Background(), "x := 3")
	assert.Error(t, err)
}

func TestGlobalNames(t *testing.T) {
	y := newTestYaegi(t, Options{Bindings: []Binding{{Name: "alphaBound", Value: 1}}})
	ctx := context.Background()

	_, err := y.Evaluate(ctx, "alpha := 1")
	require.NoError(t, err)
	_, err = y.Evaluate(ctx, "func alphabet() {}")
	require.NoError(t, err)
	_, err = y.Evaluate(ctx, "type alphaT struct{}")
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "alphaBound", "alphaT", "alphabet"}, y.GlobalNames("alpha"))
	assert.Contains(t, y.GlobalNames("str"), "strings")
	assert.Contains(t, y.GlobalNames("le"), "len")
}

func TestAttributeNames(t *testing.T) {
	type point struct {
		X, Y int
		tag  string
	}
	y := newTestYaegi(t, Options{Bindings: []Binding{
		{Name: "p", Value: point{X: 1}},
		{Name: "buf", Value: &bytes.Buffer{}},
	}})

	names := y.AttributeNames("strings.Has")
	assert.Contains(t, names, "strings.HasPrefix")
	assert.Contains(t, names, "strings.HasSuffix")
	for _, n := range names {
		assert.True(t, strings.HasPrefix(n, "strings.Has"), n)
	}

	assert.ElementsMatch(t, []string{"p.X", "p.Y"}, y.AttributeNames("p."))
	assert.Contains(t, y.AttributeNames("buf.Wri"), "buf.WriteString")

	assert.Nil(t, y.AttributeNames("nothere.x"))
	assert.Nil(t, y.AttributeNames(".x"))
}

func TestIncomplete(t *testing.T) {
	y := newTestYaegi(t, Options{})
	_, err := y.interp.Eval("if true {")
	require.Error(t, err)
	assert.True(t, incomplete(err, "if true {"))

	_, err = y.interp.Eval("1 +* 2")
	require.Error(t, err)
	assert.False(t, incomplete(err, "1 +* 2"))
}
