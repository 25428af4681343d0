package types

import (
	"context"
)

// Terminal is the output half of the terminal channel: the minimum control
// primitives the editor needs to render a single input line.
type Terminal interface {
	Write(text string)
	// CursorBackward and CursorForward move by display columns of the
	// given text length in runes.
	CursorBackward(n int)
	CursorForward(n int)
	EraseToLineEnd()
	EraseLine()
	SaveCursor()
	RestoreCursor()
	// NextLine moves to column zero of the following line.
	NextLine()
}

// Evaluator executes submitted source and introspects values.
type Evaluator interface {
	// Evaluate runs one complete or partial source fragment.
	Evaluate(ctx context.Context, src string) (EvalResult, error)
	// EvaluateExpression evaluates a single expression and returns its value.
	EvaluateExpression(ctx context.Context, expr string) (any, error)
	// Describe builds the introspection record for a value obtained from
	// EvaluateExpression. name is the expression text the user typed.
	Describe(name string, v any) Description
}

// Namespace resolves completion candidates.
type Namespace interface {
	// GlobalNames returns names visible at top level that start with prefix.
	GlobalNames(prefix string) []string
	// AttributeNames returns fully qualified "object.member" candidates for a
	// dotted expression such as "strings.Has".
	AttributeNames(expr string) []string
}
