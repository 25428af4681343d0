package preprocess

import (
	"context"
	"strings"
)

const (
	introspectUsage = "Type <expr>? for info on that expression."
	noDoc           = "No Documentation."
	notAvailable    = "N/A"
)

// introspect handles "<expr>?": it evaluates expr and prints the evaluator's
// description of the value. It always consumes the line.
func (in *Interpreter) introspect(ctx context.Context, line string) (string, bool) {
	expr := strings.TrimSpace(strings.TrimSuffix(line, "?"))
	if expr == "" {
		in.printLine(introspectUsage)
		return "", false
	}

	v, err := in.eval.EvaluateExpression(ctx, expr)
	if err != nil {
		in.log.Debug("introspection of %q failed: %v", expr, err)
		in.printLine(err.Error())
		return "", false
	}

	d := in.eval.Describe(expr, v)
	callable := "No"
	if d.Callable {
		callable = "Yes"
	}
	doc := strings.TrimSpace(d.Doc)
	if doc == "" {
		doc = noDoc
	}

	fields := []struct{ key, value string }{
		{"Name", orNA(d.Name)},
		{"Class", orNA(d.ClassName)},
		{"Type", orNA(d.RuntimeType)},
		{"Repr", d.Repr},
		{"Callable", callable},
		{"Doc", doc},
	}
	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(f.key)
		sb.WriteString(": ")
		sb.WriteString(f.value)
	}
	in.printLine(sb.String())
	return "", false
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
