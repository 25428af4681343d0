// Package evaluator adapts the yaegi Go interpreter to the shell's
// evaluator and namespace capabilities.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"io"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/traefik/yaegi/interp"

	"gosh/internal/logging"
	"gosh/internal/types"
)

// Binding is a host value exported into the interpreter under Name.
type Binding struct {
	Name  string
	Value any
	Doc   string
}

// Options configures the interpreter.
type Options struct {
	// Stdout receives program output. Nil discards it.
	Stdout io.Writer
	// Unrestricted exposes the whole standard library, including os,
	// os/exec, net and unsafe.
	Unrestricted bool
	Bindings     []Binding
}

// Yaegi evaluates Go source incrementally, keeping declarations between
// calls. It implements types.Evaluator and types.Namespace.
type Yaegi struct {
	mu       sync.Mutex
	interp   *interp.Interpreter
	packages packageIndex
	// globals are names declared at top level by evaluated source or bound by
	// the host.
	globals map[string]struct{}
	docs    map[string]string
	log     *logging.Logger
}

// New returns an interpreter with the standard library auto-imported and
// opts.Bindings defined as package-level variables.
func New(opts Options) (*Yaegi, error) {
	out := opts.Stdout
	if out == nil {
		out = io.Discard
	}
	i := interp.New(interp.Options{
		Stdin:        strings.NewReader(""),
		Stdout:       out,
		Stderr:       out,
		Unrestricted: opts.Unrestricted,
	})

	exports := symbolTable(opts.Unrestricted)
	if err := i.Use(exports); err != nil {
		return nil, fmt.Errorf("failed to load stdlib: %w", err)
	}

	y := &Yaegi{
		interp:  i,
		globals: make(map[string]struct{}),
		docs:    make(map[string]string),
		log:     logging.Get(logging.CategoryEvaluator),
	}

	var bound interp.Exports
	if len(opts.Bindings) > 0 {
		syms := make(map[string]reflect.Value, len(opts.Bindings))
		for n, b := range opts.Bindings {
			syms[fmt.Sprintf("V%d", n)] = reflect.ValueOf(b.Value)
		}
		bound = interp.Exports{bindingPackage: syms}
		if err := i.Use(bound); err != nil {
			return nil, fmt.Errorf("failed to export bindings: %w", err)
		}
	}
	i.ImportUsed()
	y.packages = indexPackages(exports)

	for n, b := range opts.Bindings {
		_, pkg := splitKey(bindingPackage)
		if _, err := i.Eval(fmt.Sprintf("var %s = %s.V%d", b.Name, pkg, n)); err != nil {
			return nil, fmt.Errorf("failed to bind %q: %w", b.Name, err)
		}
		y.globals[b.Name] = struct{}{}
		if b.Doc != "" {
			y.docs[b.Name] = b.Doc
		}
	}

	y.log.Debug("interpreter ready: %d packages, %d bindings, unrestricted=%v",
		len(exports), len(opts.Bindings), opts.Unrestricted)
	return y, nil
}

// Evaluate runs src. Source that stops in the middle of a statement reports
// EvalNeedsMoreInput instead of an error. The value of an expression
// statement is returned as Output.
func (y *Yaegi) Evaluate(ctx context.Context, src string) (res types.EvalResult, err error) {
	y.mu.Lock()
	defer y.mu.Unlock()

	v, err := y.eval(ctx, src)
	if err != nil {
		if incomplete(err, src) {
			return types.EvalResult{Status: types.EvalNeedsMoreInput}, nil
		}
		return types.EvalResult{}, err
	}

	y.recordDeclarations(src)
	res.Status = types.EvalDone
	if echoes(src) && v.IsValid() && v.CanInterface() {
		res.Output = fmt.Sprintf("%v", v.Interface())
	}
	return res, nil
}

// echoes reports whether the value of src should be shown: src must be a
// single expression, and not a call to one of fmt's print functions, whose
// byte count is noise.
func echoes(src string) bool {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return false
	}
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return true
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return true
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok || pkg.Name != "fmt" {
		return true
	}
	name := sel.Sel.Name
	return !strings.HasPrefix(name, "Print") && !strings.HasPrefix(name, "Fprint")
}

// EvaluateExpression evaluates expr and returns its value.
func (y *Yaegi) EvaluateExpression(ctx context.Context, expr string) (any, error) {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.evalExpression(ctx, expr)
}

func (y *Yaegi) evalExpression(ctx context.Context, expr string) (any, error) {
	if _, err := parser.ParseExpr(expr); err != nil {
		return nil, fmt.Errorf("not an expression: %w", err)
	}
	v, err := y.eval(ctx, expr)
	if err != nil {
		return nil, err
	}
	if !v.IsValid() || !v.CanInterface() {
		return nil, nil
	}
	return v.Interface(), nil
}

// eval calls the interpreter, turning a panic that escapes it into an error.
func (y *Yaegi) eval(ctx context.Context, src string) (v reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			y.log.Error("interpreter panic: %v", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return y.interp.EvalWithContext(ctx, src)
}

// Describe summarizes v for introspection.
func (y *Yaegi) Describe(name string, v any) types.Description {
	y.mu.Lock()
	doc := y.docs[name]
	y.mu.Unlock()

	d := types.Description{Name: name, Doc: doc}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		d.Repr = "<nil>"
		return d
	}
	d.ClassName = rv.Type().String()
	d.RuntimeType = rv.Kind().String()
	d.Callable = rv.Kind() == reflect.Func
	if d.Callable {
		d.Repr = d.ClassName
	} else {
		d.Repr = fmt.Sprintf("%v", v)
	}
	return d
}

// incomplete reports whether err only says that src ended too early.
func incomplete(err error, src string) bool {
	var list scanner.ErrorList
	if !errors.As(err, &list) || len(list) == 0 {
		return false
	}
	msg := list[0].Msg
	switch {
	case strings.HasSuffix(msg, "found 'EOF'"):
		return true
	case msg == "raw string literal not terminated",
		msg == "comment not terminated":
		return true
	case strings.HasPrefix(msg, "expected operand, found '}'") && !strings.HasSuffix(strings.TrimSpace(src), "}"):
		return true
	}
	return false
}

// recordDeclarations remembers the top-level names src declared, and the
// doc comments of its function declarations.
func (y *Yaegi) recordDeclarations(src string) {
	fset := token.NewFileSet()
	if f, err := parser.ParseFile(fset, "", "package main\n"+src, parser.ParseComments); err == nil {
		for _, decl := range f.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				if d.Recv != nil {
					continue
				}
				y.globals[d.Name.Name] = struct{}{}
				if d.Doc != nil {
					y.docs[d.Name.Name] = d.Doc.Text()
				}
			case *ast.GenDecl:
				y.recordGenDecl(d)
			}
		}
		return
	}

	body, err := parser.ParseFile(fset, "", "package main\nfunc _() {\n"+src+"\n}", 0)
	if err != nil || len(body.Decls) == 0 {
		return
	}
	fn, ok := body.Decls[0].(*ast.FuncDecl)
	if !ok || fn.Body == nil {
		return
	}
	for _, stmt := range fn.Body.List {
		switch s := stmt.(type) {
		case *ast.AssignStmt:
			if s.Tok != token.DEFINE {
				continue
			}
			for _, lhs := range s.Lhs {
				if id, ok := lhs.(*ast.Ident); ok && id.Name != "_" {
					y.globals[id.Name] = struct{}{}
				}
			}
		case *ast.DeclStmt:
			if gd, ok := s.Decl.(*ast.GenDecl); ok {
				y.recordGenDecl(gd)
			}
		}
	}
}

func (y *Yaegi) recordGenDecl(d *ast.GenDecl) {
	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.ValueSpec:
			for _, id := range s.Names {
				if id.Name != "_" {
					y.globals[id.Name] = struct{}{}
				}
			}
		case *ast.TypeSpec:
			y.globals[s.Name.Name] = struct{}{}
		}
	}
}

// GlobalNames returns declared names, bindings, package names and builtins
// starting with prefix.
func (y *Yaegi) GlobalNames(prefix string) []string {
	y.mu.Lock()
	defer y.mu.Unlock()

	var out []string
	add := func(name string) {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	for name := range y.globals {
		add(name)
	}
	for name := range y.packages {
		add(name)
	}
	for _, name := range builtins {
		add(name)
	}
	sort.Strings(out)
	return out
}

// AttributeNames resolves the selector expression expr ("strings.Has",
// "v.Fi") and returns fully qualified candidates for its last element.
func (y *Yaegi) AttributeNames(expr string) []string {
	dot := strings.LastIndex(expr, ".")
	if dot <= 0 {
		return nil
	}
	obj, partial := expr[:dot], expr[dot+1:]

	y.mu.Lock()
	defer y.mu.Unlock()

	var members []string
	if _, shadowed := y.globals[obj]; !shadowed && y.packages[obj] != nil {
		members = y.packages[obj]
	} else {
		v, err := y.evalExpression(context.Background(), obj)
		if err != nil {
			y.log.Debug("attribute lookup on %q failed: %v", obj, err)
			return nil
		}
		members = memberNames(reflect.ValueOf(v))
	}

	var out []string
	for _, m := range members {
		if strings.HasPrefix(m, partial) {
			out = append(out, obj+"."+m)
		}
	}
	return out
}
