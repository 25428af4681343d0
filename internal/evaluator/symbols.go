package evaluator

import (
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// bindingPackage is the import path host bindings are exported under.
const bindingPackage = "gosh/gosh"

// safePackages are the stdlib packages available when the evaluator runs
// restricted. Packages with filesystem, process, network or unsafe access
// are left out.
var safePackages = map[string]bool{
	"bytes":           true,
	"container/heap":  true,
	"container/list":  true,
	"encoding/base64": true,
	"encoding/hex":    true,
	"encoding/json":   true,
	"errors":          true,
	"fmt":             true,
	"math":            true,
	"math/big":        true,
	"math/bits":       true,
	"math/rand":       true,
	"path":            true,
	"path/filepath":   true,
	"regexp":          true,
	"sort":            true,
	"strconv":         true,
	"strings":         true,
	"text/tabwriter":  true,
	"time":            true,
	"unicode":         true,
	"unicode/utf8":    true,
}

var builtins = []string{
	"append", "bool", "byte", "cap", "clear", "close", "complex", "copy",
	"delete", "error", "false", "float32", "float64", "imag", "int", "int16",
	"int32", "int64", "int8", "iota", "len", "make", "max", "min", "new", "nil",
	"panic", "print", "println", "real", "recover", "rune", "string", "true",
	"uint", "uint16", "uint32", "uint64", "uint8", "uintptr",
}

// splitKey splits an Exports key ("encoding/json/json") into its import
// path and package name.
func splitKey(key string) (path, name string) {
	i := strings.LastIndex(key, "/")
	if i < 0 {
		return key, key
	}
	return key[:i], key[i+1:]
}

// symbolTable returns the stdlib exports the interpreter may use.
func symbolTable(unrestricted bool) interp.Exports {
	if unrestricted {
		return stdlib.Symbols
	}
	out := make(interp.Exports, len(safePackages))
	for key, syms := range stdlib.Symbols {
		if path, _ := splitKey(key); safePackages[path] {
			out[key] = syms
		}
	}
	return out
}

// packageIndex maps a package name to the exported symbol names of every
// package imported under that name.
type packageIndex map[string][]string

func indexPackages(exports interp.Exports) packageIndex {
	idx := make(packageIndex)
	for key, syms := range exports {
		_, name := splitKey(key)
		for sym := range syms {
			// yaegi registers interface wrappers as _pkg_Iface.
			if strings.HasPrefix(sym, "_") {
				continue
			}
			idx[name] = append(idx[name], sym)
		}
	}
	for name := range idx {
		sort.Strings(idx[name])
	}
	return idx
}

// memberNames lists the methods and, for structs, the exported fields of v.
func memberNames(v reflect.Value) []string {
	if !v.IsValid() {
		return nil
	}
	var names []string
	t := v.Type()
	for i := 0; i < t.NumMethod(); i++ {
		names = append(names, t.Method(i).Name)
	}
	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface {
		pt := reflect.PointerTo(t)
		for i := 0; i < pt.NumMethod(); i++ {
			names = append(names, pt.Method(i).Name)
		}
	}
	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() == reflect.Struct {
		for i := 0; i < st.NumField(); i++ {
			if f := st.Field(i); f.IsExported() {
				names = append(names, f.Name)
			}
		}
	}
	return names
}
