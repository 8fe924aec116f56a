package ecma

import (
	"fmt"
	"io"
	"strings"

	"github.com/xmorgan/metaes/eval"
)

// Globals returns the host bindings scripts run with: print and console.log
// writing to w, and callcc.
func Globals(w io.Writer) map[string]eval.Value {
	printFn := eval.NativeFunc(func(_ eval.Value, args []eval.Value) (eval.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = eval.ToString(a)
		}
		_, err := fmt.Fprintln(w, strings.Join(parts, " "))
		return eval.Undefined, err
	})
	return map[string]eval.Value{
		"print":   printFn,
		"console": eval.ObjectFrom(map[string]eval.Value{"log": printFn}),
		"callcc":  eval.CallCC,
	}
}

// RegisterFunc binds a Go function under name in env.
func RegisterFunc(env *eval.Environment, name string, fn func(args ...eval.Value) eval.Value) {
	env.Define(name, eval.NativeFunc(func(_ eval.Value, args []eval.Value) (eval.Value, error) {
		return fn(args...), nil
	}))
}
