package ecma

import (
	"strings"

	"github.com/xmorgan/metaes/ast"
	"github.com/xmorgan/metaes/eval"
)

// callSite is where a built in method was applied. Callbacks passed to the
// method are applied there too.
type callSite struct {
	at  *ast.Node
	env *eval.Environment
	cfg *eval.Config
}

// apply runs fn synchronously at the call site and returns its outcome.
func (s callSite) apply(fn eval.Value, args []eval.Value) (eval.Value, error) {
	var (
		result eval.Value = eval.Undefined
		failed *eval.Exception
	)
	eval.CallValue(s.at, fn, eval.Undefined, args, s.env, s.cfg,
		func(v eval.Value) { result = v },
		func(exc *eval.Exception) { failed = exc })
	if failed != nil {
		return nil, failed
	}
	return result, nil
}

type arrayMethod func(site callSite, arr *eval.Array, args []eval.Value) (eval.Value, error)

var arrayMethods = map[string]arrayMethod{
	"push": func(_ callSite, arr *eval.Array, args []eval.Value) (eval.Value, error) {
		arr.Elements = append(arr.Elements, args...)
		return float64(len(arr.Elements)), nil
	},
	"pop": func(_ callSite, arr *eval.Array, args []eval.Value) (eval.Value, error) {
		if len(arr.Elements) == 0 {
			return eval.Undefined, nil
		}
		last := arr.Elements[len(arr.Elements)-1]
		arr.Elements = arr.Elements[:len(arr.Elements)-1]
		return last, nil
	},
	"join": func(_ callSite, arr *eval.Array, args []eval.Value) (eval.Value, error) {
		sep := ","
		if s := eval.Arg(args, 0); s != eval.Undefined {
			sep = eval.ToString(s)
		}
		parts := make([]string, len(arr.Elements))
		for i, v := range arr.Elements {
			if v != nil && v != eval.Undefined {
				parts[i] = eval.ToString(v)
			}
		}
		return strings.Join(parts, sep), nil
	},
	"indexOf": func(_ callSite, arr *eval.Array, args []eval.Value) (eval.Value, error) {
		for i, v := range arr.Elements {
			if eval.StrictEquals(v, eval.Arg(args, 0)) {
				return float64(i), nil
			}
		}
		return -1.0, nil
	},
	"includes": func(_ callSite, arr *eval.Array, args []eval.Value) (eval.Value, error) {
		for _, v := range arr.Elements {
			if eval.StrictEquals(v, eval.Arg(args, 0)) {
				return true, nil
			}
		}
		return false, nil
	},
	"slice": func(_ callSite, arr *eval.Array, args []eval.Value) (eval.Value, error) {
		n := len(arr.Elements)
		start, end := bound(eval.Arg(args, 0), n, 0), bound(eval.Arg(args, 1), n, n)
		if start >= end {
			return eval.NewArray(), nil
		}
		return eval.NewArray(append([]eval.Value(nil), arr.Elements[start:end]...)...), nil
	},
	"map": func(site callSite, arr *eval.Array, args []eval.Value) (eval.Value, error) {
		out := make([]eval.Value, 0, len(arr.Elements))
		err := each(site, arr, eval.Arg(args, 0), func(_ eval.Value, result eval.Value) {
			out = append(out, result)
		})
		return eval.NewArray(out...), err
	},
	"filter": func(site callSite, arr *eval.Array, args []eval.Value) (eval.Value, error) {
		out := []eval.Value{}
		err := each(site, arr, eval.Arg(args, 0), func(item eval.Value, result eval.Value) {
			if eval.ToBool(result) {
				out = append(out, item)
			}
		})
		return eval.NewArray(out...), err
	},
	"forEach": func(site callSite, arr *eval.Array, args []eval.Value) (eval.Value, error) {
		return eval.Undefined, each(site, arr, eval.Arg(args, 0), func(eval.Value, eval.Value) {})
	},
}

// bound resolves a slice index argument, counting negatives from the end.
func bound(v eval.Value, n, def int) int {
	if v == eval.Undefined {
		return def
	}
	i := int(eval.ToNumber(v))
	if i < 0 {
		i += n
	}
	return max(0, min(i, n))
}

// each calls fn(item, index, array) at site for a snapshot of the elements.
func each(site callSite, arr *eval.Array, fn eval.Value, result func(item, result eval.Value)) error {
	if _, ok := fn.(eval.Callable); !ok {
		return eval.NewException(eval.KindTypeError, eval.ToString(fn)+" is not a function", nil)
	}
	for i, item := range append([]eval.Value(nil), arr.Elements...) {
		v, err := site.apply(fn, []eval.Value{item, float64(i), arr})
		if err != nil {
			return err
		}
		result(item, v)
	}
	return nil
}

// method is an array method bound to its array.
//
// Applied from a script its callbacks run under the configuration of that
// call site. Called from Go they run under their own closure configuration.
type method struct {
	name string
	arr  *eval.Array
	run  arrayMethod
}

func (m *method) Call(_ eval.Value, args []eval.Value) (eval.Value, error) {
	return m.run(callSite{env: eval.NewEnvironment(nil)}, m.arr, args)
}

func (m *method) CallWith(at *ast.Node, _ eval.Value, args []eval.Value, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	v, err := m.run(callSite{at, env, cfg}, m.arr, args)
	if err != nil {
		cerr(eval.ToException(err))
		return
	}
	c(v)
}

func (m *method) String() string { return "function " + m.name }

// invocation is fn.call or fn.apply: fn applied with an explicit this, and
// its arguments either listed or taken from an array.
type invocation struct {
	fn     eval.Callable
	spread bool
}

func (inv *invocation) split(args []eval.Value) (eval.Value, []eval.Value, error) {
	this := eval.Arg(args, 0)
	if !inv.spread {
		if len(args) < 2 {
			return this, nil, nil
		}
		return this, args[1:], nil
	}
	list := eval.Arg(args, 1)
	if list == nil || list == eval.Undefined {
		return this, nil, nil
	}
	arr, ok := list.(*eval.Array)
	if !ok {
		return nil, nil, eval.NewException(eval.KindTypeError, "argument list is not an array", nil)
	}
	return this, append([]eval.Value(nil), arr.Elements...), nil
}

func (inv *invocation) Call(_ eval.Value, args []eval.Value) (eval.Value, error) {
	this, rest, err := inv.split(args)
	if err != nil {
		return nil, err
	}
	return inv.fn.Call(this, rest)
}

func (inv *invocation) CallWith(at *ast.Node, _ eval.Value, args []eval.Value, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	this, rest, err := inv.split(args)
	if err != nil {
		cerr(eval.ToException(err))
		return
	}
	eval.CallValue(at, inv.fn, this, rest, env, cfg, c, cerr)
}

func (inv *invocation) String() string { return "function" }

// getProperty resolves the built in array methods and call and apply on
// callables, and defers every other read to the core handler.
func getProperty(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	name, _ := n.Get("property").(string)
	switch object := n.Get("object").(type) {
	case *eval.Array:
		if run, ok := arrayMethods[name]; ok {
			c(&method{name: name, arr: object, run: run})
			return
		}
	case eval.Callable:
		if name == "call" || name == "apply" {
			c(&invocation{fn: object, spread: name == "apply"})
			return
		}
	}
	core, _ := eval.BaseInterpreters().Lookup("GetProperty")
	core(n, env, cfg, c, cerr)
}
