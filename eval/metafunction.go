package eval

import (
	"fmt"

	"github.com/xmorgan/metaes/ast"
)

// MetaFunction is a closure: a function node, the frame it was created in
// and the configuration active at creation time.
type MetaFunction struct {
	Node    *ast.Node
	Closure *Environment
	Config  *Config
}

// Name returns the function's declared name, "" for anonymous functions.
func (mf *MetaFunction) Name() string {
	return mf.Node.Node("id").Str("name")
}

// Invoke applies mf in continuation passing style.
//
// The body runs in a fresh frame over the closure binding this, arguments
// and the parameters. The configuration is callCfg merged over the closure's
// configuration. Expression bodied arrow functions produce the body's value;
// block bodies produce Undefined unless a return signal arrives.
func Invoke(mf *MetaFunction, c Continuation, cerr ErrorContinuation, this Value, args []Value, callCfg *Config) {
	env := MergeValues(map[string]Value{
		"this":      this,
		"arguments": NewArray(args...),
	}, mf.Closure)

	for i, param := range mf.Node.Nodes("params") {
		switch param.Type {
		case "Identifier":
			env.Define(param.Str("name"), Arg(args, i))
		case "RestElement":
			rest := []Value{}
			if i < len(args) {
				rest = append(rest, args[i:]...)
			}
			env.Define(param.Node("argument").Str("name"), NewArray(rest...))
		default:
			cerr(NotImplemented(fmt.Sprintf("Not supported type (%s) of function param.", param.Type), param))
			return
		}
	}

	body := mf.Node.Node("body")
	expressionBody := mf.Node.Type == "ArrowFunctionExpression" && body.Type != "BlockStatement"
	Evaluate(body, env, mf.Config.Merge(callCfg),
		func(v Value) {
			if expressionBody {
				c(v)
				return
			}
			c(Undefined)
		},
		func(exc *Exception) {
			if exc.Type == KindReturn {
				c(exc.Value)
				return
			}
			cerr(exc)
		})
}

// Function is the host callable face of a MetaFunction.
type Function struct {
	meta *MetaFunction
}

// CreateMetaFunctionWrapper adapts mf to a synchronous Callable.
func CreateMetaFunctionWrapper(mf *MetaFunction) *Function {
	return &Function{meta: mf}
}

// CreateMetaFunction is the way function literal handlers produce values.
func CreateMetaFunction(n *ast.Node, closure *Environment, cfg *Config) *Function {
	return CreateMetaFunctionWrapper(&MetaFunction{Node: n, Closure: closure, Config: cfg})
}

// Meta returns the underlying closure record.
func (f *Function) Meta() *MetaFunction { return f.meta }

// Call runs the function to completion. A failure is returned as an
// *Exception and no value. When the body hands its continuation to a
// receiver that resumes it several times, the last value wins.
func (f *Function) Call(this Value, args []Value) (Value, error) {
	var (
		result Value = Undefined
		failed *Exception
	)
	Invoke(f.meta, func(v Value) { result = v }, func(exc *Exception) { failed = exc }, this, args, nil)
	if failed != nil {
		return nil, failed
	}
	return result, nil
}

func (f *Function) String() string {
	if name := f.meta.Name(); name != "" {
		return "function " + name
	}
	return "function"
}

// MetaFunctionOf reports whether v is backed by a MetaFunction.
func MetaFunctionOf(v Value) (*MetaFunction, bool) {
	f, ok := v.(*Function)
	if !ok || f == nil {
		return nil, false
	}
	return f.meta, true
}
