package eval

import (
	"fmt"

	"github.com/xmorgan/metaes/ast"
)

func baseHandlers() map[string]Handler {
	return map[string]Handler{
		"Program":                 program,
		"BlockStatement":          program,
		"ExpressionStatement":     expressionStatement,
		"Identifier":              identifier,
		"Literal":                 literal,
		"ThisExpression":          thisExpression,
		"MemberExpression":        memberExpression,
		"CallExpression":          callExpression,
		"ArrowFunctionExpression": functionExpression,
		"FunctionExpression":      functionExpression,
		"ReturnStatement":         returnStatement,

		// nodes synthesized by the handlers above
		"GetValue":    getValue,
		"SetValue":    setValue,
		"Apply":       apply,
		"GetProperty": getProperty,
		"SetProperty": setProperty,
	}
}

// Hoist binds the function declarations among body in env before any
// statement runs.
func Hoist(body []*ast.Node, env *Environment, cfg *Config) {
	for _, stmt := range body {
		if stmt != nil && stmt.Type == "FunctionDeclaration" {
			if name := stmt.Node("id").Str("name"); name != "" {
				env.Define(name, CreateMetaFunction(stmt, env, cfg))
			}
		}
	}
}

// program evaluates a statement list; its value is the last statement's.
func program(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	Hoist(n.Nodes("body"), env, cfg)
	EvaluateProp("body", n, env, cfg, func(v Value) {
		values, _ := v.([]Value)
		if len(values) == 0 {
			c(Undefined)
			return
		}
		c(values[len(values)-1])
	}, cerr)
}

func expressionStatement(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	EvaluateProp("expression", n, env, cfg, c, cerr)
}

func identifier(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	get := ast.New("GetValue", "name", n.Str("name")).At(n.Line, n.Col)
	Evaluate(get, env, cfg, c, relocate(get, n, cerr))
}

// relocate attributes failures of the synthetic node to the source node it
// stands for.
func relocate(synthetic, source *ast.Node, cerr ErrorContinuation) ErrorContinuation {
	return func(exc *Exception) {
		if exc.Location == synthetic {
			exc.Location = source
		}
		cerr(exc)
	}
}

func literal(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	c(n.Get("value"))
}

func thisExpression(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	if frame, ok := env.Lookup("this"); ok {
		c(frame.Values["this"])
		return
	}
	c(Undefined)
}

// MemberKey produces the property key of a member expression: the evaluated
// property when computed, the identifier's name otherwise.
func MemberKey(member *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	if member.Bool("computed") {
		EvaluateProp("property", member, env, cfg, c, cerr)
		return
	}
	prop := member.Node("property")
	if prop == nil {
		cerr(NewException(KindError, "member expression without property", member))
		return
	}
	if prop.Type != "Identifier" {
		cerr(NotImplemented(fmt.Sprintf("member property of type %s", prop.Type), member))
		return
	}
	c(prop.Str("name"))
}

// ResolveMember evaluates the object and key of member.
func ResolveMember(member *ast.Node, env *Environment, cfg *Config, c func(object, key Value), cerr ErrorContinuation) {
	EvaluateProp("object", member, env, cfg, func(object Value) {
		MemberKey(member, env, cfg, func(key Value) { c(object, key) }, cerr)
	}, cerr)
}

func memberExpression(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	ResolveMember(n, env, cfg, func(object, key Value) {
		get := ast.New("GetProperty", "object", object, "property", key).At(n.Line, n.Col)
		Evaluate(get, env, cfg, c, relocate(get, n, cerr))
	}, cerr)
}

func callExpression(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	callee := n.Node("callee")
	withArguments := func(fn, this Value) {
		EvaluateProp("arguments", n, env, cfg, func(v Value) {
			values, _ := v.([]Value)
			CallValue(n, fn, this, FlattenSpread(values), env, cfg, c, cerr)
		}, cerr)
	}

	if callee != nil && callee.Type == "MemberExpression" {
		// the callee's object becomes this
		var this Value
		EvaluatePropWrap("callee", func(c Continuation, cerr ErrorContinuation) {
			ResolveMember(callee, env, cfg, func(object, key Value) {
				this = object
				get := ast.New("GetProperty", "object", object, "property", key).At(callee.Line, callee.Col)
				Evaluate(get, env, cfg, c, relocate(get, callee, cerr))
			}, cerr)
		}, n, env, cfg, func(fn Value) { withArguments(fn, this) }, cerr)
		return
	}
	EvaluateProp("callee", n, env, cfg, func(fn Value) { withArguments(fn, Undefined) }, cerr)
}

// ContinuationCallable is a Callable that call sites apply in continuation
// passing style with their own environment and configuration. Call remains
// the entry point for host code.
type ContinuationCallable interface {
	Callable
	CallWith(at *ast.Node, this Value, args []Value, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation)
}

// CallValue applies fn at the call site at, which may be nil. The callcc
// marker hands the current continuations to its receiver; metafunctions are
// invoked in place so that captured continuations stay connected to the
// call site.
func CallValue(at *ast.Node, fn, this Value, args []Value, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	switch f := fn.(type) {
	case *callccMarker:
		if IsCallCC(f) {
			callWithCurrentContinuation(Arg(args, 0), Arg(args, 1), env, cfg, c, cerr)
			return
		}
	case *Function:
		Invoke(f.Meta(), c, cerr, this, args, cfg)
		return
	case ContinuationCallable:
		f.CallWith(at, this, args, env, cfg, c, cerr)
		return
	case Callable:
		node := ast.New("Apply", "fn", f, "thisValue", this, "args", args)
		if at != nil {
			node.At(at.Line, at.Col)
		}
		Evaluate(node, env, cfg, c, cerr)
		return
	}
	cerr(NewException(KindTypeError, fmt.Sprintf("%s is not a function", describeCallee(at.Node("callee"))), nil))
}

func describeCallee(callee *ast.Node) string {
	if callee == nil {
		return "expression"
	}
	switch callee.Type {
	case "Identifier":
		return callee.Str("name")
	case "MemberExpression":
		if !callee.Bool("computed") {
			return describeCallee(callee.Node("object")) + "." + callee.Node("property").Str("name")
		}
	}
	return "expression"
}

func functionExpression(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	c(CreateMetaFunction(n, env, cfg))
}

func returnStatement(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	if !n.Has("argument") {
		cerr(Signal(KindReturn, Undefined))
		return
	}
	EvaluateProp("argument", n, env, cfg, func(v Value) { cerr(Signal(KindReturn, v)) }, cerr)
}

func getValue(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	v, err := GetValue(n.Str("name"), env)
	if err != nil {
		cerr(ToException(err))
		return
	}
	c(v)
}

// setValue binds name. Declarations bind in the current frame, plain
// assignments follow the configured undeclared assignment policy.
func setValue(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	name, value := n.Str("name"), n.Get("value")
	if n.Bool("isDeclaration") {
		env.Define(name, value)
		c(value)
		return
	}
	v, err := SetValue(name, value, env, cfg.assignPolicy())
	if err != nil {
		cerr(ToException(err))
		return
	}
	c(v)
}

func apply(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	fn, ok := n.Get("fn").(Callable)
	if !ok {
		cerr(NewException(KindTypeError, "value is not a function", n))
		return
	}
	args, _ := n.Get("args").([]Value)
	v, err := fn.Call(n.Get("thisValue"), args)
	if err != nil {
		cerr(ToException(err))
		return
	}
	c(v)
}

func getProperty(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	v, err := GetProperty(n.Get("object"), n.Get("property"))
	if err != nil {
		cerr(ToException(err))
		return
	}
	c(v)
}

// setProperty supports = and every compound operator.
func setProperty(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	object, key, value := n.Get("object"), n.Get("property"), n.Get("value")
	operator := n.Str("operator")
	if operator != "" && operator != "=" {
		binary, ok := CompoundOperator(operator)
		if !ok {
			cerr(NotImplemented(fmt.Sprintf("Operator '%s' is not supported.", operator), n))
			return
		}
		current, err := GetProperty(object, key)
		if err != nil {
			cerr(ToException(err))
			return
		}
		if value, err = BinaryOperation(binary, current, value); err != nil {
			cerr(ToException(err))
			return
		}
	}
	if err := SetProperty(object, key, value); err != nil {
		cerr(ToException(err))
		return
	}
	c(value)
}
