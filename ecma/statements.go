package ecma

import (
	"fmt"

	"github.com/xmorgan/metaes/ast"
	"github.com/xmorgan/metaes/eval"
)

func emptyStatement(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	c(eval.Undefined)
}

func variableDeclaration(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	eval.VisitArray(n.Nodes("declarations"), func(decl *ast.Node, c eval.Continuation, cerr eval.ErrorContinuation) {
		declare(decl, env, cfg, c, cerr)
	}, func([]eval.Value) { c(eval.Undefined) }, cerr)
}

// declare binds one declarator in env, to its initializer or undefined.
func declare(decl *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	id := decl.Node("id")
	if id == nil || id.Type != "Identifier" {
		cerr(eval.NotImplemented("only identifiers can be declared", decl))
		return
	}
	eval.EvaluateProp("init", decl, env, cfg, func(v eval.Value) {
		bind(decl, id.Str("name"), v, env, cfg, c, cerr)
	}, cerr)
}

func bind(at *ast.Node, name string, v eval.Value, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	eval.Evaluate(ast.New("SetValue", "name", name, "value", v, "isDeclaration", true).At(at.Line, at.Col), env, cfg, c, cerr)
}

// functionDeclaration only binds when the enclosing body did not hoist it,
// as happens for a declaration evaluated on its own.
func functionDeclaration(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	name := n.Node("id").Str("name")
	if name == "" {
		cerr(eval.NewException(eval.KindError, "function declaration without a name", n))
		return
	}
	if _, ok := env.Values[name]; !ok {
		env.Define(name, eval.CreateMetaFunction(n, env, cfg))
	}
	c(eval.Undefined)
}

// ifStatement also serves the conditional expression, whose fields match.
func ifStatement(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	eval.EvaluateProp("test", n, env, cfg, func(test eval.Value) {
		if eval.ToBool(test) {
			eval.EvaluateProp("consequent", n, env, cfg, c, cerr)
			return
		}
		eval.EvaluateProp("alternate", n, env, cfg, c, cerr)
	}, cerr)
}

func throwStatement(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	eval.EvaluateProp("argument", n, env, cfg, func(v eval.Value) {
		cerr(eval.Thrown(v))
	}, cerr)
}

func breakStatement(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	jump(eval.KindBreak, n, cerr)
}

func continueStatement(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	jump(eval.KindContinue, n, cerr)
}

func jump(kind string, n *ast.Node, cerr eval.ErrorContinuation) {
	if n.Has("label") {
		cerr(eval.NotImplemented("labeled statements are not supported", n))
		return
	}
	cerr(eval.Signal(kind, eval.Undefined))
}

// isControl reports the signals try/catch must let through.
func isControl(exc *eval.Exception) bool {
	switch exc.Type {
	case eval.KindReturn, eval.KindBreak, eval.KindContinue:
		return true
	}
	return false
}

// caught is the value bound to the catch parameter. Faults are bound as the
// exception itself so that rethrowing keeps their type and location.
func caught(exc *eval.Exception) eval.Value {
	if exc.Type == eval.KindThrow {
		return exc.Value
	}
	return exc
}

// tryStatement runs the finalizer on every path out of the statement. A
// failure inside the finalizer replaces whatever outcome was pending.
func tryStatement(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	finally := func(then func()) {
		if !n.Has("finalizer") {
			then()
			return
		}
		eval.EvaluateProp("finalizer", n, env, cfg, func(eval.Value) { then() }, cerr)
	}
	done := func(v eval.Value) { finally(func() { c(v) }) }
	failed := func(exc *eval.Exception) { finally(func() { cerr(exc) }) }

	eval.EvaluateProp("block", n, env, cfg, done, func(exc *eval.Exception) {
		handler := n.Node("handler")
		if handler == nil || isControl(exc) {
			failed(exc)
			return
		}
		eval.EvaluatePropWrap("handler", func(c eval.Continuation, cerr eval.ErrorContinuation) {
			catchEnv := env
			if param := handler.Node("param"); param != nil {
				if param.Type != "Identifier" {
					cerr(eval.NotImplemented(fmt.Sprintf("catch parameter of type %s", param.Type), param))
					return
				}
				catchEnv = eval.MergeValues(map[string]eval.Value{param.Str("name"): caught(exc)}, env)
			}
			eval.EvaluateProp("body", handler, catchEnv, cfg, c, cerr)
		}, n, env, cfg, done, failed)
	})
}
