package ecma

import (
	"fmt"

	"github.com/xmorgan/metaes/ast"
	"github.com/xmorgan/metaes/eval"
)

// condition evaluates the loop test, treating an absent one as true.
func condition(n *ast.Node, env *eval.Environment, cfg *eval.Config, c func(bool), cerr eval.ErrorContinuation) {
	if !n.Has("test") {
		c(true)
		return
	}
	eval.EvaluateProp("test", n, env, cfg, func(v eval.Value) { c(eval.ToBool(v)) }, cerr)
}

// body runs the loop body; break ends the loop with undefined and continue
// behaves like normal completion.
func body(n *ast.Node, env *eval.Environment, cfg *eval.Config, next func(), c eval.Continuation, cerr eval.ErrorContinuation) {
	eval.EvaluateProp("body", n, env, cfg, func(eval.Value) { next() }, func(exc *eval.Exception) {
		switch exc.Type {
		case eval.KindBreak:
			c(eval.Undefined)
		case eval.KindContinue:
			next()
		default:
			cerr(exc)
		}
	})
}

func whileStatement(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	eval.Loop(func(next func()) {
		condition(n, env, cfg, func(ok bool) {
			if !ok {
				c(eval.Undefined)
				return
			}
			body(n, env, cfg, next, c, cerr)
		}, cerr)
	})
}

func forStatement(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	loopEnv := env
	if init := n.Node("init"); init != nil && init.Type == "VariableDeclaration" && init.Str("kind") != "var" {
		loopEnv = eval.MergeValues(nil, env)
	}
	eval.EvaluateProp("init", n, loopEnv, cfg, func(eval.Value) {
		eval.Loop(func(next func()) {
			condition(n, loopEnv, cfg, func(ok bool) {
				if !ok {
					c(eval.Undefined)
					return
				}
				body(n, loopEnv, cfg, func() {
					eval.EvaluateProp("update", n, loopEnv, cfg, func(eval.Value) { next() }, cerr)
				}, c, cerr)
			}, cerr)
		})
	}, cerr)
}

// forOfStatement iterates over a snapshot of the right hand side. Declared
// loop variables get a fresh frame per iteration.
func forOfStatement(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	left := n.Node("left")
	if left == nil {
		cerr(eval.NewException(eval.KindError, "for-of without a target", n))
		return
	}
	eval.EvaluateProp("right", n, env, cfg, func(right eval.Value) {
		items, err := iterate(right)
		if err != nil {
			cerr(eval.ToException(err))
			return
		}
		eval.VisitArray(items, func(item eval.Value, c eval.Continuation, cerr eval.ErrorContinuation) {
			iterEnv := env
			run := func(eval.Value) {
				eval.EvaluateProp("body", n, iterEnv, cfg, c, func(exc *eval.Exception) {
					if exc.Type == eval.KindContinue {
						c(eval.Undefined)
						return
					}
					cerr(exc)
				})
			}
			switch left.Type {
			case "VariableDeclaration":
				decls := left.Nodes("declarations")
				var id *ast.Node
				if len(decls) == 1 {
					id = decls[0].Node("id")
				}
				if id == nil || id.Type != "Identifier" {
					cerr(eval.NotImplemented("for-of supports a single identifier declaration", left))
					return
				}
				iterEnv = eval.MergeValues(nil, env)
				bind(left, id.Str("name"), item, iterEnv, cfg, run, cerr)
			case "Identifier":
				eval.Evaluate(ast.New("SetValue", "name", left.Str("name"), "value", item).At(left.Line, left.Col), env, cfg, run, cerr)
			default:
				cerr(eval.NotImplemented(fmt.Sprintf("for-of target of type %s", left.Type), left))
			}
		}, func([]eval.Value) { c(eval.Undefined) }, func(exc *eval.Exception) {
			if exc.Type == eval.KindBreak {
				c(eval.Undefined)
				return
			}
			cerr(exc)
		})
	}, cerr)
}

// iterate returns the elements a for-of loop or a spread visits.
func iterate(v eval.Value) ([]eval.Value, error) {
	switch it := v.(type) {
	case *eval.Array:
		return append([]eval.Value(nil), it.Elements...), nil
	case eval.Spread:
		return it.Values, nil
	case string:
		items := make([]eval.Value, 0, len(it))
		for _, r := range it {
			items = append(items, string(r))
		}
		return items, nil
	}
	return nil, eval.NewException(eval.KindTypeError, fmt.Sprintf("%s is not iterable", eval.ToString(v)), nil)
}
