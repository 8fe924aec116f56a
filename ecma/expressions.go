package ecma

import (
	"fmt"

	"github.com/xmorgan/metaes/ast"
	"github.com/xmorgan/metaes/eval"
)

func binaryExpression(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	eval.EvaluateProp("left", n, env, cfg, func(left eval.Value) {
		eval.EvaluateProp("right", n, env, cfg, func(right eval.Value) {
			v, err := eval.BinaryOperation(n.Str("operator"), left, right)
			if err != nil {
				cerr(eval.ToException(err))
				return
			}
			c(v)
		}, cerr)
	}, cerr)
}

// logicalExpression short-circuits: the right side is only evaluated when
// the left one does not decide the result.
func logicalExpression(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	op := n.Str("operator")
	eval.EvaluateProp("left", n, env, cfg, func(left eval.Value) {
		switch op {
		case "&&":
			if !eval.ToBool(left) {
				c(left)
				return
			}
		case "||":
			if eval.ToBool(left) {
				c(left)
				return
			}
		case "??":
			if left != nil && left != eval.Undefined {
				c(left)
				return
			}
		default:
			cerr(eval.NotImplemented(fmt.Sprintf("Operator '%s' is not supported.", op), n))
			return
		}
		eval.EvaluateProp("right", n, env, cfg, c, cerr)
	}, cerr)
}

func unaryExpression(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	op := n.Str("operator")
	arg := n.Node("argument")
	// typeof tolerates undeclared names
	if op == "typeof" && arg != nil && arg.Type == "Identifier" {
		if _, ok := env.Lookup(arg.Str("name")); !ok {
			c("undefined")
			return
		}
	}
	eval.EvaluateProp("argument", n, env, cfg, func(v eval.Value) {
		switch op {
		case "!":
			c(!eval.ToBool(v))
		case "-":
			c(-eval.ToNumber(v))
		case "+":
			c(eval.ToNumber(v))
		case "typeof":
			c(eval.TypeOf(v))
		case "void":
			c(eval.Undefined)
		default:
			cerr(eval.NotImplemented(fmt.Sprintf("Operator '%s' is not supported.", op), n))
		}
	}, cerr)
}

// reference is an assignable target: a name or an object property.
type reference struct {
	name   string
	object eval.Value
	key    eval.Value
	member bool
}

// resolveReference evaluates the parts of target needed to read or write it.
func resolveReference(target *ast.Node, env *eval.Environment, cfg *eval.Config, c func(reference), cerr eval.ErrorContinuation) {
	switch target.Type {
	case "Identifier":
		c(reference{name: target.Str("name")})
	case "MemberExpression":
		eval.ResolveMember(target, env, cfg, func(object, key eval.Value) {
			c(reference{object: object, key: key, member: true})
		}, cerr)
	default:
		cerr(eval.NotImplemented(fmt.Sprintf("Assignment to %s is not supported.", target.Type), target))
	}
}

func (r reference) get(at *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	if r.member {
		eval.Evaluate(ast.New("GetProperty", "object", r.object, "property", r.key).At(at.Line, at.Col), env, cfg, c, cerr)
		return
	}
	eval.Evaluate(ast.New("GetValue", "name", r.name).At(at.Line, at.Col), env, cfg, c, cerr)
}

func (r reference) set(at *ast.Node, operator string, value eval.Value, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	if r.member {
		eval.Evaluate(ast.New("SetProperty", "object", r.object, "property", r.key, "value", value, "operator", operator).
			At(at.Line, at.Col), env, cfg, c, cerr)
		return
	}
	if operator == "=" {
		eval.Evaluate(ast.New("SetValue", "name", r.name, "value", value).At(at.Line, at.Col), env, cfg, c, cerr)
		return
	}
	binary, _ := eval.CompoundOperator(operator)
	r.get(at, env, cfg, func(current eval.Value) {
		v, err := eval.BinaryOperation(binary, current, value)
		if err != nil {
			cerr(eval.ToException(err))
			return
		}
		eval.Evaluate(ast.New("SetValue", "name", r.name, "value", v).At(at.Line, at.Col), env, cfg, c, cerr)
	}, cerr)
}

func assignmentExpression(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	operator := n.Str("operator")
	if _, ok := eval.CompoundOperator(operator); !ok && operator != "=" {
		cerr(eval.NotImplemented(fmt.Sprintf("Operator '%s' is not supported.", operator), n))
		return
	}
	resolveReference(n.Node("left"), env, cfg, func(ref reference) {
		eval.EvaluateProp("right", n, env, cfg, func(value eval.Value) {
			ref.set(n, operator, value, env, cfg, c, cerr)
		}, cerr)
	}, cerr)
}

func updateExpression(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	delta := 1.0
	if n.Str("operator") == "--" {
		delta = -1
	}
	resolveReference(n.Node("argument"), env, cfg, func(ref reference) {
		ref.get(n, env, cfg, func(current eval.Value) {
			old := eval.ToNumber(current)
			ref.set(n, "=", old+delta, env, cfg, func(updated eval.Value) {
				if n.Bool("prefix") {
					c(updated)
					return
				}
				c(old)
			}, cerr)
		}, cerr)
	}, cerr)
}

func arrayExpression(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	eval.EvaluatePropWrap("elements", func(c eval.Continuation, cerr eval.ErrorContinuation) {
		eval.VisitArray(n.Nodes("elements"), func(elem *ast.Node, c eval.Continuation, cerr eval.ErrorContinuation) {
			if elem == nil {
				c(eval.Undefined)
				return
			}
			eval.Evaluate(elem, env, cfg, c, cerr)
		}, func(values []eval.Value) {
			c(eval.NewArray(eval.FlattenSpread(values)...))
		}, cerr)
	}, n, env, cfg, c, cerr)
}

func spreadElement(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	eval.EvaluateProp("argument", n, env, cfg, func(v eval.Value) {
		items, err := iterate(v)
		if err != nil {
			cerr(eval.ToException(err))
			return
		}
		c(eval.Spread{Values: items})
	}, cerr)
}

// field is one evaluated entry of an object literal.
type field struct {
	key   string
	value eval.Value
}

// objectExpression builds the object in its final continuation, so a resumed
// continuation never mutates an object an earlier run already produced.
func objectExpression(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	eval.VisitArray(n.Nodes("properties"), func(prop *ast.Node, c eval.Continuation, cerr eval.ErrorContinuation) {
		if prop == nil {
			cerr(eval.NewException(eval.KindError, "object literal with a missing property", n))
			return
		}
		if prop.Type == "SpreadElement" {
			eval.EvaluateProp("argument", prop, env, cfg, func(v eval.Value) {
				var fields []field
				if src, ok := v.(*eval.Object); ok {
					for _, k := range src.Keys() {
						pv, _ := src.Get(k)
						fields = append(fields, field{k, pv})
					}
				}
				c(fields)
			}, cerr)
			return
		}
		if kind := prop.Str("kind"); kind != "" && kind != "init" {
			cerr(eval.NotImplemented(fmt.Sprintf("Property kind %q is not supported.", kind), prop))
			return
		}
		propertyKey(prop, env, cfg, func(key eval.Value) {
			eval.EvaluateProp("value", prop, env, cfg, func(v eval.Value) {
				c([]field{{eval.ToString(key), v}})
			}, cerr)
		}, cerr)
	}, func(values []eval.Value) {
		obj := eval.NewObject()
		for _, v := range values {
			fields, _ := v.([]field)
			for _, f := range fields {
				obj.Set(f.key, f.value)
			}
		}
		c(obj)
	}, cerr)
}

func propertyKey(prop *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	key := prop.Node("key")
	switch {
	case prop.Bool("computed"):
		eval.EvaluateProp("key", prop, env, cfg, c, cerr)
	case key != nil && key.Type == "Identifier":
		c(key.Str("name"))
	case key != nil && key.Type == "Literal":
		c(eval.ToString(key.Get("value")))
	default:
		cerr(eval.NotImplemented("unsupported property key", prop))
	}
}

func sequenceExpression(n *ast.Node, env *eval.Environment, cfg *eval.Config, c eval.Continuation, cerr eval.ErrorContinuation) {
	eval.EvaluateProp("expressions", n, env, cfg, func(v eval.Value) {
		values, _ := v.([]eval.Value)
		if len(values) == 0 {
			c(eval.Undefined)
			return
		}
		c(values[len(values)-1])
	}, cerr)
}
