package eval

import (
	"fmt"
	"time"

	"github.com/xmorgan/metaes/ast"
)

// Phase tells whether an Evaluation opens or closes a step.
type Phase string

const (
	PhaseEnter Phase = "enter"
	PhaseExit  Phase = "exit"
)

// Evaluation is the event passed to an Interceptor.
type Evaluation struct {
	Phase Phase
	Node  *ast.Node
	Env   *Environment
	// PropertyKey is set for events fired by EvaluateProp and
	// EvaluatePropWrap; Node is then the parent node.
	PropertyKey string
	// Value is the produced value on a successful exit.
	Value Value
	// Exception is set on a failed exit.
	Exception *Exception
	ScriptID  string
	Timestamp time.Time
}

// Interceptor is invoked synchronously at every enter and exit. It must not
// panic; a panic is logged and evaluation continues.
type Interceptor func(Evaluation)

func intercept(cfg *Config, ev Evaluation) {
	if cfg == nil || cfg.Interceptor == nil {
		return
	}
	ev.ScriptID = cfg.ScriptID
	ev.Timestamp = time.Now()
	defer func() {
		if r := recover(); r != nil {
			cfg.logger().Warn("interceptor panicked", "phase", ev.Phase, "node", ev.Node.String(), "panic", r)
		}
	}()
	cfg.Interceptor(ev)
}

// Evaluate dispatches n to its handler.
//
// Enter fires before the handler runs and exit fires before either
// continuation is forwarded, so events of a subtree are always nested inside
// the events of its root. A failure without a location gets n.
func Evaluate(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	if n == nil {
		cerr(NewException(KindError, "cannot evaluate a missing node", nil))
		return
	}
	handler, ok := cfg.registry().Lookup(n.Type)
	if !ok {
		exc := NotImplemented(fmt.Sprintf("%q node type interpreter is not defined yet", n.Type), n)
		intercept(cfg, Evaluation{Phase: PhaseEnter, Node: n, Env: env})
		intercept(cfg, Evaluation{Phase: PhaseExit, Node: n, Env: env, Exception: exc})
		cerr(exc)
		return
	}

	intercept(cfg, Evaluation{Phase: PhaseEnter, Node: n, Env: env})
	handler(n, env, cfg,
		func(v Value) {
			intercept(cfg, Evaluation{Phase: PhaseExit, Node: n, Env: env, Value: v})
			c(v)
		},
		func(exc *Exception) {
			exc.attach(n)
			intercept(cfg, Evaluation{Phase: PhaseExit, Node: n, Env: env, Exception: exc})
			cerr(exc)
		})
}

// EvaluateProp evaluates the child field key of n. A list of nodes is
// evaluated in order and produces []Value; a missing field produces
// Undefined.
func EvaluateProp(key string, n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	EvaluatePropWrap(key, func(c Continuation, cerr ErrorContinuation) {
		switch child := n.Get(key).(type) {
		case []*ast.Node:
			EvaluateArray(child, env, cfg, func(values []Value) { c(values) }, cerr)
		case *ast.Node:
			if child == nil {
				c(Undefined)
				return
			}
			Evaluate(child, env, cfg, c, cerr)
		case nil:
			c(Undefined)
		default:
			cerr(NewException(KindTypeError, fmt.Sprintf("field %q of %s is not a node", key, n.Type), n))
		}
	}, n, env, cfg, c, cerr)
}

// EvaluatePropWrap runs body between enter and exit events tagged with key,
// as if body were the evaluation of a child of n.
func EvaluatePropWrap(key string, body func(c Continuation, cerr ErrorContinuation), n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	intercept(cfg, Evaluation{Phase: PhaseEnter, Node: n, Env: env, PropertyKey: key})
	body(
		func(v Value) {
			intercept(cfg, Evaluation{Phase: PhaseExit, Node: n, Env: env, PropertyKey: key, Value: v})
			c(v)
		},
		func(exc *Exception) {
			intercept(cfg, Evaluation{Phase: PhaseExit, Node: n, Env: env, PropertyKey: key, Exception: exc})
			cerr(exc)
		})
}
