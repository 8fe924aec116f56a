package eval

import (
	"fmt"

	"github.com/xmorgan/metaes/ast"
)

// Context holds the default continuations, environment and configuration
// for a series of evaluations.
type Context struct {
	c    Continuation
	cerr ErrorContinuation
	env  *Environment
	cfg  *Config
}

// NewContext creates a context. Any argument may be nil; a nil env becomes
// a fresh root frame shared by every evaluation of the context.
func NewContext(c Continuation, cerr ErrorContinuation, env *Environment, cfg *Config) *Context {
	if env == nil {
		env = NewEnvironment(nil)
	}
	return &Context{c: c, cerr: cerr, env: env, cfg: cfg}
}

// Env returns the context's default environment.
func (ctx *Context) Env() *Environment { return ctx.env }

// Config returns the context's default configuration.
func (ctx *Context) Config() *Config { return ctx.cfg }

// Evaluate runs input, a source string, a *Script or an *ast.Node. Non-nil
// arguments override the context's defaults; cfg is merged over them.
func (ctx *Context) Evaluate(input any, c Continuation, cerr ErrorContinuation, env *Environment, cfg *Config) {
	if c == nil {
		c = ctx.c
	}
	if c == nil {
		c = func(Value) {}
	}
	if cerr == nil {
		cerr = ctx.cerr
	}
	if cerr == nil {
		cerr = func(exc *Exception) {
			ctx.cfg.logger().Error("unhandled evaluation error", "error", exc)
		}
	}
	if env == nil {
		env = ctx.env
	}
	cfg = ctx.cfg.Merge(cfg)

	var script *Script
	switch in := input.(type) {
	case string:
		s, err := CreateScript(in)
		if err != nil {
			cerr(ToException(err))
			return
		}
		script = s
	case *Script:
		script = in
	case *ast.Node:
		script = ScriptFromAST(in)
	default:
		cerr(NewException(KindTypeError, fmt.Sprintf("cannot evaluate %T", input), nil))
		return
	}
	EvaluateScript(script, c, cerr, env, cfg)
}

// EvalSync evaluates input and returns its outcome once control comes back.
// When a continuation fired more than once the last outcome wins. ctx may
// be nil.
func EvalSync(ctx *Context, input any, env *Environment) (Value, error) {
	if ctx == nil {
		ctx = NewContext(nil, nil, nil, nil)
	}
	var (
		result Value = Undefined
		failed *Exception
	)
	ctx.Evaluate(input,
		func(v Value) { result, failed = v, nil },
		func(exc *Exception) { failed = exc },
		env, nil)
	if failed != nil {
		return nil, failed
	}
	return result, nil
}
