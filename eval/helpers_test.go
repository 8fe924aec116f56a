package eval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xmorgan/metaes/ast"
	"github.com/xmorgan/metaes/parser"
)

// binaryExpression is the one operator handler the core tests need.
func binaryExpression(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	EvaluateProp("left", n, env, cfg, func(left Value) {
		EvaluateProp("right", n, env, cfg, func(right Value) {
			v, err := BinaryOperation(n.Str("operator"), left, right)
			if err != nil {
				cerr(ToException(err))
				return
			}
			c(v)
		}, cerr)
	}, cerr)
}

func testRegistry() *Registry {
	return NewRegistry(BaseInterpreters(), map[string]Handler{"BinaryExpression": binaryExpression})
}

func testConfig() *Config {
	return &Config{Interpreters: testRegistry()}
}

// run evaluates src and collects every outcome.
func run(t *testing.T, src string, env *Environment, cfg *Config) ([]Value, []*Exception) {
	t.Helper()
	script, err := CreateScript(src)
	require.NoError(t, err)
	var values []Value
	var errs []*Exception
	EvaluateScript(script, func(v Value) { values = append(values, v) }, func(e *Exception) { errs = append(errs, e) }, env, cfg)
	return values, errs
}

func mustParseExpr(t *testing.T, src string) *ast.Node {
	t.Helper()
	n, err := parser.ParseExpression(src)
	require.NoError(t, err)
	return n
}

// fn evaluates a function literal and returns it.
func fn(t *testing.T, src string) *Function {
	t.Helper()
	var out Value
	Evaluate(mustParseExpr(t, src), NewEnvironment(nil), testConfig(), func(v Value) { out = v }, func(e *Exception) {
		t.Fatalf("evaluate %s: %v", src, e)
	})
	f, ok := out.(*Function)
	require.True(t, ok, "%s evaluated to %T", src, out)
	return f
}

type recorder struct {
	events []Evaluation
}

func (r *recorder) intercept(e Evaluation) { r.events = append(r.events, e) }
