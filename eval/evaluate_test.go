package eval

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmorgan/metaes/ast"
)

func TestEvaluateMissingHandler(t *testing.T) {
	rec := &recorder{}
	node := ast.New("WithStatement")
	successes, failures := 0, 0
	var got *Exception

	Evaluate(node, NewEnvironment(nil), &Config{Interceptor: rec.intercept},
		func(Value) { successes++ },
		func(e *Exception) { failures++; got = e })

	assert.Equal(t, 0, successes)
	assert.Equal(t, 1, failures)
	require.NotNil(t, got)
	assert.Equal(t, KindNotImplemented, got.Type)
	assert.Same(t, node, got.Location)

	require.Len(t, rec.events, 2)
	assert.Equal(t, PhaseEnter, rec.events[0].Phase)
	assert.Equal(t, PhaseExit, rec.events[1].Phase)
	assert.Same(t, got, rec.events[1].Exception)
}

func TestEvaluateNilNode(t *testing.T) {
	var got *Exception
	Evaluate(nil, NewEnvironment(nil), nil, func(Value) { t.Fatal("unexpected success") }, func(e *Exception) { got = e })
	require.NotNil(t, got)
	assert.Equal(t, KindError, got.Type)
}

func TestInterceptionNesting(t *testing.T) {
	rec := &recorder{}
	cfg := testConfig()
	cfg.Interceptor = rec.intercept
	obj := ObjectFrom(map[string]Value{"n": 2.0})
	env := NewEnvironment(map[string]Value{
		"obj": obj,
		"add": NativeFunc(func(_ Value, args []Value) (Value, error) {
			return ToNumber(args[0]) + ToNumber(args[1]), nil
		}),
	})

	values, errs := run(t, "add(obj.n, (x => x * 10)(3))", env, cfg)
	require.Empty(t, errs)
	assert.Equal(t, []Value{32.0}, values)

	type frame struct {
		node *ast.Node
		key  string
	}
	var stack []frame
	for _, e := range rec.events {
		f := frame{e.Node, e.PropertyKey}
		if e.Phase == PhaseEnter {
			stack = append(stack, f)
			continue
		}
		require.NotEmpty(t, stack, "exit without enter for %s", e.Node)
		top := stack[len(stack)-1]
		assert.Same(t, top.node, f.node)
		assert.Equal(t, top.key, f.key)
		stack = stack[:len(stack)-1]
	}
	assert.Empty(t, stack)

	var keys []string
	for _, e := range rec.events {
		if e.Phase == PhaseEnter && e.Node.Type == "CallExpression" && e.PropertyKey != "" {
			keys = append(keys, e.PropertyKey)
		}
	}
	assert.Equal(t, []string{"callee", "arguments", "callee", "arguments"}, keys)
}

func TestErrorLocationFirstWriterWins(t *testing.T) {
	env := NewEnvironment(map[string]Value{
		"f": NativeFunc(func(_ Value, args []Value) (Value, error) { return Arg(args, 0), nil }),
	})
	_, errs := run(t, "f(f(missing))", env, testConfig())
	require.Len(t, errs, 1)
	assert.Equal(t, KindReferenceError, errs[0].Type)
	require.NotNil(t, errs[0].Location)
	assert.Equal(t, "Identifier", errs[0].Location.Type)
	assert.Equal(t, "missing", errs[0].Location.Str("name"))

	deep := ast.New("Deep")
	reg := NewRegistry(BaseInterpreters(), map[string]Handler{
		"Deep": func(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
			cerr(NewException(KindError, "boom", nil))
		},
		"Wrapper": func(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
			EvaluateProp("child", n, env, cfg, c, cerr)
		},
	})
	outer := ast.New("Wrapper", "child", ast.New("Wrapper", "child", deep))
	var got *Exception
	Evaluate(outer, NewEnvironment(nil), &Config{Interpreters: reg}, func(Value) {}, func(e *Exception) { got = e })
	require.NotNil(t, got)
	assert.Same(t, deep, got.Location)
}

func TestMemberFailureLocation(t *testing.T) {
	env := NewEnvironment(map[string]Value{"a": NewObject()})
	for _, src := range []string{"a.b.c", "a.b.c()"} {
		_, errs := run(t, src, env, testConfig())
		require.Len(t, errs, 1, src)
		assert.Equal(t, KindTypeError, errs[0].Type, src)
		loc := errs[0].Location
		require.NotNil(t, loc, src)
		assert.Equal(t, "MemberExpression", loc.Type, src)
		assert.Equal(t, "c", loc.Node("property").Str("name"), src)
	}
}

func TestEvaluatePropWrap(t *testing.T) {
	rec := &recorder{}
	cfg := &Config{Interceptor: rec.intercept}
	n := ast.New("Custom")

	var out Value
	EvaluatePropWrap("computation", func(c Continuation, cerr ErrorContinuation) { c("done") },
		n, NewEnvironment(nil), cfg, func(v Value) { out = v }, func(*Exception) {})

	assert.Equal(t, "done", out)
	require.Len(t, rec.events, 2)
	for _, e := range rec.events {
		assert.Equal(t, "computation", e.PropertyKey)
		assert.Same(t, n, e.Node)
	}
	assert.Equal(t, "done", rec.events[1].Value)
}

func TestEvaluatePropMissingField(t *testing.T) {
	var out Value
	EvaluateProp("argument", ast.New("ReturnStatement"), NewEnvironment(nil), nil,
		func(v Value) { out = v }, func(e *Exception) { t.Fatal(e) })
	assert.Equal(t, Undefined, out)
}

func TestInterceptorPanicIsLogged(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, nil))
	cfg.Interceptor = func(Evaluation) { panic("bad hook") }

	values, errs := run(t, "1 + 2", nil, cfg)
	assert.Empty(t, errs)
	assert.Equal(t, []Value{3.0}, values)
	assert.Contains(t, buf.String(), "interceptor panicked")
}

func TestRegistryFallback(t *testing.T) {
	parent := NewRegistry(nil, map[string]Handler{"A": literal})
	child := NewRegistry(parent, map[string]Handler{"B": literal})

	_, ok := child.Lookup("A")
	assert.True(t, ok)
	_, ok = child.Lookup("B")
	assert.True(t, ok)
	_, ok = parent.Lookup("B")
	assert.False(t, ok)
	assert.Equal(t, []string{"A", "B"}, child.Types())
	assert.Same(t, parent, child.Parent())

	child.Register("A", thisExpression)
	_, ok = parent.Lookup("A")
	assert.True(t, ok)
}

func TestEvents(t *testing.T) {
	rec := &recorder{}
	cfg := testConfig()
	cfg.Interceptor = rec.intercept
	script, err := CreateScript("1 + 1")
	require.NoError(t, err)

	EvaluateScript(script, func(Value) {}, func(*Exception) {}, nil, cfg)
	require.NotEmpty(t, rec.events)
	for _, e := range rec.events {
		assert.Equal(t, script.ID, e.ScriptID)
		assert.False(t, e.Timestamp.IsZero())
	}
	last := rec.events[len(rec.events)-1]
	assert.Equal(t, "Program", last.Node.Type)
	assert.Equal(t, 2.0, last.Value)
}
