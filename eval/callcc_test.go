package eval

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(calls *[]Value) NativeFunc {
	return func(_ Value, args []Value) (Value, error) {
		*calls = append(*calls, Arg(args, 0))
		return ToNumber(Arg(args, 0)) * 10, nil
	}
}

func TestCallCCDirectCallFails(t *testing.T) {
	_, err := CallCC.Call(Undefined, []Value{Undefined})
	assert.True(t, errors.Is(err, ErrDirectCallCC))
	assert.True(t, IsCallCC(CallCC))
	assert.False(t, IsCallCC(NativeFunc(nil)))
}

func TestCallCCReentrancy(t *testing.T) {
	var stored Continuation
	var calls []Value
	env := NewEnvironment(map[string]Value{
		"f":      record(&calls),
		"callcc": CallCC,
		"receiver": Receiver(func(seed Value, c Continuation, cerr ErrorContinuation, env *Environment, cfg *Config) {
			stored = c
			c(seed)
		}),
	})

	var results []Value
	script, err := CreateScript("f(callcc(receiver, 1))")
	require.NoError(t, err)
	EvaluateScript(script, func(v Value) { results = append(results, v) }, func(e *Exception) { t.Fatal(e) }, env, testConfig())

	require.NotNil(t, stored)
	stored(2.0)
	stored(3.0)

	assert.Equal(t, []Value{1.0, 2.0, 3.0}, calls)
	assert.Equal(t, []Value{10.0, 20.0, 30.0}, results)
}

func TestCallCCRecognizedByIdentity(t *testing.T) {
	env := NewEnvironment(map[string]Value{
		"capture": CallCC,
		"receiver": Receiver(func(seed Value, c Continuation, cerr ErrorContinuation, env *Environment, cfg *Config) {
			c(ToNumber(seed) + 1)
		}),
	})
	values, errs := run(t, "capture(receiver, 41)", env, testConfig())
	require.Empty(t, errs)
	assert.Equal(t, []Value{42.0}, values)
}

func TestCallCCAbandonedContinuation(t *testing.T) {
	env := NewEnvironment(map[string]Value{
		"callcc": CallCC,
		"never":  func(Value, Continuation, ErrorContinuation, *Environment, *Config) {},
	})
	values, errs := run(t, "callcc(never)", env, testConfig())
	assert.Empty(t, values)
	assert.Empty(t, errs)
}

func TestCallCCReceiverFailure(t *testing.T) {
	env := NewEnvironment(map[string]Value{
		"callcc": CallCC,
		"fail": Receiver(func(seed Value, c Continuation, cerr ErrorContinuation, env *Environment, cfg *Config) {
			cerr(NewException(KindError, "refused", nil))
		}),
		"notAFunction": 3.0,
	})
	_, errs := run(t, "callcc(fail)", env, testConfig())
	require.Len(t, errs, 1)
	assert.Equal(t, "refused", errs[0].Message)

	_, errs = run(t, "callcc(notAFunction)", env, testConfig())
	require.Len(t, errs, 1)
	assert.Equal(t, KindTypeError, errs[0].Type)
}

func TestCallCCWithScriptReceiver(t *testing.T) {
	env := NewEnvironment(map[string]Value{"callcc": CallCC})
	values, errs := run(t, "callcc((v, resume) => resume(v + 1), 41)", env, testConfig())
	require.Empty(t, errs)
	assert.Equal(t, []Value{42.0}, values)

	_, errs = run(t, "callcc((v, resume, fail) => fail('nope'), 0)", env, testConfig())
	require.Len(t, errs, 1)
	assert.Equal(t, KindThrow, errs[0].Type)
	assert.Equal(t, "nope", errs[0].Value)

	host := NativeFunc(func(_ Value, args []Value) (Value, error) {
		resume := args[1].(Callable)
		return resume.Call(Undefined, []Value{"from host"})
	})
	env.Define("host", host)
	values, errs = run(t, "callcc(host)", env, testConfig())
	require.Empty(t, errs)
	assert.Equal(t, []Value{"from host"}, values)
}

func TestLifted(t *testing.T) {
	double, err := Lifted(Receiver(func(v Value, c Continuation, cerr ErrorContinuation, env *Environment, cfg *Config) {
		c(ToNumber(v) * 2)
	}))
	require.NoError(t, err)
	_, ok := MetaFunctionOf(double)
	assert.True(t, ok)

	got, err := double.Call(Undefined, []Value{21.0})
	require.NoError(t, err)
	assert.Equal(t, 42.0, got)

	env := NewEnvironment(map[string]Value{"double": double})
	values, errs := run(t, "double(4) + 1", env, testConfig())
	require.Empty(t, errs)
	assert.Equal(t, []Value{9.0}, values)
}

func TestLiftedResumesCaller(t *testing.T) {
	var calls []Value
	each, err := Lifted(Receiver(func(v Value, c Continuation, cerr ErrorContinuation, env *Environment, cfg *Config) {
		for _, item := range v.(*Array).Elements {
			c(item)
		}
	}))
	require.NoError(t, err)

	env := NewEnvironment(map[string]Value{"each": each, "f": record(&calls), "items": NewArray(1.0, 2.0, 3.0)})
	values, errs := run(t, "f(each(items))", env, testConfig())
	require.Empty(t, errs)
	assert.Equal(t, []Value{1.0, 2.0, 3.0}, calls)
	assert.Equal(t, []Value{10.0, 20.0, 30.0}, values)
}

func TestLiftedFailure(t *testing.T) {
	boom, err := Lifted(Receiver(func(v Value, c Continuation, cerr ErrorContinuation, env *Environment, cfg *Config) {
		cerr(NewException(KindError, "boom", nil))
	}))
	require.NoError(t, err)
	got, err := boom.Call(Undefined, nil)
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Equal(t, "boom", ToException(err).Message)
}

func TestLiftedAll(t *testing.T) {
	noop := Receiver(func(v Value, c Continuation, cerr ErrorContinuation, env *Environment, cfg *Config) { c(v) })
	all, err := LiftedAll(map[string]Value{"a": noop, "b": noop})
	require.NoError(t, err)
	require.Len(t, all, 2)
	for name, f := range all {
		_, ok := MetaFunctionOf(f)
		assert.True(t, ok, name)
	}
	assert.NotSame(t, all["a"], all["b"])

	first, err := CreateScript(liftedSource)
	require.NoError(t, err)
	second, err := CreateScript(liftedSource)
	require.NoError(t, err)
	assert.Same(t, first, second)
}
