package eval

import (
	"fmt"
	"sync"
)

// Receiver takes over the continuations of a callcc call site. It may call
// c or cerr once, several times, later, or never.
type Receiver func(value Value, c Continuation, cerr ErrorContinuation, env *Environment, cfg *Config)

type callccMarker struct{ _ byte }

// Call fails: the marker only has meaning at a call site inside an
// evaluation.
func (*callccMarker) Call(Value, []Value) (Value, error) {
	return nil, ErrDirectCallCC
}

func (*callccMarker) String() string { return "callcc" }

// CallCC is the continuation capture marker. Bind it in an environment
// under any name; call sites are recognized by identity, never by name.
var CallCC Callable = &callccMarker{}

// IsCallCC reports whether v is the CallCC marker.
func IsCallCC(v Value) bool {
	m, ok := v.(*callccMarker)
	return ok && Callable(m) == CallCC
}

// callWithCurrentContinuation hands c and cerr to receiver. Go receivers get
// them directly; subject functions and other callables get them as callable
// values and their own result is ignored.
func callWithCurrentContinuation(receiver, seed Value, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation) {
	switch r := receiver.(type) {
	case Receiver:
		r(seed, c, cerr, env, cfg)
		return
	case func(Value, Continuation, ErrorContinuation, *Environment, *Config):
		r(seed, c, cerr, env, cfg)
		return
	}

	resume := NativeFunc(func(_ Value, args []Value) (Value, error) {
		c(Arg(args, 0))
		return Undefined, nil
	})
	fail := NativeFunc(func(_ Value, args []Value) (Value, error) {
		cerr(Thrown(Arg(args, 0)))
		return Undefined, nil
	})
	args := []Value{seed, resume, fail}

	switch r := receiver.(type) {
	case *Function:
		Invoke(r.Meta(), func(Value) {}, cerr, Undefined, args, cfg)
	case Callable:
		if _, err := r.Call(Undefined, args); err != nil {
			cerr(ToException(err))
		}
	default:
		cerr(NewException(KindTypeError, fmt.Sprintf("callcc receiver %s is not a function", ToString(receiver)), nil))
	}
}

var lifted struct {
	once   sync.Once
	script *Script
	err    error
}

const liftedSource = `value => callcc(fn, value)`

// Lifted packages receiver as a function of one argument which, when called
// from evaluated code, passes that argument and the caller's continuations
// to receiver.
func Lifted(receiver Value) (*Function, error) {
	lifted.once.Do(func() {
		lifted.script, lifted.err = CreateScript(liftedSource)
	})
	if lifted.err != nil {
		return nil, lifted.err
	}

	var (
		result Value
		failed *Exception
	)
	env := NewEnvironment(map[string]Value{"callcc": CallCC, "fn": receiver})
	EvaluateScript(lifted.script, func(v Value) { result = v }, func(exc *Exception) { failed = exc }, env, nil)
	if failed != nil {
		return nil, failed
	}
	fn, ok := result.(*Function)
	if !ok {
		return nil, fmt.Errorf("lifted: wrapper evaluated to %T", result)
	}
	return fn, nil
}

// LiftedAll applies Lifted to every entry of receivers.
func LiftedAll(receivers map[string]Value) (map[string]Value, error) {
	out := make(map[string]Value, len(receivers))
	for name, r := range receivers {
		fn, err := Lifted(r)
		if err != nil {
			return nil, fmt.Errorf("lift %s: %w", name, err)
		}
		out[name] = fn
	}
	return out, nil
}
