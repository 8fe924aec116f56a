package eval

import (
	"fmt"
	"maps"
)

// Environment is one frame of the scope chain.
//
// Frames link towards the root through Prev and never form a cycle. A child
// frame never mutates its parent; only values stored in an existing binding
// change on assignment.
type Environment struct {
	Values map[string]Value
	Prev   *Environment
}

// NewEnvironment creates a root frame holding a copy of values.
func NewEnvironment(values map[string]Value) *Environment {
	return MergeValues(values, nil)
}

// MergeValues creates a child frame of prev holding a copy of values.
func MergeValues(values map[string]Value, prev *Environment) *Environment {
	own := maps.Clone(values)
	if own == nil {
		own = make(map[string]Value)
	}
	return &Environment{Values: own, Prev: prev}
}

// Lookup returns the nearest frame binding name.
func (env *Environment) Lookup(name string) (*Environment, bool) {
	for frame := env; frame != nil; frame = frame.Prev {
		if _, ok := frame.Values[name]; ok {
			return frame, true
		}
	}
	return nil, false
}

// Define creates or overwrites a binding in this frame.
func (env *Environment) Define(name string, v Value) {
	env.Values[name] = v
}

// Root returns the outermost frame.
func (env *Environment) Root() *Environment {
	frame := env
	for frame.Prev != nil {
		frame = frame.Prev
	}
	return frame
}

// Depth returns the number of frames up to and including the root.
func (env *Environment) Depth() int {
	n := 0
	for frame := env; frame != nil; frame = frame.Prev {
		n++
	}
	return n
}

// AssignPolicy decides what assignment to an undeclared name does.
type AssignPolicy int

const (
	// AssignDefault leaves the policy unset. It behaves like AssignError and
	// lets a merged configuration keep the policy of the one below it.
	AssignDefault AssignPolicy = iota
	// AssignError fails with a ReferenceError.
	AssignError
	// AssignGlobal binds the name in the root frame.
	AssignGlobal
	// AssignLocal binds the name in the current frame.
	AssignLocal
)

func (p AssignPolicy) String() string {
	switch p {
	case AssignDefault:
		return "default"
	case AssignError:
		return "error"
	case AssignGlobal:
		return "global"
	case AssignLocal:
		return "local"
	}
	return fmt.Sprintf("AssignPolicy(%d)", int(p))
}

// ParseAssignPolicy parses "error", "global" or "local". The empty string
// means AssignDefault.
func ParseAssignPolicy(s string) (AssignPolicy, error) {
	switch s {
	case "":
		return AssignDefault, nil
	case "error":
		return AssignError, nil
	case "global":
		return AssignGlobal, nil
	case "local":
		return AssignLocal, nil
	}
	return AssignDefault, fmt.Errorf("unknown undeclared assignment policy %q", s)
}

// GetValue resolves name walking towards the root.
func GetValue(name string, env *Environment) (Value, error) {
	if frame, ok := env.Lookup(name); ok {
		return frame.Values[name], nil
	}
	if name == "undefined" {
		return Undefined, nil
	}
	return nil, NewException(KindReferenceError, fmt.Sprintf("%q is not defined", name), nil)
}

// SetValue assigns to the nearest frame binding name. When no frame does,
// policy decides.
func SetValue(name string, v Value, env *Environment, policy AssignPolicy) (Value, error) {
	if frame, ok := env.Lookup(name); ok {
		frame.Values[name] = v
		return v, nil
	}
	switch policy {
	case AssignGlobal:
		env.Root().Define(name, v)
	case AssignLocal:
		env.Define(name, v)
	default:
		return nil, NewException(KindReferenceError, fmt.Sprintf("%q is not defined", name), nil)
	}
	return v, nil
}
