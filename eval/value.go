package eval

import (
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Value is any value of the subject language.
//
// The host representation is: Undefined, nil (null), bool, float64, string,
// *Object, *Array and Callable. Host values of other types pass through
// untouched and are treated as opaque objects.
type Value = any

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined is the subject language's undefined value.
var Undefined Value = undefined{}

// Object is a string keyed property bag that remembers insertion order.
type Object struct {
	keys  []string
	props map[string]Value
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{props: make(map[string]Value)}
}

// ObjectFrom creates an object from a map, keys sorted for determinism.
func ObjectFrom(m map[string]Value) *Object {
	o := NewObject()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		o.Set(k, m[k])
	}
	return o
}

// Get returns the property and whether it exists.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.props[key]
	return v, ok
}

// Set creates or overwrites a property.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.props[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.props[key] = v
}

// Keys returns property names in insertion order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of properties.
func (o *Object) Len() int { return len(o.keys) }

// Array is an ordered list of values.
type Array struct {
	Elements []Value
}

// NewArray creates an array from elements.
func NewArray(elements ...Value) *Array {
	if elements == nil {
		elements = []Value{}
	}
	return &Array{Elements: elements}
}

// Callable is implemented by every value that can be applied.
type Callable interface {
	Call(this Value, args []Value) (Value, error)
}

// NativeFunc adapts a Go function to Callable.
type NativeFunc func(this Value, args []Value) (Value, error)

func (f NativeFunc) Call(this Value, args []Value) (Value, error) { return f(this, args) }

// Spread is produced by spread elements and flattened by the array literal
// and call argument evaluation.
type Spread struct {
	Values []Value
}

// FlattenSpread expands Spread markers in place of their position.
func FlattenSpread(values []Value) []Value {
	var out []Value
	for i, v := range values {
		s, ok := v.(Spread)
		if !ok {
			if out != nil {
				out = append(out, v)
			}
			continue
		}
		if out == nil {
			out = append(make([]Value, 0, len(values)), values[:i]...)
		}
		out = append(out, s.Values...)
	}
	if out == nil {
		return values
	}
	return out
}

// Arg returns args[i] or Undefined.
func Arg(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}

// ToBool converts a value using the language's truthiness rules.
func ToBool(v Value) bool {
	switch x := v.(type) {
	case nil, undefined:
		return false
	case bool:
		return x
	case float64:
		// 0 and NaN are false
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}

// ToNumber converts a value to a number, NaN when not numeric.
func ToNumber(v Value) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		return x
	case int:
		return float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return n
	case *Array:
		if len(x.Elements) == 0 {
			return 0
		}
		if len(x.Elements) == 1 {
			return ToNumber(x.Elements[0])
		}
	}
	return math.NaN()
}

// ToString converts a value to its string form.
func ToString(v Value) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case undefined:
		return "undefined"
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatNumber(x)
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	case *Array:
		parts := make([]string, len(x.Elements))
		for i, e := range x.Elements {
			if e == nil || e == Undefined {
				continue
			}
			parts[i] = ToString(e)
		}
		return strings.Join(parts, ",")
	case *Object:
		return "[object Object]"
	case *Exception:
		return x.Error()
	case Callable:
		return "function"
	case error:
		return x.Error()
	default:
		return "[object Object]"
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// TypeOf implements the typeof operator.
func TypeOf(v Value) string {
	switch v.(type) {
	case undefined:
		return "undefined"
	case nil:
		return "object"
	case bool:
		return "boolean"
	case float64, int:
		return "number"
	case string:
		return "string"
	case Callable:
		return "function"
	default:
		return "object"
	}
}

// StrictEquals implements ===. Values whose dynamic type is not comparable
// (func based callables, for example) are equal only when they are the
// same function.
func StrictEquals(a, b Value) bool {
	if fa, ok := a.(float64); ok {
		fb, ok := b.(float64)
		return ok && fa == fb
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil {
		return true
	}
	if !ta.Comparable() {
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		if ta.Kind() == reflect.Func {
			return va.Pointer() == vb.Pointer()
		}
		return false
	}
	return a == b
}

// LooseEquals implements == for primitives: null and undefined are equal to
// each other, numbers, strings and booleans are compared numerically when
// their types differ.
func LooseEquals(a, b Value) bool {
	if isNullish(a) || isNullish(b) {
		return isNullish(a) && isNullish(b)
	}
	if reflect.TypeOf(a) == reflect.TypeOf(b) {
		return StrictEquals(a, b)
	}
	if isPrimitive(a) && isPrimitive(b) {
		return ToNumber(a) == ToNumber(b)
	}
	return false
}

func isNullish(v Value) bool { return v == nil || v == Undefined }

func isPrimitive(v Value) bool {
	switch v.(type) {
	case bool, float64, string:
		return true
	}
	return false
}
