package eval

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// BinaryOperation applies a binary operator.
func BinaryOperation(op string, left, right Value) (Value, error) {
	switch op {
	case "+":
		if isStringish(left) || isStringish(right) {
			return ToString(left) + ToString(right), nil
		}
		return ToNumber(left) + ToNumber(right), nil
	case "-":
		return ToNumber(left) - ToNumber(right), nil
	case "*":
		return ToNumber(left) * ToNumber(right), nil
	case "/":
		return ToNumber(left) / ToNumber(right), nil
	case "%":
		return math.Mod(ToNumber(left), ToNumber(right)), nil
	case "<", ">", "<=", ">=":
		return compare(op, left, right), nil
	case "==":
		return LooseEquals(left, right), nil
	case "!=":
		return !LooseEquals(left, right), nil
	case "===":
		return StrictEquals(left, right), nil
	case "!==":
		return !StrictEquals(left, right), nil
	case "&":
		return float64(ToInt32(left) & ToInt32(right)), nil
	case "|":
		return float64(ToInt32(left) | ToInt32(right)), nil
	case "^":
		return float64(ToInt32(left) ^ ToInt32(right)), nil
	case "<<":
		return float64(ToInt32(left) << (ToUint32(right) & 31)), nil
	case ">>":
		return float64(ToInt32(left) >> (ToUint32(right) & 31)), nil
	case ">>>":
		return float64(ToUint32(left) >> (ToUint32(right) & 31)), nil
	}
	return nil, NotImplemented(fmt.Sprintf("Operator '%s' is not supported.", op), nil)
}

// ToUint32 converts v to a number and wraps it modulo 2^32. NaN and the
// infinities become 0.
func ToUint32(v Value) uint32 {
	f := ToNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	m := math.Mod(math.Trunc(f), 1<<32)
	if m < 0 {
		m += 1 << 32
	}
	return uint32(m)
}

// ToInt32 is ToUint32 reinterpreted as a signed integer.
func ToInt32(v Value) int32 { return int32(ToUint32(v)) }

// CompoundOperator returns the binary operator of a compound assignment
// operator such as += or >>>=, and whether op is one.
func CompoundOperator(op string) (string, bool) {
	switch op {
	case "+=", "-=", "*=", "/=", "%=", "<<=", ">>=", ">>>=", "&=", "|=", "^=":
		return op[:len(op)-1], true
	}
	return "", false
}

// isStringish reports whether + concatenates for v.
func isStringish(v Value) bool {
	switch v.(type) {
	case string, *Array, *Object:
		return true
	}
	return false
}

func compare(op string, left, right Value) bool {
	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		c := strings.Compare(ls, rs)
		switch op {
		case "<":
			return c < 0
		case ">":
			return c > 0
		case "<=":
			return c <= 0
		default:
			return c >= 0
		}
	}
	l, r := ToNumber(left), ToNumber(right)
	switch op {
	case "<":
		return l < r
	case ">":
		return l > r
	case "<=":
		return l <= r
	default:
		return l >= r
	}
}

// GetProperty reads object[key].
func GetProperty(object, key Value) (Value, error) {
	switch o := object.(type) {
	case nil, undefined:
		return nil, NewException(KindTypeError,
			fmt.Sprintf("Cannot read properties of %s (reading '%s')", ToString(object), ToString(key)), nil)
	case *Object:
		if v, ok := o.Get(ToString(key)); ok {
			return v, nil
		}
	case *Array:
		if ToString(key) == "length" {
			return float64(len(o.Elements)), nil
		}
		if i, ok := toIndex(key); ok && i < len(o.Elements) {
			return o.Elements[i], nil
		}
	case string:
		if ToString(key) == "length" {
			return float64(len(o)), nil
		}
		if i, ok := toIndex(key); ok && i < len(o) {
			return o[i : i+1], nil
		}
	case map[string]Value:
		if v, ok := o[ToString(key)]; ok {
			return v, nil
		}
	case *Exception:
		switch ToString(key) {
		case "name":
			return o.Type, nil
		case "message":
			return o.Message, nil
		}
	}
	return Undefined, nil
}

// SetProperty writes object[key] = value.
func SetProperty(object, key, value Value) error {
	switch o := object.(type) {
	case *Object:
		o.Set(ToString(key), value)
		return nil
	case *Array:
		if ToString(key) == "length" {
			n, ok := toIndex(value)
			if !ok {
				return NewException(KindError, "Invalid array length", nil)
			}
			o.Elements = resize(o.Elements, n)
			return nil
		}
		i, ok := toIndex(key)
		if !ok {
			return NewException(KindTypeError, fmt.Sprintf("Cannot set property '%s' of an array", ToString(key)), nil)
		}
		if i >= len(o.Elements) {
			o.Elements = resize(o.Elements, i+1)
		}
		o.Elements[i] = value
		return nil
	case map[string]Value:
		o[ToString(key)] = value
		return nil
	}
	return NewException(KindTypeError,
		fmt.Sprintf("Cannot set properties of %s (setting '%s')", ToString(object), ToString(key)), nil)
}

func toIndex(key Value) (int, bool) {
	switch k := key.(type) {
	case float64:
		if k >= 0 && k == math.Trunc(k) && k < math.MaxInt32 {
			return int(k), true
		}
	case int:
		return k, k >= 0
	case string:
		if i, err := strconv.Atoi(k); err == nil && i >= 0 {
			return i, true
		}
	}
	return 0, false
}

func resize(elements []Value, n int) []Value {
	if n <= len(elements) {
		return elements[:n]
	}
	for len(elements) < n {
		elements = append(elements, Undefined)
	}
	return elements
}
