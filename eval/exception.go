package eval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xmorgan/metaes/ast"
)

// Exception type tags.
const (
	KindError          = "Error"
	KindNotImplemented = "NotImplemented"
	KindReferenceError = "ReferenceError"
	KindTypeError      = "TypeError"
	// Control transfer signals. They travel the error channel like faults;
	// only the boundary that owns them treats them specially.
	KindReturn   = "ReturnStatement"
	KindThrow    = "ThrowStatement"
	KindBreak    = "BreakStatement"
	KindContinue = "ContinueStatement"
)

var (
	// ErrDirectCallCC is returned when callcc is applied outside an evaluation.
	ErrDirectCallCC = errors.New("callcc: not intended to be called directly, call from an evaluation context")
	// ErrEscapedReturn reports a return signal that left its function.
	ErrEscapedReturn = errors.New("return signal escaped its function")
)

// Exception is the value every error continuation receives.
type Exception struct {
	Type    string
	Message string
	// Value is the payload: the returned value of a return signal or the
	// thrown value of a subject level throw.
	Value Value
	// Location is the node the failure is attributed to. Set once.
	Location *ast.Node
	Cause    error
}

// NewException creates an exception of the given type.
func NewException(typ, msg string, loc *ast.Node) *Exception {
	return &Exception{Type: typ, Message: msg, Location: loc}
}

// NotImplemented reports a missing handler or an unsupported construct.
func NotImplemented(msg string, loc *ast.Node) *Exception {
	return NewException(KindNotImplemented, msg, loc)
}

// Signal creates a control transfer exception carrying value.
func Signal(typ string, value Value) *Exception {
	return &Exception{Type: typ, Value: value}
}

// Thrown wraps a subject level thrown value. An *Exception passes through.
func Thrown(value Value) *Exception {
	if exc, ok := value.(*Exception); ok {
		return exc
	}
	return &Exception{Type: KindThrow, Value: value}
}

// ToException converts any error into an *Exception.
func ToException(err error) *Exception {
	if err == nil {
		return nil
	}
	var exc *Exception
	if errors.As(err, &exc) {
		return exc
	}
	return &Exception{Type: KindError, Message: err.Error(), Cause: err}
}

func (e *Exception) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Type)
	switch {
	case e.Message != "":
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	case e.Value != nil && e.Value != Undefined:
		sb.WriteString(": ")
		sb.WriteString(ToString(e.Value))
	}
	if e.Location != nil {
		fmt.Fprintf(&sb, " (at %s)", e.Location)
	}
	return sb.String()
}

func (e *Exception) Unwrap() error { return e.Cause }

// attach sets the location unless one is already set.
func (e *Exception) attach(n *ast.Node) {
	if e.Location == nil {
		e.Location = n
	}
}
