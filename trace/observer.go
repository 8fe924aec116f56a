package trace

import (
	"log/slog"

	"github.com/xmorgan/metaes/ast"
	"github.com/xmorgan/metaes/eval"
)

// Traps are called around the observed operations on a handler's target.
type Traps struct {
	// Set fires before target[key] = value is written, with the evaluated
	// right operand.
	Set func(target eval.Value, key string, value eval.Value)
	// DidSet fires after target[key] = value.
	DidSet func(target eval.Value, key string, value eval.Value)
	// Apply fires after target.method(args...) returned result. Calls made
	// through method.call(target, ...) and method.apply(target, [...]) are
	// reported the same way.
	Apply func(target eval.Value, method string, args []eval.Value, result eval.Value)
}

// interceptOnce is offered every event until it returns true.
type interceptOnce func(ev eval.Evaluation, g *FlameGraph) bool

// Handler attaches traps to one target value.
type Handler struct {
	Target eval.Value
	Traps  Traps
}

// Listener receives every event together with the flame graph of its script.
type Listener func(ev eval.Evaluation, graph *FlameGraph)

// Observer reports writes to and method calls on observed values. It reads
// the operands of an operation from the flame graph it builds alongside.
type Observer struct {
	target    eval.Value
	builder   *Builder
	handlers  []Handler
	listeners []Listener
	once      []interceptOnce
	logger    *slog.Logger
}

// NewObserver observes target with traps, which may be nil.
func NewObserver(target eval.Value, traps *Traps) *Observer {
	o := &Observer{target: target, builder: NewBuilder(), logger: slog.Default()}
	if traps != nil {
		o.handlers = append(o.handlers, Handler{Target: target, Traps: *traps})
	}
	return o
}

// SetLogger sets the logger for listener failures.
func (o *Observer) SetLogger(l *slog.Logger) {
	if l != nil {
		o.logger = l
	}
}

// AddHandler observes another value. Handlers may be added from a trap.
func (o *Observer) AddHandler(h Handler) { o.handlers = append(o.handlers, h) }

func (o *Observer) AddListener(l Listener) { o.listeners = append(o.listeners, l) }

// Builder returns the flame graphs built while observing.
func (o *Observer) Builder() *Builder { return o.builder }

// Environment returns the frame scripts run in: the target is bound as this
// and self one frame above, so top level declarations stay off it.
func (o *Observer) Environment() *eval.Environment {
	top := eval.NewEnvironment(map[string]eval.Value{"this": o.target, "self": o.target})
	return eval.MergeValues(nil, top)
}

// Context creates an evaluation context over Environment using cfg, with
// the observer's interceptor running before any interceptor cfg has.
func (o *Observer) Context(cfg *eval.Config) *eval.Context {
	var own eval.Config
	if cfg != nil {
		own = *cfg
	}
	own.Interceptor = Chain(o.Interceptor(), own.Interceptor)
	return eval.NewContext(nil, nil, o.Environment(), &own)
}

// Interceptor returns the observing hook.
func (o *Observer) Interceptor() eval.Interceptor {
	return func(ev eval.Evaluation) {
		g := o.builder.before(ev)
		defer o.builder.after(ev, g)
		o.observe(ev, g)
	}
}

func (o *Observer) observe(ev eval.Evaluation, g *FlameGraph) {
	if ev.Phase == eval.PhaseEnter && ev.PropertyKey == "" && ev.Node.Type == "AssignmentExpression" {
		o.armSet(ev.Node)
	}
	if ev.Phase == eval.PhaseExit && ev.PropertyKey == "" && ev.Exception == nil {
		switch ev.Node.Type {
		case "AssignmentExpression":
			o.didSet(ev.Node, g)
		case "CallExpression":
			o.apply(ev.Node, ev.Value, g)
		}
	}
	o.runOnce(ev, g)
	for _, l := range o.listeners {
		o.safely("listener", func() { l(ev, g) })
	}
}

// runOnce offers ev to the one time interceptors and drops those that are
// done. An interceptor armed by ev itself is offered ev as well.
func (o *Observer) runOnce(ev eval.Evaluation, g *FlameGraph) {
	for i := 0; i < len(o.once); i++ {
		fn := o.once[i]
		done := false
		o.safely("one time interceptor", func() { done = fn(ev, g) })
		if done {
			o.once = append(o.once[:i], o.once[i+1:]...)
			i--
		}
	}
}

// armSet waits for the right operand of assignment. Its exit comes after
// the target and key were evaluated and before anything is written.
func (o *Observer) armSet(assignment *ast.Node) {
	left := assignment.Node("left")
	if left == nil || left.Type != "MemberExpression" {
		return
	}
	o.once = append(o.once, func(ev eval.Evaluation, g *FlameGraph) bool {
		if ev.Node != assignment || ev.Phase != eval.PhaseExit {
			return false
		}
		if ev.Exception != nil {
			return true
		}
		if ev.PropertyKey != "right" {
			return false
		}
		target, ok := g.Value(left.Node("object"))
		if !ok {
			return true
		}
		key, ok := memberKey(left, g)
		if !ok {
			return true
		}
		for _, h := range o.handlers {
			if h.Traps.Set != nil && eval.StrictEquals(h.Target, target) {
				o.safely("set trap", func() { h.Traps.Set(target, key, ev.Value) })
			}
		}
		return true
	})
}

func (o *Observer) didSet(assignment *ast.Node, g *FlameGraph) {
	left := assignment.Node("left")
	if left == nil || left.Type != "MemberExpression" {
		return
	}
	target, ok := g.Value(left.Node("object"))
	if !ok {
		return
	}
	key, ok := memberKey(left, g)
	if !ok {
		return
	}
	// the stored value, not the right operand, for compound operators
	value, _ := g.Value(assignment)
	for _, h := range o.handlers {
		if h.Traps.DidSet != nil && eval.StrictEquals(h.Target, target) {
			o.safely("didSet trap", func() { h.Traps.DidSet(target, key, value) })
		}
	}
}

func (o *Observer) apply(call *ast.Node, result eval.Value, g *FlameGraph) {
	callee := call.Node("callee")
	if callee == nil || callee.Type != "MemberExpression" {
		return
	}
	target, ok := g.Value(callee.Node("object"))
	if !ok {
		return
	}
	method, ok := memberKey(callee, g)
	if !ok {
		return
	}
	nodes := call.Nodes("arguments")
	args := make([]eval.Value, 0, len(nodes))
	for _, n := range nodes {
		v, _ := g.Value(n)
		args = append(args, v)
	}
	args = eval.FlattenSpread(args)
	for _, h := range o.handlers {
		if h.Traps.Apply == nil {
			continue
		}
		switch {
		case eval.StrictEquals(h.Target, target):
			o.safely("apply trap", func() { h.Traps.Apply(target, method, args, result) })
		case (method == "call" || method == "apply") && len(args) > 0 && eval.StrictEquals(h.Target, args[0]):
			// fn.call(target, ...) and fn.apply(target, [...])
			if _, ok := target.(eval.Callable); !ok {
				continue
			}
			inner := args[1:]
			if method == "apply" {
				inner = nil
				if list, ok := eval.Arg(args, 1).(*eval.Array); ok {
					inner = list.Elements
				}
			}
			name := calleeName(callee.Node("object"), g)
			o.safely("apply trap", func() { h.Traps.Apply(args[0], name, inner, result) })
		}
	}
}

// calleeName names the function a call or apply was made on.
func calleeName(fn *ast.Node, g *FlameGraph) string {
	switch {
	case fn == nil:
		return ""
	case fn.Type == "MemberExpression":
		name, _ := memberKey(fn, g)
		return name
	case fn.Type == "Identifier":
		return fn.Str("name")
	}
	return ""
}

// memberKey is the property name of member as it was evaluated.
func memberKey(member *ast.Node, g *FlameGraph) (string, bool) {
	prop := member.Node("property")
	if prop == nil {
		return "", false
	}
	if !member.Bool("computed") {
		return prop.Str("name"), true
	}
	v, ok := g.Value(prop)
	if !ok {
		return "", false
	}
	return eval.ToString(v), true
}

func (o *Observer) safely(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn(what+" panicked", "panic", r)
		}
	}()
	fn()
}
