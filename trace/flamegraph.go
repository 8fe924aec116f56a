// Package trace consumes interception events: it builds per script flame
// graphs, prints evaluation traces and lets hosts observe writes to and
// method calls on chosen values.
package trace

import (
	"sync"

	"github.com/xmorgan/metaes/ast"
	"github.com/xmorgan/metaes/eval"
)

// EvaluationNode is one node evaluation; Children are the evaluations it
// started before it exited.
type EvaluationNode struct {
	Evaluation eval.Evaluation
	Children   []*EvaluationNode
}

// FlameGraph is the evaluation tree of one script.
type FlameGraph struct {
	// Roots are the outermost evaluations, in start order.
	Roots []*EvaluationNode

	stack  []*EvaluationNode
	values map[*ast.Node]eval.Value
}

func newFlameGraph() *FlameGraph {
	return &FlameGraph{values: make(map[*ast.Node]eval.Value)}
}

// Value returns the value the last evaluation of n exited with.
func (g *FlameGraph) Value(n *ast.Node) (eval.Value, bool) {
	v, ok := g.values[n]
	return v, ok
}

// Stack returns the evaluations entered and not yet exited, outermost first.
func (g *FlameGraph) Stack() []*EvaluationNode {
	return append([]*EvaluationNode(nil), g.stack...)
}

// Depth is the number of evaluations currently in progress.
func (g *FlameGraph) Depth() int { return len(g.stack) }

func (g *FlameGraph) push(ev eval.Evaluation) {
	node := &EvaluationNode{Evaluation: ev}
	if len(g.stack) == 0 {
		g.Roots = append(g.Roots, node)
	} else {
		parent := g.stack[len(g.stack)-1]
		parent.Children = append(parent.Children, node)
	}
	g.stack = append(g.stack, node)
}

// record stores the exit value of a node's own evaluation. Exits of a
// property wrapper carry the child's value and are not recorded.
func (g *FlameGraph) record(ev eval.Evaluation) {
	if ev.PropertyKey == "" && ev.Exception == nil {
		g.values[ev.Node] = ev.Value
	}
}

func (g *FlameGraph) pop() {
	if len(g.stack) > 0 {
		g.stack = g.stack[:len(g.stack)-1]
	}
}

// Builder maintains one flame graph per script id.
type Builder struct {
	mu     sync.Mutex
	graphs map[string]*FlameGraph
}

func NewBuilder() *Builder {
	return &Builder{graphs: make(map[string]*FlameGraph)}
}

// Graph returns the flame graph of scriptID, nil if no event was seen.
func (b *Builder) Graph(scriptID string) *FlameGraph {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.graphs[scriptID]
}

// ScriptIDs lists the scripts seen so far.
func (b *Builder) ScriptIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.graphs))
	for id := range b.graphs {
		ids = append(ids, id)
	}
	return ids
}

func (b *Builder) graph(scriptID string) *FlameGraph {
	b.mu.Lock()
	defer b.mu.Unlock()
	g, ok := b.graphs[scriptID]
	if !ok {
		g = newFlameGraph()
		b.graphs[scriptID] = g
	}
	return g
}

// before runs ahead of other consumers: enter pushes, exit records the value
// so consumers of the exit event can read it.
func (b *Builder) before(ev eval.Evaluation) *FlameGraph {
	g := b.graph(ev.ScriptID)
	if ev.Phase == eval.PhaseEnter {
		g.push(ev)
	} else {
		g.record(ev)
	}
	return g
}

func (b *Builder) after(ev eval.Evaluation, g *FlameGraph) {
	if ev.Phase == eval.PhaseExit {
		g.pop()
	}
}

// Interceptor returns the hook feeding b.
func (b *Builder) Interceptor() eval.Interceptor {
	return func(ev eval.Evaluation) {
		b.after(ev, b.before(ev))
	}
}

// Chain calls every non-nil interceptor in order.
func Chain(interceptors ...eval.Interceptor) eval.Interceptor {
	return func(ev eval.Evaluation) {
		for _, i := range interceptors {
			if i != nil {
				i(ev)
			}
		}
	}
}
