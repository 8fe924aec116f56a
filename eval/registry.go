package eval

import (
	"log/slog"
	"sort"

	"github.com/xmorgan/metaes/ast"
)

// Continuation receives the value of a successful evaluation step.
type Continuation func(Value)

// ErrorContinuation receives the failure or control signal of a step.
type ErrorContinuation func(*Exception)

// Handler evaluates one node type. It must eventually call exactly one of c
// or cerr, unless the continuations were handed to a receiver that decides
// otherwise.
type Handler func(n *ast.Node, env *Environment, cfg *Config, c Continuation, cerr ErrorContinuation)

// Registry maps node types to handlers, falling back to a parent registry
// for types it does not define.
type Registry struct {
	parent   *Registry
	handlers map[string]Handler
}

// NewRegistry creates a registry delegating unknown types to parent.
func NewRegistry(parent *Registry, handlers map[string]Handler) *Registry {
	r := &Registry{parent: parent, handlers: make(map[string]Handler, len(handlers))}
	for typ, h := range handlers {
		r.handlers[typ] = h
	}
	return r
}

// Register adds or replaces the handler for typ in this registry.
func (r *Registry) Register(typ string, h Handler) {
	if _, ok := r.handlers[typ]; ok {
		slog.Debug("handler overridden", "type", typ)
	}
	r.handlers[typ] = h
}

// Lookup finds the handler for typ in this registry or its ancestors.
func (r *Registry) Lookup(typ string) (Handler, bool) {
	for reg := r; reg != nil; reg = reg.parent {
		if h, ok := reg.handlers[typ]; ok {
			return h, true
		}
	}
	return nil, false
}

// Parent returns the fallback registry.
func (r *Registry) Parent() *Registry { return r.parent }

// Types lists every node type resolvable through r, sorted.
func (r *Registry) Types() []string {
	seen := map[string]bool{}
	var types []string
	for reg := r; reg != nil; reg = reg.parent {
		for typ := range reg.handlers {
			if !seen[typ] {
				seen[typ] = true
				types = append(types, typ)
			}
		}
	}
	sort.Strings(types)
	return types
}

var base *Registry

func init() {
	base = NewRegistry(nil, baseHandlers())
}

// BaseInterpreters returns the shared registry of core handlers. Extend it
// with NewRegistry(BaseInterpreters(), ...) rather than registering into it.
func BaseInterpreters() *Registry { return base }
