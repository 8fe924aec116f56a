package ast

import (
	"fmt"
	"sort"
	"strings"
)

// Node is one element of an ESTree shaped syntax tree.
//
// Fields holds the type specific children: *Node, []*Node or a primitive
// (string, float64, bool, nil). Nodes are treated as immutable once built.
type Node struct {
	Type   string
	Fields map[string]any
	Line   int
	Col    int
}

// New creates a node of the given type from alternating key/value pairs.
//
//	ast.New("Identifier", "name", "x")
func New(typ string, kv ...any) *Node {
	n := &Node{Type: typ, Fields: make(map[string]any, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("ast.New: key at %d is %T, not string", i, kv[i]))
		}
		n.Fields[key] = kv[i+1]
	}
	return n
}

// At sets the source position and returns the node.
func (n *Node) At(line, col int) *Node {
	n.Line, n.Col = line, col
	return n
}

// Pos returns the source position, 0 if unknown.
func (n *Node) Pos() (int, int) { return n.Line, n.Col }

// Get returns the raw field value.
func (n *Node) Get(key string) any {
	if n == nil || n.Fields == nil {
		return nil
	}
	return n.Fields[key]
}

// Has reports whether the field is present and not nil.
func (n *Node) Has(key string) bool {
	switch v := n.Get(key).(type) {
	case nil:
		return false
	case *Node:
		return v != nil
	}
	return true
}

// Node returns the field as a single child node, nil if absent.
func (n *Node) Node(key string) *Node {
	child, _ := n.Get(key).(*Node)
	return child
}

// Nodes returns the field as a list of children, nil if absent.
func (n *Node) Nodes(key string) []*Node {
	children, _ := n.Get(key).([]*Node)
	return children
}

// Str returns the field as a string, "" if absent.
func (n *Node) Str(key string) string {
	s, _ := n.Get(key).(string)
	return s
}

// Bool returns the field as a bool, false if absent.
func (n *Node) Bool(key string) bool {
	b, _ := n.Get(key).(bool)
	return b
}

// Walk visits n and all of its descendants in pre-order. Returning false from
// fn skips the children of the current node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, key := range n.keys() {
		switch v := n.Fields[key].(type) {
		case *Node:
			v.Walk(fn)
		case []*Node:
			for _, child := range v {
				child.Walk(fn)
			}
		}
	}
}

// keys returns the field names in a stable order.
func (n *Node) keys() []string {
	keys := make([]string, 0, len(n.Fields))
	for k := range n.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	var sb strings.Builder
	sb.WriteString(n.Type)
	switch {
	case n.Has("name"):
		fmt.Fprintf(&sb, "(%s)", n.Str("name"))
	case n.Type == "Literal":
		fmt.Fprintf(&sb, "(%v)", n.Get("value"))
	case n.Has("operator"):
		fmt.Fprintf(&sb, "(%s)", n.Str("operator"))
	}
	if n.Line > 0 {
		fmt.Fprintf(&sb, "@%d:%d", n.Line, n.Col)
	}
	return sb.String()
}
