package ast

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// position fields produced by acorn/esprima that are folded into Line/Col.
var positionKeys = map[string]bool{"loc": true, "range": true, "start": true, "end": true}

// FromJSON decodes an ESTree JSON document into a node tree.
func FromJSON(data []byte) (*Node, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode ESTree json: %w", err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode ESTree json: root is %T, want object", raw)
	}
	n, err := fromObject(obj)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func fromObject(obj map[string]any) (*Node, error) {
	typ, ok := obj["type"].(string)
	if !ok {
		return nil, fmt.Errorf("decode ESTree json: object without type: %v", obj)
	}
	n := &Node{Type: typ, Fields: make(map[string]any, len(obj))}
	if loc, ok := obj["loc"].(map[string]any); ok {
		if start, ok := loc["start"].(map[string]any); ok {
			line, _ := start["line"].(float64)
			col, _ := start["column"].(float64)
			n.Line, n.Col = int(line), int(col)
		}
	}
	for k, v := range obj {
		if k == "type" || positionKeys[k] {
			continue
		}
		conv, err := fromValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", typ, k, err)
		}
		n.Fields[k] = conv
	}
	return n, nil
}

func fromValue(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		if _, ok := x["type"].(string); ok {
			return fromObject(x)
		}
		// regex literal payloads and similar plain objects stay as maps
		return x, nil
	case []any:
		if !allNodes(x) {
			return x, nil
		}
		nodes := make([]*Node, len(x))
		for i, item := range x {
			if item == nil {
				continue // array holes: [a, , b]
			}
			child, err := fromObject(item.(map[string]any))
			if err != nil {
				return nil, err
			}
			nodes[i] = child
		}
		return nodes, nil
	default:
		return v, nil
	}
}

func allNodes(items []any) bool {
	for _, item := range items {
		if item == nil {
			continue
		}
		obj, ok := item.(map[string]any)
		if !ok {
			return false
		}
		if _, ok := obj["type"].(string); !ok {
			return false
		}
	}
	return true
}

// ToJSON encodes a node tree as ESTree JSON.
func ToJSON(n *Node) ([]byte, error) {
	return json.Marshal(toObject(n))
}

func toObject(n *Node) any {
	if n == nil {
		return nil
	}
	obj := make(map[string]any, len(n.Fields)+2)
	obj["type"] = n.Type
	if n.Line > 0 {
		obj["loc"] = map[string]any{"start": map[string]any{"line": n.Line, "column": n.Col}}
	}
	for k, v := range n.Fields {
		obj[k] = toValue(v)
	}
	return obj
}

func toValue(v any) any {
	switch x := v.(type) {
	case *Node:
		return toObject(x)
	case []*Node:
		items := make([]any, len(x))
		for i, child := range x {
			items[i] = toObject(child)
		}
		return items
	default:
		return v
	}
}
