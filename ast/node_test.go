package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndAccessors(t *testing.T) {
	id := New("Identifier", "name", "x").At(3, 4)
	call := New("CallExpression", "callee", id, "arguments", []*Node{New("Literal", "value", 1.0)})

	assert.Equal(t, "x", id.Str("name"))
	assert.Equal(t, id, call.Node("callee"))
	assert.Len(t, call.Nodes("arguments"), 1)
	assert.Nil(t, call.Node("missing"))
	assert.False(t, call.Has("missing"))
	assert.Equal(t, "Identifier(x)@3:4", id.String())

	line, col := id.Pos()
	assert.Equal(t, 3, line)
	assert.Equal(t, 4, col)
}

func TestWalkPreOrder(t *testing.T) {
	tree := New("BinaryExpression",
		"operator", "+",
		"left", New("Identifier", "name", "a"),
		"right", New("Literal", "value", 2.0))

	var seen []string
	tree.Walk(func(n *Node) bool {
		seen = append(seen, n.Type)
		return true
	})
	assert.Equal(t, []string{"BinaryExpression", "Identifier", "Literal"}, seen)
}

func TestFromJSON(t *testing.T) {
	src := `{
	  "type": "Program",
	  "body": [{
	    "type": "ExpressionStatement",
	    "loc": {"start": {"line": 1, "column": 0}},
	    "expression": {
	      "type": "ArrayExpression",
	      "elements": [{"type": "Literal", "value": 1}, null, {"type": "Literal", "value": "s"}]
	    }
	  }],
	  "range": [0, 10]
	}`
	prog, err := FromJSON([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "Program", prog.Type)
	assert.False(t, prog.Has("range"))
	stmt := prog.Nodes("body")[0]
	assert.Equal(t, 1, stmt.Line)
	elems := stmt.Node("expression").Nodes("elements")
	require.Len(t, elems, 3)
	assert.Equal(t, 1.0, elems[0].Get("value"))
	assert.Nil(t, elems[1])
	assert.Equal(t, "s", elems[2].Get("value"))
}

func TestFromJSONErrors(t *testing.T) {
	_, err := FromJSON([]byte(`[1, 2]`))
	assert.Error(t, err)

	_, err = FromJSON([]byte(`{"body": []}`))
	assert.Error(t, err)
}

func TestToJSONRoundTrip(t *testing.T) {
	tree := New("Program", "body", []*Node{
		New("ExpressionStatement", "expression", New("Identifier", "name", "a").At(2, 1)),
	})
	data, err := ToJSON(tree)
	require.NoError(t, err)

	back, err := FromJSON(data)
	require.NoError(t, err)
	id := back.Nodes("body")[0].Node("expression")
	assert.Equal(t, "a", id.Str("name"))
	assert.Equal(t, 2, id.Line)
}
