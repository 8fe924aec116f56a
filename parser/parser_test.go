package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmorgan/metaes/ast"
)

func TestTokenize(t *testing.T) {
	tokens, err := Tokenize("let x = a === 'b\\n' // comment\n/* block\n */ y += 1.5")
	require.NoError(t, err)

	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []TokenType{
		TokLet, TokIdentifier, TokAssign, TokIdentifier, TokStrictEqual, TokString,
		TokIdentifier, TokPlusAssign, TokNumber, TokEOF,
	}, types)
	assert.Equal(t, "b\n", tokens[5].Literal)
	assert.Equal(t, 3, tokens[6].Line)
	assert.Equal(t, 4, tokens[6].Col)
}

func TestTokenizeBitwise(t *testing.T) {
	tokens, err := Tokenize("a >>>= b >> c <<= d & e &= f ^ g")
	require.NoError(t, err)
	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []TokenType{
		TokIdentifier, TokUshrAssign, TokIdentifier, TokShr, TokIdentifier, TokShlAssign,
		TokIdentifier, TokAnd, TokIdentifier, TokAndAssign, TokIdentifier, TokXor, TokIdentifier, TokEOF,
	}, types)
}

func TestTokenizeErrors(t *testing.T) {
	for _, src := range []string{"'open", "a # b", "/* never closed"} {
		_, err := Tokenize(src)
		assert.Error(t, err, src)
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"a || b && c", "(a || (b && c))"},
		{"a = b = c", "(a = (b = c))"},
		{"-a * b", "((-a) * b)"},
		{"a < b === c", "((a < b) === c)"},
		{"x ? y : z", "(x ? y : z)"},
		{"a.b[c](d)", "a.b[c](d)"},
		{"i++ + --j", "((i++) + (--j))"},
		{"a | b ^ c & d", "(a | (b ^ (c & d)))"},
		{"a & b === c", "(a & (b === c))"},
		{"1 << 2 + 3 < x >>> 1", "((1 << (2 + 3)) < (x >>> 1))"},
		{"a >>>= b |= 1", "(a >>>= (b |= 1))"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			expr, err := ParseExpression(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, render(expr))
		})
	}
}

// render prints expressions with explicit grouping.
func render(n *ast.Node) string {
	switch n.Type {
	case "Identifier":
		return n.Str("name")
	case "Literal":
		return n.Str("raw")
	case "BinaryExpression", "LogicalExpression", "AssignmentExpression":
		return "(" + render(n.Node("left")) + " " + n.Str("operator") + " " + render(n.Node("right")) + ")"
	case "UnaryExpression":
		return "(" + n.Str("operator") + render(n.Node("argument")) + ")"
	case "UpdateExpression":
		if n.Bool("prefix") {
			return "(" + n.Str("operator") + render(n.Node("argument")) + ")"
		}
		return "(" + render(n.Node("argument")) + n.Str("operator") + ")"
	case "ConditionalExpression":
		return "(" + render(n.Node("test")) + " ? " + render(n.Node("consequent")) + " : " + render(n.Node("alternate")) + ")"
	case "MemberExpression":
		if n.Bool("computed") {
			return render(n.Node("object")) + "[" + render(n.Node("property")) + "]"
		}
		return render(n.Node("object")) + "." + render(n.Node("property"))
	case "CallExpression":
		s := render(n.Node("callee")) + "("
		for i, arg := range n.Nodes("arguments") {
			if i > 0 {
				s += ", "
			}
			s += render(arg)
		}
		return s + ")"
	}
	return n.Type
}

func TestParseArrowFunctions(t *testing.T) {
	expr, err := ParseExpression("x => x + 1")
	require.NoError(t, err)
	assert.Equal(t, "ArrowFunctionExpression", expr.Type)
	assert.True(t, expr.Bool("expression"))
	assert.Equal(t, "BinaryExpression", expr.Node("body").Type)

	expr, err = ParseExpression("(a, ...rest) => { return a }")
	require.NoError(t, err)
	params := expr.Nodes("params")
	require.Len(t, params, 2)
	assert.Equal(t, "Identifier", params[0].Type)
	assert.Equal(t, "RestElement", params[1].Type)
	assert.Equal(t, "rest", params[1].Node("argument").Str("name"))
	assert.Equal(t, "BlockStatement", expr.Node("body").Type)
	assert.False(t, expr.Bool("expression"))

	expr, err = ParseExpression("(a = 1) => a")
	require.NoError(t, err)
	assert.Equal(t, "AssignmentPattern", expr.Nodes("params")[0].Type)

	// grouping is not mistaken for an arrow
	expr, err = ParseExpression("(a + b) * c")
	require.NoError(t, err)
	assert.Equal(t, "BinaryExpression", expr.Type)
}

func TestParseLiterals(t *testing.T) {
	expr, err := ParseExpression(`[1, , "two", ...rest]`)
	require.NoError(t, err)
	elems := expr.Nodes("elements")
	require.Len(t, elems, 4)
	assert.Equal(t, 1.0, elems[0].Get("value"))
	assert.Nil(t, elems[1])
	assert.Equal(t, "two", elems[2].Get("value"))
	assert.Equal(t, "SpreadElement", elems[3].Type)

	expr, err = ParseExpression(`{a: 1, "b": true, c, [k]: null}`)
	require.NoError(t, err)
	props := expr.Nodes("properties")
	require.Len(t, props, 4)
	assert.Equal(t, "a", props[0].Node("key").Str("name"))
	assert.Equal(t, "b", props[1].Node("key").Get("value"))
	assert.True(t, props[2].Bool("shorthand"))
	assert.True(t, props[3].Bool("computed"))
}

func TestParseStatements(t *testing.T) {
	src := `
var a = 1, b;
function f(x) { if (x) { return x } else return; }
for (let i = 0; i < 3; i++) { continue }
for (const item of items) break;
while (a) a--;
try { throw "e" } catch (err) { } finally { ; }
`
	prog, err := Parse(src)
	require.NoError(t, err)

	var types []string
	for _, stmt := range prog.Nodes("body") {
		types = append(types, stmt.Type)
	}
	assert.Equal(t, []string{
		"VariableDeclaration", "FunctionDeclaration", "ForStatement",
		"ForOfStatement", "WhileStatement", "TryStatement",
	}, types)

	body := prog.Nodes("body")
	assert.Len(t, body[0].Nodes("declarations"), 2)
	assert.False(t, body[0].Nodes("declarations")[1].Has("init"))
	assert.Equal(t, "f", body[1].Node("id").Str("name"))
	assert.Equal(t, "const", body[3].Node("left").Str("kind"))
	assert.Equal(t, "err", body[5].Node("handler").Node("param").Str("name"))
	assert.Equal(t, 2, body[0].Line)
}

func TestParseReturnWithoutArgument(t *testing.T) {
	prog, err := Parse("function f() { return\n1 }")
	require.NoError(t, err)
	body := prog.Nodes("body")[0].Node("body").Nodes("body")
	require.Len(t, body, 2)
	assert.False(t, body[0].Has("argument"))
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"1 +",
		"function () {}",
		"1 = 2",
		"try {}",
		"const x;",
		"{ a",
		"for (;;",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := Parse(src)
			require.Error(t, err)
			var pe ParseException
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestParseExceptionMessage(t *testing.T) {
	_, err := Parse("let a = 1\nlet b = ;")
	require.Error(t, err)
	pe, ok := err.(ParseException)
	require.True(t, ok)
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, "let b = ;", pe.Code)
	assert.Contains(t, pe.Error(), "Parse error at line 2")
}
