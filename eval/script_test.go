package eval

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmorgan/metaes/ast"
	"github.com/xmorgan/metaes/parser"
)

func TestCreateScriptCaches(t *testing.T) {
	a, err := CreateScript("1 + 2 // cached")
	require.NoError(t, err)
	b, err := CreateScript("1 + 2 // cached")
	require.NoError(t, err)
	c, err := CreateScript("1 + 3 // cached")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, c.ID)
	assert.Equal(t, "Program", a.AST.Type)

	_, err = CreateScript("1 +")
	var pe parser.ParseException
	assert.ErrorAs(t, err, &pe)
}

func TestEscapedReturn(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, nil))

	_, errs := run(t, "return 1", nil, cfg)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrEscapedReturn))
	assert.Equal(t, 1.0, errs[0].Value)
	assert.Contains(t, buf.String(), "return signal escaped")
}

func TestContextEvaluate(t *testing.T) {
	var got []Value
	env := NewEnvironment(map[string]Value{"a": 2.0})
	ctx := NewContext(func(v Value) { got = append(got, v) }, nil, env, testConfig())

	ctx.Evaluate("a * 3", nil, nil, nil, nil)
	ctx.Evaluate(ast.New("Program", "body", []*ast.Node{
		ast.New("ExpressionStatement", "expression", ast.New("Identifier", "name", "a")),
	}), nil, nil, nil, nil)
	assert.Equal(t, []Value{6.0, 2.0}, got)

	var exc *Exception
	ctx.Evaluate(42, nil, func(e *Exception) { exc = e }, nil, nil)
	require.NotNil(t, exc)
	assert.Equal(t, KindTypeError, exc.Type)

	other := NewEnvironment(map[string]Value{"a": 5.0})
	ctx.Evaluate("a", nil, nil, other, nil)
	assert.Equal(t, 5.0, got[len(got)-1])
	assert.Same(t, env, ctx.Env())
}

func TestEvalSync(t *testing.T) {
	v, err := EvalSync(NewContext(nil, nil, nil, testConfig()), "(x => x + 1)(4)", nil)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	_, err = EvalSync(nil, "nothing", nil)
	require.Error(t, err)
	var exc *Exception
	require.ErrorAs(t, err, &exc)
	assert.Equal(t, KindReferenceError, exc.Type)

	_, err = EvalSync(nil, "1 +", nil)
	assert.Error(t, err)

	script := ScriptFromAST(ast.New("Program", "body", []*ast.Node{}))
	v, err = EvalSync(nil, script, nil)
	require.NoError(t, err)
	assert.Equal(t, Undefined, v)
}

func TestExceptionError(t *testing.T) {
	exc := NewException(KindTypeError, "bad", ast.New("Identifier", "name", "x").At(1, 2))
	assert.Equal(t, "TypeError: bad (at Identifier(x)@1:2)", exc.Error())
	assert.Equal(t, "ThrowStatement: 3", Thrown(3.0).Error())
	assert.Same(t, exc, Thrown(exc))

	wrapped := ToException(errors.New("host"))
	assert.Equal(t, KindError, wrapped.Type)
	assert.Equal(t, "host", wrapped.Message)
	assert.Nil(t, ToException(nil))
}
