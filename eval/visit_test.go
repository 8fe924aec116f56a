package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmorgan/metaes/ast"
)

func identity(item Value, c Continuation, cerr ErrorContinuation) { c(item) }

func TestVisitArrayOrder(t *testing.T) {
	var results [][]Value
	VisitArray([]Value{1.0, 2.0, 3.0}, identity, func(v []Value) { results = append(results, v) }, func(e *Exception) {
		t.Fatal(e)
	})
	require.Len(t, results, 1)
	assert.Equal(t, []Value{1.0, 2.0, 3.0}, results[0])
}

func TestVisitArrayEmpty(t *testing.T) {
	called := false
	VisitArray([]Value{}, identity, func(v []Value) {
		called = true
		assert.Empty(t, v)
	}, func(*Exception) {})
	assert.True(t, called)
}

func TestVisitArrayStopsOnFailure(t *testing.T) {
	var started []int
	var got *Exception
	VisitArray([]int{0, 1, 2, 3}, func(i int, c Continuation, cerr ErrorContinuation) {
		started = append(started, i)
		if i == 1 {
			cerr(NewException(KindError, "fail", nil))
			return
		}
		c(i)
	}, func([]Value) { t.Fatal("unexpected success") }, func(e *Exception) { got = e })

	assert.Equal(t, []int{0, 1}, started)
	require.NotNil(t, got)
	assert.Equal(t, "fail", got.Message)
}

func TestVisitArrayStackSafety(t *testing.T) {
	items := make([]int, 10000)
	for i := range items {
		items[i] = i
	}
	var out []Value
	VisitArray(items, func(i int, c Continuation, cerr ErrorContinuation) { c(i * 2) },
		func(v []Value) { out = v }, func(e *Exception) { t.Fatal(e) })
	require.Len(t, out, 10000)
	assert.Equal(t, 19998, out[9999])

	nodes := make([]*ast.Node, 10000)
	for i := range nodes {
		nodes[i] = ast.New("Literal", "value", float64(i))
	}
	out = nil
	EvaluateArray(nodes, NewEnvironment(nil), nil, func(v []Value) { out = v }, func(e *Exception) { t.Fatal(e) })
	require.Len(t, out, 10000)
	assert.Equal(t, 9999.0, out[9999])
}

func TestVisitArrayReplayTruncatesTail(t *testing.T) {
	var resume Continuation
	round := 0
	var results [][]Value

	VisitArray([]string{"a", "b", "c"}, func(item string, c Continuation, cerr ErrorContinuation) {
		switch item {
		case "b":
			resume = c
			c("v1")
		case "c":
			round++
			c("c" + string(rune('0'+round)))
		default:
			c(item)
		}
	}, func(v []Value) { results = append(results, v) }, func(e *Exception) { t.Fatal(e) })

	require.NotNil(t, resume)
	resume("v1'")

	require.Len(t, results, 2)
	assert.Equal(t, []Value{"a", "v1", "c1"}, results[0])
	assert.Equal(t, []Value{"a", "v1'", "c2"}, results[1])
}

func TestVisitArrayDeferredContinuation(t *testing.T) {
	var pending Continuation
	var out []Value
	VisitArray([]int{0, 1, 2}, func(i int, c Continuation, cerr ErrorContinuation) {
		if i == 1 {
			pending = c
			return
		}
		c(i)
	}, func(v []Value) { out = v }, func(e *Exception) { t.Fatal(e) })

	assert.Nil(t, out)
	require.NotNil(t, pending)
	pending("later")
	assert.Equal(t, []Value{0, "later", 2}, out)
}

func TestLoop(t *testing.T) {
	count := 0
	Loop(func(next func()) {
		count++
		if count < 100000 {
			next()
		}
	})
	assert.Equal(t, 100000, count)

	var resume func()
	count = 0
	Loop(func(next func()) {
		count++
		if count == 3 {
			resume = next
			return
		}
		if count < 5 {
			next()
		}
	})
	assert.Equal(t, 3, count)
	require.NotNil(t, resume)
	resume()
	assert.Equal(t, 5, count)
}
