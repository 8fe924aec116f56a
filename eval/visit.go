package eval

import "github.com/xmorgan/metaes/ast"

// Visitor evaluates one element of a sequence.
type Visitor[T any] func(item T, c Continuation, cerr ErrorContinuation)

// VisitArray runs fn over items in order and passes the results to c, or
// the first failure to cerr. Nothing is started after a failure.
//
// Iterations are queued and drained by a loop instead of recursing, so
// the host stack does not grow with len(items). An element's continuation
// may fire again later (a captured continuation being resumed); results
// accumulated after that index are then discarded and evaluation proceeds
// from there again.
func VisitArray[T any](items []T, fn Visitor[T], c func([]Value), cerr ErrorContinuation) {
	type task struct {
		index       int
		accumulated []Value
	}
	var tasks []task
	// done is true while no drain loop is running.
	done := true
	visited := make([]bool, len(items))

	var loop func(index int, accumulated []Value)
	execute := func() {
		done = false
		for len(tasks) > 0 {
			t := tasks[0]
			tasks = tasks[1:]
			loop(t.index, t.accumulated)
		}
		done = true
	}

	loop = func(index int, accumulated []Value) {
		if index >= len(items) {
			c(accumulated)
			return
		}
		fn(items[index], func(v Value) {
			next := accumulated
			if visited[index] {
				// replay: leave the results already handed out untouched
				next = make([]Value, index, index+1)
				copy(next, accumulated[:index])
			}
			next = append(next, v)
			visited[index] = true
			tasks = append(tasks, task{index + 1, next})
			if done {
				execute()
			}
		}, cerr)
	}

	loop(0, make([]Value, 0, len(items)))
}

// EvaluateArray evaluates nodes in order in env.
func EvaluateArray(nodes []*ast.Node, env *Environment, cfg *Config, c func([]Value), cerr ErrorContinuation) {
	VisitArray(nodes, func(n *ast.Node, c Continuation, cerr ErrorContinuation) {
		Evaluate(n, env, cfg, c, cerr)
	}, c, cerr)
}

// Loop runs iteration until it stops asking for more. Each call to next
// schedules another iteration; iterations run from a drain loop so an
// unbounded number of them does not grow the host stack. next may be called
// later from outside the current iteration, which resumes the loop.
func Loop(iteration func(next func())) {
	pending := 0
	running := false
	var next func()
	next = func() {
		pending++
		if running {
			return
		}
		running = true
		for pending > 0 {
			pending--
			iteration(next)
		}
		running = false
	}
	next()
}
