// Package ecma provides the handlers for the statements and operators of the
// scripting language on top of the core handlers in package eval.
package ecma

import (
	"github.com/xmorgan/metaes/eval"
)

var handlers = map[string]eval.Handler{
	"VariableDeclaration":   variableDeclaration,
	"FunctionDeclaration":   functionDeclaration,
	"EmptyStatement":        emptyStatement,
	"IfStatement":           ifStatement,
	"ConditionalExpression": ifStatement,
	"BinaryExpression":      binaryExpression,
	"LogicalExpression":     logicalExpression,
	"UnaryExpression":       unaryExpression,
	"UpdateExpression":      updateExpression,
	"AssignmentExpression":  assignmentExpression,
	"ArrayExpression":       arrayExpression,
	"SpreadElement":         spreadElement,
	"ObjectExpression":      objectExpression,
	"SequenceExpression":    sequenceExpression,
	"ThrowStatement":        throwStatement,
	"TryStatement":          tryStatement,
	"WhileStatement":        whileStatement,
	"ForStatement":          forStatement,
	"ForOfStatement":        forOfStatement,
	"BreakStatement":        breakStatement,
	"ContinueStatement":     continueStatement,
	"GetProperty":           getProperty,
}

// Interpreters returns a registry with the language handlers, falling back
// to eval.BaseInterpreters.
func Interpreters() *eval.Registry {
	return eval.NewRegistry(eval.BaseInterpreters(), handlers)
}

// Config returns a configuration using Interpreters.
func Config() *eval.Config {
	return &eval.Config{Interpreters: Interpreters()}
}

// NewContext creates an evaluation context for the language over env.
func NewContext(env *eval.Environment) *eval.Context {
	return eval.NewContext(nil, nil, env, Config())
}

// Eval evaluates source in env and returns its value.
func Eval(source string, env *eval.Environment) (eval.Value, error) {
	return eval.EvalSync(NewContext(env), source, nil)
}
