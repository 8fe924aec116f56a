package eval

import (
	"sync"

	"github.com/dgryski/go-metro"
	"github.com/google/uuid"

	"github.com/xmorgan/metaes/ast"
	"github.com/xmorgan/metaes/parser"
)

// Script is a parsed program with an identity. The ID is stamped into the
// configuration of its evaluation and from there into every Evaluation.
type Script struct {
	ID     string
	Source string
	AST    *ast.Node
}

// scriptCache reuses parsed scripts, keyed by a hash of their source.
var scriptCache = struct {
	sync.Mutex
	entries map[uint64][]*Script
}{entries: make(map[uint64][]*Script)}

// CreateScript parses source, reusing a previous parse of identical text.
func CreateScript(source string) (*Script, error) {
	key := metro.Hash64([]byte(source), 0)

	scriptCache.Lock()
	for _, s := range scriptCache.entries[key] {
		if s.Source == source {
			scriptCache.Unlock()
			return s, nil
		}
	}
	scriptCache.Unlock()

	node, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	s := &Script{ID: uuid.NewString(), Source: source, AST: node}

	scriptCache.Lock()
	defer scriptCache.Unlock()
	for _, cached := range scriptCache.entries[key] {
		if cached.Source == source {
			return cached, nil
		}
	}
	scriptCache.entries[key] = append(scriptCache.entries[key], s)
	return s, nil
}

// ScriptFromAST wraps an already built tree, for example one decoded with
// ast.FromJSON. It is not cached.
func ScriptFromAST(n *ast.Node) *Script {
	return &Script{ID: uuid.NewString(), AST: n}
}

// EvaluateScript is the entry point for evaluating a whole script. A return
// signal reaching this level is reported as ErrEscapedReturn.
func EvaluateScript(s *Script, c Continuation, cerr ErrorContinuation, env *Environment, cfg *Config) {
	if env == nil {
		env = NewEnvironment(nil)
	}
	cfg = cfg.WithScriptID(s.ID)
	Evaluate(s.AST, env, cfg, c, func(exc *Exception) {
		if exc.Type == KindReturn {
			cfg.logger().Error("return signal escaped to script level", "script", s.ID, "at", exc.Location.String())
			cerr(&Exception{
				Type:     KindError,
				Message:  ErrEscapedReturn.Error(),
				Value:    exc.Value,
				Location: exc.Location,
				Cause:    ErrEscapedReturn,
			})
			return
		}
		cerr(exc)
	})
}
