// Command metaes evaluates a script file with the continuation passing
// interpreter. The input is either source text or an ESTree JSON document.
//
//	metaes [-config metaes.yaml] [-trace] [-color auto|always|never] file.js
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/xmorgan/metaes/ast"
	"github.com/xmorgan/metaes/ecma"
	"github.com/xmorgan/metaes/eval"
	"github.com/xmorgan/metaes/parser"
	"github.com/xmorgan/metaes/trace"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("metaes", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML configuration file")
	traceFlag := fs.Bool("trace", false, "print every evaluation step to stderr")
	color := fs.String("color", "", "trace colours: auto, always or never")
	verbose := fs.Bool("verbose", false, "dump traced values structurally")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn or error")
	assign := fs.String("undeclared", "", "assignment to undeclared names: error, global or local")
	dumpAST := fs.Bool("dump-ast", false, "dump the syntax tree instead of evaluating")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected exactly one input file")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	// explicitly set flags win over the file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "trace":
			cfg.Trace = *traceFlag
		case "color":
			cfg.Color = *color
		case "verbose":
			cfg.Verbose = *verbose
		case "log-level":
			cfg.LogLevel = *logLevel
		case "undeclared":
			cfg.UndeclaredAssignment = *assign
		case "dump-ast":
			cfg.DumpAST = *dumpAST
		}
	})
	if err := cfg.validate(); err != nil {
		return err
	}

	level, _ := cfg.level()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	path := fs.Arg(0)
	tree, err := load(path)
	if err != nil {
		return err
	}
	if cfg.DumpAST {
		spew.Fdump(stdout, tree)
		return nil
	}

	evalCfg := ecma.Config()
	evalCfg.Logger = logger
	evalCfg.UndeclaredAssignment, _ = eval.ParseAssignPolicy(cfg.UndeclaredAssignment)
	if cfg.Trace {
		mode, _ := trace.ParseColorMode(cfg.Color)
		evalCfg.Interceptor = trace.NewPrinter(stderr, trace.WithColor(mode), trace.WithValues(cfg.Verbose)).Interceptor()
	}

	script := eval.ScriptFromAST(tree)
	start := time.Now()
	v, err := eval.EvalSync(eval.NewContext(nil, nil, eval.NewEnvironment(ecma.Globals(stdout)), evalCfg), script, nil)
	logger.Info("script evaluated", "file", path, "script", script.ID, "duration", time.Since(start), "failed", err != nil)
	if err != nil {
		return err
	}
	if v != eval.Undefined {
		fmt.Fprintln(stdout, eval.ToString(v))
	}
	return nil
}

// load reads a .json file as an ESTree document and anything else as source.
func load(path string) (*ast.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ast.FromJSON(data)
	}
	return parser.Parse(string(data))
}
