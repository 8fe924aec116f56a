package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/mattn/go-isatty"

	"github.com/xmorgan/metaes/eval"
)

// ColorMode selects when the printer emits ANSI colours.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode parses auto, always or never.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("unknown color mode %q", s)
}

const (
	ansiReset = "\x1b[0m"
	ansiEnter = "\x1b[36m"
	ansiExit  = "\x1b[32m"
	ansiError = "\x1b[31m"
)

var valueDumper = spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	MaxDepth:                4,
}

// Printer writes one indented line per interception event.
type Printer struct {
	mu      sync.Mutex
	w       io.Writer
	color   bool
	verbose bool
	depth   int
}

type PrinterOption func(*Printer)

// WithColor overrides terminal detection.
func WithColor(mode ColorMode) PrinterOption {
	return func(p *Printer) {
		switch mode {
		case ColorAlways:
			p.color = true
		case ColorNever:
			p.color = false
		}
	}
}

// WithValues dumps values structurally instead of converting them to strings.
func WithValues(verbose bool) PrinterOption {
	return func(p *Printer) { p.verbose = verbose }
}

func NewPrinter(w io.Writer, opts ...PrinterOption) *Printer {
	p := &Printer{w: w, color: isTerminal(w)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func isTerminal(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Interceptor returns the hook printing to p.
func (p *Printer) Interceptor() eval.Interceptor {
	return p.print
}

func (p *Printer) print(ev eval.Evaluation) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ev.Phase == eval.PhaseExit && p.depth > 0 {
		p.depth--
	}
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", p.depth))

	label := ev.Node.String()
	if ev.PropertyKey != "" {
		label += "." + ev.PropertyKey
	}
	switch {
	case ev.Phase == eval.PhaseEnter:
		sb.WriteString(p.paint(ansiEnter, "enter "+label))
		p.depth++
	case ev.Exception != nil:
		sb.WriteString(p.paint(ansiError, "exit  "+label+" ! "+ev.Exception.Error()))
	default:
		sb.WriteString(p.paint(ansiExit, "exit  "+label))
		sb.WriteString(" = ")
		sb.WriteString(p.value(ev.Value))
	}
	sb.WriteByte('\n')
	io.WriteString(p.w, sb.String())
}

func (p *Printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

func (p *Printer) value(v eval.Value) string {
	if !p.verbose {
		if s, ok := v.(string); ok {
			return fmt.Sprintf("%q", s)
		}
		return eval.ToString(v)
	}
	return valueDumper.Sprintf("%+v", v)
}
