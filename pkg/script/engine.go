// Package script evaluates timberframe build scripts. Scripts are zygomys
// Lisp with a few builtins that describe what to build:
//
//	; 5 x 4 m footprint, 3 m walls
//	(joinery :reveal 0.4 :padding 0.02)
//	(part :roof-beam :geometry "models/oak-beam.obj" :material "models/oak-beam.mtl")
//	(building "cabin" :width 5 :height 3 :depth 4)
//
// Plain Lisp (def, arithmetic, loops) is available for computing values.
package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/timberframe/pkg/config"
	"github.com/chazu/timberframe/pkg/part"
)

// EvalError is a non-fatal problem in user code, such as a parse error or
// a builtin rejecting its arguments.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Request is one (building ...) call.
type Request struct {
	Name       string
	Dimensions part.Dimensions
}

// Program is everything a script asked for. Config starts from the
// engine's base configuration with the script's joinery and part
// overrides applied.
type Program struct {
	Requests []Request
	Config   config.Config
}

// Last returns the final request, which interactive callers build.
func (p *Program) Last() (Request, bool) {
	if p == nil || len(p.Requests) == 0 {
		return Request{}, false
	}
	return p.Requests[len(p.Requests)-1], true
}

// zlispMu serializes evaluations across engines. zygomys writes package
// globals while building an environment and reads them while parsing.
var zlispMu sync.Mutex

// Engine evaluates scripts. It is safe for concurrent use; each call to
// Evaluate runs in a fresh sandboxed environment, one at a time per process.
type Engine struct {
	base config.Config

	mu         sync.Mutex
	generation uint64
}

// NewEngine returns an engine whose programs start from base.
func NewEngine(base config.Config) *Engine {
	return &Engine{base: base}
}

// Evaluate runs source and returns the program it describes.
//
// Return semantics:
//   - On success: program + nil errors + nil error
//   - On parse/eval failure: nil program + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): nil + nil + error
func (e *Engine) Evaluate(source string) (*Program, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		p, evalErrs, err := e.evaluate(source)
		ch <- evalResult{program: p, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

func (e *Engine) newProgram() *Program {
	cfg := e.base
	cfg.Library = make(part.Library, len(e.base.Library))
	for r, id := range e.base.Library {
		cfg.Library[r] = id
	}
	return &Program{Config: cfg}
}

func (e *Engine) evaluate(source string) (*Program, []EvalError, error) {
	p := e.newProgram()
	if strings.TrimSpace(source) == "" {
		return p, nil, nil
	}

	zlispMu.Lock()
	defer zlispMu.Unlock()

	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, p)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if err := p.Config.Validate(); err != nil {
		return nil, []EvalError{{Message: err.Error()}}, nil
	}
	return p, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalErrors, keeping the
// line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
