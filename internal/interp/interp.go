// Package interp executes an ir.Module directly, so compiled programs can
// run without an LLVM toolchain. The print externals behave like p0lib.c.
package interp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"p0c/internal/ir"
)

// ErrTrap marks faults of the running program (division by zero, bad
// memory access, exhausted limits) as opposed to malformed modules.
var ErrTrap = errors.New("trap")

type Options struct {
	Stdout io.Writer
	// MaxSteps bounds executed instructions; 0 means no bound.
	MaxSteps int64
	// MaxDepth bounds nested calls; 0 means 10000.
	MaxDepth int
}

type Runtime struct {
	mod     *ir.Module
	funcs   map[string]*function
	externs map[string]ir.External
	globals map[string]*memory
	out     io.Writer

	steps    int64
	maxSteps int64
	depth    int
	maxDepth int
}

// function caches label positions of an ir.Func.
type function struct {
	fn     *ir.Func
	labels map[string]int
}

// New prepares m for execution: globals are initialised once.
func New(m *ir.Module, opts Options) (*Runtime, error) {
	rt := &Runtime{
		mod:      m,
		funcs:    map[string]*function{},
		externs:  map[string]ir.External{},
		globals:  map[string]*memory{},
		out:      opts.Stdout,
		maxSteps: opts.MaxSteps,
		maxDepth: opts.MaxDepth,
	}
	if rt.out == nil {
		rt.out = os.Stdout
	}
	if rt.maxDepth == 0 {
		rt.maxDepth = 10000
	}
	for _, e := range m.Externals {
		rt.externs[e.Name] = e
	}
	for i := range m.Funcs {
		f := &m.Funcs[i]
		labels := map[string]int{}
		for pc, ins := range f.Body {
			if l, ok := ins.(*ir.Label); ok {
				labels[l.Name] = pc
			}
		}
		rt.funcs[f.Name] = &function{fn: f, labels: labels}
	}
	// Allocate every global before initialising any, so initialisers may
	// refer to later globals.
	for _, g := range m.Globals {
		rt.globals[g.Name] = &memory{name: "@" + g.Name, vals: scalars(g.Ty, nil), constant: g.Constant}
	}
	for _, g := range m.Globals {
		if err := rt.initGlobal(g); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

func (rt *Runtime) initGlobal(g ir.Global) error {
	mem := rt.globals[g.Name]
	vals, err := rt.flatConst(g.Value, nil)
	if err != nil {
		return fmt.Errorf("global @%s: %w", g.Name, err)
	}
	if len(vals) != len(mem.vals) {
		return fmt.Errorf("global @%s: initialiser has %d scalars, type has %d", g.Name, len(vals), len(mem.vals))
	}
	copy(mem.vals, vals)
	return nil
}

// flatConst appends the scalars of a constant.
func (rt *Runtime) flatConst(c ir.Constant, out []Value) ([]Value, error) {
	if a, ok := c.(ir.ArrayConst); ok {
		for _, v := range a.Values {
			var err error
			if out, err = rt.flatConst(v, out); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	v, err := rt.constant(c)
	if err != nil {
		return nil, err
	}
	return append(out, v), nil
}

// Run executes @main and returns its exit status.
func Run(m *ir.Module, opts Options) (int32, error) {
	rt, err := New(m, opts)
	if err != nil {
		return 0, err
	}
	return rt.Main()
}

// RunMain executes @main and returns what it printed.
func RunMain(m *ir.Module) (string, error) {
	var buf bytes.Buffer
	code, err := Run(m, Options{Stdout: &buf})
	if err != nil {
		return buf.String(), err
	}
	if code != 0 {
		return buf.String(), fmt.Errorf("main returned %d", code)
	}
	return buf.String(), nil
}

func (rt *Runtime) Main() (int32, error) {
	f, ok := rt.funcs["main"]
	if !ok {
		return 0, fmt.Errorf("missing main")
	}
	if len(f.fn.Params) != 0 {
		return 0, fmt.Errorf("main must have no parameters")
	}
	v, err := rt.call("main", nil)
	if err != nil {
		return 0, err
	}
	if v.K != VInt {
		return 0, nil
	}
	return int32(v.I), nil
}

func (rt *Runtime) call(name string, args []Value) (Value, error) {
	if f, ok := rt.funcs[name]; ok {
		if len(args) != len(f.fn.Params) {
			return Value{}, fmt.Errorf("@%s takes %d arguments, got %d", name, len(f.fn.Params), len(args))
		}
		if rt.depth >= rt.maxDepth {
			return Value{}, fmt.Errorf("%w: call depth exceeds %d", ErrTrap, rt.maxDepth)
		}
		rt.depth++
		defer func() { rt.depth-- }()
		v, err := rt.exec(f, args)
		if err != nil {
			return Value{}, fmt.Errorf("in @%s: %w", name, err)
		}
		return v, nil
	}
	if _, ok := rt.externs[name]; ok {
		return Value{}, rt.callRuntime(name, args)
	}
	return Value{}, fmt.Errorf("call to undefined function @%s", name)
}
