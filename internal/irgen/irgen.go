// Package irgen lowers a checked P0 program to an ir.Module.
package irgen

import (
	"errors"
	"fmt"

	"p0c/internal/builder"
	"p0c/internal/ir"
	"p0c/internal/names"
	"p0c/internal/stdlib"
	"p0c/internal/typecheck"
)

// ErrInternal wraps every failure of Compile. A checked program never
// produces one.
var ErrInternal = errors.New("irgen: internal error")

type Options struct {
	// ModuleID is written to the module header; "p0" when empty.
	ModuleID string
}

// Compile lowers prog. The output depends only on prog and opts.
func Compile(prog *typecheck.Program, opts Options) (*ir.Module, error) {
	if prog == nil {
		return nil, fmt.Errorf("%w: nil program", ErrInternal)
	}
	id := opts.ModuleID
	if id == "" {
		id = "p0"
	}
	g := &gen{mod: builder.NewModule(id)}
	for _, e := range stdlib.Externs() {
		g.mod.DeclareExternal(e.Name, e.Args, e.Result)
	}
	for _, d := range prog.Decls {
		if err := g.genDecl(d); err != nil {
			return nil, err
		}
	}
	if err := g.genMain(prog.Stmt); err != nil {
		return nil, err
	}
	return g.mod.Build(), nil
}

type gen struct {
	mod *builder.Module
	fn  *builder.Function
}

func internalf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInternal}, args...)...)
}

func (g *gen) genDecl(d typecheck.Decl) error {
	switch d := d.(type) {
	case *typecheck.ConstDecl:
		return g.genGlobal(d.Name, d.Value, true)
	case *typecheck.VarDecl:
		return g.genGlobal(d.Name, d.Value, false)
	case *typecheck.FuncDecl:
		return g.genFunc(d)
	}
	return internalf("unexpected declaration %T", d)
}

func (g *gen) genGlobal(name string, v typecheck.Literal, constant bool) error {
	c, err := literalConst(v)
	if err != nil {
		return fmt.Errorf("global %s: %w", name, err)
	}
	g.mod.DeclareGlobal(name, c.Type(), constant, c)
	return nil
}

func literalConst(v typecheck.Literal) (ir.Constant, error) {
	switch v := v.(type) {
	case *typecheck.IntLit:
		return ir.Int32(v.Value), nil
	case *typecheck.FloatLit:
		return ir.Float32(v.Value), nil
	case *typecheck.BoolLit:
		return ir.Bool(v.Value), nil
	}
	return nil, internalf("unexpected initializer %T", v)
}

func (g *gen) genFunc(d *typecheck.FuncDecl) error {
	params := make([]ir.Param, 0, len(d.Params))
	for _, p := range d.Params {
		ty, err := irType(p.Type)
		if err != nil {
			return fmt.Errorf("function %s: %w", d.Name, err)
		}
		params = append(params, ir.Param{Name: names.Param(p.Name), Ty: ty})
	}
	result := ir.Void
	if d.Result != nil {
		ty, err := irType(d.ResultType)
		if err != nil {
			return fmt.Errorf("function %s: %w", d.Name, err)
		}
		result = ty
	}

	g.fn = g.mod.DeclareFunction(d.Name, params, result)
	defer func() { g.fn = nil }()
	g.fn.OpenScope()
	for i, p := range d.Params {
		slot := g.fn.Alloca(params[i].Ty)
		g.fn.Store(g.fn.Param(i), slot)
		g.fn.Register(p.Name, slot)
	}
	if err := g.genStmts(d.Body); err != nil {
		return fmt.Errorf("function %s: %w", d.Name, err)
	}
	if d.Result != nil {
		v, err := g.genExpr(d.Result)
		if err != nil {
			return fmt.Errorf("function %s: %w", d.Name, err)
		}
		g.fn.Ret(v)
	} else {
		g.fn.RetVoid()
	}
	g.fn.CloseScope()
	g.fn.Build()
	return nil
}

func (g *gen) genMain(s typecheck.Stmt) error {
	g.fn = g.mod.DeclareFunction("main", nil, ir.I32)
	defer func() { g.fn = nil }()
	g.fn.OpenScope()
	if err := g.genStmt(s); err != nil {
		return fmt.Errorf("main: %w", err)
	}
	g.fn.CloseScope()
	g.fn.Ret(ir.Int32(0))
	g.fn.Build()
	return nil
}
