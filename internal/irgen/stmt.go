package irgen

import (
	"p0c/internal/ir"
	"p0c/internal/stdlib"
	"p0c/internal/typecheck"
)

func (g *gen) genStmts(ss []typecheck.Stmt) error {
	for _, s := range ss {
		if err := g.genStmt(s); err != nil {
			return err
		}
	}
	return nil
}

// genScoped lowers an if arm or loop body in its own scope.
func (g *gen) genScoped(s typecheck.Stmt) error {
	g.fn.OpenScope()
	defer g.fn.CloseScope()
	return g.genStmt(s)
}

func (g *gen) genStmt(s typecheck.Stmt) error {
	switch s := s.(type) {
	case *typecheck.ConstDeclStmt:
		return g.genLocal(s.Name, s.X)
	case *typecheck.VarDeclStmt:
		return g.genLocal(s.Name, s.X)
	case *typecheck.AssignStmt:
		v, err := g.genExpr(s.X)
		if err != nil {
			return err
		}
		addr, err := g.operand(s.Name)
		if err != nil {
			return err
		}
		g.fn.Store(v, addr)
		return nil
	case *typecheck.IfStmt:
		return g.genIf(s)
	case *typecheck.WhileStmt:
		return g.genWhile(s)
	case *typecheck.BlockStmt:
		g.fn.OpenScope()
		defer g.fn.CloseScope()
		return g.genStmts(s.Stmts)
	case *typecheck.CallStmt:
		return g.genCallStmt(s)
	case *typecheck.EmptyStmt:
		return nil
	}
	return internalf("unexpected statement %T", s)
}

func (g *gen) genLocal(name string, x typecheck.Expr) error {
	v, err := g.genExpr(x)
	if err != nil {
		return err
	}
	ty, err := irType(typeOf(x))
	if err != nil {
		return err
	}
	slot := g.fn.Alloca(ty)
	g.fn.Store(v, slot)
	g.fn.Register(name, slot)
	return nil
}

// operand resolves a variable to its address.
func (g *gen) operand(name string) (ir.Operand, error) {
	op, err := g.fn.Operand(name)
	if err != nil {
		return nil, internalf("%v", err)
	}
	return op, nil
}

func (g *gen) genIf(s *typecheck.IfStmt) error {
	cond, err := g.genExpr(s.Cond)
	if err != nil {
		return err
	}
	if s.Else == nil {
		then, merge := g.fn.NewLabel("then"), g.fn.NewLabel("merge")
		g.fn.CondBr(cond, then, merge)
		g.fn.Label(then)
		if err := g.genScoped(s.Then); err != nil {
			return err
		}
		g.fn.Br(merge)
		g.fn.Label(merge)
		return nil
	}

	then, els, merge := g.fn.NewLabel("then"), g.fn.NewLabel("else"), g.fn.NewLabel("merge")
	g.fn.CondBr(cond, then, els)
	g.fn.Label(then)
	if err := g.genScoped(s.Then); err != nil {
		return err
	}
	g.fn.Br(merge)
	g.fn.Label(els)
	if err := g.genScoped(s.Else); err != nil {
		return err
	}
	g.fn.Br(merge)
	g.fn.Label(merge)
	return nil
}

// genWhile re-evaluates the guard in its own block on every iteration.
func (g *gen) genWhile(s *typecheck.WhileStmt) error {
	head, body, merge := g.fn.NewLabel("while"), g.fn.NewLabel("body"), g.fn.NewLabel("merge")
	g.fn.Br(head)
	g.fn.Label(head)
	cond, err := g.genExpr(s.Cond)
	if err != nil {
		return err
	}
	g.fn.CondBr(cond, body, merge)
	g.fn.Label(body)
	if err := g.genScoped(s.Body); err != nil {
		return err
	}
	g.fn.Br(head)
	g.fn.Label(merge)
	return nil
}

func (g *gen) genCallStmt(s *typecheck.CallStmt) error {
	if s.Builtin {
		for _, a := range s.Args {
			if err := g.genPrint(a); err != nil {
				return err
			}
		}
		if s.Name == typecheck.BuiltinPrintln {
			g.fn.CallVoid(stdlib.PrintLn)
		}
		return nil
	}
	args, err := g.genArgs(s.Args)
	if err != nil {
		return err
	}
	g.fn.CallVoid(s.Name, args...)
	return nil
}

func (g *gen) genPrint(x typecheck.Expr) error {
	v, err := g.genExpr(x)
	if err != nil {
		return err
	}
	switch ty := typeOf(x); ty {
	case typecheck.TypeBool:
		g.fn.CallVoid(stdlib.PrintBool, g.fn.Zext(v, ir.I8))
	case typecheck.TypeInt:
		g.fn.CallVoid(stdlib.PrintInt, v)
	case typecheck.TypeFloat:
		g.fn.CallVoid(stdlib.PrintFloat, v)
	case typecheck.TypeString:
		g.fn.CallVoid(stdlib.PrintString, v)
	default:
		return internalf("cannot print value of type %s", ty)
	}
	return nil
}

func (g *gen) genArgs(xs []typecheck.Expr) ([]ir.Operand, error) {
	args := make([]ir.Operand, 0, len(xs))
	for _, x := range xs {
		v, err := g.genExpr(x)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}
