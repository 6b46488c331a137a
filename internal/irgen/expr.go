package irgen

import (
	"github.com/llir/llvm/ir/enum"

	"p0c/internal/ir"
	"p0c/internal/typecheck"
)

func (g *gen) genExpr(x typecheck.Expr) (ir.Operand, error) {
	switch x := x.(type) {
	case *typecheck.IntLit:
		return ir.Int32(x.Value), nil
	case *typecheck.FloatLit:
		return ir.Float32(x.Value), nil
	case *typecheck.BoolLit:
		return ir.Bool(x.Value), nil
	case *typecheck.StringLit:
		// The pooled array is shared; the decay to i8* is emitted per use.
		ref := g.mod.InternString(x.Value)
		return g.fn.GetElementPointer(true, ir.Elem(ref.Ty), ref, ir.Int32(0), ir.Int32(0)), nil
	case *typecheck.UnaryExpr:
		return g.genUnary(x)
	case *typecheck.BinaryExpr:
		return g.genBinary(x)
	case *typecheck.TernaryExpr:
		return g.genTernary(x)
	case *typecheck.IdentExpr:
		ty, err := irType(x.Type)
		if err != nil {
			return nil, err
		}
		addr, err := g.operand(x.Name)
		if err != nil {
			return nil, err
		}
		return g.fn.Load(ty, addr), nil
	case *typecheck.CallExpr:
		ty, err := irType(x.Type)
		if err != nil {
			return nil, err
		}
		args, err := g.genArgs(x.Args)
		if err != nil {
			return nil, err
		}
		return g.fn.Call(ty, x.Name, args...), nil
	}
	return nil, internalf("unexpected expression %T", x)
}

func (g *gen) genUnary(x *typecheck.UnaryExpr) (ir.Operand, error) {
	v, err := g.genExpr(x.X)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case typecheck.OpIdentity:
		return v, nil
	case typecheck.OpNot:
		return g.fn.Xor(v, ir.Bool(true)), nil
	case typecheck.OpNegate:
		switch ty := typeOf(x.X); ty {
		case typecheck.TypeInt:
			return g.fn.Sub(ir.Int32(0), v), nil
		case typecheck.TypeFloat:
			return g.fn.FSub(ir.Float32(0), v), nil
		default:
			return nil, internalf("cannot negate %s", ty)
		}
	}
	return nil, internalf("unexpected unary operator %v", x.Op)
}

// genTernary is the only construct that yields a value across blocks. The
// phi names the blocks that actually branch to merge, which differ from
// then/else when an arm contains a nested conditional.
func (g *gen) genTernary(x *typecheck.TernaryExpr) (ir.Operand, error) {
	cond, err := g.genExpr(x.Cond)
	if err != nil {
		return nil, err
	}
	then, els, merge := g.fn.NewLabel("then"), g.fn.NewLabel("else"), g.fn.NewLabel("merge")
	g.fn.CondBr(cond, then, els)

	g.fn.Label(then)
	tv, err := g.genExpr(x.Then)
	if err != nil {
		return nil, err
	}
	thenEnd := g.fn.CurrentLabel()
	g.fn.Br(merge)

	g.fn.Label(els)
	ev, err := g.genExpr(x.Else)
	if err != nil {
		return nil, err
	}
	elseEnd := g.fn.CurrentLabel()
	g.fn.Br(merge)

	g.fn.Label(merge)
	return g.fn.Phi(
		ir.PhiIncoming{Value: tv, Label: thenEnd},
		ir.PhiIncoming{Value: ev, Label: elseEnd},
	), nil
}

var intPreds = map[typecheck.BinaryOp]enum.IPred{
	typecheck.OpEqual:        enum.IPredEQ,
	typecheck.OpNotEqual:     enum.IPredNE,
	typecheck.OpLessThan:     enum.IPredSLT,
	typecheck.OpLessEqual:    enum.IPredSLE,
	typecheck.OpGreaterThan:  enum.IPredSGT,
	typecheck.OpGreaterEqual: enum.IPredSGE,
}

var floatPreds = map[typecheck.BinaryOp]enum.FPred{
	typecheck.OpEqual:        enum.FPredOEQ,
	typecheck.OpNotEqual:     enum.FPredONE,
	typecheck.OpLessThan:     enum.FPredOLT,
	typecheck.OpLessEqual:    enum.FPredOLE,
	typecheck.OpGreaterThan:  enum.FPredOGT,
	typecheck.OpGreaterEqual: enum.FPredOGE,
}

// genBinary evaluates both operands unconditionally; && and || do not
// short-circuit. Instruction variants follow the left operand's type.
func (g *gen) genBinary(x *typecheck.BinaryExpr) (ir.Operand, error) {
	l, err := g.genExpr(x.X)
	if err != nil {
		return nil, err
	}
	r, err := g.genExpr(x.Y)
	if err != nil {
		return nil, err
	}
	ty := typeOf(x.X)

	switch x.Op {
	case typecheck.OpAnd:
		return g.fn.And(l, r), nil
	case typecheck.OpOr:
		return g.fn.Or(l, r), nil
	}
	if pred, ok := intPreds[x.Op]; ok {
		switch ty {
		case typecheck.TypeInt, typecheck.TypeBool:
			return g.fn.ICmp(pred, l, r), nil
		case typecheck.TypeFloat:
			return g.fn.FCmp(floatPreds[x.Op], l, r), nil
		}
		return nil, internalf("cannot compare %s", ty)
	}

	switch ty {
	case typecheck.TypeInt:
		switch x.Op {
		case typecheck.OpPlus:
			return g.fn.Add(l, r), nil
		case typecheck.OpMinus:
			return g.fn.Sub(l, r), nil
		case typecheck.OpTimes:
			return g.fn.Mul(l, r), nil
		case typecheck.OpDivide:
			return g.fn.SDiv(l, r), nil
		}
	case typecheck.TypeFloat:
		switch x.Op {
		case typecheck.OpPlus:
			return g.fn.FAdd(l, r), nil
		case typecheck.OpMinus:
			return g.fn.FSub(l, r), nil
		case typecheck.OpTimes:
			return g.fn.FMul(l, r), nil
		case typecheck.OpDivide:
			return g.fn.FDiv(l, r), nil
		}
	}
	return nil, internalf("operator %s on %s", x.Op, ty)
}
