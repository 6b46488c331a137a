package irgen

import (
	"p0c/internal/ir"
	"p0c/internal/typecheck"
)

// typeOf picks instruction variants. It agrees with typecheck.TypeOf on
// every checked tree.
func typeOf(x typecheck.Expr) typecheck.Type {
	switch x := x.(type) {
	case *typecheck.IntLit:
		return typecheck.TypeInt
	case *typecheck.FloatLit:
		return typecheck.TypeFloat
	case *typecheck.BoolLit:
		return typecheck.TypeBool
	case *typecheck.StringLit:
		return typecheck.TypeString
	case *typecheck.IdentExpr:
		return x.Type
	case *typecheck.CallExpr:
		return x.Type
	case *typecheck.UnaryExpr:
		return typeOf(x.X)
	case *typecheck.TernaryExpr:
		return typeOf(x.Then)
	case *typecheck.BinaryExpr:
		if x.Op.IsArithmetic() {
			return typeOf(x.X)
		}
		return typecheck.TypeBool
	}
	return typecheck.TypeError
}

func irType(t typecheck.Type) (ir.Type, error) {
	switch t {
	case typecheck.TypeInt:
		return ir.I32, nil
	case typecheck.TypeFloat:
		return ir.Float, nil
	case typecheck.TypeBool:
		return ir.I1, nil
	case typecheck.TypeString:
		return ir.I8Ptr, nil
	}
	return nil, internalf("no IR type for %s", t)
}
