package typecheck

import (
	"math"
	"strconv"

	"p0c/internal/ast"
	"p0c/internal/source"
)

// intLiteral converts decimal digits to an Int, negated when neg is set.
// Values outside the 32-bit signed range are reported and wrap.
func (c *checker) intLiteral(text string, neg bool, at source.Span) *IntLit {
	shown := text
	if neg {
		shown = "-" + text
	}
	v, err := strconv.ParseInt(shown, 10, 64)
	if err != nil || v > math.MaxInt32 || v < math.MinInt32 {
		c.errorAt(at, CodeLiteralIntOverflow, "integer literal "+shown+" does not fit in Int")
	}
	return &IntLit{Value: int32(v)}
}

// floatLiteral reports values that overflow single precision.
func (c *checker) floatLiteral(text string, neg bool, at source.Span) *FloatLit {
	shown := text
	if neg {
		shown = "-" + text
	}
	if f32, err := strconv.ParseFloat(shown, 32); err != nil && math.IsInf(f32, 0) {
		c.errorAt(at, CodeLiteralFloatOverflow, "float literal "+shown+" does not fit in Float")
	}
	v, _ := strconv.ParseFloat(shown, 64)
	return &FloatLit{Value: v}
}

// literal checks a top-level initializer.
func (c *checker) literal(e ast.Expr) Literal {
	switch x := e.(type) {
	case *ast.BoolLit:
		return &BoolLit{Value: x.Value}
	case *ast.IntLit:
		return c.intLiteral(x.Text, false, x.S)
	case *ast.FloatLit:
		return c.floatLiteral(x.Text, false, x.S)
	case *ast.UnaryExpr:
		neg := x.Op == "-"
		switch v := x.Expr.(type) {
		case *ast.IntLit:
			return c.intLiteral(v.Text, neg, x.S)
		case *ast.FloatLit:
			return c.floatLiteral(v.Text, neg, x.S)
		}
	case *ast.StringLit:
		c.errorAt(x.S, CodeLiteralString, "string literal "+x.Text+" is only allowed as a call argument")
		return &BoolLit{Value: true}
	}
	c.errorAt(e.Span(), CodeLiteralString, "unsupported initializer")
	return &BoolLit{Value: true}
}

// literalType is the type of a top-level initializer, known before checking.
func literalType(e ast.Expr) Type {
	switch x := e.(type) {
	case *ast.BoolLit:
		return TypeBool
	case *ast.IntLit:
		return TypeInt
	case *ast.FloatLit:
		return TypeFloat
	case *ast.UnaryExpr:
		return literalType(x.Expr)
	default:
		return TypeError
	}
}
