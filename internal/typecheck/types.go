package typecheck

// Type is a P0 value type. TypeError marks an expression whose type could
// not be determined; it suppresses follow-on errors.
type Type int

const (
	TypeInt Type = iota
	TypeFloat
	TypeBool
	TypeString
	TypeError
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "Int"
	case TypeFloat:
		return "Float"
	case TypeBool:
		return "Bool"
	case TypeString:
		return "String"
	default:
		return "<error>"
	}
}

// TypeOf derives the type of a checked expression from its structure.
func TypeOf(e Expr) Type {
	switch x := e.(type) {
	case *BoolLit:
		return TypeBool
	case *IntLit:
		return TypeInt
	case *FloatLit:
		return TypeFloat
	case *StringLit:
		return TypeString
	case *IdentExpr:
		return x.Type
	case *CallExpr:
		return x.Type
	case *UnaryExpr:
		return TypeOf(x.X)
	case *BinaryExpr:
		if x.Op.IsArithmetic() {
			return TypeOf(x.X)
		}
		return TypeBool
	case *TernaryExpr:
		return TypeOf(x.Then)
	default:
		return TypeError
	}
}
