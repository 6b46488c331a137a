package typecheck

// Program is a checked P0 program: the declarations other than main, and
// the body of main as one statement.
type Program struct {
	Decls []Decl
	Stmt  Stmt
}

type Decl interface{ declNode() }

type ConstDecl struct {
	Name  string
	Value Literal
}

type VarDecl struct {
	Name  string
	Value Literal
}

type Param struct {
	Name string
	Type Type
}

// FuncDecl.Result is nil for a unit function.
type FuncDecl struct {
	Name       string
	Params     []Param
	Body       []Stmt
	Result     Expr
	ResultType Type
}

func (*ConstDecl) declNode() {}
func (*VarDecl) declNode()   {}
func (*FuncDecl) declNode()  {}

type Stmt interface{ stmtNode() }

type AssignStmt struct {
	Name string
	X    Expr
}

type ConstDeclStmt struct {
	Name string
	X    Expr
}

type VarDeclStmt struct {
	Name string
	X    Expr
}

type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // nil when absent
}

type WhileStmt struct {
	Cond Expr
	Body Stmt
}

type BlockStmt struct {
	Stmts []Stmt
}

// CallStmt calls a unit function, or the print/println builtins when
// Builtin is set.
type CallStmt struct {
	Name    string
	Args    []Expr
	Builtin bool
}

type EmptyStmt struct{}

func (*AssignStmt) stmtNode()    {}
func (*ConstDeclStmt) stmtNode() {}
func (*VarDeclStmt) stmtNode()   {}
func (*IfStmt) stmtNode()        {}
func (*WhileStmt) stmtNode()     {}
func (*BlockStmt) stmtNode()     {}
func (*CallStmt) stmtNode()      {}
func (*EmptyStmt) stmtNode()     {}

type Expr interface{ exprNode() }

// Literal is the subset of expressions allowed as top-level initializers.
type Literal interface {
	Expr
	literalNode()
}

type TernaryExpr struct {
	Cond Expr
	Then Expr
	Else Expr
}

type BinaryExpr struct {
	Op BinaryOp
	X  Expr
	Y  Expr
}

type UnaryExpr struct {
	Op UnaryOp
	X  Expr
}

type CallExpr struct {
	Type Type
	Name string
	Args []Expr
}

type IdentExpr struct {
	Type Type
	Name string
}

type BoolLit struct{ Value bool }

type IntLit struct{ Value int32 }

type FloatLit struct{ Value float64 }

// StringLit.Value is the decoded text.
type StringLit struct{ Value string }

func (*TernaryExpr) exprNode() {}
func (*BinaryExpr) exprNode()  {}
func (*UnaryExpr) exprNode()   {}
func (*CallExpr) exprNode()    {}
func (*IdentExpr) exprNode()   {}
func (*BoolLit) exprNode()     {}
func (*IntLit) exprNode()      {}
func (*FloatLit) exprNode()    {}
func (*StringLit) exprNode()   {}

func (*BoolLit) literalNode()   {}
func (*IntLit) literalNode()    {}
func (*FloatLit) literalNode()  {}
func (*StringLit) literalNode() {}

type BinaryOp int

const (
	OpDivide BinaryOp = iota
	OpMinus
	OpPlus
	OpTimes
	OpEqual
	OpGreaterEqual
	OpGreaterThan
	OpLessEqual
	OpLessThan
	OpNotEqual
	OpAnd
	OpOr
)

var binaryOpText = [...]string{
	OpDivide:       "/",
	OpMinus:        "-",
	OpPlus:         "+",
	OpTimes:        "*",
	OpEqual:        "==",
	OpGreaterEqual: ">=",
	OpGreaterThan:  ">",
	OpLessEqual:    "<=",
	OpLessThan:     "<",
	OpNotEqual:     "!=",
	OpAnd:          "&&",
	OpOr:           "||",
}

func (op BinaryOp) String() string { return binaryOpText[op] }

func (op BinaryOp) IsArithmetic() bool {
	return op == OpPlus || op == OpMinus || op == OpTimes || op == OpDivide
}

func binaryOpFromText(s string) (BinaryOp, bool) {
	for i, t := range binaryOpText {
		if t == s {
			return BinaryOp(i), true
		}
	}
	return 0, false
}

type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNegate
	OpIdentity
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "!"
	case OpNegate:
		return "-"
	default:
		return "+"
	}
}
