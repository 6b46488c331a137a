// Package ast is the untyped syntax tree produced by the parser.
package ast

import "p0c/internal/source"

type Program struct {
	Decls []Decl
}

type Ident struct {
	Name string
	S    source.Span
}

// Decl is a top-level declaration.
type Decl interface {
	declNode()
	Name() Ident
	Span() source.Span
}

// VarDecl is a top-level `const`/`let`. Value is a BoolLit, IntLit,
// FloatLit or a UnaryExpr over an IntLit/FloatLit.
type VarDecl struct {
	Const bool
	Ident Ident
	Value Expr
	S     source.Span
}

func (*VarDecl) declNode()           {}
func (d *VarDecl) Name() Ident       { return d.Ident }
func (d *VarDecl) Span() source.Span { return d.S }

type FunDecl struct {
	Ident  Ident
	Params []Param
	Body   []Stmt
	Result *Result // nil for a unit function
	S      source.Span
}

func (*FunDecl) declNode()           {}
func (d *FunDecl) Name() Ident       { return d.Ident }
func (d *FunDecl) Span() source.Span { return d.S }

type Param struct {
	Ident Ident
	Type  Type
}

// Result is the `: T { ... return e; }` suffix of a value function.
type Result struct {
	Type Type
	Expr Expr
}

type TypeKind int

const (
	TypeInt TypeKind = iota
	TypeFloat
	TypeBool
)

type Type struct {
	Kind TypeKind
	S    source.Span
}

// Stmt
type Stmt interface {
	stmtNode()
	Span() source.Span
}

// DeclStmt is a local `const`/`let`.
type DeclStmt struct {
	Const bool
	Ident Ident
	Expr  Expr
	S     source.Span
}

func (*DeclStmt) stmtNode()           {}
func (s *DeclStmt) Span() source.Span { return s.S }

type AssignStmt struct {
	Ident Ident
	Expr  Expr
	S     source.Span
}

func (*AssignStmt) stmtNode()           {}
func (s *AssignStmt) Span() source.Span { return s.S }

type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // optional
	S    source.Span
}

func (*IfStmt) stmtNode()           {}
func (s *IfStmt) Span() source.Span { return s.S }

type WhileStmt struct {
	Cond Expr
	Body Stmt
	S    source.Span
}

func (*WhileStmt) stmtNode()           {}
func (s *WhileStmt) Span() source.Span { return s.S }

type BlockStmt struct {
	Stmts []Stmt
	S     source.Span
}

func (*BlockStmt) stmtNode()           {}
func (s *BlockStmt) Span() source.Span { return s.S }

type CallStmt struct {
	Ident Ident
	Args  []Expr
	S     source.Span
}

func (*CallStmt) stmtNode()           {}
func (s *CallStmt) Span() source.Span { return s.S }

type EmptyStmt struct {
	S source.Span
}

func (*EmptyStmt) stmtNode()           {}
func (s *EmptyStmt) Span() source.Span { return s.S }

// Expr
type Expr interface {
	exprNode()
	Span() source.Span
}

type TernaryExpr struct {
	Cond Expr
	Then Expr
	Else Expr
	S    source.Span
}

func (*TernaryExpr) exprNode()           {}
func (e *TernaryExpr) Span() source.Span { return e.S }

// BinaryExpr.Op is the operator lexeme: + - * / == != < <= > >= && ||
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
	S     source.Span
}

func (*BinaryExpr) exprNode()           {}
func (e *BinaryExpr) Span() source.Span { return e.S }

// UnaryExpr.Op is one of ! - +
type UnaryExpr struct {
	Op   string
	Expr Expr
	S    source.Span
}

func (*UnaryExpr) exprNode()           {}
func (e *UnaryExpr) Span() source.Span { return e.S }

type CallExpr struct {
	Ident Ident
	Args  []Expr
	S     source.Span
}

func (*CallExpr) exprNode()           {}
func (e *CallExpr) Span() source.Span { return e.S }

type IdentExpr struct {
	Name string
	S    source.Span
}

func (*IdentExpr) exprNode()           {}
func (e *IdentExpr) Span() source.Span { return e.S }

type ParenExpr struct {
	Expr Expr
	S    source.Span
}

func (*ParenExpr) exprNode()           {}
func (e *ParenExpr) Span() source.Span { return e.S }

type IntLit struct {
	Text string
	S    source.Span
}

func (*IntLit) exprNode()           {}
func (e *IntLit) Span() source.Span { return e.S }

type FloatLit struct {
	Text string
	S    source.Span
}

func (*FloatLit) exprNode()           {}
func (e *FloatLit) Span() source.Span { return e.S }

// StringLit.Text is the raw token text, quotes included.
type StringLit struct {
	Text string
	S    source.Span
}

func (*StringLit) exprNode()           {}
func (e *StringLit) Span() source.Span { return e.S }

type BoolLit struct {
	Value bool
	S     source.Span
}

func (*BoolLit) exprNode()           {}
func (e *BoolLit) Span() source.Span { return e.S }
