// Package typecheck resolves names and types in a parsed P0 program and
// produces the typed tree consumed by the code generator.
package typecheck

import (
	"fmt"

	"p0c/internal/ast"
	"p0c/internal/diag"
	"p0c/internal/parser"
	"p0c/internal/source"
	"p0c/internal/stdlib"
	"p0c/internal/stringlit"
)

// Builtin unit functions; any number of arguments of any type. A
// declaration with the same name shadows them.
const (
	BuiltinPrint   = "print"
	BuiltinPrintln = "println"
)

func isBuiltin(name string) bool { return name == BuiltinPrint || name == BuiltinPrintln }

type checker struct {
	scope []map[string]binding
	diags *diag.Bag
}

// Translate parses and checks file. The program is nil when the bag holds
// any error.
func Translate(file *source.File) (*Program, *diag.Bag) {
	prog, diags := parser.Parse(file)
	if diags.Len() > 0 {
		return nil, diags
	}
	return Check(prog)
}

// Check type-checks a parsed program.
func Check(prog *ast.Program) (*Program, *diag.Bag) {
	c := &checker{diags: &diag.Bag{}}
	out := c.program(prog)
	if c.diags.Len() > 0 {
		return nil, c.diags
	}
	return out, c.diags
}

func (c *checker) program(p *ast.Program) *Program {
	c.pushScope()
	var main ast.Decl
	for _, d := range p.Decls {
		id := d.Name()
		if id.Name == "main" {
			if main != nil {
				c.errorAt(id.S, CodeAttemptToRedefineDeclaration, "attempt to redefine main")
				continue
			}
			main = d
			continue
		}
		if _, ok := stdlib.Lookup(id.Name); ok {
			c.errorAt(id.S, CodeAttemptToRedefineDeclaration, "attempt to redefine runtime function "+id.Name)
			continue
		}
		c.declare(id.Name, id.S, declBinding(d))
	}

	out := &Program{Stmt: &EmptyStmt{}}
	for _, d := range p.Decls {
		if d == main {
			continue
		}
		if td := c.decl(d); td != nil {
			out.Decls = append(out.Decls, td)
		}
	}

	switch m := main.(type) {
	case nil:
	case *ast.FunDecl:
		if len(m.Params) != 0 || m.Result != nil {
			c.errorAt(m.Ident.S, CodeInvalidDeclarationOfMain, "main must take no parameters and return no value")
		}
		c.pushScope()
		stmts := c.stmts(m.Body)
		c.popScope()
		if len(stmts) == 1 {
			out.Stmt = stmts[0]
		} else {
			out.Stmt = &BlockStmt{Stmts: stmts}
		}
	default:
		c.errorAt(main.Name().S, CodeInvalidDeclarationOfMain, "main must be a function")
	}
	c.popScope()
	return out
}

func declBinding(d ast.Decl) binding {
	switch x := d.(type) {
	case *ast.VarDecl:
		if x.Const {
			return binding{kind: bindConstant, ty: literalType(x.Value)}
		}
		return binding{kind: bindVariable, ty: literalType(x.Value)}
	case *ast.FunDecl:
		b := binding{kind: bindFunction}
		for _, p := range x.Params {
			b.params = append(b.params, toType(p.Type))
		}
		if x.Result != nil {
			b.hasResult = true
			b.result = toType(x.Result.Type)
		}
		return b
	}
	panic(fmt.Sprintf("typecheck: unexpected declaration %T", d))
}

func toType(t ast.Type) Type {
	switch t.Kind {
	case ast.TypeFloat:
		return TypeFloat
	case ast.TypeBool:
		return TypeBool
	default:
		return TypeInt
	}
}

func (c *checker) decl(d ast.Decl) Decl {
	switch x := d.(type) {
	case *ast.VarDecl:
		v := c.literal(x.Value)
		if x.Const {
			return &ConstDecl{Name: x.Ident.Name, Value: v}
		}
		return &VarDecl{Name: x.Ident.Name, Value: v}
	case *ast.FunDecl:
		return c.funDecl(x)
	}
	panic(fmt.Sprintf("typecheck: unexpected declaration %T", d))
}

func (c *checker) funDecl(d *ast.FunDecl) *FuncDecl {
	out := &FuncDecl{Name: d.Ident.Name}
	c.pushScope()
	defer c.popScope()
	for _, p := range d.Params {
		ty := toType(p.Type)
		c.declare(p.Ident.Name, p.Ident.S, binding{kind: bindVariable, ty: ty})
		out.Params = append(out.Params, Param{Name: p.Ident.Name, Type: ty})
	}
	out.Body = c.stmts(d.Body)
	if d.Result != nil {
		out.ResultType = toType(d.Result.Type)
		out.Result = c.expr(d.Result.Expr)
		if got := TypeOf(out.Result); got != TypeError && got != out.ResultType {
			c.errorAt(d.Ident.S, CodeFunctionReturnTypeMismatch,
				fmt.Sprintf("function %s returns %s, declared %s", d.Ident.Name, got, out.ResultType))
		}
	}
	return out
}

// stmts checks a statement sequence in the current scope.
func (c *checker) stmts(ss []ast.Stmt) []Stmt {
	out := make([]Stmt, 0, len(ss))
	for _, s := range ss {
		out = append(out, c.stmt(s))
	}
	return out
}

// nested checks a statement that is an if arm or a loop body; bindings it
// introduces do not outlive it.
func (c *checker) nested(s ast.Stmt) Stmt {
	c.pushScope()
	defer c.popScope()
	return c.stmt(s)
}

func (c *checker) stmt(s ast.Stmt) Stmt {
	switch x := s.(type) {
	case *ast.AssignStmt:
		return c.assign(x)
	case *ast.DeclStmt:
		e := c.expr(x.Expr)
		ty := TypeOf(e)
		if x.Const {
			c.declare(x.Ident.Name, x.Ident.S, binding{kind: bindConstant, ty: ty})
			return &ConstDeclStmt{Name: x.Ident.Name, X: e}
		}
		c.declare(x.Ident.Name, x.Ident.S, binding{kind: bindVariable, ty: ty})
		return &VarDeclStmt{Name: x.Ident.Name, X: e}
	case *ast.IfStmt:
		cond := c.expr(x.Cond)
		if ty := TypeOf(cond); ty != TypeError && ty != TypeBool {
			c.errorAt(x.Cond.Span(), CodeIfGuardNotBoolean, "if guard must be Bool, got "+ty.String())
		}
		out := &IfStmt{Cond: cond, Then: c.nested(x.Then)}
		if x.Else != nil {
			out.Else = c.nested(x.Else)
		}
		return out
	case *ast.WhileStmt:
		cond := c.expr(x.Cond)
		if ty := TypeOf(cond); ty != TypeError && ty != TypeBool {
			c.errorAt(x.Cond.Span(), CodeWhileGuardNotBoolean, "while guard must be Bool, got "+ty.String())
		}
		return &WhileStmt{Cond: cond, Body: c.nested(x.Body)}
	case *ast.BlockStmt:
		c.pushScope()
		defer c.popScope()
		return &BlockStmt{Stmts: c.stmts(x.Stmts)}
	case *ast.CallStmt:
		return c.callStmt(x)
	case *ast.EmptyStmt:
		return &EmptyStmt{}
	}
	panic(fmt.Sprintf("typecheck: unexpected statement %T", s))
}

func (c *checker) assign(s *ast.AssignStmt) Stmt {
	e := c.expr(s.Expr)
	name := s.Ident.Name
	b, ok := c.lookup(name)
	switch {
	case !ok:
		c.errorAt(s.Ident.S, CodeUnknownIdentifier, "unknown identifier "+name)
	case b.kind == bindConstant:
		c.errorAt(s.Ident.S, CodeUnableToAssignToConstant, "cannot assign to constant "+name)
	case b.kind == bindFunction:
		c.errorAt(s.Ident.S, CodeUnableToAssignToFunction, "cannot assign to function "+name)
	default:
		if ty := TypeOf(e); ty != b.ty && ty != TypeError {
			c.errorAt(s.Expr.Span(), CodeUnableToAssignIncompatibleTypes,
				fmt.Sprintf("cannot assign %s to %s of type %s", ty, name, b.ty))
		}
	}
	return &AssignStmt{Name: name, X: e}
}

func (c *checker) callStmt(s *ast.CallStmt) Stmt {
	name := s.Ident.Name
	out := &CallStmt{Name: name}
	b, ok := c.lookup(name)
	if !ok {
		if isBuiltin(name) {
			out.Builtin = true
			out.Args = c.args(s.Args)
			return out
		}
		c.errorAt(s.Ident.S, CodeUnknownIdentifier, "unknown identifier "+name)
		return out
	}
	if !c.callable(s.Ident, b) {
		return out
	}
	out.Args = c.args(s.Args)
	c.checkArgs(s.Ident, s.Args, out.Args, b)
	if b.hasResult {
		c.errorAt(s.Ident.S, CodeUnableToCallValueFunctionAsUnitFunction,
			"function "+name+" returns a value and cannot be called as a statement")
	}
	return out
}

// callable reports constants and variables used as callees.
func (c *checker) callable(id ast.Ident, b binding) bool {
	switch b.kind {
	case bindConstant:
		c.errorAt(id.S, CodeUnableToCallConstantAsFunction, "cannot call constant "+id.Name)
		return false
	case bindVariable:
		c.errorAt(id.S, CodeUnableToCallVariableAsFunction, "cannot call variable "+id.Name)
		return false
	}
	return true
}

// args checks call statement arguments; string literals are allowed here.
func (c *checker) args(es []ast.Expr) []Expr {
	out := make([]Expr, 0, len(es))
	for _, e := range es {
		if s, ok := e.(*ast.StringLit); ok {
			out = append(out, c.stringLit(s))
			continue
		}
		out = append(out, c.expr(e))
	}
	return out
}

func (c *checker) stringLit(s *ast.StringLit) *StringLit {
	v, err := stringlit.Decode(s.Text)
	if err != nil {
		c.errorAt(s.S, CodeInvalidStringLiteral, err.Error())
	}
	return &StringLit{Value: v}
}

func (c *checker) checkArgs(id ast.Ident, src []ast.Expr, args []Expr, b binding) {
	if len(args) != len(b.params) {
		c.errorAt(id.S, CodeMismatchInNumberOfParameters,
			fmt.Sprintf("%s takes %d arguments, got %d", id.Name, len(b.params), len(args)))
		return
	}
	for i, p := range b.params {
		if ty := TypeOf(args[i]); ty != p && ty != TypeError {
			c.errorAt(src[i].Span(), CodeIncompatibleArgumentType,
				fmt.Sprintf("argument %d of %s must be %s, got %s", i+1, id.Name, p, ty))
		}
	}
}

func (c *checker) expr(e ast.Expr) Expr {
	switch x := e.(type) {
	case *ast.TernaryExpr:
		cond, then, els := c.expr(x.Cond), c.expr(x.Then), c.expr(x.Else)
		if ty := TypeOf(cond); ty != TypeBool && ty != TypeError {
			c.errorAt(x.Cond.Span(), CodeTernaryExpressionNotBoolean, "conditional guard must be Bool, got "+ty.String())
		}
		t2, t3 := TypeOf(then), TypeOf(els)
		if t2 != TypeError && t3 != TypeError && t2 != t3 {
			c.errorAt(x.Then.Span(), CodeTernaryExpressionResultIncompatible,
				fmt.Sprintf("conditional branches differ: %s and %s", t2, t3))
		}
		return &TernaryExpr{Cond: cond, Then: then, Else: els}
	case *ast.BinaryExpr:
		return c.binary(x)
	case *ast.UnaryExpr:
		return c.unary(x)
	case *ast.CallExpr:
		return c.call(x)
	case *ast.IdentExpr:
		b, ok := c.lookup(x.Name)
		switch {
		case !ok:
			c.errorAt(x.S, CodeUnknownIdentifier, "unknown identifier "+x.Name)
			return &IdentExpr{Type: TypeError, Name: x.Name}
		case b.kind == bindFunction:
			c.errorAt(x.S, CodeUnableToReferenceFunction, "function "+x.Name+" cannot be used as a value")
			return &IdentExpr{Type: TypeError, Name: x.Name}
		}
		return &IdentExpr{Type: b.ty, Name: x.Name}
	case *ast.ParenExpr:
		return c.expr(x.Expr)
	case *ast.IntLit:
		return c.intLiteral(x.Text, false, x.S)
	case *ast.FloatLit:
		return c.floatLiteral(x.Text, false, x.S)
	case *ast.BoolLit:
		return &BoolLit{Value: x.Value}
	case *ast.StringLit:
		c.errorAt(x.S, CodeLiteralString, "string literal "+x.Text+" is only allowed as a call argument")
		return &BoolLit{Value: true}
	}
	panic(fmt.Sprintf("typecheck: unexpected expression %T", e))
}

func (c *checker) binary(x *ast.BinaryExpr) Expr {
	op, ok := binaryOpFromText(x.Op)
	if !ok {
		panic("typecheck: unknown binary operator " + x.Op)
	}
	l, r := c.expr(x.Left), c.expr(x.Right)
	lt, rt := TypeOf(l), TypeOf(r)
	requireOperand := func(ty Type, at source.Span, allowed ...Type) {
		if ty == TypeError {
			return
		}
		for _, a := range allowed {
			if ty == a {
				return
			}
		}
		c.errorAt(at, CodeBinaryExpressionRequiresOperandType,
			fmt.Sprintf("operator %s does not accept %s", op, ty))
	}
	mismatch := func() {
		if lt != TypeError && rt != TypeError && lt != rt {
			c.errorAt(x.S, CodeBinaryExpressionOperandsIncompatible,
				fmt.Sprintf("operator %s applied to %s and %s", op, lt, rt))
		}
	}
	switch op {
	case OpAnd, OpOr:
		requireOperand(lt, x.Left.Span(), TypeBool)
		requireOperand(rt, x.Right.Span(), TypeBool)
	case OpEqual, OpNotEqual:
		mismatch()
	default:
		requireOperand(lt, x.Left.Span(), TypeInt, TypeFloat)
		requireOperand(rt, x.Right.Span(), TypeInt, TypeFloat)
		mismatch()
	}
	return &BinaryExpr{Op: op, X: l, Y: r}
}

func (c *checker) unary(x *ast.UnaryExpr) Expr {
	if lit, ok := x.Expr.(*ast.IntLit); ok && x.Op == "-" {
		return c.intLiteral(lit.Text, true, x.S)
	}
	var op UnaryOp
	switch x.Op {
	case "!":
		op = OpNot
	case "-":
		op = OpNegate
	default:
		op = OpIdentity
	}
	e := c.expr(x.Expr)
	ty := TypeOf(e)
	if ty != TypeError {
		if (op == OpNot && ty != TypeBool) || (op != OpNot && ty != TypeInt && ty != TypeFloat) {
			c.errorAt(x.Expr.Span(), CodeUnaryExpressionRequiresOperandType,
				fmt.Sprintf("operator %s does not accept %s", op, ty))
		}
	}
	return &UnaryExpr{Op: op, X: e}
}

func (c *checker) call(x *ast.CallExpr) Expr {
	name := x.Ident.Name
	b, ok := c.lookup(name)
	if !ok {
		c.errorAt(x.Ident.S, CodeUnknownIdentifier, "unknown identifier "+name)
		return &IdentExpr{Type: TypeError, Name: name}
	}
	if !c.callable(x.Ident, b) {
		return &IdentExpr{Type: TypeError, Name: name}
	}
	args := make([]Expr, 0, len(x.Args))
	for _, a := range x.Args {
		args = append(args, c.expr(a))
	}
	c.checkArgs(x.Ident, x.Args, args, b)
	if !b.hasResult {
		c.errorAt(x.Ident.S, CodeUnableToCallUnitFunctionAsValueFunction,
			"function "+name+" returns no value")
		return &IdentExpr{Type: TypeError, Name: name}
	}
	return &CallExpr{Type: b.result, Name: name, Args: args}
}
