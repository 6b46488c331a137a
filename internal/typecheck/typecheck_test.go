package typecheck

import (
	"testing"

	"p0c/internal/source"
)

func translateOK(t *testing.T, src string) *Program {
	t.Helper()
	prog, diags := Translate(source.NewFile("test.p0", src))
	if diags.Len() > 0 {
		t.Fatalf("unexpected diags: %+v", diags.Items)
	}
	return prog
}

func TestMainBecomesProgramStatement(t *testing.T) {
	prog := translateOK(t, `
const n = 3;
fun twice(x: Int): Int { return x * 2; }
fun main() { print(twice(n)); }
`)
	if len(prog.Decls) != 2 {
		t.Fatalf("expected main to be removed from decls, got %d", len(prog.Decls))
	}
	call, ok := prog.Stmt.(*CallStmt)
	if !ok || call.Name != "print" {
		t.Fatalf("expected single print statement, got %#v", prog.Stmt)
	}
	inner, ok := call.Args[0].(*CallExpr)
	if !ok || inner.Type != TypeInt || inner.Name != "twice" {
		t.Fatalf("expected Int call to twice, got %#v", call.Args[0])
	}
	fn := prog.Decls[1].(*FuncDecl)
	if fn.ResultType != TypeInt || fn.Result == nil || len(fn.Params) != 1 || fn.Params[0].Type != TypeInt {
		t.Fatalf("unexpected function %#v", fn)
	}
}

func TestMainWithSeveralStatementsIsBlock(t *testing.T) {
	prog := translateOK(t, `fun main() { let x = 1; print(x); }`)
	b, ok := prog.Stmt.(*BlockStmt)
	if !ok || len(b.Stmts) != 2 {
		t.Fatalf("expected block of 2, got %#v", prog.Stmt)
	}
	if _, ok := b.Stmts[0].(*VarDeclStmt); !ok {
		t.Fatalf("expected let, got %T", b.Stmts[0])
	}
}

func TestMissingMainIsEmptyStatement(t *testing.T) {
	prog := translateOK(t, `let x = 1;`)
	if _, ok := prog.Stmt.(*EmptyStmt); !ok {
		t.Fatalf("expected empty statement, got %T", prog.Stmt)
	}
}

func TestLiteralFolding(t *testing.T) {
	prog := translateOK(t, `
const lo = -2147483648;
let f = -1.5;
fun main() { print(-5, -2.5, +3); }
`)
	lo := prog.Decls[0].(*ConstDecl).Value.(*IntLit)
	if lo.Value != -2147483648 {
		t.Fatalf("expected min int, got %d", lo.Value)
	}
	if f := prog.Decls[1].(*VarDecl).Value.(*FloatLit); f.Value != -1.5 {
		t.Fatalf("expected -1.5, got %v", f.Value)
	}
	args := prog.Stmt.(*CallStmt).Args
	if lit, ok := args[0].(*IntLit); !ok || lit.Value != -5 {
		t.Fatalf("expected folded -5, got %#v", args[0])
	}
	if u, ok := args[1].(*UnaryExpr); !ok || u.Op != OpNegate {
		t.Fatalf("expected float negation to stay unary, got %#v", args[1])
	}
	if u, ok := args[2].(*UnaryExpr); !ok || u.Op != OpIdentity {
		t.Fatalf("expected unary plus, got %#v", args[2])
	}
}

func TestStringArgumentsDecoded(t *testing.T) {
	prog := translateOK(t, `fun main() { println("a\tb"); }`)
	s := prog.Stmt.(*CallStmt).Args[0].(*StringLit)
	if s.Value != "a\tb" {
		t.Fatalf("expected decoded string, got %q", s.Value)
	}
}

func TestTypeOf(t *testing.T) {
	cases := []struct {
		name string
		e    Expr
		want Type
	}{
		{name: "int", e: &IntLit{Value: 1}, want: TypeInt},
		{name: "string", e: &StringLit{Value: "x"}, want: TypeString},
		{name: "arith", e: &BinaryExpr{Op: OpPlus, X: &FloatLit{Value: 1}, Y: &FloatLit{Value: 2}}, want: TypeFloat},
		{name: "compare", e: &BinaryExpr{Op: OpLessThan, X: &IntLit{}, Y: &IntLit{}}, want: TypeBool},
		{name: "logic", e: &BinaryExpr{Op: OpOr, X: &BoolLit{}, Y: &BoolLit{}}, want: TypeBool},
		{name: "unary", e: &UnaryExpr{Op: OpNegate, X: &FloatLit{Value: 1}}, want: TypeFloat},
		{name: "ternary", e: &TernaryExpr{Cond: &BoolLit{}, Then: &IntLit{}, Else: &IntLit{}}, want: TypeInt},
		{name: "ident", e: &IdentExpr{Type: TypeBool, Name: "b"}, want: TypeBool},
		{name: "call", e: &CallExpr{Type: TypeFloat, Name: "f"}, want: TypeFloat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TypeOf(tc.e); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestShadowingInNestedBlocks(t *testing.T) {
	prog := translateOK(t, `fun main() { let x = 1; { let x = true; print(x); } print(x + 1); }`)
	b := prog.Stmt.(*BlockStmt)
	inner := b.Stmts[1].(*BlockStmt)
	if id := inner.Stmts[1].(*CallStmt).Args[0].(*IdentExpr); id.Type != TypeBool {
		t.Fatalf("expected inner x to be Bool, got %s", id.Type)
	}
	sum := b.Stmts[2].(*CallStmt).Args[0].(*BinaryExpr)
	if id := sum.X.(*IdentExpr); id.Type != TypeInt {
		t.Fatalf("expected outer x to be Int, got %s", id.Type)
	}
}

func TestUserDeclarationShadowsPrint(t *testing.T) {
	prog := translateOK(t, `
fun print(x: Int) { println(x + 1); }
fun main() { print(1); }
`)
	call := prog.Stmt.(*CallStmt)
	if call.Builtin {
		t.Fatalf("expected print to resolve to the user function")
	}
	body := prog.Decls[0].(*FuncDecl).Body
	if inner := body[0].(*CallStmt); !inner.Builtin || inner.Name != BuiltinPrintln {
		t.Fatalf("expected builtin println in print's body, got %#v", inner)
	}

	prog = translateOK(t, `fun main() { print(1); }`)
	if !prog.Stmt.(*CallStmt).Builtin {
		t.Fatalf("expected builtin print")
	}
}

func TestLocalShadowingPrintIsNotCallable(t *testing.T) {
	_, diags := Translate(source.NewFile("test.p0", `fun main() { let print = 1; print(2); }`))
	if !diags.Has(CodeUnableToCallVariableAsFunction) {
		t.Fatalf("expected %s, got %+v", CodeUnableToCallVariableAsFunction, diags.Items)
	}
}

func TestErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code string
	}{
		{name: "redefine_global", src: `let x = 1; const x = 2;`, code: CodeAttemptToRedefineDeclaration},
		{name: "redefine_local", src: `fun main() { let x = 1; let x = 2; }`, code: CodeAttemptToRedefineDeclaration},
		{name: "redefine_param", src: `fun f(a: Int, a: Bool) { }`, code: CodeAttemptToRedefineDeclaration},
		{name: "redefine_runtime_fun", src: `fun _print_int(x: Int) { } fun main() { _print_int(1); }`, code: CodeAttemptToRedefineDeclaration},
		{name: "redefine_runtime_var", src: `let _print_ln = 1; fun main() { println(_print_ln); }`, code: CodeAttemptToRedefineDeclaration},
		{name: "unknown_ident", src: `fun main() { print(y); }`, code: CodeUnknownIdentifier},
		{name: "unknown_call", src: `fun main() { g(); }`, code: CodeUnknownIdentifier},
		{name: "main_is_not_callable", src: `fun f() { main(); } fun main() { }`, code: CodeUnknownIdentifier},
		{name: "if_guard", src: `fun main() { if 1 print(1); }`, code: CodeIfGuardNotBoolean},
		{name: "while_guard", src: `fun main() { while 1.0 ; }`, code: CodeWhileGuardNotBoolean},
		{name: "ternary_guard", src: `fun main() { print(1 ? 2 : 3); }`, code: CodeTernaryExpressionNotBoolean},
		{name: "ternary_result", src: `fun main() { print(true ? 2 : false); }`, code: CodeTernaryExpressionResultIncompatible},
		{name: "binary_mismatch", src: `fun main() { print(1 + 2.0); }`, code: CodeBinaryExpressionOperandsIncompatible},
		{name: "equal_mismatch", src: `fun main() { print(1 == true); }`, code: CodeBinaryExpressionOperandsIncompatible},
		{name: "logic_operand", src: `fun main() { print(1 && true); }`, code: CodeBinaryExpressionRequiresOperandType},
		{name: "arith_operand", src: `fun main() { print(true * false); }`, code: CodeBinaryExpressionRequiresOperandType},
		{name: "not_operand", src: `fun main() { print(!1); }`, code: CodeUnaryExpressionRequiresOperandType},
		{name: "neg_operand", src: `fun main() { print(-true); }`, code: CodeUnaryExpressionRequiresOperandType},
		{name: "return_type", src: `fun f(): Int { return 1.0; }`, code: CodeFunctionReturnTypeMismatch},
		{name: "main_params", src: `fun main(a: Int) { }`, code: CodeInvalidDeclarationOfMain},
		{name: "main_result", src: `fun main(): Int { return 0; }`, code: CodeInvalidDeclarationOfMain},
		{name: "main_variable", src: `let main = 1;`, code: CodeInvalidDeclarationOfMain},
		{name: "arg_type", src: `fun f(a: Int) { } fun main() { f(true); }`, code: CodeIncompatibleArgumentType},
		{name: "string_to_user_fn", src: `fun f(a: Int) { } fun main() { f("x"); }`, code: CodeIncompatibleArgumentType},
		{name: "arg_count", src: `fun f(a: Int): Int { return a; } fun main() { print(f()); }`, code: CodeMismatchInNumberOfParameters},
		{name: "int_overflow", src: `let x = 2147483648;`, code: CodeLiteralIntOverflow},
		{name: "neg_int_overflow", src: `let x = -2147483649;`, code: CodeLiteralIntOverflow},
		{name: "expr_int_overflow", src: `fun main() { print(-(2147483648)); }`, code: CodeLiteralIntOverflow},
		{name: "float_overflow", src: `let x = 1e39;`, code: CodeLiteralFloatOverflow},
		{name: "string_in_expression", src: `fun main() { let s = "x"; }`, code: CodeLiteralString},
		{name: "bad_escape", src: `fun main() { print("\q"); }`, code: CodeInvalidStringLiteral},
		{name: "assign_constant", src: `const c = 1; fun main() { c = 2; }`, code: CodeUnableToAssignToConstant},
		{name: "assign_type", src: `let v = 1; fun main() { v = true; }`, code: CodeUnableToAssignIncompatibleTypes},
		{name: "assign_function", src: `fun f() { } fun main() { f = 1; }`, code: CodeUnableToAssignToFunction},
		{name: "call_constant", src: `const c = 1; fun main() { c(); }`, code: CodeUnableToCallConstantAsFunction},
		{name: "call_variable", src: `fun main() { let v = 1; print(v(2)); }`, code: CodeUnableToCallVariableAsFunction},
		{name: "unit_as_value", src: `fun f() { } fun main() { print(f()); }`, code: CodeUnableToCallUnitFunctionAsValueFunction},
		{name: "value_as_unit", src: `fun f(): Int { return 1; } fun main() { f(); }`, code: CodeUnableToCallValueFunctionAsUnitFunction},
		{name: "reference_function", src: `fun f() { } fun main() { print(f); }`, code: CodeUnableToReferenceFunction},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prog, diags := Translate(source.NewFile("test.p0", tc.src))
			if prog != nil {
				t.Fatalf("expected no program on error")
			}
			if !diags.Has(tc.code) {
				t.Fatalf("expected %s, got %+v", tc.code, diags.Items)
			}
		})
	}
}

func TestIfArmBindingsDoNotLeak(t *testing.T) {
	_, diags := Translate(source.NewFile("test.p0", `fun main() { if true let y = 1; print(y); }`))
	if !diags.Has(CodeUnknownIdentifier) {
		t.Fatalf("expected y to be unknown after the if, got %+v", diags.Items)
	}
}

func TestSyntaxErrorsStopBeforeChecking(t *testing.T) {
	prog, diags := Translate(source.NewFile("test.p0", `fun main() { print(y) }`))
	if prog != nil || diags.Len() != 1 {
		t.Fatalf("expected one syntax error, got %+v", diags.Items)
	}
	if diags.Items[0].Code != "" {
		t.Fatalf("syntax errors carry no code, got %q", diags.Items[0].Code)
	}
}
