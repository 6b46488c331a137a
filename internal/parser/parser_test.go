package parser

import (
	"fmt"
	"strings"
	"testing"

	"p0c/internal/ast"
	"p0c/internal/source"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, diags := Parse(source.NewFile("test.p0", src))
	if diags.Len() > 0 {
		t.Fatalf("unexpected diags: %+v", diags.Items)
	}
	return prog
}

func TestParseDeclarations(t *testing.T) {
	prog := parseOK(t, `
const limit = 10;
let ratio = -1.5;
let on = true;
fun add(a: Int, b: Int): Int { return a + b; }
fun main() { print(add(limit, 2)); }
`)
	if len(prog.Decls) != 5 {
		t.Fatalf("expected 5 decls, got %d", len(prog.Decls))
	}
	c, ok := prog.Decls[0].(*ast.VarDecl)
	if !ok || !c.Const || c.Ident.Name != "limit" {
		t.Fatalf("expected const limit, got %#v", prog.Decls[0])
	}
	r := prog.Decls[1].(*ast.VarDecl)
	u, ok := r.Value.(*ast.UnaryExpr)
	if !ok || u.Op != "-" {
		t.Fatalf("expected signed literal, got %T", r.Value)
	}
	if f, ok := u.Expr.(*ast.FloatLit); !ok || f.Text != "1.5" {
		t.Fatalf("expected float literal 1.5, got %#v", u.Expr)
	}
	add := prog.Decls[3].(*ast.FunDecl)
	if len(add.Params) != 2 || add.Params[1].Ident.Name != "b" || add.Params[1].Type.Kind != ast.TypeInt {
		t.Fatalf("unexpected params %#v", add.Params)
	}
	if add.Result == nil || add.Result.Type.Kind != ast.TypeInt {
		t.Fatalf("expected Int result")
	}
	if _, ok := add.Result.Expr.(*ast.BinaryExpr); !ok {
		t.Fatalf("expected binary result expr, got %T", add.Result.Expr)
	}
	main := prog.Decls[4].(*ast.FunDecl)
	if main.Result != nil || len(main.Body) != 1 {
		t.Fatalf("expected unit main with one statement")
	}
	call, ok := main.Body[0].(*ast.CallStmt)
	if !ok || call.Ident.Name != "print" || len(call.Args) != 1 {
		t.Fatalf("expected print call, got %#v", main.Body[0])
	}
	if inner, ok := call.Args[0].(*ast.CallExpr); !ok || inner.Ident.Name != "add" || len(inner.Args) != 2 {
		t.Fatalf("expected add(...) argument, got %#v", call.Args[0])
	}
}

func TestParseStatements(t *testing.T) {
	prog := parseOK(t, `fun main() {
  let x = 1;
  const y = 2;
  x = x + y;
  if x > 2 print("big"); else { print("small"); }
  while x < 10 x = x + 1;
  ;
}`)
	body := prog.Decls[0].(*ast.FunDecl).Body
	want := []string{"*ast.DeclStmt", "*ast.DeclStmt", "*ast.AssignStmt", "*ast.IfStmt", "*ast.WhileStmt", "*ast.EmptyStmt"}
	if len(body) != len(want) {
		t.Fatalf("expected %d statements, got %d", len(want), len(body))
	}
	for i, st := range body {
		if got := fmt.Sprintf("%T", st); got != want[i] {
			t.Fatalf("stmt %d: expected %s, got %s", i, want[i], got)
		}
	}
	ifs := body[3].(*ast.IfStmt)
	if _, ok := ifs.Else.(*ast.BlockStmt); !ok {
		t.Fatalf("expected block else, got %T", ifs.Else)
	}
	if !body[1].(*ast.DeclStmt).Const || body[0].(*ast.DeclStmt).Const {
		t.Fatalf("const/let flags are wrong")
	}
}

// render prints an expression fully parenthesized.
func render(e ast.Expr) string {
	switch x := e.(type) {
	case *ast.TernaryExpr:
		return "(" + render(x.Cond) + " ? " + render(x.Then) + " : " + render(x.Else) + ")"
	case *ast.BinaryExpr:
		return "(" + render(x.Left) + " " + x.Op + " " + render(x.Right) + ")"
	case *ast.UnaryExpr:
		return "(" + x.Op + render(x.Expr) + ")"
	case *ast.ParenExpr:
		return render(x.Expr)
	case *ast.CallExpr:
		parts := make([]string, 0, len(x.Args))
		for _, a := range x.Args {
			parts = append(parts, render(a))
		}
		return x.Ident.Name + "(" + strings.Join(parts, ", ") + ")"
	case *ast.IdentExpr:
		return x.Name
	case *ast.IntLit:
		return x.Text
	case *ast.FloatLit:
		return x.Text
	case *ast.StringLit:
		return x.Text
	case *ast.BoolLit:
		if x.Value {
			return "true"
		}
		return "false"
	}
	return "?"
}

func TestParsePrecedence(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{src: "1 + 2 * 3", want: "(1 + (2 * 3))"},
		{src: "1 - 2 - 3", want: "((1 - 2) - 3)"},
		{src: "a || b && c", want: "(a || (b && c))"},
		{src: "a == b && c < d", want: "((a == b) && (c < d))"},
		{src: "-x * y", want: "((-x) * y)"},
		{src: "!a || b", want: "((!a) || b)"},
		{src: "(1 + 2) * 3", want: "((1 + 2) * 3)"},
		{src: "a ? 1 : b ? 2 : 3", want: "(a ? 1 : (b ? 2 : 3))"},
		{src: "a || b ? x + 1 : f(y, 2)", want: "((a || b) ? (x + 1) : f(y, 2))"},
		{src: "--1", want: "(-(-1))"},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			prog := parseOK(t, "fun f(): Int { return "+tc.src+"; }")
			got := render(prog.Decls[0].(*ast.FunDecl).Result.Expr)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{name: "chained_comparison", src: `fun f(): Bool { return 1 < 2 < 3; }`, want: "comparison operators cannot be chained"},
		{name: "non_literal_global", src: `let x = y;`, want: "expected literal value"},
		{name: "missing_semicolon", src: `fun main() { print(1) }`, want: "expected `;` after call"},
		{name: "missing_return", src: `fun f(): Int { }`, want: "expected `return` at end of value function"},
		{name: "return_in_unit", src: `fun f() { return 1; }`, want: "unexpected `return` in unit function"},
		{name: "bad_type", src: `fun f(a: String) { }`, want: "expected type `Int`, `Float`, or `Bool`"},
		{name: "top_level_statement", src: `print(1);`, want: "expected `const`, `let`, or `fun`"},
		{name: "bad_token", src: `fun main() { x = 1 & 2; }`, want: "invalid token `&`"},
		{name: "ident_statement", src: `fun main() { x; }`, want: "expected `(` or `=` after identifier"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, diags := Parse(source.NewFile("test.p0", tc.src))
			if diags.Len() == 0 {
				t.Fatalf("expected diagnostics")
			}
			if !strings.Contains(diags.Items[0].Msg, tc.want) {
				t.Fatalf("expected %q, got: %+v", tc.want, diags.Items)
			}
		})
	}
}

func TestParseRecoversAtNextFunction(t *testing.T) {
	prog, diags := Parse(source.NewFile("test.p0", `fun broken() { let = ; let y = 2; } fun main() { print(1); }`))
	if diags.Len() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %+v", diags.Items)
	}
	if len(prog.Decls) != 1 || prog.Decls[0].Name().Name != "main" {
		t.Fatalf("expected main to survive recovery, got %d decls", len(prog.Decls))
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, diags := Parse(source.NewFile("pos.p0", "fun main() {\n  print(1)\n}"))
	if diags.Len() == 0 {
		t.Fatalf("expected diagnostics")
	}
	it := diags.Items[0]
	if it.Filename != "pos.p0" || it.Line != 3 || it.Col != 1 {
		t.Fatalf("expected pos.p0:3:1, got %s:%d:%d", it.Filename, it.Line, it.Col)
	}
}
