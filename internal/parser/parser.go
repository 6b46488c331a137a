package parser

import (
	"p0c/internal/ast"
	"p0c/internal/diag"
	"p0c/internal/lexer"
	"p0c/internal/source"
)

type Parser struct {
	file  *source.File
	toks  []lexer.Token
	pos   int
	diags *diag.Bag
	// panicking suppresses follow-on errors until the next declaration.
	panicking bool
}

func Parse(file *source.File) (*ast.Program, *diag.Bag) {
	toks := lexer.Lex(file)
	p := &Parser{file: file, toks: toks, diags: &diag.Bag{}}
	return p.parseProgram(), p.diags
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.at(lexer.TokenEOF) {
		p.panicking = false
		switch {
		case p.match(lexer.TokenConst), p.match(lexer.TokenLet):
			if d := p.parseVarDecl(); d != nil {
				prog.Decls = append(prog.Decls, d)
			}
		case p.match(lexer.TokenFun):
			if d := p.parseFunDecl(); d != nil {
				prog.Decls = append(prog.Decls, d)
			}
		default:
			p.errorHere("expected `const`, `let`, or `fun`, got " + p.peek().Kind.String())
			p.advance()
		}
		if p.panicking {
			p.syncTopLevel()
		}
	}
	return prog
}

// syncTopLevel skips to the next `fun`. `const` and `let` also start local
// statements, so they are not safe resync points.
func (p *Parser) syncTopLevel() {
	for !p.at(lexer.TokenEOF) && !p.at(lexer.TokenFun) {
		p.advance()
	}
}

func (p *Parser) parseVarDecl() ast.Decl {
	startTok := p.prev() // `const` or `let`
	nameTok := p.expect(lexer.TokenIdent, "expected identifier")
	if nameTok.Kind != lexer.TokenIdent {
		return nil
	}
	p.expect(lexer.TokenEq, "expected `=`")
	val := p.parseLiteralValue()
	endTok := p.expect(lexer.TokenSemicolon, "expected `;` after declaration")
	if val == nil {
		return nil
	}
	return &ast.VarDecl{
		Const: startTok.Kind == lexer.TokenConst,
		Ident: ast.Ident{Name: nameTok.Lexeme, S: nameTok.Span},
		Value: val,
		S:     joinSpan(startTok.Span, endTok.Span),
	}
}

// parseLiteralValue parses `true`, `false`, or an optionally signed number.
func (p *Parser) parseLiteralValue() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokenTrue, lexer.TokenFalse:
		p.advance()
		return &ast.BoolLit{Value: tok.Kind == lexer.TokenTrue, S: tok.Span}
	case lexer.TokenPlus, lexer.TokenMinus:
		p.advance()
		num := p.parseNumber()
		if num == nil {
			return nil
		}
		return &ast.UnaryExpr{Op: tok.Lexeme, Expr: num, S: joinSpan(tok.Span, num.Span())}
	}
	return p.parseNumber()
}

func (p *Parser) parseNumber() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokenInt:
		p.advance()
		return &ast.IntLit{Text: tok.Lexeme, S: tok.Span}
	case lexer.TokenFloat:
		p.advance()
		return &ast.FloatLit{Text: tok.Lexeme, S: tok.Span}
	}
	p.errorHere("expected literal value")
	return nil
}

func (p *Parser) parseFunDecl() ast.Decl {
	startTok := p.prev() // `fun`
	nameTok := p.expect(lexer.TokenIdent, "expected function name")
	if nameTok.Kind != lexer.TokenIdent {
		return nil
	}
	p.expect(lexer.TokenLParen, "expected `(` after function name")
	var params []ast.Param
	if !p.at(lexer.TokenRParen) {
		for {
			id := p.expect(lexer.TokenIdent, "expected parameter name")
			p.expect(lexer.TokenColon, "expected `:` after parameter name")
			ty := p.parseType()
			params = append(params, ast.Param{Ident: ast.Ident{Name: id.Lexeme, S: id.Span}, Type: ty})
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	p.expect(lexer.TokenRParen, "expected `)` after parameters")

	var result *ast.Result
	if p.match(lexer.TokenColon) {
		result = &ast.Result{Type: p.parseType()}
	}
	p.expect(lexer.TokenLBrace, "expected `{` to start function body")
	var body []ast.Stmt
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenReturn) && !p.at(lexer.TokenEOF) {
		if p.panicking {
			return nil
		}
		body = append(body, p.parseStmt())
	}
	if result != nil {
		p.expect(lexer.TokenReturn, "expected `return` at end of value function")
		result.Expr = p.parseExpr()
		p.expect(lexer.TokenSemicolon, "expected `;` after return expression")
	} else if p.at(lexer.TokenReturn) {
		p.errorHere("unexpected `return` in unit function")
	}
	endTok := p.expect(lexer.TokenRBrace, "expected `}` to end function body")
	if p.panicking {
		return nil
	}
	return &ast.FunDecl{
		Ident:  ast.Ident{Name: nameTok.Lexeme, S: nameTok.Span},
		Params: params,
		Body:   body,
		Result: result,
		S:      joinSpan(startTok.Span, endTok.Span),
	}
}

func (p *Parser) parseType() ast.Type {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokenIntType:
		p.advance()
		return ast.Type{Kind: ast.TypeInt, S: tok.Span}
	case lexer.TokenFloatType:
		p.advance()
		return ast.Type{Kind: ast.TypeFloat, S: tok.Span}
	case lexer.TokenBoolType:
		p.advance()
		return ast.Type{Kind: ast.TypeBool, S: tok.Span}
	}
	p.errorHere("expected type `Int`, `Float`, or `Bool`")
	return ast.Type{Kind: ast.TypeInt, S: tok.Span}
}

func (p *Parser) parseBlock() *ast.BlockStmt {
	lb := p.advance() // `{`
	stmts := []ast.Stmt{}
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) && !p.panicking {
		stmts = append(stmts, p.parseStmt())
	}
	rb := p.expect(lexer.TokenRBrace, "expected `}`")
	return &ast.BlockStmt{Stmts: stmts, S: joinSpan(lb.Span, rb.Span)}
}

func (p *Parser) parseStmt() ast.Stmt {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokenConst, lexer.TokenLet:
		p.advance()
		id := p.expect(lexer.TokenIdent, "expected identifier")
		p.expect(lexer.TokenEq, "expected `=`")
		ex := p.parseExpr()
		semi := p.expect(lexer.TokenSemicolon, "expected `;`")
		return &ast.DeclStmt{
			Const: tok.Kind == lexer.TokenConst,
			Ident: ast.Ident{Name: id.Lexeme, S: id.Span},
			Expr:  ex,
			S:     joinSpan(tok.Span, semi.Span),
		}
	case lexer.TokenIf:
		p.advance()
		cond := p.parseExpr()
		then := p.parseStmt()
		st := &ast.IfStmt{Cond: cond, Then: then, S: joinSpan(tok.Span, then.Span())}
		if p.match(lexer.TokenElse) {
			st.Else = p.parseStmt()
			st.S = joinSpan(st.S, st.Else.Span())
		}
		return st
	case lexer.TokenWhile:
		p.advance()
		cond := p.parseExpr()
		body := p.parseStmt()
		return &ast.WhileStmt{Cond: cond, Body: body, S: joinSpan(tok.Span, body.Span())}
	case lexer.TokenLBrace:
		return p.parseBlock()
	case lexer.TokenSemicolon:
		p.advance()
		return &ast.EmptyStmt{S: tok.Span}
	case lexer.TokenIdent:
		p.advance()
		id := ast.Ident{Name: tok.Lexeme, S: tok.Span}
		if p.match(lexer.TokenLParen) {
			args := p.parseArgs()
			semi := p.expect(lexer.TokenSemicolon, "expected `;` after call")
			return &ast.CallStmt{Ident: id, Args: args, S: joinSpan(tok.Span, semi.Span)}
		}
		if p.match(lexer.TokenEq) {
			ex := p.parseExpr()
			semi := p.expect(lexer.TokenSemicolon, "expected `;` after assignment")
			return &ast.AssignStmt{Ident: id, Expr: ex, S: joinSpan(tok.Span, semi.Span)}
		}
		p.errorHere("expected `(` or `=` after identifier")
		return &ast.EmptyStmt{S: tok.Span}
	}
	p.errorHere("expected statement, got " + tok.Kind.String())
	p.advance()
	return &ast.EmptyStmt{S: tok.Span}
}

// parseArgs parses a call argument list after `(`, consuming the `)`.
func (p *Parser) parseArgs() []ast.Expr {
	args := []ast.Expr{}
	if !p.at(lexer.TokenRParen) {
		for {
			args = append(args, p.parseExpr())
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	p.expect(lexer.TokenRParen, "expected `)` after arguments")
	return args
}

// parseExpr parses a full expression, ternary included.
func (p *Parser) parseExpr() ast.Expr {
	cond := p.parseExprWith(1)
	if !p.match(lexer.TokenQuestion) {
		return cond
	}
	then := p.parseExpr()
	p.expect(lexer.TokenColon, "expected `:` in conditional expression")
	els := p.parseExpr()
	return &ast.TernaryExpr{Cond: cond, Then: then, Else: els, S: joinSpan(cond.Span(), els.Span())}
}

const precRelational = 3

func (p *Parser) parseExprWith(minPrec int) ast.Expr {
	left := p.parsePrefix()
	for {
		op, prec := p.peekInfix()
		if prec < minPrec {
			break
		}
		opTok := p.advance()
		right := p.parseExprWith(prec + 1)
		left = &ast.BinaryExpr{Op: op, Left: left, Right: right, S: joinSpan(left.Span(), right.Span())}
		if prec == precRelational {
			if _, next := p.peekInfix(); next == precRelational {
				p.errorAt(p.peek().Span, "comparison operators cannot be chained after `"+opTok.Lexeme+"`")
			}
		}
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokenIdent:
		p.advance()
		if p.match(lexer.TokenLParen) {
			args := p.parseArgs()
			return &ast.CallExpr{Ident: ast.Ident{Name: tok.Lexeme, S: tok.Span}, Args: args, S: joinSpan(tok.Span, p.prev().Span)}
		}
		return &ast.IdentExpr{Name: tok.Lexeme, S: tok.Span}
	case lexer.TokenInt:
		p.advance()
		return &ast.IntLit{Text: tok.Lexeme, S: tok.Span}
	case lexer.TokenFloat:
		p.advance()
		return &ast.FloatLit{Text: tok.Lexeme, S: tok.Span}
	case lexer.TokenString:
		p.advance()
		return &ast.StringLit{Text: tok.Lexeme, S: tok.Span}
	case lexer.TokenTrue, lexer.TokenFalse:
		p.advance()
		return &ast.BoolLit{Value: tok.Kind == lexer.TokenTrue, S: tok.Span}
	case lexer.TokenLParen:
		p.advance()
		ex := p.parseExpr()
		rp := p.expect(lexer.TokenRParen, "expected `)`")
		return &ast.ParenExpr{Expr: ex, S: joinSpan(tok.Span, rp.Span)}
	case lexer.TokenMinus, lexer.TokenBang, lexer.TokenPlus:
		p.advance()
		ex := p.parsePrefix()
		return &ast.UnaryExpr{Op: tok.Lexeme, Expr: ex, S: joinSpan(tok.Span, ex.Span())}
	default:
		p.errorHere("expected expression, got " + tok.Kind.String())
		return &ast.IntLit{Text: "0", S: tok.Span}
	}
}

func (p *Parser) peekInfix() (op string, prec int) {
	switch p.peek().Kind {
	case lexer.TokenOrOr:
		return "||", 1
	case lexer.TokenAndAnd:
		return "&&", 2
	case lexer.TokenEqEq, lexer.TokenBangEq, lexer.TokenLt, lexer.TokenLtEq, lexer.TokenGt, lexer.TokenGtEq:
		return p.peek().Lexeme, precRelational
	case lexer.TokenPlus, lexer.TokenMinus:
		return p.peek().Lexeme, 4
	case lexer.TokenStar, lexer.TokenSlash:
		return p.peek().Lexeme, 5
	default:
		return "", -1
	}
}

func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) prev() lexer.Token { return p.toks[p.pos-1] }

func (p *Parser) at(k lexer.Kind) bool { return p.peek().Kind == k }

func (p *Parser) match(k lexer.Kind) bool {
	if p.at(k) {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) advance() lexer.Token {
	t := p.peek()
	if t.Kind != lexer.TokenEOF {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k lexer.Kind, msg string) lexer.Token {
	if p.at(k) {
		return p.advance()
	}
	p.errorAt(p.peek().Span, msg)
	return p.peek()
}

func (p *Parser) errorHere(msg string) {
	p.errorAt(p.peek().Span, msg)
}

func (p *Parser) errorAt(s source.Span, msg string) {
	if p.panicking {
		return
	}
	p.panicking = true
	if tok := p.peek(); tok.Kind == lexer.TokenBad {
		s, msg = tok.Span, "invalid token "+quoteLexeme(tok.Lexeme)
	}
	fn, line, col := s.LocStart()
	p.diags.Add(fn, line, col, msg)
}

func quoteLexeme(s string) string {
	if len(s) > 20 {
		s = s[:20] + "..."
	}
	return "`" + s + "`"
}

func joinSpan(a source.Span, b source.Span) source.Span { return source.Join(a, b) }
