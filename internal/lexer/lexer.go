package lexer

import (
	"unicode"

	"p0c/internal/source"
)

func Lex(file *source.File) []Token {
	lx := &lexer{file: file, input: file.Input}
	for {
		lx.skipSpaceAndComments()
		start := lx.pos
		if lx.pos >= len(lx.input) {
			lx.emit(TokenEOF, "", start, start)
			break
		}
		ch := lx.peek()
		switch {
		case isIdentStart(ch):
			lx.lexIdentOrKeyword()
		case isDigit(ch):
			lx.lexNumber()
		default:
			lx.lexPunct()
		}
	}
	return lx.tokens
}

type lexer struct {
	file   *source.File
	input  string
	pos    int
	tokens []Token
}

func (lx *lexer) peek() byte { return lx.input[lx.pos] }

func (lx *lexer) peekAt(off int) byte {
	if lx.pos+off >= len(lx.input) {
		return 0
	}
	return lx.input[lx.pos+off]
}

func (lx *lexer) next() byte {
	ch := lx.input[lx.pos]
	lx.pos++
	return ch
}

func (lx *lexer) emit(k Kind, lex string, start, end int) {
	lx.tokens = append(lx.tokens, Token{
		Kind:   k,
		Lexeme: lex,
		Span:   source.Span{File: lx.file, Start: start, End: end},
	})
}

func (lx *lexer) skipSpaceAndComments() {
	for lx.pos < len(lx.input) {
		ch := lx.input[lx.pos]
		if ch <= ' ' {
			lx.pos++
			continue
		}
		// line comment
		if ch == '/' && lx.peekAt(1) == '/' {
			lx.pos += 2
			for lx.pos < len(lx.input) && lx.input[lx.pos] != '\n' {
				lx.pos++
			}
			continue
		}
		// block comments nest
		if ch == '/' && lx.peekAt(1) == '*' {
			start := lx.pos
			lx.pos += 2
			depth := 1
			for lx.pos < len(lx.input) && depth > 0 {
				switch {
				case lx.input[lx.pos] == '/' && lx.peekAt(1) == '*':
					depth++
					lx.pos += 2
				case lx.input[lx.pos] == '*' && lx.peekAt(1) == '/':
					depth--
					lx.pos += 2
				default:
					lx.pos++
				}
			}
			if depth > 0 {
				lx.emit(TokenBad, lx.input[start:lx.pos], start, lx.pos)
			}
			continue
		}
		return
	}
}

var keywords = map[string]Kind{
	"const":  TokenConst,
	"let":    TokenLet,
	"fun":    TokenFun,
	"if":     TokenIf,
	"else":   TokenElse,
	"while":  TokenWhile,
	"return": TokenReturn,
	"true":   TokenTrue,
	"false":  TokenFalse,
	"Int":    TokenIntType,
	"Float":  TokenFloatType,
	"Bool":   TokenBoolType,
}

func (lx *lexer) lexIdentOrKeyword() {
	start := lx.pos
	lx.pos++
	for lx.pos < len(lx.input) && isIdentContinue(lx.input[lx.pos]) {
		lx.pos++
	}
	lex := lx.input[start:lx.pos]
	if k, ok := keywords[lex]; ok {
		lx.emit(k, lex, start, lx.pos)
		return
	}
	lx.emit(TokenIdent, lex, start, lx.pos)
}

// lexNumber scans 12, 1.5, 2e3 and 1.5e-3. A '.' not followed by a digit
// ends the integer.
func (lx *lexer) lexNumber() {
	start := lx.pos
	kind := TokenInt
	lx.skipDigits()
	if lx.pos < len(lx.input) && lx.peek() == '.' && isDigit(lx.peekAt(1)) {
		kind = TokenFloat
		lx.pos++
		lx.skipDigits()
	}
	if lx.pos < len(lx.input) && (lx.peek() == 'e' || lx.peek() == 'E') {
		off := 1
		if c := lx.peekAt(1); c == '+' || c == '-' {
			off = 2
		}
		if isDigit(lx.peekAt(off)) {
			kind = TokenFloat
			lx.pos += off
			lx.skipDigits()
		}
	}
	lx.emit(kind, lx.input[start:lx.pos], start, lx.pos)
}

func (lx *lexer) skipDigits() {
	for lx.pos < len(lx.input) && isDigit(lx.input[lx.pos]) {
		lx.pos++
	}
}

func (lx *lexer) lexString() {
	start := lx.pos
	lx.pos++ // opening "
	for lx.pos < len(lx.input) {
		ch := lx.next()
		if ch == '\n' {
			break
		}
		if ch == '"' {
			lx.emit(TokenString, lx.input[start:lx.pos], start, lx.pos)
			return
		}
		if ch == '\\' && lx.pos < len(lx.input) {
			lx.pos++
		}
	}
	// unterminated
	lx.emit(TokenBad, lx.input[start:lx.pos], start, lx.pos)
}

func (lx *lexer) lexPunct() {
	start := lx.pos
	ch := lx.next()
	two := func(second byte, k2 Kind, lex2 string, k1 Kind, lex1 string) {
		if lx.pos < len(lx.input) && lx.input[lx.pos] == second {
			lx.pos++
			lx.emit(k2, lex2, start, lx.pos)
			return
		}
		lx.emit(k1, lex1, start, lx.pos)
	}
	switch ch {
	case '(':
		lx.emit(TokenLParen, "(", start, lx.pos)
	case ')':
		lx.emit(TokenRParen, ")", start, lx.pos)
	case '{':
		lx.emit(TokenLBrace, "{", start, lx.pos)
	case '}':
		lx.emit(TokenRBrace, "}", start, lx.pos)
	case ',':
		lx.emit(TokenComma, ",", start, lx.pos)
	case ';':
		lx.emit(TokenSemicolon, ";", start, lx.pos)
	case ':':
		lx.emit(TokenColon, ":", start, lx.pos)
	case '?':
		lx.emit(TokenQuestion, "?", start, lx.pos)
	case '+':
		lx.emit(TokenPlus, "+", start, lx.pos)
	case '-':
		lx.emit(TokenMinus, "-", start, lx.pos)
	case '*':
		lx.emit(TokenStar, "*", start, lx.pos)
	case '/':
		lx.emit(TokenSlash, "/", start, lx.pos)
	case '!':
		two('=', TokenBangEq, "!=", TokenBang, "!")
	case '=':
		two('=', TokenEqEq, "==", TokenEq, "=")
	case '<':
		two('=', TokenLtEq, "<=", TokenLt, "<")
	case '>':
		two('=', TokenGtEq, ">=", TokenGt, ">")
	case '&':
		two('&', TokenAndAnd, "&&", TokenBad, "&")
	case '|':
		two('|', TokenOrOr, "||", TokenBad, "|")
	case '"':
		lx.pos-- // back to opening
		lx.lexString()
	default:
		lx.emit(TokenBad, string(ch), start, lx.pos)
	}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch < 0x80 && unicode.IsLetter(rune(ch)))
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
