package lexer

import "p0c/internal/source"

type Kind int

const (
	TokenEOF Kind = iota
	TokenBad

	// Literals / identifiers
	TokenIdent
	TokenInt
	TokenFloat
	TokenString

	// Keywords
	TokenConst
	TokenLet
	TokenFun
	TokenIf
	TokenElse
	TokenWhile
	TokenReturn
	TokenTrue
	TokenFalse
	TokenIntType
	TokenFloatType
	TokenBoolType

	// Punct
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenComma
	TokenSemicolon
	TokenColon
	TokenQuestion

	// Operators
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenBang
	TokenEq
	TokenEqEq
	TokenBangEq
	TokenLt
	TokenLtEq
	TokenGt
	TokenGtEq
	TokenAndAnd
	TokenOrOr
)

var kindNames = map[Kind]string{
	TokenEOF:       "end of file",
	TokenBad:       "invalid token",
	TokenIdent:     "identifier",
	TokenInt:       "integer literal",
	TokenFloat:     "float literal",
	TokenString:    "string literal",
	TokenConst:     "'const'",
	TokenLet:       "'let'",
	TokenFun:       "'fun'",
	TokenIf:        "'if'",
	TokenElse:      "'else'",
	TokenWhile:     "'while'",
	TokenReturn:    "'return'",
	TokenTrue:      "'true'",
	TokenFalse:     "'false'",
	TokenIntType:   "'Int'",
	TokenFloatType: "'Float'",
	TokenBoolType:  "'Bool'",
	TokenLParen:    "'('",
	TokenRParen:    "')'",
	TokenLBrace:    "'{'",
	TokenRBrace:    "'}'",
	TokenComma:     "','",
	TokenSemicolon: "';'",
	TokenColon:     "':'",
	TokenQuestion:  "'?'",
	TokenPlus:      "'+'",
	TokenMinus:     "'-'",
	TokenStar:      "'*'",
	TokenSlash:     "'/'",
	TokenBang:      "'!'",
	TokenEq:        "'='",
	TokenEqEq:      "'=='",
	TokenBangEq:    "'!='",
	TokenLt:        "'<'",
	TokenLtEq:      "'<='",
	TokenGt:        "'>'",
	TokenGtEq:      "'>='",
	TokenAndAnd:    "'&&'",
	TokenOrOr:      "'||'",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "token"
}

type Token struct {
	Kind   Kind
	Lexeme string
	Span   source.Span
}

func (t Token) Is(k Kind) bool { return t.Kind == k }
