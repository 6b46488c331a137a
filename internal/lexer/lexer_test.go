package lexer

import (
	"testing"

	"p0c/internal/source"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Kind)
	}
	return out
}

func TestLexBasic(t *testing.T) {
	f := source.NewFile("test.p0", `fun main() { print(1 + 2); }`)
	toks := Lex(f)
	if len(toks) == 0 || toks[len(toks)-1].Kind != TokenEOF {
		t.Fatalf("expected EOF token")
	}
	if toks[0].Kind != TokenFun {
		t.Fatalf("expected first token fun, got %v", toks[0].Kind)
	}
}

func TestLexTokens(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []Kind
	}{
		{
			name:  "keywords",
			input: "const let fun if else while return true false Int Float Bool",
			want: []Kind{TokenConst, TokenLet, TokenFun, TokenIf, TokenElse, TokenWhile, TokenReturn,
				TokenTrue, TokenFalse, TokenIntType, TokenFloatType, TokenBoolType, TokenEOF},
		},
		{
			name:  "operators",
			input: "+ - * / ! = == != < <= > >= && || ? :",
			want: []Kind{TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenBang, TokenEq, TokenEqEq, TokenBangEq,
				TokenLt, TokenLtEq, TokenGt, TokenGtEq, TokenAndAnd, TokenOrOr, TokenQuestion, TokenColon, TokenEOF},
		},
		{
			name:  "numbers",
			input: "12 1.5 2e3 1.5e-3 7.",
			want:  []Kind{TokenInt, TokenFloat, TokenFloat, TokenFloat, TokenInt, TokenBad, TokenEOF},
		},
		{
			name:  "identifiers",
			input: "x _y Integer iffy",
			want:  []Kind{TokenIdent, TokenIdent, TokenIdent, TokenIdent, TokenEOF},
		},
		{
			name:  "comments",
			input: "a // line\n/* block /* nested */ still */ b",
			want:  []Kind{TokenIdent, TokenIdent, TokenEOF},
		},
		{
			name:  "unterminated_comment",
			input: "a /* open",
			want:  []Kind{TokenIdent, TokenBad, TokenEOF},
		},
		{
			name:  "strings",
			input: `"hi" "a\"b"`,
			want:  []Kind{TokenString, TokenString, TokenEOF},
		},
		{
			name:  "unterminated_string",
			input: "\"abc\nx",
			want:  []Kind{TokenBad, TokenIdent, TokenEOF},
		},
		{
			name:  "single_amp",
			input: "a & b",
			want:  []Kind{TokenIdent, TokenBad, TokenIdent, TokenEOF},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := kinds(Lex(source.NewFile("t.p0", tc.input)))
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("token %d: expected %v, got %v", i, tc.want[i], got[i])
				}
			}
		})
	}
}

func TestLexemesAndSpans(t *testing.T) {
	f := source.NewFile("t.p0", `let x = 1.5e-3;`)
	toks := Lex(f)
	want := []string{"let", "x", "=", "1.5e-3", ";", ""}
	for i, w := range want {
		if toks[i].Lexeme != w {
			t.Fatalf("token %d: expected %q, got %q", i, w, toks[i].Lexeme)
		}
		if toks[i].Kind != TokenEOF && toks[i].Span.Text() != w {
			t.Fatalf("token %d: span text %q", i, toks[i].Span.Text())
		}
	}
}
