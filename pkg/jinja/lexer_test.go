package jinja

import (
	"errors"
	"testing"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestLexTokenKinds(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []TokenKind
	}{
		{
			name:     "plain text",
			template: "hello world",
			want:     []TokenKind{TokenText, TokenEOF},
		},
		{
			name:     "expression tag",
			template: "hi {{ name }}!",
			want: []TokenKind{
				TokenText, TokenExprStart, TokenIdent, TokenExprEnd, TokenText, TokenEOF,
			},
		},
		{
			name:     "statement tag",
			template: "{% if ready %}yes{% endif %}",
			want: []TokenKind{
				TokenStmtStart, TokenIdent, TokenIdent, TokenStmtEnd,
				TokenText,
				TokenStmtStart, TokenIdent, TokenStmtEnd,
				TokenEOF,
			},
		},
		{
			name:     "comment tag",
			template: "a{# ignored #}b",
			want: []TokenKind{
				TokenText, TokenCommentStart, TokenCommentEnd, TokenText, TokenEOF,
			},
		},
		{
			name:     "filter pipeline",
			template: "{{ items | sort(attribute='name') }}",
			want: []TokenKind{
				TokenExprStart, TokenIdent, TokenOperator, TokenIdent, TokenOperator,
				TokenIdent, TokenOperator, TokenString, TokenOperator, TokenExprEnd,
				TokenEOF,
			},
		},
		{
			name:     "numbers and comparison",
			template: "{{ count >= 2.5 }}",
			want: []TokenKind{
				TokenExprStart, TokenIdent, TokenOperator, TokenNumber, TokenExprEnd,
				TokenEOF,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := lex(tt.template)
			if err != nil {
				t.Fatalf("lex() error = %v", err)
			}
			got := kinds(tokens)
			if len(got) != len(tt.want) {
				t.Fatalf("lex() kinds = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d kind = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLexTrimMarkers(t *testing.T) {
	tokens, err := lex("a {%- if x +%} b {{- y -}} c")
	if err != nil {
		t.Fatalf("lex() error = %v", err)
	}

	var stmtStart, stmtEnd, exprStart, exprEnd *Token
	for i := range tokens {
		switch tokens[i].Kind {
		case TokenStmtStart:
			stmtStart = &tokens[i]
		case TokenStmtEnd:
			stmtEnd = &tokens[i]
		case TokenExprStart:
			exprStart = &tokens[i]
		case TokenExprEnd:
			exprEnd = &tokens[i]
		}
	}
	if stmtStart == nil || stmtStart.Trim != '-' {
		t.Errorf("statement start marker = %v, want '-'", stmtStart)
	}
	if stmtEnd == nil || stmtEnd.Trim != '+' {
		t.Errorf("statement end marker = %v, want '+'", stmtEnd)
	}
	if exprStart == nil || exprStart.Trim != '-' {
		t.Errorf("expression start marker = %v, want '-'", exprStart)
	}
	if exprEnd == nil || exprEnd.Trim != '-' {
		t.Errorf("expression end marker = %v, want '-'", exprEnd)
	}
}

func TestLexStringEscapes(t *testing.T) {
	tokens, err := lex(`{{ 'it\'s\n' }}`)
	if err != nil {
		t.Fatalf("lex() error = %v", err)
	}
	if tokens[1].Kind != TokenString || tokens[1].Value != "it's\n" {
		t.Errorf("string token = %q, want %q", tokens[1].Value, "it's\n")
	}
}

func TestLexPositions(t *testing.T) {
	tokens, err := lex("line one\n  {{ name }}")
	if err != nil {
		t.Fatalf("lex() error = %v", err)
	}
	// tokens: Text, ExprStart, Ident, ExprEnd, EOF
	if got := tokens[1].Pos; got.Line != 2 || got.Column != 3 {
		t.Errorf("expression start position = %s, want 2:3", got)
	}
	if got := tokens[2].Pos; got.Line != 2 || got.Column != 6 {
		t.Errorf("identifier position = %s, want 2:6", got)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name     string
		template string
	}{
		{name: "unterminated expression", template: "a {{ name"},
		{name: "unterminated statement", template: "{% if x"},
		{name: "unterminated comment", template: "{# never closed"},
		{name: "unterminated string", template: "{{ 'abc }}"},
		{name: "stray character in tag", template: "{{ a ? b }}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lex(tt.template)
			if err == nil {
				t.Fatalf("lex() expected error for %q", tt.template)
			}
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Errorf("lex() error = %T, want *SyntaxError", err)
			}
		})
	}
}
