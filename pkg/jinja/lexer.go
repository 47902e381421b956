package jinja

import (
	"strings"
)

// TokenKind defines the category of a lexed token.
type TokenKind int

// Enumerates the kinds of tokens produced by the lexer. Delimiter tokens
// carry a whitespace-control marker in Trim; the tokens between a start and
// end delimiter describe the tag's expression content.
const (
	TokenText         TokenKind = iota // a run of literal template text
	TokenExprStart                     // "{{" or "{{-"
	TokenExprEnd                       // "}}" or "-}}"
	TokenStmtStart                     // "{%", "{%-" or "{%+"
	TokenStmtEnd                       // "%}", "-%}" or "+%}"
	TokenCommentStart                  // "{#" or "{#-"
	TokenCommentEnd                    // "#}" or "-#}"
	TokenIdent                         // identifier or keyword
	TokenNumber                        // integer or float literal
	TokenString                        // string literal, Value holds the decoded text
	TokenOperator                      // punctuation and operators: | . , ( ) [ ] = == != < <= > >=
	TokenEOF
)

// Token is a single lexed element of the template source. Tokens are
// immutable once produced, except that the parser rewrites the Value of
// TokenText entries when applying whitespace control.
type Token struct {
	Kind  TokenKind
	Value string
	Pos   Position
	Trim  byte // '-', '+' or 0 on delimiter tokens; whitespace-control marker
}

// lexer converts raw template text into a flat token sequence. Everything
// outside {{ }}, {% %} and {# #} delimiters becomes a single TokenText.
type lexer struct {
	input  string
	pos    int
	line   int
	col    int
	tokens []Token
}

// lex tokenizes the whole template source. Unterminated delimiters fail
// with a SyntaxError naming the position of the opening marker.
func lex(input string) ([]Token, error) {
	l := &lexer{input: input, line: 1, col: 1}
	for l.pos < len(l.input) {
		rest := l.input[l.pos:]
		switch {
		case strings.HasPrefix(rest, "{{"):
			if err := l.lexTag(TokenExprStart, TokenExprEnd, "}}"); err != nil {
				return nil, err
			}
		case strings.HasPrefix(rest, "{%"):
			if err := l.lexTag(TokenStmtStart, TokenStmtEnd, "%}"); err != nil {
				return nil, err
			}
		case strings.HasPrefix(rest, "{#"):
			if err := l.lexComment(); err != nil {
				return nil, err
			}
		default:
			l.lexText()
		}
	}
	l.emit(Token{Kind: TokenEOF, Pos: l.position()})
	return l.tokens, nil
}

func (l *lexer) position() Position {
	return Position{Line: l.line, Column: l.col}
}

func (l *lexer) emit(tok Token) {
	l.tokens = append(l.tokens, tok)
}

// advance consumes n bytes of input, keeping line/column bookkeeping.
func (l *lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.input); i++ {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

// lexText consumes literal text up to the next delimiter or end of input.
func (l *lexer) lexText() {
	rest := l.input[l.pos:]
	end := len(rest)
	for _, marker := range []string{"{{", "{%", "{#"} {
		if idx := strings.Index(rest, marker); idx != -1 && idx < end {
			end = idx
		}
	}
	if end == 0 {
		return
	}
	tok := Token{Kind: TokenText, Value: rest[:end], Pos: l.position()}
	l.advance(end)
	l.emit(tok)
}

// lexComment consumes a {# ... #} tag. The comment content is discarded;
// only the delimiter tokens survive so whitespace control still applies.
func (l *lexer) lexComment() error {
	startPos := l.position()
	l.advance(2) // consume "{#"
	start := Token{Kind: TokenCommentStart, Pos: startPos}
	if l.pos < len(l.input) && l.input[l.pos] == '-' {
		start.Trim = '-'
		l.advance(1)
	}
	l.emit(start)

	idx := strings.Index(l.input[l.pos:], "#}")
	if idx == -1 {
		return syntaxErrorf(startPos, "unterminated comment: missing '#}'")
	}
	end := Token{Kind: TokenCommentEnd}
	if idx > 0 {
		if c := l.input[l.pos+idx-1]; c == '-' || c == '+' {
			end.Trim = c
		}
	}
	l.advance(idx)
	end.Pos = l.position()
	l.advance(2) // consume "#}"
	l.emit(end)
	return nil
}

// lexTag consumes a {{ ... }} or {% ... %} tag, tokenizing its content.
func (l *lexer) lexTag(startKind, endKind TokenKind, closer string) error {
	startPos := l.position()
	l.advance(2)
	start := Token{Kind: startKind, Pos: startPos}
	if l.pos < len(l.input) && (l.input[l.pos] == '-' || l.input[l.pos] == '+') {
		start.Trim = l.input[l.pos]
		l.advance(1)
	}
	l.emit(start)

	for {
		l.skipSpace()
		if l.pos >= len(l.input) {
			return syntaxErrorf(startPos, "unterminated tag: missing '%s'", closer)
		}

		rest := l.input[l.pos:]
		// A '-' or '+' directly before the closer is a whitespace-control
		// marker, not an operator.
		if (rest[0] == '-' || rest[0] == '+') && strings.HasPrefix(rest[1:], closer) {
			end := Token{Kind: endKind, Pos: l.position(), Trim: rest[0]}
			l.advance(1 + len(closer))
			l.emit(end)
			return nil
		}
		if strings.HasPrefix(rest, closer) {
			end := Token{Kind: endKind, Pos: l.position()}
			l.advance(len(closer))
			l.emit(end)
			return nil
		}

		if err := l.lexExprToken(startPos); err != nil {
			return err
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.advance(1)
		default:
			return
		}
	}
}

// twoCharOperators are matched before the single-character ones.
var twoCharOperators = []string{"==", "!=", "<=", ">="}

const singleCharOperators = "|.,()[]=<>:"

// lexExprToken consumes one token inside a tag: a string, number,
// identifier or operator.
func (l *lexer) lexExprToken(tagStart Position) error {
	pos := l.position()
	c := l.input[l.pos]

	if c == '\'' || c == '"' {
		return l.lexString(c)
	}
	if c >= '0' && c <= '9' {
		l.lexNumber()
		return nil
	}
	if isIdentStart(c) {
		l.lexIdent()
		return nil
	}
	rest := l.input[l.pos:]
	for _, op := range twoCharOperators {
		if strings.HasPrefix(rest, op) {
			l.advance(2)
			l.emit(Token{Kind: TokenOperator, Value: op, Pos: pos})
			return nil
		}
	}
	if strings.IndexByte(singleCharOperators, c) != -1 {
		l.advance(1)
		l.emit(Token{Kind: TokenOperator, Value: string(c), Pos: pos})
		return nil
	}
	return syntaxErrorf(pos, "unexpected character %q in tag opened at %s", c, tagStart)
}

// lexString consumes a quoted string literal, decoding backslash escapes.
func (l *lexer) lexString(quote byte) error {
	pos := l.position()
	l.advance(1) // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch c {
		case quote:
			l.advance(1)
			l.emit(Token{Kind: TokenString, Value: sb.String(), Pos: pos})
			return nil
		case '\\':
			if l.pos+1 >= len(l.input) {
				return syntaxErrorf(pos, "unterminated string literal")
			}
			next := l.input[l.pos+1]
			switch next {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(next)
			}
			l.advance(2)
		default:
			sb.WriteByte(c)
			l.advance(1)
		}
	}
	return syntaxErrorf(pos, "unterminated string literal")
}

// lexNumber consumes an integer or float literal.
func (l *lexer) lexNumber() {
	pos := l.position()
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.advance(1)
	}
	if l.pos+1 < len(l.input) && l.input[l.pos] == '.' && isDigit(l.input[l.pos+1]) {
		l.advance(1)
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.advance(1)
		}
	}
	l.emit(Token{Kind: TokenNumber, Value: l.input[start:l.pos], Pos: pos})
}

// lexIdent consumes an identifier or keyword.
func (l *lexer) lexIdent() {
	pos := l.position()
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.advance(1)
	}
	l.emit(Token{Kind: TokenIdent, Value: l.input[start:l.pos], Pos: pos})
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
