package jinja

import (
	"strings"
)

// parser consumes the token stream and builds the AST. Whitespace control is
// applied to the token stream up front (see applyWhitespaceControl), so the
// parser and renderer never re-trim text.
type parser struct {
	tokens []Token
	index  int
}

// parse builds the AST for a lexed token stream.
func parse(tokens []Token, opts Options) (*BlockNode, error) {
	applyWhitespaceControl(tokens, opts)
	p := &parser{tokens: tokens}
	block, _, _, err := p.parseBlock("", Position{})
	if err != nil {
		return nil, err
	}
	return block, nil
}

// blockEnds maps a block opener to the tags that may close or continue it.
var blockEnds = map[string][]string{
	"if":    {"elif", "else", "endif"},
	"else":  {"endif"},
	"for":   {"endfor"},
	"macro": {"endmacro"},
}

// endTags is the set of tags that never open a statement of their own.
var endTags = map[string]bool{
	"elif":     true,
	"else":     true,
	"endif":    true,
	"endfor":   true,
	"endmacro": true,
}

// parseBlock parses nodes until it reaches one of the closing tags allowed
// for opener, or end of input. It consumes the closing tag's keyword but not
// its arguments or the '%}', which remain for the caller. When opener is
// empty the block runs to EOF.
func (p *parser) parseBlock(opener string, openerPos Position) (*BlockNode, string, Position, error) {
	block := &BlockNode{Pos: p.cur().Pos}
	allowed := blockEnds[opener]

	for {
		tok := p.cur()
		switch tok.Kind {
		case TokenEOF:
			if opener != "" {
				return nil, "", Position{}, syntaxErrorf(openerPos, "unclosed '{%% %s %%}' tag", opener)
			}
			return block, "", Position{}, nil

		case TokenText:
			p.index++
			if tok.Value != "" {
				block.Nodes = append(block.Nodes, &TextNode{Pos: tok.Pos, Text: tok.Value})
			}

		case TokenCommentStart:
			p.index++
			if p.cur().Kind == TokenCommentEnd {
				p.index++
			}

		case TokenExprStart:
			p.index++
			expr, err := p.parseExpression()
			if err != nil {
				return nil, "", Position{}, err
			}
			if p.cur().Kind != TokenExprEnd {
				return nil, "", Position{}, syntaxErrorf(p.cur().Pos, "expected '}}'")
			}
			p.index++
			block.Nodes = append(block.Nodes, &OutputNode{Pos: tok.Pos, Expr: expr})

		case TokenStmtStart:
			keyword, kwPos, err := p.peekStmtKeyword()
			if err != nil {
				return nil, "", Position{}, err
			}
			for _, end := range allowed {
				if keyword == end {
					p.index += 2 // consume the start delimiter and the keyword
					return block, keyword, kwPos, nil
				}
			}
			if endTags[keyword] {
				return nil, "", Position{}, syntaxErrorf(kwPos, "unexpected '{%% %s %%}'", keyword)
			}
			p.index += 2
			node, err := p.parseStatement(keyword, tok.Pos, kwPos)
			if err != nil {
				return nil, "", Position{}, err
			}
			block.Nodes = append(block.Nodes, node)

		default:
			return nil, "", Position{}, syntaxErrorf(tok.Pos, "unexpected token")
		}
	}
}

// peekStmtKeyword returns the tag keyword of the statement starting at the
// current position without consuming anything.
func (p *parser) peekStmtKeyword() (string, Position, error) {
	kw := p.peek(1)
	if kw.Kind != TokenIdent {
		return "", kw.Pos, syntaxErrorf(kw.Pos, "expected tag name after '{%%'")
	}
	return kw.Value, kw.Pos, nil
}

// parseStatement parses one statement tag. The start delimiter and keyword
// have been consumed; tagPos is the position of the opening '{%'.
func (p *parser) parseStatement(keyword string, tagPos, kwPos Position) (Node, error) {
	switch keyword {
	case "if":
		return p.parseIf(tagPos)
	case "for":
		return p.parseFor(tagPos)
	case "macro":
		return p.parseMacro(tagPos)
	}
	// Not a known tag. A call like {% signal_row(s) %} invokes a macro in
	// statement position; anything else is a syntax error.
	if p.cur().Kind == TokenOperator && p.cur().Value == "(" {
		p.index++
		args, kwargs, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		if err := p.expectStmtEnd(); err != nil {
			return nil, err
		}
		call := &callExpr{Pos: kwPos, Name: keyword, Args: args, Kwargs: kwargs}
		return &CallNode{Pos: tagPos, Call: call}, nil
	}
	return nil, syntaxErrorf(kwPos, "unknown tag '%s'", keyword)
}

// parseIf parses an if tag whose keyword has been consumed. An elif chain
// desugars into a nested IfNode in the else branch.
func (p *parser) parseIf(tagPos Position) (Node, error) {
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	then, end, endPos, err := p.parseBlock("if", tagPos)
	if err != nil {
		return nil, err
	}
	node := &IfNode{Pos: tagPos, Cond: cond, Then: then}

	switch end {
	case "endif":
		if err := p.expectStmtEnd(); err != nil {
			return nil, err
		}
	case "elif":
		nested, err := p.parseIf(endPos)
		if err != nil {
			return nil, err
		}
		node.Else = &BlockNode{Pos: endPos, Nodes: []Node{nested}}
	case "else":
		if err := p.expectStmtEnd(); err != nil {
			return nil, err
		}
		elseBlock, _, _, err := p.parseBlock("else", endPos)
		if err != nil {
			return nil, err
		}
		if err := p.expectStmtEnd(); err != nil {
			return nil, err
		}
		node.Else = elseBlock
	}
	return node, nil
}

// parseFor parses a for tag whose keyword has been consumed. Both
// {% for item in seq %} and {% for key, value in mapping %} are accepted.
func (p *parser) parseFor(tagPos Position) (Node, error) {
	first, _, err := p.expectIdent("loop variable after 'for'")
	if err != nil {
		return nil, err
	}
	node := &ForNode{Pos: tagPos, Var: first}
	if p.matchOperator(",") {
		second, _, err := p.expectIdent("value variable after ','")
		if err != nil {
			return nil, err
		}
		node.KeyVar = first
		node.Var = second
	}
	if !p.matchIdent("in") {
		return nil, syntaxErrorf(p.cur().Pos, "expected 'in' in for tag")
	}
	node.Iterable, err = p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	node.Body, _, _, err = p.parseBlock("for", tagPos)
	if err != nil {
		return nil, err
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	return node, nil
}

// parseMacro parses a macro definition whose keyword has been consumed.
// Parameters are 'name', 'name: type' (the annotation is documentation only
// and is discarded) or 'name = default'.
func (p *parser) parseMacro(tagPos Position) (Node, error) {
	name, namePos, err := p.expectIdent("macro name")
	if err != nil {
		return nil, err
	}
	node := &MacroNode{Pos: tagPos, Name: name}
	if err := p.expectOperator("("); err != nil {
		return nil, err
	}
	if !p.matchOperator(")") {
		for {
			paramName, _, err := p.expectIdent("parameter name")
			if err != nil {
				return nil, err
			}
			param := MacroParam{Name: paramName}
			if p.matchOperator(":") {
				if _, _, err := p.expectIdent("type annotation after ':'"); err != nil {
					return nil, err
				}
			}
			if p.matchOperator("=") {
				param.Default, err = p.parseExpression()
				if err != nil {
					return nil, err
				}
			}
			node.Params = append(node.Params, param)
			if p.matchOperator(",") {
				continue
			}
			if err := p.expectOperator(")"); err != nil {
				return nil, err
			}
			break
		}
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	node.Body, _, _, err = p.parseBlock("macro", namePos)
	if err != nil {
		return nil, err
	}
	if err := p.expectStmtEnd(); err != nil {
		return nil, err
	}
	return node, nil
}

// Cursor helpers.

var eofToken = Token{Kind: TokenEOF}

func (p *parser) cur() Token {
	return p.peek(0)
}

func (p *parser) peek(n int) Token {
	if p.index+n >= len(p.tokens) {
		return eofToken
	}
	return p.tokens[p.index+n]
}

func (p *parser) matchOperator(v string) bool {
	if tok := p.cur(); tok.Kind == TokenOperator && tok.Value == v {
		p.index++
		return true
	}
	return false
}

func (p *parser) expectOperator(v string) error {
	if !p.matchOperator(v) {
		return syntaxErrorf(p.cur().Pos, "expected '%s'", v)
	}
	return nil
}

func (p *parser) matchIdent(v string) bool {
	_, ok := p.matchIdentPos(v)
	return ok
}

func (p *parser) matchIdentPos(v string) (Position, bool) {
	if tok := p.cur(); tok.Kind == TokenIdent && tok.Value == v {
		p.index++
		return tok.Pos, true
	}
	return Position{}, false
}

func (p *parser) expectIdent(what string) (string, Position, error) {
	tok := p.cur()
	if tok.Kind != TokenIdent {
		return "", tok.Pos, syntaxErrorf(tok.Pos, "expected %s", what)
	}
	p.index++
	return tok.Value, tok.Pos, nil
}

func (p *parser) expectStmtEnd() error {
	if tok := p.cur(); tok.Kind != TokenStmtEnd {
		return syntaxErrorf(tok.Pos, "expected '%%}'")
	}
	p.index++
	return nil
}

// Whitespace control.
//
// Explicit trim markers strip the run of whitespace adjacent to the
// delimiter, consuming at most one newline per marker. With TrimBlocks a
// statement tag additionally swallows the newline that directly follows its
// '%}', and with LStripBlocks it swallows the indentation from the start of
// its line — the combination makes statement tags on their own lines
// disappear from the output entirely, which the reference documentation
// templates rely on. A '+' marker turns the implicit behavior off for one
// delimiter. Expression tags only ever trim on explicit markers.
func applyWhitespaceControl(tokens []Token, opts Options) {
	// Line-start detection for LStripBlocks consults the original text: a
	// TrimBlocks pass may already have eaten the newline that proves a run
	// of indentation sits at the start of its line.
	originals := make([]string, len(tokens))
	for i, tok := range tokens {
		originals[i] = tok.Value
	}
	for i := range tokens {
		tok := &tokens[i]
		switch tok.Kind {
		case TokenStmtStart, TokenCommentStart, TokenExprStart:
			prev := prevText(tokens, i)
			if prev == nil {
				continue
			}
			if tok.Trim == '-' {
				prev.Value = trimTrailing(prev.Value)
			} else if tok.Kind != TokenExprStart && tok.Trim != '+' && opts.LStripBlocks {
				prev.Value = lstripLine(prev.Value, originals[i-1], prev.Pos)
			}
		case TokenStmtEnd, TokenCommentEnd, TokenExprEnd:
			next := nextText(tokens, i)
			if next == nil {
				continue
			}
			if tok.Trim == '-' {
				next.Value = trimLeading(next.Value)
			} else if tok.Kind != TokenExprEnd && tok.Trim != '+' && opts.TrimBlocks {
				next.Value = dropLeadingNewline(next.Value)
			}
		}
	}
}

func prevText(tokens []Token, i int) *Token {
	if i > 0 && tokens[i-1].Kind == TokenText {
		return &tokens[i-1]
	}
	return nil
}

func nextText(tokens []Token, i int) *Token {
	if i+1 < len(tokens) && tokens[i+1].Kind == TokenText {
		return &tokens[i+1]
	}
	return nil
}

// trimTrailing strips trailing whitespace including at most one newline.
func trimTrailing(s string) string {
	s = strings.TrimRight(s, " \t\r")
	if strings.HasSuffix(s, "\n") {
		s = strings.TrimRight(s[:len(s)-1], " \t\r")
	}
	return s
}

// trimLeading strips leading whitespace including at most one newline.
func trimLeading(s string) string {
	s = strings.TrimLeft(s, " \t\r")
	if strings.HasPrefix(s, "\n") {
		s = strings.TrimLeft(s[1:], " \t\r")
	}
	return s
}

// lstripLine removes trailing horizontal whitespace from s if it forms the
// indentation of the line the following tag starts on: in the original text
// the run must be preceded by a newline, or cover a token that itself starts
// a line.
func lstripLine(s, original string, pos Position) string {
	trimmed := strings.TrimRight(s, " \t")
	if len(trimmed) == len(s) {
		return s
	}
	origTrimmed := strings.TrimRight(original, " \t")
	if strings.HasSuffix(origTrimmed, "\n") || (origTrimmed == "" && pos.Column == 1) {
		return trimmed
	}
	return s
}

// dropLeadingNewline removes a single newline directly after a block tag.
func dropLeadingNewline(s string) string {
	if strings.HasPrefix(s, "\r\n") {
		return s[2:]
	}
	if strings.HasPrefix(s, "\n") {
		return s[1:]
	}
	return s
}
