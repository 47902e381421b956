package jinja

import (
	"strconv"
)

// Expr is an evaluatable expression node.
type Expr interface {
	Position() Position
	eval(st *renderState, sc *scope) (interface{}, error)
}

// kwarg is a keyword argument in a filter or macro call, e.g. attribute='name'.
type kwarg struct {
	Name  string
	Value Expr
}

type literalExpr struct {
	Pos Position
	Val interface{}
}

func (e *literalExpr) Position() Position { return e.Pos }

func (e *literalExpr) eval(st *renderState, sc *scope) (interface{}, error) {
	return e.Val, nil
}

type listExpr struct {
	Pos   Position
	Items []Expr
}

func (e *listExpr) Position() Position { return e.Pos }

func (e *listExpr) eval(st *renderState, sc *scope) (interface{}, error) {
	out := make([]interface{}, 0, len(e.Items))
	for _, item := range e.Items {
		v, err := item.eval(st, sc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type varExpr struct {
	Pos  Position
	Name string
}

func (e *varExpr) Position() Position { return e.Pos }

func (e *varExpr) eval(st *renderState, sc *scope) (interface{}, error) {
	// Missing names yield the undefined value, never a lookup error:
	// optional fields are tested with 'is none'.
	return sc.lookup(e.Name), nil
}

type attrExpr struct {
	Pos  Position
	Base Expr
	Name string
}

func (e *attrExpr) Position() Position { return e.Pos }

func (e *attrExpr) eval(st *renderState, sc *scope) (interface{}, error) {
	base, err := e.Base.eval(st, sc)
	if err != nil {
		return nil, err
	}
	return attrOf(base, e.Name), nil
}

type indexExpr struct {
	Pos   Position
	Base  Expr
	Index Expr
}

func (e *indexExpr) Position() Position { return e.Pos }

func (e *indexExpr) eval(st *renderState, sc *scope) (interface{}, error) {
	base, err := e.Base.eval(st, sc)
	if err != nil {
		return nil, err
	}
	idx, err := e.Index.eval(st, sc)
	if err != nil {
		return nil, err
	}
	return indexOf(base, idx), nil
}

type filterExpr struct {
	Pos    Position
	Base   Expr
	Name   string
	Args   []Expr
	Kwargs []kwarg
}

func (e *filterExpr) Position() Position { return e.Pos }

func (e *filterExpr) eval(st *renderState, sc *scope) (interface{}, error) {
	base, err := e.Base.eval(st, sc)
	if err != nil {
		return nil, err
	}
	fn, ok := Filters[e.Name]
	if !ok {
		return nil, typeErrorf(e.Pos, e.Name, "unknown filter")
	}
	args := make([]interface{}, 0, len(e.Args))
	for _, arg := range e.Args {
		v, err := arg.eval(st, sc)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	kwargs := make(map[string]interface{}, len(e.Kwargs))
	for _, kw := range e.Kwargs {
		v, err := kw.Value.eval(st, sc)
		if err != nil {
			return nil, err
		}
		kwargs[kw.Name] = v
	}
	out, err := fn(base, args, kwargs)
	if err != nil {
		return nil, typeErrorf(e.Pos, e.Name, "%v", err)
	}
	return out, nil
}

// callExpr invokes a macro by name. Macros are the only callables; a call to
// a name without a registered macro is an UnknownMacroError.
type callExpr struct {
	Pos    Position
	Name   string
	Args   []Expr
	Kwargs []kwarg
}

func (e *callExpr) Position() Position { return e.Pos }

func (e *callExpr) eval(st *renderState, sc *scope) (interface{}, error) {
	return st.callMacro(e, sc)
}

type notExpr struct {
	Pos Position
	X   Expr
}

func (e *notExpr) Position() Position { return e.Pos }

func (e *notExpr) eval(st *renderState, sc *scope) (interface{}, error) {
	v, err := e.X.eval(st, sc)
	if err != nil {
		return nil, err
	}
	return !isTruthy(v), nil
}

// boolExpr is a short-circuiting 'and' or 'or'. It returns the deciding
// operand, not a coerced boolean.
type boolExpr struct {
	Pos   Position
	Op    string // "and" or "or"
	L, R  Expr
}

func (e *boolExpr) Position() Position { return e.Pos }

func (e *boolExpr) eval(st *renderState, sc *scope) (interface{}, error) {
	left, err := e.L.eval(st, sc)
	if err != nil {
		return nil, err
	}
	if e.Op == "and" {
		if !isTruthy(left) {
			return left, nil
		}
	} else {
		if isTruthy(left) {
			return left, nil
		}
	}
	return e.R.eval(st, sc)
}

type compareExpr struct {
	Pos  Position
	Op   string // ==, !=, <, <=, >, >=
	L, R Expr
}

func (e *compareExpr) Position() Position { return e.Pos }

func (e *compareExpr) eval(st *renderState, sc *scope) (interface{}, error) {
	left, err := e.L.eval(st, sc)
	if err != nil {
		return nil, err
	}
	right, err := e.R.eval(st, sc)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "==":
		return valuesEqual(left, right), nil
	case "!=":
		return !valuesEqual(left, right), nil
	}
	cmp, ok := compareValues(left, right)
	if !ok {
		return nil, typeErrorf(e.Pos, e.Op, "cannot order %T and %T", left, right)
	}
	switch e.Op {
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	}
	return nil, typeErrorf(e.Pos, e.Op, "unsupported comparison operator")
}

// testExpr implements 'is' tests: {{ x is none }}, {{ x is not defined }}.
type testExpr struct {
	Pos    Position
	X      Expr
	Test   string // "none" or "defined"
	Negate bool
}

func (e *testExpr) Position() Position { return e.Pos }

func (e *testExpr) eval(st *renderState, sc *scope) (interface{}, error) {
	v, err := e.X.eval(st, sc)
	if err != nil {
		return nil, err
	}
	var result bool
	switch e.Test {
	case "none":
		result = isNone(v)
	case "defined":
		result = !isUndefined(v)
	default:
		return nil, syntaxErrorf(e.Pos, "unknown test '%s'", e.Test)
	}
	if e.Negate {
		result = !result
	}
	return result, nil
}

// Expression grammar, loosest binding first:
//
//	or    -> and ("or" and)*
//	and   -> not ("and" not)*
//	not   -> "not" not | cmp
//	cmp   -> pipe (("=="|"!="|"<"|"<="|">"|">=") pipe | "is" ["not"] test)*
//	pipe  -> postfix ("|" ident [call-args])*
//	postfix -> primary ("." ident | "[" or "]")*
//	primary -> literal | list | ident | ident call-args | "(" or ")"

func (p *parser) parseExpression() (Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.matchIdent("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &boolExpr{Pos: left.Position(), Op: "or", L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.matchIdent("and") {
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &boolExpr{Pos: left.Position(), Op: "and", L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Expr, error) {
	if pos, ok := p.matchIdentPos("not"); ok {
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &notExpr{Pos: pos, X: x}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.matchOperator("=="), p.matchOperator("!="), p.matchOperator("<"),
			p.matchOperator("<="), p.matchOperator(">"), p.matchOperator(">="):
			op := p.tokens[p.index-1].Value
			right, err := p.parsePipeline()
			if err != nil {
				return nil, err
			}
			left = &compareExpr{Pos: left.Position(), Op: op, L: left, R: right}
		case p.matchIdent("is"):
			negate := p.matchIdent("not")
			name, pos, err := p.expectIdent("test name after 'is'")
			if err != nil {
				return nil, err
			}
			if name != "none" && name != "defined" {
				return nil, syntaxErrorf(pos, "unknown test '%s'", name)
			}
			left = &testExpr{Pos: left.Position(), X: left, Test: name, Negate: negate}
		default:
			return left, nil
		}
	}
}

func (p *parser) parsePipeline() (Expr, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for p.matchOperator("|") {
		name, pos, err := p.expectIdent("filter name after '|'")
		if err != nil {
			return nil, err
		}
		filter := &filterExpr{Pos: pos, Base: left, Name: name}
		if p.matchOperator("(") {
			args, kwargs, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			filter.Args, filter.Kwargs = args, kwargs
		}
		left = filter
	}
	return left, nil
}

func (p *parser) parsePostfix() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.matchOperator("."):
			name, _, err := p.expectIdent("attribute name after '.'")
			if err != nil {
				return nil, err
			}
			base = &attrExpr{Pos: base.Position(), Base: base, Name: name}
		case p.matchOperator("["):
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectOperator("]"); err != nil {
				return nil, err
			}
			base = &indexExpr{Pos: base.Position(), Base: base, Index: index}
		default:
			return base, nil
		}
	}
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case TokenString:
		p.index++
		return &literalExpr{Pos: tok.Pos, Val: tok.Value}, nil
	case TokenNumber:
		p.index++
		if i, err := strconv.Atoi(tok.Value); err == nil {
			return &literalExpr{Pos: tok.Pos, Val: i}, nil
		}
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, syntaxErrorf(tok.Pos, "invalid number literal '%s'", tok.Value)
		}
		return &literalExpr{Pos: tok.Pos, Val: f}, nil
	case TokenIdent:
		p.index++
		switch tok.Value {
		case "true", "True":
			return &literalExpr{Pos: tok.Pos, Val: true}, nil
		case "false", "False":
			return &literalExpr{Pos: tok.Pos, Val: false}, nil
		case "none", "None", "null":
			return &literalExpr{Pos: tok.Pos, Val: nil}, nil
		}
		if p.matchOperator("(") {
			args, kwargs, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			return &callExpr{Pos: tok.Pos, Name: tok.Value, Args: args, Kwargs: kwargs}, nil
		}
		return &varExpr{Pos: tok.Pos, Name: tok.Value}, nil
	case TokenOperator:
		switch tok.Value {
		case "(":
			p.index++
			inner, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectOperator(")"); err != nil {
				return nil, err
			}
			return inner, nil
		case "[":
			p.index++
			list := &listExpr{Pos: tok.Pos}
			if p.matchOperator("]") {
				return list, nil
			}
			for {
				item, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				list.Items = append(list.Items, item)
				if p.matchOperator(",") {
					continue
				}
				if err := p.expectOperator("]"); err != nil {
					return nil, err
				}
				return list, nil
			}
		}
	}
	return nil, syntaxErrorf(tok.Pos, "unexpected token in expression")
}

// parseCallArgs parses the arguments of a call or filter after the opening
// parenthesis has been consumed: positional expressions first, then
// name=value keyword arguments, terminated by ')'.
func (p *parser) parseCallArgs() (args []Expr, kwargs []kwarg, err error) {
	if p.matchOperator(")") {
		return nil, nil, nil
	}
	for {
		// A lone identifier followed by '=' is a keyword argument.
		if p.cur().Kind == TokenIdent && p.peek(1).Kind == TokenOperator && p.peek(1).Value == "=" {
			name := p.cur().Value
			p.index += 2
			value, err := p.parseExpression()
			if err != nil {
				return nil, nil, err
			}
			kwargs = append(kwargs, kwarg{Name: name, Value: value})
		} else {
			if len(kwargs) > 0 {
				return nil, nil, syntaxErrorf(p.cur().Pos, "positional argument after keyword argument")
			}
			arg, err := p.parseExpression()
			if err != nil {
				return nil, nil, err
			}
			args = append(args, arg)
		}
		if p.matchOperator(",") {
			continue
		}
		if err := p.expectOperator(")"); err != nil {
			return nil, nil, err
		}
		return args, kwargs, nil
	}
}
