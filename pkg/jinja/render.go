package jinja

import (
	"strings"
)

// renderState carries the per-render mutable state: the macro table. The AST
// itself is never mutated, so independent renders of the same template may
// run concurrently.
type renderState struct {
	macros map[string]*boundMacro
}

// boundMacro is a macro definition together with the scope it was defined
// in. Calls execute in a child of the defining scope (lexical scoping), not
// of the caller's scope.
type boundMacro struct {
	def      *MacroNode
	defScope *scope
}

// render walks the AST against a context and accumulates the output. A
// failed render discards any accumulated text.
func render(root *BlockNode, context map[string]interface{}) (string, error) {
	if context == nil {
		context = map[string]interface{}{}
	}
	st := &renderState{macros: make(map[string]*boundMacro)}
	top := &scope{vars: context}
	var sb strings.Builder
	if err := st.renderBlock(root, top, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (st *renderState) renderBlock(block *BlockNode, sc *scope, out *strings.Builder) error {
	for _, node := range block.Nodes {
		if err := st.renderNode(node, sc, out); err != nil {
			return err
		}
	}
	return nil
}

func (st *renderState) renderNode(node Node, sc *scope, out *strings.Builder) error {
	switch n := node.(type) {
	case *TextNode:
		out.WriteString(n.Text)
		return nil

	case *OutputNode:
		v, err := n.Expr.eval(st, sc)
		if err != nil {
			return err
		}
		out.WriteString(formatValue(v))
		return nil

	case *IfNode:
		cond, err := n.Cond.eval(st, sc)
		if err != nil {
			return err
		}
		if isTruthy(cond) {
			return st.renderBlock(n.Then, sc, out)
		}
		if n.Else != nil {
			return st.renderBlock(n.Else, sc, out)
		}
		return nil

	case *ForNode:
		return st.renderFor(n, sc, out)

	case *MacroNode:
		// Registration emits nothing. The macro closes over the scope at
		// its definition site and stays visible for the rest of the render.
		st.macros[n.Name] = &boundMacro{def: n, defScope: sc}
		return nil

	case *CallNode:
		v, err := n.Call.eval(st, sc)
		if err != nil {
			return err
		}
		out.WriteString(formatValue(v))
		return nil

	case *BlockNode:
		return st.renderBlock(n, sc, out)
	}
	return typeErrorf(node.Position(), "render", "unhandled node type %T", node)
}

func (st *renderState) renderFor(n *ForNode, sc *scope, out *strings.Builder) error {
	iterable, err := n.Iterable.eval(st, sc)
	if err != nil {
		return err
	}
	// An absent or none iterable renders nothing: empty member lists are
	// ordinary data, not errors.
	if isNone(iterable) {
		return nil
	}

	if n.KeyVar != "" {
		pairs, ok := toPairs(iterable)
		if !ok {
			return typeErrorf(n.Pos, "for", "key/value unpacking requires a mapping, got %T", iterable)
		}
		for i, pair := range pairs {
			iter := newScope(sc)
			iter.set(n.KeyVar, pair[0])
			iter.set(n.Var, pair[1])
			iter.set("loop", loopRecord(i, len(pairs)))
			if err := st.renderBlock(n.Body, iter, out); err != nil {
				return err
			}
		}
		return nil
	}

	items, ok := toList(iterable)
	if !ok {
		return typeErrorf(n.Pos, "for", "cannot iterate over %T", iterable)
	}
	for i, item := range items {
		iter := newScope(sc)
		iter.set(n.Var, item)
		iter.set("loop", loopRecord(i, len(items)))
		if err := st.renderBlock(n.Body, iter, out); err != nil {
			return err
		}
	}
	return nil
}

// loopRecord builds the implicit 'loop' record for one iteration.
func loopRecord(i, length int) map[string]interface{} {
	return map[string]interface{}{
		"index":     i + 1,
		"index0":    i,
		"first":     i == 0,
		"last":      i == length-1,
		"length":    length,
		"revindex":  length - i,
		"revindex0": length - i - 1,
	}
}

// callMacro binds arguments against the macro's parameter list and renders
// its body in a fresh child of the defining scope. The rendered text is the
// call's value, so output is identical whether the macro is invoked in
// expression or statement position.
func (st *renderState) callMacro(call *callExpr, callerScope *scope) (interface{}, error) {
	m, ok := st.macros[call.Name]
	if !ok {
		return nil, &UnknownMacroError{Name: call.Name, Pos: call.Pos}
	}
	params := m.def.Params
	if len(call.Args) > len(params) {
		return nil, typeErrorf(call.Pos, call.Name,
			"macro takes at most %d arguments, got %d", len(params), len(call.Args))
	}

	// Arguments evaluate in the caller's scope; defaults evaluate lazily in
	// the defining scope, only when the caller omits the argument.
	bound := make(map[string]interface{}, len(params))
	for i, arg := range call.Args {
		v, err := arg.eval(st, callerScope)
		if err != nil {
			return nil, err
		}
		bound[params[i].Name] = v
	}
	for _, kw := range call.Kwargs {
		if !hasParam(params, kw.Name) {
			return nil, typeErrorf(call.Pos, call.Name, "unknown keyword argument '%s'", kw.Name)
		}
		v, err := kw.Value.eval(st, callerScope)
		if err != nil {
			return nil, err
		}
		bound[kw.Name] = v
	}

	macroScope := newScope(m.defScope)
	for _, param := range params {
		v, ok := bound[param.Name]
		if !ok {
			if param.Default != nil {
				var err error
				v, err = param.Default.eval(st, m.defScope)
				if err != nil {
					return nil, err
				}
			} else {
				// No value and no default: the parameter is undefined, and
				// ordinary undefined-propagation applies in the body.
				v = Undefined
			}
		}
		macroScope.set(param.Name, v)
	}

	var sb strings.Builder
	if err := st.renderBlock(m.def.Body, macroScope, &sb); err != nil {
		return nil, err
	}
	return sb.String(), nil
}

func hasParam(params []MacroParam, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}
