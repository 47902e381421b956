package jinja

// Node is a parsed element of the template: literal text, an expression
// output, or a control structure. The AST is immutable after parsing and may
// be rendered concurrently against independent contexts.
type Node interface {
	// Position returns where the node starts in the template source.
	Position() Position
}

// BlockNode is an ordered sequence of nodes. Order determines output order.
type BlockNode struct {
	Pos   Position
	Nodes []Node
}

func (n *BlockNode) Position() Position { return n.Pos }

// TextNode emits its content verbatim. Whitespace control has already been
// applied at parse time, so rendering never re-trims.
type TextNode struct {
	Pos  Position
	Text string
}

func (n *TextNode) Position() Position { return n.Pos }

// OutputNode emits the value of an expression, e.g. {{ class.name }}.
// Undefined and none values emit nothing.
type OutputNode struct {
	Pos  Position
	Expr Expr
}

func (n *OutputNode) Position() Position { return n.Pos }

// IfNode renders Then when the condition is truthy, Else otherwise. An
// {% elif %} chain is desugared by the parser into a nested IfNode in the
// else branch.
type IfNode struct {
	Pos  Position
	Cond Expr
	Then *BlockNode
	Else *BlockNode // nil when the chain has no else branch
}

func (n *IfNode) Position() Position { return n.Pos }

// ForNode renders its body once per element of the iterable, binding the
// loop variable and the implicit 'loop' record. When KeyVar is non-empty the
// loop unpacks mapping entries as {% for key, value in mapping %}.
type ForNode struct {
	Pos      Position
	Var      string
	KeyVar   string // empty unless key/value unpacking
	Iterable Expr
	Body     *BlockNode
}

func (n *ForNode) Position() Position { return n.Pos }

// MacroParam is a single macro parameter. Default is nil for required
// parameters; otherwise it is evaluated lazily at call time, in the macro's
// defining scope, when the caller omits the argument.
type MacroParam struct {
	Name    string
	Default Expr
}

// MacroNode defines a named, parameterized template fragment. Definition
// emits no output; the macro becomes callable for the remainder of the
// render, including from its own body.
type MacroNode struct {
	Pos    Position
	Name   string
	Params []MacroParam
	Body   *BlockNode
}

func (n *MacroNode) Position() Position { return n.Pos }

// CallNode invokes a macro in statement position, e.g. {% signal_row(s) %}.
// It routes through the same evaluation as an expression-position call, so
// output is identical either way.
type CallNode struct {
	Pos  Position
	Call *callExpr
}

func (n *CallNode) Position() Position { return n.Pos }
