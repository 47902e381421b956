package jinja

import "fmt"

// Position identifies a location in the template source. Lines and columns
// are 1-based; the column counts bytes from the start of the line.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// SyntaxError reports a malformed template: an unterminated delimiter, an
// unknown tag, or an unmatched block opener/closer. It is fatal to the parse
// and no template is produced.
type SyntaxError struct {
	Pos     Position
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %s: %s", e.Pos, e.Message)
}

// TypeError reports a filter or operator applied to an incompatible value,
// e.g. sort over a number. It is fatal to the current render.
type TypeError struct {
	Pos     Position
	Op      string // the filter or operator name
	Message string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error at %s in '%s': %s", e.Pos, e.Op, e.Message)
}

// UnknownMacroError reports a call to a macro name that has not been defined
// at the point of the call.
type UnknownMacroError struct {
	Name string
	Pos  Position
}

func (e *UnknownMacroError) Error() string {
	return fmt.Sprintf("unknown macro '%s' called at %s", e.Name, e.Pos)
}

func syntaxErrorf(pos Position, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func typeErrorf(pos Position, op, format string, args ...interface{}) *TypeError {
	return &TypeError{Pos: pos, Op: op, Message: fmt.Sprintf(format, args...)}
}
