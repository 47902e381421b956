// Package gdscript extracts documentation data from GDScript source files.
// It is a line-oriented scanner for the declarations a class reference cares
// about (class_name, extends, signals, enums, properties, methods) together
// with their '##' doc comments, not a full GDScript parser.
package gdscript

// ArgInfo describes one argument of a signal or method.
type ArgInfo struct {
	Name    string
	Type    string // empty when the argument is untyped
	Default string // empty when the argument has no default
}

// SignalInfo describes a signal declaration.
type SignalInfo struct {
	Name        string
	Description string
	Args        []ArgInfo
}

// EnumInfo describes an enum declaration. Vals maps each value name to its
// doc comment, or to an empty string when the value is undocumented.
type EnumInfo struct {
	Name        string
	Description string
	Vals        map[string]string
}

// PropertyInfo describes a 'var' declaration.
type PropertyInfo struct {
	Name        string
	Type        string
	Description string
	Default     string
	HasSetter   bool
	HasGetter   bool
}

// MethodInfo describes a 'func' declaration.
type MethodInfo struct {
	Name        string
	Description string
	Args        []ArgInfo
	ReturnType  string
}

// ClassInfo is the documentation extracted from one script file.
type ClassInfo struct {
	FilePath    string // script path relative to the project root
	Name        string // from class_name, empty for unnamed scripts
	Extends     string
	Summary     string
	Description string
	Signals     []SignalInfo
	Enums       []EnumInfo
	Properties  []PropertyInfo
	Methods     []MethodInfo
}
