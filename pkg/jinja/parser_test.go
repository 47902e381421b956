package jinja

import (
	"errors"
	"strings"
	"testing"
)

func mustParse(t *testing.T, source string) *Template {
	t.Helper()
	tmpl, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", source, err)
	}
	return tmpl
}

func TestParseStructure(t *testing.T) {
	tmpl := mustParse(t, "a{{ x }}{% if y %}b{% else %}c{% endif %}{% for i in xs %}d{% endfor %}")
	nodes := tmpl.root.Nodes
	if len(nodes) != 4 {
		t.Fatalf("root has %d nodes, want 4", len(nodes))
	}
	if _, ok := nodes[0].(*TextNode); !ok {
		t.Errorf("node 0 = %T, want *TextNode", nodes[0])
	}
	if _, ok := nodes[1].(*OutputNode); !ok {
		t.Errorf("node 1 = %T, want *OutputNode", nodes[1])
	}
	ifNode, ok := nodes[2].(*IfNode)
	if !ok {
		t.Fatalf("node 2 = %T, want *IfNode", nodes[2])
	}
	if ifNode.Else == nil {
		t.Error("if node has no else branch")
	}
	if _, ok := nodes[3].(*ForNode); !ok {
		t.Errorf("node 3 = %T, want *ForNode", nodes[3])
	}
}

func TestParseElifDesugarsToNestedIf(t *testing.T) {
	tmpl := mustParse(t, "{% if a %}1{% elif b %}2{% else %}3{% endif %}")
	outer, ok := tmpl.root.Nodes[0].(*IfNode)
	if !ok {
		t.Fatalf("node 0 = %T, want *IfNode", tmpl.root.Nodes[0])
	}
	if outer.Else == nil || len(outer.Else.Nodes) != 1 {
		t.Fatalf("outer else branch = %v, want a single nested node", outer.Else)
	}
	inner, ok := outer.Else.Nodes[0].(*IfNode)
	if !ok {
		t.Fatalf("else branch node = %T, want nested *IfNode", outer.Else.Nodes[0])
	}
	if inner.Else == nil {
		t.Error("nested if lost the trailing else branch")
	}
}

func TestParseMacroParams(t *testing.T) {
	tmpl := mustParse(t, "{% macro arg(name, type: string, sep = ', ') %}{{ name }}{% endmacro %}")
	macro, ok := tmpl.root.Nodes[0].(*MacroNode)
	if !ok {
		t.Fatalf("node 0 = %T, want *MacroNode", tmpl.root.Nodes[0])
	}
	if macro.Name != "arg" {
		t.Errorf("macro name = %q, want %q", macro.Name, "arg")
	}
	if len(macro.Params) != 3 {
		t.Fatalf("macro has %d params, want 3", len(macro.Params))
	}
	if macro.Params[0].Default != nil {
		t.Error("param 'name' should have no default")
	}
	if macro.Params[1].Default != nil {
		t.Error("param 'type' should have no default (annotations are discarded)")
	}
	if macro.Params[2].Default == nil {
		t.Error("param 'sep' should keep its default")
	}
}

func TestParseForKeyValueUnpacking(t *testing.T) {
	tmpl := mustParse(t, "{% for key, value in vals %}{{ key }}{% endfor %}")
	forNode, ok := tmpl.root.Nodes[0].(*ForNode)
	if !ok {
		t.Fatalf("node 0 = %T, want *ForNode", tmpl.root.Nodes[0])
	}
	if forNode.KeyVar != "key" || forNode.Var != "value" {
		t.Errorf("loop variables = (%q, %q), want (key, value)", forNode.KeyVar, forNode.Var)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		wantMsg  string
	}{
		{
			name:     "unclosed if",
			template: "{% if x %}body",
			wantMsg:  "unclosed '{% if %}'",
		},
		{
			name:     "unclosed for",
			template: "{% for i in xs %}{{ i }}",
			wantMsg:  "unclosed '{% for %}'",
		},
		{
			name:     "unclosed macro",
			template: "{% macro m() %}",
			wantMsg:  "unclosed '{% macro %}'",
		},
		{
			name:     "orphan endif",
			template: "text {% endif %}",
			wantMsg:  "unexpected '{% endif %}'",
		},
		{
			name:     "orphan else",
			template: "{% else %}",
			wantMsg:  "unexpected '{% else %}'",
		},
		{
			name:     "endfor closing an if",
			template: "{% if x %}{% endfor %}{% endif %}",
			wantMsg:  "unexpected '{% endfor %}'",
		},
		{
			name:     "elif after else",
			template: "{% if a %}1{% else %}2{% elif b %}3{% endif %}",
			wantMsg:  "unexpected '{% elif %}'",
		},
		{
			name:     "unknown tag",
			template: "{% include 'other.md' %}",
			wantMsg:  "unknown tag 'include'",
		},
		{
			name:     "for without in",
			template: "{% for item items %}{% endfor %}",
			wantMsg:  "expected 'in'",
		},
		{
			name:     "missing expression close",
			template: "{{ a b }}",
			wantMsg:  "expected '}}'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.template)
			if err == nil {
				t.Fatalf("Parse(%q) expected error", tt.template)
			}
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("Parse() error = %T (%v), want *SyntaxError", err, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Parse() error = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParseErrorReportsOpenerPosition(t *testing.T) {
	_, err := Parse("line\n  {% if x %}never closed")
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("Parse() error = %T, want *SyntaxError", err)
	}
	if syntaxErr.Pos.Line != 2 {
		t.Errorf("error position line = %d, want 2", syntaxErr.Pos.Line)
	}
}
