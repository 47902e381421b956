package gdscript

import (
	"testing"
)

const playerScript = `class_name Player
extends CharacterBody2D
## The player avatar.
##
## Handles movement and combat.

## Emitted on death.
signal died

signal damaged(amount: int, source)

enum State { IDLE, RUNNING }

## Door states.
enum DoorState {
	OPEN, ## The door is open.
	CLOSED,
}

## Current health.
@export var health: int = 10:
	set = _set_health

var speed := 300.0

@onready var sprite = $Sprite2D

## Heals the player.
func heal(amount: int = 1) -> void:
	health += amount

func _physics_process(delta):
	pass
`

func TestParsePlayerScript(t *testing.T) {
	info := Parse(playerScript)

	if info.Name != "Player" {
		t.Errorf("Name = %q, want %q", info.Name, "Player")
	}
	if info.Extends != "CharacterBody2D" {
		t.Errorf("Extends = %q, want %q", info.Extends, "CharacterBody2D")
	}
	if info.Summary != "The player avatar." {
		t.Errorf("Summary = %q, want %q", info.Summary, "The player avatar.")
	}
	if info.Description != "Handles movement and combat." {
		t.Errorf("Description = %q, want %q", info.Description, "Handles movement and combat.")
	}

	if len(info.Signals) != 2 {
		t.Fatalf("got %d signals, want 2", len(info.Signals))
	}
	died := info.Signals[0]
	if died.Name != "died" || died.Description != "Emitted on death." || len(died.Args) != 0 {
		t.Errorf("signal died = %+v", died)
	}
	damaged := info.Signals[1]
	if damaged.Name != "damaged" || len(damaged.Args) != 2 {
		t.Fatalf("signal damaged = %+v", damaged)
	}
	if damaged.Args[0] != (ArgInfo{Name: "amount", Type: "int"}) {
		t.Errorf("damaged arg 0 = %+v", damaged.Args[0])
	}
	if damaged.Args[1] != (ArgInfo{Name: "source"}) {
		t.Errorf("damaged arg 1 = %+v", damaged.Args[1])
	}

	if len(info.Enums) != 2 {
		t.Fatalf("got %d enums, want 2", len(info.Enums))
	}
	state := info.Enums[0]
	if state.Name != "State" || len(state.Vals) != 2 {
		t.Errorf("enum State = %+v", state)
	}
	door := info.Enums[1]
	if door.Name != "DoorState" || door.Description != "Door states." {
		t.Errorf("enum DoorState = %+v", door)
	}
	if door.Vals["OPEN"] != "The door is open." {
		t.Errorf("OPEN doc = %q", door.Vals["OPEN"])
	}
	if desc, ok := door.Vals["CLOSED"]; !ok || desc != "" {
		t.Errorf("CLOSED doc = %q, present %v", desc, ok)
	}

	if len(info.Properties) != 3 {
		t.Fatalf("got %d properties, want 3", len(info.Properties))
	}
	health := info.Properties[0]
	if health.Name != "health" || health.Type != "int" || health.Default != "10" {
		t.Errorf("property health = %+v", health)
	}
	if !health.HasSetter || health.HasGetter {
		t.Errorf("health setter/getter = %v/%v, want true/false", health.HasSetter, health.HasGetter)
	}
	if health.Description != "Current health." {
		t.Errorf("health description = %q", health.Description)
	}
	speed := info.Properties[1]
	if speed.Name != "speed" || speed.Type != "" || speed.Default != "300.0" {
		t.Errorf("property speed = %+v", speed)
	}
	sprite := info.Properties[2]
	if sprite.Name != "sprite" || sprite.Default != "" {
		t.Errorf("onready property kept its default: %+v", sprite)
	}

	if len(info.Methods) != 2 {
		t.Fatalf("got %d methods, want 2", len(info.Methods))
	}
	heal := info.Methods[0]
	if heal.Name != "heal" || heal.ReturnType != "void" || heal.Description != "Heals the player." {
		t.Errorf("method heal = %+v", heal)
	}
	if len(heal.Args) != 1 || heal.Args[0] != (ArgInfo{Name: "amount", Type: "int", Default: "1"}) {
		t.Errorf("heal args = %+v", heal.Args)
	}
	process := info.Methods[1]
	if process.Name != "_physics_process" || process.ReturnType != "" {
		t.Errorf("method _physics_process = %+v", process)
	}
	if len(process.Args) != 1 || process.Args[0].Name != "delta" {
		t.Errorf("_physics_process args = %+v", process.Args)
	}
}

func TestParseHeaderVariants(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		wantName    string
		wantExtends string
		wantSummary string
	}{
		{
			name:        "unnamed script",
			source:      "extends Node\n\nvar x = 1\n",
			wantExtends: "Node",
		},
		{
			name:        "class_name and extends on one line",
			source:      "class_name Utils extends RefCounted\n",
			wantName:    "Utils",
			wantExtends: "RefCounted",
		},
		{
			name:        "single line doc becomes summary",
			source:      "class_name A\nextends Node\n## Just one line.\n",
			wantName:    "A",
			wantExtends: "Node",
			wantSummary: "Just one line.",
		},
		{
			name:        "script path base class",
			source:      "extends \"res://scripts/base.gd\"\n",
			wantExtends: "\"res://scripts/base.gd\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Parse(tt.source)
			if info.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", info.Name, tt.wantName)
			}
			if info.Extends != tt.wantExtends {
				t.Errorf("Extends = %q, want %q", info.Extends, tt.wantExtends)
			}
			if info.Summary != tt.wantSummary {
				t.Errorf("Summary = %q, want %q", info.Summary, tt.wantSummary)
			}
		})
	}
}

func TestParseMultilineSignatures(t *testing.T) {
	source := `extends Node

signal configured(
	width: int,
	height
)

func resize(
	width: int,
	height: int
) -> bool:
	return true
`
	info := Parse(source)

	if len(info.Signals) != 1 {
		t.Fatalf("got %d signals, want 1", len(info.Signals))
	}
	sig := info.Signals[0]
	if sig.Name != "configured" || len(sig.Args) != 2 {
		t.Fatalf("signal = %+v", sig)
	}
	if sig.Args[0].Name != "width" || sig.Args[0].Type != "int" {
		t.Errorf("arg 0 = %+v", sig.Args[0])
	}
	if sig.Args[1].Name != "height" || sig.Args[1].Type != "" {
		t.Errorf("arg 1 = %+v", sig.Args[1])
	}

	if len(info.Methods) != 1 {
		t.Fatalf("got %d methods, want 1", len(info.Methods))
	}
	method := info.Methods[0]
	if method.Name != "resize" || method.ReturnType != "bool" || len(method.Args) != 2 {
		t.Errorf("method = %+v", method)
	}
}

func TestParsePropertyVariants(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   PropertyInfo
	}{
		{
			name:   "plain",
			source: "extends Node\nvar count = 0\n",
			want:   PropertyInfo{Name: "count", Default: "0"},
		},
		{
			name:   "typed without default",
			source: "extends Node\nvar label: String\n",
			want:   PropertyInfo{Name: "label", Type: "String"},
		},
		{
			name:   "inline setget",
			source: "extends Node\nvar hp = 10: set = _set_hp, get = _get_hp\n",
			want:   PropertyInfo{Name: "hp", Default: "10", HasSetter: true, HasGetter: true},
		},
		{
			name:   "inline setget without type or default",
			source: "extends Node\nvar hp: set = _set_hp\n",
			want:   PropertyInfo{Name: "hp", HasSetter: true},
		},
		{
			name:   "setget block",
			source: "extends Node\nvar hp = 10:\n\tset(value):\n\t\thp = value\n\tget:\n\t\treturn hp\n",
			want:   PropertyInfo{Name: "hp", Default: "10", HasSetter: true, HasGetter: true},
		},
		{
			name:   "empty dictionary default collapses",
			source: "extends Node\nvar lookup = {  }\n",
			want:   PropertyInfo{Name: "lookup", Default: "{}"},
		},
		{
			name:   "populated dictionary default collapses",
			source: "extends Node\nvar lookup = {\"a\": 1}\n",
			want:   PropertyInfo{Name: "lookup", Default: "{...}"},
		},
		{
			name:   "populated array default collapses",
			source: "extends Node\nvar items = [1, 2]\n",
			want:   PropertyInfo{Name: "items", Default: "[...]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := Parse(tt.source)
			if len(info.Properties) != 1 {
				t.Fatalf("got %d properties, want 1", len(info.Properties))
			}
			if got := info.Properties[0]; got != tt.want {
				t.Errorf("property = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseBareAnnotationLines(t *testing.T) {
	source := "extends Node\n@export\nvar visible_in_editor = true\n"
	info := Parse(source)
	if len(info.Properties) != 1 || info.Properties[0].Name != "visible_in_editor" {
		t.Fatalf("properties = %+v", info.Properties)
	}
}

func TestParseDocCommentsApplyBBCode(t *testing.T) {
	source := "extends Node\n## Calls [code]reset()[/code] on [b]every[/b] child.\nfunc reset_children():\n\tpass\n"
	info := Parse(source)
	if len(info.Methods) != 1 {
		t.Fatalf("methods = %+v", info.Methods)
	}
	want := "Calls `reset()` on **every** child."
	if got := info.Methods[0].Description; got != want {
		t.Errorf("description = %q, want %q", got, want)
	}
}
