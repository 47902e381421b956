package gdscript

import "testing"

func TestBBCodeToMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "No markup here.",
			want:  "No markup here.",
		},
		{
			name:  "bold",
			input: "a [b]bold[/b] word",
			want:  "a **bold** word",
		},
		{
			name:  "italic",
			input: "[i]emphasis[/i]",
			want:  "_emphasis_",
		},
		{
			name:  "strikethrough",
			input: "[s]gone[/s]",
			want:  "~~gone~~",
		},
		{
			name:  "inline code",
			input: "call [code]queue_free()[/code] instead",
			want:  "call `queue_free()` instead",
		},
		{
			name:  "code block",
			input: "[codeblock]var x = 1[/codeblock]",
			want:  "```var x = 1```",
		},
		{
			name:  "line break",
			input: "first[br]second",
			want:  "first\nsecond",
		},
		{
			name:  "image",
			input: "[img]res://icon.png[/img]",
			want:  "![](res://icon.png)",
		},
		{
			name:  "link with target",
			input: "see [url=https://docs.godotengine.org]the docs[/url] here",
			want:  "see [the docs](https://docs.godotengine.org) here",
		},
		{
			name:  "bare url tags are dropped",
			input: "[url]https://example.com[/url]",
			want:  "https://example.com",
		},
		{
			name:  "unknown tags are kept",
			input: "[member health] and [method heal]",
			want:  "[member health] and [method heal]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BBCodeToMarkdown(tt.input); got != tt.want {
				t.Errorf("BBCodeToMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
