package gdscript

import (
	"regexp"
	"strings"
)

var (
	bbImagePattern = regexp.MustCompile(`\[img.*?\](.*?)\[/img\]`)
	bbLinkPattern  = regexp.MustCompile(`\[url=(.*?)\](.*?)\[/url\]`)
)

// bbSimpleTags maps BBCode tags with a direct markdown equivalent. Both the
// opening and the closing tag are replaced with the same marker.
var bbSimpleTags = []struct {
	tag string
	md  string
}{
	{"b", "**"},
	{"i", "_"},
	{"s", "~~"},
	{"code", "`"},
	{"codeblock", "```"},
	{"br", "\n"},
	{"url", ""},
}

// BBCodeToMarkdown converts the BBCode markup Godot uses in doc comments into
// markdown. Tags without an equivalent are left untouched.
func BBCodeToMarkdown(text string) string {
	text = bbImagePattern.ReplaceAllString(text, "![]($1)")
	text = bbLinkPattern.ReplaceAllString(text, "[$2]($1)")
	for _, t := range bbSimpleTags {
		text = strings.ReplaceAll(text, "["+t.tag+"]", t.md)
		text = strings.ReplaceAll(text, "[/"+t.tag+"]", t.md)
	}
	return text
}
