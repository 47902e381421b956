// Package jinja implements the subset of the Jinja template language used
// by the class-reference documentation templates: expression output,
// if/elif/else, for loops with the implicit 'loop' record, macros with
// default arguments, a small filter library, and whitespace control.
//
// A parsed Template is immutable and may be rendered concurrently against
// independent contexts; every render allocates its own scope chain and
// macro table.
package jinja

import (
	"fmt"
	"sync"
)

// Options control the implicit whitespace behavior of block tags. The
// defaults mirror the environment the reference documentation templates
// were written for: trim_blocks and lstrip_blocks both enabled, so a
// statement tag on its own line leaves no trace in the output. Explicit
// {%- and -%} markers work regardless of these options.
type Options struct {
	TrimBlocks   bool // swallow the newline directly after a block tag
	LStripBlocks bool // swallow indentation before a block tag on its line
}

// DefaultOptions returns the options used by Parse and RenderString.
func DefaultOptions() Options {
	return Options{TrimBlocks: true, LStripBlocks: true}
}

// Template is a parsed template, reusable across renders.
type Template struct {
	root   *BlockNode
	source string
}

// Parse parses template source with DefaultOptions.
func Parse(source string) (*Template, error) {
	return ParseWithOptions(source, DefaultOptions())
}

// ParseWithOptions parses template source into an immutable Template.
// Malformed templates return a *SyntaxError.
func ParseWithOptions(source string, opts Options) (*Template, error) {
	tokens, err := lex(source)
	if err != nil {
		return nil, fmt.Errorf("template parsing error: %w", err)
	}
	root, err := parse(tokens, opts)
	if err != nil {
		return nil, fmt.Errorf("template parsing error: %w", err)
	}
	return &Template{root: root, source: source}, nil
}

// Render evaluates the template against a context. It is a pure function of
// the template and the context: a failed render returns an empty string and
// the error, never partial output.
func (t *Template) Render(context map[string]interface{}) (string, error) {
	out, err := render(t.root, context)
	if err != nil {
		return "", fmt.Errorf("template rendering error: %w", err)
	}
	return out, nil
}

// Source returns the source text the template was parsed from.
func (t *Template) Source() string {
	return t.source
}

// RenderString parses and renders a template in one step, caching the
// parsed form so repeated renders of the same source skip the parse.
func RenderString(source string, context map[string]interface{}) (string, error) {
	tmpl, found := defaultTemplateCache.Get(source)
	if !found {
		var err error
		tmpl, err = Parse(source)
		if err != nil {
			return "", err
		}
		defaultTemplateCache.Set(source, tmpl)
	}
	return tmpl.Render(context)
}

// TemplateCache is a thread-safe cache of parsed templates keyed by source.
type TemplateCache struct {
	cache map[string]*Template
	mu    sync.RWMutex
}

// NewTemplateCache creates a new template cache.
func NewTemplateCache() *TemplateCache {
	return &TemplateCache{cache: make(map[string]*Template)}
}

// Get retrieves a parsed template from the cache.
func (tc *TemplateCache) Get(source string) (*Template, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	tmpl, ok := tc.cache[source]
	return tmpl, ok
}

// Set stores a parsed template in the cache.
func (tc *TemplateCache) Set(source string, tmpl *Template) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.cache[source] = tmpl
}

var defaultTemplateCache = NewTemplateCache()
