// Package weft implements a small text-templating engine for workflow data:
// templates mix literal text with {{ expression }} interpolations and
// {% tag %} control directives, and render against a variable context to a
// string or, in preserve-types mode, a single typed value.
package weft

import (
	"strings"
	"sync"
)

// Options controls rendering behavior. The typed-value mode is not an
// option: Render always returns rendered text and Eval returns the typed
// value for a single-expression template.
type Options struct {
	// Filters overrides the filter registry; nil uses DefaultRegistry.
	Filters *Registry
}

// Template is a compiled template: parsed, whitespace-processed, and
// block-resolved. A Template is immutable and safe for concurrent renders.
type Template struct {
	nodes []Node
}

// Compile parses template text into a Template. Compilation never fails in
// the common path: malformed spans degrade to literal text, and block
// irregularities resolve permissively.
func Compile(text string) (*Template, error) {
	nodes := parseTemplate(text)
	nodes = applyWhitespace(nodes)
	nodes = resolveBlocks(nodes)
	return &Template{nodes: nodes}, nil
}

// Nodes exposes the resolved node tree, read-only.
func (t *Template) Nodes() []Node {
	return t.nodes
}

// Render evaluates the template against ctx and returns the output text.
// A runtime failure aborts the whole render; no partial output is returned.
func (t *Template) Render(ctx Context, opts ...Options) (string, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}
	r := &renderer{filters: opt.registry()}
	var sb strings.Builder
	if _, err := r.renderNodes(t.nodes, startContext(ctx), &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Eval renders in preserve-types mode: a template that is exactly one
// expression node returns its typed value (lists stay lists, null stays
// null); any other shape renders to a string as Render does. Surrounding
// whitespace removed by trim markers does not count against the
// single-expression shape.
func (t *Template) Eval(ctx Context, opts ...Options) (interface{}, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}
	if len(t.nodes) == 1 {
		if exprNode, ok := t.nodes[0].(*ExpressionNode); ok {
			r := &renderer{filters: opt.registry()}
			return r.eval(exprNode.Expr, startContext(ctx))
		}
	}
	return t.Render(ctx, opt)
}

func (o Options) registry() *Registry {
	if o.Filters != nil {
		return o.Filters
	}
	return DefaultRegistry
}

func startContext(ctx Context) Context {
	if ctx == nil {
		return Context{}
	}
	return ctx
}

// templateCache is a thread-safe cache of compiled templates keyed by
// source text. Renders are pure over (tree, context), so compiled trees are
// shared freely across goroutines.
type templateCache struct {
	mu    sync.RWMutex
	cache map[string]*Template
}

func newTemplateCache() *templateCache {
	return &templateCache{cache: make(map[string]*Template)}
}

func (tc *templateCache) get(text string) (*Template, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	t, ok := tc.cache[text]
	return t, ok
}

func (tc *templateCache) set(text string, t *Template) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.cache[text] = t
}

var defaultCache = newTemplateCache()

func compileCached(text string) (*Template, error) {
	if t, ok := defaultCache.get(text); ok {
		return t, nil
	}
	t, err := Compile(text)
	if err != nil {
		return nil, err
	}
	defaultCache.set(text, t)
	return t, nil
}

// Render compiles (with caching) and renders a template string.
func Render(text string, ctx Context, opts ...Options) (string, error) {
	t, err := compileCached(text)
	if err != nil {
		return "", err
	}
	return t.Render(ctx, opts...)
}

// Eval compiles (with caching) and renders a template string in
// preserve-types mode.
func Eval(text string, ctx Context, opts ...Options) (interface{}, error) {
	t, err := compileCached(text)
	if err != nil {
		return nil, err
	}
	return t.Eval(ctx, opts...)
}
