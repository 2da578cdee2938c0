package weft

// Context is the variable environment a template renders against. Contexts
// are treated as immutable: stateful nodes (assign, for) derive a fresh copy
// and hand it to subsequent siblings instead of mutating in place, so
// concurrent renders from independent call sites never share mutation.
type Context map[string]interface{}

// clone makes the shallow copy used for every functional update.
func (c Context) clone() Context {
	next := make(Context, len(c)+1)
	for k, v := range c {
		next[k] = v
	}
	return next
}

// With returns a new Context with name bound to value. The receiver is
// unchanged.
func (c Context) With(name string, value interface{}) Context {
	next := c.clone()
	next[name] = value
	return next
}

// without returns a new Context with name unbound. Used to drop loop-scoped
// bindings once a for body ends.
func (c Context) without(name string) Context {
	if _, ok := c[name]; !ok {
		return c
	}
	next := c.clone()
	delete(next, name)
	return next
}

// resolveVariable traverses a variable path against the context. Resolution
// is a total function: missing roots, missing keys, out-of-range indices,
// and wrong-shaped receivers all yield null, never an error.
func resolveVariable(v *VariableExpr, ctx Context) interface{} {
	current, ok := ctx[v.Root]
	if !ok {
		return nil
	}
	for _, seg := range v.Segments {
		switch s := seg.(type) {
		case *PropertySegment:
			current = lookupProperty(current, s.Name)
		case *IndexSegment:
			current = lookupIndex(current, evalIndexExpr(s.Index, ctx))
		}
	}
	return current
}

// evalIndexExpr evaluates the restricted index grammar: a literal or a
// nested variable path. Like path resolution itself, it cannot fail.
func evalIndexExpr(index Expr, ctx Context) interface{} {
	switch e := index.(type) {
	case *LiteralExpr:
		return e.Value
	case *VariableExpr:
		return resolveVariable(e, ctx)
	default:
		return nil
	}
}

// lookupProperty resolves a .name step. Only map receivers resolve; the
// string key is tried first, then its symbol equivalent.
func lookupProperty(receiver interface{}, name string) interface{} {
	switch m := receiver.(type) {
	case map[string]interface{}:
		return m[name]
	case map[interface{}]interface{}:
		if val, ok := m[name]; ok {
			return val
		}
		return m[Symbol(name)]
	default:
		return nil
	}
}

// lookupIndex resolves a [key] step. Lists require an integer index and are
// bounds-checked; maps take a computed key with string/symbol fallback.
// Everything else yields null.
func lookupIndex(receiver, key interface{}) interface{} {
	switch r := receiver.(type) {
	case []interface{}:
		idx, ok := key.(int)
		if !ok || idx < 0 || idx >= len(r) {
			return nil
		}
		return r[idx]
	case map[string]interface{}:
		switch k := key.(type) {
		case string:
			return r[k]
		case Symbol:
			return r[string(k)]
		default:
			return nil
		}
	case map[interface{}]interface{}:
		if val, ok := r[key]; ok {
			return val
		}
		switch k := key.(type) {
		case string:
			return r[Symbol(k)]
		case Symbol:
			return r[string(k)]
		}
		return nil
	default:
		return nil
	}
}

// forloopKey is the name of the per-iteration metadata record a for loop
// injects for its body's duration.
const forloopKey = "forloop"

// forloopRecord builds the metadata visible inside a loop body. parentloop
// is the enclosing iteration's own record, or null at top level; it is a
// read-only back-reference, never an ownership link.
func forloopRecord(index, length int, parent interface{}) map[string]interface{} {
	return map[string]interface{}{
		"index":      index,
		"rindex":     length - 1 - index,
		"first":      index == 0,
		"last":       index == length-1,
		"length":     length,
		"parentloop": parent,
	}
}
