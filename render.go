package weft

import "strings"

// renderer walks a resolved node tree against a Context. Rendering is a
// pure function of (tree, context, registry); the context is threaded
// value-by-value and never mutated in place.
type renderer struct {
	filters *Registry
}

// renderNodes folds over the node sequence, writing output and carrying the
// current context forward. Stateful nodes (assign, for-body assigns) return
// an updated context that subsequent siblings observe.
func (r *renderer) renderNodes(nodes []Node, ctx Context, sb *strings.Builder) (Context, error) {
	for _, node := range nodes {
		var err error
		ctx, err = r.renderNode(node, ctx, sb)
		if err != nil {
			return ctx, err
		}
	}
	return ctx, nil
}

func (r *renderer) renderNode(node Node, ctx Context, sb *strings.Builder) (Context, error) {
	switch n := node.(type) {
	case *TextNode:
		sb.WriteString(n.Content)
		return ctx, nil

	case *ExpressionNode:
		value, err := r.eval(n.Expr, ctx)
		if err != nil {
			return ctx, err
		}
		sb.WriteString(stringify(value))
		return ctx, nil

	case *TagNode:
		if n.Kind == TagAssign {
			value, err := r.eval(n.Expr, ctx)
			if err != nil {
				return ctx, err
			}
			return ctx.With(n.Name, value), nil
		}
		// Leaf tags surviving block resolution (unmatched closers, stray
		// elsif/else) render as nothing.
		return ctx, nil

	case *IfNode:
		return r.renderIf(n, ctx, sb)

	case *ForNode:
		return r.renderFor(n, ctx, sb)

	default:
		return ctx, runtimeErrorf("unhandled node type %T", node)
	}
}

// renderIf evaluates branch conditions strictly in source order and renders
// only the first truthy branch's body. Later conditions and unselected
// bodies are never evaluated.
func (r *renderer) renderIf(n *IfNode, ctx Context, sb *strings.Builder) (Context, error) {
	for _, branch := range n.Branches {
		cond, err := r.eval(branch.Cond, ctx)
		if err != nil {
			return ctx, err
		}
		if isTruthy(cond) {
			return r.renderNodes(branch.Body, ctx, sb)
		}
	}
	if n.ElseBody != nil {
		return r.renderNodes(n.ElseBody, ctx, sb)
	}
	return ctx, nil
}

// renderFor iterates a list source. Assigns inside the body persist into
// the next iteration and beyond the loop; the loop variable and the forloop
// record are scoped strictly to the body and removed once the loop ends.
func (r *renderer) renderFor(n *ForNode, ctx Context, sb *strings.Builder) (Context, error) {
	source, err := r.eval(n.Source, ctx)
	if err != nil {
		return ctx, err
	}
	if source == nil {
		return ctx, nil
	}
	items, ok := source.([]interface{})
	if !ok {
		return ctx, runtimeErrorf("For loop iterable must be a list, got %s", typeName(source))
	}
	if len(items) == 0 {
		return ctx, nil
	}

	// Remember shadowed bindings so loop-scoped names restore cleanly.
	prevVar, hadVar := ctx[n.Var]
	prevLoop, hadLoop := ctx[forloopKey]
	parent := ctx[forloopKey]

	loopCtx := ctx
	for i, item := range items {
		iterCtx := loopCtx.clone()
		iterCtx[n.Var] = item
		iterCtx[forloopKey] = forloopRecord(i, len(items), parent)
		loopCtx, err = r.renderNodes(n.Body, iterCtx, sb)
		if err != nil {
			return ctx, err
		}
	}

	if hadVar {
		loopCtx = loopCtx.With(n.Var, prevVar)
	} else {
		loopCtx = loopCtx.without(n.Var)
	}
	if hadLoop {
		loopCtx = loopCtx.With(forloopKey, prevLoop)
	} else {
		loopCtx = loopCtx.without(forloopKey)
	}
	return loopCtx, nil
}

// eval evaluates an expression to a runtime value.
func (r *renderer) eval(expr Expr, ctx Context) (interface{}, error) {
	switch e := expr.(type) {
	case *LiteralExpr:
		return e.Value, nil

	case *ArrayExpr:
		items := make([]interface{}, len(e.Elems))
		for i, elem := range e.Elems {
			value, err := r.eval(elem, ctx)
			if err != nil {
				return nil, err
			}
			items[i] = value
		}
		return items, nil

	case *VariableExpr:
		return resolveVariable(e, ctx), nil

	case *NotExpr:
		operand, err := r.eval(e.Operand, ctx)
		if err != nil {
			return nil, err
		}
		return !isTruthy(operand), nil

	case *NegExpr:
		operand, err := r.eval(e.Operand, ctx)
		if err != nil {
			return nil, err
		}
		return negateValue(operand)

	case *BinaryExpr:
		left, err := r.eval(e.Left, ctx)
		if err != nil {
			return nil, err
		}
		right, err := r.eval(e.Right, ctx)
		if err != nil {
			return nil, err
		}
		return applyBinary(e.Op, left, right)

	case *LogicalExpr:
		return r.evalLogical(e, ctx)

	case *CallExpr:
		return r.evalCall(e, ctx)

	default:
		return nil, runtimeErrorf("unhandled expression type %T", expr)
	}
}

// evalLogical implements both truthiness regimes. The short-circuit
// invariant holds for all four operators: the right operand is never
// evaluated once the left determines the result, even when evaluating it
// would raise.
func (r *renderer) evalLogical(e *LogicalExpr, ctx Context) (interface{}, error) {
	left, err := r.eval(e.Left, ctx)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "and":
		if !isTruthy(left) {
			return false, nil
		}
		right, err := r.eval(e.Right, ctx)
		if err != nil {
			return nil, err
		}
		return isTruthy(right), nil
	case "or":
		if isTruthy(left) {
			return true, nil
		}
		right, err := r.eval(e.Right, ctx)
		if err != nil {
			return nil, err
		}
		return isTruthy(right), nil
	case "&&":
		if !isLooseTruthy(left) {
			return left, nil
		}
		return r.eval(e.Right, ctx)
	case "||":
		if isLooseTruthy(left) {
			return left, nil
		}
		return r.eval(e.Right, ctx)
	default:
		return nil, runtimeErrorf("unsupported logical operator '%s'", e.Op)
	}
}

// evalCall evaluates all arguments left to right, then dispatches through
// the filter registry with the first argument as the implicit subject. The
// first failing argument aborts with its error; nothing is partially
// applied.
func (r *renderer) evalCall(e *CallExpr, ctx Context) (interface{}, error) {
	args := make([]interface{}, len(e.Args))
	for i, arg := range e.Args {
		value, err := r.eval(arg, ctx)
		if err != nil {
			return nil, err
		}
		args[i] = value
	}

	var subject interface{}
	var rest []interface{}
	if len(args) > 0 {
		subject, rest = args[0], args[1:]
	}
	return r.filters.Apply(e.Name, subject, rest)
}
