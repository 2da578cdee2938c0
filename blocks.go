package weft

// blockFrame is one entry of the resolver stack: an open if or for block
// accumulating its body.
type blockFrame struct {
	kind TagKind // TagIf or TagFor
	tag  *TagNode

	// if state
	branches    []IfBranch
	pendingCond Expr
	inElse      bool
	elseBody    []Node

	// body of the branch currently being accumulated
	body []Node
}

// blockResolver converts matched if/elsif/else/endif and for/endfor tag
// runs in a flat node sequence into compound IfNode/ForNode structures. It
// is deliberately permissive: a closer with no matching open block of the
// same kind stays in place as an inert leaf tag, and an opener never closed
// by end of input is treated as closed there.
type blockResolver struct {
	out   []Node
	stack []blockFrame
}

func resolveBlocks(nodes []Node) []Node {
	r := &blockResolver{}
	for _, node := range nodes {
		r.add(node)
	}
	// Unwind openers left unclosed at end of input.
	for len(r.stack) > 0 {
		r.closeTop()
	}
	return r.out
}

// emit appends a finished node to the innermost open block, or to the
// output when no block is open.
func (r *blockResolver) emit(node Node) {
	if len(r.stack) == 0 {
		r.out = append(r.out, node)
		return
	}
	top := &r.stack[len(r.stack)-1]
	if top.kind == TagIf && top.inElse {
		top.elseBody = append(top.elseBody, node)
		return
	}
	top.body = append(top.body, node)
}

func (r *blockResolver) add(node Node) {
	tag, ok := node.(*TagNode)
	if !ok {
		r.emit(node)
		return
	}

	switch tag.Kind {
	case TagIf:
		r.stack = append(r.stack, blockFrame{kind: TagIf, tag: tag, pendingCond: tag.Expr})
	case TagFor:
		r.stack = append(r.stack, blockFrame{kind: TagFor, tag: tag})
	case TagElsif:
		top := r.top()
		if top == nil || top.kind != TagIf || top.inElse {
			r.emit(tag)
			return
		}
		top.branches = append(top.branches, IfBranch{Cond: top.pendingCond, Body: top.body})
		top.pendingCond = tag.Expr
		top.body = nil
	case TagElse:
		top := r.top()
		if top == nil || top.kind != TagIf || top.inElse {
			r.emit(tag)
			return
		}
		top.branches = append(top.branches, IfBranch{Cond: top.pendingCond, Body: top.body})
		top.body = nil
		top.inElse = true
	case TagEndIf:
		if top := r.top(); top != nil && top.kind == TagIf {
			r.closeTop()
			return
		}
		r.emit(tag)
	case TagEndFor:
		if top := r.top(); top != nil && top.kind == TagFor {
			r.closeTop()
			return
		}
		r.emit(tag)
	default:
		// assign and any other leaf tag passes through unchanged.
		r.emit(tag)
	}
}

func (r *blockResolver) top() *blockFrame {
	if len(r.stack) == 0 {
		return nil
	}
	return &r.stack[len(r.stack)-1]
}

// closeTop pops the innermost open block and emits its compound node into
// the enclosing accumulation.
func (r *blockResolver) closeTop() {
	top := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]

	switch top.kind {
	case TagIf:
		node := &IfNode{Branches: top.branches}
		if top.inElse {
			node.ElseBody = top.elseBody
		} else {
			node.Branches = append(node.Branches, IfBranch{Cond: top.pendingCond, Body: top.body})
		}
		r.emit(node)
	case TagFor:
		r.emit(&ForNode{Var: top.tag.Name, Source: top.tag.Expr, Body: top.body})
	}
}
