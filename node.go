package weft

// Node is one element of a compiled template. A template compiles to an
// ordered sequence of nodes; after block resolution, IfNode and ForNode own
// nested child sequences instead of standing alone as flat tags.
type Node interface {
	node()
}

// TextNode is a run of literal template text.
type TextNode struct {
	Content string
}

// ExpressionNode is a {{ ... }} interpolation carrying a parsed expression.
type ExpressionNode struct {
	Expr      Expr
	TrimLeft  bool
	TrimRight bool
}

// TagKind enumerates the control tags the grammar recognizes.
type TagKind int

const (
	TagAssign TagKind = iota
	TagIf
	TagElsif
	TagElse
	TagEndIf
	TagFor
	TagEndFor
)

func (k TagKind) String() string {
	switch k {
	case TagAssign:
		return "assign"
	case TagIf:
		return "if"
	case TagElsif:
		return "elsif"
	case TagElse:
		return "else"
	case TagEndIf:
		return "endif"
	case TagFor:
		return "for"
	case TagEndFor:
		return "endfor"
	default:
		return "unknown"
	}
}

// TagNode is a {% ... %} control tag as produced by the parser. The block
// resolver folds matched if/for runs into IfNode/ForNode; tags that survive
// resolution (unmatched closers, stray elsif/else) render as nothing.
type TagNode struct {
	Kind TagKind
	// Name holds the bound identifier for assign and for tags.
	Name string
	// Expr holds the assigned value, branch condition, or loop source.
	Expr      Expr
	TrimLeft  bool
	TrimRight bool
}

// IfBranch is one condition/body pair of a resolved conditional.
type IfBranch struct {
	Cond Expr
	Body []Node
}

// IfNode is a resolved if/elsif/else/endif chain.
type IfNode struct {
	Branches []IfBranch
	ElseBody []Node
}

// ForNode is a resolved for/endfor loop.
type ForNode struct {
	Var    string
	Source Expr
	Body   []Node
}

func (*TextNode) node()       {}
func (*ExpressionNode) node() {}
func (*TagNode) node()        {}
func (*IfNode) node()         {}
func (*ForNode) node()        {}
