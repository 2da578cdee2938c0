package weft

// Expr is a parsed expression tree. Expressions are immutable once parsed;
// the renderer consumes them read-only.
type Expr interface {
	expr()
}

// LiteralExpr holds a literal runtime value: nil, bool, int, float64,
// string, or Symbol.
type LiteralExpr struct {
	Value interface{}
}

// PathSegment is one step of a variable path after the root identifier.
type PathSegment interface {
	pathSegment()
}

// PropertySegment is a .name step.
type PropertySegment struct {
	Name string
}

// IndexSegment is a [index] step. The parser restricts Index to a literal
// or a variable path; arbitrary binary expressions are not valid indices.
type IndexSegment struct {
	Index Expr
}

func (*PropertySegment) pathSegment() {}
func (*IndexSegment) pathSegment()    {}

// VariableExpr is a context lookup: a root identifier (plain or $-prefixed)
// followed by property and index segments.
type VariableExpr struct {
	Root     string
	Segments []PathSegment
}

// BinaryExpr is an arithmetic or comparison operation.
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

// LogicalExpr is a short-circuit logical operation. Op is one of
// "and", "or" (strict, boolean-coercing) or "&&", "||" (value-preserving).
type LogicalExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

// NotExpr is the strict boolean negation.
type NotExpr struct {
	Operand Expr
}

// NegExpr is the numeric unary minus.
type NegExpr struct {
	Operand Expr
}

// CallExpr is a filter or function invocation. Pipe syntax is normalized to
// this shape: `x | f(a)` parses as Call("f", [x, a]), with the first
// argument acting as the implicit subject.
type CallExpr struct {
	Name string
	Args []Expr
}

// ArrayExpr is a [e, e, ...] literal.
type ArrayExpr struct {
	Elems []Expr
}

func (*LiteralExpr) expr()  {}
func (*VariableExpr) expr() {}
func (*BinaryExpr) expr()   {}
func (*LogicalExpr) expr()  {}
func (*NotExpr) expr()      {}
func (*NegExpr) expr()      {}
func (*CallExpr) expr()     {}
func (*ArrayExpr) expr()    {}
