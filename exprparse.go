package weft

import "strconv"

// exprParser turns a token stream into an Expr tree. Precedence, lowest to
// highest: pipe | or/|| | and/&& | not | comparisons | + - | * / % | unary
// minus | primary.
type exprParser struct {
	tokens []token
	pos    int
}

// parseExpression parses a complete expression string. It is the entry
// point used for {{ }} spans, tag conditions, and assign values; any
// trailing tokens are a parse error.
func parseExpression(input string) (Expr, error) {
	tokens, err := newExprLexer(input).tokenize()
	if err != nil {
		return nil, err
	}
	p := &exprParser{tokens: tokens}
	expr, err := p.parsePipe()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != tokEOF {
		return nil, parseErrorf("unexpected %s '%s' after expression", tok.Kind, tok.Text)
	}
	return expr, nil
}

func (p *exprParser) peek() token {
	return p.tokens[p.pos]
}

func (p *exprParser) next() token {
	tok := p.tokens[p.pos]
	if tok.Kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *exprParser) acceptOp(op string) bool {
	if tok := p.peek(); tok.Kind == tokOp && tok.Text == op {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) acceptIdent(word string) bool {
	if tok := p.peek(); tok.Kind == tokIdent && tok.Text == word {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) expect(kind tokenKind) (token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return token{}, parseErrorf("expected %s, got %s '%s'", kind, tok.Kind, tok.Text)
	}
	return p.next(), nil
}

// parsePipe handles filter pipelines, which bind loosest of all:
// `a + b | f(c) | g` is g(f(a + b, c)). Each pipe stage nests the previous
// result as the new first argument.
func (p *exprParser) parsePipe() (Expr, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	for p.acceptOp("|") {
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		args := []Expr{left}
		if p.peek().Kind == tokLParen {
			p.next()
			rest, err := p.parseArgList(tokRParen)
			if err != nil {
				return nil, err
			}
			args = append(args, rest...)
		}
		left = &CallExpr{Name: name.Text, Args: args}
	}
	return left, nil
}

func (p *exprParser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch {
		case p.acceptIdent("or"):
			op = "or"
		case p.acceptOp("||"):
			op = "||"
		default:
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &LogicalExpr{Op: op, Left: left, Right: right}
	}
}

func (p *exprParser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch {
		case p.acceptIdent("and"):
			op = "and"
		case p.acceptOp("&&"):
			op = "&&"
		default:
			return left, nil
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &LogicalExpr{Op: op, Left: left, Right: right}
	}
}

func (p *exprParser) parseNot() (Expr, error) {
	if p.acceptIdent("not") {
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *exprParser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for _, op := range []string{"==", "!=", "<=", ">=", "<", ">"} {
		if p.acceptOp(op) {
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			return &BinaryExpr{Op: op, Left: left, Right: right}, nil
		}
	}
	return left, nil
}

func (p *exprParser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch {
		case p.acceptOp("+"):
			op = "+"
		case p.acceptOp("-"):
			op = "-"
		default:
			return left, nil
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *exprParser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch {
		case p.acceptOp("*"):
			op = "*"
		case p.acceptOp("/"):
			op = "/"
		case p.acceptOp("%"):
			op = "%"
		default:
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *exprParser) parseUnary() (Expr, error) {
	if p.acceptOp("-") {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		// Negative numeric literals fold into the literal itself so that a
		// plain -1 is a literal, not a runtime negation.
		if lit, ok := operand.(*LiteralExpr); ok {
			switch v := lit.Value.(type) {
			case int:
				return &LiteralExpr{Value: -v}, nil
			case float64:
				return &LiteralExpr{Value: -v}, nil
			}
		}
		return &NegExpr{Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Kind {
	case tokNumber:
		p.next()
		return numberLiteral(tok.Text)
	case tokString:
		p.next()
		return &LiteralExpr{Value: tok.Text}, nil
	case tokSymbol:
		p.next()
		return &LiteralExpr{Value: Symbol(tok.Text)}, nil
	case tokLParen:
		p.next()
		inner, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil
	case tokLBracket:
		p.next()
		elems, err := p.parseArgList(tokRBracket)
		if err != nil {
			return nil, err
		}
		return &ArrayExpr{Elems: elems}, nil
	case tokIdent:
		switch tok.Text {
		case "true":
			p.next()
			return &LiteralExpr{Value: true}, nil
		case "false":
			p.next()
			return &LiteralExpr{Value: false}, nil
		case "null":
			p.next()
			return &LiteralExpr{Value: nil}, nil
		case "$":
			return nil, parseErrorf("expected identifier after '$'")
		case "and", "or", "not", "in":
			return nil, parseErrorf("unexpected keyword '%s'", tok.Text)
		}
		p.next()
		// Parenthesized call syntax name(args...) yields the same Call
		// shape as a pipe stage.
		if p.peek().Kind == tokLParen {
			p.next()
			args, err := p.parseArgList(tokRParen)
			if err != nil {
				return nil, err
			}
			return &CallExpr{Name: tok.Text, Args: args}, nil
		}
		return p.parsePathSegments(tok.Text)
	case tokEOF:
		return nil, parseErrorf("unexpected end of expression")
	default:
		return nil, parseErrorf("unexpected %s '%s'", tok.Kind, tok.Text)
	}
}

// parseArgList parses a comma-separated expression list up to the given
// closing token. No trailing comma is allowed.
func (p *exprParser) parseArgList(closing tokenKind) ([]Expr, error) {
	var args []Expr
	if p.peek().Kind == closing {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().Kind == closing {
			p.next()
			return args, nil
		}
		if _, err := p.expect(tokComma); err != nil {
			return nil, err
		}
	}
}

// parsePathSegments parses the .prop and [index] steps after a root
// identifier.
func (p *exprParser) parsePathSegments(root string) (Expr, error) {
	v := &VariableExpr{Root: root}
	for {
		switch p.peek().Kind {
		case tokDot:
			p.next()
			name, err := p.expect(tokIdent)
			if err != nil {
				return nil, err
			}
			v.Segments = append(v.Segments, &PropertySegment{Name: name.Text})
		case tokLBracket:
			p.next()
			index, err := p.parseIndexExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRBracket); err != nil {
				return nil, err
			}
			v.Segments = append(v.Segments, &IndexSegment{Index: index})
		default:
			return v, nil
		}
	}
}

// parseIndexExpr parses the restricted grammar inside [ ]: a literal or a
// variable path (which may itself contain bracketed segments), not an
// arbitrary expression.
func (p *exprParser) parseIndexExpr() (Expr, error) {
	tok := p.peek()
	switch tok.Kind {
	case tokNumber:
		p.next()
		return numberLiteral(tok.Text)
	case tokString:
		p.next()
		return &LiteralExpr{Value: tok.Text}, nil
	case tokSymbol:
		p.next()
		return &LiteralExpr{Value: Symbol(tok.Text)}, nil
	case tokOp:
		if tok.Text == "-" {
			p.next()
			num, err := p.expect(tokNumber)
			if err != nil {
				return nil, err
			}
			lit, err := numberLiteral(num.Text)
			if err != nil {
				return nil, err
			}
			switch v := lit.(*LiteralExpr).Value.(type) {
			case int:
				return &LiteralExpr{Value: -v}, nil
			case float64:
				return &LiteralExpr{Value: -v}, nil
			}
		}
		return nil, parseErrorf("invalid index expression: unexpected operator '%s'", tok.Text)
	case tokIdent:
		switch tok.Text {
		case "true", "false", "null", "and", "or", "not", "in":
			return nil, parseErrorf("invalid index expression: '%s'", tok.Text)
		}
		p.next()
		return p.parsePathSegments(tok.Text)
	default:
		return nil, parseErrorf("invalid index expression: unexpected %s", tok.Kind)
	}
}

// numberLiteral converts a scanned number token to an int or float literal.
func numberLiteral(text string) (Expr, error) {
	if i, err := strconv.Atoi(text); err == nil {
		return &LiteralExpr{Value: i}, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, parseErrorf("invalid number literal '%s'", text)
	}
	return &LiteralExpr{Value: f}, nil
}
