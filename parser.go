package weft

import "strings"

// parser scans raw template text into a flat ordered sequence of nodes.
// Parsing never fails: a span whose grammar does not parse is re-emitted,
// delimiters included, as literal text, and scanning continues after it.
type parser struct {
	input string
	pos   int

	nodes   []Node
	pending strings.Builder
}

// parseTemplate compiles template text to the flat node sequence consumed
// by the whitespace processor and block resolver.
func parseTemplate(input string) []Node {
	p := &parser{input: input}
	p.run()
	return p.nodes
}

func (p *parser) run() {
	for p.pos < len(p.input) {
		idx := p.nextMarker(p.pos)
		if idx == -1 {
			p.pending.WriteString(p.input[p.pos:])
			p.pos = len(p.input)
			break
		}
		p.pending.WriteString(p.input[p.pos:idx])
		p.pos = idx

		switch p.input[idx : idx+2] {
		case "{#":
			p.parseComment()
		case "{%":
			p.parseSpan("%}", true)
		case "{{":
			p.parseSpan("}}", false)
		}
	}
	p.flushText()
}

// nextMarker finds the earliest {{, {%, or {# at or after from.
func (p *parser) nextMarker(from int) int {
	next := -1
	for _, marker := range []string{"{{", "{%", "{#"} {
		if idx := strings.Index(p.input[from:], marker); idx != -1 {
			abs := from + idx
			if next == -1 || abs < next {
				next = abs
			}
		}
	}
	return next
}

func (p *parser) flushText() {
	if p.pending.Len() > 0 {
		p.nodes = append(p.nodes, &TextNode{Content: p.pending.String()})
		p.pending.Reset()
	}
}

// parseComment consumes a {# ... #} span. Comment content is never
// evaluated and renders as nothing. An unclosed comment marker is literal
// text.
func (p *parser) parseComment() {
	end := strings.Index(p.input[p.pos+2:], "#}")
	if end == -1 {
		p.pending.WriteString("{#")
		p.pos += 2
		return
	}
	p.pos += 2 + end + 2
}

// parseSpan consumes a {% %} or {{ }} span, handling trim markers and the
// fallback-to-text policy. isTag selects the tag grammar over the
// expression grammar.
func (p *parser) parseSpan(close string, isTag bool) {
	spanStart := p.pos
	contentStart := p.pos + 2

	// A '-' immediately inside the opening delimiter is a trim marker
	// unless it starts a negative numeric literal.
	trimLeft := false
	if contentStart < len(p.input) && p.input[contentStart] == '-' {
		if contentStart+1 >= len(p.input) || !isDigit(p.input[contentStart+1]) {
			trimLeft = true
			contentStart++
		}
	}

	closeIdx := findSpanEnd(p.input, contentStart, close)
	if closeIdx == -1 {
		// Unclosed span: the delimiter itself is literal text and scanning
		// resumes right after it, so a later marker can still open a span.
		p.pending.WriteString(p.input[p.pos : p.pos+2])
		p.pos += 2
		return
	}

	content := p.input[contentStart:closeIdx]
	spanEnd := closeIdx + len(close)

	// The closing -}} / -%} form is unambiguous: no valid grammar ends with
	// a bare minus, so a trailing '-' is always a trim marker.
	trimRight := false
	if strings.HasSuffix(content, "-") {
		trimRight = true
		content = content[:len(content)-1]
	}

	var node Node
	var err error
	if isTag {
		node, err = parseTag(content, trimLeft, trimRight)
	} else {
		node, err = parseExpressionSpan(content, trimLeft, trimRight)
	}
	if err != nil {
		// Grammar failure inside the span degrades the whole span,
		// delimiters included, to literal text.
		p.pending.WriteString(p.input[spanStart:spanEnd])
		p.pos = spanEnd
		return
	}

	p.flushText()
	p.nodes = append(p.nodes, node)
	p.pos = spanEnd
}

// findSpanEnd locates the closing delimiter, skipping over string literals
// so quoted "%}" or "}}" content does not end the span early. Returns -1
// when the span never closes.
func findSpanEnd(input string, from int, close string) int {
	i := from
	for i < len(input) {
		c := input[i]
		if c == '\'' || c == '"' {
			end := skipStringLiteral(input, i)
			if end == -1 {
				return -1
			}
			i = end
			continue
		}
		if strings.HasPrefix(input[i:], close) {
			return i
		}
		i++
	}
	return -1
}

// skipStringLiteral advances past a quoted literal starting at i, honoring
// backslash escapes. Returns -1 if the literal never terminates.
func skipStringLiteral(input string, i int) int {
	quote := input[i]
	i++
	for i < len(input) {
		switch input[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1
		default:
			i++
		}
	}
	return -1
}

// parseExpressionSpan parses the inside of a {{ }} span.
func parseExpressionSpan(content string, trimLeft, trimRight bool) (Node, error) {
	expr, err := parseExpression(content)
	if err != nil {
		return nil, err
	}
	return &ExpressionNode{Expr: expr, TrimLeft: trimLeft, TrimRight: trimRight}, nil
}

// parseTag parses the inside of a {% %} span into one of the recognized tag
// forms: assign IDENT = expr, if expr, elsif expr, else, endif,
// for IDENT in expr, endfor.
func parseTag(content string, trimLeft, trimRight bool) (Node, error) {
	tokens, err := newExprLexer(content).tokenize()
	if err != nil {
		return nil, err
	}
	if tokens[0].Kind != tokIdent {
		return nil, parseErrorf("expected tag keyword, got %s", tokens[0].Kind)
	}

	tag := &TagNode{TrimLeft: trimLeft, TrimRight: trimRight}
	rest := tokens[1:]

	switch tokens[0].Text {
	case "assign":
		tag.Kind = TagAssign
		if len(rest) < 2 || rest[0].Kind != tokIdent || !isPlainIdent(rest[0].Text) {
			return nil, parseErrorf("assign requires a variable name")
		}
		if rest[1].Kind != tokOp || rest[1].Text != "=" {
			return nil, parseErrorf("assign requires '=' after the variable name")
		}
		tag.Name = rest[0].Text
		tag.Expr, err = parseTokens(rest[2:])
	case "if":
		tag.Kind = TagIf
		tag.Expr, err = parseTokens(rest)
	case "elsif":
		tag.Kind = TagElsif
		tag.Expr, err = parseTokens(rest)
	case "else":
		tag.Kind = TagElse
		err = expectNoArgs("else", rest)
	case "endif":
		tag.Kind = TagEndIf
		err = expectNoArgs("endif", rest)
	case "for":
		tag.Kind = TagFor
		if len(rest) < 2 || rest[0].Kind != tokIdent || !isPlainIdent(rest[0].Text) {
			return nil, parseErrorf("for requires a loop variable name")
		}
		if rest[1].Kind != tokIdent || rest[1].Text != "in" {
			return nil, parseErrorf("for requires 'in' after the loop variable")
		}
		tag.Name = rest[0].Text
		tag.Expr, err = parseTokens(rest[2:])
	case "endfor":
		tag.Kind = TagEndFor
		err = expectNoArgs("endfor", rest)
	default:
		return nil, parseErrorf("unknown tag '%s'", tokens[0].Text)
	}
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// parseTokens parses an already-lexed token slice as a full expression.
func parseTokens(tokens []token) (Expr, error) {
	if len(tokens) == 0 || tokens[0].Kind == tokEOF {
		return nil, parseErrorf("expected an expression")
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

func expectNoArgs(name string, rest []token) error {
	if len(rest) > 0 && rest[0].Kind != tokEOF {
		return parseErrorf("%s takes no arguments", name)
	}
	return nil
}

// isPlainIdent reports whether text is usable as a binding name: a plain
// identifier that is not a reserved word or $-prefixed root.
func isPlainIdent(text string) bool {
	switch text {
	case "true", "false", "null", "and", "or", "not", "in":
		return false
	}
	return text != "" && text[0] != '$'
}
