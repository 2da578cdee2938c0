package weft

import (
	"strconv"
	"strings"
)

// tokenKind classifies the tokens of the expression grammar.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokSymbol
	tokOp
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokDot
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "EOF"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokString:
		return "string"
	case tokSymbol:
		return "symbol"
	case tokOp:
		return "operator"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokComma:
		return "','"
	case tokDot:
		return "'.'"
	default:
		return "unknown"
	}
}

// token is a single lexical element. For tokString, Text holds the decoded
// string value; for every other kind it holds the raw source text.
type token struct {
	Kind tokenKind
	Text string
	Pos  int
}

// exprLexer scans the inside of a {{ }} or {% %} span into tokens.
type exprLexer struct {
	input string
	pos   int
}

func newExprLexer(input string) *exprLexer {
	return &exprLexer{input: input}
}

// tokenize scans the whole input. Any lexical error is a parse error; the
// caller catches it at the span boundary and re-emits the span as text.
func (l *exprLexer) tokenize() ([]token, error) {
	tokens := make([]token, 0, len(l.input)/3+4)
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if isSpace(c) {
			l.pos++
			continue
		}

		switch c {
		case '(':
			tokens = append(tokens, token{tokLParen, "(", l.pos})
			l.pos++
			continue
		case ')':
			tokens = append(tokens, token{tokRParen, ")", l.pos})
			l.pos++
			continue
		case '[':
			tokens = append(tokens, token{tokLBracket, "[", l.pos})
			l.pos++
			continue
		case ']':
			tokens = append(tokens, token{tokRBracket, "]", l.pos})
			l.pos++
			continue
		case ',':
			tokens = append(tokens, token{tokComma, ",", l.pos})
			l.pos++
			continue
		case '.':
			tokens = append(tokens, token{tokDot, ".", l.pos})
			l.pos++
			continue
		case '\'', '"':
			tok, err := l.scanString()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			continue
		case ':':
			tok, err := l.scanSymbol()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			continue
		}

		if isDigit(c) {
			tok, err := l.scanNumber()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			continue
		}

		if op, ok := l.scanOperator(); ok {
			tokens = append(tokens, token{tokOp, op, l.pos - len(op)})
			continue
		}

		if isIdentStart(c) || c == '$' {
			tokens = append(tokens, l.scanIdent())
			continue
		}

		return nil, parseErrorf("unexpected character %q at position %d", c, l.pos)
	}
	tokens = append(tokens, token{tokEOF, "", len(l.input)})
	return tokens, nil
}

// scanString decodes a single- or double-quoted string literal with
// \n \t \" \' \\ and \uXXXX escapes.
func (l *exprLexer) scanString() (token, error) {
	quote := l.input[l.pos]
	start := l.pos
	l.pos++

	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == quote {
			l.pos++
			return token{tokString, sb.String(), start}, nil
		}
		if c != '\\' {
			sb.WriteByte(c)
			l.pos++
			continue
		}
		if l.pos+1 >= len(l.input) {
			break
		}
		esc := l.input[l.pos+1]
		switch esc {
		case 'n':
			sb.WriteByte('\n')
			l.pos += 2
		case 't':
			sb.WriteByte('\t')
			l.pos += 2
		case 'r':
			sb.WriteByte('\r')
			l.pos += 2
		case '\\', '\'', '"':
			sb.WriteByte(esc)
			l.pos += 2
		case 'u':
			if l.pos+6 > len(l.input) {
				return token{}, parseErrorf("truncated \\u escape at position %d", l.pos)
			}
			code, err := strconv.ParseUint(l.input[l.pos+2:l.pos+6], 16, 32)
			if err != nil {
				return token{}, parseErrorf("invalid \\u escape at position %d", l.pos)
			}
			sb.WriteRune(rune(code))
			l.pos += 6
		default:
			return token{}, parseErrorf("unsupported escape '\\%c' at position %d", esc, l.pos)
		}
	}
	return token{}, parseErrorf("unterminated string literal at position %d", start)
}

// scanSymbol scans a :name atom literal. Text holds the bare name.
func (l *exprLexer) scanSymbol() (token, error) {
	start := l.pos
	l.pos++ // consume ':'
	if l.pos >= len(l.input) || !isIdentStart(l.input[l.pos]) {
		return token{}, parseErrorf("expected symbol name after ':' at position %d", start)
	}
	nameStart := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
	return token{tokSymbol, l.input[nameStart:l.pos], start}, nil
}

// scanNumber scans an unsigned numeric literal: no leading zeros, a decimal
// point needs digits on both sides, and e/E exponents take an optional sign.
// The sign of a negative literal is handled by the parser as unary minus.
func (l *exprLexer) scanNumber() (token, error) {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	intPart := l.input[start:l.pos]
	if len(intPart) > 1 && intPart[0] == '0' {
		return token{}, parseErrorf("invalid number literal '%s': leading zeros are not allowed", intPart)
	}

	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		// A dot is part of the number only when a digit follows; otherwise
		// it is a property access on the literal's value, which the grammar
		// does not allow, so let the parser report it.
		if l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) {
			l.pos++
			for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
				l.pos++
			}
		} else {
			return token{}, parseErrorf("invalid number literal at position %d: decimal point requires digits on both sides", start)
		}
	}

	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		expPos := l.pos
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
			return token{}, parseErrorf("invalid exponent in number literal at position %d", expPos)
		}
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}

	return token{tokNumber, l.input[start:l.pos], start}, nil
}

// scanOperator matches the operator tokens, longest first.
func (l *exprLexer) scanOperator() (string, bool) {
	rest := l.input[l.pos:]
	for _, op := range []string{"==", "!=", "<=", ">=", "&&", "||", "<", ">", "+", "-", "*", "/", "%", "|", "="} {
		if strings.HasPrefix(rest, op) {
			l.pos += len(op)
			return op, true
		}
	}
	return "", false
}

// scanIdent scans an identifier, including $-prefixed workflow roots and the
// word operators/keywords (or, and, not, in, true, false, null), which the
// parser distinguishes by text.
func (l *exprLexer) scanIdent() token {
	start := l.pos
	if l.input[l.pos] == '$' {
		l.pos++
	}
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
	return token{tokIdent, l.input[start:l.pos], start}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
