package weft

import "strings"

const trimCutset = " \t\r\n"

// applyWhitespace resolves trim markers over a flat node sequence: a node
// with TrimLeft right-trims an immediately preceding text node, and one
// with TrimRight left-trims an immediately following text node. Text nodes
// trimmed down to nothing are dropped, so a fully trimmed-away neighbor
// leaves no empty node behind. The pass is pure and idempotent; the input
// slice and its nodes are never mutated.
func applyWhitespace(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)

	for i, node := range out {
		trimLeft, trimRight := trimFlags(node)
		if trimLeft && i > 0 {
			if text, ok := out[i-1].(*TextNode); ok {
				out[i-1] = &TextNode{Content: strings.TrimRight(text.Content, trimCutset)}
			}
		}
		if trimRight && i+1 < len(out) {
			if text, ok := out[i+1].(*TextNode); ok {
				out[i+1] = &TextNode{Content: strings.TrimLeft(text.Content, trimCutset)}
			}
		}
	}

	kept := out[:0]
	for _, node := range out {
		if text, ok := node.(*TextNode); ok && text.Content == "" {
			continue
		}
		kept = append(kept, node)
	}
	return kept
}

func trimFlags(node Node) (left, right bool) {
	switch n := node.(type) {
	case *ExpressionNode:
		return n.TrimLeft, n.TrimRight
	case *TagNode:
		return n.TrimLeft, n.TrimRight
	default:
		return false, false
	}
}
