package weft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyWhitespaceTrimsAdjacentText(t *testing.T) {
	tests := []struct {
		name     string
		template string
		context  Context
		want     string
	}{
		{name: "no markers keep whitespace", template: "a  {{ 1 }}  b", want: "a  1  b"},
		{name: "left marker trims preceding text", template: "a  \n {{- 1 }}", want: "a1"},
		{name: "right marker trims following text", template: "{{ 1 -}} \n b", want: "1b"},
		{name: "both markers", template: "a \t {{- 1 -}} \n b", want: "a1b"},
		{name: "trim stops at non-whitespace", template: "a.  {{- 1 }}", want: "a.1"},
		{name: "tag markers trim too",
			template: "a\n  {%- if true -%}\n  b\n  {%- endif -%}\n c",
			want:     "abc"},
		{name: "marker with no adjacent text", template: "{{- 1 -}}", want: "1"},
		{name: "only intervening text is trimmed",
			template: "a {{ 1 }} {{- 2 }}",
			want:     "a 12"},
		{name: "whitespace-only text trims to empty",
			template: "{{ 1 -}}   \n   {{- 2 }}",
			want:     "12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.template, tt.context)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The whitespace pass is idempotent and never mutates its input.
func TestApplyWhitespacePure(t *testing.T) {
	nodes := parseTemplate("  left  {{- 1 -}}  right  {%- if x -%}  body  {%- endif %} tail")

	original := make([]string, 0)
	for _, node := range nodes {
		if text, ok := node.(*TextNode); ok {
			original = append(original, text.Content)
		}
	}

	once := applyWhitespace(nodes)
	twice := applyWhitespace(once)
	assert.Equal(t, once, twice)

	// Input nodes are untouched; trimming replaces, never edits in place.
	i := 0
	for _, node := range nodes {
		if text, ok := node.(*TextNode); ok {
			assert.Equal(t, original[i], text.Content)
			i++
		}
	}
}

// Text trimmed down to nothing is dropped from the sequence entirely
// instead of surviving as an empty node.
func TestApplyWhitespaceDropsEmptiedText(t *testing.T) {
	nodes := applyWhitespace(parseTemplate(" {{- 1 -}} "))
	require.Len(t, nodes, 1)
	_, ok := nodes[0].(*ExpressionNode)
	assert.True(t, ok)

	// Partially trimmed text stays.
	nodes = applyWhitespace(parseTemplate("a {{- 1 -}} b"))
	require.Len(t, nodes, 3)
}

func TestApplyWhitespaceOnlyTouchesTextNeighbors(t *testing.T) {
	// Two adjacent spans with facing markers have no text between them to
	// trim; neither span is affected.
	nodes := applyWhitespace(parseTemplate("{{ 1 -}}{{- 2 }}"))
	require.Len(t, nodes, 2)
	_, ok := nodes[0].(*ExpressionNode)
	assert.True(t, ok)
	_, ok = nodes[1].(*ExpressionNode)
	assert.True(t, ok)

	got, err := Render("{{ 1 -}}{{- 2 }}", nil)
	require.NoError(t, err)
	assert.Equal(t, "12", got)
}
