package weft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, text string) []Node {
	t.Helper()
	tmpl, err := Compile(text)
	require.NoError(t, err)
	return tmpl.Nodes()
}

func TestResolveBlocksIfChain(t *testing.T) {
	nodes := mustCompile(t, "{% if a %}A{% elsif b %}B{% elsif c %}C{% else %}D{% endif %}")
	require.Len(t, nodes, 1)

	ifNode, ok := nodes[0].(*IfNode)
	require.True(t, ok)
	require.Len(t, ifNode.Branches, 3)
	for i, root := range []string{"a", "b", "c"} {
		cond, ok := ifNode.Branches[i].Cond.(*VariableExpr)
		require.True(t, ok)
		assert.Equal(t, root, cond.Root)
		require.Len(t, ifNode.Branches[i].Body, 1)
	}
	require.Len(t, ifNode.ElseBody, 1)
	text, ok := ifNode.ElseBody[0].(*TextNode)
	require.True(t, ok)
	assert.Equal(t, "D", text.Content)
}

func TestResolveBlocksNesting(t *testing.T) {
	nodes := mustCompile(t, "{% for x in xs %}{% if x %}Y{% endif %}{% endfor %}")
	require.Len(t, nodes, 1)

	forNode, ok := nodes[0].(*ForNode)
	require.True(t, ok)
	assert.Equal(t, "x", forNode.Var)
	require.Len(t, forNode.Body, 1)

	inner, ok := forNode.Body[0].(*IfNode)
	require.True(t, ok)
	require.Len(t, inner.Branches, 1)
}

func TestResolveBlocksNestedInElse(t *testing.T) {
	nodes := mustCompile(t, "{% if a %}A{% else %}{% for x in xs %}X{% endfor %}{% endif %}")
	require.Len(t, nodes, 1)

	ifNode, ok := nodes[0].(*IfNode)
	require.True(t, ok)
	require.Len(t, ifNode.ElseBody, 1)
	_, ok = ifNode.ElseBody[0].(*ForNode)
	assert.True(t, ok)
}

// Closers with no matching open block stay in place as inert leaf tags
// instead of failing resolution.
func TestResolveBlocksUnmatchedClosers(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "stray endif", template: "a{% endif %}b", want: "ab"},
		{name: "stray endfor", template: "a{% endfor %}b", want: "ab"},
		{name: "stray else", template: "a{% else %}b", want: "ab"},
		{name: "stray elsif", template: "a{% elsif true %}b", want: "ab"},
		{name: "endfor inside if", template: "{% if true %}A{% endfor %}B{% endif %}", want: "AB"},
		{name: "endif inside for",
			template: "{% for x in xs %}a{% endif %}b{% endfor %}",
			want:     "abab"},
		{name: "elsif inside for is inert",
			template: "{% for x in xs %}a{% elsif true %}b{% endfor %}",
			want:     "abab"},
		{name: "second else is inert",
			template: "{% if false %}A{% else %}B{% else %}C{% endif %}",
			want:     "BC"},
		{name: "elsif after else is inert",
			template: "{% if false %}A{% else %}B{% elsif true %}C{% endif %}",
			want:     "BC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.template, Context{"xs": []interface{}{1, 2}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Openers never closed by end of input close there.
func TestResolveBlocksUnclosedAtEOF(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "unclosed taken if", template: "{% if true %}A", want: "A"},
		{name: "unclosed skipped if", template: "{% if false %}A", want: ""},
		{name: "unclosed if with else", template: "{% if false %}A{% else %}B", want: "B"},
		{name: "unclosed for", template: "{% for x in xs %}{{ x }}", want: "12"},
		{name: "unclosed nested blocks",
			template: "{% for x in xs %}{% if x == 1 %}one",
			want:     "one"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.template, Context{"xs": []interface{}{1, 2}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveBlocksLeafTagsPassThrough(t *testing.T) {
	nodes := mustCompile(t, "{% assign x = 1 %}{% endif %}")
	require.Len(t, nodes, 2)

	assign, ok := nodes[0].(*TagNode)
	require.True(t, ok)
	assert.Equal(t, TagAssign, assign.Kind)

	leaf, ok := nodes[1].(*TagNode)
	require.True(t, ok)
	assert.Equal(t, TagEndIf, leaf.Kind)
}
