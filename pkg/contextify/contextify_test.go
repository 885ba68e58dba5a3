package contextify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/downson/pkg/contextify"
	"github.com/walteh/downson/pkg/failure"
	"github.com/walteh/downson/pkg/markdown"
)

func heading(depth int, inline ...markdown.Token) *markdown.Heading {
	return &markdown.Heading{Depth: depth, Inline: inline}
}

func text(s string) *markdown.Text {
	return &markdown.Text{Text: s}
}

func para(s string) *markdown.Paragraph {
	return &markdown.Paragraph{Inline: []markdown.Token{text(s)}}
}

func TestContextify(t *testing.T) {
	a := heading(1, text("A"))
	b := heading(2, text("B"))
	c := heading(1, text("C"), &markdown.Link{Href: "alias", Title: "see"})

	tokens := []markdown.Token{
		para("root"),
		a,
		para("in a"),
		b,
		para("in b"),
		c,
		para("in c"),
	}

	root, failures := contextify.Contextify(context.Background(), tokens)
	require.Empty(t, failures)

	assert.Equal(t, 0, root.Depth)
	assert.Nil(t, root.Heading)
	assert.Equal(t, []markdown.Token{para("root")}, root.Elements)
	require.Len(t, root.Children, 2)

	ctxA := root.Children[0]
	assert.Equal(t, 1, ctxA.Depth)
	assert.Same(t, a, ctxA.Heading)
	assert.Equal(t, []markdown.Token{para("in a")}, ctxA.Elements)
	require.Len(t, ctxA.Children, 1)

	ctxB := ctxA.Children[0]
	assert.Equal(t, 2, ctxB.Depth)
	assert.Same(t, b, ctxB.Heading)
	assert.Equal(t, []markdown.Token{para("in b")}, ctxB.Elements)
	assert.Empty(t, ctxB.Children)

	ctxC := root.Children[1]
	assert.Same(t, c, ctxC.Heading)
	assert.Equal(t, []markdown.Token{para("in c")}, ctxC.Elements)
}

func TestContextifyInvalidJump(t *testing.T) {
	tokens := []markdown.Token{
		para("root"),
		heading(3, text("too deep")),
		para("ignored"),
		heading(4, text("deeper")),
		para("also ignored"),
		heading(1, text("A")),
		para("in a"),
	}

	root, failures := contextify.Contextify(context.Background(), tokens)
	require.Len(t, failures, 1)
	assert.Equal(t, failure.AmbiguousSyntax, failures[0].Kind)
	assert.Equal(t, tokens[1], failures[0].Token)

	assert.Equal(t, []markdown.Token{para("root")}, root.Elements)
	require.Len(t, root.Children, 1)
	assert.Equal(t, []markdown.Token{para("in a")}, root.Children[0].Elements)
}

func TestContextifyInvalidHeadingShape(t *testing.T) {
	tests := []struct {
		name    string
		heading *markdown.Heading
	}{
		{name: "empty", heading: heading(1)},
		{name: "strong only", heading: heading(1, &markdown.Strong{Text: "A"})},
		{name: "text then strong", heading: heading(1, text("A"), &markdown.Strong{Text: "B"})},
		{name: "link first", heading: heading(1, &markdown.Link{Href: "alias"}, text("A"))},
		{name: "three tokens", heading: heading(1, text("A"), &markdown.Link{Href: "alias"}, text("B"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := []markdown.Token{
				tt.heading,
				para("hidden"),
				heading(2, text("hidden child")),
				para("hidden too"),
				heading(1, text("B")),
				para("visible"),
			}

			root, failures := contextify.Contextify(context.Background(), tokens)
			require.Len(t, failures, 1)
			assert.Equal(t, failure.AmbiguousSyntax, failures[0].Kind)
			assert.Same(t, tt.heading, failures[0].Token)

			assert.Empty(t, root.Elements)
			require.Len(t, root.Children, 1)
			assert.Equal(t, []markdown.Token{para("visible")}, root.Children[0].Elements)
		})
	}
}

func TestContextifySiblingReturnsToParent(t *testing.T) {
	tokens := []markdown.Token{
		heading(1, text("A")),
		heading(2, text("A1")),
		heading(3, text("A1a")),
		heading(2, text("A2")),
		heading(1, text("B")),
	}

	root, failures := contextify.Contextify(context.Background(), tokens)
	require.Empty(t, failures)
	require.Len(t, root.Children, 2)
	require.Len(t, root.Children[0].Children, 2)
	require.Len(t, root.Children[0].Children[0].Children, 1)
	assert.Empty(t, root.Children[1].Children)
}
