// Package contextify groups a flat markdown token sequence into a tree of
// heading-scoped contexts.
package contextify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/walteh/downson/pkg/failure"
	"github.com/walteh/downson/pkg/markdown"
)

// Context is one heading-scoped section of a document. The root context has
// depth 0 and no heading.
type Context struct {
	Depth    int
	Heading  *markdown.Heading
	Elements []markdown.Token
	Children []*Context
}

type builder struct {
	tokens   []markdown.Token
	pos      int
	failures failure.List
}

// Contextify builds the context tree for one document
func Contextify(ctx context.Context, tokens []markdown.Token) (*Context, failure.List) {
	b := &builder{tokens: tokens}

	root := &Context{
		Elements: make([]markdown.Token, 0),
		Children: make([]*Context, 0),
	}

	b.build(root)

	zerolog.Ctx(ctx).Trace().
		Int("contexts", root.count()).
		Int("failures", len(b.failures)).
		Msg("contextified document")

	return root, b.failures
}

// build consumes tokens into c until a heading at c's depth or shallower
// appears, leaving that heading for an ancestor.
func (b *builder) build(c *Context) {
	ignoring := false

	for b.pos < len(b.tokens) {
		tok := b.tokens[b.pos]

		heading, ok := tok.(*markdown.Heading)
		if !ok {
			if !ignoring {
				c.Elements = append(c.Elements, tok)
			}
			b.pos++
			continue
		}

		switch {
		case heading.Depth <= c.Depth:
			return
		case heading.Depth == c.Depth+1:
			b.pos++

			if reason := checkHeading(heading); reason != "" {
				b.failures = append(b.failures, failure.Ambiguous(reason, heading))
				ignoring = true
				continue
			}

			ignoring = false

			child := &Context{
				Depth:    heading.Depth,
				Heading:  heading,
				Elements: make([]markdown.Token, 0),
				Children: make([]*Context, 0),
			}
			c.Children = append(c.Children, child)

			b.build(child)
		default:
			// deeper headings inside an ignored subtree are ignored with it
			if !ignoring {
				b.failures = append(b.failures, failure.Ambiguous(
					fmt.Sprintf("heading of depth %d cannot follow a section of depth %d", heading.Depth, c.Depth),
					heading,
				))
			}
			ignoring = true
			b.pos++
		}
	}
}

// checkHeading returns a non-empty reason when the heading cannot name a
// context: it must hold one text token, optionally followed by one link.
func checkHeading(h *markdown.Heading) string {
	switch len(h.Inline) {
	case 1:
		if _, ok := h.Inline[0].(*markdown.Text); ok {
			return ""
		}
	case 2:
		if _, ok := h.Inline[0].(*markdown.Text); !ok {
			break
		}
		switch h.Inline[1].(type) {
		case *markdown.Link, *markdown.AutoLink:
			return ""
		}
	}
	return "heading must be a single text, optionally followed by a link"
}

func (c *Context) count() int {
	n := 1
	for _, child := range c.Children {
		n += child.count()
	}
	return n
}
