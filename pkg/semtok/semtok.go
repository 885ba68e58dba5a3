/*
Package semtok provides the semantic lexer of the extraction pipeline.

Core Functions:
-------------

	       Input
	         |
	         v
	  +------------+
	  | Context    |
	  | tree       |
	  +------------+
	         |
	  Visit each token
	         |
	         v
	  +------------+
	  | Semantic   |
	  | Context    |
	  | tree       |
	  +------------+
*/
package semtok

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/downson/pkg/contextify"
	"github.com/walteh/downson/pkg/converter"
	"github.com/walteh/downson/pkg/failure"
)

// Lex rewrites every context of the tree into semantic tokens. The registry
// decides which link destinations are literal types.
//
//	Example:
//	   lexed, failures := semtok.Lex(ctx, root, converter.Default())
func Lex(ctx context.Context, root *contextify.Context, registry *converter.Registry) (*Context, failure.List) {
	v := newVisitor(registry)

	lexed := v.visitContext(root)

	zerolog.Ctx(ctx).Trace().
		Int("elements", len(lexed.Elements)).
		Int("failures", len(v.failures)).
		Msg("lexed semantic tokens")

	return lexed, v.failures
}

func (v *tokenVisitor) visitContext(c *contextify.Context) *Context {
	out := &Context{
		Depth:    c.Depth,
		Elements: v.visitAll(c.Elements),
		Children: make([]*Context, 0, len(c.Children)),
	}

	if c.Heading != nil {
		out.Heading = &ContextStart{Elements: v.visitAll(c.Heading.Inline)}
	}

	for _, child := range c.Children {
		out.Children = append(out.Children, v.visitContext(child))
	}

	return out
}
