// Package parser turns a semantic token tree into structured data.
//
// Each context's elements are scanned left to right with a stack of nesting
// frames; child contexts are parsed recursively and merged over the
// context's own data under their heading's key.
package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/downson/pkg/converter"
	"github.com/walteh/downson/pkg/failure"
	"github.com/walteh/downson/pkg/semtok"
)

type parser struct {
	registry *converter.Registry
	failures failure.List
}

// Parse extracts the data of the whole tree rooted at root
func Parse(ctx context.Context, root *semtok.Context, registry *converter.Registry) (map[string]any, failure.List) {
	p := &parser{
		registry: registry,
		failures: make(failure.List, 0),
	}

	data := p.parseContext(root)

	zerolog.Ctx(ctx).Trace().
		Int("keys", len(data)).
		Int("failures", len(p.failures)).
		Msg("parsed context tree")

	return data, p.failures
}

func (p *parser) ambiguous(tok semtok.Token, format string, args ...any) {
	p.failures = append(p.failures, failure.Ambiguous(fmt.Sprintf(format, args...), tok))
}

func (p *parser) interpretation(tok semtok.Token, format string, args ...any) {
	p.failures = append(p.failures, failure.Interpretation(fmt.Sprintf(format, args...), tok))
}

// parseContext merges the context's own data with its children. Child keys
// win over own keys of the same name.
func (p *parser) parseContext(c *semtok.Context) map[string]any {
	data := p.parseElements(c.Elements)

	for _, child := range c.Children {
		key, ok := p.contextKey(child)
		if !ok {
			continue
		}
		data[key] = p.parseContext(child)
	}

	return data
}

// contextKey derives the key of a child context from its heading: the text,
// or the alias when one follows it. An ignore link skips the context.
func (p *parser) contextKey(c *semtok.Context) (string, bool) {
	if c.Heading == nil {
		return "", false
	}

	elements := c.Heading.Elements

	if len(elements) == 0 || len(elements) > 2 {
		p.ambiguous(c.Heading, "heading must be a single text, optionally followed by an alias")
		return "", false
	}

	text, ok := elements[0].(*semtok.Text)
	if !ok {
		p.ambiguous(c.Heading, "heading must start with text")
		return "", false
	}

	if len(elements) == 1 {
		return strings.TrimSpace(text.Text), true
	}

	switch tok := elements[1].(type) {
	case *semtok.IgnoreAlias:
		return "", false
	case *semtok.KeyAlias:
		if tok.Alias == "" {
			p.ambiguous(c.Heading, "key alias has no name")
			return "", false
		}
		return tok.Alias, true
	default:
		p.ambiguous(c.Heading, "heading link must be an alias or ignore link, got %s", tok.Kind())
		return "", false
	}
}

// parseElements scans one element sequence into an object. A literal that is
// never bound to a key is an error here.
func (p *parser) parseElements(elements []semtok.Token) map[string]any {
	s := p.scan(elements)

	if s.literal.set {
		p.interpretation(s.literal.tok, "literal was never bound to a key")
	}

	return s.result()
}

func (p *parser) convert(lit *semtok.PrimitiveLiteral) (any, bool) {
	v, err := p.registry.TryConvert(lit.TypeHint, lit.Literal, lit.Override)
	if err != nil {
		p.interpretation(lit, "converting %s literal: %s", lit.TypeHint, err.Error())
		return nil, false
	}
	return v, true
}
