/*
Token Visitor:
--------------

The visitor walks one context's markdown tokens and rewrites each of them:

	Markdown Token        Visitor Method
	--------------        --------------
	Paragraph        ->   inline children, flattened
	List (ordered)   ->   one element sequence per item
	List (bullet)    ->   every item's elements, flattened
	Table            ->   every cell, lexed on its own
	Link             ->   visitLink (by href)
	Strong/Emphasis  ->   visitKey

A visit returns a slice so that containers can splice their content into
the surrounding sequence.
*/
package semtok

import (
	"fmt"
	"strings"

	"github.com/walteh/downson/pkg/converter"
	"github.com/walteh/downson/pkg/failure"
	"github.com/walteh/downson/pkg/markdown"
)

const (
	hrefAlias      = "alias"
	hrefIgnore     = "ignore"
	hrefTerminator = "$"

	keyNameMarker     = "."
	metadataSeparator = ":"
	metadataObject    = "object"
)

// tokenVisitor rewrites markdown tokens, collecting failures as it goes
type tokenVisitor struct {
	// registry decides which link destinations name a literal type
	registry *converter.Registry

	failures failure.List
}

func newVisitor(registry *converter.Registry) *tokenVisitor {
	return &tokenVisitor{
		registry: registry,
		failures: make(failure.List, 0),
	}
}

func (v *tokenVisitor) visitAll(tokens []markdown.Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, v.visit(tok)...)
	}
	return out
}

func (v *tokenVisitor) visit(tok markdown.Token) []Token {
	switch t := tok.(type) {
	case *markdown.Paragraph:
		return v.visitAll(t.Inline)
	case *markdown.Heading:
		return []Token{&ContextStart{Elements: v.visitAll(t.Inline)}}
	case *markdown.CodeBlock:
		return []Token{&PrimitiveLiteral{Literal: t.Text, TypeHint: converter.TypeString}}
	case *markdown.List:
		return v.visitList(t)
	case *markdown.ListItem:
		return v.visitAll(t.Blocks)
	case *markdown.Table:
		return []Token{v.visitTable(t)}
	case *markdown.Text:
		return []Token{&Text{Text: t.Text}}
	case *markdown.Space:
		return []Token{&Space{}}
	case *markdown.Link:
		return []Token{v.visitLink(t)}
	case *markdown.Strong:
		return []Token{visitKey(t.Text, t)}
	case *markdown.Emphasis:
		return []Token{visitKey(t.Text, t)}
	default:
		return []Token{&Noise{Source: tok}}
	}
}

func (v *tokenVisitor) visitList(l *markdown.List) []Token {
	if !l.Ordered {
		out := make([]Token, 0)
		for _, item := range l.Items {
			out = append(out, v.visitAll(item.Blocks)...)
		}
		return out
	}

	list := &List{Items: make([][]Token, 0, len(l.Items))}
	for _, item := range l.Items {
		list.Items = append(list.Items, v.visitAll(item.Blocks))
	}
	return []Token{list}
}

func (v *tokenVisitor) visitTable(t *markdown.Table) *Table {
	table := &Table{
		Header: make([][]Token, 0, len(t.Header)),
		Rows:   make([][][]Token, 0, len(t.Rows)),
	}

	for _, cell := range t.Header {
		table.Header = append(table.Header, v.visitAll(cell))
	}

	for _, row := range t.Rows {
		cells := make([][]Token, 0, len(row))
		for _, cell := range row {
			cells = append(cells, v.visitAll(cell))
		}
		table.Rows = append(table.Rows, cells)
	}

	return table
}

func (v *tokenVisitor) visitLink(l *markdown.Link) Token {
	switch l.Href {
	case hrefAlias:
		return &KeyAlias{Alias: l.Title}
	case hrefIgnore:
		return &IgnoreAlias{}
	case hrefTerminator:
		return &ObjectTerminator{}
	}

	if meta, ok := parseKeyMetadata(l.Href); ok {
		if strings.TrimSpace(l.DisplayText) != "" {
			v.failures = append(v.failures, failure.Ambiguous("non-empty link text for key metadata", l))
			return &Noise{Source: l}
		}
		meta.Alias = l.Title
		return meta
	}

	if strings.TrimSpace(l.DisplayText) == "" {
		v.failures = append(v.failures, failure.Ambiguous("empty link text for primitive literal", l))
		return &Noise{Source: l}
	}

	if !v.registry.IsKnownType(l.Href) {
		reason := fmt.Sprintf("unknown primitive type %q", l.Href)
		if suggestions := v.registry.Suggest(l.Href); len(suggestions) > 0 {
			reason += fmt.Sprintf(" (did you mean %q?)", suggestions[0])
		}
		v.failures = append(v.failures, failure.Ambiguous(reason, l))
		return &Noise{Source: l}
	}

	return &PrimitiveLiteral{
		Literal:  l.DisplayText,
		TypeHint: l.Href,
		Override: l.Title,
	}
}

// parseKeyMetadata accepts left, right, left:object and right:object
func parseKeyMetadata(href string) (*KeyMetadata, bool) {
	side, rest, hasRest := strings.Cut(href, metadataSeparator)

	meta := &KeyMetadata{}
	switch side {
	case "left":
		meta.Side = Left
	case "right":
		meta.Side = Right
	default:
		return nil, false
	}

	if hasRest {
		if rest != metadataObject {
			return nil, false
		}
		meta.Object = true
	}

	return meta, true
}

func visitKey(text string, source fmt.Stringer) Token {
	if name, ok := strings.CutPrefix(text, keyNameMarker); ok {
		return &ObjectKey{Name: name}
	}
	return &Noise{Source: source}
}
