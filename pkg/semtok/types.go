package semtok

import (
	"fmt"
	"strings"
)

// Kind represents the semantic role of a token
type Kind uint32

const (
	// KindNoise is a token with no meaning in the data overlay
	KindNoise Kind = iota + 1

	// KindText is a plain text run
	KindText

	// KindSpace is whitespace
	KindSpace

	// KindObjectKey names a key (e.g., **.name**)
	KindObjectKey

	// KindKeyMetadata tells which side a key binds to (e.g., [](right))
	KindKeyMetadata

	// KindKeyAlias renames a heading or table column
	KindKeyAlias

	// KindIgnoreAlias drops a heading or table column
	KindIgnoreAlias

	// KindObjectTerminator opens or closes a nested object ([]($))
	KindObjectTerminator

	// KindPrimitiveLiteral is a typed literal (e.g., [36](int))
	KindPrimitiveLiteral

	// KindList is an ordered list whose items become array entries
	KindList

	// KindTable is a table whose rows become objects
	KindTable

	// KindContextStart is the heading that opens a context
	KindContextStart
)

// String returns a human-readable representation of the kind
func (k Kind) String() string {
	switch k {
	case KindNoise:
		return "noise"
	case KindText:
		return "text"
	case KindSpace:
		return "space"
	case KindObjectKey:
		return "object key"
	case KindKeyMetadata:
		return "key metadata"
	case KindKeyAlias:
		return "key alias"
	case KindIgnoreAlias:
		return "ignore alias"
	case KindObjectTerminator:
		return "object terminator"
	case KindPrimitiveLiteral:
		return "primitive literal"
	case KindList:
		return "list"
	case KindTable:
		return "table"
	case KindContextStart:
		return "context start"
	default:
		return "unknown"
	}
}

// Side is the direction a key binds its value from
type Side int

const (
	// Left binds the value written before the key
	Left Side = iota + 1
	// Right binds the value written after the key
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Token is a semantic token. The set of implementations is closed.
type Token interface {
	Kind() Kind
	fmt.Stringer
}

type (
	// Noise carries the markdown token it replaced, for failure reporting
	Noise struct{ Source fmt.Stringer }

	Text struct{ Text string }

	Space struct{}

	ObjectKey struct{ Name string }

	// KeyMetadata binds the preceding ObjectKey. Alias, when set, replaces
	// the key's own name.
	KeyMetadata struct {
		Side   Side
		Object bool
		Alias  string
	}

	KeyAlias struct{ Alias string }

	IgnoreAlias struct{}

	ObjectTerminator struct{}

	// PrimitiveLiteral is converted through the registry type named by
	// TypeHint. Override, when set, is converted instead of Literal.
	PrimitiveLiteral struct {
		Literal  string
		TypeHint string
		Override string
	}

	// List holds the element sequence of each ordered list item
	List struct{ Items [][]Token }

	// Table holds the reinterpreted inline content of every cell
	Table struct {
		Header [][]Token
		Rows   [][][]Token
	}

	ContextStart struct{ Elements []Token }
)

func (*Noise) Kind() Kind            { return KindNoise }
func (*Text) Kind() Kind             { return KindText }
func (*Space) Kind() Kind            { return KindSpace }
func (*ObjectKey) Kind() Kind        { return KindObjectKey }
func (*KeyMetadata) Kind() Kind      { return KindKeyMetadata }
func (*KeyAlias) Kind() Kind         { return KindKeyAlias }
func (*IgnoreAlias) Kind() Kind      { return KindIgnoreAlias }
func (*ObjectTerminator) Kind() Kind { return KindObjectTerminator }
func (*PrimitiveLiteral) Kind() Kind { return KindPrimitiveLiteral }
func (*List) Kind() Kind             { return KindList }
func (*Table) Kind() Kind            { return KindTable }
func (*ContextStart) Kind() Kind     { return KindContextStart }

func (t *Noise) String() string {
	if t.Source == nil {
		return "noise"
	}
	return "noise(" + t.Source.String() + ")"
}

func (t *Text) String() string             { return fmt.Sprintf("text(%q)", t.Text) }
func (t *Space) String() string            { return "space" }
func (t *ObjectKey) String() string        { return "**." + t.Name + "**" }
func (t *KeyAlias) String() string         { return fmt.Sprintf("[](alias %q)", t.Alias) }
func (t *IgnoreAlias) String() string      { return "[](ignore)" }
func (t *ObjectTerminator) String() string { return "[]($)" }

func (t *KeyMetadata) String() string {
	href := t.Side.String()
	if t.Object {
		href += ":object"
	}
	if t.Alias != "" {
		return fmt.Sprintf("[](%s %q)", href, t.Alias)
	}
	return fmt.Sprintf("[](%s)", href)
}

func (t *PrimitiveLiteral) String() string {
	if t.Override != "" {
		return fmt.Sprintf("[%s](%s %q)", t.Literal, t.TypeHint, t.Override)
	}
	return fmt.Sprintf("[%s](%s)", t.Literal, t.TypeHint)
}

func (t *List) String() string { return fmt.Sprintf("list(%d items)", len(t.Items)) }

func (t *Table) String() string {
	return fmt.Sprintf("table(%d columns, %d rows)", len(t.Header), len(t.Rows))
}

func (t *ContextStart) String() string {
	parts := make([]string, 0, len(t.Elements))
	for _, el := range t.Elements {
		parts = append(parts, el.String())
	}
	return "context(" + strings.Join(parts, " ") + ")"
}

// Context mirrors contextify.Context with semantic tokens
type Context struct {
	Depth    int
	Heading  *ContextStart
	Elements []Token
	Children []*Context
}
