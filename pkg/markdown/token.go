package markdown

import (
	"fmt"
	"strings"
)

// Token is a generic markdown token. The set of implementations is closed.
type Token interface {
	markdownToken()
	fmt.Stringer
}

// Cell is the inline content of one table cell
type Cell []Token

// Heading starts a new section of the given depth (1 for `#`)
type Heading struct {
	Depth  int
	Inline []Token
}

// Paragraph is a block of inline tokens
type Paragraph struct {
	Inline []Token
}

// CodeBlock is an indented or fenced code block
type CodeBlock struct {
	Text string
	Info string
}

// List is an ordered or unordered list
type List struct {
	Ordered bool
	Loose   bool
	Items   []*ListItem
}

// ListItem holds the block tokens of one list entry
type ListItem struct {
	Blocks []Token
}

// Table is a pipe table with a header row
type Table struct {
	Header []Cell
	Rows   [][]Cell
}

// Space is inline or block whitespace with no content of its own
type Space struct{}

// Text is a plain text run
type Text struct {
	Text string
}

// Link is an inline link. DisplayText is the text between the brackets.
type Link struct {
	Href        string
	Title       string
	DisplayText string
}

// AutoLink is a bare URL or e-mail address detected in prose
type AutoLink struct {
	Href string
}

// Strong is `**text**`
type Strong struct {
	Text string
}

// Emphasis is `*text*`
type Emphasis struct {
	Text string
}

// CodeSpan is inline `code`
type CodeSpan struct {
	Text string
}

// Other is any construct the pipeline has no use for (block quotes, html,
// images, rules).
type Other struct {
	Kind string
}

func (*Heading) markdownToken()   {}
func (*Paragraph) markdownToken() {}
func (*CodeBlock) markdownToken() {}
func (*List) markdownToken()      {}
func (*ListItem) markdownToken()  {}
func (*Table) markdownToken()     {}
func (*Space) markdownToken()     {}
func (*Text) markdownToken()      {}
func (*Link) markdownToken()      {}
func (*AutoLink) markdownToken()  {}
func (*Strong) markdownToken()    {}
func (*Emphasis) markdownToken()  {}
func (*CodeSpan) markdownToken()  {}
func (*Other) markdownToken()     {}

func (t *Heading) String() string {
	return fmt.Sprintf("%s %s", strings.Repeat("#", t.Depth), joinTokens(t.Inline))
}

func (t *Paragraph) String() string { return joinTokens(t.Inline) }

func (t *CodeBlock) String() string { return fmt.Sprintf("```%s```", t.Info) }

func (t *List) String() string {
	if t.Ordered {
		return fmt.Sprintf("ordered list (%d items)", len(t.Items))
	}
	return fmt.Sprintf("list (%d items)", len(t.Items))
}

func (t *ListItem) String() string { return "- " + joinTokens(t.Blocks) }

func (t *Table) String() string {
	return fmt.Sprintf("table (%d columns, %d rows)", len(t.Header), len(t.Rows))
}

func (t *Space) String() string { return " " }

func (t *Text) String() string { return t.Text }

func (t *Link) String() string {
	if t.Title != "" {
		return fmt.Sprintf("[%s](%s %q)", t.DisplayText, t.Href, t.Title)
	}
	return fmt.Sprintf("[%s](%s)", t.DisplayText, t.Href)
}

func (t *AutoLink) String() string { return "<" + t.Href + ">" }

func (t *Strong) String() string { return "**" + t.Text + "**" }

func (t *Emphasis) String() string { return "*" + t.Text + "*" }

func (t *CodeSpan) String() string { return "`" + t.Text + "`" }

func (t *Other) String() string { return t.Kind }

func joinTokens(tokens []Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.String())
	}
	return sb.String()
}
