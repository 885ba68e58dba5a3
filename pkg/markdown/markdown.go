// Package markdown turns document source into the flat sequence of generic
// tokens the extraction pipeline consumes. Parsing is delegated to
// goldmark; this package only reshapes its AST.
package markdown

import (
	"bytes"
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"gitlab.com/tozd/go/errors"
)

// Options selects the grammar flavor
type Options struct {
	// GFM enables GitHub-flavored extensions: bare URL autolinks,
	// strikethrough and task lists.
	GFM bool `json:"gfm" yaml:"gfm" hcl:"gfm,optional"`
	// Tables enables pipe tables
	Tables bool `json:"tables" yaml:"tables" hcl:"tables,optional"`
}

// DefaultOptions returns the factory defaults: GFM with tables
func DefaultOptions() Options {
	return Options{
		GFM:    true,
		Tables: true,
	}
}

func (o Options) extensions() []goldmark.Extender {
	ext := make([]goldmark.Extender, 0, 4)
	if o.GFM {
		ext = append(ext, extension.Linkify, extension.Strikethrough, extension.TaskList)
	}
	if o.Tables {
		ext = append(ext, extension.Table)
	}
	return ext
}

// Lex parses src and returns the top-level block tokens in document order
func Lex(ctx context.Context, src []byte, opts Options) (tokens []Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("markdown parser failed: %v", r)
			tokens = nil
		}
	}()

	md := goldmark.New(goldmark.WithExtensions(opts.extensions()...))
	doc := md.Parser().Parse(text.NewReader(src))

	l := &lexer{src: src}
	tokens = l.blocks(doc)

	zerolog.Ctx(ctx).Trace().Int("tokens", len(tokens)).Int("bytes", len(src)).Msg("lexed markdown")

	return tokens, nil
}

type lexer struct {
	src []byte
}

func (l *lexer) blocks(parent ast.Node) []Token {
	out := make([]Token, 0)
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		out = append(out, l.block(child))
	}
	return out
}

func (l *lexer) block(node ast.Node) Token {
	switch n := node.(type) {
	case *ast.Heading:
		return &Heading{Depth: n.Level, Inline: l.inlines(n)}
	case *ast.Paragraph:
		return &Paragraph{Inline: l.inlines(n)}
	case *ast.TextBlock:
		// tight list items hold text blocks instead of paragraphs
		return &Paragraph{Inline: l.inlines(n)}
	case *ast.FencedCodeBlock:
		return &CodeBlock{Text: l.lines(n), Info: string(n.Language(l.src))}
	case *ast.CodeBlock:
		return &CodeBlock{Text: l.lines(n)}
	case *ast.List:
		list := &List{
			Ordered: n.IsOrdered(),
			Loose:   !n.IsTight,
		}
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			list.Items = append(list.Items, &ListItem{Blocks: l.blocks(item)})
		}
		return list
	case *east.Table:
		return l.table(n)
	case *ast.ThematicBreak:
		return &Space{}
	default:
		return &Other{Kind: node.Kind().String()}
	}
}

func (l *lexer) lines(node ast.Node) string {
	var buf bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(l.src))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func (l *lexer) table(node *east.Table) *Table {
	tbl := &Table{}
	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		cells := make([]Cell, 0)
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, Cell(l.inlines(cell)))
		}
		if _, ok := row.(*east.TableHeader); ok && tbl.Header == nil {
			tbl.Header = cells
			continue
		}
		tbl.Rows = append(tbl.Rows, cells)
	}
	return tbl
}

// inlines reshapes the inline children of parent. goldmark splits a run of
// plain text wherever an inline parser starts and gives up (`_`, `[`, `\`),
// so adjacent text nodes are joined back into a single Text.
func (l *lexer) inlines(parent ast.Node) []Token {
	out := make([]Token, 0)
	run := &textRun{}

	flush := func() {
		if t := run.take(); t != "" {
			out = append(out, &Text{Text: t})
		}
	}

	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			run.raw(n.Value(l.src))
			if n.SoftLineBreak() || n.HardLineBreak() {
				flush()
				out = append(out, &Space{})
			}
		case *ast.String:
			run.resolved(n.Value)
		default:
			flush()
			out = append(out, l.inline(child))
		}
	}
	flush()

	return out
}

// textRun collects the pieces of one plain text run. Raw source pieces are
// kept pending until the run ends so that an escape split across two nodes
// is still resolved.
type textRun struct {
	done    bytes.Buffer
	pending []byte
}

func (r *textRun) raw(v []byte) {
	r.pending = append(r.pending, v...)
}

func (r *textRun) resolved(v []byte) {
	r.done.WriteString(unescape(r.pending))
	r.pending = r.pending[:0]
	r.done.Write(v)
}

func (r *textRun) take() string {
	r.resolved(nil)
	t := r.done.String()
	r.done.Reset()
	return t
}

// unescape resolves backslash escapes and character references
func unescape(v []byte) string {
	if len(v) == 0 {
		return ""
	}
	v = util.UnescapePunctuations(v)
	v = util.ResolveNumericReferences(v)
	v = util.ResolveEntityNames(v)
	return string(v)
}

func (l *lexer) inline(node ast.Node) Token {
	switch n := node.(type) {
	case *ast.Link:
		return &Link{
			Href:        string(n.Destination),
			Title:       string(n.Title),
			DisplayText: l.linkText(n),
		}
	case *ast.AutoLink:
		return &AutoLink{Href: string(n.URL(l.src))}
	case *ast.Emphasis:
		if n.Level >= 2 {
			return &Strong{Text: l.plainText(n)}
		}
		return &Emphasis{Text: l.plainText(n)}
	case *ast.CodeSpan:
		return &CodeSpan{Text: l.plainText(n)}
	default:
		return &Other{Kind: node.Kind().String()}
	}
}

// linkText returns the source between the brackets of a link, markup and
// escapes included.
func (l *lexer) linkText(link *ast.Link) string {
	if link.FirstChild() == nil {
		return ""
	}

	start, stop := -1, -1
	_ = ast.Walk(link, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			if start < 0 || t.Segment.Start < start {
				start = t.Segment.Start
			}
			if t.Segment.Stop > stop {
				stop = t.Segment.Stop
			}
		}
		return ast.WalkContinue, nil
	})
	if start < 0 {
		return l.plainText(link)
	}

	// widen over inline delimiters up to the enclosing brackets
	if i := skipDelims(l.src, start, -1); i > 0 && l.src[i-1] == '[' {
		start = i
	}
	if i := skipDelims(l.src, stop, 1); i < len(l.src) && l.src[i] == ']' {
		stop = i
	}

	return string(l.src[start:stop])
}

func skipDelims(src []byte, i, dir int) int {
	const delims = "*_~`"
	if dir < 0 {
		for i > 0 && strings.IndexByte(delims, src[i-1]) >= 0 {
			i--
		}
		return i
	}
	for i < len(src) && strings.IndexByte(delims, src[i]) >= 0 {
		i++
	}
	return i
}

func (l *lexer) plainText(node ast.Node) string {
	var buf bytes.Buffer
	_, code := node.(*ast.CodeSpan)
	run := &textRun{}
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			if code {
				buf.Write(t.Value(l.src))
			} else {
				run.raw(t.Value(l.src))
			}
			if t.SoftLineBreak() || t.HardLineBreak() {
				if code {
					buf.WriteByte(' ')
				} else {
					run.resolved([]byte{' '})
				}
			}
		case *ast.String:
			if code {
				buf.Write(t.Value)
			} else {
				run.resolved(t.Value)
			}
		}
		return ast.WalkContinue, nil
	})
	if code {
		return buf.String()
	}
	return run.take()
}
