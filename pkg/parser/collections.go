package parser

import (
	"strings"

	"github.com/walteh/downson/pkg/semtok"
)

// parseList scans every ordered list item on its own. An item holding a
// single literal yields that literal; an item holding keys yields an object.
func (p *parser) parseList(l *semtok.List) []any {
	values := make([]any, 0, len(l.Items))

	for _, item := range l.Items {
		s := p.scan(item)
		contents := s.result()

		switch {
		case s.literal.set && len(contents) == 0:
			values = append(values, s.literal.value)
		case s.literal.set:
			p.interpretation(s.literal.tok, "list item mixes a literal with keyed values")
			values = append(values, contents)
		case len(contents) > 0:
			values = append(values, contents)
		default:
			p.ambiguous(l, "list item holds no value")
		}
	}

	return values
}

// column is one table column derived from its header cell
type column struct {
	key    string
	ignore bool
}

// parseTable builds one object per row. A malformed header or cell voids the
// whole table to an empty list.
func (p *parser) parseTable(t *semtok.Table) []any {
	columns := make([]column, 0, len(t.Header))
	for _, cell := range t.Header {
		col, ok := headerColumn(cell)
		if !ok {
			p.ambiguous(t, "table header cell must be text, optionally followed by an alias or ignore link")
			return []any{}
		}
		columns = append(columns, col)
	}

	rows := make([]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		obj := map[string]any{}

		for i, cell := range row {
			if i >= len(columns) || columns[i].ignore {
				continue
			}

			lit, ok := singleLiteral(cell)
			if !ok {
				p.ambiguous(t, "table cell in column %q must hold exactly one primitive literal", columns[i].key)
				return []any{}
			}

			if v, ok := p.convert(lit); ok {
				obj[columns[i].key] = v
			}
		}

		rows = append(rows, obj)
	}

	return rows
}

func headerColumn(cell []semtok.Token) (column, bool) {
	switch len(cell) {
	case 1:
		if text, ok := cell[0].(*semtok.Text); ok {
			return column{key: strings.TrimSpace(text.Text)}, true
		}
	case 2:
		switch tok := cell[1].(type) {
		case *semtok.KeyAlias:
			if tok.Alias != "" {
				return column{key: tok.Alias}, true
			}
		case *semtok.IgnoreAlias:
			return column{ignore: true}, true
		}
	}
	return column{}, false
}

func singleLiteral(cell []semtok.Token) (*semtok.PrimitiveLiteral, bool) {
	var found *semtok.PrimitiveLiteral
	for _, tok := range cell {
		if isBlank(tok) {
			continue
		}
		lit, ok := tok.(*semtok.PrimitiveLiteral)
		if !ok || found != nil {
			return nil, false
		}
		found = lit
	}
	return found, found != nil
}
