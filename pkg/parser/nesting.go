package parser

import (
	"strings"

	"github.com/walteh/downson/pkg/semtok"
)

/*
Nesting Protocol:
-----------------

	token                         state change
	-----                         ------------
	literal / list / table        bind to pending key, else hold as pending literal
	**.k**[](right)               hold k as pending key
	**.k**[](left)                bind pending literal under k
	**.k**[](right:object)        push frame keyed k
	[]($) on keyed frame          pop it into its parent under its key
	[]($) otherwise               push anonymous frame
	**.k**[](left:object)         pop top frame into its parent under k

The bottom frame is the top-level object and is never popped.
*/

// frame is one object under construction
type frame struct {
	topLevel bool
	keyed    bool
	key      string
	contents map[string]any
	opener   semtok.Token
}

// pending is a value or key waiting for its counterpart
type pending[T any] struct {
	set   bool
	value T
	tok   semtok.Token
}

func (p *pending[T]) hold(value T, tok semtok.Token) {
	p.set, p.value, p.tok = true, value, tok
}

func (p *pending[T]) clear() {
	var zero T
	p.set, p.value, p.tok = false, zero, nil
}

type scanner struct {
	p       *parser
	stack   []*frame
	literal pending[any]
	key     pending[string]
}

// scan runs the nesting protocol over elements. Unterminated frames are
// folded into their parents before it returns; a pending literal is left
// for the caller to judge.
func (p *parser) scan(elements []semtok.Token) *scanner {
	s := &scanner{
		p: p,
		stack: []*frame{{
			topLevel: true,
			contents: map[string]any{},
		}},
	}

	for i := 0; i < len(elements); {
		i = s.step(elements, i)
	}

	s.finish()

	return s
}

func (s *scanner) top() *frame {
	return s.stack[len(s.stack)-1]
}

func (s *scanner) result() map[string]any {
	return s.stack[0].contents
}

// step handles elements[i] and returns the index of the next element
func (s *scanner) step(elements []semtok.Token, i int) int {
	switch tok := elements[i].(type) {
	case *semtok.Noise, *semtok.Text, *semtok.Space:
	case *semtok.PrimitiveLiteral:
		if v, ok := s.p.convert(tok); ok {
			s.bindValue(v, tok)
		}
	case *semtok.List:
		s.bindValue(s.p.parseList(tok), tok)
	case *semtok.Table:
		s.bindValue(s.p.parseTable(tok), tok)
	case *semtok.ObjectKey:
		return s.objectKey(elements, i, tok)
	case *semtok.ObjectTerminator:
		s.terminate(tok)
	default:
		// metadata and aliases with no key in front of them are dropped
	}
	return i + 1
}

func (s *scanner) bindValue(v any, tok semtok.Token) {
	switch {
	case s.literal.set:
		s.p.interpretation(tok, "literal follows another literal that was never bound to a key")
		s.literal.hold(v, tok)
	case s.key.set:
		s.top().contents[s.key.value] = v
		s.key.clear()
	default:
		s.literal.hold(v, tok)
	}
}

// objectKey pairs the key at elements[i] with the metadata link after it,
// allowing one blank text in between.
func (s *scanner) objectKey(elements []semtok.Token, i int, key *semtok.ObjectKey) int {
	j := i + 1
	if j < len(elements) && isBlank(elements[j]) {
		j++
	}

	if j >= len(elements) {
		s.p.ambiguous(key, "object key %q is not followed by key metadata", key.Name)
		return i + 1
	}

	meta, ok := elements[j].(*semtok.KeyMetadata)
	if !ok {
		s.p.ambiguous(key, "object key %q is not followed by key metadata", key.Name)
		return i + 1
	}

	name := meta.Alias
	if name == "" {
		name = key.Name
	}

	s.bindKey(name, meta, key)

	return j + 1
}

func (s *scanner) bindKey(name string, meta *semtok.KeyMetadata, tok semtok.Token) {
	switch {
	case s.key.set:
		s.p.interpretation(tok, "key %q follows key %q that never received a value", name, s.key.value)
		s.key.clear()
		s.literal.clear()
	case s.literal.set:
		switch {
		case meta.Side == semtok.Left && !meta.Object:
			s.top().contents[name] = s.literal.value
		case meta.Side == semtok.Right:
			s.p.interpretation(tok, "key %q starts a new binding before the previous literal was matched", name)
		default:
			s.p.interpretation(tok, "object key %q cannot bind a literal", name)
		}
		s.literal.clear()
	case meta.Side == semtok.Left && meta.Object:
		s.closeAnonymous(name, tok)
	case meta.Side == semtok.Left:
		s.p.interpretation(tok, "key %q has no literal on its left to bind", name)
	case meta.Object:
		s.stack = append(s.stack, &frame{
			keyed:    true,
			key:      name,
			contents: map[string]any{},
			opener:   tok,
		})
	default:
		s.key.hold(name, tok)
	}
}

// closeAnonymous pops the top frame and attaches it under name. A frame
// opened from the right loses its own key.
func (s *scanner) closeAnonymous(name string, tok semtok.Token) {
	if len(s.stack) == 1 {
		s.p.interpretation(tok, "object key %q closes an object that was never opened", name)
		return
	}

	top := s.top()
	s.stack = s.stack[:len(s.stack)-1]
	s.top().contents[name] = top.contents
}

func (s *scanner) terminate(tok *semtok.ObjectTerminator) {
	if s.key.set || s.literal.set {
		s.p.interpretation(tok, "object terminated before pending keys and literals were matched")
		s.key.clear()
		s.literal.clear()
		return
	}

	top := s.top()
	if top.topLevel || !top.keyed {
		s.stack = append(s.stack, &frame{
			contents: map[string]any{},
			opener:   tok,
		})
		return
	}

	s.stack = s.stack[:len(s.stack)-1]
	s.top().contents[top.key] = top.contents
}

// finish reports a dangling key and folds unterminated frames upward. Frames
// without a key have nowhere to go and are dropped.
func (s *scanner) finish() {
	if s.key.set {
		s.p.interpretation(s.key.tok, "key %q never received a value", s.key.value)
		s.key.clear()
	}

	if len(s.stack) == 1 {
		return
	}

	s.p.interpretation(s.stack[1].opener, "%d nested objects were never terminated", len(s.stack)-1)

	for i := len(s.stack) - 1; i > 0; i-- {
		if f := s.stack[i]; f.keyed {
			s.stack[i-1].contents[f.key] = f.contents
		}
	}

	s.stack = s.stack[:1]
}

func isBlank(tok semtok.Token) bool {
	switch t := tok.(type) {
	case *semtok.Text:
		return strings.TrimSpace(t.Text) == ""
	case *semtok.Space:
		return true
	default:
		return false
	}
}
