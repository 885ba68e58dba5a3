// Package failure holds the two non-fatal failure kinds every pipeline stage
// reports into. Failures are collected, never thrown.
package failure

import (
	"fmt"

	"go.uber.org/multierr"
)

// Kind classifies a failure
type Kind int

const (
	// AmbiguousSyntax means the surface shape of the input did not match an
	// expected construct. The construct is treated as absent.
	AmbiguousSyntax Kind = iota + 1

	// InterpretationError means the shape was recognized but contradicts the
	// state built from earlier tokens.
	InterpretationError
)

func (k Kind) String() string {
	switch k {
	case AmbiguousSyntax:
		return "ambiguous syntax"
	case InterpretationError:
		return "interpretation error"
	default:
		return "unknown"
	}
}

// Failure pairs a human-readable reason with the offending token. Token is
// either a markdown.Token or a semtok.Token, depending on the stage.
type Failure struct {
	Kind   Kind
	Reason string
	Token  any
}

// Ambiguous creates an AmbiguousSyntax failure
func Ambiguous(reason string, token any) *Failure {
	return &Failure{Kind: AmbiguousSyntax, Reason: reason, Token: token}
}

// Interpretation creates an InterpretationError failure
func Interpretation(reason string, token any) *Failure {
	return &Failure{Kind: InterpretationError, Reason: reason, Token: token}
}

func (f *Failure) Error() string {
	if f.Token == nil {
		return fmt.Sprintf("%s: %s", f.Kind, f.Reason)
	}
	return fmt.Sprintf("%s: %s (at %v)", f.Kind, f.Reason, f.Token)
}

// List is an append-only collection of failures from one pipeline run
type List []*Failure

// HasInterpretationErrors reports whether any failure is an InterpretationError
func (l List) HasInterpretationErrors() bool {
	return l.Count(InterpretationError) > 0
}

// Count returns the number of failures of the given kind
func (l List) Count(kind Kind) int {
	n := 0
	for _, f := range l {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// Err combines every failure into a single error, or nil for an empty list.
func (l List) Err() error {
	var err error
	for _, f := range l {
		err = multierr.Append(err, f)
	}
	return err
}
