// Package downson extracts structured data from markdown documents that
// carry a data overlay of links, keys and headings on top of ordinary prose.
//
//	markdown source
//	      |
//	markdown.Lex      generic block and inline tokens
//	      |
//	contextify        heading scoped context tree
//	      |
//	semtok.Lex        semantic tokens
//	      |
//	parser.Parse      map[string]any + failures
package downson

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/downson/pkg/contextify"
	"github.com/walteh/downson/pkg/converter"
	"github.com/walteh/downson/pkg/failure"
	"github.com/walteh/downson/pkg/markdown"
	"github.com/walteh/downson/pkg/parser"
	"github.com/walteh/downson/pkg/semtok"
	"gitlab.com/tozd/go/errors"
)

// Result is the outcome of one extraction. Data is always non-nil.
type Result struct {
	Data                    map[string]any `json:"data" yaml:"data"`
	Failures                failure.List   `json:"-" yaml:"-"`
	HasInterpretationErrors bool           `json:"hasInterpretationErrors" yaml:"hasInterpretationErrors"`
}

type options struct {
	registry *converter.Registry
	markdown markdown.Options
	silent   bool
}

// Option configures one extraction
type Option func(*options)

// WithRegistry converts literals with reg instead of the process-wide registry
func WithRegistry(reg *converter.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithMarkdownOptions sets the markdown grammar flavor
func WithMarkdownOptions(opts markdown.Options) Option {
	return func(o *options) {
		o.markdown = opts
	}
}

// WithSilent turns hard errors into an empty result
func WithSilent(silent bool) Option {
	return func(o *options) {
		o.silent = silent
	}
}

func empty() *Result {
	return &Result{
		Data:     map[string]any{},
		Failures: failure.List{},
	}
}

// Extract runs the whole pipeline over src. Problems in the document are
// reported as failures on the result; only collaborator errors are returned.
func Extract(ctx context.Context, src string, opts ...Option) (*Result, error) {
	o := &options{
		registry: converter.Default(),
		markdown: markdown.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(o)
	}

	res, err := extract(ctx, []byte(src), o)
	if err != nil {
		if o.silent {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("extraction failed, returning empty result")
			return empty(), nil
		}
		return nil, err
	}

	return res, nil
}

// ExtractReader reads the whole document from r and extracts it
func ExtractReader(ctx context.Context, r io.Reader, opts ...Option) (*Result, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if r == nil {
		if o.silent {
			return empty(), nil
		}
		return nil, errors.New("document reader is nil")
	}

	src, err := io.ReadAll(r)
	if err != nil {
		if o.silent {
			return empty(), nil
		}
		return nil, errors.Errorf("reading document: %w", err)
	}

	return Extract(ctx, string(src), opts...)
}

func extract(ctx context.Context, src []byte, o *options) (*Result, error) {
	if o.registry == nil {
		return nil, errors.New("converter registry is nil")
	}

	// one run sees one set of types even if the registry changes meanwhile
	reg := o.registry.Snapshot()

	logger := zerolog.Ctx(ctx).With().Str("run_id", uuid.NewString()).Logger()
	ctx = logger.WithContext(ctx)

	tokens, err := markdown.Lex(ctx, src, o.markdown)
	if err != nil {
		return nil, errors.Errorf("markdown collaborator: %w", err)
	}

	failures := failure.List{}

	tree, fails := contextify.Contextify(ctx, tokens)
	failures = append(failures, fails...)

	lexed, fails := semtok.Lex(ctx, tree, reg)
	failures = append(failures, fails...)

	data, fails := parser.Parse(ctx, lexed, reg)
	failures = append(failures, fails...)

	logger.Debug().
		Int("markdown_tokens", len(tokens)).
		Int("ambiguous", failures.Count(failure.AmbiguousSyntax)).
		Int("interpretation_errors", failures.Count(failure.InterpretationError)).
		Msg("extracted document")

	return &Result{
		Data:                    data,
		Failures:                failures,
		HasInterpretationErrors: failures.HasInterpretationErrors(),
	}, nil
}

// RegisterType adds or replaces a literal type on the process-wide registry
func RegisterType(name string, fn converter.Func) error {
	if name == "" {
		return errors.New("type name is empty")
	}
	if fn == nil {
		return errors.Errorf("converter for type %q is nil", name)
	}
	converter.Default().Register(name, fn)
	return nil
}

// DeregisterType removes a literal type from the process-wide registry and
// reports whether it was registered
func DeregisterType(name string) (bool, error) {
	if name == "" {
		return false, errors.New("type name is empty")
	}
	return converter.Default().Deregister(name), nil
}
