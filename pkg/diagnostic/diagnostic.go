package diagnostic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/apparentlymart/go-textseg/v13/textseg"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/downson/pkg/failure"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// excerptLength is the number of grapheme clusters kept from a token
const excerptLength = 48

// Diagnostics represents the failures of one document grouped by severity
type Diagnostics struct {
	File     string       `json:"file" yaml:"file"`
	Errors   []Diagnostic `json:"errors" yaml:"errors"`
	Warnings []Diagnostic `json:"warnings" yaml:"warnings"`
}

// Diagnostic represents a single diagnostic message
type Diagnostic struct {
	Message  string             `json:"message" yaml:"message"`
	Kind     string             `json:"kind" yaml:"kind"`
	Excerpt  string             `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	Severity DiagnosticSeverity `json:"severity" yaml:"severity"`
}

// DiagnosticSeverity represents the severity level of a diagnostic
type DiagnosticSeverity string

const (
	Error   DiagnosticSeverity = "error"
	Warning DiagnosticSeverity = "warning"
)

// Generate maps failures onto diagnostics. Interpretation errors are errors,
// ambiguous syntax is a warning.
func Generate(ctx context.Context, file string, failures failure.List) *Diagnostics {
	diagnostics := &Diagnostics{
		File:     file,
		Errors:   make([]Diagnostic, 0),
		Warnings: make([]Diagnostic, 0),
	}

	for _, f := range failures {
		d := Diagnostic{
			Message: f.Reason,
			Kind:    f.Kind.String(),
			Excerpt: excerpt(f.Token),
		}

		if f.Kind == failure.InterpretationError {
			d.Severity = Error
			diagnostics.Errors = append(diagnostics.Errors, d)
		} else {
			d.Severity = Warning
			diagnostics.Warnings = append(diagnostics.Warnings, d)
		}
	}

	zerolog.Ctx(ctx).Trace().
		Str("file", file).
		Int("errors", len(diagnostics.Errors)).
		Int("warnings", len(diagnostics.Warnings)).
		Msg("generated diagnostics")

	return diagnostics
}

// Empty reports whether there is nothing to show
func (d *Diagnostics) Empty() bool {
	return d == nil || len(d.Errors)+len(d.Warnings) == 0
}

func excerpt(token any) string {
	if token == nil {
		return ""
	}

	var s string
	if str, ok := token.(fmt.Stringer); ok {
		s = str.String()
	} else {
		s = fmt.Sprint(token)
	}
	s = strings.Join(strings.Fields(s), " ")

	clusters, err := textseg.AllTokens([]byte(s), textseg.ScanGraphemeClusters)
	if err != nil || len(clusters) <= excerptLength {
		return s
	}

	var b strings.Builder
	for _, c := range clusters[:excerptLength-1] {
		b.Write(c)
	}
	b.WriteString("…")
	return b.String()
}

// Formatter formats diagnostics into different output formats
type Formatter interface {
	// Format formats diagnostics into a specific output format
	Format(diagnostics *Diagnostics) ([]byte, error)
}

// TextFormatter renders one line per diagnostic
type TextFormatter struct {
	Colorize bool
}

// Format implements Formatter
func (f *TextFormatter) Format(diagnostics *Diagnostics) ([]byte, error) {
	if diagnostics == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}

	file := color.New(color.Bold)
	errc := color.New(color.FgHiRed, color.Bold)
	warnc := color.New(color.FgHiYellow, color.Bold)
	faint := color.New(color.Faint)
	if !f.Colorize {
		for _, c := range []*color.Color{file, errc, warnc, faint} {
			c.DisableColor()
		}
	}

	var b strings.Builder
	write := func(sev *color.Color, d Diagnostic) {
		fmt.Fprintf(&b, "%s: %s: %s", file.Sprint(diagnostics.File), sev.Sprint(d.Severity), d.Message)
		if d.Excerpt != "" {
			fmt.Fprintf(&b, " %s", faint.Sprintf("(at %s)", d.Excerpt))
		}
		b.WriteByte('\n')
	}

	for _, d := range diagnostics.Errors {
		write(errc, d)
	}
	for _, d := range diagnostics.Warnings {
		write(warnc, d)
	}

	return []byte(b.String()), nil
}

// JSONFormatter renders the diagnostics as one JSON object
type JSONFormatter struct{}

// Format implements Formatter
func (f *JSONFormatter) Format(diagnostics *Diagnostics) ([]byte, error) {
	if diagnostics == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}
	out, err := json.Marshal(diagnostics)
	if err != nil {
		return nil, errors.Errorf("marshalling diagnostics: %w", err)
	}
	return append(out, '\n'), nil
}

// YAMLFormatter renders the diagnostics as one YAML document
type YAMLFormatter struct{}

// Format implements Formatter
func (f *YAMLFormatter) Format(diagnostics *Diagnostics) ([]byte, error) {
	if diagnostics == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}
	out, err := yaml.Marshal(diagnostics)
	if err != nil {
		return nil, errors.Errorf("marshalling diagnostics: %w", err)
	}
	return out, nil
}

// NewFormatter returns the formatter for format: text, json or yaml
func NewFormatter(format string, colorize bool) (Formatter, error) {
	switch format {
	case "", "text":
		return &TextFormatter{Colorize: colorize}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "yaml", "yml":
		return &YAMLFormatter{}, nil
	default:
		return nil, errors.Errorf("unknown diagnostics format %q", format)
	}
}

// Write formats diagnostics and writes them to w. Nothing is written when
// there are no diagnostics.
func Write(w io.Writer, f Formatter, diagnostics *Diagnostics) error {
	if diagnostics.Empty() {
		return nil
	}

	out, err := f.Format(diagnostics)
	if err != nil {
		return err
	}

	if _, err := w.Write(out); err != nil {
		return errors.Errorf("writing diagnostics: %w", err)
	}

	return nil
}
