// Package config loads the extraction settings file: markdown flavor,
// silent mode and user-declared literal types. Files ending in .yaml or .yml
// are read as YAML, everything else as HCL.
package config

import (
	"bytes"
	"regexp"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/walteh/downson/pkg/converter"
	"github.com/walteh/downson/pkg/markdown"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 📝 Config file structure
type Config struct {
	Silent   bool              `json:"silent,omitempty" yaml:"silent,omitempty" hcl:"silent,optional"`
	Markdown *markdown.Options `json:"markdown,omitempty" yaml:"markdown,omitempty" hcl:"markdown,block"`
	Types    []*TypeBlock      `json:"types,omitempty" yaml:"types,omitempty" hcl:"type,block"`
}

// 🎯 A literal type declared in the config file.
//
// The effective literal text must match Pattern and be one of Enum when
// those are set. The text is then converted through Base, or kept as a
// string when Base is empty.
type TypeBlock struct {
	Name    string   `json:"name" yaml:"name" hcl:"name,label"`
	Pattern string   `json:"pattern,omitempty" yaml:"pattern,omitempty" hcl:"pattern,optional"`
	Enum    []string `json:"enum,omitempty" yaml:"enum,omitempty" hcl:"enum,optional"`
	Base    string   `json:"base,omitempty" yaml:"base,omitempty" hcl:"base,optional"`
}

// Load reads the config file at path from fs
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}
	return Parse(data, path)
}

// LoadOrDefault loads the config file at path, or returns an empty config
// when path is empty
func LoadOrDefault(fs afero.Fs, path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	return Load(fs, path)
}

// Parse decodes data, using filename to pick the format
func Parse(data []byte, filename string) (*Config, error) {
	if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		var cfg Config
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, errors.Errorf("parsing YAML: %w", err)
		}
		return &cfg, nil
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"builtin": builtinNames(),
		},
	}

	var cfg Config
	diags = gohcl.DecodeBody(hclFile.Body, ctx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &cfg, nil
}

// builtinNames exposes the built-in type names to HCL, so a file can write
// base = builtin.int
func builtinNames() cty.Value {
	names := map[string]cty.Value{}
	for name := range converter.Builtins() {
		names[name] = cty.StringVal(name)
	}
	return cty.ObjectVal(names)
}

// MarkdownOptions returns the configured markdown flavor, or the defaults
// when the file has no markdown block
func (cfg *Config) MarkdownOptions() markdown.Options {
	if cfg == nil || cfg.Markdown == nil {
		return markdown.DefaultOptions()
	}
	return *cfg.Markdown
}

// Apply registers every declared type on reg. Base types are resolved
// against reg as it is before Apply changes it.
func (cfg *Config) Apply(reg *converter.Registry) error {
	if cfg == nil {
		return nil
	}

	bases := reg.Snapshot()
	seen := map[string]bool{}

	funcs := make(map[string]converter.Func, len(cfg.Types))
	for _, tb := range cfg.Types {
		if tb.Name == "" {
			return errors.New("type block has an empty name")
		}
		if seen[tb.Name] {
			return errors.Errorf("type %q declared twice", tb.Name)
		}
		seen[tb.Name] = true

		fn, err := tb.converter(bases)
		if err != nil {
			return errors.Errorf("type %q: %w", tb.Name, err)
		}
		funcs[tb.Name] = fn
	}

	for name, fn := range funcs {
		reg.Register(name, fn)
	}

	return nil
}

// Registry returns a fresh registry holding the built-in types and every
// type declared in cfg
func (cfg *Config) Registry() (*converter.Registry, error) {
	reg := converter.NewDefault()
	if err := cfg.Apply(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func (tb *TypeBlock) converter(bases *converter.Registry) (converter.Func, error) {
	var re *regexp.Regexp
	if tb.Pattern != "" {
		var err error
		re, err = regexp.Compile(tb.Pattern)
		if err != nil {
			return nil, errors.Errorf("compiling pattern: %w", err)
		}
	}

	if tb.Base != "" && !bases.IsKnownType(tb.Base) {
		return nil, errors.Errorf("unknown base type %q", tb.Base)
	}

	enum := slices.Clone(tb.Enum)
	base := tb.Base

	return func(literal, override string) (any, error) {
		text := converter.Effective(literal, override)

		if re != nil && !re.MatchString(text) {
			return nil, errors.Errorf("%q does not match %s", text, re.String())
		}

		if len(enum) > 0 && !slices.Contains(enum, text) {
			return nil, errors.Errorf("%q is not one of %s", text, strings.Join(enum, ", "))
		}

		if base == "" {
			return text, nil
		}

		return bases.TryConvert(base, literal, override)
	}, nil
}
