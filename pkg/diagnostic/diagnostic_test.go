package diagnostic_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/downson/pkg/diagnostic"
	"github.com/walteh/downson/pkg/failure"
	"github.com/walteh/downson/pkg/markdown"
	"gopkg.in/yaml.v3"
)

func sampleFailures() failure.List {
	return failure.List{
		failure.Ambiguous("unknown type", &markdown.Link{Href: "flot", DisplayText: "1.5"}),
		failure.Interpretation("literal was never bound to a key", nil),
	}
}

func TestGenerate(t *testing.T) {
	diags := diagnostic.Generate(context.Background(), "doc.md", sampleFailures())

	assert.Equal(t, "doc.md", diags.File)
	require.Len(t, diags.Errors, 1)
	require.Len(t, diags.Warnings, 1)

	assert.Equal(t, diagnostic.Error, diags.Errors[0].Severity)
	assert.Equal(t, "interpretation error", diags.Errors[0].Kind)
	assert.Empty(t, diags.Errors[0].Excerpt)

	assert.Equal(t, diagnostic.Warning, diags.Warnings[0].Severity)
	assert.Equal(t, "ambiguous syntax", diags.Warnings[0].Kind)
	assert.NotEmpty(t, diags.Warnings[0].Excerpt)
	assert.False(t, diags.Empty())

	assert.True(t, diagnostic.Generate(context.Background(), "doc.md", nil).Empty())
}

func TestExcerptIsTruncated(t *testing.T) {
	long := strings.Repeat("é", 200)
	diags := diagnostic.Generate(context.Background(), "doc.md", failure.List{
		failure.Ambiguous("noise", &markdown.Text{Text: long}),
	})

	ex := diags.Warnings[0].Excerpt
	assert.True(t, strings.HasSuffix(ex, "…"))
	assert.Less(t, len([]rune(ex)), 200)
}

func TestFormatters(t *testing.T) {
	diags := diagnostic.Generate(context.Background(), "doc.md", sampleFailures())

	t.Run("text", func(t *testing.T) {
		f, err := diagnostic.NewFormatter("text", false)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, diagnostic.Write(&buf, f, diags))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "doc.md: error: literal was never bound to a key", lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "doc.md: warning: unknown type (at "))
	})

	t.Run("json", func(t *testing.T) {
		f, err := diagnostic.NewFormatter("json", false)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, diagnostic.Write(&buf, f, diags))

		var got diagnostic.Diagnostics
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, *diags, got)
	})

	t.Run("yaml", func(t *testing.T) {
		f, err := diagnostic.NewFormatter("yaml", false)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, diagnostic.Write(&buf, f, diags))

		var got diagnostic.Diagnostics
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, *diags, got)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := diagnostic.NewFormatter("xml", false)
		require.Error(t, err)
	})

	t.Run("nothing to write", func(t *testing.T) {
		f, err := diagnostic.NewFormatter("json", false)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, diagnostic.Write(&buf, f, &diagnostic.Diagnostics{File: "x"}))
		assert.Empty(t, buf.String())
	})
}
