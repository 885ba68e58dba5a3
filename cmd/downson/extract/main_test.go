package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/walteh/downson/pkg/finder"
	"github.com/walteh/downson/pkg/store"
)

const person = "# Person\n\n**.name**[](right) [Ada](string) **.age**[](right) [36](int)\n"

const broken = "**.k**[](right) []($)\n"

func setupHandler(t *testing.T, files map[string]string) (*Handler, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	return &Handler{
		fs:          fs,
		stdin:       strings.NewReader(""),
		stdout:      stdout,
		stderr:      stderr,
		format:      "json",
		diagnostics: "text",
		patterns:    finder.DefaultPatterns,
	}, stdout, stderr
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestExtractDirectory(t *testing.T) {
	me, stdout, stderr := setupHandler(t, map[string]string{
		"/docs/person.md": person,
		"/docs/notes.txt": "ignored",
	})

	require.NoError(t, me.Run(context.Background(), []string{"/docs"}))

	assert.Equal(t, map[string]any{
		"/docs/person.md": map[string]any{
			"Person": map[string]any{"name": "Ada", "age": float64(36)},
		},
	}, decode(t, stdout))
	assert.Empty(t, stderr.String())
}

func TestExtractFailuresGoToStderr(t *testing.T) {
	me, stdout, stderr := setupHandler(t, map[string]string{
		"/broken.md": broken,
	})

	require.NoError(t, me.Run(context.Background(), []string{"/broken.md"}))

	assert.Equal(t, map[string]any{"/broken.md": map[string]any{}}, decode(t, stdout))
	assert.Contains(t, stderr.String(), "/broken.md: error:")
}

func TestExtractStrict(t *testing.T) {
	me, stdout, _ := setupHandler(t, map[string]string{
		"/ok.md":     person,
		"/broken.md": broken,
	})
	me.strict = true

	err := me.Run(context.Background(), []string{"/ok.md", "/broken.md"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/broken.md")
	assert.NotContains(t, err.Error(), "/ok.md")

	// the data is still printed
	assert.Len(t, decode(t, stdout), 2)
}

func TestExtractConfigTypes(t *testing.T) {
	me, stdout, stderr := setupHandler(t, map[string]string{
		"/downson.hcl": "type \"level\" {\n  enum = [\"low\", \"high\"]\n}\n",
		"/doc.md":      "**.risk**[](right) [high](level)\n",
	})
	me.configFile = "/downson.hcl"

	require.NoError(t, me.Run(context.Background(), []string{"/doc.md"}))
	assert.Equal(t, map[string]any{"/doc.md": map[string]any{"risk": "high"}}, decode(t, stdout))
	assert.Empty(t, stderr.String())
}

func TestExtractStdinYAML(t *testing.T) {
	me, stdout, _ := setupHandler(t, nil)
	me.stdin = strings.NewReader("**.ok**[](right) [true](boolean)\n")
	me.format = "yaml"

	require.NoError(t, me.Run(context.Background(), []string{"-"}))

	var out map[string]any
	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, map[string]any{"-": map[string]any{"ok": true}}, out)
}

func TestExtractSavesToStore(t *testing.T) {
	me, _, _ := setupHandler(t, map[string]string{
		"/docs/person.md": person,
	})
	me.dbPath = filepath.Join(t.TempDir(), "results.db")

	require.NoError(t, me.Run(context.Background(), []string{"/docs"}))

	db, err := store.Open(me.dbPath)
	require.NoError(t, err)
	defer db.Close()

	rec, err := db.Get(context.Background(), "/docs/person.md")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.RunID)
	assert.Equal(t, 0, rec.Failures)
	assert.Equal(t, map[string]any{
		"Person": map[string]any{"name": "Ada", "age": int64(36)},
	}, rec.Data)
}

func TestExtractErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		me, _, _ := setupHandler(t, nil)
		require.Error(t, me.Run(context.Background(), []string{"/nope.md"}))
	})

	t.Run("unknown format", func(t *testing.T) {
		me, _, _ := setupHandler(t, map[string]string{"/doc.md": person})
		me.format = "xml"
		require.Error(t, me.Run(context.Background(), []string{"/doc.md"}))
	})

	t.Run("missing config", func(t *testing.T) {
		me, _, _ := setupHandler(t, map[string]string{"/doc.md": person})
		me.configFile = "/missing.hcl"
		require.Error(t, me.Run(context.Background(), []string{"/doc.md"}))
	})
}

func TestExtractNonFiniteFloats(t *testing.T) {
	me, stdout, _ := setupHandler(t, map[string]string{
		"/docs/a.md": "**.x**[](right) [inf](float) **.y**[](right) [nan](float)\n",
		"/docs/b.md": person,
	})
	me.dbPath = filepath.Join(t.TempDir(), "results.db")

	require.NoError(t, me.Run(context.Background(), []string{"/docs"}))

	out := decode(t, stdout)
	assert.Equal(t, map[string]any{"x": "+Inf", "y": "NaN"}, out["/docs/a.md"])
	assert.Contains(t, out, "/docs/b.md")

	db, err := store.Open(me.dbPath)
	require.NoError(t, err)
	defer db.Close()

	rec, err := db.Get(context.Background(), "/docs/a.md")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": "+Inf", "y": "NaN"}, rec.Data)
}
