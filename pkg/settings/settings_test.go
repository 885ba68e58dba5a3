package settings_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/downson/pkg/settings"
)

func newCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("format", "json", "")
	cmd.Flags().Bool("strict", false, "")
	cmd.Flags().String("log-level", "info", "")
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestBindPrecedence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".downson.yaml"), []byte("format: yaml\nstrict: true\n"), 0o644))

	t.Run("file over defaults", func(t *testing.T) {
		v, err := settings.Bind(newCommand(t), dir)
		require.NoError(t, err)
		assert.Equal(t, "yaml", v.GetString("format"))
		assert.True(t, v.GetBool("strict"))
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("DOWNSON_FORMAT", "text")
		t.Setenv("DOWNSON_LOG_LEVEL", "debug")

		v, err := settings.Bind(newCommand(t), dir)
		require.NoError(t, err)
		assert.Equal(t, "text", v.GetString("format"))
		assert.Equal(t, "debug", v.GetString("log-level"))
	})

	t.Run("flag over env", func(t *testing.T) {
		t.Setenv("DOWNSON_FORMAT", "text")

		v, err := settings.Bind(newCommand(t, "--format", "json"), dir)
		require.NoError(t, err)
		assert.Equal(t, "json", v.GetString("format"))
	})
}

func TestBindWithoutFile(t *testing.T) {
	v, err := settings.Bind(newCommand(t), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "json", v.GetString("format"))
	assert.False(t, v.GetBool("strict"))
}
