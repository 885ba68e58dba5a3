package diff_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/downson/pkg/diff"
)

type token struct {
	Name   string
	hidden int
}

func TestData(t *testing.T) {
	same := map[string]any{"a": int64(1), "b": []any{"x"}}
	assert.Empty(t, diff.Data(same, map[string]any{"a": int64(1), "b": []any{"x"}}))

	out := diff.Data(map[string]any{"a": int64(1)}, map[string]any{"a": int64(2)})
	assert.Contains(t, out, "ACTUAL")
	assert.True(t, strings.Contains(out, "➕") || strings.Contains(out, "➖"))
}

func TestTokens(t *testing.T) {
	assert.Empty(t, diff.Tokens(token{Name: "a", hidden: 1}, token{Name: "a", hidden: 2}))
	assert.NotEmpty(t, diff.Tokens(token{Name: "a"}, token{Name: "b"}))
}
