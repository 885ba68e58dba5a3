package failure_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/downson/pkg/failure"
	"go.uber.org/multierr"
)

func TestList(t *testing.T) {
	tests := []struct {
		name              string
		list              failure.List
		wantAmbiguous     int
		wantInterpretaion int
		wantHasErrors     bool
	}{
		{
			name: "empty",
		},
		{
			name: "only ambiguous",
			list: failure.List{
				failure.Ambiguous("stray key", nil),
				failure.Ambiguous("unknown type", "x"),
			},
			wantAmbiguous: 2,
		},
		{
			name: "mixed",
			list: failure.List{
				failure.Ambiguous("stray key", nil),
				failure.Interpretation("unbalanced terminator", nil),
			},
			wantAmbiguous:     1,
			wantInterpretaion: 1,
			wantHasErrors:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantAmbiguous, tt.list.Count(failure.AmbiguousSyntax))
			assert.Equal(t, tt.wantInterpretaion, tt.list.Count(failure.InterpretationError))
			assert.Equal(t, tt.wantHasErrors, tt.list.HasInterpretationErrors())
		})
	}
}

func TestListErr(t *testing.T) {
	var empty failure.List
	assert.NoError(t, empty.Err())

	list := failure.List{
		failure.Ambiguous("stray key", nil),
		failure.Interpretation("dangling literal", "tok"),
	}

	err := list.Err()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), "ambiguous syntax: stray key")
	assert.Contains(t, err.Error(), "interpretation error: dangling literal (at tok)")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "ambiguous syntax", failure.AmbiguousSyntax.String())
	assert.Equal(t, "interpretation error", failure.InterpretationError.String())
	assert.Equal(t, "unknown", failure.Kind(0).String())
}
