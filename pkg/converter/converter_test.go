package converter_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/downson/pkg/converter"
)

func TestBuiltins(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		literal  string
		override string
		want     any
		wantErr  bool
	}{
		{name: "boolean true", typeName: "boolean", literal: "true", want: true},
		{name: "boolean false", typeName: "boolean", literal: "false", want: false},
		{name: "boolean capitalized", typeName: "boolean", literal: "True", wantErr: true},
		{name: "int plain", typeName: "int", literal: "1234", want: int64(1234)},
		{name: "int comma grouping", typeName: "int", literal: "1,234", want: int64(1234)},
		{name: "int underscore grouping", typeName: "int", literal: "1_000_000", want: int64(1000000)},
		{name: "int space grouping", typeName: "int", literal: "1 000", want: int64(1000)},
		{name: "int negative", typeName: "int", literal: "-42", want: int64(-42)},
		{name: "int zero", typeName: "int", literal: "0", want: int64(0)},
		{name: "int leading zero", typeName: "int", literal: "007", wantErr: true},
		{name: "int double separator", typeName: "int", literal: "1,,234", wantErr: true},
		{name: "int garbage", typeName: "int", literal: "12abc", wantErr: true},
		{name: "int overflow", typeName: "int", literal: "99999999999999999999", wantErr: true},
		{name: "float plain", typeName: "float", literal: "3.5", want: 3.5},
		{name: "float comma decimal", typeName: "float", literal: "3,5", want: 3.5},
		{name: "float grouped with dot decimal", typeName: "float", literal: "1,234.5", want: 1234.5},
		{name: "float grouped with comma decimal", typeName: "float", literal: "1.234,5", want: 1234.5},
		{name: "float many groups one decimal", typeName: "float", literal: "1,234,567.25", want: 1234567.25},
		{name: "float only grouping", typeName: "float", literal: "1,234,567", want: float64(1234567)},
		{name: "float exponent", typeName: "float", literal: "1.5e3", want: 1500.0},
		{name: "float negative exponent", typeName: "float", literal: "-2E-2", want: -0.02},
		{name: "float no separators", typeName: "float", literal: "42", want: 42.0},
		{name: "float ambiguous", typeName: "float", literal: "1.234.5,6,7", wantErr: true},
		{name: "float garbage", typeName: "float", literal: "one", wantErr: true},
		{name: "string", typeName: "string", literal: "Ada Lovelace", want: "Ada Lovelace"},
		{name: "string override", typeName: "string", literal: "shown", override: "hidden", want: "hidden"},
		{name: "int override", typeName: "int", literal: "forty two", override: "42", want: int64(42)},
		{name: "empty list", typeName: "list", literal: "empty", want: []any{}},
		{name: "non empty list", typeName: "list", literal: "full", wantErr: true},
		{name: "empty object", typeName: "object", literal: "empty", want: map[string]any{}},
		{name: "non empty object", typeName: "object", literal: "{}", wantErr: true},
		{name: "unknown type", typeName: "date", literal: "2024-01-01", wantErr: true},
	}

	reg := converter.NewDefault()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.TryConvert(tt.typeName, tt.literal, tt.override)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFloatSpecials(t *testing.T) {
	reg := converter.NewDefault()

	got, err := reg.TryConvert("float", "inf", "")
	require.NoError(t, err)
	assert.True(t, math.IsInf(got.(float64), 1))

	got, err = reg.TryConvert("float", "+inf", "")
	require.NoError(t, err)
	assert.True(t, math.IsInf(got.(float64), 1))

	got, err = reg.TryConvert("float", "-inf", "")
	require.NoError(t, err)
	assert.True(t, math.IsInf(got.(float64), -1))

	got, err = reg.TryConvert("float", "nan", "")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got.(float64)))
}

func TestFloatAmbiguityIgnoresMagnitude(t *testing.T) {
	for _, literal := range []string{"1.2.3,4,5", "9.999.999,9,9", "0.0.0,0,0", "1,2,3.4.5"} {
		_, err := converter.Float(literal)
		assert.Error(t, err, literal)
	}
}

func TestIntIdempotent(t *testing.T) {
	for _, literal := range []string{"1,234", "1234", "1.234", "1_234", "1 234"} {
		got, err := converter.Int(literal)
		require.NoError(t, err, literal)
		assert.Equal(t, int64(1234), got, literal)
	}
}

func TestRegisterDeregister(t *testing.T) {
	reg := converter.New()
	assert.False(t, reg.IsKnownType("upper"))

	reg.Register("upper", converter.Simple(func(text string) (any, error) {
		return text + "!", nil
	}))
	assert.True(t, reg.IsKnownType("upper"))

	got, err := reg.TryConvert("upper", "hey", "")
	require.NoError(t, err)
	assert.Equal(t, "hey!", got)

	assert.True(t, reg.Deregister("upper"))
	assert.False(t, reg.Deregister("upper"))
	assert.False(t, reg.IsKnownType("upper"))
}

func TestSnapshotIsIsolated(t *testing.T) {
	reg := converter.NewDefault()
	snap := reg.Snapshot()

	reg.Register("extra", converter.Simple(converter.String))
	snap.Deregister("int")

	assert.False(t, snap.IsKnownType("extra"))
	assert.True(t, reg.IsKnownType("int"))
	assert.Equal(t, []string{"boolean", "extra", "float", "int", "list", "object", "string"}, reg.Types())
}

func TestSuggest(t *testing.T) {
	reg := converter.NewDefault()

	assert.Equal(t, "float", reg.Suggest("flot")[0])
	assert.Equal(t, "int", reg.Suggest("itn")[0])
	assert.Contains(t, reg.Suggest("integer"), "int")
	assert.Empty(t, reg.Suggest("zzzzzzzz"))
	assert.Empty(t, reg.Suggest(""))
}
