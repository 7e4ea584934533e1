package parsing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/osu-parsers/pkg/core"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr error
	}{
		{name: "plain", input: "42", want: 42},
		{name: "negative", input: "-7", want: -7},
		{name: "leading spaces", input: "  12", want: 12},
		{name: "float token truncates", input: "12.9", want: 12},
		{name: "trailing garbage", input: "300abc", want: 300},
		{name: "upper bound", input: "2147483647", want: 2147483647},
		{name: "too high", input: "2147483648", wantErr: ErrValueTooHigh},
		{name: "too low", input: "-2147483648", wantErr: ErrValueTooLow},
		{name: "empty", input: "", wantErr: ErrNotANumber},
		{name: "letters", input: "abc", wantErr: ErrNotANumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInt(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIntLimit_Coordinates(t *testing.T) {
	v, err := ParseIntLimit("131072", MaxCoordinateValue)
	require.NoError(t, err)
	assert.Equal(t, 131072, v)

	_, err = ParseIntLimit("131073", MaxCoordinateValue)
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr error
	}{
		{name: "integer", input: "500", want: 500},
		{name: "decimal", input: "1.4", want: 1.4},
		{name: "leading dot", input: ".5", want: 0.5},
		{name: "exponent", input: "1e3", want: 1000},
		{name: "negative", input: "-100", want: -100},
		{name: "trailing garbage", input: "2.5ms", want: 2.5},
		{name: "infinity exceeds limit", input: "Infinity", wantErr: ErrValueTooHigh},
		{name: "nan", input: "NaN", wantErr: ErrNotANumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFloat(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseFloatLimit_AllowNaN(t *testing.T) {
	v, err := ParseFloatLimit("abc", MaxParseValue, true)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))
}

func TestParseByte(t *testing.T) {
	v, err := ParseByte("255")
	require.NoError(t, err)
	assert.Equal(t, uint8(255), v)

	_, err = ParseByte("256")
	assert.ErrorIs(t, err, ErrValueOutOfRange)

	_, err = ParseByte("-1")
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestParseEnum(t *testing.T) {
	v, err := ParseEnum(core.SampleSets, "Soft")
	require.NoError(t, err)
	assert.Equal(t, core.SampleSetSoft, v)

	v, err = ParseEnum(core.SampleSets, "3")
	require.NoError(t, err)
	assert.Equal(t, core.SampleSetDrum, v)

	_, err = ParseEnum(core.SampleSets, "Loud")
	assert.ErrorIs(t, err, ErrUnknownEnumValue)

	_, err = ParseEnum(core.SampleSets, "9")
	assert.ErrorIs(t, err, ErrUnknownEnumValue)
}

func TestParseBool(t *testing.T) {
	assert.True(t, ParseBool("1"))
	assert.False(t, ParseBool("0"))
	assert.False(t, ParseBool("true"))
}
