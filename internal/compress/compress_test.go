package compress

import (
	"bytes"
	"context"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLZMA_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"frames", []byte("0|256|-500|0,-1|256|-500|0,16|100|200|1,-12345|0|0|0")},
		{"repetitive", []byte(strings.Repeat("16|100.5|200|1,", 5000))},
	}

	codec := NewLZMA()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed, err := codec.Compress(context.Background(), tt.data)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(compressed), 13, "classic header is 13 bytes")

			size := binary.LittleEndian.Uint64(compressed[5:13])
			assert.Equal(t, uint64(len(tt.data)), size, "declared size")

			decompressed, err := codec.Decompress(context.Background(), compressed)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(tt.data, decompressed))
		})
	}
}

func TestLZMA_Compresses(t *testing.T) {
	data := []byte(strings.Repeat("16|100|200|1,", 10000))
	compressed, err := NewLZMA().Compress(context.Background(), data)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(data)/10)
}

func TestLZMA_DecompressInvalid(t *testing.T) {
	_, err := NewLZMA().Decompress(context.Background(), []byte{1, 2, 3})
	assert.Error(t, err)
}

func TestLZMA_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLZMA().Compress(ctx, []byte("data"))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewLZMA().Decompress(ctx, []byte("data"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLZMA_ImplementsCodec(t *testing.T) {
	var _ Codec = NewLZMA()
}
