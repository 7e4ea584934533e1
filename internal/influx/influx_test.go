package influx

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_UsesConfiguredBucket(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("influx.bucket", "decode-stats")

	m := NewManager(zerolog.Nop(), "backup.gz")
	assert.Equal(t, "decode-stats", m.Bucket())
	assert.False(t, m.IsValid)
}

func TestConnect_Disabled(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("influx.enabled", false)

	err := NewManager(zerolog.Nop(), "").Connect()
	assert.EqualError(t, err, "influxdb.Enabled is false")
}

func TestConnect_UnreachableFallsBackToFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("influx.enabled", true)
	viper.Set("influx.protocol", "http")
	viper.Set("influx.host", "127.0.0.1")
	viper.Set("influx.port", "1")
	viper.Set("influx.bucket", "decode-stats")

	backup := filepath.Join(t.TempDir(), "influx_backup.log.gz")
	m := NewManager(zerolog.Nop(), backup)
	require.NoError(t, m.Connect())
	assert.False(t, m.IsValid)
	require.NotNil(t, m.BackupWriter)

	point := DecodePoint(DecodeStats{Kind: "beatmap", Path: "a.osu", Objects: 3, At: time.Unix(1700000000, 0)})
	require.NoError(t, m.WritePoint(context.Background(), m.Bucket(), point))
	require.NoError(t, m.Close())

	f, err := os.Open(backup)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	body, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "decode,kind=beatmap,mode=0,status=ok "))
	assert.Contains(t, string(body), "objects=3i")
}

func TestWritePoint_NoWriter(t *testing.T) {
	m := NewManager(zerolog.Nop(), "")
	err := m.WritePoint(context.Background(), "decode-stats", DecodePoint(DecodeStats{}))
	assert.EqualError(t, err, "influxDB client not initialized and backup writer not available")
}

func TestWritePoint_UnknownBucket(t *testing.T) {
	m := NewManager(zerolog.Nop(), "")
	m.IsValid = true
	err := m.WritePoint(context.Background(), "nope", DecodePoint(DecodeStats{}))
	assert.EqualError(t, err, "influxDB bucket 'nope' not registered")
}

func TestDecodePoint(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		stats DecodeStats
		check func(t *testing.T, line string)
	}{
		{"beatmap", DecodeStats{Kind: "beatmap", Path: "x.osu", Mode: 3, Bytes: 100, Objects: 7, Duration: 1500 * time.Microsecond, At: at}, func(t *testing.T, line string) {
			assert.True(t, strings.HasPrefix(line, "decode,kind=beatmap,mode=3,status=ok "))
			assert.Contains(t, line, "bytes=100i")
			assert.Contains(t, line, "duration_ms=1.5")
			assert.Contains(t, line, `path="x.osu"`)
			assert.True(t, strings.HasSuffix(line, " 1714521600000000000\n"))
		}},
		{"failed score", DecodeStats{Kind: "score", Frames: 0, Err: errors.New("bad"), At: at}, func(t *testing.T, line string) {
			assert.Contains(t, line, "status=error")
			assert.Contains(t, line, "frames=0i")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewManager(zerolog.Nop(), "")
			m.BackupWriter = gzip.NewWriter(&buf)
			require.NoError(t, m.WritePoint(context.Background(), "decode-stats", DecodePoint(tt.stats)))
			require.NoError(t, m.BackupWriter.Close())

			gz, err := gzip.NewReader(&buf)
			require.NoError(t, err)
			body, err := io.ReadAll(gz)
			require.NoError(t, err)
			tt.check(t, string(body))
		})
	}
}
