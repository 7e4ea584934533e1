package sqlitestorage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OCAP2/osu-parsers/internal/database"
	"github.com/OCAP2/osu-parsers/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend_DumpOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	b := New(Config{DumpPath: path}, zerolog.Nop())
	require.NoError(t, b.Init())

	require.NoError(t, b.SaveBeatmap(&model.Beatmap{MD5: "abc", Title: "Dumped"}))
	require.NoError(t, b.SaveScore(&model.Score{Path: "s.osr", BeatmapMD5: "abc"}))
	require.NoError(t, b.Close())
	assert.Equal(t, path, b.DumpPath())

	disk, err := database.OpenSQLite(path, zerolog.Nop())
	require.NoError(t, err)
	var beatmaps []model.Beatmap
	require.NoError(t, disk.Find(&beatmaps).Error)
	require.Len(t, beatmaps, 1)
	assert.Equal(t, "Dumped", beatmaps[0].Title)

	var scores int64
	require.NoError(t, disk.Model(&model.Score{}).Count(&scores).Error)
	assert.Equal(t, int64(1), scores)
}

func TestBackend_PeriodicDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	b := New(Config{DumpPath: path, DumpInterval: 20 * time.Millisecond}, zerolog.Nop())
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.SaveBeatmap(&model.Beatmap{MD5: "abc"}))
	assert.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
}

func TestBackend_NoDumpPath(t *testing.T) {
	b := New(Config{DumpInterval: time.Millisecond}, zerolog.Nop())
	require.NoError(t, b.Init())

	require.NoError(t, b.SaveBeatmap(&model.Beatmap{MD5: "abc"}))
	got, err := b.Beatmaps()
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.NoError(t, b.Close())
}

func TestBackend_CloseBeforeInit(t *testing.T) {
	assert.NoError(t, New(Config{}, zerolog.Nop()).Close())
}
