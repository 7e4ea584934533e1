package gormstorage

import (
	"testing"
	"time"

	"github.com/OCAP2/osu-parsers/internal/database"
	"github.com/OCAP2/osu-parsers/internal/logging"
	"github.com/OCAP2/osu-parsers/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite("", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, zerolog.Nop()))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b := New(Dependencies{
		DB:            newTestDB(t),
		Logger:        logging.NewStoreLogger(zerolog.Nop()),
		FlushInterval: time.Hour,
	})
	require.NoError(t, b.Init())
	return b
}

func TestInit_RequiresDB(t *testing.T) {
	b := New(Dependencies{Logger: logging.NewStoreLogger(zerolog.Nop())})
	assert.Error(t, b.Init())
}

func TestNew_DefaultInterval(t *testing.T) {
	b := New(Dependencies{})
	assert.Equal(t, DefaultFlushInterval, b.deps.FlushInterval)
}

func TestSaveBeatmap(t *testing.T) {
	tests := []struct {
		name  string
		save  []model.Beatmap
		check func(t *testing.T, got []model.Beatmap)
	}{
		{"single", []model.Beatmap{{MD5: "a", Title: "First"}}, func(t *testing.T, got []model.Beatmap) {
			require.Len(t, got, 1)
			assert.Equal(t, "First", got[0].Title)
			assert.NotZero(t, got[0].ID)
		}},
		{"same hash in one batch keeps the last", []model.Beatmap{
			{MD5: "a", Title: "Old"},
			{MD5: "b", Title: "Other"},
			{MD5: "a", Title: "New"},
		}, func(t *testing.T, got []model.Beatmap) {
			require.Len(t, got, 2)
			assert.Equal(t, "Other", got[0].Title)
			assert.Equal(t, "New", got[1].Title)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBackend(t)
			for i := range tt.save {
				require.NoError(t, b.SaveBeatmap(&tt.save[i]))
			}
			got, err := b.Beatmaps()
			require.NoError(t, err)
			tt.check(t, got)
			require.NoError(t, b.Close())
		})
	}
}

func TestSaveBeatmap_ReplacesAcrossFlushes(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	require.NoError(t, b.SaveBeatmap(&model.Beatmap{MD5: "a", Title: "Old", Tags: []byte(`["x"]`)}))
	require.NoError(t, b.Flush())
	require.NoError(t, b.SaveBeatmap(&model.Beatmap{MD5: "a", Title: "New", Tags: []byte(`["y"]`)}))

	got, err := b.Beatmaps()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "New", got[0].Title)
	assert.JSONEq(t, `["y"]`, string(got[0].Tags))
}

func TestSaveScore(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	require.NoError(t, b.SaveScore(&model.Score{Path: "r/1.osr", Username: "a", TotalScore: 10}))
	require.NoError(t, b.SaveScore(&model.Score{Path: "r/2.osr", Username: "b"}))
	require.NoError(t, b.Flush())
	require.NoError(t, b.SaveScore(&model.Score{Path: "r/1.osr", Username: "a", TotalScore: 20}))

	got, err := b.Scores()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r/2.osr", got[0].Path)
	assert.Equal(t, 20, got[1].TotalScore)
}

func TestRecordIndexRun(t *testing.T) {
	b := newTestBackend(t)
	defer b.Close()

	run := &model.IndexRun{Root: "/songs", StartedAt: time.Now(), Beatmaps: 3}
	require.NoError(t, b.RecordIndexRun(run))
	assert.NotZero(t, run.ID)

	var stored model.IndexRun
	require.NoError(t, b.deps.DB.First(&stored, run.ID).Error)
	assert.Equal(t, "/songs", stored.Root)
	assert.Equal(t, 3, stored.Beatmaps)
}

func TestClose_FlushesQueued(t *testing.T) {
	db := newTestDB(t)
	b := New(Dependencies{DB: db, Logger: logging.NewStoreLogger(zerolog.Nop()), FlushInterval: time.Hour})
	require.NoError(t, b.Init())

	require.NoError(t, b.SaveBeatmap(&model.Beatmap{MD5: "queued"}))
	require.NoError(t, b.Close())

	var count int64
	require.NoError(t, db.Model(&model.Beatmap{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWriter_DrainsOnInterval(t *testing.T) {
	db := newTestDB(t)
	b := New(Dependencies{DB: db, Logger: logging.NewStoreLogger(zerolog.Nop()), FlushInterval: 10 * time.Millisecond})
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.SaveScore(&model.Score{Path: "x.osr"}))
	assert.Eventually(t, func() bool {
		return b.queues.Scores.Empty()
	}, time.Second, 10*time.Millisecond)
}

func TestFlush_FailureRequeues(t *testing.T) {
	db := newTestDB(t)
	b := New(Dependencies{DB: db, Logger: logging.NewStoreLogger(zerolog.Nop()), FlushInterval: time.Hour})
	require.NoError(t, db.Migrator().DropTable(&model.Beatmap{}))

	require.NoError(t, b.SaveBeatmap(&model.Beatmap{MD5: "a"}))
	err := b.Flush()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write beatmaps")
	assert.Equal(t, 1, b.queues.Beatmaps.Len())
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{"a", "b", "a", "c", "b"}, func(s string) string { return s })
	assert.Equal(t, []string{"a", "c", "b"}, got)
}
