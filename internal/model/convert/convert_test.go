package convert

import (
	"testing"
	"time"

	"github.com/OCAP2/osu-parsers/internal/model"
	"github.com/OCAP2/osu-parsers/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func timingPoint(beatLength float64) *core.TimingPoint {
	tp := core.NewTimingPoint()
	tp.BeatLength = beatLength
	return tp
}

func sampleBeatmap() *core.Beatmap {
	b := core.NewBeatmap()
	b.General.Mode = core.ModeStandard
	b.Metadata.Title = "Blue Zenith"
	b.Metadata.Artist = "xi"
	b.Metadata.Creator = "Asphyxia"
	b.Metadata.Version = "FOUR DIMENSIONS"
	b.Metadata.BeatmapID = 658127
	b.Metadata.BeatmapSetID = 292301
	b.Metadata.Tags = []string{"bms", "tano*c"}
	b.Editor.Bookmarks = []int{1000, 2000}
	b.Difficulty.ApproachRate = 9.5
	b.Events.Breaks = []core.BreakEvent{{StartTime: 3000, EndTime: 5000}}
	b.FileUpdateDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	b.ControlPoints.Add(timingPoint(300), 0)
	b.ControlPoints.Add(timingPoint(600), 4000)

	b.HitObjects = []core.HitObject{
		&core.Hittable{HitObjectBase: core.HitObjectBase{StartPosition: core.Vector2{X: 10, Y: 20}, StartTime: 1000}},
		&core.Slidable{
			HitObjectBase: core.HitObjectBase{StartPosition: core.Vector2{X: 100, Y: 100}, StartTime: 1500},
			Path:          core.SliderPath{ControlPoints: []core.PathPoint{{}, {Position: core.Vector2{X: 300, Y: 200}}}},
		},
		&core.Spinnable{HitObjectBase: core.HitObjectBase{StartPosition: core.Vector2{X: 256, Y: 192}, StartTime: 6000}, EndTime: 8000},
	}
	return b
}

func TestCoreToBeatmap(t *testing.T) {
	tests := []struct {
		name  string
		build func() *core.Beatmap
		check func(t *testing.T, m model.Beatmap)
	}{
		{"metadata", sampleBeatmap, func(t *testing.T, m model.Beatmap) {
			assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", m.MD5)
			assert.Equal(t, "songs/blue.osu", m.Path)
			assert.Equal(t, "Blue Zenith", m.Title)
			assert.Equal(t, 658127, m.BeatmapID)
			assert.Equal(t, 292301, m.BeatmapSetID)
			assert.JSONEq(t, `["bms","tano*c"]`, string(m.Tags))
			assert.JSONEq(t, `[1000,2000]`, string(m.Bookmarks))
			assert.Equal(t, 9.5, m.Difficulty.ApproachRate)
			assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), m.FileUpdateDate)
		}},
		{"objects and timing", sampleBeatmap, func(t *testing.T, m model.Beatmap) {
			assert.Equal(t, model.ObjectCounts{Circles: 1, Sliders: 1, Spinners: 1}, m.Counts)
			assert.Equal(t, 7000.0, m.LengthMs)
			assert.Equal(t, 1, m.BreakCount)
			assert.InDelta(t, 100, m.MinBPM, 1e-9)
			assert.InDelta(t, 200, m.MaxBPM, 1e-9)
		}},
		{"playfield envelope", sampleBeatmap, func(t *testing.T, m model.Beatmap) {
			lo, hi, ok := m.PlayfieldEnvelope.Envelope().MinMaxXYs()
			require.True(t, ok)
			assert.Equal(t, geom.XY{X: 10, Y: 20}, lo)
			assert.Equal(t, geom.XY{X: 400, Y: 300}, hi)
		}},
		{"empty beatmap", core.NewBeatmap, func(t *testing.T, m model.Beatmap) {
			assert.Equal(t, datatypes.JSON("[]"), m.Tags)
			assert.Equal(t, datatypes.JSON("[]"), m.Bookmarks)
			assert.Zero(t, m.Counts.Total())
			assert.Zero(t, m.MinBPM)
			assert.Zero(t, m.MaxBPM)
			assert.True(t, m.PlayfieldEnvelope.IsEmpty())
			assert.False(t, m.HasStoryboard)
		}},
		{"storyboard", func() *core.Beatmap {
			b := core.NewBeatmap()
			sb := core.NewStoryboard()
			layer := sb.Layer(core.LayerForeground)
			layer.Elements = append(layer.Elements, core.NewSprite("a.png", core.OriginCentre, core.Vector2{}))
			b.Events.Storyboard = sb
			return b
		}, func(t *testing.T, m model.Beatmap) {
			assert.True(t, m.HasStoryboard)
			assert.Equal(t, 1, m.StoryboardElements)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, CoreToBeatmap(tt.build(), "d41d8cd98f00b204e9800998ecf8427e", "songs/blue.osu"))
		})
	}
}

func sampleScore() *core.Score {
	return &core.Score{
		Info: core.ScoreInfo{
			ID:             4321987654,
			BeatmapHashMD5: "d41d8cd98f00b204e9800998ecf8427e",
			Username:       "peppy",
			Count300:       512,
			Count100:       12,
			CountMiss:      1,
			TotalScore:     12345678,
			MaxCombo:       600,
			RawMods:        72,
			Date:           time.Date(2023, 6, 21, 12, 0, 0, 0, time.UTC),
		},
		Replay: &core.Replay{
			GameVersion: 20230621,
			Frames: []core.ReplayFrame{
				&core.LegacyReplayFrame{StartTime: 100},
				&core.LegacyReplayFrame{StartTime: 116},
				&core.LegacyReplayFrame{StartTime: 2100},
			},
		},
	}
}

func TestCoreToScore(t *testing.T) {
	m := CoreToScore(sampleScore(), "replays/peppy.osr")

	assert.Equal(t, int64(4321987654), m.ScoreID)
	assert.Equal(t, "replays/peppy.osr", m.Path)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", m.BeatmapMD5)
	assert.Equal(t, 512, m.Count300)
	assert.Equal(t, 72, m.RawMods)
	assert.JSONEq(t, `["HD","DT"]`, string(m.Mods))
	assert.Equal(t, 20230621, m.GameVersion)
	assert.Equal(t, 3, m.FrameCount)
	assert.Equal(t, 2000.0, m.ReplayDurationMs)
}

func TestCoreToScore_WithoutReplay(t *testing.T) {
	s := sampleScore()
	s.Replay = nil
	s.Info.RawMods = 0

	m := CoreToScore(s, "a.osr")
	assert.Zero(t, m.FrameCount)
	assert.Zero(t, m.ReplayDurationMs)
	assert.Equal(t, datatypes.JSON("[]"), m.Mods)
}

func TestScoreToCore_RoundTrip(t *testing.T) {
	s := sampleScore()
	assert.Equal(t, s.Info, ScoreToCore(CoreToScore(s, "a.osr")))
}

func TestBeatmapToMetadata(t *testing.T) {
	b := sampleBeatmap()
	meta := BeatmapToMetadata(CoreToBeatmap(b, "", ""))

	want := b.Metadata
	want.TitleUnicode, want.ArtistUnicode, want.Source = "", "", ""
	assert.Equal(t, want, meta)

	assert.Nil(t, BeatmapToMetadata(model.Beatmap{Tags: datatypes.JSON("[]")}).Tags)
}
