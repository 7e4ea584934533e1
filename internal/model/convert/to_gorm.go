// Package convert provides functions to convert between decoded files and catalog models
package convert

import (
	"encoding/json"
	"math"

	"github.com/OCAP2/osu-parsers/internal/geo"
	"github.com/OCAP2/osu-parsers/internal/model"
	"github.com/OCAP2/osu-parsers/pkg/core"
	"gorm.io/datatypes"
)

// toJSON converts a slice to datatypes.JSON for DB storage. Empty slices
// become "[]" so the column never holds null.
func toJSON[T any](values []T) datatypes.JSON {
	if len(values) == 0 {
		return datatypes.JSON("[]")
	}
	data, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}

// CoreToBeatmap builds the catalog entry of a decoded beatmap. md5 is the hash
// of the file the beatmap was read from.
func CoreToBeatmap(b *core.Beatmap, md5, path string) model.Beatmap {
	result := model.Beatmap{
		MD5:            md5,
		Path:           path,
		FileFormat:     b.FileFormat,
		FileUpdateDate: b.FileUpdateDate,
		Mode:           b.General.Mode,
		Title:          b.Metadata.Title,
		Artist:         b.Metadata.Artist,
		Creator:        b.Metadata.Creator,
		Version:        b.Metadata.Version,
		BeatmapID:      b.Metadata.BeatmapID,
		BeatmapSetID:   b.Metadata.BeatmapSetID,
		Tags:           toJSON(b.Metadata.Tags),
		Bookmarks:      toJSON(b.Editor.Bookmarks),
		Difficulty: model.BeatmapDifficulty{
			CircleSize:        b.Difficulty.CircleSize,
			DrainRate:         b.Difficulty.DrainRate,
			OverallDifficulty: b.Difficulty.OverallDifficulty,
			ApproachRate:      b.Difficulty.ApproachRate,
			SliderMultiplier:  b.Difficulty.SliderMultiplier,
			SliderTickRate:    b.Difficulty.SliderTickRate,
		},
		Counts:     countObjects(b.HitObjects),
		LengthMs:   b.Length(),
		BreakCount: len(b.Events.Breaks),
	}

	result.MinBPM, result.MaxBPM = bpmRange(b.ControlPoints)

	if env, err := geo.ObjectsEnvelope(b.HitObjects); err == nil {
		result.PlayfieldEnvelope = env
	}

	if sb := b.Events.Storyboard; sb != nil {
		result.HasStoryboard = sb.HasElements()
		result.StoryboardElements = countElements(sb)
	}
	return result
}

func countObjects(objects []core.HitObject) model.ObjectCounts {
	var c model.ObjectCounts
	for _, h := range objects {
		switch h.(type) {
		case *core.Hittable:
			c.Circles++
		case *core.Slidable:
			c.Sliders++
		case *core.Spinnable:
			c.Spinners++
		case *core.Holdable:
			c.Holds++
		}
	}
	return c
}

// bpmRange returns the lowest and highest BPM of the uninherited timing
// points, or zeros when there are none.
func bpmRange(info *core.ControlPointInfo) (lo, hi float64) {
	if info == nil || len(info.TimingPoints) == 0 {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, tp := range info.TimingPoints {
		bpm := tp.BPM()
		lo = math.Min(lo, bpm)
		hi = math.Max(hi, bpm)
	}
	return lo, hi
}

func countElements(sb *core.Storyboard) int {
	n := 0
	for _, t := range core.LayerOrder {
		if l := sb.Layer(t); l != nil {
			n += len(l.Elements)
		}
	}
	return n
}

// CoreToScore builds the catalog entry of a decoded score.
func CoreToScore(s *core.Score, path string) model.Score {
	info := s.Info
	result := model.Score{
		ScoreID:    info.ID,
		Path:       path,
		BeatmapMD5: info.BeatmapHashMD5,
		Username:   info.Username,
		RulesetID:  info.RulesetID,
		Date:       info.Date,
		Count300:   info.Count300,
		Count100:   info.Count100,
		Count50:    info.Count50,
		CountGeki:  info.CountGeki,
		CountKatu:  info.CountKatu,
		CountMiss:  info.CountMiss,
		TotalScore: info.TotalScore,
		MaxCombo:   info.MaxCombo,
		Perfect:    info.Perfect,
		RawMods:    info.RawMods,
		Mods:       toJSON(info.Mods().Acronyms()),
	}

	if r := s.Replay; r != nil {
		result.GameVersion = r.GameVersion
		result.FrameCount = len(r.Frames)
		if n := len(r.Frames); n > 0 {
			result.ReplayDurationMs = r.Frames[n-1].FrameTime() - r.Frames[0].FrameTime()
		}
	}
	return result
}
