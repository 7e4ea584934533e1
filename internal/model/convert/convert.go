package convert

import (
	"encoding/json"

	"github.com/OCAP2/osu-parsers/internal/model"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

// ScoreToCore rebuilds the score metadata held by a catalog entry. The
// replay is not stored in the catalog.
func ScoreToCore(s model.Score) core.ScoreInfo {
	return core.ScoreInfo{
		ID:             s.ScoreID,
		RulesetID:      s.RulesetID,
		BeatmapHashMD5: s.BeatmapMD5,
		Username:       s.Username,
		Count300:       s.Count300,
		Count100:       s.Count100,
		Count50:        s.Count50,
		CountGeki:      s.CountGeki,
		CountKatu:      s.CountKatu,
		CountMiss:      s.CountMiss,
		TotalScore:     s.TotalScore,
		MaxCombo:       s.MaxCombo,
		Perfect:        s.Perfect,
		RawMods:        s.RawMods,
		Date:           s.Date,
	}
}

// BeatmapToMetadata rebuilds the [Metadata] section of a catalog entry.
func BeatmapToMetadata(b model.Beatmap) core.Metadata {
	var tags []string
	if len(b.Tags) > 0 {
		_ = json.Unmarshal(b.Tags, &tags)
	}
	if len(tags) == 0 {
		tags = nil
	}
	return core.Metadata{
		Title:        b.Title,
		Artist:       b.Artist,
		Creator:      b.Creator,
		Version:      b.Version,
		Tags:         tags,
		BeatmapID:    b.BeatmapID,
		BeatmapSetID: b.BeatmapSetID,
	}
}
