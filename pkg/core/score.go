// pkg/core/score.go
package core

import "time"

// Score is a decoded .osr file.
type Score struct {
	Info   ScoreInfo
	Replay *Replay
}

// ScoreInfo is the score metadata.
type ScoreInfo struct {
	ID             int64
	RulesetID      int
	BeatmapHashMD5 string
	Username       string
	Count300       int
	Count100       int
	Count50        int
	CountGeki      int
	CountKatu      int
	CountMiss      int
	TotalScore     int
	MaxCombo       int
	Perfect        bool
	RawMods        int
	Date           time.Time
}

// TotalHits is the number of judged objects.
func (s ScoreInfo) TotalHits() int {
	return s.Count300 + s.Count100 + s.Count50 + s.CountMiss
}

// Replay is the input history of a score.
type Replay struct {
	GameVersion int
	Mode        int
	HashMD5     string
	LifeBar     []LifeBarFrame
	Frames      []ReplayFrame
}

// LifeBarFrame is a health sample.
type LifeBarFrame struct {
	StartTime float64
	Health    float64
}

// ReplayFrame is an input frame. Frames that are not *LegacyReplayFrame must
// implement LegacyConvertible to be encoded.
type ReplayFrame interface {
	FrameTime() float64
}

// LegacyConvertible converts a ruleset frame to the legacy representation.
type LegacyConvertible interface {
	ToLegacy() (*LegacyReplayFrame, bool)
}

// LegacyReplayFrame is a cursor position and button state.
type LegacyReplayFrame struct {
	StartTime   float64
	Interval    float64
	Position    Vector2
	ButtonState ReplayButtonState
}

func (f *LegacyReplayFrame) FrameTime() float64 { return f.StartTime }

// MouseLeft reports whether a left button (mouse or key) is held.
func (f *LegacyReplayFrame) MouseLeft() bool {
	return f.ButtonState&(ButtonLeft1|ButtonLeft2) != 0
}

// MouseRight reports whether a right button (mouse or key) is held.
func (f *LegacyReplayFrame) MouseRight() bool {
	return f.ButtonState&(ButtonRight1|ButtonRight2) != 0
}
