// pkg/core/beatmap.go
package core

import "time"

// Vector2 is a 2D position in osu! pixels.
type Vector2 struct {
	X float64
	Y float64
}

// Add returns v + o.
func (v Vector2) Add(o Vector2) Vector2 { return Vector2{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v - o.
func (v Vector2) Sub(o Vector2) Vector2 { return Vector2{X: v.X - o.X, Y: v.Y - o.Y} }

// Color4 is an RGBA colour. Channels are in 0..255; Alpha defaults to 255.
type Color4 struct {
	Red   float64
	Green float64
	Blue  float64
	Alpha float64
}

// RGB builds an opaque colour.
func RGB(r, g, b float64) Color4 { return Color4{Red: r, Green: g, Blue: b, Alpha: 255} }

// Beatmap is a decoded .osu file.
type Beatmap struct {
	FileFormat     int
	FileUpdateDate time.Time

	General    General
	Editor     Editor
	Metadata   Metadata
	Difficulty Difficulty
	Colors     Colors
	Events     Events

	ControlPoints *ControlPointInfo
	HitObjects    []HitObject
}

// General holds the [General] section.
type General struct {
	AudioFilename            string
	AudioHash                string
	OverlayPosition          string
	SkinPreference           string
	AudioLeadIn              int
	PreviewTime              int
	Countdown                Countdown
	StackLeniency            float64
	Mode                     int
	CountdownOffset          int
	SampleSet                SampleSet
	LetterboxInBreaks        bool
	StoryFireInFront         bool
	UseSkinSprites           bool
	AlwaysShowPlayfield      bool
	EpilepsyWarning          bool
	SpecialStyle             bool
	WidescreenStoryboard     bool
	SamplesMatchPlaybackRate bool
}

// Editor holds the [Editor] section.
type Editor struct {
	Bookmarks       []int
	DistanceSpacing float64
	BeatDivisor     int
	GridSize        int
	TimelineZoom    float64
}

// Metadata holds the [Metadata] section.
type Metadata struct {
	Title         string
	TitleUnicode  string
	Artist        string
	ArtistUnicode string
	Creator       string
	Version       string
	Source        string
	Tags          []string
	BeatmapID     int
	BeatmapSetID  int
}

// Difficulty holds the [Difficulty] section.
type Difficulty struct {
	CircleSize        float64
	DrainRate         float64
	OverallDifficulty float64
	ApproachRate      float64
	SliderMultiplier  float64
	SliderTickRate    float64
}

// Colors holds the [Colours] section.
type Colors struct {
	ComboColors       []Color4
	SliderTrackColor  *Color4
	SliderBorderColor *Color4
}

// Empty reports whether no colour was declared.
func (c Colors) Empty() bool {
	return len(c.ComboColors) == 0 && c.SliderTrackColor == nil && c.SliderBorderColor == nil
}

// BreakEvent is a break period.
type BreakEvent struct {
	StartTime float64
	EndTime   float64
}

// Duration of the break in milliseconds.
func (b BreakEvent) Duration() float64 { return b.EndTime - b.StartTime }

// Events holds the beatmap-level part of [Events].
type Events struct {
	BackgroundPath string
	Breaks         []BreakEvent
	Storyboard     *Storyboard
}

// NewBeatmap returns a beatmap populated with the format defaults.
func NewBeatmap() *Beatmap {
	return &Beatmap{
		FileFormat: LatestFileFormat,
		General: General{
			OverlayPosition:  "NoChange",
			PreviewTime:      -1,
			Countdown:        CountdownNormal,
			StackLeniency:    0.7,
			SampleSet:        SampleSetNormal,
			StoryFireInFront: true,
		},
		Editor: Editor{
			DistanceSpacing: 1,
			BeatDivisor:     4,
			GridSize:        1,
			TimelineZoom:    2,
		},
		Metadata: Metadata{
			Title:   "Unknown Title",
			Artist:  "Unknown Artist",
			Creator: "Unknown Creator",
			Version: "Normal",
		},
		Difficulty: Difficulty{
			CircleSize:        5,
			DrainRate:         5,
			OverallDifficulty: 5,
			ApproachRate:      5,
			SliderMultiplier:  1.4,
			SliderTickRate:    1,
		},
		ControlPoints: NewControlPointInfo(),
	}
}

// LatestFileFormat is the newest text format version written by the encoders.
const LatestFileFormat = 14

// Length is the time between the first and the last hit object.
func (b *Beatmap) Length() float64 {
	if len(b.HitObjects) == 0 {
		return 0
	}
	first := b.HitObjects[0].Base().StartTime
	last := EndTime(b.HitObjects[len(b.HitObjects)-1])
	return last - first
}
