package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the catalog schema
var DatabaseModels = []interface{}{
	&Beatmap{},
	&Score{},
	&IndexRun{},
}

////////////////////////
// CATALOG MODELS
////////////////////////

// Beatmap is the catalog entry of a decoded .osu file. MD5 is the hash of the
// file contents, which is what scores reference.
type Beatmap struct {
	gorm.Model
	MD5            string    `json:"md5" gorm:"size:32;uniqueIndex:idx_beatmap_md5"`
	Path           string    `json:"path" gorm:"size:1024"`
	FileFormat     int       `json:"fileFormat"`
	FileUpdateDate time.Time `json:"fileUpdateDate"`
	Mode           int       `json:"mode" gorm:"index:idx_beatmap_mode"`

	Title        string         `json:"title" gorm:"size:255"`
	Artist       string         `json:"artist" gorm:"size:255"`
	Creator      string         `json:"creator" gorm:"size:255"`
	Version      string         `json:"version" gorm:"size:255"`
	BeatmapID    int            `json:"beatmapId" gorm:"index:idx_beatmap_online_id"`
	BeatmapSetID int            `json:"beatmapSetId"`
	Tags         datatypes.JSON `json:"tags" gorm:"default:'[]'"`
	Bookmarks    datatypes.JSON `json:"bookmarks" gorm:"default:'[]'"`

	Difficulty BeatmapDifficulty `json:"difficulty" gorm:"embedded;embeddedPrefix:difficulty_"`
	Counts     ObjectCounts      `json:"counts" gorm:"embedded;embeddedPrefix:count_"`

	LengthMs   float64 `json:"lengthMs"`
	MinBPM     float64 `json:"minBpm"`
	MaxBPM     float64 `json:"maxBpm"`
	BreakCount int     `json:"breakCount"`

	// Bounding box of hit object positions and slider control points, in
	// playfield pixels.
	PlayfieldEnvelope geom.Geometry `json:"playfieldEnvelope"`

	HasStoryboard      bool `json:"hasStoryboard"`
	StoryboardElements int  `json:"storyboardElements"`
}

func (*Beatmap) TableName() string {
	return "beatmaps"
}

// BeatmapDifficulty mirrors the [Difficulty] section
type BeatmapDifficulty struct {
	CircleSize        float64 `json:"circleSize"`
	DrainRate         float64 `json:"drainRate"`
	OverallDifficulty float64 `json:"overallDifficulty"`
	ApproachRate      float64 `json:"approachRate"`
	SliderMultiplier  float64 `json:"sliderMultiplier"`
	SliderTickRate    float64 `json:"sliderTickRate"`
}

// ObjectCounts counts hit objects by kind
type ObjectCounts struct {
	Circles  int `json:"circles"`
	Sliders  int `json:"sliders"`
	Spinners int `json:"spinners"`
	Holds    int `json:"holds"`
}

// Total is the number of hit objects.
func (c ObjectCounts) Total() int {
	return c.Circles + c.Sliders + c.Spinners + c.Holds
}

// Score is the catalog entry of a decoded .osr file
type Score struct {
	gorm.Model
	// ScoreID is the online id, or 0 for scores that were never submitted.
	ScoreID    int64     `json:"scoreId" gorm:"index:idx_score_online_id"`
	Path       string    `json:"path" gorm:"size:1024;uniqueIndex:idx_score_path"`
	BeatmapMD5 string    `json:"beatmapMd5" gorm:"size:32;index:idx_score_beatmap_md5"`
	Username   string    `json:"username" gorm:"size:64;index:idx_score_username"`
	RulesetID  int       `json:"rulesetId"`
	Date       time.Time `json:"date" gorm:"index:idx_score_date"`

	Count300   int  `json:"count300"`
	Count100   int  `json:"count100"`
	Count50    int  `json:"count50"`
	CountGeki  int  `json:"countGeki"`
	CountKatu  int  `json:"countKatu"`
	CountMiss  int  `json:"countMiss"`
	TotalScore int  `json:"totalScore"`
	MaxCombo   int  `json:"maxCombo"`
	Perfect    bool `json:"perfect"`

	RawMods int            `json:"rawMods"`
	Mods    datatypes.JSON `json:"mods" gorm:"default:'[]'"`

	GameVersion      int     `json:"gameVersion"`
	FrameCount       int     `json:"frameCount"`
	ReplayDurationMs float64 `json:"replayDurationMs"`
}

func (*Score) TableName() string {
	return "scores"
}

// IndexRun records one pass of the indexer over a directory
type IndexRun struct {
	ID         uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Root       string    `json:"root" gorm:"size:1024"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Beatmaps   int       `json:"beatmaps"`
	Scores     int       `json:"scores"`
	Failures   int       `json:"failures"`
}

func (*IndexRun) TableName() string {
	return "index_runs"
}
