// Package beatmap decodes and encodes .osu beatmap files.
package beatmap

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/OCAP2/osu-parsers/internal/colour"
	"github.com/OCAP2/osu-parsers/internal/hitobject"
	"github.com/OCAP2/osu-parsers/internal/parsing"
	"github.com/OCAP2/osu-parsers/internal/section"
	"github.com/OCAP2/osu-parsers/internal/storyboard"
	"github.com/OCAP2/osu-parsers/internal/timing"
	"github.com/OCAP2/osu-parsers/internal/util"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

var ErrInvalidHeader = errors.New("not a valid beatmap")

const (
	// BaseScoringDistance is the slider distance travelled in one beat at
	// slider multiplier 1.
	BaseScoringDistance = 100
	// kiaiLeniency is added to an object's start time when looking up its
	// effect point.
	kiaiLeniency = 5
)

// Options selects the sections to decode. Disabled sections keep their
// defaults.
type Options struct {
	ParseGeneral      bool
	ParseEditor       bool
	ParseMetadata     bool
	ParseDifficulty   bool
	ParseEvents       bool
	ParseTimingPoints bool
	ParseHitObjects   bool
	ParseColours      bool
	// ParseStoryboard only applies when ParseEvents is set.
	ParseStoryboard bool
}

// DefaultOptions decodes everything.
func DefaultOptions() Options {
	return Options{
		ParseGeneral:      true,
		ParseEditor:       true,
		ParseMetadata:     true,
		ParseDifficulty:   true,
		ParseEvents:       true,
		ParseTimingPoints: true,
		ParseHitObjects:   true,
		ParseColours:      true,
		ParseStoryboard:   true,
	}
}

func (o Options) sections() *section.Map {
	m := section.NewMap()
	m.Set(section.General, o.ParseGeneral)
	m.Set(section.Editor, o.ParseEditor)
	m.Set(section.Metadata, o.ParseMetadata)
	m.Set(section.Difficulty, o.ParseDifficulty)
	m.Set(section.Events, o.ParseEvents)
	m.Set(section.TimingPoints, o.ParseTimingPoints)
	m.Set(section.HitObjects, o.ParseHitObjects)
	m.Set(section.Colours, o.ParseColours)
	return m
}

// Decoder builds beatmaps from text. It holds no per-decode state and may be
// shared between goroutines.
type Decoder struct {
	logger      *slog.Logger
	storyboards *storyboard.Decoder
}

// NewDecoder creates a decoder logging skipped lines to logger (nil uses the default logger).
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{logger: logger, storyboards: storyboard.NewDecoder(logger)}
}

// DecodeString decodes the text of a .osu file.
func (d *Decoder) DecodeString(text string, opts Options) (*core.Beatmap, error) {
	return d.DecodeLines(section.SplitLines(text), opts)
}

// DecodeBytes decodes the raw content of a .osu file.
func (d *Decoder) DecodeBytes(data []byte, opts Options) (*core.Beatmap, error) {
	return d.DecodeString(string(data), opts)
}

// DecodeLines decodes pre-split lines. The first line must be the format
// header.
func (d *Decoder) DecodeLines(lines []string, opts Options) (*core.Beatmap, error) {
	if len(lines) == 0 || !strings.HasPrefix(strings.TrimSpace(strings.TrimPrefix(lines[0], "\ufeff")), section.FileFormatMarker) {
		return nil, fmt.Errorf("failed to decode a beatmap: %w", ErrInvalidHeader)
	}

	ctx := newDecodeContext(opts)
	m := section.NewMachine(opts.sections(), d.logger)
	if err := m.Run(lines, ctx); err != nil {
		return nil, fmt.Errorf("failed to decode a beatmap: %w", err)
	}
	if err := d.finish(ctx); err != nil {
		return nil, fmt.Errorf("failed to decode a beatmap: %w", err)
	}

	d.logger.Debug("Decoded beatmap",
		"fileFormat", ctx.beatmap.FileFormat,
		"hitObjects", len(ctx.beatmap.HitObjects),
		"controlPointGroups", len(ctx.beatmap.ControlPoints.Groups),
		"skipped", m.Skipped())
	return ctx.beatmap, nil
}

// finish runs the post-processing passes over a fully read beatmap.
func (d *Decoder) finish(ctx *decodeContext) error {
	b := ctx.beatmap
	ctx.timing.Flush()

	for _, h := range b.HitObjects {
		applyDefaults(h, b.ControlPoints, b.Difficulty, b.FileFormat)
	}
	sort.SliceStable(b.HitObjects, func(i, j int) bool {
		return b.HitObjects[i].Base().StartTime < b.HitObjects[j].Base().StartTime
	})

	if !ctx.approachRateSet {
		b.Difficulty.ApproachRate = b.Difficulty.OverallDifficulty
	}
	if b.Metadata.TitleUnicode == "" {
		b.Metadata.TitleUnicode = b.Metadata.Title
	}
	if b.Metadata.ArtistUnicode == "" {
		b.Metadata.ArtistUnicode = b.Metadata.Artist
	}

	if len(ctx.storyboardLines) == 0 {
		return nil
	}
	sb, err := d.storyboards.DecodeEventLines(ctx.storyboardLines, b.FileFormat)
	if err != nil {
		return fmt.Errorf("storyboard: %w", err)
	}
	sb.UseSkinSprites = b.General.UseSkinSprites
	sb.Colors = b.Colors
	b.Events.Storyboard = sb
	return nil
}

// applyDefaults derives the fields that depend on the control-point timeline.
func applyDefaults(h core.HitObject, points *core.ControlPointInfo, difficulty core.Difficulty, fileFormat int) {
	base := h.Base()
	base.Kiai = points.EffectPointAt(base.StartTime + kiaiLeniency).Kiai

	slider, ok := h.(*core.Slidable)
	if !ok {
		return
	}
	timingPoint := points.TimingPointAt(slider.StartTime)
	difficultyPoint := points.DifficultyPointAt(slider.StartTime)

	scoringDistance := BaseScoringDistance * difficulty.SliderMultiplier * difficultyPoint.SliderVelocity
	slider.Velocity = scoringDistance / timingPoint.BeatLength

	if difficulty.SliderTickRate > 0 {
		tickDistance := scoringDistance / difficulty.SliderTickRate
		if fileFormat < 8 {
			tickDistance /= difficultyPoint.SliderVelocity
		}
		slider.TickDistance = tickDistance
	}
}

// decodeContext is the state of one decode.
type decodeContext struct {
	beatmap    *core.Beatmap
	offset     float64
	timing     *timing.Decoder
	hitObjects *hitobject.Decoder

	approachRateSet bool
	// storyboardLines is nil when the storyboard is not decoded.
	storyboardLines []string
}

func newDecodeContext(opts Options) *decodeContext {
	b := core.NewBeatmap()
	ctx := &decodeContext{beatmap: b}
	ctx.timing = timing.NewDecoder(b.ControlPoints, ctx.offset)
	ctx.hitObjects = hitobject.NewDecoder(b.FileFormat, b.General.Mode, ctx.offset)
	if opts.ParseEvents && opts.ParseStoryboard {
		ctx.storyboardLines = []string{}
	}
	return ctx
}

func (c *decodeContext) FileFormat(line string) error {
	_, version, _ := strings.Cut(line, section.FileFormatMarker)
	v, err := parsing.ParseInt(version)
	if err != nil {
		return fmt.Errorf("error converting file format: %w", err)
	}
	c.beatmap.FileFormat = v
	return nil
}

func (c *decodeContext) Line(s section.Section, line string) error {
	switch s {
	case section.General:
		return c.general(line)
	case section.Editor:
		return c.editor(line)
	case section.Metadata:
		return c.metadata(line)
	case section.Difficulty:
		return c.difficulty(line)
	case section.Events:
		return c.event(line)
	case section.TimingPoints:
		return c.timing.DecodeLine(line, c.beatmap.General.Mode)
	case section.Colours:
		return colour.DecodeLine(line, &c.beatmap.Colors)
	case section.HitObjects:
		c.hitObjects.FileFormat = c.beatmap.FileFormat
		c.hitObjects.Mode = c.beatmap.General.Mode
		h, err := c.hitObjects.DecodeLine(line)
		if err != nil {
			return err
		}
		c.beatmap.HitObjects = append(c.beatmap.HitObjects, h)
	}
	return nil
}

func (c *decodeContext) general(line string) error {
	g := &c.beatmap.General
	key, value := util.SplitKeyValue(line)
	var err error

	switch key {
	case "AudioFilename":
		g.AudioFilename = value
	case "AudioHash":
		g.AudioHash = value
	case "OverlayPosition":
		g.OverlayPosition = value
	case "SkinPreference":
		g.SkinPreference = value
	case "AudioLeadIn":
		g.AudioLeadIn, err = parsing.ParseInt(value)
	case "PreviewTime":
		var v int
		v, err = parsing.ParseInt(value)
		g.PreviewTime = v + int(c.offset)
	case "Countdown":
		var v int
		v, err = parsing.ParseInt(value)
		g.Countdown = core.Countdown(v)
	case "StackLeniency":
		g.StackLeniency, err = parsing.ParseFloat(value)
	case "Mode":
		g.Mode, err = parsing.ParseInt(value)
	case "CountdownOffset":
		g.CountdownOffset, err = parsing.ParseInt(value)
	case "SampleSet":
		g.SampleSet, err = parsing.ParseEnum(core.SampleSets, value)
	case "LetterboxInBreaks":
		g.LetterboxInBreaks = parsing.ParseBool(value)
	case "StoryFireInFront":
		g.StoryFireInFront = parsing.ParseBool(value)
	case "UseSkinSprites":
		g.UseSkinSprites = parsing.ParseBool(value)
	case "AlwaysShowPlayfield":
		g.AlwaysShowPlayfield = parsing.ParseBool(value)
	case "EpilepsyWarning":
		g.EpilepsyWarning = parsing.ParseBool(value)
	case "SpecialStyle":
		g.SpecialStyle = parsing.ParseBool(value)
	case "WidescreenStoryboard":
		g.WidescreenStoryboard = parsing.ParseBool(value)
	case "SamplesMatchPlaybackRate":
		g.SamplesMatchPlaybackRate = parsing.ParseBool(value)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func (c *decodeContext) editor(line string) error {
	e := &c.beatmap.Editor
	key, value := util.SplitKeyValue(line)
	var err error

	switch key {
	case "Bookmarks":
		var bookmarks []int
		for _, token := range util.SplitTrim(value, ",") {
			if token == "" {
				continue
			}
			v, err := parsing.ParseInt(token)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			bookmarks = append(bookmarks, v)
		}
		e.Bookmarks = bookmarks
	case "DistanceSpacing":
		var v float64
		v, err = parsing.ParseFloat(value)
		e.DistanceSpacing = math.Max(0, v)
	case "BeatDivisor":
		e.BeatDivisor, err = parsing.ParseInt(value)
	case "GridSize":
		e.GridSize, err = parsing.ParseInt(value)
	case "TimelineZoom":
		var v float64
		v, err = parsing.ParseFloat(value)
		e.TimelineZoom = math.Max(0, v)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func (c *decodeContext) metadata(line string) error {
	m := &c.beatmap.Metadata
	key, value := util.SplitKeyValue(line)
	var err error

	switch key {
	case "Title":
		m.Title = value
	case "TitleUnicode":
		m.TitleUnicode = value
	case "Artist":
		m.Artist = value
	case "ArtistUnicode":
		m.ArtistUnicode = value
	case "Creator":
		m.Creator = value
	case "Version":
		m.Version = value
	case "Source":
		m.Source = value
	case "Tags":
		m.Tags = strings.Fields(value)
	case "BeatmapID":
		m.BeatmapID, err = parsing.ParseInt(value)
	case "BeatmapSetID":
		m.BeatmapSetID, err = parsing.ParseInt(value)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func (c *decodeContext) difficulty(line string) error {
	d := &c.beatmap.Difficulty
	key, value := util.SplitKeyValue(line)

	var target *float64
	switch key {
	case "CircleSize":
		target = &d.CircleSize
	case "HPDrainRate":
		target = &d.DrainRate
	case "OverallDifficulty":
		target = &d.OverallDifficulty
	case "ApproachRate":
		target = &d.ApproachRate
	case "SliderMultiplier":
		target = &d.SliderMultiplier
	case "SliderTickRate":
		target = &d.SliderTickRate
	default:
		return nil
	}

	v, err := parsing.ParseFloat(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*target = v
	if key == "ApproachRate" {
		c.approachRateSet = true
	}
	return nil
}

// event reads the beatmap-level events and collects the storyboard lines.
func (c *decodeContext) event(line string) error {
	data := strings.Split(line, ",")
	for i := 1; i < len(data); i++ {
		data[i] = strings.TrimSpace(data[i])
	}

	eventType, err := storyboard.ParseEventType(data[0])
	if err != nil {
		return section.Fatal(err)
	}

	switch eventType {
	case core.EventBackground:
		if len(data) < 3 {
			return fmt.Errorf("background needs a path, got %d fields", len(data))
		}
		c.beatmap.Events.BackgroundPath = util.StripQuotes(data[2])

	case core.EventBreak:
		if len(data) < 3 {
			return fmt.Errorf("break needs a start and an end, got %d fields", len(data))
		}
		start, err := parsing.ParseFloat(data[1])
		if err != nil {
			return fmt.Errorf("error converting break start: %w", err)
		}
		end, err := parsing.ParseFloat(data[2])
		if err != nil {
			return fmt.Errorf("error converting break end: %w", err)
		}
		start += c.offset
		c.beatmap.Events.Breaks = append(c.beatmap.Events.Breaks, core.BreakEvent{
			StartTime: start,
			EndTime:   math.Max(start, end+c.offset),
		})

	case core.EventVideo, core.EventSample, core.EventSprite, core.EventAnimation, core.EventStoryboardCommand:
		if c.storyboardLines != nil {
			c.storyboardLines = append(c.storyboardLines, line)
		}
	}
	return nil
}
