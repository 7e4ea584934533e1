package beatmap

import (
	"fmt"
	"strings"

	"github.com/OCAP2/osu-parsers/internal/colour"
	"github.com/OCAP2/osu-parsers/internal/hitobject"
	"github.com/OCAP2/osu-parsers/internal/storyboard"
	"github.com/OCAP2/osu-parsers/internal/timing"
	"github.com/OCAP2/osu-parsers/internal/util"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

// Encode renders a beatmap as .osu text. A nil beatmap, or one without a
// format version, encodes to "".
func Encode(b *core.Beatmap) string {
	if b == nil || b.FileFormat == 0 {
		return ""
	}

	sections := []string{
		fmt.Sprintf("osu file format v%d", b.FileFormat),
		encodeGeneral(b.General),
		encodeEditor(b.Editor),
		encodeMetadata(b.Metadata),
		encodeDifficulty(b.Difficulty),
		encodeEvents(b.Events),
		timing.NewEncoder().Encode(b.ControlPoints),
	}
	if c := colour.Encode(b.Colors); c != "" {
		sections = append(sections, c)
	}
	sections = append(sections, hitobject.Encode(b.HitObjects))

	return strings.Join(sections, "\n\n") + "\n"
}

type pairs []string

func (p *pairs) add(key, value string) { *p = append(*p, key+": "+value) }

func (p pairs) section(name string) string {
	return "[" + name + "]\n" + strings.Join(p, "\n")
}

func encodeGeneral(g core.General) string {
	var p pairs
	p.add("AudioFilename", g.AudioFilename)
	p.add("AudioLeadIn", util.FormatInt(g.AudioLeadIn))
	if g.AudioHash != "" {
		p.add("AudioHash", g.AudioHash)
	}
	p.add("PreviewTime", util.FormatInt(g.PreviewTime))
	p.add("Countdown", util.FormatInt(int(g.Countdown)))
	p.add("SampleSet", g.SampleSet.String())
	p.add("StackLeniency", util.FormatFloat(g.StackLeniency))
	p.add("Mode", util.FormatInt(g.Mode))
	p.add("LetterboxInBreaks", util.FormatBool(g.LetterboxInBreaks))
	if g.StoryFireInFront {
		p.add("StoryFireInFront", util.FormatBool(g.StoryFireInFront))
	}
	p.add("UseSkinSprites", util.FormatBool(g.UseSkinSprites))
	if g.AlwaysShowPlayfield {
		p.add("AlwaysShowPlayfield", util.FormatBool(g.AlwaysShowPlayfield))
	}
	p.add("OverlayPosition", g.OverlayPosition)
	p.add("SkinPreference", g.SkinPreference)
	p.add("EpilepsyWarning", util.FormatBool(g.EpilepsyWarning))
	p.add("CountdownOffset", util.FormatInt(g.CountdownOffset))
	p.add("SpecialStyle", util.FormatBool(g.SpecialStyle))
	p.add("WidescreenStoryboard", util.FormatBool(g.WidescreenStoryboard))
	p.add("SamplesMatchPlaybackRate", util.FormatBool(g.SamplesMatchPlaybackRate))
	return p.section("General")
}

func encodeEditor(e core.Editor) string {
	bookmarks := make([]string, len(e.Bookmarks))
	for i, b := range e.Bookmarks {
		bookmarks[i] = util.FormatInt(b)
	}

	var p pairs
	p.add("Bookmarks", strings.Join(bookmarks, ","))
	p.add("DistanceSpacing", util.FormatFloat(e.DistanceSpacing))
	p.add("BeatDivisor", util.FormatInt(e.BeatDivisor))
	p.add("GridSize", util.FormatInt(e.GridSize))
	p.add("TimelineZoom", util.FormatFloat(e.TimelineZoom))
	return p.section("Editor")
}

func encodeMetadata(m core.Metadata) string {
	// Metadata values are written without padding after the colon.
	lines := []string{
		"Title:" + m.Title,
		"TitleUnicode:" + m.TitleUnicode,
		"Artist:" + m.Artist,
		"ArtistUnicode:" + m.ArtistUnicode,
		"Creator:" + m.Creator,
		"Version:" + m.Version,
		"Source:" + m.Source,
		"Tags:" + strings.Join(m.Tags, " "),
		"BeatmapID:" + util.FormatInt(m.BeatmapID),
		"BeatmapSetID:" + util.FormatInt(m.BeatmapSetID),
	}
	return "[Metadata]\n" + strings.Join(lines, "\n")
}

func encodeDifficulty(d core.Difficulty) string {
	lines := []string{
		"HPDrainRate:" + util.FormatFloat(d.DrainRate),
		"CircleSize:" + util.FormatFloat(d.CircleSize),
		"OverallDifficulty:" + util.FormatFloat(d.OverallDifficulty),
		"ApproachRate:" + util.FormatFloat(d.ApproachRate),
		"SliderMultiplier:" + util.FormatFloat(d.SliderMultiplier),
		"SliderTickRate:" + util.FormatFloat(d.SliderTickRate),
	}
	return "[Difficulty]\n" + strings.Join(lines, "\n")
}

func encodeEvents(e core.Events) string {
	lines := []string{"[Events]", "//Background and Video events"}
	if e.BackgroundPath != "" {
		lines = append(lines, fmt.Sprintf(`0,0,"%s",0,0`, e.BackgroundPath))
	}
	if e.Storyboard != nil {
		if videos := storyboard.EncodeVideos(e.Storyboard); videos != "" {
			lines = append(lines, videos)
		}
	}

	lines = append(lines, "//Break Periods")
	for _, b := range e.Breaks {
		lines = append(lines, fmt.Sprintf("%s,%s,%s", core.EventBreak,
			util.FormatFloat(b.StartTime), util.FormatFloat(b.EndTime)))
	}

	if e.Storyboard != nil {
		lines = append(lines, storyboard.EncodeLayers(e.Storyboard))
	}
	return strings.Join(lines, "\n")
}
