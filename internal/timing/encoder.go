package timing

import (
	"strings"

	"github.com/OCAP2/osu-parsers/internal/util"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

// Encoder renders control point groups as legacy timing lines. It remembers the
// last non-redundant difficulty, effect and sample points across groups, so one
// Encoder serves exactly one encode pass.
type Encoder struct {
	lastDifficulty *core.DifficultyPoint
	lastEffect     *core.EffectPoint
	lastSample     *core.SamplePoint
}

// NewEncoder returns an encoder with no points written yet.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode renders the [TimingPoints] section including its header.
func (e *Encoder) Encode(info *core.ControlPointInfo) string {
	lines := []string{"[TimingPoints]"}
	if info == nil {
		return lines[0]
	}
	for _, g := range info.Groups {
		timing := e.update(g)
		if timing != nil {
			lines = append(lines, e.line(g.StartTime, timing))
		}
		lines = append(lines, e.line(g.StartTime, nil))
	}
	return strings.Join(lines, "\n")
}

func (e *Encoder) update(g *core.ControlPointGroup) *core.TimingPoint {
	var timing *core.TimingPoint
	for _, point := range g.ControlPoints {
		switch p := point.(type) {
		case *core.TimingPoint:
			timing = p
		case *core.DifficultyPoint:
			if e.lastDifficulty == nil || !p.IsRedundant(e.lastDifficulty) {
				e.lastDifficulty = p
			}
		case *core.EffectPoint:
			if e.lastEffect == nil || !p.IsRedundant(e.lastEffect) {
				e.lastEffect = p
			}
		case *core.SamplePoint:
			if e.lastSample == nil || !p.IsRedundant(e.lastSample) {
				e.lastSample = p
			}
		}
	}
	return timing
}

// line writes one timing line. A non-nil timing point makes it uninherited.
func (e *Encoder) line(startTime float64, timing *core.TimingPoint) string {
	beatLength := -100.0
	if e.lastDifficulty != nil {
		beatLength /= e.lastDifficulty.SliderVelocity
	}

	sampleSet := core.SampleSetNone
	customIndex := 0
	volume := 100
	if e.lastSample != nil {
		sampleSet = e.lastSample.SampleSet
		customIndex = e.lastSample.CustomIndex
		volume = e.lastSample.Volume
	}

	effects := 0
	if e.lastEffect != nil {
		if e.lastEffect.Kiai {
			effects |= core.EffectKiai
		}
		if e.lastEffect.OmitFirstBarLine {
			effects |= core.EffectOmitFirstBarLine
		}
	}

	timeSignature := 4
	uninherited := false
	if timing != nil {
		beatLength = timing.BeatLength
		timeSignature = timing.TimeSignature
		uninherited = true
	}

	return strings.Join([]string{
		util.FormatFloat(startTime),
		util.FormatFloat(beatLength),
		util.FormatInt(timeSignature),
		util.FormatInt(int(sampleSet)),
		util.FormatInt(customIndex),
		util.FormatInt(volume),
		util.FormatBool(uninherited),
		util.FormatInt(effects),
	}, ",")
}
