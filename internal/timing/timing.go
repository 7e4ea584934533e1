// Package timing decodes and encodes legacy [TimingPoints] lines.
//
// One legacy line describes up to four control points at once. Points sharing
// a timestamp are batched and flushed together so that the last declaration of
// each variant wins, with inherited lines overriding uninherited ones.
package timing

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/OCAP2/osu-parsers/internal/parsing"
	"github.com/OCAP2/osu-parsers/internal/section"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

var (
	ErrInvalidTimeSignature = errors.New("the numerator of a time signature must be positive")
	ErrNaNBeatLength        = errors.New("beat length cannot be NaN in a timing control point")
)

// Batch buffers the points declared at one timestamp.
type Batch struct {
	time    float64
	points  []core.ControlPoint
	started bool
}

// Add buffers point at time, flushing into info first when time differs from
// the pending timestamp. Timing-change points go to the front of the batch.
func (b *Batch) Add(info *core.ControlPointInfo, point core.ControlPoint, time float64, timingChange bool) {
	if b.started && time != b.time {
		b.Flush(info)
	}
	if timingChange {
		b.points = append([]core.ControlPoint{point}, b.points...)
	} else {
		b.points = append(b.points, point)
	}
	b.time = time
	b.started = true
}

// Flush inserts the pending points from last to first, keeping only the first
// point seen per variant.
func (b *Batch) Flush(info *core.ControlPointInfo) {
	var seen [4]bool
	for i := len(b.points) - 1; i >= 0; i-- {
		p := b.points[i]
		if seen[p.Kind()] {
			continue
		}
		seen[p.Kind()] = true
		info.Add(p, b.time)
	}
	b.points = b.points[:0]
}

// Len is the number of pending points.
func (b *Batch) Len() int { return len(b.points) }

// Decoder turns timing lines into control points. It holds the pending batch
// of one decode pass.
type Decoder struct {
	Info   *core.ControlPointInfo
	Offset float64

	batch Batch
}

// NewDecoder returns a decoder adding points to info.
func NewDecoder(info *core.ControlPointInfo, offset float64) *Decoder {
	return &Decoder{Info: info, Offset: offset}
}

// DecodeLine parses `time,beatLength,meter,sampleSet,sampleIndex,volume,uninherited,effects`.
// mode is the beatmap ruleset, which decides whether effect points carry the
// scroll speed.
func (d *Decoder) DecodeLine(line string, mode int) error {
	data := strings.Split(line, ",")
	if len(data) < 2 {
		return fmt.Errorf("expected at least 2 fields, got %d", len(data))
	}

	timeSignature := 4
	sampleSet := core.SampleSetNone
	customIndex := 0
	volume := 100
	timingChange := true
	effects := 0

	var err error
	if n := len(data); n > 2 {
		switch {
		case n >= 8:
			if effects, err = parsing.ParseInt(data[7]); err != nil {
				return fmt.Errorf("error converting effects: %w", err)
			}
			fallthrough
		case n == 7:
			timingChange = data[6] == "1"
			fallthrough
		case n == 6:
			if volume, err = parsing.ParseInt(data[5]); err != nil {
				return fmt.Errorf("error converting volume: %w", err)
			}
			fallthrough
		case n == 5:
			if customIndex, err = parsing.ParseInt(data[4]); err != nil {
				return fmt.Errorf("error converting custom index: %w", err)
			}
			fallthrough
		case n == 4:
			set, err := parsing.ParseInt(data[3])
			if err != nil {
				return fmt.Errorf("error converting sample set: %w", err)
			}
			sampleSet = core.SampleSet(set)
			fallthrough
		default:
			if timeSignature, err = parsing.ParseInt(data[2]); err != nil {
				return fmt.Errorf("error converting time signature: %w", err)
			}
		}
	}

	if timeSignature < 1 {
		return section.Fatal(ErrInvalidTimeSignature)
	}

	startTime, err := parsing.ParseFloat(data[0])
	if err != nil {
		return fmt.Errorf("error converting start time: %w", err)
	}
	startTime += d.Offset

	beatLength, err := parsing.ParseFloatLimit(data[1], parsing.MaxParseValue, true)
	if err != nil {
		return fmt.Errorf("error converting beat length: %w", err)
	}

	bpmMultiplier := 1.0
	speedMultiplier := 1.0
	if beatLength < 0 {
		speedMultiplier = 100 / -beatLength
		bpmMultiplier = math.Max(10, math.Min(float64(float32(-beatLength)), 10000)) / 100
	}

	if timingChange && math.IsNaN(beatLength) {
		return section.Fatal(ErrNaNBeatLength)
	}

	if timingChange {
		d.batch.Add(d.Info, &core.TimingPoint{
			BeatLength:    beatLength,
			TimeSignature: timeSignature,
		}, startTime, true)
	}

	d.batch.Add(d.Info, &core.DifficultyPoint{
		BpmMultiplier:  bpmMultiplier,
		SliderVelocity: speedMultiplier,
		GenerateTicks:  !math.IsNaN(beatLength),
		IsLegacy:       true,
	}, startTime, timingChange)

	effect := core.NewEffectPoint()
	effect.Kiai = effects&core.EffectKiai > 0
	effect.OmitFirstBarLine = effects&core.EffectOmitFirstBarLine > 0
	if mode == core.ModeTaiko || mode == core.ModeMania {
		effect.ScrollSpeed = speedMultiplier
	}
	d.batch.Add(d.Info, effect, startTime, timingChange)

	d.batch.Add(d.Info, &core.SamplePoint{
		SampleSet:   sampleSet,
		CustomIndex: customIndex,
		Volume:      volume,
	}, startTime, timingChange)

	return nil
}

// Flush inserts the pending batch. Decoders call it once after the last line.
func (d *Decoder) Flush() {
	d.batch.Flush(d.Info)
}
