// Package hitobject decodes and encodes [HitObjects] lines.
package hitobject

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/OCAP2/osu-parsers/internal/geo"
	"github.com/OCAP2/osu-parsers/internal/parsing"
	"github.com/OCAP2/osu-parsers/internal/section"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

// MaxRepeats caps the repeat count of a slider.
const MaxRepeats = 9000

var (
	ErrUnknownHitObjectType = errors.New("unknown hit object type")
	ErrExcessiveRepeatCount = errors.New("repeat count is way too high")
)

// Decoder parses hit object lines of one beatmap. Combo state is chained from
// one line to the next, so a Decoder must not be shared between beatmaps.
type Decoder struct {
	FileFormat int
	Mode       int
	Offset     float64

	forceNewCombo    bool
	extraComboOffset int
}

// NewDecoder returns a decoder for a beatmap of the given format version and ruleset.
func NewDecoder(fileFormat, mode int, offset float64) *Decoder {
	return &Decoder{FileFormat: fileFormat, Mode: mode, Offset: offset}
}

// DecodeLine parses `x,y,time,type,hitSound,extras...`.
// An unknown type or an excessive repeat count is fatal; other errors only
// invalidate the line.
func (d *Decoder) DecodeLine(line string) (core.HitObject, error) {
	data := strings.Split(line, ",")
	for i := range data {
		data[i] = strings.TrimSpace(data[i])
	}
	if len(data) < 5 {
		return nil, fmt.Errorf("expected at least 5 fields, got %d", len(data))
	}

	rawType, err := parsing.ParseInt(data[3])
	if err != nil {
		return nil, fmt.Errorf("error converting hit type: %w", err)
	}
	hitType := core.HitType(rawType)

	hitObject, err := create(hitType)
	if err != nil {
		return nil, section.Fatal(err)
	}
	base := hitObject.Base()

	x, err := parsing.ParseIntLimit(data[0], parsing.MaxCoordinateValue)
	if err != nil {
		return nil, fmt.Errorf("error converting x: %w", err)
	}
	y, err := parsing.ParseIntLimit(data[1], parsing.MaxCoordinateValue)
	if err != nil {
		return nil, fmt.Errorf("error converting y: %w", err)
	}
	startTime, err := parsing.ParseFloat(data[2])
	if err != nil {
		return nil, fmt.Errorf("error converting start time: %w", err)
	}
	sound, err := parsing.ParseInt(data[4])
	if err != nil {
		return nil, fmt.Errorf("error converting hit sound: %w", err)
	}

	base.StartPosition = core.Vector2{X: float64(x), Y: float64(y)}
	base.StartTime = startTime + d.Offset
	base.HitType = hitType
	base.HitSound = core.HitSound(sound)

	var bank core.SampleBank
	if err := d.addExtras(data[5:], hitObject, &bank); err != nil {
		return nil, err
	}
	d.addComboOffset(hitObject)

	if len(base.Samples) == 0 {
		base.Samples = ConvertSoundType(base.HitSound, bank)
	}
	return hitObject, nil
}

func create(hitType core.HitType) (core.HitObject, error) {
	switch {
	case hitType&core.HitTypeNormal != 0:
		return &core.Hittable{}, nil
	case hitType&core.HitTypeSlider != 0:
		return &core.Slidable{}, nil
	case hitType&core.HitTypeSpinner != 0:
		return &core.Spinnable{}, nil
	case hitType&core.HitTypeHold != 0:
		return &core.Holdable{}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownHitObjectType, hitType)
}

// addComboOffset chains combo state through spinners. Only standard and
// catch use combo colours.
func (d *Decoder) addComboOffset(hitObject core.HitObject) {
	if d.Mode != core.ModeStandard && d.Mode != core.ModeCatch {
		return
	}

	hitType := hitObject.Base().HitType
	comboOffset := int(hitType&core.HitTypeComboOffset) >> 4
	newCombo := hitType&core.HitTypeNewCombo != 0

	combo, ok := core.ComboOf(hitObject)
	if !ok {
		return
	}

	if hitType&(core.HitTypeNormal|core.HitTypeSlider) != 0 {
		combo.IsNewCombo = newCombo || d.forceNewCombo
		combo.ComboOffset = comboOffset + d.extraComboOffset
		d.forceNewCombo = false
		d.extraComboOffset = 0
	}

	if hitType&core.HitTypeSpinner != 0 {
		d.forceNewCombo = d.FileFormat <= 8 || newCombo
		d.extraComboOffset += comboOffset
	}
}

func (d *Decoder) addExtras(extras []string, hitObject core.HitObject, bank *core.SampleBank) error {
	switch h := hitObject.(type) {
	case *core.Hittable:
		if len(extras) > 0 {
			return ReadSampleBank(extras[0], bank)
		}
		return nil
	case *core.Slidable:
		return d.addSliderExtras(extras, h, bank)
	case *core.Spinnable:
		return d.addSpinnerExtras(extras, h, bank)
	case *core.Holdable:
		return d.addHoldExtras(extras, h, bank)
	}
	return nil
}

func (d *Decoder) addSliderExtras(extras []string, slider *core.Slidable, bank *core.SampleBank) error {
	if len(extras) < 2 {
		return fmt.Errorf("slider needs a path and a repeat count, got %d extra fields", len(extras))
	}

	repeats, err := parsing.ParseInt(extras[1])
	if err != nil {
		return fmt.Errorf("error converting repeat count: %w", err)
	}
	if repeats > MaxRepeats {
		return section.Fatal(fmt.Errorf("%w: %d", ErrExcessiveRepeatCount, repeats))
	}
	slider.Repeats = max(0, repeats-1)

	points, err := ConvertPath(extras[0], slider.StartPosition, d.FileFormat)
	if err != nil {
		return fmt.Errorf("error converting slider path: %w", err)
	}
	slider.Path.ControlPoints = points
	slider.Path.CurveType = points[0].Type

	if len(extras) > 2 {
		length, err := parsing.ParseFloatLimit(extras[2], parsing.MaxCoordinateValue, false)
		if err != nil {
			return fmt.Errorf("error converting slider length: %w", err)
		}
		slider.Path.Distance = math.Max(0, length)
	} else {
		slider.Path.Distance = geo.PathLength(points)
	}

	if len(extras) > 5 {
		if err := ReadSampleBank(extras[5], bank); err != nil {
			return err
		}
	}

	slider.Samples = ConvertSoundType(slider.HitSound, *bank)
	slider.NodeSamples, err = nodeSamples(extras, slider, *bank)
	return err
}

func (d *Decoder) addSpinnerExtras(extras []string, spinner *core.Spinnable, bank *core.SampleBank) error {
	if len(extras) < 1 {
		return errors.New("spinner needs an end time")
	}
	endTime, err := parsing.ParseInt(extras[0])
	if err != nil {
		return fmt.Errorf("error converting end time: %w", err)
	}
	spinner.EndTime = float64(endTime) + d.Offset

	if len(extras) > 1 {
		return ReadSampleBank(extras[1], bank)
	}
	return nil
}

func (d *Decoder) addHoldExtras(extras []string, hold *core.Holdable, bank *core.SampleBank) error {
	hold.EndTime = hold.StartTime
	if len(extras) == 0 || extras[0] == "" {
		return nil
	}

	endTime, descriptor, _ := strings.Cut(extras[0], ":")
	end, err := parsing.ParseFloat(endTime)
	if err != nil {
		return fmt.Errorf("error converting end time: %w", err)
	}
	hold.EndTime = math.Max(hold.EndTime, end) + d.Offset
	return ReadSampleBank(descriptor, bank)
}
