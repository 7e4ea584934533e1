package hitobject

import (
	"strings"

	"github.com/OCAP2/osu-parsers/internal/util"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

// Encode renders the [HitObjects] section including its header.
// Mania columns are written back as decoded; x is not re-derived from the key count.
func Encode(hitObjects []core.HitObject) string {
	lines := make([]string, 0, len(hitObjects)+1)
	lines = append(lines, "[HitObjects]")
	for _, h := range hitObjects {
		lines = append(lines, EncodeLine(h))
	}
	return strings.Join(lines, "\n")
}

// EncodeLine renders one hit object.
func EncodeLine(hitObject core.HitObject) string {
	base := hitObject.Base()
	general := strings.Join([]string{
		util.FormatFloat(base.StartPosition.X),
		util.FormatFloat(base.StartPosition.Y),
		util.FormatFloat(base.StartTime),
		util.FormatInt(int(base.HitType)),
		util.FormatInt(int(base.HitSound)),
	}, ",")

	var extras []string
	sep := ","
	switch h := hitObject.(type) {
	case *core.Slidable:
		extras = append(extras, encodeSliderData(h))
	case *core.Spinnable:
		extras = append(extras, util.FormatFloat(h.EndTime))
	case *core.Holdable:
		extras = append(extras, util.FormatFloat(h.EndTime))
		sep = ":"
	}
	extras = append(extras, encodeBank(base.Samples))

	return general + "," + strings.Join(extras, sep)
}

// encodeBank writes the `normal:addition:index:volume:filename` descriptor.
func encodeBank(samples []core.HitSample) string {
	normalSet, additionSet := core.SampleSetNone, core.SampleSetNone
	normalFound, additionFound := false, false
	for _, s := range samples {
		if s.HitSound == core.HitSoundNormal && !normalFound {
			normalSet = s.SampleSet
			normalFound = true
		}
		if s.HitSound != core.HitSoundNormal && !additionFound {
			additionSet = s.SampleSet
			additionFound = true
		}
	}

	var first core.HitSample
	if len(samples) > 0 {
		first = samples[0]
	}
	return strings.Join([]string{
		util.FormatInt(int(normalSet)),
		util.FormatInt(int(additionSet)),
		util.FormatInt(first.CustomIndex),
		util.FormatInt(first.Volume),
		first.Filename,
	}, ":")
}

func encodeSliderData(slider *core.Slidable) string {
	data := []string{
		EncodePath(slider.Path.ControlPoints, slider.StartPosition),
		util.FormatInt(slider.Repeats + 1),
		util.FormatFloat(slider.Path.Distance),
	}

	adds := make([]string, len(slider.NodeSamples))
	sets := make([]string, len(slider.NodeSamples))
	for i, node := range slider.NodeSamples {
		var sound core.HitSound
		normalSet, additionSet := core.SampleSetNone, core.SampleSetNone
		for j, s := range node {
			if j == 0 {
				normalSet = s.SampleSet
				continue
			}
			sound |= s.HitSound
			additionSet = s.SampleSet
		}
		// a bare addition reads back as layered over the normal sample
		if sound != core.HitSoundNone && len(node) > 0 && node[0].HitSound == core.HitSoundNormal && !node[0].IsLayered {
			sound |= core.HitSoundNormal
		}
		adds[i] = util.FormatInt(int(sound))
		sets[i] = util.FormatInt(int(normalSet)) + ":" + util.FormatInt(int(additionSet))
	}

	data = append(data, strings.Join(adds, "|"), strings.Join(sets, "|"))
	return strings.Join(data, ",")
}
