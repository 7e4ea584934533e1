package hitobject

import (
	"fmt"
	"strings"

	"github.com/OCAP2/osu-parsers/internal/parsing"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

// ReadSampleBank fills bank from a `normal:addition:index:volume:filename`
// descriptor. An empty descriptor leaves bank untouched.
func ReadSampleBank(descriptor string, bank *core.SampleBank) error {
	if descriptor == "" {
		return nil
	}

	split := strings.Split(descriptor, ":")
	if len(split) < 2 {
		return fmt.Errorf("sample bank %q needs at least two fields", descriptor)
	}

	normal, err := parsing.ParseInt(split[0])
	if err != nil {
		return fmt.Errorf("error converting normal set: %w", err)
	}
	addition, err := parsing.ParseInt(split[1])
	if err != nil {
		return fmt.Errorf("error converting addition set: %w", err)
	}
	bank.NormalSet = core.SampleSet(normal)
	bank.AdditionSet = core.SampleSet(addition)
	if bank.AdditionSet == core.SampleSetNone {
		bank.AdditionSet = bank.NormalSet
	}

	if len(split) > 2 {
		if bank.CustomIndex, err = parsing.ParseInt(split[2]); err != nil {
			return fmt.Errorf("error converting custom index: %w", err)
		}
	}
	if len(split) > 3 {
		volume, err := parsing.ParseInt(split[3])
		if err != nil {
			return fmt.Errorf("error converting volume: %w", err)
		}
		bank.Volume = max(0, volume)
	}

	bank.Filename = ""
	if len(split) > 4 {
		bank.Filename = split[4]
	}
	return nil
}

// ConvertSoundType expands a hit-sound bitmask into samples. A bank with a
// filename yields that single file instead.
func ConvertSoundType(sound core.HitSound, bank core.SampleBank) []core.HitSample {
	if bank.Filename != "" {
		return []core.HitSample{{
			HitSound:    core.HitSoundNormal,
			SampleSet:   bank.NormalSet,
			CustomIndex: bank.CustomIndex,
			Filename:    bank.Filename,
			Volume:      bank.Volume,
		}}
	}

	samples := []core.HitSample{{
		HitSound:  core.HitSoundNormal,
		IsLayered: sound != core.HitSoundNone && sound&core.HitSoundNormal == 0,
	}}
	for _, addition := range []core.HitSound{core.HitSoundFinish, core.HitSoundWhistle, core.HitSoundClap} {
		if sound&addition != 0 {
			samples = append(samples, core.HitSample{HitSound: addition})
		}
	}

	for i := range samples {
		samples[i].SampleSet = bank.AdditionSet
		if i == 0 {
			samples[i].SampleSet = bank.NormalSet
		}
		samples[i].Volume = bank.Volume
		if bank.CustomIndex >= 2 {
			samples[i].CustomIndex = bank.CustomIndex
		}
	}
	return samples
}

// nodeSamples derives the samples of every slider node from the optional
// `adds` and `sets` fields, falling back to the object's sound and bank.
func nodeSamples(extras []string, slider *core.Slidable, bank core.SampleBank) ([][]core.HitSample, error) {
	nodes := slider.Repeats + 2

	banks := make([]core.SampleBank, nodes)
	for i := range banks {
		banks[i] = bank
	}
	if len(extras) > 4 && extras[4] != "" {
		sets := strings.Split(extras[4], "|")
		for i := 0; i < nodes && i < len(sets); i++ {
			if err := ReadSampleBank(sets[i], &banks[i]); err != nil {
				return nil, fmt.Errorf("node %d: %w", i, err)
			}
		}
	}

	sounds := make([]core.HitSound, nodes)
	for i := range sounds {
		sounds[i] = slider.HitSound
	}
	if len(extras) > 3 && extras[3] != "" {
		adds := strings.Split(extras[3], "|")
		for i := 0; i < nodes && i < len(adds); i++ {
			// unreadable additions count as no sound
			v, _ := parsing.ParseInt(adds[i])
			sounds[i] = core.HitSound(v)
		}
	}

	samples := make([][]core.HitSample, nodes)
	for i := range samples {
		samples[i] = ConvertSoundType(sounds[i], banks[i])
	}
	return samples, nil
}
