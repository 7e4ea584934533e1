package timing

import (
	"strings"
	"testing"

	"github.com/OCAP2/osu-parsers/internal/section"
	"github.com/OCAP2/osu-parsers/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, mode int, lines ...string) *core.ControlPointInfo {
	t.Helper()
	info := core.NewControlPointInfo()
	d := NewDecoder(info, 0)
	for _, l := range lines {
		require.NoError(t, d.DecodeLine(l, mode))
	}
	d.Flush()
	return info
}

func TestDecodeLine_UninheritedLine(t *testing.T) {
	info := decodeLines(t, core.ModeStandard, "1000,500,4,1,0,60,1,0")

	require.Len(t, info.Groups, 1)
	g := info.Groups[0]
	assert.Equal(t, 1000.0, g.StartTime)
	require.Len(t, g.ControlPoints, 4)
	assert.Equal(t, core.KindTiming, g.ControlPoints[0].Kind(), "timing points lead the group")

	timing := g.Find(core.KindTiming).(*core.TimingPoint)
	assert.Equal(t, 500.0, timing.BeatLength)
	assert.Equal(t, 4, timing.TimeSignature)
	assert.Equal(t, 1000.0, timing.StartTime())

	difficulty := g.Find(core.KindDifficulty).(*core.DifficultyPoint)
	assert.Equal(t, 1.0, difficulty.SliderVelocity)
	assert.True(t, difficulty.GenerateTicks)
	assert.True(t, difficulty.IsLegacy)

	effect := g.Find(core.KindEffect).(*core.EffectPoint)
	assert.False(t, effect.Kiai)

	sample := g.Find(core.KindSample).(*core.SamplePoint)
	assert.Equal(t, core.SampleSetNormal, sample.SampleSet)
	assert.Equal(t, 60, sample.Volume)

	assert.Len(t, info.TimingPoints, 1)
	assert.Len(t, info.DifficultyPoints, 1)
	assert.Len(t, info.EffectPoints, 1)
	assert.Len(t, info.SamplePoints, 1)
}

func TestDecodeLine_Fields(t *testing.T) {
	tests := []struct {
		name  string
		mode  int
		line  string
		check func(t *testing.T, info *core.ControlPointInfo)
	}{
		{
			name: "two fields use defaults",
			line: "250,400",
			check: func(t *testing.T, info *core.ControlPointInfo) {
				timing := info.TimingPointAt(250)
				assert.Equal(t, 400.0, timing.BeatLength)
				assert.Equal(t, 4, timing.TimeSignature)
				sample := info.SamplePointAt(250)
				assert.Equal(t, core.SampleSetNone, sample.SampleSet)
				assert.Equal(t, 100, sample.Volume)
			},
		},
		{
			name: "inherited line has no timing point",
			line: "0,-50,4,2,1,70,0,1",
			check: func(t *testing.T, info *core.ControlPointInfo) {
				assert.Empty(t, info.TimingPoints)
				difficulty := info.DifficultyPointAt(0)
				assert.Equal(t, 2.0, difficulty.SliderVelocity)
				assert.Equal(t, 0.5, difficulty.BpmMultiplier)
				effect := info.EffectPointAt(0)
				assert.True(t, effect.Kiai)
				assert.Equal(t, 1.0, effect.ScrollSpeed, "standard keeps the default scroll speed")
				sample := info.SamplePointAt(0)
				assert.Equal(t, core.SampleSetSoft, sample.SampleSet)
				assert.Equal(t, 1, sample.CustomIndex)
			},
		},
		{
			name: "mania scroll speed follows slider velocity",
			mode: core.ModeMania,
			line: "0,-25,4,1,0,100,0,0",
			check: func(t *testing.T, info *core.ControlPointInfo) {
				assert.Equal(t, 4.0, info.EffectPointAt(0).ScrollSpeed)
			},
		},
		{
			name: "bpm multiplier is clamped",
			line: "0,-5,4,1,0,100,0,0",
			check: func(t *testing.T, info *core.ControlPointInfo) {
				assert.Equal(t, 0.1, info.DifficultyPointAt(0).BpmMultiplier)
			},
		},
		{
			name: "omit first bar line",
			line: "0,300,4,1,0,100,1,8",
			check: func(t *testing.T, info *core.ControlPointInfo) {
				effect := info.EffectPointAt(0)
				assert.True(t, effect.OmitFirstBarLine)
				assert.False(t, effect.Kiai)
			},
		},
		{
			name: "NaN on an inherited line disables ticks",
			line: "0,NaN,4,1,0,100,0,0",
			check: func(t *testing.T, info *core.ControlPointInfo) {
				assert.False(t, info.DifficultyPointAt(0).GenerateTicks)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, decodeLines(t, tt.mode, tt.line))
		})
	}
}

func TestDecodeLine_Errors(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		target error
	}{
		{"zero time signature", "0,500,0,1,0,100,1,0", ErrInvalidTimeSignature},
		{"NaN beat length on timing change", "0,NaN,4,1,0,100,1,0", ErrNaNBeatLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(core.NewControlPointInfo(), 0)
			err := d.DecodeLine(tt.line, core.ModeStandard)
			assert.ErrorIs(t, err, tt.target)
			assert.True(t, section.IsFatal(err))
		})
	}

	d := NewDecoder(core.NewControlPointInfo(), 0)
	err := d.DecodeLine("1000", core.ModeStandard)
	assert.Error(t, err)
	assert.False(t, section.IsFatal(err))
	assert.Error(t, d.DecodeLine("abc,500", core.ModeStandard))
}

func TestDecodeLine_InheritedWinsWithinBatch(t *testing.T) {
	orders := map[string][]string{
		"inherited after":  {"0,500,4,1,0,100,1,0", "0,-50,4,1,0,100,0,1"},
		"inherited before": {"0,-50,4,1,0,100,0,1", "0,500,4,1,0,100,1,0"},
	}

	for name, lines := range orders {
		t.Run(name, func(t *testing.T) {
			info := decodeLines(t, core.ModeStandard, lines...)
			require.Len(t, info.Groups, 1)
			g := info.Groups[0]
			assert.Len(t, g.ControlPoints, 4)
			assert.Equal(t, 500.0, g.Find(core.KindTiming).(*core.TimingPoint).BeatLength)
			assert.Equal(t, 2.0, g.Find(core.KindDifficulty).(*core.DifficultyPoint).SliderVelocity)
			assert.True(t, g.Find(core.KindEffect).(*core.EffectPoint).Kiai)
		})
	}
}

func TestDecodeLine_RedundantPointsStayInGroup(t *testing.T) {
	info := decodeLines(t, core.ModeStandard,
		"0,500,4,1,0,100,1,0",
		"1000,-100,4,1,0,100,0,0",
	)

	require.Len(t, info.Groups, 2)
	later := info.Groups[1]
	assert.Len(t, later.ControlPoints, 3)
	for _, p := range later.ControlPoints {
		assert.True(t, p.Redundant(), "%s point repeats the active state", p.Kind())
	}
	assert.Len(t, info.DifficultyPoints, 1)
	assert.Len(t, info.SamplePoints, 1)
}

func TestBatch_FlushKeepsLastPerVariant(t *testing.T) {
	info := core.NewControlPointInfo()
	var b Batch

	b.Add(info, &core.SamplePoint{SampleSet: core.SampleSetSoft, Volume: 50}, 10, false)
	b.Add(info, &core.SamplePoint{SampleSet: core.SampleSetDrum, Volume: 80}, 10, false)
	assert.Equal(t, 2, b.Len())

	b.Add(info, core.NewEffectPoint(), 20, false)
	assert.Equal(t, 1, b.Len(), "a new timestamp flushes the previous batch")

	b.Flush(info)
	assert.Equal(t, 0, b.Len())

	sample := info.SamplePointAt(10)
	assert.Equal(t, core.SampleSetDrum, sample.SampleSet)
	assert.Equal(t, 80, sample.Volume)
	assert.Len(t, info.Groups, 2)
}

func TestEncoder_Encode(t *testing.T) {
	lines := []string{
		"0,500,4,1,0,100,1,1",
		"0,-50,4,1,0,100,0,1",
		"2000,-100,4,2,1,70,0,0",
	}
	info := decodeLines(t, core.ModeStandard, lines...)

	got := NewEncoder().Encode(info)
	assert.Equal(t, strings.Join([]string{
		"[TimingPoints]",
		"0,500,4,1,0,100,1,1",
		"0,-50,4,1,0,100,0,1",
		"2000,-100,4,2,1,70,0,0",
	}, "\n"), got)
}

func TestEncoder_RoundTrip(t *testing.T) {
	info := decodeLines(t, core.ModeStandard,
		"0,333.33,3,2,0,80,1,0",
		"1500,-75,3,2,0,80,0,1",
		"3000,250,4,3,2,40,1,8",
	)
	encoded := NewEncoder().Encode(info)

	lines := strings.Split(encoded, "\n")
	require.Equal(t, "[TimingPoints]", lines[0])
	again := decodeLines(t, core.ModeStandard, lines[1:]...)

	require.Len(t, again.Groups, len(info.Groups))
	for i, g := range info.Groups {
		other := again.Groups[i]
		assert.Equal(t, g.StartTime, other.StartTime)
		if timing, ok := g.Find(core.KindTiming).(*core.TimingPoint); ok {
			otherTiming := other.Find(core.KindTiming).(*core.TimingPoint)
			assert.Equal(t, timing.BeatLength, otherTiming.BeatLength)
			assert.Equal(t, timing.TimeSignature, otherTiming.TimeSignature)
		}
	}
	assert.InDelta(t, info.DifficultyPointAt(1500).SliderVelocity, again.DifficultyPointAt(1500).SliderVelocity, 1e-9)
	assert.Equal(t, info.EffectPointAt(3000).OmitFirstBarLine, again.EffectPointAt(3000).OmitFirstBarLine)
	assert.Equal(t, info.SamplePointAt(3000).Volume, again.SamplePointAt(3000).Volume)
}

func TestEncoder_Empty(t *testing.T) {
	assert.Equal(t, "[TimingPoints]", NewEncoder().Encode(core.NewControlPointInfo()))
	assert.Equal(t, "[TimingPoints]", NewEncoder().Encode(nil))
}
