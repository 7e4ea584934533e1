// Package replay reads and writes the text payloads embedded in .osr files:
// the pipe-separated input frames and the life bar graph.
package replay

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/OCAP2/osu-parsers/internal/parsing"
	"github.com/OCAP2/osu-parsers/internal/util"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

// Sentinel is the terminating frame written after the last input frame. It
// carries the RNG seed in game-written replays and is never decoded.
const Sentinel = "-12345|0|0|0"

var ErrNonLegacyFrame = errors.New("replay frame can not be converted to the legacy format")

// skipPosition marks the placeholder frames some clients write first.
var skipPosition = core.Vector2{X: 256, Y: -500}

// DecodeFrames parses `Δt|x|y|buttons` frames. Times accumulate over every
// parsed frame, including the ones that are dropped.
func DecodeFrames(data string) []core.ReplayFrame {
	if data == "" {
		return nil
	}

	var frames []core.ReplayFrame
	lastTime := 0.0
	for i, raw := range strings.Split(data, ",") {
		if raw == "" {
			continue
		}
		fields := strings.Split(raw, "|")
		if len(fields) < 4 || fields[0] == "-12345" {
			continue
		}

		frame, err := decodeFrame(fields)
		if err != nil {
			continue
		}
		lastTime += frame.Interval

		if i < 2 && frame.Position == skipPosition {
			continue
		}
		if frame.Interval < 0 {
			continue
		}

		frame.StartTime = lastTime
		frames = append(frames, frame)
	}
	return frames
}

func decodeFrame(fields []string) (*core.LegacyReplayFrame, error) {
	interval, err := parsing.ParseFloat(fields[0])
	if err != nil {
		return nil, fmt.Errorf("error converting interval: %w", err)
	}
	x, err := parsing.ParseFloatLimit(fields[1], parsing.MaxCoordinateValue, false)
	if err != nil {
		return nil, fmt.Errorf("error converting x: %w", err)
	}
	y, err := parsing.ParseFloatLimit(fields[2], parsing.MaxCoordinateValue, false)
	if err != nil {
		return nil, fmt.Errorf("error converting y: %w", err)
	}
	buttons, err := parsing.ParseInt(fields[3])
	if err != nil {
		return nil, fmt.Errorf("error converting button state: %w", err)
	}
	return &core.LegacyReplayFrame{
		Interval:    interval,
		Position:    core.Vector2{X: x, Y: y},
		ButtonState: core.ReplayButtonState(buttons),
	}, nil
}

// EncodeFrames writes frames as rounded time deltas followed by Sentinel.
func EncodeFrames(frames []core.ReplayFrame) (string, error) {
	encoded := make([]string, 0, len(frames)+1)
	lastTime := 0.0
	for i, f := range frames {
		legacy, err := toLegacy(f)
		if err != nil {
			return "", fmt.Errorf("frame %d: %w", i, err)
		}
		t := math.Round(f.FrameTime())
		encoded = append(encoded, strings.Join([]string{
			util.FormatFloat(t - lastTime),
			util.FormatFloat(legacy.Position.X),
			util.FormatFloat(legacy.Position.Y),
			util.FormatInt(int(legacy.ButtonState)),
		}, "|"))
		lastTime = t
	}
	encoded = append(encoded, Sentinel)
	return strings.Join(encoded, ","), nil
}

func toLegacy(f core.ReplayFrame) (*core.LegacyReplayFrame, error) {
	switch v := f.(type) {
	case *core.LegacyReplayFrame:
		return v, nil
	case core.LegacyConvertible:
		if legacy, ok := v.ToLegacy(); ok {
			return legacy, nil
		}
	}
	return nil, ErrNonLegacyFrame
}

// DecodeLifeBar parses `time|health` pairs. Malformed pairs are skipped.
func DecodeLifeBar(data string) []core.LifeBarFrame {
	if data == "" {
		return nil
	}

	var frames []core.LifeBarFrame
	for _, raw := range strings.Split(data, ",") {
		fields := strings.Split(raw, "|")
		if len(fields) < 2 {
			continue
		}
		t, err := parsing.ParseInt(fields[0])
		if err != nil {
			continue
		}
		health, err := parsing.ParseFloat(fields[1])
		if err != nil {
			continue
		}
		frames = append(frames, core.LifeBarFrame{StartTime: float64(t), Health: health})
	}
	return frames
}

func EncodeLifeBar(frames []core.LifeBarFrame) string {
	parts := make([]string, len(frames))
	for i, f := range frames {
		parts[i] = util.FormatFloat(f.StartTime) + "|" + util.FormatFloat(f.Health)
	}
	return strings.Join(parts, ",")
}
