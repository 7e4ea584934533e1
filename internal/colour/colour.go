// Package colour reads and writes the [Colours] section shared by beatmaps
// and storyboards.
package colour

import (
	"fmt"
	"strings"

	"github.com/OCAP2/osu-parsers/internal/parsing"
	"github.com/OCAP2/osu-parsers/internal/util"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

// DecodeLine reads a `key: r,g,b[,a]` line into colors. Keys other than
// SliderTrackOverride, SliderBorder and Combo* are ignored.
func DecodeLine(line string, colors *core.Colors) error {
	key, value := util.SplitKeyValue(line)

	parts := strings.Split(value, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return fmt.Errorf("color %q should be R,G,B or R,G,B,A", value)
	}
	rgba := [4]float64{0, 0, 0, 255}
	for i, p := range parts {
		v, err := parsing.ParseByte(p)
		if err != nil {
			return fmt.Errorf("error converting color: %w", err)
		}
		rgba[i] = float64(v)
	}
	color := core.Color4{Red: rgba[0], Green: rgba[1], Blue: rgba[2], Alpha: rgba[3]}

	switch {
	case key == "SliderTrackOverride":
		colors.SliderTrackColor = &color
	case key == "SliderBorder":
		colors.SliderBorderColor = &color
	case strings.HasPrefix(key, "Combo"):
		colors.ComboColors = append(colors.ComboColors, color)
	}
	return nil
}

// Encode renders the section with its header, or "" when no colour is set.
func Encode(colors core.Colors) string {
	if colors.Empty() {
		return ""
	}

	lines := []string{"[Colours]"}
	for i, c := range colors.ComboColors {
		lines = append(lines, fmt.Sprintf("Combo%d : %s", i+1, Format(c)))
	}
	if colors.SliderTrackColor != nil {
		lines = append(lines, "SliderTrackOverride : "+Format(*colors.SliderTrackColor))
	}
	if colors.SliderBorderColor != nil {
		lines = append(lines, "SliderBorder : "+Format(*colors.SliderBorderColor))
	}
	return strings.Join(lines, "\n")
}

// Format renders `r,g,b`, appending alpha only when it is not opaque.
func Format(c core.Color4) string {
	s := FormatRGB(c)
	if c.Alpha != 255 {
		s += "," + util.FormatFloat(c.Alpha)
	}
	return s
}

// FormatRGB renders `r,g,b`.
func FormatRGB(c core.Color4) string {
	return util.JoinFloats([]float64{c.Red, c.Green, c.Blue}, ",")
}
