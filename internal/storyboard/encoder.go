package storyboard

import (
	"fmt"
	"math"
	"strings"

	"github.com/OCAP2/osu-parsers/internal/colour"
	"github.com/OCAP2/osu-parsers/internal/util"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

// layerComments are written before each layer, in LayerOrder.
var layerComments = map[core.LayerType]string{
	core.LayerBackground: "//Storyboard Layer 0 (Background)",
	core.LayerFail:       "//Storyboard Layer 1 (Fail)",
	core.LayerPass:       "//Storyboard Layer 2 (Pass)",
	core.LayerForeground: "//Storyboard Layer 3 (Foreground)",
	core.LayerOverlay:    "//Storyboard Layer 4 (Overlay)",
}

// Encode renders a standalone .osb file. A nil storyboard encodes to "".
func Encode(sb *core.Storyboard) string {
	if sb == nil {
		return ""
	}

	sections := []string{fmt.Sprintf("osu file format v%d", sb.FileFormat)}
	if sb.UseSkinSprites {
		sections = append(sections, "[General]\nUseSkinSprites: 1")
	}
	events := []string{"[Events]", "//Background and Video events"}
	if videos := EncodeVideos(sb); videos != "" {
		events = append(events, videos)
	}
	events = append(events, EncodeLayers(sb))
	sections = append(sections, strings.Join(events, "\n"))
	if c := colour.Encode(sb.Colors); c != "" {
		sections = append(sections, c)
	}
	return strings.Join(sections, "\n\n") + "\n"
}

// EncodeVideos renders the video layer, or "" when it is empty.
func EncodeVideos(sb *core.Storyboard) string {
	return encodeLayer(sb.Layer(core.LayerVideo))
}

// EncodeLayers renders the five drawable layers, each preceded by its comment.
func EncodeLayers(sb *core.Storyboard) string {
	var lines []string
	for _, t := range core.LayerOrder {
		comment, ok := layerComments[t]
		if !ok {
			continue
		}
		lines = append(lines, comment)
		if encoded := encodeLayer(sb.Layer(t)); encoded != "" {
			lines = append(lines, encoded)
		}
	}
	return strings.Join(lines, "\n")
}

func encodeLayer(layer *core.Layer) string {
	var lines []string
	for _, element := range layer.Elements {
		lines = append(lines, encodeElement(element, layer.Type))

		var sprite *core.Sprite
		switch e := element.(type) {
		case *core.Sprite:
			sprite = e
		case *core.Animation:
			sprite = &e.Sprite
		default:
			continue
		}

		for _, loop := range sprite.Loops {
			if !loop.HasCommands() {
				continue
			}
			lines = append(lines, fmt.Sprintf(" L,%s,%d", util.FormatFloat(loop.LoopStartTime), loop.DeclaredCount()))
			lines = append(lines, encodeGroup(loop.TimelineGroup, 2)...)
		}
		lines = append(lines, encodeGroup(sprite.TimelineGroup, 1)...)
		for _, trigger := range sprite.Triggers {
			if !trigger.HasCommands() {
				continue
			}
			lines = append(lines, encodeTrigger(trigger))
			lines = append(lines, encodeGroup(trigger.TimelineGroup, 2)...)
		}
	}
	return strings.Join(lines, "\n")
}

func encodeElement(element core.Element, layer core.LayerType) string {
	switch e := element.(type) {
	case *core.Animation:
		return strings.Join([]string{
			"Animation",
			layer.String(),
			e.Origin.String(),
			quote(e.FilePath),
			util.FormatFloat(e.StartPosition.X),
			util.FormatFloat(e.StartPosition.Y),
			util.FormatInt(e.FrameCount),
			util.FormatFloat(e.FrameDelay),
			e.LoopType.String(),
		}, ",")
	case *core.Sprite:
		return strings.Join([]string{
			"Sprite",
			layer.String(),
			e.Origin.String(),
			quote(e.FilePath),
			util.FormatFloat(e.StartPosition.X),
			util.FormatFloat(e.StartPosition.Y),
		}, ",")
	case *core.Sample:
		return strings.Join([]string{
			"Sample",
			util.FormatFloat(e.StartTime),
			layer.String(),
			quote(e.FilePath),
			util.FormatInt(e.Volume),
		}, ",")
	case *core.Video:
		return strings.Join([]string{"Video", util.FormatFloat(e.StartTime), quote(e.FilePath)}, ",")
	}
	return ""
}

// encodeTrigger writes the trigger header. Fields are positional, so an
// unbounded time drops itself and everything after it.
func encodeTrigger(t *core.CommandTrigger) string {
	if math.IsInf(t.TriggerStartTime, 0) {
		return " T," + t.TriggerName
	}
	if math.IsInf(t.TriggerEndTime, 0) {
		return " T," + t.TriggerName + "," + util.FormatFloat(t.TriggerStartTime)
	}
	return fmt.Sprintf(" T,%s,%s,%s,%d", t.TriggerName,
		util.FormatFloat(t.TriggerStartTime), util.FormatFloat(t.TriggerEndTime), t.GroupNumber)
}

// encodeGroup writes the commands of a group at the given depth. An MX
// followed by an MY with the same easing and times collapses into one M.
func encodeGroup(g *core.TimelineGroup, depth int) []string {
	indent := strings.Repeat(" ", depth)
	commands := g.Commands()

	var lines []string
	for i := 0; i < len(commands); i++ {
		current := commands[i]
		if i < len(commands)-1 {
			next := commands[i+1]
			ci, ni := current.Info(), next.Info()
			if ci.Type == core.CommandMovementX && ni.Type == core.CommandMovementY &&
				ci.Easing == ni.Easing && ci.StartTime == ni.StartTime && ci.EndTime == ni.EndTime {
				lines = append(lines, indent+encodeMove(current, next))
				i++
				continue
			}
		}
		lines = append(lines, indent+encodeCommand(current))
	}
	return lines
}

func commandHead(t core.CommandType, info core.CommandInfo) []string {
	end := ""
	if info.EndTime != info.StartTime {
		end = util.FormatFloat(info.EndTime)
	}
	return []string{
		string(t),
		util.FormatInt(int(info.Easing)),
		util.FormatFloat(info.StartTime),
		end,
	}
}

func encodeMove(moveX, moveY core.TimelineCommand) string {
	sx, ex := moveX.Values()
	sy, ey := moveY.Values()
	parts := append(commandHead(core.CommandMovement, moveX.Info()), formatValue(sx), formatValue(sy))
	if !moveX.ValuesEqual() || !moveY.ValuesEqual() {
		parts = append(parts, formatValue(ex), formatValue(ey))
	}
	return strings.Join(parts, ",")
}

func encodeCommand(c core.TimelineCommand) string {
	info := c.Info()
	parts := commandHead(info.Type, info)

	if info.Type == core.CommandParameter {
		parts = append(parts, string(info.Parameter))
		return strings.Join(parts, ",")
	}

	start, end := c.Values()
	parts = append(parts, formatValue(start))
	if !c.ValuesEqual() {
		parts = append(parts, formatValue(end))
	}
	return strings.Join(parts, ",")
}

func formatValue(v any) string {
	switch v := v.(type) {
	case float64:
		return util.FormatFloat(v)
	case core.Vector2:
		return util.FormatFloat(v.X) + "," + util.FormatFloat(v.Y)
	case core.Color4:
		return colour.FormatRGB(v)
	}
	return fmt.Sprint(v)
}

func quote(path string) string {
	return `"` + path + `"`
}
