// Package storyboard decodes and encodes storyboard scripts, either standalone
// .osb files or the storyboard lines of a beatmap's [Events] section.
package storyboard

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/OCAP2/osu-parsers/internal/colour"
	"github.com/OCAP2/osu-parsers/internal/parsing"
	"github.com/OCAP2/osu-parsers/internal/section"
	"github.com/OCAP2/osu-parsers/internal/util"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

var (
	ErrNoData             = errors.New("data not found")
	ErrUnknownEventType   = errors.New("unknown event type")
	ErrUnknownCommandType = errors.New("unknown command type")
	ErrUnknownParameter   = errors.New("unknown parameter type")
)

// Decoder builds storyboards from text. It holds no per-decode state and may
// be shared between goroutines.
type Decoder struct {
	logger *slog.Logger
}

// NewDecoder creates a decoder logging skipped lines to logger (nil uses the default logger).
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{logger: logger}
}

// DecodeString decodes one or more sources into a single storyboard. A
// beatmap's text may be passed first, followed by its .osb file.
func (d *Decoder) DecodeString(sources ...string) (*core.Storyboard, error) {
	lines := make([][]string, 0, len(sources))
	for _, s := range sources {
		lines = append(lines, section.SplitLines(s))
	}
	return d.DecodeLines(lines...)
}

// DecodeLines is DecodeString on pre-split lines.
func (d *Decoder) DecodeLines(sources ...[]string) (*core.Storyboard, error) {
	return d.decode(core.LatestFileFormat, sources)
}

// DecodeEventLines decodes the storyboard lines collected from a beatmap's
// [Events] section. fileFormat is the beatmap's format version.
func (d *Decoder) DecodeEventLines(lines []string, fileFormat int) (*core.Storyboard, error) {
	return d.decode(fileFormat, [][]string{lines})
}

func (d *Decoder) decode(fileFormat int, sources [][]string) (*core.Storyboard, error) {
	if len(sources) == 0 || len(sources[0]) == 0 {
		return nil, ErrNoData
	}

	ctx := &decodeContext{storyboard: core.NewStoryboard()}
	ctx.storyboard.FileFormat = fileFormat

	skipped := 0
	for i, lines := range sources {
		// every source starts in [Events] with all sections open again
		sections := section.NewMap()
		sections.Set(section.General, true)
		sections.Set(section.Variables, true)
		sections.Set(section.Events, true)
		sections.Set(section.Colours, true)
		sections.Begin(section.Events)

		m := section.NewMachine(sections, d.logger)
		m.Preprocess = ctx.substitute
		if err := m.Run(lines, ctx); err != nil {
			return nil, fmt.Errorf("source %d: %w", i+1, err)
		}
		skipped += m.Skipped()
	}
	ctx.commit()

	d.logger.Debug("Decoded storyboard",
		"fileFormat", ctx.storyboard.FileFormat,
		"variables", len(ctx.storyboard.Variables),
		"skipped", skipped)
	return ctx.storyboard, nil
}

// decodeContext is the state of one decode: the storyboard being built, the
// element receiving commands and its open compound.
type decodeContext struct {
	storyboard *core.Storyboard
	sprite     *core.Sprite
	group      *core.TimelineGroup
}

func (c *decodeContext) FileFormat(line string) error {
	_, version, _ := strings.Cut(line, section.FileFormatMarker)
	v, err := parsing.ParseInt(version)
	if err != nil {
		return fmt.Errorf("error converting file format: %w", err)
	}
	c.storyboard.FileFormat = v
	return nil
}

func (c *decodeContext) Line(s section.Section, line string) error {
	switch s {
	case section.General:
		if key, value := util.SplitKeyValue(line); key == "UseSkinSprites" {
			c.storyboard.UseSkinSprites = parsing.ParseBool(value)
		}
		return nil
	case section.Variables:
		c.declare(line)
		return nil
	case section.Events:
		return c.event(line)
	case section.Colours:
		return colour.DecodeLine(line, &c.storyboard.Colors)
	}
	return nil
}

// declare reads a `$name=value` line.
func (c *decodeContext) declare(line string) {
	if !strings.HasPrefix(line, "$") {
		return
	}
	pair := strings.Split(line, "=")
	if len(pair) != 2 {
		return
	}
	name, value := pair[0], strings.TrimRight(pair[1], " \t")
	for i := range c.storyboard.Variables {
		if c.storyboard.Variables[i].Name == name {
			c.storyboard.Variables[i].Value = value
			return
		}
	}
	c.storyboard.Variables = append(c.storyboard.Variables, core.Variable{Name: name, Value: value})
}

// substitute replaces every declared variable in line, in declaration order.
func (c *decodeContext) substitute(line string) string {
	if !strings.Contains(line, "$") {
		return line
	}
	for _, v := range c.storyboard.Variables {
		line = strings.ReplaceAll(line, v.Name, v.Value)
	}
	return line
}

// commit finalises the open element.
func (c *decodeContext) commit() {
	if c.sprite != nil {
		c.sprite.Commit()
	}
	c.sprite = nil
	c.group = nil
}

func (c *decodeContext) event(line string) error {
	depth := 0
	for depth < len(line) && (line[depth] == ' ' || line[depth] == '_') {
		depth++
	}
	line = line[depth:]

	if depth < 2 && c.sprite != nil {
		c.group = c.sprite.TimelineGroup
	}

	switch depth {
	case 0:
		return c.element(line)
	case 1:
		return c.compoundOrCommand(line)
	default:
		return c.command(line)
	}
}

// ParseEventType reads the first field of an [Events] line. Indented lines
// are storyboard commands.
func ParseEventType(field string) (core.EventType, error) {
	if strings.HasPrefix(field, " ") || strings.HasPrefix(field, "_") {
		return core.EventStoryboardCommand, nil
	}
	t, err := parsing.ParseEnum(core.EventTypes, field)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownEventType, field)
	}
	return t, nil
}

func (c *decodeContext) element(line string) error {
	data := strings.Split(line, ",")
	eventType, err := ParseEventType(data[0])
	if err != nil {
		return section.Fatal(err)
	}

	c.commit()

	switch eventType {
	case core.EventVideo:
		if len(data) < 3 {
			return fmt.Errorf("video needs a time and a path, got %d fields", len(data))
		}
		offset, err := parsing.ParseInt(data[1])
		if err != nil {
			return fmt.Errorf("error converting video offset: %w", err)
		}
		layer := c.storyboard.Layer(core.LayerVideo)
		layer.Elements = append(layer.Elements, &core.Video{
			FilePath:  util.StripQuotes(data[2]),
			StartTime: float64(offset),
		})

	case core.EventSprite, core.EventAnimation:
		return c.spriteElement(eventType, data)

	case core.EventSample:
		if len(data) < 4 {
			return fmt.Errorf("sample needs a time, a layer and a path, got %d fields", len(data))
		}
		time, err := parsing.ParseFloat(data[1])
		if err != nil {
			return fmt.Errorf("error converting sample time: %w", err)
		}
		layer, err := parsing.ParseEnum(core.LayerTypes, data[2])
		if err != nil {
			return err
		}
		volume := 100
		if len(data) > 4 {
			if volume, err = parsing.ParseInt(data[4]); err != nil {
				return fmt.Errorf("error converting sample volume: %w", err)
			}
		}
		l := c.storyboard.Layer(layer)
		l.Elements = append(l.Elements, &core.Sample{
			FilePath:  util.StripQuotes(data[3]),
			StartTime: time,
			Volume:    volume,
		})
	}
	return nil
}

func (c *decodeContext) spriteElement(eventType core.EventType, data []string) error {
	need := 6
	if eventType == core.EventAnimation {
		need = 8
	}
	if len(data) < need {
		return fmt.Errorf("%s needs %d fields, got %d", eventType, need, len(data))
	}

	layerType, err := parsing.ParseEnum(core.LayerTypes, data[1])
	if err != nil {
		return err
	}
	origin, err := parsing.ParseEnum(core.Origins, data[2])
	if err != nil {
		origin = core.OriginTopLeft
	}
	x, err := parsing.ParseFloatLimit(data[4], parsing.MaxCoordinateValue, false)
	if err != nil {
		return fmt.Errorf("error converting x: %w", err)
	}
	y, err := parsing.ParseFloatLimit(data[5], parsing.MaxCoordinateValue, false)
	if err != nil {
		return fmt.Errorf("error converting y: %w", err)
	}
	sprite := core.NewSprite(util.StripQuotes(data[3]), origin, core.Vector2{X: x, Y: y})

	var element core.Element = sprite
	if eventType == core.EventAnimation {
		frameCount, err := parsing.ParseInt(data[6])
		if err != nil {
			return fmt.Errorf("error converting frame count: %w", err)
		}
		frameDelay, err := parsing.ParseFloat(data[7])
		if err != nil {
			return fmt.Errorf("error converting frame delay: %w", err)
		}
		if c.storyboard.FileFormat < 6 {
			frameDelay = math.Round(0.015*frameDelay) * 1.186 * (1000.0 / 60)
		}
		loopType := core.LoopForever
		if len(data) > 8 {
			if lt, err := parsing.ParseEnum(core.LoopTypes, data[8]); err == nil {
				loopType = lt
			}
		}
		animation := &core.Animation{
			Sprite:     *sprite,
			FrameCount: frameCount,
			FrameDelay: frameDelay,
			LoopType:   loopType,
		}
		sprite = &animation.Sprite
		element = animation
	}

	layer := c.storyboard.Layer(layerType)
	layer.Elements = append(layer.Elements, element)
	c.sprite = sprite
	c.group = sprite.TimelineGroup
	return nil
}

func (c *decodeContext) compoundOrCommand(line string) error {
	data := strings.Split(line, ",")

	switch data[0] {
	case "T":
		if len(data) < 2 {
			return errors.New("trigger needs a name")
		}
		start, end, group := math.Inf(-1), math.Inf(1), 0
		var err error
		if len(data) > 2 {
			if start, err = parsing.ParseFloat(data[2]); err != nil {
				return fmt.Errorf("error converting trigger start: %w", err)
			}
		}
		if len(data) > 3 {
			if end, err = parsing.ParseFloat(data[3]); err != nil {
				return fmt.Errorf("error converting trigger end: %w", err)
			}
		}
		if len(data) > 4 {
			if group, err = parsing.ParseInt(data[4]); err != nil {
				return fmt.Errorf("error converting trigger group: %w", err)
			}
		}
		if c.sprite != nil {
			c.group = c.sprite.AddTrigger(data[1], start, end, group).TimelineGroup
		}
		return nil

	case "L":
		if len(data) < 3 {
			return errors.New("loop needs a start time and a count")
		}
		start, err := parsing.ParseFloat(data[1])
		if err != nil {
			return fmt.Errorf("error converting loop start: %w", err)
		}
		count, err := parsing.ParseInt(data[2])
		if err != nil {
			return fmt.Errorf("error converting loop count: %w", err)
		}
		if c.sprite != nil {
			c.group = c.sprite.AddLoop(start, count).TimelineGroup
		}
		return nil
	}

	return c.command(line)
}

func (c *decodeContext) command(line string) error {
	data := strings.Split(line, ",")
	commandType := core.CommandType(data[0])

	switch commandType {
	case core.CommandFade, core.CommandScale, core.CommandRotation,
		core.CommandMovementX, core.CommandMovementY, core.CommandMovement,
		core.CommandVectorScale, core.CommandColour, core.CommandParameter:
	default:
		return section.Fatal(fmt.Errorf("%w: %q", ErrUnknownCommandType, data[0]))
	}

	if len(data) < 5 {
		return fmt.Errorf("command needs at least 5 fields, got %d", len(data))
	}
	easing, err := parsing.ParseInt(data[1])
	if err != nil {
		return fmt.Errorf("error converting easing: %w", err)
	}
	startTime, err := parsing.ParseInt(data[2])
	if err != nil {
		return fmt.Errorf("error converting start time: %w", err)
	}
	endTime := startTime
	if data[3] != "" {
		if endTime, err = parsing.ParseInt(data[3]); err != nil {
			return fmt.Errorf("error converting end time: %w", err)
		}
	}

	info := core.CommandInfo{
		Type:      commandType,
		Easing:    core.Easing(easing),
		StartTime: float64(startTime),
		EndTime:   float64(endTime),
	}

	if commandType == core.CommandParameter {
		return c.parameter(info, data[4])
	}

	values := 1
	switch commandType {
	case core.CommandMovement, core.CommandVectorScale:
		values = 2
	case core.CommandColour:
		values = 3
	}
	start, end, err := readValues(data, 4, values)
	if err != nil {
		return err
	}
	if c.group == nil {
		return nil
	}

	g := c.group
	switch commandType {
	case core.CommandFade:
		g.Alpha.Add(info, start[0], end[0])
	case core.CommandScale:
		g.Scale.Add(info, start[0], end[0])
	case core.CommandRotation:
		g.Rotation.Add(info, start[0], end[0])
	case core.CommandMovementX:
		g.X.Add(info, start[0], end[0])
	case core.CommandMovementY:
		g.Y.Add(info, start[0], end[0])
	case core.CommandMovement:
		info.Type = core.CommandMovementX
		g.X.Add(info, start[0], end[0])
		info.Type = core.CommandMovementY
		g.Y.Add(info, start[1], end[1])
	case core.CommandVectorScale:
		g.VectorScale.Add(info,
			core.Vector2{X: start[0], Y: start[1]},
			core.Vector2{X: end[0], Y: end[1]})
	case core.CommandColour:
		g.Colour.Add(info,
			core.RGB(start[0], start[1], start[2]),
			core.RGB(end[0], end[1], end[2]))
	}
	return nil
}

func (c *decodeContext) parameter(info core.CommandInfo, parameter string) error {
	info.Parameter = core.ParameterType(parameter)
	instant := info.StartTime == info.EndTime

	switch info.Parameter {
	case core.ParameterBlendingMode, core.ParameterHorizontalFlip, core.ParameterVerticalFlip:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParameter, parameter)
	}
	if c.group == nil {
		return nil
	}

	switch info.Parameter {
	case core.ParameterBlendingMode:
		end := core.BlendingInherit
		if instant {
			end = core.BlendingAdditive
		}
		c.group.BlendingParameters.Add(info, core.BlendingAdditive, end)
	case core.ParameterHorizontalFlip:
		c.group.FlipH.Add(info, true, instant)
	case core.ParameterVerticalFlip:
		c.group.FlipV.Add(info, true, instant)
	}
	return nil
}

// readValues parses n start values at data[from:] followed by n optional end
// values. A missing end value repeats its start value.
func readValues(data []string, from, n int) (start, end []float64, err error) {
	if len(data) < from+n {
		return nil, nil, fmt.Errorf("expected %d values, got %d", n, len(data)-from)
	}
	start = make([]float64, n)
	end = make([]float64, n)
	for i := 0; i < n; i++ {
		if start[i], err = parsing.ParseFloat(data[from+i]); err != nil {
			return nil, nil, fmt.Errorf("error converting value: %w", err)
		}
		end[i] = start[i]
		if j := from + n + i; j < len(data) && data[j] != "" {
			if end[i], err = parsing.ParseFloat(data[j]); err != nil {
				return nil, nil, fmt.Errorf("error converting value: %w", err)
			}
		}
	}
	return start, end, nil
}
