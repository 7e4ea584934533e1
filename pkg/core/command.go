// pkg/core/command.go
package core

import (
	"math"
	"sort"
)

// CommandType is the storyboard command acronym.
type CommandType string

const (
	CommandMovement    CommandType = "M"
	CommandMovementX   CommandType = "MX"
	CommandMovementY   CommandType = "MY"
	CommandFade        CommandType = "F"
	CommandScale       CommandType = "S"
	CommandVectorScale CommandType = "V"
	CommandRotation    CommandType = "R"
	CommandColour      CommandType = "C"
	CommandParameter   CommandType = "P"
)

// ParameterType is the argument of a parameter command.
type ParameterType string

const (
	ParameterNone           ParameterType = ""
	ParameterBlendingMode   ParameterType = "A"
	ParameterHorizontalFlip ParameterType = "H"
	ParameterVerticalFlip   ParameterType = "V"
)

// CommandValue is the set of value types a command can animate.
type CommandValue interface {
	float64 | Vector2 | Color4 | BlendingMode | bool
}

// CommandInfo holds the value-independent part of a command.
type CommandInfo struct {
	Type      CommandType
	Parameter ParameterType
	Easing    Easing
	StartTime float64
	EndTime   float64
}

// Command animates one property between two values.
type Command[T CommandValue] struct {
	CommandInfo
	StartValue T
	EndValue   T
}

// Info returns the value-independent fields.
func (c *Command[T]) Info() CommandInfo { return c.CommandInfo }

// Values returns the start and end values boxed.
func (c *Command[T]) Values() (any, any) { return c.StartValue, c.EndValue }

// ValuesEqual reports whether the command keeps a constant value.
func (c *Command[T]) ValuesEqual() bool { return c.StartValue == c.EndValue }

// TimelineCommand is a command of any value type.
type TimelineCommand interface {
	Info() CommandInfo
	Values() (start, end any)
	ValuesEqual() bool
}

// CommandTimeline is an ordered track of commands on one property.
type CommandTimeline[T CommandValue] struct {
	Commands   []*Command[T]
	StartTime  float64
	EndTime    float64
	StartValue T
	EndValue   T
}

func newTimeline[T CommandValue]() *CommandTimeline[T] {
	return &CommandTimeline[T]{StartTime: math.Inf(1), EndTime: math.Inf(-1)}
}

// Add appends a command. Commands ending before they start are dropped.
func (t *CommandTimeline[T]) Add(info CommandInfo, startValue, endValue T) {
	if info.EndTime < info.StartTime {
		return
	}
	t.Commands = append(t.Commands, &Command[T]{CommandInfo: info, StartValue: startValue, EndValue: endValue})
	if info.StartTime < t.StartTime {
		t.StartValue = startValue
		t.StartTime = info.StartTime
	}
	if info.EndTime > t.EndTime {
		t.EndValue = endValue
		t.EndTime = info.EndTime
	}
}

// HasCommands reports whether the track is non-empty.
func (t *CommandTimeline[T]) HasCommands() bool { return len(t.Commands) > 0 }

func (t *CommandTimeline[T]) appendTo(out []TimelineCommand) []TimelineCommand {
	for _, c := range t.Commands {
		out = append(out, c)
	}
	return out
}

// TimelineGroup is the set of property tracks of an element or compound.
type TimelineGroup struct {
	X                  *CommandTimeline[float64]
	Y                  *CommandTimeline[float64]
	Scale              *CommandTimeline[float64]
	VectorScale        *CommandTimeline[Vector2]
	Rotation           *CommandTimeline[float64]
	Colour             *CommandTimeline[Color4]
	Alpha              *CommandTimeline[float64]
	BlendingParameters *CommandTimeline[BlendingMode]
	FlipH              *CommandTimeline[bool]
	FlipV              *CommandTimeline[bool]
}

// NewTimelineGroup returns a group with empty tracks.
func NewTimelineGroup() *TimelineGroup {
	return &TimelineGroup{
		X:                  newTimeline[float64](),
		Y:                  newTimeline[float64](),
		Scale:              newTimeline[float64](),
		VectorScale:        newTimeline[Vector2](),
		Rotation:           newTimeline[float64](),
		Colour:             newTimeline[Color4](),
		Alpha:              newTimeline[float64](),
		BlendingParameters: newTimeline[BlendingMode](),
		FlipH:              newTimeline[bool](),
		FlipV:              newTimeline[bool](),
	}
}

// Commands returns every command of the group ordered by start time. Commands
// sharing a start time keep track order (X before Y).
func (g *TimelineGroup) Commands() []TimelineCommand {
	var out []TimelineCommand
	out = g.X.appendTo(out)
	out = g.Y.appendTo(out)
	out = g.Scale.appendTo(out)
	out = g.VectorScale.appendTo(out)
	out = g.Rotation.appendTo(out)
	out = g.Colour.appendTo(out)
	out = g.Alpha.appendTo(out)
	out = g.BlendingParameters.appendTo(out)
	out = g.FlipH.appendTo(out)
	out = g.FlipV.appendTo(out)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Info().StartTime < out[j].Info().StartTime
	})
	return out
}

// HasCommands reports whether any track holds a command.
func (g *TimelineGroup) HasCommands() bool {
	return g.X.HasCommands() || g.Y.HasCommands() || g.Scale.HasCommands() ||
		g.VectorScale.HasCommands() || g.Rotation.HasCommands() || g.Colour.HasCommands() ||
		g.Alpha.HasCommands() || g.BlendingParameters.HasCommands() ||
		g.FlipH.HasCommands() || g.FlipV.HasCommands()
}

// StartTime is the earliest command start, or +Inf when empty.
func (g *TimelineGroup) StartTime() float64 {
	start := math.Inf(1)
	for _, c := range g.Commands() {
		start = math.Min(start, c.Info().StartTime)
	}
	return start
}

// EndTime is the latest command end, or -Inf when empty.
func (g *TimelineGroup) EndTime() float64 {
	end := math.Inf(-1)
	for _, c := range g.Commands() {
		end = math.Max(end, c.Info().EndTime)
	}
	return end
}

// Duration is EndTime - StartTime, zero when empty.
func (g *TimelineGroup) Duration() float64 {
	if !g.HasCommands() {
		return 0
	}
	return g.EndTime() - g.StartTime()
}

// CommandLoop repeats its commands, relative to LoopStartTime.
type CommandLoop struct {
	*TimelineGroup
	LoopStartTime float64
	// TotalIterations is the declared loop count minus one.
	TotalIterations int
}

// NewCommandLoop builds a loop from the declared count.
func NewCommandLoop(startTime float64, declaredCount int) *CommandLoop {
	return &CommandLoop{
		TimelineGroup:   NewTimelineGroup(),
		LoopStartTime:   startTime,
		TotalIterations: max(0, declaredCount-1),
	}
}

// DeclaredCount is the loop count as written in the file.
func (l *CommandLoop) DeclaredCount() int { return l.TotalIterations + 1 }

// LoopStart is the absolute time of the first looped command.
func (l *CommandLoop) LoopStart() float64 { return l.LoopStartTime + l.TimelineGroup.StartTime() }

// LoopEnd is the absolute time at which the last iteration finishes.
func (l *CommandLoop) LoopEnd() float64 {
	return l.LoopStart() + l.Duration()*float64(l.DeclaredCount())
}

// CommandTrigger runs its commands when a gameplay event fires.
type CommandTrigger struct {
	*TimelineGroup
	TriggerName      string
	TriggerStartTime float64
	TriggerEndTime   float64
	GroupNumber      int
}

// NewCommandTrigger builds a trigger with unbounded activation time.
func NewCommandTrigger(name string) *CommandTrigger {
	return &CommandTrigger{
		TimelineGroup:    NewTimelineGroup(),
		TriggerName:      name,
		TriggerStartTime: math.Inf(-1),
		TriggerEndTime:   math.Inf(1),
	}
}
