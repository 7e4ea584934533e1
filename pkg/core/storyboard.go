// pkg/core/storyboard.go
package core

import "math"

// Storyboard is a decoded .osb file, or the storyboard part of a .osu file.
type Storyboard struct {
	FileFormat     int
	UseSkinSprites bool
	Colors         Colors
	Variables      []Variable

	layers map[LayerType]*Layer
}

// Variable is a `$name=value` declaration.
type Variable struct {
	Name  string
	Value string
}

// Layer is an ordered list of storyboard elements.
type Layer struct {
	Type     LayerType
	Depth    int
	Elements []Element
}

// LayerOrder is the order in which layers are written.
var LayerOrder = []LayerType{
	LayerBackground, LayerFail, LayerPass, LayerForeground, LayerOverlay, LayerVideo,
}

// NewStoryboard returns a storyboard with the fixed layer set.
func NewStoryboard() *Storyboard {
	return &Storyboard{
		FileFormat: LatestFileFormat,
		layers: map[LayerType]*Layer{
			LayerBackground: {Type: LayerBackground, Depth: 3},
			LayerFail:       {Type: LayerFail, Depth: 2},
			LayerPass:       {Type: LayerPass, Depth: 1},
			LayerForeground: {Type: LayerForeground, Depth: 0},
			LayerOverlay:    {Type: LayerOverlay, Depth: math.MinInt32},
			LayerVideo:      {Type: LayerVideo, Depth: 4},
		},
	}
}

// Layer returns the layer of the given type.
func (s *Storyboard) Layer(t LayerType) *Layer {
	return s.layers[t]
}

// HasElements reports whether any layer holds an element.
func (s *Storyboard) HasElements() bool {
	for _, l := range s.layers {
		if len(l.Elements) > 0 {
			return true
		}
	}
	return false
}

// Variable returns the value of a declared variable.
func (s *Storyboard) Variable(name string) (string, bool) {
	for _, v := range s.Variables {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// Element is one of *Sprite, *Animation, *Sample or *Video.
type Element interface {
	Path() string
	isElement()
}

// Sprite is a static image animated by commands.
type Sprite struct {
	FilePath      string
	Origin        Origin
	StartPosition Vector2

	TimelineGroup *TimelineGroup
	Loops         []*CommandLoop
	Triggers      []*CommandTrigger

	// Extents, computed when the element is committed.
	StartTime float64
	EndTime   float64
}

// Animation is a sprite cycling through numbered frames.
type Animation struct {
	Sprite
	FrameCount int
	FrameDelay float64
	LoopType   LoopType
}

// Sample plays an audio file at a fixed time.
type Sample struct {
	FilePath  string
	StartTime float64
	Volume    int
}

// Video is a background video.
type Video struct {
	FilePath  string
	StartTime float64
}

// NewSprite returns a sprite with an empty timeline.
func NewSprite(path string, origin Origin, position Vector2) *Sprite {
	return &Sprite{
		FilePath:      path,
		Origin:        origin,
		StartPosition: position,
		TimelineGroup: NewTimelineGroup(),
	}
}

func (s *Sprite) Path() string { return s.FilePath }
func (s *Sample) Path() string { return s.FilePath }
func (v *Video) Path() string  { return v.FilePath }

func (*Sprite) isElement() {}
func (*Sample) isElement() {}
func (*Video) isElement()  {}

// AddLoop opens a loop compound.
func (s *Sprite) AddLoop(startTime float64, declaredCount int) *CommandLoop {
	loop := NewCommandLoop(startTime, declaredCount)
	s.Loops = append(s.Loops, loop)
	return loop
}

// AddTrigger opens a trigger compound.
func (s *Sprite) AddTrigger(name string, startTime, endTime float64, group int) *CommandTrigger {
	trigger := NewCommandTrigger(name)
	trigger.TriggerStartTime = startTime
	trigger.TriggerEndTime = endTime
	trigger.GroupNumber = group
	s.Triggers = append(s.Triggers, trigger)
	return trigger
}

// HasCommands reports whether the sprite or any compound holds a command.
func (s *Sprite) HasCommands() bool {
	if s.TimelineGroup.HasCommands() {
		return true
	}
	for _, l := range s.Loops {
		if l.HasCommands() {
			return true
		}
	}
	for _, t := range s.Triggers {
		if t.HasCommands() {
			return true
		}
	}
	return false
}

// Commit computes the element extents from its committed command tracks.
func (s *Sprite) Commit() {
	start, end := math.Inf(1), math.Inf(-1)
	if s.TimelineGroup.HasCommands() {
		start = s.TimelineGroup.StartTime()
		end = s.TimelineGroup.EndTime()
	}
	for _, l := range s.Loops {
		if !l.HasCommands() {
			continue
		}
		start = math.Min(start, l.LoopStart())
		end = math.Max(end, l.LoopEnd())
	}
	for _, t := range s.Triggers {
		if !t.HasCommands() {
			continue
		}
		start = math.Min(start, t.TimelineGroup.StartTime())
		end = math.Max(end, t.TimelineGroup.EndTime())
	}
	if math.IsInf(start, 1) {
		start, end = 0, 0
	}
	s.StartTime, s.EndTime = start, end
}
