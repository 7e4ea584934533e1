// pkg/core/hitobject.go
package core

// HitObject is one of *Hittable, *Slidable, *Spinnable or *Holdable.
// Callers dispatch with a type switch; the set is closed.
type HitObject interface {
	Base() *HitObjectBase
	isHitObject()
}

// HitObjectBase holds the fields shared by every hit object.
type HitObjectBase struct {
	StartPosition Vector2
	StartTime     float64
	HitType       HitType
	HitSound      HitSound
	Samples       []HitSample
	Kiai          bool
}

// Combo holds combo-colour chaining state.
type Combo struct {
	IsNewCombo  bool
	ComboOffset int
}

// Hittable is a circle (or a drum hit / fruit / note depending on mode).
type Hittable struct {
	HitObjectBase
	Combo
}

// Slidable is a slider.
type Slidable struct {
	HitObjectBase
	Combo

	Path        SliderPath
	Repeats     int
	NodeSamples [][]HitSample

	// Derived by post-processing from the control-point timeline.
	Velocity     float64
	TickDistance float64
}

// Spinnable is a spinner.
type Spinnable struct {
	HitObjectBase
	Combo

	EndTime float64
}

// Holdable is a mania hold note.
type Holdable struct {
	HitObjectBase

	EndTime float64
}

func (h *Hittable) Base() *HitObjectBase  { return &h.HitObjectBase }
func (s *Slidable) Base() *HitObjectBase  { return &s.HitObjectBase }
func (s *Spinnable) Base() *HitObjectBase { return &s.HitObjectBase }
func (h *Holdable) Base() *HitObjectBase  { return &h.HitObjectBase }

func (*Hittable) isHitObject()  {}
func (*Slidable) isHitObject()  {}
func (*Spinnable) isHitObject() {}
func (*Holdable) isHitObject()  {}

// Spans is the number of times the ball travels the path.
func (s *Slidable) Spans() int { return s.Repeats + 1 }

// SpanDuration is the duration of a single span, zero before defaults are applied.
func (s *Slidable) SpanDuration() float64 {
	if s.Velocity <= 0 {
		return 0
	}
	return s.Path.Distance / s.Velocity
}

// EndTime returns the time at which an object finishes.
func EndTime(h HitObject) float64 {
	switch o := h.(type) {
	case *Slidable:
		return o.StartTime + o.SpanDuration()*float64(o.Spans())
	case *Spinnable:
		return o.EndTime
	case *Holdable:
		return o.EndTime
	default:
		return h.Base().StartTime
	}
}

// ComboOf returns the combo state of objects that carry one.
func ComboOf(h HitObject) (*Combo, bool) {
	switch o := h.(type) {
	case *Hittable:
		return &o.Combo, true
	case *Slidable:
		return &o.Combo, true
	case *Spinnable:
		return &o.Combo, true
	default:
		return nil, false
	}
}

// HitSample is a single audio sample triggered by an object or slider node.
type HitSample struct {
	SampleSet   SampleSet
	HitSound    HitSound
	CustomIndex int
	Volume      int
	Filename    string
	IsLayered   bool
}

// SampleBank is the `normal:addition:index:volume:filename` descriptor.
type SampleBank struct {
	NormalSet   SampleSet
	AdditionSet SampleSet
	CustomIndex int
	Volume      int
	Filename    string
}

// PathPoint is a slider control point, relative to the object's start position.
// A non-None Type starts a new segment.
type PathPoint struct {
	Position Vector2
	Type     PathType
}

// SliderPath is the control-point geometry of a slider.
type SliderPath struct {
	CurveType     PathType
	ControlPoints []PathPoint
	// Distance is the declared pixel length, or the control polygon length when
	// the object line omits it.
	Distance float64
}
