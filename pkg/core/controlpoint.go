// pkg/core/controlpoint.go
package core

import "sort"

// ControlPointKind identifies the control point variant.
type ControlPointKind int

const (
	KindTiming ControlPointKind = iota
	KindDifficulty
	KindEffect
	KindSample
)

func (k ControlPointKind) String() string {
	switch k {
	case KindTiming:
		return "Timing"
	case KindDifficulty:
		return "Difficulty"
	case KindEffect:
		return "Effect"
	default:
		return "Sample"
	}
}

// ControlPoint is one of *TimingPoint, *DifficultyPoint, *EffectPoint or *SamplePoint.
type ControlPoint interface {
	Kind() ControlPointKind
	// StartTime is the time of the group the point belongs to.
	StartTime() float64
	// Redundant reports whether the point was value-identical to the point that
	// was active when it was added.
	Redundant() bool
	// IsRedundant reports whether the point changes nothing compared to existing.
	IsRedundant(existing ControlPoint) bool

	attach(time float64, redundant bool)
}

type controlPointBase struct {
	time      float64
	redundant bool
}

func (b *controlPointBase) StartTime() float64 { return b.time }
func (b *controlPointBase) Redundant() bool    { return b.redundant }

func (b *controlPointBase) attach(time float64, redundant bool) {
	b.time = time
	b.redundant = redundant
}

// TimingPoint changes tempo and meter.
type TimingPoint struct {
	controlPointBase
	BeatLength    float64
	TimeSignature int
}

// DifficultyPoint changes slider velocity.
type DifficultyPoint struct {
	controlPointBase
	SliderVelocity float64
	BpmMultiplier  float64
	GenerateTicks  bool
	IsLegacy       bool
}

// EffectPoint toggles kiai and bar-line effects.
type EffectPoint struct {
	controlPointBase
	Kiai             bool
	OmitFirstBarLine bool
	ScrollSpeed      float64
}

// SamplePoint changes the default sample bank.
type SamplePoint struct {
	controlPointBase
	SampleSet   SampleSet
	CustomIndex int
	Volume      int
}

// Default point values used when nothing is active yet.
const DefaultBeatLength = 1000.0

func NewTimingPoint() *TimingPoint {
	return &TimingPoint{BeatLength: DefaultBeatLength, TimeSignature: 4}
}

func NewDifficultyPoint() *DifficultyPoint {
	return &DifficultyPoint{SliderVelocity: 1, BpmMultiplier: 1, GenerateTicks: true}
}

func NewEffectPoint() *EffectPoint {
	return &EffectPoint{ScrollSpeed: 1}
}

func NewSamplePoint() *SamplePoint {
	return &SamplePoint{SampleSet: SampleSetNormal, Volume: 100}
}

func (*TimingPoint) Kind() ControlPointKind     { return KindTiming }
func (*DifficultyPoint) Kind() ControlPointKind { return KindDifficulty }
func (*EffectPoint) Kind() ControlPointKind     { return KindEffect }
func (*SamplePoint) Kind() ControlPointKind     { return KindSample }

// BPM is the tempo in beats per minute.
func (t *TimingPoint) BPM() float64 { return 60000 / t.BeatLength }

// IsRedundant is always false: timing points are never merged.
func (*TimingPoint) IsRedundant(ControlPoint) bool { return false }

func (d *DifficultyPoint) IsRedundant(existing ControlPoint) bool {
	e, ok := existing.(*DifficultyPoint)
	return ok &&
		d.SliderVelocity == e.SliderVelocity &&
		d.BpmMultiplier == e.BpmMultiplier &&
		d.GenerateTicks == e.GenerateTicks
}

func (p *EffectPoint) IsRedundant(existing ControlPoint) bool {
	if p.OmitFirstBarLine {
		return false
	}
	e, ok := existing.(*EffectPoint)
	return ok && p.Kiai == e.Kiai && p.ScrollSpeed == e.ScrollSpeed
}

func (s *SamplePoint) IsRedundant(existing ControlPoint) bool {
	e, ok := existing.(*SamplePoint)
	return ok &&
		s.SampleSet == e.SampleSet &&
		s.CustomIndex == e.CustomIndex &&
		s.Volume == e.Volume
}

// ControlPointGroup holds the points declared at one timestamp.
// Timing points come first.
type ControlPointGroup struct {
	StartTime     float64
	ControlPoints []ControlPoint
}

// Find returns the point of the given kind, if any.
func (g *ControlPointGroup) Find(kind ControlPointKind) ControlPoint {
	for _, p := range g.ControlPoints {
		if p.Kind() == kind {
			return p
		}
	}
	return nil
}

func (g *ControlPointGroup) put(point ControlPoint) ControlPoint {
	var replaced ControlPoint
	for i, p := range g.ControlPoints {
		if p.Kind() == point.Kind() {
			replaced = p
			g.ControlPoints = append(g.ControlPoints[:i], g.ControlPoints[i+1:]...)
			break
		}
	}
	if point.Kind() == KindTiming {
		g.ControlPoints = append([]ControlPoint{point}, g.ControlPoints...)
	} else {
		g.ControlPoints = append(g.ControlPoints, point)
	}
	return replaced
}

// ControlPointInfo is the control-point timeline of a beatmap.
type ControlPointInfo struct {
	Groups []*ControlPointGroup

	// Active points per variant, ordered by time. Redundant points live only in
	// their group.
	TimingPoints     []*TimingPoint
	DifficultyPoints []*DifficultyPoint
	EffectPoints     []*EffectPoint
	SamplePoints     []*SamplePoint
}

// NewControlPointInfo returns an empty timeline.
func NewControlPointInfo() *ControlPointInfo {
	return &ControlPointInfo{}
}

// GroupAt returns the group at exactly time, creating it when create is set.
func (c *ControlPointInfo) GroupAt(time float64, create bool) *ControlPointGroup {
	i := sort.Search(len(c.Groups), func(i int) bool { return c.Groups[i].StartTime >= time })
	if i < len(c.Groups) && c.Groups[i].StartTime == time {
		return c.Groups[i]
	}
	if !create {
		return nil
	}
	g := &ControlPointGroup{StartTime: time}
	c.Groups = append(c.Groups, nil)
	copy(c.Groups[i+1:], c.Groups[i:])
	c.Groups[i] = g
	return g
}

// Add inserts point at time. The point is always stored in its group; it only
// becomes active when it is not redundant. Add reports whether it became active.
func (c *ControlPointInfo) Add(point ControlPoint, time float64) bool {
	group := c.GroupAt(time, true)
	if replaced := group.put(point); replaced != nil {
		c.removeActive(replaced)
	}

	existing := c.activeAt(point.Kind(), time)
	redundant := existing != nil && point.IsRedundant(existing)
	point.attach(time, redundant)
	if redundant {
		return false
	}

	switch p := point.(type) {
	case *TimingPoint:
		c.TimingPoints = insertByTime(c.TimingPoints, p)
	case *DifficultyPoint:
		c.DifficultyPoints = insertByTime(c.DifficultyPoints, p)
	case *EffectPoint:
		c.EffectPoints = insertByTime(c.EffectPoints, p)
	case *SamplePoint:
		c.SamplePoints = insertByTime(c.SamplePoints, p)
	}
	return true
}

func (c *ControlPointInfo) removeActive(point ControlPoint) {
	switch p := point.(type) {
	case *TimingPoint:
		c.TimingPoints = removePoint(c.TimingPoints, p)
	case *DifficultyPoint:
		c.DifficultyPoints = removePoint(c.DifficultyPoints, p)
	case *EffectPoint:
		c.EffectPoints = removePoint(c.EffectPoints, p)
	case *SamplePoint:
		c.SamplePoints = removePoint(c.SamplePoints, p)
	}
}

func (c *ControlPointInfo) activeAt(kind ControlPointKind, time float64) ControlPoint {
	switch kind {
	case KindTiming:
		if p := lastAtOrBefore(c.TimingPoints, time); p != nil {
			return p
		}
	case KindDifficulty:
		if p := lastAtOrBefore(c.DifficultyPoints, time); p != nil {
			return p
		}
	case KindEffect:
		if p := lastAtOrBefore(c.EffectPoints, time); p != nil {
			return p
		}
	case KindSample:
		if p := lastAtOrBefore(c.SamplePoints, time); p != nil {
			return p
		}
	}
	return nil
}

// TimingPointAt returns the timing point active at time. Before the first
// timing point the first one applies.
func (c *ControlPointInfo) TimingPointAt(time float64) *TimingPoint {
	if p := lastAtOrBefore(c.TimingPoints, time); p != nil {
		return p
	}
	if len(c.TimingPoints) > 0 {
		return c.TimingPoints[0]
	}
	return NewTimingPoint()
}

// DifficultyPointAt returns the difficulty point active at time.
func (c *ControlPointInfo) DifficultyPointAt(time float64) *DifficultyPoint {
	if p := lastAtOrBefore(c.DifficultyPoints, time); p != nil {
		return p
	}
	return NewDifficultyPoint()
}

// EffectPointAt returns the effect point active at time.
func (c *ControlPointInfo) EffectPointAt(time float64) *EffectPoint {
	if p := lastAtOrBefore(c.EffectPoints, time); p != nil {
		return p
	}
	return NewEffectPoint()
}

// SamplePointAt returns the sample point active at time.
func (c *ControlPointInfo) SamplePointAt(time float64) *SamplePoint {
	if p := lastAtOrBefore(c.SamplePoints, time); p != nil {
		return p
	}
	return NewSamplePoint()
}

// AllPoints returns every stored point in group order.
func (c *ControlPointInfo) AllPoints() []ControlPoint {
	var all []ControlPoint
	for _, g := range c.Groups {
		all = append(all, g.ControlPoints...)
	}
	return all
}

type timed interface {
	comparable
	StartTime() float64
}

func lastAtOrBefore[P timed](points []P, time float64) P {
	var zero P
	i := sort.Search(len(points), func(i int) bool { return points[i].StartTime() > time })
	if i == 0 {
		return zero
	}
	return points[i-1]
}

func insertByTime[P timed](points []P, p P) []P {
	i := sort.Search(len(points), func(i int) bool { return points[i].StartTime() > p.StartTime() })
	points = append(points, p)
	copy(points[i+1:], points[i:])
	points[i] = p
	return points
}

func removePoint[P timed](points []P, p P) []P {
	for i := range points {
		if points[i] == p {
			return append(points[:i], points[i+1:]...)
		}
	}
	return points
}
