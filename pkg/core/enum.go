// pkg/core/enum.go
package core

import "strconv"

// EnumTable is a bidirectional name/value lookup for a named integer constant set.
// Tables are built once at package init and are read-only afterwards.
type EnumTable[T ~int] struct {
	kind    string
	byName  map[string]T
	byValue map[T]string
}

// NewEnumTable builds a table from the value → name mapping.
func NewEnumTable[T ~int](kind string, names map[T]string) *EnumTable[T] {
	t := &EnumTable[T]{
		kind:    kind,
		byName:  make(map[string]T, len(names)),
		byValue: make(map[T]string, len(names)),
	}
	for v, n := range names {
		t.byName[n] = v
		t.byValue[v] = n
	}
	return t
}

// Kind returns the enum name used in error messages.
func (t *EnumTable[T]) Kind() string { return t.kind }

// ByName looks a constant up by its textual name.
func (t *EnumTable[T]) ByName(name string) (T, bool) {
	v, ok := t.byName[name]
	return v, ok
}

// ByValue reports whether v is a declared constant.
func (t *EnumTable[T]) ByValue(v int) (T, bool) {
	_, ok := t.byValue[T(v)]
	return T(v), ok
}

// Name returns the constant name, or the decimal value when undeclared.
func (t *EnumTable[T]) Name(v T) string {
	if n, ok := t.byValue[v]; ok {
		return n
	}
	return strconv.Itoa(int(v))
}

// SampleSet selects the hit-sound sample family.
type SampleSet int

const (
	SampleSetNone SampleSet = iota
	SampleSetNormal
	SampleSetSoft
	SampleSetDrum
)

var SampleSets = NewEnumTable("SampleSet", map[SampleSet]string{
	SampleSetNone:   "None",
	SampleSetNormal: "Normal",
	SampleSetSoft:   "Soft",
	SampleSetDrum:   "Drum",
})

func (s SampleSet) String() string { return SampleSets.Name(s) }

// HitType is the hit-object type bitmask.
type HitType int

const (
	HitTypeNormal      HitType = 1
	HitTypeSlider      HitType = 2
	HitTypeNewCombo    HitType = 4
	HitTypeSpinner     HitType = 8
	HitTypeComboSkip1  HitType = 16
	HitTypeComboSkip2  HitType = 32
	HitTypeComboSkip3  HitType = 64
	HitTypeComboOffset HitType = HitTypeComboSkip1 | HitTypeComboSkip2 | HitTypeComboSkip3
	HitTypeHold        HitType = 128
)

// Has reports whether every bit of flag is set.
func (h HitType) Has(flag HitType) bool { return h&flag == flag }

// HitSound is the hit-sound bitmask.
type HitSound int

const (
	HitSoundNone    HitSound = 0
	HitSoundNormal  HitSound = 1
	HitSoundWhistle HitSound = 2
	HitSoundFinish  HitSound = 4
	HitSoundClap    HitSound = 8
)

var HitSounds = NewEnumTable("HitSound", map[HitSound]string{
	HitSoundNone:    "None",
	HitSoundNormal:  "Normal",
	HitSoundWhistle: "Whistle",
	HitSoundFinish:  "Finish",
	HitSoundClap:    "Clap",
})

func (h HitSound) String() string { return HitSounds.Name(h) }

// Has reports whether every bit of flag is set.
func (h HitSound) Has(flag HitSound) bool { return h&flag == flag }

// PathType is the curve kind of a slider segment. The zero value marks a
// control point that continues the current segment.
type PathType int

const (
	PathTypeNone PathType = iota
	PathTypeCatmull
	PathTypeBezier
	PathTypeLinear
	PathTypePerfectCurve
)

var pathTypeLetters = map[PathType]string{
	PathTypeCatmull:      "C",
	PathTypeBezier:       "B",
	PathTypeLinear:       "L",
	PathTypePerfectCurve: "P",
}

// Letter returns the single character used in slider path strings.
func (p PathType) Letter() string { return pathTypeLetters[p] }

// PathTypeFromLetter maps a path marker to its type. Unrecognised markers are Catmull.
func PathTypeFromLetter(s string) PathType {
	switch s {
	case "B":
		return PathTypeBezier
	case "L":
		return PathTypeLinear
	case "P":
		return PathTypePerfectCurve
	default:
		return PathTypeCatmull
	}
}

func (p PathType) String() string {
	switch p {
	case PathTypeCatmull:
		return "Catmull"
	case PathTypeBezier:
		return "Bezier"
	case PathTypeLinear:
		return "Linear"
	case PathTypePerfectCurve:
		return "PerfectCurve"
	default:
		return "None"
	}
}

// Ruleset ids used by the combo and scroll-speed rules.
const (
	ModeStandard = 0
	ModeTaiko    = 1
	ModeCatch    = 2
	ModeMania    = 3
)

// EffectType bits of a legacy timing line.
const (
	EffectKiai             = 1
	EffectOmitFirstBarLine = 8
)

// Countdown speeds of the pre-map countdown.
type Countdown int

const (
	CountdownNone Countdown = iota
	CountdownNormal
	CountdownHalf
	CountdownDouble
)

var Countdowns = NewEnumTable("Countdown", map[Countdown]string{
	CountdownNone:   "None",
	CountdownNormal: "Normal",
	CountdownHalf:   "Half",
	CountdownDouble: "Double",
})

// EventType is the first field of an [Events] line.
type EventType int

const (
	EventBackground EventType = iota
	EventVideo
	EventBreak
	EventColour
	EventSprite
	EventSample
	EventAnimation
	EventStoryboardCommand
)

var EventTypes = NewEnumTable("EventType", map[EventType]string{
	EventBackground:        "Background",
	EventVideo:             "Video",
	EventBreak:             "Break",
	EventColour:            "Colour",
	EventSprite:            "Sprite",
	EventSample:            "Sample",
	EventAnimation:         "Animation",
	EventStoryboardCommand: "StoryboardCommand",
})

func (e EventType) String() string { return EventTypes.Name(e) }

// LayerType identifies a storyboard layer.
type LayerType int

const (
	LayerBackground LayerType = iota
	LayerFail
	LayerPass
	LayerForeground
	LayerOverlay
	LayerVideo
)

var LayerTypes = NewEnumTable("LayerType", map[LayerType]string{
	LayerBackground: "Background",
	LayerFail:       "Fail",
	LayerPass:       "Pass",
	LayerForeground: "Foreground",
	LayerOverlay:    "Overlay",
	LayerVideo:      "Video",
})

func (l LayerType) String() string { return LayerTypes.Name(l) }

// Origin is the legacy sprite origin.
type Origin int

const (
	OriginTopLeft Origin = iota
	OriginCentre
	OriginCentreLeft
	OriginTopRight
	OriginBottomCentre
	OriginTopCentre
	OriginCustom
	OriginCentreRight
	OriginBottomLeft
	OriginBottomRight
)

var Origins = NewEnumTable("Origin", map[Origin]string{
	OriginTopLeft:      "TopLeft",
	OriginCentre:       "Centre",
	OriginCentreLeft:   "CentreLeft",
	OriginTopRight:     "TopRight",
	OriginBottomCentre: "BottomCentre",
	OriginTopCentre:    "TopCentre",
	OriginCustom:       "Custom",
	OriginCentreRight:  "CentreRight",
	OriginBottomLeft:   "BottomLeft",
	OriginBottomRight:  "BottomRight",
})

func (o Origin) String() string { return Origins.Name(o) }

// Anchor is the position of an origin inside the sprite, as x/y fractions.
func (o Origin) Anchor() Vector2 {
	switch o {
	case OriginCentre:
		return Vector2{X: 0.5, Y: 0.5}
	case OriginCentreLeft:
		return Vector2{X: 0, Y: 0.5}
	case OriginTopRight:
		return Vector2{X: 1, Y: 0}
	case OriginBottomCentre:
		return Vector2{X: 0.5, Y: 1}
	case OriginTopCentre:
		return Vector2{X: 0.5, Y: 0}
	case OriginCentreRight:
		return Vector2{X: 1, Y: 0.5}
	case OriginBottomLeft:
		return Vector2{X: 0, Y: 1}
	case OriginBottomRight:
		return Vector2{X: 1, Y: 1}
	default:
		return Vector2{}
	}
}

// LoopType controls animation frame looping.
type LoopType int

const (
	LoopForever LoopType = iota
	LoopOnce
)

var LoopTypes = NewEnumTable("LoopType", map[LoopType]string{
	LoopForever: "LoopForever",
	LoopOnce:    "LoopOnce",
})

func (l LoopType) String() string { return LoopTypes.Name(l) }

// Easing is the storyboard interpolation curve. Values follow the legacy
// easing ids (0 = Linear … 34 = BounceInOut); only the id is kept.
type Easing int

// BlendingMode is the value carried by a blending parameter command.
type BlendingMode int

const (
	BlendingInherit BlendingMode = iota
	BlendingAdditive
)

// ReplayButtonState is the button bitmask of a legacy replay frame.
type ReplayButtonState int

const (
	ButtonNone   ReplayButtonState = 0
	ButtonLeft1  ReplayButtonState = 1
	ButtonRight1 ReplayButtonState = 2
	ButtonLeft2  ReplayButtonState = 4
	ButtonRight2 ReplayButtonState = 8
	ButtonSmoke  ReplayButtonState = 16
)
