package geo

import (
	"errors"

	"github.com/OCAP2/osu-parsers/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Slider geometry lives in playfield pixels. Paths are kept relative to the
// object's start position, so callers pass the origin when they need absolute
// coordinates.

// ErrEmptyPath is returned when a path has no control points
var ErrEmptyPath = errors.New("path has no control points")

// PathLineString builds the control polygon of a slider path, translated by origin.
func PathLineString(points []core.PathPoint, origin core.Vector2) (geom.LineString, error) {
	if len(points) == 0 {
		return geom.LineString{}, ErrEmptyPath
	}

	flatCoords := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flatCoords = append(flatCoords, origin.X+p.Position.X, origin.Y+p.Position.Y)
	}
	// a single point is not a valid line; repeat it to get a zero-length one
	if len(points) == 1 {
		flatCoords = append(flatCoords, flatCoords[0], flatCoords[1])
	}

	seq := geom.NewSequence(flatCoords, geom.DimXY)
	return geom.NewLineString(seq), nil
}

// PathLength is the length of the control polygon. It is used as the slider
// distance when an object line does not declare one.
func PathLength(points []core.PathPoint) float64 {
	ls, err := PathLineString(points, core.Vector2{})
	if err != nil {
		return 0
	}
	return ls.Length()
}

// PathBounds returns the absolute bounding box of a slider's control points.
func PathBounds(points []core.PathPoint, origin core.Vector2) (min, max core.Vector2, err error) {
	ls, err := PathLineString(points, origin)
	if err != nil {
		return core.Vector2{}, core.Vector2{}, err
	}
	lo, hi, ok := ls.Envelope().MinMaxXYs()
	if !ok {
		return core.Vector2{}, core.Vector2{}, ErrEmptyPath
	}
	return core.Vector2{X: lo.X, Y: lo.Y}, core.Vector2{X: hi.X, Y: hi.Y}, nil
}

// ObjectsEnvelope returns the bounding box of every hit object start position
// and slider control point, as a polygon (or a point when the objects all sit
// on one spot). An empty object list yields ErrEmptyPath.
func ObjectsEnvelope(objects []core.HitObject) (geom.Geometry, error) {
	var flatCoords []float64
	for _, h := range objects {
		start := h.Base().StartPosition
		flatCoords = append(flatCoords, start.X, start.Y)
		if s, ok := h.(*core.Slidable); ok {
			for _, p := range s.Path.ControlPoints {
				flatCoords = append(flatCoords, start.X+p.Position.X, start.Y+p.Position.Y)
			}
		}
	}
	if len(flatCoords) == 0 {
		return geom.Geometry{}, ErrEmptyPath
	}
	if len(flatCoords) == 2 {
		flatCoords = append(flatCoords, flatCoords[0], flatCoords[1])
	}

	ls := geom.NewLineString(geom.NewSequence(flatCoords, geom.DimXY))
	return ls.Envelope().AsGeometry(), nil
}
