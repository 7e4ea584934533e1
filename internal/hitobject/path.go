package hitobject

import (
	"fmt"
	"math"
	"strings"

	"github.com/OCAP2/osu-parsers/internal/parsing"
	"github.com/OCAP2/osu-parsers/internal/util"
	"github.com/OCAP2/osu-parsers/pkg/core"
)

// FirstLazerVersion is the first format version written by the current client.
// Older files keep the stable Catmull duplicate handling.
const FirstLazerVersion = 128

const linearTolerance = 0.001

// ConvertPath splits a `T|x:y|x:y|T|x:y` path string into control points
// relative to origin. The first run starts at the object's own position.
func ConvertPath(pathString string, origin core.Vector2, fileFormat int) ([]core.PathPoint, error) {
	split := strings.Split(pathString, "|")
	for i := range split {
		split[i] = strings.TrimSpace(split[i])
	}

	var controlPoints []core.PathPoint
	startIndex, endIndex := 0, 0
	first := true

	for endIndex++; endIndex < len(split); endIndex++ {
		if len(split[endIndex]) > 1 {
			continue
		}

		var endPoint *string
		if endIndex < len(split)-1 {
			endPoint = &split[endIndex+1]
		}
		segments, err := convertRun(split[startIndex:endIndex], endPoint, first, origin, fileFormat)
		if err != nil {
			return nil, err
		}
		for _, s := range segments {
			controlPoints = append(controlPoints, s...)
		}

		startIndex = endIndex
		first = false
	}

	if endIndex > startIndex {
		segments, err := convertRun(split[startIndex:endIndex], nil, first, origin, fileFormat)
		if err != nil {
			return nil, err
		}
		for _, s := range segments {
			controlPoints = append(controlPoints, s...)
		}
	}

	return controlPoints, nil
}

// convertRun converts one typed run. endPoint is the first point of the next
// run; it takes part in type degradation and hard-edge detection but is not
// emitted.
func convertRun(points []string, endPoint *string, first bool, origin core.Vector2, fileFormat int) ([][]core.PathPoint, error) {
	readOffset := 0
	if first {
		readOffset = 1
	}
	endPointLength := 0
	if endPoint != nil {
		endPointLength = 1
	}

	vertices := make([]core.PathPoint, readOffset, readOffset+len(points)+endPointLength)
	for _, p := range points[1:] {
		v, err := readPoint(p, origin)
		if err != nil {
			return nil, err
		}
		vertices = append(vertices, v)
	}
	if endPoint != nil {
		v, err := readPoint(*endPoint, origin)
		if err != nil {
			return nil, err
		}
		vertices = append(vertices, v)
	}
	if len(vertices) == 0 {
		return nil, fmt.Errorf("slider run %q has no points", points[0])
	}

	pathType := core.PathTypeFromLetter(points[0])
	if pathType == core.PathTypePerfectCurve {
		if len(vertices) != 3 {
			pathType = core.PathTypeBezier
		} else if isLinear(vertices) {
			pathType = core.PathTypeLinear
		}
	}
	vertices[0].Type = pathType

	stable := fileFormat < FirstLazerVersion
	last := len(vertices) - endPointLength

	var segments [][]core.PathPoint
	startIndex, endIndex := 0, 0
	for endIndex++; endIndex < last; endIndex++ {
		if vertices[endIndex].Position != vertices[endIndex-1].Position {
			continue
		}
		if pathType == core.PathTypeCatmull && endIndex > 1 && stable {
			continue
		}
		// the last duplicate before the end point is not a hard edge
		if endIndex == last-1 {
			continue
		}

		vertices[endIndex-1].Type = pathType
		segments = append(segments, vertices[startIndex:endIndex])
		startIndex = endIndex + 1
	}
	if endIndex > startIndex {
		segments = append(segments, vertices[startIndex:endIndex])
	}

	return segments, nil
}

func readPoint(point string, origin core.Vector2) (core.PathPoint, error) {
	x, y, ok := strings.Cut(point, ":")
	if !ok {
		return core.PathPoint{}, fmt.Errorf("invalid path point %q", point)
	}
	px, err := parsing.ParseFloatLimit(x, parsing.MaxCoordinateValue, false)
	if err != nil {
		return core.PathPoint{}, err
	}
	if i := strings.IndexByte(y, ':'); i >= 0 {
		y = y[:i]
	}
	py, err := parsing.ParseFloatLimit(y, parsing.MaxCoordinateValue, false)
	if err != nil {
		return core.PathPoint{}, err
	}
	pos := core.Vector2{X: math.Trunc(px), Y: math.Trunc(py)}
	return core.PathPoint{Position: pos.Sub(origin)}, nil
}

func isLinear(p []core.PathPoint) bool {
	yx := (p[1].Position.Y - p[0].Position.Y) * (p[2].Position.X - p[0].Position.X)
	xy := (p[1].Position.X - p[0].Position.X) * (p[2].Position.Y - p[0].Position.Y)
	return math.Abs(yx-xy) < linearTolerance
}

// EncodePath renders control points back into a path string. origin is added
// to every point.
func EncodePath(points []core.PathPoint, origin core.Vector2) string {
	var parts []string
	lastType := core.PathTypeNone

	for i, point := range points {
		if point.Type != core.PathTypeNone {
			explicit := point.Type != lastType || point.Type == core.PathTypePerfectCurve
			if i > 1 {
				p1 := origin.Add(points[i-1].Position)
				p2 := origin.Add(points[i-2].Position)
				if math.Trunc(p1.X) == math.Trunc(p2.X) && math.Trunc(p1.Y) == math.Trunc(p2.Y) {
					explicit = true
				}
			}

			if explicit {
				parts = append(parts, point.Type.Letter())
				lastType = point.Type
			} else {
				parts = append(parts, formatPoint(origin.Add(point.Position)))
			}
		}

		if i != 0 {
			parts = append(parts, formatPoint(origin.Add(point.Position)))
		}
	}

	return strings.Join(parts, "|")
}

func formatPoint(v core.Vector2) string {
	return util.FormatFloat(v.X) + ":" + util.FormatFloat(v.Y)
}
