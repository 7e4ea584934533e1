package geo

import (
	"errors"
	"testing"

	"github.com/OCAP2/osu-parsers/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func path(coords ...float64) []core.PathPoint {
	points := make([]core.PathPoint, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		points = append(points, core.PathPoint{Position: core.Vector2{X: coords[i], Y: coords[i+1]}})
	}
	return points
}

func TestPathLength(t *testing.T) {
	tests := []struct {
		name     string
		points   []core.PathPoint
		expected float64
	}{
		{"empty", nil, 0},
		{"single point", path(0, 0), 0},
		{"straight line", path(0, 0, 100, 0, 200, 0), 200},
		{"right angle", path(0, 0, 30, 0, 30, 40), 70},
		{"diagonal", path(0, 0, 3, 4), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, PathLength(tt.points), 1e-9)
		})
	}
}

func TestPathLineString_Translated(t *testing.T) {
	ls, err := PathLineString(path(0, 0, 10, 20), core.Vector2{X: 100, Y: 50})
	require.NoError(t, err)

	seq := ls.Coordinates()
	require.Equal(t, 2, seq.Length())
	assert.Equal(t, 100.0, seq.GetXY(0).X)
	assert.Equal(t, 50.0, seq.GetXY(0).Y)
	assert.Equal(t, 110.0, seq.GetXY(1).X)
	assert.Equal(t, 70.0, seq.GetXY(1).Y)
}

func TestPathLineString_Empty(t *testing.T) {
	_, err := PathLineString(nil, core.Vector2{})
	if !errors.Is(err, ErrEmptyPath) {
		t.Errorf("expected ErrEmptyPath, got %v", err)
	}
}

func TestPathBounds(t *testing.T) {
	min, max, err := PathBounds(path(0, 0, -20, 40, 60, -10), core.Vector2{X: 256, Y: 192})
	require.NoError(t, err)

	assert.Equal(t, core.Vector2{X: 236, Y: 182}, min)
	assert.Equal(t, core.Vector2{X: 316, Y: 232}, max)
}

func TestObjectsEnvelope(t *testing.T) {
	slider := &core.Slidable{
		HitObjectBase: core.HitObjectBase{StartPosition: core.Vector2{X: 100, Y: 100}},
		Path:          core.SliderPath{ControlPoints: path(0, 0, 200, -50)},
	}
	circle := &core.Hittable{HitObjectBase: core.HitObjectBase{StartPosition: core.Vector2{X: 20, Y: 300}}}

	env, err := ObjectsEnvelope([]core.HitObject{circle, slider})
	require.NoError(t, err)

	lo, hi, ok := env.Envelope().MinMaxXYs()
	require.True(t, ok)
	assert.Equal(t, 20.0, lo.X)
	assert.Equal(t, 50.0, lo.Y)
	assert.Equal(t, 300.0, hi.X)
	assert.Equal(t, 300.0, hi.Y)
}

func TestObjectsEnvelope_Empty(t *testing.T) {
	_, err := ObjectsEnvelope(nil)
	assert.ErrorIs(t, err, ErrEmptyPath)

	env, err := ObjectsEnvelope([]core.HitObject{&core.Hittable{HitObjectBase: core.HitObjectBase{StartPosition: core.Vector2{X: 5, Y: 6}}}})
	require.NoError(t, err)
	assert.Equal(t, geom.TypePoint, env.Type(), "a single spot collapses to a point")
}
