package gesture

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/mudra/internal/detector"
)

func TestSmoother_FirstUpdateIsRaw(t *testing.T) {
	s := NewSmoother(DefaultSmoothing)

	got := s.Update(Point{X: 800, Y: 600})

	assert.Equal(t, Point{X: 800, Y: 600}, got)
}

func TestSmoother_WeightedAverage(t *testing.T) {
	s := NewSmoother(7)
	s.Update(Point{X: 0, Y: 0})

	got := s.Update(Point{X: 70, Y: 140})

	assert.InDelta(t, 10, got.X, 1e-9)
	assert.InDelta(t, 20, got.Y, 1e-9)
}

func TestSmoother_ConvergesToConstant(t *testing.T) {
	const eps = 0.5
	target := Point{X: 1200, Y: 300}

	s := NewSmoother(DefaultSmoothing)
	s.Update(Point{X: 0, Y: 1000})

	var got Point
	for i := 0; i < 10*DefaultSmoothing; i++ {
		got = s.Update(target)
	}

	assert.InDelta(t, target.X, got.X, eps)
	assert.InDelta(t, target.Y, got.Y, eps)
}

func TestSmoother_Bounded(t *testing.T) {
	s := NewSmoother(DefaultSmoothing)
	start := Point{X: -500, Y: 2500}
	target := Point{X: 1000, Y: 10}
	s.Update(start)

	for i := 0; i < 10000; i++ {
		got := s.Update(target)
		if got.X < math.Min(start.X, target.X) || got.X > math.Max(start.X, target.X) {
			t.Fatalf("iteration %d: X %f left the input range", i, got.X)
		}
		if got.Y < math.Min(start.Y, target.Y) || got.Y > math.Max(start.Y, target.Y) {
			t.Fatalf("iteration %d: Y %f left the input range", i, got.Y)
		}
	}
}

func TestSmoother_Reset(t *testing.T) {
	s := NewSmoother(DefaultSmoothing)
	s.Update(Point{X: 10, Y: 10})
	s.Update(Point{X: 20, Y: 20})

	s.Reset()
	_, primed := s.Last()
	got := s.Update(Point{X: 500, Y: 400})

	assert.False(t, primed)
	assert.Equal(t, Point{X: 500, Y: 400}, got)
}

func TestSmoother_FactorOneDisablesSmoothing(t *testing.T) {
	s := NewSmoother(0)
	s.Update(Point{X: 0, Y: 0})

	got := s.Update(Point{X: 33, Y: 44})

	assert.Equal(t, Point{X: 33, Y: 44}, got)
}

func TestMapper_Map(t *testing.T) {
	m := NewMapper(DefaultCalibration, 1920, 1080)

	tests := []struct {
		name string
		in   detector.Point3D
		want Point
	}{
		{"centre", detector.Point3D{X: 0.5, Y: 0.5}, Point{X: 960, Y: 540}},
		{"rect corner", detector.Point3D{X: 0.1, Y: 0.1}, Point{X: 0, Y: 0}},
		{"far corner", detector.Point3D{X: 0.9, Y: 0.9}, Point{X: 1920, Y: 1080}},
		{"clamped below", detector.Point3D{X: 0.01, Y: -0.2}, Point{X: 0, Y: 0}},
		{"clamped above", detector.Point3D{X: 0.99, Y: 1.5}, Point{X: 1920, Y: 1080}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Map(tt.in)
			assert.InDelta(t, tt.want.X, got.X, 1e-6)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-6)
		})
	}
}

func TestMapper_PresentationUsesRightHalf(t *testing.T) {
	m := NewMapper(PresentationCalibration, 1280, 720)

	assert.Equal(t, 0.0, m.Map(detector.Point3D{X: 0.3, Y: 0.5}).X)
	assert.InDelta(t, 640, m.Map(detector.Point3D{X: 0.75, Y: 0.5}).X, 1e-6)
	assert.InDelta(t, 360, m.Map(detector.Point3D{X: 0.75, Y: 0.5}).Y, 1e-6)
}

func TestPoint_Round(t *testing.T) {
	x, y := Point{X: 10.4, Y: 10.6}.Round()
	assert.Equal(t, 10, x)
	assert.Equal(t, 11, y)
}
