package gesture

import "github.com/ayusman/mudra/internal/detector"

// DefaultSmoothing is the default smoothing factor k.
const DefaultSmoothing = 7

// Rect is a normalized sub-region of the frame.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// DefaultCalibration keeps a 10% margin so the pointer can reach screen
// edges without the hand leaving the frame.
var DefaultCalibration = Rect{MinX: 0.1, MinY: 0.1, MaxX: 0.9, MaxY: 0.9}

// PresentationCalibration uses the right half of the frame and trims 150px
// of a 720px frame at the top and bottom.
var PresentationCalibration = Rect{MinX: 0.5, MinY: 150.0 / 720, MaxX: 1.0, MaxY: 570.0 / 720}

// Mapper maps normalized landmark positions into a target surface.
type Mapper struct {
	Calib  Rect
	Width  float64
	Height float64
}

// NewMapper returns a Mapper onto a width×height surface.
func NewMapper(calib Rect, width, height int) *Mapper {
	return &Mapper{Calib: calib, Width: float64(width), Height: float64(height)}
}

// Map linearly interpolates p from the calibration rect onto the surface,
// clamping values outside the rect to the surface edges.
func (m *Mapper) Map(p detector.Point3D) Point {
	return Point{
		X: interp(p.X, m.Calib.MinX, m.Calib.MaxX, 0, m.Width),
		Y: interp(p.Y, m.Calib.MinY, m.Calib.MaxY, 0, m.Height),
	}
}

func interp(v, inMin, inMax, outMin, outMax float64) float64 {
	if inMax <= inMin {
		return outMin
	}
	if v <= inMin {
		return outMin
	}
	if v >= inMax {
		return outMax
	}
	return outMin + (v-inMin)*(outMax-outMin)/(inMax-inMin)
}

// Smoother is an exponential weighted average over pointer positions.
// It is owned by a single session worker and is not safe for concurrent use.
type Smoother struct {
	factor float64
	prev   Point
	primed bool
}

// NewSmoother returns a Smoother with factor k. k <= 1 disables smoothing.
func NewSmoother(k float64) *Smoother {
	if k < 1 {
		k = 1
	}
	return &Smoother{factor: k}
}

// Update folds raw into the running average and returns the smoothed point.
// The first update after Reset returns raw unchanged.
func (s *Smoother) Update(raw Point) Point {
	if !s.primed {
		s.prev = raw
		s.primed = true
		return raw
	}
	k := s.factor
	s.prev = Point{
		X: (raw.X + s.prev.X*(k-1)) / k,
		Y: (raw.Y + s.prev.Y*(k-1)) / k,
	}
	return s.prev
}

// Last returns the most recent smoothed point.
func (s *Smoother) Last() (Point, bool) {
	return s.prev, s.primed
}

// Reset forgets the running average.
func (s *Smoother) Reset() {
	s.prev = Point{}
	s.primed = false
}
