// Package detector provides landmark detection interfaces and types for gesture recognition.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Face mesh landmark indices used by the eye-driven modes.
const (
	LeftEyeLower  = 145
	LeftEyeUpper  = 159
	IrisCenter    = 475
	NumFaceMesh   = 468
	NumFaceRefine = 478
)

// Kind identifies which detector model produced a landmark set.
type Kind string

const (
	KindHand Kind = "hand"
	KindFace Kind = "face"
)

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x" cbor:"x"`
	Y float64 `json:"y" cbor:"y"`
	Z float64 `json:"z" cbor:"z"`
}

// Landmarks is one detected hand or face. Coordinates are normalized to [0,1]
// relative to frame width and height. The slice is produced fresh for every frame.
type Landmarks struct {
	Kind       Kind      `json:"kind"`
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness,omitempty"` // "Left" or "Right"
	Score      float64   `json:"score"`
}

// Len returns the number of points in the set.
func (l *Landmarks) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Points)
}

// Pixel returns point i scaled to a frame of the given size.
func (l *Landmarks) Pixel(i, width, height int) (float64, float64) {
	p := l.Points[i]
	return p.X * float64(width), p.Y * float64(height)
}

// PixelDistance returns the Euclidean distance between points a and b in frame pixels.
func (l *Landmarks) PixelDistance(a, b, width, height int) float64 {
	ax, ay := l.Pixel(a, width, height)
	bx, by := l.Pixel(b, width, height)
	return math.Hypot(ax-bx, ay-by)
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Normalize normalizes hand landmarks relative to wrist position and hand size.
// The result has the wrist at origin and is scaled so that the distance from
// wrist to middle finger MCP is 1.0. Returns nil for anything that is not a
// complete hand.
func (l *Landmarks) Normalize() *Landmarks {
	if l == nil || l.Kind != KindHand || len(l.Points) < NumLandmarks {
		return nil
	}

	normalized := &Landmarks{
		Kind:       l.Kind,
		Points:     make([]Point3D, len(l.Points)),
		Handedness: l.Handedness,
		Score:      l.Score,
	}

	wrist := l.Points[Wrist]
	for i, p := range l.Points {
		normalized.Points[i] = Point3D{X: p.X - wrist.X, Y: p.Y - wrist.Y, Z: p.Z - wrist.Z}
	}

	scale := distance3D(Point3D{}, normalized.Points[MiddleMCP])
	if scale < 1e-10 {
		return normalized
	}

	for i := range normalized.Points {
		normalized.Points[i].X /= scale
		normalized.Points[i].Y /= scale
		normalized.Points[i].Z /= scale
	}

	return normalized
}
