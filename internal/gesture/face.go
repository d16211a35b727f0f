package gesture

import "github.com/ayusman/mudra/internal/detector"

// DefaultBlinkThreshold is the normalized lid gap below which the left eye
// counts as closed.
const DefaultBlinkThreshold = 0.0085

// FaceClassifier drives the pointer from the iris and clicks on a blink.
type FaceClassifier struct {
	BlinkThreshold float64
}

// NewFaceClassifier returns a FaceClassifier with the default blink threshold.
func NewFaceClassifier() *FaceClassifier {
	return &FaceClassifier{BlinkThreshold: DefaultBlinkThreshold}
}

// Classify returns Click for a blink, Move otherwise, and None when the mesh
// lacks the refined iris landmarks.
func (c *FaceClassifier) Classify(face *detector.Landmarks) Label {
	if face == nil || face.Kind != detector.KindFace || face.Len() < detector.NumFaceRefine {
		return None
	}
	gap := face.Points[detector.LeftEyeLower].Y - face.Points[detector.LeftEyeUpper].Y
	if gap < c.BlinkThreshold {
		return Click
	}
	return Move
}

// PointerSource returns the landmark that drives the pointer for a set.
func PointerSource(l *detector.Landmarks) (detector.Point3D, bool) {
	switch {
	case l == nil:
		return detector.Point3D{}, false
	case l.Kind == detector.KindFace && l.Len() >= detector.NumFaceRefine:
		return l.Points[detector.IrisCenter], true
	case l.Kind == detector.KindHand && l.Len() >= detector.NumLandmarks:
		return l.Points[detector.IndexTip], true
	}
	return detector.Point3D{}, false
}
