package detector

// Synthetic landmark sets used by tests across packages. Hands are laid out as
// a palm facing a mirrored camera: for a right hand the thumb extends toward
// smaller X, and an extended finger has its tip well above the PIP joint.

type fingerColumn struct {
	mcp, pip, dip, tip int
	x                  float64
}

var fingerColumns = []fingerColumn{
	{IndexMCP, IndexPIP, IndexDIP, IndexTip, 0.45},
	{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip, 0.50},
	{RingMCP, RingPIP, RingDIP, RingTip, 0.55},
	{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip, 0.60},
}

// HandForFingers returns a 21-point hand whose fingers are extended according
// to up (thumb, index, middle, ring, pinky). handedness is "Left" or "Right";
// a left hand is the right hand mirrored around x=0.5.
func HandForFingers(up [5]bool, handedness string) Landmarks {
	points := make([]Point3D, NumLandmarks)

	points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	points[ThumbCMC] = Point3D{X: 0.45, Y: 0.75}
	points[ThumbMCP] = Point3D{X: 0.41, Y: 0.70}
	points[ThumbIP] = Point3D{X: 0.38, Y: 0.66}
	if up[0] {
		points[ThumbTip] = Point3D{X: 0.33, Y: 0.62}
	} else {
		// folded across the palm
		points[ThumbTip] = Point3D{X: 0.50, Y: 0.72}
	}

	for i, col := range fingerColumns {
		points[col.mcp] = Point3D{X: col.x, Y: 0.65}
		points[col.pip] = Point3D{X: col.x, Y: 0.55}
		if up[i+1] {
			points[col.dip] = Point3D{X: col.x, Y: 0.47}
			points[col.tip] = Point3D{X: col.x, Y: 0.40}
		} else {
			points[col.dip] = Point3D{X: col.x, Y: 0.60, Z: -0.03}
			points[col.tip] = Point3D{X: col.x, Y: 0.62, Z: -0.02}
		}
	}

	if handedness == "Left" {
		for i := range points {
			points[i].X = 1 - points[i].X
		}
	}

	return Landmarks{
		Kind:       KindHand,
		Points:     points,
		Handedness: handedness,
		Score:      0.95,
	}
}

// WithTip returns a copy of hand with the given point moved to (x, y).
func WithTip(hand Landmarks, index int, x, y float64) Landmarks {
	points := make([]Point3D, len(hand.Points))
	copy(points, hand.Points)
	points[index] = Point3D{X: x, Y: y, Z: points[index].Z}
	hand.Points = points
	return hand
}

// Pinch returns a copy of hand with point a moved onto point b.
func Pinch(hand Landmarks, a, b int) Landmarks {
	target := hand.Points[b]
	return WithTip(hand, a, target.X+0.002, target.Y+0.002)
}

// ThumbsUpLandmarks returns a right hand with only the thumb extended.
func ThumbsUpLandmarks() Landmarks {
	return HandForFingers([5]bool{true, false, false, false, false}, "Right")
}

// OpenPalmLandmarks returns a right hand with all fingers extended.
func OpenPalmLandmarks() Landmarks {
	return HandForFingers([5]bool{true, true, true, true, true}, "Right")
}

// FaceWithIris returns a refined face mesh with the iris centre at (x, y).
// When blink is set the left eyelids nearly touch.
func FaceWithIris(x, y float64, blink bool) Landmarks {
	points := make([]Point3D, NumFaceRefine)
	for i := range points {
		points[i] = Point3D{X: 0.5, Y: 0.5}
	}
	points[IrisCenter] = Point3D{X: x, Y: y}
	points[LeftEyeUpper] = Point3D{X: 0.4, Y: 0.40}
	if blink {
		points[LeftEyeLower] = Point3D{X: 0.4, Y: 0.405}
	} else {
		points[LeftEyeLower] = Point3D{X: 0.4, Y: 0.42}
	}
	return Landmarks{Kind: KindFace, Points: points, Score: 0.9}
}
