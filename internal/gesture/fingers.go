package gesture

import (
	"fmt"

	"github.com/ayusman/mudra/internal/detector"
)

// Finger indexes a Fingers vector.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
)

// Fingers is the up/down state of thumb, index, middle, ring and pinky.
type Fingers [5]bool

// tipLandmarks maps fingers to their tip landmark.
var tipLandmarks = [5]int{detector.ThumbTip, detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}

// TipLandmark returns the landmark index of f's fingertip.
func TipLandmark(f Finger) int {
	return tipLandmarks[f]
}

// String renders the vector as five binary digits, thumb first.
func (f Fingers) String() string {
	b := make([]byte, 5)
	for i, up := range f {
		b[i] = '0'
		if up {
			b[i] = '1'
		}
	}
	return string(b)
}

// Up reports whether every finger in fs is up.
func (f Fingers) Up(fs ...Finger) bool {
	for _, x := range fs {
		if !f[x] {
			return false
		}
	}
	return true
}

// Set returns the fingers that are up, thumb first.
func (f Fingers) Set() []Finger {
	var fs []Finger
	for i, up := range f {
		if up {
			fs = append(fs, Finger(i))
		}
	}
	return fs
}

// Mask returns the vector with exactly fs up.
func Mask(fs ...Finger) Fingers {
	var f Fingers
	for _, x := range fs {
		f[x] = true
	}
	return f
}

// ParseFingers parses the String form, e.g. "01000".
func ParseFingers(s string) (Fingers, error) {
	var f Fingers
	if len(s) != 5 {
		return f, fmt.Errorf("finger pattern %q: want 5 digits", s)
	}
	for i := 0; i < 5; i++ {
		switch s[i] {
		case '0':
		case '1':
			f[i] = true
		default:
			return f, fmt.Errorf("finger pattern %q: invalid digit %q", s, s[i])
		}
	}
	return f, nil
}

// MustFingers is ParseFingers for literals.
func MustFingers(s string) Fingers {
	f, err := ParseFingers(s)
	if err != nil {
		panic(err)
	}
	return f
}

// Extract computes the finger state of one hand. mirrored tells whether the
// frame was flipped horizontally before detection. It reports ok=false when
// the set is not a complete hand.
//
// The thumb is up when its tip lies on the extended side of the IP joint
// along X only; rotated hands are not accounted for.
func Extract(hand *detector.Landmarks, mirrored bool) (Fingers, bool) {
	var f Fingers
	if hand == nil || hand.Kind != detector.KindHand || len(hand.Points) < detector.NumLandmarks {
		return f, false
	}

	p := hand.Points
	extendsLeft := mirrored != (hand.Handedness == "Left")
	if extendsLeft {
		f[Thumb] = p[detector.ThumbTip].X < p[detector.ThumbIP].X
	} else {
		f[Thumb] = p[detector.ThumbTip].X > p[detector.ThumbIP].X
	}

	for i := Index; i <= Pinky; i++ {
		tip := tipLandmarks[i]
		f[i] = p[tip].Y < p[tip-2].Y
	}

	return f, true
}
