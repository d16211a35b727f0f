package gesture

import (
	"image"

	"github.com/ayusman/mudra/internal/detector"
)

// Classifier maps finger vectors and fingertip distances to labels for one mode.
type Classifier struct {
	table   *Table
	lookup  map[Fingers]Label
	pinches []PinchRule
}

// NewClassifier validates t and builds its lookup table.
func NewClassifier(t *Table) (*Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	c := &Classifier{
		table:   t,
		lookup:  make(map[Fingers]Label, len(t.Entries)),
		pinches: append([]PinchRule(nil), t.Pinches...),
	}
	for _, e := range t.Entries {
		c.lookup[e.Pattern] = e.Label
	}
	return c, nil
}

// Mode returns the mode the classifier was built for.
func (c *Classifier) Mode() Mode {
	return c.table.Mode
}

// Classify returns the label for one frame. Pinch rules take precedence over
// exact vector matches; hand may be nil, in which case only vectors are used.
// Unknown vectors classify as None.
func (c *Classifier) Classify(f Fingers, hand *detector.Landmarks, frame image.Point) Label {
	if hand != nil && hand.Len() >= detector.NumLandmarks && frame.X > 0 && frame.Y > 0 {
		for _, p := range c.pinches {
			if !f.Up(p.RequireUp...) {
				continue
			}
			if hand.PixelDistance(p.A, p.B, frame.X, frame.Y) < p.MaxDistance {
				return p.Label
			}
		}
	}

	if l, ok := c.lookup[f]; ok {
		return l
	}
	return None
}
