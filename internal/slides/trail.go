package slides

import "github.com/ayusman/mudra/internal/gesture"

// Stroke is one continuous annotation line in canvas pixels.
type Stroke []gesture.Point

// Trail is the ordered list of annotation strokes over the current slide.
// The last stroke may be open; closed strokes never change.
type Trail struct {
	strokes []Stroke
	open    bool
}

// Begin closes any open stroke and opens a new, empty one.
func (t *Trail) Begin() {
	t.Close()
	t.strokes = append(t.strokes, Stroke{})
	t.open = true
}

// Append adds p to the open stroke, opening one if needed.
func (t *Trail) Append(p gesture.Point) {
	if !t.open {
		t.Begin()
	}
	last := len(t.strokes) - 1
	t.strokes[last] = append(t.strokes[last], p)
}

// Close ends the open stroke. Empty strokes are discarded.
func (t *Trail) Close() {
	if !t.open {
		return
	}
	t.open = false
	last := len(t.strokes) - 1
	if len(t.strokes[last]) == 0 {
		t.strokes = t.strokes[:last]
	}
}

// Open reports whether a stroke is being drawn.
func (t *Trail) Open() bool { return t.open }

// Pop removes the most recent stroke. It reports false when there is none.
func (t *Trail) Pop() bool {
	if len(t.strokes) == 0 {
		return false
	}
	t.strokes = t.strokes[:len(t.strokes)-1]
	t.open = false
	return true
}

// Clear removes every stroke.
func (t *Trail) Clear() {
	t.strokes = nil
	t.open = false
}

// Len returns the number of strokes, including an open one.
func (t *Trail) Len() int { return len(t.strokes) }

// Strokes returns a deep copy of the strokes.
func (t *Trail) Strokes() []Stroke {
	out := make([]Stroke, len(t.strokes))
	for i, s := range t.strokes {
		out[i] = append(Stroke(nil), s...)
	}
	return out
}
