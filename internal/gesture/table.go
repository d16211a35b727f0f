package gesture

import (
	"fmt"

	"github.com/ayusman/mudra/internal/detector"
)

// Entry maps one exact finger vector to a label.
type Entry struct {
	Pattern Fingers `json:"pattern"`
	Label   Label   `json:"label"`
}

// PinchRule fires Label when landmarks A and B are closer than MaxDistance
// frame pixels. RequireUp restricts the rule to hands with those fingers up.
type PinchRule struct {
	A           int      `json:"a"`
	B           int      `json:"b"`
	MaxDistance float64  `json:"max_distance"`
	Label       Label    `json:"label"`
	RequireUp   []Finger `json:"require_up,omitempty"`
}

// Table is the vocabulary of one mode. Entries are in priority order; pinch
// rules are checked before any entry.
type Table struct {
	Mode    Mode        `json:"mode"`
	Entries []Entry     `json:"entries"`
	Pinches []PinchRule `json:"pinches,omitempty"`
}

// Validate checks that labels belong to the vocabulary, that entry patterns
// are mutually exclusive, and that pinch rules reference real landmarks.
func (t *Table) Validate() error {
	seen := make(map[Fingers]Label, len(t.Entries))
	for _, e := range t.Entries {
		if !e.Label.Valid() || e.Label == None {
			return fmt.Errorf("%w: %s: label %q", ErrInvalidTable, t.Mode, e.Label)
		}
		if prev, ok := seen[e.Pattern]; ok {
			return fmt.Errorf("%w: %s: pattern %s bound to both %s and %s", ErrInvalidTable, t.Mode, e.Pattern, prev, e.Label)
		}
		seen[e.Pattern] = e.Label
	}
	for _, p := range t.Pinches {
		if !p.Label.Valid() || p.Label == None {
			return fmt.Errorf("%w: %s: pinch label %q", ErrInvalidTable, t.Mode, p.Label)
		}
		if p.A < 0 || p.B < 0 || p.A >= detector.NumLandmarks || p.B >= detector.NumLandmarks || p.A == p.B {
			return fmt.Errorf("%w: %s: pinch points %d/%d", ErrInvalidTable, t.Mode, p.A, p.B)
		}
		if p.MaxDistance <= 0 {
			return fmt.Errorf("%w: %s: pinch distance %f", ErrInvalidTable, t.Mode, p.MaxDistance)
		}
	}
	return nil
}

// DefaultPinchDistance is the fingertip distance in frame pixels below which
// two fingertips count as touching.
const DefaultPinchDistance = 30

// DefaultTables returns the built-in vocabulary of every finger-driven mode.
func DefaultTables() map[Mode]*Table {
	return map[Mode]*Table{
		ModeVirtualMouse: {
			Mode: ModeVirtualMouse,
			Pinches: []PinchRule{
				{A: detector.ThumbTip, B: detector.IndexTip, MaxDistance: DefaultPinchDistance, Label: Click, RequireUp: []Finger{Index}},
			},
			Entries: []Entry{
				{MustFingers("01000"), Move},
				{MustFingers("11000"), Move},
				{MustFingers("01111"), ScrollUp},
				{MustFingers("00001"), ScrollDown},
			},
		},
		ModeDragDrop: {
			Mode: ModeDragDrop,
			Entries: []Entry{
				{MustFingers("01000"), Move},
				{MustFingers("01100"), Click},
				{MustFingers("01110"), DragStart},
				{MustFingers("01111"), Drop},
			},
		},
		ModePresentation: {
			Mode: ModePresentation,
			Entries: []Entry{
				{MustFingers("10000"), Previous},
				{MustFingers("00001"), Next},
				{MustFingers("01100"), Pointer},
				{MustFingers("01000"), Draw},
				{MustFingers("01110"), Erase},
			},
		},
		ModeSignLanguage: {
			Mode: ModeSignLanguage,
			Pinches: []PinchRule{
				{A: detector.ThumbTip, B: detector.IndexTip, MaxDistance: DefaultPinchDistance, Label: Fine},
			},
			Entries: []Entry{
				{MustFingers("11111"), Wait},
				{MustFingers("10000"), DrinkWater},
				{MustFingers("11000"), Smile},
				{MustFingers("11100"), Understood},
				{MustFingers("01001"), RockOn},
				{MustFingers("01000"), No},
				{MustFingers("10001"), Call},
				{MustFingers("11001"), ILoveYou},
				{MustFingers("01110"), Slow},
				{MustFingers("01100"), Louder},
				{MustFingers("00001"), Repeat},
			},
		},
	}
}
