// Package gesture turns per-frame landmarks into debounced gesture events:
// finger-state extraction, table-driven classification, pointer mapping and
// smoothing, and cooldown/edge handling.
package gesture

import (
	"fmt"
	"time"
)

// Label is a gesture name from the fixed vocabulary.
type Label string

const (
	None       Label = "none"
	Move       Label = "move"
	Click      Label = "click"
	DragStart  Label = "drag-start"
	DragMove   Label = "drag-move"
	Drop       Label = "drop"
	ScrollUp   Label = "scroll-up"
	ScrollDown Label = "scroll-down"
	Next       Label = "next"
	Previous   Label = "previous"
	Pointer    Label = "pointer"
	Draw       Label = "draw"
	Erase      Label = "erase"
)

// Caption labels used by sign-language mode.
const (
	Wait       Label = "wait"
	DrinkWater Label = "drink-water"
	Smile      Label = "smile"
	Understood Label = "understood"
	RockOn     Label = "rock-on"
	No         Label = "no"
	Call       Label = "call"
	ILoveYou   Label = "i-love-you"
	Slow       Label = "slow"
	Louder     Label = "louder"
	Repeat     Label = "repeat"
	Fine       Label = "fine"
)

var captions = map[Label]string{
	Wait:       "Wait",
	DrinkWater: "Drink Water",
	Smile:      "Smile",
	Understood: "Understood",
	RockOn:     "Rock On",
	No:         "No",
	Call:       "Call",
	ILoveYou:   "I Love U",
	Slow:       "Slow",
	Louder:     "Louder",
	Repeat:     "Repeat",
	Fine:       "Fine",
}

var controls = map[Label]bool{
	None: true, Move: true, Click: true, DragStart: true, DragMove: true, Drop: true,
	ScrollUp: true, ScrollDown: true, Next: true, Previous: true, Pointer: true,
	Draw: true, Erase: true,
}

// Valid reports whether l belongs to the vocabulary.
func (l Label) Valid() bool {
	if controls[l] {
		return true
	}
	_, ok := captions[l]
	return ok
}

// IsCaption reports whether l is a sign-language caption.
func (l Label) IsCaption() bool {
	_, ok := captions[l]
	return ok
}

// Caption returns the display text of a caption label, or "" for other labels.
func (l Label) Caption() string {
	return captions[l]
}

// CaptionLabels returns every caption label.
func CaptionLabels() []Label {
	labels := make([]Label, 0, len(captions))
	for l := range captions {
		labels = append(labels, l)
	}
	return labels
}

// Mode selects the gesture vocabulary and the effects a session drives.
type Mode string

const (
	ModeVirtualMouse Mode = "virtual-mouse"
	ModeDragDrop     Mode = "drag-drop"
	ModePresentation Mode = "presentation"
	ModeSignLanguage Mode = "sign-language"
	ModeEyeMouse     Mode = "eye-mouse"
)

// Modes lists every supported mode.
func Modes() []Mode {
	return []Mode{ModeVirtualMouse, ModeDragDrop, ModePresentation, ModeSignLanguage, ModeEyeMouse}
}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Point is a position in screen or canvas pixels.
type Point struct {
	X float64 `json:"x" cbor:"x"`
	Y float64 `json:"y" cbor:"y"`
}

// Round returns the point rounded to whole pixels.
func (p Point) Round() (int, int) {
	return int(p.X + 0.5), int(p.Y + 0.5)
}

// Phase describes where a fired event sits in its gesture's lifetime.
type Phase string

const (
	PhaseTap        Phase = "tap"
	PhaseContinuous Phase = "continuous"
	PhaseBegin      Phase = "begin"
	PhaseHold       Phase = "hold"
)

// Event is one fired gesture.
type Event struct {
	Label     Label     `json:"label" cbor:"label"`
	Position  Point     `json:"position" cbor:"position"`
	Timestamp time.Time `json:"timestamp" cbor:"timestamp"`
	Phase     Phase     `json:"phase" cbor:"phase"`
	Mode      Mode      `json:"mode" cbor:"mode"`
	Caption   string    `json:"caption,omitempty" cbor:"caption,omitempty"`
}
