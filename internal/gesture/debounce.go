package gesture

import "time"

// DefaultCooldown is the minimum interval between one-shot gestures.
const DefaultCooldown = 500 * time.Millisecond

// PolicyKind tells the debouncer how a label fires.
type PolicyKind int

const (
	// NoFire labels never reach the dispatcher.
	NoFire PolicyKind = iota
	// Continuous labels fire on every qualifying frame.
	Continuous
	// OneShot labels fire at most once per cooldown window within their group.
	OneShot
	// Held labels fire on the not-held to held transition, and optionally on
	// every following frame while held.
	Held
)

// Policy is the firing rule of one label.
type Policy struct {
	Kind PolicyKind
	// Group is shared by one-shot labels that exclude each other.
	Group string
	// Continue relabels held frames after the first one.
	Continue Label
	// Repeat makes held frames after the first one fire.
	Repeat bool
}

// DiscreteGroup is the cooldown group of the built-in one-shot gestures.
const DiscreteGroup = "discrete"

// PolicyFor returns the firing rule for l.
func PolicyFor(l Label) Policy {
	switch l {
	case Click, Next, Previous, Erase:
		return Policy{Kind: OneShot, Group: DiscreteGroup}
	case Move, DragMove, Drop, ScrollUp, ScrollDown, Pointer:
		return Policy{Kind: Continuous}
	case DragStart:
		return Policy{Kind: Held, Continue: DragMove, Repeat: true}
	case Draw:
		return Policy{Kind: Held, Repeat: true}
	}
	if l.IsCaption() {
		return Policy{Kind: Held}
	}
	return Policy{Kind: NoFire}
}

// Decision is the outcome of admitting one frame's label.
type Decision struct {
	Label Label
	Fire  bool
	Phase Phase
	// Released is the held label that ended on this frame, if any.
	Released Label
}

// Debouncer applies cooldowns and held-gesture edge detection. Its state is
// owned by one session worker and is not safe for concurrent use.
type Debouncer struct {
	cooldown  time.Duration
	lastFired map[string]time.Time
	held      Label
}

// NewDebouncer returns a Debouncer with the given one-shot cooldown.
func NewDebouncer(cooldown time.Duration) *Debouncer {
	if cooldown < 0 {
		cooldown = 0
	}
	return &Debouncer{
		cooldown:  cooldown,
		lastFired: make(map[string]time.Time),
	}
}

// Admit decides whether the label seen at now fires.
func (d *Debouncer) Admit(l Label, now time.Time) Decision {
	dec := Decision{Label: l}

	if d.held != "" && d.held != l {
		dec.Released = d.held
		d.held = ""
	}

	p := PolicyFor(l)
	switch p.Kind {
	case Continuous:
		dec.Fire = true
		dec.Phase = PhaseContinuous

	case OneShot:
		if last, ok := d.lastFired[p.Group]; ok && now.Sub(last) < d.cooldown {
			return dec
		}
		d.lastFired[p.Group] = now
		dec.Fire = true
		dec.Phase = PhaseTap

	case Held:
		if d.held == l {
			dec.Phase = PhaseHold
			dec.Fire = p.Repeat
			if p.Continue != "" {
				dec.Label = p.Continue
			}
			return dec
		}
		d.held = l
		dec.Fire = true
		dec.Phase = PhaseBegin
	}

	return dec
}

// Holding returns the label currently held, or "".
func (d *Debouncer) Holding() Label {
	return d.held
}

// Reset clears cooldown and held state.
func (d *Debouncer) Reset() {
	d.lastFired = make(map[string]time.Time)
	d.held = ""
}
