// Package dispatch turns fired gesture decisions into effects: synthetic OS
// input through an input.Device and application state such as the slide
// deck, annotations and captions.
package dispatch

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/slides"
)

// DefaultScrollDelta is the wheel amount of one scroll gesture.
const DefaultScrollDelta = 10

// CaptionSink receives every caption the dispatcher shows.
type CaptionSink interface {
	OnCaption(label gesture.Label, text string)
}

// CaptionFunc adapts a function to CaptionSink.
type CaptionFunc func(label gesture.Label, text string)

func (f CaptionFunc) OnCaption(label gesture.Label, text string) { f(label, text) }

// Config holds the dispatcher's collaborators.
type Config struct {
	Device      input.Device
	Deck        *slides.Deck
	ScrollDelta int
	Logger      logrus.FieldLogger
}

// Snapshot is a copy of the application-level state.
type Snapshot struct {
	Slide      int             `json:"slide"`
	SlideCount int             `json:"slide_count"`
	SlidePath  string          `json:"-"`
	Strokes    []slides.Stroke `json:"strokes,omitempty"`
	Pointer    *gesture.Point  `json:"pointer,omitempty"`
	Caption    string          `json:"caption,omitempty"`
	Dragging   bool            `json:"dragging"`
	Degraded   bool            `json:"degraded"`
	Last       gesture.Label   `json:"last,omitempty"`
}

// Dispatcher applies decisions. It is driven by one session worker; Snapshot
// may be called from any goroutine.
type Dispatcher struct {
	dev         input.Device
	deck        *slides.Deck
	scrollDelta int
	log         logrus.FieldLogger

	mu       sync.Mutex
	trail    slides.Trail
	pointer  *gesture.Point
	caption  string
	dragging bool
	degraded bool
	lastErr  error
	last     gesture.Label
	sinks    []CaptionSink
}

// New creates a Dispatcher.
func New(cfg Config) *Dispatcher {
	if cfg.ScrollDelta <= 0 {
		cfg.ScrollDelta = DefaultScrollDelta
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Dispatcher{
		dev:         cfg.Device,
		deck:        cfg.Deck,
		scrollDelta: cfg.ScrollDelta,
		log:         cfg.Logger.WithField("component", "dispatch"),
	}
}

// AddSink registers a caption sink.
func (d *Dispatcher) AddSink(s CaptionSink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, s)
}

// Dispatch applies dec at pos. It returns the device error that switched the
// dispatcher into degraded mode, if this call did so.
func (d *Dispatcher) Dispatch(dec gesture.Decision, pos gesture.Point) error {
	caption, sinks, err := d.apply(dec, pos)
	for _, s := range sinks {
		s.OnCaption(dec.Label, caption)
	}
	return err
}

// apply updates state under d.mu and returns the sinks to notify once the
// lock is dropped. A panicking device leaves d.mu unlocked so Release still
// runs during teardown.
func (d *Dispatcher) apply(dec gesture.Decision, pos gesture.Point) (caption string, sinks []CaptionSink, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if dec.Released == gesture.Draw {
		d.trail.Close()
	}
	if !dec.Fire {
		return "", nil, nil
	}
	d.last = dec.Label

	switch l := dec.Label; {
	case l == gesture.Move:
		err = d.osCall(func() error { return d.moveTo(pos) })
		d.pointer = nil
	case l == gesture.Click:
		err = d.osCall(func() error { return d.dev.Click() })
	case l == gesture.DragStart:
		err = d.osCall(func() error {
			if err := d.moveTo(pos); err != nil {
				return err
			}
			if d.dragging {
				return nil
			}
			if err := d.dev.ButtonDown(); err != nil {
				return err
			}
			d.dragging = true
			return nil
		})
	case l == gesture.DragMove:
		err = d.osCall(func() error { return d.moveTo(pos) })
	case l == gesture.Drop:
		if d.dragging {
			err = d.osCall(func() error { return d.buttonUp() })
		}
	case l == gesture.ScrollUp:
		err = d.osCall(func() error { return d.dev.Scroll(d.scrollDelta) })
	case l == gesture.ScrollDown:
		err = d.osCall(func() error { return d.dev.Scroll(-d.scrollDelta) })
	case l == gesture.Next:
		// Strokes stay on screen across page turns; erase removes them.
		if d.deck != nil {
			d.deck.Next()
		}
		d.pointer = nil
	case l == gesture.Previous:
		if d.deck != nil {
			d.deck.Prev()
		}
		d.pointer = nil
	case l == gesture.Pointer:
		p := pos
		d.pointer = &p
	case l == gesture.Draw:
		if dec.Phase == gesture.PhaseBegin {
			d.trail.Begin()
		}
		d.trail.Append(pos)
		p := pos
		d.pointer = &p
	case l == gesture.Erase:
		d.trail.Pop()
		d.pointer = nil
	case l.IsCaption():
		caption = l.Caption()
		d.caption = caption
		sinks = append(sinks, d.sinks...)
	}
	return caption, sinks, err
}

func (d *Dispatcher) moveTo(p gesture.Point) error {
	x, y := p.Round()
	return d.dev.MoveTo(x, y)
}

func (d *Dispatcher) buttonUp() error {
	err := d.dev.ButtonUp()
	d.dragging = false
	return err
}

// osCall runs fn unless degraded. The first failure degrades the dispatcher.
// Caller holds d.mu.
func (d *Dispatcher) osCall(fn func() error) error {
	if d.degraded || d.dev == nil {
		return nil
	}
	if err := fn(); err != nil {
		d.degraded = true
		d.lastErr = err
		d.log.WithError(err).Warn("input synthesis failed; continuing in detection-only mode")
		return fmt.Errorf("dispatch: %w", err)
	}
	return nil
}

// Release ends any held drag and clears transient state. It is safe to call
// more than once.
func (d *Dispatcher) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dragging && d.dev != nil {
		if err := d.buttonUp(); err != nil {
			d.log.WithError(err).Warn("release held button")
		}
	}
	d.dragging = false
	d.trail.Clear()
	d.pointer = nil
}

// Degraded reports whether OS effects have been disabled by a device error.
func (d *Dispatcher) Degraded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.degraded
}

// Err returns the device error that degraded the dispatcher.
func (d *Dispatcher) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// Snapshot returns a copy of the application-level state.
func (d *Dispatcher) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := Snapshot{
		Strokes:  d.trail.Strokes(),
		Caption:  d.caption,
		Dragging: d.dragging,
		Degraded: d.degraded,
		Last:     d.last,
	}
	if d.pointer != nil {
		p := *d.pointer
		s.Pointer = &p
	}
	if d.deck != nil {
		s.Slide = d.deck.Index()
		s.SlideCount = d.deck.Len()
		s.SlidePath = d.deck.Current()
	}
	return s
}
