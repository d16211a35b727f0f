package input

import "sync"

// Op names a recorded device call.
type Op string

const (
	OpMove   Op = "move"
	OpClick  Op = "click"
	OpDown   Op = "down"
	OpUp     Op = "up"
	OpScroll Op = "scroll"
)

// Call is one recorded device call.
type Call struct {
	Op    Op
	X, Y  int
	Delta int
}

// Recorder is a Device that records calls instead of driving the OS.
type Recorder struct {
	mu     sync.Mutex
	calls  []Call
	width  int
	height int
	err    error
}

// NewRecorder returns a Recorder reporting a width×height screen.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height}
}

// FailWith makes every following call record nothing and return err.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, c)
	return nil
}

func (r *Recorder) MoveTo(x, y int) error { return r.record(Call{Op: OpMove, X: x, Y: y}) }
func (r *Recorder) Click() error          { return r.record(Call{Op: OpClick}) }
func (r *Recorder) ButtonDown() error     { return r.record(Call{Op: OpDown}) }
func (r *Recorder) ButtonUp() error       { return r.record(Call{Op: OpUp}) }
func (r *Recorder) Scroll(delta int) error {
	return r.record(Call{Op: OpScroll, Delta: delta})
}

func (r *Recorder) ScreenSize() (int, int) { return r.width, r.height }

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Ops returns the recorded op sequence.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]Op, len(r.calls))
	for i, c := range r.calls {
		ops[i] = c.Op
	}
	return ops
}

// Reset discards recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
