package input

import "sync"

// Gate hands out the single capability to drive a Device. Only the current
// Token holder's calls reach the device; calls through any other token are
// silently dropped.
type Gate struct {
	dev    Device
	mu     sync.Mutex
	holder *Token
}

// NewGate wraps dev. A nil dev yields a gate whose tokens drive nothing.
func NewGate(dev Device) *Gate {
	return &Gate{dev: dev}
}

// Acquire returns the capability for owner, or ErrBusy if it is held.
func (g *Gate) Acquire(owner string) (*Token, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.holder != nil {
		return nil, ErrBusy
	}
	t := &Token{gate: g, owner: owner}
	g.holder = t
	return t, nil
}

// Holder returns the owner of the current token, or "".
func (g *Gate) Holder() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.holder == nil {
		return ""
	}
	return g.holder.owner
}

func (g *Gate) do(t *Token, fn func(Device) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.holder != t || g.dev == nil {
		return nil
	}
	return fn(g.dev)
}

// Token is the capability to drive the gate's device. It implements Device.
type Token struct {
	gate  *Gate
	owner string
}

// Owner returns the name the token was acquired for.
func (t *Token) Owner() string {
	return t.owner
}

// Valid reports whether the token still holds the capability.
func (t *Token) Valid() bool {
	t.gate.mu.Lock()
	defer t.gate.mu.Unlock()
	return t.gate.holder == t
}

// Release gives the capability back. Later calls through t are no-ops.
func (t *Token) Release() {
	t.gate.mu.Lock()
	defer t.gate.mu.Unlock()
	if t.gate.holder == t {
		t.gate.holder = nil
	}
}

func (t *Token) MoveTo(x, y int) error {
	return t.gate.do(t, func(d Device) error { return d.MoveTo(x, y) })
}

func (t *Token) Click() error {
	return t.gate.do(t, func(d Device) error { return d.Click() })
}

func (t *Token) ButtonDown() error {
	return t.gate.do(t, func(d Device) error { return d.ButtonDown() })
}

func (t *Token) ButtonUp() error {
	return t.gate.do(t, func(d Device) error { return d.ButtonUp() })
}

func (t *Token) Scroll(delta int) error {
	return t.gate.do(t, func(d Device) error { return d.Scroll(delta) })
}

func (t *Token) ScreenSize() (int, int) {
	if t.gate.dev == nil {
		return 0, 0
	}
	return t.gate.dev.ScreenSize()
}
