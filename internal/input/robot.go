package input

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// RobotDevice drives the OS pointer through robotgo.
type RobotDevice struct {
	width  int
	height int
}

// NewRobotDevice queries the screen size and returns a device for it.
// A zero-sized screen means there is no display to drive.
func NewRobotDevice() (*RobotDevice, error) {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: no display (screen %dx%d)", ErrDenied, w, h)
	}
	return &RobotDevice{width: w, height: h}, nil
}

func (d *RobotDevice) MoveTo(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (d *RobotDevice) Click() error {
	robotgo.Click("left")
	return nil
}

func (d *RobotDevice) ButtonDown() error {
	if err := robotgo.Toggle("left"); err != nil {
		return fmt.Errorf("button down: %w", err)
	}
	return nil
}

func (d *RobotDevice) ButtonUp() error {
	if err := robotgo.Toggle("left", "up"); err != nil {
		return fmt.Errorf("button up: %w", err)
	}
	return nil
}

func (d *RobotDevice) Scroll(delta int) error {
	robotgo.Scroll(0, delta)
	return nil
}

func (d *RobotDevice) ScreenSize() (int, int) {
	return d.width, d.height
}
