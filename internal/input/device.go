// Package input synthesizes OS pointer input and guards the shared device
// behind a capability token.
package input

import "errors"

var (
	// ErrBusy is returned when the input capability is already held.
	ErrBusy = errors.New("input device is held by another session")
	// ErrDenied is returned by devices the OS refuses to drive.
	ErrDenied = errors.New("input synthesis denied")
)

// Device drives the primary pointer.
type Device interface {
	MoveTo(x, y int) error
	Click() error
	ButtonDown() error
	ButtonUp() error
	Scroll(delta int) error
	ScreenSize() (width, height int)
}
