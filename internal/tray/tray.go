// Package tray provides the system tray menu for mudra.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/gesture"
)

// Tray represents the system tray application. It doubles as a session
// observer so the menu shows the last fired gesture.
type Tray struct {
	onStart    func(mode gesture.Mode)
	onStop     func()
	onSettings func()
	onQuit     func()
	mu         sync.RWMutex

	running gesture.Mode
	last    gesture.Event

	// Menu items stored for later updates
	menuStatus      *systray.MenuItem
	menuStop        *systray.MenuItem
	menuLastGesture *systray.MenuItem
}

// New creates a new Tray instance in the idle state.
func New() *Tray {
	return &Tray{}
}

// OnStart sets the callback run when a mode is picked from the menu.
func (t *Tray) OnStart(fn func(mode gesture.Mode)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStart = fn
}

// OnStop sets the callback run when Stop is clicked.
func (t *Tray) OnStop(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStop = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra gesture control")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(statusTitle(t.running), "Current session")
	t.menuStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	modes := gesture.Modes()
	starts := make([]*systray.MenuItem, len(modes))
	for i, m := range modes {
		starts[i] = systray.AddMenuItem("Start "+modeTitle(m), "Start a "+string(m)+" session")
	}

	t.mu.Lock()
	t.menuStop = systray.AddMenuItem("Stop", "Stop the running session")
	if t.running == "" {
		t.menuStop.Disable()
	}
	systray.AddSeparator()
	t.menuLastGesture = systray.AddMenuItem(lastGestureTitle(t.last), "Last detected gesture")
	t.menuLastGesture.Disable()
	stop := t.menuStop
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	for i, item := range starts {
		mode := modes[i]
		go func() {
			for range item.ClickedCh {
				t.handleStart(mode)
			}
		}()
	}

	go func() {
		for {
			select {
			case <-stop.ClickedCh:
				t.handleStop()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleStart(mode gesture.Mode) {
	t.mu.RLock()
	callback := t.onStart
	t.mu.RUnlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(mode)
	}
}

func (t *Tray) handleStop() {
	t.mu.RLock()
	callback := t.onStop
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetRunning updates the menu for a running session in mode. An empty mode
// means idle.
func (t *Tray) SetRunning(mode gesture.Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = mode
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(statusTitle(mode))
	}
	if t.menuStop != nil {
		if mode == "" {
			t.menuStop.Disable()
		} else {
			t.menuStop.Enable()
		}
	}
}

// OnGesture records ev as the last gesture.
func (t *Tray) OnGesture(ev gesture.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = ev
	if t.menuLastGesture != nil {
		t.menuLastGesture.SetTitle(lastGestureTitle(ev))
	}
}

// LastGesture returns the most recent event seen.
func (t *Tray) LastGesture() gesture.Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// Running returns the mode shown as running, or "" when idle.
func (t *Tray) Running() gesture.Mode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}

func statusTitle(mode gesture.Mode) string {
	if mode == "" {
		return "○ Idle"
	}
	return "● Running: " + modeTitle(mode)
}

func lastGestureTitle(ev gesture.Event) string {
	if ev.Label == "" {
		return "Last: none"
	}
	if ev.Caption != "" {
		return fmt.Sprintf("Last: %s (%q)", ev.Label, ev.Caption)
	}
	return "Last: " + string(ev.Label)
}

func modeTitle(mode gesture.Mode) string {
	switch mode {
	case gesture.ModeVirtualMouse:
		return "Virtual Mouse"
	case gesture.ModeDragDrop:
		return "Drag & Drop"
	case gesture.ModePresentation:
		return "Presentation"
	case gesture.ModeSignLanguage:
		return "Sign Language"
	case gesture.ModeEyeMouse:
		return "Eye Mouse"
	default:
		return string(mode)
	}
}
