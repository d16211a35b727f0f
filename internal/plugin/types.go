// Package plugin discovers external action plugins and runs them when
// gestures they subscribe to fire.
package plugin

import (
	"encoding/json"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// CaptionAction subscribes a plugin to every caption label.
const CaptionAction = "caption"

// Manifest describes a plugin's metadata and the gesture labels it handles.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request is written to a plugin's stdin as JSON.
type Request struct {
	Action    string          `json:"action"`
	Mode      string          `json:"mode,omitempty"`
	Caption   string          `json:"caption,omitempty"`
	Position  gesture.Point   `json:"position"`
	Timestamp time.Time       `json:"timestamp"`
	Config    json.RawMessage `json:"config,omitempty"`
}

// RequestFor builds the request describing ev.
func RequestFor(ev gesture.Event) *Request {
	return &Request{
		Action:    string(ev.Label),
		Mode:      string(ev.Mode),
		Caption:   ev.Caption,
		Position:  ev.Position,
		Timestamp: ev.Timestamp,
	}
}

// Response is read from a plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the plugin subscribes to l.
func (p *Plugin) Handles(l gesture.Label) bool {
	for _, a := range p.Manifest.Actions {
		if a == string(l) || (a == CaptionAction && l.IsCaption()) {
			return true
		}
	}
	return false
}
