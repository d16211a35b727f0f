// Package main is the keyboard plugin: it presses the arrow keys so slide
// software running next to mudra follows page turns.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Request is what the plugin executor writes to stdin.
type Request struct {
	Action  string          `json:"action"`
	Mode    string          `json:"mode"`
	Caption string          `json:"caption"`
	Config  json.RawMessage `json:"config"`
}

// Response is written to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type arrow struct {
	macKeyCode int    // System Events key code
	xdoKey     string // xdotool keysym
}

var arrows = map[string]arrow{
	"next":     {macKeyCode: 124, xdoKey: "Right"},
	"previous": {macKeyCode: 123, xdoKey: "Left"},
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		fail("failed to decode request: %v", err)
		return
	}

	key, ok := arrows[req.Action]
	if !ok {
		fail("unknown action: %s", req.Action)
		return
	}

	cmd := pressCommand(key)
	if out, err := cmd.CombinedOutput(); err != nil {
		fail("action %s failed: %v: %s", req.Action, err, out)
		return
	}

	data, _ := json.Marshal(map[string]string{"key": key.xdoKey})
	respond(Response{Success: true, Data: data})
}

func pressCommand(key arrow) *exec.Cmd {
	if runtime.GOOS == "darwin" {
		script := fmt.Sprintf(`tell application "System Events" to key code %d`, key.macKeyCode)
		return exec.Command("osascript", "-e", script)
	}
	return exec.Command("xdotool", "key", key.xdoKey)
}

func fail(format string, args ...interface{}) {
	respond(Response{Success: false, Error: fmt.Sprintf(format, args...)})
}

func respond(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
