// Package main provides a plugin that speaks sign-language captions using
// the platform speech synthesizer: say on macOS, espeak elsewhere.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Mode    string          `json:"mode"`
	Caption string          `json:"caption"`
	Config  json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// speakerConfig is the optional per-plugin configuration.
type speakerConfig struct {
	Voice string `json:"voice"`
}

var errNoCaption = errors.New("caption is required")

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	var cfg speakerConfig
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("failed to parse config: %v", err))
			return
		}
	}

	if err := speak(req.Caption, cfg.Voice); err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	data, _ := json.Marshal(map[string]string{"spoken": req.Caption})
	json.NewEncoder(os.Stdout).Encode(Response{Success: true, Data: data})
}

// speak runs the synthesizer and waits for it to finish.
func speak(text, voice string) error {
	if text == "" {
		return errNoCaption
	}
	name, args := speechCommand(text, voice)
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, string(output))
	}
	return nil
}

func speechCommand(text, voice string) (string, []string) {
	if runtime.GOOS == "darwin" {
		if voice != "" {
			return "say", []string{"-v", voice, text}
		}
		return "say", []string{text}
	}
	if voice != "" {
		return "espeak", []string{"-v", voice, text}
	}
	return "espeak", []string{text}
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
