package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

func TestPlugin_CaptionSpeaker_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	plug := builtPlugin(t, "caption-speaker")
	if !plug.Handles(gesture.Understood) {
		t.Fatal("caption-speaker should subscribe to captions")
	}

	// A request without caption text is rejected before anything is spoken.
	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plug, &Request{Action: string(gesture.Understood)})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.Success {
		t.Error("expected failure for empty caption")
	}
}

func TestPlugin_Keyboard_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	plug := builtPlugin(t, "keyboard")

	// Unmapped labels fail before any key is pressed.
	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plug, &Request{Action: "scroll-up"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.Success {
		t.Error("expected failure for an unmapped action")
	}
}

// builtPlugin discovers the named plugin from the repository plugins
// directory and skips when its executable has not been built.
func builtPlugin(t *testing.T, name string) *Plugin {
	t.Helper()
	dir := findPluginDir(name)
	if dir == "" {
		t.Skipf("%s plugin not found", name)
	}

	mgr := NewManager(filepath.Dir(dir))
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	plug, err := mgr.Get(name)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, err := os.Stat(plug.Executable); err != nil {
		t.Skipf("%s plugin not built", name)
	}
	return plug
}

func findPluginDir(name string) string {
	candidates := []string{
		filepath.Join("../../plugins", name),
		filepath.Join("../../../plugins", name),
	}

	for _, dir := range candidates {
		manifest := filepath.Join(dir, "plugin.json")
		if _, err := os.Stat(manifest); err == nil {
			return dir
		}
	}
	return ""
}
