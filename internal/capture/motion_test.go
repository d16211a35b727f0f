package capture

import (
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestMotionDetector_NoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	if detected, pct := md.Detect(&frame1); detected || pct != 0 {
		t.Errorf("first frame = (%v, %f), want (false, 0)", detected, pct)
	}
	if detected, pct := md.Detect(&frame2); detected {
		t.Errorf("identical frames detected motion, changed = %f", pct)
	}
}

func TestMotionDetector_WithMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	md.Detect(&black)
	detected, pct := md.Detect(&white)
	if !detected {
		t.Errorf("black to white should detect motion, changed = %f", pct)
	}
	if pct < 50.0 {
		t.Errorf("changed = %f, expected > 50%%", pct)
	}
}

func TestMotionDetector_ResetRebaselines(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	md.Detect(&black)
	md.Reset()

	if detected, _ := md.Detect(&white); detected {
		t.Error("first frame after Reset should not detect motion")
	}
}

func TestMotionDetector_NilFrame(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if detected, pct := md.Detect(nil); detected || pct != 0 {
		t.Errorf("Detect(nil) = (%v, %f), want (false, 0)", detected, pct)
	}
}

func TestMotionDetector_CloseTwice(t *testing.T) {
	md := NewMotionDetector(1.0)
	md.Close()
	md.Close()
}

func TestPacer(t *testing.T) {
	p := NewPacer(5, 15, 2*time.Second)
	t0 := time.Unix(100, 0)

	if p.FPS() != 5 {
		t.Fatalf("initial FPS = %d, want 5", p.FPS())
	}

	steps := []struct {
		name        string
		motion      bool
		at          time.Duration
		wantFPS     int
		wantChanged bool
	}{
		{"motion activates", true, 0, 15, true},
		{"still active", true, 500 * time.Millisecond, 15, false},
		{"quiet but within timeout", false, 2 * time.Second, 15, false},
		{"quiet past timeout", false, 2600 * time.Millisecond, 5, true},
		{"stays idle", false, 5 * time.Second, 5, false},
		{"motion again", true, 6 * time.Second, 15, true},
	}
	for _, s := range steps {
		fps, changed := p.Observe(s.motion, t0.Add(s.at))
		if fps != s.wantFPS || changed != s.wantChanged {
			t.Errorf("%s: Observe = (%d, %v), want (%d, %v)", s.name, fps, changed, s.wantFPS, s.wantChanged)
		}
	}
}
