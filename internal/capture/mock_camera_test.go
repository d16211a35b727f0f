package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestMockCamera_Playback(t *testing.T) {
	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame1, &frame2}, false)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() #%d error = %v", i, err)
		}
		f.Close()
	}

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoMoreFrames) {
		t.Errorf("ReadFrame() after last frame = %v, want ErrNoMoreFrames", err)
	}
}

func TestMockCamera_Loop(t *testing.T) {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.Open()
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestMockCamera_QueuedErrors(t *testing.T) {
	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.QueueReadErrors(ErrReadFailed, nil, ErrReadFailed)
	cam.Open()

	want := []bool{true, false, true, false}
	for i, wantErr := range want {
		f, err := cam.ReadFrame()
		if (err != nil) != wantErr {
			t.Fatalf("read %d: err = %v, want error %v", i, err, wantErr)
		}
		if f != nil {
			f.Close()
		}
	}
}

func TestMockCamera_FailOpen(t *testing.T) {
	cam := NewMockCamera(nil, false)
	boom := errors.New("no device")
	cam.FailOpen(boom)

	if err := cam.Open(); !errors.Is(err, boom) {
		t.Errorf("Open() = %v, want %v", err, boom)
	}
	if cam.IsOpen() {
		t.Error("camera should stay closed after a failed Open")
	}
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() = %v, want ErrCameraNotOpen", err)
	}
}

func TestMockCamera_CountsOpenClose(t *testing.T) {
	cam := NewMockCamera(nil, false)
	cam.Open()
	cam.Close()
	cam.Close()

	if cam.Opens() != 1 || cam.Closes() != 1 {
		t.Errorf("Opens/Closes = %d/%d, want 1/1", cam.Opens(), cam.Closes())
	}
}
