package preview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
)

func TestFeed_LatestAndNext(t *testing.T) {
	f := NewFeed()

	_, seq := f.Latest()
	assert.Zero(t, seq)

	done := make(chan []byte, 1)
	go func() {
		frame, _, err := f.Next(context.Background(), 0)
		if err == nil {
			done <- frame
		}
	}()

	f.Publish([]byte("a"))

	select {
	case got := <-done:
		assert.Equal(t, []byte("a"), got)
	case <-time.After(time.Second):
		t.Fatal("Next did not wake on Publish")
	}

	f.Publish([]byte("b"))
	frame, seq, err := f.Next(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), frame)
	assert.Equal(t, uint64(2), seq)
}

func TestFeed_NextHonoursContext(t *testing.T) {
	f := NewFeed()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := f.Next(ctx, 0)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSet(t *testing.T) {
	s := NewSet()

	s.Publish(Camera, []byte("cam"))
	s.Publish("unknown", []byte("x"))

	cam, ok := s.Get(Camera)
	require.True(t, ok)
	frame, _ := cam.Latest()
	assert.Equal(t, []byte("cam"), frame)

	_, ok = s.Get("unknown")
	assert.False(t, ok)
}

func TestAnnotateAndEncode(t *testing.T) {
	if testing.Short() {
		t.Skip("requires OpenCV")
	}
	frame := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer frame.Close()

	hand := detector.OpenPalmLandmarks()
	face := detector.FaceWithIris(0.5, 0.5, false)
	Annotate(&frame, []detector.Landmarks{hand, face}, "Fine")

	jpg, err := Encode(&frame)
	require.NoError(t, err)
	assert.NotEmpty(t, jpg)
}
