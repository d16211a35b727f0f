package dispatch

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/slides"
)

// drive admits labels through a fresh debouncer, one frame every 33ms, and
// dispatches each decision.
func drive(t *testing.T, d *Dispatcher, labels ...gesture.Label) {
	t.Helper()
	deb := gesture.NewDebouncer(gesture.DefaultCooldown)
	now := time.Unix(0, 0)
	for i, l := range labels {
		pos := gesture.Point{X: float64(100 + 10*i), Y: 200}
		_ = d.Dispatch(deb.Admit(l, now), pos)
		now = now.Add(33 * time.Millisecond)
	}
}

func TestDispatch_DragLifecycle(t *testing.T) {
	rec := input.NewRecorder(1920, 1080)
	d := New(Config{Device: rec})

	drive(t, d, gesture.DragStart, gesture.DragStart, gesture.DragStart, gesture.Drop)

	assert.Equal(t, []input.Op{
		input.OpMove, input.OpDown, input.OpMove, input.OpMove, input.OpUp,
	}, rec.Ops())
	assert.Equal(t, 1, rec.Count(input.OpDown))
	assert.Equal(t, 1, rec.Count(input.OpUp))
	assert.False(t, d.Snapshot().Dragging)
}

func TestDispatch_ReleaseMidDrag(t *testing.T) {
	rec := input.NewRecorder(1920, 1080)
	d := New(Config{Device: rec})

	drive(t, d, gesture.DragStart, gesture.DragStart)
	require.True(t, d.Snapshot().Dragging)

	d.Release()
	d.Release()

	assert.Equal(t, 1, rec.Count(input.OpDown))
	assert.Equal(t, 1, rec.Count(input.OpUp))
	assert.False(t, d.Snapshot().Dragging)
}

func TestDispatch_DropWithoutDragIsNoop(t *testing.T) {
	rec := input.NewRecorder(1920, 1080)
	d := New(Config{Device: rec})

	drive(t, d, gesture.Drop, gesture.Drop)

	assert.Empty(t, rec.Calls())
}

func TestDispatch_MoveClickScroll(t *testing.T) {
	rec := input.NewRecorder(1920, 1080)
	d := New(Config{Device: rec, ScrollDelta: 10})

	drive(t, d, gesture.Move, gesture.Click, gesture.Click, gesture.ScrollUp, gesture.ScrollDown)

	calls := rec.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, input.Call{Op: input.OpMove, X: 100, Y: 200}, calls[0])
	assert.Equal(t, input.OpClick, calls[1].Op)
	assert.Equal(t, input.Call{Op: input.OpScroll, Delta: 10}, calls[2])
	assert.Equal(t, input.Call{Op: input.OpScroll, Delta: -10}, calls[3])
}

func TestDispatch_DegradedAfterDeviceError(t *testing.T) {
	rec := input.NewRecorder(1920, 1080)
	rec.FailWith(input.ErrDenied)
	deck, err := slides.NewDeck("d", []string{"a", "b"})
	require.NoError(t, err)
	d := New(Config{Device: rec, Deck: deck})

	err = d.Dispatch(gesture.Decision{Label: gesture.Move, Fire: true}, gesture.Point{})
	assert.True(t, errors.Is(err, input.ErrDenied))
	assert.True(t, d.Degraded())

	err = d.Dispatch(gesture.Decision{Label: gesture.Click, Fire: true}, gesture.Point{})
	assert.NoError(t, err)

	// application effects keep working
	require.NoError(t, d.Dispatch(gesture.Decision{Label: gesture.Next, Fire: true}, gesture.Point{}))
	assert.Equal(t, 1, d.Snapshot().Slide)
	assert.ErrorIs(t, d.Err(), input.ErrDenied)
}

func TestDispatch_SlidesClamp(t *testing.T) {
	deck, err := slides.NewDeck("d", []string{"1.png", "2.png", "3.png"})
	require.NoError(t, err)
	d := New(Config{Deck: deck})

	for i := 0; i < 3; i++ {
		require.NoError(t, d.Dispatch(gesture.Decision{Label: gesture.Next, Fire: true}, gesture.Point{}))
	}
	assert.Equal(t, 2, d.Snapshot().Slide)

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Dispatch(gesture.Decision{Label: gesture.Previous, Fire: true}, gesture.Point{}))
	}
	assert.Equal(t, 0, d.Snapshot().Slide)
	assert.Equal(t, 3, d.Snapshot().SlideCount)
}

func TestDispatch_DrawEraseAndPageTurn(t *testing.T) {
	deck, err := slides.NewDeck("d", []string{"1.png", "2.png"})
	require.NoError(t, err)
	d := New(Config{Deck: deck})

	drive(t, d, gesture.Draw, gesture.Draw, gesture.Draw, gesture.Draw, gesture.Draw, gesture.Pointer)
	snap := d.Snapshot()
	require.Len(t, snap.Strokes, 1)
	assert.Len(t, snap.Strokes[0], 5)
	require.NotNil(t, snap.Pointer)

	require.NoError(t, d.Dispatch(gesture.Decision{Label: gesture.Erase, Fire: true}, gesture.Point{}))
	assert.Empty(t, d.Snapshot().Strokes)

	drive(t, d, gesture.Draw, gesture.None)
	require.Len(t, d.Snapshot().Strokes, 1)

	require.NoError(t, d.Dispatch(gesture.Decision{Label: gesture.Next, Fire: true}, gesture.Point{}))
	snap = d.Snapshot()
	assert.Equal(t, 1, snap.Slide)
	assert.Len(t, snap.Strokes, 1, "annotations survive a page turn")
	assert.Nil(t, snap.Pointer)

	require.NoError(t, d.Dispatch(gesture.Decision{Label: gesture.Previous, Fire: true}, gesture.Point{}))
	assert.Len(t, d.Snapshot().Strokes, 1)
}

// faultyClick is a device whose Click panics, like a cgo input backend
// failing hard.
type faultyClick struct {
	*input.Recorder
}

func (faultyClick) Click() error {
	panic("input backend fault")
}

func TestDispatch_DevicePanicLeavesDispatcherUsable(t *testing.T) {
	rec := input.NewRecorder(1920, 1080)
	d := New(Config{Device: faultyClick{rec}})

	drive(t, d, gesture.DragStart)
	require.True(t, d.Snapshot().Dragging)

	assert.Panics(t, func() {
		_ = d.Dispatch(gesture.Decision{Label: gesture.Click, Fire: true}, gesture.Point{})
	})

	done := make(chan struct{})
	go func() {
		d.Release()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Release blocked after a device panic")
	}

	assert.Equal(t, 1, rec.Count(input.OpUp))
	assert.False(t, d.Snapshot().Dragging)
}

func TestDispatch_SeparateStrokesPerHold(t *testing.T) {
	d := New(Config{})

	drive(t, d, gesture.Draw, gesture.Draw, gesture.Pointer, gesture.Draw, gesture.Draw, gesture.Draw)

	snap := d.Snapshot()
	require.Len(t, snap.Strokes, 2)
	assert.Len(t, snap.Strokes[0], 2)
	assert.Len(t, snap.Strokes[1], 3)
}

func TestDispatch_CaptionSinks(t *testing.T) {
	d := New(Config{})
	var got []string
	d.AddSink(CaptionFunc(func(l gesture.Label, text string) {
		got = append(got, text)
	}))

	drive(t, d, gesture.ILoveYou, gesture.ILoveYou, gesture.ILoveYou, gesture.None, gesture.Fine)

	assert.Equal(t, []string{"I Love U", "Fine"}, got)
	assert.Equal(t, "Fine", d.Snapshot().Caption)
}
