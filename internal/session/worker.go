package session

import (
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/dispatch"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/preview"
	"github.com/ayusman/mudra/internal/slides"
)

// worker owns one session's pipeline. Everything except frames, cancel and
// done is touched only by the worker goroutine once it starts.
type worker struct {
	id        string
	mode      gesture.Mode
	deckName  string
	startedAt time.Time

	cam        capture.Camera
	det        detector.Detector
	motion     *capture.MotionDetector
	pacer      *capture.Pacer
	classifier *gesture.Classifier
	face       *gesture.FaceClassifier
	mapper     *gesture.Mapper
	smoother   *gesture.Smoother
	debouncer  *gesture.Debouncer
	dispatcher *dispatch.Dispatcher
	token      *input.Token

	observers []Observer
	feeds     *preview.Set
	renderer  *slides.Renderer

	mirror          bool
	maxReadFailures int

	frames atomic.Int64
	cancel chan struct{}
	done   chan struct{}
	log    *logrus.Entry
}

// run is the frame loop. It checks for cancellation at the top of every
// iteration and returns a non-nil error only for fatal capture failures.
//
// Loop:
//  1. wait for the next tick (FPS follows motion: idle until motion, active
//     until IdleAfter without it)
//  2. read and optionally mirror the frame
//  3. detect landmarks, classify, map and smooth the pointer
//  4. debounce, dispatch and notify observers
//  5. publish preview frames
func (w *worker) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session worker panic: %v", r)
		}
	}()

	ticker := time.NewTicker(frameInterval(w.pacer.FPS()))
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-w.cancel:
			return nil
		default:
		}

		select {
		case <-w.cancel:
			return nil
		case <-ticker.C:
		}

		frame, err := w.cam.ReadFrame()
		if err != nil {
			failures++
			if failures > w.maxReadFailures {
				return fmt.Errorf("%w: %d consecutive reads: %w", ErrCapture, failures, err)
			}
			w.log.WithError(err).Debug("frame read failed")
			continue
		}
		failures = 0

		now := time.Now()
		motion, _ := w.motion.Detect(frame)
		if fps, changed := w.pacer.Observe(motion, now); changed {
			w.cam.SetFPS(fps)
			ticker.Reset(frameInterval(fps))
			w.log.WithField("fps", fps).Debug("capture rate changed")
		}

		w.process(frame, now)
		frame.Close()
		w.frames.Add(1)
	}
}

func (w *worker) process(frame *gocv.Mat, now time.Time) {
	if w.mirror {
		capture.Mirror(frame)
	}

	marks, err := w.det.Detect(frame)
	if err != nil {
		w.log.WithError(err).Debug("detection failed")
		marks = nil
	}

	label, source := w.recognize(marks, image.Pt(frame.Cols(), frame.Rows()))

	var pos gesture.Point
	if p, ok := gesture.PointerSource(source); ok {
		pos = w.smoother.Update(w.mapper.Map(p))
	} else {
		w.smoother.Reset()
	}

	dec := w.debouncer.Admit(label, now)
	if err := w.dispatcher.Dispatch(dec, pos); err != nil {
		w.log.WithError(err).Warn("dispatch failed")
	}

	if dec.Fire {
		ev := gesture.Event{
			Label:     dec.Label,
			Position:  pos,
			Timestamp: now,
			Phase:     dec.Phase,
			Mode:      w.mode,
			Caption:   dec.Label.Caption(),
		}
		for _, o := range w.observers {
			o.OnGesture(ev)
		}
	}

	w.publish(frame, marks, label)
}

// recognize returns the frame's label and the landmark set that drives the
// pointer. A miss is gesture.None with no source. Pointer modes follow the
// first hand; sign-language reads a sign only when exactly one hand is seen.
func (w *worker) recognize(marks []detector.Landmarks, size image.Point) (gesture.Label, *detector.Landmarks) {
	want := detector.KindHand
	if w.face != nil {
		want = detector.KindFace
	}

	var set *detector.Landmarks
	seen := 0
	for i := range marks {
		if marks[i].Kind != want {
			continue
		}
		if set == nil {
			set = &marks[i]
		}
		seen++
	}
	if set == nil || (w.mode == gesture.ModeSignLanguage && seen != 1) {
		return gesture.None, nil
	}

	if w.face != nil {
		return w.face.Classify(set), set
	}

	fingers, ok := gesture.Extract(set, w.mirror)
	if !ok {
		return gesture.None, nil
	}
	return w.classifier.Classify(fingers, set, size), set
}

func (w *worker) publish(frame *gocv.Mat, marks []detector.Landmarks, label gesture.Label) {
	if w.feeds == nil {
		return
	}

	if w.renderer != nil {
		snap := w.dispatcher.Snapshot()
		jpg, err := w.renderer.Render(slides.View{
			Slide:   snap.SlidePath,
			Strokes: snap.Strokes,
			Pointer: snap.Pointer,
		}, frame)
		if err != nil {
			w.log.WithError(err).Debug("slide render failed")
		} else {
			w.feeds.Publish(preview.Slides, jpg)
		}
	}

	text := ""
	if label != gesture.None {
		text = string(label)
		if c := label.Caption(); c != "" {
			text = c
		}
	}
	preview.Annotate(frame, marks, text)
	jpg, err := preview.Encode(frame)
	if err != nil {
		w.log.WithError(err).Debug("preview encode failed")
		return
	}
	w.feeds.Publish(preview.Camera, jpg)
}

// teardown releases everything the session holds. Held buttons are released
// before the capability is given back. Safe on a partially built worker.
func (w *worker) teardown() {
	if w.dispatcher != nil {
		w.dispatcher.Release()
	}
	if w.cam != nil {
		if err := w.cam.Close(); err != nil {
			w.log.WithError(err).Warn("error closing camera")
		}
	}
	if w.det != nil {
		if err := w.det.Close(); err != nil {
			w.log.WithError(err).Warn("error closing detector")
		}
	}
	if w.motion != nil {
		w.motion.Close()
	}
	if w.token != nil {
		w.token.Release()
	}
}

func frameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = DefaultIdleFPS
	}
	return time.Second / time.Duration(fps)
}
