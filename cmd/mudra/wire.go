package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/preview"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/slides"
	"github.com/ayusman/mudra/internal/store"
)

// services is everything a serve or run command needs, built from config.
type services struct {
	store    *store.Store
	feeds    *preview.Set
	renderer *slides.Renderer
	plugins  *plugin.Manager
	notifier *plugin.Notifier
	ctrl     *session.Controller
}

// tablesFor returns the built-in tables with the configured pinch distance.
func tablesFor(c *config.Config) map[gesture.Mode]*gesture.Table {
	tables := gesture.DefaultTables()
	if c.Gesture.PinchDistance <= 0 {
		return tables
	}
	for _, t := range tables {
		for i := range t.Pinches {
			t.Pinches[i].MaxDistance = c.Gesture.PinchDistance
		}
	}
	return tables
}

func openStore(c *config.Config, log logrus.FieldLogger) (*store.Store, error) {
	st, err := store.New(c.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	seeded, err := st.SeedDefaults(tablesFor(c))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("seed tables: %w", err)
	}
	if seeded {
		log.Info("seeded default gesture tables")
	}
	if n, err := st.Sessions().CloseDangling(); err != nil {
		log.WithError(err).Warn("failed to close dangling sessions")
	} else if n > 0 {
		log.WithField("sessions", n).Warn("marked interrupted sessions as failed")
	}
	return st, nil
}

func newServices(c *config.Config, log *logrus.Logger) (*services, error) {
	st, err := openStore(c, log)
	if err != nil {
		return nil, err
	}
	rt := &services{store: st, feeds: preview.NewSet()}

	rt.renderer, err = slides.NewRenderer(c.Presentation.CanvasWidth, c.Presentation.CanvasHeight, c.Presentation.CacheSize)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("slide renderer: %w", err)
	}

	rt.plugins = plugin.NewManager(c.Plugins.Dir)
	if err := rt.plugins.Discover(); err != nil {
		log.WithError(err).Warn("plugin discovery failed")
	}
	rt.notifier = plugin.NewNotifier(rt.plugins, plugin.NewExecutor(c.Plugins.Timeout), c.Plugins.QueueSize)

	var dev input.Device
	if robot, err := input.NewRobotDevice(); err != nil {
		log.WithError(err).Warn("input synthesis unavailable; sessions will not drive the pointer")
	} else {
		dev = robot
	}

	rt.ctrl = session.NewController(session.Config{
		Store:           st,
		Gate:            input.NewGate(dev),
		Camera:          cameraFactory(c),
		Detector:        detectorFactory(c),
		Feeds:           rt.feeds,
		Renderer:        rt.renderer,
		DeckRoot:        c.Presentation.Root,
		Mirror:          c.Camera.Mirror,
		IdleFPS:         c.Camera.IdleFPS,
		ActiveFPS:       c.Camera.ActiveFPS,
		IdleAfter:       c.Camera.IdleAfter,
		MotionThreshold: c.Camera.MotionThreshold,
		MaxReadFailures: c.Camera.MaxReadFailures,
		Cooldown:        c.Gesture.Cooldown,
		Smoothing:       c.Gesture.Smoothing,
		ScrollDelta:     c.Gesture.ScrollDelta,
		BlinkThreshold:  c.Gesture.BlinkThreshold,
		Logger:          log.WithField("component", "session"),
	})
	rt.ctrl.AddObserver(rt.notifier)
	return rt, nil
}

// Close releases everything newServices opened. The controller must be idle.
func (rt *services) Close() {
	if rt.notifier != nil {
		rt.notifier.Close()
	}
	if rt.renderer != nil {
		rt.renderer.Close()
	}
	if rt.store != nil {
		rt.store.Close()
	}
}

func cameraFactory(c *config.Config) session.CameraFactory {
	return func() capture.Camera {
		return capture.NewCamera(capture.Config{
			DeviceID: c.Camera.DeviceID,
			Width:    c.Camera.Width,
			Height:   c.Camera.Height,
			FPS:      c.Camera.IdleFPS,
		})
	}
}

// detectorFactory starts a landmark sidecar per session. Eye-mouse runs the
// face mesh model, every other mode the hand model.
func detectorFactory(c *config.Config) session.DetectorFactory {
	return func(mode gesture.Mode) (detector.Detector, error) {
		dc := detector.DefaultConfig()
		if mode == gesture.ModeEyeMouse {
			dc.Kind = detector.KindFace
		}
		dc.MaxHands = c.Detector.MaxHands
		dc.MinConfidence = c.Detector.MinDetection
		dc.MinTrackingConf = c.Detector.MinTracking
		dc.Script = c.Detector.Script
		dc.Python = c.Detector.Python
		return detector.NewMediaPipeDetector(dc)
	}
}
