// Package session runs activation sessions: one background worker per
// session that captures frames, recognizes gestures and dispatches their
// effects. At most one session runs at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/dispatch"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/preview"
	"github.com/ayusman/mudra/internal/slides"
	"github.com/ayusman/mudra/internal/store"
)

// State is the lifecycle state of the controller.
type State string

const (
	StateIdle     State = "idle"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

// Start and stop result statuses.
const (
	ResultStarted        = "started"
	ResultAlreadyRunning = "already_running"
	ResultError          = "error"
	ResultStopped        = "stopped"
	ResultNotRunning     = "not_running"
)

// Defaults for Config fields left zero.
const (
	DefaultMaxReadFailures = 5
	DefaultIdleFPS         = 5
	DefaultActiveFPS       = 15
	DefaultIdleAfter       = 2 * time.Second
)

var (
	// ErrDeckRequired is returned when presentation mode starts without a deck
	// and no deck was used before.
	ErrDeckRequired = errors.New("presentation mode requires a deck")
	// ErrCapture wraps camera failures that end a session.
	ErrCapture = errors.New("capture failed")
)

// Observer receives every gesture event a session fires. OnGesture is called
// from the session worker and must not block.
type Observer interface {
	OnGesture(ev gesture.Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev gesture.Event)

func (f ObserverFunc) OnGesture(ev gesture.Event) { f(ev) }

// CameraFactory returns the camera a new session opens.
type CameraFactory func() capture.Camera

// DetectorFactory returns the landmark detector for a mode.
type DetectorFactory func(mode gesture.Mode) (detector.Detector, error)

// Config holds the controller's collaborators and tuning.
type Config struct {
	Store    *store.Store // optional; built-in tables and no session log when nil
	Gate     *input.Gate
	Camera   CameraFactory
	Detector DetectorFactory

	Feeds    *preview.Set     // optional
	Renderer *slides.Renderer // optional; slides feed is not published when nil
	DeckRoot string

	Mirror          bool
	IdleFPS         int
	ActiveFPS       int
	IdleAfter       time.Duration
	MotionThreshold float64
	MaxReadFailures int

	Cooldown       time.Duration
	Smoothing      float64
	ScrollDelta    int
	BlinkThreshold float64

	Logger logrus.FieldLogger
}

// StartRequest selects the mode and its parameters.
type StartRequest struct {
	Mode string `json:"mode"`
	Deck string `json:"deck,omitempty"`
}

// StartResult reports the outcome of Start.
type StartResult struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// StopResult reports the outcome of Stop.
type StopResult struct {
	Status string `json:"status"`
}

// Status is a point-in-time view of the controller.
type Status struct {
	State     State              `json:"state"`
	Mode      gesture.Mode       `json:"mode,omitempty"`
	Deck      string             `json:"deck,omitempty"`
	SessionID string             `json:"session_id,omitempty"`
	StartedAt *time.Time         `json:"started_at,omitempty"`
	Frames    int64              `json:"frames"`
	FPS       int                `json:"fps,omitempty"`
	LastError string             `json:"last_error,omitempty"`
	Snapshot  *dispatch.Snapshot `json:"snapshot,omitempty"`
}

// Controller owns the session state machine
// idle → starting → running → stopping → idle.
type Controller struct {
	cfg Config
	log logrus.FieldLogger

	mu          sync.Mutex
	state       State
	current     *worker
	lastError   error
	stopPending bool // Stop arrived while starting
	observers   []Observer
	sinks       []dispatch.CaptionSink
}

// NewController creates an idle Controller.
func NewController(cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Gate == nil {
		cfg.Gate = input.NewGate(nil)
	}
	if cfg.MaxReadFailures <= 0 {
		cfg.MaxReadFailures = DefaultMaxReadFailures
	}
	if cfg.IdleFPS <= 0 {
		cfg.IdleFPS = DefaultIdleFPS
	}
	if cfg.ActiveFPS <= 0 {
		cfg.ActiveFPS = DefaultActiveFPS
	}
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = DefaultIdleAfter
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = gesture.DefaultCooldown
	}
	if cfg.Smoothing <= 0 {
		cfg.Smoothing = gesture.DefaultSmoothing
	}
	if cfg.BlinkThreshold <= 0 {
		cfg.BlinkThreshold = gesture.DefaultBlinkThreshold
	}
	return &Controller{
		cfg:   cfg,
		log:   cfg.Logger.WithField("component", "session"),
		state: StateIdle,
	}
}

// AddObserver registers o for sessions started after the call.
func (c *Controller) AddObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// AddCaptionSink registers s for sessions started after the call.
func (c *Controller) AddCaptionSink(s dispatch.CaptionSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, s)
}

// Start starts a session unless another one is starting, running or
// stopping, in which case that session is left untouched and
// ResultAlreadyRunning returned. Setup failures return ResultError and the
// cause. An empty mode reuses the last mode started.
//
// The pipeline is built without holding the controller lock, so Status and
// Stop answer while the camera opens.
func (c *Controller) Start(req StartRequest) (StartResult, error) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return StartResult{Status: ResultAlreadyRunning}, nil
	}
	c.state = StateStarting
	c.stopPending = false
	observers := append([]Observer(nil), c.observers...)
	sinks := append([]dispatch.CaptionSink(nil), c.sinks...)
	c.mu.Unlock()

	w, err := c.setup(req, observers, sinks)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.state = StateIdle
		c.lastError = err
		c.log.WithError(err).WithField("mode", req.Mode).Warn("session start failed")
		return StartResult{Status: ResultError, Error: err.Error()}, err
	}

	c.state = StateRunning
	c.current = w
	c.lastError = nil
	if c.stopPending {
		close(w.cancel)
		c.state = StateStopping
	}
	go c.supervise(w)

	w.log.Info("session started")
	return StartResult{Status: ResultStarted, ID: w.id}, nil
}

// Stop asks the session to stop and returns without waiting for the worker
// to exit. A session still starting is stopped as soon as it is up.
func (c *Controller) Stop() StopResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateStarting:
		c.stopPending = true
		c.log.Info("stop requested while starting")
		return StopResult{Status: ResultStopped}
	case StateRunning:
		close(c.current.cancel)
		c.state = StateStopping
		c.current.log.Info("session stopping")
		return StopResult{Status: ResultStopped}
	}
	return StopResult{Status: ResultNotRunning}
}

// Wait blocks until the current session, if any, has torn down.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	w := c.current
	c.mu.Unlock()
	if w == nil {
		return nil
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the controller state and, while a session exists, its
// progress and dispatcher snapshot.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{State: c.state}
	if c.lastError != nil {
		st.LastError = c.lastError.Error()
	}
	if w := c.current; w != nil {
		started := w.startedAt
		snap := w.dispatcher.Snapshot()
		st.Mode = w.mode
		st.Deck = w.deckName
		st.SessionID = w.id
		st.StartedAt = &started
		st.Frames = w.frames.Load()
		st.FPS = w.cam.FPS()
		st.Snapshot = &snap
	}
	return st
}

// supervise runs the worker and tears the session down when it exits.
func (c *Controller) supervise(w *worker) {
	err := w.run()

	w.teardown()

	outcome := store.OutcomeStopped
	if err != nil {
		outcome = store.OutcomeFailed
		w.log.WithError(err).Error("session failed")
	}
	if c.cfg.Store != nil {
		if endErr := c.cfg.Store.Sessions().End(w.id, outcome, err, w.frames.Load()); endErr != nil {
			w.log.WithError(endErr).Warn("failed to record session end")
		}
	}

	c.mu.Lock()
	if err != nil {
		c.lastError = err
	}
	c.state = StateIdle
	c.current = nil
	c.mu.Unlock()

	w.log.WithField("frames", w.frames.Load()).Info("session ended")
	close(w.done)
}

// setup builds the per-session pipeline. It runs without c.mu; the
// controller is in StateStarting so no other setup can race it.
func (c *Controller) setup(req StartRequest, observers []Observer, sinks []dispatch.CaptionSink) (_ *worker, err error) {
	mode, err := c.resolveMode(req.Mode)
	if err != nil {
		return nil, err
	}

	deck, err := c.loadDeck(mode, req.Deck)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	w := &worker{
		id:              id,
		mode:            mode,
		startedAt:       time.Now(),
		mirror:          c.cfg.Mirror,
		maxReadFailures: c.cfg.MaxReadFailures,
		feeds:           c.cfg.Feeds,
		observers:       observers,
		motion:          capture.NewMotionDetector(c.cfg.MotionThreshold),
		pacer:           capture.NewPacer(c.cfg.IdleFPS, c.cfg.ActiveFPS, c.cfg.IdleAfter),
		smoother:        gesture.NewSmoother(c.cfg.Smoothing),
		debouncer:       gesture.NewDebouncer(c.cfg.Cooldown),
		cancel:          make(chan struct{}),
		done:            make(chan struct{}),
		log:             c.log.WithFields(logrus.Fields{"session": id, "mode": mode}),
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session setup panic: %v", r)
		}
		if err != nil {
			w.teardown()
		}
	}()

	if mode == gesture.ModeEyeMouse {
		w.face = &gesture.FaceClassifier{BlinkThreshold: c.cfg.BlinkThreshold}
	} else {
		table, err := c.table(mode)
		if err != nil {
			return nil, err
		}
		if w.classifier, err = gesture.NewClassifier(table); err != nil {
			return nil, err
		}
	}

	if w.token, err = c.cfg.Gate.Acquire(id); err != nil {
		return nil, err
	}

	w.mapper = c.mapper(mode, w.token)
	w.dispatcher = dispatch.New(dispatch.Config{
		Device:      w.token,
		Deck:        deck,
		ScrollDelta: c.cfg.ScrollDelta,
		Logger:      w.log,
	})
	for _, s := range sinks {
		w.dispatcher.AddSink(s)
	}
	if deck != nil {
		w.deckName = deck.Name()
		w.renderer = c.cfg.Renderer
	}

	if c.cfg.Detector == nil {
		return nil, errors.New("no landmark detector configured")
	}
	if w.det, err = c.cfg.Detector(mode); err != nil {
		return nil, fmt.Errorf("detector: %w", err)
	}

	if c.cfg.Camera == nil {
		return nil, fmt.Errorf("%w: no camera configured", ErrCapture)
	}
	cam := c.cfg.Camera()
	if err := cam.Open(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCapture, err)
	}
	cam.SetFPS(c.cfg.IdleFPS)
	w.cam = cam

	if c.cfg.Store != nil {
		rec := &store.SessionRecord{ID: id, Mode: string(mode), Deck: w.deckName, StartedAt: w.startedAt}
		if err := c.cfg.Store.Sessions().Begin(rec); err != nil {
			w.log.WithError(err).Warn("failed to record session start")
		}
		c.remember(mode, w.deckName)
	}
	return w, nil
}

// resolveMode parses name, falling back to the last mode started when name
// is empty and a store is configured.
func (c *Controller) resolveMode(name string) (gesture.Mode, error) {
	if name == "" && c.cfg.Store != nil {
		last, err := c.cfg.Store.Settings().Get(store.SettingLastMode)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return "", err
		}
		name = last
	}
	return gesture.ParseMode(name)
}

// loadDeck loads the presentation deck; other modes get none.
func (c *Controller) loadDeck(mode gesture.Mode, name string) (*slides.Deck, error) {
	if mode != gesture.ModePresentation {
		return nil, nil
	}
	if name == "" && c.cfg.Store != nil {
		last, err := c.cfg.Store.Settings().Get(store.SettingLastDeck)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		name = last
	}
	if name == "" {
		return nil, ErrDeckRequired
	}
	return slides.LoadDeck(c.cfg.DeckRoot, name)
}

// table returns the stored vocabulary for mode, or the built-in one.
func (c *Controller) table(mode gesture.Mode) (*gesture.Table, error) {
	if c.cfg.Store != nil {
		t, err := c.cfg.Store.LoadTable(mode)
		if err != nil {
			return nil, fmt.Errorf("load %s table: %w", mode, err)
		}
		if len(t.Entries) > 0 || len(t.Pinches) > 0 {
			return t, nil
		}
	}
	t, ok := gesture.DefaultTables()[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no gesture table", gesture.ErrUnknownMode, mode)
	}
	return t, nil
}

// mapper maps landmarks onto the slide canvas in presentation mode and onto
// the screen otherwise.
func (c *Controller) mapper(mode gesture.Mode, dev input.Device) *gesture.Mapper {
	if mode == gesture.ModePresentation {
		w, h := slides.DefaultCanvasWidth, slides.DefaultCanvasHeight
		if c.cfg.Renderer != nil {
			w, h = c.cfg.Renderer.Size()
		}
		return gesture.NewMapper(gesture.PresentationCalibration, w, h)
	}
	w, h := dev.ScreenSize()
	return gesture.NewMapper(gesture.DefaultCalibration, w, h)
}

func (c *Controller) remember(mode gesture.Mode, deck string) {
	settings := c.cfg.Store.Settings()
	if err := settings.Set(store.SettingLastMode, string(mode)); err != nil {
		c.log.WithError(err).Debug("failed to save last mode")
	}
	if deck != "" {
		if err := settings.Set(store.SettingLastDeck, deck); err != nil {
			c.log.WithError(err).Debug("failed to save last deck")
		}
	}
}
