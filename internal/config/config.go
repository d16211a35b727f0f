// Package config loads mudra's INI configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// Config is the complete runtime configuration.
type Config struct {
	Server       ServerConfig
	Camera       CameraConfig
	Detector     DetectorConfig
	Gesture      GestureConfig
	Presentation PresentationConfig
	Plugins      PluginsConfig
	Store        StoreConfig
	Log          LogConfig
}

type ServerConfig struct {
	Addr      string
	StaticDir string
}

type CameraConfig struct {
	DeviceID        int
	Width           int
	Height          int
	IdleFPS         int
	ActiveFPS       int
	IdleAfter       time.Duration
	MotionThreshold float64
	Mirror          bool
	MaxReadFailures int
}

type DetectorConfig struct {
	Script       string
	Python       string
	MaxHands     int
	MinDetection float64
	MinTracking  float64
}

type GestureConfig struct {
	Cooldown       time.Duration
	Smoothing      float64
	PinchDistance  float64
	ScrollDelta    int
	BlinkThreshold float64
}

type PresentationConfig struct {
	Root         string
	CanvasWidth  int
	CanvasHeight int
	CacheSize    int
}

type PluginsConfig struct {
	Dir       string
	Timeout   time.Duration
	QueueSize int
}

type StoreConfig struct {
	Path string
}

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string
	Format string
}

// Dir returns the per-user mudra directory, ~/.mudra.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mudra"
	}
	return filepath.Join(home, ".mudra")
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(Dir(), "mudra.ini")
}

// Default returns the built-in configuration.
func Default() *Config {
	dir := Dir()
	return &Config{
		Server: ServerConfig{Addr: "127.0.0.1:8080", StaticDir: "web"},
		Camera: CameraConfig{
			Width:           1280,
			Height:          720,
			IdleFPS:         5,
			ActiveFPS:       15,
			IdleAfter:       2 * time.Second,
			MotionThreshold: 1.0,
			Mirror:          true,
			MaxReadFailures: 5,
		},
		Detector: DetectorConfig{MaxHands: 1, MinDetection: 0.7, MinTracking: 0.7},
		Gesture: GestureConfig{
			Cooldown:       500 * time.Millisecond,
			Smoothing:      7,
			PinchDistance:  30,
			ScrollDelta:    10,
			BlinkThreshold: 0.0085,
		},
		Presentation: PresentationConfig{
			Root:         filepath.Join(dir, "decks"),
			CanvasWidth:  1280,
			CanvasHeight: 720,
			CacheSize:    8,
		},
		Plugins: PluginsConfig{
			Dir:       filepath.Join(dir, "plugins"),
			Timeout:   5 * time.Second,
			QueueSize: 16,
		},
		Store: StoreConfig{Path: filepath.Join(dir, "mudra.db")},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.apply(f)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) apply(f *ini.File) {
	s := f.Section("server")
	c.Server.Addr = s.Key("addr").MustString(c.Server.Addr)
	c.Server.StaticDir = s.Key("static_dir").MustString(c.Server.StaticDir)

	s = f.Section("camera")
	c.Camera.DeviceID = s.Key("device").MustInt(c.Camera.DeviceID)
	c.Camera.Width = s.Key("width").MustInt(c.Camera.Width)
	c.Camera.Height = s.Key("height").MustInt(c.Camera.Height)
	c.Camera.IdleFPS = s.Key("idle_fps").MustInt(c.Camera.IdleFPS)
	c.Camera.ActiveFPS = s.Key("active_fps").MustInt(c.Camera.ActiveFPS)
	c.Camera.IdleAfter = s.Key("idle_after").MustDuration(c.Camera.IdleAfter)
	c.Camera.MotionThreshold = s.Key("motion_threshold").MustFloat64(c.Camera.MotionThreshold)
	c.Camera.Mirror = s.Key("mirror").MustBool(c.Camera.Mirror)
	c.Camera.MaxReadFailures = s.Key("max_read_failures").MustInt(c.Camera.MaxReadFailures)

	s = f.Section("detector")
	c.Detector.Script = s.Key("script").MustString(c.Detector.Script)
	c.Detector.Python = s.Key("python").MustString(c.Detector.Python)
	c.Detector.MaxHands = s.Key("max_hands").MustInt(c.Detector.MaxHands)
	c.Detector.MinDetection = s.Key("min_detection").MustFloat64(c.Detector.MinDetection)
	c.Detector.MinTracking = s.Key("min_tracking").MustFloat64(c.Detector.MinTracking)

	s = f.Section("gesture")
	c.Gesture.Cooldown = s.Key("cooldown").MustDuration(c.Gesture.Cooldown)
	c.Gesture.Smoothing = s.Key("smoothing").MustFloat64(c.Gesture.Smoothing)
	c.Gesture.PinchDistance = s.Key("pinch_distance").MustFloat64(c.Gesture.PinchDistance)
	c.Gesture.ScrollDelta = s.Key("scroll_delta").MustInt(c.Gesture.ScrollDelta)
	c.Gesture.BlinkThreshold = s.Key("blink_threshold").MustFloat64(c.Gesture.BlinkThreshold)

	s = f.Section("presentation")
	c.Presentation.Root = expandHome(s.Key("root").MustString(c.Presentation.Root))
	c.Presentation.CanvasWidth = s.Key("canvas_width").MustInt(c.Presentation.CanvasWidth)
	c.Presentation.CanvasHeight = s.Key("canvas_height").MustInt(c.Presentation.CanvasHeight)
	c.Presentation.CacheSize = s.Key("cache_size").MustInt(c.Presentation.CacheSize)

	s = f.Section("plugins")
	c.Plugins.Dir = expandHome(s.Key("dir").MustString(c.Plugins.Dir))
	c.Plugins.Timeout = s.Key("timeout").MustDuration(c.Plugins.Timeout)
	c.Plugins.QueueSize = s.Key("queue_size").MustInt(c.Plugins.QueueSize)

	s = f.Section("store")
	c.Store.Path = expandHome(s.Key("path").MustString(c.Store.Path))

	s = f.Section("log")
	c.Log.Level = s.Key("level").MustString(c.Log.Level)
	c.Log.Format = s.Key("format").In(c.Log.Format, []string{"text", "json"})
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Camera.Width <= 0 || c.Camera.Height <= 0:
		return fmt.Errorf("camera size %dx%d", c.Camera.Width, c.Camera.Height)
	case c.Camera.IdleFPS <= 0 || c.Camera.ActiveFPS <= 0:
		return fmt.Errorf("camera fps %d/%d", c.Camera.IdleFPS, c.Camera.ActiveFPS)
	case c.Camera.MaxReadFailures <= 0:
		return fmt.Errorf("max_read_failures %d", c.Camera.MaxReadFailures)
	case c.Gesture.Cooldown < 0:
		return fmt.Errorf("cooldown %s", c.Gesture.Cooldown)
	case c.Gesture.PinchDistance <= 0:
		return fmt.Errorf("pinch_distance %f", c.Gesture.PinchDistance)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Save writes c to path in INI form.
func (c *Config) Save(path string) error {
	f := ini.Empty()
	set := func(section, key string, v any) {
		f.Section(section).Key(key).SetValue(fmt.Sprint(v))
	}

	set("server", "addr", c.Server.Addr)
	set("server", "static_dir", c.Server.StaticDir)

	set("camera", "device", c.Camera.DeviceID)
	set("camera", "width", c.Camera.Width)
	set("camera", "height", c.Camera.Height)
	set("camera", "idle_fps", c.Camera.IdleFPS)
	set("camera", "active_fps", c.Camera.ActiveFPS)
	set("camera", "idle_after", c.Camera.IdleAfter)
	set("camera", "motion_threshold", c.Camera.MotionThreshold)
	set("camera", "mirror", c.Camera.Mirror)
	set("camera", "max_read_failures", c.Camera.MaxReadFailures)

	set("detector", "script", c.Detector.Script)
	set("detector", "python", c.Detector.Python)
	set("detector", "max_hands", c.Detector.MaxHands)
	set("detector", "min_detection", c.Detector.MinDetection)
	set("detector", "min_tracking", c.Detector.MinTracking)

	set("gesture", "cooldown", c.Gesture.Cooldown)
	set("gesture", "smoothing", c.Gesture.Smoothing)
	set("gesture", "pinch_distance", c.Gesture.PinchDistance)
	set("gesture", "scroll_delta", c.Gesture.ScrollDelta)
	set("gesture", "blink_threshold", c.Gesture.BlinkThreshold)

	set("presentation", "root", c.Presentation.Root)
	set("presentation", "canvas_width", c.Presentation.CanvasWidth)
	set("presentation", "canvas_height", c.Presentation.CanvasHeight)
	set("presentation", "cache_size", c.Presentation.CacheSize)

	set("plugins", "dir", c.Plugins.Dir)
	set("plugins", "timeout", c.Plugins.Timeout)
	set("plugins", "queue_size", c.Plugins.QueueSize)

	set("store", "path", c.Store.Path)

	set("log", "level", c.Log.Level)
	set("log", "format", c.Log.Format)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return f.SaveTo(path)
}

// ConfigureLogger applies the level and format to logger. verbose forces
// debug level.
func (l LogConfig) ConfigureLogger(logger *logrus.Logger, verbose bool) error {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return err
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	if l.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func expandHome(p string) string {
	if len(p) < 2 || p[:2] != "~/" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
