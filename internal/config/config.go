// Package config loads the daemon's TOML configuration. A missing file is
// not an error: every field has a compiled-in default.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/sweeney/potty-timer/internal/clock"
	"github.com/sweeney/potty-timer/internal/gpio"
	"github.com/sweeney/potty-timer/internal/logic"
	"github.com/sweeney/potty-timer/internal/logstore"
	"github.com/sweeney/potty-timer/internal/touch"
)

// DefaultPath is where the daemon looks for its config.
const DefaultPath = "/etc/potty-timer/config.toml"

// WSFromBroker asks for the websocket URL to be derived from the MQTT broker.
const WSFromBroker = "=broker"

// Touch controller kinds.
const (
	TouchResistive  = "resistive"
	TouchCapacitive = "capacitive"
)

// Config is the resolved daemon configuration.
type Config struct {
	Thresholds     logic.Thresholds
	Layout         logic.Layout
	Debounce       time.Duration
	DurationPrefix string
	Poll           time.Duration
	MaxLogView     int

	Touch   Touch
	Display Display

	LogPath string

	NTPServer    string
	SyncAttempts int
	SyncInterval time.Duration
	SyncTimeout  time.Duration
	Location     *time.Location

	Broker     string
	// WSBroker is the websocket URL the status page subscribes to. The
	// value WSFromBroker derives it from Broker; "off" or empty disables it.
	WSBroker   string
	ClientID   string
	BufferSize int
	Heartbeat  time.Duration

	HTTPAddr string
}

// Touch configures the touch controller.
type Touch struct {
	Kind string
	// SPIPort and I2CBus are periph registry names; empty picks the first.
	SPIPort  string
	I2CBus   string
	MinX     int
	MaxX     int
	MinY     int
	MaxY     int
	Pressure int
	ResetPin int
}

// Display configures the panel.
type Display struct {
	Framebuffer  string
	BacklightPin int
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Thresholds: logic.DefaultThresholds,
		Layout:     logic.DefaultLayout,
		Debounce:   500 * time.Millisecond,
		Poll:       20 * time.Millisecond,
		MaxLogView: 9,
		Touch: Touch{
			Kind:     TouchResistive,
			MinX:     300,
			MaxX:     3900,
			MinY:     300,
			MaxY:     3900,
			Pressure: 400,
			ResetPin: gpio.DefaultPinTouchRST,
		},
		Display: Display{
			Framebuffer:  "/dev/fb1",
			BacklightPin: gpio.DefaultPinBacklight,
		},
		LogPath:      "/var/lib/potty-timer/potty.log",
		NTPServer:    "pool.ntp.org",
		SyncAttempts: 10,
		SyncInterval: 500 * time.Millisecond,
		SyncTimeout:  2 * time.Second,
		Location:     time.Local,
		WSBroker:     WSFromBroker,
		ClientID:     "potty-timer",
		BufferSize:   100,
		Heartbeat:    15 * time.Minute,
		HTTPAddr:     ":80",
	}
}

type rawConfig struct {
	Timer struct {
		MidSeconds     *int64  `toml:"mid_seconds"`
		HighSeconds    *int64  `toml:"high_seconds"`
		Debounce       string  `toml:"debounce"`
		DurationPrefix *string `toml:"duration_prefix"`
		Poll           string  `toml:"poll"`
	} `toml:"timer"`

	Screen struct {
		Width      int    `toml:"width"`
		Height     int    `toml:"height"`
		Logs       []int  `toml:"logs"`
		Clear      []int  `toml:"clear"`
		Timer      []int  `toml:"timer"`
		MaxLogView int    `toml:"max_log_lines"`
		Device     string `toml:"framebuffer"`
		Backlight  *int   `toml:"backlight_pin"`
	} `toml:"screen"`

	Touch struct {
		Kind     string `toml:"kind"`
		SPIPort  string `toml:"spi_port"`
		I2CBus   string `toml:"i2c_bus"`
		MinX     *int   `toml:"min_x"`
		MaxX     *int   `toml:"max_x"`
		MinY     *int   `toml:"min_y"`
		MaxY     *int   `toml:"max_y"`
		Pressure *int   `toml:"pressure"`
		ResetPin *int   `toml:"reset_pin"`
	} `toml:"touch"`

	Log struct {
		Path string `toml:"path"`
	} `toml:"log"`

	Clock struct {
		NTPServer *string `toml:"ntp_server"`
		Attempts  int     `toml:"attempts"`
		Interval  string  `toml:"interval"`
		Timeout   string  `toml:"timeout"`
		Timezone  string  `toml:"timezone"`
	} `toml:"clock"`

	MQTT struct {
		Broker     string  `toml:"broker"`
		WSBroker   *string `toml:"ws_broker"`
		ClientID   string  `toml:"client_id"`
		BufferSize int     `toml:"buffer_size"`
		Heartbeat  string  `toml:"heartbeat"`
	} `toml:"mqtt"`

	HTTP struct {
		Addr *string `toml:"addr"`
	} `toml:"http"`
}

// Load reads the config at path (DefaultPath when empty), falling back to
// defaults when the file does not exist. The result is validated.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.LogPath = mustExpand(cfg.LogPath)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := apply(&cfg, raw); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func apply(cfg *Config, raw rawConfig) error {
	var err error

	t := raw.Timer
	if t.MidSeconds != nil {
		cfg.Thresholds.Mid = *t.MidSeconds
	}
	if t.HighSeconds != nil {
		cfg.Thresholds.High = *t.HighSeconds
	}
	if t.DurationPrefix != nil {
		cfg.DurationPrefix = *t.DurationPrefix
	}
	if cfg.Debounce, err = duration("timer.debounce", t.Debounce, cfg.Debounce); err != nil {
		return err
	}
	if cfg.Poll, err = duration("timer.poll", t.Poll, cfg.Poll); err != nil {
		return err
	}

	s := raw.Screen
	if s.Width > 0 {
		cfg.Layout.Width = s.Width
	}
	if s.Height > 0 {
		cfg.Layout.Height = s.Height
	}
	if cfg.Layout.Logs, err = region("screen.logs", logic.RegionLogs, s.Logs, cfg.Layout.Logs); err != nil {
		return err
	}
	if cfg.Layout.Clear, err = region("screen.clear", logic.RegionClear, s.Clear, cfg.Layout.Clear); err != nil {
		return err
	}
	if cfg.Layout.Timer, err = region("screen.timer", logic.RegionTimer, s.Timer, cfg.Layout.Timer); err != nil {
		return err
	}
	if s.MaxLogView > 0 {
		cfg.MaxLogView = s.MaxLogView
	}
	if v := strings.TrimSpace(s.Device); v != "" {
		cfg.Display.Framebuffer = v
	}
	setInt(&cfg.Display.BacklightPin, s.Backlight)

	tc := raw.Touch
	if v := strings.ToLower(strings.TrimSpace(tc.Kind)); v != "" {
		cfg.Touch.Kind = v
	}
	cfg.Touch.SPIPort = strings.TrimSpace(tc.SPIPort)
	cfg.Touch.I2CBus = strings.TrimSpace(tc.I2CBus)
	setInt(&cfg.Touch.MinX, tc.MinX)
	setInt(&cfg.Touch.MaxX, tc.MaxX)
	setInt(&cfg.Touch.MinY, tc.MinY)
	setInt(&cfg.Touch.MaxY, tc.MaxY)
	setInt(&cfg.Touch.Pressure, tc.Pressure)
	setInt(&cfg.Touch.ResetPin, tc.ResetPin)

	if v := strings.TrimSpace(raw.Log.Path); v != "" {
		cfg.LogPath = v
	}
	cfg.LogPath = mustExpand(cfg.LogPath)

	c := raw.Clock
	if c.NTPServer != nil {
		cfg.NTPServer = strings.TrimSpace(*c.NTPServer)
	}
	if c.Attempts > 0 {
		cfg.SyncAttempts = c.Attempts
	}
	if cfg.SyncInterval, err = duration("clock.interval", c.Interval, cfg.SyncInterval); err != nil {
		return err
	}
	if cfg.SyncTimeout, err = duration("clock.timeout", c.Timeout, cfg.SyncTimeout); err != nil {
		return err
	}
	if tz := strings.TrimSpace(c.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("clock.timezone %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	m := raw.MQTT
	cfg.Broker = strings.TrimSpace(m.Broker)
	if m.WSBroker != nil {
		cfg.WSBroker = strings.TrimSpace(*m.WSBroker)
	}
	if v := strings.TrimSpace(m.ClientID); v != "" {
		cfg.ClientID = v
	}
	if m.BufferSize > 0 {
		cfg.BufferSize = m.BufferSize
	}
	if cfg.Heartbeat, err = duration("mqtt.heartbeat", m.Heartbeat, cfg.Heartbeat); err != nil {
		return err
	}

	if raw.HTTP.Addr != nil {
		cfg.HTTPAddr = strings.TrimSpace(*raw.HTTP.Addr)
	}
	return nil
}

// Validate checks the configuration for values the daemon cannot run with.
func (c Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("timer: %w", err)
	}
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("timer.debounce must not be negative")
	}
	if c.Poll <= 0 {
		return fmt.Errorf("timer.poll must be positive")
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("mqtt.heartbeat must not be negative")
	}
	switch c.Touch.Kind {
	case TouchResistive:
		if c.Touch.MaxX <= c.Touch.MinX || c.Touch.MaxY <= c.Touch.MinY {
			return fmt.Errorf("touch: calibration max must exceed min")
		}
	case TouchCapacitive:
	default:
		return fmt.Errorf("touch.kind %q: want %q or %q", c.Touch.Kind, TouchResistive, TouchCapacitive)
	}
	if len(clock.LogLayout)+len(" Duration: 00:00:00")+len(c.DurationPrefix) > logstore.MaxLineBytes {
		return fmt.Errorf("timer.duration_prefix %q is too long for a log line", c.DurationPrefix)
	}
	return nil
}

// Machine returns the state machine configuration.
func (c Config) Machine() logic.Config {
	return logic.Config{
		Thresholds:     c.Thresholds,
		Layout:         c.Layout,
		Debounce:       c.Debounce,
		DurationPrefix: c.DurationPrefix,
	}
}

// Screen returns the panel dimensions for touch mapping.
func (c Config) Screen() touch.Screen {
	return touch.Screen{Width: c.Layout.Width, Height: c.Layout.Height}
}

// Resistive returns the XPT2046 calibration.
func (c Config) Resistive() touch.ResistiveConfig {
	return touch.ResistiveConfig{
		MinX:     c.Touch.MinX,
		MaxX:     c.Touch.MaxX,
		MinY:     c.Touch.MinY,
		MaxY:     c.Touch.MaxY,
		Pressure: c.Touch.Pressure,
		Screen:   c.Screen(),
	}
}

func duration(name, v string, def time.Duration) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

func region(name string, id logic.RegionID, v []int, def logic.Region) (logic.Region, error) {
	if v == nil {
		return def, nil
	}
	if len(v) != 4 {
		return logic.Region{}, fmt.Errorf("%s: want [x, y, w, h], got %d values", name, len(v))
	}
	return logic.Region{ID: id, X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
