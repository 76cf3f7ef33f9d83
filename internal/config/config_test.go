package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/sweeney/potty-timer/internal/logic"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Thresholds != logic.DefaultThresholds {
		t.Fatalf("Thresholds = %+v, want defaults", cfg.Thresholds)
	}
	if cfg.Layout != logic.DefaultLayout {
		t.Fatalf("Layout = %+v, want defaults", cfg.Layout)
	}
	if cfg.Debounce != 500*time.Millisecond {
		t.Fatalf("Debounce = %v, want 500ms", cfg.Debounce)
	}
	if cfg.Touch.Kind != TouchResistive {
		t.Fatalf("Touch.Kind = %q, want resistive", cfg.Touch.Kind)
	}
	if cfg.Broker != "" {
		t.Fatalf("Broker = %q, want empty (MQTT off)", cfg.Broker)
	}
	if cfg.WSBroker != WSFromBroker {
		t.Fatalf("WSBroker = %q, want %q", cfg.WSBroker, WSFromBroker)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestLoad_ParsesConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
[timer]
mid_seconds = 60
high_seconds = 120
debounce = "250ms"
duration_prefix = "-- "
poll = "50ms"

[screen]
logs = [240, 190, 80, 50]
max_log_lines = 5
framebuffer = "/dev/fb0"
backlight_pin = 27

[touch]
kind = " Capacitive "
i2c_bus = "1"
reset_pin = 24

[log]
path = "~/potty/log.txt"

[clock]
ntp_server = "time.example.org"
attempts = 3
timezone = "America/Chicago"

[mqtt]
broker = " tcp://10.0.0.2:1883 "
ws_broker = "off"
heartbeat = "1m"

[http]
addr = ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Thresholds != (logic.Thresholds{Mid: 60, High: 120}) {
		t.Errorf("Thresholds = %+v", cfg.Thresholds)
	}
	if cfg.Debounce != 250*time.Millisecond || cfg.Poll != 50*time.Millisecond {
		t.Errorf("Debounce/Poll = %v/%v", cfg.Debounce, cfg.Poll)
	}
	if cfg.DurationPrefix != "-- " {
		t.Errorf("DurationPrefix = %q", cfg.DurationPrefix)
	}
	want := logic.Region{ID: logic.RegionLogs, X: 240, Y: 190, W: 80, H: 50}
	if cfg.Layout.Logs != want {
		t.Errorf("Layout.Logs = %+v, want %+v", cfg.Layout.Logs, want)
	}
	if cfg.Layout.Clear != logic.DefaultLayout.Clear {
		t.Errorf("unset region should keep default, got %+v", cfg.Layout.Clear)
	}
	if cfg.MaxLogView != 5 || cfg.Display.Framebuffer != "/dev/fb0" || cfg.Display.BacklightPin != 27 {
		t.Errorf("screen settings not applied: %+v / %d", cfg.Display, cfg.MaxLogView)
	}
	if cfg.Touch.Kind != TouchCapacitive || cfg.Touch.I2CBus != "1" || cfg.Touch.ResetPin != 24 {
		t.Errorf("touch settings not applied: %+v", cfg.Touch)
	}
	if !strings.HasPrefix(cfg.LogPath, home) {
		t.Errorf("LogPath = %q, want it under HOME %q", cfg.LogPath, home)
	}
	if cfg.NTPServer != "time.example.org" || cfg.SyncAttempts != 3 {
		t.Errorf("clock settings not applied: %s/%d", cfg.NTPServer, cfg.SyncAttempts)
	}
	if cfg.Location.String() != "America/Chicago" {
		t.Errorf("Location = %v", cfg.Location)
	}
	if cfg.Broker != "tcp://10.0.0.2:1883" || cfg.Heartbeat != time.Minute {
		t.Errorf("mqtt settings not applied: %q/%v", cfg.Broker, cfg.Heartbeat)
	}
	if cfg.WSBroker != "off" {
		t.Errorf("WSBroker = %q, want off", cfg.WSBroker)
	}
	if cfg.HTTPAddr != "" {
		t.Errorf("explicit empty http addr should disable HTTP, got %q", cfg.HTTPAddr)
	}

	mc := cfg.Machine()
	if mc.Debounce != cfg.Debounce || mc.DurationPrefix != "-- " || mc.Layout != cfg.Layout {
		t.Errorf("Machine() = %+v", mc)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	path := writeConfig(t, `
[timer]
debounce = "  "

[touch]
kind = ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Debounce != 500*time.Millisecond {
		t.Errorf("Debounce = %v, want default", cfg.Debounce)
	}
	if cfg.Touch.Kind != TouchResistive {
		t.Errorf("Touch.Kind = %q, want default", cfg.Touch.Kind)
	}
	if cfg.HTTPAddr != ":80" {
		t.Errorf("HTTPAddr = %q, want default", cfg.HTTPAddr)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad toml", `[timer`, "parse config"},
		{"bad duration", "[timer]\ndebounce = \"soon\"", "timer.debounce"},
		{"thresholds out of order", "[timer]\nmid_seconds = 200\nhigh_seconds = 100", "timer:"},
		{"region arity", "[screen]\nclear = [1, 2, 3]", "screen.clear"},
		{"region overlap", "[screen]\nclear = [240, 190, 80, 40]", "overlaps"},
		{"region off screen", "[screen]\ntimer = [300, 130, 240, 50]", "outside"},
		{"unknown touch", "[touch]\nkind = \"optical\"", "touch.kind"},
		{"bad calibration", "[touch]\nmin_x = 4000", "calibration"},
		{"bad timezone", "[clock]\ntimezone = \"Mars/Olympus\"", "clock.timezone"},
		{"zero poll", "[timer]\npoll = \"0s\"", "timer.poll"},
		{"long prefix", "[timer]\nduration_prefix = \"" + strings.Repeat("x", 100) + "\"", "duration_prefix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestResistiveCalibration(t *testing.T) {
	cfg := Default()
	rc := cfg.Resistive()
	if rc.MinX != 300 || rc.MaxX != 3900 || rc.MinY != 300 || rc.MaxY != 3900 {
		t.Errorf("unexpected calibration %+v", rc)
	}
	if rc.Screen.Width != 320 || rc.Screen.Height != 240 {
		t.Errorf("unexpected screen %+v", rc.Screen)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/x.toml")
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	if got != filepath.Join(home, "x.toml") {
		t.Errorf("got %q", got)
	}
	if _, err := expandPath("   "); err == nil {
		t.Error("expected error for empty path")
	}
}
