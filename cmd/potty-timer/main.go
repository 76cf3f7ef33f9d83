// Command potty-timer runs the touchscreen potty timer on a Raspberry Pi
// with an SPI TFT and a resistive or capacitive touch controller.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/host/v3"

	"github.com/sweeney/potty-timer/internal/app"
	"github.com/sweeney/potty-timer/internal/clock"
	"github.com/sweeney/potty-timer/internal/config"
	"github.com/sweeney/potty-timer/internal/display"
	"github.com/sweeney/potty-timer/internal/gpio"
	"github.com/sweeney/potty-timer/internal/logic"
	"github.com/sweeney/potty-timer/internal/logstore"
	"github.com/sweeney/potty-timer/internal/mqtt"
	"github.com/sweeney/potty-timer/internal/status"
	"github.com/sweeney/potty-timer/internal/touch"
	"github.com/sweeney/potty-timer/internal/web"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to the TOML config file")
	flag.Duration("poll", 0, "Touch polling interval (overrides config)")
	flag.Duration("debounce", 0, "Minimum gap between accepted touches (overrides config)")
	flag.Duration("heartbeat", 0, "Heartbeat interval, 0 to disable (overrides config)")
	flag.String("broker", "", `MQTT broker address, "" to disable (overrides config)`)
	flag.String("ws-broker", "", `MQTT websocket URL for the live status page ("=broker" derives from the broker, "off" disables; overrides config)`)
	flag.String("http", "", `HTTP status address, "" to disable (overrides config)`)
	printLogs := flag.Bool("print-logs", false, "Print the stored log and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		if err == nil {
			err = applyFlag(&cfg, f.Name, f.Value.String())
		}
	})
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg, *printLogs); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyFlag overrides one config field from a command line flag.
func applyFlag(cfg *config.Config, name, value string) error {
	var err error
	switch name {
	case "poll":
		cfg.Poll, err = time.ParseDuration(value)
	case "debounce":
		cfg.Debounce, err = time.ParseDuration(value)
	case "heartbeat":
		cfg.Heartbeat, err = time.ParseDuration(value)
	case "broker":
		cfg.Broker = value
	case "ws-broker":
		cfg.WSBroker = value
	case "http":
		cfg.HTTPAddr = value
	}
	if err != nil {
		return fmt.Errorf("-%s: %w", name, err)
	}
	return nil
}

// resolveWSBroker converts the ws-broker setting into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off", an
// empty value or a missing broker disables the live page.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != config.WSFromBroker {
		return ws
	}
	if broker == "" {
		return ""
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse broker %q: %v", broker, err)
		return ""
	}
	if u.Hostname() == "" {
		log.Printf("ws-broker: broker %q has no host", broker)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}

// backlightOff darkens the panel on exit and releases the pin.
func backlightOff(out gpio.Output) {
	if err := out.Set(false); err != nil {
		log.Printf("backlight: %v", err)
	}
	if err := out.Close(); err != nil {
		log.Printf("backlight: %v", err)
	}
}

func run(cfg config.Config, printLogs bool) error {
	// The log is the one thing worth stopping for.
	store, err := logstore.Open(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}

	if printLogs {
		return printLog(os.Stdout, store)
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("init periph host: %w", err)
	}

	backlight, err := gpio.NewRealOutput(cfg.Display.BacklightPin, true)
	if err != nil {
		log.Printf("backlight: %v", err)
	} else {
		defer backlightOff(backlight)
	}

	adapter, closeTouch, err := openTouch(cfg)
	if err != nil {
		return err
	}
	defer closeTouch.Close()

	base := clock.NewMonotonic(nil)
	var src clock.Source = base
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	synced, err := clock.Sync(ctx, base, clock.SyncOptions{
		Server:   cfg.NTPServer,
		Attempts: cfg.SyncAttempts,
		Interval: cfg.SyncInterval,
		Timeout:  cfg.SyncTimeout,
		Location: cfg.Location,
	})
	cancel()
	if err != nil {
		log.Printf("clock: %v; log timestamps use time since boot", err)
	} else {
		src = synced
	}

	sink, err := display.OpenFramebuffer(cfg.Display.Framebuffer, cfg.Layout.Width)
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}
	defer sink.Close()
	panel := display.NewPanel(cfg.Layout, sink, src)

	var publisher mqtt.Publisher = mqtt.Discard{}
	var mqttStatus mqtt.ConnectionStatus = mqtt.Discard{}
	if cfg.Broker != "" {
		rp, err := mqtt.NewRealPublisher(mqtt.Options{
			Broker:     cfg.Broker,
			ClientID:   cfg.ClientID,
			BufferSize: cfg.BufferSize,
		})
		if err != nil {
			log.Printf("mqtt: %v; events will not be published", err)
		} else {
			publisher, mqttStatus = rp, rp
		}
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.Poll.Milliseconds(),
		DebounceMs:  cfg.Debounce.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		MidSeconds:  cfg.Thresholds.Mid,
		HighSeconds: cfg.Thresholds.High,
		Touch:       cfg.Touch.Kind,
		LogPath:     cfg.LogPath,
		Broker:      cfg.Broker,
		WSBroker:    resolveWSBroker(cfg.WSBroker, cfg.Broker),
		HTTPAddr:    cfg.HTTPAddr,
	})
	tracker.SetTimeSynced(clock.IsSynced(src))
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, store)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	ctrl := app.New(logic.NewMachine(cfg.Machine(), src.Now()), app.Deps{
		Store:      store,
		Renderer:   panel,
		Publisher:  publisher,
		Clock:      src,
		MaxLogView: cfg.MaxLogView,
	})

	log.Printf("started: touch=%s poll=%v debounce=%v thresholds=%d/%d broker=%q heartbeat=%v",
		cfg.Touch.Kind, cfg.Poll, cfg.Debounce, cfg.Thresholds.Mid, cfg.Thresholds.High, cfg.Broker, cfg.Heartbeat)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctrl, adapter, publisher, mqttStatus, tracker, cfg.Heartbeat, src.Now, ticker.C, sigCh)
}

// openTouch brings up the configured touch controller and wraps it so Poll
// reports only the initial contact of each press.
func openTouch(cfg config.Config) (touch.Adapter, io.Closer, error) {
	switch cfg.Touch.Kind {
	case config.TouchCapacitive:
		rst, err := gpio.NewRealOutput(cfg.Touch.ResetPin, true)
		if err != nil {
			return nil, nil, fmt.Errorf("touch reset line: %w", err)
		}
		if err := gpio.PulseReset(rst, time.Sleep); err != nil {
			rst.Close()
			return nil, nil, fmt.Errorf("touch reset: %w", err)
		}
		c, err := touch.OpenCapacitive(cfg.Touch.I2CBus, cfg.Screen())
		if err != nil {
			rst.Close()
			return nil, nil, fmt.Errorf("init touch: %w", err)
		}
		if id, project, fw, err := c.ChipInfo(); err != nil {
			log.Printf("touch: CST816S not responding: %v", err)
		} else {
			log.Printf("touch: CST816S chip=0x%02X project=0x%02X fw=0x%02X", id, project, fw)
		}
		return touch.NewEdgeTrigger(c), closers{c, rst}, nil

	default:
		r, err := touch.OpenResistive(cfg.Touch.SPIPort, cfg.Resistive())
		if err != nil {
			return nil, nil, fmt.Errorf("init touch: %w", err)
		}
		return touch.NewEdgeTrigger(r), r, nil
	}
}

type closers []io.Closer

func (cs closers) Close() error {
	var first error
	for _, c := range cs {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func printLog(w io.Writer, store logstore.Store) error {
	entries, err := store.ReadAll()
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No logs found")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintln(w, e.Line())
	}
	return nil
}

// touchErrorEvery limits how often repeated touch read errors are logged.
const touchErrorEvery = 500

func runLoop(ctrl *app.Controller, adapter touch.Adapter, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	ctrl.Boot(now())
	touchErrors := 0

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				tracker.Update(ctrl.Core(event.Timestamp))
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			p, down, err := adapter.Poll()
			if err != nil {
				// A bad read is a lost touch, nothing more.
				if touchErrors%touchErrorEvery == 0 {
					log.Printf("touch read error (%d so far): %v", touchErrors+1, err)
				}
				touchErrors++
			} else if down {
				ctrl.Touch(p, t)
			}
			ctrl.Tick(t)

			if hbData := ctrl.Machine().CheckHeartbeat(t, heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v started=%d completed=%d cleared=%d touches=%d/%d",
					hbData.Uptime, hbData.Counts.SessionsStarted, hbData.Counts.SessionsCompleted,
					hbData.Counts.LogsCleared, hbData.Counts.TouchesAccepted, hbData.Counts.TouchesIgnored)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					tracker.Update(ctrl.Core(t))
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			if tracker != nil {
				tracker.Update(ctrl.Core(t))
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
