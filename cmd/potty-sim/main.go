// Command potty-sim runs the potty timer in a terminal. Mouse clicks on the
// drawn panel act as touches, so the whole flow can be tried without the
// Pi hardware.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sweeney/potty-timer/internal/app"
	"github.com/sweeney/potty-timer/internal/clock"
	"github.com/sweeney/potty-timer/internal/config"
	"github.com/sweeney/potty-timer/internal/logic"
	"github.com/sweeney/potty-timer/internal/logstore"
	"github.com/sweeney/potty-timer/internal/mqtt"
	"github.com/sweeney/potty-timer/internal/sim"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file (default: built-in settings)")
	logPath := flag.String("log", "", "Log file to use (default: in memory)")
	mid := flag.Int64("mid", 0, "Seconds until the yellow band (overrides config)")
	high := flag.Int64("high", 0, "Seconds until the green band (overrides config)")
	broker := flag.String("broker", "", "MQTT broker address (default: none)")
	ntp := flag.Bool("ntp", false, "Sync the wall clock over NTP before starting")
	debugLog := flag.String("debug-log", "", "Write diagnostics to this file")

	flag.Parse()

	if *debugLog != "" {
		f, err := tea.LogToFile(*debugLog, "sim")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening debug log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *mid > 0 {
		cfg.Thresholds.Mid = *mid
	}
	if *high > 0 {
		cfg.Thresholds.High = *high
	}
	if *logPath != "" {
		cfg.LogPath = *logPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *logPath != "", *broker, *ntp); err != nil {
		fmt.Fprintf(os.Stderr, "Error running simulator: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, useFile bool, broker string, syncClock bool) error {
	var store logstore.Store = logstore.NewMemory()
	if useFile {
		fs, err := logstore.Open(cfg.LogPath)
		if err != nil {
			return err
		}
		store = fs
	}

	base := clock.NewMonotonic(nil)
	var src clock.Source = base
	if syncClock {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		synced, err := clock.Sync(ctx, base, clock.SyncOptions{
			Server:   cfg.NTPServer,
			Attempts: cfg.SyncAttempts,
			Interval: cfg.SyncInterval,
			Timeout:  cfg.SyncTimeout,
			Location: cfg.Location,
		})
		cancel()
		if err != nil {
			log.Printf("clock: %v", err)
		} else {
			src = synced
		}
	}

	events := &sim.Recorder{Next: mqtt.Discard{}}
	if broker != "" {
		pub, err := mqtt.NewRealPublisher(mqtt.Options{Broker: broker, ClientID: "potty-sim", BufferSize: cfg.BufferSize})
		if err != nil {
			log.Printf("mqtt: %v", err)
		} else {
			events.Next = pub
		}
	}
	defer events.Close()

	screen := sim.NewScreen(cfg.Layout, src)
	ctrl := app.New(logic.NewMachine(cfg.Machine(), src.Now()), app.Deps{
		Store:      store,
		Renderer:   screen,
		Publisher:  events,
		Clock:      src,
		MaxLogView: cfg.MaxLogView,
	})

	return sim.Run(sim.Options{
		Controller: ctrl,
		Screen:     screen,
		Layout:     cfg.Layout,
		Events:     events,
		Now:        src.Now,
	})
}
