// Vigil - landmark-based attention and drowsiness monitor
// Accepts face landmarks over HTTP or websocket and serves a live dashboard
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-vigil/internal/config"
	"github.com/teslashibe/go-vigil/internal/log"
	"github.com/teslashibe/go-vigil/pkg/vigil"
)

func main() {
	cfg, level := parseFlags()
	log.Init(level)

	app, err := vigil.New(cfg)
	if err != nil {
		fatal("configuration error", err)
	}

	if err := app.Init(); err != nil {
		fatal("initialization failed", err)
	}
	defer app.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		log.Error("runtime error", "error", err)
		app.Shutdown()
		os.Exit(1)
	}
}

func fatal(msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}

// parseFlags parses command line flags over the loaded settings.
func parseFlags() (vigil.Config, string) {
	configPath := flag.String("config", os.Getenv("VIGIL_CONFIG"), "Path to a YAML config file")
	debugFlag := flag.Bool("debug", false, "Enable verbose debug logging")
	debugFrames := flag.Bool("debug-frames", false, "Log every classified frame (very verbose)")
	addr := flag.String("addr", "", "Dashboard listen address (overrides config)")
	preset := flag.String("preset", "", "Threshold preset: default, lenient, strict")
	autoStart := flag.Bool("auto-start", false, "Start a session as soon as the monitor is up")
	noOverlay := flag.Bool("no-overlay", false, "Disable camera frame annotation")
	sound := flag.Bool("sound", false, "Play the alarm tone on this machine")
	voice := flag.Bool("voice", false, "Speak alert messages on this machine")
	cameraDevice := flag.Int("camera", -2, "Webcam device index for the dashboard preview (-1 disables)")
	flag.Parse()

	if *preset != "" {
		os.Setenv("VIGIL_PRESET", *preset)
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := vigil.FromSettings(settings)
	cfg.Debug, cfg.DebugFrames = *debugFlag, *debugFrames
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *autoStart {
		cfg.AutoStart = true
	}
	if *noOverlay {
		cfg.Overlay = false
	}
	if *sound {
		cfg.Sound = true
	}
	if *voice {
		cfg.Voice = true
	}
	if *cameraDevice != -2 {
		cfg.Camera.Device = *cameraDevice
	}

	level := settings.LogLevel
	if *debugFlag {
		level = "debug"
	}
	return cfg, level
}
