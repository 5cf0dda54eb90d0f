// Package camera captures frames from a local webcam for the dashboard's
// annotated preview. It follows the same pattern as pkg/attention for
// tunable parameters.
package camera

import "fmt"

// Config holds capture parameters.
type Config struct {
	Device    int `json:"device" yaml:"device"`       // OpenCV device index, -1 disables capture
	Width     int `json:"width" yaml:"width"`         // Frame width in pixels
	Height    int `json:"height" yaml:"height"`       // Frame height in pixels
	Framerate int `json:"framerate" yaml:"framerate"` // Target FPS
	Quality   int `json:"quality" yaml:"quality"`     // JPEG quality 1-100
}

// Capture limits
const (
	MaxWidth     = 3840
	MaxHeight    = 2160
	MaxFramerate = 60
)

// Preset names for common configurations
const (
	PresetDefault = "default"
	PresetLow     = "low"
	Preset720p    = "720p"
)

// DefaultConfig returns a 640x480 preview at 15 FPS, capture disabled.
// Landmark detection runs client-side, so the preview does not need to be
// sharp.
func DefaultConfig() Config {
	return Config{
		Device:    -1,
		Width:     640,
		Height:    480,
		Framerate: 15,
		Quality:   80,
	}
}

// LowConfig returns a 320x240 configuration for slow machines.
func LowConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 320
	cfg.Height = 240
	cfg.Framerate = 10
	cfg.Quality = 70
	return cfg
}

// HD720Config returns 720p HD configuration.
func HD720Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1280
	cfg.Height = 720
	cfg.Framerate = 30
	return cfg
}

// Preset returns a preset config by name with the given device.
func Preset(name string, device int) (Config, error) {
	var cfg Config
	switch name {
	case "", PresetDefault:
		cfg = DefaultConfig()
	case PresetLow:
		cfg = LowConfig()
	case Preset720p:
		cfg = HD720Config()
	default:
		return Config{}, fmt.Errorf("camera: unknown preset %q", name)
	}
	cfg.Device = device
	return cfg, nil
}

// Enabled reports whether a capture device is configured.
func (c Config) Enabled() bool { return c.Device >= 0 }

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Width < 160 || c.Width > MaxWidth {
		errors = append(errors, fmt.Sprintf("width must be 160-%d", MaxWidth))
	}
	if c.Height < 120 || c.Height > MaxHeight {
		errors = append(errors, fmt.Sprintf("height must be 120-%d", MaxHeight))
	}
	if c.Framerate < 1 || c.Framerate > MaxFramerate {
		errors = append(errors, fmt.Sprintf("framerate must be 1-%d", MaxFramerate))
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be 1-100")
	}
	return errors
}
