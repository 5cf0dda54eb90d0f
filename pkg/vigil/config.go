// Package vigil assembles the attention monitor, overlay and dashboard
// into one application.
package vigil

import (
	"time"

	"github.com/teslashibe/go-vigil/internal/config"
	"github.com/teslashibe/go-vigil/pkg/attention"
	"github.com/teslashibe/go-vigil/pkg/camera"
	"github.com/teslashibe/go-vigil/pkg/monitor"
	"github.com/teslashibe/go-vigil/pkg/tts"
	"github.com/teslashibe/go-vigil/pkg/web"
)

// Config holds all configuration for the application.
// Flag parsing is done in cmd/vigil/main.go; this struct is data only.
type Config struct {
	// Debug enables verbose debug logging.
	Debug bool

	// DebugFrames logs every classified frame.
	DebugFrames bool

	Attention attention.Config

	// Dashboard
	Addr           string
	StaticDir      string
	RequestTimeout time.Duration
	MaxLogs        int

	// Monitor loop
	TickInterval time.Duration
	QueueSize    int

	// AutoStart begins a session as soon as the monitor is up.
	AutoStart bool

	// Overlay enables POST /api/camera annotation.
	Overlay     bool
	JPEGQuality int

	// Camera captures a local preview when Camera.Device >= 0.
	Camera camera.Config

	// Sound plays the alarm tone locally. SoundCommand overrides player
	// detection.
	Sound        bool
	SoundCommand []string

	// Voice speaks the drowsy alert and escalation messages.
	Voice         bool
	VoiceProvider string // auto, local, openai or google
	VoiceCommand  []string
	VoiceName     string
	VoiceLanguage string
	VoiceMessages tts.Messages
	OpenAIKey     string
	GoogleKey     string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	w := web.DefaultConfig()
	m := monitor.DefaultConfig()
	return Config{
		Attention:      attention.DefaultConfig(),
		Addr:           w.Addr,
		StaticDir:      w.StaticDir,
		RequestTimeout: w.RequestTimeout,
		MaxLogs:        w.MaxLogs,
		TickInterval:   m.TickInterval,
		QueueSize:      m.QueueSize,
		Overlay:        true,
		JPEGQuality:    80,
		Camera:         camera.DefaultConfig(),
		VoiceProvider:  config.VoiceAuto,
		VoiceLanguage:  "en-US",
		VoiceMessages:  tts.DefaultMessages(),
	}
}

// FromSettings converts loaded settings into an application Config.
func FromSettings(s *config.Config) Config {
	return Config{
		Attention:      s.AttentionConfig(),
		Addr:           s.Server.Addr,
		StaticDir:      s.Server.StaticDir,
		RequestTimeout: s.Server.RequestTimeout,
		MaxLogs:        s.Server.MaxLogs,
		TickInterval:   s.Monitor.TickInterval,
		QueueSize:      s.Monitor.QueueSize,
		AutoStart:      s.Monitor.AutoStart,
		Overlay:        s.Overlay.Enabled,
		JPEGQuality:    s.Overlay.JPEGQuality,
		Camera:         s.Camera,
		Sound:          s.Sound.Enabled,
		SoundCommand:   s.Sound.Command,
		Voice:          s.Voice.Enabled,
		VoiceProvider:  s.Voice.Provider,
		VoiceCommand:   s.Voice.Command,
		VoiceName:      s.Voice.Voice,
		VoiceLanguage:  s.Voice.Language,
		VoiceMessages:  s.Voice.Messages,
		OpenAIKey:      s.Voice.OpenAIKey,
		GoogleKey:      s.Voice.GoogleKey,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return &ConfigError{Field: "Addr", Message: "listen address is required"}
	}
	if err := c.Attention.Validate(); err != nil {
		return &ConfigError{Field: "Attention", Message: err.Error(), Err: err}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
