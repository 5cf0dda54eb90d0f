// Package config loads settings for the vigil commands.
//
// Values are layered: built-in defaults (optionally a named preset), then a
// YAML file, then a .env file, then the process environment. Commands apply
// their flags last.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/teslashibe/go-vigil/pkg/attention"
	"github.com/teslashibe/go-vigil/pkg/camera"
	"github.com/teslashibe/go-vigil/pkg/tts"
	"gopkg.in/yaml.v3"
)

// Preset names accepted in the preset field and VIGIL_PRESET.
const (
	PresetDefault = "default"
	PresetLenient = "lenient"
	PresetStrict  = "strict"
)

// Config is the full settings tree for cmd/vigil.
type Config struct {
	Preset    string          `yaml:"preset"`
	LogLevel  string          `yaml:"log_level"`
	Server    ServerConfig    `yaml:"server"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Attention AttentionConfig `yaml:"attention"`
	Overlay   OverlayConfig   `yaml:"overlay"`
	Camera    camera.Config   `yaml:"camera"`
	Sound     SoundConfig     `yaml:"sound"`
	Voice     VoiceConfig     `yaml:"voice"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	StaticDir      string        `yaml:"static_dir"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxLogs        int           `yaml:"max_logs"`
}

type MonitorConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	QueueSize    int           `yaml:"queue_size"`
	AutoStart    bool          `yaml:"auto_start"`
}

// AttentionConfig mirrors attention.Config in file form.
type AttentionConfig struct {
	EyeClosedThresh float64       `yaml:"eye_closed_thresh"`
	CenterThreshold float64       `yaml:"center_threshold"`
	DrowsyThresh    float64       `yaml:"drowsy_thresh"`
	DrowsyFrames    int           `yaml:"drowsy_frames"`
	AlertCooldown   time.Duration `yaml:"alert_cooldown"`
	AlertClearAfter time.Duration `yaml:"alert_clear_after"`
	WarnAfter       time.Duration `yaml:"warn_after"`
	AlarmAfter      time.Duration `yaml:"alarm_after"`
}

// SoundConfig controls local alarm playback. An empty command picks the
// first known player on PATH.
type SoundConfig struct {
	Enabled bool     `yaml:"enabled"`
	Command []string `yaml:"command"`
}

// Voice providers accepted in voice.provider and VIGIL_VOICE_PROVIDER.
const (
	VoiceAuto   = "auto"
	VoiceLocal  = "local"
	VoiceOpenAI = "openai"
	VoiceGoogle = "google"
)

// VoiceConfig controls spoken alerts. With provider auto, OpenAI and Google
// are tried first when their keys are set, then the local engine.
type VoiceConfig struct {
	Enabled  bool         `yaml:"enabled"`
	Provider string       `yaml:"provider"`
	Command  []string     `yaml:"command"`
	Voice    string       `yaml:"voice"`
	Language string       `yaml:"language"`
	Messages tts.Messages `yaml:"messages"`

	// Keys come from the environment only.
	OpenAIKey string `yaml:"-"`
	GoogleKey string `yaml:"-"`
}

type OverlayConfig struct {
	Enabled     bool `yaml:"enabled"`
	JPEGQuality int  `yaml:"jpeg_quality"`
}

// Default returns the built-in settings for a preset. An empty name is the
// default preset.
func Default(preset string) (*Config, error) {
	var a attention.Config
	switch strings.ToLower(preset) {
	case "", PresetDefault:
		preset = PresetDefault
		a = attention.DefaultConfig()
	case PresetLenient:
		a = attention.LenientConfig()
	case PresetStrict:
		a = attention.StrictConfig()
	default:
		return nil, fmt.Errorf("config: unknown preset %q", preset)
	}

	return &Config{
		Preset:   strings.ToLower(preset),
		LogLevel: "info",
		Server: ServerConfig{
			Addr:           ":8080",
			StaticDir:      "./web",
			RequestTimeout: 2 * time.Second,
			MaxLogs:        500,
		},
		Monitor: MonitorConfig{
			TickInterval: time.Second,
			QueueSize:    64,
		},
		Attention: fromAttention(a),
		Overlay: OverlayConfig{
			Enabled:     true,
			JPEGQuality: 80,
		},
		Camera: camera.DefaultConfig(),
		Voice: VoiceConfig{
			Provider: VoiceAuto,
			Language: "en-US",
			Messages: tts.DefaultMessages(),
		},
	}, nil
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), .env in the working directory, and the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: .env: %w", err)
	}

	var data []byte
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	return parse(data, path)
}

func parse(data []byte, path string) (*Config, error) {
	// The preset picks the base the file then overrides, so read it first.
	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	preset := head.Preset
	if v := os.Getenv("VIGIL_PRESET"); v != "" {
		preset = v
	}

	cfg, err := Default(preset)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if preset == "" {
		preset = PresetDefault
	}
	cfg.Preset = strings.ToLower(preset)

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.AttentionConfig().Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch cfg.Voice.Provider {
	case VoiceAuto, VoiceLocal, VoiceOpenAI, VoiceGoogle:
	default:
		return nil, fmt.Errorf("config: unknown voice provider %q", cfg.Voice.Provider)
	}
	if cfg.Camera.Enabled() {
		if errs := cfg.Camera.Validate(); len(errs) > 0 {
			return nil, fmt.Errorf("config: camera: %v", errs)
		}
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Server.Addr = getEnv("VIGIL_ADDR", c.Server.Addr)
	c.Server.StaticDir = getEnv("VIGIL_STATIC_DIR", c.Server.StaticDir)

	c.Voice.Provider = strings.ToLower(getEnv("VIGIL_VOICE_PROVIDER", c.Voice.Provider))
	c.Voice.OpenAIKey = getEnv("OPENAI_API_KEY", c.Voice.OpenAIKey)
	c.Voice.GoogleKey = getEnv("GOOGLE_TTS_API_KEY", c.Voice.GoogleKey)

	a := &c.Attention
	var errs [12]error
	a.EyeClosedThresh, errs[0] = getEnvFloat("VIGIL_EYE_CLOSED_THRESH", a.EyeClosedThresh)
	a.CenterThreshold, errs[1] = getEnvFloat("VIGIL_CENTER_THRESHOLD", a.CenterThreshold)
	a.DrowsyThresh, errs[2] = getEnvFloat("VIGIL_DROWSY_THRESH", a.DrowsyThresh)
	a.DrowsyFrames, errs[3] = getEnvInt("VIGIL_DROWSY_FRAMES", a.DrowsyFrames)
	a.AlertCooldown, errs[4] = getEnvDuration("VIGIL_ALERT_COOLDOWN", a.AlertCooldown)
	a.AlertClearAfter, errs[5] = getEnvDuration("VIGIL_ALERT_CLEAR_AFTER", a.AlertClearAfter)
	c.Monitor.AutoStart, errs[6] = getEnvBool("VIGIL_AUTO_START", c.Monitor.AutoStart)
	c.Overlay.Enabled, errs[7] = getEnvBool("VIGIL_OVERLAY", c.Overlay.Enabled)
	c.Overlay.JPEGQuality, errs[8] = getEnvInt("VIGIL_JPEG_QUALITY", c.Overlay.JPEGQuality)
	c.Camera.Device, errs[9] = getEnvInt("VIGIL_CAMERA_DEVICE", c.Camera.Device)
	c.Sound.Enabled, errs[10] = getEnvBool("VIGIL_SOUND", c.Sound.Enabled)
	c.Voice.Enabled, errs[11] = getEnvBool("VIGIL_VOICE", c.Voice.Enabled)
	return errors.Join(errs[:]...)
}

// AttentionConfig converts the file form to attention.Config.
func (c *Config) AttentionConfig() attention.Config {
	a := attention.DefaultConfig()
	a.EyeClosedThresh = c.Attention.EyeClosedThresh
	a.CenterThreshold = c.Attention.CenterThreshold
	a.DrowsyThresh = c.Attention.DrowsyThresh
	a.DrowsyFrames = c.Attention.DrowsyFrames
	a.AlertCooldown = c.Attention.AlertCooldown
	a.AlertClearAfter = c.Attention.AlertClearAfter
	a.WarnAfter = c.Attention.WarnAfter
	a.AlarmAfter = c.Attention.AlarmAfter
	return a
}

func fromAttention(a attention.Config) AttentionConfig {
	return AttentionConfig{
		EyeClosedThresh: a.EyeClosedThresh,
		CenterThreshold: a.CenterThreshold,
		DrowsyThresh:    a.DrowsyThresh,
		DrowsyFrames:    a.DrowsyFrames,
		AlertCooldown:   a.AlertCooldown,
		AlertClearAfter: a.AlertClearAfter,
		WarnAfter:       a.WarnAfter,
		AlarmAfter:      a.AlarmAfter,
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
