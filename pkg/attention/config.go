package attention

import (
	"fmt"
	"time"

	"github.com/teslashibe/go-vigil/pkg/landmark"
)

// Default thresholds.
//
// DefaultDrowsyThresh is deliberately looser than DefaultEyeClosedThresh:
// the drowsy streak counts frames with half-lowered lids that a single-frame
// classification would still call open. Ten such frames in a row promote to
// DROWSY even when no individual frame is EYES_CLOSED.
const (
	DefaultEyeClosedThresh = 0.18
	DefaultDrowsyThresh    = 0.25
	DefaultDrowsyFrames    = 10
	DefaultCenterThreshold = 0.25

	DefaultAlertCooldown   = 3000 * time.Millisecond
	DefaultAlertClearAfter = 2000 * time.Millisecond

	DefaultWarnAfter  = 5 * time.Second
	DefaultAlarmAfter = 10 * time.Second
)

// Config holds all tunable parameters for attention classification
type Config struct {
	// Landmark model supplying the eye and iris index sets
	Model landmark.Model

	// Classification
	EyeClosedThresh float64 // avg EAR below this is EYES_CLOSED
	CenterThreshold float64 // iris tolerance as a fraction of the eye box half-size

	// Temporal
	DrowsyThresh float64 // avg EAR below this extends the drowsy streak
	DrowsyFrames int     // streak length that promotes to DROWSY

	// Alerting
	AlertCooldown   time.Duration // minimum gap between drowsy alerts
	AlertClearAfter time.Duration // how long the visual alert stays up

	// Escalation for continuous distraction
	WarnAfter  time.Duration
	AlarmAfter time.Duration
}

// DefaultConfig returns the recommended configuration
func DefaultConfig() Config {
	return Config{
		Model: landmark.FaceMeshV1,

		EyeClosedThresh: DefaultEyeClosedThresh,
		CenterThreshold: DefaultCenterThreshold,

		DrowsyThresh: DefaultDrowsyThresh,
		DrowsyFrames: DefaultDrowsyFrames,

		AlertCooldown:   DefaultAlertCooldown,
		AlertClearAfter: DefaultAlertClearAfter,

		WarnAfter:  DefaultWarnAfter,
		AlarmAfter: DefaultAlarmAfter,
	}
}

// LenientConfig tolerates more gaze wander and needs a longer streak
// before calling a user drowsy.
func LenientConfig() Config {
	cfg := DefaultConfig()
	cfg.CenterThreshold = 0.35
	cfg.DrowsyFrames = 15
	cfg.WarnAfter = 8 * time.Second
	cfg.AlarmAfter = 15 * time.Second
	return cfg
}

// StrictConfig reacts faster, for short monitored tasks.
func StrictConfig() Config {
	cfg := DefaultConfig()
	cfg.CenterThreshold = 0.20
	cfg.DrowsyFrames = 6
	cfg.WarnAfter = 3 * time.Second
	cfg.AlarmAfter = 6 * time.Second
	return cfg
}

// Validate reports the first nonsensical setting.
func (c Config) Validate() error {
	switch {
	case c.Model.MinIndex() < 0:
		return fmt.Errorf("%w: model %q references negative index %d",
			ErrInvalidConfig, c.Model.Name, c.Model.MinIndex())
	case c.Model.Points <= c.Model.MaxIndex():
		return fmt.Errorf("%w: model %q has %d points but references index %d",
			ErrInvalidConfig, c.Model.Name, c.Model.Points, c.Model.MaxIndex())
	case c.EyeClosedThresh <= 0:
		return fmt.Errorf("%w: eye closed threshold must be positive", ErrInvalidConfig)
	case c.DrowsyThresh <= 0:
		return fmt.Errorf("%w: drowsy threshold must be positive", ErrInvalidConfig)
	case c.DrowsyFrames < 1:
		return fmt.Errorf("%w: drowsy frames must be at least 1", ErrInvalidConfig)
	case c.CenterThreshold <= 0 || c.CenterThreshold > 1:
		return fmt.Errorf("%w: center threshold must be in (0, 1]", ErrInvalidConfig)
	case c.AlertCooldown < 0 || c.AlertClearAfter < 0:
		return fmt.Errorf("%w: alert durations must not be negative", ErrInvalidConfig)
	case c.AlertClearAfter > c.AlertCooldown:
		return fmt.Errorf("%w: alert clear (%v) must not outlast the cooldown (%v)",
			ErrInvalidConfig, c.AlertClearAfter, c.AlertCooldown)
	case c.WarnAfter <= 0 || c.AlarmAfter < c.WarnAfter:
		return fmt.Errorf("%w: escalation needs 0 < warn <= alarm", ErrInvalidConfig)
	}
	return nil
}
