package attention

import "errors"

var (
	// ErrNotRunning is returned when a frame arrives outside a session.
	ErrNotRunning = errors.New("attention: session not running")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("attention: invalid config")
)
