// Package debug provides global debug logging flags
package debug

import (
	"fmt"

	"github.com/teslashibe/go-vigil/internal/log"
)

// Enabled controls whether debug logging is active
var Enabled bool

// Frames controls whether per-frame classification logs are shown.
// Use --debug-frames to enable these very verbose logs
var Frames bool

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		log.Debug(fmt.Sprintf(format, args...))
	}
}

// FrameLog logs structured per-frame attributes only if frame debugging is enabled
func FrameLog(msg string, args ...any) {
	if Frames {
		log.Info(msg, args...)
	}
}
