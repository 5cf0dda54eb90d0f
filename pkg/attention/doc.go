// Package attention turns facial landmarks into per-frame attention labels.
//
// The pipeline for one frame is:
//
//	landmark.Set -> Classify -> Tracker.Update -> Debouncer.Request
//
// Classify is stateless. Tracker carries the drowsy-frame streak and the
// distraction counter; Debouncer limits drowsy alerts to one per cooldown.
// Session glues these together with a Clock and an Escalator and is the
// only stateful type callers normally need.
//
// Nothing in this package is safe for concurrent use. Feed a Session from
// a single goroutine (see package monitor).
package attention
