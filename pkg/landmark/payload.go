package landmark

import "time"

// Payload is the wire form of one frame from a landmark pipeline: every
// detected face plus an optional capture timestamp in Unix milliseconds.
type Payload struct {
	Faces       []Set `json:"faces"`
	TimestampMS int64 `json:"timestamp_ms,omitempty"`
}

// First returns the first detected face, or nil when there is none.
// Additional faces are ignored.
func (p Payload) First() Set {
	if len(p.Faces) == 0 {
		return nil
	}
	if p.Faces[0] == nil {
		return Set{}
	}
	return p.Faces[0]
}

// Time returns the capture time, zero when not supplied.
func (p Payload) Time() time.Time {
	if p.TimestampMS <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(p.TimestampMS)
}
