package attention

import (
	"fmt"

	"github.com/teslashibe/go-vigil/pkg/landmark"
)

// Status is the attention label for one frame.
type Status int

const (
	StatusNoFace Status = iota
	StatusEyesClosed
	StatusDrowsy
	StatusFocused
	StatusDistracted
)

var statusNames = map[Status]string{
	StatusNoFace:     "NO FACE",
	StatusEyesClosed: "EYES CLOSED",
	StatusDrowsy:     "DROWSY",
	StatusFocused:    "FOCUSED",
	StatusDistracted: "DISTRACTED",
}

// String returns the display label.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText encodes the status as its display label.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a display label.
func (s *Status) UnmarshalText(b []byte) error {
	for k, v := range statusNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("attention: unknown status %q", b)
}

// FrameResult is the outcome for one processed frame.
//
// Distracted is the classifier's gaze verdict. A frame promoted to DROWSY
// keeps it, so a drowsy user looking at the screen reports DROWSY with
// Distracted false. Treat StatusDrowsy as inattentive regardless.
type FrameResult struct {
	Status     Status  `json:"status"`
	AvgEAR     float64 `json:"avg_ear"`
	Distracted bool    `json:"distracted"`
}

// Classification is a FrameResult plus the per-eye geometry renderers draw.
type Classification struct {
	FrameResult
	Face  bool       `json:"face"`
	Left  EyeMetrics `json:"left"`
	Right EyeMetrics `json:"right"`
}

// Classify labels a single frame. A nil set means no face was detected.
// A non-nil set that lacks the model's indices is rejected with
// landmark.ErrInvalidInput.
func Classify(s landmark.Set, cfg Config) (Classification, error) {
	if s == nil {
		return Classification{
			FrameResult: FrameResult{Status: StatusNoFace, AvgEAR: 0, Distracted: true},
		}, nil
	}
	if err := cfg.Model.Validate(s); err != nil {
		return Classification{}, err
	}

	c := Classification{
		Face:  true,
		Left:  MeasureEye(s, cfg.Model.LeftEye, cfg.Model.LeftIris, cfg),
		Right: MeasureEye(s, cfg.Model.RightEye, cfg.Model.RightIris, cfg),
	}
	c.AvgEAR = (c.Left.EAR + c.Right.EAR) / 2

	switch {
	case c.AvgEAR < cfg.EyeClosedThresh:
		c.Status, c.Distracted = StatusEyesClosed, true
	case c.Left.Centered && c.Right.Centered:
		c.Status, c.Distracted = StatusFocused, false
	default:
		c.Status, c.Distracted = StatusDistracted, true
	}
	return c, nil
}
