package replay

import (
	"time"

	"github.com/teslashibe/go-vigil/pkg/landmark"
)

// Scene is one stretch of a synthetic recording.
type Scene struct {
	Duration time.Duration
	EAR      float64 // eye aspect ratio for both eyes
	Gaze     float64 // horizontal iris offset as a fraction of the eye half-width
	NoFace   bool
}

// Demo is a short recording that passes through every status: focused,
// looking away, a drowsy stretch long enough to alert, closed eyes and
// leaving the frame.
var Demo = []Scene{
	{Duration: 3 * time.Second, EAR: 0.32},
	{Duration: 7 * time.Second, EAR: 0.32, Gaze: 0.8},
	{Duration: 2 * time.Second, EAR: 0.32},
	{Duration: 2 * time.Second, EAR: 0.22},
	{Duration: time.Second, EAR: 0.1},
	{Duration: time.Second, NoFace: true},
	{Duration: 2 * time.Second, EAR: 0.32},
}

const synthEyeWidth = 0.1

// Face builds a full landmark set for model m with both eyes at the given
// EAR and both irises shifted by gaze.
func Face(m landmark.Model, ear, gaze float64) landmark.Set {
	s := make(landmark.Set, m.Points)
	for i := range s {
		s[i] = landmark.Pt(0.5, 0.55)
	}
	placeEye(s, m.LeftEye, m.LeftIris, 0.38, 0.42, ear, gaze)
	placeEye(s, m.RightEye, m.RightIris, 0.62, 0.42, ear, gaze)
	return s
}

func placeEye(s landmark.Set, eye landmark.EyeIndices, iris landmark.IrisIndices, cx, cy, ear, gaze float64) {
	w := synthEyeWidth
	h := ear * (w + 1e-6)

	s[eye[0]] = landmark.Pt(cx-w/2, cy)
	s[eye[3]] = landmark.Pt(cx+w/2, cy)
	s[eye[1]] = landmark.Pt(cx-w/6, cy-h/2)
	s[eye[5]] = landmark.Pt(cx-w/6, cy+h/2)
	s[eye[2]] = landmark.Pt(cx+w/6, cy-h/2)
	s[eye[4]] = landmark.Pt(cx+w/6, cy+h/2)

	ix := cx + gaze*w/2
	const r = 0.012
	s[iris[0]] = landmark.Pt(ix+r, cy)
	s[iris[1]] = landmark.Pt(ix, cy-r)
	s[iris[2]] = landmark.Pt(ix-r, cy)
	s[iris[3]] = landmark.Pt(ix, cy+r)
}

// Generate renders scenes at fps frames per second starting at start.
func Generate(m landmark.Model, scenes []Scene, fps int, start time.Time) []landmark.Payload {
	if fps <= 0 {
		fps = 30
	}
	step := time.Second / time.Duration(fps)

	var out []landmark.Payload
	at := start
	for _, sc := range scenes {
		n := int(sc.Duration / step)
		for i := 0; i < n; i++ {
			p := landmark.Payload{TimestampMS: at.UnixMilli()}
			if !sc.NoFace {
				p.Faces = []landmark.Set{Face(m, sc.EAR, sc.Gaze)}
			}
			out = append(out, p)
			at = at.Add(step)
		}
	}
	return out
}
