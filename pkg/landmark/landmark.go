// Package landmark describes the facial landmark sets consumed by the
// attention classifier.
//
// Indices follow MediaPipe Face Mesh v1 with refine_landmarks enabled
// (468 mesh points + 10 iris points = 478). Any other model must supply a
// matching Model value.
package landmark

import (
	"fmt"
	"math"
)

// Point is a normalized 2D image coordinate in [0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Set is one detected face in one frame, indexed positionally.
type Set []Point

// EyeIndices are six eye-contour indices ordered
// [outer corner, upper lid, upper lid, inner corner, lower lid, lower lid].
// Pairs (1,5) and (2,4) are vertically opposite; (0,3) spans the corners.
type EyeIndices [6]int

// IrisIndices are the four iris ring indices.
type IrisIndices [4]int

// Model names the index sets of a landmark model.
type Model struct {
	Name      string
	Points    int // points the model emits per face
	LeftEye   EyeIndices
	RightEye  EyeIndices
	LeftIris  IrisIndices
	RightIris IrisIndices
}

// Face Mesh v1 (refined) index sets.
var (
	LeftEye   = EyeIndices{33, 160, 158, 133, 153, 144}
	RightEye  = EyeIndices{362, 385, 387, 263, 373, 380}
	LeftIris  = IrisIndices{468, 469, 470, 471}
	RightIris = IrisIndices{473, 474, 475, 476}
)

// FaceMeshV1 is the default model.
var FaceMeshV1 = Model{
	Name:      "mediapipe-face-mesh-v1-refined",
	Points:    478,
	LeftEye:   LeftEye,
	RightEye:  RightEye,
	LeftIris:  LeftIris,
	RightIris: RightIris,
}

// MaxIndex returns the highest index any of the model's sets reference.
func (m Model) MaxIndex() int {
	max := -1
	for _, idx := range m.indices() {
		if idx > max {
			max = idx
		}
	}
	return max
}

// MinIndex returns the lowest index any of the model's sets reference.
func (m Model) MinIndex() int {
	idx := m.indices()
	min := idx[0]
	for _, i := range idx[1:] {
		if i < min {
			min = i
		}
	}
	return min
}

func (m Model) indices() []int {
	out := make([]int, 0, 20)
	out = append(out, m.LeftEye[:]...)
	out = append(out, m.RightEye[:]...)
	out = append(out, m.LeftIris[:]...)
	out = append(out, m.RightIris[:]...)
	return out
}

// Validate checks that s carries every index the model needs and that
// those points are finite. Extra points are ignored.
func (m Model) Validate(s Set) error {
	if len(s) == 0 {
		return &InputError{Reason: "empty landmark set"}
	}
	if need := m.MaxIndex() + 1; len(s) < need {
		return &InputError{Reason: fmt.Sprintf("got %d points, need at least %d", len(s), need)}
	}
	for _, idx := range m.indices() {
		if idx < 0 {
			return &InputError{Index: idx, Reason: "model references a negative index"}
		}
		p := s[idx]
		if !finite(p.X) || !finite(p.Y) {
			return &InputError{Index: idx, Reason: "non-finite coordinate"}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
