package attention

import (
	"math"

	"github.com/teslashibe/go-vigil/pkg/landmark"
)

// earEpsilon keeps EAR finite when both eye corners coincide.
const earEpsilon = 1e-6

// Box is an axis-aligned bounding box in normalized coordinates.
type Box struct {
	Min landmark.Point `json:"min"`
	Max landmark.Point `json:"max"`
}

// Center returns the geometric center of the box.
func (b Box) Center() landmark.Point {
	return landmark.Pt((b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2)
}

// HalfSize returns half the width and half the height.
func (b Box) HalfSize() (hw, hh float64) {
	return (b.Max.X - b.Min.X) / 2, (b.Max.Y - b.Min.Y) / 2
}

// EyeMetrics is the per-eye geometry for one frame.
type EyeMetrics struct {
	EAR        float64        `json:"ear"`
	IrisCenter landmark.Point `json:"iris_center"`
	Box        Box            `json:"box"`
	Closed     bool           `json:"closed"`
	Centered   bool           `json:"centered"`
}

// CalculateEAR returns the eye aspect ratio: the mean of the two vertical
// lid distances over the corner-to-corner distance. Lower means more closed.
func CalculateEAR(s landmark.Set, eye landmark.EyeIndices) float64 {
	a := landmark.Dist(s[eye[1]], s[eye[5]])
	b := landmark.Dist(s[eye[2]], s[eye[4]])
	c := landmark.Dist(s[eye[0]], s[eye[3]])
	return ((a + b) / 2) / (c + earEpsilon)
}

// IrisCenter returns the centroid of the iris ring.
func IrisCenter(s landmark.Set, iris landmark.IrisIndices) landmark.Point {
	var x, y float64
	for _, idx := range iris {
		x += s[idx].X
		y += s[idx].Y
	}
	n := float64(len(iris))
	return landmark.Pt(x/n, y/n)
}

// EyeBox returns the bounding box of the eye contour.
func EyeBox(s landmark.Set, eye landmark.EyeIndices) Box {
	b := Box{
		Min: landmark.Pt(math.Inf(1), math.Inf(1)),
		Max: landmark.Pt(math.Inf(-1), math.Inf(-1)),
	}
	for _, idx := range eye {
		p := s[idx]
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
	}
	return b
}

// IsCentered reports whether iris lies within threshold of the box's
// half-width and half-height from its center, on each axis independently.
// The tolerance region is a rectangle.
func IsCentered(iris landmark.Point, box Box, threshold float64) bool {
	c := box.Center()
	hw, hh := box.HalfSize()
	return math.Abs(iris.X-c.X) <= threshold*hw &&
		math.Abs(iris.Y-c.Y) <= threshold*hh
}

// MeasureEye computes all metrics for one eye.
func MeasureEye(s landmark.Set, eye landmark.EyeIndices, iris landmark.IrisIndices, cfg Config) EyeMetrics {
	m := EyeMetrics{
		EAR:        CalculateEAR(s, eye),
		IrisCenter: IrisCenter(s, iris),
		Box:        EyeBox(s, eye),
	}
	m.Closed = m.EAR < cfg.EyeClosedThresh
	m.Centered = IsCentered(m.IrisCenter, m.Box, cfg.CenterThreshold)
	return m
}
