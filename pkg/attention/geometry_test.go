package attention

import (
	"math"
	"testing"

	"github.com/teslashibe/go-vigil/pkg/landmark"
)

func TestCalculateEAR(t *testing.T) {
	tests := []struct {
		name string
		ear  float64
	}{
		{"wide open", 0.35},
		{"half closed", 0.20},
		{"closed", 0.05},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := face(tc.ear, 0)
			got := CalculateEAR(s, landmark.LeftEye)
			if math.Abs(got-tc.ear) > 1e-9 {
				t.Errorf("got %v, want %v", got, tc.ear)
			}
		})
	}
}

func TestCalculateEAR_DegenerateEye(t *testing.T) {
	s := make(landmark.Set, landmark.FaceMeshV1.Points)
	// Every point identical: corner distance is zero.
	got := CalculateEAR(s, landmark.LeftEye)
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("EAR should stay finite, got %v", got)
	}
	if got != 0 {
		t.Errorf("got %v, want 0", got)
	}
}

func TestIrisCenter(t *testing.T) {
	s := face(0.3, 0.5)
	got := IrisCenter(s, landmark.LeftIris)
	want := landmark.Pt(0.35+0.5*eyeWidth/2, 0.4)
	if math.Abs(got.X-want.X) > 1e-12 || math.Abs(got.Y-want.Y) > 1e-12 {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestEyeBox(t *testing.T) {
	s := face(0.3, 0)
	b := EyeBox(s, landmark.RightEye)

	h := 0.3 * (eyeWidth + earEpsilon)
	if math.Abs(b.Min.X-0.60) > 1e-12 || math.Abs(b.Max.X-0.70) > 1e-12 {
		t.Errorf("x range = [%v, %v], want [0.60, 0.70]", b.Min.X, b.Max.X)
	}
	if math.Abs((b.Max.Y-b.Min.Y)-h) > 1e-12 {
		t.Errorf("height = %v, want %v", b.Max.Y-b.Min.Y, h)
	}
	c := b.Center()
	if math.Abs(c.X-0.65) > 1e-12 || math.Abs(c.Y-0.4) > 1e-12 {
		t.Errorf("center = %+v, want (0.65, 0.4)", c)
	}
}

func TestGeometry_Idempotent(t *testing.T) {
	s := face(0.27, 0.1)

	if a, b := CalculateEAR(s, landmark.LeftEye), CalculateEAR(s, landmark.LeftEye); a != b {
		t.Errorf("CalculateEAR not repeatable: %v vs %v", a, b)
	}
	if a, b := IrisCenter(s, landmark.RightIris), IrisCenter(s, landmark.RightIris); a != b {
		t.Errorf("IrisCenter not repeatable: %v vs %v", a, b)
	}
	if a, b := EyeBox(s, landmark.LeftEye), EyeBox(s, landmark.LeftEye); a != b {
		t.Errorf("EyeBox not repeatable: %v vs %v", a, b)
	}
}

func TestIsCentered(t *testing.T) {
	box := Box{Min: landmark.Pt(0.2, 0.3), Max: landmark.Pt(0.4, 0.5)}

	tests := []struct {
		name      string
		iris      landmark.Point
		threshold float64
		want      bool
	}{
		{"exact center", landmark.Pt(0.3, 0.4), 0.25, true},
		{"inside tolerance", landmark.Pt(0.32, 0.42), 0.25, true},
		{"x outside", landmark.Pt(0.33, 0.4), 0.25, false},
		{"y outside", landmark.Pt(0.3, 0.36), 0.25, false},
		{"corner", landmark.Pt(0.2, 0.3), 0.25, false},
		{"far corner", landmark.Pt(0.4, 0.5), 0.25, false},
		// Rectangular region: a point near both limits is still inside,
		// where an elliptical test would reject it.
		{"rectangle corner", landmark.Pt(0.324, 0.424), 0.25, true},
		{"corner with full threshold", landmark.Pt(0.4, 0.5), 1.0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsCentered(tc.iris, box, tc.threshold); got != tc.want {
				t.Errorf("IsCentered(%+v) = %v, want %v", tc.iris, got, tc.want)
			}
		})
	}
}

func TestIsCentered_CenterForAnyBoxSize(t *testing.T) {
	for _, size := range []float64{1e-6, 0.01, 0.2, 1} {
		box := Box{Min: landmark.Pt(0, 0), Max: landmark.Pt(size, size/2)}
		if !IsCentered(box.Center(), box, 0.25) {
			t.Errorf("center not centered for box size %v", size)
		}
	}
}
