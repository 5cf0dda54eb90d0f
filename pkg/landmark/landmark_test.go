package landmark

import (
	"errors"
	"math"
	"testing"
)

func fullSet(n int) Set {
	s := make(Set, n)
	for i := range s {
		s[i] = Pt(0.5, 0.5)
	}
	return s
}

func TestFaceMeshV1_MaxIndex(t *testing.T) {
	if got := FaceMeshV1.MaxIndex(); got != 476 {
		t.Errorf("MaxIndex = %d, want 476", got)
	}
	if FaceMeshV1.MaxIndex() >= FaceMeshV1.Points {
		t.Errorf("index %d outside model size %d", FaceMeshV1.MaxIndex(), FaceMeshV1.Points)
	}
}

func TestFaceMeshV1_MinIndex(t *testing.T) {
	if got := FaceMeshV1.MinIndex(); got != 33 {
		t.Errorf("MinIndex = %d, want 33", got)
	}
}

func TestValidate_NegativeModelIndex(t *testing.T) {
	m := FaceMeshV1
	m.RightIris[0] = -1
	if got := m.MinIndex(); got != -1 {
		t.Errorf("MinIndex = %d, want -1", got)
	}
	if err := m.Validate(fullSet(478)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestValidate(t *testing.T) {
	nan := fullSet(478)
	nan[LeftIris[2]] = Pt(math.NaN(), 0.5)

	inf := fullSet(478)
	inf[RightEye[0]] = Pt(0.5, math.Inf(1))

	// Non-finite values outside the required sets are ignored.
	ignored := fullSet(478)
	ignored[0] = Pt(math.NaN(), math.NaN())

	tests := []struct {
		name    string
		set     Set
		wantErr bool
	}{
		{"nil set", nil, true},
		{"empty set", Set{}, true},
		{"too short", fullSet(470), true},
		{"exactly enough", fullSet(477), false},
		{"full model", fullSet(478), false},
		{"extra points", fullSet(500), false},
		{"nan iris", nan, true},
		{"inf eye", inf, true},
		{"nan outside required", ignored, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := FaceMeshV1.Validate(tc.set)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("error %v should match ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDist(t *testing.T) {
	if d := Dist(Pt(0, 0), Pt(3, 4)); d != 5 {
		t.Errorf("Dist = %v, want 5", d)
	}
}
