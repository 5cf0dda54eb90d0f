package attention

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/teslashibe/go-vigil/pkg/landmark"
)

func TestClassify(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name           string
		set            landmark.Set
		wantStatus     Status
		wantDistracted bool
	}{
		{"open and centered", face(0.30, 0), StatusFocused, false},
		{"open, slight wander", face(0.30, 0.2), StatusFocused, false},
		{"open, looking away", face(0.30, 0.8), StatusDistracted, true},
		{"closed, centered", face(0.10, 0), StatusEyesClosed, true},
		{"closed, looking away", face(0.10, 0.9), StatusEyesClosed, true},
		// Between the two thresholds: not closed for a single frame.
		{"drooping, centered", face(0.20, 0), StatusFocused, false},
		{"no face", nil, StatusNoFace, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Classify(tc.set, cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Status != tc.wantStatus {
				t.Errorf("status = %v, want %v", c.Status, tc.wantStatus)
			}
			if c.Distracted != tc.wantDistracted {
				t.Errorf("distracted = %v, want %v", c.Distracted, tc.wantDistracted)
			}
		})
	}
}

func TestClassify_NoFaceZeroEAR(t *testing.T) {
	c, err := Classify(nil, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if c.AvgEAR != 0 || c.Face {
		t.Errorf("no-face result should have zero EAR and Face=false, got %+v", c)
	}
}

func TestClassify_AverageEAR(t *testing.T) {
	s := face(0.30, 0)
	placeEye(s, landmark.RightEye, landmark.RightIris, 0.65, 0.4, 0.10, 0)

	c, err := Classify(s, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if c.AvgEAR < 0.1999 || c.AvgEAR > 0.2001 {
		t.Errorf("avg EAR = %v, want 0.20", c.AvgEAR)
	}
	if !c.Right.Closed || c.Left.Closed {
		t.Errorf("per-eye closed flags wrong: left=%v right=%v", c.Left.Closed, c.Right.Closed)
	}
	// Average is above the closed threshold, so the frame is not EYES_CLOSED.
	if c.Status != StatusFocused {
		t.Errorf("status = %v, want FOCUSED", c.Status)
	}
}

func TestClassify_OneEyeOffCenter(t *testing.T) {
	s := face(0.30, 0)
	placeEye(s, landmark.LeftEye, landmark.LeftIris, 0.35, 0.4, 0.30, 0.9)

	c, err := Classify(s, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if c.Status != StatusDistracted {
		t.Errorf("status = %v, want DISTRACTED when only one iris is centered", c.Status)
	}
}

func TestClassify_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		set  landmark.Set
	}{
		{"empty", landmark.Set{}},
		{"truncated", face(0.3, 0)[:400]},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Classify(tc.set, DefaultConfig())
			if !errors.Is(err, landmark.ErrInvalidInput) {
				t.Errorf("got %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestStatus_JSON(t *testing.T) {
	b, err := json.Marshal(FrameResult{Status: StatusEyesClosed, AvgEAR: 0.1, Distracted: true})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"status":"EYES CLOSED","avg_ear":0.1,"distracted":true}`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}

	var r FrameResult
	if err := json.Unmarshal(b, &r); err != nil {
		t.Fatal(err)
	}
	if r.Status != StatusEyesClosed {
		t.Errorf("decoded status = %v", r.Status)
	}

	if err := json.Unmarshal([]byte(`{"status":"SLEEPY"}`), &r); err == nil {
		t.Error("expected error for unknown status")
	}
}
