package attention

import "testing"

func frame(status Status, ear float64) FrameResult {
	return FrameResult{Status: status, AvgEAR: ear, Distracted: status != StatusFocused}
}

func TestTracker_PromotesOnTenthFrame(t *testing.T) {
	tr := NewTracker(DefaultConfig())

	for i := 1; i <= 10; i++ {
		r, alert := tr.Update(frame(StatusFocused, 0.20))
		if i < 10 {
			if r.Status == StatusDrowsy || alert {
				t.Fatalf("frame %d: promoted too early", i)
			}
			continue
		}
		if r.Status != StatusDrowsy {
			t.Errorf("frame 10: status = %v, want DROWSY", r.Status)
		}
		if !alert {
			t.Error("frame 10: expected alert request")
		}
	}

	// The streak keeps the status promoted while it lasts.
	r, alert := tr.Update(frame(StatusFocused, 0.20))
	if r.Status != StatusDrowsy || !alert {
		t.Errorf("frame 11: got %v alert=%v, want DROWSY with alert", r.Status, alert)
	}
}

func TestTracker_ResetBreaksStreak(t *testing.T) {
	tr := NewTracker(DefaultConfig())

	for i := 0; i < 9; i++ {
		tr.Update(frame(StatusFocused, 0.20))
	}
	tr.Update(frame(StatusFocused, 0.30))
	if tr.Streak() != 0 {
		t.Fatalf("streak = %d after open frame, want 0", tr.Streak())
	}

	for i := 1; i <= 10; i++ {
		r, alert := tr.Update(frame(StatusFocused, 0.20))
		if i < 10 && (r.Status == StatusDrowsy || alert) {
			t.Fatalf("frame %d of second run promoted early", i)
		}
		if i == 10 && (r.Status != StatusDrowsy || !alert) {
			t.Errorf("frame 10 of second run: got %v alert=%v", r.Status, alert)
		}
	}
}

func TestTracker_ThresholdBoundary(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	tr.Update(frame(StatusFocused, 0.20))
	tr.Update(frame(StatusFocused, DefaultDrowsyThresh))
	if tr.Streak() != 0 {
		t.Errorf("EAR equal to the drowsy threshold should reset, streak = %d", tr.Streak())
	}
}

func TestTracker_NoFaceResetsStreak(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	for i := 0; i < 5; i++ {
		tr.Update(frame(StatusFocused, 0.20))
	}
	r, alert := tr.Update(frame(StatusNoFace, 0))
	if r.Status != StatusNoFace || alert {
		t.Errorf("no-face frame changed to %v alert=%v", r.Status, alert)
	}
	if tr.Streak() != 0 {
		t.Errorf("streak = %d, want 0", tr.Streak())
	}
	if tr.DistractionCount() != 0 {
		t.Errorf("no-face frames should not count as distractions")
	}
}

func TestTracker_DistractionCount(t *testing.T) {
	tr := NewTracker(DefaultConfig())

	tr.Update(frame(StatusDistracted, 0.30))
	tr.Update(frame(StatusDistracted, 0.30))
	tr.Update(frame(StatusEyesClosed, 0.10))
	tr.Update(frame(StatusFocused, 0.30))

	if got := tr.DistractionCount(); got != 3 {
		t.Errorf("count = %d, want 3", got)
	}
}

func TestTracker_DrowsyNotCountedAsDistraction(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	for i := 0; i < 12; i++ {
		tr.Update(frame(StatusEyesClosed, 0.10))
	}
	// Frames 1-9 are EYES_CLOSED, 10-12 are promoted to DROWSY.
	if got := tr.DistractionCount(); got != 9 {
		t.Errorf("count = %d, want 9", got)
	}
}

func TestTracker_DrowsyKeepsGazeVerdict(t *testing.T) {
	tr := NewTracker(DefaultConfig())

	var r FrameResult
	for i := 0; i < 10; i++ {
		r, _ = tr.Update(frame(StatusFocused, 0.20))
	}
	if r.Status != StatusDrowsy {
		t.Fatalf("status = %v, want DROWSY", r.Status)
	}
	if r.Distracted {
		t.Error("promotion should not change the classifier's Distracted flag")
	}
}
