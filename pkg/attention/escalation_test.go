package attention

import (
	"encoding/json"
	"testing"
	"time"
)

// feed sends distracted frames every 500ms from t0 up to and including end.
func feed(e *Escalator, end time.Duration) []Escalation {
	var got []Escalation
	for d := time.Duration(0); d <= end; d += 500 * time.Millisecond {
		if lvl := e.Update(t0.Add(d), true); lvl != EscalationNone {
			got = append(got, lvl)
		}
	}
	return got
}

func TestEscalator_WarningThenAlarm(t *testing.T) {
	e := NewEscalator(DefaultConfig())

	got := feed(e, 12*time.Second)
	if len(got) != 2 || got[0] != EscalationWarning || got[1] != EscalationAlarm {
		t.Fatalf("got %v, want [warning alarm]", got)
	}
	w, a := e.Counts()
	if w != 1 || a != 1 {
		t.Errorf("counts = %d/%d, want 1/1", w, a)
	}
}

func TestEscalator_ThresholdsAreStrict(t *testing.T) {
	e := NewEscalator(DefaultConfig())
	e.Update(t0, true)
	if lvl := e.Update(t0.Add(5*time.Second), true); lvl != EscalationNone {
		t.Errorf("exactly 5s should not warn, got %v", lvl)
	}
	if lvl := e.Update(t0.Add(5*time.Second+time.Millisecond), true); lvl != EscalationWarning {
		t.Errorf("past 5s should warn, got %v", lvl)
	}
}

func TestEscalator_FocusedFrameRearms(t *testing.T) {
	e := NewEscalator(DefaultConfig())
	feed(e, 6*time.Second)

	e.Update(t0.Add(6500*time.Millisecond), false)
	if e.RunDuration(t0.Add(7*time.Second)) != 0 {
		t.Error("run should have ended")
	}

	start := t0.Add(7 * time.Second)
	e.Update(start, true)
	if lvl := e.Update(start.Add(6*time.Second), true); lvl != EscalationWarning {
		t.Errorf("second run should warn again, got %v", lvl)
	}
	if w, _ := e.Counts(); w != 2 {
		t.Errorf("warnings = %d, want 2", w)
	}
}

func TestEscalator_GapCrossesBoth(t *testing.T) {
	e := NewEscalator(DefaultConfig())
	e.Update(t0, true)
	if lvl := e.Update(t0.Add(11*time.Second), true); lvl != EscalationAlarm {
		t.Errorf("got %v, want alarm", lvl)
	}
	if w, a := e.Counts(); w != 1 || a != 1 {
		t.Errorf("counts = %d/%d, want 1/1", w, a)
	}
}

func TestEscalation_JSON(t *testing.T) {
	for _, lvl := range []Escalation{EscalationNone, EscalationWarning, EscalationAlarm} {
		b, err := json.Marshal(lvl)
		if err != nil {
			t.Fatalf("Marshal(%v): %v", lvl, err)
		}
		var got Escalation
		if err := json.Unmarshal(b, &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", b, err)
		}
		if got != lvl {
			t.Errorf("round trip %s: got %v, want %v", b, got, lvl)
		}
	}

	var e Escalation
	if err := json.Unmarshal([]byte(`"panic"`), &e); err == nil {
		t.Error("expected error for unknown level")
	}
}
