package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/teslashibe/go-vigil/pkg/attention"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		data string
		want any
	}{
		{"tick", `{"type":"tick","payload":{"running":true,"elapsed_seconds":4}}`, SnapshotMsg{}},
		{"frame", `{"type":"frame","payload":{"status":"DROWSY","avg_ear":0.2}}`, ReportMsg{}},
		{"stop", `{"type":"session_stop","payload":{"frames_processed":3}}`, SummaryMsg{}},
		{"alert", `{"type":"drowsy_alert","payload":{"seq":1}}`, AlertMsg{}},
		{"clear", `{"type":"alert_clear"}`, AlertClearMsg{}},
		{"alarm", `{"type":"distraction_alarm","payload":{}}`, EscalationMsg{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decode([]byte(tt.data))
			if got == nil {
				t.Fatal("got nil message")
			}
			if gotType, wantType := typeName(got), typeName(tt.want); gotType != wantType {
				t.Errorf("got %s, want %s", gotType, wantType)
			}
		})
	}

	if msg := decode([]byte(`{"type":"log"}`)); msg != nil {
		t.Errorf("unhandled type: got %T, want nil", msg)
	}
	if msg := decode([]byte(`not json`)); msg != nil {
		t.Errorf("bad json: got %T, want nil", msg)
	}

	r := decode([]byte(`{"type":"frame","payload":{"status":"DROWSY","avg_ear":0.2}}`)).(ReportMsg)
	if r.Report.Status != attention.StatusDrowsy {
		t.Errorf("status: got %v, want DROWSY", r.Report.Status)
	}
}

func typeName(v any) string {
	switch v.(type) {
	case SnapshotMsg:
		return "snapshot"
	case ReportMsg:
		return "report"
	case SummaryMsg:
		return "summary"
	case AlertMsg:
		return "alert"
	case AlertClearMsg:
		return "clear"
	case EscalationMsg:
		return "escalation"
	}
	return "unknown"
}

func TestModelAlertLifecycle(t *testing.T) {
	m := New(nil, nil, nil)
	m = update(t, m, ConnectedMsg{Feed: FeedStatus})
	m = update(t, m, SnapshotMsg{Snapshot: attention.Snapshot{Running: true, ElapsedSeconds: 65, DistractionCount: 2}})
	m = update(t, m, ReportMsg{Report: attention.Report{
		Classification: attention.Classification{
			FrameResult: attention.FrameResult{Status: attention.StatusDrowsy, AvgEAR: 0.21},
		},
	}})
	m = update(t, m, AlertMsg{Intent: attention.AlertIntent{Seq: 1}})

	v := m.View()
	for _, want := range []string{"RUNNING", "DROWSY", "01:05", "DROWSINESS ALERT"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = update(t, m, AlertClearMsg{})
	if strings.Contains(m.View(), "DROWSINESS ALERT") {
		t.Error("alert banner still shown after clear")
	}

	m = update(t, m, SummaryMsg{Summary: attention.Summary{Duration: 90 * time.Second, FramesProcessed: 7}})
	v = m.View()
	if !strings.Contains(v, "STOPPED") || !strings.Contains(v, "Last session") {
		t.Errorf("summary not shown:\n%s", v)
	}
}

func TestModelEscalationResetsOnFocus(t *testing.T) {
	m := New(nil, nil, nil)
	m = update(t, m, EscalationMsg{Level: attention.EscalationAlarm})
	if !strings.Contains(m.View(), "Focus now") {
		t.Fatal("alarm banner missing")
	}
	m = update(t, m, ReportMsg{Report: attention.Report{
		Classification: attention.Classification{
			FrameResult: attention.FrameResult{Status: attention.StatusFocused},
		},
	}})
	if strings.Contains(m.View(), "Focus now") {
		t.Error("alarm banner still shown after a focused frame")
	}
}

func TestDisconnectedHint(t *testing.T) {
	m := New(nil, nil, nil)
	if !strings.Contains(m.View(), "Reconnecting") {
		t.Error("view should show the reconnect hint")
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		sec  int
		want string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{61, "01:01"},
		{3725, "1:02:05"},
		{-3, "00:00"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.sec); got != tt.want {
			t.Errorf("formatElapsed(%d) = %q, want %q", tt.sec, got, tt.want)
		}
	}
}
