package web

import (
	"fmt"
	"time"

	"github.com/teslashibe/go-vigil/pkg/attention"
)

// Event types sent over the websocket feeds.
const (
	EventSnapshot   = "snapshot"
	EventFrame      = "frame"
	EventTick       = "tick"
	EventStart      = "session_start"
	EventStop       = "session_stop"
	EventAlert      = "drowsy_alert"
	EventAlertClear = "alert_clear"
	EventWarning    = "distraction_warning"
	EventAlarm      = "distraction_alarm"
	EventReport     = "report"
	EventError      = "error"
)

func (s *Server) OnStart(snap attention.Snapshot) {
	s.statusHub.BroadcastEvent(EventStart, snap)
	s.AddLog("session", "Session started: "+snap.ID)
}

func (s *Server) OnFrame(r attention.Report) {
	s.statusHub.BroadcastEvent(EventFrame, r)

	switch r.Escalation {
	case attention.EscalationWarning:
		s.alertHub.BroadcastEvent(EventWarning, r.FrameResult)
		s.AddLog("warning", "Distracted for too long: pay attention")
	case attention.EscalationAlarm:
		s.alertHub.BroadcastEvent(EventAlarm, r.FrameResult)
		s.AddLog("alarm", "Still distracted: focus now")
	}
}

func (s *Server) OnAlert(intent attention.AlertIntent) {
	s.alertHub.BroadcastEvent(EventAlert, intent)
	s.AddLog("alert", fmt.Sprintf("Drowsiness detected (alert #%d)", intent.Seq))
}

func (s *Server) OnAlertClear(intent attention.AlertIntent) {
	s.alertHub.BroadcastEvent(EventAlertClear, intent)
}

func (s *Server) OnTick(snap attention.Snapshot) {
	s.statusHub.BroadcastEvent(EventTick, snap)
}

func (s *Server) OnStop(sum attention.Summary) {
	s.statusHub.BroadcastEvent(EventStop, sum)
	s.alertHub.BroadcastEvent(EventAlertClear, nil)
	s.AddLog("session", fmt.Sprintf("Session stopped: %d distractions, %d drowsy alerts in %s",
		sum.DistractionCount, sum.DrowsyAlertCount, sum.Duration.Round(time.Second)))
}
