package web

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-vigil/internal/log"
	"github.com/teslashibe/go-vigil/pkg/attention"
	"github.com/teslashibe/go-vigil/pkg/hub"
	"github.com/teslashibe/go-vigil/pkg/landmark"
	"github.com/teslashibe/go-vigil/pkg/monitor"
)

// errNoMonitor is returned when SetMonitor was never called
var errNoMonitor = errors.New("monitor not configured")

// statusFor maps monitor errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, landmark.ErrInvalidInput):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, attention.ErrNotRunning):
		return fiber.StatusConflict
	case errors.Is(err, monitor.ErrClosed), errors.Is(err, errNoMonitor):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (s *Server) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.cfg.RequestTimeout)
}

// handleSession returns the current session counters
func (s *Server) handleSession(c *fiber.Ctx) error {
	if s.monitor == nil {
		return errorJSON(c, errNoMonitor)
	}
	return c.JSON(s.monitor.Snapshot())
}

// handleStart begins a new session
func (s *Server) handleStart(c *fiber.Ctx) error {
	if s.monitor == nil {
		return errorJSON(c, errNoMonitor)
	}
	ctx, cancel := s.ctx()
	defer cancel()

	id, err := s.monitor.Start(ctx)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{
		"id":      id,
		"running": true,
	})
}

// handleStop ends the session and returns its summary
func (s *Server) handleStop(c *fiber.Ctx) error {
	if s.monitor == nil {
		return errorJSON(c, errNoMonitor)
	}
	ctx, cancel := s.ctx()
	defer cancel()

	sum, err := s.monitor.Stop(ctx)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(sum)
}

// handleFrame ingests one landmark payload
func (s *Server) handleFrame(c *fiber.Ctx) error {
	var p landmark.Payload
	if err := json.Unmarshal(c.Body(), &p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid payload: " + err.Error(),
		})
	}

	r, err := s.submit(p)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(r)
}

func (s *Server) submit(p landmark.Payload) (attention.Report, error) {
	if s.monitor == nil {
		return attention.Report{}, errNoMonitor
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.monitor.Submit(ctx, attention.Frame{
		Landmarks: p.First(),
		At:        p.Time(),
	})
}

// handleCamera annotates a JPEG frame and pushes it to camera viewers
func (s *Server) handleCamera(c *fiber.Ctx) error {
	if s.annotator == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
			"error": "camera overlay not enabled",
		})
	}
	body := c.Body()
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "empty frame",
		})
	}

	out, err := s.PushCamera(body)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(out)
}

// handleConfig returns the active thresholds
func (s *Server) handleConfig(c *fiber.Ctx) error {
	a := s.cfg.Attention
	return c.JSON(fiber.Map{
		"model":             a.Model.Name,
		"eye_closed_thresh": a.EyeClosedThresh,
		"center_threshold":  a.CenterThreshold,
		"drowsy_thresh":     a.DrowsyThresh,
		"drowsy_frames":     a.DrowsyFrames,
		"alert_cooldown_ms": a.AlertCooldown.Milliseconds(),
		"alert_clear_ms":    a.AlertClearAfter.Milliseconds(),
		"warn_after_ms":     a.WarnAfter.Milliseconds(),
		"alarm_after_ms":    a.AlarmAfter.Milliseconds(),
	})
}

// handleGetLogs returns recent log entries
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	return c.JSON(s.Logs())
}

// handleTone serves the alarm sound
func (s *Server) handleTone(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "audio/wav")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(s.tone)
}

// handleStatusWS streams session snapshots, starting with the current one
func (s *Server) handleStatusWS(c *websocket.Conn) {
	var initial []hub.Message
	if s.monitor != nil {
		if msg, err := hub.Encode(EventSnapshot, s.monitor.Snapshot()); err == nil {
			initial = append(initial, msg)
		}
	}
	hub.NewClient(s.statusHub, c, initial...).Run()
}

// handleAlertsWS streams drowsiness alerts and distraction escalations
func (s *Server) handleAlertsWS(c *websocket.Conn) {
	hub.NewClient(s.alertHub, c).Run()
}

// logReplay is how many recent entries a new /ws/logs client receives.
const logReplay = 200

// handleLogsWS replays the newest log entries then streams new ones
func (s *Server) handleLogsWS(c *websocket.Conn) {
	logs := s.Logs()
	if len(logs) > logReplay {
		logs = logs[len(logs)-logReplay:]
	}
	initial := make([]hub.Message, 0, len(logs))
	for _, entry := range logs {
		if msg, err := hub.Encode("log", entry); err == nil {
			initial = append(initial, msg)
		}
	}
	hub.NewClient(s.logHub, c, initial...).Run()
}

// handleCameraWS streams annotated JPEG frames
func (s *Server) handleCameraWS(c *websocket.Conn) {
	hub.NewClient(s.cameraHub, c).Run()
}

// handleFramesWS accepts landmark payloads, one per message, and answers
// each with a report or an error on the same socket.
func (s *Server) handleFramesWS(c *websocket.Conn) {
	client := hub.NewClient(s.framesHub, c)
	client.OnMessage = func(data []byte) {
		var p landmark.Payload
		if err := json.Unmarshal(data, &p); err != nil {
			s.reply(client, EventError, fiber.Map{"error": "invalid payload: " + err.Error()})
			return
		}
		r, err := s.submit(p)
		if err != nil {
			if !errors.Is(err, landmark.ErrInvalidInput) && !errors.Is(err, attention.ErrNotRunning) {
				log.Warn("frame ingest failed", "error", err)
			}
			s.reply(client, EventError, fiber.Map{"error": err.Error(), "code": statusFor(err)})
			return
		}
		s.reply(client, EventReport, r)
	}
	client.Run()
}

func (s *Server) reply(c *hub.Client, typ string, payload any) {
	msg, err := hub.Encode(typ, payload)
	if err != nil {
		return
	}
	if !c.Send(msg) {
		log.Debug("frame reply dropped")
	}
}
