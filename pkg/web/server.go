// Package web provides the attention dashboard: an HTTP API for session
// control and frame ingest, plus websocket feeds for live status.
package web

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-vigil/internal/log"
	"github.com/teslashibe/go-vigil/pkg/alert"
	"github.com/teslashibe/go-vigil/pkg/attention"
	"github.com/teslashibe/go-vigil/pkg/hub"
)

// Monitor is the session API the dashboard drives.
type Monitor interface {
	Start(ctx context.Context) (string, error)
	Stop(ctx context.Context) (attention.Summary, error)
	Submit(ctx context.Context, f attention.Frame) (attention.Report, error)
	Snapshot() attention.Snapshot
}

// Annotator draws state onto camera frames.
type Annotator interface {
	Annotate(jpeg []byte) ([]byte, error)
}

// LogEntry represents an event line for the dashboard
type LogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // session, alert, warning, alarm, error
	Message string `json:"message"`
}

// Config holds dashboard settings
type Config struct {
	Addr           string
	StaticDir      string        // served at / when non-empty
	RequestTimeout time.Duration // bound on each monitor call
	MaxLogs        int
	Attention      attention.Config
}

// DefaultConfig returns dashboard defaults
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		StaticDir:      "./web",
		RequestTimeout: 2 * time.Second,
		MaxLogs:        500,
		Attention:      attention.DefaultConfig(),
	}
}

// Server is the web dashboard server. It implements monitor.Sink so every
// session event is pushed to websocket clients.
type Server struct {
	app     *fiber.App
	cfg     Config
	monitor Monitor
	tone    []byte

	annotator Annotator

	// Log buffer (last MaxLogs entries)
	logs   []LogEntry
	logsMu sync.RWMutex

	// Hubs for websocket broadcast
	statusHub *hub.Hub
	alertHub  *hub.Hub
	logHub    *hub.Hub
	cameraHub *hub.Hub
	framesHub *hub.Hub
}

// NewServer creates a new web dashboard server. Call SetMonitor before
// serving requests.
func NewServer(cfg Config) *Server {
	if cfg.MaxLogs <= 0 {
		cfg.MaxLogs = 500
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 2 * time.Second
	}

	s := &Server{
		cfg:       cfg,
		tone:      alert.DefaultTone().WAV(),
		logs:      make([]LogEntry, 0, cfg.MaxLogs),
		statusHub: hub.New("status"),
		alertHub:  hub.New("alerts"),
		logHub:    hub.New("logs"),
		cameraHub: hub.New("camera"),
		framesHub: hub.New("frames"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Vigil Dashboard",
		DisableStartupMessage: true,
		BodyLimit:             8 * 1024 * 1024,
	})

	// CORS for local development
	app.Use(cors.New())

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	// API routes
	api := app.Group("/api")
	api.Get("/session", s.handleSession)
	api.Post("/session/start", s.handleStart)
	api.Post("/session/stop", s.handleStop)
	api.Post("/frames", s.handleFrame)
	api.Post("/camera", s.handleCamera)
	api.Get("/config", s.handleConfig)
	api.Get("/logs", s.handleGetLogs)
	api.Get("/alert.wav", s.handleTone)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/alerts", websocket.New(s.handleAlertsWS))
	app.Get("/ws/logs", websocket.New(s.handleLogsWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))

	s.app = app
	return s
}

// SetMonitor wires the session the dashboard controls.
func (s *Server) SetMonitor(m Monitor) {
	s.monitor = m
}

// SetAnnotator enables the camera overlay endpoint.
func (s *Server) SetAnnotator(a Annotator) {
	s.annotator = a
}

// PushCamera annotates a JPEG frame, when an annotator is set, and sends
// it to camera viewers.
func (s *Server) PushCamera(jpeg []byte) ([]byte, error) {
	out := jpeg
	if s.annotator != nil {
		var err error
		if out, err = s.annotator.Annotate(jpeg); err != nil {
			return nil, err
		}
	}
	if s.cameraHub.ClientCount() > 0 {
		s.cameraHub.BroadcastBinary(out)
	}
	return out, nil
}

// App exposes the fiber app for tests and embedding.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the hubs and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	for _, h := range s.hubs() {
		go h.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("web dashboard listening", "addr", s.cfg.Addr)
		errCh <- s.app.Listen(s.cfg.Addr)
	}()

	select {
	case <-ctx.Done():
		return s.app.Shutdown()
	case err := <-errCh:
		return err
	}
}

// StartHubs runs the hubs without an HTTP listener, for tests.
func (s *Server) StartHubs(ctx context.Context) {
	for _, h := range s.hubs() {
		go h.Run(ctx)
	}
}

func (s *Server) hubs() []*hub.Hub {
	return []*hub.Hub{s.statusHub, s.alertHub, s.logHub, s.cameraHub, s.framesHub}
}

// AddLog adds a log entry and broadcasts to clients
func (s *Server) AddLog(logType, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    logType,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > s.cfg.MaxLogs {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()

	s.logHub.BroadcastEvent("log", entry)
}

// Logs returns a copy of the log buffer.
func (s *Server) Logs() []LogEntry {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	out := make([]LogEntry, len(s.logs))
	copy(out, s.logs)
	return out
}
