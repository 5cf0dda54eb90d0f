package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-vigil/internal/httpc"
	"github.com/teslashibe/go-vigil/internal/log"
	"github.com/teslashibe/go-vigil/pkg/attention"
	"github.com/teslashibe/go-vigil/pkg/web"
)

const (
	reconnectBaseDelay = 1 * time.Second
	reconnectMaxDelay  = 30 * time.Second
	pongTimeout        = 90 * time.Second
)

// Feed names one dashboard websocket.
type Feed string

const (
	FeedStatus Feed = "status"
	FeedAlerts Feed = "alerts"
)

// --- Bubble Tea messages ---

type ConnectedMsg struct{ Feed Feed }

type DisconnectedMsg struct {
	Feed Feed
	Err  error
}

// SnapshotMsg carries session counters (initial state, start and ticks).
type SnapshotMsg struct{ Snapshot attention.Snapshot }

type ReportMsg struct{ Report attention.Report }

type SummaryMsg struct{ Summary attention.Summary }

type AlertMsg struct{ Intent attention.AlertIntent }

type AlertClearMsg struct{}

type EscalationMsg struct{ Level attention.Escalation }

// ControlMsg reports the result of a start or stop request.
type ControlMsg struct {
	Action string
	Err    error
}

// envelope matches hub.Envelope with a deferred payload.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// WSClient follows one dashboard feed.
type WSClient struct {
	feed Feed
	url  string

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSClient creates a client for the feed at url.
func NewWSClient(feed Feed, url string) *WSClient {
	return &WSClient{feed: feed, url: url}
}

// Listen returns a command that dials until connected or ctx ends.
func (c *WSClient) Listen(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		delay := reconnectBaseDelay
		for {
			conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
			if err == nil {
				c.mu.Lock()
				c.conn = conn
				c.mu.Unlock()
				return ConnectedMsg{Feed: c.feed}
			}
			log.Debug("ws dial failed", "feed", c.feed, "error", err, "retry", delay)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			delay = min(delay*2, reconnectMaxDelay)
		}
	}
}

// ReadLoop returns a command that yields the next recognised message.
func (c *WSClient) ReadLoop() tea.Cmd {
	return func() tea.Msg {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return DisconnectedMsg{Feed: c.feed, Err: fmt.Errorf("no connection")}
		}

		for {
			conn.SetReadDeadline(time.Now().Add(pongTimeout))
			_, data, err := conn.ReadMessage()
			if err != nil {
				c.mu.Lock()
				if c.conn == conn {
					c.conn = nil
				}
				c.mu.Unlock()
				conn.Close()
				return DisconnectedMsg{Feed: c.feed, Err: err}
			}
			if msg := decode(data); msg != nil {
				return msg
			}
		}
	}
}

// Close drops the connection.
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// decode turns one envelope into a Bubble Tea message, or nil when the
// type is not shown in the viewer.
func decode(data []byte) tea.Msg {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}

	switch env.Type {
	case web.EventSnapshot, web.EventStart, web.EventTick:
		var s attention.Snapshot
		if json.Unmarshal(env.Payload, &s) == nil {
			return SnapshotMsg{Snapshot: s}
		}
	case web.EventFrame:
		var r attention.Report
		if json.Unmarshal(env.Payload, &r) == nil {
			return ReportMsg{Report: r}
		}
	case web.EventStop:
		var s attention.Summary
		if json.Unmarshal(env.Payload, &s) == nil {
			return SummaryMsg{Summary: s}
		}
	case web.EventAlert:
		var a attention.AlertIntent
		if json.Unmarshal(env.Payload, &a) == nil {
			return AlertMsg{Intent: a}
		}
	case web.EventAlertClear:
		return AlertClearMsg{}
	case web.EventWarning:
		return EscalationMsg{Level: attention.EscalationWarning}
	case web.EventAlarm:
		return EscalationMsg{Level: attention.EscalationAlarm}
	}
	return nil
}

// Control starts and stops sessions over the HTTP API.
type Control struct {
	baseURL string
	client  *http.Client
}

// NewControl targets a dashboard base URL such as http://127.0.0.1:8080.
func NewControl(baseURL string) *Control {
	return &Control{
		baseURL: baseURL,
		client:  httpc.NewClient(5 * time.Second),
	}
}

// Start returns a command that begins a session.
func (c *Control) Start() tea.Cmd {
	return func() tea.Msg {
		return ControlMsg{Action: "start", Err: c.post("/api/session/start")}
	}
}

// Stop returns a command that ends the session.
func (c *Control) Stop() tea.Cmd {
	return func() tea.Msg {
		return ControlMsg{Action: "stop", Err: c.post("/api/session/stop")}
	}
}

func (c *Control) post(path string) error {
	return httpc.PostJSON(context.Background(), c.client, c.baseURL+path, nil)
}
