// Package tui is a terminal viewer for a running vigil dashboard.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/teslashibe/go-vigil/pkg/attention"
)

var (
	colorFocused    = lipgloss.Color("#22c55e")
	colorDistracted = lipgloss.Color("#d97706")
	colorAlert      = lipgloss.Color("#dc2626")
	colorDimmed     = lipgloss.Color("#6b7280")
	colorBright     = lipgloss.Color("#f9fafb")
	colorBorder     = lipgloss.Color("#4b5563")

	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorBright)
	styleLabel  = lipgloss.NewStyle().Foreground(colorDimmed).Width(14)
	styleValue  = lipgloss.NewStyle().Foreground(colorBright)
	styleDimmed = lipgloss.NewStyle().Foreground(colorDimmed)

	styleBanner = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBright).
			Background(colorAlert).
			Padding(0, 2)
)

// StatusColor returns the display color for a frame status.
func StatusColor(s attention.Status) lipgloss.Color {
	switch s {
	case attention.StatusFocused:
		return colorFocused
	case attention.StatusDistracted:
		return colorDistracted
	case attention.StatusDrowsy, attention.StatusEyesClosed:
		return colorAlert
	default:
		return colorDimmed
	}
}

// Model is the root Bubble Tea model.
type Model struct {
	status  *WSClient
	alerts  *WSClient
	control *Control
	ctx     context.Context
	cancel  context.CancelFunc

	keys  KeyMap
	width int

	connected map[Feed]bool

	snap       attention.Snapshot
	last       *attention.FrameResult
	summary    *attention.Summary
	alerting   bool
	escalation attention.Escalation
	lastErr    string
}

// New creates the viewer. Any client may be nil.
func New(status, alerts *WSClient, control *Control) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		status:    status,
		alerts:    alerts,
		control:   control,
		ctx:       ctx,
		cancel:    cancel,
		keys:      DefaultKeyMap(),
		connected: make(map[Feed]bool),
	}
}

// Init connects both feeds.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, c := range []*WSClient{m.status, m.alerts} {
		if c != nil {
			cmds = append(cmds, c.Listen(m.ctx))
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) client(f Feed) *WSClient {
	if f == FeedAlerts {
		return m.alerts
	}
	return m.status
}

// next re-arms the reader of feed f.
func (m Model) next(f Feed) tea.Cmd {
	if c := m.client(f); c != nil {
		return c.ReadLoop()
	}
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ConnectedMsg:
		m.connected[msg.Feed] = true
		return m, m.next(msg.Feed)

	case DisconnectedMsg:
		m.connected[msg.Feed] = false
		if c := m.client(msg.Feed); c != nil {
			return m, c.Listen(m.ctx)
		}
		return m, nil

	case SnapshotMsg:
		m.snap = msg.Snapshot
		if m.snap.Running {
			m.summary = nil
		}
		if msg.Snapshot.Last != nil {
			last := *msg.Snapshot.Last
			m.last = &last
		}
		return m, m.next(FeedStatus)

	case ReportMsg:
		fr := msg.Report.FrameResult
		m.last = &fr
		if fr.Status == attention.StatusFocused {
			m.escalation = attention.EscalationNone
		}
		return m, m.next(FeedStatus)

	case SummaryMsg:
		s := msg.Summary
		m.summary = &s
		m.snap.Running = false
		m.alerting = false
		m.escalation = attention.EscalationNone
		return m, m.next(FeedStatus)

	case AlertMsg:
		m.alerting = true
		return m, m.next(FeedAlerts)

	case AlertClearMsg:
		m.alerting = false
		return m, m.next(FeedAlerts)

	case EscalationMsg:
		m.escalation = msg.Level
		return m, m.next(FeedAlerts)

	case ControlMsg:
		m.lastErr = ""
		if msg.Err != nil {
			m.lastErr = msg.Action + ": " + msg.Err.Error()
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Start):
		if m.control != nil {
			return m, m.control.Start()
		}
	case key.Matches(msg, m.keys.Stop):
		if m.control != nil {
			return m, m.control.Stop()
		}
	}
	return m, nil
}

// View renders the viewer.
func (m Model) View() string {
	var b strings.Builder

	state := "STOPPED"
	if m.snap.Running {
		state = "RUNNING"
	}
	b.WriteString(styleTitle.Render("Vigil  "+state) + "\n\n")

	status := attention.StatusNoFace.String()
	ear := 0.0
	if m.last != nil {
		status = m.last.Status.String()
		ear = m.last.AvgEAR
	}
	statusStyle := lipgloss.NewStyle().Bold(true).Foreground(StatusColor(statusOf(m.last)))
	writeRow(&b, "Status", statusStyle.Render(status))
	writeRow(&b, "EAR", fmt.Sprintf("%.3f", ear))
	writeRow(&b, "Elapsed", formatElapsed(m.snap.ElapsedSeconds))
	writeRow(&b, "Distractions", fmt.Sprintf("%d", m.snap.DistractionCount))
	writeRow(&b, "Drowsy alerts", fmt.Sprintf("%d", m.snap.DrowsyAlertCount))
	writeRow(&b, "Drowsy frames", fmt.Sprintf("%d", m.snap.DrowsyFrames))

	if m.summary != nil {
		b.WriteString("\n" + styleTitle.Render("Last session") + "\n")
		writeRow(&b, "Duration", m.summary.Duration.Round(time.Second).String())
		writeRow(&b, "Per minute", fmt.Sprintf("%.2f", m.summary.DistractionsPerMinute))
		writeRow(&b, "Frames", fmt.Sprintf("%d", m.summary.FramesProcessed))
	}

	var sections []string
	if m.alerting {
		sections = append(sections, styleBanner.Render("DROWSINESS ALERT"))
	}
	switch m.escalation {
	case attention.EscalationWarning:
		sections = append(sections, styleBanner.Background(colorDistracted).Render("Pay attention"))
	case attention.EscalationAlarm:
		sections = append(sections, styleBanner.Render("Focus now"))
	}
	sections = append(sections, stylePanel.Render(strings.TrimRight(b.String(), "\n")))

	if m.lastErr != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(colorAlert).Render(m.lastErr))
	}
	if !m.connected[FeedStatus] {
		sections = append(sections, styleDimmed.Render("Reconnecting to dashboard..."))
	}
	sections = append(sections, styleDimmed.Render("  s:start  x:stop  q:quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func statusOf(fr *attention.FrameResult) attention.Status {
	if fr == nil {
		return attention.StatusNoFace
	}
	return fr.Status
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(styleLabel.Render(label+":") + styleValue.Render(value) + "\n")
}

// formatElapsed renders seconds as mm:ss, or h:mm:ss past an hour.
func formatElapsed(sec int) string {
	if sec < 0 {
		sec = 0
	}
	h, m, s := sec/3600, (sec%3600)/60, sec%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
