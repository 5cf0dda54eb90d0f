package main

import (
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/teslashibe/go-vigil/internal/log"
	"github.com/teslashibe/go-vigil/internal/tui"
)

func main() {
	base := flag.String("url", "http://127.0.0.1:8080", "Base URL of the vigil dashboard")
	logFile := flag.String("log", "", "Write debug logs to this file")
	flag.Parse()

	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.InitWriter(f, "debug")
	} else {
		// the terminal belongs to the TUI
		log.InitWriter(io.Discard, "error")
	}

	wsBase := deriveWSBase(*base)
	status := tui.NewWSClient(tui.FeedStatus, wsBase+"/ws/status")
	alerts := tui.NewWSClient(tui.FeedAlerts, wsBase+"/ws/alerts")
	defer status.Close()
	defer alerts.Close()

	m := tui.New(status, alerts, tui.NewControl(strings.TrimRight(*base, "/")))
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// deriveWSBase converts http://host:port → ws://host:port
func deriveWSBase(httpURL string) string {
	u, err := url.Parse(httpURL)
	if err != nil || u.Host == "" {
		return "ws://127.0.0.1:8080"
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s", scheme, u.Host)
}
