// vigil-replay streams a landmark recording to a running vigil dashboard,
// or writes a synthetic demo recording.
//
//	vigil-replay -file session.jsonl -url ws://127.0.0.1:8080/ws/frames
//	vigil-replay -demo > demo.jsonl
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-vigil/internal/httpc"
	"github.com/teslashibe/go-vigil/internal/log"
	"github.com/teslashibe/go-vigil/pkg/landmark"
	"github.com/teslashibe/go-vigil/pkg/replay"
)

type options struct {
	file     string
	url      string
	fps      int
	speed    float64
	loop     bool
	start    bool
	demo     bool
	verbose  bool
	logLevel string
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.file, "file", "", "Recording to stream (JSONL, one payload per line; - for stdin)")
	flag.StringVar(&o.url, "url", "ws://127.0.0.1:8080/ws/frames", "Frame ingest websocket URL")
	flag.IntVar(&o.fps, "fps", 30, "Frame rate for frames without timestamps, and for -demo")
	flag.Float64Var(&o.speed, "speed", 1.0, "Playback speed multiplier")
	flag.BoolVar(&o.loop, "loop", false, "Repeat the recording until interrupted")
	flag.BoolVar(&o.start, "start", true, "Start a new session before streaming")
	flag.BoolVar(&o.demo, "demo", false, "Write a synthetic demo recording to stdout and exit")
	flag.BoolVar(&o.verbose, "v", false, "Print every report")
	flag.StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()
	return o
}

func main() {
	o := parseFlags()
	log.InitWriter(os.Stderr, o.logLevel)

	if o.demo {
		if err := writeDemo(os.Stdout, o.fps); err != nil {
			log.Error("write demo", "error", err)
			os.Exit(1)
		}
		return
	}

	frames, err := load(o.file)
	if err != nil {
		log.Error("load recording", "error", err)
		os.Exit(1)
	}
	if len(frames) == 0 {
		log.Error("recording is empty", "file", o.file)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, o, frames); err != nil && ctx.Err() == nil {
		log.Error("replay failed", "error", err)
		os.Exit(1)
	}
}

func writeDemo(w io.Writer, fps int) error {
	rw := replay.NewWriter(w)
	for _, p := range replay.Generate(landmark.FaceMeshV1, replay.Demo, fps, time.Now()) {
		if err := rw.Write(p); err != nil {
			return err
		}
	}
	return nil
}

func load(path string) ([]landmark.Payload, error) {
	switch path {
	case "":
		return nil, fmt.Errorf("-file is required")
	case "-":
		return replay.ReadAll(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return replay.ReadAll(f)
}

func run(ctx context.Context, o options, frames []landmark.Payload) error {
	if o.start {
		if err := startSession(ctx, o.url); err != nil {
			return fmt.Errorf("start session: %w", err)
		}
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, o.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", o.url, err)
	}
	defer conn.Close()

	go readReplies(conn, o.verbose)

	fallback := time.Second / time.Duration(max(o.fps, 1))
	delays := replay.Delays(frames, fallback)
	speed := o.speed
	if speed <= 0 {
		speed = 1
	}

	for pass := 1; ; pass++ {
		log.Info("streaming recording", "frames", len(frames), "pass", pass)
		for i, p := range frames {
			wait := time.Duration(float64(delays[i]) / speed)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}

			// restamp so the session sees live time
			p.TimestampMS = time.Now().UnixMilli()
			data, err := json.Marshal(p)
			if err != nil {
				return err
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return fmt.Errorf("send frame %d: %w", i, err)
			}
		}
		if !o.loop {
			break
		}
	}

	// let the last replies arrive before closing
	time.Sleep(200 * time.Millisecond)
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return nil
}

func readReplies(conn *websocket.Conn, verbose bool) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var env struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if json.Unmarshal(data, &env) != nil {
			continue
		}
		switch {
		case env.Type == "error":
			log.Warn("frame rejected", "reply", string(env.Payload))
		case verbose:
			log.Info(env.Type, "payload", string(env.Payload))
		}
	}
}

// startSession posts to the session API next to the websocket URL.
func startSession(ctx context.Context, wsURL string) error {
	u, err := url.Parse(wsURL)
	if err != nil {
		return err
	}
	u.Scheme = strings.Replace(u.Scheme, "ws", "http", 1)
	u.Path = "/api/session/start"

	var started struct {
		ID string `json:"id"`
	}
	if err := httpc.PostJSON(ctx, httpc.Client, u.String(), &started); err != nil {
		return err
	}
	log.Info("session started", "session", started.ID)
	return nil
}
