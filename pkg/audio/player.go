// Package audio plays the alarm tone on the local machine through an
// external player such as aplay, paplay or afplay.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/teslashibe/go-vigil/internal/log"
	"github.com/teslashibe/go-vigil/pkg/attention"
	"github.com/teslashibe/go-vigil/pkg/monitor"
)

// FileArg in a player command is replaced with the path of a temporary WAV
// file, for players that cannot read stdin.
const FileArg = "{file}"

// ErrNoPlayer is returned by Detect when no known player is installed.
var ErrNoPlayer = errors.New("audio: no wav player found")

// knownPlayers are tried in order by Detect.
var knownPlayers = [][]string{
	{"aplay", "-q", "-"},
	{"paplay"},
	{"afplay", FileArg},
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", "-i", "pipe:0"},
}

// Detect returns the first player command found on PATH.
func Detect() ([]string, error) {
	for _, cmd := range knownPlayers {
		if _, err := exec.LookPath(cmd[0]); err == nil {
			return cmd, nil
		}
	}
	return nil, ErrNoPlayer
}

// runFunc runs one playback to completion.
type runFunc func(ctx context.Context, command []string, wav []byte) error

// Player plays one WAV clip at a time. Requests made while a clip is
// playing are dropped.
//
// Player implements monitor.Sink: drowsy alerts and distraction alarms
// start playback.
type Player struct {
	monitor.NopSink

	command []string
	wav     []byte
	timeout time.Duration
	run     runFunc

	mu      sync.Mutex
	playing bool
	cancel  context.CancelFunc
	played  int
}

// NewPlayer creates a player that pipes wav to command. A nil wav makes a
// player for PlayClip only.
func NewPlayer(command []string, wav []byte) *Player {
	return &Player{
		command: command,
		wav:     wav,
		timeout: 10 * time.Second,
		run:     runCommand,
	}
}

// Play starts the configured clip in the background. It reports false when
// a clip is already playing.
func (p *Player) Play() bool {
	return p.PlayClip(p.wav)
}

// PlayClip starts wav in the background. It reports false when a clip is
// already playing.
func (p *Player) PlayClip(wav []byte) bool {
	if len(wav) == 0 {
		return false
	}
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	p.playing = true
	p.cancel = cancel
	p.played++
	p.mu.Unlock()

	go func() {
		defer cancel()
		if err := p.run(ctx, p.command, wav); err != nil && ctx.Err() == nil {
			log.Warn("alarm playback failed", "player", p.command[0], "error", err)
		}
		p.mu.Lock()
		p.playing = false
		p.cancel = nil
		p.mu.Unlock()
	}()
	return true
}

// Cancel stops any current playback immediately.
func (p *Player) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// IsPlaying returns whether a clip is playing.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Played returns how many clips were started.
func (p *Player) Played() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played
}

func (p *Player) OnAlert(attention.AlertIntent) {
	p.Play()
}

func (p *Player) OnFrame(r attention.Report) {
	if r.Escalation == attention.EscalationAlarm {
		p.Play()
	}
}

func (p *Player) OnStop(attention.Summary) {
	p.Cancel()
}

func runCommand(ctx context.Context, command []string, wav []byte) error {
	args := append([]string(nil), command[1:]...)
	useStdin := true
	for i, a := range args {
		if a != FileArg {
			continue
		}
		f, err := os.CreateTemp("", "vigil-alarm-*.wav")
		if err != nil {
			return err
		}
		defer os.Remove(f.Name())
		if _, err := f.Write(wav); err != nil {
			f.Close()
			return err
		}
		f.Close()
		args[i] = f.Name()
		useStdin = false
	}

	cmd := exec.CommandContext(ctx, command[0], args...)
	if useStdin {
		cmd.Stdin = bytes.NewReader(wav)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}
