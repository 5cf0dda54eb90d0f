package tts

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

const providerLocal = "local"

// Placeholders in a local engine command line.
const (
	// TextArg is replaced with the text to speak.
	TextArg = "{text}"

	// FileArg is replaced with a temporary .wav path the engine writes to.
	// Without it the engine must write WAV to stdout.
	FileArg = "{file}"
)

// knownEngines are tried in order by DetectEngine.
var knownEngines = [][]string{
	{"espeak-ng", "--stdout", TextArg},
	{"espeak", "--stdout", TextArg},
	{"say", "-o", FileArg, "--file-format=WAVE", "--data-format=LEI16@22050", TextArg},
	{"pico2wave", "-w", FileArg, TextArg},
}

// DetectEngine returns the first known engine command found on PATH.
func DetectEngine() ([]string, error) {
	for _, cmd := range knownEngines {
		if _, err := exec.LookPath(cmd[0]); err == nil {
			return cmd, nil
		}
	}
	return nil, ErrNoEngine
}

// engineFunc runs an engine and returns its stdout.
type engineFunc func(ctx context.Context, name string, args []string) ([]byte, error)

// Local implements Provider with a speech engine installed on this machine.
type Local struct {
	command []string
	timeout time.Duration
	logger  *slog.Logger
	run     engineFunc
}

// NewLocal creates a local provider. Without WithCommand the first known
// engine on PATH is used.
func NewLocal(opts ...Option) (*Local, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	command := cfg.Command
	if len(command) == 0 {
		var err error
		if command, err = DetectEngine(); err != nil {
			return nil, err
		}
	}

	return &Local{
		command: command,
		timeout: cfg.Timeout,
		logger:  cfg.Logger.With("component", "tts.local", "engine", command[0]),
		run:     runEngine,
	}, nil
}

// Synthesize runs the engine once and returns its WAV output.
func (l *Local) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, WrapError(providerLocal, ErrEmptyText)
	}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	args := make([]string, len(l.command)-1)
	outFile := ""
	for i, a := range l.command[1:] {
		switch a {
		case TextArg:
			args[i] = text
		case FileArg:
			if outFile == "" {
				f, err := os.CreateTemp("", "vigil-tts-*.wav")
				if err != nil {
					return nil, WrapError(providerLocal, err)
				}
				f.Close()
				outFile = f.Name()
				defer os.Remove(outFile)
			}
			args[i] = outFile
		default:
			args[i] = a
		}
	}

	audio, err := l.run(ctx, l.command[0], args)
	if err != nil {
		return nil, WrapError(providerLocal, err)
	}
	if outFile != "" {
		if audio, err = os.ReadFile(outFile); err != nil {
			return nil, WrapError(providerLocal, err)
		}
	}
	if !IsWAV(audio) {
		return nil, WrapError(providerLocal, ErrNotWAV)
	}

	latency := time.Since(start).Milliseconds()
	l.logger.Debug("synthesized audio", "chars", len(text), "bytes", len(audio), "latency_ms", latency)

	return &AudioResult{
		Audio:     audio,
		Provider:  providerLocal,
		CharCount: len(text),
		LatencyMs: latency,
	}, nil
}

// Health checks that the engine is on PATH.
func (l *Local) Health(ctx context.Context) error {
	if _, err := exec.LookPath(l.command[0]); err != nil {
		return WrapError(providerLocal, err)
	}
	return nil
}

// Close is a no-op.
func (l *Local) Close() error { return nil }

// Engine returns the engine executable name.
func (l *Local) Engine() string { return l.command[0] }

func runEngine(ctx context.Context, name string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

var _ Provider = (*Local)(nil)
