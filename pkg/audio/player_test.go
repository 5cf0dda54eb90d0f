package audio

import (
	"context"
	"testing"
	"time"

	"github.com/teslashibe/go-vigil/pkg/attention"
)

// blockingRun plays until release is closed.
func blockingRun(started chan<- []byte, release <-chan struct{}) runFunc {
	return func(ctx context.Context, _ []string, wav []byte) error {
		started <- wav
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}
}

func waitIdle(t *testing.T, p *Player) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for p.IsPlaying() {
		if time.Now().After(deadline) {
			t.Fatal("player still busy")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPlayerDropsOverlappingRequests(t *testing.T) {
	started := make(chan []byte, 4)
	release := make(chan struct{})

	p := NewPlayer([]string{"fake"}, []byte("RIFF"))
	p.run = blockingRun(started, release)

	if !p.Play() {
		t.Fatal("first Play should start")
	}
	if got := string(<-started); got != "RIFF" {
		t.Errorf("wav: got %q", got)
	}
	if p.Play() {
		t.Error("second Play should be dropped while busy")
	}

	close(release)
	waitIdle(t, p)

	if p.Played() != 1 {
		t.Errorf("played: got %d, want 1", p.Played())
	}
}

func TestPlayerSink(t *testing.T) {
	started := make(chan []byte, 4)
	release := make(chan struct{})
	close(release)

	p := NewPlayer([]string{"fake"}, []byte("RIFF"))
	p.run = blockingRun(started, release)

	tests := []struct {
		name  string
		event func()
		plays bool
	}{
		{"drowsy alert", func() { p.OnAlert(attention.AlertIntent{Seq: 1}) }, true},
		{"alarm escalation", func() { p.OnFrame(attention.Report{Escalation: attention.EscalationAlarm}) }, true},
		{"warning escalation", func() { p.OnFrame(attention.Report{Escalation: attention.EscalationWarning}) }, false},
		{"plain frame", func() { p.OnFrame(attention.Report{}) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := p.Played()
			tt.event()
			waitIdle(t, p)
			if got := p.Played() > before; got != tt.plays {
				t.Errorf("played: got %v, want %v", got, tt.plays)
			}
		})
	}
}

func TestCancelStopsPlayback(t *testing.T) {
	started := make(chan []byte, 1)
	p := NewPlayer([]string{"fake"}, []byte("RIFF"))
	p.run = blockingRun(started, make(chan struct{}))

	p.Play()
	<-started
	p.OnStop(attention.Summary{})
	waitIdle(t, p)
}

func TestPlayClip(t *testing.T) {
	started := make(chan []byte, 2)
	release := make(chan struct{})
	close(release)

	p := NewPlayer([]string{"fake"}, nil)
	p.run = blockingRun(started, release)

	if p.Play() {
		t.Error("Play without a configured clip should report false")
	}
	if !p.PlayClip([]byte("speech")) {
		t.Fatal("PlayClip should start")
	}
	if got := string(<-started); got != "speech" {
		t.Errorf("clip: got %q, want %q", got, "speech")
	}
	waitIdle(t, p)
}
