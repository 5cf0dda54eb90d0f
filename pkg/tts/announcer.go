package tts

import (
	"context"
	"sync"
	"time"

	"github.com/teslashibe/go-vigil/internal/log"
	"github.com/teslashibe/go-vigil/pkg/attention"
	"github.com/teslashibe/go-vigil/pkg/monitor"
)

// Messages are the phrases spoken for each kind of alert.
type Messages struct {
	Drowsy  string `yaml:"drowsy"`
	Warning string `yaml:"warning"`
	Alarm   string `yaml:"alarm"`
}

// DefaultMessages returns the stock alert phrases.
func DefaultMessages() Messages {
	return Messages{
		Drowsy:  "Alert! Driver drowsiness detected!",
		Warning: "Warning! Pay attention!",
		Alarm:   "Danger! Focus on road!",
	}
}

// Player plays WAV clips, dropping requests while busy.
type Player interface {
	PlayClip(wav []byte) bool
	IsPlaying() bool
	Cancel()
}

// Announcer speaks alert messages. It implements monitor.Sink: drowsy
// alerts, distraction warnings and distraction alarms each say their
// message. Only one message is in flight at a time; requests made while
// synthesizing or playing are dropped. Clips are cached by text.
type Announcer struct {
	monitor.NopSink

	provider Provider
	player   Player
	messages Messages
	timeout  time.Duration

	mu       sync.Mutex
	speaking bool
	gen      int
	cache    map[string][]byte
	spoken   int
}

// NewAnnouncer creates an announcer. Empty messages fall back to the
// defaults.
func NewAnnouncer(provider Provider, player Player, messages Messages) *Announcer {
	def := DefaultMessages()
	if messages.Drowsy == "" {
		messages.Drowsy = def.Drowsy
	}
	if messages.Warning == "" {
		messages.Warning = def.Warning
	}
	if messages.Alarm == "" {
		messages.Alarm = def.Alarm
	}
	return &Announcer{
		provider: provider,
		player:   player,
		messages: messages,
		timeout:  20 * time.Second,
		cache:    make(map[string][]byte),
	}
}

// Messages returns the phrases in use.
func (a *Announcer) Messages() Messages { return a.messages }

// Preload synthesizes every message into the cache.
func (a *Announcer) Preload(ctx context.Context) error {
	for _, text := range []string{a.messages.Drowsy, a.messages.Warning, a.messages.Alarm} {
		if _, err := a.clip(ctx, text); err != nil {
			return err
		}
	}
	return nil
}

// Say speaks text in the background. It reports false when another
// message is still being synthesized or played.
func (a *Announcer) Say(text string) bool {
	a.mu.Lock()
	if a.speaking || a.player.IsPlaying() {
		a.mu.Unlock()
		return false
	}
	a.speaking = true
	gen := a.gen
	a.mu.Unlock()

	go func() {
		defer func() {
			a.mu.Lock()
			a.speaking = false
			a.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		wav, err := a.clip(ctx, text)
		if err != nil {
			log.Warn("voice alert failed", "text", text, "error", err)
			return
		}

		a.mu.Lock()
		defer a.mu.Unlock()
		if gen != a.gen {
			return
		}
		if a.player.PlayClip(wav) {
			a.spoken++
		}
	}()
	return true
}

// Busy reports whether a message is being synthesized.
func (a *Announcer) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.speaking
}

// Spoken returns how many messages reached the player.
func (a *Announcer) Spoken() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.spoken
}

func (a *Announcer) clip(ctx context.Context, text string) ([]byte, error) {
	a.mu.Lock()
	wav, ok := a.cache[text]
	a.mu.Unlock()
	if ok {
		return wav, nil
	}

	res, err := a.provider.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.cache[text] = res.Audio
	a.mu.Unlock()
	return res.Audio, nil
}

func (a *Announcer) OnAlert(attention.AlertIntent) {
	a.Say(a.messages.Drowsy)
}

func (a *Announcer) OnFrame(r attention.Report) {
	switch r.Escalation {
	case attention.EscalationWarning:
		a.Say(a.messages.Warning)
	case attention.EscalationAlarm:
		a.Say(a.messages.Alarm)
	}
}

// OnStop silences any message in flight.
func (a *Announcer) OnStop(attention.Summary) {
	a.mu.Lock()
	a.gen++
	a.mu.Unlock()
	a.player.Cancel()
}

var _ monitor.Sink = (*Announcer)(nil)
