package vigil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/teslashibe/go-vigil/internal/config"
	"github.com/teslashibe/go-vigil/internal/log"
	"github.com/teslashibe/go-vigil/pkg/alert"
	"github.com/teslashibe/go-vigil/pkg/attention"
	"github.com/teslashibe/go-vigil/pkg/audio"
	"github.com/teslashibe/go-vigil/pkg/camera"
	"github.com/teslashibe/go-vigil/pkg/debug"
	"github.com/teslashibe/go-vigil/pkg/monitor"
	"github.com/teslashibe/go-vigil/pkg/overlay"
	"github.com/teslashibe/go-vigil/pkg/tts"
	"github.com/teslashibe/go-vigil/pkg/web"
)

// App is the main application orchestrator.
// It manages all components and their lifecycle.
type App struct {
	config Config

	monitor   *monitor.Monitor
	webServer *web.Server
	renderer  *overlay.Renderer

	sessions  *sessionLog
	player    *audio.Player
	announcer *tts.Announcer
	voice     tts.Provider
}

// sessionLog keeps the summary of the last finished session.
type sessionLog struct {
	monitor.NopSink

	mu   sync.Mutex
	last *attention.Summary
}

func (l *sessionLog) OnStop(sum attention.Summary) {
	l.mu.Lock()
	l.last = &sum
	l.mu.Unlock()
}

func (l *sessionLog) Last() (attention.Summary, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.last == nil {
		return attention.Summary{}, false
	}
	return *l.last, true
}

// New creates a new application with the given configuration.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	debug.Enabled = cfg.Debug
	debug.Frames = cfg.DebugFrames

	return &App{config: cfg}, nil
}

// Init builds all components.
// Call this after New() and before Run().
func (a *App) Init() error {
	debug.Log("init: addr=%s auto_start=%v overlay=%v", a.config.Addr, a.config.AutoStart, a.config.Overlay)

	a.webServer = web.NewServer(web.Config{
		Addr:           a.config.Addr,
		StaticDir:      a.config.StaticDir,
		RequestTimeout: a.config.RequestTimeout,
		MaxLogs:        a.config.MaxLogs,
		Attention:      a.config.Attention,
	})

	a.sessions = &sessionLog{}
	sinks := []monitor.Sink{a.webServer, a.sessions}
	if a.config.Overlay {
		a.renderer = overlay.New(a.config.JPEGQuality)
		a.webServer.SetAnnotator(a.renderer)
		sinks = append(sinks, a.renderer)
	}

	if a.config.Sound {
		if p, err := a.newPlayer(); err != nil {
			log.Warn("alarm sound disabled", "error", err)
		} else {
			a.player = p
			sinks = append(sinks, p)
		}
	}

	if a.config.Voice {
		if an, err := a.newAnnouncer(); err != nil {
			log.Warn("voice alerts disabled", "error", err)
		} else {
			a.announcer = an
			sinks = append(sinks, an)
		}
	}

	a.monitor = monitor.New(monitor.Config{
		Attention:    a.config.Attention,
		TickInterval: a.config.TickInterval,
		QueueSize:    a.config.QueueSize,
		Now:          time.Now,
	}, sinks...)
	a.webServer.SetMonitor(a.monitor)

	log.Info("vigil initialized",
		"addr", a.config.Addr,
		"model", a.config.Attention.Model.Name,
		"overlay", a.config.Overlay)
	return nil
}

// Run starts the monitor and dashboard.
// Blocks until context is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.monitor == nil {
		return errors.New("vigil: Run called before Init")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	webErr := make(chan error, 1)
	go func() { webErr <- a.webServer.Run(ctx) }()

	monErr := make(chan error, 1)
	go func() { monErr <- a.monitor.Run(ctx) }()

	if a.config.Camera.Enabled() {
		go a.streamCamera(ctx)
	}

	if a.announcer != nil {
		go func() {
			if err := a.announcer.Preload(ctx); err != nil {
				log.Warn("voice preload failed", "error", err)
			}
		}()
	}

	if a.config.AutoStart {
		go func() {
			id, err := a.monitor.Start(ctx)
			if err != nil {
				log.Warn("auto start failed", "error", err)
				return
			}
			log.Info("session auto-started", "session", id)
		}()
	}

	var err error
	select {
	case err = <-webErr:
		// listener failed before shutdown
		cancel()
		<-monErr
	case err = <-monErr:
		cancel()
		select {
		case werr := <-webErr:
			if werr != nil {
				log.Warn("web dashboard shutdown", "error", werr)
			}
		case <-time.After(5 * time.Second):
			log.Warn("web dashboard did not shut down in time")
		}
	}

	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

func (a *App) newPlayer() (*audio.Player, error) {
	cmd := a.config.SoundCommand
	if len(cmd) == 0 {
		var err error
		if cmd, err = audio.Detect(); err != nil {
			return nil, err
		}
	}
	log.Info("alarm sound enabled", "player", cmd[0])
	return audio.NewPlayer(cmd, alert.DefaultTone().WAV()), nil
}

// newAnnouncer builds the speech provider chain and a player for it.
func (a *App) newAnnouncer() (*tts.Announcer, error) {
	provider, err := a.newVoiceProvider()
	if err != nil {
		return nil, err
	}

	cmd := a.config.SoundCommand
	if len(cmd) == 0 {
		if cmd, err = audio.Detect(); err != nil {
			provider.Close()
			return nil, err
		}
	}
	a.voice = provider
	log.Info("voice alerts enabled", "provider", a.config.VoiceProvider, "player", cmd[0])
	return tts.NewAnnouncer(provider, audio.NewPlayer(cmd, nil), a.config.VoiceMessages), nil
}

// newVoiceProvider returns the provider named by VoiceProvider. Auto chains
// every provider that can be built, cloud first.
func (a *App) newVoiceProvider() (tts.Provider, error) {
	var opts []tts.Option
	if a.config.VoiceLanguage != "" {
		opts = append(opts, tts.WithLanguage(a.config.VoiceLanguage))
	}
	if a.config.VoiceName != "" {
		opts = append(opts, tts.WithVoice(a.config.VoiceName))
	}

	openai := func() (tts.Provider, error) {
		return tts.NewOpenAI(append(opts, tts.WithAPIKey(a.config.OpenAIKey))...)
	}
	google := func() (tts.Provider, error) {
		return tts.NewGoogle(context.Background(), append(opts, tts.WithAPIKey(a.config.GoogleKey))...)
	}
	local := func() (tts.Provider, error) {
		return tts.NewLocal(append(opts, tts.WithCommand(a.config.VoiceCommand...))...)
	}

	switch a.config.VoiceProvider {
	case config.VoiceOpenAI:
		return openai()
	case config.VoiceGoogle:
		return google()
	case config.VoiceLocal:
		return local()
	}

	var builders []func() (tts.Provider, error)
	if a.config.OpenAIKey != "" {
		builders = append(builders, openai)
	}
	if a.config.GoogleKey != "" {
		builders = append(builders, google)
	}
	builders = append(builders, local)

	var providers []tts.Provider
	var errs []error
	for _, build := range builders {
		p, err := build()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		providers = append(providers, p)
	}
	switch len(providers) {
	case 0:
		return nil, errors.Join(errs...)
	case 1:
		return providers[0], nil
	}
	return tts.NewChain(providers...)
}

// streamCamera pushes annotated webcam frames to the dashboard.
func (a *App) streamCamera(ctx context.Context) {
	src, err := camera.Open(a.config.Camera)
	if err != nil {
		log.Warn("camera preview unavailable", "error", err)
		a.webServer.AddLog("error", "Camera preview unavailable: "+err.Error())
		return
	}
	defer src.Close()

	log.Info("camera preview started",
		"device", a.config.Camera.Device,
		"width", a.config.Camera.Width,
		"height", a.config.Camera.Height)

	src.Run(ctx, func(jpeg []byte) {
		if _, err := a.webServer.PushCamera(jpeg); err != nil {
			debug.Log("camera frame dropped: %v", err)
		}
	})
}

// Monitor exposes the running monitor.
func (a *App) Monitor() *monitor.Monitor {
	return a.monitor
}

// LastSummary returns the most recently finished session.
func (a *App) LastSummary() (attention.Summary, bool) {
	if a.sessions == nil {
		return attention.Summary{}, false
	}
	return a.sessions.Last()
}

// Shutdown logs the last session's totals.
func (a *App) Shutdown() {
	if sum, ok := a.LastSummary(); ok {
		log.Info("last session",
			"session", sum.ID,
			"duration", sum.Duration.Round(time.Second),
			"distractions", sum.DistractionCount,
			"drowsy_alerts", sum.DrowsyAlertCount,
			"distractions_per_min", sum.DistractionsPerMinute)
	}
	if a.player != nil {
		a.player.Cancel()
	}
	if a.voice != nil {
		a.voice.Close()
	}
	log.Info("goodbye")
}
