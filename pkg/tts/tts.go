// Package tts speaks alert messages.
//
// Every provider returns a complete WAV clip so the result can be handed to
// any local audio player. Local drives a speech engine installed on the
// machine (espeak-ng, espeak, say, pico2wave). OpenAI and Google call cloud
// text-to-speech APIs. Chain tries providers in order, so a cloud voice can
// fall back to the local engine when offline.
//
// Example usage:
//
//	provider, _ := tts.NewLocal()
//	defer provider.Close()
//
//	result, _ := provider.Synthesize(ctx, "Warning! Pay attention!")
//	// result.Audio is a RIFF/WAVE file
package tts

import (
	"bytes"
	"context"
)

// Provider defines the TTS provider interface.
type Provider interface {
	// Synthesize converts text to a WAV clip.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Health checks that the provider can be used (engine installed,
	// credentials accepted).
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// AudioResult is a complete synthesis result.
type AudioResult struct {
	// Audio is a RIFF/WAVE file.
	Audio []byte

	// Provider names the provider that produced the clip.
	Provider string

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the time the synthesis took.
	LatencyMs int64
}

// IsWAV reports whether b starts with a RIFF/WAVE header.
func IsWAV(b []byte) bool {
	return len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WAVE"))
}
