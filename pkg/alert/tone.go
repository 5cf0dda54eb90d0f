package alert

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

// Tone describes a repeated sine beep.
type Tone struct {
	SampleRate int
	Frequency  float64
	Beep       time.Duration
	Gap        time.Duration
	Repeats    int
	Volume     float64 // 0-1
}

// DefaultTone is three 0.5s beeps at 1kHz with 0.1s gaps.
func DefaultTone() Tone {
	return Tone{
		SampleRate: 44100,
		Frequency:  1000,
		Beep:       500 * time.Millisecond,
		Gap:        100 * time.Millisecond,
		Repeats:    3,
		Volume:     1.0,
	}
}

func (t Tone) samples(d time.Duration) int {
	return int(float64(t.SampleRate) * d.Seconds())
}

// PCM renders mono signed 16-bit samples.
func (t Tone) PCM() []int16 {
	beep := t.samples(t.Beep)
	gap := t.samples(t.Gap)

	out := make([]int16, 0, t.Repeats*beep+(t.Repeats-1)*gap)
	for r := 0; r < t.Repeats; r++ {
		if r > 0 {
			out = append(out, make([]int16, gap)...)
		}
		for i := 0; i < beep; i++ {
			v := math.Sin(2 * math.Pi * t.Frequency * float64(i) / float64(t.SampleRate))
			out = append(out, int16(v*t.Volume*math.MaxInt16))
		}
	}
	return out
}

// WAV encodes the tone as a RIFF/WAVE file.
func (t Tone) WAV() []byte {
	return EncodeWAV(t.PCM(), t.SampleRate)
}

// EncodeWAV wraps mono PCM16 samples in a RIFF/WAVE header.
func EncodeWAV(pcm []int16, sampleRate int) []byte {
	dataLen := uint32(len(pcm) * 2)

	var buf bytes.Buffer
	buf.Grow(44 + int(dataLen))

	w := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }
	buf.WriteString("RIFF")
	w(36 + dataLen)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	w(uint32(16))               // chunk size
	w(uint16(1))                // PCM
	w(uint16(1))                // mono
	w(uint32(sampleRate))       // sample rate
	w(uint32(sampleRate * 2))   // byte rate
	w(uint16(2))                // block align
	w(uint16(16))               // bits per sample

	buf.WriteString("data")
	w(dataLen)
	w(pcm)
	return buf.Bytes()
}
