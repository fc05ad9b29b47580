// Package audio generates the single tone a CHIP-8 buzzer can play.
package audio

import (
	"encoding/binary"
	"sync/atomic"
)

const (
	// SampleRate is the output rate of the generated samples.
	SampleRate = 44100
	// ToneFrequency is the pitch of the buzzer.
	ToneFrequency = 440
	// Amplitude of the square wave, about a quarter of full scale.
	Amplitude = 8000

	bytesPerSample = 2
)

// Beeper produces a square wave while active and silence otherwise.
// SetActive may be called from the emulation loop while the audio device
// reads samples on its own goroutine.
type Beeper struct {
	active atomic.Bool
	phase  int
	period int
}

func NewBeeper() *Beeper {
	return &Beeper{period: SampleRate / ToneFrequency}
}

// SetActive gates the tone, typically with the sound timer state.
func (b *Beeper) SetActive(active bool) {
	b.active.Store(active)
}

func (b *Beeper) Active() bool {
	return b.active.Load()
}

// GetSamples fills buf with the next samples. The wave phase advances
// even when silent so the tone restarts cleanly.
func (b *Beeper) GetSamples(buf []int16) {
	active := b.active.Load()
	half := b.period / 2

	for i := range buf {
		switch {
		case !active:
			buf[i] = 0
		case b.phase < half:
			buf[i] = Amplitude
		default:
			buf[i] = -Amplitude
		}
		b.phase = (b.phase + 1) % b.period
	}
}

// Read implements io.Reader, producing mono signed 16-bit little endian samples.
func (b *Beeper) Read(p []byte) (int, error) {
	n := len(p) / bytesPerSample
	samples := make([]int16, n)
	b.GetSamples(samples)

	for i, s := range samples {
		binary.LittleEndian.PutUint16(p[i*bytesPerSample:], uint16(s))
	}
	// a trailing odd byte is padded with silence
	for i := n * bytesPerSample; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}
