//go:build oto

package audio

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Player streams a Beeper to the system audio device.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
	beeper *Beeper
	mutex  sync.Mutex
}

// NewPlayer opens the audio device and starts streaming the beeper.
// The tone is silent until SetActive(true) is called.
func NewPlayer(beeper *Beeper) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	p := &Player{ctx: ctx, beeper: beeper}
	p.player = ctx.NewPlayer(beeper)
	p.player.Play()

	slog.Info("Audio output started", "sample_rate", SampleRate, "tone_hz", ToneFrequency)
	return p, nil
}

func (p *Player) SetActive(active bool) {
	p.beeper.SetActive(active)
}

func (p *Player) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	return err
}
