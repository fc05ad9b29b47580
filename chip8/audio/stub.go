//go:build !oto

package audio

// Player is unavailable without the oto build tag.
type Player struct{}

func NewPlayer(beeper *Beeper) (*Player, error) {
	return nil, ErrNotAvailable
}

func (p *Player) SetActive(active bool) {}

func (p *Player) Close() error {
	return nil
}
