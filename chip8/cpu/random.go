package cpu

import "math/rand/v2"

// pcgRandom is the default RND source, a seeded PCG generator.
type pcgRandom struct {
	r *rand.Rand
}

// NewRandom returns a deterministic random source for the given seed.
func NewRandom(seed uint64) Random {
	return &pcgRandom{r: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))}
}

func (p *pcgRandom) Byte() uint8 {
	return uint8(p.r.UintN(256))
}
