package mines

import (
	"hash/maphash"
	"math/rand/v2"
)

// NewRand returns a PCG source seeded with seed, or with random state when
// seed is zero.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(
			new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
		))
	}
	return rand.New(rand.NewPCG(seed, seed))
}
