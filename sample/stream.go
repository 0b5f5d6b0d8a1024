package sample

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/google/uuid"
)

// NewStream returns the random stream with the given index for a run seed.
// Streams with different indices are independent, so shards of a parallel
// run can each own one and still reproduce the same run.
func NewStream(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// ResolveSeed returns seed unless it is zero, which requests a seed that is
// unique in space and time.
func ResolveSeed(seed uint64) uint64 {
	for seed == 0 {
		seed = EntropySeed()
	}
	return seed
}

// EntropySeed derives a seed from a random UUID.
func EntropySeed() uint64 {
	id := uuid.New()
	return binary.LittleEndian.Uint64(id[:8]) ^ binary.LittleEndian.Uint64(id[8:])
}
