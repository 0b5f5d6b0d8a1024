package efficiency

import (
	"math/rand/v2"

	"github.com/phil-mansfield/flowfly"
)

// Sector is an azimuthal region [PhiMin, PhiMax) in radians where particles
// are only kept with the given Probability.
type Sector struct {
	PhiMin, PhiMax, Probability float64
}

// Acceptance is a set of non-uniform sectors. Particles outside every sector
// are kept.
type Acceptance []Sector

// NewAcceptance checks the sectors and returns them as an Acceptance.
// Sectors with PhiMin == PhiMax are dropped, so unused sectors can be left at
// zero.
func NewAcceptance(sectors ...Sector) (Acceptance, error) {
	acc := Acceptance{}
	for i, s := range sectors {
		if s.PhiMin == s.PhiMax {
			continue
		} else if s.PhiMin > s.PhiMax {
			return nil, flowfly.Configf(
				"SectorPhiMin", "sector %d starts at %g after it ends at %g",
				i+1, s.PhiMin, s.PhiMax,
			)
		} else if !(s.Probability >= 0 && s.Probability <= 1) {
			return nil, flowfly.Configf(
				"SectorProbability", "sector %d has probability %g",
				i+1, s.Probability,
			)
		}
		acc = append(acc, s)
	}
	return acc, nil
}

// Accept decides whether a particle emitted at phi is seen by the detector.
func (acc Acceptance) Accept(phi float64, rng *rand.Rand) bool {
	for _, s := range acc {
		if phi >= s.PhiMin && phi < s.PhiMax {
			return rng.Float64() < s.Probability
		}
	}
	return true
}
