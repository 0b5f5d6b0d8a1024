package flowfly

import (
	"math"
)

// Selector decides whether a particle belongs to a selection such as the
// reference particles or the particles of interest.
type Selector interface {
	PassesCuts(p *Particle) bool
}

// Cuts is a kinematic window. All intervals are closed. If UseCharge is set,
// only particles with the given Charge pass.
type Cuts struct {
	PtMin, PtMax   float64
	EtaMin, EtaMax float64
	PhiMin, PhiMax float64 // Radians.

	UseCharge bool
	Charge    int
}

var _ Selector = &Cuts{}

// OpenCuts returns a window which every particle passes.
func OpenCuts() *Cuts {
	return &Cuts{
		PtMin: 0, PtMax: math.Inf(+1),
		EtaMin: math.Inf(-1), EtaMax: math.Inf(+1),
		PhiMin: 0, PhiMax: 2 * math.Pi,
	}
}

// PassesCuts returns true if p lies inside the window.
func (c *Cuts) PassesCuts(p *Particle) bool {
	if p.Pt < c.PtMin || p.Pt > c.PtMax {
		return false
	} else if p.Eta < c.EtaMin || p.Eta > c.EtaMax {
		return false
	} else if p.Phi < c.PhiMin || p.Phi > c.PhiMax {
		return false
	}
	return !c.UseCharge || p.Charge == c.Charge
}
