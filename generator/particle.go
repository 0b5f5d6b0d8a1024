package generator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/phil-mansfield/flowfly"
	"github.com/phil-mansfield/flowfly/sample"
)

// MaxFlow is the largest allowed magnitude of any harmonic.
const MaxFlow = 0.5

// Harmonics holds v1 through v6.
type Harmonics [sample.MaxHarmonic]float64

// V1Mode selects how the first harmonic depends on a particle's kinematics.
type V1Mode int

const (
	// ConstantV1 uses v1 as given.
	ConstantV1 V1Mode = iota
	// PtDampedV1 uses v1 (1 - 1/(0.5 + pt)).
	PtDampedV1
	// EtaChargeV1 uses v1 eta q, which produces the charge-odd directed flow
	// seen in heavy ion collisions.
	EtaChargeV1
	// EtaChargePtDampedV1 uses v1 eta q (1 - 1/(0.5 + pt)).
	EtaChargePtDampedV1
	EndV1Mode
)

var v1ModeNames = []string{
	"Constant", "PtDamped", "EtaCharge", "EtaChargePtDamped",
}

func (m V1Mode) String() string {
	if m < 0 || m >= EndV1Mode {
		return fmt.Sprintf("V1Mode(%d)", int(m))
	}
	return v1ModeNames[m]
}

// ParseV1Mode returns the V1Mode with the given (case-insensitive) name.
func ParseV1Mode(name string) (V1Mode, error) {
	for m := ConstantV1; m < EndV1Mode; m++ {
		if strings.EqualFold(m.String(), name) {
			return m, nil
		}
	}
	return 0, flowfly.Configf(
		"V1Mode", "'%s' is not one of [%s]", name, strings.Join(v1ModeNames, " | "),
	)
}

// ParticleSampler draws the kinematics of single particles around a reaction
// plane. The azimuthal density is the only place flow enters the generator.
type ParticleSampler struct {
	pt, eta, phi *sample.Sampler
	vs           Harmonics
	mode         V1Mode
	par          []float64
}

// NewParticleSampler creates a ParticleSampler which draws transverse
// momenta from pt and pseudorapidities from eta.
func NewParticleSampler(
	pt, eta *sample.Sampler, vs Harmonics, mode V1Mode,
) (*ParticleSampler, error) {
	for i, v := range vs {
		if !(math.Abs(v) <= MaxFlow) {
			return nil, flowfly.Configf(
				fmt.Sprintf("V%d", i+1), "|v%d| = %g exceeds %g",
				i+1, math.Abs(v), MaxFlow,
			)
		}
	}
	if mode < 0 || mode >= EndV1Mode {
		return nil, flowfly.Configf("V1Mode", "unknown mode %d", int(mode))
	}
	if mode == EtaChargeV1 || mode == EtaChargePtDampedV1 {
		// |1 - 1/(0.5 + pt)| <= 1 for pt >= 0, so eta alone sets the bound.
		lo, hi := eta.Range()
		etaMax := math.Max(math.Abs(lo), math.Abs(hi))
		if v1 := math.Abs(vs[0]) * etaMax; v1 > MaxFlow {
			return nil, flowfly.Configf(
				"V1", "%s mode reaches |v1| = %g at |eta| = %g, above %g",
				mode, v1, etaMax, MaxFlow,
			)
		}
	}

	ps := &ParticleSampler{
		pt: pt, eta: eta, vs: vs, mode: mode,
		par: make([]float64, len(vs)+1),
	}
	copy(ps.par[1:], vs[:])

	var err error
	ps.phi, err = sample.New("phi", sample.Fourier, ps.par, 0, 2*math.Pi, 0)
	if err != nil {
		return nil, err
	}
	return ps, nil
}

// Clone returns an independent copy of ps for use on another goroutine.
func (ps *ParticleSampler) Clone() (*ParticleSampler, error) {
	pt, err := ps.pt.Clone()
	if err != nil {
		return nil, err
	}
	eta, err := ps.eta.Clone()
	if err != nil {
		return nil, err
	}
	return NewParticleSampler(pt, eta, ps.vs, ps.mode)
}

// Harmonics returns the configured harmonics.
func (ps *ParticleSampler) Harmonics() Harmonics { return ps.vs }

// V1 returns the first harmonic used for a particle with the given
// kinematics.
func (ps *ParticleSampler) V1(pt, eta float64, charge int) float64 {
	v1 := ps.vs[0]
	switch ps.mode {
	case PtDampedV1:
		v1 *= 1 - 1/(0.5+pt)
	case EtaChargeV1:
		v1 *= eta * float64(charge)
	case EtaChargePtDampedV1:
		v1 *= eta * float64(charge) * (1 - 1/(0.5+pt))
	}
	return v1
}

// Sample draws one untagged particle around the reaction plane R.
func (ps *ParticleSampler) Sample(
	rng *rand.Rand, R float64,
) (flowfly.Particle, error) {
	p := flowfly.Particle{}
	var err error

	if p.Pt, err = ps.pt.Sample(rng); err != nil {
		return p, fmt.Errorf("sampling transverse momentum: %w", err)
	}
	if p.Eta, err = ps.eta.Sample(rng); err != nil {
		return p, fmt.Errorf("sampling pseudorapidity: %w", err)
	}
	p.Charge = 1
	if rng.IntN(2) == 0 {
		p.Charge = -1
	}

	ps.phi.SetParam(0, R)
	ps.phi.SetParam(1, ps.V1(p.Pt, p.Eta, p.Charge))
	if p.Phi, err = ps.phi.Sample(rng); err != nil {
		return p, fmt.Errorf("sampling azimuth: %w", err)
	}
	if p.Phi >= 2*math.Pi {
		p.Phi -= 2 * math.Pi
	}

	return p, nil
}
