/*
package generator creates events 'on the fly': particles with a prescribed
anisotropy around a random reaction plane, filtered through a simple detector
model.
*/
package generator

import (
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/phil-mansfield/flowfly"
	"github.com/phil-mansfield/flowfly/efficiency"
	"github.com/phil-mansfield/flowfly/sample"
)

var resolutions = []float64{0.628, 0.628, 0.942}

// ClassResolution returns the reaction plane resolution, in radians, of a
// centrality class.
func ClassResolution(class int) float64 { return resolutions[class] }

// Config describes an event generator.
type Config struct {
	// Multiplicities are drawn uniformly from [MinMult, MaxMult).
	MinMult, MaxMult int

	Particles *ParticleSampler

	// Nil tables mean a perfect detector.
	Efficiency efficiency.Table
	Acceptance efficiency.Acceptance

	// Resolution is the width of the Gaussian smearing applied to the
	// reaction plane.
	Resolution float64

	// Each kept particle is added NTimes, which introduces non-flow
	// correlations when NTimes > 1. Zero is treated as one.
	NTimes int

	RP, POI flowfly.Selector

	// LogEvery prints a summary every LogEvery events. Zero disables it.
	LogEvery int
}

// CheckInit validates the configuration.
func (con *Config) CheckInit() error {
	if con.MaxMult <= 0 {
		return flowfly.Configf("MaxMult", "must be positive, got %d", con.MaxMult)
	} else if con.MinMult < 0 {
		return flowfly.Configf("MinMult", "must be non-negative, got %d", con.MinMult)
	} else if con.MinMult >= con.MaxMult {
		return flowfly.Configf(
			"MinMult", "%d must be below MaxMult = %d", con.MinMult, con.MaxMult,
		)
	} else if con.Particles == nil {
		return flowfly.Configf("Particles", "no particle sampler given")
	} else if !(con.Resolution >= 0) || math.IsInf(con.Resolution, 0) {
		return flowfly.Configf(
			"Resolution", "must be finite and non-negative, got %g", con.Resolution,
		)
	} else if con.NTimes < 0 {
		return flowfly.Configf("NTimes", "must be positive, got %d", con.NTimes)
	} else if con.RP == nil || con.POI == nil {
		return flowfly.Configf("Cuts", "both RP and POI selections are required")
	}
	return nil
}

// Generator creates events. It is not safe for concurrent use; parallel runs
// use one Generator per random stream.
type Generator struct {
	con    Config
	rng    *rand.Rand
	smear  distuv.Normal
	count  int
	nTimes int
}

// New returns a Generator drawing from rng.
func New(con Config, rng *rand.Rand) (*Generator, error) {
	if err := con.CheckInit(); err != nil {
		return nil, err
	}
	gen := &Generator{
		con: con, rng: rng, nTimes: con.NTimes,
		smear: distuv.Normal{Mu: 0, Sigma: con.Resolution, Src: rng},
	}
	if gen.nTimes == 0 {
		gen.nTimes = 1
	}
	return gen, nil
}

// Count returns the number of events generated so far.
func (gen *Generator) Count() int { return gen.count }

// Next generates the next event. Errors are fatal to the run.
func (gen *Generator) Next() (*flowfly.Event, error) {
	con := &gen.con

	mult := con.MinMult + gen.rng.IntN(con.MaxMult-con.MinMult)
	R := 2 * math.Pi * gen.rng.Float64()

	e := &flowfly.Event{
		Particles: make([]flowfly.Particle, 0, mult*gen.nTimes),
		RefMult:   mult,
		TrueAngle: R,
	}

	for i := 0; i < mult; i++ {
		p, err := con.Particles.Sample(gen.rng, R)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", gen.count, err)
		}

		if con.Efficiency != nil && !con.Efficiency.Accept(p.Pt, gen.rng) {
			continue
		}
		if con.Acceptance != nil && !con.Acceptance.Accept(p.Phi, gen.rng) {
			continue
		}

		p.RP = con.RP.PassesCuts(&p)
		p.POI = con.POI.PassesCuts(&p)
		for n := 0; n < gen.nTimes; n++ {
			e.Add(p)
		}
	}

	gen.smear.Mu = R
	e.Angle = wrapAngle(gen.smear.Rand())

	gen.count++
	if con.LogEvery > 0 && gen.count%con.LogEvery == 0 {
		log.Printf(
			"MC reaction plane angle = %.4f, simulated tracks = %d, "+
				"kept tracks = %d, RP tracks = %d, POI tracks = %d "+
				"(%d events processed)",
			R, mult, e.Mult(), e.NumRPs, e.NumPOIs, gen.count,
		)
	}

	return e, nil
}

// wrapAngle maps phi into [0, 2 pi).
func wrapAngle(phi float64) float64 {
	phi = math.Mod(phi, 2*math.Pi)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	if phi >= 2*math.Pi {
		phi = 0
	}
	return phi
}

// Spectrum selects a transverse momentum distribution.
type Spectrum int

const (
	BoltzmannSpectrum Spectrum = iota
	DMesonSpectrum
	EndSpectrum
)

var spectrumNames = []string{"Boltzmann", "DMeson"}

func (s Spectrum) String() string {
	if s < 0 || s >= EndSpectrum {
		return fmt.Sprintf("Spectrum(%d)", int(s))
	}
	return spectrumNames[s]
}

// ParseSpectrum returns the Spectrum with the given (case-insensitive) name.
func ParseSpectrum(name string) (Spectrum, error) {
	for s := BoltzmannSpectrum; s < EndSpectrum; s++ {
		if strings.EqualFold(s.String(), name) {
			return s, nil
		}
	}
	return 0, flowfly.Configf(
		"PtSpectrum", "'%s' is not one of [%s]",
		name, strings.Join(spectrumNames, " | "),
	)
}

// PtSampler builds a sampler for the given spectrum over [ptMin, ptMax].
// Boltzmann spectra use mass and temperature; D meson spectra use the nuclear
// modification factor of the centrality class.
func PtSampler(
	s Spectrum, class int, mass, temperature, ptMin, ptMax float64,
) (*sample.Sampler, error) {
	switch s {
	case BoltzmannSpectrum:
		if !(temperature > 0) {
			return nil, flowfly.Configf(
				"Temperature", "must be positive, got %g", temperature,
			)
		}
		return sample.New(
			"pt", sample.Boltzmann, []float64{mass, temperature}, ptMin, ptMax, 400,
		)
	case DMesonSpectrum:
		if class < 0 || class >= sample.CentralityClasses {
			return nil, flowfly.Configf(
				"CentralityClass", "must be in [0, %d), got %d",
				sample.CentralityClasses, class,
			)
		}
		return sample.New(
			"pt", sample.DMeson(class), sample.DMesonParams, ptMin, ptMax, 400,
		)
	}
	return nil, flowfly.Configf("PtSpectrum", "unknown spectrum %d", int(s))
}

// EtaSampler builds a sampler for pseudorapidity over [etaMin, etaMax] with
// the density 1 + dip eta^2. A dip of zero gives a flat distribution.
func EtaSampler(dip, etaMin, etaMax float64) (*sample.Sampler, error) {
	return sample.New("eta", sample.EtaDip, []float64{dip}, etaMin, etaMax, 0)
}
