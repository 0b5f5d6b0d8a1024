package mcep

import (
	"math"

	"github.com/phil-mansfield/flowfly"
	"github.com/phil-mansfield/flowfly/stats"
)

// CorrelatorConfig describes a Correlator.
type CorrelatorConfig struct {
	// The correlator is <cos(M phi_pair - K psi)>, where
	// phi_pair = X phi_1 + (1 - X) phi_2.
	M, K int
	X    float64

	// Mult bins pairs by the number of RPs in their event.
	Mult stats.Binning
	// Pt bins pairs by both the mean and the absolute difference of their
	// transverse momenta.
	Pt stats.Binning
}

// DefaultCorrelatorConfig returns the standard <cos(2 phi_pair - 2 psi)>
// correlator of the pair midpoint.
func DefaultCorrelatorConfig() CorrelatorConfig {
	return CorrelatorConfig{
		M: 2, K: 2, X: 0.5,
		Mult: stats.Binning{Min: 0, Max: 10000, Bins: 10000},
		Pt:   stats.Binning{Min: 0, Max: 10, Bins: 100},
	}
}

// CheckInit validates the configuration.
func (con *CorrelatorConfig) CheckInit() error {
	if !(con.X >= 0 && con.X <= 1) {
		return flowfly.Configf("MixedX", "%g is not in [0, 1]", con.X)
	} else if err := con.Mult.CheckInit("MixedMult"); err != nil {
		return flowfly.Configf("MixedMult", "%s", err.Error())
	} else if err := con.Pt.CheckInit("Pt"); err != nil {
		return flowfly.Configf("Pt", "%s", err.Error())
	}
	return nil
}

// Correlator accumulates mixed harmonic pair correlators. Every unordered
// pair of RPs is visited once, so each event costs O(N_RP^2).
type Correlator struct {
	con CorrelatorConfig

	// Index 0 is cos, index 1 is sin.
	global, vsM, vsPtSum, vsPtDiff [2]*stats.Profile
	settings                       *stats.Profile

	out      *stats.List
	rps      []flowfly.Particle
	pairs    int64
	finished bool
}

// NewCorrelator creates an empty Correlator.
func NewCorrelator(con CorrelatorConfig) (*Correlator, error) {
	if err := con.CheckInit(); err != nil {
		return nil, err
	}

	c := &Correlator{
		con: con,
		settings: stats.NewProfile(
			"MixedHarmonicsSettings", stats.Binning{Min: 0, Max: 3, Bins: 3},
		),
		out: stats.NewList(),
	}

	for i, part := range []string{"Cos", "Sin"} {
		c.global[i] = stats.NewProfile("PairCorrelator_"+part, unitBin)
		c.vsM[i] = stats.NewProfile("PairCorrelatorVsM_"+part, con.Mult)
		c.vsPtSum[i] = stats.NewProfile("PairCorrelatorVsPtSum_"+part, con.Pt)
		c.vsPtDiff[i] = stats.NewProfile("PairCorrelatorVsPtDiff_"+part, con.Pt)
	}

	c.settings.Fill(0.5, float64(con.M), 1)
	c.settings.Fill(1.5, float64(con.K), 1)
	c.settings.Fill(2.5, con.X, 1)

	c.out.Add(c.settings)
	for i := 0; i < 2; i++ {
		c.out.Add(c.global[i], c.vsM[i], c.vsPtSum[i], c.vsPtDiff[i])
	}

	return c, nil
}

// Config returns the configuration the Correlator was made with.
func (c *Correlator) Config() CorrelatorConfig { return c.con }

// PairAngle returns x phi1 + (1 - x) phi2.
func PairAngle(x, phi1, phi2 float64) float64 {
	return x*phi1 + (1-x)*phi2
}

// Make adds every RP pair of an event to the accumulated statistics.
func (c *Correlator) Make(e *flowfly.Event) {
	if c.finished {
		panic("Internal inconsistency: Make called on a finished Correlator.")
	}

	c.rps = c.rps[:0]
	for i := range e.Particles {
		if e.Particles[i].RP {
			c.rps = append(c.rps, e.Particles[i])
		}
	}

	m, k, x := float64(c.con.M), float64(c.con.K), c.con.X
	kPsi := k * e.Angle
	nRP := float64(len(c.rps))

	for i := range c.rps {
		pi := &c.rps[i]
		for j := i + 1; j < len(c.rps); j++ {
			pj := &c.rps[j]

			arg := m*PairAngle(x, pi.Phi, pj.Phi) - kPsi
			sin, cos := math.Sincos(arg)
			ptSum := 0.5 * (pi.Pt + pj.Pt)
			ptDiff := math.Abs(pi.Pt - pj.Pt)

			for cs, v := range [2]float64{cos, sin} {
				c.global[cs].Fill(0, v, 1)
				c.vsM[cs].Fill(nRP, v, 1)
				c.vsPtSum[cs].Fill(ptSum, v, 1)
				c.vsPtDiff[cs].Fill(ptDiff, v, 1)
			}
			c.pairs++
		}
	}
}

// Finish closes accumulation. Calling Make afterwards panics.
func (c *Correlator) Finish() { c.finished = true }

// Pairs returns the number of pairs accumulated so far.
func (c *Correlator) Pairs() int64 { return c.pairs }

// Output returns every accumulated profile by name.
func (c *Correlator) Output() *stats.List { return c.out }

// Correlation returns the global <cos> and <sin> pair correlators.
func (c *Correlator) Correlation() (cos, sin float64) {
	return c.global[0].Mean(0), c.global[1].Mean(0)
}

// Merge adds the statistics of o, which must be configured identically.
func (c *Correlator) Merge(o *Correlator) {
	if c.con.M != o.con.M || c.con.K != o.con.K || c.con.X != o.con.X {
		panic("Internal inconsistency: merging differently configured " +
			"Correlators.")
	}
	c.out.Merge(o.out)
	c.pairs += o.pairs
}
