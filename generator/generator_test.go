package generator

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/flowfly"
	"github.com/phil-mansfield/flowfly/efficiency"
	"github.com/phil-mansfield/flowfly/sample"
)

func testParticles(t *testing.T, vs Harmonics, mode V1Mode) *ParticleSampler {
	pt, err := PtSampler(BoltzmannSpectrum, 0, 0.13957, 0.44, 0, 10)
	require.NoError(t, err)
	eta, err := EtaSampler(0, -0.9, 0.9)
	require.NoError(t, err)
	ps, err := NewParticleSampler(pt, eta, vs, mode)
	require.NoError(t, err)
	return ps
}

func testConfig(t *testing.T) Config {
	return Config{
		MinMult:   50,
		MaxMult:   60,
		Particles: testParticles(t, Harmonics{0, 0.05}, ConstantV1),
		RP:        flowfly.OpenCuts(),
		POI:       flowfly.OpenCuts(),
	}
}

func TestMultiplicity(t *testing.T) {
	con := testConfig(t)
	con.Efficiency, _ = efficiency.CentralityTable(2)
	gen, err := New(con, sample.NewStream(1, 0))
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		e, err := gen.Next()
		require.NoError(t, err)
		assert.True(t, e.RefMult >= con.MinMult && e.RefMult < con.MaxMult,
			"RefMult = %d", e.RefMult)
		assert.LessOrEqual(t, e.Mult(), e.RefMult)
	}
	assert.Equal(t, 500, gen.Count())

	con = testConfig(t)
	con.MinMult, con.MaxMult = 30, 31
	gen, err = New(con, sample.NewStream(1, 0))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		e, err := gen.Next()
		require.NoError(t, err)
		assert.Equal(t, 30, e.RefMult)
		assert.Equal(t, 30, e.Mult())
		assert.Equal(t, 30, e.NumRPs)
		assert.Equal(t, 30, e.NumPOIs)
	}
}

func TestReactionPlaneUniform(t *testing.T) {
	con := testConfig(t)
	con.MinMult, con.MaxMult = 1, 2
	gen, err := New(con, sample.NewStream(5, 0))
	require.NoError(t, err)

	n := 20000
	cosSum, sinSum := 0.0, 0.0
	for i := 0; i < n; i++ {
		e, err := gen.Next()
		require.NoError(t, err)
		require.True(t, e.TrueAngle >= 0 && e.TrueAngle < 2*math.Pi)
		require.True(t, e.Angle >= 0 && e.Angle < 2*math.Pi)
		cosSum += math.Cos(e.TrueAngle)
		sinSum += math.Sin(e.TrueAngle)
	}
	// The standard error of each mean is 1/sqrt(2n) ~ 0.005.
	assert.InDelta(t, 0, cosSum/float64(n), 0.025)
	assert.InDelta(t, 0, sinSum/float64(n), 0.025)
}

func TestSmearing(t *testing.T) {
	con := testConfig(t)
	con.MinMult, con.MaxMult = 1, 2
	gen, err := New(con, sample.NewStream(9, 0))
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		e, err := gen.Next()
		require.NoError(t, err)
		assert.Equal(t, e.TrueAngle, e.Angle, "zero resolution")
	}

	con.Resolution = ClassResolution(0)
	gen, err = New(con, sample.NewStream(9, 0))
	require.NoError(t, err)
	n, sum2 := 20000, 0.0
	for i := 0; i < n; i++ {
		e, err := gen.Next()
		require.NoError(t, err)
		d := math.Remainder(e.Angle-e.TrueAngle, 2*math.Pi)
		sum2 += d * d
	}
	assert.InDelta(t, 0.628, math.Sqrt(sum2/float64(n)), 0.02)
}

type seq struct {
	Mults  []int
	Angles []float64
	Phis   []float64
}

func runSeq(t *testing.T, seed uint64) seq {
	con := testConfig(t)
	con.Resolution = 0.3
	gen, err := New(con, sample.NewStream(seed, 0))
	require.NoError(t, err)

	s := seq{}
	for i := 0; i < 50; i++ {
		e, err := gen.Next()
		require.NoError(t, err)
		s.Mults = append(s.Mults, e.RefMult)
		s.Angles = append(s.Angles, e.TrueAngle, e.Angle)
		s.Phis = append(s.Phis, e.Particles[0].Phi)
	}
	return s
}

func TestReproducible(t *testing.T) {
	a, b := runSeq(t, 44), runSeq(t, 44)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("runs with the same seed differ (-a +b):\n%s", diff)
	}
	c := runSeq(t, 45)
	assert.NotEqual(t, a.Angles, c.Angles)
}

func TestEfficiencyCut(t *testing.T) {
	con := testConfig(t)
	con.Particles = testParticles(t, Harmonics{}, ConstantV1)
	pt, err := PtSampler(BoltzmannSpectrum, 0, 0.13957, 3, 0, 10)
	require.NoError(t, err)
	eta, err := EtaSampler(0, -0.9, 0.9)
	require.NoError(t, err)
	con.Particles, err = NewParticleSampler(pt, eta, Harmonics{}, ConstantV1)
	require.NoError(t, err)
	con.Efficiency, err = efficiency.NewTable([]efficiency.Entry{{5, 0}})
	require.NoError(t, err)

	gen, err := New(con, sample.NewStream(2, 0))
	require.NoError(t, err)
	kept := 0
	for i := 0; i < 200; i++ {
		e, err := gen.Next()
		require.NoError(t, err)
		for _, p := range e.Particles {
			require.GreaterOrEqual(t, p.Pt, 5.0)
		}
		kept += e.Mult()
	}
	assert.Greater(t, kept, 0)
}

func TestTags(t *testing.T) {
	con := testConfig(t)
	con.RP = &flowfly.Cuts{PtMax: 100, EtaMin: -1, EtaMax: 1, PhiMax: 7,
		UseCharge: true, Charge: 1}
	con.POI = &flowfly.Cuts{PtMax: 100, EtaMin: -1, EtaMax: 1, PhiMax: 7,
		UseCharge: true, Charge: -1}
	gen, err := New(con, sample.NewStream(3, 0))
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		e, err := gen.Next()
		require.NoError(t, err)
		assert.Equal(t, e.Mult(), e.NumRPs+e.NumPOIs)
		for _, p := range e.Particles {
			assert.False(t, p.RP && p.POI)
			assert.Equal(t, p.Charge == 1, p.RP)
		}
	}
}

func TestNTimes(t *testing.T) {
	con := testConfig(t)
	con.NTimes = 2
	gen, err := New(con, sample.NewStream(3, 0))
	require.NoError(t, err)
	e, err := gen.Next()
	require.NoError(t, err)
	assert.Equal(t, 2*e.RefMult, e.Mult())
	assert.Equal(t, e.Particles[0], e.Particles[1])
}

func TestConfigErrors(t *testing.T) {
	mods := []func(*Config){
		func(c *Config) { c.MinMult, c.MaxMult = 10, 10 },
		func(c *Config) { c.MinMult, c.MaxMult = 10, 5 },
		func(c *Config) { c.MinMult, c.MaxMult = 0, 0 },
		func(c *Config) { c.MinMult = -1 },
		func(c *Config) { c.Resolution = -1 },
		func(c *Config) { c.Resolution = math.NaN() },
		func(c *Config) { c.NTimes = -1 },
		func(c *Config) { c.RP = nil },
		func(c *Config) { c.Particles = nil },
	}
	for i, mod := range mods {
		con := testConfig(t)
		mod(&con)
		_, err := New(con, sample.NewStream(1, 0))
		var ce *flowfly.ConfigError
		assert.True(t, errors.As(err, &ce), "%d) %v", i, err)
	}

	pt, _ := PtSampler(BoltzmannSpectrum, 0, 0.13957, 0.44, 0, 10)
	eta, _ := EtaSampler(0, -0.9, 0.9)
	_, err := NewParticleSampler(pt, eta, Harmonics{0, 0.6}, ConstantV1)
	var ce *flowfly.ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "V2", ce.Param)

	_, err = PtSampler(BoltzmannSpectrum, 0, 0.13957, 0, 0, 10)
	assert.Error(t, err)
	_, err = PtSampler(DMesonSpectrum, 5, 0, 0, 0, 10)
	assert.Error(t, err)
}

func TestEtaChargeV1Bound(t *testing.T) {
	pt, err := PtSampler(BoltzmannSpectrum, 0, 0.13957, 0.44, 0, 10)
	require.NoError(t, err)
	wide, err := EtaSampler(0, -5, 2)
	require.NoError(t, err)

	for _, mode := range []V1Mode{EtaChargeV1, EtaChargePtDampedV1} {
		_, err = NewParticleSampler(pt, wide, Harmonics{0.5}, mode)
		var ce *flowfly.ConfigError
		require.True(t, errors.As(err, &ce), "%s: %v", mode, err)
		assert.Equal(t, "V1", ce.Param)

		_, err = NewParticleSampler(pt, wide, Harmonics{0.1}, mode)
		assert.NoError(t, err, mode.String())
	}

	_, err = NewParticleSampler(pt, wide, Harmonics{0.5}, PtDampedV1)
	assert.NoError(t, err)
}

func TestDomainErrorPropagates(t *testing.T) {
	con := testConfig(t)
	con.Particles = testParticles(t, Harmonics{0.1}, ConstantV1)
	// Out of range harmonics can only be reached by bypassing the checks in
	// NewParticleSampler.
	con.Particles.vs[0] = 0.9

	gen, err := New(con, sample.NewStream(1, 0))
	require.NoError(t, err)

	_, err = gen.Next()
	var de *flowfly.DomainError
	require.True(t, errors.As(err, &de), "%v", err)
	assert.Equal(t, "phi", de.Density)
	assert.Equal(t, 0, gen.Count())
}

func TestParse(t *testing.T) {
	m, err := ParseV1Mode("etacharge")
	require.NoError(t, err)
	assert.Equal(t, EtaChargeV1, m)
	_, err = ParseV1Mode("sideways")
	assert.Error(t, err)

	s, err := ParseSpectrum("DMeson")
	require.NoError(t, err)
	assert.Equal(t, DMesonSpectrum, s)
	_, err = ParseSpectrum("Tsallis")
	assert.Error(t, err)
}

func TestV1Modes(t *testing.T) {
	vs := Harmonics{0.1}
	table := []struct {
		mode V1Mode
		v1   float64
	}{
		{ConstantV1, 0.1},
		{PtDampedV1, 0.1 * (1 - 1/2.0)},
		{EtaChargeV1, 0.1 * 0.5 * -1},
		{EtaChargePtDampedV1, 0.1 * 0.5 * -1 * (1 - 1/2.0)},
	}
	for _, test := range table {
		ps := testParticles(t, vs, test.mode)
		assert.InDelta(t, test.v1, ps.V1(1.5, 0.5, -1), 1e-12, test.mode.String())
	}
}
