package io

import (
	"errors"
	"math"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/flowfly"
	"github.com/phil-mansfield/flowfly/efficiency"
	"github.com/phil-mansfield/flowfly/stats"
)

func TestExampleRunFile(t *testing.T) {
	wrap, err := ReadRunString(ExampleRunFile)
	require.NoError(t, err)

	gen := &wrap.Generator
	assert.Equal(t, 10000, gen.Events)
	assert.Equal(t, 500, gen.MinMult)
	assert.Equal(t, 501, gen.MaxMult)
	assert.Equal(t, 0.05, gen.V2)
	assert.Equal(t, "Boltzmann", gen.PtSpectrum)
	assert.Equal(t, "png", wrap.Output.PlotFormat)
	assert.Nil(t, wrap.CorrelatorConfig())

	con, err := wrap.GeneratorConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.628, con.Resolution)
	assert.Nil(t, con.Efficiency)
	assert.Nil(t, con.Acceptance)
	assert.Equal(t, 100, con.LogEvery)
}

const testRunFile = `[Generator]
Events = 20
Seed = 7
MinMult = 10
MaxMult = 20
V1 = 0.1
V2 = 0.2
V1Mode = EtaCharge
CentralityClass = 2
EtaDip = true
UniformEfficiency = false
EfficiencyPtMin = 1
EfficiencyPtMax = 2
EfficiencyProbability = 0.25
UniformAcceptance = false
Sector1PhiMin = 90
Sector1PhiMax = 180
Sector1Probability = 0.5

[Analysis]
Harmonic = 3
PtCutOff = 1
PtCutOff = 3
EvaluateMixedHarmonics = true
MixedX = 0.25

[Cuts "RP"]
PtMax = 5
PhiMax = 180
UseCharge = true
Charge = -1

[Output]
Database = flow.db
PlotFormat = pyplot`

func TestReadRunConfig(t *testing.T) {
	dir := t.TempDir()
	fname := path.Join(dir, "run.cfg")
	require.NoError(t, os.WriteFile(fname, []byte(testRunFile), 0644))

	wrap, err := ReadRunConfig(fname)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), wrap.Seed())
	assert.True(t, wrap.Output.ValidDatabase())
	assert.False(t, wrap.Output.ValidSummary())

	rp, poi := wrap.RPCuts(), wrap.POICuts()
	assert.Equal(t, 5.0, rp.PtMax)
	assert.Equal(t, -1.0, rp.EtaMin)
	assert.InDelta(t, math.Pi, rp.PhiMax, 1e-12)
	assert.True(t, rp.UseCharge)
	assert.Equal(t, -1, rp.Charge)
	assert.Equal(t, flowfly.OpenCuts(), poi)

	est := wrap.EstimatorConfig()
	assert.Equal(t, 3, est.Harmonic)
	assert.Equal(t, []float64{1, 3}, est.PtCutOffs)
	assert.Equal(t, stats.Binning{Min: -1, Max: 1, Bins: 1000}, est.Spread)

	corr := wrap.CorrelatorConfig()
	require.NotNil(t, corr)
	assert.Equal(t, 0.25, corr.X)
	assert.Equal(t, 2, corr.M)

	con, err := wrap.GeneratorConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.942, con.Resolution)
	assert.Equal(t, efficiency.Table{{1, 1}, {2, 0.25}}, con.Efficiency)
	require.Len(t, con.Acceptance, 1)
	assert.InDelta(t, math.Pi/2, con.Acceptance[0].PhiMin, 1e-12)
	assert.Equal(t, 0.2, con.Particles.Harmonics()[1])
}

func TestEfficiencyTableSources(t *testing.T) {
	wrap := DefaultRunWrapper()
	wrap.Generator.UniformEfficiency = false
	wrap.Generator.CentralityClass = 1
	tab, err := wrap.EfficiencyTable()
	require.NoError(t, err)
	ref, _ := efficiency.CentralityTable(1)
	assert.Equal(t, ref, tab)

	fname := path.Join(t.TempDir(), "eff.txt")
	require.NoError(t, os.WriteFile(fname, []byte("1 0.5\n2 0.75\n"), 0644))
	wrap.Generator.EfficiencyFile = fname
	tab, err = wrap.EfficiencyTable()
	require.NoError(t, err)
	assert.Equal(t, efficiency.Table{{1, 0.5}, {2, 0.75}}, tab)
}

func TestMissingCutsAcceptEverything(t *testing.T) {
	wrap, err := ReadRunString("[Generator]\nEvents = 10\nMinMult = 5\n" +
		"MaxMult = 6\nPtSpectrum = DMeson\nPtMax = 50")
	require.NoError(t, err)

	p := &flowfly.Particle{Pt: 20, Eta: 0.5, Phi: 1, Charge: -1}
	assert.True(t, wrap.RPCuts().PassesCuts(p))
	assert.True(t, wrap.POICuts().PassesCuts(p))
	assert.Equal(t, flowfly.OpenCuts(), wrap.RPCuts())

	gen, err := wrap.GeneratorConfig()
	require.NoError(t, err)
	assert.True(t, gen.RP.PassesCuts(p))
}

func TestCutsDefaults(t *testing.T) {
	wrap, err := ReadRunString("[Generator]\nEvents = 10\nMaxMult = 6\n" +
		"[Cuts \"POI\"]\nEtaMax = 0.5\n" +
		"[default-Cuts]\nPtMax = 4\n" +
		"[Cuts \"RP\"]\n")
	require.NoError(t, err)

	rp, poi := wrap.RPCuts(), wrap.POICuts()
	assert.Equal(t, 4.0, rp.PtMax)
	assert.Equal(t, -1.0, rp.EtaMin)
	assert.Equal(t, 1.0, rp.EtaMax)
	assert.Equal(t, 4.0, poi.PtMax)
	assert.Equal(t, 0.5, poi.EtaMax)
	assert.InDelta(t, 2*math.Pi, poi.PhiMax, 1e-12)
	assert.Len(t, wrap.Cuts, 2)
}

func TestRunConfigErrors(t *testing.T) {
	table := []struct {
		param, text string
	}{
		{"MinMult", "[Generator]\nEvents = 1\nMinMult = 5\nMaxMult = 5"},
		{"Events", "[Generator]\nMinMult = 1\nMaxMult = 5"},
		{"V2", "[Generator]\nEvents = 1\nMaxMult = 5\nV2 = 0.7"},
		{"V1Mode", "[Generator]\nEvents = 1\nMaxMult = 5\nV1Mode = Sideways"},
		{"CentralityClass", "[Generator]\nEvents = 1\nMaxMult = 5\nCentralityClass = 3"},
		{"PtCutOff", "[Generator]\nEvents = 1\nMaxMult = 5\n[Analysis]\nPtCutOff = 1\nPtCutOff = 2\nPtCutOff = 3"},
		{"PtCutOff", "[Generator]\nEvents = 1\nMaxMult = 5\n[Analysis]\nPtCutOff = 2\nPtCutOff = 1"},
		{"MixedX", "[Generator]\nEvents = 1\nMaxMult = 5\n[Analysis]\nMixedX = 2"},
		{"Cuts", "[Generator]\nEvents = 1\nMaxMult = 5\n[Cuts \"Foo\"]\nPtMax = 1"},
		{"Charge", "[Generator]\nEvents = 1\nMaxMult = 5\n[Cuts \"RP\"]\nUseCharge = true\nCharge = 0"},
		{"PlotFormat", "[Generator]\nEvents = 1\nMaxMult = 5\n[Output]\nPlotFormat = gif"},
	}

	for _, test := range table {
		_, err := ReadRunString(test.text)
		var ce *flowfly.ConfigError
		require.True(t, errors.As(err, &ce), "%s: %v", test.param, err)
		assert.Equal(t, test.param, ce.Param)
	}

	_, err := ReadRunString("[Generator]\nNotAValue = 3")
	assert.Error(t, err)

	wrap, err := ReadRunString("[Generator]\nEvents = 1\nMaxMult = 5\n" +
		"V1 = 0.4\nV1Mode = EtaCharge\nEtaMin = -2\nEtaMax = 2")
	require.NoError(t, err)
	_, err = wrap.GeneratorConfig()
	var ce *flowfly.ConfigError
	require.True(t, errors.As(err, &ce), "%v", err)
	assert.Equal(t, "V1", ce.Param)
}

func testList() *stats.List {
	p := stats.NewProfile("FlowPro_V_MCEP", stats.Binning{Min: 0, Max: 1, Bins: 1})
	p.Fill(0, 0.1, 1)
	p.Fill(0, 0.3, 1)
	p.Fill(5, 1, 1)

	pt := stats.NewProfile("FlowPro_VPtRP_MCEP", stats.Binning{Min: 0, Max: 2, Bins: 4})
	pt.Fill(0.1, 0.5, 1)
	pt.Fill(-1, 2, 1)

	pe := stats.NewProfile2D("FlowPro_VPtEtaRP_MCEP",
		stats.Binning{Min: 0, Max: 2, Bins: 2}, stats.Binning{Min: -1, Max: 1, Bins: 2})
	pe.Fill(0.5, 0.5, 1, 1)

	h := stats.NewHist("SpreadOfFlow_MCEP", stats.Binning{Min: -1, Max: 1, Bins: 4})
	h.Fill(0.2, 1)
	h.Fill(-3, 1)
	h.Fill(2, 2)

	l := stats.NewList()
	l.Add(p, pt, pe, h)
	return l
}

func TestDatabase(t *testing.T) {
	fname := path.Join(t.TempDir(), "flow.db")
	l := testList()
	info := NewRunInfo(math.MaxUint64, 3, 2, 2)
	require.NoError(t, WriteDatabase(fname, info, l))

	second := NewRunInfo(1, 3, 2, 2)
	require.NoError(t, WriteDatabase(fname, second, l))

	db, err := OpenDatabase(fname)
	require.NoError(t, err)
	defer db.Close()

	ids, err := RunIDs(db)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{info.ID, second.ID}, ids)

	var seed string
	require.NoError(t, db.QueryRow(
		"SELECT seed FROM runs WHERE run_id = ?", info.ID).Scan(&seed))
	assert.Equal(t, "18446744073709551615", seed)

	for _, name := range []string{"FlowPro_V_MCEP", "FlowPro_VPtRP_MCEP"} {
		want := l.Profile(name)
		got, err := ReadProfile(db, info.ID, name)
		require.NoError(t, err, name)
		assert.Equal(t, want.X, got.X)
		for i := 0; i < want.X.Bins; i++ {
			assert.Equal(t, *want.Bin(i), *got.Bin(i), "%s bin %d", name, i)
		}
		assert.Equal(t, *want.Underflow(), *got.Underflow())
		assert.Equal(t, *want.Overflow(), *got.Overflow())
	}

	var nulls int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM bins WHERE run_id = ? AND name = ?
		 AND mean IS NULL`, info.ID, "FlowPro_VPtRP_MCEP").Scan(&nulls))
	assert.Equal(t, 4, nulls)

	want := l.Hist("SpreadOfFlow_MCEP")
	got, err := ReadHist(db, info.ID, "SpreadOfFlow_MCEP")
	require.NoError(t, err)
	assert.Equal(t, want.X, got.X)
	assert.Equal(t, int64(3), got.Entries())
	assert.Equal(t, 1.0, got.Underflow())
	assert.Equal(t, 2.0, got.Overflow())
	for i := 0; i < want.X.Bins; i++ {
		assert.Equal(t, *want.Bin(i), *got.Bin(i), "hist bin %d", i)
	}
	assert.InDelta(t, 0.2, got.Mean(), 1e-12)

	_, err = ReadProfile(db, info.ID, "SpreadOfFlow_MCEP")
	assert.Error(t, err)
	_, err = ReadHist(db, info.ID, "FlowPro_V_MCEP")
	assert.Error(t, err)
	_, err = ReadProfile(db, info.ID, "Missing")
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	fname := path.Join(t.TempDir(), "flow.json")
	info := NewRunInfo(11, 3, 1, 2)
	require.NoError(t, WriteSummary(fname, info, testList()))

	sum, err := ReadSummary(fname)
	require.NoError(t, err)
	assert.Equal(t, info.ID, sum.RunID)
	assert.Equal(t, uint64(11), sum.Seed)
	require.NotNil(t, sum.Flow)
	assert.InDelta(t, 0.2, *sum.Flow, 1e-12)
	require.NotNil(t, sum.FlowError)
	assert.InDelta(t, 0.1/math.Sqrt(2), *sum.FlowError, 1e-12)

	require.Len(t, sum.Outputs, 4)
	pt := sum.Outputs[1]
	assert.Equal(t, "FlowPro_VPtRP_MCEP", pt.Name)
	assert.Equal(t, int64(1), pt.Entries)
	require.NotNil(t, pt.Values[0])
	assert.Equal(t, 0.5, *pt.Values[0])
	assert.Nil(t, pt.Values[1])
	assert.Equal(t, []float64{0.25, 0.75, 1.25, 1.75}, pt.Centers)

	assert.Equal(t, "Profile2D", sum.Outputs[2].Kind)
	assert.Equal(t, int64(1), sum.Outputs[2].Entries)
	assert.Equal(t, int64(3), sum.Outputs[3].Entries)
}
