package plots

import (
	"math"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/flowfly/stats"
)

func testList() *stats.List {
	pt := stats.NewProfile("FlowPro_VPtRP_MCEP", stats.Binning{Min: 0, Max: 4, Bins: 4})
	pt.Fill(0.5, 0.1, 1)
	pt.Fill(2.5, 0.3, 1)
	pt.Fill(2.5, 0.5, 1)

	empty := stats.NewProfile("FlowPro_VetaPOI_MCEP", stats.Binning{Min: -1, Max: 1, Bins: 4})

	h := stats.NewHist("SpreadOfFlow_MCEP", stats.Binning{Min: -1, Max: 1, Bins: 4})
	h.Fill(0.1, 1)

	pe := stats.NewProfile2D("FlowPro_VPtEtaRP_MCEP",
		stats.Binning{Min: 0, Max: 1, Bins: 1}, stats.Binning{Min: 0, Max: 1, Bins: 1})
	pe.Fill(0.5, 0.5, 1, 1)

	l := stats.NewList()
	l.Add(pt, empty, h, pe)
	return l
}

func TestProfileSeries(t *testing.T) {
	s := ProfileSeries(testList().Profile("FlowPro_VPtRP_MCEP"))
	assert.Equal(t, []float64{0.5, 2.5}, s.Xs)
	assert.InDeltaSlice(t, []float64{0.1, 0.4}, s.Ys, 1e-12)
	assert.InDelta(t, 0.1/math.Sqrt(2), s.Errs[1], 1e-12)
	assert.Equal(t, "pT [GeV]", s.XLabel)
}

func TestCollect(t *testing.T) {
	series := Collect(testList())
	require.Len(t, series, 2)
	assert.Equal(t, "FlowPro_VPtRP_MCEP", series[0].Name)
	assert.Equal(t, "SpreadOfFlow_MCEP", series[1].Name)
	assert.Equal(t, 4, series[1].Len())
	assert.Equal(t, "Events", series[1].YLabel)
}

func TestXLabel(t *testing.T) {
	table := []struct {
		name, label string
	}{
		{"FlowPro_VsM_MCEP", "M"},
		{"FlowPro_VetaRP_SubPt2_MCEP", "eta"},
		{"PairCorrelatorVsPtSum_Cos", "(pT1 + pT2) / 2 [GeV]"},
		{"PairCorrelatorVsPtDiff_Sin", "|pT1 - pT2| [GeV]"},
		{"PairCorrelatorVsM_Cos", "M"},
		{"Control_RP_MCEP", "psi [rad]"},
		{"PairCorrelator_Cos", "x"},
	}
	for _, test := range table {
		assert.Equal(t, test.label, xLabel(test.name), test.name)
	}
}

func TestWritePNG(t *testing.T) {
	dir := path.Join(t.TempDir(), "plots")
	require.NoError(t, Write(dir, "png", testList()))

	for _, name := range []string{"FlowPro_VPtRP_MCEP", "SpreadOfFlow_MCEP"} {
		info, err := os.Stat(path.Join(dir, name+".png"))
		require.NoError(t, err, name)
		assert.True(t, info.Size() > 0)
	}
	_, err := os.Stat(path.Join(dir, "FlowPro_VetaPOI_MCEP.png"))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, Write(dir, "gif", testList()))
}
