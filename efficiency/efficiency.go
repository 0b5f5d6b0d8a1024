/*
package efficiency simulates detector losses: a transverse momentum
dependent tracking efficiency and azimuthal acceptance holes.
*/
package efficiency

import (
	"math"
	"math/rand/v2"

	"github.com/phil-mansfield/flowfly"
)

// Entry is one step of an efficiency table: particles with a transverse
// momentum below Threshold (and at or above the previous threshold) are kept
// with the given Probability.
type Entry struct {
	Threshold, Probability float64
}

// Table is a step function efficiency, ascending in Threshold.
//
// Particles at or above the last threshold are always accepted. This matches
// the behavior of the tables this package was calibrated from, where the final
// step is never tested.
type Table []Entry

// NewTable checks that entries form a valid table and returns it.
func NewTable(entries []Entry) (Table, error) {
	if len(entries) == 0 {
		return nil, flowfly.Configf("EfficiencyTable", "table has no entries")
	}
	for i, e := range entries {
		if math.IsNaN(e.Threshold) || e.Threshold < 0 {
			return nil, flowfly.Configf(
				"EfficiencyTable", "threshold %g of entry %d is negative",
				e.Threshold, i,
			)
		} else if !(e.Probability >= 0 && e.Probability <= 1) {
			return nil, flowfly.Configf(
				"EfficiencyTable", "probability %g of entry %d not in [0, 1]",
				e.Probability, i,
			)
		} else if i > 0 && e.Threshold <= entries[i-1].Threshold {
			return nil, flowfly.Configf(
				"EfficiencyTable", "thresholds not ascending at entry %d", i,
			)
		}
	}
	return Table(append([]Entry{}, entries...)), nil
}

// Probability returns the probability that a particle with transverse
// momentum pt is kept.
func (t Table) Probability(pt float64) float64 {
	for _, e := range t {
		if pt < e.Threshold {
			return e.Probability
		}
	}
	return 1
}

// Accept decides whether a particle with momentum pt survives. A uniform
// variate is only drawn when pt falls below some threshold.
func (t Table) Accept(pt float64, rng *rand.Rand) bool {
	for _, e := range t {
		if pt < e.Threshold {
			return rng.Float64() < e.Probability
		}
	}
	return true
}

// WindowTable returns a table where particles with ptMin <= pt < ptMax are
// kept with probability p and all others are kept.
func WindowTable(ptMin, ptMax, p float64) (Table, error) {
	if !(ptMin < ptMax) {
		return nil, flowfly.Configf(
			"EfficiencyPtMin", "%g is not below EfficiencyPtMax = %g",
			ptMin, ptMax,
		)
	}
	return NewTable([]Entry{{ptMin, 1}, {ptMax, p}})
}

var centralityTables = [][]Entry{
	{ // 10-30%
		{2, 0}, {3, 0.000767664}, {4, 0.00463984}, {5, 0.0153918},
		{6, 0.0321692}, {7, 0.0528523}, {8, 0.0582403}, {10, 0.123859},
		{12, 0.145762}, {16, 0.16983}, {24, 0.221823}, {36, 0.574282},
		{50, 0.553414},
	},
	{ // 30-50%
		{2, 0}, {3, 0.00219054}, {4, 0.012685}, {5, 0.0190254},
		{6, 0.0351793}, {7, 0.0726777}, {8, 0.0877877}, {10, 0.142911},
		{12, 0.167198}, {16, 0.199494}, {24, 0.250309}, {36, 0.664265},
		{50, 1},
	},
	{ // 60-80%
		{1, 0}, {2, 0.00134291}, {3, 0.0119252}, {4, 0.0249153},
		{5, 0.0467732}, {6, 0.0523987}, {7, 0.110127}, {8, 0.152198},
		{10, 0.188413}, {12, 0.302068}, {16, 0.558807}, {24, 0.653803},
		{50, 1},
	},
}

// CentralityTable returns the built-in D meson efficiency of a centrality
// class.
func CentralityTable(class int) (Table, error) {
	if class < 0 || class >= len(centralityTables) {
		return nil, flowfly.Configf(
			"CentralityClass", "must be in [0, %d), got %d",
			len(centralityTables), class,
		)
	}
	return NewTable(centralityTables[class])
}
