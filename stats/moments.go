/*
package stats contains the binned running statistics filled by flow
analyses: profiles (per bin means with errors) and histograms. Every type can
be merged with an identically binned copy, so independent workers can fill
their own and combine them at the end of a run.
*/
package stats

import (
	"math"
)

// Moments are the weighted running sums of a single bin.
type Moments struct {
	N             int64
	SumW, SumW2   float64
	SumWY, SumWY2 float64
}

// Fill adds the value y with weight w.
func (m *Moments) Fill(y, w float64) {
	m.N++
	m.SumW += w
	m.SumW2 += w * w
	m.SumWY += w * y
	m.SumWY2 += w * y * y
}

// Add adds the sums of o to m.
func (m *Moments) Add(o *Moments) {
	m.N += o.N
	m.SumW += o.SumW
	m.SumW2 += o.SumW2
	m.SumWY += o.SumWY
	m.SumWY2 += o.SumWY2
}

// Entries returns the number of fills.
func (m Moments) Entries() int64 { return m.N }

// EffectiveEntries returns (sum w)^2 / sum w^2.
func (m Moments) EffectiveEntries() float64 {
	if m.SumW2 == 0 {
		return 0
	}
	return m.SumW * m.SumW / m.SumW2
}

// Mean returns the weighted mean, or NaN for an empty bin.
func (m Moments) Mean() float64 {
	if m.SumW == 0 {
		return math.NaN()
	}
	return m.SumWY / m.SumW
}

// Spread returns the weighted standard deviation, or NaN for an empty bin.
func (m Moments) Spread() float64 {
	if m.SumW == 0 {
		return math.NaN()
	}
	mean := m.SumWY / m.SumW
	v := m.SumWY2/m.SumW - mean*mean
	if v < 0 {
		v = 0
	}
	return math.Sqrt(v)
}

// Error returns the error on the mean, or NaN for an empty bin.
func (m Moments) Error() float64 {
	neff := m.EffectiveEntries()
	if neff == 0 {
		return math.NaN()
	}
	return m.Spread() / math.Sqrt(neff)
}
