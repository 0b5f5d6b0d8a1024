package stats

import (
	"fmt"
	"math"
)

// Hist is a weighted one dimensional histogram. Each bin keeps the Moments
// of the values which fell into it, so a bin's count is its SumW.
type Hist struct {
	name        string
	X           Binning
	bins        []Moments
	under, over Moments
}

// NewHist creates an empty histogram.
func NewHist(name string, x Binning) *Hist {
	if err := x.CheckInit(name); err != nil {
		panic(err.Error())
	}
	return &Hist{name: name, X: x, bins: make([]Moments, x.Bins)}
}

func (h *Hist) Name() string { return h.name }
func (h *Hist) Kind() string { return "Hist" }

// Fill adds x with weight w.
func (h *Hist) Fill(x, w float64) {
	i := h.X.Index(x)
	switch {
	case i >= 0:
		h.bins[i].Fill(x, w)
	case x < h.X.Min:
		h.under.Fill(x, w)
	default:
		h.over.Fill(x, w)
	}
}

// Bin returns the moments of bin i.
func (h *Hist) Bin(i int) *Moments { return &h.bins[i] }

// UnderflowBin and OverflowBin return the moments of the values outside of
// the binning.
func (h *Hist) UnderflowBin() *Moments { return &h.under }
func (h *Hist) OverflowBin() *Moments  { return &h.over }

// Count returns the summed weight of bin i.
func (h *Hist) Count(i int) float64 { return h.bins[i].SumW }

// CountError returns the statistical error on the content of bin i.
func (h *Hist) CountError(i int) float64 { return math.Sqrt(h.bins[i].SumW2) }

// Underflow and Overflow return the weight outside of the binning.
func (h *Hist) Underflow() float64 { return h.under.SumW }
func (h *Hist) Overflow() float64  { return h.over.SumW }

// Entries returns the number of fills, including out of range ones.
func (h *Hist) Entries() int64 {
	n := h.under.N + h.over.N
	for i := range h.bins {
		n += h.bins[i].N
	}
	return n
}

func (h *Hist) inRange() Moments {
	m := Moments{}
	for i := range h.bins {
		m.Add(&h.bins[i])
	}
	return m
}

// Mean returns the mean of the in-range fills, or NaN if there are none.
func (h *Hist) Mean() float64 { return h.inRange().Mean() }

// StdDev returns the standard deviation of the in-range fills, or NaN.
func (h *Hist) StdDev() float64 { return h.inRange().Spread() }

// Merge adds the contents of o, which must have the same binning.
func (h *Hist) Merge(o *Hist) {
	if h.X != o.X {
		panic(fmt.Sprintf(
			"Internal inconsistency: merging histogram '%s' binned as %v "+
				"with '%s' binned as %v.", h.name, h.X, o.name, o.X,
		))
	}
	for i := range h.bins {
		h.bins[i].Add(&o.bins[i])
	}
	h.under.Add(&o.under)
	h.over.Add(&o.over)
}
