package stats

import (
	"fmt"
	"math"
)

// Binning is a set of uniformly spaced bins covering [Min, Max).
type Binning struct {
	Min, Max float64
	Bins     int
}

// CheckInit reports whether the binning is usable. name is used in the
// error message.
func (b Binning) CheckInit(name string) error {
	if b.Bins <= 0 {
		return fmt.Errorf("%s must have a positive number of bins, not %d",
			name, b.Bins)
	} else if !(b.Min < b.Max) || math.IsInf(b.Min, 0) || math.IsInf(b.Max, 0) {
		return fmt.Errorf("%s range [%g, %g) is empty or unbounded",
			name, b.Min, b.Max)
	}
	return nil
}

// Width returns the width of a single bin.
func (b Binning) Width() float64 { return (b.Max - b.Min) / float64(b.Bins) }

// Index returns the bin containing x, or -1 if x is outside of the binning.
func (b Binning) Index(x float64) int {
	if !(x >= b.Min && x < b.Max) {
		return -1
	}
	i := int((x - b.Min) / b.Width())
	if i >= b.Bins {
		i = b.Bins - 1
	}
	return i
}

// Edges returns the lower and upper edge of bin i.
func (b Binning) Edges(i int) (lo, hi float64) {
	dx := b.Width()
	lo = b.Min + dx*float64(i)
	if i == b.Bins-1 {
		return lo, b.Max
	}
	return lo, lo + dx
}

// Centers returns the centers of every bin.
func (b Binning) Centers() []float64 {
	dx := b.Width()
	centers := make([]float64, b.Bins)
	for i := range centers {
		centers[i] = b.Min + dx*(float64(i)+0.5)
	}
	return centers
}
