package interpolate

import (
	"fmt"
	"sort"
)

// searcher finds the segment of a non-decreasing sequence containing a point.
type searcher struct {
	xs []float64
}

// search returns the index i such that xs[i] <= x < xs[i+1]. Repeated
// values are skipped over, so xs[i] != xs[i+1] whenever x is inside the
// range. Points at the upper edge map to the last segment.
func (s *searcher) search(x float64) int {
	n := len(s.xs)
	i := sort.Search(n, func(j int) bool { return s.xs[j] > x }) - 1

	if i < 0 || x > s.xs[n-1] {
		panic(fmt.Sprintf(
			"Point %g is outside the interpolation range [%g, %g].",
			x, s.xs[0], s.xs[n-1],
		))
	}
	if i >= n-1 {
		i = n - 2
	}
	return i
}

///////////////////////////
// Linear Implementation //
///////////////////////////

// Linear is a linear interpolator.
type Linear struct {
	xs   searcher
	vals []float64
}

// NewLinear creates a linear interpolator for a non-decreasing sequence of
// points, xs, which take on the values given by vals. Runs of equal xs are
// allowed; lookups land in the last segment of the run.
//
// Lookups will occur in O(log |xs|).
func NewLinear(xs, vals []float64) *Linear {
	if len(xs) != len(vals) {
		panic("Length of input slices are not equal.")
	} else if len(xs) < 2 {
		panic(fmt.Sprintf("Table given to NewLinear() has length %d.", len(xs)))
	}
	for i := 0; i < len(xs)-1; i++ {
		if xs[i+1] < xs[i] {
			panic("Table given to NewLinear() not sorted.")
		}
	}
	lin := &Linear{}
	lin.xs.xs = xs
	lin.vals = vals
	return lin
}

// Eval returns the interpolated value at x.
//
// Eval panics if called on a values outside the supplied range on inputs.
func (lin *Linear) Eval(x float64) float64 {
	i1 := lin.xs.search(x)
	i2 := i1 + 1
	x1, x2 := lin.xs.xs[i1], lin.xs.xs[i2]
	v1, v2 := lin.vals[i1], lin.vals[i2]
	if x1 == x2 {
		return v2
	}

	return ((v2-v1)/(x2-x1))*(x-x1) + v1
}
