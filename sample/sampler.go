/*
package sample draws random variates from arbitrary one dimensional
densities by inverting a tabulated cumulative distribution.
*/
package sample

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/phil-mansfield/flowfly"
	"github.com/phil-mansfield/flowfly/math/interpolate"
)

const (
	// DefaultNodes is the number of tabulation segments used when none is
	// requested.
	DefaultNodes = 100
	// MinNodes is the smallest table which is accepted.
	MinNodes = 100
)

// Density is an unnormalized probability density with parameters par.
type Density func(x float64, par []float64) float64

// Sampler draws values distributed according to a Density over [min, max].
// Parameters can be changed between draws with SetParam and SetParams, after
// which the cumulative table is rebuilt on the next draw.
type Sampler struct {
	name     string
	f        Density
	par      []float64
	min, max float64

	xs, vals, cdf []float64
	inv           *interpolate.Linear
	dirty         bool
}

// New creates a Sampler for f with the parameters par over [min, max],
// tabulated with the given number of segments (zero means DefaultNodes).
// The table is built immediately, so a density which cannot be sampled with
// its initial parameters is reported here.
func New(
	name string, f Density, par []float64, min, max float64, nodes int,
) (*Sampler, error) {
	if nodes == 0 {
		nodes = DefaultNodes
	}
	if nodes < MinNodes {
		return nil, flowfly.Configf(
			"Nodes", "sampler '%s' needs at least %d nodes, got %d",
			name, MinNodes, nodes,
		)
	}
	if !(min < max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil, &flowfly.DomainError{
			Density: name,
			Reason:  "has an empty or unbounded support",
		}
	}

	s := &Sampler{
		name: name, f: f, min: min, max: max,
		par:  append([]float64{}, par...),
		xs:   make([]float64, nodes+1),
		vals: make([]float64, nodes+1),
		cdf:  make([]float64, nodes+1),
	}
	floats.Span(s.xs, min, max)

	if err := s.tabulate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Name returns the name the sampler was created with.
func (s *Sampler) Name() string { return s.name }

// Range returns the support of the sampler.
func (s *Sampler) Range() (min, max float64) { return s.min, s.max }

// Param returns the ith parameter.
func (s *Sampler) Param(i int) float64 { return s.par[i] }

// SetParam changes the ith parameter.
func (s *Sampler) SetParam(i int, val float64) {
	if s.par[i] != val {
		s.par[i] = val
		s.dirty = true
	}
}

// SetParams replaces every parameter.
func (s *Sampler) SetParams(par ...float64) {
	if len(par) != len(s.par) {
		panic("Number of parameters given to Sampler.SetParams() has changed.")
	}
	copy(s.par, par)
	s.dirty = true
}

// Clone returns an independent Sampler with the same density and current
// parameters. Samplers cannot be shared between goroutines, but clones can.
func (s *Sampler) Clone() (*Sampler, error) {
	return New(s.name, s.f, s.par, s.min, s.max, len(s.xs)-1)
}

// Eval evaluates the unnormalized density at x with the current parameters.
func (s *Sampler) Eval(x float64) float64 { return s.f(x, s.par) }

// Sample draws a single value using the given random stream.
func (s *Sampler) Sample(rng *rand.Rand) (float64, error) {
	if s.dirty {
		if err := s.tabulate(); err != nil {
			return math.NaN(), err
		}
	}
	return s.inv.Eval(rng.Float64()), nil
}

// tabulate evaluates the density on the nodes and builds the normalized
// piecewise linear cumulative distribution.
func (s *Sampler) tabulate() error {
	for i, x := range s.xs {
		v := s.f(x, s.par)
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return &flowfly.DomainError{Density: s.name, X: x, Value: v}
		}
		s.vals[i] = v
	}

	// Trapezoid area of each segment, accumulated in place.
	s.cdf[0] = 0
	for i := 1; i < len(s.xs); i++ {
		dx := s.xs[i] - s.xs[i-1]
		s.cdf[i] = 0.5 * (s.vals[i] + s.vals[i-1]) * dx
	}
	floats.CumSum(s.cdf, s.cdf)

	total := s.cdf[len(s.cdf)-1]
	if total <= 0 {
		return &flowfly.DomainError{
			Density: s.name,
			Reason:  "integrates to zero over its support",
		}
	}
	floats.Scale(1/total, s.cdf)
	s.cdf[len(s.cdf)-1] = 1

	s.inv = interpolate.NewLinear(s.cdf, s.xs)
	s.dirty = false
	return nil
}
