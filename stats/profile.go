package stats

import (
	"fmt"
)

// Object is anything stored in a List.
type Object interface {
	Name() string
	// Kind is one of "Profile", "Profile2D", or "Hist".
	Kind() string
}

var (
	_ Object = &Profile{}
	_ Object = &Profile2D{}
	_ Object = &Hist{}
)

// Profile is a one dimensional profile: the mean of y in bins of x.
type Profile struct {
	name        string
	X           Binning
	bins        []Moments
	under, over Moments
}

// NewProfile creates an empty Profile. It panics on an invalid binning,
// which callers are expected to have checked during configuration.
func NewProfile(name string, x Binning) *Profile {
	if err := x.CheckInit(name); err != nil {
		panic(err.Error())
	}
	return &Profile{name: name, X: x, bins: make([]Moments, x.Bins)}
}

func (p *Profile) Name() string { return p.name }
func (p *Profile) Kind() string { return "Profile" }

// Fill adds y with weight w to the bin containing x. Values outside the
// binning go to the underflow or overflow sums.
func (p *Profile) Fill(x, y, w float64) {
	if i := p.X.Index(x); i >= 0 {
		p.bins[i].Fill(y, w)
	} else if x < p.X.Min {
		p.under.Fill(y, w)
	} else {
		p.over.Fill(y, w)
	}
}

// Bin returns the sums of bin i.
func (p *Profile) Bin(i int) *Moments { return &p.bins[i] }

// Underflow and Overflow return the sums outside of the binning.
func (p *Profile) Underflow() *Moments { return &p.under }
func (p *Profile) Overflow() *Moments  { return &p.over }

// Mean returns the mean of bin i: NaN if the bin is empty.
func (p *Profile) Mean(i int) float64 { return p.bins[i].Mean() }

// Error returns the error on the mean of bin i: NaN if the bin is empty.
func (p *Profile) Error(i int) float64 { return p.bins[i].Error() }

// Total returns the sums over all in-range bins.
func (p *Profile) Total() Moments {
	m := Moments{}
	for i := range p.bins {
		m.Add(&p.bins[i])
	}
	return m
}

// Merge adds the contents of o, which must have the same binning.
func (p *Profile) Merge(o *Profile) {
	if p.X != o.X {
		panic(fmt.Sprintf(
			"Internal inconsistency: merging profile '%s' binned as %v with "+
				"'%s' binned as %v.", p.name, p.X, o.name, o.X,
		))
	}
	for i := range p.bins {
		p.bins[i].Add(&o.bins[i])
	}
	p.under.Add(&o.under)
	p.over.Add(&o.over)
}

// Profile2D is a two dimensional profile: the mean of z in bins of (x, y).
type Profile2D struct {
	name  string
	X, Y  Binning
	bins  []Moments
	outer Moments
}

// NewProfile2D creates an empty Profile2D.
func NewProfile2D(name string, x, y Binning) *Profile2D {
	if err := x.CheckInit(name); err != nil {
		panic(err.Error())
	} else if err := y.CheckInit(name); err != nil {
		panic(err.Error())
	}
	return &Profile2D{
		name: name, X: x, Y: y, bins: make([]Moments, x.Bins*y.Bins),
	}
}

func (p *Profile2D) Name() string { return p.name }
func (p *Profile2D) Kind() string { return "Profile2D" }

// Fill adds z with weight w to the bin containing (x, y).
func (p *Profile2D) Fill(x, y, z, w float64) {
	ix, iy := p.X.Index(x), p.Y.Index(y)
	if ix < 0 || iy < 0 {
		p.outer.Fill(z, w)
		return
	}
	p.bins[ix+iy*p.X.Bins].Fill(z, w)
}

// Bin returns the sums of bin (ix, iy).
func (p *Profile2D) Bin(ix, iy int) *Moments { return &p.bins[ix+iy*p.X.Bins] }

// Outside returns the sums of every fill outside of the binning.
func (p *Profile2D) Outside() *Moments { return &p.outer }

// Mean returns the mean of bin (ix, iy): NaN if the bin is empty.
func (p *Profile2D) Mean(ix, iy int) float64 { return p.Bin(ix, iy).Mean() }

// Error returns the error on the mean of bin (ix, iy).
func (p *Profile2D) Error(ix, iy int) float64 { return p.Bin(ix, iy).Error() }

// Merge adds the contents of o, which must have the same binning.
func (p *Profile2D) Merge(o *Profile2D) {
	if p.X != o.X || p.Y != o.Y {
		panic(fmt.Sprintf(
			"Internal inconsistency: merging 2D profile '%s' with '%s' "+
				"which is binned differently.", p.name, o.name,
		))
	}
	for i := range p.bins {
		p.bins[i].Add(&o.bins[i])
	}
	p.outer.Add(&o.outer)
}
