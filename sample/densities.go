package sample

import (
	"math"
)

// MaxHarmonic is the highest Fourier harmonic supported by Fourier.
const MaxHarmonic = 6

// Boltzmann is the thermal transverse momentum spectrum
// pt * exp(-sqrt(m^2 + pt^2) / T) with par = [m, T].
func Boltzmann(pt float64, par []float64) float64 {
	m, T := par[0], par[1]
	return pt * math.Exp(-math.Sqrt(m*m+pt*pt)/T)
}

// DMesonParams are the Tsallis parameters of the D meson spectrum: scaling
// constant, D mass in GeV, q-factor, and q-temperature.
var DMesonParams = []float64{8.4e8, 1.86962, 1.15, 7.5e-2}

// raa holds the coefficients of a nuclear modification factor
// a + b exp(-c (ln pt - ln 250)^2) + d exp(-e (ln pt - g)^2) erfc(h (ln pt - g)).
type raa struct {
	a, b, c, d, e, g, h float64
}

var raaClasses = []raa{
	{0.186179, 0.730187, 0.22222, 0.172795, 0.27845, 1.22378, 2.53292},   // 10-30%
	{0.264522, 0.705465, 0.154321, 0.172813, 0.305176, 1.19392, 2.20971}, // 30-50%
	{0.596343, 0.299838, 0.154321, 0.0560588, 0.78125, 1.02962, 2.65165}, // 60-80%
}

// CentralityClasses is the number of centrality classes with built-in
// parametrizations.
var CentralityClasses = len(raaClasses)

// DMeson returns the D meson Tsallis spectrum folded with the nuclear
// modification factor of the given centrality class. Its parameters are
// those of DMesonParams.
func DMeson(class int) Density {
	r := raaClasses[class]
	lnHigh := math.Log(250)
	return func(pt float64, par []float64) float64 {
		if pt <= 0 {
			return 0
		}
		mT := math.Sqrt(pt*pt + par[1]*par[1])
		q, qT := par[2], par[3]
		tsallis := par[0] * pt * mT * math.Pow(1+(q-1)*mT/qT, -q/(q-1))

		lnPt := math.Log(pt)
		dHigh, dLow := lnPt-lnHigh, lnPt-r.g
		mod := r.a + r.b*math.Exp(-r.c*dHigh*dHigh) +
			r.d*math.Exp(-r.e*dLow*dLow)*math.Erfc(r.h*dLow)
		return tsallis * mod
	}
}

var etaDips = []float64{0.056, 0.061, 0.074}

// EtaDipCoefficient returns the curvature of the pseudorapidity density for
// the given centrality class.
func EtaDipCoefficient(class int) float64 { return etaDips[class] }

// EtaDip is the pseudorapidity density 1 + a eta^2 with par = [a].
func EtaDip(eta float64, par []float64) float64 {
	return 1 + par[0]*eta*eta
}

// Fourier is the azimuthal density 1 + 2 sum_n v_n cos(n (phi - R)) with
// par = [R, v1, v2, ..., vN].
func Fourier(phi float64, par []float64) float64 {
	R := par[0]
	sum := 1.0
	for n := 1; n < len(par); n++ {
		if par[n] != 0 {
			sum += 2 * par[n] * math.Cos(float64(n)*(phi-R))
		}
	}
	return sum
}
