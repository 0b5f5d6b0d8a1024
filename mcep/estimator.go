/*
package mcep measures flow with the Monte Carlo event plane method: every
particle is correlated with the event's reaction plane angle, which is known
exactly up to the generator's smearing. Its results are the ground truth that
more elaborate flow methods are checked against.
*/
package mcep

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/flowfly"
	"github.com/phil-mansfield/flowfly/stats"
)

// MaxPtCutOffs is the largest number of pT cut offs, which split the RP and
// POI eta profiles into at most three pT sub-ranges.
const MaxPtCutOffs = 2

// Config describes an Estimator.
type Config struct {
	// Harmonic is the order n of the measured harmonic.
	Harmonic int

	Pt, Eta stats.Binning
	// Mult bins the integrated flow by the kept multiplicity of each event.
	Mult stats.Binning
	// Spread bins the per-event estimate of the RP flow.
	Spread stats.Binning

	// PtCutOffs splits particles into len(PtCutOffs) + 1 pT sub-ranges, each
	// with its own eta profile.
	PtCutOffs []float64
}

// DefaultConfig returns the binning used when nothing else is configured.
func DefaultConfig() Config {
	return Config{
		Harmonic:  2,
		Pt:        stats.Binning{Min: 0, Max: 10, Bins: 100},
		Eta:       stats.Binning{Min: -1, Max: 1, Bins: 80},
		Mult:      stats.Binning{Min: 0, Max: 10000, Bins: 10000},
		Spread:    stats.Binning{Min: -1, Max: 1, Bins: 1000},
		PtCutOffs: []float64{2, 5},
	}
}

// CheckInit validates the configuration.
func (con *Config) CheckInit() error {
	if con.Harmonic < 1 {
		return flowfly.Configf("Harmonic", "must be positive, got %d", con.Harmonic)
	}

	binnings := []struct {
		name string
		b    stats.Binning
	}{
		{"Pt", con.Pt}, {"Eta", con.Eta}, {"Mult", con.Mult}, {"Spread", con.Spread},
	}
	for _, b := range binnings {
		if err := b.b.CheckInit(b.name); err != nil {
			return flowfly.Configf(b.name, "%s", err.Error())
		}
	}

	if len(con.PtCutOffs) > MaxPtCutOffs {
		return flowfly.Configf("PtCutOff", "at most %d cut offs are allowed, got %d",
			MaxPtCutOffs, len(con.PtCutOffs))
	}
	for i, pt := range con.PtCutOffs {
		if math.IsNaN(pt) || math.IsInf(pt, 0) {
			return flowfly.Configf("PtCutOff", "%g is not finite", pt)
		} else if i > 0 && pt <= con.PtCutOffs[i-1] {
			return flowfly.Configf("PtCutOff", "cut offs %v are not ascending",
				con.PtCutOffs)
		}
	}
	return nil
}

var unitBin = stats.Binning{Min: 0, Max: 1, Bins: 1}

// subset holds the differential profiles of either the RPs or the POIs.
type subset struct {
	ptEta   *stats.Profile2D
	pt, eta *stats.Profile
	subPt   []*stats.Profile
}

func newSubset(con *Config, tag string) *subset {
	s := &subset{
		ptEta: stats.NewProfile2D(
			fmt.Sprintf("FlowPro_VPtEta%s_MCEP", tag), con.Pt, con.Eta,
		),
		pt:  stats.NewProfile(fmt.Sprintf("FlowPro_VPt%s_MCEP", tag), con.Pt),
		eta: stats.NewProfile(fmt.Sprintf("FlowPro_Veta%s_MCEP", tag), con.Eta),
	}
	for i := 0; i <= len(con.PtCutOffs); i++ {
		s.subPt = append(s.subPt, stats.NewProfile(
			fmt.Sprintf("FlowPro_Veta%s_SubPt%d_MCEP", tag, i+1), con.Eta,
		))
	}
	return s
}

func (s *subset) fill(p *flowfly.Particle, sub int, v float64) {
	s.ptEta.Fill(p.Pt, p.Eta, v, 1)
	s.pt.Fill(p.Pt, v, 1)
	s.eta.Fill(p.Eta, v, 1)
	s.subPt[sub].Fill(p.Eta, v, 1)
}

func (s *subset) add(l *stats.List) {
	l.Add(s.ptEta, s.pt, s.eta)
	for _, p := range s.subPt {
		l.Add(p)
	}
}

// Estimator accumulates event plane flow statistics one event at a time. It
// is not safe for concurrent use: parallel runs use one Estimator per worker
// and Merge them at the end.
type Estimator struct {
	con Config

	intFlow, vsM *stats.Profile
	rp, poi      *subset
	spread       *stats.Hist
	control      *stats.Hist

	out      *stats.List
	events   int64
	finished bool
}

// New creates an empty Estimator.
func New(con Config) (*Estimator, error) {
	if err := con.CheckInit(); err != nil {
		return nil, err
	}
	con.PtCutOffs = append([]float64{}, con.PtCutOffs...)

	est := &Estimator{
		con:     con,
		intFlow: stats.NewProfile("FlowPro_V_MCEP", unitBin),
		vsM:     stats.NewProfile("FlowPro_VsM_MCEP", con.Mult),
		rp:      newSubset(&con, "RP"),
		poi:     newSubset(&con, "POI"),
		spread:  stats.NewHist("SpreadOfFlow_MCEP", con.Spread),
		control: stats.NewHist(
			"Control_RP_MCEP", stats.Binning{Min: 0, Max: 2 * math.Pi, Bins: 360},
		),
		out: stats.NewList(),
	}

	est.out.Add(est.intFlow, est.vsM)
	est.rp.add(est.out)
	est.poi.add(est.out)
	est.out.Add(est.spread, est.control)

	return est, nil
}

// Config returns the configuration the Estimator was made with.
func (est *Estimator) Config() Config { return est.con }

// subRange returns the index of the pT sub-range containing pt.
func (est *Estimator) subRange(pt float64) int {
	i := 0
	for i < len(est.con.PtCutOffs) && pt >= est.con.PtCutOffs[i] {
		i++
	}
	return i
}

// Make adds an event to the accumulated statistics. The event's measured
// reaction plane angle is used, never its true one.
func (est *Estimator) Make(e *flowfly.Event) {
	if est.finished {
		panic("Internal inconsistency: Make called on a finished Estimator.")
	}

	n := float64(est.con.Harmonic)
	mult := float64(e.Mult())
	sum, nRP := 0.0, 0

	for i := range e.Particles {
		p := &e.Particles[i]
		if !p.RP && !p.POI {
			continue
		}

		v := math.Cos(n * (p.Phi - e.Angle))
		sub := est.subRange(p.Pt)

		if p.RP {
			est.intFlow.Fill(0, v, 1)
			est.vsM.Fill(mult, v, 1)
			est.rp.fill(p, sub, v)
			sum += v
			nRP++
		}
		if p.POI {
			est.poi.fill(p, sub, v)
		}
	}

	if nRP > 0 {
		est.spread.Fill(sum/float64(nRP), 1)
	}
	est.control.Fill(e.Angle, 1)
	est.events++
}

// Finish closes accumulation. Calling Make afterwards panics.
func (est *Estimator) Finish() { est.finished = true }

// Finished reports whether Finish has been called.
func (est *Estimator) Finished() bool { return est.finished }

// Events returns the number of events passed to Make.
func (est *Estimator) Events() int64 { return est.events }

// Output returns every accumulated profile and histogram by name.
func (est *Estimator) Output() *stats.List { return est.out }

// Flow returns the integrated RP flow and its error. Both are NaN if there
// were no RPs.
func (est *Estimator) Flow() (v, err float64) {
	return est.intFlow.Mean(0), est.intFlow.Error(0)
}

// Merge adds the statistics of o, which must be configured identically.
func (est *Estimator) Merge(o *Estimator) {
	if est.con.Harmonic != o.con.Harmonic ||
		len(est.con.PtCutOffs) != len(o.con.PtCutOffs) {
		panic("Internal inconsistency: merging differently configured " +
			"Estimators.")
	}
	for i := range est.con.PtCutOffs {
		if est.con.PtCutOffs[i] != o.con.PtCutOffs[i] {
			panic("Internal inconsistency: merging Estimators with " +
				"different pT cut offs.")
		}
	}

	est.out.Merge(o.out)
	est.events += o.events
}
