/*
package plots draws the one dimensional profiles and histograms of a run.
*/
package plots

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/phil-mansfield/flowfly/stats"
)

// Series is the drawable content of one output: bin centers, values, and
// errors with every empty bin removed.
type Series struct {
	Name, XLabel, YLabel string
	Xs, Ys, Errs         []float64
}

// Len returns the number of points in the series.
func (s *Series) Len() int { return len(s.Xs) }

// ProfileSeries returns the non-empty bins of a profile.
func ProfileSeries(p *stats.Profile) *Series {
	s := newSeries(p.Name())
	for i, x := range p.X.Centers() {
		if y := p.Mean(i); !math.IsNaN(y) {
			s.Xs = append(s.Xs, x)
			s.Ys = append(s.Ys, y)
			s.Errs = append(s.Errs, p.Error(i))
		}
	}
	return s
}

// HistSeries returns every bin of a histogram.
func HistSeries(h *stats.Hist) *Series {
	s := newSeries(h.Name())
	s.YLabel = "Events"
	for i, x := range h.X.Centers() {
		s.Xs = append(s.Xs, x)
		s.Ys = append(s.Ys, h.Count(i))
		s.Errs = append(s.Errs, h.CountError(i))
	}
	return s
}

func newSeries(name string) *Series {
	return &Series{Name: name, XLabel: xLabel(name), YLabel: "v"}
}

// xLabel guesses the axis of an output from its name.
func xLabel(name string) string {
	switch {
	case strings.Contains(name, "PtSum"):
		return "(pT1 + pT2) / 2 [GeV]"
	case strings.Contains(name, "PtDiff"):
		return "|pT1 - pT2| [GeV]"
	case strings.Contains(name, "VsM"):
		return "M"
	case strings.Contains(name, "VPt"):
		return "pT [GeV]"
	case strings.Contains(name, "Veta"):
		return "eta"
	case strings.HasPrefix(name, "SpreadOfFlow"):
		return "v (event-by-event)"
	case strings.HasPrefix(name, "Control_RP"):
		return "psi [rad]"
	}
	return "x"
}

// Collect returns a Series for every non-empty 1D profile and histogram in l.
// 2D profiles are skipped.
func Collect(l *stats.List) []*Series {
	out := []*Series{}
	for _, name := range l.Names() {
		obj, _ := l.Get(name)

		var s *Series
		switch obj := obj.(type) {
		case *stats.Profile:
			s = ProfileSeries(obj)
		case *stats.Hist:
			if obj.Entries() > 0 {
				s = HistSeries(obj)
			}
		}

		if s != nil && s.Len() > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Write draws every series of l into dir with the given format, "png" or
// "pyplot".
func Write(dir, format string, l *stats.List) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create plot dir: %w", err)
	}

	series := Collect(l)
	switch format {
	case "png":
		for _, s := range series {
			if err := PNG(filepath.Join(dir, s.Name+".png"), s); err != nil {
				return err
			}
		}
		return nil
	case "pyplot":
		return Pyplot(dir, series)
	}
	return fmt.Errorf("unrecognized plot format '%s'", format)
}

// PNG draws a single series to fname with gonum/plot.
func PNG(fname string, s *Series) error {
	p := plot.New()
	p.Title.Text = s.Name
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = s.YLabel

	pts := make(plotter.XYs, s.Len())
	for i := range pts {
		pts[i] = plotter.XY{X: s.Xs[i], Y: s.Ys[i]}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(1)
	p.Add(line)

	if s.Len() < 200 {
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		p.Add(scatter)
	}
	p.Add(plotter.NewGrid())

	if err := p.Save(14*vg.Inch, 6*vg.Inch, fname); err != nil {
		return fmt.Errorf("save %s plot: %w", s.Name, err)
	}
	return nil
}
