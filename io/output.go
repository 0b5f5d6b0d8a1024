package io

import (
	"math"
	"os"

	"github.com/sugawarayuuta/sonnet"

	"github.com/phil-mansfield/flowfly/stats"
)

// Summary is the JSON form of a run's results. Empty bins are written as
// null.
type Summary struct {
	RunID     string          `json:"run_id"`
	Seed      uint64          `json:"seed"`
	Events    int             `json:"events"`
	Workers   int             `json:"workers"`
	Harmonic  int             `json:"harmonic"`
	Flow      *float64        `json:"flow"`
	FlowError *float64        `json:"flow_error"`
	Outputs   []OutputSummary `json:"outputs"`
}

// OutputSummary describes one stored object. Profiles list their per-bin
// means and errors, histograms their per-bin counts. 2D profiles only report
// their entries.
type OutputSummary struct {
	Name    string     `json:"name"`
	Kind    string     `json:"kind"`
	Entries int64      `json:"entries"`
	Centers []float64  `json:"centers,omitempty"`
	Values  []*float64 `json:"values,omitempty"`
	Errors  []*float64 `json:"errors,omitempty"`
}

func optional(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}

// NewSummary summarizes l. The integrated flow is taken from the
// FlowPro_V_MCEP profile, if l has one.
func NewSummary(info RunInfo, l *stats.List) *Summary {
	sum := &Summary{
		RunID: info.ID, Seed: info.Seed, Events: info.Events,
		Workers: info.Workers, Harmonic: info.Harmonic,
		Outputs: []OutputSummary{},
	}

	if p := l.Profile("FlowPro_V_MCEP"); p != nil {
		sum.Flow, sum.FlowError = optional(p.Mean(0)), optional(p.Error(0))
	}

	for _, name := range l.Names() {
		obj, _ := l.Get(name)
		out := OutputSummary{Name: name, Kind: obj.Kind()}

		switch obj := obj.(type) {
		case *stats.Profile:
			total := obj.Total()
			out.Entries = total.Entries()
			out.Centers = obj.X.Centers()
			out.Values = make([]*float64, obj.X.Bins)
			out.Errors = make([]*float64, obj.X.Bins)
			for i := range out.Values {
				out.Values[i] = optional(obj.Mean(i))
				out.Errors[i] = optional(obj.Error(i))
			}
		case *stats.Profile2D:
			for iy := 0; iy < obj.Y.Bins; iy++ {
				for ix := 0; ix < obj.X.Bins; ix++ {
					out.Entries += obj.Bin(ix, iy).Entries()
				}
			}
		case *stats.Hist:
			out.Entries = obj.Entries()
			out.Centers = obj.X.Centers()
			out.Values = make([]*float64, obj.X.Bins)
			for i := range out.Values {
				out.Values[i] = optional(obj.Count(i))
			}
		}

		sum.Outputs = append(sum.Outputs, out)
	}

	return sum
}

// WriteSummary writes the JSON summary of l to path.
func WriteSummary(path string, info RunInfo, l *stats.List) error {
	b, err := sonnet.Marshal(NewSummary(info, l))
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// ReadSummary reads a summary written by WriteSummary.
func ReadSummary(path string) (*Summary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sum := &Summary{}
	if err := sonnet.Unmarshal(b, sum); err != nil {
		return nil, err
	}
	return sum, nil
}
