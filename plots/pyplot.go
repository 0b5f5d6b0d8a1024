package plots

import (
	"path/filepath"

	plt "github.com/phil-mansfield/pyplot"
)

// Pyplot queues one matplotlib figure per series and runs the resulting
// script. Requires python with matplotlib on the path.
func Pyplot(dir string, series []*Series) error {
	plt.Reset()

	for _, s := range series {
		plt.Figure(plt.FigSize(10, 6))
		plt.Plot(s.Xs, s.Ys, "k", plt.LW(2))

		lo, hi := make([]float64, s.Len()), make([]float64, s.Len())
		for i := range s.Ys {
			lo[i], hi[i] = s.Ys[i]-s.Errs[i], s.Ys[i]+s.Errs[i]
		}
		plt.Plot(s.Xs, lo, plt.C("r"))
		plt.Plot(s.Xs, hi, plt.C("r"))

		plt.Title(s.Name)
		plt.XLabel(s.XLabel, plt.FontSize(16))
		plt.YLabel(s.YLabel, plt.FontSize(16))
		plt.XLim(s.Xs[0], s.Xs[s.Len()-1])
		plt.Grid(plt.Axis("y"))
		plt.SaveFig(filepath.Join(dir, s.Name+".png"))
	}

	plt.Execute()
	return nil
}
