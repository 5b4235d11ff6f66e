// Package plot renders objective-space scatter plots as standalone HTML.
package plot

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/copyleftdev/IBMOLS/internal/optimization"
)

// Front writes a scatter plot of a bi-objective front to w.
func Front(w io.Writer, title string, points []optimization.ObjectiveVector) error {
	data := make([]opts.ScatterData, len(points))
	for i, p := range points {
		if len(p) != 2 {
			return fmt.Errorf("can only plot 2 objectives, point %d has %d", i, len(p))
		}
		data[i] = opts.ScatterData{
			Value:      []float64{p[0], p[1]},
			Symbol:     "circle",
			SymbolSize: 8,
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "f0",
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "f1",
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}),
	)
	scatter.AddSeries("archive", data).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))

	return scatter.Render(w)
}
