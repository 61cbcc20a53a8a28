package explain

import (
	"errors"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// regressionPlot scatters held-out labels (x) against predicted scores (y)
// and draws the decision threshold across the plot.
func regressionPlot(actual []int, predicted []float64, threshold float64) (*plot.Plot, error) {
	if len(actual) != len(predicted) {
		return nil, errors.New("explain: actual and predicted lengths differ")
	}

	p := plot.New()
	p.Title.Text = "Regression: actual vs predicted"
	p.X.Label.Text = "Actual (is_critical)"
	p.Y.Label.Text = "Predicted score"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(actual))
	for i := range actual {
		pts[i].X = float64(actual[i])
		pts[i].Y = predicted[i]
	}
	if len(pts) > 0 {
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(3)
		s.GlyphStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
		p.Add(s)
		p.Legend.Add("tickets", s)
	}

	line, err := plotter.NewLine(plotter.XYs{{X: -0.5, Y: threshold}, {X: 1.5, Y: threshold}})
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	line.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
	p.Add(line)
	p.Legend.Add("threshold", line)
	p.Legend.Top = true

	p.X.Min, p.X.Max = -0.5, 1.5
	return p, nil
}
