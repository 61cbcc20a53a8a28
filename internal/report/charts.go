package report

import (
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"deskinsight/internal/domain"
)

type chartFile struct {
	name  string
	title string
}

var barColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// writeCharts renders incidents per client, mean resolution per client and
// resolution against satisfaction next to the report.
func writeCharts(dir, stem string, rows []domain.ClientMetrics) ([]chartFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	names := make([]string, len(rows))
	incidents := make(plotter.Values, len(rows))
	days := make(plotter.Values, len(rows))
	var scatter plotter.XYs
	var labels []string
	for i, r := range rows {
		names[i] = r.Client
		incidents[i] = float64(r.TotalIncidents)
		if r.AvgDays != nil {
			days[i] = *r.AvgDays
			if r.AvgSatisfaction != nil {
				scatter = append(scatter, plotter.XY{X: *r.AvgDays, Y: *r.AvgSatisfaction})
				labels = append(labels, r.Client)
			}
		}
	}

	var out []chartFile
	specs := []struct {
		suffix, title string
		build         func() (*plot.Plot, error)
	}{
		{"incidents", "Incidencias por cliente", func() (*plot.Plot, error) {
			return barPlot("Incidencias por cliente", "Incidencias", names, incidents)
		}},
		{"resolution", "Tiempo medio de resolución por cliente", func() (*plot.Plot, error) {
			return barPlot("Tiempo medio de resolución por cliente", "Días", names, days)
		}},
		{"satisfaction", "Resolución frente a satisfacción", func() (*plot.Plot, error) {
			return scatterPlot(scatter, labels)
		}},
	}
	for _, s := range specs {
		p, err := s.build()
		if err != nil {
			return nil, err
		}
		name := stem + "_" + s.suffix + ".png"
		if err := p.Save(10*vg.Inch, 5*vg.Inch, filepath.Join(dir, name)); err != nil {
			return nil, err
		}
		out = append(out, chartFile{name: name, title: s.title})
	}
	return out, nil
}

func barPlot(title, yLabel string, names []string, values plotter.Values) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)
	return p, nil
}

func scatterPlot(pts plotter.XYs, labels []string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Resolución frente a satisfacción"
	p.X.Label.Text = "Tiempo medio de resolución (días)"
	p.Y.Label.Text = "Satisfacción media"
	p.Add(plotter.NewGrid())
	if len(pts) == 0 {
		return p, nil
	}

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = barColor
	s.GlyphStyle.Radius = vg.Points(4)
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: labels})
	if err != nil {
		return nil, err
	}
	p.Add(s, l)
	return p, nil
}
