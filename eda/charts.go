package eda

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var barFill = color.RGBA{R: 0x44, G: 0x72, B: 0xc4, A: 0xff}

// barChart renders an ordered key/value series as a nominal-X bar chart.
func barChart(s *series, title, xLabel, yLabel, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	bars, err := plotter.NewBarChart(plotter.Values(s.Values), vg.Points(20))
	if err != nil {
		return err
	}
	bars.Color = barFill
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(s.Keys...)
	p.X.Tick.Label.Rotation = 0.8
	p.X.Tick.Label.XAlign = draw.XRight
	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}

// lineChart renders an ordered series as a line with point markers.
func lineChart(s *series, title, xLabel, yLabel, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	pts := make(plotter.XYs, len(s.Values))
	for i, v := range s.Values {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Color = barFill
	points.Color = barFill
	p.Add(line, points)
	p.NominalX(s.Keys...)
	p.X.Tick.Label.Rotation = 0.8
	p.X.Tick.Label.XAlign = draw.XRight
	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}

// histogram renders a value distribution with the given bin count.
func histogram(values []float64, bins int, title, xLabel, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "Frequency"

	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return err
	}
	h.FillColor = barFill
	p.Add(h)
	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}
