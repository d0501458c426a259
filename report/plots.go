// Package report renders the diagnostic artifacts: per-algorithm plots, the
// compiled PDF, and the annotated CSV export. Artifact writes are
// fire-and-forget; a failed write is the caller's to log and skip, it never
// aborts the run.
package report

import (
	"fmt"
	"image/color"
	"os"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/cluster"
)

// labelColor picks a stable color per label; noise is gray.
func labelColor(label int) color.Color {
	if label == cluster.Noise {
		return color.Gray{Y: 128}
	}
	return plotutil.Color(label)
}

func labelName(label int) string {
	if label == cluster.Noise {
		return "Noise"
	}
	return fmt.Sprintf("Cluster %d", label)
}

// ClusterScatter renders the first two feature dimensions colored by label.
func ClusterScatter(m *mat.Dense, labels []int, columns []string, title, path string) error {
	_, cols := m.Dims()
	if cols < 2 {
		return fmt.Errorf("report: scatter needs at least two feature columns, have %d", cols)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = columns[0]
	p.Y.Label.Text = columns[1]

	idx := cluster.NewMembershipIndex(labels)
	for _, label := range idx.Labels() {
		rows := idx.Rows(label)
		pts := make(plotter.XYs, len(rows))
		for i, r := range rows {
			pts[i].X = m.At(int(r), 0)
			pts[i].Y = m.At(int(r), 1)
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = labelColor(label)
		s.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(s)
		p.Legend.Add(labelName(label), s)
	}
	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}

// PairGrid renders the pairwise feature-relationship grid colored by label:
// scatters off the diagonal, per-column histograms on it.
func PairGrid(m *mat.Dense, labels []int, columns []string, path string) error {
	n := len(columns)
	if n == 0 {
		return fmt.Errorf("report: pair grid needs at least one column")
	}

	idx := cluster.NewMembershipIndex(labels)
	grid := make([][]*plot.Plot, n)
	for row := 0; row < n; row++ {
		grid[row] = make([]*plot.Plot, n)
		for col := 0; col < n; col++ {
			p := plot.New()
			if row == n-1 {
				p.X.Label.Text = columns[col]
			}
			if col == 0 {
				p.Y.Label.Text = columns[row]
			}

			if row == col {
				vals := make(plotter.Values, 0)
				rows, _ := m.Dims()
				for i := 0; i < rows; i++ {
					vals = append(vals, m.At(i, col))
				}
				h, err := plotter.NewHist(vals, 16)
				if err != nil {
					return err
				}
				h.FillColor = color.RGBA{R: 0x87, G: 0xce, B: 0xeb, A: 0xff}
				p.Add(h)
			} else {
				for _, label := range idx.Labels() {
					pts := make(plotter.XYs, 0, idx.Size(label))
					for _, r := range idx.Rows(label) {
						pts = append(pts, plotter.XY{X: m.At(int(r), col), Y: m.At(int(r), row)})
					}
					s, err := plotter.NewScatter(pts)
					if err != nil {
						return err
					}
					s.GlyphStyle.Color = labelColor(label)
					s.GlyphStyle.Radius = vg.Points(1.5)
					p.Add(s)
				}
			}
			grid[row][col] = p
		}
	}

	const cell = 2 * vg.Inch
	img := vgimg.New(cell*vg.Length(n), cell*vg.Length(n))
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: n, Cols: n, PadX: vg.Millimeter, PadY: vg.Millimeter}
	canvases := plot.Align(grid, tiles, dc)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			grid[row][col].Draw(canvases[row][col])
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	png := vgimg.PngCanvas{Canvas: img}
	_, err = png.WriteTo(f)
	return err
}

// SilhouetteBars renders per-row silhouette values, sorted within each
// cluster, as a bar chart. Only called when the score is computable.
func SilhouetteBars(samples []float64, labels []int, score float64, title, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - Score: %.3f", title, score)
	p.X.Label.Text = "Sample"
	p.Y.Label.Text = "Silhouette"

	// One bar per row, grouped by cluster and sorted within each group.
	idx := cluster.NewMembershipIndex(labels)
	vals := make(plotter.Values, 0, len(samples))
	for _, label := range idx.Labels() {
		group := make([]float64, 0, idx.Size(label))
		for _, r := range idx.Rows(label) {
			group = append(group, samples[r])
		}
		sort.Float64s(group)
		vals = append(vals, group...)
	}

	bars, err := plotter.NewBarChart(vals, vg.Points(1))
	if err != nil {
		return err
	}
	bars.Color = color.RGBA{R: 0x87, G: 0xce, B: 0xeb, A: 0xff}
	bars.LineStyle.Width = 0
	p.Add(bars)
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
