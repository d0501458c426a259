package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/VALASALARAKESH/Zeotap-eCommerce-Transactions-Dataset/cluster"
)

// Dendrogram renders the agglomerative merge history. Leaves are laid out
// left to right in traversal order; every merge draws one U-shaped link at
// its merge height.
func Dendrogram(merges []cluster.Merge, title, path string) error {
	if len(merges) == 0 {
		return fmt.Errorf("report: dendrogram needs a non-empty merge history")
	}
	leaves := len(merges) + 1

	children := make(map[int][2]int, len(merges))
	height := make(map[int]float64, len(merges))
	for i, m := range merges {
		id := leaves + i
		children[id] = [2]int{m.A, m.B}
		height[id] = m.Distance
	}
	root := leaves + len(merges) - 1

	// Leaf x positions follow a left-to-right traversal from the root;
	// each internal node sits at the mean of its children.
	x := make(map[int]float64, 2*leaves-1)
	next := 0.0
	var layout func(id int)
	layout = func(id int) {
		ch, ok := children[id]
		if !ok {
			x[id] = next
			next++
			return
		}
		layout(ch[0])
		layout(ch[1])
		x[id] = (x[ch[0]] + x[ch[1]]) / 2
	}
	layout(root)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Customer"
	p.Y.Label.Text = "Distance"

	for i := range merges {
		id := leaves + i
		ch := children[id]
		link := plotter.XYs{
			{X: x[ch[0]], Y: height[ch[0]]},
			{X: x[ch[0]], Y: height[id]},
			{X: x[ch[1]], Y: height[id]},
			{X: x[ch[1]], Y: height[ch[1]]},
		}
		line, err := plotter.NewLine(link)
		if err != nil {
			return err
		}
		line.Color = color.RGBA{B: 0xb4, A: 0xff}
		p.Add(line)
	}
	return p.Save(10*vg.Inch, 7*vg.Inch, path)
}
