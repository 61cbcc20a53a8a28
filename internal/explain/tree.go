package explain

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"deskinsight/internal/domain"
	"deskinsight/internal/model"
)

var (
	criticalFill    = color.RGBA{R: 229, G: 129, B: 57}
	notCriticalFill = color.RGBA{R: 57, G: 139, B: 229}
)

type placedNode struct {
	node   *model.Node
	x, y   float64
	parent int
}

// treeDiagram draws node boxes and edges in data coordinates: x is the
// in-order leaf position, y is minus the depth.
type treeDiagram struct {
	nodes  []placedNode
	leaves int
	depth  int
}

func layoutTree(t *model.Tree) *treeDiagram {
	d := &treeDiagram{}
	var walk func(n *model.Node, depth, parent int) float64
	walk = func(n *model.Node, depth, parent int) float64 {
		idx := len(d.nodes)
		d.nodes = append(d.nodes, placedNode{node: n, y: -float64(depth), parent: parent})
		d.depth = max(d.depth, depth)
		var x float64
		if n.Leaf() {
			x = float64(d.leaves)
			d.leaves++
		} else {
			x = (walk(n.Left, depth+1, idx) + walk(n.Right, depth+1, idx)) / 2
		}
		d.nodes[idx].x = x
		return x
	}
	walk(t.Root, 0, -1)
	return d
}

func (d *treeDiagram) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -0.6, float64(d.leaves) - 0.4, -float64(d.depth) - 0.5, 0.5
}

func (d *treeDiagram) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	edge := draw.LineStyle{Color: color.Gray{Y: 90}, Width: vg.Points(0.8)}
	border := draw.LineStyle{Color: color.Black, Width: vg.Points(0.6)}
	sty := text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, 8),
		XAlign:  text.XCenter,
		YAlign:  text.YCenter,
		Handler: plot.DefaultTextHandler,
	}

	for _, n := range d.nodes {
		if n.parent < 0 {
			continue
		}
		p := d.nodes[n.parent]
		c.StrokeLine2(edge, trX(p.x), trY(p.y), trX(n.x), trY(n.y))
	}

	pad := vg.Points(3)
	for _, n := range d.nodes {
		label := nodeLabel(n.node)
		w, h := sty.Width(label)/2+pad, sty.Height(label)/2+pad
		cx, cy := trX(n.x), trY(n.y)
		box := []vg.Point{
			{X: cx - w, Y: cy - h}, {X: cx + w, Y: cy - h},
			{X: cx + w, Y: cy + h}, {X: cx - w, Y: cy + h},
		}
		c.FillPolygon(nodeFill(n.node), box)
		c.StrokeLines(border, append(box, box[0]))
		c.FillText(sty, vg.Point{X: cx, Y: cy}, label)
	}
}

// nodeLabel lists the split rule (internal nodes only), gini, sample count,
// class counts and majority class.
func nodeLabel(n *model.Node) string {
	var lines []string
	if !n.Leaf() {
		lines = append(lines, fmt.Sprintf("%s <= %s", domain.FeatureNames[n.Feature], number(n.Threshold)))
	}
	lines = append(lines,
		"gini = "+number(n.Impurity),
		fmt.Sprintf("samples = %d", n.Samples),
		fmt.Sprintf("value = [%s, %s]", number(n.Value[0]), number(n.Value[1])),
		"class = "+domain.ClassNames[n.Class()],
	)
	return strings.Join(lines, "\n")
}

// nodeFill shades by majority class, stronger for purer nodes.
func nodeFill(n *model.Node) color.Color {
	base := notCriticalFill
	if n.Class() == 1 {
		base = criticalFill
	}
	alpha := 1 - 2*n.Impurity
	mix := func(v uint8) uint8 {
		return uint8(math.Round(255 - alpha*(255-float64(v))))
	}
	return color.RGBA{R: mix(base.R), G: mix(base.G), B: mix(base.B), A: 255}
}

func number(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

func renderTree(t *model.Tree, title string) ([]byte, error) {
	d := layoutTree(t)

	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	p.Add(d)

	width := min(max(vg.Length(d.leaves)*1.8*vg.Inch, 6*vg.Inch), 120*vg.Inch)
	height := max(vg.Length(d.depth+1)*1.4*vg.Inch, 3*vg.Inch)
	return render(p, width, height)
}
