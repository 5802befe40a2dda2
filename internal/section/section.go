// Package section draws vertical cross-sections through a corner-point grid:
// one line per layer boundary along a row or column of pillars.
package section

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/cornerpoint/internal/fsutil"
	"github.com/banshee-data/cornerpoint/internal/grid3d"
)

// Point is one pillar on the section line.
type Point struct {
	Pillar   int     // pillar index along the section (i for rows, j for columns)
	Distance float64 // horizontal distance from the first pillar
	Depth    float64 // mean depth of the pillar's four corner slots
}

// Series holds the depths of one layer boundary along the section.
type Series struct {
	Boundary int
	Points   []Point
}

// Section is a set of boundary lines through one row or column.
type Section struct {
	GridName string
	Axis     string // "row" or "column"
	Index    int
	Series   []Series
}

// Title is a human readable label for the section.
func (s *Section) Title() string {
	return fmt.Sprintf("%s %s %d", s.GridName, s.Axis, s.Index)
}

// RowSection follows the pillars (0..ncol, j).
func RowSection(g *grid3d.Grid, j int) (*Section, error) {
	if j < 0 || j > g.Dims.NRow {
		return nil, fmt.Errorf("row %d outside [0,%d]: %w", j, g.Dims.NRow, grid3d.ErrOutOfRange)
	}
	return build(g, "row", j, g.Dims.NCol, func(n int) (int, int) { return n, j }), nil
}

// ColumnSection follows the pillars (i, 0..nrow).
func ColumnSection(g *grid3d.Grid, i int) (*Section, error) {
	if i < 0 || i > g.Dims.NCol {
		return nil, fmt.Errorf("column %d outside [0,%d]: %w", i, g.Dims.NCol, grid3d.ErrOutOfRange)
	}
	return build(g, "column", i, g.Dims.NRow, func(n int) (int, int) { return i, n }), nil
}

func build(g *grid3d.Grid, axis string, index, last int, pillar func(n int) (int, int)) *Section {
	dist := make([]float64, last+1)
	for n := 1; n <= last; n++ {
		x0, y0 := g.PillarXY(pillar(n - 1))
		x1, y1 := g.PillarXY(pillar(n))
		dist[n] = dist[n-1] + math.Hypot(x1-x0, y1-y0)
	}

	sec := &Section{GridName: g.Name, Axis: axis, Index: index}
	for k := 0; k <= g.Dims.NLay; k++ {
		s := Series{Boundary: k, Points: make([]Point, last+1)}
		for n := 0; n <= last; n++ {
			i, j := pillar(n)
			s.Points[n] = Point{Pillar: n, Distance: dist[n], Depth: g.PillarDepth(i, j, k)}
		}
		sec.Series = append(sec.Series, s)
	}
	return sec
}

// SavePNG draws the section with depth increasing downward and writes it
// to path on fsys.
func SavePNG(fsys fsutil.FileSystem, path string, sec *Section, widthInches, heightInches float64) error {
	if len(sec.Series) == 0 {
		return fmt.Errorf("section %s has no boundaries", sec.Title())
	}

	p := plot.New()
	p.Title.Text = sec.Title()
	p.X.Label.Text = "Distance (m)"
	p.Y.Label.Text = "Depth (m)"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}

	colors := generateColors(len(sec.Series))
	for n, s := range sec.Series {
		pts := make(plotter.XYs, len(s.Points))
		for m, pt := range s.Points {
			pts[m] = plotter.XY{X: pt.Distance, Y: pt.Depth}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("boundary %d: %w", s.Boundary, err)
		}
		line.Color = colors[n]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("k=%d", s.Boundary), line)
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	wt, err := p.WriterTo(vg.Length(widthInches)*vg.Inch, vg.Length(heightInches)*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render section plot: %w", err)
	}
	if err := fsutil.WriteTo(fsys, path, wt); err != nil {
		return fmt.Errorf("save section plot: %w", err)
	}
	return nil
}

// RenderHTML writes an interactive line chart of the section.
func RenderHTML(w io.Writer, sec *Section) error {
	if len(sec.Series) == 0 {
		return fmt.Errorf("section %s has no boundaries", sec.Title())
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: sec.Title(), Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: sec.Title(), Subtitle: fmt.Sprintf("boundaries=%d pillars=%d", len(sec.Series), len(sec.Series[0].Points))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Pillar", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Depth (m)", NameLocation: "middle", NameGap: 50}),
	)

	labels := make([]string, len(sec.Series[0].Points))
	for n, pt := range sec.Series[0].Points {
		labels[n] = fmt.Sprintf("%d", pt.Pillar)
	}
	line.SetXAxis(labels)
	for _, s := range sec.Series {
		data := make([]opts.LineData, len(s.Points))
		for n, pt := range s.Points {
			data[n] = opts.LineData{Value: pt.Depth}
		}
		line.AddSeries(fmt.Sprintf("k=%d", s.Boundary), data)
	}
	return line.Render(w)
}

func generateColors(n int) []color.Color {
	if n <= 0 {
		return nil
	}
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		r, g, b := hslToRGB(float64(i)/float64(n), 0.7, 0.5)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

// hslToRGB converts HSL to RGB (0-255 range)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64
	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRGB(p, q, h+1.0/3.0)
		gf = hueToRGB(p, q, h)
		bf = hueToRGB(p, q, h-1.0/3.0)
	}
	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
