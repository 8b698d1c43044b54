package pipeline

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/ppiankov/speclens/internal/distribution"
	"github.com/ppiankov/speclens/internal/keyword"
	"github.com/ppiankov/speclens/internal/model"
)

// Group colours of the distribution bar charts
var (
	ruleColor    = color.RGBA{R: 0xff, A: 0xff}                   // red
	nonRuleColor = color.RGBA{R: 0xd2, G: 0xb4, B: 0x8c, A: 0xff} // tan
	maskColor    = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff} // hidden heatmap cells
	labelColor   = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff} // annotations
)

// Renderer writes charts and reports. It holds no mutable state and may be shared
// across goroutines.
type Renderer struct {
	width  vg.Length
	height vg.Length
}

// NewRenderer creates a renderer producing images of the given size in inches
func NewRenderer(widthIn, heightIn int) *Renderer {
	if widthIn <= 0 {
		widthIn = 14
	}
	if heightIn <= 0 {
		heightIn = 13
	}
	return &Renderer{
		width:  vg.Length(widthIn) * vg.Inch,
		height: vg.Length(heightIn) * vg.Inch,
	}
}

// ChartEntries returns the keywords a chart shows. With a cutoff the entries are
// ordered by total count unless preserveOrder is set; without one (topN < 0) the
// selection order is kept.
func ChartEntries(sel model.Selection, topN int, preserveOrder bool) []model.KeywordStat {
	if topN < 0 || preserveOrder {
		return sel.Top(topN)
	}
	entries := make([]model.KeywordStat, len(sel.Entries))
	copy(entries, sel.Entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return keyword.ByTotalDesc(entries[i], entries[j])
	})
	return model.Selection{Entries: entries}.Top(topN)
}

// RenderKeywordChart draws a stacked bar per keyword showing each category's share of its
// occurrences. It reports false without writing anything when the selection is empty.
func (r *Renderer) RenderKeywordChart(sel model.Selection, topN int, preserveOrder bool, path string) (bool, error) {
	entries := ChartEntries(sel, topN, preserveOrder)
	if len(entries) == 0 {
		return false, nil
	}

	p := plot.New()
	p.Title.Text = sel.Title
	p.X.Label.Text = "Keywords"
	p.Y.Label.Text = "Ratio"
	p.Y.Min = 0
	p.Y.Max = 1
	p.Legend.Top = true

	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = fmt.Sprintf("%s (%d)", e.Keyword, e.Counts.Total)
	}

	width := barWidth(r.width, len(entries))
	var below *plotter.BarChart
	for i, c := range model.AllCategories {
		values := make(plotter.Values, len(entries))
		for j, e := range entries {
			values[j] = e.Counts.Ratios()[i]
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return false, fmt.Errorf("bar chart: %w", err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		if below != nil {
			bars.StackOn(below)
		}
		p.Add(bars)
		p.Legend.Add(c.String(), bars)
		below = bars
	}

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	if err := p.Save(r.width, r.height, path); err != nil {
		return false, fmt.Errorf("save chart: %w", err)
	}
	return true, nil
}

// RenderDistribution draws one panel per tracked category comparing the per-sentence
// keyword counts of rule and non-rule sentences
func (r *Renderer) RenderDistribution(g distribution.Groups, path string) error {
	panels := make([][]*plot.Plot, model.TrackedCategoryCount)
	ticks := make([]string, len(distribution.BarEdges)-1)
	for i := range ticks {
		ticks[i] = strconv.Itoa(i)
	}
	width := barWidth(r.width, len(ticks)) / 2

	for i, c := range model.TrackedCategories {
		p := plot.New()
		p.Title.Text = c.Title() + " distribution"
		if i == 0 {
			p.Title.Text = g.Spec + ": " + p.Title.Text
		}
		p.Legend.Top = true

		for _, side := range []struct {
			name   string
			rule   bool
			color  color.Color
			offset vg.Length
		}{
			{"rule sentence", true, ruleColor, -width / 2},
			{"non-rule sentence", false, nonRuleColor, width / 2},
		} {
			counts := distribution.Histogram(g.Group(side.rule).Category(c), distribution.BarEdges)
			bars, err := plotter.NewBarChart(plotter.Values(counts), width)
			if err != nil {
				return fmt.Errorf("bar chart: %w", err)
			}
			bars.Color = side.color
			bars.LineStyle.Width = 0
			bars.Offset = side.offset
			p.Add(bars)
			p.Legend.Add(side.name, bars)
		}
		p.NominalX(ticks...)
		panels[i] = []*plot.Plot{p}
	}

	img := vgimg.New(r.width, r.height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(panels),
		Cols:      1,
		PadTop:    vg.Points(10),
		PadBottom: vg.Points(10),
		PadLeft:   vg.Points(10),
		PadRight:  vg.Points(10),
		PadY:      vg.Points(20),
	}
	canvases := plot.Align(panels, tiles, dc)
	for i := range panels {
		panels[i][0].Draw(canvases[i][0])
	}

	return writePNG(img, path)
}

// heatGrid adapts a similarity matrix to plotter.GridXYZ. Grid rows run bottom-up, so
// matrix row 0 is drawn at the top. Masked cells are NaN and take the heatmap's NaN colour.
type heatGrid struct {
	matrix [][]float64
}

func (g heatGrid) Dims() (c, r int) { return len(g.matrix), len(g.matrix) }
func (g heatGrid) X(c int) float64  { return float64(c) }
func (g heatGrid) Y(r int) float64  { return float64(r) }

func (g heatGrid) Z(c, r int) float64 {
	row := g.row(r)
	if distribution.Masked(row, c) {
		return math.NaN()
	}
	return g.matrix[row][c]
}

// row maps between grid rows and matrix rows; the mapping is its own inverse
func (g heatGrid) row(r int) int {
	return len(g.matrix) - 1 - r
}

// RenderHeatmap draws the lower triangle of a cosine-similarity matrix with each
// visible cell annotated to two decimals
func (r *Renderer) RenderHeatmap(h distribution.Heatmap, path string) error {
	n := len(h.Labels)
	if n == 0 {
		return fmt.Errorf("heatmap %s: no specifications", h.Category.Entity())
	}

	p := plot.New()
	if h.Rule {
		p.Title.Text = "Rule Sentences"
	} else {
		p.Title.Text = "Non-rule Sentences"
	}

	grid := heatGrid{matrix: h.Matrix}
	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	hm.Min = 0
	hm.Max = 1
	hm.NaN = maskColor
	p.Add(hm)

	var cells plotter.XYLabels
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if distribution.Masked(row, col) {
				continue
			}
			cells.XYs = append(cells.XYs, plotter.XY{X: grid.X(col), Y: grid.Y(grid.row(row))})
			cells.Labels = append(cells.Labels, strconv.FormatFloat(h.Matrix[row][col], 'f', 2, 64))
		}
	}
	if len(cells.Labels) > 0 {
		annotations, err := plotter.NewLabels(cells)
		if err != nil {
			return fmt.Errorf("heatmap labels: %w", err)
		}
		for i := range annotations.TextStyle {
			annotations.TextStyle[i].Color = labelColor
			annotations.TextStyle[i].XAlign = draw.XCenter
			annotations.TextStyle[i].YAlign = draw.YCenter
		}
		p.Add(annotations)
	}

	yLabels := make([]string, n)
	for i, l := range h.Labels {
		yLabels[n-1-i] = l
	}
	p.NominalX(h.Labels...)
	p.NominalY(yLabels...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	if err := p.Save(r.width, r.height, path); err != nil {
		return fmt.Errorf("save heatmap: %w", err)
	}
	return nil
}

// barWidth spreads n bars over most of the canvas width
func barWidth(total vg.Length, n int) vg.Length {
	if n <= 0 {
		n = 1
	}
	w := total * 0.6 / vg.Length(n)
	if limit := vg.Points(40); w > limit {
		w = limit
	}
	return w
}

func writePNG(img *vgimg.Canvas, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close image: %w", closeErr)
		}
	}()

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}
