package charts

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData is returned when nothing plottable remains after dropping NaN
var ErrNoData = errors.New("no plottable data")

// Size is a figure size
type Size struct {
	Width, Height vg.Length
}

// Figure sizes
var (
	Wide     = Size{12 * vg.Inch, 6 * vg.Inch}
	Standard = Size{10 * vg.Inch, 6 * vg.Inch}
	Compact  = Size{8 * vg.Inch, 4 * vg.Inch}
	Square   = Size{14 * vg.Inch, 12 * vg.Inch}
)

// Series is one named line over calendar dates
type Series struct {
	Name   string
	Dates  []time.Time
	Values []float64
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

// TimeSeries draws one line per series; NaN points are skipped
func TimeSeries(title, ylabel string, series ...Series) (*plot.Plot, error) {
	p := newPlot(title, "Date", ylabel)
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Legend.Top = true

	drawn := 0
	for i, s := range series {
		xys := make(plotter.XYs, 0, len(s.Values))
		for j, v := range s.Values {
			if j >= len(s.Dates) || !finite(v) {
				continue
			}
			xys = append(xys, plotter.XY{X: float64(s.Dates[j].Unix()), Y: v})
		}
		if len(xys) == 0 {
			continue
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("line %s: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		if len(series) > 1 && s.Name != "" {
			p.Legend.Add(s.Name, line)
		}
		drawn++
	}

	if drawn == 0 {
		return nil, ErrNoData
	}
	return p, nil
}

// Bars draws a labelled bar chart; NaN values are not accepted
func Bars(title, ylabel string, labels []string, values []float64) (*plot.Plot, error) {
	if len(values) == 0 || len(labels) != len(values) {
		return nil, ErrNoData
	}
	for _, v := range values {
		if !finite(v) {
			return nil, fmt.Errorf("bar value %v: %w", v, ErrNoData)
		}
	}

	p := newPlot(title, "", ylabel)
	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(24))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return p, nil
}

// Histogram draws the distribution of the finite values
func Histogram(title, xlabel string, values []float64, bins int) (*plot.Plot, error) {
	vals := make(plotter.Values, 0, len(values))
	for _, v := range values {
		if finite(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return nil, ErrNoData
	}

	p := newPlot(title, xlabel, "Frequency")
	h, err := plotter.NewHist(vals, bins)
	if err != nil {
		return nil, fmt.Errorf("histogram: %w", err)
	}
	h.FillColor = plotutil.Color(0)
	p.Add(h)
	return p, nil
}

// correlationGrid adapts a square matrix to plotter.GridXYZ, first row on top
type correlationGrid struct {
	m [][]float64
}

func (g correlationGrid) Dims() (c, r int)   { return len(g.m), len(g.m) }
func (g correlationGrid) Z(c, r int) float64 { return g.m[len(g.m)-1-r][c] }
func (g correlationGrid) X(c int) float64    { return float64(c) }
func (g correlationGrid) Y(r int) float64    { return float64(r) }

// Heatmap draws a labelled correlation matrix on a fixed [-1, 1] scale
func Heatmap(title string, labels []string, matrix [][]float64) (*plot.Plot, error) {
	if len(labels) == 0 || len(labels) != len(matrix) {
		return nil, ErrNoData
	}
	for _, row := range matrix {
		if len(row) != len(labels) {
			return nil, fmt.Errorf("matrix is not %dx%d", len(labels), len(labels))
		}
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)

	h := plotter.NewHeatMap(correlationGrid{m: matrix}, cm.Palette(255))
	h.Min = -1
	h.Max = 1
	h.NaN = color.Gray{Y: 220}

	p := newPlot(title, "", "")
	p.Add(h)

	reversed := make([]string, len(labels))
	for i, l := range labels {
		reversed[len(labels)-1-i] = l
	}
	p.NominalX(labels...)
	p.NominalY(reversed...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return p, nil
}

// Save renders p to path; the format follows the extension
func Save(p *plot.Plot, size Size, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	if err := p.Save(size.Width, size.Height, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WritePNG renders p as PNG onto w
func WritePNG(w io.Writer, p *plot.Plot, size Size) error {
	wt, err := p.WriterTo(size.Width, size.Height, "png")
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
