package charts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrEmptyFigure is returned when a static image is requested for a figure
// with no data.
var ErrEmptyFigure = errors.New("nothing to plot")

// Default static image size.
const (
	DefaultWidth  = 1024
	DefaultHeight = 600
)

// Render writes fig in the requested format. Width and height apply to
// static images; zero values fall back to the figure height and defaults.
func Render(w io.Writer, fig Figure, format Format, width, height int) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		if err := enc.Encode(fig); err != nil {
			return fmt.Errorf("encode figure: %w", err)
		}
		return nil
	}
	rp, err := provider(format)
	if err != nil {
		return err
	}
	if fig.Empty() {
		return ErrEmptyFigure
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = fig.Layout.Height
	}
	if height <= 0 {
		height = DefaultHeight
	}

	switch fig.Kind {
	case KindBubble, KindLine:
		err = renderXY(w, rp, fig, width, height)
	case KindBar:
		err = renderBar(w, rp, fig, width, height)
	case KindRadar:
		err = renderRadar(w, rp, fig, width, height)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChart, fig.Kind)
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", fig.Kind, err)
	}
	return nil
}

func provider(f Format) (chart.RendererProvider, error) {
	switch f {
	case FormatPNG:
		return chart.PNG, nil
	case FormatSVG:
		return chart.SVG, nil
	}
	return nil, fmt.Errorf("%w: format %q", ErrUnknownChart, f)
}

// traceColor picks the palette color for the i-th trace.
func traceColor(i int) drawing.Color {
	return chart.GetDefaultColor(i)
}

// renderXY draws scatter and line traces. Categorical x values are placed
// at their index in the axis category order.
func renderXY(w io.Writer, rp chart.RendererProvider, fig Figure, width, height int) error {
	cats := map[string]int{}
	var ticks []chart.Tick
	if fig.Layout.XAxis != nil {
		for i, c := range fig.Layout.XAxis.CategoryArray {
			cats[c] = i
			ticks = append(ticks, chart.Tick{Value: float64(i), Label: c})
		}
	}

	xr, yr := newSpan(), newSpan()
	series := make([]chart.Series, 0, len(fig.Data))
	for i, t := range fig.Data {
		xs := make([]float64, 0, len(t.X))
		for _, x := range t.X {
			switch v := x.(type) {
			case float64:
				xs = append(xs, v)
			case string:
				xs = append(xs, float64(cats[v]))
			}
		}
		for j := range xs {
			xr.add(xs[j])
			yr.add(t.Y[j])
		}
		col := traceColor(i)
		style := chart.Style{
			StrokeColor: col,
			StrokeWidth: 2,
			DotColor:    col,
			DotWidth:    4,
		}
		if t.Mode == "markers" {
			style.StrokeWidth = chart.Disabled
			style.DotColor = col.WithAlpha(180)
		}
		if t.Marker != nil && len(t.Marker.Size) == len(xs) {
			sizes, ref := t.Marker.Size, t.Marker.SizeRef
			style.DotWidthProvider = func(_, _ chart.Range, idx int, _, _ float64) float64 {
				return bubbleRadius(sizes[idx], ref)
			}
		}
		series = append(series, chart.ContinuousSeries{
			Name:    t.Name,
			XValues: xs,
			YValues: t.Y,
			Style:   style,
		})
	}

	xAxis := chart.XAxis{Name: axisTitle(fig.Layout.XAxis)}
	if len(ticks) > 0 {
		// go-chart takes the x domain from the tick values, so a single
		// category would give a zero-width axis. Blank edge ticks pad it.
		edge := float64(len(ticks)) - 0.5
		xAxis.Ticks = append(append([]chart.Tick{{Value: -0.5}}, ticks...), chart.Tick{Value: edge})
		xAxis.Range = &chart.ContinuousRange{Min: -0.5, Max: edge}
		xAxis.TickStyle = chart.Style{TextRotationDegrees: 45}
	} else {
		xAxis.Range = xr.padded()
	}
	ch := chart.Chart{
		Title:      fig.Layout.Title.Text,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Name: axisTitle(fig.Layout.YAxis), Range: yr.padded()},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(rp, w)
}

func renderBar(w io.Writer, rp chart.RendererProvider, fig Figure, width, height int) error {
	var bars []chart.Value
	lo, hi := 0.0, 0.0
	for i, t := range fig.Data {
		col := traceColor(i)
		for j, x := range t.X {
			label, _ := x.(string)
			bars = append(bars, chart.Value{
				Value: t.Y[j],
				Label: label,
				Style: chart.Style{FillColor: col, StrokeColor: col},
			})
			lo = math.Min(lo, t.Y[j])
			hi = math.Max(hi, t.Y[j])
		}
	}
	if hi == lo {
		hi = lo + 1
	}
	barWidth := (width - 120) / (2 * len(bars))
	if barWidth < 4 {
		barWidth = 4
	}
	if barWidth > 80 {
		barWidth = 80
	}
	bc := chart.BarChart{
		Title:      fig.Layout.Title.Text,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis: chart.YAxis{
			Name:  axisTitle(fig.Layout.YAxis),
			Range: &chart.ContinuousRange{Min: lo, Max: hi * 1.1},
		},
		Bars: bars,
	}
	return bc.Render(rp, w)
}

func axisTitle(a *Axis) string {
	if a == nil {
		return ""
	}
	return a.Title.Text
}

// bubbleRadius converts a plotly area-mode marker size to a dot radius.
func bubbleRadius(size, ref float64) float64 {
	if ref <= 0 || size <= 0 {
		return 2
	}
	return math.Max(2, math.Sqrt(size/ref)/2)
}

// span tracks a value range for axis bounds.
type span struct {
	min, max float64
	ok       bool
}

func newSpan() *span { return &span{} }

func (s *span) add(v float64) {
	if !s.ok {
		s.min, s.max, s.ok = v, v, true
		return
	}
	s.min = math.Min(s.min, v)
	s.max = math.Max(s.max, v)
}

// padded widens the range by 5% each side, or by one unit when it is a
// single value.
func (s *span) padded() *chart.ContinuousRange {
	if !s.ok {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	pad := (s.max - s.min) * 0.05
	if pad == 0 {
		pad = math.Max(1, math.Abs(s.max)*0.05)
	}
	return &chart.ContinuousRange{Min: s.min - pad, Max: s.max + pad}
}
