package charts

import (
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// go-chart has no polar series, so the radar is drawn directly on a renderer.

const (
	radarTitleHeight = 48
	radarLegendWidth = 180
	radarLabelGap    = 14
)

var radarGrid = []float64{0.25, 0.5, 0.75, 1}

func renderRadar(w io.Writer, rp chart.RendererProvider, fig Figure, width, height int) error {
	r, err := rp(width, height)
	if err != nil {
		return err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetFont(font)

	// Canvas.
	r.SetFillColor(drawing.ColorWhite)
	r.SetStrokeColor(drawing.ColorWhite)
	r.SetStrokeWidth(0)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()

	// Title.
	r.SetFontColor(drawing.ColorBlack)
	r.SetFontSize(16)
	tb := r.MeasureText(fig.Layout.Title.Text)
	r.Text(fig.Layout.Title.Text, (width-tb.Width())/2, 28)

	theta := fig.Data[0].Theta
	n := len(theta)
	if n > 1 && theta[0] == theta[n-1] {
		n-- // closing point
	}
	plotW := width - radarLegendWidth
	cx := plotW / 2
	cy := radarTitleHeight + (height-radarTitleHeight)/2
	radius := math.Min(float64(plotW), float64(height-radarTitleHeight))/2 - 60
	if radius < 20 {
		radius = 20
	}
	at := func(k int, v float64) (int, int) {
		a := 2 * math.Pi * float64(k) / float64(n)
		return cx + int(math.Round(v*radius*math.Cos(a))), cy - int(math.Round(v*radius*math.Sin(a)))
	}

	// Polar area and grid.
	bg := drawing.ColorFromHex(RadarBackground[1:])
	if fig.Layout.Polar != nil && len(fig.Layout.Polar.BgColor) == 7 {
		bg = drawing.ColorFromHex(fig.Layout.Polar.BgColor[1:])
	}
	r.SetFillColor(bg)
	r.SetStrokeColor(bg)
	r.SetStrokeWidth(1)
	r.Circle(radius, cx, cy)
	r.FillStroke()

	grid := drawing.ColorWhite.WithAlpha(90)
	r.SetStrokeColor(grid)
	r.SetStrokeWidth(1)
	for _, g := range radarGrid {
		r.Circle(g*radius, cx, cy)
		r.Stroke()
	}
	for k := 0; k < n; k++ {
		x, y := at(k, 1)
		r.MoveTo(cx, cy)
		r.LineTo(x, y)
		r.Stroke()
	}

	// Axis labels.
	r.SetFontSize(10)
	r.SetFontColor(drawing.ColorBlack)
	for k := 0; k < n; k++ {
		x, y := at(k, 1+radarLabelGap/radius)
		lb := r.MeasureText(theta[k])
		switch {
		case x < cx-2:
			x -= lb.Width()
		case x <= cx+2:
			x -= lb.Width() / 2
		}
		if y > cy {
			y += lb.Height()
		}
		r.Text(theta[k], x, y)
	}

	// One filled polygon per trace.
	for i, t := range fig.Data {
		col := traceColor(i)
		r.SetFillColor(col.WithAlpha(70))
		r.SetStrokeColor(col)
		r.SetStrokeWidth(2)
		for k := 0; k < n && k < len(t.R); k++ {
			x, y := at(k, clamp01(t.R[k]))
			if k == 0 {
				r.MoveTo(x, y)
			} else {
				r.LineTo(x, y)
			}
		}
		r.Close()
		r.FillStroke()
	}

	// Legend.
	r.SetFontSize(11)
	lx := plotW + 10
	for i, t := range fig.Data {
		ly := radarTitleHeight + 10 + i*20
		col := traceColor(i)
		r.SetFillColor(col)
		r.SetStrokeColor(col)
		r.SetStrokeWidth(1)
		r.MoveTo(lx, ly)
		r.LineTo(lx+12, ly)
		r.LineTo(lx+12, ly+12)
		r.LineTo(lx, ly+12)
		r.Close()
		r.FillStroke()
		r.SetFontColor(drawing.ColorBlack)
		r.Text(t.Name, lx+18, ly+11)
	}

	return r.Save(w)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
