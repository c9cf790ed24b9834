package charts

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/evdash/internal/dataset"
	"github.com/KaramelBytes/evdash/internal/normalize"
)

// Figure is a plotly figure: a list of traces and a layout.
type Figure struct {
	Kind   Kind    `json:"-"`
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Empty reports whether the figure has nothing to plot.
func (f Figure) Empty() bool {
	for _, t := range f.Data {
		if len(t.X) > 0 || len(t.R) > 0 {
			return false
		}
	}
	return true
}

// Trace is one plotly series.
type Trace struct {
	Type          string    `json:"type"`
	Mode          string    `json:"mode,omitempty"`
	Name          string    `json:"name"`
	LegendGroup   string    `json:"legendgroup,omitempty"`
	X             []any     `json:"x,omitempty"`
	Y             []float64 `json:"y,omitempty"`
	R             []float64 `json:"r,omitempty"`
	Theta         []string  `json:"theta,omitempty"`
	Fill          string    `json:"fill,omitempty"`
	Text          []string  `json:"text,omitempty"`
	HoverTemplate string    `json:"hovertemplate,omitempty"`
	Marker        *Marker   `json:"marker,omitempty"`
}

// Marker styles trace points. Size is in plotly "area" units scaled by SizeRef.
type Marker struct {
	Size     []float64 `json:"size,omitempty"`
	SizeMode string    `json:"sizemode,omitempty"`
	SizeRef  float64   `json:"sizeref,omitempty"`
}

// Layout is the subset of plotly layout the dashboard uses.
type Layout struct {
	Title      Text    `json:"title"`
	Height     int     `json:"height,omitempty"`
	XAxis      *Axis   `json:"xaxis,omitempty"`
	YAxis      *Axis   `json:"yaxis,omitempty"`
	Polar      *Polar  `json:"polar,omitempty"`
	Legend     *Legend `json:"legend,omitempty"`
	ShowLegend bool    `json:"showlegend"`
	BarMode    string  `json:"barmode,omitempty"`
}

type Text struct {
	Text string `json:"text"`
}

type Axis struct {
	Title         Text     `json:"title"`
	CategoryOrder string   `json:"categoryorder,omitempty"`
	CategoryArray []string `json:"categoryarray,omitempty"`
}

type Legend struct {
	Title Text `json:"title"`
}

type Polar struct {
	BgColor    string     `json:"bgcolor"`
	RadialAxis RadialAxis `json:"radialaxis"`
}

type RadialAxis struct {
	Visible bool      `json:"visible"`
	Range   []float64 `json:"range"`
}

// maxBubble is the largest bubble diameter in pixels.
const maxBubble = 20

// Build turns the filtered view into the figure described by spec.
func Build(spec Spec, view []dataset.Vehicle) (Figure, error) {
	switch spec.Kind {
	case KindRadar:
		return Radar(spec, normalize.Normalize(view)), nil
	case KindBubble, KindLine, KindBar:
	default:
		return Figure{}, fmt.Errorf("%w: %q", ErrUnknownChart, spec.Kind)
	}

	pts := points(spec, view)
	fig := Figure{
		Kind: spec.Kind,
		Data: []Trace{},
		Layout: Layout{
			Title:      Text{spec.Title},
			Height:     spec.Height,
			XAxis:      &Axis{Title: Text{spec.Label(spec.X)}},
			YAxis:      &Axis{Title: Text{spec.Label(spec.Y)}},
			ShowLegend: true,
		},
	}
	if spec.Color != "" {
		fig.Layout.Legend = &Legend{Title: Text{spec.Label(spec.Color)}}
	}

	var sizeRef float64
	if spec.Size != "" {
		var top float64
		for _, p := range pts {
			top = math.Max(top, p.size)
		}
		sizeRef = 1
		if top > 0 {
			sizeRef = 2 * top / (maxBubble * maxBubble)
		}
	}

	byGroup := map[string]int{}
	for _, p := range pts {
		i, ok := byGroup[p.group]
		if !ok {
			i = len(fig.Data)
			byGroup[p.group] = i
			fig.Data = append(fig.Data, newTrace(spec, p.group, sizeRef))
		}
		t := &fig.Data[i]
		t.X = append(t.X, p.x)
		t.Y = append(t.Y, p.y)
		if spec.Hover != "" {
			t.Text = append(t.Text, p.hover)
		}
		if t.Marker != nil {
			t.Marker.Size = append(t.Marker.Size, p.size)
		}
	}

	if !dataset.IsNumeric(spec.X) {
		// Keep categories in plotted order across traces.
		var cats []string
		seen := map[string]bool{}
		for _, p := range pts {
			if c := p.x.(string); !seen[c] {
				seen[c] = true
				cats = append(cats, c)
			}
		}
		fig.Layout.XAxis.CategoryOrder = "array"
		fig.Layout.XAxis.CategoryArray = cats
	}
	if spec.Kind == KindBar {
		fig.Layout.BarMode = "relative"
	}
	return fig, nil
}

func newTrace(spec Spec, group string, sizeRef float64) Trace {
	t := Trace{Name: group, LegendGroup: group}
	switch spec.Kind {
	case KindBar:
		t.Type = "bar"
	case KindLine:
		t.Type = "scatter"
		t.Mode = "lines"
		if spec.Markers {
			t.Mode = "lines+markers"
		}
	default:
		t.Type = "scatter"
		t.Mode = "markers"
	}
	if spec.Size != "" {
		t.Marker = &Marker{SizeMode: "area", SizeRef: sizeRef}
	}
	t.HoverTemplate = hoverTemplate(spec)
	return t
}

func hoverTemplate(spec Spec) string {
	tpl := ""
	if spec.Hover != "" {
		tpl = "<b>%{text}</b><br>"
	}
	tpl += spec.Label(spec.X) + "=%{x}<br>" + spec.Label(spec.Y) + "=%{y}"
	if spec.Size != "" {
		tpl += "<br>" + spec.Label(spec.Size) + "=%{marker.size}"
	}
	return tpl + "<extra></extra>"
}

type point struct {
	x     any
	y     float64
	size  float64
	group string
	hover string
}

// points extracts the plottable rows in plot order. Rows missing x, y or a
// required size are skipped.
func points(spec Spec, view []dataset.Vehicle) []point {
	rows := view
	if spec.SortBy != "" {
		rows = sortedBy(view, spec.SortBy)
	}
	out := make([]point, 0, len(rows))
	for _, v := range rows {
		var p point
		if dataset.IsNumeric(spec.X) {
			n, _ := v.Number(spec.X)
			if !n.Valid {
				continue
			}
			p.x = n.Value
		} else {
			s, _ := v.Text(spec.X)
			if s == "" {
				continue
			}
			p.x = s
		}
		y, _ := v.Number(spec.Y)
		if !y.Valid {
			continue
		}
		p.y = y.Value
		if spec.Size != "" {
			n, _ := v.Number(spec.Size)
			if !n.Valid {
				continue
			}
			p.size = n.Value
		}
		p.group, _ = v.Text(spec.Color)
		p.hover, _ = v.Text(spec.Hover)
		out = append(out, p)
	}
	return out
}

// sortedBy returns a copy of view ordered ascending by a numeric column,
// with missing values last. Ties keep view order.
func sortedBy(view []dataset.Vehicle, col string) []dataset.Vehicle {
	out := append([]dataset.Vehicle(nil), view...)
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i].Number(col)
		b, _ := out[j].Number(col)
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Value < b.Value
	})
	return out
}

// Radar builds one closed, filled polar trace per normalized row.
func Radar(spec Spec, res normalize.Result) Figure {
	fig := Figure{
		Kind: KindRadar,
		Data: []Trace{},
		Layout: Layout{
			Title: Text{spec.Title},
			Polar: &Polar{
				BgColor:    RadarBackground,
				RadialAxis: RadialAxis{Visible: true, Range: []float64{0, 1}},
			},
			ShowLegend: true,
		},
	}
	if res.Empty() {
		return fig
	}
	theta := append(append([]string(nil), res.Features...), res.Features[0])
	for _, row := range res.Rows {
		r := append(append([]float64(nil), row.Values...), row.Values[0])
		fig.Data = append(fig.Data, Trace{
			Type:          "scatterpolar",
			Name:          row.Model,
			R:             r,
			Theta:         theta,
			Fill:          "toself",
			HoverTemplate: "<b>" + row.Model + "</b><br>%{theta}=%{r:.2f}<extra></extra>",
		})
	}
	return fig
}
