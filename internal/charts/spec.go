// Package charts builds the dashboard charts. Each chart is a declarative
// Spec turned into a plotly-compatible Figure, which can be sent to the
// browser as JSON or rendered to a static PNG/SVG image.
package charts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/evdash/internal/dataset"
)

// ErrUnknownChart is returned for a chart kind or output format that does
// not exist.
var ErrUnknownChart = errors.New("unknown chart")

// Kind names a chart.
type Kind string

const (
	KindBubble Kind = "bubble"
	KindLine   Kind = "line"
	KindBar    Kind = "bar"
	KindRadar  Kind = "radar"
)

// Kinds lists the charts in page order.
var Kinds = []Kind{KindBubble, KindLine, KindBar, KindRadar}

// Spec describes a chart by the columns it plots.
type Spec struct {
	Kind  Kind
	Title string
	X     string
	Y     string
	// Color splits rows into one trace per distinct value.
	Color string
	// Size scales bubble markers.
	Size string
	// Hover labels each point.
	Hover string
	// SortBy orders rows ascending before plotting; missing values go last.
	SortBy  string
	Markers bool
	// Labels overrides axis and legend titles per column.
	Labels map[string]string
	Height int
}

// Label returns the axis title for col.
func (s Spec) Label(col string) string {
	if l, ok := s.Labels[col]; ok {
		return l
	}
	return col
}

// RadarBackground is the polar area fill.
const RadarBackground = "#193450"

var specs = map[Kind]Spec{
	KindBubble: {
		Kind:  KindBubble,
		Title: "Battery Capacity vs Top Speed (Bubble Size = Seats)",
		X:     dataset.ColBatteryCapacity,
		Y:     dataset.ColTopSpeed,
		Size:  dataset.ColSeats,
		Color: dataset.ColBrand,
		Hover: dataset.ColModel,
		Labels: map[string]string{
			dataset.ColBatteryCapacity: "Battery (kWh)",
			dataset.ColTopSpeed:        "Top Speed (km/h)",
			dataset.ColSeats:           "Seats",
		},
		Height: 600,
	},
	KindLine: {
		Kind:    KindLine,
		Title:   "Acceleration (0–100 km/h) Comparison",
		X:       dataset.ColModel,
		Y:       dataset.ColAcceleration,
		Color:   dataset.ColBrand,
		SortBy:  dataset.ColAcceleration,
		Markers: true,
		Labels: map[string]string{
			dataset.ColAcceleration: "0–100 km/h (s)",
			dataset.ColModel:        "Model",
		},
	},
	KindBar: {
		Kind:  KindBar,
		Title: "Battery Capacity by Model",
		X:     dataset.ColModel,
		Y:     dataset.ColBatteryCapacity,
		Color: dataset.ColBrand,
		Labels: map[string]string{
			dataset.ColBatteryCapacity: "Battery (kWh)",
			dataset.ColModel:           "Model",
		},
	},
	KindRadar: {
		Kind:  KindRadar,
		Title: "Radar Chart of Performance and Utility Specs",
		Hover: dataset.ColModel,
	},
}

// SpecFor returns the built-in spec for kind.
func SpecFor(kind Kind) (Spec, error) {
	s, ok := specs[kind]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownChart, kind)
	}
	return s, nil
}

// ParseKind accepts a chart name case-insensitively.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := specs[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	return k, nil
}

// Format is a chart output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
	FormatJSON Format = "json"
)

// ParseFormat accepts png, svg or json.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatPNG, FormatSVG, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("%w: format %q", ErrUnknownChart, name)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	default:
		return "application/json"
	}
}
