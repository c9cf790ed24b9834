// Package normalize prepares the radar chart input: it projects the filtered
// view onto the radar features, drops incomplete rows and min-max scales each
// feature into [0,1].
package normalize

import (
	"github.com/KaramelBytes/evdash/internal/dataset"
)

// Features are the radar axes, in display order.
var Features = []string{
	dataset.ColTopSpeed,
	dataset.ColAcceleration,
	dataset.ColRange,
	dataset.ColBatteryCapacity,
	dataset.ColCargoVolume,
}

// Degenerate is the score given to every row when a feature has the same
// value across all rows.
const Degenerate = 0.5

// Row is one vehicle's scaled feature values, aligned with Result.Features.
type Row struct {
	Brand  string    `json:"brand"`
	Model  string    `json:"model"`
	Values []float64 `json:"values"`
	// Raw holds the unscaled values, acceleration in seconds as read.
	Raw []float64 `json:"raw"`
}

// Result is the normalized radar input.
type Result struct {
	Features []string `json:"features"`
	Rows     []Row    `json:"rows"`
	// Dropped counts view rows excluded for a missing feature.
	Dropped int `json:"dropped"`
}

// Empty reports whether no row survived the missing-value filter.
func (r Result) Empty() bool { return len(r.Rows) == 0 }

// Normalize builds the radar input from view. Acceleration is negated before
// scaling so that a quicker car scores higher. The view is not modified.
func Normalize(view []dataset.Vehicle) Result {
	res := Result{Features: append([]string(nil), Features...)}
	var vals [][]float64
	for _, v := range view {
		row, ok := project(v)
		if !ok {
			res.Dropped++
			continue
		}
		res.Rows = append(res.Rows, Row{
			Brand: v.Brand,
			Model: v.Model,
			Raw:   append([]float64(nil), row...),
		})
		vals = append(vals, row)
	}
	if len(vals) == 0 {
		return res
	}

	for j, f := range Features {
		if f == dataset.ColAcceleration {
			for i := range vals {
				vals[i][j] = -vals[i][j]
			}
		}
		lo, hi := vals[0][j], vals[0][j]
		for i := range vals {
			lo = min(lo, vals[i][j])
			hi = max(hi, vals[i][j])
		}
		for i := range vals {
			vals[i][j] = scale(vals[i][j], lo, hi)
		}
	}
	for i := range res.Rows {
		res.Rows[i].Values = vals[i]
	}
	return res
}

func project(v dataset.Vehicle) ([]float64, bool) {
	out := make([]float64, len(Features))
	for j, f := range Features {
		n, _ := v.Number(f)
		if !n.Valid {
			return nil, false
		}
		out[j] = n.Value
	}
	return out, true
}

func scale(x, lo, hi float64) float64 {
	if hi == lo {
		return Degenerate
	}
	s := (x - lo) / (hi - lo)
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}
