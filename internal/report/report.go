// Package report renders a Markdown comparison of the selected vehicles.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/message"

	"github.com/KaramelBytes/evdash/internal/dataset"
	"github.com/KaramelBytes/evdash/internal/filter"
	"github.com/KaramelBytes/evdash/internal/normalize"
	"github.com/KaramelBytes/evdash/internal/table"
)

// Report is a markdown-friendly comparison of a filtered view.
type Report struct {
	Source    string
	Rows      int // rows in the dataset
	Selection filter.Selection
	Specs     table.Table
	Features  []FeatureSummary
	Brands    []BrandSummary
	Radar     normalize.Result
	Notes     []string
}

// FeatureSummary holds statistics for one numeric column over the view.
type FeatureSummary struct {
	Column  string
	Label   string
	Count   int
	Missing int
	Min     float64
	Max     float64
	Mean    float64
	Std     float64
	Median  float64
}

// BrandSummary aggregates the view per brand.
type BrandSummary struct {
	Brand  string
	Models int
	// Mean range and battery over the brand's rows that have them.
	MeanRange   float64
	MeanBattery float64
}

// Build assembles the report for view. p formats the specification table;
// nil uses English conventions.
func Build(ds *dataset.Dataset, sel filter.Selection, view []dataset.Vehicle, p *message.Printer) (*Report, error) {
	r := &Report{Source: ds.Name, Rows: ds.Len(), Selection: sel}
	specs, err := table.Display(ds.Header, view, p)
	if err != nil {
		return nil, fmt.Errorf("build table: %w", err)
	}
	r.Specs = specs
	if len(view) == 0 {
		r.Notes = append(r.Notes, "Please select at least one EV model to compare.")
		return r, nil
	}

	for _, col := range dataset.NumericColumns() {
		if !hasColumn(ds.Header, col) {
			continue
		}
		r.Features = append(r.Features, summarize(col, view))
	}
	r.Brands = brandSummaries(view)
	r.Radar = normalize.Normalize(view)

	if r.Radar.Empty() {
		r.Notes = append(r.Notes, "No selected model has all radar features; the radar chart is omitted.")
	} else if r.Radar.Dropped > 0 {
		r.Notes = append(r.Notes, fmt.Sprintf("%d model(s) left out of the radar chart for missing features.", r.Radar.Dropped))
	}
	for _, f := range r.Features {
		if f.Missing > 0 && f.Count > 0 {
			r.Notes = append(r.Notes, fmt.Sprintf("%s: %d of %d values missing.", f.Label, f.Missing, f.Count+f.Missing))
		}
	}
	return r, nil
}

func hasColumn(header []string, col string) bool {
	for _, h := range header {
		if h == col {
			return true
		}
	}
	return false
}

// summarize computes count, min, max, mean and std with Welford's update.
func summarize(col string, view []dataset.Vehicle) FeatureSummary {
	s := FeatureSummary{Column: col, Label: table.Label(col), Min: math.Inf(1), Max: math.Inf(-1)}
	var m2 float64
	var vals []float64
	for _, v := range view {
		n, _ := v.Number(col)
		if !n.Valid {
			s.Missing++
			continue
		}
		x := n.Value
		s.Count++
		s.Min = math.Min(s.Min, x)
		s.Max = math.Max(s.Max, x)
		delta := x - s.Mean
		s.Mean += delta / float64(s.Count)
		m2 += delta * (x - s.Mean)
		vals = append(vals, x)
	}
	if s.Count == 0 {
		s.Min, s.Max = 0, 0
		return s
	}
	if s.Count > 1 {
		s.Std = math.Sqrt(m2 / float64(s.Count-1))
	}
	sort.Float64s(vals)
	s.Median = quantile(vals, 0.5)
	return s
}

func brandSummaries(view []dataset.Vehicle) []BrandSummary {
	type acc struct {
		models     map[string]bool
		rng, batt  float64
		nRng, nBat int
	}
	byBrand := map[string]*acc{}
	var order []string
	for _, v := range view {
		a := byBrand[v.Brand]
		if a == nil {
			a = &acc{models: map[string]bool{}}
			byBrand[v.Brand] = a
			order = append(order, v.Brand)
		}
		a.models[v.Model] = true
		if v.Range.Valid {
			a.rng += v.Range.Value
			a.nRng++
		}
		if v.BatteryCapacity.Valid {
			a.batt += v.BatteryCapacity.Value
			a.nBat++
		}
	}
	sort.Strings(order)
	out := make([]BrandSummary, 0, len(order))
	for _, b := range order {
		a := byBrand[b]
		bs := BrandSummary{Brand: b, Models: len(a.models), MeanRange: math.NaN(), MeanBattery: math.NaN()}
		if a.nRng > 0 {
			bs.MeanRange = a.rng / float64(a.nRng)
		}
		if a.nBat > 0 {
			bs.MeanBattery = a.batt / float64(a.nBat)
		}
		out = append(out, bs)
	}
	return out
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Markdown renders the report.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[SELECTION]\n")
	if r.Source != "" {
		b.WriteString(fmt.Sprintf("Source: %s (%d rows)\n", r.Source, r.Rows))
	}
	b.WriteString(fmt.Sprintf("Brands: %s\n", list(r.Selection.Brands)))
	b.WriteString(fmt.Sprintf("Drivetrains: %s\n", list(r.Selection.Drivetrains)))
	b.WriteString(fmt.Sprintf("Models: %s\n", list(r.Selection.Models)))
	b.WriteString(fmt.Sprintf("Matching rows: %d\n", r.Specs.Len()))

	if r.Specs.Len() > 0 {
		b.WriteString("\n[KEY SPECIFICATIONS]\n")
		writeTable(&b, r.Specs)
	}

	if len(r.Features) > 0 {
		b.WriteString("\n[FEATURE SUMMARY]\n")
		for _, f := range r.Features {
			if f.Count == 0 {
				b.WriteString(fmt.Sprintf("- %s: no values\n", f.Label))
				continue
			}
			b.WriteString(fmt.Sprintf("- %s: n=%d, min %.4g, max %.4g, mean %.4g, median %.4g", f.Label, f.Count, f.Min, f.Max, f.Mean, f.Median))
			if f.Count > 1 {
				b.WriteString(fmt.Sprintf(", std %.4g", f.Std))
			}
			b.WriteString("\n")
		}
	}

	if len(r.Brands) > 1 {
		b.WriteString("\n[BRAND SUMMARY]\n")
		for _, bs := range r.Brands {
			b.WriteString(fmt.Sprintf("- %s (models=%d)", safeVal(bs.Brand), bs.Models))
			if !math.IsNaN(bs.MeanRange) {
				b.WriteString(fmt.Sprintf(": mean range %.4g km", bs.MeanRange))
			}
			if !math.IsNaN(bs.MeanBattery) {
				b.WriteString(fmt.Sprintf(", mean battery %.4g kWh", bs.MeanBattery))
			}
			b.WriteString("\n")
		}
	}

	if !r.Radar.Empty() {
		b.WriteString("\n[RADAR SCORES]\n")
		b.WriteString("Scores are min-max scaled to 0..1 over the selection; quicker acceleration scores higher.\n")
		t := table.Table{Columns: []string{"Model"}}
		for _, f := range r.Radar.Features {
			t.Columns = append(t.Columns, table.Label(f))
		}
		for _, row := range r.Radar.Rows {
			cells := []string{row.Model}
			for _, v := range row.Values {
				cells = append(cells, fmt.Sprintf("%.2f", v))
			}
			t.Rows = append(t.Rows, cells)
		}
		writeTable(&b, t)
	}

	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range r.Notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeTable(b *strings.Builder, t table.Table) {
	b.WriteString("| ")
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeVal(c))
	}
	b.WriteString(" |\n| ")
	for i := range t.Columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range t.Rows {
		b.WriteString("| ")
		for i := range t.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			if len(val) > 80 {
				val = val[:77] + "..."
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
}

func list(vals []string) string {
	if len(vals) == 0 {
		return "(none)"
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = safeVal(v)
	}
	return strings.Join(out, ", ")
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
