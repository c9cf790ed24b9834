package report

import (
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/evdash/internal/dataset"
	"github.com/KaramelBytes/evdash/internal/filter"
)

func loadFixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	header := []string{"brand", "model", "drivetrain", "top_speed_kmh", "acceleration_0_100_s", "range_km", "battery_capacity_kWh", "cargo_volume_l", "seats"}
	rows := [][]string{
		{"Tesla", "Model 3", "RWD", "201", "6.1", "513", "60", "594", "5"},
		{"Tesla", "Model Y", "AWD", "217", "5.0", "533", "75", "854", "7"},
		{"Kia", "EV6", "AWD", "185", "7.3", "506", "77.4", "n/a", "5"},
	}
	ds, err := dataset.FromRecords("cars.csv", header, rows, dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	return ds
}

func TestBuildAndMarkdown(t *testing.T) {
	ds := loadFixture(t)
	sel := filter.Selection{
		Brands:      []string{"Kia", "Tesla"},
		Drivetrains: []string{"AWD", "RWD"},
		Models:      []string{"EV6", "Model 3", "Model Y"},
	}
	view := filter.Apply(ds, sel).View
	rep, err := Build(ds, sel, view, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	md := rep.Markdown()
	for _, want := range []string{
		"[SELECTION]", "Source: cars.csv (3 rows)", "Matching rows: 3",
		"[KEY SPECIFICATIONS]", "| Brand | Model | Drivetrain | Top Speed (km/h)",
		"[FEATURE SUMMARY]", "- Top Speed (km/h): n=3, min 185, max 217, mean 201",
		"[BRAND SUMMARY]", "[RADAR SCORES]", "| Model 3 |",
		"[NOTES]", "1 model(s) left out of the radar chart",
		"Cargo Volume (L): 1 of 3 values missing.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
	if strings.Contains(md, "| EV6 | 0") {
		t.Error("EV6 has no cargo volume and must not be scored")
	}
}

func TestBuildEmptySelection(t *testing.T) {
	ds := loadFixture(t)
	sel := filter.Selection{Brands: []string{"Tesla"}, Drivetrains: []string{}, Models: []string{}}
	rep, err := Build(ds, sel, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	md := rep.Markdown()
	if !strings.Contains(md, "Please select at least one EV model to compare.") {
		t.Fatalf("expected empty-selection notice:\n%s", md)
	}
	if strings.Contains(md, "[RADAR SCORES]") || strings.Contains(md, "[KEY SPECIFICATIONS]") {
		t.Fatalf("empty selection should not render tables:\n%s", md)
	}
	if !strings.Contains(md, "Drivetrains: (none)") {
		t.Errorf("expected (none) for empty facet:\n%s", md)
	}
}

func TestSummarize(t *testing.T) {
	view := []dataset.Vehicle{
		{Range: dataset.Some(2)}, {Range: dataset.Some(4)}, {}, {Range: dataset.Some(4)}, {Range: dataset.Some(5)},
	}
	s := summarize(dataset.ColRange, view)
	if s.Count != 4 || s.Missing != 1 || s.Min != 2 || s.Max != 5 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if math.Abs(s.Mean-3.75) > 1e-9 || s.Median != 4 {
		t.Fatalf("mean/median = %v/%v", s.Mean, s.Median)
	}
	if math.Abs(s.Std-math.Sqrt(4.75/3)) > 1e-9 {
		t.Fatalf("std = %v", s.Std)
	}
}
