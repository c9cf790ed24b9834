package normalize

import (
	"math"
	"math/rand"
	"testing"

	"github.com/KaramelBytes/evdash/internal/dataset"
)

func ev(model string, speed, accel, rng, battery, cargo float64) dataset.Vehicle {
	return dataset.Vehicle{
		Brand:           "B",
		Model:           model,
		TopSpeed:        dataset.Some(speed),
		Acceleration:    dataset.Some(accel),
		Range:           dataset.Some(rng),
		BatteryCapacity: dataset.Some(battery),
		CargoVolume:     dataset.Some(cargo),
	}
}

func featureIndex(t *testing.T, col string) int {
	t.Helper()
	for i, f := range Features {
		if f == col {
			return i
		}
	}
	t.Fatalf("feature %s not found", col)
	return -1
}

func TestNormalizeBasic(t *testing.T) {
	view := []dataset.Vehicle{
		ev("fast", 250, 3.5, 500, 100, 400),
		ev("slow", 150, 8.0, 300, 50, 600),
		ev("mid", 200, 5.75, 400, 75, 500),
	}
	res := Normalize(view)
	if res.Empty() || len(res.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %+v", res)
	}
	acc := featureIndex(t, dataset.ColAcceleration)
	speed := featureIndex(t, dataset.ColTopSpeed)
	if got := res.Rows[0].Values[acc]; got != 1 {
		t.Errorf("quickest car acceleration score = %v, want 1", got)
	}
	if got := res.Rows[1].Values[acc]; got != 0 {
		t.Errorf("slowest car acceleration score = %v, want 0", got)
	}
	if got := res.Rows[2].Values[speed]; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("mid speed score = %v, want 0.5", got)
	}
	if res.Rows[0].Raw[acc] != 3.5 {
		t.Errorf("raw acceleration should be kept unsigned, got %v", res.Rows[0].Raw[acc])
	}
	if view[0].Acceleration.Value != 3.5 {
		t.Error("Normalize modified its input")
	}
}

func TestNormalizeDropsIncompleteRows(t *testing.T) {
	partial := ev("partial", 180, 6, 350, 60, 0)
	partial.CargoVolume = dataset.Num{}
	view := []dataset.Vehicle{ev("a", 200, 5, 400, 70, 450), partial}
	res := Normalize(view)
	if len(res.Rows) != 1 || res.Rows[0].Model != "a" || res.Dropped != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	// A single surviving row is degenerate on every feature.
	for j, v := range res.Rows[0].Values {
		if v != Degenerate {
			t.Errorf("feature %s = %v, want %v", Features[j], v, Degenerate)
		}
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if res := Normalize(nil); !res.Empty() {
		t.Fatalf("expected empty result, got %+v", res)
	}
	missing := dataset.Vehicle{Brand: "A", Model: "X"}
	if res := Normalize([]dataset.Vehicle{missing}); !res.Empty() || res.Dropped != 1 {
		t.Fatalf("expected empty result with one dropped row, got %+v", res)
	}
}

func TestNormalizeRangeAndOrdering(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	var view []dataset.Vehicle
	for i := 0; i < 40; i++ {
		view = append(view, ev("m", 120+r.Float64()*180, 2+r.Float64()*10, 200+r.Float64()*500, 30+r.Float64()*90, float64(r.Intn(5))*100))
	}
	res := Normalize(view)
	acc := featureIndex(t, dataset.ColAcceleration)
	for i, row := range res.Rows {
		for j, v := range row.Values {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Fatalf("row %d feature %s = %v out of [0,1]", i, Features[j], v)
			}
		}
		for k, other := range res.Rows {
			if row.Raw[acc] < other.Raw[acc] && row.Values[acc] < other.Values[acc] {
				t.Fatalf("rows %d and %d: lower acceleration time must not score lower", i, k)
			}
		}
	}
}
