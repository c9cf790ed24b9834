package charts

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/KaramelBytes/evdash/internal/dataset"
)

func car(brand, model string, battery, speed, accel, seats float64) dataset.Vehicle {
	v := dataset.Vehicle{
		Brand:           brand,
		Model:           model,
		Drivetrain:      "AWD",
		BatteryCapacity: dataset.Some(battery),
		TopSpeed:        dataset.Some(speed),
		Acceleration:    dataset.Some(accel),
		Seats:           dataset.Some(seats),
		Range:           dataset.Some(battery * 6),
		CargoVolume:     dataset.Some(400 + seats*10),
	}
	return v
}

func testView() []dataset.Vehicle {
	missing := car("Kia", "EV9", 99.8, 200, 5.3, 7)
	missing.Acceleration = dataset.Num{}
	return []dataset.Vehicle{
		car("Tesla", "Model 3", 60, 201, 6.1, 5),
		car("Kia", "EV6", 77.4, 185, 7.3, 5),
		car("Tesla", "Model Y", 75, 217, 5.0, 7),
		missing,
	}
}

func mustSpec(t *testing.T, k Kind) Spec {
	t.Helper()
	s, err := SpecFor(k)
	if err != nil {
		t.Fatalf("SpecFor(%s): %v", k, err)
	}
	return s
}

func TestBuildBubbleGroupsByBrand(t *testing.T) {
	fig, err := Build(mustSpec(t, KindBubble), testView())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(fig.Data) != 2 || fig.Data[0].Name != "Tesla" || fig.Data[1].Name != "Kia" {
		t.Fatalf("expected Tesla then Kia traces, got %+v", fig.Data)
	}
	if got := fig.Data[0].Text; !reflect.DeepEqual(got, []string{"Model 3", "Model Y"}) {
		t.Errorf("hover names = %v", got)
	}
	if fig.Data[0].Marker == nil || !reflect.DeepEqual(fig.Data[0].Marker.Size, []float64{5, 7}) {
		t.Errorf("marker sizes = %+v", fig.Data[0].Marker)
	}
	if fig.Layout.Height != 600 || fig.Layout.XAxis.Title.Text != "Battery (kWh)" {
		t.Errorf("unexpected layout: %+v", fig.Layout)
	}
	// EV9 has no acceleration but is still a valid bubble.
	if len(fig.Data[1].X) != 2 {
		t.Errorf("Kia points = %v", fig.Data[1].X)
	}
}

func TestBuildLineSortsByAcceleration(t *testing.T) {
	fig, err := Build(mustSpec(t, KindLine), testView())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []string{"Model Y", "Model 3", "EV6"}
	if got := fig.Layout.XAxis.CategoryArray; !reflect.DeepEqual(got, want) {
		t.Fatalf("category order = %v, want %v", got, want)
	}
	if fig.Data[0].Name != "Tesla" || fig.Data[0].Mode != "lines+markers" {
		t.Fatalf("unexpected first trace: %+v", fig.Data[0])
	}
	if !reflect.DeepEqual(fig.Data[0].Y, []float64{5.0, 6.1}) {
		t.Errorf("Tesla y = %v", fig.Data[0].Y)
	}
	if len(fig.Data[1].Y) != 1 {
		t.Errorf("row without acceleration should be skipped: %v", fig.Data[1].Y)
	}
}

func TestBuildBarAndRadar(t *testing.T) {
	bar, err := Build(mustSpec(t, KindBar), testView())
	if err != nil {
		t.Fatalf("Build bar: %v", err)
	}
	if bar.Data[0].Type != "bar" || len(bar.Data[1].X) != 2 {
		t.Fatalf("unexpected bar figure: %+v", bar.Data)
	}

	radar, err := Build(mustSpec(t, KindRadar), testView())
	if err != nil {
		t.Fatalf("Build radar: %v", err)
	}
	if len(radar.Data) != 3 {
		t.Fatalf("expected 3 radar traces (EV9 dropped), got %d", len(radar.Data))
	}
	tr := radar.Data[0]
	if tr.Fill != "toself" || len(tr.R) != 6 || tr.R[0] != tr.R[5] || tr.Theta[0] != tr.Theta[5] {
		t.Fatalf("radar trace should be closed and filled: %+v", tr)
	}
	if radar.Layout.Polar.BgColor != "#193450" || radar.Layout.Polar.RadialAxis.Range[1] != 1 {
		t.Fatalf("unexpected polar layout: %+v", radar.Layout.Polar)
	}
}

func TestBuildEmptyAndUnknown(t *testing.T) {
	fig, err := Build(mustSpec(t, KindBubble), nil)
	if err != nil || !fig.Empty() {
		t.Fatalf("empty view should give empty figure: %+v, %v", fig, err)
	}
	if _, err := Build(Spec{Kind: "pie"}, nil); !errors.Is(err, ErrUnknownChart) {
		t.Fatalf("expected ErrUnknownChart, got %v", err)
	}
	if _, err := ParseKind("Pie"); !errors.Is(err, ErrUnknownChart) {
		t.Fatalf("expected ErrUnknownChart, got %v", err)
	}
	if k, err := ParseKind(" Radar "); err != nil || k != KindRadar {
		t.Fatalf("ParseKind radar = %q, %v", k, err)
	}
	if _, err := ParseFormat("gif"); !errors.Is(err, ErrUnknownChart) {
		t.Fatalf("expected ErrUnknownChart for gif, got %v", err)
	}
}

func TestRenderFormats(t *testing.T) {
	for _, k := range Kinds {
		fig, err := Build(mustSpec(t, k), testView())
		if err != nil {
			t.Fatalf("Build %s: %v", k, err)
		}
		var png bytes.Buffer
		if err := Render(&png, fig, FormatPNG, 640, 400); err != nil {
			t.Fatalf("render %s png: %v", k, err)
		}
		if !bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")) {
			t.Fatalf("%s: output is not a PNG", k)
		}
		var svg bytes.Buffer
		if err := Render(&svg, fig, FormatSVG, 640, 400); err != nil {
			t.Fatalf("render %s svg: %v", k, err)
		}
		if !strings.Contains(svg.String(), "<svg") {
			t.Fatalf("%s: output is not an SVG", k)
		}
		var js bytes.Buffer
		if err := Render(&js, fig, FormatJSON, 0, 0); err != nil {
			t.Fatalf("render %s json: %v", k, err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
			t.Fatalf("%s: invalid json: %v", k, err)
		}
		if _, ok := decoded["data"]; !ok {
			t.Fatalf("%s: json figure has no data", k)
		}
	}
}

func TestRenderSinglePoint(t *testing.T) {
	view := []dataset.Vehicle{car("Tesla", "Model 3", 60, 201, 6.1, 5)}
	for _, k := range Kinds {
		fig, _ := Build(mustSpec(t, k), view)
		for _, f := range []Format{FormatPNG, FormatSVG} {
			var buf bytes.Buffer
			if err := Render(&buf, fig, f, 320, 240); err != nil {
				t.Fatalf("render single-row %s as %s: %v", k, f, err)
			}
			if buf.Len() == 0 {
				t.Fatalf("render single-row %s as %s: empty output", k, f)
			}
		}
	}
}

func TestRenderEmptyFigure(t *testing.T) {
	fig, _ := Build(mustSpec(t, KindRadar), nil)
	if err := Render(&bytes.Buffer{}, fig, FormatPNG, 0, 0); !errors.Is(err, ErrEmptyFigure) {
		t.Fatalf("expected ErrEmptyFigure, got %v", err)
	}
}
