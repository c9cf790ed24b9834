package table

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/KaramelBytes/evdash/internal/dataset"
)

func sampleView(t *testing.T) *dataset.Dataset {
	t.Helper()
	header := []string{"brand", "model", "drivetrain", "top_speed_kmh", "cargo_volume_l", "seats", "color"}
	rows := [][]string{
		{"A", "X", "AWD", "1200.5", "450", "5", "red"},
		{"A", "Y", "RWD", "180", "n/a", "7", "blue"},
	}
	ds, err := dataset.FromRecords("test", header, rows, dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	return ds
}

func TestDisplayRelabelsAndFormats(t *testing.T) {
	ds := sampleView(t)
	tb, err := Display(ds.Header, ds.Vehicles, message.NewPrinter(language.English))
	if err != nil {
		t.Fatalf("Display: %v", err)
	}
	want := []string{"Brand", "Model", "Drivetrain", "Top Speed (km/h)", "Cargo Volume (L)", "Number of Seats", "color"}
	if !reflect.DeepEqual(tb.Columns, want) {
		t.Fatalf("columns = %v, want %v", tb.Columns, want)
	}
	if tb.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", tb.Len())
	}
	if got := tb.Rows[0][3]; got != "1,200.5" {
		t.Errorf("formatted top speed = %q", got)
	}
	if got := tb.Rows[1][4]; got != "" {
		t.Errorf("missing cargo should render empty, got %q", got)
	}
	if got := tb.Rows[1][6]; got != "blue" {
		t.Errorf("extra column = %q", got)
	}
}

func TestRawKeepsSourceNames(t *testing.T) {
	ds := sampleView(t)
	tb, err := Raw(ds.Header, ds.Vehicles)
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	if !reflect.DeepEqual(tb.Columns, ds.Header) {
		t.Fatalf("columns = %v, want %v", tb.Columns, ds.Header)
	}
	if tb.Rows[0][3] != "1200.5" || tb.Rows[0][1] != "X" || tb.Rows[1][1] != "Y" {
		t.Fatalf("unexpected rows: %v", tb.Rows)
	}
}

func TestEmptyView(t *testing.T) {
	ds := sampleView(t)
	tb, err := Display(ds.Header, nil, nil)
	if err != nil {
		t.Fatalf("Display: %v", err)
	}
	if tb.Len() != 0 || tb.Columns[0] != "Brand" {
		t.Fatalf("unexpected empty table: %+v", tb)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, ds.Header, nil, true); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != strings.Join(ds.Header, ",") {
		t.Fatalf("header-only csv = %q", got)
	}
}

func TestWriteCSV(t *testing.T) {
	ds := sampleView(t)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, ds.Header, ds.Vehicles, false); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "Brand,Model,Drivetrain,Top Speed (km/h)") {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "A,Y,RWD,180,,7,blue" {
		t.Errorf("second row = %q", lines[2])
	}

	buf.Reset()
	if err := WriteCSV(&buf, ds.Header, ds.Vehicles, true); err != nil {
		t.Fatalf("WriteCSV raw: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "brand,model,drivetrain,top_speed_kmh") {
		t.Errorf("raw header = %q", buf.String())
	}
}

func TestLabel(t *testing.T) {
	if Label(dataset.ColAcceleration) != "Acceleration 0–100 km/h (s)" {
		t.Errorf("acceleration label = %q", Label(dataset.ColAcceleration))
	}
	if Label("unknown_col") != "unknown_col" {
		t.Error("unmapped columns keep their name")
	}
}
