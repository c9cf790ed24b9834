package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadCSVCoercesCargoVolume(t *testing.T) {
	path := writeFile(t, "cleaned_data.csv", strings.Join([]string{
		"brand,model,drivetrain,cargo_volume_l",
		"A,X,AWD,450",
		"A,Y,RWD,n/a",
	}, "\n"))

	ds, err := Load(context.Background(), Source{Location: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", ds.Len())
	}
	first, second := ds.Vehicles[0], ds.Vehicles[1]
	if !first.CargoVolume.Valid || first.CargoVolume.Value != 450 {
		t.Fatalf("first cargo volume = %+v, want 450", first.CargoVolume)
	}
	if second.CargoVolume.Valid {
		t.Fatalf("second cargo volume should be missing, got %+v", second.CargoVolume)
	}
	if second.Brand != "A" || second.Model != "Y" || second.Drivetrain != "RWD" {
		t.Fatalf("unexpected text fields: %+v", second)
	}
	if ds.Missing[ColCargoVolume] != 1 {
		t.Fatalf("missing count = %d, want 1", ds.Missing[ColCargoVolume])
	}
	if ds.Name != "cleaned_data.csv" {
		t.Fatalf("name = %q", ds.Name)
	}
}

func TestLoadCSVMissingRequiredColumn(t *testing.T) {
	path := writeFile(t, "bad.csv", "brand,drivetrain\nA,AWD\n")
	_, err := Load(context.Background(), Source{Location: path})
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestLoadCSVUnreadable(t *testing.T) {
	_, err := Load(context.Background(), Source{Location: filepath.Join(t.TempDir(), "nope.csv")})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	empty := writeFile(t, "empty.csv", "")
	if _, err := Load(context.Background(), Source{Location: empty}); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestLoadTSVAndExtraColumns(t *testing.T) {
	path := writeFile(t, "cars.tsv", "Brand\tModel\tDrivetrain\tTop_Speed_KMH\tsource_url\nTesla\tModel 3\tAWD\t225\thttps://example.org\n")
	ds, err := Load(context.Background(), Source{Location: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	v := ds.Vehicles[0]
	if v.Brand != "Tesla" || !v.TopSpeed.Valid || v.TopSpeed.Value != 225 {
		t.Fatalf("unexpected vehicle: %+v", v)
	}
	if got := v.Cell("source_url"); got != "https://example.org" {
		t.Fatalf("extra column = %q", got)
	}
	want := []string{ColBrand, ColModel, ColDrivetrain, ColTopSpeed, "source_url"}
	for i, h := range want {
		if ds.Header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, ds.Header[i], h)
		}
	}
}

func TestParseNumeric(t *testing.T) {
	cases := []struct {
		in   string
		opt  Options
		want float64
		ok   bool
	}{
		{"450", DefaultOptions(), 450, true},
		{" 6.1 ", DefaultOptions(), 6.1, true},
		{"1,234", Options{ThousandsSeparator: ','}, 1234, true},
		{"1 234", Options{ThousandsSeparator: ' '}, 1234, true},
		{"1,5", DefaultOptions(), 0, false},
		{"4,50", DefaultOptions(), 0, false},
		{"45 0", DefaultOptions(), 0, false},
		{"1,234", DefaultOptions(), 0, false},
		{"3,5", Options{DecimalSeparator: ','}, 3.5, true},
		{"1.000,5", Options{DecimalSeparator: ',', ThousandsSeparator: '.'}, 1000.5, true},
		{"n/a", DefaultOptions(), 0, false},
		{"", DefaultOptions(), 0, false},
		{"NaN", DefaultOptions(), 0, false},
		{"Inf", DefaultOptions(), 0, false},
	}
	for _, tc := range cases {
		got, ok := parseNumeric(tc.in, tc.opt)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("parseNumeric(%q) = %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestResolvedKind(t *testing.T) {
	cases := map[string]Source{
		KindCSV:      {Location: "data/cleaned_data.csv"},
		KindXLSX:     {Location: "cars.XLSX"},
		KindSQLite:   {Location: "ev.sqlite3"},
		KindPostgres: {Location: "postgres://user@localhost/ev"},
	}
	for want, src := range cases {
		if got := src.ResolvedKind(); got != want {
			t.Errorf("%s: kind = %s, want %s", src.Location, got, want)
		}
	}
	if got := (Source{Kind: "pgx", Location: "x.csv"}).ResolvedKind(); got != KindPostgres {
		t.Errorf("explicit pgx kind = %s", got)
	}
}

func TestLoadUnsupportedKind(t *testing.T) {
	_, err := Load(context.Background(), Source{Kind: "parquet", Location: "x"})
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("expected ErrUnsupportedSource, got %v", err)
	}
}

func TestNumJSON(t *testing.T) {
	b, err := Some(2.5).MarshalJSON()
	if err != nil || string(b) != "2.5" {
		t.Fatalf("marshal present = %s, %v", b, err)
	}
	b, _ = Num{}.MarshalJSON()
	if string(b) != "null" {
		t.Fatalf("marshal missing = %s", b)
	}
	var n Num
	if err := n.UnmarshalJSON([]byte("null")); err != nil || n.Valid {
		t.Fatalf("unmarshal null = %+v, %v", n, err)
	}
}

func TestFromRecordsCommaIsNotGrouping(t *testing.T) {
	header := []string{"brand", "model", "drivetrain", "cargo_volume_l", "range_km"}
	rows := [][]string{{"A", "X", "AWD", "1,5", "45 0"}}
	ds, err := FromRecords("t", header, rows, DefaultOptions())
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	v := ds.Vehicles[0]
	if v.CargoVolume.Valid || v.Range.Valid {
		t.Fatalf("ambiguous cells should be missing, got cargo=%v range=%v", v.CargoVolume, v.Range)
	}
	if ds.Missing[ColCargoVolume] != 1 || ds.Missing[ColRange] != 1 {
		t.Fatalf("missing counts = %v", ds.Missing)
	}
}
