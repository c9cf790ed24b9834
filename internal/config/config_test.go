package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Source != "cleaned_data.csv" || c.SampleSize != 5 || c.ListenAddr != ":8765" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.SheetIndex != 1 || c.ChartHeight != 600 || c.DecimalRune() != '.' || c.DelimiterRune() != 0 || c.ThousandsRune() != 0 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "source: ev.db\nsource_table: cars\nsample_size: 3\ndelimiter: tab\nthousands_separator: space\npublic_url: http://example.test/\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EVDASH_SAMPLE_SIZE", "8")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Source != "ev.db" || c.SourceTable != "cars" {
		t.Fatalf("file values not applied: %+v", c)
	}
	if c.SampleSize != 8 {
		t.Fatalf("env should override file, got sample_size=%d", c.SampleSize)
	}
	if c.ThousandsRune() != ' ' {
		t.Fatalf("thousands separator = %q", c.ThousandsRune())
	}
	if c.DelimiterRune() != '\t' {
		t.Fatalf("delimiter = %q", c.DelimiterRune())
	}
	if c.PublicURL != "http://example.test" {
		t.Fatalf("public_url = %q", c.PublicURL)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("source: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := Defaults()
	c.Source = "cars.xlsx"
	c.SheetName = "Vehicles"
	c.SampleSize = 0 // clamped on load
	if err := Save(c, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Source != "cars.xlsx" || got.SheetName != "Vehicles" || got.SampleSize != 5 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}
