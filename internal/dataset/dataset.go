package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrMissingColumn indicates the source header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrUnsupportedSource indicates no reader handles the requested source kind.
	ErrUnsupportedSource = errors.New("unsupported data source")
)

// Options controls how raw cells are read.
type Options struct {
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// DecimalSeparator for numeric cells. If 0, '.' is assumed.
	DecimalSeparator rune
	// ThousandsSeparator is stripped before parsing. If 0 nothing is
	// stripped, so "1,5" or "45 0" read as missing rather than 15 or 450.
	ThousandsSeparator rune
}

// DefaultOptions returns the reading defaults for the vehicle table.
func DefaultOptions() Options {
	return Options{DecimalSeparator: '.'}
}

// Dataset is the loaded, read-only vehicle table.
type Dataset struct {
	Name     string
	Header   []string
	Vehicles []Vehicle
	// Missing counts absent numeric values per column.
	Missing map[string]int
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Vehicles)
}

// FromRecords builds a Dataset from a header row and data rows.
func FromRecords(name string, header []string, rows [][]string, opt Options) (*Dataset, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("%s: empty header", name)
	}
	cols := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		cols[i] = CanonicalName(h)
		seen[cols[i]] = true
	}
	for _, req := range RequiredColumns {
		if !seen[req] {
			return nil, fmt.Errorf("%s: %w: %s", name, ErrMissingColumn, req)
		}
	}

	ds := &Dataset{
		Name:     name,
		Header:   cols,
		Vehicles: make([]Vehicle, 0, len(rows)),
		Missing:  make(map[string]int),
	}
	for _, rec := range rows {
		var v Vehicle
		for j, col := range cols {
			raw := ""
			if j < len(rec) {
				raw = rec[j]
			}
			v.set(col, raw, opt)
		}
		for _, col := range cols {
			if n, ok := v.Number(col); ok && !n.Valid {
				ds.Missing[col]++
			}
		}
		ds.Vehicles = append(ds.Vehicles, v)
	}
	return ds, nil
}

// parseNumeric converts a cell to a float. It never fails loudly: anything
// that does not parse to a finite number is reported as missing.
func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00A0", " "))
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	if dec == 0 {
		dec = '.'
	}
	if thou := opt.ThousandsSeparator; thou != 0 && thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
