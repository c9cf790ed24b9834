package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Source kinds.
const (
	KindAuto     = "auto"
	KindCSV      = "csv"
	KindXLSX     = "xlsx"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
)

// Source describes where the vehicle table lives.
type Source struct {
	Kind     string
	Location string // file path or DSN
	// Table is the SQL table name for sqlite/postgres sources.
	Table string
	// SheetName selects an XLSX sheet; SheetIndex (1-based) is used when empty.
	SheetName  string
	SheetIndex int
	Options    Options
}

// ResolvedKind returns the concrete kind, inferring it from the location when
// Kind is empty or "auto".
func (s Source) ResolvedKind() string {
	k := strings.ToLower(strings.TrimSpace(s.Kind))
	if k != "" && k != KindAuto {
		if k == "postgresql" || k == "pgx" {
			return KindPostgres
		}
		return k
	}
	loc := strings.ToLower(strings.TrimSpace(s.Location))
	if strings.HasPrefix(loc, "postgres://") || strings.HasPrefix(loc, "postgresql://") {
		return KindPostgres
	}
	switch filepath.Ext(loc) {
	case ".xlsx":
		return KindXLSX
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	default:
		return KindCSV
	}
}

// Key identifies the source for memoization. Two sources with the same key
// load the same table.
func (s Source) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%d|%q|%q|%q",
		s.ResolvedKind(), s.Location, s.Table, s.SheetName, s.SheetIndex,
		s.Options.Delimiter, s.Options.DecimalSeparator, s.Options.ThousandsSeparator)
}

// Name is a short human label for logs and reports.
func (s Source) Name() string {
	switch s.ResolvedKind() {
	case KindSQLite:
		return fmt.Sprintf("%s (table: %s)", filepath.Base(s.Location), s.Table)
	case KindPostgres:
		return fmt.Sprintf("postgres (table: %s)", s.Table)
	case KindXLSX:
		if s.SheetName != "" {
			return fmt.Sprintf("%s (sheet: %s)", filepath.Base(s.Location), s.SheetName)
		}
		return filepath.Base(s.Location)
	default:
		return filepath.Base(s.Location)
	}
}

// reader produces a raw header and rows for one kind of source.
type reader interface {
	Kind() string
	Read(ctx context.Context, src Source) (header []string, rows [][]string, err error)
}

var registry []reader

func register(r reader) {
	registry = append(registry, r)
}

func init() {
	register(csvReader{})
	register(xlsxReader{})
	register(sqlReader{kind: KindSQLite, driver: "sqlite"})
	register(sqlReader{kind: KindPostgres, driver: "pgx"})
}

// Load reads the whole table described by src. Any read or shape problem is
// returned as an error; there is no partial result.
func Load(ctx context.Context, src Source) (*Dataset, error) {
	kind := src.ResolvedKind()
	for _, r := range registry {
		if r.Kind() != kind {
			continue
		}
		header, rows, err := r.Read(ctx, src)
		if err != nil {
			return nil, err
		}
		return FromRecords(src.Name(), header, rows, src.Options)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, kind)
}
