package dataset

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	// Database drivers for table sources: "sqlite" (modernc) and "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type sqlReader struct {
	kind   string
	driver string
}

func (r sqlReader) Kind() string { return r.kind }

// Read selects every column of the configured table. Values are converted to
// their text form so they go through the same lenient parsing as CSV cells.
func (r sqlReader) Read(ctx context.Context, src Source) ([]string, [][]string, error) {
	if !tableName.MatchString(src.Table) {
		return nil, nil, fmt.Errorf("invalid table name %q", src.Table)
	}
	if r.kind == KindSQLite {
		// The driver would silently create a missing file.
		if _, err := os.Stat(src.Location); err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
	}
	db, err := sqlx.ConnectContext(ctx, r.driver, src.Location)
	if err != nil {
		return nil, nil, fmt.Errorf("connect %s: %w", r.kind, err)
	}
	defer db.Close()

	rows, err := db.QueryxContext(ctx, "SELECT * FROM "+src.Table)
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", src.Table, err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("read columns: %w", err)
	}
	var out [][]string
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, nil, fmt.Errorf("scan row %d: %w", len(out)+1, err)
		}
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = sqlText(v)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate rows: %w", err)
	}
	return header, out, nil
}

func sqlText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
