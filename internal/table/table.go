// Package table turns a filtered view into the tabular forms shown to users:
// the relabeled specification table, the raw panel and CSV exports.
package table

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/KaramelBytes/evdash/internal/dataset"
)

// Labels maps source column names to display headings. Columns not listed
// keep their source name.
var Labels = map[string]string{
	dataset.ColBrand:             "Brand",
	dataset.ColModel:             "Model",
	dataset.ColTopSpeed:          "Top Speed (km/h)",
	dataset.ColBatteryCapacity:   "Battery Capacity (kWh)",
	dataset.ColBatteryType:       "Battery Type",
	dataset.ColTorque:            "Torque (Nm)",
	dataset.ColEfficiency:        "Efficiency (Wh/km)",
	dataset.ColRange:             "Range (km)",
	dataset.ColAcceleration:      "Acceleration 0–100 km/h (s)",
	dataset.ColFastChargingPower: "Fast Charging Power (kW DC)",
	dataset.ColFastChargePort:    "Fast Charge Port",
	dataset.ColTowingCapacity:    "Towing Capacity (kg)",
	dataset.ColCargoVolume:       "Cargo Volume (L)",
	dataset.ColSeats:             "Number of Seats",
	dataset.ColDrivetrain:        "Drivetrain",
	dataset.ColSegment:           "Segment",
	dataset.ColLength:            "Length (mm)",
	dataset.ColWidth:             "Width (mm)",
	dataset.ColHeight:            "Height (mm)",
	dataset.ColBodyType:          "Car Body Type",
}

// Label returns the display heading for a source column.
func Label(col string) string {
	if l, ok := Labels[col]; ok {
		return l
	}
	return col
}

// Table is a rendered grid of cells.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// Frame loads the view into a string-typed DataFrame with source column
// names. Every cell is kept verbatim; missing numbers are empty strings.
func Frame(header []string, view []dataset.Vehicle, cell func(dataset.Vehicle, string) string) (dataframe.DataFrame, error) {
	if len(view) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("build frame: no rows")
	}
	if cell == nil {
		cell = dataset.Vehicle.Cell
	}
	records := make([][]string, 0, len(view)+1)
	records = append(records, append([]string(nil), header...))
	for _, v := range view {
		rec := make([]string, len(header))
		for j, col := range header {
			rec[j] = cell(v, col)
		}
		records = append(records, rec)
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return df, fmt.Errorf("build frame: %w", df.Err)
	}
	return df, nil
}

// Relabel renames the mapped columns of df to their display headings.
func Relabel(df dataframe.DataFrame) dataframe.DataFrame {
	for _, name := range df.Names() {
		if l := Label(name); l != name {
			df = df.Rename(l, name)
		}
	}
	return df
}

// Raw returns the view with source column names and unformatted cells.
func Raw(header []string, view []dataset.Vehicle) (Table, error) {
	if len(view) == 0 {
		return Table{Columns: append([]string(nil), header...)}, nil
	}
	df, err := Frame(header, view, nil)
	if err != nil {
		return Table{}, err
	}
	return fromFrame(df), nil
}

// Display returns the relabeled key-specifications table. Numeric cells are
// formatted with p; a nil printer uses English conventions.
func Display(header []string, view []dataset.Vehicle, p *message.Printer) (Table, error) {
	if len(view) == 0 {
		cols := make([]string, len(header))
		for i, h := range header {
			cols[i] = Label(h)
		}
		return Table{Columns: cols}, nil
	}
	if p == nil {
		p = message.NewPrinter(language.English)
	}
	df, err := Frame(header, view, func(v dataset.Vehicle, col string) string {
		if n, ok := v.Number(col); ok {
			return FormatNumber(p, n)
		}
		return v.Cell(col)
	})
	if err != nil {
		return Table{}, err
	}
	df = Relabel(df)
	if df.Err != nil {
		return Table{}, fmt.Errorf("relabel: %w", df.Err)
	}
	return fromFrame(df), nil
}

// FormatNumber renders n with grouping and at most two fraction digits.
func FormatNumber(p *message.Printer, n dataset.Num) string {
	if !n.Valid {
		return ""
	}
	return p.Sprint(number.Decimal(n.Value, number.MaxFractionDigits(2)))
}

// WriteCSV exports the view as CSV. With raw set the header keeps source
// column names; otherwise display headings are used. Cell values are never
// formatted.
func WriteCSV(w io.Writer, header []string, view []dataset.Vehicle, raw bool) error {
	if len(view) == 0 {
		cols := header
		if !raw {
			cols = make([]string, len(header))
			for i, h := range header {
				cols[i] = Label(h)
			}
		}
		cw := csv.NewWriter(w)
		if err := cw.Write(cols); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		cw.Flush()
		return cw.Error()
	}
	df, err := Frame(header, view, nil)
	if err != nil {
		return err
	}
	if !raw {
		df = Relabel(df)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func fromFrame(df dataframe.DataFrame) Table {
	recs := df.Records()
	if len(recs) == 0 {
		return Table{}
	}
	return Table{Columns: recs[0], Rows: recs[1:]}
}
