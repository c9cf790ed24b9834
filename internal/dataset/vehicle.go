package dataset

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Column names as they appear in the source table.
const (
	ColBrand             = "brand"
	ColModel             = "model"
	ColDrivetrain        = "drivetrain"
	ColSegment           = "segment"
	ColBodyType          = "car_body_type"
	ColBatteryType       = "battery_type"
	ColFastChargePort    = "fast_charge_port"
	ColTopSpeed          = "top_speed_kmh"
	ColBatteryCapacity   = "battery_capacity_kWh"
	ColTorque            = "torque_nm"
	ColEfficiency        = "efficiency_wh_per_km"
	ColRange             = "range_km"
	ColAcceleration      = "acceleration_0_100_s"
	ColFastChargingPower = "fast_charging_power_kw_dc"
	ColTowingCapacity    = "towing_capacity_kg"
	ColCargoVolume       = "cargo_volume_l"
	ColSeats             = "seats"
	ColLength            = "length_mm"
	ColWidth             = "width_mm"
	ColHeight            = "height_mm"
)

// RequiredColumns must be present in every source header.
var RequiredColumns = []string{ColBrand, ColModel, ColDrivetrain}

// Num is a numeric cell. Valid is false when the source value was empty or
// could not be parsed; a missing value is never treated as zero.
type Num struct {
	Value float64
	Valid bool
}

// Some returns a present Num.
func Some(v float64) Num { return Num{Value: v, Valid: true} }

// String formats the value compactly, or returns "" when missing.
func (n Num) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// MarshalJSON encodes a missing value as null.
func (n Num) MarshalJSON() ([]byte, error) {
	if !n.Valid || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON accepts a number or null.
func (n *Num) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = Num{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Some(v)
	return nil
}

// Vehicle is one row of the specification table.
type Vehicle struct {
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	Drivetrain     string `json:"drivetrain"`
	Segment        string `json:"segment"`
	BodyType       string `json:"car_body_type"`
	BatteryType    string `json:"battery_type"`
	FastChargePort string `json:"fast_charge_port"`

	TopSpeed          Num `json:"top_speed_kmh"`
	BatteryCapacity   Num `json:"battery_capacity_kWh"`
	Torque            Num `json:"torque_nm"`
	Efficiency        Num `json:"efficiency_wh_per_km"`
	Range             Num `json:"range_km"`
	Acceleration      Num `json:"acceleration_0_100_s"`
	FastChargingPower Num `json:"fast_charging_power_kw_dc"`
	TowingCapacity    Num `json:"towing_capacity_kg"`
	CargoVolume       Num `json:"cargo_volume_l"`
	Seats             Num `json:"seats"`
	Length            Num `json:"length_mm"`
	Width             Num `json:"width_mm"`
	Height            Num `json:"height_mm"`

	// Extra holds columns the table carries beyond the known schema.
	Extra map[string]string `json:"extra,omitempty"`
}

var textFields = map[string]func(*Vehicle) *string{
	ColBrand:          func(v *Vehicle) *string { return &v.Brand },
	ColModel:          func(v *Vehicle) *string { return &v.Model },
	ColDrivetrain:     func(v *Vehicle) *string { return &v.Drivetrain },
	ColSegment:        func(v *Vehicle) *string { return &v.Segment },
	ColBodyType:       func(v *Vehicle) *string { return &v.BodyType },
	ColBatteryType:    func(v *Vehicle) *string { return &v.BatteryType },
	ColFastChargePort: func(v *Vehicle) *string { return &v.FastChargePort },
}

var numFields = map[string]func(*Vehicle) *Num{
	ColTopSpeed:          func(v *Vehicle) *Num { return &v.TopSpeed },
	ColBatteryCapacity:   func(v *Vehicle) *Num { return &v.BatteryCapacity },
	ColTorque:            func(v *Vehicle) *Num { return &v.Torque },
	ColEfficiency:        func(v *Vehicle) *Num { return &v.Efficiency },
	ColRange:             func(v *Vehicle) *Num { return &v.Range },
	ColAcceleration:      func(v *Vehicle) *Num { return &v.Acceleration },
	ColFastChargingPower: func(v *Vehicle) *Num { return &v.FastChargingPower },
	ColTowingCapacity:    func(v *Vehicle) *Num { return &v.TowingCapacity },
	ColCargoVolume:       func(v *Vehicle) *Num { return &v.CargoVolume },
	ColSeats:             func(v *Vehicle) *Num { return &v.Seats },
	ColLength:            func(v *Vehicle) *Num { return &v.Length },
	ColWidth:             func(v *Vehicle) *Num { return &v.Width },
	ColHeight:            func(v *Vehicle) *Num { return &v.Height },
}

// canonical maps a lower-cased header to the schema column name.
var canonical = func() map[string]string {
	m := make(map[string]string, len(textFields)+len(numFields))
	for k := range textFields {
		m[strings.ToLower(k)] = k
	}
	for k := range numFields {
		m[strings.ToLower(k)] = k
	}
	return m
}()

// CanonicalName returns the schema spelling of a header name, or the trimmed
// NFKC form of the name when it is not part of the schema.
func CanonicalName(name string) string {
	s := strings.TrimSpace(norm.NFKC.String(name))
	if c, ok := canonical[strings.ToLower(s)]; ok {
		return c
	}
	return s
}

// IsNumeric reports whether col is one of the numeric schema columns.
func IsNumeric(col string) bool {
	_, ok := numFields[col]
	return ok
}

// NumericColumns lists the numeric schema columns in table order.
func NumericColumns() []string {
	return []string{
		ColTopSpeed, ColBatteryCapacity, ColTorque, ColEfficiency, ColRange,
		ColAcceleration, ColFastChargingPower, ColTowingCapacity, ColCargoVolume,
		ColSeats, ColLength, ColWidth, ColHeight,
	}
}

// Text returns a string column value.
func (v Vehicle) Text(col string) (string, bool) {
	if f, ok := textFields[col]; ok {
		return *f(&v), true
	}
	if s, ok := v.Extra[col]; ok {
		return s, true
	}
	return "", false
}

// Number returns a numeric column value.
func (v Vehicle) Number(col string) (Num, bool) {
	if f, ok := numFields[col]; ok {
		return *f(&v), true
	}
	return Num{}, false
}

// Cell renders any column as text; missing numbers render as "".
func (v Vehicle) Cell(col string) string {
	if n, ok := v.Number(col); ok {
		return n.String()
	}
	s, _ := v.Text(col)
	return s
}

func (v *Vehicle) set(col, raw string, opt Options) {
	if f, ok := numFields[col]; ok {
		if x, ok := parseNumeric(raw, opt); ok {
			*f(v) = Some(x)
		} else {
			*f(v) = Num{}
		}
		return
	}
	if f, ok := textFields[col]; ok {
		*f(v) = strings.TrimSpace(raw)
		return
	}
	if v.Extra == nil {
		v.Extra = make(map[string]string)
	}
	v.Extra[col] = raw
}
