package record

import (
	"errors"
	"strings"
)

// Logical field names used in errors and column mappings.
const (
	FieldEmployee = "employee"
	FieldClockIn  = "clock_in"
	FieldClockOut = "clock_out"
)

// Columns maps logical fields to header names in the input.
type Columns struct {
	Employee string `yaml:"employee"`
	ClockIn  string `yaml:"clock_in"`
	ClockOut string `yaml:"clock_out"`
	Duration string `yaml:"duration"`
}

// DefaultColumns matches the header of the legacy timecard export.
func DefaultColumns() Columns {
	return Columns{
		Employee: "Employee Name",
		ClockIn:  "Time",
		ClockOut: "Time Out",
		Duration: "Timecard Hours (as Time)",
	}
}

// Converter turns raw rows into ShiftRecords.
type Converter struct {
	columns    Columns
	timestamps *TimestampParser
	seq        int
}

// NewConverter creates a converter for the given column mapping.
func NewConverter(columns Columns, timestamps *TimestampParser) *Converter {
	if timestamps == nil {
		timestamps = NewTimestampParser(nil)
	}
	return &Converter{
		columns:    columns,
		timestamps: timestamps,
	}
}

// Convert maps a row to a ShiftRecord.
// Returns *SchemaError if any mapped column is absent from the row and
// *ParseError if a value is malformed.
func (c *Converter) Convert(row *Row) (ShiftRecord, error) {
	employee, okEmp := lookup(row.Fields, c.columns.Employee)
	clockIn, okIn := lookup(row.Fields, c.columns.ClockIn)
	clockOut, okOut := lookup(row.Fields, c.columns.ClockOut)
	duration, okDur := lookup(row.Fields, c.columns.Duration)

	var missing []string
	if !okEmp {
		missing = append(missing, c.columns.Employee)
	}
	if !okIn {
		missing = append(missing, c.columns.ClockIn)
	}
	if !okOut {
		missing = append(missing, c.columns.ClockOut)
	}
	if !okDur {
		missing = append(missing, c.columns.Duration)
	}
	if len(missing) > 0 {
		return ShiftRecord{}, &SchemaError{Source: row.Source, Missing: missing}
	}

	parseErr := func(field, value string, err error) error {
		return &ParseError{Field: field, Value: value, Source: row.Source, LineNum: row.LineNum, Err: err}
	}

	employee = strings.TrimSpace(employee)
	if employee == "" {
		return ShiftRecord{}, parseErr(FieldEmployee, employee, errors.New("employee is empty"))
	}

	in, err := c.timestamps.Parse(clockIn)
	if err != nil {
		return ShiftRecord{}, parseErr(FieldClockIn, clockIn, err)
	}

	out, err := c.timestamps.Parse(clockOut)
	if err != nil {
		return ShiftRecord{}, parseErr(FieldClockOut, clockOut, err)
	}
	if out.Before(in) {
		return ShiftRecord{}, parseErr(FieldClockOut, clockOut, errors.New("clock out is before clock in"))
	}

	hours, err := ParseDuration(duration)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = row.Source
			pe.LineNum = row.LineNum
			return ShiftRecord{}, pe
		}
		return ShiftRecord{}, parseErr(FieldDuration, duration, err)
	}

	rec := ShiftRecord{
		EmployeeID:    employee,
		ClockIn:       in,
		ClockOut:      out,
		DurationHours: hours,
		Source:        row.Source,
		LineNum:       row.LineNum,
		Seq:           c.seq,
	}
	c.seq++

	return rec, nil
}

// RequiredColumns lists the mapped header names in field order.
func (c *Converter) RequiredColumns() []string {
	return []string{c.columns.Employee, c.columns.ClockIn, c.columns.ClockOut, c.columns.Duration}
}

// lookup finds a header exactly, then case-insensitively.
func lookup(fields map[string]string, name string) (string, bool) {
	if v, ok := fields[name]; ok {
		return v, true
	}
	want := strings.TrimSpace(name)
	for k, v := range fields {
		if strings.EqualFold(k, want) {
			return v, true
		}
	}
	return "", false
}
