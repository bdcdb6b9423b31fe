// Package record defines the typed shift record and the conversion from raw
// timecard rows into it.
package record

import "time"

// ShiftRecord is one worked shift. Records are created once at load time and
// are not modified afterwards.
type ShiftRecord struct {
	// EmployeeID identifies the employee. Never empty.
	EmployeeID string

	// ClockIn is the shift's start instant.
	ClockIn time.Time

	// ClockOut is the shift's end instant. Never before ClockIn.
	ClockOut time.Time

	// DurationHours is the worked duration parsed from the raw duration
	// field. It may differ from ClockOut - ClockIn (breaks).
	DurationHours float64

	// Source is the file or table the record came from.
	Source string

	// LineNum is the 1-based row number within Source.
	LineNum int

	// Seq is the record's position in the overall input order.
	Seq int
}

// Row is a raw timecard row before conversion.
type Row struct {
	// Fields maps trimmed header names to raw cell values.
	Fields map[string]string

	// Header is the source's header row in column order. It is shared
	// between rows of the same source and must not be modified.
	Header []string

	// Source is the file or table this row came from.
	Source string

	// LineNum is the 1-based row number in the source, counting the header.
	LineNum int
}
