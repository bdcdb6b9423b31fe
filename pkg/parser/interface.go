// Package parser reads raw timecard rows from CSV files, Excel workbooks and
// SQL tables, and loads them into shift records.
package parser

import (
	"context"

	"github.com/ccollicutt/shiftguard/pkg/record"
)

// RowSource provides an iterator over raw timecard rows.
// Implementations must be safe for sequential access (not concurrent).
type RowSource interface {
	// Next returns the next row.
	// Returns io.EOF when no more rows are available.
	// Blank rows are skipped.
	Next(ctx context.Context) (*record.Row, error)

	// Close releases any resources held by the source.
	Close() error
}
