package record

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DefaultTimestampLayouts are tried, in order, when no layouts are configured.
var DefaultTimestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006 03:04 PM",
	"01/02/2006 3:04 PM",
	"1/2/2006 15:04",
	"1/2/06 15:04",
	"01-02-06 15:04",
}

// TimestampParser parses clock-in and clock-out values using a fixed list of
// layouts. Values without a zone are read as UTC.
type TimestampParser struct {
	layouts []string
}

// NewTimestampParser creates a parser. An empty layout list selects
// DefaultTimestampLayouts.
func NewTimestampParser(layouts []string) *TimestampParser {
	if len(layouts) == 0 {
		layouts = DefaultTimestampLayouts
	}
	return &TimestampParser{layouts: layouts}
}

// Layouts returns the layouts tried by the parser.
func (p *TimestampParser) Layouts() []string {
	return p.layouts
}

// Parse reads a timestamp. A bare number is read as an Excel serial date,
// which is how spreadsheet cells without a date format come through.
func (p *TimestampParser) Parse(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}

	for _, layout := range p.layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		ts, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("converting excel serial %q: %w", s, err)
		}
		return ts, nil
	}

	return time.Time{}, fmt.Errorf("no layout matched %q", s)
}
