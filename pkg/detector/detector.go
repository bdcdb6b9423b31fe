// Package detector inspects a timecard export and proposes the column mapping
// and timestamp layout to configure for it.
package detector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ccollicutt/shiftguard/pkg/parser"
	"github.com/ccollicutt/shiftguard/pkg/record"
)

// Duration styles.
const (
	DurationColon   = "colon"   // H:MM
	DurationDecimal = "decimal" // 7.5
	DurationMixed   = "mixed"
)

// DetectionResult holds the result of analyzing a timecard file.
type DetectionResult struct {
	Headers []string       // Header row in column order
	Columns record.Columns // Proposed mapping; empty names for missing fields
	Missing []string       // Logical fields with no matching header

	Matches  []FormatMatch // Timestamp formats that matched, sorted by confidence descending
	Duration DurationMatch

	SampledRows     int    // Number of rows sampled
	TimestampValues int    // Number of non-blank clock-in/clock-out cells sampled
	ParsedValues    int    // Number of those cells parsed by the best match
	AmbiguityNote   string // Warning about date ordering if applicable
}

// FormatMatch represents a format that matched with its confidence score.
type FormatMatch struct {
	Format      *TimestampFormat
	Confidence  float64   // 0.0 to 1.0 (share of timestamp cells matched)
	MatchCount  int       // Number of cells that matched
	SampleValue string    // Example cell that matched
	ParsedTime  time.Time // Parsed timestamp from sample
}

// DurationMatch summarizes the duration column.
type DurationMatch struct {
	Style       string // DurationColon, DurationDecimal, DurationMixed, or empty
	Sampled     int
	Parsed      int
	SampleValue string
}

// Detector analyzes timecard files.
type Detector struct {
	formats    []*TimestampFormat
	sampleSize int
	sheet      string
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of rows to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithSheet selects the worksheet for spreadsheet files.
func WithSheet(sheet string) Option {
	return func(d *Detector) {
		d.sheet = sheet
	}
}

// New creates a new Detector with default formats.
func New(opts ...Option) *Detector {
	d := &Detector{
		formats:    DefaultFormats(),
		sampleSize: 100,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples a CSV or XLSX file and returns the detection result.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	src, err := parser.OpenFiles([]string{path}, parser.OpenOptions{Sheet: d.sheet})
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var rows []*record.Row
	for len(rows) < d.sampleSize {
		row, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sampling %s: %w", path, err)
		}
		rows = append(rows, row)
	}

	return d.DetectFromRows(rows), nil
}

// DetectFromRows analyzes sampled rows. The header is taken from the first row.
func (d *Detector) DetectFromRows(rows []*record.Row) *DetectionResult {
	result := &DetectionResult{
		SampledRows: len(rows),
	}

	if len(rows) == 0 {
		return result
	}

	result.Headers = rows[0].Header
	result.Columns, result.Missing = MatchColumns(result.Headers)

	var values []string
	for _, row := range rows {
		for _, col := range []string{result.Columns.ClockIn, result.Columns.ClockOut} {
			if col == "" {
				continue
			}
			if v := strings.TrimSpace(row.Fields[col]); v != "" {
				values = append(values, v)
			}
		}
	}
	result.TimestampValues = len(values)
	result.Matches = d.matchFormats(values)

	if len(result.Matches) > 0 {
		result.ParsedValues = result.Matches[0].MatchCount
	}

	if result.Columns.Duration != "" {
		result.Duration = detectDuration(rows, result.Columns.Duration)
	}

	result.AmbiguityNote = ambiguityNote(result.Matches)

	return result
}

func (d *Detector) matchFormats(values []string) []FormatMatch {
	if len(values) == 0 {
		return nil
	}

	var matches []FormatMatch
	for _, format := range d.formats {
		m := FormatMatch{Format: format}
		for _, v := range values {
			if !format.Pattern.MatchString(v) {
				continue
			}
			ts, ok := parseTimestamp(v, format.Layout)
			if !ok {
				continue
			}
			if m.MatchCount == 0 {
				m.SampleValue = v
				m.ParsedTime = ts
			}
			m.MatchCount++
		}
		if m.MatchCount > 0 {
			m.Confidence = float64(m.MatchCount) / float64(len(values))
			matches = append(matches, m)
		}
	}

	// Ties keep format order, so US day ordering wins over European.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	return matches
}

// ambiguityNote explains a day-ordering tie, or warns about an ambiguous
// best match that the sample happened to settle.
func ambiguityNote(matches []FormatMatch) string {
	if len(matches) == 0 || !matches[0].Format.Ambiguous {
		return ""
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Format.Ambiguous && m.Confidence == best.Confidence && m.Format.PatternStr == best.Format.PatternStr {
			return fmt.Sprintf("Every sampled value fits both %q and %q. "+
				"No day above 12 was seen, so the date ordering is a guess. "+
				"Use layout %q if your export is day-first.",
				best.Format.Layout, m.Format.Layout, m.Format.Layout)
		}
	}
	return "This format has date ordering ambiguity (MM/DD vs DD/MM). " +
		"The sampled values only parse one way, but verify the layout against your export."
}

func detectDuration(rows []*record.Row, col string) DurationMatch {
	var dm DurationMatch
	colon, decimal := 0, 0
	for _, row := range rows {
		v := strings.TrimSpace(row.Fields[col])
		if v == "" {
			continue
		}
		dm.Sampled++
		if _, err := record.ParseDuration(v); err != nil {
			continue
		}
		if dm.Parsed == 0 {
			dm.SampleValue = v
		}
		dm.Parsed++
		if strings.Contains(v, ":") {
			colon++
		} else {
			decimal++
		}
	}

	switch {
	case colon > 0 && decimal > 0:
		dm.Style = DurationMixed
	case colon > 0:
		dm.Style = DurationColon
	case decimal > 0:
		dm.Style = DurationDecimal
	}
	return dm
}

// parseTimestamp parses a cell using the given layout.
func parseTimestamp(s, layout string) (time.Time, bool) {
	if layout == ExcelSerialLayout {
		serial, err := strconv.ParseFloat(s, 64)
		if err != nil || serial <= 0 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one format matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}

// Complete returns true if every logical field has a column and a timestamp
// format matched.
func (r *DetectionResult) Complete() bool {
	return len(r.Missing) == 0 && r.HasMatch()
}
