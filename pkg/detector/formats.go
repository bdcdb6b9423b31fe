package detector

import "regexp"

// ExcelSerialLayout marks the spreadsheet serial-date format.
const ExcelSerialLayout = "EXCEL_SERIAL"

// TimestampFormat represents a known timestamp format for detection.
type TimestampFormat struct {
	Name       string         // Human-readable name
	Pattern    *regexp.Regexp // Compiled regex (set during init)
	PatternStr string         // Pattern string for display
	Layout     string         // Go time layout for parsing
	Examples   []string       // Example timestamps
	Ambiguous  bool           // True if format has date ordering ambiguity (MM/DD vs DD/MM)
}

// DefaultFormats returns the built-in timestamp formats to detect.
// Patterns match a whole cell. US day ordering comes before European so that
// a tie resolves to the US layout.
func DefaultFormats() []*TimestampFormat {
	formats := []*TimestampFormat{
		{
			Name:       "RFC 3339",
			PatternStr: `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(Z|[+-]\d{2}:\d{2})$`,
			Layout:     "2006-01-02T15:04:05Z07:00",
			Examples:   []string{"2024-01-15T10:30:00Z", "2024-01-15T10:30:00-05:00"},
		},
		{
			Name:       "ISO 8601",
			PatternStr: `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`,
			Layout:     "2006-01-02T15:04:05",
			Examples:   []string{"2024-01-15T10:30:00"},
		},
		{
			Name:       "Datetime with seconds",
			PatternStr: `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`,
			Layout:     "2006-01-02 15:04:05",
			Examples:   []string{"2024-01-15 10:30:00"},
		},
		{
			Name:       "Datetime",
			PatternStr: `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}$`,
			Layout:     "2006-01-02 15:04",
			Examples:   []string{"2024-01-15 10:30"},
		},
		{
			Name:       "US date with seconds (MM/DD/YYYY)",
			PatternStr: `^\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2}$`,
			Layout:     "01/02/2006 15:04:05",
			Examples:   []string{"01/15/2024 10:30:00"},
			Ambiguous:  true,
		},
		{
			Name:       "European date with seconds (DD/MM/YYYY)",
			PatternStr: `^\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2}$`,
			Layout:     "02/01/2006 15:04:05",
			Examples:   []string{"15/01/2024 10:30:00"},
			Ambiguous:  true,
		},
		{
			Name:       "US date (MM/DD/YYYY)",
			PatternStr: `^\d{2}/\d{2}/\d{4} \d{1,2}:\d{2}$`,
			Layout:     "01/02/2006 15:04",
			Examples:   []string{"01/15/2024 10:30"},
			Ambiguous:  true,
		},
		{
			Name:       "European date (DD/MM/YYYY)",
			PatternStr: `^\d{2}/\d{2}/\d{4} \d{1,2}:\d{2}$`,
			Layout:     "02/01/2006 15:04",
			Examples:   []string{"15/01/2024 10:30"},
			Ambiguous:  true,
		},
		{
			Name:       "US date, 12-hour clock",
			PatternStr: `^\d{2}/\d{2}/\d{4} \d{1,2}:\d{2} [AP]M$`,
			Layout:     "01/02/2006 3:04 PM",
			Examples:   []string{"01/15/2024 2:30 PM", "01/15/2024 09:00 AM"},
			Ambiguous:  true,
		},
		{
			Name:       "European date, 12-hour clock",
			PatternStr: `^\d{2}/\d{2}/\d{4} \d{1,2}:\d{2} [AP]M$`,
			Layout:     "02/01/2006 3:04 PM",
			Examples:   []string{"15/01/2024 2:30 PM"},
			Ambiguous:  true,
		},
		{
			Name:       "Short US date (M/D/YY)",
			PatternStr: `^\d{1,2}/\d{1,2}/\d{2} \d{1,2}:\d{2}$`,
			Layout:     "1/2/06 15:04",
			Examples:   []string{"1/5/24 7:05", "12/31/23 22:00"},
			Ambiguous:  true,
		},
		{
			Name:       "Short European date (D/M/YY)",
			PatternStr: `^\d{1,2}/\d{1,2}/\d{2} \d{1,2}:\d{2}$`,
			Layout:     "2/1/06 15:04",
			Examples:   []string{"31/12/23 22:00"},
			Ambiguous:  true,
		},
		{
			Name:       "Dashed US date (MM-DD-YY)",
			PatternStr: `^\d{2}-\d{2}-\d{2} \d{1,2}:\d{2}$`,
			Layout:     "01-02-06 15:04",
			Examples:   []string{"01-15-24 10:30"},
			Ambiguous:  true,
		},
		{
			Name:       "Excel serial date",
			PatternStr: `^\d{5}(\.\d+)?$`,
			Layout:     ExcelSerialLayout,
			Examples:   []string{"45306.4375"},
		},
	}

	// Compile all patterns
	for _, f := range formats {
		f.Pattern = regexp.MustCompile(f.PatternStr)
	}

	return formats
}
