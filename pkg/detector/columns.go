package detector

import (
	"strings"
	"unicode"

	"github.com/ccollicutt/shiftguard/pkg/record"
)

// columnAliases lists known header spellings per logical field, most
// specific first. Comparison ignores case and punctuation.
var columnAliases = map[string][]string{
	record.FieldEmployee: {
		"employee name", "employee", "employee id", "emp id", "name", "worker", "staff member",
	},
	record.FieldClockIn: {
		"time", "time in", "clock in", "clock in time", "punch in", "start", "start time", "shift start",
	},
	record.FieldClockOut: {
		"time out", "clock out", "clock out time", "punch out", "end", "end time", "shift end",
	},
	record.FieldDuration: {
		"timecard hours as time", "timecard hours", "hours", "hours worked", "worked hours",
		"total hours", "duration",
	},
}

// fieldOrder is the order fields are reported in.
var fieldOrder = []string{record.FieldEmployee, record.FieldClockIn, record.FieldClockOut, record.FieldDuration}

// MatchColumns maps header names to logical fields. A header is used for at
// most one field. Fields with no matching header are returned in missing.
func MatchColumns(headers []string) (cols record.Columns, missing []string) {
	normalized := make(map[string]string, len(headers))
	for _, h := range headers {
		key := normalizeHeader(h)
		if _, dup := normalized[key]; key != "" && !dup {
			normalized[key] = strings.TrimSpace(h)
		}
	}

	used := make(map[string]bool)
	found := make(map[string]string)
	for _, field := range fieldOrder {
		for _, alias := range columnAliases[field] {
			if h, ok := normalized[alias]; ok && !used[h] {
				found[field] = h
				used[h] = true
				break
			}
		}
		if found[field] == "" {
			missing = append(missing, field)
		}
	}

	cols = record.Columns{
		Employee: found[record.FieldEmployee],
		ClockIn:  found[record.FieldClockIn],
		ClockOut: found[record.FieldClockOut],
		Duration: found[record.FieldDuration],
	}
	return cols, missing
}

// normalizeHeader lowercases h and collapses every run of non-alphanumeric
// characters to one space.
func normalizeHeader(h string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}
