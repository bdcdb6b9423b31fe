package analyzer

import (
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/ccollicutt/shiftguard/pkg/config"
	"github.com/ccollicutt/shiftguard/pkg/record"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var day1 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// shift builds a record whose clock-out matches its duration.
func shift(employee string, in time.Time, hours float64) record.ShiftRecord {
	return record.ShiftRecord{
		EmployeeID:    employee,
		ClockIn:       in,
		ClockOut:      in.Add(time.Duration(hours * float64(time.Hour))),
		DurationHours: hours,
		Source:        "test.csv",
	}
}

// daily returns one 8h shift per day for n days starting at start.
func daily(employee string, start time.Time, n int) []record.ShiftRecord {
	var shifts []record.ShiftRecord
	for i := 0; i < n; i++ {
		shifts = append(shifts, shift(employee, start.AddDate(0, 0, i), 8))
	}
	return shifts
}

func withLines(records []record.ShiftRecord) []record.ShiftRecord {
	for i := range records {
		records[i].LineNum = i + 2
		records[i].Seq = i
	}
	return records
}

func defaultRules() config.RulesConfig {
	return config.DefaultConfig().Rules
}

func newTestAnalyzer(t *testing.T, opts ...AnalyzerOption) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(config.DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}
	return a
}
