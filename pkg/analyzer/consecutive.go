package analyzer

import (
	"fmt"

	"github.com/ccollicutt/shiftguard/pkg/config"
)

// ConsecutiveDaysDetector flags a shift when exactly RequiredShifts shifts of
// the same employee start within WindowDays calendar days of it, the shift
// itself included.
//
// The count is of shifts, not of distinct days: two shifts on one day count
// twice. Every qualifying shift produces its own finding, so a streak longer
// than the window yields overlapping findings.
type ConsecutiveDaysDetector struct {
	windowDays     int
	requiredShifts int
}

// NewConsecutiveDaysDetector creates the detector from a rule config.
func NewConsecutiveDaysDetector(rule config.ConsecutiveDaysRule) (*ConsecutiveDaysDetector, error) {
	if rule.WindowDays < 1 {
		return nil, fmt.Errorf("window_days must be >= 1, got %d", rule.WindowDays)
	}
	if rule.RequiredShifts < 1 {
		return nil, fmt.Errorf("required_shifts must be >= 1, got %d", rule.RequiredShifts)
	}
	return &ConsecutiveDaysDetector{
		windowDays:     rule.WindowDays,
		requiredShifts: rule.RequiredShifts,
	}, nil
}

// Name returns the rule name.
func (d *ConsecutiveDaysDetector) Name() string {
	return config.RuleConsecutiveDays
}

// Kind returns the finding kind.
func (d *ConsecutiveDaysDetector) Kind() Kind {
	return KindConsecutiveDays
}

// Check counts the shifts whose clock-in falls in [start, start + windowDays-1 days].
func (d *ConsecutiveDaysDetector) Check(tl *Timeline, i int) (Finding, bool) {
	shift := &tl.Shifts[i]
	start := shift.ClockIn
	end := start.AddDate(0, 0, d.windowDays-1)

	count := tl.firstAfter(end) - tl.firstAtOrAfter(start)
	if count != d.requiredShifts {
		return Finding{}, false
	}

	return Finding{
		Kind:       KindConsecutiveDays,
		EmployeeID: tl.EmployeeID,
		Anchor:     start,
		Description: fmt.Sprintf("%s has worked %d shifts in %d consecutive days starting from %s",
			tl.EmployeeID, count, d.windowDays, start.Format(TimeLayout)),
		Details: FindingDetails{
			WindowStart: start,
			WindowEnd:   end,
			ShiftCount:  count,
			Source:      shift.Source,
			LineNum:     shift.LineNum,
		},
	}, true
}
