package analyzer

import (
	"fmt"

	"github.com/ccollicutt/shiftguard/pkg/config"
)

// ShortRestGapDetector flags a shift when the next shift of the same employee
// starts more than minHours but less than maxHours after it. The gap runs from
// clock-in to clock-in.
type ShortRestGapDetector struct {
	minHours float64
	maxHours float64
}

// NewShortRestGapDetector creates the detector from a rule config.
func NewShortRestGapDetector(rule config.ShortRestGapRule) (*ShortRestGapDetector, error) {
	if rule.MinHours < 0 {
		return nil, fmt.Errorf("min_hours must be >= 0, got %g", rule.MinHours)
	}
	if rule.MaxHours <= rule.MinHours {
		return nil, fmt.Errorf("max_hours (%g) must be greater than min_hours (%g)", rule.MaxHours, rule.MinHours)
	}
	return &ShortRestGapDetector{
		minHours: rule.MinHours,
		maxHours: rule.MaxHours,
	}, nil
}

// Name returns the rule name.
func (d *ShortRestGapDetector) Name() string {
	return config.RuleShortRestGap
}

// Kind returns the finding kind.
func (d *ShortRestGapDetector) Kind() Kind {
	return KindShortRestGap
}

// Check compares the shift with the first later shift. Shifts sharing the
// same clock-in are not "next".
func (d *ShortRestGapDetector) Check(tl *Timeline, i int) (Finding, bool) {
	shift := &tl.Shifts[i]

	j := tl.firstAfter(shift.ClockIn)
	if j >= len(tl.Shifts) {
		return Finding{}, false
	}
	next := &tl.Shifts[j]

	gap := next.ClockIn.Sub(shift.ClockIn).Hours()
	if gap <= d.minHours || gap >= d.maxHours {
		return Finding{}, false
	}

	return Finding{
		Kind:       KindShortRestGap,
		EmployeeID: tl.EmployeeID,
		Anchor:     shift.ClockIn,
		Description: fmt.Sprintf("%s has less than %g hours between shifts but greater than %g hour(s) (%.2f hours) starting from %s",
			tl.EmployeeID, d.maxHours, d.minHours, gap, shift.ClockIn.Format(TimeLayout)),
		Details: FindingDetails{
			GapHours:    gap,
			NextClockIn: next.ClockIn,
			Source:      shift.Source,
			LineNum:     shift.LineNum,
		},
	}, true
}
