package analyzer

import (
	"fmt"

	"github.com/ccollicutt/shiftguard/pkg/config"
)

// LongShiftDetector flags a shift whose worked duration exceeds maxHours.
type LongShiftDetector struct {
	maxHours float64
}

// NewLongShiftDetector creates the detector from a rule config.
func NewLongShiftDetector(rule config.LongShiftRule) (*LongShiftDetector, error) {
	if rule.MaxHours <= 0 {
		return nil, fmt.Errorf("max_hours must be > 0, got %g", rule.MaxHours)
	}
	return &LongShiftDetector{maxHours: rule.MaxHours}, nil
}

// Name returns the rule name.
func (d *LongShiftDetector) Name() string {
	return config.RuleLongShift
}

// Kind returns the finding kind.
func (d *LongShiftDetector) Kind() Kind {
	return KindLongShift
}

// Check uses the recorded duration, not clock-out minus clock-in.
func (d *LongShiftDetector) Check(tl *Timeline, i int) (Finding, bool) {
	shift := &tl.Shifts[i]
	if shift.DurationHours <= d.maxHours {
		return Finding{}, false
	}

	return Finding{
		Kind:       KindLongShift,
		EmployeeID: tl.EmployeeID,
		Anchor:     shift.ClockIn,
		Description: fmt.Sprintf("%s has worked for more than %g hours in a single shift on %s (%.2f hours)",
			tl.EmployeeID, d.maxHours, shift.ClockIn.Format(TimeLayout), shift.DurationHours),
		Details: FindingDetails{
			ShiftHours: shift.DurationHours,
			Source:     shift.Source,
			LineNum:    shift.LineNum,
		},
	}, true
}
