package analyzer

import (
	"sort"
	"time"

	"github.com/ccollicutt/shiftguard/pkg/record"
)

// Timeline is one employee's shifts sorted by clock-in. Shifts with equal
// clock-in keep their input order.
type Timeline struct {
	EmployeeID string
	Shifts     []record.ShiftRecord
}

// BuildTimelines groups records by employee and sorts each group by clock-in.
// Timelines are ordered by employee ID. No record is dropped or merged.
func BuildTimelines(records []record.ShiftRecord) []Timeline {
	if len(records) == 0 {
		return nil
	}

	sorted := make([]record.ShiftRecord, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].EmployeeID != sorted[j].EmployeeID {
			return sorted[i].EmployeeID < sorted[j].EmployeeID
		}
		return sorted[i].ClockIn.Before(sorted[j].ClockIn)
	})

	var timelines []Timeline
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i == len(sorted) || sorted[i].EmployeeID != sorted[start].EmployeeID {
			timelines = append(timelines, Timeline{
				EmployeeID: sorted[start].EmployeeID,
				Shifts:     sorted[start:i:i],
			})
			start = i
		}
	}

	return timelines
}

// firstAtOrAfter returns the index of the first shift with clock-in >= t.
func (tl *Timeline) firstAtOrAfter(t time.Time) int {
	return sort.Search(len(tl.Shifts), func(j int) bool {
		return !tl.Shifts[j].ClockIn.Before(t)
	})
}

// firstAfter returns the index of the first shift with clock-in > t.
func (tl *Timeline) firstAfter(t time.Time) int {
	return sort.Search(len(tl.Shifts), func(j int) bool {
		return tl.Shifts[j].ClockIn.After(t)
	})
}
