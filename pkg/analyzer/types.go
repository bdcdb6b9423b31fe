// Package analyzer evaluates labor-compliance rules over employee shift
// timelines.
package analyzer

import (
	"time"
)

// Kind categorizes findings. Values match the rule names in the configuration.
type Kind string

const (
	// KindConsecutiveDays indicates an employee worked the required number of
	// shifts inside the consecutive-days window.
	KindConsecutiveDays Kind = "consecutive_days"

	// KindShortRestGap indicates a start-to-start gap between two shifts that
	// is longer than the minimum but shorter than the required rest.
	KindShortRestGap Kind = "short_rest_gap"

	// KindLongShift indicates a single shift longer than the allowed maximum.
	KindLongShift Kind = "long_shift"
)

// Finding is a single detected compliance condition.
type Finding struct {
	Kind Kind

	EmployeeID string

	// Anchor is the clock-in of the shift that triggered the finding.
	Anchor time.Time

	// Description is a human-readable summary.
	Description string

	Details FindingDetails
}

// FindingDetails carries the kind-specific payload of a finding.
type FindingDetails struct {
	// WindowStart and WindowEnd bound the consecutive-days window.
	WindowStart time.Time
	WindowEnd   time.Time

	// ShiftCount is the number of shifts starting inside the window.
	ShiftCount int

	// GapHours is the start-to-start gap to the next shift.
	GapHours float64

	// NextClockIn is the clock-in of the next shift.
	NextClockIn time.Time

	// ShiftHours is the worked duration of the anchoring shift.
	ShiftHours float64

	// Source and LineNum locate the anchoring shift in the input.
	Source  string
	LineNum int
}

// AnalysisResult contains the complete analysis output.
type AnalysisResult struct {
	// Findings are ordered by employee, then clock-in, then rule.
	Findings []Finding

	Metadata AnalysisMetadata
}

// AnalysisMetadata provides context about the analysis run.
type AnalysisMetadata struct {
	// RunID identifies this run in reports and webhook deliveries.
	RunID string

	// Rules lists the rules that were evaluated, in evaluation order.
	Rules []string

	// Employees is the number of distinct employees analyzed.
	Employees int

	// RecordsAnalyzed is the number of shift records analyzed.
	RecordsAnalyzed int

	StartTime time.Time
	EndTime   time.Time
}

// HasFindings returns true if any finding was produced.
func (r *AnalysisResult) HasFindings() bool {
	return len(r.Findings) > 0
}

// CountByKind returns the number of findings per kind.
func (r *AnalysisResult) CountByKind() map[Kind]int {
	counts := make(map[Kind]int, 3)
	for _, f := range r.Findings {
		counts[f.Kind]++
	}
	return counts
}
