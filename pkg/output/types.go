// Package output provides formatting and output generation for analysis results.
package output

import (
	"time"

	"github.com/ccollicutt/shiftguard/pkg/analyzer"
	"github.com/ccollicutt/shiftguard/pkg/parser"
)

// Report is the complete analysis output.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary

	// Findings are in analyzer order: employee, clock-in, rule.
	Findings []analyzer.Finding

	// Diagnostics lists input rows that were skipped.
	Diagnostics []parser.Diagnostic

	// Metadata provides context about the analysis.
	Metadata Metadata
}

// Summary provides aggregate statistics.
type Summary struct {
	// Employees is the number of distinct employees analyzed.
	Employees int

	// RecordsProcessed is the number of shift records analyzed.
	RecordsProcessed int

	// TotalFindings is the total number of findings.
	TotalFindings int

	// Per-kind finding counts.
	ConsecutiveDays int
	ShortRestGaps   int
	LongShifts      int

	// SkippedRecords is the number of rows dropped for malformed values.
	SkippedRecords int
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// RunID identifies the run across the report and webhook deliveries.
	RunID string

	// ConfigFile is the path to the configuration file used.
	ConfigFile string

	// Sources lists the files or tables that were analyzed.
	Sources []string

	// Rules lists the rules that were evaluated.
	Rules []string

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time

	// Duration is how long the analysis took.
	Duration time.Duration
}

// NewReport creates a Report from analysis results. load may be nil when the
// records did not come from parser.Load.
func NewReport(result *analyzer.AnalysisResult, load *parser.LoadResult, configFile string) *Report {
	counts := result.CountByKind()

	report := &Report{
		Findings: result.Findings,
		Metadata: Metadata{
			RunID:      result.Metadata.RunID,
			ConfigFile: configFile,
			Rules:      result.Metadata.Rules,
			AnalyzedAt: result.Metadata.EndTime,
			Duration:   result.Metadata.EndTime.Sub(result.Metadata.StartTime),
		},
		Summary: Summary{
			Employees:        result.Metadata.Employees,
			RecordsProcessed: result.Metadata.RecordsAnalyzed,
			TotalFindings:    len(result.Findings),
			ConsecutiveDays:  counts[analyzer.KindConsecutiveDays],
			ShortRestGaps:    counts[analyzer.KindShortRestGap],
			LongShifts:       counts[analyzer.KindLongShift],
		},
	}

	if load != nil {
		report.Diagnostics = load.Diagnostics
		report.Metadata.Sources = load.Sources
		report.Summary.SkippedRecords = len(load.Diagnostics)
	}

	return report
}

// HasIssues returns true if any findings were produced.
func (r *Report) HasIssues() bool {
	return r.Summary.TotalFindings > 0
}
